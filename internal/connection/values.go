package connection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/validate"
)

// Values are the editable connection fields. Port stays text so a half typed
// value can be shown and rejected inline.
type Values struct {
	Host               string `label:"Hostname" validate:"required,hostname_rfc1123"`
	Port               string `label:"Port" validate:"required,port"`
	UseSecureTransport bool
	ExternalURL        string `label:"External URL" validate:"omitempty,http_url"`

	// server supplied, never edited
	Name      string           `validate:"-"`
	MachineID string           `validate:"-"`
	Libraries []domain.Library `validate:"-"`
}

// FromSettings fills form values from server settings
func FromSettings(s domain.ConnectionSettings) Values {
	port := ""
	if s.Port > 0 {
		port = strconv.Itoa(s.Port)
	}
	return Values{
		Host:               s.Host,
		Port:               port,
		UseSecureTransport: s.UseSecureTransport,
		ExternalURL:        s.ExternalURL,
		Name:               s.Name,
		MachineID:          s.MachineID,
		Libraries:          s.Libraries,
	}
}

// ToSettings converts validated values back to the domain type
func (v Values) ToSettings() (domain.ConnectionSettings, error) {
	port, err := strconv.Atoi(strings.TrimSpace(v.Port))
	if err != nil {
		return domain.ConnectionSettings{}, fmt.Errorf("port %q: %w", v.Port, domain.ErrInvalid)
	}
	return domain.ConnectionSettings{
		Name:               v.Name,
		MachineID:          v.MachineID,
		Host:               strings.TrimSpace(v.Host),
		Port:               port,
		UseSecureTransport: v.UseSecureTransport,
		ExternalURL:        strings.TrimSpace(v.ExternalURL),
		Libraries:          v.Libraries,
	}, nil
}

// Validate checks values against the connection schema
func Validate(v Values) validate.Errors {
	v.Host = strings.TrimSpace(v.Host)
	v.ExternalURL = strings.TrimSpace(v.ExternalURL)
	return validate.Struct(v)
}
