package domain

import (
	"fmt"
	"strings"
)

// ConnectionSettings is the media-server connection held by the request server.
// It is replaced wholesale on every load and submit.
type ConnectionSettings struct {
	Name               string    // Server display name (read-only, server supplied)
	MachineID          string    // Media server machine identifier (read-only)
	Host               string    // Hostname or IP address
	Port               int       // TCP port
	UseSecureTransport bool      // Connect over TLS
	ExternalURL        string    // Optional externally-facing web app URL
	Libraries          []Library // Libraries discovered on the media server
}

// DefaultConnectionSettings returns the values a form starts from when the
// server omits a field.
func DefaultConnectionSettings() ConnectionSettings {
	return ConnectionSettings{
		Port: 32400,
	}
}

// Address renders the connection as a URL.
func (c ConnectionSettings) Address() string {
	if c.Host == "" {
		return ""
	}
	scheme := "http"
	if c.UseSecureTransport {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// EnabledLibraryIDs returns the IDs of enabled libraries in server order.
func (c ConnectionSettings) EnabledLibraryIDs() []string {
	ids := make([]string, 0, len(c.Libraries))
	for _, lib := range c.Libraries {
		if lib.Enabled {
			ids = append(ids, lib.ID)
		}
	}
	return ids
}

// FindLibrary returns the library with the given ID.
func (c ConnectionSettings) FindLibrary(id string) (Library, bool) {
	for _, lib := range c.Libraries {
		if lib.ID == id {
			return lib, true
		}
	}
	return Library{}, false
}

// Library is a content collection on the media server
type Library struct {
	ID      string // Server-specific unique identifier
	Name    string // Display name
	Enabled bool   // Whether the library is indexed by the request server
}

// ToggledEnabledIDs returns the enabled set with id flipped, preserving the
// order libraries appear in.
func ToggledEnabledIDs(libs []Library, id string) []string {
	ids := make([]string, 0, len(libs))
	for _, lib := range libs {
		enabled := lib.Enabled
		if lib.ID == id {
			enabled = !enabled
		}
		if enabled {
			ids = append(ids, lib.ID)
		}
	}
	return ids
}

// JoinIDs renders ids as the comma separated list the API expects.
func JoinIDs(ids []string) string {
	return strings.Join(ids, ",")
}
