// Package notifications edits a user's notification preferences.
package notifications

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/form"
	"github.com/mmcdole/seerctl/internal/notify"
	"github.com/mmcdole/seerctl/internal/validate"
)

// Values are the editable notification fields
type Values struct {
	EmailEnabled             bool
	PGPKey                   string `label:"PGP Key" validate:"omitempty,pgpkey"`
	DiscordID                string `label:"Discord ID" validate:"omitempty,numeric"`
	PushbulletAccessToken    string `label:"Access Token"`
	PushoverApplicationToken string `label:"Application Token" validate:"required_with=PushoverUserKey"`
	PushoverUserKey          string `label:"User Key" validate:"required_with=PushoverApplicationToken"`
	TelegramChatID           string `label:"Chat ID" validate:"omitempty,telegramid"`
	TelegramSendSilently     bool
	WebPushEnabled           bool

	Types map[domain.Channel]domain.NotificationType `validate:"-"`
}

// FromSettings fills form values from server settings
func FromSettings(s domain.NotificationSettings) Values {
	s = s.Clone()
	return Values{
		EmailEnabled:             s.EmailEnabled,
		PGPKey:                   s.PGPKey,
		DiscordID:                s.DiscordID,
		PushbulletAccessToken:    s.PushbulletAccessToken,
		PushoverApplicationToken: s.PushoverApplicationToken,
		PushoverUserKey:          s.PushoverUserKey,
		TelegramChatID:           s.TelegramChatID,
		TelegramSendSilently:     s.TelegramSendSilently,
		WebPushEnabled:           s.WebPushEnabled,
		Types:                    s.NotificationTypes,
	}
}

// ToSettings converts values to the domain type
func (v Values) ToSettings() domain.NotificationSettings {
	s := domain.NotificationSettings{
		EmailEnabled:             v.EmailEnabled,
		PGPKey:                   strings.TrimSpace(v.PGPKey),
		DiscordID:                strings.TrimSpace(v.DiscordID),
		PushbulletAccessToken:    strings.TrimSpace(v.PushbulletAccessToken),
		PushoverApplicationToken: strings.TrimSpace(v.PushoverApplicationToken),
		PushoverUserKey:          strings.TrimSpace(v.PushoverUserKey),
		TelegramChatID:           strings.TrimSpace(v.TelegramChatID),
		TelegramSendSilently:     v.TelegramSendSilently,
		WebPushEnabled:           v.WebPushEnabled,
		NotificationTypes:        v.Types,
	}
	return s.Clone()
}

// TypesFor returns the channel's bitmask
func (v Values) TypesFor(ch domain.Channel) domain.NotificationType {
	return v.Types[ch]
}

// WithTypes returns a copy with the channel's bitmask replaced. The types map
// is copied so earlier snapshots are unaffected.
func (v Values) WithTypes(ch domain.Channel, t domain.NotificationType) Values {
	types := make(map[domain.Channel]domain.NotificationType, len(v.Types)+1)
	for k, m := range v.Types {
		types[k] = m
	}
	types[ch] = t
	v.Types = types
	return v
}

// Validate checks values against the notification schema
func Validate(v Values) validate.Errors {
	v.PGPKey = strings.TrimSpace(v.PGPKey)
	v.DiscordID = strings.TrimSpace(v.DiscordID)
	v.TelegramChatID = strings.TrimSpace(v.TelegramChatID)
	return validate.Struct(v)
}

// Service loads and saves one user's notification settings
type Service struct {
	repo    domain.NotificationRepository
	userID  string
	sink    notify.Sink
	journal domain.ActivityStore
	logger  *slog.Logger
}

// NewService creates a service bound to userID. journal may be nil.
func NewService(repo domain.NotificationRepository, userID string, sink notify.Sink, journal domain.ActivityStore, logger *slog.Logger) *Service {
	if sink == nil {
		sink = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, userID: userID, sink: sink, journal: journal, logger: logger}
}

// UserID returns the user whose settings are edited
func (s *Service) UserID() string { return s.userID }

// Load implements form.Loader
func (s *Service) Load(ctx context.Context) (Values, error) {
	settings, err := s.repo.GetNotificationSettings(ctx, s.userID)
	if err != nil {
		s.logger.Error("failed to get notification settings", "user", s.userID, "error", err)
		return Values{}, err
	}
	return FromSettings(settings), nil
}

// Save implements form.Saver
func (s *Service) Save(ctx context.Context, v Values) error {
	err := s.repo.SaveNotificationSettings(ctx, s.userID, v.ToSettings())
	if s.journal != nil {
		if jerr := s.journal.Record(domain.NewActivity(domain.ActivitySubmit, "notifications user "+s.userID, err)); jerr != nil {
			s.logger.Warn("failed to record activity", "error", jerr)
		}
	}
	if err != nil {
		return err
	}
	s.logger.Info("saved notification settings", "user", s.userID)
	return nil
}

// NewForm builds the notification settings form
func (s *Service) NewForm() *form.Form[Values] {
	return form.New[Values](s, s, Validate, s.sink, form.Options[Values]{
		SuccessMessage: "Notification settings saved successfully!",
		ErrorMessage:   "Something went wrong while saving notification settings.",
		Logger:         s.logger,
	})
}
