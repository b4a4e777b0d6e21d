// Package connection manages the media-server connection: the settings form,
// discovery of candidate endpoints and library enablement.
package connection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/form"
	"github.com/mmcdole/seerctl/internal/notify"
)

// API is the backend surface the service needs
type API interface {
	domain.ConnectionRepository
	domain.LibraryRepository
}

// Service handles connection settings and libraries
type Service struct {
	api     API
	sink    notify.Sink
	journal domain.ActivityStore
	logger  *slog.Logger
}

// NewService creates a connection service. journal may be nil.
func NewService(api API, sink notify.Sink, journal domain.ActivityStore, logger *slog.Logger) *Service {
	if sink == nil {
		sink = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, sink: sink, journal: journal, logger: logger}
}

// Get returns the current settings
func (s *Service) Get(ctx context.Context) (domain.ConnectionSettings, error) {
	settings, err := s.api.GetConnection(ctx)
	if err != nil {
		s.logger.Error("failed to get connection settings", "error", err)
		return domain.ConnectionSettings{}, err
	}
	return settings, nil
}

// Load implements form.Loader
func (s *Service) Load(ctx context.Context) (Values, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return Values{}, err
	}
	return FromSettings(settings), nil
}

// Save implements form.Saver
func (s *Service) Save(ctx context.Context, v Values) error {
	settings, err := v.ToSettings()
	if err != nil {
		return err
	}
	err = s.api.SaveConnection(ctx, settings)
	record(s.journal, s.logger, domain.NewActivity(domain.ActivitySubmit, "connection "+settings.Address(), err))
	if err != nil {
		return err
	}
	s.logger.Info("saved connection settings", "address", settings.Address())
	return nil
}

// NewForm builds the connection form. A successful submit triggers a best
// effort library sync before the re-fetch.
func (s *Service) NewForm() *form.Form[Values] {
	return form.New[Values](s, s, Validate, s.sink, form.Options[Values]{
		SuccessMessage: "Connection settings saved successfully!",
		ErrorMessage:   "Failed to save connection settings.",
		AfterSave: func(ctx context.Context, _ Values) {
			if _, err := s.SyncLibraries(ctx); err != nil {
				s.logger.Warn("library sync after connection change failed", "error", err)
			}
		},
		Logger: s.logger,
	})
}

// ToggleLibrary flips one library's enabled flag and returns the refreshed
// settings
func (s *Service) ToggleLibrary(ctx context.Context, id string) (domain.ConnectionSettings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return domain.ConnectionSettings{}, err
	}

	lib, ok := current.FindLibrary(id)
	if !ok {
		return current, fmt.Errorf("library %q: %w", id, domain.ErrLibraryNotFound)
	}

	ids := domain.ToggledEnabledIDs(current.Libraries, id)
	err = s.api.EnableLibraries(ctx, ids)
	record(s.journal, s.logger, domain.NewActivity(domain.ActivityToggle, lib.Name, err))
	if err != nil {
		s.logger.Error("failed to toggle library", "library", lib.Name, "error", err)
		s.sink.Error("Failed to update libraries.")
		return s.refetch(ctx, current, err)
	}

	s.logger.Info("toggled library", "library", lib.Name, "enabled", !lib.Enabled)
	return s.refetch(ctx, current, nil)
}

// SyncLibraries asks the backend to refresh its library list from the media
// server and returns the refreshed settings
func (s *Service) SyncLibraries(ctx context.Context) (domain.ConnectionSettings, error) {
	err := s.api.SyncLibraries(ctx)
	record(s.journal, s.logger, domain.NewActivity(domain.ActivityLibraries, "sync", err))
	if err != nil {
		s.logger.Error("failed to sync libraries", "error", err)
		s.sink.Error("Failed to sync libraries.")
		return s.refetch(ctx, domain.ConnectionSettings{}, err)
	}

	s.sink.Success("Libraries synced.")
	return s.refetch(ctx, domain.ConnectionSettings{}, nil)
}

// refetch reloads settings after a mutation. The mutation error wins over a
// reload error; on reload failure fallback is returned.
func (s *Service) refetch(ctx context.Context, fallback domain.ConnectionSettings, cause error) (domain.ConnectionSettings, error) {
	fresh, err := s.Get(ctx)
	if err != nil {
		if cause != nil {
			return fallback, cause
		}
		return fallback, err
	}
	return fresh, cause
}
