package domain

import (
	"context"
)

// ConnectionRepository reads and writes the media-server connection
type ConnectionRepository interface {
	// GetConnection returns current connection settings including libraries
	GetConnection(ctx context.Context) (ConnectionSettings, error)

	// SaveConnection persists host, port, transport security and external URL
	SaveConnection(ctx context.Context, settings ConnectionSettings) error
}

// DiscoveryRepository lists media servers reachable from the request server
type DiscoveryRepository interface {
	// GetDevices returns candidate servers with their connection endpoints
	GetDevices(ctx context.Context) ([]Device, error)
}

// LibraryRepository controls library enablement on the request server
type LibraryRepository interface {
	// SyncLibraries refreshes the library list from the media server
	SyncLibraries(ctx context.Context) error

	// EnableLibraries replaces the enabled set with ids
	EnableLibraries(ctx context.Context, ids []string) error
}

// SyncRepository drives the backend library scan
type SyncRepository interface {
	// GetSyncStatus returns the current scan state
	GetSyncStatus(ctx context.Context) (SyncStatus, error)

	// StartSync requests a full scan
	StartSync(ctx context.Context) (SyncStatus, error)

	// CancelSync requests the running scan to stop
	CancelSync(ctx context.Context) (SyncStatus, error)
}

// NotificationRepository reads and writes per-user notification settings
type NotificationRepository interface {
	// GetNotificationSettings returns the user's configuration
	GetNotificationSettings(ctx context.Context, userID string) (NotificationSettings, error)

	// SaveNotificationSettings persists the user's configuration in full
	SaveNotificationSettings(ctx context.Context, userID string, settings NotificationSettings) error
}

// SettingsAPI is everything the backend exposes to this client
type SettingsAPI interface {
	ConnectionRepository
	DiscoveryRepository
	LibraryRepository
	SyncRepository
	NotificationRepository
}
