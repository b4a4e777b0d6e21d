package tui

import (
	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/syncmon"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ConnectionLoadedMsg signals the connection form settled a fetch
type ConnectionLoadedMsg struct {
	Err error
}

// ConnectionSubmittedMsg signals a connection submit (and its re-fetch) finished
type ConnectionSubmittedMsg struct {
	Err error
}

// ServersDiscoveredMsg carries ranked discovery results
type ServersDiscoveredMsg struct {
	Servers []domain.DiscoveredServer
	Err     error
}

// LibrariesUpdatedMsg carries settings re-fetched after a toggle or sync
type LibrariesUpdatedMsg struct {
	Settings domain.ConnectionSettings
	Err      error
}

// NotificationsLoadedMsg signals the notification form settled a fetch
type NotificationsLoadedMsg struct {
	Err error
}

// NotificationsSubmittedMsg signals a notification submit finished
type NotificationsSubmittedMsg struct {
	Err error
}

// SyncUpdateMsg carries one poll result from the monitor
type SyncUpdateMsg struct {
	Update syncmon.Update
}

// SyncControlDoneMsg signals a start/cancel request finished
type SyncControlDoneMsg struct {
	Action string
	Err    error
}

// SyncMonitorStoppedMsg signals the poll loop exited
type SyncMonitorStoppedMsg struct{}

// ActivityLoadedMsg carries recent journal entries
type ActivityLoadedMsg struct {
	Entries []domain.Activity
	Err     error
}

// ToastsChangedMsg signals the toast queue changed
type ToastsChangedMsg struct{}

// TickMsg is a general tick message for animations and toast expiry
type TickMsg struct{}
