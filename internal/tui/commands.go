package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/seerctl/internal/connection"
	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/form"
	"github.com/mmcdole/seerctl/internal/notifications"
	"github.com/mmcdole/seerctl/internal/syncmon"
)

// Command factories for async operations

// LoadConnectionCmd fetches connection settings into the form
func LoadConnectionCmd(f *form.Form[connection.Values], timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return ConnectionLoadedMsg{Err: f.Load(ctx)}
	}
}

// SubmitConnectionCmd saves the connection form. The form re-fetches before
// the message is delivered.
func SubmitConnectionCmd(f *form.Form[connection.Values], timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return ConnectionSubmittedMsg{Err: f.Submit(ctx)}
	}
}

// DiscoverServersCmd fetches and ranks candidate connections
func DiscoverServersCmd(d *connection.Discoverer, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		servers, err := d.Refresh(ctx)
		return ServersDiscoveredMsg{Servers: servers, Err: err}
	}
}

// ToggleLibraryCmd flips one library's enabled flag
func ToggleLibraryCmd(svc *connection.Service, id string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		settings, err := svc.ToggleLibrary(ctx, id)
		return LibrariesUpdatedMsg{Settings: settings, Err: err}
	}
}

// SyncLibraryListCmd refreshes the library list from the media server
func SyncLibraryListCmd(svc *connection.Service, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		settings, err := svc.SyncLibraries(ctx)
		return LibrariesUpdatedMsg{Settings: settings, Err: err}
	}
}

// LoadNotificationsCmd fetches notification settings into the form
func LoadNotificationsCmd(f *form.Form[notifications.Values], timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return NotificationsLoadedMsg{Err: f.Load(ctx)}
	}
}

// SubmitNotificationsCmd saves the notification form
func SubmitNotificationsCmd(f *form.Form[notifications.Values], timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return NotificationsSubmittedMsg{Err: f.Submit(ctx)}
	}
}

// RunSyncMonitorCmd owns the poll loop until ctx is cancelled
func RunSyncMonitorCmd(ctx context.Context, mon *syncmon.Monitor) tea.Cmd {
	return func() tea.Msg {
		mon.Run(ctx)
		return SyncMonitorStoppedMsg{}
	}
}

// WaitForSyncUpdateCmd blocks for the next poll result
func WaitForSyncUpdateCmd(ch <-chan syncmon.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return SyncUpdateMsg{Update: u}
	}
}

// StartSyncCmd requests a full library scan
func StartSyncCmd(mon *syncmon.Monitor, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return SyncControlDoneMsg{Action: "starting", Err: mon.Start(ctx)}
	}
}

// CancelSyncCmd cancels the running scan
func CancelSyncCmd(mon *syncmon.Monitor, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return SyncControlDoneMsg{Action: "cancelling", Err: mon.Cancel(ctx)}
	}
}

// LoadActivityCmd reads the most recent journal entries
func LoadActivityCmd(journal domain.ActivityStore, limit int) tea.Cmd {
	return func() tea.Msg {
		entries, err := journal.Recent(limit)
		return ActivityLoadedMsg{Entries: entries, Err: err}
	}
}

// ClearActivityCmd wipes the journal and reloads it
func ClearActivityCmd(journal domain.ActivityStore) tea.Cmd {
	return func() tea.Msg {
		if err := journal.Clear(); err != nil {
			return ActivityLoadedMsg{Err: err}
		}
		return ActivityLoadedMsg{}
	}
}

// WaitForToastsCmd blocks until the toast queue changes
func WaitForToastsCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return ToastsChangedMsg{}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}
