package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/seerctl/internal/connection"
	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/notifications"
	"github.com/mmcdole/seerctl/internal/notify"
	"github.com/mmcdole/seerctl/internal/syncmon"
)

type fakeAPI struct {
	mu       sync.Mutex
	settings domain.ConnectionSettings
	devices  []domain.Device
	sync     domain.SyncStatus
	notif    domain.NotificationSettings
	calls    []string
}

func (f *fakeAPI) log(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) GetConnection(context.Context) (domain.ConnectionSettings, error) {
	f.log("get")
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.settings
	s.Libraries = append([]domain.Library(nil), f.settings.Libraries...)
	return s, nil
}

func (f *fakeAPI) SaveConnection(_ context.Context, s domain.ConnectionSettings) error {
	f.log("save")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings.Host = s.Host
	f.settings.Port = s.Port
	f.settings.UseSecureTransport = s.UseSecureTransport
	f.settings.ExternalURL = s.ExternalURL
	return nil
}

func (f *fakeAPI) GetDevices(context.Context) ([]domain.Device, error) {
	f.log("devices")
	return f.devices, nil
}

func (f *fakeAPI) SyncLibraries(context.Context) error {
	f.log("sync-libraries")
	return nil
}

func (f *fakeAPI) EnableLibraries(_ context.Context, ids []string) error {
	f.log("enable")
	f.mu.Lock()
	defer f.mu.Unlock()
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for i := range f.settings.Libraries {
		f.settings.Libraries[i].Enabled = set[f.settings.Libraries[i].ID]
	}
	return nil
}

func (f *fakeAPI) GetSyncStatus(context.Context) (domain.SyncStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sync, nil
}

func (f *fakeAPI) StartSync(context.Context) (domain.SyncStatus, error) {
	f.log("start")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sync.Running = true
	return f.sync, nil
}

func (f *fakeAPI) CancelSync(context.Context) (domain.SyncStatus, error) {
	f.log("cancel")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sync.Running = false
	return f.sync, nil
}

func (f *fakeAPI) GetNotificationSettings(context.Context, string) (domain.NotificationSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notif, nil
}

func (f *fakeAPI) SaveNotificationSettings(_ context.Context, _ string, s domain.NotificationSettings) error {
	f.log("save-notifications")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notif = s
	return nil
}

type memJournal struct {
	mu      sync.Mutex
	entries []domain.Activity
}

func (j *memJournal) Record(a domain.Activity) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append([]domain.Activity{a}, j.entries...)
	return nil
}

func (j *memJournal) Recent(int) ([]domain.Activity, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]domain.Activity(nil), j.entries...), nil
}

func (j *memJournal) Clear() error { j.mu.Lock(); j.entries = nil; j.mu.Unlock(); return nil }
func (j *memJournal) Close() error { return nil }

func newTestModel(t *testing.T) (Model, *fakeAPI, chan syncmon.Update) {
	t.Helper()

	api := &fakeAPI{
		settings: domain.ConnectionSettings{
			Name:      "Living Room",
			MachineID: "abc123",
			Host:      "plex.local",
			Port:      32400,
			Libraries: []domain.Library{
				{ID: "1", Name: "Movies", Enabled: true},
				{ID: "2", Name: "Shows"},
			},
		},
		devices: []domain.Device{{
			Name: "Living Room",
			Connections: []domain.DeviceConnection{
				{Protocol: "https", Address: "10.0.0.9", Port: 32400, Status: 500},
				{Protocol: "http", Address: "10.0.0.5", Port: 32401, Status: 200},
			},
		}},
		notif: domain.NotificationSettings{EmailEnabled: true},
	}

	journal := &memJournal{}
	toasts := notify.NewQueue(time.Minute)
	updates := make(chan syncmon.Update, 1)

	svc := Services{
		ServerURL:     "http://seer.local:5055",
		Connection:    connection.NewService(api, toasts, journal, nil),
		Discoverer:    connection.NewDiscoverer(api, toasts, journal, nil),
		Notifications: notifications.NewService(api, "1", toasts, journal, nil),
		NewMonitor: func() *syncmon.Monitor {
			return syncmon.New(api, syncmon.Options{
				Sink:     toasts,
				Journal:  journal,
				Observer: NewChannelObserver(updates),
			})
		},
		SyncUpdates: updates,
		Toasts:      toasts,
		Journal:     journal,
		Timeout:     time.Second,
	}

	m := NewModel(svc)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = update(t, m, LoadConnectionCmd(m.connForm, time.Second)())
	m = update(t, m, LoadNotificationsCmd(m.notifForm, time.Second)())
	return m, api, updates
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func alt(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s), Alt: true} }

func TestModel_LoadFillsFields(t *testing.T) {
	m, _, _ := newTestModel(t)

	assert.Equal(t, "plex.local", m.hostField.Value())
	assert.Equal(t, "32400", m.portField.Value())
	assert.False(t, m.secureBox.Checked())
	assert.Len(t, m.libraries.Libraries(), 2)
	assert.True(t, m.emailBox.Checked())

	view := m.View()
	assert.Contains(t, view, "Media Server Settings")
	assert.Contains(t, view, "Living Room")
}

func TestModel_TypingUpdatesFormValues(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = press(t, m, runes("x"))

	assert.Equal(t, "plex.localx", m.connForm.Values().Host)
	assert.Equal(t, "plex.local", m.connForm.Server().Host, "server copy is untouched")
}

func TestModel_InvalidSubmitShowsErrorsOnly(t *testing.T) {
	m, api, _ := newTestModel(t)

	// Errors stay hidden until the field is touched or a submit is attempted
	m.portField.SetValue("abc")
	m.syncConnectionValues()
	assert.Empty(t, m.connectionErrors())

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.Contains(t, m.connectionErrors(), "Port")
	assert.NotContains(t, api.calls, "save")
}

func TestModel_SubmitSavesAndRefetches(t *testing.T) {
	m, api, _ := newTestModel(t)

	m.hostField.SetValue("media.lan")
	m.syncConnectionValues()

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	assert.Equal(t, "media.lan", api.settings.Host)
	assert.Equal(t, "media.lan", m.connForm.Server().Host)
	assert.Equal(t, "media.lan", m.hostField.Value())
	assert.Contains(t, api.calls, "save")

	toasts := m.svc.Toasts.Active(time.Now())
	require.NotEmpty(t, toasts)
	assert.Equal(t, "Connection settings saved successfully!", toasts[len(toasts)-1].Message)
}

func TestModel_ResetRestoresServerValues(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = press(t, m, runes("zz"))
	require.Equal(t, "plex.localzz", m.connForm.Values().Host)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, "plex.local", m.hostField.Value())
	assert.Equal(t, "plex.local", m.connForm.Values().Host)
}

func TestModel_PickerAppliesReachableServer(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlF})
	require.NotNil(t, cmd)
	require.True(t, m.picker.IsVisible())

	m = update(t, m, DiscoverServersCmd(m.svc.Discoverer, time.Second)())

	// Reachable entries rank first
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.picker.IsVisible())
	assert.Equal(t, "10.0.0.5", m.hostField.Value())
	assert.Equal(t, "32401", m.portField.Value())
	assert.False(t, m.secureBox.Checked())
	assert.Equal(t, "10.0.0.5", m.connForm.Values().Host)
}

func TestModel_PickerRejectsUnreachableServer(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlF})
	m = update(t, m, DiscoverServersCmd(m.svc.Discoverer, time.Second)())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, m.picker.IsVisible())
	assert.Equal(t, "plex.local", m.hostField.Value())
}

func TestModel_ToggleLibrary(t *testing.T) {
	m, api, _ := newTestModel(t)

	m, _ = press(t, m, alt("2"))
	require.Equal(t, TabLibraries, m.Tab)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.NotNil(t, cmd)
	assert.True(t, m.librariesBusy)

	// A second toggle is ignored while one is in flight
	_, again := press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Nil(t, again)

	m = update(t, m, cmd())
	assert.False(t, m.librariesBusy)
	assert.False(t, api.settings.Libraries[0].Enabled)
	assert.False(t, m.libraries.Libraries()[0].Enabled)
}

func TestModel_SyncStartAndCancel(t *testing.T) {
	m, api, updates := newTestModel(t)

	m, _ = press(t, m, alt("3"))
	m = update(t, m, SyncUpdateMsg{Update: syncmon.Update{At: time.Now()}})

	// Cancel does nothing while idle
	m, cmd := press(t, m, runes("c"))
	assert.Nil(t, cmd)

	m, cmd = press(t, m, runes("s"))
	require.NotNil(t, cmd)
	assert.Equal(t, "starting", m.syncPanel.Pending())

	m = update(t, m, cmd())
	assert.Empty(t, m.syncPanel.Pending())
	assert.Contains(t, api.calls, "start")

	// Start re-polls through the observer channel
	select {
	case u := <-updates:
		m = update(t, m, SyncUpdateMsg{Update: u})
	case <-time.After(time.Second):
		t.Fatal("no sync update after start")
	}
	assert.True(t, m.syncPanel.Status().Running)

	m, cmd = press(t, m, runes("c"))
	require.NotNil(t, cmd)
	assert.Equal(t, "cancelling", m.syncPanel.Pending())
	m = update(t, m, cmd())
	assert.Contains(t, api.calls, "cancel")
}

func TestModel_NotificationsSubmit(t *testing.T) {
	m, api, _ := newTestModel(t)

	m, _ = press(t, m, alt("4"))
	m.telegramField.SetValue("-100123")
	m.silentBox.SetChecked(true)
	m.syncNotificationValues()

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	assert.Equal(t, "-100123", api.notif.TelegramChatID)
	assert.True(t, api.notif.TelegramSendSilently)
	assert.Equal(t, "-100123", m.telegramField.Value())
}

func TestModel_NotificationsRequiresPushoverPair(t *testing.T) {
	m, api, _ := newTestModel(t)

	m, _ = press(t, m, alt("4"))
	m.pushoverApp.SetValue("app-token")
	m.syncNotificationValues()

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.Contains(t, m.notificationErrors(), "PushoverUserKey")
	assert.NotContains(t, api.calls, "save-notifications")
}

func TestModel_ActivityTab(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.hostField.SetValue("media.lan")
	m.syncConnectionValues()
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = update(t, m, cmd())

	m, cmd = press(t, m, alt("5"))
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	require.NotEmpty(t, m.activity)
	assert.Equal(t, domain.ActivitySubmit, m.activity[len(m.activity)-1].Kind)
	assert.Contains(t, m.View(), "submit")

	m, cmd = press(t, m, runes("X"))
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	assert.Empty(t, m.activity)
}

func TestModel_TabsAndHelp(t *testing.T) {
	m, _, _ := newTestModel(t)

	for _, want := range []Tab{TabLibraries, TabSync, TabNotifications, TabActivity, TabConnection} {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
		assert.Equal(t, want, m.Tab)
	}

	m, _ = press(t, m, alt("2"))
	m, _ = press(t, m, runes("?"))
	assert.True(t, m.ShowHelp)
	assert.Contains(t, m.View(), "next tab")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.ShowHelp)
}

func TestModel_QuitStopsMonitor(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = press(t, m, alt("3"))
	require.NotNil(t, m.monitorCtx)

	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Error(t, m.monitorCtx.Err())
}

func TestModel_SyncMonitorFollowsTab(t *testing.T) {
	m, _, _ := newTestModel(t)
	assert.Nil(t, m.monitor, "no polling before the Sync tab is shown")

	m, cmd := press(t, m, alt("3"))
	require.NotNil(t, cmd)
	require.NotNil(t, m.monitor)
	first, ctx := m.monitor, m.monitorCtx
	require.NoError(t, ctx.Err())

	m, _ = press(t, m, alt("1"))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	m, cmd = press(t, m, alt("3"))
	require.NotNil(t, cmd)
	assert.NotSame(t, first, m.monitor, "each visit polls with a fresh monitor")
	assert.NoError(t, m.monitorCtx.Err())
}

func TestChannelObserver_DropsWhenFull(t *testing.T) {
	ch := make(chan syncmon.Update, 1)
	obs := NewChannelObserver(ch)

	obs.OnStatus(domain.SyncStatus{Progress: 1}, nil)
	obs.OnStatus(domain.SyncStatus{Progress: 2}, nil)

	u := <-ch
	assert.Equal(t, 1, u.Status.Progress)
	assert.Empty(t, ch)
}

func TestVisibleErrors(t *testing.T) {
	errs := map[string]string{"Host": "bad host", "Port": "bad port"}

	assert.Equal(t, errs, visibleErrors(errs, nil, true))
	assert.Equal(t, map[string]string{"Port": "bad port"}, visibleErrors(errs, map[string]bool{"Port": true}, false))
}
