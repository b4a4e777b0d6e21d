package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/seerctl/internal/connection"
	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/form"
	"github.com/mmcdole/seerctl/internal/notifications"
	"github.com/mmcdole/seerctl/internal/notify"
	"github.com/mmcdole/seerctl/internal/syncmon"
	"github.com/mmcdole/seerctl/internal/tui/components"
)

// Tab is a top level screen
type Tab int

const (
	TabConnection Tab = iota
	TabLibraries
	TabSync
	TabNotifications
	TabActivity
)

var tabNames = []string{"Connection", "Libraries", "Sync", "Notifications", "Activity"}

const (
	tickInterval  = 100 * time.Millisecond
	activityLimit = 50
)

// Services are the collaborators the TUI drives
type Services struct {
	ServerURL     string
	Connection    *connection.Service
	Discoverer    *connection.Discoverer
	Notifications *notifications.Service
	NewMonitor    func() *syncmon.Monitor // one per visit to the Sync tab
	SyncUpdates   <-chan syncmon.Update   // fed by a ChannelObserver on each monitor
	Toasts        *notify.Queue
	Journal       domain.ActivityStore
	Timeout       time.Duration
	Logger        *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	Ready    bool
	Width    int
	Height   int
	Tab      Tab
	ShowHelp bool

	svc    Services
	keys   KeyMap
	logger *slog.Logger

	// Connection tab
	connForm      *form.Form[connection.Values]
	connFields    *components.FieldSet
	hostField     *components.TextField
	portField     *components.TextField
	urlField      *components.TextField
	secureBox     *components.Checkbox
	connTouched   map[string]bool
	connSubmitted bool
	picker        components.ServerPicker

	// Libraries tab
	libraries     *components.LibraryList
	librariesBusy bool

	// Sync tab
	syncPanel *components.SyncPanel

	// Notifications tab
	notifForm       *form.Form[notifications.Values]
	notifFields     *components.FieldSet
	emailBox        *components.Checkbox
	pgpField        *components.TextAreaField
	discordField    *components.TextField
	pushbulletField *components.TextField
	pushoverApp     *components.TextField
	pushoverUser    *components.TextField
	telegramField   *components.TextField
	silentBox       *components.Checkbox
	webPushBox      *components.Checkbox
	typesList       *components.TypesChecklist
	notifTouched    map[string]bool
	notifSubmitted  bool

	// Activity tab
	activity    []domain.Activity
	activityErr error

	toastCh      <-chan struct{}
	SpinnerFrame int
	now          func() time.Time

	// set only while the Sync tab is shown
	monitor     *syncmon.Monitor
	monitorCtx  context.Context
	stopMonitor context.CancelFunc
}

// NewModel creates a new application model
func NewModel(svc Services) Model {
	if svc.Timeout <= 0 {
		svc.Timeout = 30 * time.Second
	}
	if svc.Logger == nil {
		svc.Logger = slog.Default()
	}

	m := Model{
		svc:          svc,
		keys:         DefaultKeyMap(),
		logger:       svc.Logger,
		connForm:     svc.Connection.NewForm(),
		notifForm:    svc.Notifications.NewForm(),
		picker:       components.NewServerPicker(),
		libraries:    components.NewLibraryList(),
		syncPanel:    &components.SyncPanel{},
		connTouched:  make(map[string]bool),
		notifTouched: make(map[string]bool),
		toastCh:      svc.Toasts.Subscribe(),
		now:          time.Now,
	}

	m.hostField = components.NewTextField("Host", "Hostname or IP Address", "plex.local or 192.168.1.10", false)
	m.portField = components.NewTextField("Port", "Port", "32400", false)
	m.portField.SetCharLimit(5)
	m.secureBox = components.NewCheckbox("UseSecureTransport", "Use SSL")
	m.urlField = components.NewTextField("ExternalURL", "Web App URL", "https://app.plex.tv/desktop", false)
	m.connFields = components.NewFieldSet(m.hostField, m.portField, m.secureBox, m.urlField)

	m.emailBox = components.NewCheckbox("EmailEnabled", "Email")
	m.pgpField = components.NewTextAreaField("PGPKey", "PGP Public Key", "-----BEGIN PGP PUBLIC KEY BLOCK-----", 4)
	m.discordField = components.NewTextField("DiscordID", "Discord User ID", "", false)
	m.pushbulletField = components.NewTextField("PushbulletAccessToken", "Pushbullet Token", "", true)
	m.pushoverApp = components.NewTextField("PushoverApplicationToken", "Pushover App Token", "", true)
	m.pushoverUser = components.NewTextField("PushoverUserKey", "Pushover User Key", "", true)
	m.telegramField = components.NewTextField("TelegramChatID", "Telegram Chat ID", "", false)
	m.silentBox = components.NewCheckbox("TelegramSendSilently", "Send Silently")
	m.webPushBox = components.NewCheckbox("WebPushEnabled", "Web Push")
	m.typesList = components.NewTypesChecklist()
	m.notifFields = components.NewFieldSet(
		m.emailBox, m.pgpField, m.discordField, m.pushbulletField,
		m.pushoverApp, m.pushoverUser, m.telegramField, m.silentBox,
		m.webPushBox, m.typesList,
	)

	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadConnectionCmd(m.connForm, m.svc.Timeout),
		LoadNotificationsCmd(m.notifForm, m.svc.Timeout),
		WaitForSyncUpdateCmd(m.svc.SyncUpdates),
		WaitForToastsCmd(m.toastCh),
		m.loadActivity(),
		TickCmd(tickInterval),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.libraries.SetHeight(m.bodyHeight() - 4)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(tickInterval)

	case ToastsChangedMsg:
		return m, WaitForToastsCmd(m.toastCh)

	case ConnectionLoadedMsg:
		if msg.Err == nil {
			m.fillConnectionFields()
		}
		return m, nil

	case ConnectionSubmittedMsg:
		if errors.Is(msg.Err, domain.ErrBusy) {
			return m, nil
		}
		if msg.Err == nil {
			m.connSubmitted = false
			clear(m.connTouched)
		}
		// The form re-fetched whatever the outcome
		if m.connForm.State() == form.StateReady {
			m.fillConnectionFields()
		}
		return m, m.loadActivity()

	case ServersDiscoveredMsg:
		if msg.Err != nil {
			m.picker.SetFailed()
		} else {
			m.picker.SetServers(msg.Servers)
		}
		return m, m.loadActivity()

	case LibrariesUpdatedMsg:
		m.librariesBusy = false
		m.libraries.SetPending("")
		if msg.Err == nil || msg.Settings.Libraries != nil {
			m.libraries.SetLibraries(msg.Settings.Libraries)
		}
		return m, m.loadActivity()

	case NotificationsLoadedMsg:
		if msg.Err == nil {
			m.fillNotificationFields()
		}
		return m, nil

	case NotificationsSubmittedMsg:
		if errors.Is(msg.Err, domain.ErrBusy) {
			return m, nil
		}
		if msg.Err == nil {
			m.notifSubmitted = false
			clear(m.notifTouched)
		}
		if m.notifForm.State() == form.StateReady {
			m.fillNotificationFields()
		}
		return m, m.loadActivity()

	case SyncUpdateMsg:
		m.syncPanel.SetStatus(msg.Update.Status, msg.Update.Err, msg.Update.At)
		return m, WaitForSyncUpdateCmd(m.svc.SyncUpdates)

	case SyncControlDoneMsg:
		m.syncPanel.SetPending("")
		return m, m.loadActivity()

	case SyncMonitorStoppedMsg:
		m.logger.Debug("sync monitor stopped")
		return m, nil

	case ActivityLoadedMsg:
		m.activity = msg.Entries
		m.activityErr = msg.Err
		return m, nil

	case ErrMsg:
		m.svc.Toasts.Error(msg.Error())
		return m, nil
	}

	return m, nil
}

func (m Model) loadActivity() tea.Cmd {
	if m.svc.Journal == nil {
		return nil
	}
	return LoadActivityCmd(m.svc.Journal, activityLimit)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.stopSyncMonitor()
	return m, tea.Quit
}

// startSyncMonitor begins polling for as long as the Sync tab is visible
func (m *Model) startSyncMonitor() tea.Cmd {
	if m.stopMonitor != nil || m.svc.NewMonitor == nil {
		return nil
	}
	m.monitor = m.svc.NewMonitor()
	m.monitorCtx, m.stopMonitor = context.WithCancel(context.Background())
	return RunSyncMonitorCmd(m.monitorCtx, m.monitor)
}

func (m *Model) stopSyncMonitor() {
	if m.stopMonitor == nil {
		return
	}
	m.stopMonitor()
	m.stopMonitor = nil
}

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}

	// Modal picker captures everything else
	if m.picker.IsVisible() {
		var cmd tea.Cmd
		var chosen *domain.DiscoveredServer
		m.picker, cmd, chosen = m.picker.Update(msg)
		if chosen != nil {
			var applyErr error
			m.connForm.Update(func(v *connection.Values) {
				applyErr = connection.Apply(v, *chosen)
			})
			if applyErr == nil {
				m.fillConnectionFields()
				m.connTouched["Host"] = true
				m.connTouched["Port"] = true
			}
		}
		return m, cmd
	}

	if m.ShowHelp {
		switch msg.String() {
		case "esc", "?", "q":
			m.ShowHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.Tab + 1) % Tab(len(tabNames)))
	case key.Matches(msg, m.keys.Tab1):
		return m.switchTab(TabConnection)
	case key.Matches(msg, m.keys.Tab2):
		return m.switchTab(TabLibraries)
	case key.Matches(msg, m.keys.Tab3):
		return m.switchTab(TabSync)
	case key.Matches(msg, m.keys.Tab4):
		return m.switchTab(TabNotifications)
	case key.Matches(msg, m.keys.Tab5):
		return m.switchTab(TabActivity)
	}

	switch m.Tab {
	case TabConnection:
		return m.handleConnectionKey(msg)
	case TabLibraries:
		return m.handleLibrariesKey(msg)
	case TabSync:
		return m.handleSyncKey(msg)
	case TabNotifications:
		return m.handleNotificationsKey(msg)
	case TabActivity:
		return m.handleActivityKey(msg)
	}
	return m, nil
}

func (m Model) switchTab(t Tab) (tea.Model, tea.Cmd) {
	if t != TabSync {
		m.stopSyncMonitor()
	}
	m.Tab = t
	switch t {
	case TabActivity:
		return m, m.loadActivity()
	case TabSync:
		return m, m.startSyncMonitor()
	}
	return m, nil
}

// handleCommonKey covers keys shared by tabs without text input
func (m Model) handleCommonKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.QuitText):
		model, cmd := m.quit()
		return model, cmd, true
	case key.Matches(msg, m.keys.Help):
		m.ShowHelp = true
		return m, nil, true
	}
	return m, nil, false
}

// === Connection ===

func (m Model) handleConnectionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextField):
		m.connTouched[m.connFields.Current().Key()] = true
		return m, m.connFields.Next()
	case key.Matches(msg, m.keys.PrevField):
		m.connTouched[m.connFields.Current().Key()] = true
		return m, m.connFields.Prev()
	case key.Matches(msg, m.keys.Submit):
		m.connSubmitted = true
		if m.connForm.State() != form.StateReady || !m.connForm.CanSubmit() {
			return m, nil
		}
		return m, SubmitConnectionCmd(m.connForm, m.svc.Timeout)
	case key.Matches(msg, m.keys.Reset):
		if m.connForm.State() == form.StateFailed {
			return m, LoadConnectionCmd(m.connForm, m.svc.Timeout)
		}
		m.connForm.Reset()
		m.fillConnectionFields()
		m.connSubmitted = false
		clear(m.connTouched)
		return m, nil
	case key.Matches(msg, m.keys.Discover):
		return m, tea.Batch(m.picker.Open(), DiscoverServersCmd(m.svc.Discoverer, m.svc.Timeout))
	}

	cmd := m.connFields.Update(msg)
	m.syncConnectionValues()
	return m, cmd
}

func (m *Model) fillConnectionFields() {
	v := m.connForm.Values()
	m.hostField.SetValue(v.Host)
	m.portField.SetValue(v.Port)
	m.secureBox.SetChecked(v.UseSecureTransport)
	m.urlField.SetValue(v.ExternalURL)
	m.libraries.SetLibraries(m.connForm.Server().Libraries)
}

func (m *Model) syncConnectionValues() {
	m.connForm.Update(func(v *connection.Values) {
		v.Host = m.hostField.Value()
		v.Port = m.portField.Value()
		v.UseSecureTransport = m.secureBox.Checked()
		v.ExternalURL = m.urlField.Value()
	})
}

func (m Model) connectionErrors() map[string]string {
	return visibleErrors(m.connForm.Validate(), m.connTouched, m.connSubmitted)
}

// === Libraries ===

func (m Model) handleLibrariesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.libraries.IsFiltering() {
		return m, m.libraries.Update(msg)
	}

	if model, cmd, ok := m.handleCommonKey(msg); ok {
		return model, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		lib, ok := m.libraries.Selected()
		if !ok || m.librariesBusy {
			return m, nil
		}
		m.librariesBusy = true
		m.libraries.SetPending(lib.ID)
		return m, ToggleLibraryCmd(m.svc.Connection, lib.ID, m.svc.Timeout)
	case key.Matches(msg, m.keys.Sync):
		if m.librariesBusy {
			return m, nil
		}
		m.librariesBusy = true
		return m, SyncLibraryListCmd(m.svc.Connection, m.svc.Timeout)
	}

	return m, m.libraries.Update(msg)
}

// === Sync ===

func (m Model) handleSyncKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model, cmd, ok := m.handleCommonKey(msg); ok {
		return model, cmd
	}

	if m.syncPanel.Pending() != "" || m.monitor == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Sync):
		if m.syncPanel.Status().Running {
			return m, nil
		}
		m.syncPanel.SetPending("starting")
		return m, StartSyncCmd(m.monitor, m.svc.Timeout)
	case key.Matches(msg, m.keys.Cancel):
		if !m.syncPanel.Status().Running {
			return m, nil
		}
		m.syncPanel.SetPending("cancelling")
		return m, CancelSyncCmd(m.monitor, m.svc.Timeout)
	}
	return m, nil
}

// === Notifications ===

func (m Model) handleNotificationsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextField):
		m.notifTouched[m.notifFields.Current().Key()] = true
		return m, m.notifFields.Next()
	case key.Matches(msg, m.keys.PrevField):
		m.notifTouched[m.notifFields.Current().Key()] = true
		return m, m.notifFields.Prev()
	case key.Matches(msg, m.keys.Submit):
		m.notifSubmitted = true
		if m.notifForm.State() != form.StateReady || !m.notifForm.CanSubmit() {
			return m, nil
		}
		return m, SubmitNotificationsCmd(m.notifForm, m.svc.Timeout)
	case key.Matches(msg, m.keys.Reset):
		if m.notifForm.State() == form.StateFailed {
			return m, LoadNotificationsCmd(m.notifForm, m.svc.Timeout)
		}
		m.notifForm.Reset()
		m.fillNotificationFields()
		m.notifSubmitted = false
		clear(m.notifTouched)
		return m, nil
	}

	cmd := m.notifFields.Update(msg)
	m.syncNotificationValues()
	return m, cmd
}

func (m *Model) fillNotificationFields() {
	v := m.notifForm.Values()
	m.emailBox.SetChecked(v.EmailEnabled)
	m.pgpField.SetValue(v.PGPKey)
	m.discordField.SetValue(v.DiscordID)
	m.pushbulletField.SetValue(v.PushbulletAccessToken)
	m.pushoverApp.SetValue(v.PushoverApplicationToken)
	m.pushoverUser.SetValue(v.PushoverUserKey)
	m.telegramField.SetValue(v.TelegramChatID)
	m.silentBox.SetChecked(v.TelegramSendSilently)
	m.webPushBox.SetChecked(v.WebPushEnabled)
	m.typesList.SetTypes(v.Types)
}

func (m *Model) syncNotificationValues() {
	m.notifForm.Update(func(v *notifications.Values) {
		v.EmailEnabled = m.emailBox.Checked()
		v.PGPKey = m.pgpField.Value()
		v.DiscordID = m.discordField.Value()
		v.PushbulletAccessToken = m.pushbulletField.Value()
		v.PushoverApplicationToken = m.pushoverApp.Value()
		v.PushoverUserKey = m.pushoverUser.Value()
		v.TelegramChatID = m.telegramField.Value()
		v.TelegramSendSilently = m.silentBox.Checked()
		v.WebPushEnabled = m.webPushBox.Checked()
		v.Types = m.typesList.Types()
	})
}

func (m Model) notificationErrors() map[string]string {
	return visibleErrors(m.notifForm.Validate(), m.notifTouched, m.notifSubmitted)
}

// === Activity ===

func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model, cmd, ok := m.handleCommonKey(msg); ok {
		return model, cmd
	}

	if m.svc.Journal == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadActivity()
	case key.Matches(msg, m.keys.ClearLog):
		return m, ClearActivityCmd(m.svc.Journal)
	}
	return m, nil
}

// visibleErrors hides messages for untouched fields until a submit attempt
func visibleErrors(errs map[string]string, touched map[string]bool, submitted bool) map[string]string {
	if submitted {
		return errs
	}
	out := make(map[string]string, len(errs))
	for field, msg := range errs {
		if touched[field] {
			out[field] = msg
		}
	}
	return out
}
