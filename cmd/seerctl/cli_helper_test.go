package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/seerctl/internal/adapter"
	"github.com/mmcdole/seerctl/internal/domain"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type fakeAPI struct {
	mu       sync.Mutex
	settings domain.ConnectionSettings
	devices  []domain.Device
	sync     domain.SyncStatus
	notif    domain.NotificationSettings
	calls    []string
	authErr  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
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
		devices: []domain.Device{
			{
				Name: "Living Room",
				Connections: []domain.DeviceConnection{
					{Protocol: "https", Address: "10.0.0.9", Port: 32400, Status: 500, Message: "timeout"},
					{Protocol: "http", Address: "10.0.0.5", Port: 32401, Status: 200, Local: true},
				},
			},
			{
				Name: "Basement",
				Connections: []domain.DeviceConnection{
					{Protocol: "https", Address: "10.0.1.1", Port: 32400, Status: 200},
				},
			},
		},
	}
}

func (f *fakeAPI) log(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) GetConnection(context.Context) (domain.ConnectionSettings, error) {
	f.log("get")
	if f.authErr {
		return domain.ConnectionSettings{}, fmt.Errorf("get connection: %w", domain.ErrAuthFailed)
	}
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
	f.log("enable " + domain.JoinIDs(ids))
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
	if f.authErr {
		return domain.SyncStatus{}, fmt.Errorf("get sync status: %w", domain.ErrAuthFailed)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sync, nil
}

func (f *fakeAPI) StartSync(context.Context) (domain.SyncStatus, error) {
	f.log("start")
	f.mu.Lock()
	defer f.mu.Unlock()
	movies := f.settings.Libraries[0]
	f.sync = domain.SyncStatus{
		Running:        true,
		Progress:       1,
		Total:          4,
		CurrentLibrary: &movies,
		Libraries:      f.settings.Libraries,
	}
	return f.sync, nil
}

func (f *fakeAPI) CancelSync(context.Context) (domain.SyncStatus, error) {
	f.log("cancel")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sync = domain.SyncStatus{}
	return f.sync, nil
}

func (f *fakeAPI) GetNotificationSettings(_ context.Context, userID string) (domain.NotificationSettings, error) {
	f.log("get-notifications " + userID)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notif.Clone(), nil
}

func (f *fakeAPI) SaveNotificationSettings(_ context.Context, userID string, s domain.NotificationSettings) error {
	f.log("save-notifications " + userID)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notif = s.Clone()
	return nil
}

// testEnv is a config file in a temp dir plus the backend commands talk to
type testEnv struct {
	dir        string
	configFile string
	api        *fakeAPI
	newAPI     func(cfg *adapter.Config, logger *slog.Logger) domain.SettingsAPI
}

func newTestEnv(t *testing.T, serverURL string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	e := &testEnv{
		dir:        dir,
		configFile: filepath.Join(dir, "config.yaml"),
		api:        newFakeAPI(),
	}

	var b strings.Builder
	if serverURL != "" {
		fmt.Fprintf(&b, "server:\n  url: %s\n  api_key: test-key\n", serverURL)
	}
	fmt.Fprintf(&b, "logging:\n  file: %s\n  level: debug\n", filepath.Join(dir, "seerctl.log"))
	fmt.Fprintf(&b, "activity:\n  enabled: true\n  file: %s\n", filepath.Join(dir, "activity.db"))
	fmt.Fprintf(&b, "sync:\n  poll_interval: 10ms\n")
	require.NoError(t, os.WriteFile(e.configFile, []byte(b.String()), 0o600))

	e.newAPI = func(*adapter.Config, *slog.Logger) domain.SettingsAPI { return e.api }
	return e
}

func (e *testEnv) run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	c := newCLI()
	if e.newAPI != nil {
		c.newAPI = e.newAPI
	}
	root := newRootCmd(c)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", e.configFile}, args...))

	err = root.ExecuteContext(t.Context())
	c.close()
	return out.String(), errOut.String(), err
}
