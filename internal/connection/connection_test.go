package connection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	settings domain.ConnectionSettings
	devices  []domain.Device
	calls    []string
	enabled  [][]string

	saveErr    error
	syncErr    error
	enableErr  error
	devicesErr error
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
	return f.settings, nil
}

func (f *fakeAPI) SaveConnection(_ context.Context, s domain.ConnectionSettings) error {
	f.log("save")
	if f.saveErr != nil {
		return f.saveErr
	}
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
	return f.devices, f.devicesErr
}

func (f *fakeAPI) SyncLibraries(context.Context) error {
	f.log("sync")
	return f.syncErr
}

func (f *fakeAPI) EnableLibraries(_ context.Context, ids []string) error {
	f.log("enable")
	if f.enableErr != nil {
		return f.enableErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = append(f.enabled, ids)
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for i := range f.settings.Libraries {
		f.settings.Libraries[i].Enabled = set[f.settings.Libraries[i].ID]
	}
	return nil
}

type memJournal struct {
	entries []domain.Activity
}

func (j *memJournal) Record(a domain.Activity) error { j.entries = append(j.entries, a); return nil }
func (j *memJournal) Recent(int) ([]domain.Activity, error) { return j.entries, nil }
func (j *memJournal) Clear() error                       { j.entries = nil; return nil }
func (j *memJournal) Close() error                       { return nil }

type sinkRecorder struct {
	mu        sync.Mutex
	events    []string
	dismissed []string
}

func (s *sinkRecorder) push(kind, msg string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, kind+":"+msg)
	return kind + "-id"
}

func (s *sinkRecorder) Info(m string) string     { return s.push("info", m) }
func (s *sinkRecorder) Success(m string) string  { return s.push("success", m) }
func (s *sinkRecorder) Error(m string) string    { return s.push("error", m) }
func (s *sinkRecorder) Progress(m string) string { return s.push("progress", m) }
func (s *sinkRecorder) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "dismiss:"+id)
	s.dismissed = append(s.dismissed, id)
}

func TestRank_ReachableThenSecure(t *testing.T) {
	in := []domain.DiscoveredServer{
		{Name: "a", Status: 500, Secure: true},
		{Name: "b", Status: 200, Secure: false},
		{Name: "c", Status: 200, Secure: true},
	}

	ranked := Rank(in)

	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{ranked[0].Name, ranked[1].Name, ranked[2].Name})
	// input untouched
	assert.Equal(t, "a", in[0].Name)
}

func TestRank_StableWithinGroup(t *testing.T) {
	in := []domain.DiscoveredServer{
		{Name: "x1", Status: 200},
		{Name: "x2", Status: 200},
		{Name: "x3", Status: 200},
	}
	assert.Equal(t, in, Rank(in))
}

func TestFlatten(t *testing.T) {
	devices := []domain.Device{
		{Name: "Home", Connections: []domain.DeviceConnection{
			{Protocol: "https", Address: "10.0.0.2", Port: 32400, Local: true, Status: 200},
			{Protocol: "http", Address: "203.0.113.9", Port: 32400, Status: 408, Message: "timeout"},
		}},
		{Name: "Empty"},
	}

	servers := Flatten(devices)
	require.Len(t, servers, 2)
	assert.True(t, servers[0].Secure)
	assert.True(t, servers[0].Local)
	assert.False(t, servers[1].Secure)
	assert.Equal(t, "timeout", servers[1].Message)
	assert.False(t, servers[1].Reachable())
}

func TestFilter(t *testing.T) {
	servers := []domain.DiscoveredServer{
		{Name: "Living Room", Address: "10.0.0.5", Port: 32400},
		{Name: "Basement", Address: "10.0.0.9", Port: 32400},
	}

	assert.Equal(t, servers, Filter(servers, "  "))

	got := Filter(servers, "basement")
	require.Len(t, got, 1)
	assert.Equal(t, "Basement", got[0].Name)

	assert.Empty(t, Filter(servers, "zzz"))
}

func TestApply(t *testing.T) {
	values := Values{Host: "old", Port: "1"}

	err := Apply(&values, domain.DiscoveredServer{Name: "x", Address: "10.0.0.2", Port: 443, Status: 500, Secure: true})
	require.ErrorIs(t, err, domain.ErrUnreachable)
	assert.Equal(t, "old", values.Host)

	require.NoError(t, Apply(&values, domain.DiscoveredServer{Name: "x", Address: "10.0.0.2", Port: 443, Status: 200, Secure: true}))
	assert.Equal(t, Values{Host: "10.0.0.2", Port: "443", UseSecureTransport: true}, values)
}

func TestDiscoverer_Refresh(t *testing.T) {
	api := &fakeAPI{devices: []domain.Device{{Name: "Home", Connections: []domain.DeviceConnection{
		{Protocol: "http", Address: "a", Port: 1, Status: 200},
		{Protocol: "https", Address: "b", Port: 2, Status: 200},
	}}}}
	sink := &sinkRecorder{}
	journal := &memJournal{}

	servers, err := NewDiscoverer(api, sink, journal, nil).Refresh(t.Context())
	require.NoError(t, err)
	require.Len(t, servers, 2)
	assert.Equal(t, "b", servers[0].Address)

	assert.Equal(t, []string{
		"progress:Retrieving servers…",
		"dismiss:progress-id",
		"success:Found 2 connections",
	}, sink.events)
	require.Len(t, journal.entries, 1)
	assert.Equal(t, domain.ActivityDiscover, journal.entries[0].Kind)
	assert.True(t, journal.entries[0].OK)
}

func TestDiscoverer_RefreshError(t *testing.T) {
	api := &fakeAPI{devicesErr: domain.ErrServerOffline}
	sink := &sinkRecorder{}

	_, err := NewDiscoverer(api, sink, nil, nil).Refresh(t.Context())
	require.ErrorIs(t, err, domain.ErrServerOffline)
	assert.Equal(t, []string{"dismiss:progress-id"}, sink.dismissed)
	assert.Equal(t, "error:Failed to retrieve servers.", sink.events[len(sink.events)-1])
}

func TestValidate(t *testing.T) {
	assert.Empty(t, Validate(Values{Host: "plex.lan", Port: "32400"}))

	errs := Validate(Values{Host: "", Port: "99999"})
	assert.True(t, errs.Has("Host"))
	assert.True(t, errs.Has("Port"))
}

func TestValues_RoundTrip(t *testing.T) {
	s := domain.ConnectionSettings{Name: "Home", Host: "plex.lan", Port: 32400, UseSecureTransport: true}
	v := FromSettings(s)
	assert.Equal(t, "32400", v.Port)

	back, err := v.ToSettings()
	require.NoError(t, err)
	assert.Equal(t, s, back)

	v.Port = "x"
	_, err = v.ToSettings()
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestForm_SubmitSyncsLibrariesThenRefetches(t *testing.T) {
	api := &fakeAPI{settings: domain.ConnectionSettings{Host: "old", Port: 32400}}
	sink := &sinkRecorder{}
	journal := &memJournal{}
	svc := NewService(api, sink, journal, nil)

	f := svc.NewForm()
	require.NoError(t, f.Load(t.Context()))
	f.Update(func(v *Values) { v.Host = "new.lan" })

	require.NoError(t, f.Submit(t.Context()))

	assert.Equal(t, []string{"get", "save", "sync", "get", "get"}, api.calls)
	assert.Equal(t, "new.lan", f.Server().Host)
	assert.Contains(t, sink.events, "success:Connection settings saved successfully!")
	require.Len(t, journal.entries, 2)
	assert.Equal(t, domain.ActivitySubmit, journal.entries[0].Kind)
	assert.Equal(t, domain.ActivityLibraries, journal.entries[1].Kind)
}

func TestForm_LibrarySyncFailureDoesNotFailSubmit(t *testing.T) {
	api := &fakeAPI{settings: domain.ConnectionSettings{Host: "old", Port: 32400}, syncErr: errors.New("media server down")}
	sink := &sinkRecorder{}
	f := NewService(api, sink, nil, nil).NewForm()
	require.NoError(t, f.Load(t.Context()))

	require.NoError(t, f.Submit(t.Context()))
	assert.Contains(t, sink.events, "error:Failed to sync libraries.")
}

func TestForm_SubmitFailureStillRefetches(t *testing.T) {
	api := &fakeAPI{settings: domain.ConnectionSettings{Host: "old", Port: 32400}, saveErr: domain.ErrRequestFailed}
	f := NewService(api, nil, nil, nil).NewForm()
	require.NoError(t, f.Load(t.Context()))
	f.Update(func(v *Values) { v.Host = "new.lan" })

	require.ErrorIs(t, f.Submit(t.Context()), domain.ErrRequestFailed)
	assert.Equal(t, []string{"get", "save", "get"}, api.calls)
	assert.Equal(t, "old", f.Values().Host)
}

func TestToggleLibrary(t *testing.T) {
	api := &fakeAPI{settings: domain.ConnectionSettings{Libraries: []domain.Library{
		{ID: "1", Name: "Movies", Enabled: true},
		{ID: "2", Name: "Shows", Enabled: false},
	}}}
	journal := &memJournal{}
	svc := NewService(api, nil, journal, nil)

	got, err := svc.ToggleLibrary(t.Context(), "2")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2"}}, api.enabled)
	assert.Equal(t, []string{"1", "2"}, got.EnabledLibraryIDs())
	assert.Equal(t, []string{"get", "enable", "get"}, api.calls)
	require.Len(t, journal.entries, 1)
	assert.Equal(t, "Shows", journal.entries[0].Subject)

	got, err = svc.ToggleLibrary(t.Context(), "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, got.EnabledLibraryIDs())
}

func TestToggleLibrary_Unknown(t *testing.T) {
	api := &fakeAPI{}
	_, err := NewService(api, nil, nil, nil).ToggleLibrary(t.Context(), "9")
	require.ErrorIs(t, err, domain.ErrLibraryNotFound)
	assert.Equal(t, []string{"get"}, api.calls)
}

func TestToggleLibrary_FailureRefetches(t *testing.T) {
	api := &fakeAPI{
		settings:  domain.ConnectionSettings{Libraries: []domain.Library{{ID: "1", Name: "Movies"}}},
		enableErr: domain.ErrRequestFailed,
	}
	sink := &sinkRecorder{}
	_, err := NewService(api, sink, nil, nil).ToggleLibrary(t.Context(), "1")
	require.ErrorIs(t, err, domain.ErrRequestFailed)
	assert.Equal(t, []string{"get", "enable", "get"}, api.calls)
	assert.Equal(t, []string{"error:Failed to update libraries."}, sink.events)
}
