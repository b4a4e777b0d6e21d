package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncStatus_Remaining(t *testing.T) {
	libs := []Library{{ID: "1", Name: "L1"}, {ID: "2", Name: "L2"}, {ID: "3", Name: "L3"}, {ID: "4", Name: "L4"}}

	t.Run("counts libraries after current", func(t *testing.T) {
		s := SyncStatus{Running: true, Progress: 3, Total: 10, CurrentLibrary: &libs[1], Libraries: libs}
		assert.Equal(t, 2, s.Remaining())
		assert.Equal(t, "L2", s.CurrentName())
	})

	t.Run("zero when current is last", func(t *testing.T) {
		s := SyncStatus{Running: true, CurrentLibrary: &libs[3], Libraries: libs}
		assert.Equal(t, 0, s.Remaining())
	})

	t.Run("zero when current absent", func(t *testing.T) {
		s := SyncStatus{Running: true, Libraries: libs}
		assert.Equal(t, 0, s.Remaining())
		assert.Equal(t, "", s.CurrentName())
	})

	t.Run("zero when current not in list", func(t *testing.T) {
		s := SyncStatus{Running: true, CurrentLibrary: &Library{ID: "9"}, Libraries: libs}
		assert.Equal(t, 0, s.Remaining())
	})
}

func TestSyncStatus_Percent(t *testing.T) {
	assert.Equal(t, 0.0, SyncStatus{Progress: 5, Total: 0}.Percent())
	assert.Equal(t, 0.3, SyncStatus{Progress: 3, Total: 10}.Percent())
	assert.Equal(t, 1.0, SyncStatus{Progress: 12, Total: 10}.Percent())
	assert.Equal(t, 0.0, SyncStatus{Progress: -1, Total: 10}.Percent())
}

func TestToggledEnabledIDs(t *testing.T) {
	libs := []Library{{ID: "1", Enabled: true}, {ID: "2"}, {ID: "3", Enabled: true}}

	assert.Equal(t, []string{"1", "2", "3"}, ToggledEnabledIDs(libs, "2"))
	assert.Equal(t, []string{"3"}, ToggledEnabledIDs(libs, "1"))
	assert.Equal(t, []string{"1", "3"}, ToggledEnabledIDs(libs, "missing"))
	assert.Equal(t, "1,3", JoinIDs(ToggledEnabledIDs(libs, "missing")))
}

func TestConnectionSettings_Address(t *testing.T) {
	c := ConnectionSettings{Host: "10.0.0.2", Port: 32400}
	assert.Equal(t, "http://10.0.0.2:32400", c.Address())
	c.UseSecureTransport = true
	assert.Equal(t, "https://10.0.0.2:32400", c.Address())
	assert.Equal(t, "", ConnectionSettings{}.Address())
}

func TestNotificationType(t *testing.T) {
	types := NotificationMediaPending.With(NotificationMediaAvailable)
	assert.True(t, types.Has(NotificationMediaPending))
	assert.False(t, types.Has(NotificationMediaFailed))
	assert.False(t, types.Has(NotificationNone))
	assert.Equal(t, []string{"media-pending", "media-available"}, types.Names())
	assert.Equal(t, NotificationMediaAvailable, types.Without(NotificationMediaPending))
	assert.Equal(t, "none", NotificationNone.String())

	parsed, err := ParseNotificationTypes("media-pending, MEDIA-AVAILABLE")
	require.NoError(t, err)
	assert.Equal(t, types, parsed)

	parsed, err = ParseNotificationTypes("none")
	require.NoError(t, err)
	assert.Equal(t, NotificationNone, parsed)

	_, err = ParseNotificationTypes("media-exploded")
	assert.Error(t, err)
}

func TestNotificationSettings_Clone(t *testing.T) {
	orig := NotificationSettings{}
	orig.SetTypes(ChannelEmail, NotificationMediaApproved)

	clone := orig.Clone()
	clone.SetTypes(ChannelEmail, NotificationNone)

	assert.Equal(t, NotificationMediaApproved, orig.Types(ChannelEmail))
	assert.Equal(t, NotificationNone, clone.Types(ChannelEmail))
	assert.Equal(t, NotificationNone, NotificationSettings{}.Types(ChannelDiscord))
}

func TestDiscoveredServer(t *testing.T) {
	s := DiscoveredServer{Name: "den", Secure: true, Address: "10.0.0.2", Port: 32400, Local: true, Status: 200}
	assert.True(t, s.Reachable())
	assert.Equal(t, "den (https://10.0.0.2:32400, local)", s.Label())
	s.Status = 503
	assert.False(t, s.Reachable())
}
