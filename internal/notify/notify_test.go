package notify

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(ttl time.Duration) (*Queue, *time.Time) {
	q := NewQueue(ttl)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return now }
	return q, &now
}

func TestQueue_OrderAndExpiry(t *testing.T) {
	q, now := newTestQueue(2 * time.Second)

	q.Info("first")
	*now = now.Add(time.Second)
	q.Success("second")
	progress := q.Progress("working")

	active := q.Active(*now)
	require.Len(t, active, 3)
	assert.Equal(t, "first", active[0].Message)
	assert.Equal(t, "second", active[1].Message)
	assert.Equal(t, KindProgress, active[2].Kind)

	*now = now.Add(1500 * time.Millisecond)
	active = q.Active(*now)
	require.Len(t, active, 2)
	assert.Equal(t, "second", active[0].Message)

	*now = now.Add(time.Hour)
	active = q.Active(*now)
	require.Len(t, active, 1)
	assert.Equal(t, progress, active[0].ID)
	assert.True(t, active[0].Persistent)
}

func TestQueue_DismissByID(t *testing.T) {
	q, now := newTestQueue(time.Minute)

	a := q.Error("a")
	b := q.Progress("b")
	q.Dismiss(b)
	q.Dismiss("unknown")

	active := q.Active(*now)
	require.Len(t, active, 1)
	assert.Equal(t, a, active[0].ID)
	assert.Equal(t, KindError, active[0].Kind)
}

func TestQueue_NextExpiry(t *testing.T) {
	q, now := newTestQueue(3 * time.Second)

	_, ok := q.NextExpiry()
	assert.False(t, ok)

	q.Progress("persistent")
	_, ok = q.NextExpiry()
	assert.False(t, ok)

	q.Info("timed")
	next, ok := q.NextExpiry()
	require.True(t, ok)
	assert.Equal(t, now.Add(3*time.Second), next)
}

func TestQueue_Subscribe(t *testing.T) {
	q, _ := newTestQueue(time.Minute)
	changes := q.Subscribe()

	id := q.Info("x")
	q.Info("y")

	select {
	case <-changes:
	default:
		t.Fatal("expected change signal after push")
	}

	q.Dismiss(id)
	select {
	case <-changes:
	default:
		t.Fatal("expected change signal after dismiss")
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(&buf, nil)

	s.Success("saved")
	s.Error("failed")
	s.Dismiss(s.Progress("working"))

	assert.Equal(t, "✓ saved\n✗ failed\n… working\n", buf.String())
}
