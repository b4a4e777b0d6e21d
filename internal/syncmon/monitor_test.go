package syncmon

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	polls   atomic.Int32
	gate    chan struct{} // blocks GetSyncStatus when set
	entered chan struct{}

	mu       sync.Mutex
	running  bool
	controls []string
	startErr error
}

func (f *fakeRepo) GetSyncStatus(ctx context.Context) (domain.SyncStatus, error) {
	f.polls.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return domain.SyncStatus{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.SyncStatus{Running: f.running, Total: 10, Progress: 5}, nil
}

func (f *fakeRepo) StartSync(context.Context) (domain.SyncStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controls = append(f.controls, "start")
	if f.startErr != nil {
		return domain.SyncStatus{}, f.startErr
	}
	f.running = true
	return domain.SyncStatus{Running: true}, nil
}

func (f *fakeRepo) CancelSync(context.Context) (domain.SyncStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controls = append(f.controls, "cancel")
	f.running = false
	return domain.SyncStatus{}, nil
}

type countingObserver struct {
	n atomic.Int32
}

func (o *countingObserver) OnStatus(domain.SyncStatus, error) { o.n.Add(1) }

func TestMonitor_FirstPollIsImmediate(t *testing.T) {
	repo := &fakeRepo{}
	m := New(repo, Options{Interval: time.Hour})
	updates := m.Subscribe()

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	select {
	case u := <-updates:
		require.NoError(t, u.Err)
		assert.Equal(t, 10, u.Status.Total)
	case <-time.After(2 * time.Second):
		t.Fatal("no immediate poll")
	}

	status, ok := m.Status()
	assert.True(t, ok)
	assert.Equal(t, 5, status.Status.Progress)

	cancel()
	<-done

	_, open := <-updates
	assert.False(t, open, "subscriber channel should close on teardown")
}

func TestMonitor_PollsOnInterval(t *testing.T) {
	repo := &fakeRepo{}
	obs := &countingObserver{}
	m := New(repo, Options{Interval: 10 * time.Millisecond, Observer: obs})

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go m.Run(ctx)

	assert.Eventually(t, func() bool { return repo.polls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return obs.n.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestMonitor_OverlappingPollDropped(t *testing.T) {
	repo := &fakeRepo{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	m := New(repo, Options{})

	first := make(chan bool, 1)
	go func() { first <- m.Poll(context.Background()) }()
	<-repo.entered

	assert.False(t, m.Poll(t.Context()), "second poll should be dropped while first in flight")
	assert.Equal(t, int32(1), repo.polls.Load())

	close(repo.gate)
	assert.True(t, <-first)
}

func TestMonitor_StartAndCancelRepollImmediately(t *testing.T) {
	repo := &fakeRepo{}
	m := New(repo, Options{Interval: time.Hour})

	require.NoError(t, m.Start(t.Context()))
	assert.Equal(t, int32(1), repo.polls.Load())
	u, ok := m.Status()
	require.True(t, ok)
	assert.True(t, u.Status.Running)

	require.NoError(t, m.Cancel(t.Context()))
	assert.Equal(t, int32(2), repo.polls.Load())
	u, _ = m.Status()
	assert.False(t, u.Status.Running)

	assert.Equal(t, []string{"start", "cancel"}, repo.controls)
}

func TestMonitor_StartErrorStillRepolls(t *testing.T) {
	repo := &fakeRepo{startErr: domain.ErrServerOffline}
	m := New(repo, Options{})

	require.ErrorIs(t, m.Start(t.Context()), domain.ErrServerOffline)
	assert.Equal(t, int32(1), repo.polls.Load())
}

func TestMonitor_LateResultsDiscarded(t *testing.T) {
	repo := &fakeRepo{}
	m := New(repo, Options{Interval: time.Hour})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	m.Run(ctx)

	repo.mu.Lock()
	repo.running = true
	repo.mu.Unlock()

	m.Poll(t.Context())
	u, _ := m.Status()
	assert.False(t, u.Status.Running, "poll after teardown must not be published")

	_, open := <-m.Subscribe()
	assert.False(t, open)
}

func TestMonitor_CancelledPollNotPublished(t *testing.T) {
	repo := &fakeRepo{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	obs := &countingObserver{}
	m := New(repo, Options{Interval: time.Hour, Observer: obs})

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		m.Poll(ctx)
		close(done)
	}()

	<-repo.entered
	cancel()
	<-done

	_, ok := m.Status()
	assert.False(t, ok)
	assert.Zero(t, obs.n.Load())
}
