// Package syncmon polls the backend library scan and drives start/cancel.
package syncmon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/notify"
)

// DefaultInterval between status polls
const DefaultInterval = time.Second

// Update is one poll result
type Update struct {
	Status domain.SyncStatus
	Err    error
	At     time.Time
}

// Options configures a Monitor
type Options struct {
	Interval time.Duration
	Sink     notify.Sink
	Journal  domain.ActivityStore
	Observer domain.SyncObserver
	Logger   *slog.Logger
}

// Monitor owns the poll loop for one view's lifetime
type Monitor struct {
	repo     domain.SyncRepository
	interval time.Duration
	sink     notify.Sink
	journal  domain.ActivityStore
	observer domain.SyncObserver
	logger   *slog.Logger

	// one poll in flight at a time
	inflight *semaphore.Weighted

	mu     sync.RWMutex
	last   Update
	polled bool
	closed bool
	subs   []chan Update
}

// New creates a monitor. Nothing is polled until Run.
func New(repo domain.SyncRepository, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Sink == nil {
		opts.Sink = notify.Discard
	}
	if opts.Observer == nil {
		opts.Observer = domain.NoOpObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Monitor{
		repo:     repo,
		interval: opts.Interval,
		sink:     opts.Sink,
		journal:  opts.Journal,
		observer: opts.Observer,
		logger:   opts.Logger,
		inflight: semaphore.NewWeighted(1),
	}
}

// Interval returns the poll period
func (m *Monitor) Interval() time.Duration { return m.interval }

// Run polls immediately and then every interval until ctx is done. A tick
// that fires while the previous poll is still running is dropped. On return
// subscribers are closed and late results are discarded.
func (m *Monitor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	defer wg.Wait()
	defer m.teardown()

	tick := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Poll(ctx)
		}()
	}

	tick()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}

// Poll fetches status unless a poll is already in flight. Reports whether a
// fetch happened.
func (m *Monitor) Poll(ctx context.Context) bool {
	if !m.inflight.TryAcquire(1) {
		m.logger.Debug("sync poll skipped, previous still in flight")
		return false
	}
	defer m.inflight.Release(1)

	m.fetch(ctx)
	return true
}

// Refresh fetches status now, waiting for an in-flight poll to settle first
func (m *Monitor) Refresh(ctx context.Context) error {
	if err := m.inflight.Acquire(ctx, 1); err != nil {
		return err
	}
	defer m.inflight.Release(1)

	return m.fetch(ctx).Err
}

func (m *Monitor) fetch(ctx context.Context) Update {
	status, err := m.repo.GetSyncStatus(ctx)
	u := Update{Status: status, Err: err, At: time.Now()}
	if errors.Is(ctx.Err(), context.Canceled) {
		// the owner went away mid-request
		return u
	}
	if err != nil {
		m.logger.Warn("failed to poll sync status", "error", err)
	}
	m.publish(u)
	return u
}

func (m *Monitor) publish(u Update) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.last = u
	m.polled = true
	for _, ch := range m.subs {
		// keep only the newest update for slow readers
		select {
		case <-ch:
		default:
		}
		ch <- u
	}
	m.observer.OnStatus(u.Status, u.Err)
}

func (m *Monitor) teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	for _, ch := range m.subs {
		close(ch)
	}
	m.subs = nil
}

// Status returns the latest poll result. ok is false before the first poll.
func (m *Monitor) Status() (u Update, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, m.polled
}

// Subscribe returns a channel receiving each poll result. It is closed when
// Run returns.
func (m *Monitor) Subscribe() <-chan Update {
	ch := make(chan Update, 1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		close(ch)
		return ch
	}
	m.subs = append(m.subs, ch)
	return ch
}

// Start requests a full scan, then re-polls immediately
func (m *Monitor) Start(ctx context.Context) error {
	_, err := m.repo.StartSync(ctx)
	return m.afterControl(ctx, domain.ActivitySyncStart, "Failed to start library scan.", err)
}

// Cancel stops the running scan, then re-polls immediately
func (m *Monitor) Cancel(ctx context.Context) error {
	_, err := m.repo.CancelSync(ctx)
	return m.afterControl(ctx, domain.ActivitySyncStop, "Failed to cancel library scan.", err)
}

func (m *Monitor) afterControl(ctx context.Context, kind domain.ActivityKind, failure string, err error) error {
	if m.journal != nil {
		if jerr := m.journal.Record(domain.NewActivity(kind, "library scan", err)); jerr != nil {
			m.logger.Warn("failed to record activity", "error", jerr)
		}
	}
	if err != nil {
		m.logger.Error("sync control failed", "action", kind, "error", err)
		m.sink.Error(failure)
	} else {
		m.logger.Info("sync control", "action", kind)
	}

	if rerr := m.Refresh(ctx); rerr != nil && err == nil {
		m.logger.Warn("failed to refresh sync status", "error", rerr)
	}
	return err
}
