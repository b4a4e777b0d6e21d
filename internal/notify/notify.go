// Package notify carries transient user notifications ("toasts") from
// request flows to whatever surface displays them.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the visual class of a toast
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindError
	KindProgress
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	case KindProgress:
		return "progress"
	default:
		return "info"
	}
}

// Toast is one queued message
type Toast struct {
	ID         string
	Kind       Kind
	Message    string
	Persistent bool // stays until dismissed by ID
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Sink is the notification capability handed to components
type Sink interface {
	Info(msg string) string
	Success(msg string) string
	Error(msg string) string
	// Progress posts a persistent toast that stays until dismissed
	Progress(msg string) string
	Dismiss(id string)
}

const defaultTTL = 4 * time.Second

// Queue is an ordered list of timed toasts
type Queue struct {
	mu      sync.Mutex
	toasts  []Toast
	ttl     time.Duration
	now     func() time.Time
	subs    []chan struct{}
}

var _ Sink = (*Queue)(nil)

// NewQueue creates a queue whose non-persistent toasts live for ttl
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Queue{
		ttl: ttl,
		now: time.Now,
	}
}

// Push appends a toast and returns its ID
func (q *Queue) Push(kind Kind, msg string, persistent bool) string {
	now := q.now()
	t := Toast{
		ID:         uuid.NewString(),
		Kind:       kind,
		Message:    msg,
		Persistent: persistent,
		CreatedAt:  now,
	}
	if !persistent {
		t.ExpiresAt = now.Add(q.ttl)
	}

	q.mu.Lock()
	q.toasts = append(q.toasts, t)
	q.mu.Unlock()

	q.signal()
	return t.ID
}

func (q *Queue) Info(msg string) string     { return q.Push(KindInfo, msg, false) }
func (q *Queue) Success(msg string) string  { return q.Push(KindSuccess, msg, false) }
func (q *Queue) Error(msg string) string    { return q.Push(KindError, msg, false) }
func (q *Queue) Progress(msg string) string { return q.Push(KindProgress, msg, true) }

// Dismiss removes a toast by ID. Unknown IDs are ignored.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	removed := false
	for i, t := range q.toasts {
		if t.ID == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			removed = true
			break
		}
	}
	q.mu.Unlock()

	if removed {
		q.signal()
	}
}

// Active prunes toasts expired at now and returns the rest in insertion order
func (q *Queue) Active(now time.Time) []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.toasts[:0]
	for _, t := range q.toasts {
		if t.Persistent || now.Before(t.ExpiresAt) {
			kept = append(kept, t)
		}
	}
	// drop references held past the new length
	for i := len(kept); i < len(q.toasts); i++ {
		q.toasts[i] = Toast{}
	}
	q.toasts = kept

	out := make([]Toast, len(kept))
	copy(out, kept)
	return out
}

// NextExpiry returns when the earliest timed toast expires
func (q *Queue) NextExpiry() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var next time.Time
	for _, t := range q.toasts {
		if t.Persistent {
			continue
		}
		if next.IsZero() || t.ExpiresAt.Before(next) {
			next = t.ExpiresAt
		}
	}
	return next, !next.IsZero()
}

// Subscribe returns a channel signalled whenever toasts are pushed or
// dismissed. Signals coalesce; a slow reader sees at most one pending.
func (q *Queue) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	q.mu.Lock()
	q.subs = append(q.subs, ch)
	q.mu.Unlock()
	return ch
}

func (q *Queue) signal() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, ch := range q.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// LogSink writes toasts as lines to w and logs them. Used by the CLI where
// there is no toast surface.
type LogSink struct {
	out    io.Writer
	logger *slog.Logger
}

var _ Sink = (*LogSink)(nil)

// NewLogSink creates a LogSink. A nil writer only logs.
func NewLogSink(out io.Writer, logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{out: out, logger: logger}
}

func (s *LogSink) emit(kind Kind, prefix, msg string) string {
	id := uuid.NewString()
	if s.out != nil {
		fmt.Fprintf(s.out, "%s %s\n", prefix, msg)
	}
	level := slog.LevelInfo
	if kind == KindError {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, "notification", "kind", kind.String(), "message", msg)
	return id
}

func (s *LogSink) Info(msg string) string     { return s.emit(KindInfo, "·", msg) }
func (s *LogSink) Success(msg string) string  { return s.emit(KindSuccess, "✓", msg) }
func (s *LogSink) Error(msg string) string    { return s.emit(KindError, "✗", msg) }
func (s *LogSink) Progress(msg string) string { return s.emit(KindProgress, "…", msg) }
func (s *LogSink) Dismiss(string)             {}

// Discard is a Sink that drops everything
var Discard Sink = discard{}

type discard struct{}

func (discard) Info(string) string     { return "" }
func (discard) Success(string) string  { return "" }
func (discard) Error(string) string    { return "" }
func (discard) Progress(string) string { return "" }
func (discard) Dismiss(string)         {}
