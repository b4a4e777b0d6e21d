// Package form implements the load, validate, submit, re-fetch cycle shared
// by every settings screen.
package form

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/notify"
	"github.com/mmcdole/seerctl/internal/validate"
)

// State of the server copy held by a form
type State int

const (
	StateLoading State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "loading"
	}
}

// Loader fetches the current server values
type Loader[T any] interface {
	Load(ctx context.Context) (T, error)
}

// Saver sends the full payload
type Saver[T any] interface {
	Save(ctx context.Context, values T) error
}

// LoaderFunc adapts a function to Loader
type LoaderFunc[T any] func(ctx context.Context) (T, error)

func (f LoaderFunc[T]) Load(ctx context.Context) (T, error) { return f(ctx) }

// SaverFunc adapts a function to Saver
type SaverFunc[T any] func(ctx context.Context, values T) error

func (f SaverFunc[T]) Save(ctx context.Context, values T) error { return f(ctx, values) }

// Validator checks pending values. A nil Validator accepts everything.
type Validator[T any] func(values T) validate.Errors

// Options tunes messages and hooks
type Options[T any] struct {
	SuccessMessage string
	ErrorMessage   string
	// AfterSave runs after a successful save and before the re-fetch
	AfterSave func(ctx context.Context, saved T)
	Logger    *slog.Logger
}

// Form binds server values to editable pending values
type Form[T any] struct {
	loader    Loader[T]
	saver     Saver[T]
	validator Validator[T]
	sink      notify.Sink
	opts      Options[T]
	logger    *slog.Logger

	mu     sync.RWMutex
	server T
	values T
	loaded bool
	err    error

	busy atomic.Bool
}

// New creates a form. Nothing is fetched until Load.
func New[T any](loader Loader[T], saver Saver[T], validator Validator[T], sink notify.Sink, opts Options[T]) *Form[T] {
	if sink == nil {
		sink = notify.Discard
	}
	if opts.SuccessMessage == "" {
		opts.SuccessMessage = "Settings saved successfully!"
	}
	if opts.ErrorMessage == "" {
		opts.ErrorMessage = "Something went wrong while saving settings."
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Form[T]{
		loader:    loader,
		saver:     saver,
		validator: validator,
		sink:      sink,
		opts:      opts,
		logger:    logger,
	}
}

// Load fetches server values and replaces pending values wholesale
func (f *Form[T]) Load(ctx context.Context) error {
	v, err := f.loader.Load(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.err = err
		return err
	}
	f.server = v
	f.values = v
	f.loaded = true
	f.err = nil
	return nil
}

// State reports loading until the first fetch settles
func (f *Form[T]) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()

	switch {
	case f.err != nil:
		return StateFailed
	case f.loaded:
		return StateReady
	default:
		return StateLoading
	}
}

// Err returns the last load error
func (f *Form[T]) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

// Server returns the last fetched server values
func (f *Form[T]) Server() T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.server
}

// Values returns the pending values
func (f *Form[T]) Values() T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values
}

// SetValues replaces the pending values
func (f *Form[T]) SetValues(v T) {
	f.mu.Lock()
	f.values = v
	f.mu.Unlock()
}

// Update edits pending values in place under the form lock
func (f *Form[T]) Update(fn func(v *T)) {
	f.mu.Lock()
	fn(&f.values)
	f.mu.Unlock()
}

// Reset discards pending edits
func (f *Form[T]) Reset() {
	f.mu.Lock()
	f.values = f.server
	f.mu.Unlock()
}

// Validate checks the pending values
func (f *Form[T]) Validate() validate.Errors {
	if f.validator == nil {
		return nil
	}
	return f.validator(f.Values())
}

// Busy reports whether a submit is in flight
func (f *Form[T]) Busy() bool { return f.busy.Load() }

// CanSubmit is false while submitting or while validation fails
func (f *Form[T]) CanSubmit() bool {
	return !f.Busy() && len(f.Validate()) == 0
}

// Submit sends the pending values. Invalid values return validate.Errors
// (matching domain.ErrInvalid); a submit in flight returns domain.ErrBusy.
// Whatever the outcome the form is re-fetched before returning.
func (f *Form[T]) Submit(ctx context.Context) error {
	if errs := f.Validate(); len(errs) > 0 {
		return errs
	}
	if !f.busy.CompareAndSwap(false, true) {
		return domain.ErrBusy
	}

	values := f.Values()
	err := f.saver.Save(ctx, values)
	if err != nil {
		f.logger.Error("failed to save settings", "error", err)
		f.sink.Error(f.opts.ErrorMessage)
	} else {
		f.sink.Success(f.opts.SuccessMessage)
	}
	f.busy.Store(false)

	if err == nil && f.opts.AfterSave != nil {
		f.opts.AfterSave(ctx, values)
	}

	if lerr := f.Load(ctx); lerr != nil {
		f.logger.Warn("failed to refresh settings after save", "error", lerr)
	}
	return err
}
