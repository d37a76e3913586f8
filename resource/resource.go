// Package resource provides a supervised holder for a value whose
// creation may fail and must be retried, serializing re-creation so that
// at most one creator runs at any instant while concurrent callers wait
// for its result.
package resource

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
)

// ErrEscalated wraps an error the recovery handler refused to recover.
var ErrEscalated = errors.New("resource: escalated")

// Verdict is a recovery handler's decision about an error.
type Verdict int

const (
	// Ignore treats the error as benign; the value is kept.
	Ignore Verdict = iota
	// Recreate disposes the value and builds a fresh one.
	Recreate
	// Escalate refuses recovery; the error surfaces to the caller.
	Escalate
)

const (
	stateIdle int32 = iota
	stateCreating
)

// CreateFunc builds a new value.
type CreateFunc[R any] func(ctx context.Context) (R, error)

// RecoverFunc decides what to do about an error observed while using the
// current value.
type RecoverFunc[R any] func(cur R, err error) Verdict

// HeartbeatFunc supervises a freshly created value. A non-nil return is
// fed to the recovery handler.
type HeartbeatFunc[R any] func(cur R) error

type creation[R any] struct {
	done chan struct{}
	val  R
	err  error
}

// Resource holds the current value and serializes its re-creation. The
// zero Resource is not usable; use New.
type Resource[R any] struct {
	createFn  CreateFunc[R]
	recoverFn RecoverFunc[R]
	heartbeat HeartbeatFunc[R]

	st       atomic.Int32
	val      atomic.Pointer[R]
	inflight atomic.Pointer[creation[R]]
}

// New builds a Resource from a creator and a recovery handler. The first
// value is created lazily on first use.
func New[R any](create CreateFunc[R], handler RecoverFunc[R], opts ...Option[R]) *Resource[R] {
	r := &Resource[R]{createFn: create, recoverFn: handler}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create builds a successor value. Exactly one caller runs the creator;
// every overlapping caller returns after that creator has published its
// result, observing the same value or the same failure.
func (r *Resource[R]) Create(ctx context.Context) (R, error) {
	var zero R

	for {
		if r.st.CompareAndSwap(stateIdle, stateCreating) {
			c := &creation[R]{done: make(chan struct{})}
			r.inflight.Store(c)

			c.val, c.err = r.createFn(ctx)
			if c.err == nil {
				v := c.val
				r.val.Store(&v)
			}

			r.st.Store(stateIdle)
			close(c.done)

			if c.err != nil {
				return zero, fmt.Errorf("resource - Create - create: %w", c.err)
			}
			if r.heartbeat != nil {
				go r.superviseHeartbeat(c.val)
			}
			return c.val, nil
		}

		c := r.inflight.Load()
		if c == nil {
			// The winner has claimed the state but not yet published
			// its creation record.
			runtime.Gosched()
			continue
		}

		select {
		case <-c.done:
		case <-ctx.Done():
			return zero, ctx.Err()
		}

		// A closed creation record that is no longer current means we
		// raced a previous round; go wait on the live one.
		if r.st.Load() == stateCreating && r.inflight.Load() == c {
			runtime.Gosched()
			continue
		}

		if c.err != nil {
			return zero, fmt.Errorf("resource - Create - create: %w", c.err)
		}
		return c.val, nil
	}
}

// Current returns the published value without creating one.
func (r *Resource[R]) Current() (R, bool) {
	if v := r.val.Load(); v != nil {
		return *v, true
	}
	var zero R
	return zero, false
}

// Get returns the current value, creating the first one on demand.
func (r *Resource[R]) Get(ctx context.Context) (R, error) {
	if v := r.val.Load(); v != nil {
		return *v, nil
	}
	return r.Create(ctx)
}

// Recover applies the handler's verdict to err. It returns nil when the
// resource is usable again (the error was ignored or a successor value
// was created) and an error when recovery was refused or re-creation
// failed.
func (r *Resource[R]) Recover(ctx context.Context, err error) error {
	var cur R
	if v := r.val.Load(); v != nil {
		cur = *v
	}

	switch r.recoverFn(cur, err) {
	case Ignore:
		return nil
	case Recreate:
		if _, cerr := r.Create(ctx); cerr != nil {
			return cerr
		}
		return nil
	default:
		return fmt.Errorf("%w: %w", ErrEscalated, err)
	}
}

func (r *Resource[R]) superviseHeartbeat(val R) {
	if err := r.heartbeat(val); err != nil {
		// Recovery failures here have no caller to surface to; the next
		// injected operation re-observes the broken value and retries.
		_ = r.Recover(context.Background(), err)
	}
}

// Inject wraps op so that every call reads the resource's current value,
// invokes op against it, and on failure consults the recovery handler and
// retries against the freshly re-read value. Retries are unbounded;
// termination relies on the handler eventually escalating.
func Inject[R, A, B any](r *Resource[R], op func(ctx context.Context, cur R, arg A) (B, error)) func(context.Context, A) (B, error) {
	return func(ctx context.Context, arg A) (B, error) {
		var zero B

		for {
			cur, err := r.Get(ctx)
			if err != nil {
				return zero, err
			}

			out, err := op(ctx, cur, arg)
			if err == nil {
				return out, nil
			}
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			if rerr := r.Recover(ctx, err); rerr != nil {
				return zero, rerr
			}
		}
	}
}
