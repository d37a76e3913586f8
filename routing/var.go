// Package routing holds the cluster routing state as observable values
// and dispatches requests to the broker channels that own them.
package routing

import "sync"

// Var is an observable value: a container exposing a snapshot, a
// serialized update, and change subscription. Derived values register on
// their inputs and republish on change.
type Var[T any] struct {
	mu   sync.Mutex
	val  T
	subs []func(T)
}

// NewVar creates a Var holding initial.
func NewVar[T any](initial T) *Var[T] {
	return &Var[T]{val: initial}
}

// Load returns the current snapshot. Map snapshots are shared; treat them
// as read-only and replace wholesale via Update.
func (v *Var[T]) Load() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.val
}

// Update replaces the value with f(current) and notifies subscribers.
// Updates are linearized per Var.
func (v *Var[T]) Update(f func(T) T) {
	v.mu.Lock()
	v.val = f(v.val)
	val := v.val
	subs := v.subs
	v.mu.Unlock()

	for _, sub := range subs {
		sub(val)
	}
}

// Subscribe registers fn to run after every update, with the new value.
func (v *Var[T]) Subscribe(fn func(T)) {
	v.mu.Lock()
	v.subs = append(v.subs, fn)
	v.mu.Unlock()
}

// Derive builds a Var recomputed from a and b whenever either changes.
// Equal successive derived values are suppressed, so a change to an input
// settles downstream at most once.
func Derive[A, B, C any](a *Var[A], b *Var[B], f func(A, B) C, eq func(C, C) bool) *Var[C] {
	d := NewVar(f(a.Load(), b.Load()))

	recompute := func() {
		next := f(a.Load(), b.Load())
		d.mu.Lock()
		if eq(d.val, next) {
			d.mu.Unlock()
			return
		}
		d.val = next
		subs := d.subs
		d.mu.Unlock()

		for _, sub := range subs {
			sub(next)
		}
	}

	a.Subscribe(func(A) { recompute() })
	b.Subscribe(func(B) { recompute() })

	return d
}
