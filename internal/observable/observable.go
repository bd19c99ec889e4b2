// Package observable provides a value container that pushes every change
// to its subscribers.
package observable

// Change describes a modification to an observed value.
type Change[T any] struct {
	Old T
	New T
}

// Readable is the read-only view of a Value handed to observers.
type Readable[T any] interface {
	Get() T
	Subscribe(fn func(Change[T])) func()
}

// Value holds a single value and notifies listeners synchronously, in
// subscription order, whenever Set changes it.
//
// Value is not safe for concurrent use; it belongs to one owner, normally
// the UI thread.
type Value[T comparable] struct {
	v         T
	listeners []func(Change[T])
}

// NewValue creates a Value holding v.
func NewValue[T comparable](v T) *Value[T] {
	return &Value[T]{v: v}
}

// Get returns the current value.
func (o *Value[T]) Get() T {
	return o.v
}

// Set stores v and notifies listeners. Setting the value it already holds
// is not a change and notifies no one. It reports whether the value changed.
func (o *Value[T]) Set(v T) bool {
	if v == o.v {
		return false
	}
	old := o.v
	o.v = v
	o.notify(Change[T]{Old: old, New: v})
	return true
}

// Subscribe adds a change listener and returns an unsubscribe function.
// Calling the returned function more than once is harmless.
func (o *Value[T]) Subscribe(fn func(Change[T])) func() {
	o.listeners = append(o.listeners, fn)
	idx := len(o.listeners) - 1
	return func() {
		// Zero out to allow GC, don't reorder
		o.listeners[idx] = nil
	}
}

func (o *Value[T]) notify(c Change[T]) {
	for _, fn := range o.listeners {
		if fn != nil {
			fn(c)
		}
	}
}

var _ Readable[int] = (*Value[int])(nil)
