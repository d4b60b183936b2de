package model

import "sync"

// Overlay holds per-generator metadata keyed by node handle, so generators
// never write to the shared model. It is safe for concurrent use.
type Overlay[T any] struct {
	mu     sync.RWMutex
	values map[Handle]T
}

// NewOverlay returns an empty overlay.
func NewOverlay[T any]() *Overlay[T] {
	return &Overlay[T]{values: map[Handle]T{}}
}

// Get returns the value stored for h.
func (o *Overlay[T]) Get(h Handle) (T, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.values[h]
	return v, ok
}

// Set stores v for h.
func (o *Overlay[T]) Set(h Handle, v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.values[h] = v
}

// GetOrCompute returns the value for h, computing and storing it first when
// absent.
func (o *Overlay[T]) GetOrCompute(h Handle, compute func() T) T {
	if v, ok := o.Get(h); ok {
		return v
	}
	v := compute()
	o.Set(h, v)
	return v
}

// Len returns the number of stored values.
func (o *Overlay[T]) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.values)
}
