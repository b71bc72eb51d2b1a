// Package observe provides a thread-safe observable cell: one writer sets
// values, any number of readers get the latest one or subscribe to changes.
package observe

import (
	"sync"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

// Compile-time interface check.
var _ types.Observable[int] = (*Value[int])(nil)

// Value holds the latest published value of type T.
//
// Subscribers receive values through a channel with a buffer of one. When a
// subscriber has not consumed the previous value, the pending value is
// replaced, so a slow reader always sees the most recent state and never
// blocks the writer.
type Value[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   map[uint64]chan T
	nextID uint64
}

// NewValue returns a cell holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		value: initial,
		subs:  make(map[uint64]chan T),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set publishes a new value to the cell and all subscribers.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.value = value
	for _, ch := range v.subs {
		offer(ch, value)
	}
}

// Subscribe returns a channel primed with the current value. cancel removes
// the subscription and closes the channel; it is safe to call more than once.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextID
	v.nextID++
	ch := make(chan T, 1)
	ch <- v.value
	v.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			delete(v.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of live subscriptions.
func (v *Value[T]) Subscribers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.subs)
}

// offer places value in ch, replacing a pending value if the buffer is full.
// The caller holds the write lock, so there is no competing sender.
func offer[T any](ch chan T, value T) {
	select {
	case ch <- value:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- value
}
