package registry

import (
	"sync"
	"sync/atomic"
)

// Shared is one reference to a reference-counted value.
//
// Every reference must be dropped exactly once. The onLast function passed to
// NewShared runs when the final reference is dropped. Dropping a reference
// while others are alive only decrements the count.
type Shared[T any] struct {
	inner   *sharedInner[T]
	dropped atomic.Bool
}

type sharedInner[T any] struct {
	value  *T
	refs   atomic.Int64
	onLast func(*T)
}

// NewShared returns the first reference to v. onLast may be nil.
func NewShared[T any](v *T, onLast func(*T)) *Shared[T] {
	in := &sharedInner[T]{value: v, onLast: onLast}
	in.refs.Store(1)
	return &Shared[T]{inner: in}
}

// Clone returns a new reference to the same value.
// Cloning a dropped reference returns nil.
func (s *Shared[T]) Clone() *Shared[T] {
	if s == nil || s.dropped.Load() {
		return nil
	}
	for {
		n := s.inner.refs.Load()
		if n <= 0 {
			return nil
		}
		if s.inner.refs.CompareAndSwap(n, n+1) {
			return &Shared[T]{inner: s.inner}
		}
	}
}

// Get returns the shared value, or nil if this reference was dropped.
func (s *Shared[T]) Get() *T {
	if s == nil || s.dropped.Load() {
		return nil
	}
	return s.inner.value
}

// Refs returns the number of live references.
func (s *Shared[T]) Refs() int64 {
	if s == nil {
		return 0
	}
	return s.inner.refs.Load()
}

// Drop releases this reference. It reports whether this was the last
// reference, in which case onLast has run. Dropping the same reference twice
// is a no-op that returns false.
func (s *Shared[T]) Drop() bool {
	if s == nil || !s.dropped.CompareAndSwap(false, true) {
		return false
	}
	if s.inner.refs.Add(-1) != 0 {
		return false
	}
	if s.inner.onLast != nil {
		s.inner.onLast(s.inner.value)
	}
	return true
}

// Mutex guards a value with a lock that remembers panics.
//
// If a function run under the lock panics, the lock is released and marked
// poisoned. Later callers still get access: the poison is recovered rather
// than propagated, and Poisoned reports it so the caller can decide whether
// the value is still trustworthy.
type Mutex[T any] struct {
	mu       sync.Mutex
	value    T
	poisoned atomic.Bool
}

// NewMutex returns a Mutex holding v.
func NewMutex[T any](v T) *Mutex[T] {
	return &Mutex[T]{value: v}
}

// NewSharedMutex returns the first reference to a lock-guarded shared value.
func NewSharedMutex[T any](v T, onLast func(*Mutex[T])) *Shared[Mutex[T]] {
	return NewShared(NewMutex(v), onLast)
}

// With runs fn while holding the lock. A panic in fn poisons the lock and is
// returned as a MutexPoisoned error. Any error from fn is returned as is.
func (m *Mutex[T]) With(fn func(*T) error) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			m.poisoned.Store(true)
			err = poisoned(recovered(r).Error())
		}
	}()
	return fn(&m.value)
}

// Poisoned reports whether a previous holder of the lock panicked.
func (m *Mutex[T]) Poisoned() bool {
	return m.poisoned.Load()
}

// ClearPoison resets the poisoned flag.
func (m *Mutex[T]) ClearPoison() {
	m.poisoned.Store(false)
}
