package registry

import "fmt"

// RegisterBox registers v as the single owner of an exclusive allocation
// tagged T. destroy, if not nil, runs with v when the address is released.
func RegisterBox[T any](r *Registry, v *T, destroy func(*T)) uintptr {
	var fn func()
	if destroy != nil {
		fn = func() { destroy(v) }
	}
	return r.Register(TagOf[T](), v, ExclusiveCleanup(fn))
}

// RegisterShared registers one reference of a shared allocation tagged T.
// The registry owns s from now on and drops it on release; other references
// keep the value alive.
func RegisterShared[T any](r *Registry, s *Shared[T]) uintptr {
	return r.Register(TagOf[T](), s, SharedCleanup(func() { s.Drop() }))
}

// RegisterMutex registers one reference of a lock-guarded shared allocation.
// It is tagged Mutex[T], so it can only be reached through Lock, never as a
// bare *T.
func RegisterMutex[T any](r *Registry, s *Shared[Mutex[T]]) uintptr {
	return r.Register(TagOf[Mutex[T]](), s, SharedMutableCleanup(func() { s.Drop() }))
}

// deref extracts the *T held by an entry. It fails for values registered
// through Register that are neither *T nor *Shared[T], and for shared
// references that were already dropped.
func deref[T any](addr uintptr, tag Tag, v any) (*T, error) {
	var p *T
	switch x := v.(type) {
	case *T:
		p = x
	case *Shared[T]:
		p = x.Get()
	}
	if p == nil {
		return nil, &Error{Kind: KindOther, Addr: addr, Detail: fmt.Sprintf("%s at 0x%x holds %T, not *%s", tag, addr, v, TagOf[T]())}
	}
	return p, nil
}

// Get validates addr as T and returns the value. It works for exclusive and
// shared entries. The pointer is not pinned; see Borrow.
func Get[T any](r *Registry, addr uintptr) (*T, error) {
	tag := TagOf[T]()
	v, err := r.Lookup(addr, tag)
	if err != nil {
		return nil, err
	}
	return deref[T](addr, tag, v)
}

// Borrow validates addr as T and calls fn with read access to the value.
// A concurrent release waits for fn to return before destroying the value.
// fn must not release addr.
func Borrow[T any](r *Registry, addr uintptr, fn func(*T) error) error {
	return r.use(addr, TagOf[T](), func(e *entry) error {
		v, err := deref[T](addr, e.tag, e.value)
		if err != nil {
			return err
		}
		if e.cleanup.strategy == StrategyExclusive {
			e.access.RLock()
			defer e.access.RUnlock()
		}
		return fn(v)
	})
}

// BorrowMut validates addr as T and calls fn with exclusive write access.
// Only exclusive entries can be borrowed mutably; shared entries fail with
// ReadOnly. Guarded shared values are reached with Lock instead.
func BorrowMut[T any](r *Registry, addr uintptr, fn func(*T) error) error {
	return r.use(addr, TagOf[T](), func(e *entry) error {
		if e.cleanup.strategy != StrategyExclusive {
			return &Error{Kind: KindReadOnly, Addr: addr, Found: e.tag}
		}
		v, err := deref[T](addr, e.tag, e.value)
		if err != nil {
			return err
		}
		e.access.Lock()
		defer e.access.Unlock()
		return fn(v)
	})
}

// GetShared validates addr as T and returns a new reference to the shared
// value. The caller owns the returned reference and must Drop it; it keeps
// the value alive even if addr is released meanwhile.
func GetShared[T any](r *Registry, addr uintptr) (*Shared[T], error) {
	var out *Shared[T]
	err := r.use(addr, TagOf[T](), func(e *entry) error {
		s, ok := e.value.(*Shared[T])
		if !ok {
			return &Error{Kind: KindOther, Addr: addr, Detail: fmt.Sprintf("%s at 0x%x is not shared", e.tag, addr)}
		}
		out = s.Clone()
		if out == nil {
			return untracked(addr)
		}
		return nil
	})
	return out, err
}

// Lock validates addr as a Mutex[T] allocation and calls fn while holding its
// interior lock. The registry lock is released before the interior lock is
// taken. A lock poisoned by an earlier panic is recovered, not propagated.
func Lock[T any](r *Registry, addr uintptr, fn func(*T) error) error {
	return r.use(addr, TagOf[Mutex[T]](), func(e *entry) error {
		m, err := deref[Mutex[T]](addr, e.tag, e.value)
		if err != nil {
			return err
		}
		if m.Poisoned() {
			r.log.Warn("recovering poisoned lock", "addr", hexAddr(addr), "tag", e.tag.String())
		}
		return m.With(fn)
	})
}
