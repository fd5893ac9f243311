// Package ffgate hands Go values to foreign (C ABI) code as opaque addresses
// and takes them back safely.
//
// Every address is recorded in a registry together with the type it was
// created as and the way it must be destroyed. An address coming back from
// foreign code is checked against that record before use, and releasing it
// removes the record, so a second release fails instead of corrupting memory.
// Whatever is still registered at Shutdown is reported as a leak.
//
// Failures cannot cross the C boundary as Go errors. Boundary functions return
// a sentinel (0, -1, false) and leave a code and message in the calling
// thread's last-error slot; see package lasterr and the Guard helpers.
//
// For most use cases, the package-level functions backed by the default
// registry are enough. Subsystems that want their own leak accounting can
// create a registry.Registry directly.
package ffgate

import (
	"errors"
	"sync"

	"github.com/obinnaokechukwu/ffgate/registry"
)

// ErrAlreadyInitialized is returned by Configure once the default registry
// has been used.
var ErrAlreadyInitialized = errors.New("ffgate: default registry already in use")

var (
	defaultMu   sync.Mutex
	defaultReg  *registry.Registry
	defaultOpts []registry.Option
)

// Configure sets options for the default registry. It must be called before
// the first use of the default registry, otherwise ErrAlreadyInitialized is
// returned and nothing changes.
func Configure(opts ...registry.Option) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultReg != nil {
		return ErrAlreadyInitialized
	}
	defaultOpts = append(defaultOpts, opts...)
	return nil
}

// Default returns the process-wide registry, creating it on first use.
func Default() *registry.Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultReg == nil {
		opts := append([]registry.Option{registry.WithLogger(logger), registry.WithDropHook(forgetNative)}, defaultOpts...)
		defaultReg = registry.New(opts...)
	}
	return defaultReg
}

// TrackBox registers v as an exclusively owned value and returns its address.
// destroy, if non-nil, runs when the address is released.
func TrackBox[T any](v *T, destroy func(*T)) uintptr {
	return registry.RegisterBox(Default(), v, destroy)
}

// TrackShared registers one reference of s. Releasing the address drops that
// reference; the value is destroyed once every other holder has dropped too.
func TrackShared[T any](s *registry.Shared[T]) uintptr {
	return registry.RegisterShared(Default(), s)
}

// TrackMutex registers one reference of a shared, lock-protected value.
// Access it with Lock.
func TrackMutex[T any](s *registry.Shared[registry.Mutex[T]]) uintptr {
	return registry.RegisterMutex(Default(), s)
}

// Deref validates addr as a *T registered with TrackBox or TrackShared.
func Deref[T any](addr uintptr) (*T, error) {
	return registry.Get[T](Default(), addr)
}

// Borrow runs fn with shared access to the value at addr. The address cannot
// be destroyed while fn runs.
func Borrow[T any](addr uintptr, fn func(*T) error) error {
	return registry.Borrow(Default(), addr, fn)
}

// BorrowMut runs fn with exclusive access to a value registered with TrackBox.
func BorrowMut[T any](addr uintptr, fn func(*T) error) error {
	return registry.BorrowMut(Default(), addr, fn)
}

// Lock runs fn while holding the lock of a value registered with TrackMutex.
func Lock[T any](addr uintptr, fn func(*T) error) error {
	return registry.Lock(Default(), addr, fn)
}

// Free releases addr, whatever type it was registered as. Like C free,
// Free(0) does nothing and succeeds.
func Free(addr uintptr) error {
	if addr == 0 {
		return nil
	}
	return Default().Release(addr)
}

// FreeTracked is the boundary form of Free: it returns 0 on success and -1 on
// failure, recording the failure in the caller's last-error slot.
func FreeTracked(addr uintptr) int32 {
	return GuardNeg(func() (int32, error) {
		return 0, Free(addr)
	})
}

// LiveCount returns the number of addresses in the default registry.
func LiveCount() int {
	return Default().Len()
}

// Shutdown reports and clears the leaks of the default registry.
func Shutdown() registry.LeakReport {
	return Default().Shutdown()
}
