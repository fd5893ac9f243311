//go:build (darwin || freebsd || linux || netbsd || windows) && !ios && !android && (amd64 || arm64)

package ffgate

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/obinnaokechukwu/ffgate/internal/bindings"
	"github.com/obinnaokechukwu/ffgate/registry"
)

// Errors re-exported from the native loader
var (
	// ErrNotLoaded indicates the C runtime is not loaded.
	ErrNotLoaded = bindings.ErrNotLoaded

	// ErrLibraryNotFound indicates no C runtime library could be opened.
	ErrLibraryNotFound = bindings.ErrLibraryNotFound
)

// Init loads the C runtime used for native allocations. It is called
// automatically by CString and CBytes, but can be called explicitly to check
// for errors. It is safe to call multiple times.
func Init() error {
	return bindings.Load()
}

// IsLoaded returns true if the C runtime has been successfully loaded.
func IsLoaded() bool {
	return bindings.IsLoaded()
}

// LibraryPath returns the C runtime native allocations come from, or "" if
// it has not been loaded.
func LibraryPath() string {
	return bindings.LibraryPath()
}

type (
	cString struct{}
	cBytes  struct{}
)

var (
	cStringTag = registry.TagOf[cString]()
	cBytesTag  = registry.TagOf[cBytes]()
)

// NativeUsage reports native memory currently handed out by CString and CBytes.
type NativeUsage struct {
	Strings     int
	StringBytes int64
	Buffers     int
	BufferBytes int64
}

// Total returns the bytes held across both kinds.
func (u NativeUsage) Total() int64 {
	return u.StringBytes + u.BufferBytes
}

var (
	nativeMu          sync.Mutex
	nativeLimitBytes  atomic.Int64
	nativeStrings     atomic.Int64
	nativeStringBytes atomic.Int64
	nativeBuffers     atomic.Int64
	nativeBufferBytes atomic.Int64
)

// SetNativeMemoryLimit sets a best-effort limit for the total bytes held by
// CString and CBytes allocations. A limit <= 0 disables enforcement.
func SetNativeMemoryLimit(bytes int64) {
	nativeLimitBytes.Store(bytes)
}

// NativeMemoryUsage returns the current allocation counts and bytes.
func NativeMemoryUsage() NativeUsage {
	return NativeUsage{
		Strings:     int(nativeStrings.Load()),
		StringBytes: nativeStringBytes.Load(),
		Buffers:     int(nativeBuffers.Load()),
		BufferBytes: nativeBufferBytes.Load(),
	}
}

func account(tag registry.Tag, size int64, delta int64) {
	if tag == cStringTag {
		nativeStrings.Add(delta)
		nativeStringBytes.Add(delta * size)
		return
	}
	nativeBuffers.Add(delta)
	nativeBufferBytes.Add(delta * size)
}

// forgetNative removes a native allocation that Shutdown dropped from the
// usage counters, so the memory limit only counts what is still tracked.
func forgetNative(e registry.Entry) {
	if e.Tag == cStringTag || e.Tag == cBytesTag {
		account(e.Tag, e.Size, -1)
	}
}

// allocTracked copies data plus nul trailing zero bytes into zeroed native memory and
// tracks the result under tag in the default registry.
func allocTracked(tag registry.Tag, data []byte, nul int) (uintptr, error) {
	if err := Init(); err != nil {
		return 0, err
	}
	size := len(data) + nul
	if size == 0 {
		size = 1
	}

	nativeMu.Lock()
	defer nativeMu.Unlock()

	if lim := nativeLimitBytes.Load(); lim > 0 {
		if NativeMemoryUsage().Total()+int64(size) > lim {
			return 0, fmt.Errorf("%w: %d bytes requested", ErrMemoryLimit, size)
		}
	}

	p, err := bindings.Calloc(1, uintptr(size))
	if err != nil {
		return 0, err
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(p)), size), data)

	cleanup := registry.ExclusiveCleanup(func() {
		_ = bindings.Free(p)
		account(tag, int64(size), -1)
	})
	if err := Default().Track(p, tag, nil, cleanup, int64(size)); err != nil {
		_ = bindings.Free(p)
		return 0, err
	}
	account(tag, int64(size), 1)
	return p, nil
}

// NewCString copies s into NUL-terminated native memory. The result must be
// released with FreeCString (or Free). Strings containing a NUL byte cannot
// be represented and are rejected.
func NewCString(s string) (uintptr, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return 0, &registry.Error{Kind: registry.KindOther, Detail: fmt.Sprintf("string contains a NUL byte at offset %d", i)}
	}
	return allocTracked(cStringTag, []byte(s), 1)
}

// CString is the boundary form of NewCString: it returns 0 on failure and
// records the reason in the caller's last-error slot.
func CString(s string) uintptr {
	return GuardNull(func() (uintptr, error) { return NewCString(s) })
}

// NewCBytes copies b into native memory. The result must be released with
// FreeCBytes (or Free).
func NewCBytes(b []byte) (uintptr, error) {
	return allocTracked(cBytesTag, b, 0)
}

// CBytes is the boundary form of NewCBytes.
func CBytes(b []byte) uintptr {
	return GuardNull(func() (uintptr, error) { return NewCBytes(b) })
}

// FreeCString releases a string created by CString. It fails with WrongType
// if p was tracked as anything else, leaving it registered. FreeCString(0)
// does nothing.
func FreeCString(p uintptr) error {
	if p == 0 {
		return nil
	}
	return Default().ReleaseAs(p, cStringTag)
}

// FreeCBytes releases a buffer created by CBytes.
func FreeCBytes(p uintptr) error {
	if p == 0 {
		return nil
	}
	return Default().ReleaseAs(p, cBytesTag)
}
