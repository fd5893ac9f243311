// Package registry provides a thread-safe allocation registry for values whose
// addresses are handed to foreign (C ABI) callers.
//
// Foreign code cannot be trusted to keep type or lifetime information, so
// every address it passes back is checked against the registry before use.
// Each entry records the type the value was registered as and the one correct
// way to destroy it. An address can be validated only as that type and
// released only once; a second release finds nothing and fails cleanly.
//
// Anything still registered when Shutdown is called is reported as a leak.
package registry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"sync/atomic"
)

type entry struct {
	tag     Tag
	value   any
	cleanup *Cleanup
	size    int64

	// pins is read-held while a caller uses the entry and write-held by the
	// releasing goroutine before the cleanup runs. It is only read-locked
	// while the entry is still in the map, so acquiring it never blocks
	// under the map lock.
	pins sync.RWMutex

	// access serializes BorrowMut against Borrow for exclusive entries.
	access sync.RWMutex
}

// Entry describes one live allocation in a Snapshot.
type Entry struct {
	Addr     uintptr
	Tag      Tag
	Strategy Strategy
	Size     int64 // Native byte size, 0 for Go values
}

// Registry maps addresses to their type tag and cleanup action.
// The zero value is not usable; create one with New.
type Registry struct {
	mu      sync.Mutex
	entries map[uintptr]*entry
	nextID  uintptr

	poison atomic.Bool

	log     *slog.Logger
	leakOut io.Writer
	drain   bool
	onDrop  []func(Entry)
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[uintptr]*entry),
		log:     slog.New(slog.DiscardHandler),
		leakOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// locked runs fn while holding the map lock. A panic inside fn poisons the
// registry and is returned as MutexPoisoned; once poisoned, every locked
// operation fails without running fn.
func (r *Registry) locked(fn func() error) (err error) {
	if r.poison.Load() {
		return poisoned("registry lock poisoned by an earlier panic")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			r.poison.Store(true)
			err = poisoned(fmt.Sprintf("panic while holding registry lock: %v", p))
			r.log.Error("registry poisoned", "panic", fmt.Sprint(p))
		}
	}()
	return fn()
}

// Poisoned reports whether a panic escaped while the registry lock was held.
// A poisoned registry fails every operation with MutexPoisoned; callers
// should treat a persistent MutexPoisoned as fatal.
func (r *Registry) Poisoned() bool {
	return r.poison.Load()
}

// Register stores value under tag and returns a new non-zero address for it.
// The cleanup action runs exactly once, when the address is released. A nil
// cleanup is treated as an exclusive cleanup with nothing to run.
//
// Register only returns 0 if the registry is poisoned.
func (r *Registry) Register(tag Tag, value any, cleanup *Cleanup) uintptr {
	if cleanup == nil {
		cleanup = ExclusiveCleanup(nil)
	}
	e := &entry{tag: tag, value: value, cleanup: cleanup}

	var addr uintptr
	err := r.locked(func() error {
		for {
			r.nextID++
			if r.nextID == 0 {
				continue
			}
			if _, taken := r.entries[r.nextID]; !taken {
				break
			}
		}
		addr = r.nextID
		r.entries[addr] = e
		return nil
	})
	if err != nil {
		r.log.Error("register failed", "tag", tag.String(), "err", err)
		return 0
	}
	r.log.Debug("registered", "addr", hexAddr(addr), "tag", tag.String(), "strategy", cleanup.strategy.String())
	return addr
}

// Track registers a natively allocated address, such as memory from malloc,
// together with its size in bytes. It fails with NullParameter for 0 and with
// Other if addr is already tracked.
func (r *Registry) Track(addr uintptr, tag Tag, value any, cleanup *Cleanup, size int64) error {
	if addr == 0 {
		return &Error{Kind: KindNullParameter, Detail: "addr"}
	}
	if cleanup == nil {
		cleanup = ExclusiveCleanup(nil)
	}
	e := &entry{tag: tag, value: value, cleanup: cleanup, size: size}

	err := r.locked(func() error {
		if _, taken := r.entries[addr]; taken {
			return &Error{Kind: KindOther, Addr: addr, Detail: fmt.Sprintf("address 0x%x is already tracked", addr)}
		}
		r.entries[addr] = e
		return nil
	})
	if err != nil {
		r.log.Warn("track rejected", "addr", hexAddr(addr), "tag", tag.String(), "err", err)
		return err
	}
	r.log.Debug("tracked", "addr", hexAddr(addr), "tag", tag.String(), "size", size)
	return nil
}

// find returns the entry for addr if it is registered as tag.
// The caller must hold r.mu.
func (r *Registry) find(addr uintptr, tag Tag) (*entry, error) {
	e, ok := r.entries[addr]
	if !ok {
		return nil, untracked(addr)
	}
	if e.tag != tag {
		return nil, wrongType(addr, tag, e.tag)
	}
	return e, nil
}

// Validate checks that addr is live and registered as tag.
// It fails with UntrackedPointer if the address is unknown (including 0 and
// addresses already released) and with WrongType if it was registered as a
// different type.
func (r *Registry) Validate(addr uintptr, tag Tag) error {
	err := r.locked(func() error {
		_, err := r.find(addr, tag)
		return err
	})
	if err != nil {
		r.log.Debug("validate rejected", "addr", hexAddr(addr), "tag", tag.String(), "err", err)
	}
	return err
}

// Lookup validates addr as tag and returns the value it was registered with.
//
// The returned value is not pinned: a concurrent Release may run the cleanup
// while the caller still holds it. Use Use, or the typed Borrow helpers, when
// the access must not overlap destruction.
func (r *Registry) Lookup(addr uintptr, tag Tag) (any, error) {
	var v any
	err := r.locked(func() error {
		e, err := r.find(addr, tag)
		if err != nil {
			return err
		}
		v = e.value
		return nil
	})
	if err != nil {
		r.log.Debug("lookup rejected", "addr", hexAddr(addr), "tag", tag.String(), "err", err)
		return nil, err
	}
	return v, nil
}

// pin validates addr as tag and read-locks the entry's pins. The caller must
// call e.pins.RUnlock when done.
func (r *Registry) pin(addr uintptr, tag Tag) (*entry, error) {
	var e *entry
	err := r.locked(func() error {
		var err error
		e, err = r.find(addr, tag)
		if err != nil {
			return err
		}
		e.pins.RLock()
		return nil
	})
	if err != nil {
		r.log.Debug("use rejected", "addr", hexAddr(addr), "tag", tag.String(), "err", err)
		return nil, err
	}
	return e, nil
}

func (r *Registry) use(addr uintptr, tag Tag, fn func(e *entry) error) error {
	e, err := r.pin(addr, tag)
	if err != nil {
		return err
	}
	defer e.pins.RUnlock()
	return fn(e)
}

// Use validates addr as tag and calls fn with the registered value. The
// cleanup action of a Release that races with Use does not start until fn
// has returned. fn must not release addr itself.
func (r *Registry) Use(addr uintptr, tag Tag, fn func(v any) error) error {
	return r.use(addr, tag, func(e *entry) error {
		return fn(e.value)
	})
}

// Release removes addr and runs its cleanup action exactly once. It fails with
// UntrackedPointer if addr is not registered, which is how a double release
// is detected. The cleanup runs after the map lock is released and after any
// in-flight Use of the address has finished.
func (r *Registry) Release(addr uintptr) error {
	return r.release(addr, func(*entry) error { return nil })
}

// ReleaseAs is like Release but only removes addr if it was registered as tag.
// The type check and the removal happen atomically.
func (r *Registry) ReleaseAs(addr uintptr, tag Tag) error {
	return r.release(addr, func(e *entry) error {
		if e.tag != tag {
			return wrongType(addr, tag, e.tag)
		}
		return nil
	})
}

func (r *Registry) release(addr uintptr, check func(*entry) error) error {
	var e *entry
	err := r.locked(func() error {
		var ok bool
		e, ok = r.entries[addr]
		if !ok {
			return untracked(addr)
		}
		if err := check(e); err != nil {
			return err
		}
		delete(r.entries, addr)
		return nil
	})
	if err != nil {
		r.log.Warn("release rejected", "addr", hexAddr(addr), "err", err)
		return err
	}
	return r.destroy(addr, e)
}

// destroy waits for in-flight users of e and runs its cleanup.
func (r *Registry) destroy(addr uintptr, e *entry) error {
	e.pins.Lock()
	defer e.pins.Unlock()

	_, err := e.cleanup.run()
	if err != nil {
		r.log.Error("cleanup failed", "addr", hexAddr(addr), "tag", e.tag.String(), "err", err)
		return err
	}
	r.log.Debug("released", "addr", hexAddr(addr), "tag", e.tag.String(), "strategy", e.cleanup.strategy.String())
	return nil
}

// Len returns the number of live addresses.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Snapshot returns the live entries ordered by address.
func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	out := make([]Entry, 0, len(r.entries))
	for addr, e := range r.entries {
		out = append(out, Entry{Addr: addr, Tag: e.tag, Strategy: e.cleanup.strategy, Size: e.size})
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}

// Shutdown reports every live address as a leak and empties the registry.
// Leaked entries are dropped without running their cleanup, and handed to the
// drop hooks, unless the registry was created WithDrainOnShutdown. The report
// is logged at warn level and written to the leak writer when it is not empty.
//
// The registry stays usable after Shutdown.
func (r *Registry) Shutdown() LeakReport {
	r.mu.Lock()
	live := r.entries
	r.entries = make(map[uintptr]*entry)
	r.mu.Unlock()

	report := newLeakReport(live)
	if report.Count > 0 {
		r.log.Warn("tracked allocations leaked", "count", report.Count, "bytes", report.Bytes)
		if r.leakOut != nil {
			fmt.Fprint(r.leakOut, report.String())
		}
	}

	for addr, e := range live {
		if r.drain {
			_ = r.destroy(addr, e)
			continue
		}
		for _, fn := range r.onDrop {
			r.dropped(fn, Entry{Addr: addr, Tag: e.tag, Strategy: e.cleanup.strategy, Size: e.size})
		}
	}
	return report
}

func (r *Registry) dropped(fn func(Entry), ent Entry) {
	defer func() {
		if v := recover(); v != nil {
			r.log.Error("drop hook panicked", "addr", hexAddr(ent.Addr), "tag", ent.Tag.String(), "panic", v)
		}
	}()
	fn(ent)
}

func hexAddr(addr uintptr) string {
	return fmt.Sprintf("0x%x", addr)
}
