package registry

import "sync/atomic"

// Strategy is the ownership strategy an allocation was registered with.
// It fixes how the allocation is destroyed.
type Strategy uint8

const (
	// StrategyExclusive allocations have a single owner and are destroyed directly.
	StrategyExclusive Strategy = iota + 1
	// StrategyShared allocations are reference counted. Releasing drops one reference;
	// the value is destroyed when the last reference goes away.
	StrategyShared
	// StrategySharedMutable allocations are reference counted with an interior lock
	// that every access must take.
	StrategySharedMutable
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyExclusive:
		return "exclusive"
	case StrategyShared:
		return "shared"
	case StrategySharedMutable:
		return "shared+mutable"
	default:
		return "unknown"
	}
}

// Cleanup is the deferred, one-shot action that destroys one tracked
// allocation. Build one with ExclusiveCleanup, SharedCleanup or
// SharedMutableCleanup; the registry runs it when the address is released.
type Cleanup struct {
	strategy Strategy
	fn       func()
	done     atomic.Bool
}

// ExclusiveCleanup returns a cleanup that destroys the single owner by
// calling destroy. destroy may be nil when dropping the Go reference is all
// that is needed.
func ExclusiveCleanup(destroy func()) *Cleanup {
	return &Cleanup{strategy: StrategyExclusive, fn: destroy}
}

// SharedCleanup returns a cleanup that drops one reference of a shared
// allocation.
func SharedCleanup(drop func()) *Cleanup {
	return &Cleanup{strategy: StrategyShared, fn: drop}
}

// SharedMutableCleanup returns a cleanup that drops one reference of a shared
// allocation guarded by an interior lock.
func SharedMutableCleanup(drop func()) *Cleanup {
	return &Cleanup{strategy: StrategySharedMutable, fn: drop}
}

// Strategy returns the ownership strategy the cleanup was built for.
func (c *Cleanup) Strategy() Strategy {
	return c.strategy
}

// Done reports whether the cleanup has run.
func (c *Cleanup) Done() bool {
	return c.done.Load()
}

// run invokes the action at most once. A panic in the action is recovered and
// returned as a Panic error. The second and later calls return false.
func (c *Cleanup) run() (ran bool, err error) {
	if !c.done.CompareAndSwap(false, true) {
		return false, nil
	}
	ran = true
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	if c.fn != nil {
		c.fn()
	}
	return ran, nil
}
