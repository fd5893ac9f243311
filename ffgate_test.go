package ffgate

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/ffgate/lasterr"
	"github.com/obinnaokechukwu/ffgate/registry"
)

// lockThread pins the test to one OS thread so last-error reads see the
// records its own calls wrote.
func lockThread(t *testing.T) {
	t.Helper()
	runtime.LockOSThread()
	t.Cleanup(runtime.UnlockOSThread)
	lasterr.Clear()
}

type widget struct {
	name string
}

func TestDefaultRegistryRoundTrip(t *testing.T) {
	before := LiveCount()

	var destroyed string
	addr := TrackBox(&widget{name: "gear"}, func(w *widget) { destroyed = w.name })
	require.NotZero(t, addr)
	assert.Equal(t, before+1, LiveCount())

	w, err := Deref[widget](addr)
	require.NoError(t, err)
	assert.Equal(t, "gear", w.name)

	_, err = Deref[int](addr)
	assert.True(t, IsWrongType(err))

	require.NoError(t, Free(addr))
	assert.Equal(t, "gear", destroyed)
	assert.Equal(t, before, LiveCount())

	assert.True(t, IsUntracked(Free(addr)), "second free must be rejected")
	assert.NoError(t, Free(0))
}

func TestDefaultRegistryAccessors(t *testing.T) {
	box := TrackBox(&widget{name: "a"}, nil)
	defer Free(box)

	require.NoError(t, BorrowMut(box, func(w *widget) error {
		w.name = "b"
		return nil
	}))
	require.NoError(t, Borrow(box, func(w *widget) error {
		assert.Equal(t, "b", w.name)
		return nil
	}))

	shared := TrackShared(registry.NewShared(&widget{name: "s"}, nil))
	defer Free(shared)
	assert.ErrorIs(t, BorrowMut(shared, func(*widget) error { return nil }), ErrReadOnly)

	counter := TrackMutex(registry.NewSharedMutex(0, nil))
	defer Free(counter)
	require.NoError(t, Lock(counter, func(n *int) error {
		*n += 2
		return nil
	}))
	require.NoError(t, Lock(counter, func(n *int) error {
		assert.Equal(t, 2, *n)
		return nil
	}))
}

func TestFreeTracked(t *testing.T) {
	lockThread(t)

	addr := TrackBox(&widget{}, nil)
	assert.Equal(t, int32(0), FreeTracked(addr))
	assert.Equal(t, int32(0), FreeTracked(0))
	assert.Zero(t, lasterr.Code())

	assert.Equal(t, int32(-1), FreeTracked(addr))
	assert.Equal(t, int32(KindUntrackedPointer), lasterr.Code())
	msg, ok := lasterr.Message()
	require.True(t, ok)
	assert.Contains(t, msg, "UntrackedPointer: 0x")
}

func TestConfigureAfterUse(t *testing.T) {
	_ = Default()
	assert.ErrorIs(t, Configure(registry.WithDrainOnShutdown(true)), ErrAlreadyInitialized)
}
