package registry

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSharedRefCounting(t *testing.T) {
	var last atomic.Int32
	v := 10
	a := NewShared(&v, func(p *int) {
		assert.Equal(t, 10, *p)
		last.Add(1)
	})
	b := a.Clone()
	c := b.Clone()
	assert.Equal(t, int64(3), a.Refs())

	assert.False(t, a.Drop())
	assert.False(t, a.Drop(), "dropping the same reference twice is a no-op")
	assert.Nil(t, a.Get())
	assert.Nil(t, a.Clone())
	assert.Equal(t, int64(2), b.Refs())

	assert.False(t, b.Drop())
	assert.True(t, c.Drop())
	assert.Equal(t, int32(1), last.Load())
	assert.Equal(t, int64(0), c.Refs())
}

func TestSharedConcurrentDrop(t *testing.T) {
	var last atomic.Int32
	v := 0
	root := NewShared(&v, func(*int) { last.Add(1) })

	refs := make([]*Shared[int], 100)
	for i := range refs {
		refs[i] = root.Clone()
	}
	assert.False(t, root.Drop())

	var g errgroup.Group
	for _, ref := range refs {
		g.Go(func() error {
			ref.Drop()
			ref.Drop()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), last.Load())
}

func TestNilShared(t *testing.T) {
	var s *Shared[int]
	assert.Nil(t, s.Get())
	assert.Nil(t, s.Clone())
	assert.False(t, s.Drop())
	assert.Zero(t, s.Refs())
}

func TestMutexWith(t *testing.T) {
	m := NewMutex([]string{"a"})

	require.NoError(t, m.With(func(v *[]string) error {
		*v = append(*v, "b")
		return nil
	}))

	err := m.With(func(*[]string) error { panic("boom") })
	require.True(t, IsPoisoned(err))
	assert.True(t, m.Poisoned())

	require.NoError(t, m.With(func(v *[]string) error {
		assert.Equal(t, []string{"a", "b"}, *v)
		return nil
	}))
}

func TestCleanupRunsOnce(t *testing.T) {
	var n int
	c := ExclusiveCleanup(func() { n++ })
	assert.Equal(t, StrategyExclusive, c.Strategy())

	ran, err := c.run()
	require.NoError(t, err)
	assert.True(t, ran)

	ran, err = c.run()
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, 1, n)
	assert.True(t, c.Done())
}

func TestCleanupPanic(t *testing.T) {
	c := SharedCleanup(func() { panic("drop failed") })
	ran, err := c.run()
	assert.True(t, ran)
	require.ErrorIs(t, err, ErrPanic)

	ran, err = c.run()
	assert.False(t, ran)
	assert.NoError(t, err)
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "exclusive", StrategyExclusive.String())
	assert.Equal(t, "shared", SharedCleanup(nil).Strategy().String())
	assert.Equal(t, "shared+mutable", SharedMutableCleanup(nil).Strategy().String())
	assert.Equal(t, "unknown", Strategy(0).String())
}
