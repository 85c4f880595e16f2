package refcount

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestStrong(t *testing.T) {
	t.Run("Lifecycle", func(t *testing.T) {
		s := newTestStore(true)
		v := 11

		ref := NewStrong(s, &v)
		require.True(t, ref.Valid())
		require.Same(t, &v, ref.Get())
		require.Equal(t, 1, s.ActiveCount())

		ref.Release()
		require.False(t, ref.Valid())
		require.Nil(t, ref.Get())
		require.Equal(t, 0, s.ActiveCount())
		s.Shutdown()
	})

	t.Run("Clone Shares The Cell", func(t *testing.T) {
		s := newTestStore(true)
		v := 11

		ref := NewStrong(s, &v)
		dup := ref.Clone()
		require.Equal(t, 1, s.ActiveCount())

		ref.Release()
		require.Same(t, &v, dup.Get())

		dup.Release()
		require.Equal(t, 0, s.ActiveCount())
		s.Shutdown()
	})

	t.Run("Release Twice Panics", func(t *testing.T) {
		s := newTestStore(true)
		v := 11
		ref := NewStrong(s, &v)
		ref.Release()
		require.Panics(t, func() { ref.Release() })
	})

	t.Run("Nil Target Panics", func(t *testing.T) {
		s := newTestStore(true)
		require.Panics(t, func() { NewStrong[int](s, nil) })
	})

	t.Run("Empty Handle", func(t *testing.T) {
		var ref Strong[int]
		require.False(t, ref.Valid())
		require.Nil(t, ref.Get())
		require.False(t, ref.Clone().Valid())
		require.Panics(t, func() { ref.Release() })
	})
}

func TestWeak(t *testing.T) {
	t.Run("Observes Destruction", func(t *testing.T) {
		s := newTestStore(true)
		v := 23

		ref := NewStrong(s, &v)
		weak := ref.Downgrade()
		require.True(t, weak.Alive())
		got, ok := weak.Get()
		require.True(t, ok)
		require.Same(t, &v, got)

		ref.Release()
		// the cell survives for the weak holder, but the object is gone
		require.Equal(t, 1, s.ActiveCount())
		require.False(t, weak.Alive())
		got, ok = weak.Get()
		require.False(t, ok)
		require.Nil(t, got)

		weak.Release()
		require.Equal(t, 0, s.ActiveCount())
		s.Shutdown()
	})

	t.Run("Weak Does Not Extend Lifetime", func(t *testing.T) {
		s := newTestStore(true)
		v := 23

		ref := NewStrong(s, &v)
		weak := ref.Downgrade()
		weak.Release()
		// dropping the weak while strong refs remain keeps the cell
		require.Equal(t, 1, s.ActiveCount())
		require.Same(t, &v, ref.Get())

		ref.Release()
		require.Equal(t, 0, s.ActiveCount())
		s.Shutdown()
	})

	t.Run("Release Twice Panics", func(t *testing.T) {
		s := newTestStore(true)
		v := 23
		ref := NewStrong(s, &v)
		weak := ref.Downgrade()
		weak.Release()
		require.Panics(t, func() { weak.Release() })
		ref.Release()
	})
}

func TestHandles_ConcurrentStress(t *testing.T) {
	const (
		goroutines = 8
		iterations = 5000
		batch      = 32
	)

	s := NewStore[int](Options{Diagnostics: true})
	values := make([]int, batch)
	owners := make([]Strong[int], batch)
	for i := range owners {
		owners[i] = NewStrong(s, &values[i])
	}

	var g errgroup.Group
	for w := 0; w < goroutines; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < iterations; i++ {
				p := owners[(w+i)%batch].proxy
				p.AddStrongRef()
				p.AddWeakRef()
				p.ReleaseWeakRef()
				p.ReleaseStrongRef()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// every proxy ends at the net of operations: the owner's single strong ref
	for i := range owners {
		require.Equal(t, uint32(1), owners[i].proxy.StrongCount())
		require.Equal(t, uint32(0), owners[i].proxy.WeakCount())
	}
	require.Equal(t, batch, s.ActiveCount())
	require.Equal(t, batch, s.ActiveProxies().Count())

	for i := range owners {
		owners[i].Release()
	}
	require.Equal(t, 0, s.ActiveCount())
	s.Shutdown()
}

func TestHandles_ConcurrentReleaseRace(t *testing.T) {
	// strong and weak releases racing on the same cell must return it to
	// the pool exactly once
	s := NewStore[int](Options{Diagnostics: true})
	const rounds = 2000

	for i := 0; i < rounds; i++ {
		v := i
		ref := NewStrong(s, &v)
		weak := ref.Downgrade()

		var g errgroup.Group
		g.Go(func() error { ref.Release(); return nil })
		g.Go(func() error { weak.Release(); return nil })
		require.NoError(t, g.Wait())
		require.Equal(t, 0, s.ActiveCount())
	}
	s.Shutdown()
}
