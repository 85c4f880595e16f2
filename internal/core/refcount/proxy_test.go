package refcount

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProxy_Counts(t *testing.T) {
	t.Run("Strong Increment Decrement", func(t *testing.T) {
		p := &Proxy[int]{}
		require.Equal(t, uint32(1), p.AddStrongRef())
		require.Equal(t, uint32(2), p.AddStrongRef())
		require.Equal(t, uint32(1), p.ReleaseStrongRef())
		require.Equal(t, uint32(0), p.ReleaseStrongRef())
	})

	t.Run("Weak Increment Decrement", func(t *testing.T) {
		p := &Proxy[int]{}
		require.Equal(t, uint32(1), p.AddWeakRef())
		require.Equal(t, uint32(2), p.AddWeakRef())
		require.Equal(t, uint32(1), p.ReleaseWeakRef())
		require.Equal(t, uint32(0), p.ReleaseWeakRef())
	})

	t.Run("Counts Are Independent", func(t *testing.T) {
		p := &Proxy[int]{}
		p.AddStrongRef()
		p.AddWeakRef()
		p.AddWeakRef()
		require.Equal(t, uint32(1), p.StrongCount())
		require.Equal(t, uint32(2), p.WeakCount())
	})

	t.Run("Strong Underflow Panics", func(t *testing.T) {
		p := &Proxy[int]{}
		require.Panics(t, func() { p.ReleaseStrongRef() })
	})

	t.Run("Weak Underflow Panics", func(t *testing.T) {
		p := &Proxy[int]{}
		require.Panics(t, func() { p.ReleaseWeakRef() })
	})
}

func TestProxy_Target(t *testing.T) {
	t.Run("Reports Target While Strong Held", func(t *testing.T) {
		v := 7
		p := &Proxy[int]{}
		p.SetTarget(&v)
		p.AddStrongRef()
		require.Same(t, &v, p.Target())
	})

	t.Run("Gone After Last Strong Release", func(t *testing.T) {
		v := 7
		p := &Proxy[int]{}
		p.SetTarget(&v)
		p.AddStrongRef()
		p.AddWeakRef()

		require.Equal(t, uint32(0), p.ReleaseStrongRef())
		// the weak holder can still query the cell, but the object is gone
		require.Nil(t, p.Target())
		require.Equal(t, uint32(1), p.WeakCount())
	})

	t.Run("Nil Without Strong Refs", func(t *testing.T) {
		v := 7
		p := &Proxy[int]{}
		p.SetTarget(&v)
		require.Nil(t, p.Target())
	})
}
