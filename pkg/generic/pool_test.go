package generic

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockPool(t *testing.T) {
	t.Run("Grows In Fixed Blocks", func(t *testing.T) {
		p := NewBlockPool[int](4)
		require.Equal(t, 0, p.Capacity())

		cells := make([]*int, 0, 5)
		for i := 0; i < 4; i++ {
			cells = append(cells, p.Get())
		}
		require.Equal(t, 4, p.Capacity())
		require.Equal(t, 4, p.Allocated())

		cells = append(cells, p.Get())
		require.Equal(t, 8, p.Capacity())
		require.Equal(t, 5, p.Allocated())

		for _, c := range cells {
			p.Put(c)
		}
		require.Equal(t, 0, p.Allocated())
		require.Equal(t, 8, p.Capacity())
	})

	t.Run("Recycles Cells", func(t *testing.T) {
		p := NewBlockPool[int](2)
		a := p.Get()
		*a = 42
		p.Put(a)

		b := p.Get()
		require.Same(t, a, b)
		require.Equal(t, 42, *b)
	})

	t.Run("Default Block Size", func(t *testing.T) {
		p := NewBlockPool[int](0)
		_ = p.Get()
		require.Equal(t, DefaultBlockSize, p.Capacity())
	})

	t.Run("Nil Put Ignored", func(t *testing.T) {
		p := NewBlockPool[int](2)
		p.Put(nil)
		require.Equal(t, 0, p.Allocated())
	})

	t.Run("Concurrent Round Trip", func(t *testing.T) {
		p := NewBlockPool[int](8)
		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 1000; i++ {
					c := p.Get()
					p.Put(c)
				}
			}()
		}
		wg.Wait()
		require.Equal(t, 0, p.Allocated())
	})
}
