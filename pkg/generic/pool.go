package generic

import "sync"

// DefaultBlockSize is the number of cells added to a BlockPool each time its
// free list runs dry.
const DefaultBlockSize = 1024

// BlockPool is a fixed-block arena pool. Cells are allocated in contiguous
// blocks and recycled through a free list, so a cell's address stays stable
// for the lifetime of the pool. Safe for concurrent use.
type BlockPool[T any] struct {
	mu        sync.Mutex
	blockSize int
	blocks    [][]T
	free      []*T
	allocated int
}

// NewBlockPool creates a pool that grows by blockSize cells at a time.
// Non-positive sizes fall back to DefaultBlockSize.
func NewBlockPool[T any](blockSize int) *BlockPool[T] {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &BlockPool[T]{blockSize: blockSize}
}

// Get returns a cell from the pool, growing it by one block when the free
// list is empty. The cell retains whatever state it held when it was last
// put back; callers reset it themselves.
func (p *BlockPool[T]) Get() *T {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == 0 {
		p.grow()
	}

	n := len(p.free) - 1
	cell := p.free[n]
	p.free[n] = nil
	p.free = p.free[:n]
	p.allocated++
	return cell
}

// Put returns a cell to the free list. The cell must have come from this
// pool's Get.
func (p *BlockPool[T]) Put(cell *T) {
	if cell == nil {
		return
	}
	p.mu.Lock()
	p.free = append(p.free, cell)
	p.allocated--
	p.mu.Unlock()
}

// Allocated reports how many cells are currently checked out.
func (p *BlockPool[T]) Allocated() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allocated
}

// Capacity reports the total number of cells owned by the pool.
func (p *BlockPool[T]) Capacity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.blocks) * p.blockSize
}

func (p *BlockPool[T]) grow() {
	block := make([]T, p.blockSize)
	p.blocks = append(p.blocks, block)
	for i := range block {
		p.free = append(p.free, &block[i])
	}
}
