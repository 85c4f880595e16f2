package refcount

import (
	"fmt"
	"sync/atomic"

	"github.com/driftworks/objectcore/internal/core/observability/log"
	"github.com/driftworks/objectcore/pkg/generic"
	"github.com/driftworks/objectcore/pkg/sequence"
)

// Options configures a Store.
type Options struct {
	// BlockSize is the pool growth quantum in cells. Zero selects
	// generic.DefaultBlockSize.
	BlockSize int
	// Diagnostics enables live-set tracking of issued cells. It also
	// turns double-release into a detected panic instead of silent pool
	// corruption.
	Diagnostics bool
	// Logger receives leak reports at shutdown. Nil selects the package
	// default.
	Logger log.Log
}

// Store owns a pool of proxy cells. Proxies are created and destroyed on
// every handle acquisition, so cells are pooled in fixed-size blocks rather
// than heap-allocated individually.
//
// Allocate and Release are safe for concurrent use. Shutdown must be called
// exactly once, after every outstanding cell has been released; any use
// after shutdown panics.
type Store[T any] struct {
	pool *generic.BlockPool[Proxy[T]]
	live *liveSet[T]
	log  log.Log
	down atomic.Bool
}

// NewStore creates a proxy store.
func NewStore[T any](opts Options) *Store[T] {
	logger := opts.Logger
	if logger == nil {
		logger = log.Provide()
	}
	s := &Store[T]{
		pool: generic.NewBlockPool[Proxy[T]](opts.BlockSize),
		log:  logger,
	}
	if opts.Diagnostics {
		s.live = newLiveSet[T]()
	}
	return s
}

// Allocate returns a zeroed proxy cell, growing the pool by one block when
// exhausted. It never fails short of the runtime running out of memory.
func (s *Store[T]) Allocate() *Proxy[T] {
	s.checkUp()

	p := s.pool.Get()
	if s.live != nil && !s.live.insert(p) {
		panic("refcount: allocated proxy already tracked as live")
	}
	return p
}

// Release returns a cell to the pool. Both of the cell's counts must be
// zero; violating that, or releasing the same cell twice, is a programmer
// error and panics.
func (s *Store[T]) Release(p *Proxy[T]) {
	s.checkUp()
	if p == nil {
		panic("refcount: release of nil proxy")
	}
	if c := p.counts.Load(); c != 0 {
		panic(fmt.Sprintf(
			"refcount: proxy released with live counts (strong=%d weak=%d)",
			uint32(c>>32), uint32(c)))
	}
	if s.live != nil && !s.live.remove(p) {
		panic("refcount: proxy double-released or foreign to this store")
	}

	p.reset()
	s.pool.Put(p)
}

// ActiveCount reports the number of currently-issued cells. Under concurrent
// mutation the value is a snapshot and may not match a subsequent iteration
// of ActiveProxies.
func (s *Store[T]) ActiveCount() int {
	s.checkUp()
	return s.pool.Allocated()
}

// ActiveProxies returns a restartable iterator over a snapshot of the live
// set. Without diagnostics enabled the iterator is empty.
func (s *Store[T]) ActiveProxies() *sequence.Iterator[*Proxy[T]] {
	s.checkUp()
	if s.live == nil {
		return sequence.Empty[*Proxy[T]]()
	}
	return sequence.From(s.live.snapshot())
}

// Diagnostics reports whether live-set tracking is enabled.
func (s *Store[T]) Diagnostics() bool {
	return s.live != nil
}

// Shutdown tears the store down. Cells still issued at this point are leaks;
// they are reported through the logger before the pool is dropped.
func (s *Store[T]) Shutdown() {
	if !s.down.CompareAndSwap(false, true) {
		panic("refcount: store shut down twice")
	}

	if leaked := s.pool.Allocated(); leaked > 0 {
		s.log.Error("proxy store shut down with cells still issued",
			log.Int("leaked", leaked),
			log.Int("capacity", s.pool.Capacity()))
		if s.live != nil {
			for _, p := range s.live.snapshot() {
				s.log.Error("leaked proxy",
					log.Uint32("strong", p.StrongCount()),
					log.Uint32("weak", p.WeakCount()))
			}
		}
	}

	s.pool = nil
	s.live = nil
}

func (s *Store[T]) checkUp() {
	if s.down.Load() {
		panic("refcount: store used after shutdown")
	}
}
