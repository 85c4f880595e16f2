package refcount

import (
	"math"
	"sync/atomic"
)

// strongUnit is one strong reference in the packed count word. The strong
// count occupies the high 32 bits and the weak count the low 32 bits, so the
// "both counts are zero" transition is observable in a single atomic step.
const strongUnit = uint64(1) << 32

// Proxy is a detached reference-count cell. It holds a strong count, a weak
// count, and a non-owning back-reference to the counted object. Count
// storage lives in the Store's pool, independent of the object's own memory.
//
// All count operations are safe for concurrent use without external locking.
// Releasing a count that is already zero is a programmer error and panics.
type Proxy[T any] struct {
	counts atomic.Uint64
	target atomic.Pointer[T]
}

// AddStrongRef atomically increments the strong count and returns the new
// value.
func (p *Proxy[T]) AddStrongRef() uint32 {
	return uint32(p.counts.Add(strongUnit) >> 32)
}

// ReleaseStrongRef atomically decrements the strong count and returns the
// new value. The goroutine that drives the count to zero clears the target
// back-reference first; from that point the object is reported as gone.
func (p *Proxy[T]) ReleaseStrongRef() uint32 {
	n, _ := p.releaseStrong()
	return n
}

// releaseStrong performs the strong decrement and also returns the packed
// count word after the operation, so callers can detect the cell becoming
// fully unreferenced.
func (p *Proxy[T]) releaseStrong() (uint32, uint64) {
	for {
		c := p.counts.Load()
		s := uint32(c >> 32)
		if s == 0 {
			panic("refcount: strong count released below zero")
		}
		if s == 1 {
			// We hold the only strong reference; no new strong
			// reference can appear, so the target can be cleared
			// before the final decrement publishes the transition.
			p.target.Store(nil)
		}
		if p.counts.CompareAndSwap(c, c-strongUnit) {
			return s - 1, c - strongUnit
		}
	}
}

// AddWeakRef atomically increments the weak count and returns the new value.
func (p *Proxy[T]) AddWeakRef() uint32 {
	return uint32(p.counts.Add(1))
}

// ReleaseWeakRef atomically decrements the weak count and returns the new
// value.
func (p *Proxy[T]) ReleaseWeakRef() uint32 {
	n, _ := p.releaseWeak()
	return n
}

func (p *Proxy[T]) releaseWeak() (uint32, uint64) {
	v := p.counts.Add(^uint64(0))
	n := uint32(v)
	if n == math.MaxUint32 {
		panic("refcount: weak count released below zero")
	}
	return n, v
}

// Target returns the counted object, or nil once the object is gone. A weak
// holder may still call this after the strong count reached zero, up until
// the cell itself is released.
func (p *Proxy[T]) Target() *T {
	if p.StrongCount() == 0 {
		return nil
	}
	return p.target.Load()
}

// SetTarget installs the back-reference to the counted object.
func (p *Proxy[T]) SetTarget(t *T) {
	p.target.Store(t)
}

// StrongCount returns the current strong count. Under concurrent mutation
// the value is a snapshot only.
func (p *Proxy[T]) StrongCount() uint32 {
	return uint32(p.counts.Load() >> 32)
}

// WeakCount returns the current weak count.
func (p *Proxy[T]) WeakCount() uint32 {
	return uint32(p.counts.Load())
}

// reset zeroes the cell before it returns to the pool.
func (p *Proxy[T]) reset() {
	p.counts.Store(0)
	p.target.Store(nil)
}
