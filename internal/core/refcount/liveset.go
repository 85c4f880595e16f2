package refcount

import (
	"encoding/binary"
	"sync"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

const liveSetShards = 16

// liveSet tracks every currently-issued proxy cell for diagnostics. It is
// sharded by a hash of the cell address to keep the hot allocate/release
// paths from contending on a single lock.
//
// Snapshots taken while other goroutines allocate and release are eventually
// consistent: a cell may appear in the snapshot and be released before the
// caller observes it.
type liveSet[T any] struct {
	shards [liveSetShards]liveShard[T]
}

type liveShard[T any] struct {
	mu      sync.RWMutex
	members map[*Proxy[T]]struct{}
}

func newLiveSet[T any]() *liveSet[T] {
	s := &liveSet[T]{}
	for i := range s.shards {
		s.shards[i].members = make(map[*Proxy[T]]struct{})
	}
	return s
}

func (s *liveSet[T]) shardFor(p *Proxy[T]) *liveShard[T] {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(uintptr(unsafe.Pointer(p))))
	return &s.shards[xxhash.Sum64(b[:])%liveSetShards]
}

// insert adds a cell, reporting false if it was already present.
func (s *liveSet[T]) insert(p *Proxy[T]) bool {
	sh := s.shardFor(p)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.members[p]; ok {
		return false
	}
	sh.members[p] = struct{}{}
	return true
}

// remove deletes a cell, reporting false if it was not present.
func (s *liveSet[T]) remove(p *Proxy[T]) bool {
	sh := s.shardFor(p)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.members[p]; !ok {
		return false
	}
	delete(sh.members, p)
	return true
}

func (s *liveSet[T]) size() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		n += len(sh.members)
		sh.mu.RUnlock()
	}
	return n
}

// snapshot copies the current membership into a slice, shard by shard.
func (s *liveSet[T]) snapshot() []*Proxy[T] {
	var out []*Proxy[T]
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for p := range sh.members {
			out = append(out, p)
		}
		sh.mu.RUnlock()
	}
	return out
}
