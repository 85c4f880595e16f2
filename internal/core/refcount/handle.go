package refcount

// Strong is a counted owning handle. The zero value is empty; Release on an
// empty handle panics, which is how double-release surfaces.
type Strong[T any] struct {
	proxy *Proxy[T]
	store *Store[T]
}

// NewStrong allocates a proxy cell from the store, points it at target, and
// returns the first strong handle to it.
func NewStrong[T any](store *Store[T], target *T) Strong[T] {
	if target == nil {
		panic("refcount: strong handle to nil target")
	}
	p := store.Allocate()
	p.SetTarget(target)
	p.AddStrongRef()
	return Strong[T]{proxy: p, store: store}
}

// Valid reports whether the handle currently holds a reference.
func (r Strong[T]) Valid() bool {
	return r.proxy != nil
}

// Get returns the referenced object. Empty handles return nil.
func (r Strong[T]) Get() *T {
	if r.proxy == nil {
		return nil
	}
	return r.proxy.Target()
}

// Clone acquires an additional strong reference. Safe to call from any
// goroutine holding a valid handle.
func (r Strong[T]) Clone() Strong[T] {
	if r.proxy == nil {
		return Strong[T]{}
	}
	r.proxy.AddStrongRef()
	return r
}

// Downgrade acquires a weak reference to the same cell without affecting the
// strong count.
func (r Strong[T]) Downgrade() Weak[T] {
	if r.proxy == nil {
		return Weak[T]{}
	}
	r.proxy.AddWeakRef()
	return Weak[T]{proxy: r.proxy, store: r.store}
}

// Release drops the strong reference and empties the handle. The release
// that drives the strong count to zero marks the object gone; the release
// that drives both counts to zero returns the cell to the store.
func (r *Strong[T]) Release() {
	if r.proxy == nil {
		panic("refcount: strong handle released twice")
	}
	p, s := r.proxy, r.store
	r.proxy, r.store = nil, nil

	if _, total := p.releaseStrong(); total == 0 {
		s.Release(p)
	}
}

// Weak is a counted non-owning handle. It can detect object destruction
// without extending the object's lifetime.
type Weak[T any] struct {
	proxy *Proxy[T]
	store *Store[T]
}

// Valid reports whether the handle currently holds a reference.
func (r Weak[T]) Valid() bool {
	return r.proxy != nil
}

// Alive reports whether the referenced object still has strong references.
func (r Weak[T]) Alive() bool {
	return r.proxy != nil && r.proxy.StrongCount() > 0
}

// Get returns the referenced object and true while it is alive, or nil and
// false once it is gone.
func (r Weak[T]) Get() (*T, bool) {
	if r.proxy == nil {
		return nil, false
	}
	t := r.proxy.Target()
	return t, t != nil
}

// Clone acquires an additional weak reference.
func (r Weak[T]) Clone() Weak[T] {
	if r.proxy == nil {
		return Weak[T]{}
	}
	r.proxy.AddWeakRef()
	return r
}

// Release drops the weak reference and empties the handle.
func (r *Weak[T]) Release() {
	if r.proxy == nil {
		panic("refcount: weak handle released twice")
	}
	p, s := r.proxy, r.store
	r.proxy, r.store = nil, nil

	if _, total := p.releaseWeak(); total == 0 {
		s.Release(p)
	}
}
