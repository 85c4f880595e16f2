package object

import (
	"sync"

	"github.com/google/uuid"

	"github.com/driftworks/objectcore/pkg/sequence"
)

// Package is a container object. The type registry stores every type's
// template instance inside one distinguished "Types" package.
type Package struct {
	Object

	cmu      sync.RWMutex
	children map[uuid.UUID]*Object
}

// NewPackage creates an empty package.
func NewPackage(name string) *Package {
	p := &Package{children: make(map[uuid.UUID]*Object)}
	p.Object.init(name)
	return p
}

// Child returns the child with the given name, or nil.
func (p *Package) Child(name string) *Object {
	p.cmu.RLock()
	defer p.cmu.RUnlock()
	for _, o := range p.children {
		if o.Name() == name {
			return o
		}
	}
	return nil
}

// ChildCount returns the number of contained objects.
func (p *Package) ChildCount() int {
	p.cmu.RLock()
	defer p.cmu.RUnlock()
	return len(p.children)
}

// Children returns an iterator over a snapshot of the contained objects.
func (p *Package) Children() *sequence.Iterator[*Object] {
	p.cmu.RLock()
	out := make([]*Object, 0, len(p.children))
	for _, o := range p.children {
		out = append(out, o)
	}
	p.cmu.RUnlock()
	return sequence.From(out)
}

func (p *Package) adopt(o *Object) {
	p.cmu.Lock()
	p.children[o.ID()] = o
	p.cmu.Unlock()
}

func (p *Package) abandon(o *Object) {
	p.cmu.Lock()
	delete(p.children, o.ID())
	p.cmu.Unlock()
}

// hasOtherChildNamed reports whether the package owns a child with the given
// name under a different ID.
func (p *Package) hasOtherChildNamed(name string, except uuid.UUID) bool {
	p.cmu.RLock()
	defer p.cmu.RUnlock()
	for id, o := range p.children {
		if id != except && o.Name() == name {
			return true
		}
	}
	return false
}
