package object

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Object flag bits.
const (
	// FlagDefaultTemplate marks the canonical default instance of a type.
	FlagDefaultTemplate uint32 = 1 << iota
	// FlagRegistered marks an object known to the object registry. Name
	// and owner are frozen while it is set.
	FlagRegistered
)

// Object is the minimal surface of a game object this core consumes: a
// stable ID, a name, an owning package, and flag bits. The full game-object
// base class lives outside this subsystem; the type registry only needs to
// re-own, rename, and register template instances.
type Object struct {
	id    uuid.UUID
	flags atomic.Uint32

	mu    sync.Mutex
	name  string
	owner *Package
}

// NewObject creates an unowned, unregistered object.
func NewObject(name string) *Object {
	o := &Object{}
	o.init(name)
	return o
}

func (o *Object) init(name string) {
	o.id = uuid.New()
	o.name = name
}

func (o *Object) ID() uuid.UUID {
	return o.id
}

func (o *Object) Name() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.name
}

func (o *Object) Owner() *Package {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.owner
}

func (o *Object) Flags() uint32 {
	return o.flags.Load()
}

func (o *Object) HasFlag(flag uint32) bool {
	return o.flags.Load()&flag != 0
}

// SetFlags sets the given flag bits, leaving others untouched.
func (o *Object) SetFlags(flags uint32) {
	o.flags.Or(flags)
}

// ClearFlags clears the given flag bits.
func (o *Object) ClearFlags(flags uint32) {
	o.flags.And(^flags)
}

// SetName renames the object. It fails on an empty name, on a registered
// object, or when the owning package already holds another child with the
// requested name.
func (o *Object) SetName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if o.HasFlag(FlagRegistered) {
		return ErrObjectRegistered
	}
	if owner := o.Owner(); owner != nil && owner.hasOtherChildNamed(name, o.id) {
		return ErrDuplicateChildName
	}

	o.mu.Lock()
	o.name = name
	o.mu.Unlock()
	return nil
}

// SetOwner moves the object into pkg. It fails on a nil package, on a
// registered object, or when pkg already holds another child with the
// object's name.
func (o *Object) SetOwner(pkg *Package) error {
	if pkg == nil {
		return ErrInvalidOwner
	}
	if o.HasFlag(FlagRegistered) {
		return ErrObjectRegistered
	}
	if name := o.Name(); name != "" && pkg.hasOtherChildNamed(name, o.id) {
		return ErrDuplicateChildName
	}

	o.mu.Lock()
	old := o.owner
	o.owner = pkg
	o.mu.Unlock()

	if old != nil && old != pkg {
		old.abandon(o)
	}
	pkg.adopt(o)
	return nil
}

// RegisterObject adds an owned, named object to the object registry. The
// object's path (owner plus name) must be unique; name and owner freeze
// until the object is unregistered.
func RegisterObject(o *Object) error {
	r := initialized()
	if o == nil {
		panic("object: register of nil object")
	}
	if o.Name() == "" {
		return ErrInvalidName
	}
	owner := o.Owner()
	if owner == nil {
		return ErrUnownedObject
	}

	key := objectPath(owner, o.Name())

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.paths[key]; dup {
		return ErrDuplicateObjectPath
	}
	r.paths[key] = o
	o.SetFlags(FlagRegistered)
	return nil
}

// UnregisterObject removes an object from the object registry and unfreezes
// its name and owner.
func UnregisterObject(o *Object) error {
	r := initialized()
	if o == nil {
		panic("object: unregister of nil object")
	}

	key := objectPath(o.Owner(), o.Name())

	r.mu.Lock()
	defer r.mu.Unlock()
	if registered, ok := r.paths[key]; !ok || registered != o {
		return ErrObjectNotRegistered
	}
	delete(r.paths, key)
	o.ClearFlags(FlagRegistered)
	return nil
}

func objectPath(owner *Package, name string) string {
	if owner == nil {
		return "/" + name
	}
	return owner.ID().String() + "/" + name
}
