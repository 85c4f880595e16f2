package object

import (
	"fmt"

	"github.com/driftworks/objectcore/internal/core/observability/log"
	"github.com/driftworks/objectcore/internal/core/refcount"
	"github.com/driftworks/objectcore/pkg/sequence"
)

// Type flag bits.
const (
	// TypeFlagAbstract marks a type that cannot be instantiated directly.
	TypeFlagAbstract uint32 = 1 << iota
	// TypeFlagNoTemplate marks a type whose template object is a
	// placeholder rather than a usable prototype.
	TypeFlagNoTemplate
)

// Type describes one node in the single-parent type hierarchy: a unique
// name, an optional parent, the type's default template instance, and flag
// bits. Name and parent are immutable after creation.
type Type struct {
	name     string
	parent   refcount.Strong[Type]
	template refcount.Strong[Object]
	flags    uint32
}

func (t *Type) Name() string {
	return t.name
}

// Parent returns the parent type, or nil at a hierarchy root.
func (t *Type) Parent() *Type {
	if !t.parent.Valid() {
		return nil
	}
	return t.parent.Get()
}

// Template returns the type's default template instance.
func (t *Type) Template() *Object {
	return t.template.Get()
}

func (t *Type) Flags() uint32 {
	return t.flags
}

func (t *Type) HasFlag(flag uint32) bool {
	return t.flags&flag != 0
}

// IsSubtypeOf walks the parent chain starting at t (inclusive) and reports
// whether it reaches other. The comparison is identity, not name.
func (t *Type) IsSubtypeOf(other *Type) bool {
	if other == nil {
		panic("object: subtype check against nil type")
	}
	for cur := t; cur != nil; cur = cur.Parent() {
		if cur == other {
			return true
		}
	}
	return false
}

// CreateType registers a new type. The template object is re-owned into
// typePkg, renamed after the type, flagged as the default template, and
// registered with the object registry; any of those steps failing is a
// recoverable error (logged, type not created, no partial registration).
//
// Empty names, nil packages or templates, duplicate type names, and calls
// before Initialize are programmer errors and panic.
func CreateType(name string, typePkg *Package, parent *Type, template *Object, flags uint32) (*Type, error) {
	r := initialized()
	if name == "" {
		panic("object: type name must not be empty")
	}
	if typePkg == nil {
		panic("object: type package must not be nil")
	}
	if template == nil {
		panic("object: type template must not be nil")
	}

	r.mu.RLock()
	_, dup := r.registry[name]
	r.mu.RUnlock()
	if dup {
		panic(fmt.Sprintf("object: type %q already registered", name))
	}

	if err := template.SetOwner(typePkg); err != nil {
		r.log.Error("failed to re-own type template object",
			log.String("type", name), log.Error(err))
		return nil, fmt.Errorf("create type %q: set template owner: %w", name, err)
	}
	if err := template.SetName(name); err != nil {
		r.log.Error("failed to rename type template object",
			log.String("type", name), log.Error(err))
		return nil, fmt.Errorf("create type %q: set template name: %w", name, err)
	}

	template.SetFlags(FlagDefaultTemplate)

	if err := RegisterObject(template); err != nil {
		r.log.Error("failed to register type template object",
			log.String("type", name), log.Error(err))
		return nil, fmt.Errorf("create type %q: register template: %w", name, err)
	}

	t := &Type{name: name, flags: flags}
	if parent != nil {
		t.parent = r.cloneTypeRef(parent)
	}
	t.template = refcount.NewStrong(r.objects, template)

	r.mu.Lock()
	if _, dup = r.registry[name]; dup {
		r.mu.Unlock()
		panic(fmt.Sprintf("object: type %q already registered", name))
	}
	r.registry[name] = refcount.NewStrong(r.types, t)
	if parent == nil && r.rootType == nil {
		r.rootType = t
	}
	r.mu.Unlock()

	r.log.Debug("type registered",
		log.String("type", name), log.Uint32("flags", flags))
	return t, nil
}

// UnregisterType removes a type from the registry and releases its parent,
// template, and registry references. Unregistering a type the registry does
// not hold is a programmer error and panics.
func UnregisterType(t *Type) {
	r := initialized()
	if t == nil {
		panic("object: unregister of nil type")
	}

	r.mu.Lock()
	entry, ok := r.registry[t.name]
	if !ok || entry.Get() != t {
		r.mu.Unlock()
		panic(fmt.Sprintf("object: type %q is not registered", t.name))
	}
	delete(r.registry, t.name)
	if r.rootType == t {
		r.rootType = nil
	}
	r.mu.Unlock()

	if tmpl := t.template.Get(); tmpl != nil {
		if err := UnregisterObject(tmpl); err != nil {
			r.log.Warn("type template object was not registered",
				log.String("type", t.name), log.Error(err))
		}
	}
	if t.parent.Valid() {
		t.parent.Release()
	}
	t.template.Release()
	entry.Release()

	r.log.Debug("type unregistered", log.String("type", t.name))
}

// FindType looks a type up by exact name. It returns nil when the name is
// absent or the runtime has never been initialized; it never panics.
func FindType(name string) *Type {
	r := state.Load()
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.registry[name]; ok {
		return entry.Get()
	}
	return nil
}

// Types returns a restartable iterator over a snapshot of all registered
// types. Order is the registry map's natural order; callers must not assume
// it is sorted. Before Initialize it yields nothing.
func Types() *sequence.Iterator[*Type] {
	r := state.Load()
	if r == nil {
		return sequence.Empty[*Type]()
	}

	r.mu.RLock()
	out := make([]*Type, 0, len(r.registry))
	for _, entry := range r.registry {
		out = append(out, entry.Get())
	}
	r.mu.RUnlock()
	return sequence.From(out)
}

// TypeCount returns the number of registered types.
func TypeCount() int {
	r := state.Load()
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registry)
}

// NewTypeRef acquires an owning reference to a registered type, for
// collaborators that need to hold a type beyond a single call.
func NewTypeRef(t *Type) refcount.Strong[Type] {
	r := initialized()
	if t == nil {
		panic("object: reference to nil type")
	}
	return r.cloneTypeRef(t)
}

// NewObjectRef acquires the owning reference for an object, allocating its
// proxy cell from the object store. Collaborators share the reference with
// Clone and Downgrade rather than acquiring independent owners.
func NewObjectRef(o *Object) refcount.Strong[Object] {
	r := initialized()
	if o == nil {
		panic("object: reference to nil object")
	}
	return refcount.NewStrong(r.objects, o)
}
