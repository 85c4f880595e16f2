package object

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/driftworks/objectcore/internal/core/observability/log"
	"github.com/driftworks/objectcore/internal/core/refcount"
)

// runtime is the process-wide state behind the type registry: the two proxy
// stores, the name-keyed type map, the object path index, and the type
// package reference. It exists between Initialize and Shutdown.
type runtime struct {
	cfg     Config
	log     log.Log
	objects *refcount.Store[Object]
	types   *refcount.Store[Type]

	mu         sync.RWMutex
	registry   map[string]refcount.Strong[Type]
	paths      map[string]*Object
	typePkg    *Package
	typePkgRef refcount.Strong[Object]
	rootType   *Type
}

var (
	initMu sync.Mutex
	state  atomic.Pointer[runtime]
)

// Initialize builds the proxy stores and the type registry. It must run
// before any worker goroutine touches this package; the guard makes a
// racing second call an error rather than corruption. A second call while
// the runtime is up returns ErrAlreadyInitialized.
func Initialize(cfg Config, logger log.Log) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("object runtime config: %w", err)
	}
	if logger == nil {
		logger = log.Provide()
	}

	initMu.Lock()
	defer initMu.Unlock()
	if state.Load() != nil {
		return ErrAlreadyInitialized
	}

	r := &runtime{
		cfg: cfg,
		log: logger,
		objects: refcount.NewStore[Object](refcount.Options{
			BlockSize:   cfg.PoolBlockSize,
			Diagnostics: cfg.Diagnostics,
			Logger:      logger,
		}),
		types: refcount.NewStore[Type](refcount.Options{
			BlockSize:   cfg.PoolBlockSize,
			Diagnostics: cfg.Diagnostics,
			Logger:      logger,
		}),
		registry: make(map[string]refcount.Strong[Type]),
		paths:    make(map[string]*Object),
	}
	state.Store(r)

	logger.Info("object runtime initialized",
		log.Int("pool_block_size", cfg.PoolBlockSize),
		log.Bool("diagnostics", cfg.Diagnostics))
	return nil
}

// SetTypePackage installs the package in which all type template objects are
// stored, holding the single shared reference to it until Shutdown. It may
// only be set once per runtime.
func SetTypePackage(pkg *Package) {
	r := initialized()
	if pkg == nil {
		panic("object: type package must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.typePkg != nil {
		panic("object: type package set twice")
	}
	r.typePkg = pkg
	r.typePkgRef = refcount.NewStrong(r.objects, &pkg.Object)
}

// TypePackage returns the installed type package, or nil.
func TypePackage() *Package {
	r := state.Load()
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.typePkg
}

// Shutdown tears down type registration. The distinguished root type is
// unregistered first, since it is not a member of the generic type package;
// any other type still registered at this point is unexpected and logged
// before it is forcibly unregistered. Calling Shutdown when the runtime is
// already down is tolerated and logs a warning; every other misuse of a
// torn-down runtime panics.
func Shutdown() {
	initMu.Lock()
	defer initMu.Unlock()

	r := state.Load()
	if r == nil {
		log.Provide().Warn("object runtime shutdown called while not initialized")
		return
	}
	r.log.Info("shutting down type registration")

	r.mu.Lock()
	root := r.rootType
	r.mu.Unlock()
	if root != nil {
		UnregisterType(root)
	}

	for {
		r.mu.RLock()
		var leftover *Type
		for _, entry := range r.registry {
			leftover = entry.Get()
			break
		}
		r.mu.RUnlock()
		if leftover == nil {
			break
		}
		r.log.Warn("type still registered at shutdown",
			log.String("type", leftover.Name()))
		UnregisterType(leftover)
	}

	r.mu.Lock()
	if stray := len(r.paths); stray > 0 {
		r.log.Warn("objects still registered at shutdown", log.Int("count", stray))
	}
	if r.typePkgRef.Valid() {
		r.typePkgRef.Release()
	}
	r.registry = nil
	r.paths = nil
	r.typePkg = nil
	r.rootType = nil
	r.mu.Unlock()

	r.types.Shutdown()
	r.objects.Shutdown()
	state.Store(nil)

	r.log.Info("type registration shutdown complete")
}

// Stats is a point-in-time view of runtime occupancy. Under concurrent
// mutation the counters are eventually consistent snapshots.
type Stats struct {
	RegisteredTypes     int
	ActiveObjectProxies int
	ActiveTypeProxies   int
}

// RuntimeStats reports current registry and proxy-store occupancy.
func RuntimeStats() Stats {
	r := initialized()
	return Stats{
		RegisteredTypes:     TypeCount(),
		ActiveObjectProxies: r.objects.ActiveCount(),
		ActiveTypeProxies:   r.types.ActiveCount(),
	}
}

// initialized returns the live runtime, panicking when the registration
// system is used outside the Initialize/Shutdown window.
func initialized() *runtime {
	r := state.Load()
	if r == nil {
		panic("object: runtime used before Initialize or after Shutdown")
	}
	return r
}

// cloneTypeRef acquires another owning reference to a registered type by
// cloning the registry's entry.
func (r *runtime) cloneTypeRef(t *Type) refcount.Strong[Type] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.registry[t.name]
	if !ok || entry.Get() != t {
		panic(fmt.Sprintf("object: type %q is not registered", t.name))
	}
	return entry.Clone()
}
