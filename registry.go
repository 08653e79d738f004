package statetree

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/go-statetree/statetree/wire"
)

// Node is anything that wraps a state object. Custom proxy classes embed or
// hold an *Object and are produced by the Factory registered for their type
// name; the generic fallback is the *Object itself.
type Node interface {
	State() *Object
}

// Factory builds a typed proxy around a freshly decoded state object.
type Factory func(*Object) Node

// Class ties a discovered type name to the proxy factory that should wrap
// nodes of that type. Instances are handed out by Registry.Register and
// Registry.Resolve and are comparable by identity.
type Class struct {
	name    string
	factory Factory
	generic bool
}

// Name returns the remote type name this class is bound to.
func (c *Class) Name() string { return c.name }

// Generic reports whether this class was synthesized as a fallback rather
// than registered explicitly.
func (c *Class) Generic() bool { return c.generic }

func (c *Class) wrap(o *Object) Node {
	if c.factory == nil {
		return o
	}
	return c.factory(o)
}

// Registry maps (backend, type name) pairs to proxy classes. It is an
// explicit value owned by whoever performed the connection search and passed
// by reference into clients, so clearing one backend's registrations can
// never disturb another's.
//
// Backends are used as map keys and must therefore be comparable values
// (pointers are fine).
type Registry struct {
	logger *zap.Logger

	mu      sync.Mutex
	classes map[wire.Backend]map[string]*Class
}

// NewRegistry creates an empty registry. A nil logger is replaced with a
// no-op logger.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger:  logger.Named("registry"),
		classes: make(map[wire.Backend]map[string]*Class),
	}
}

// Register binds a proxy factory to a type name on one backend. It is meant
// to be called once per proxy class definition, typically right after the
// connection search; registering the same name twice on the same backend is
// an error.
func (r *Registry) Register(b wire.Backend, typeName string, factory Factory) (*Class, error) {
	if b == nil {
		return nil, fmt.Errorf("cannot register proxy class %q: backend is nil", typeName)
	}
	if typeName == "" {
		return nil, fmt.Errorf("cannot register a proxy class with an empty type name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byName := r.classes[b]
	if byName == nil {
		byName = make(map[string]*Class)
		r.classes[b] = byName
	}
	if existing, ok := byName[typeName]; ok && !existing.generic {
		return nil, fmt.Errorf("proxy class %q is already registered for this backend", typeName)
	}

	c := &Class{name: typeName, factory: factory}
	byName[typeName] = c
	r.logger.Debug("registered proxy class", zap.String("type", typeName))
	return c, nil
}

// Resolve returns the class registered for typeName on backend b. A miss is
// not an error: a generic class bound to the type name is synthesized,
// cached and returned, and the miss is logged so the missing specialization
// is visible.
func (r *Registry) Resolve(b wire.Backend, typeName string) *Class {
	r.mu.Lock()
	defer r.mu.Unlock()

	byName := r.classes[b]
	if byName == nil {
		byName = make(map[string]*Class)
		r.classes[b] = byName
	}
	if c, ok := byName[typeName]; ok {
		return c
	}

	r.logger.Warn("no proxy class registered for type, using generic state object",
		zap.String("type", typeName))
	c := &Class{name: typeName, generic: true}
	byName[typeName] = c
	return c
}

// Clear removes every registration for one backend. Registrations belonging
// to other backends are untouched; a long-lived system backend must survive
// a short-lived per-test application backend being torn down.
func (r *Registry) Clear(b wire.Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.classes, b)
}
