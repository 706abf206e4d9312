package host

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sort"
	"strings"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// PackageLoader registers the classes of one package on first use.
// A loader must not resolve names of its own package.
type PackageLoader func(reg *Registry) error

// ClassSpec describes a Go type to expose under a qualified class name.
type ClassSpec struct {
	Name string
	Type reflect.Type
	// Super is the declared superclass, used for exception hierarchies.
	Super *Class
	// Fields are static fields: constant values, or Var(&v) for assignable ones.
	Fields map[string]any
	// Methods are static functions; several funcs under one name are overloads.
	Methods map[string][]any
	// Constructors are funcs returning a value of the class.
	Constructors []any
	// Extensions are funcs taking the receiver as first argument.
	Extensions map[string][]any
}

type variable struct{ ptr reflect.Value }

// Var marks a static field as assignable; ptr must be a pointer to the Go variable.
func Var(ptr any) any { return variable{ptr: reflect.ValueOf(ptr)} }

// Registry is the class manager: it maps qualified names and Go types to
// classes, loads packages lazily and notifies subscribers when class
// definitions change. It is safe for concurrent use.
type Registry struct {
	log zerolog.Logger

	byName   cmap.ConcurrentMap[string, *Class]
	byType   cmap.ConcurrentMap[reflect.Type, *Class]
	loaders  cmap.ConcurrentMap[string, PackageLoader]
	loaded   cmap.ConcurrentMap[string, bool]
	packages cmap.ConcurrentMap[string, bool]
	bound    cmap.ConcurrentMap[string, *Method]
	loads    singleflight.Group

	primitives map[Kind]*Class
	void       *Class

	mu        sync.RWMutex
	errorBase *Class
	proxies   map[reflect.Type]ProxyFactory
	subs      map[uint64]func(ReloadEvent)
	nextSub   uint64
}

func typeSharding(t reflect.Type) uint32 {
	h := fnv.New32a()
	h.Write([]byte(t.String()))
	return h.Sum32()
}

// NewRegistry creates a registry holding the primitive classes and void.
func NewRegistry(logger zerolog.Logger) *Registry {
	r := &Registry{
		log:        logger.With().Str("component", "registry").Logger(),
		byName:     cmap.New[*Class](),
		byType:     cmap.NewWithCustomShardingFunction[reflect.Type, *Class](typeSharding),
		loaders:    cmap.New[PackageLoader](),
		loaded:     cmap.New[bool](),
		packages:   cmap.New[bool](),
		bound:      cmap.New[*Method](),
		primitives: make(map[Kind]*Class),
		proxies:    make(map[reflect.Type]ProxyFactory),
		subs:       make(map[uint64]func(ReloadEvent)),
	}
	for k := Boolean; k <= Double; k++ {
		c := newClass(r, k.String(), k.GoType())
		r.primitives[k] = c
		r.byName.Set(c.name, c)
		r.byType.Set(c.typ, c)
	}
	r.void = newClass(r, "void", nil)
	r.byName.Set("void", r.void)
	return r
}

// Primitive returns the class of a primitive kind.
func (r *Registry) Primitive(k Kind) *Class { return r.primitives[k] }

// Void is the pseudo-class of methods without a result.
func (r *Registry) Void() *Class { return r.void }

// Register exposes a Go type under a qualified name.
func (r *Registry) Register(spec ClassSpec) (*Class, error) {
	if spec.Name == "" || strings.HasPrefix(spec.Name, ".") || strings.HasSuffix(spec.Name, ".") {
		return nil, fmt.Errorf("register: malformed class name %q", spec.Name)
	}
	if spec.Type == nil {
		return nil, fmt.Errorf("register %s: nil type", spec.Name)
	}
	if existing, ok := r.byName.Get(spec.Name); ok && existing.typ != spec.Type {
		return nil, fmt.Errorf("register %s: name already bound to %s", spec.Name, existing.typ)
	}

	c := newClass(r, spec.Name, spec.Type)
	c.super = spec.Super
	alias := false
	if prev, ok := r.byType.Get(spec.Type); ok && prev.name != spec.Name && r.byName.Has(prev.name) {
		// the type already has a named class; the new name is an alias
		c, alias = prev, true
		if c.super == nil {
			c.super = spec.Super
		}
	}

	c.mu.Lock()
	for name, v := range spec.Fields {
		f := &Field{Name: name}
		if vr, ok := v.(variable); ok {
			if vr.ptr.Kind() != reflect.Ptr {
				c.mu.Unlock()
				return nil, fmt.Errorf("register %s: field %s: Var needs a pointer", spec.Name, name)
			}
			f.ptr = vr.ptr
			f.Class = r.ClassOf(vr.ptr.Type().Elem())
		} else {
			f.value = reflect.ValueOf(v)
			f.Class = r.ClassOf(f.value.Type())
		}
		c.fields[name] = f
	}
	for name, fns := range spec.Methods {
		for _, fn := range fns {
			m, err := r.funcMethod(c, name, fn, 0)
			if err != nil {
				c.mu.Unlock()
				return nil, fmt.Errorf("register %s: %w", spec.Name, err)
			}
			m.static = true
			c.statics[name] = append(c.statics[name], m)
		}
	}
	for _, fn := range spec.Constructors {
		m, err := r.funcMethod(c, "<init>", fn, 0)
		if err != nil {
			c.mu.Unlock()
			return nil, fmt.Errorf("register %s: %w", spec.Name, err)
		}
		m.static = true
		m.ret = c
		c.ctors = append(c.ctors, m)
	}
	for name, fns := range spec.Extensions {
		for _, fn := range fns {
			m, err := r.funcMethod(c, name, fn, 1)
			if err != nil {
				c.mu.Unlock()
				return nil, fmt.Errorf("register %s: %w", spec.Name, err)
			}
			m.ext = true
			c.ext[name] = append(c.ext[name], m)
		}
	}
	c.mu.Unlock()

	r.byName.Set(spec.Name, c)
	if !alias {
		r.byType.Set(spec.Type, c)
	}
	if pkg := c.Package(); pkg != "" {
		r.packages.Set(pkg, true)
	}
	r.log.Debug().Str("class", spec.Name).Str("type", spec.Type.String()).Msg("class registered")
	r.notify(ReloadEvent{Classes: []string{spec.Name}})
	return c, nil
}

func (r *Registry) funcMethod(c *Class, name string, fn any, skip int) (*Method, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s: expected a func, got %T", name, fn)
	}
	if v.Type().NumIn() < skip {
		return nil, fmt.Errorf("%s: extension func needs a receiver parameter", name)
	}
	return &Method{name: name, owner: c, fn: v, sigType: v.Type(), sigSkip: skip}, nil
}

// boundMethod wraps a Go method found by reflection, cached per class and name.
func (r *Registry) boundMethod(c *Class, name string, gm reflect.Method) *Method {
	key := c.name + "#" + c.typ.String() + "#" + gm.Name
	if m, ok := r.bound.Get(key); ok {
		return m
	}
	skip := 1
	if c.typ.Kind() == reflect.Interface {
		skip = 0
	}
	m := &Method{name: name, owner: c, goName: gm.Name, sigType: gm.Type, sigSkip: skip}
	r.bound.SetIfAbsent(key, m)
	m, _ = r.bound.Get(key)
	return m
}

// RegisterPackage installs a lazy loader run the first time a name in pkg is resolved.
func (r *Registry) RegisterPackage(pkg string, loader PackageLoader) {
	r.loaders.Set(pkg, loader)
	r.packages.Set(pkg, true)
}

// loadPackage runs the package loader at most once, deduplicating concurrent callers.
func (r *Registry) loadPackage(pkg string) bool {
	loader, ok := r.loaders.Get(pkg)
	if !ok {
		return false
	}
	if done, _ := r.loaded.Get(pkg); done {
		return false
	}
	_, err, _ := r.loads.Do(pkg, func() (interface{}, error) {
		if done, _ := r.loaded.Get(pkg); done {
			return nil, nil
		}
		err := loader(r)
		r.loaded.Set(pkg, true)
		if err != nil {
			return nil, err
		}
		r.log.Debug().Str("package", pkg).Msg("package loaded")
		return nil, nil
	})
	if err != nil {
		r.log.Error().Err(err).Str("package", pkg).Msg("package loader failed")
	}
	return true
}

// HasPackage reports whether any class or loader is registered for pkg.
func (r *Registry) HasPackage(pkg string) bool {
	return r.packages.Has(pkg)
}

// Resolve finds a class by qualified name; "T[]" names resolve to array classes.
func (r *Registry) Resolve(name string) (*Class, bool) {
	if c, ok := r.byName.Get(name); ok {
		return c, true
	}
	if strings.HasSuffix(name, "[]") {
		elem, ok := r.Resolve(strings.TrimSuffix(name, "[]"))
		if !ok {
			return nil, false
		}
		if a := r.ArrayOf(elem); a != nil {
			return a, true
		}
		return nil, false
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		r.loadPackage(name[:i])
		return r.byName.Get(name)
	}
	return nil, false
}

// ClassOf returns the class of a Go type, creating an unnamed class for
// types that were never registered. Unregistered error types get the
// registry's error base as their superclass.
func (r *Registry) ClassOf(t reflect.Type) *Class {
	if t == nil {
		return r.void
	}
	if c, ok := r.byType.Get(t); ok {
		return c
	}
	if k := KindOf(t); k.IsPrimitive() {
		return r.primitives[k]
	}

	var c *Class
	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		elem := r.ClassOf(t.Elem())
		c = newClass(r, elem.name+"[]", t)
		c.elem = elem
	} else {
		c = newClass(r, t.String(), t)
		r.mu.RLock()
		base := r.errorBase
		r.mu.RUnlock()
		if base != nil && t != base.typ && t.Implements(errorType) {
			c.super = base
		}
	}
	r.byType.SetIfAbsent(t, c)
	c, _ = r.byType.Get(t)
	return c
}

// ArrayOf returns the array class with the given component class.
func (r *Registry) ArrayOf(elem *Class) *Class {
	if elem == nil || elem.IsVoid() {
		return nil
	}
	c := r.ClassOf(reflect.SliceOf(elem.typ))
	r.byName.SetIfAbsent(c.name, c)
	return c
}

// SetErrorBase sets the superclass given to unregistered error types.
func (r *Registry) SetErrorBase(c *Class) {
	r.mu.Lock()
	r.errorBase = c
	r.mu.Unlock()
}

func (r *Registry) objectClass() *Class {
	c, _ := r.byType.Get(anyType)
	return c
}

// SimpleNameIndex lists the qualified names whose last segment is simple,
// loading every lazy package first. It backs `import *`.
func (r *Registry) SimpleNameIndex(simple string) []string {
	for _, pkg := range r.loaders.Keys() {
		r.loadPackage(pkg)
	}
	var out []string
	for name, c := range r.byName.Items() {
		if !c.IsArray() && !c.IsPrimitive() && !c.IsVoid() && c.SimpleName() == simple && c.Package() != "" {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// ReloadEvent tells subscribers that class definitions changed.
// An empty Classes list means everything may have changed.
type ReloadEvent struct {
	Classes []string
}

// Subscription is a handle on a reload listener.
type Subscription struct {
	reg  *Registry
	id   uint64
	once sync.Once
}

// Cancel removes the listener. It is safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.reg.mu.Lock()
		delete(s.reg.subs, s.id)
		s.reg.mu.Unlock()
	})
}

// Subscribe registers fn to be called after every class change.
func (r *Registry) Subscribe(fn func(ReloadEvent)) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSub++
	r.subs[r.nextSub] = fn
	return &Subscription{reg: r, id: r.nextSub}
}

// Subscribers reports the number of live listeners.
func (r *Registry) Subscribers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Reload discards unnamed classes and notifies every subscriber.
func (r *Registry) Reload(classes ...string) {
	for t, c := range r.byType.Items() {
		if _, named := r.byName.Get(c.name); !named && !c.IsPrimitive() {
			r.byType.Remove(t)
		}
	}
	r.bound.Clear()
	r.log.Debug().Strs("classes", classes).Msg("class reload")
	r.notify(ReloadEvent{Classes: classes})
}

func (r *Registry) notify(ev ReloadEvent) {
	r.mu.RLock()
	fns := make([]func(ReloadEvent), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}
