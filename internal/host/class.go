package host

import (
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Class is a host type as seen by scripts: a qualified name bound to a Go type,
// plus the static members, constructors and extension methods registered for it.
type Class struct {
	name  string
	typ   reflect.Type
	kind  Kind
	elem  *Class
	super *Class
	reg   *Registry

	mu      sync.RWMutex
	fields  map[string]*Field
	statics map[string][]*Method
	ctors   []*Method
	ext     map[string][]*Method
}

func newClass(reg *Registry, name string, typ reflect.Type) *Class {
	return &Class{
		name:    name,
		typ:     typ,
		kind:    KindOf(typ),
		reg:     reg,
		fields:  make(map[string]*Field),
		statics: make(map[string][]*Method),
		ext:     make(map[string][]*Method),
	}
}

func (c *Class) Name() string { return c.name }

// SimpleName is the last dotted segment of the name.
func (c *Class) SimpleName() string {
	if i := strings.LastIndexByte(c.name, '.'); i >= 0 && !strings.HasSuffix(c.name, "[]") {
		return c.name[i+1:]
	}
	return c.name
}

// Package is the dotted prefix of the name, empty for primitives and unnamed classes.
func (c *Class) Package() string {
	if i := strings.LastIndexByte(c.name, '.'); i >= 0 && !strings.HasSuffix(c.name, "[]") {
		return c.name[:i]
	}
	return ""
}

func (c *Class) String() string      { return c.name }
func (c *Class) Type() reflect.Type  { return c.typ }
func (c *Class) Kind() Kind          { return c.kind }
func (c *Class) IsPrimitive() bool   { return c.kind.IsPrimitive() }
func (c *Class) IsVoid() bool        { return c.typ == nil }
func (c *Class) IsArray() bool       { return c.elem != nil }
func (c *Class) Elem() *Class        { return c.elem }
func (c *Class) Super() *Class       { return c.super }
func (c *Class) Registry() *Registry { return c.reg }

// IsInterface reports whether values of other types may be assigned to the class
// by implementing it.
func (c *Class) IsInterface() bool {
	return c.typ != nil && c.typ.Kind() == reflect.Interface
}

// AssignableFrom reports whether a value of class from may be stored where c is
// expected without any conversion. Primitive widening and boxing are not
// assignability; the cast engine applies them.
func (c *Class) AssignableFrom(from *Class) bool {
	if c == nil || from == nil || c.IsVoid() || from.IsVoid() {
		return false
	}
	if c == from {
		return true
	}
	if c.IsPrimitive() || from.IsPrimitive() {
		return false
	}
	for s := from.super; s != nil; s = s.super {
		if s == c {
			return true
		}
	}
	if c.IsArray() && from.IsArray() {
		return c.typ == from.typ
	}
	return from.typ.AssignableTo(c.typ)
}

// IsInstance reports whether a non-nil Go value is an instance of the class.
func (c *Class) IsInstance(v any) bool {
	if v == nil || c.IsVoid() {
		return false
	}
	return c.AssignableFrom(c.reg.ClassOf(reflect.TypeOf(v)))
}

// StaticField looks up a registered static field by script name.
func (c *Class) StaticField(name string) (*Field, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.fields[name]
	return f, ok
}

// Fields lists the static field names, sorted.
func (c *Class) Fields() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.fields))
	for n := range c.fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// StaticMethods returns the static overloads registered under name.
func (c *Class) StaticMethods(name string) []*Method {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Method(nil), c.statics[name]...)
}

// Constructors returns the registered constructors. A struct or pointer-to-struct
// class without registered constructors gets an implicit no-argument one.
func (c *Class) Constructors() []*Method {
	c.mu.RLock()
	ctors := append([]*Method(nil), c.ctors...)
	c.mu.RUnlock()
	if len(ctors) == 0 && c.typ != nil {
		t := c.typ
		if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct {
			ctors = append(ctors, implicitConstructor(c, func() reflect.Value { return reflect.New(t.Elem()) }))
		} else if t.Kind() == reflect.Struct {
			ctors = append(ctors, implicitConstructor(c, func() reflect.Value { return reflect.New(t).Elem() }))
		}
	}
	return ctors
}

// Methods returns the instance overloads named name: Go methods of the class's
// type (script foo matches Go Foo), extension methods of the class and its
// declared supers, then the universal extensions registered on the registry's
// object class.
func (c *Class) Methods(name string) []*Method {
	var out []*Method
	if c.typ != nil {
		for _, goName := range memberNames(name) {
			if m, ok := c.typ.MethodByName(goName); ok {
				out = append(out, c.reg.boundMethod(c, name, m))
			}
		}
	}
	for k := c; k != nil; k = k.super {
		k.mu.RLock()
		out = append(out, k.ext[name]...)
		k.mu.RUnlock()
	}
	if obj := c.reg.objectClass(); obj != nil && obj != c {
		obj.mu.RLock()
		out = append(out, obj.ext[name]...)
		obj.mu.RUnlock()
	}
	return out
}

// MethodNames lists every script-visible instance method name, sorted.
func (c *Class) MethodNames() []string {
	seen := make(map[string]bool)
	if c.typ != nil {
		for i := 0; i < c.typ.NumMethod(); i++ {
			seen[scriptName(c.typ.Method(i).Name)] = true
		}
	}
	for k := c; k != nil; k = k.super {
		k.mu.RLock()
		for n := range k.ext {
			seen[n] = true
		}
		k.mu.RUnlock()
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// memberNames are the Go identifiers a script member name may bind to.
func memberNames(name string) []string {
	exported := exportName(name)
	if exported == name {
		return []string{name}
	}
	return []string{exported}
}

func exportName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

func scriptName(goName string) string {
	r, size := utf8.DecodeRuneInString(goName)
	if r == utf8.RuneError {
		return goName
	}
	return string(unicode.ToLower(r)) + goName[size:]
}
