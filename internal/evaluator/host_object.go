package evaluator

import (
	"reflect"

	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

// HostObject wraps an arbitrary Go value: strings, arrays (slices), wrappers,
// exceptions, registered class instances and proxies.
type HostObject struct {
	Value any
}

func (h *HostObject) Type() ValueType { return HOST_OBJ }
func (h *HostObject) Inspect() string { return lang.ToString(h.Value) }

// ClassRef is a host type used in value position, the base of static field
// access and static method calls.
type ClassRef struct {
	Class *host.Class
}

func (c *ClassRef) Type() ValueType { return CLASS_OBJ }
func (c *ClassRef) Inspect() string { return "Class Identifier: " + c.Class.Name() }

// ToValue converts a Go value coming from the host into a script value.
// nil and nil pointers become null, primitive Go types become primitives.
func ToValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return NULL
	case Value:
		return x
	}
	if p := NewPrimitive(v); p != nil {
		return p
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			return NULL
		}
	}
	return &HostObject{Value: v}
}

// ToGo is the Go value passed to host code for a script value: the canonical
// Go value of a primitive, the wrapped value of a host object, nil for null
// and void. Object closures are passed as themselves.
func ToGo(v Value) any {
	switch x := v.(type) {
	case *Primitive:
		return x.v
	case *HostObject:
		return x.Value
	case *This:
		return x
	case *ClassRef:
		return x.Class
	}
	return nil
}

func toValues(args []any) []Value {
	out := make([]Value, len(args))
	for i, a := range args {
		out[i] = ToValue(a)
	}
	return out
}

func toGoValues(args []Value) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = ToGo(a)
	}
	return out
}

// classOf is the runtime class of a value; nil for null and void.
func classOf(reg *host.Registry, v Value) *host.Class {
	switch x := v.(type) {
	case *Primitive:
		return reg.Primitive(x.kind)
	case *Null, *Void, nil:
		return nil
	}
	return reg.ClassOf(reflect.TypeOf(ToGo(v)))
}

// wrapperClass is the class of the wrapper objects boxing kind k.
func wrapperClass(reg *host.Registry, k host.Kind) *host.Class {
	return reg.ClassOf(reflect.TypeOf(lang.Box(host.ZeroValue(k))))
}

// unwrapPrimitive returns the primitive held by a primitive value or a
// wrapper object.
func unwrapPrimitive(v Value) (*Primitive, bool) {
	switch x := v.(type) {
	case *Primitive:
		return x, true
	case *HostObject:
		if u, ok := lang.Unbox(x.Value); ok {
			return NewPrimitive(u), true
		}
	}
	return nil, false
}

func isWrapperValue(v Value) bool {
	h, ok := v.(*HostObject)
	return ok && lang.IsWrapper(h.Value)
}

func isString(v Value) bool {
	h, ok := v.(*HostObject)
	if !ok {
		return false
	}
	_, ok = h.Value.(string)
	return ok
}
