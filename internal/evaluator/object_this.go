package evaluator

import (
	"reflect"
	"sync"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/config"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

// This is the object closure of a scope. Scripts obtain it with `this`,
// `super` or `global`, read and assign its variables through dotted names
// and call its methods. Host code calls it through Invoke, directly or
// behind an interface proxy.
type This struct {
	scope *Scope

	mu    sync.Mutex
	calls []*hostCall
}

func (t *This) Type() ValueType { return THIS_OBJ }
func (t *This) Inspect() string { return t.ToString() }

// Scope is the scope the closure exposes.
func (t *This) Scope() *Scope { return t.scope }

// Invoke calls a method of the closure from host code. It nests on the
// stack of the script call that handed the closure to host code while that
// call is in progress, and runs on a fresh stack otherwise.
func (t *This) Invoke(method string, args []any) (any, error) {
	cs, release := t.callStack()
	defer release()
	v, err := t.invokeMethod(cs, method, toValues(args), nil)
	if err != nil {
		return nil, err
	}
	return ToGo(v), nil
}

// invokeMethod calls a script method of the closure, then falls back to
// the object protocol defaults and to a script `invoke(name, args)` method.
func (t *This) invokeMethod(cs *CallStack, name string, args []Value, node ast.Node) (Value, error) {
	if m, coerced := t.scope.GetMethod(name, args, false); m != nil {
		return m.Invoke(coerced, cs, node)
	}

	switch {
	case name == config.ToStringMethod && len(args) == 0:
		return &HostObject{Value: t.defaultString()}, nil
	case name == config.HashCodeMethod && len(args) == 0:
		return NewPrimitive(t.identityHash()), nil
	case name == config.EqualsMethod && len(args) == 1:
		other, _ := args[0].(*This)
		return nativeBool(other == t), nil
	}

	if m, coerced := t.scope.GetMethod(config.InvokeMethod, invokeArgs(name, args), false); m != nil {
		return m.Invoke(coerced, cs, node)
	}
	return nil, newEvalError("Method %s not found in bsh scripted object: %s",
		signatureString(t.scope.ctx.reg, name, args), t.scope.name)
}

// invokeArgs are the arguments of the `invoke(String name, Object[] args)`
// meta-method: primitives are boxed as in an Object array.
func invokeArgs(name string, args []Value) []Value {
	boxed := make([]any, len(args))
	for i, a := range args {
		boxed[i] = lang.Box(ToGo(a))
	}
	return []Value{&HostObject{Value: name}, &HostObject{Value: boxed}}
}

// protocol calls a script override of an object protocol method, if the
// closure declares one.
func (t *This) protocol(name string, args ...Value) (Value, bool) {
	m, coerced := t.scope.GetMethod(name, args, false)
	if m == nil {
		return nil, false
	}
	cs, release := t.callStack()
	defer release()
	v, err := m.Invoke(coerced, cs, nil)
	if err != nil {
		return nil, false
	}
	return v, true
}

// ToString is the string form used by host formatting: the script's
// toString() when declared.
func (t *This) ToString() string {
	if v, ok := t.protocol(config.ToStringMethod); ok {
		return lang.ToString(ToGo(v))
	}
	return t.defaultString()
}

// HashCode is the script's hashCode() when declared, else identity.
func (t *This) HashCode() int32 {
	if v, ok := t.protocol(config.HashCodeMethod); ok {
		if p, ok := unwrapPrimitive(v); ok && p.IsIntegral() {
			return int32(p.Int64())
		}
	}
	return t.identityHash()
}

// Equals is the script's equals(Object) when declared, else identity.
func (t *This) Equals(o any) bool {
	if v, ok := t.protocol(config.EqualsMethod, ToValue(o)); ok {
		if p, ok := unwrapPrimitive(v); ok && p.IsBoolean() {
			return p.Bool()
		}
	}
	other, _ := o.(*This)
	return other == t
}

func (t *This) defaultString() string {
	return "'this' reference to Bsh object: " + t.scope.name
}

func (t *This) identityHash() int32 {
	p := reflect.ValueOf(t).Pointer()
	return int32(p ^ p>>32)
}
