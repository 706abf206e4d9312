package evaluator

import (
	"sync"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/host"
)

// Variable is a named slot of a scope. An untyped variable takes whatever is
// assigned; a typed one casts every assignment to its class.
type Variable struct {
	Name      string
	Class     *host.Class // nil when untyped
	Modifiers ast.Modifiers

	mu       sync.Mutex
	value    Value
	assigned bool
}

func newVariable(reg *host.Registry, name string, class *host.Class, value Value, mods ast.Modifiers) (*Variable, error) {
	v := &Variable{Name: name, Class: class, Modifiers: mods}
	if err := v.set(reg, value, castDeclare); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Variable) IsTyped() bool { return v.Class != nil }
func (v *Variable) IsFinal() bool { return v.Modifiers.Has("final") }

// Value is the current value; a slot that never received one reads as void.
func (v *Variable) Value() Value {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.value == nil {
		return VOID
	}
	return v.value
}

// set stores x. A nil x is a declaration without initializer and installs
// the default value of the type. A final variable accepts one real value.
func (v *Variable) set(reg *host.Registry, x Value, mode castMode) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.IsFinal() && v.assigned {
		return newEvalError("Cannot re-assign final variable %s.", v.Name)
	}
	if x == nil {
		v.value = defaultValue(v.Class)
		return nil
	}
	if v.Class != nil {
		cast, err := castObject(reg, v.Class, x, mode, false)
		if err != nil {
			if _, ok := err.(*EvalError); ok {
				return wrapEvalError(err, "Variable assignment: %s", v.Name)
			}
			return err
		}
		x = cast
	}
	v.value = x
	v.assigned = true
	return nil
}

// defaultValue is zero for primitive classes and a typed null otherwise.
func defaultValue(c *host.Class) Value {
	switch {
	case c == nil:
		return VOID
	case c.IsPrimitive():
		return NewPrimitive(host.ZeroValue(c.Kind()))
	}
	return &Null{Class: c}
}
