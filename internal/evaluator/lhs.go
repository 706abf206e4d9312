package evaluator

import (
	"errors"
	"fmt"

	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

// LHS is an assignable location: a variable, a field, an array element or a
// bean property.
type LHS interface {
	Read() (Value, error)
	// Write stores v and returns the value actually stored.
	Write(v Value) (Value, error)
}

// varLHS is a variable of a scope. local restricts the assignment to the
// scope itself, as for this.x and a.x on object closures.
type varLHS struct {
	scope  *Scope
	name   string
	local  bool
	strict bool
}

func (l *varLHS) Read() (Value, error) {
	if v, ok := l.scope.GetVariable(l.name, !l.local); ok {
		return v, nil
	}
	return VOID, nil
}

func (l *varLHS) Write(v Value) (Value, error) {
	if isVoid(v) {
		return nil, newEvalError("Can't assign void to %s", l.name)
	}
	if err := l.scope.SetVariable(l.name, v, l.strict, !l.local); err != nil {
		return nil, err
	}
	return l.Read()
}

// fieldLHS is an exported struct field of a host object.
type fieldLHS struct {
	reg  *host.Registry
	obj  any
	name string
}

func (l *fieldLHS) Read() (Value, error) {
	v, ok := host.GetField(l.obj, l.name)
	if !ok {
		return nil, newEvalError("No such field: %s", l.name)
	}
	return ToValue(v), nil
}

func (l *fieldLHS) Write(v Value) (Value, error) {
	fc, _ := host.FieldClass(l.reg, l.obj, l.name)
	cast, err := castObject(l.reg, fc, v, castAssign, false)
	if err != nil {
		return nil, wrapEvalError(err, "Field assignment: %s", l.name)
	}
	if err := host.SetField(l.obj, l.name, ToGo(cast)); err != nil {
		return nil, wrapEvalError(err, "Field assignment: %s", l.name)
	}
	return cast, nil
}

// staticFieldLHS is a registered static field.
type staticFieldLHS struct {
	reg   *host.Registry
	class *host.Class
	field *host.Field
}

func (l *staticFieldLHS) Read() (Value, error) { return ToValue(l.field.Get()), nil }

func (l *staticFieldLHS) Write(v Value) (Value, error) {
	if l.field.IsFinal() {
		return nil, newEvalError("Cannot assign to final field %s.%s", l.class.Name(), l.field.Name)
	}
	cast, err := castObject(l.reg, l.field.Class, v, castAssign, false)
	if err != nil {
		return nil, wrapEvalError(err, "Field assignment: %s", l.field.Name)
	}
	if err := l.field.Set(ToGo(cast)); err != nil {
		return nil, wrapEvalError(err, "Field assignment: %s", l.field.Name)
	}
	return cast, nil
}

// indexLHS is one element of an array.
type indexLHS struct {
	reg   *host.Registry
	arr   any
	index int
}

func (l *indexLHS) Read() (Value, error) {
	v, err := host.ArrayGet(l.arr, l.index)
	if err != nil {
		return nil, indexError(err)
	}
	return ToValue(v), nil
}

func (l *indexLHS) Write(v Value) (Value, error) {
	cast, err := castObject(l.reg, l.reg.ArrayElemType(l.arr), v, castAssign, false)
	if err != nil {
		return nil, wrapEvalError(err, "Array element assignment")
	}
	if err := host.ArraySet(l.arr, l.index, ToGo(cast)); err != nil {
		return nil, indexError(err)
	}
	return cast, nil
}

// indexError turns an out of range access into the script exception.
func indexError(err error) error {
	var ie *host.IndexError
	if errors.As(err, &ie) {
		return newTargetError(lang.NewArrayIndexOutOfBoundsException(
			fmt.Sprintf("Index %d out of bounds for length %d", ie.Index, ie.Length)))
	}
	return wrapEvalError(err, "Array access")
}

// propertyLHS is a bean property written through its setter.
type propertyLHS struct {
	ev   *Evaluator
	obj  any
	name string
}

func (l *propertyLHS) Read() (Value, error) {
	return l.ev.getObjectField(&HostObject{Value: l.obj}, l.name)
}

func (l *propertyLHS) Write(v Value) (Value, error) {
	reg := l.ev.reg
	c := reg.ClassOf(typeOf(l.obj))
	setters := c.Setters(l.name)
	i, coerced := findMostSpecific(reg, hostCallables(setters), []Value{v})
	if i < 0 {
		return nil, newEvalError("No such property: %s on %s", l.name, c.Name())
	}
	if _, err := l.ev.callHost(setters[i], l.obj, coerced, nil); err != nil {
		return nil, err
	}
	return coerced[0], nil
}

func (e *Evaluator) staticFieldLHS(c *host.Class, name string) (LHS, error) {
	f, ok := c.StaticField(name)
	if !ok {
		return nil, newEvalError("No such static field: %s.%s", c.Name(), name)
	}
	return &staticFieldLHS{reg: e.reg, class: c, field: f}, nil
}

// objectFieldLHS is the assignable member name of a host object: a struct
// field, else a bean property with a setter.
func (e *Evaluator) objectFieldLHS(obj Value, name string) (LHS, error) {
	switch obj.(type) {
	case *Null:
		return nil, newTargetError(lang.NewNullPointerException("Null Pointer in LHS: " + name))
	case *Void:
		return nil, newEvalError("Undefined variable in LHS before: %s", name)
	case *Primitive:
		return nil, newEvalError("Can't assign to field %s of a primitive", name)
	}
	g := ToGo(obj)
	if host.HasField(g, name) {
		return &fieldLHS{reg: e.reg, obj: g, name: name}, nil
	}
	if len(e.reg.ClassOf(typeOf(g)).Setters(name)) > 0 {
		return &propertyLHS{ev: e, obj: g, name: name}, nil
	}
	return nil, newEvalError("No such field or property: %s on %s", name, lang.ClassName(g))
}
