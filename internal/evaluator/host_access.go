package evaluator

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/config"
	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

func typeOf(v any) reflect.Type { return reflect.TypeOf(v) }

// invokeObjectMethod calls name on an object: a script method of an object
// closure, a static method of a type, or an instance method of a host value.
func (e *Evaluator) invokeObjectMethod(obj Value, name string, args []Value, cs *CallStack, node ast.Node) (Value, error) {
	switch o := obj.(type) {
	case *This:
		return o.invokeMethod(cs, name, args, node)
	case *ClassRef:
		return e.invokeStatic(o.Class, name, args, cs)
	case *Null:
		return nil, newTargetError(lang.NewNullPointerException("Null Pointer in Method Invocation of " + name))
	case *Void:
		return nil, newEvalError("Attempt to invoke method %s on undefined value", name)
	case *Primitive:
		return nil, newEvalError("Attempt to invoke method %s on primitive %s", name, describe(obj))
	}

	g := ToGo(obj)
	c := e.reg.ClassOf(typeOf(g))
	ms := c.Methods(name)
	i, coerced := findMostSpecific(e.reg, hostCallables(ms), args)
	if i < 0 {
		return nil, newEvalError("Method %s not found in class '%s'", signatureString(e.reg, name, args), c.Name())
	}
	return e.callHost(ms[i], g, coerced, cs)
}

func (e *Evaluator) invokeStatic(c *host.Class, name string, args []Value, cs *CallStack) (Value, error) {
	ms := c.StaticMethods(name)
	i, coerced := findMostSpecific(e.reg, hostCallables(ms), args)
	if i < 0 {
		return nil, newEvalError("Static method %s not found in class '%s'", signatureString(e.reg, name, args), c.Name())
	}
	return e.callHost(ms[i], nil, coerced, cs)
}

// construct instantiates a host class with the best matching constructor.
func (e *Evaluator) construct(c *host.Class, args []Value, cs *CallStack) (Value, error) {
	switch {
	case c.IsInterface():
		return nil, newEvalError("Can't create instance of an interface: %s", c.Name())
	case c.IsPrimitive(), c.IsVoid():
		return nil, newEvalError("Can't instantiate primitive type: %s", c.Name())
	}
	ctors := c.Constructors()
	if len(ctors) == 0 {
		return nil, newEvalError("Class %s has no constructors", c.Name())
	}
	i, coerced := findMostSpecific(e.reg, hostCallables(ctors), args)
	if i < 0 {
		return nil, newEvalError("Constructor error: Can't find constructor: %s", signatureString(e.reg, c.Name(), args))
	}
	return e.callHost(ctors[i], nil, coerced, cs)
}

// callHost calls a host method. With a call stack, script objects passed
// to it call back on that stack.
func (e *Evaluator) callHost(m *host.Method, recv any, args []Value, cs *CallStack) (Value, error) {
	goArgs := toGoValues(args)
	end := enterHost(cs, recv, goArgs)
	res, err := m.Call(recv, goArgs)
	end()
	if err != nil {
		return nil, hostError(err)
	}
	if m.ReturnType() == nil {
		return VOID, nil
	}
	return ToValue(res), nil
}

// hostError classifies a failure of host code. Errors of this package raised
// by script callbacks pass through; argument mismatches are evaluation
// errors; anything thrown or panicked by the host is a target error.
func hostError(err error) error {
	switch err.(type) {
	case *EvalError, *TargetError, *InterpreterError:
		return err
	}
	var pe *host.PanicError
	if errors.As(err, &pe) {
		switch v := pe.Value.(type) {
		case *EvalError:
			return v
		case *TargetError:
			return v
		case *InterpreterError:
			return v
		case error:
			return newTargetError(v)
		default:
			return newTargetError(lang.NewRuntimeException(fmt.Sprint(v)))
		}
	}
	var ae *host.ArgumentError
	if errors.As(err, &ae) {
		return wrapEvalError(err, "Error in method invocation")
	}
	return newTargetError(err)
}

// getObjectField reads a member of a host object: the length of an array,
// an exported struct field, or a bean property through its getter.
func (e *Evaluator) getObjectField(obj Value, field string) (Value, error) {
	if _, ok := obj.(*This); ok {
		return VOID, nil
	}
	g := ToGo(obj)
	if field == config.LengthName {
		if n, ok := host.ArrayLength(g); ok {
			return NewPrimitive(int32(n)), nil
		}
	}
	if v, ok := host.GetField(g, field); ok {
		return ToValue(v), nil
	}
	if m := e.reg.ClassOf(typeOf(g)).Getter(field); m != nil {
		return e.callHost(m, g, nil, nil)
	}
	return nil, newEvalError("Cannot access field: %s, on object: %s", field, describe(obj))
}

// getStaticMember reads a static field of c or names a class nested in it.
func (e *Evaluator) getStaticMember(c *host.Class, field string, scope *Scope) (Value, error) {
	if f, ok := c.StaticField(field); ok {
		return ToValue(f.Get()), nil
	}
	if inner, err := scope.GetClass(c.Name() + "." + field); err != nil {
		return nil, err
	} else if inner != nil {
		return &ClassRef{Class: inner}, nil
	}
	return nil, newEvalError("No static field or inner class: %s of %s", field, c.Name())
}
