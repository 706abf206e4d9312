package evaluator

import (
	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

func (e *Evaluator) evalLiteral(n *ast.Literal) (Value, error) {
	switch v := n.Value.(type) {
	case nil:
		return NULL, nil
	case string:
		return &HostObject{Value: v}, nil
	}
	if p := NewPrimitive(n.Value); p != nil {
		return p, nil
	}
	return nil, interpreterError("unknown literal %T", n.Value)
}

func (e *Evaluator) evalFieldAccess(n *ast.FieldAccess, scope *Scope, cs *CallStack) (Value, error) {
	obj, err := e.Eval(n.Object, scope, cs)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case *This:
		nm := e.newName(n.Field, o.scope, cs)
		return nm.resolveThisFieldReference(o.scope, n.Field, true)
	case *ClassRef:
		return e.getStaticMember(o.Class, n.Field, scope)
	case *Null:
		return nil, newTargetError(lang.NewNullPointerException("Null Pointer while evaluating: " + n.String()))
	case *Void:
		return nil, newEvalError("Undefined variable or class name while evaluating: %s", n.String())
	case *Primitive:
		return nil, newEvalError("Can't treat primitive like an object. Error while evaluating: %s", n.String())
	}
	return e.getObjectField(obj, n.Field)
}

func (e *Evaluator) evalIndex(n *ast.IndexExpression, scope *Scope, cs *CallStack) (Value, error) {
	l, err := e.indexLHS(n, scope, cs)
	if err != nil {
		return nil, err
	}
	return l.Read()
}

func (e *Evaluator) indexLHS(n *ast.IndexExpression, scope *Scope, cs *CallStack) (LHS, error) {
	arr, err := e.Eval(n.Left, scope, cs)
	if err != nil {
		return nil, err
	}
	idx, err := e.Eval(n.Index, scope, cs)
	if err != nil {
		return nil, err
	}
	switch arr.(type) {
	case *Null:
		return nil, newTargetError(lang.NewNullPointerException("Attempt to index a null array: " + n.Left.String()))
	case *Void:
		return nil, newEvalError(errVoidOperand)
	}
	g := ToGo(arr)
	if !host.IsArray(g) {
		return nil, newEvalError("Not an array: %s", describe(arr))
	}
	iv, err := castObject(e.reg, e.reg.Primitive(host.Int), idx, castAssign, false)
	if err != nil {
		return nil, wrapEvalError(err, "Array index")
	}
	return &indexLHS{reg: e.reg, arr: g, index: int(iv.(*Primitive).Int64())}, nil
}

// lhsOf resolves an assignment target.
func (e *Evaluator) lhsOf(target ast.Expression, scope *Scope, cs *CallStack) (LHS, error) {
	switch t := target.(type) {
	case *ast.AmbiguousName:
		return e.newName(t.Name, scope, cs).ToLHS()
	case *ast.IndexExpression:
		return e.indexLHS(t, scope, cs)
	case *ast.FieldAccess:
		obj, err := e.Eval(t.Object, scope, cs)
		if err != nil {
			return nil, err
		}
		switch o := obj.(type) {
		case *This:
			return &varLHS{scope: o.scope, name: t.Field, local: true, strict: e.cfg.StrictJava}, nil
		case *ClassRef:
			return e.staticFieldLHS(o.Class, t.Field)
		}
		return e.objectFieldLHS(obj, t.Field)
	}
	return nil, newEvalError("Can't assign to %s", target.String())
}

func (e *Evaluator) evalTernary(n *ast.TernaryExpression, scope *Scope, cs *CallStack) (Value, error) {
	cond, err := e.evalCondition(n.Condition, scope, cs)
	if err != nil {
		return nil, err
	}
	if cond {
		return e.Eval(n.Consequence, scope, cs)
	}
	return e.Eval(n.Alternative, scope, cs)
}

// evalInstanceof is false for null and primitives.
func (e *Evaluator) evalInstanceof(n *ast.InstanceofExpression, scope *Scope, cs *CallStack) (Value, error) {
	v, err := e.Eval(n.Left, scope, cs)
	if err != nil {
		return nil, err
	}
	c, err := e.resolveType(n.Type, scope)
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case *Void:
		return nil, newEvalError(errVoidOperand)
	case *Null, *Primitive:
		return FALSE, nil
	}
	return nativeBool(c.IsInstance(ToGo(v))), nil
}

func (e *Evaluator) evalCast(n *ast.CastExpression, scope *Scope, cs *CallStack) (Value, error) {
	c, err := e.resolveType(n.Type, scope)
	if err != nil {
		return nil, err
	}
	v, err := e.Eval(n.Right, scope, cs)
	if err != nil {
		return nil, err
	}
	return castObject(e.reg, c, v, castExplicit, false)
}

// evalNew constructs a host object. With a body, an interface the registry
// can proxy is implemented by the object closure of the evaluated body;
// anything else goes to the class generator.
func (e *Evaluator) evalNew(n *ast.NewExpression, scope *Scope, cs *CallStack) (Value, error) {
	c, err := e.resolveType(n.Type, scope)
	if err != nil {
		return nil, err
	}
	args, err := e.evalArgs(n.Arguments, scope, cs)
	if err != nil {
		return nil, err
	}
	if n.Body == nil {
		return e.construct(c, args, cs)
	}

	if c.IsInterface() && len(args) == 0 && e.reg.HasProxySupport(c) {
		body := NewScope(scope, "anonymous "+c.SimpleName())
		if _, err := e.evalBlock(n.Body, body, cs); err != nil {
			return nil, err
		}
		p, err := e.reg.NewProxy(c, body.This())
		if err != nil {
			return nil, wrapEvalError(err, "Can't implement %s", c.Name())
		}
		return ToValue(p), nil
	}

	spec := ClassSpec{Body: n.Body, Scope: scope}
	if c.IsInterface() {
		spec.Implements = []*host.Class{c}
	} else {
		spec.Extends = c
	}
	gc, err := e.generateClass(spec, cs)
	if err != nil {
		return nil, err
	}
	return e.construct(gc.Class, args, cs)
}

func (e *Evaluator) evalArrayAllocation(n *ast.ArrayAllocation, scope *Scope, cs *CallStack) (Value, error) {
	elem, err := e.resolveType(n.Type, scope)
	if err != nil {
		return nil, err
	}
	if n.Init != nil {
		return e.evalArrayInitializer(n.Init, e.arrayOf(elem, n.TotalDims()), scope, cs)
	}

	dims := make([]int, len(n.Dims))
	for i, d := range n.Dims {
		v, err := e.Eval(d, scope, cs)
		if err != nil {
			return nil, err
		}
		p, err := castObject(e.reg, e.reg.Primitive(host.Int), v, castAssign, false)
		if err != nil {
			return nil, wrapEvalError(err, "Array dimension")
		}
		size := p.(*Primitive).Int64()
		if size < 0 {
			return nil, newTargetError(lang.NewNegativeArraySizeException(lang.ToString(int32(size))))
		}
		dims[i] = int(size)
	}
	arr, err := host.NewArray(elem, dims, n.ExtraDims)
	if err != nil {
		return nil, wrapEvalError(err, "Array allocation")
	}
	return &HostObject{Value: arr}, nil
}

// evalArrayInitializer builds an array of class c, Object[] when c is nil.
// Elements are converted as initializers are, narrowing constants that fit.
func (e *Evaluator) evalArrayInitializer(n *ast.ArrayInitializer, c *host.Class, scope *Scope, cs *CallStack) (Value, error) {
	if c == nil {
		obj, _ := e.reg.Resolve("java.lang.Object")
		c = e.reg.ArrayOf(obj)
	}
	elem := c.Elem()
	if elem == nil {
		return nil, newEvalError("Array initializer for non-array type %s", c.Name())
	}

	elems := make([]any, len(n.Elements))
	for i, x := range n.Elements {
		var (
			v   Value
			err error
		)
		if sub, ok := x.(*ast.ArrayInitializer); ok {
			if !elem.IsArray() {
				return nil, newEvalError("Too many dimensions in array initializer for %s", c.Name())
			}
			v, err = e.evalArrayInitializer(sub, elem, scope, cs)
		} else {
			v, err = e.Eval(x, scope, cs)
		}
		if err != nil {
			return nil, err
		}
		cv, err := castObject(e.reg, elem, v, castDeclare, false)
		if err != nil {
			return nil, wrapEvalError(err, "Array initializer element %d", i)
		}
		elems[i] = ToGo(cv)
	}
	arr, err := host.MakeArray(elem, elems)
	if err != nil {
		return nil, wrapEvalError(err, "Array initializer")
	}
	return &HostObject{Value: arr}, nil
}
