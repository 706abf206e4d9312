package evaluator

import (
	"strings"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

func (e *Evaluator) evalPrefix(n *ast.PrefixExpression, scope *Scope, cs *CallStack) (Value, error) {
	switch n.Operator {
	case "++", "--":
		_, nv, err := e.step(n.Right, n.Operator, scope, cs)
		return nv, err
	}
	v, err := e.Eval(n.Right, scope, cs)
	if err != nil {
		return nil, err
	}
	return unaryOperation(n.Operator, v)
}

func (e *Evaluator) evalPostfix(n *ast.PostfixExpression, scope *Scope, cs *CallStack) (Value, error) {
	old, _, err := e.step(n.Left, n.Operator, scope, cs)
	return old, err
}

// step applies ++ or -- to an assignable target and returns the values
// before and after. A wrapper target receives a new wrapper.
func (e *Evaluator) step(target ast.Expression, op string, scope *Scope, cs *CallStack) (old, updated Value, err error) {
	lhs, err := e.lhsOf(target, scope, cs)
	if err != nil {
		return nil, nil, err
	}
	cur, err := lhs.Read()
	if err != nil {
		return nil, nil, err
	}
	if isVoid(cur) {
		return nil, nil, newEvalError(errVoidOperand)
	}
	p, ok := unwrapPrimitive(cur)
	if !ok {
		return nil, nil, newEvalError("Operator: '%s' inappropriate for %s", op, describe(cur))
	}
	delta := int64(1)
	if op == "--" {
		delta = -1
	}
	np, err := increment(p, delta)
	if err != nil {
		return nil, nil, err
	}
	var nv Value = np
	if isWrapperValue(cur) {
		nv = &HostObject{Value: lang.Box(np.v)}
	}
	stored, err := lhs.Write(nv)
	if err != nil {
		return nil, nil, err
	}
	return cur, stored, nil
}

func (e *Evaluator) evalInfix(n *ast.InfixExpression, scope *Scope, cs *CallStack) (Value, error) {
	switch n.Operator {
	case "&&", "||":
		return e.evalLogical(n, scope, cs)
	}
	l, err := e.Eval(n.Left, scope, cs)
	if err != nil {
		return nil, err
	}
	r, err := e.Eval(n.Right, scope, cs)
	if err != nil {
		return nil, err
	}
	if n.Operator == "+" {
		// string conversion calls toString() of script objects
		defer enterHost(cs, ToGo(l), []any{ToGo(r)})()
	}
	return binaryOperation(n.Operator, l, r)
}

// evalLogical short-circuits && and ||.
func (e *Evaluator) evalLogical(n *ast.InfixExpression, scope *Scope, cs *CallStack) (Value, error) {
	l, err := e.logicalOperand(n.Left, n.Operator, scope, cs)
	if err != nil {
		return nil, err
	}
	if n.Operator == "&&" && !l {
		return FALSE, nil
	}
	if n.Operator == "||" && l {
		return TRUE, nil
	}
	r, err := e.logicalOperand(n.Right, n.Operator, scope, cs)
	if err != nil {
		return nil, err
	}
	return nativeBool(r), nil
}

func (e *Evaluator) logicalOperand(x ast.Expression, op string, scope *Scope, cs *CallStack) (bool, error) {
	v, err := e.Eval(x, scope, cs)
	if err != nil {
		return false, err
	}
	if isVoid(v) {
		return false, newEvalError(errVoidOperand)
	}
	p, ok := unwrapPrimitive(v)
	if !ok || !p.IsBoolean() {
		return false, newEvalError("Operator: '%s' inappropriate for %s", op, describe(v))
	}
	return p.Bool(), nil
}

// evalAssign handles = and the compound operators. The result of a
// compound operation is converted back to the kind of a primitive target,
// as Java's implicit narrowing does.
func (e *Evaluator) evalAssign(n *ast.AssignExpression, scope *Scope, cs *CallStack) (Value, error) {
	lhs, err := e.lhsOf(n.Target, scope, cs)
	if err != nil {
		return nil, err
	}

	if n.Operator == "=" {
		var v Value
		if ai, ok := n.Value.(*ast.ArrayInitializer); ok {
			v, err = e.evalArrayInitializer(ai, e.declaredClass(lhs), scope, cs)
		} else {
			v, err = e.Eval(n.Value, scope, cs)
		}
		if err != nil {
			return nil, err
		}
		if isVoid(v) {
			return nil, newEvalError("Can't assign void to %s", n.Target.String())
		}
		return lhs.Write(v)
	}

	cur, err := lhs.Read()
	if err != nil {
		return nil, err
	}
	if isVoid(cur) {
		return nil, newEvalError("%s: %s", errVoidOperand, n.Target.String())
	}
	r, err := e.Eval(n.Value, scope, cs)
	if err != nil {
		return nil, err
	}
	end := enterHost(cs, ToGo(cur), []any{ToGo(r)})
	res, err := binaryOperation(strings.TrimSuffix(n.Operator, "="), cur, r)
	end()
	if err != nil {
		return nil, err
	}
	if cp, ok := unwrapPrimitive(cur); ok && !e.untypedVariable(lhs) {
		if rp, ok := res.(*Primitive); ok && cp.IsNumeric() && rp.IsNumeric() {
			if rp, err = castPrimitive(cp.kind, rp, castExplicit); err != nil {
				return nil, err
			}
			res = rp
			if isWrapperValue(cur) {
				res = &HostObject{Value: lang.Box(rp.v)}
			}
		}
	}
	return lhs.Write(res)
}

// untypedVariable reports whether l is a loosely typed variable, which
// takes the type of every value assigned to it.
func (e *Evaluator) untypedVariable(l LHS) bool {
	_, ok := l.(*varLHS)
	return ok && e.declaredClass(l) == nil
}

// declaredClass is the class of a typed variable target, nil otherwise.
func (e *Evaluator) declaredClass(l LHS) *host.Class {
	v, ok := l.(*varLHS)
	if !ok {
		return nil
	}
	if slot := v.scope.lookupVariable(v.name, !v.local); slot != nil {
		return slot.Class
	}
	return nil
}
