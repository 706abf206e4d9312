package evaluator

import (
	"strings"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/config"
)

// evalArgs evaluates call arguments left to right. A void argument is an
// error.
func (e *Evaluator) evalArgs(exprs []ast.Expression, scope *Scope, cs *CallStack) ([]Value, error) {
	args := make([]Value, len(exprs))
	for i, x := range exprs {
		v, err := e.Eval(x, scope, cs)
		if err != nil {
			return nil, err
		}
		if isVoid(v) {
			return nil, newEvalError("Undefined argument: %s", x.String())
		}
		args[i] = v
	}
	return args, nil
}

// evalMethodInvocation calls a possibly dotted name. The prefix of a dotted
// name is resolved as an ambiguous name and the last segment invoked on it.
func (e *Evaluator) evalMethodInvocation(n *ast.MethodInvocation, scope *Scope, cs *CallStack) (Value, error) {
	args, err := e.evalArgs(n.Arguments, scope, cs)
	if err != nil {
		return nil, err
	}
	i := strings.LastIndexByte(n.Name, '.')
	if i < 0 {
		return e.invokeLocal(n.Name, args, scope, cs, n)
	}

	prefixName, method := n.Name[:i], n.Name[i+1:]
	obj, err := e.newName(prefixName, scope, cs).ToObject()
	if err != nil {
		return nil, err
	}
	if isVoid(obj) {
		return nil, newEvalError("Attempt to resolve method: %s() on undefined variable or class name: %s", method, prefixName)
	}
	return e.invokeObjectMethod(obj, method, args, cs, n)
}

func (e *Evaluator) evalMethodCall(n *ast.MethodCall, scope *Scope, cs *CallStack) (Value, error) {
	obj, err := e.Eval(n.Object, scope, cs)
	if err != nil {
		return nil, err
	}
	args, err := e.evalArgs(n.Arguments, scope, cs)
	if err != nil {
		return nil, err
	}
	return e.invokeObjectMethod(obj, n.Method, args, cs, n)
}

// invokeLocal calls an unqualified name: a script method visible from
// scope, a static import, a command, then the script's invoke(name, args).
func (e *Evaluator) invokeLocal(name string, args []Value, scope *Scope, cs *CallStack, node ast.Node) (Value, error) {
	if m, coerced := scope.GetMethod(name, args, false); m != nil {
		return m.Invoke(coerced, cs, node)
	}
	if ms := scope.staticImportMethods(name); len(ms) > 0 {
		if i, coerced := findMostSpecific(e.reg, hostCallables(ms), args); i >= 0 {
			return e.callHost(ms[i], nil, coerced, cs)
		}
	}
	if b, ok := e.commands.Get(name); ok {
		return b.Fn(e, scope, cs, args)
	}
	if m, coerced := scope.GetMethod(config.InvokeMethod, invokeArgs(name, args), false); m != nil {
		return m.Invoke(coerced, cs, node)
	}
	return nil, newEvalError("Command not found: %s", signatureString(e.reg, name, args))
}
