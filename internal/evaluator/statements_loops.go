package evaluator

import (
	"errors"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

// loopControl interprets the result of a loop body for a loop labelled
// label. stop ends the loop; a non-nil out must be propagated outward.
func loopControl(v Value, label string) (stop bool, out Value) {
	switch s := v.(type) {
	case *BreakSignal:
		if s.Label == "" || s.Label == label {
			return true, nil
		}
		return true, s
	case *ContinueSignal:
		if s.Label == "" || s.Label == label {
			return false, nil
		}
		return true, s
	case *ReturnValue:
		return true, s
	}
	return false, nil
}

func loopResult(out Value) (Value, error) {
	if out != nil {
		return out, nil
	}
	return VOID, nil
}

func (e *Evaluator) evalWhile(n *ast.WhileStatement, label string, scope *Scope, cs *CallStack) (Value, error) {
	for {
		ok, err := e.evalCondition(n.Condition, scope, cs)
		if err != nil {
			return nil, err
		}
		if !ok {
			return VOID, nil
		}
		v, err := e.Eval(n.Body, scope, cs)
		if err != nil {
			return nil, err
		}
		if stop, out := loopControl(v, label); stop {
			return loopResult(out)
		}
	}
}

func (e *Evaluator) evalDoWhile(n *ast.DoWhileStatement, label string, scope *Scope, cs *CallStack) (Value, error) {
	for {
		v, err := e.Eval(n.Body, scope, cs)
		if err != nil {
			return nil, err
		}
		if stop, out := loopControl(v, label); stop {
			return loopResult(out)
		}
		ok, err := e.evalCondition(n.Condition, scope, cs)
		if err != nil {
			return nil, err
		}
		if !ok {
			return VOID, nil
		}
	}
}

// evalFor runs the initializer in a loop scope of its own; a braced body
// gets a fresh block scope below it on every iteration.
func (e *Evaluator) evalFor(n *ast.ForStatement, label string, scope *Scope, cs *CallStack) (Value, error) {
	loop := newLoopScope(scope)
	for _, s := range n.Init {
		if _, err := e.Eval(s, loop, cs); err != nil {
			return nil, err
		}
	}
	for {
		if n.Condition != nil {
			ok, err := e.evalCondition(n.Condition, loop, cs)
			if err != nil {
				return nil, err
			}
			if !ok {
				return VOID, nil
			}
		}
		v, err := e.Eval(n.Body, loop, cs)
		if err != nil {
			return nil, err
		}
		if stop, out := loopControl(v, label); stop {
			return loopResult(out)
		}
		for _, u := range n.Update {
			if _, err := e.Eval(u, loop, cs); err != nil {
				return nil, err
			}
		}
	}
}

var errStopIteration = errors.New("stop iteration")

// evalEnhancedFor iterates arrays, strings, maps (keys) and iterables. Each
// element is bound in a new block scope; an untyped loop variable is
// assigned as an ordinary variable and stays visible after the loop.
func (e *Evaluator) evalEnhancedFor(n *ast.EnhancedForStatement, label string, scope *Scope, cs *CallStack) (Value, error) {
	var c *host.Class
	if n.VarType != nil {
		var err error
		if c, err = e.resolveType(n.VarType, scope); err != nil {
			return nil, err
		}
	}
	coll, err := e.Eval(n.Iterable, scope, cs)
	if err != nil {
		return nil, err
	}
	switch coll.(type) {
	case *Void:
		return nil, newEvalError(errVoidOperand)
	case *Primitive:
		return nil, newEvalError("Can't iterate over type: %s", describe(coll))
	case *Null:
		return nil, newTargetError(lang.NewNullPointerException("Null Pointer in enhanced for: " + n.VarName))
	}
	src := ToGo(coll)
	if !lang.IsIterable(src) {
		return nil, newEvalError("Can't iterate over type: %s", lang.ClassName(src))
	}

	var mods ast.Modifiers
	if n.Final {
		mods = ast.Modifiers{"final"}
	}
	var out Value
	err = lang.Each(src, func(x any) error {
		body := NewBlockScope(scope)
		if c != nil {
			if err := body.SetTypedVariable(n.VarName, c, ToValue(x), mods); err != nil {
				return err
			}
		} else if err := body.SetVariable(n.VarName, ToValue(x), e.cfg.StrictJava, true); err != nil {
			return err
		}
		v, err := e.Eval(n.Body, body, cs)
		if err != nil {
			return err
		}
		if stop, o := loopControl(v, label); stop {
			out = o
			return errStopIteration
		}
		return nil
	})
	if err != nil && err != errStopIteration {
		return nil, hostError(err)
	}
	return loopResult(out)
}
