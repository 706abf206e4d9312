package evaluator

import (
	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

func (e *Evaluator) evalLabeled(n *ast.LabeledStatement, scope *Scope, cs *CallStack) (Value, error) {
	var (
		v   Value
		err error
	)
	switch b := n.Body.(type) {
	case *ast.WhileStatement:
		v, err = e.evalWhile(b, n.Label, scope, cs)
	case *ast.DoWhileStatement:
		v, err = e.evalDoWhile(b, n.Label, scope, cs)
	case *ast.ForStatement:
		v, err = e.evalFor(b, n.Label, scope, cs)
	case *ast.EnhancedForStatement:
		v, err = e.evalEnhancedFor(b, n.Label, scope, cs)
	case *ast.SwitchStatement:
		v, err = e.evalSwitch(b, n.Label, scope, cs)
	default:
		v, err = e.Eval(n.Body, scope, cs)
	}
	if err != nil {
		attachPosition(err, cs.file, n.Body.GetToken())
		return nil, err
	}
	if bs, ok := v.(*BreakSignal); ok && bs.Label == n.Label {
		return VOID, nil
	}
	return v, nil
}

// evalSwitch runs the statements from the first matching case, or default,
// to the end of the switch or a break. All cases share one block scope.
func (e *Evaluator) evalSwitch(n *ast.SwitchStatement, label string, scope *Scope, cs *CallStack) (Value, error) {
	val, err := e.Eval(n.Value, scope, cs)
	if err != nil {
		return nil, err
	}
	if isVoid(val) {
		return nil, newEvalError(errVoidOperand)
	}
	block := NewBlockScope(scope)

	matched := -1
cases:
	for i, c := range n.Cases {
		for _, ve := range c.Values {
			cv, err := e.Eval(ve, block, cs)
			if err != nil {
				return nil, err
			}
			eq, err := switchMatch(val, cv)
			if err != nil {
				return nil, err
			}
			if eq {
				matched = i
				break cases
			}
		}
	}
	if matched < 0 {
		for i, c := range n.Cases {
			if c.IsDefault {
				matched = i
				break
			}
		}
	}
	if matched < 0 {
		return VOID, nil
	}

	for _, c := range n.Cases[matched:] {
		v, err := e.evalStatements(c.Body, block, cs)
		if err != nil {
			return nil, err
		}
		switch s := v.(type) {
		case *BreakSignal:
			if s.Label == "" || s.Label == label {
				return VOID, nil
			}
			return s, nil
		case *ContinueSignal, *ReturnValue:
			return v, nil
		}
	}
	return VOID, nil
}

// switchMatch compares the switch value with a case label: numerically for
// primitives and wrappers, with equals() otherwise.
func switchMatch(val, label Value) (bool, error) {
	if isVoid(label) {
		return false, newEvalError(errVoidOperand)
	}
	vp, vok := unwrapPrimitive(val)
	lp, lok := unwrapPrimitive(label)
	if vok && lok {
		r, err := primitiveBinary("==", vp, lp)
		if err != nil {
			return false, err
		}
		return r.(*Primitive).Bool(), nil
	}
	if isNull(val) {
		return false, newTargetError(lang.NewNullPointerException("switch on null"))
	}
	return lang.Equals(ToGo(val), ToGo(label)), nil
}

// evalTry runs the try block, the first catch clause matching a catchable
// error, then the finally block. A finally block that fails or transfers
// control supersedes the outcome of the try and catch blocks.
func (e *Evaluator) evalTry(n *ast.TryStatement, scope *Scope, cs *CallStack) (Value, error) {
	depth := cs.Depth()
	v, err := e.Eval(n.Block, scope, cs)
	if err != nil {
		if thrown := e.catchable(err); thrown != nil {
			for _, c := range n.Catches {
				ok, cv, cerr := e.tryCatch(c, thrown, scope, cs)
				if cerr != nil || ok {
					v, err = cv, cerr
					break
				}
			}
		}
	}
	if cs.Depth() != depth {
		return nil, interpreterError("call stack unbalanced after try block: %d frames, want %d", cs.Depth(), depth)
	}

	if n.Finally != nil {
		fv, ferr := e.Eval(n.Finally, scope, cs)
		if ferr != nil {
			return nil, ferr
		}
		if isControlSignal(fv) {
			return fv, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// catchable returns the value scripts see for err, or nil when no catch
// clause may intercept it.
func (e *Evaluator) catchable(err error) error {
	switch x := err.(type) {
	case *TargetError:
		return x.Thrown
	case *EvalError:
		if e.cfg.CatchEvalErrors {
			return lang.NewEvalException(x)
		}
	}
	return nil
}

// tryCatch runs c if it matches thrown. ok reports whether it matched.
func (e *Evaluator) tryCatch(c *ast.CatchClause, thrown error, scope *Scope, cs *CallStack) (ok bool, v Value, err error) {
	block := NewBlockScope(scope)
	p := c.Param
	if p.Type == nil {
		if e.cfg.StrictJava {
			return false, nil, newEvalError("(Strict Java) Untyped catch block")
		}
		block.SetBlockVariable(p.Name, &HostObject{Value: thrown})
	} else {
		class, err := e.resolveType(p.Type, scope)
		if err != nil {
			return false, nil, err
		}
		if !class.IsInstance(thrown) {
			return false, nil, nil
		}
		var mods ast.Modifiers
		if p.Final {
			mods = ast.Modifiers{"final"}
		}
		if err := block.SetTypedVariable(p.Name, class, &HostObject{Value: thrown}, mods); err != nil {
			return false, nil, err
		}
	}
	e.log.Debug().Str("exception", lang.ClassName(thrown)).Str("param", p.Name).Msg("caught")
	v, err = e.evalStatements(c.Body.Statements, block, cs)
	return true, v, err
}

func (e *Evaluator) evalSynchronized(n *ast.SynchronizedStatement, scope *Scope, cs *CallStack) (Value, error) {
	lock, err := e.Eval(n.Lock, scope, cs)
	if err != nil {
		return nil, err
	}
	key, err := lockKey(lock)
	if err != nil {
		return nil, err
	}
	release := e.monitors.acquire(key, cs)
	defer release()
	return e.Eval(n.Body, scope, cs)
}
