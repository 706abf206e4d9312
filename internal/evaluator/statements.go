package evaluator

import (
	"strings"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

func (e *Evaluator) evalBlock(block *ast.BlockStatement, scope *Scope, cs *CallStack) (Value, error) {
	return e.evalStatements(block.Statements, scope, cs)
}

// evalStatements runs a statement list in scope. Class declarations are
// evaluated first so the whole list sees them. The result is the value of
// the last statement, or the control signal that stopped the list.
func (e *Evaluator) evalStatements(stmts []ast.Statement, scope *Scope, cs *CallStack) (Value, error) {
	for _, s := range stmts {
		if cd, ok := s.(*ast.ClassDeclaration); ok {
			if _, err := e.Eval(cd, scope, cs); err != nil {
				return nil, err
			}
		}
	}

	var result Value = VOID
	for _, s := range stmts {
		if _, ok := s.(*ast.ClassDeclaration); ok {
			continue
		}
		if e.cfg.Trace {
			e.log.Trace().Str("file", cs.file).Int("line", s.GetToken().Line).Msg(s.String())
		}
		v, err := e.Eval(s, scope, cs)
		if err != nil {
			return nil, err
		}
		if isControlSignal(v) {
			return v, nil
		}
		result = v
	}
	return result, nil
}

func (e *Evaluator) evalVariableDeclaration(n *ast.VariableDeclaration, scope *Scope, cs *CallStack) (Value, error) {
	base, err := e.resolveType(n.Type, scope)
	if err != nil {
		return nil, err
	}
	if base.IsVoid() {
		return nil, newEvalError("Void type in variable declaration")
	}
	for _, d := range n.Declarators {
		c := e.arrayOf(base, d.Dims)
		var val Value
		if d.Value != nil {
			if ai, ok := d.Value.(*ast.ArrayInitializer); ok {
				if !c.IsArray() {
					return nil, newEvalError("Array initializer for non-array type %s of variable %s", c.Name(), d.Name)
				}
				val, err = e.evalArrayInitializer(ai, c, scope, cs)
			} else {
				val, err = e.Eval(d.Value, scope, cs)
			}
			if err != nil {
				return nil, err
			}
			if isVoid(val) {
				return nil, newEvalError("Void initializer for variable %s", d.Name)
			}
		}
		if err := scope.SetTypedVariable(d.Name, c, val, n.Modifiers); err != nil {
			return nil, err
		}
	}
	return VOID, nil
}

// evalMethodDeclaration binds a method to the nearest non-block scope.
func (e *Evaluator) evalMethodDeclaration(n *ast.MethodDeclaration, scope *Scope, cs *CallStack) (Value, error) {
	if e.cfg.StrictJava {
		if n.ReturnType == nil {
			return nil, newEvalError("(Strict Java Mode) Undeclared return type for method: %s", n.Name)
		}
		for _, p := range n.Params {
			if p.Type == nil {
				return nil, newEvalError("(Strict Java Mode) Undeclared argument type, parameter: %s in method: %s", p.Name, n.Name)
			}
		}
	}
	declaring := scope.nonBlock()
	m, err := newMethod(n, declaring, cs.file)
	if err != nil {
		return nil, err
	}
	declaring.SetMethod(m)
	return VOID, nil
}

func (e *Evaluator) evalClassDeclaration(n *ast.ClassDeclaration, scope *Scope, cs *CallStack) (Value, error) {
	spec := ClassSpec{
		Name:        n.Name,
		Modifiers:   n.Modifiers,
		IsInterface: n.IsInterface,
		Body:        n.Body,
		Scope:       scope,
	}
	if n.Extends != "" {
		c, err := e.classNamed(n.Extends, scope)
		if err != nil {
			return nil, err
		}
		spec.Extends = c
	}
	for _, name := range n.Implements {
		c, err := e.classNamed(name, scope)
		if err != nil {
			return nil, err
		}
		spec.Implements = append(spec.Implements, c)
	}
	gc, err := e.generateClass(spec, cs)
	if err != nil {
		return nil, err
	}
	scope.ImportClass(gc.Class.Name())
	if gc.BindStatic != nil {
		if err := gc.BindStatic(NewScope(scope, n.Name).This()); err != nil {
			return nil, hostError(err)
		}
	}
	return &ClassRef{Class: gc.Class}, nil
}

func (e *Evaluator) generateClass(spec ClassSpec, cs *CallStack) (*GeneratedClass, error) {
	name := spec.Name
	if name == "" {
		name = "<anonymous>"
	}
	if e.classGen == nil {
		return nil, newEvalError("Class declaration requires a class generator: %s", name)
	}
	gc, err := e.classGen.Generate(e, spec, cs)
	if err != nil {
		return nil, wrapEvalError(err, "Error generating class %s", name)
	}
	e.log.Debug().Str("class", gc.Class.Name()).Msg("class generated")
	return gc, nil
}

func (e *Evaluator) classNamed(name string, scope *Scope) (*host.Class, error) {
	c, err := scope.GetClass(name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, newEvalError("Class: %s not found in namespace", name)
	}
	return c, nil
}

func (e *Evaluator) evalImport(n *ast.ImportStatement, scope *Scope) (Value, error) {
	switch {
	case n.Super:
		scope.DoSuperImport()
	case n.Static:
		className, member := n.Name, "*"
		if !n.Wildcard {
			i := strings.LastIndexByte(n.Name, '.')
			if i < 0 {
				return nil, newEvalError("Illegal static import: %s", n.Name)
			}
			className, member = n.Name[:i], n.Name[i+1:]
		}
		c, err := e.classNamed(className, scope)
		if err != nil {
			return nil, err
		}
		scope.ImportStatic(c, member)
	case n.Wildcard:
		scope.ImportPackage(n.Name)
	default:
		scope.ImportClass(n.Name)
	}
	return VOID, nil
}

func (e *Evaluator) evalIf(n *ast.IfStatement, scope *Scope, cs *CallStack) (Value, error) {
	cond, err := e.evalCondition(n.Condition, scope, cs)
	if err != nil {
		return nil, err
	}
	switch {
	case cond:
		return e.Eval(n.Consequence, scope, cs)
	case n.Alternative != nil:
		return e.Eval(n.Alternative, scope, cs)
	}
	return VOID, nil
}

// evalCondition evaluates a boolean condition; wrappers are unboxed.
func (e *Evaluator) evalCondition(cond ast.Expression, scope *Scope, cs *CallStack) (bool, error) {
	v, err := e.Eval(cond, scope, cs)
	if err != nil {
		return false, err
	}
	p, ok := unwrapPrimitive(v)
	if !ok || !p.IsBoolean() {
		return false, newEvalError("Condition must evaluate to a Boolean or boolean.")
	}
	return p.Bool(), nil
}

func (e *Evaluator) evalReturn(n *ast.ReturnStatement, scope *Scope, cs *CallStack) (Value, error) {
	if n.Value == nil {
		return &ReturnValue{Value: VOID, Node: n}, nil
	}
	v, err := e.Eval(n.Value, scope, cs)
	if err != nil {
		return nil, err
	}
	return &ReturnValue{Value: v, Node: n}, nil
}

func (e *Evaluator) evalThrow(n *ast.ThrowStatement, scope *Scope, cs *CallStack) (Value, error) {
	v, err := e.Eval(n.Value, scope, cs)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case *Null:
		return nil, newTargetError(lang.NewNullPointerException("throw null"))
	case *HostObject:
		if thrown, ok := x.Value.(error); ok {
			return nil, newTargetError(thrown)
		}
	}
	return nil, newEvalError("Expression in 'throw' must be Throwable type, got %s", describe(v))
}
