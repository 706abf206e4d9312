package evaluator

import (
	"strings"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/host"
)

// Method is a script-declared method. Overloads share a name within a
// scope; the one to call is chosen at invocation time.
type Method struct {
	Name       string
	ParamNames []string
	// ReturnType is nil for a loosely typed method and the void class for
	// a method without result.
	ReturnType *host.Class
	Modifiers  ast.Modifiers
	Body       *ast.BlockStatement

	paramClasses []*host.Class // nil entries are untyped parameters
	paramFinal   []bool
	declaring    *Scope
	file         string
	line, column int
}

// newMethod binds a declaration to the scope it is declared in, resolving
// its parameter and return types there.
func newMethod(decl *ast.MethodDeclaration, declaring *Scope, file string) (*Method, error) {
	ev := declaring.ctx.ev
	m := &Method{
		Name:      decl.Name,
		Modifiers: decl.Modifiers,
		Body:      decl.Body,
		declaring: declaring,
		file:      file,
		line:      decl.Token.Line,
		column:    decl.Token.Column,
	}
	if decl.ReturnType != nil {
		rt, err := ev.resolveType(decl.ReturnType, declaring)
		if err != nil {
			return nil, err
		}
		m.ReturnType = rt
	}
	for _, p := range decl.Params {
		m.ParamNames = append(m.ParamNames, p.Name)
		m.paramFinal = append(m.paramFinal, p.Final)
		var c *host.Class
		if p.Type != nil {
			var err error
			if c, err = ev.resolveType(p.Type, declaring); err != nil {
				return nil, err
			}
		}
		m.paramClasses = append(m.paramClasses, c)
	}
	return m, nil
}

func (m *Method) params() []*host.Class { return m.paramClasses }
func (m *Method) variadic() bool        { return false }

// ParamClasses are the declared parameter classes, nil for untyped ones.
func (m *Method) ParamClasses() []*host.Class { return append([]*host.Class(nil), m.paramClasses...) }

// DeclaringScope is the scope the method was declared in and runs under.
func (m *Method) DeclaringScope() *Scope { return m.declaring }

func (m *Method) IsSynchronized() bool { return m.Modifiers.Has("synchronized") }
func (m *Method) IsStatic() bool       { return m.Modifiers.Has("static") }

func (m *Method) String() string {
	parts := make([]string, len(m.ParamNames))
	for i, n := range m.ParamNames {
		if c := m.paramClasses[i]; c != nil {
			parts[i] = c.Name() + " " + n
		} else {
			parts[i] = n
		}
	}
	return m.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Invoke runs the method in a fresh scope below its declaring scope. node
// is the call site, used for positions.
func (m *Method) Invoke(args []Value, cs *CallStack, node ast.Node) (Value, error) {
	return m.invoke(args, cs, node, nil)
}

// InvokeIn runs the method body directly in scope, as constructor-style
// bodies do.
func (m *Method) InvokeIn(scope *Scope, args []Value, cs *CallStack, node ast.Node) (Value, error) {
	return m.invoke(args, cs, node, scope)
}

func (m *Method) invoke(args []Value, cs *CallStack, node ast.Node, in *Scope) (Value, error) {
	ev := m.declaring.ctx.ev
	reg := m.declaring.ctx.reg
	if len(args) != len(m.ParamNames) {
		return nil, newEvalError("Wrong number of arguments for local method: %s", m.Name)
	}
	if cs.Depth() >= ev.cfg.EvalDepth() {
		return nil, newEvalError("Maximum call depth of %d exceeded invoking %s", ev.cfg.EvalDepth(), m.Name)
	}
	if m.IsSynchronized() {
		release := ev.monitors.acquire(m.declaring.This(), cs)
		defer release()
	}

	scope := in
	if scope == nil {
		scope = NewScope(m.declaring, m.Name)
		scope.isMethod = true
		scope.isStatic = m.IsStatic()
	}
	for i, name := range m.ParamNames {
		a := args[i]
		if isVoid(a) {
			return nil, newEvalError("Undefined argument %d for method: %s", i+1, m.Name)
		}
		c := m.paramClasses[i]
		if c == nil {
			if err := scope.SetLocalVariable(name, a, false); err != nil {
				return nil, err
			}
			continue
		}
		v, err := castObject(reg, c, a, castAssign, false)
		if err != nil {
			return nil, wrapEvalError(err, "Invalid argument: `%s' for method: %s", name, m.Name)
		}
		var mods ast.Modifiers
		if m.paramFinal[i] {
			mods = ast.Modifiers{"final"}
		}
		if err := scope.SetTypedVariable(name, c, v, mods); err != nil {
			return nil, err
		}
	}

	cs.Push(scope)
	prevFile := cs.file
	cs.file = m.file
	defer func() {
		cs.Pop()
		cs.file = prevFile
	}()
	ev.log.Debug().Str("method", m.Name).Int("depth", cs.Depth()).Msg("invoke")

	ret, err := ev.evalStatements(m.Body.Statements, scope, cs)
	if err != nil {
		addFrame(err, m.frame(prevFile, node))
		return nil, err
	}

	explicit := false
	switch r := ret.(type) {
	case *ReturnValue:
		ret, explicit = r.Value, true
	case *BreakSignal, *ContinueSignal:
		return nil, interpreterError("%s escaped the body of method %s", ret.Inspect(), m.Name)
	}

	switch {
	case m.ReturnType == nil:
		return ret, nil
	case m.ReturnType.IsVoid():
		if explicit && !isVoid(ret) {
			return nil, newEvalError("Cannot return value from void method: %s", m.Name)
		}
		return VOID, nil
	}
	v, err := castObject(reg, m.ReturnType, ret, castAssign, false)
	if err != nil {
		return nil, wrapEvalError(err, "Incorrect type returned from method: %s", m.Name)
	}
	return v, nil
}

// frame records the invocation in error traces, at the call site when known.
func (m *Method) frame(file string, node ast.Node) StackFrame {
	f := StackFrame{Name: m.Name, File: m.file, Line: m.line, Column: m.column}
	if node != nil {
		if tok := node.GetToken(); tok.Line > 0 {
			f.File, f.Line, f.Column = file, tok.Line, tok.Column
		}
	}
	return f
}
