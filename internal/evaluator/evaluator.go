package evaluator

import (
	"reflect"
	"strings"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/config"
	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
	"github.com/beanshell/beanshell-sub002/internal/parser"
)

// Options configures New. Zero fields take defaults.
type Options struct {
	// Registry is the class manager; nil creates one with the standard classes.
	Registry *host.Registry
	Config   *config.Config
	// Logger receives evaluation events; nil logs nothing. A configured
	// log level overrides the logger's own.
	Logger  *zerolog.Logger
	Console Console
	// Parser turns source text into programs for EvalString and eval().
	Parser SourceParser
	// ClassGenerator synthesizes script classes; nil makes class
	// declarations an error.
	ClassGenerator ClassGenerator
}

// Evaluator runs programs against a global scope. It may be shared by
// several goroutines, each evaluating with its own call stack.
type Evaluator struct {
	reg      *host.Registry
	cfg      *config.Config
	log      zerolog.Logger
	id       uuid.UUID
	console  Console
	parser   SourceParser
	classGen ClassGenerator
	global   *Scope
	commands cmap.ConcurrentMap[string, *Builtin]
	monitors monitorTable
}

// New creates an evaluator with a fresh global scope.
func New(opts Options) (*Evaluator, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Evaluator{
		cfg:      cfg,
		id:       uuid.New(),
		console:  opts.Console,
		parser:   opts.Parser,
		classGen: opts.ClassGenerator,
		commands: cmap.New[*Builtin](),
	}
	e.log = newLogger(opts.Logger, cfg).With().Str("eval", e.id.String()).Logger()
	if e.console == nil {
		e.console = NewStdConsole(cfg.Color)
	}
	if e.parser == nil {
		e.parser = SourceParserFunc(parser.ParseString)
	}

	e.reg = opts.Registry
	if e.reg == nil {
		e.reg = host.NewRegistry(e.log)
		err := lang.Install(e.reg, lang.Options{
			Stdout: consoleWriter(e.console.Print),
			Stderr: consoleWriter(e.console.Error),
		})
		if err != nil {
			return nil, err
		}
	}
	if err := e.registerEngineClasses(); err != nil {
		return nil, err
	}
	for _, b := range builtins() {
		e.RegisterCommand(b)
	}

	e.global = newRootScope(e, config.GlobalScopeName)
	for _, pkg := range config.DefaultImports {
		e.global.ImportPackage(pkg)
	}
	for _, imp := range cfg.Imports {
		switch {
		case imp == "*":
			e.global.DoSuperImport()
		case strings.HasSuffix(imp, ".*"):
			e.global.ImportPackage(strings.TrimSuffix(imp, ".*"))
		case e.reg.HasPackage(imp):
			e.global.ImportPackage(imp)
		default:
			e.global.ImportClass(imp)
		}
	}
	e.log.Debug().Int("imports", len(cfg.Imports)).Msg("evaluator ready")
	return e, nil
}

func newLogger(l *zerolog.Logger, cfg *config.Config) zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	if lvl := cfg.Level(); lvl != zerolog.Disabled {
		return l.Level(lvl)
	}
	return *l
}

// registerEngineClasses exposes the engine's own types in the bsh package.
func (e *Evaluator) registerEngineClasses() error {
	classes := []struct {
		name string
		typ  reflect.Type
	}{
		{"bsh.This", reflect.TypeOf(&This{})},
		{"bsh.NameSpace", reflect.TypeOf(&Scope{})},
		{"bsh.CallStack", reflect.TypeOf(&CallStack{})},
		{"bsh.Interpreter", reflect.TypeOf(&Evaluator{})},
	}
	for _, c := range classes {
		if _, ok := e.reg.Resolve(c.name); ok {
			continue
		}
		if _, err := e.reg.Register(host.ClassSpec{Name: c.name, Type: c.typ}); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) Global() *Scope             { return e.global }
func (e *Evaluator) Registry() *host.Registry   { return e.reg }
func (e *Evaluator) Config() *config.Config     { return e.cfg }
func (e *Evaluator) Console() Console           { return e.console }
func (e *Evaluator) Logger() zerolog.Logger     { return e.log }
func (e *Evaluator) ID() string                 { return e.id.String() }
func (e *Evaluator) RegisterCommand(b *Builtin) { e.commands.Set(b.Name, b) }

// Close releases the global scope's reload subscription.
func (e *Evaluator) Close() {
	e.global.Close()
}

// EvalString parses and evaluates src in the global scope.
func (e *Evaluator) EvalString(src, file string) (Value, error) {
	prog, err := e.parser.ParseString(file, src)
	if err != nil {
		return nil, err
	}
	return e.EvalProgram(prog)
}

// EvalProgram evaluates a program in the global scope.
func (e *Evaluator) EvalProgram(prog *ast.Program) (Value, error) {
	return e.EvalIn(prog, e.global)
}

// EvalIn evaluates a program in scope on a fresh call stack. The result is
// the value of the last statement, or of a top-level return.
func (e *Evaluator) EvalIn(prog *ast.Program, scope *Scope) (Value, error) {
	cs := NewCallStack(scope)
	cs.file = prog.File
	return e.evalTopLevel(prog.Statements, scope, cs)
}

func (e *Evaluator) evalTopLevel(stmts []ast.Statement, scope *Scope, cs *CallStack) (Value, error) {
	v, err := e.evalStatements(stmts, scope, cs)
	if err != nil {
		e.log.Debug().Err(err).Msg("evaluation failed")
		return nil, err
	}
	switch s := v.(type) {
	case *ReturnValue:
		return s.Value, nil
	case *BreakSignal:
		return nil, positioned(newEvalError("break outside of a loop or switch"), cs.file, s.Node)
	case *ContinueSignal:
		return nil, positioned(newEvalError("continue outside of a loop"), cs.file, s.Node)
	}
	return v, nil
}

func positioned(err *EvalError, file string, node ast.Node) *EvalError {
	if node != nil {
		attachPosition(err, file, node.GetToken())
	}
	return err
}

// Eval evaluates one node. Errors leaving it carry the position of the
// innermost node that knew one.
func (e *Evaluator) Eval(node ast.Node, scope *Scope, cs *CallStack) (Value, error) {
	cs.node = node
	v, err := e.evalCore(node, scope, cs)
	if err != nil {
		attachPosition(err, cs.file, node.GetToken())
		return nil, err
	}
	return v, nil
}

func (e *Evaluator) evalCore(node ast.Node, scope *Scope, cs *CallStack) (Value, error) {
	switch n := node.(type) {
	// statements
	case *ast.BlockStatement:
		return e.evalBlock(n, NewBlockScope(scope), cs)
	case *ast.ExpressionStatement:
		return e.Eval(n.Expression, scope, cs)
	case *ast.EmptyStatement:
		return VOID, nil
	case *ast.VariableDeclaration:
		return e.evalVariableDeclaration(n, scope, cs)
	case *ast.MethodDeclaration:
		return e.evalMethodDeclaration(n, scope, cs)
	case *ast.ClassDeclaration:
		return e.evalClassDeclaration(n, scope, cs)
	case *ast.ImportStatement:
		return e.evalImport(n, scope)
	case *ast.IfStatement:
		return e.evalIf(n, scope, cs)
	case *ast.WhileStatement:
		return e.evalWhile(n, "", scope, cs)
	case *ast.DoWhileStatement:
		return e.evalDoWhile(n, "", scope, cs)
	case *ast.ForStatement:
		return e.evalFor(n, "", scope, cs)
	case *ast.EnhancedForStatement:
		return e.evalEnhancedFor(n, "", scope, cs)
	case *ast.SwitchStatement:
		return e.evalSwitch(n, "", scope, cs)
	case *ast.LabeledStatement:
		return e.evalLabeled(n, scope, cs)
	case *ast.BreakStatement:
		return &BreakSignal{Label: n.Label, Node: n}, nil
	case *ast.ContinueStatement:
		return &ContinueSignal{Label: n.Label, Node: n}, nil
	case *ast.ReturnStatement:
		return e.evalReturn(n, scope, cs)
	case *ast.ThrowStatement:
		return e.evalThrow(n, scope, cs)
	case *ast.TryStatement:
		return e.evalTry(n, scope, cs)
	case *ast.SynchronizedStatement:
		return e.evalSynchronized(n, scope, cs)

	// expressions
	case *ast.Literal:
		return e.evalLiteral(n)
	case *ast.AmbiguousName:
		return e.newName(n.Name, scope, cs).ToObject()
	case *ast.MethodInvocation:
		return e.evalMethodInvocation(n, scope, cs)
	case *ast.MethodCall:
		return e.evalMethodCall(n, scope, cs)
	case *ast.FieldAccess:
		return e.evalFieldAccess(n, scope, cs)
	case *ast.IndexExpression:
		return e.evalIndex(n, scope, cs)
	case *ast.ClassLiteral:
		c, err := e.resolveType(n.Type, scope)
		if err != nil {
			return nil, err
		}
		return &HostObject{Value: c}, nil
	case *ast.PrefixExpression:
		return e.evalPrefix(n, scope, cs)
	case *ast.PostfixExpression:
		return e.evalPostfix(n, scope, cs)
	case *ast.InfixExpression:
		return e.evalInfix(n, scope, cs)
	case *ast.AssignExpression:
		return e.evalAssign(n, scope, cs)
	case *ast.TernaryExpression:
		return e.evalTernary(n, scope, cs)
	case *ast.InstanceofExpression:
		return e.evalInstanceof(n, scope, cs)
	case *ast.CastExpression:
		return e.evalCast(n, scope, cs)
	case *ast.NewExpression:
		return e.evalNew(n, scope, cs)
	case *ast.ArrayAllocation:
		return e.evalArrayAllocation(n, scope, cs)
	case *ast.ArrayInitializer:
		return e.evalArrayInitializer(n, nil, scope, cs)
	}
	return nil, interpreterError("unknown node type: %T", node)
}

// resolveType resolves a type reference in scope, including array dimensions.
func (e *Evaluator) resolveType(t *ast.TypeRef, scope *Scope) (*host.Class, error) {
	var c *host.Class
	switch {
	case t.Name == "void":
		if t.Dims > 0 {
			return nil, newEvalError("illegal array of void")
		}
		return e.reg.Void(), nil
	case t.IsPrimitive():
		c, _ = e.reg.Resolve(t.Name)
	default:
		var err error
		if c, err = scope.GetClass(t.Name); err != nil {
			return nil, err
		}
	}
	if c == nil {
		return nil, newEvalError("Class: %s not found in namespace", t.Name)
	}
	return e.arrayOf(c, t.Dims), nil
}

func (e *Evaluator) arrayOf(c *host.Class, dims int) *host.Class {
	for i := 0; i < dims; i++ {
		c = e.reg.ArrayOf(c)
	}
	return c
}
