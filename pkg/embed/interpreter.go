// Package bsh embeds the script interpreter in Go programs.
package bsh

import (
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/config"
	"github.com/beanshell/beanshell-sub002/internal/evaluator"
	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

// EvalFileName is the source name reported for code passed to Eval.
const EvalFileName = "<eval>"

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Interpreter wraps an evaluator and its global scope behind a Go-valued API.
// It is safe for concurrent use; each call evaluates on its own call stack.
type Interpreter struct {
	ev         *evaluator.Evaluator
	marshaller *Marshaller
}

type options struct {
	eval       evaluator.Options
	configPath string
	configDir  string
}

// Option configures New.
type Option func(*options)

func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.eval.Config = cfg }
}

// WithConfigFile loads the configuration from a bsh.yaml file.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configPath = path }
}

// WithConfigSearch looks for bsh.yaml in dir and its parents. Without one
// the defaults apply.
func WithConfigSearch(dir string) Option {
	return func(o *options) { o.configDir = dir }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.eval.Logger = &l }
}

// WithOutput sends print() and System.out to stdout, error() and
// System.err to stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.eval.Console = &evaluator.StdConsole{Out: stdout, Err: stderr}
	}
}

func WithConsole(c evaluator.Console) Option {
	return func(o *options) { o.eval.Console = c }
}

// WithRegistry shares a class registry between interpreters.
func WithRegistry(reg *host.Registry) Option {
	return func(o *options) { o.eval.Registry = reg }
}

func WithClassGenerator(g evaluator.ClassGenerator) Option {
	return func(o *options) { o.eval.ClassGenerator = g }
}

// New creates an interpreter with a fresh global scope.
func New(opts ...Option) (*Interpreter, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.configPath == "" && o.configDir != "" {
		path, err := config.FindConfig(o.configDir)
		if err != nil {
			return nil, err
		}
		o.configPath = path
	}
	if o.configPath != "" {
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		o.eval.Config = cfg
	}

	ev, err := evaluator.New(o.eval)
	if err != nil {
		return nil, err
	}
	return &Interpreter{ev: ev, marshaller: NewMarshaller()}, nil
}

// Evaluator exposes the underlying evaluator.
func (in *Interpreter) Evaluator() *evaluator.Evaluator { return in.ev }

func (in *Interpreter) Close() { in.ev.Close() }

// Eval runs code in the global scope and returns its value as a Go value.
func (in *Interpreter) Eval(code string) (any, error) {
	v, err := in.ev.EvalString(code, EvalFileName)
	if err != nil {
		return nil, err
	}
	return in.marshaller.FromValue(v, nil)
}

// EvalProgram runs an already parsed program in the global scope.
func (in *Interpreter) EvalProgram(prog *ast.Program) (any, error) {
	v, err := in.ev.EvalProgram(prog)
	if err != nil {
		return nil, err
	}
	return in.marshaller.FromValue(v, nil)
}

// LoadFile reads and runs a script file. Errors carry the file path.
func (in *Interpreter) LoadFile(path string) (any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := in.ev.EvalString(string(content), path)
	if err != nil {
		return nil, err
	}
	return in.marshaller.FromValue(v, nil)
}

// Set assigns a global variable.
func (in *Interpreter) Set(name string, val any) error {
	obj, err := in.marshaller.ToValue(val)
	if err != nil {
		return err
	}
	return in.ev.Global().SetVariable(name, obj, false, false)
}

// Get retrieves a global variable.
func (in *Interpreter) Get(name string) (any, error) {
	obj, ok := in.ev.Global().GetVariable(name, false)
	if !ok {
		return nil, fmt.Errorf("variable '%s' not found", name)
	}
	return in.marshaller.FromValue(obj, nil)
}

// Unset removes a global variable.
func (in *Interpreter) Unset(name string) bool {
	return in.ev.Global().UnsetVariable(name)
}

// Bind makes a Go value available to scripts. Functions become commands
// callable by name; anything else is assigned as a global variable.
func (in *Interpreter) Bind(name string, val any) error {
	fn := reflect.ValueOf(val)
	if fn.Kind() != reflect.Func {
		return in.Set(name, val)
	}
	if fn.IsNil() {
		return fmt.Errorf("bind %s: nil function", name)
	}
	in.ev.RegisterCommand(&evaluator.Builtin{
		Name: name,
		Fn: func(_ *evaluator.Evaluator, _ *evaluator.Scope, _ *evaluator.CallStack, args []evaluator.Value) (evaluator.Value, error) {
			return in.hostCall(name, fn, args)
		},
	})
	return nil
}

// BindClass registers the type of prototype under a qualified class name
// and imports it into the global scope. Constructors are funcs returning a
// value of that type.
func (in *Interpreter) BindClass(name string, prototype any, constructors ...any) error {
	_, err := in.ev.Registry().Register(host.ClassSpec{
		Name:         name,
		Type:         reflect.TypeOf(prototype),
		Constructors: constructors,
	})
	if err != nil {
		return err
	}
	in.ev.Global().ImportClass(name)
	return nil
}

func (in *Interpreter) hostCall(name string, fn reflect.Value, args []evaluator.Value) (res evaluator.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			thrown, ok := r.(error)
			if !ok {
				thrown = lang.NewRuntimeException(fmt.Sprint(r))
			}
			res, err = nil, &evaluator.TargetError{Thrown: thrown}
		}
	}()

	fnType := fn.Type()
	numIn := fnType.NumIn()
	isVariadic := fnType.IsVariadic()

	if isVariadic {
		if len(args) < numIn-1 {
			return nil, &evaluator.EvalError{Message: fmt.Sprintf("%s: expected at least %d arguments, got %d", name, numIn-1, len(args))}
		}
	} else if len(args) != numIn {
		return nil, &evaluator.EvalError{Message: fmt.Sprintf("%s: expected %d arguments, got %d", name, numIn, len(args))}
	}

	goArgs := make([]reflect.Value, len(args))
	for i, arg := range args {
		var targetType reflect.Type
		if isVariadic && i >= numIn-1 {
			targetType = fnType.In(numIn - 1).Elem()
		} else {
			targetType = fnType.In(i)
		}
		val, err := in.marshaller.FromValue(arg, targetType)
		if err != nil {
			return nil, &evaluator.EvalError{Message: fmt.Sprintf("%s: argument %d: %s", name, i+1, err)}
		}
		if val == nil {
			goArgs[i] = reflect.Zero(targetType)
		} else {
			goArgs[i] = reflect.ValueOf(val)
		}
	}

	results := fn.Call(goArgs)

	if n := len(results); n > 0 && fnType.Out(n-1) == errorType {
		if err, _ := results[n-1].Interface().(error); err != nil {
			switch err.(type) {
			case *evaluator.EvalError, *evaluator.TargetError:
				return nil, err
			}
			return nil, &evaluator.TargetError{Thrown: err}
		}
		results = results[:n-1]
	}

	switch len(results) {
	case 0:
		return evaluator.VOID, nil
	case 1:
		return in.marshaller.ToValue(results[0].Interface())
	}
	out := make([]any, len(results))
	for i, r := range results {
		v, err := in.marshaller.ToValue(r.Interface())
		if err != nil {
			return nil, err
		}
		out[i] = evaluator.ToGo(v)
	}
	return &evaluator.HostObject{Value: out}, nil
}

// Call invokes a method declared in the global scope.
func (in *Interpreter) Call(method string, args ...any) (any, error) {
	return in.call(in.ev.Global(), method, args)
}

// CallOn invokes a method of a scripted object.
func (in *Interpreter) CallOn(obj *evaluator.This, method string, args ...any) (any, error) {
	return in.call(obj.Scope(), method, args)
}

func (in *Interpreter) call(scope *evaluator.Scope, method string, args []any) (any, error) {
	vals := make([]evaluator.Value, len(args))
	for i, a := range args {
		v, err := in.marshaller.ToValue(a)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	m, coerced := scope.GetMethod(method, vals, false)
	if m == nil {
		return nil, fmt.Errorf("method '%s' not found", method)
	}
	res, err := m.Invoke(coerced, evaluator.NewCallStack(scope), nil)
	if err != nil {
		return nil, err
	}
	return in.marshaller.FromValue(res, nil)
}
