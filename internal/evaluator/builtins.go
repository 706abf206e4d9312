package evaluator

import (
	"github.com/beanshell/beanshell-sub002/internal/config"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

// Builtin is a command callable from scripts by its bare name when no
// script method of that name applies.
type Builtin struct {
	Name string
	Fn   func(e *Evaluator, scope *Scope, cs *CallStack, args []Value) (Value, error)
}

func builtins() []*Builtin {
	return []*Builtin{
		{Name: config.PrintFuncName, Fn: builtinPrint},
		{Name: config.ErrorFuncName, Fn: builtinError},
		{Name: config.EvalFuncName, Fn: builtinEval},
		{Name: config.UnsetFuncName, Fn: builtinUnset},
		{Name: config.TypeOfFuncName, Fn: builtinTypeOf},
	}
}

func checkArity(name string, args []Value, n int) error {
	if len(args) != n {
		return newEvalError("%s: expected %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func stringArg(name string, v Value) (string, error) {
	if h, ok := v.(*HostObject); ok {
		if s, ok := h.Value.(string); ok {
			return s, nil
		}
	}
	return "", newEvalError("%s: expected a String argument, got %s", name, describe(v))
}

func builtinPrint(e *Evaluator, _ *Scope, cs *CallStack, args []Value) (Value, error) {
	if err := checkArity(config.PrintFuncName, args, 1); err != nil {
		return nil, err
	}
	defer enterHost(cs, ToGo(args[0]), nil)()
	e.console.Print(lang.ToString(ToGo(args[0])) + "\n")
	return VOID, nil
}

func builtinError(e *Evaluator, _ *Scope, cs *CallStack, args []Value) (Value, error) {
	if err := checkArity(config.ErrorFuncName, args, 1); err != nil {
		return nil, err
	}
	defer enterHost(cs, ToGo(args[0]), nil)()
	e.console.Error(lang.ToString(ToGo(args[0])) + "\n")
	return VOID, nil
}

// builtinEval parses its argument and runs it in the calling scope. A return
// statement in the text ends the eval with that value.
func builtinEval(e *Evaluator, scope *Scope, cs *CallStack, args []Value) (Value, error) {
	if err := checkArity(config.EvalFuncName, args, 1); err != nil {
		return nil, err
	}
	src, err := stringArg(config.EvalFuncName, args[0])
	if err != nil {
		return nil, err
	}
	prog, err := e.parser.ParseString(config.EvalFuncName, src)
	if err != nil {
		return nil, wrapEvalError(err, "eval")
	}
	prevFile := cs.file
	cs.file = config.EvalFuncName
	defer func() { cs.file = prevFile }()
	return e.evalTopLevel(prog.Statements, scope, cs)
}

func builtinUnset(e *Evaluator, scope *Scope, _ *CallStack, args []Value) (Value, error) {
	if err := checkArity(config.UnsetFuncName, args, 1); err != nil {
		return nil, err
	}
	name, err := stringArg(config.UnsetFuncName, args[0])
	if err != nil {
		return nil, err
	}
	scope.UnsetVariable(name)
	return VOID, nil
}

// builtinTypeOf names the runtime class of its argument: "int" for
// primitives, "null" for the untyped null.
func builtinTypeOf(e *Evaluator, _ *Scope, _ *CallStack, args []Value) (Value, error) {
	if err := checkArity(config.TypeOfFuncName, args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case *Null:
		if v.Class != nil {
			return &HostObject{Value: v.Class.Name()}, nil
		}
		return &HostObject{Value: "null"}, nil
	case *ClassRef:
		return &HostObject{Value: "java.lang.Class"}, nil
	}
	return &HostObject{Value: classOf(e.reg, args[0]).Name()}, nil
}
