package evaluator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
	"github.com/beanshell/beanshell-sub002/internal/token"
)

// ReturnValue unwinds evaluation up to the enclosing method body.
type ReturnValue struct {
	Value Value
	Node  ast.Node // the return statement
}

func (rv *ReturnValue) Type() ValueType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string { return rv.Value.Inspect() }

// BreakSignal stops the innermost loop or switch, or the labelled statement
// named by Label.
type BreakSignal struct {
	Label string
	Node  ast.Node
}

func (bs *BreakSignal) Type() ValueType { return BREAK_SIGNAL_OBJ }
func (bs *BreakSignal) Inspect() string { return "break " + bs.Label }

// ContinueSignal skips to the next iteration of the innermost loop, or of the
// loop labelled Label.
type ContinueSignal struct {
	Label string
	Node  ast.Node
}

func (cs *ContinueSignal) Type() ValueType { return CONTINUE_SIGNAL_OBJ }
func (cs *ContinueSignal) Inspect() string { return "continue " + cs.Label }

func isControlSignal(v Value) bool {
	switch v.(type) {
	case *ReturnValue, *BreakSignal, *ContinueSignal:
		return true
	}
	return false
}

// StackFrame is one script method invocation in an error trace.
type StackFrame struct {
	Name   string
	File   string
	Line   int
	Column int
}

func (f StackFrame) String() string {
	loc := fmt.Sprintf("%d:%d", f.Line, f.Column)
	if f.File != "" {
		loc = f.File + ":" + loc
	}
	return fmt.Sprintf("at %s (%s)", f.Name, loc)
}

// EvalError reports a script that cannot be evaluated as written: undefined
// names, type mismatches, bad arguments, illegal operators. Scripts cannot
// catch it unless catch_eval_errors is set.
type EvalError struct {
	Message    string
	File       string
	Line       int
	Column     int
	StackTrace []StackFrame
	Cause      error
}

func newEvalError(format string, args ...interface{}) *EvalError {
	return &EvalError{Message: fmt.Sprintf(format, args...)}
}

// wrapEvalError prefixes the message of cause, keeping it as the cause.
func wrapEvalError(cause error, format string, args ...interface{}) *EvalError {
	msg := fmt.Sprintf(format, args...)
	var ee *EvalError
	if errors.As(cause, &ee) {
		msg += ": " + ee.Message
	} else {
		msg += ": " + cause.Error()
	}
	return &EvalError{Message: msg, Cause: cause}
}

func (e *EvalError) Error() string { return location(e.File, e.Line, e.Column) + e.Message }
func (e *EvalError) Unwrap() error { return e.Cause }

// Trace renders the error followed by its script stack trace.
func (e *EvalError) Trace() string { return renderTrace(e.Error(), e.StackTrace) }

// TargetError carries a value thrown by script code or by invoked host code.
// Scripts catch it with a matching catch clause.
type TargetError struct {
	Thrown     error
	File       string
	Line       int
	Column     int
	StackTrace []StackFrame
}

func newTargetError(thrown error) *TargetError {
	return &TargetError{Thrown: thrown}
}

func (e *TargetError) Error() string {
	return location(e.File, e.Line, e.Column) + lang.ToString(e.Thrown)
}

func (e *TargetError) Unwrap() error { return e.Thrown }

func (e *TargetError) Trace() string { return renderTrace(e.Error(), e.StackTrace) }

// InterpreterError is a broken engine invariant. It is never caught by
// scripts and never converted into the other error kinds.
type InterpreterError struct {
	Message string
}

func interpreterError(format string, args ...interface{}) *InterpreterError {
	return &InterpreterError{Message: fmt.Sprintf(format, args...)}
}

func (e *InterpreterError) Error() string { return "internal interpreter error: " + e.Message }

func location(file string, line, col int) string {
	if line <= 0 {
		return ""
	}
	if file == "" {
		return fmt.Sprintf("%d:%d: ", line, col)
	}
	return fmt.Sprintf("%s:%d:%d: ", file, line, col)
}

func renderTrace(head string, frames []StackFrame) string {
	if len(frames) == 0 {
		return head
	}
	var b strings.Builder
	b.WriteString(head)
	b.WriteString("\nStack trace:")
	for _, f := range frames {
		b.WriteString("\n  ")
		b.WriteString(f.String())
	}
	return b.String()
}

// attachPosition records where an error happened unless it already knows.
func attachPosition(err error, file string, tok token.Token) {
	if tok.Line == 0 {
		return
	}
	switch e := err.(type) {
	case *EvalError:
		if e.Line == 0 {
			e.File, e.Line, e.Column = file, tok.Line, tok.Column
		}
	case *TargetError:
		if e.Line == 0 {
			e.File, e.Line, e.Column = file, tok.Line, tok.Column
		}
	}
}

// addFrame appends a method invocation to the trace of an unwinding error.
func addFrame(err error, frame StackFrame) {
	switch e := err.(type) {
	case *EvalError:
		e.StackTrace = append(e.StackTrace, frame)
	case *TargetError:
		e.StackTrace = append(e.StackTrace, frame)
	}
}
