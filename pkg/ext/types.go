// Package ext re-exports what code outside this module needs to extend the
// interpreter: host class registration, script values and commands.
package ext

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/beanshell/beanshell-sub002/internal/config"
	"github.com/beanshell/beanshell-sub002/internal/evaluator"
	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

// Value types aliases
type (
	Value      = evaluator.Value
	Primitive  = evaluator.Primitive
	HostObject = evaluator.HostObject
	This       = evaluator.This
	Builtin    = evaluator.Builtin
	Evaluator  = evaluator.Evaluator
	Scope      = evaluator.Scope
	CallStack  = evaluator.CallStack
	Console    = evaluator.Console
)

// Error types aliases
type (
	EvalError   = evaluator.EvalError
	TargetError = evaluator.TargetError
)

// Host bridge aliases
type (
	Registry      = host.Registry
	Class         = host.Class
	ClassSpec     = host.ClassSpec
	PackageLoader = host.PackageLoader
	Config        = config.Config
)

// Script class synthesis
type (
	ClassGenerator  = evaluator.ClassGenerator
	ScriptClassSpec = evaluator.ClassSpec
	GeneratedClass  = evaluator.GeneratedClass
)

// Re-export constants
var (
	VOID = evaluator.VOID
	NULL = evaluator.NULL
)

// NewRegistry creates a class registry with the standard classes installed.
// System.out and System.err of scripts using it write to stdout and stderr.
func NewRegistry(logger zerolog.Logger, stdout, stderr io.Writer) (*Registry, error) {
	reg := host.NewRegistry(logger)
	if err := lang.Install(reg, lang.Options{Stdout: stdout, Stderr: stderr}); err != nil {
		return nil, err
	}
	return reg, nil
}

// Var marks a pointer as an assignable static field in ClassSpec.Fields.
func Var(ptr any) any { return host.Var(ptr) }

func ToValue(v any) Value { return evaluator.ToValue(v) }
func ToGo(v Value) any    { return evaluator.ToGo(v) }

// Throw wraps a Go error so scripts can catch it.
func Throw(err error) error { return &TargetError{Thrown: err} }

func DefaultConfig() *Config                  { return config.Default() }
func LoadConfig(path string) (*Config, error) { return config.Load(path) }
