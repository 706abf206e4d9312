package evaluator

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/config"
	"github.com/beanshell/beanshell-sub002/internal/host"
)

// SourceParser turns script text into a program.
type SourceParser interface {
	ParseString(file, src string) (*ast.Program, error)
}

// SourceParserFunc adapts a function to SourceParser.
type SourceParserFunc func(file, src string) (*ast.Program, error)

func (f SourceParserFunc) ParseString(file, src string) (*ast.Program, error) { return f(file, src) }

// Console is the output sink of print(), error() and System.out/err.
type Console interface {
	Print(s string)
	Error(s string)
}

// StdConsole writes to standard output and standard error. Errors are
// shown in red when colour is enabled.
type StdConsole struct {
	Out   io.Writer
	Err   io.Writer
	Color bool

	mu sync.Mutex
}

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// NewStdConsole creates a console on os.Stdout and os.Stderr. mode is one
// of the config colour modes; auto enables colour on terminals.
func NewStdConsole(mode string) *StdConsole {
	color := false
	switch mode {
	case config.ColorAlways:
		color = true
	case config.ColorAuto, "":
		fd := os.Stderr.Fd()
		color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return &StdConsole{Out: os.Stdout, Err: os.Stderr, Color: color}
}

func (c *StdConsole) Print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.Out, s)
}

func (c *StdConsole) Error(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Color {
		s = ansiRed + s + ansiReset
	}
	io.WriteString(c.Err, s)
}

// consoleWriter feeds host print streams into a console.
type consoleWriter func(string)

func (w consoleWriter) Write(p []byte) (int, error) {
	w(string(p))
	return len(p), nil
}

// ClassSpec describes a script class declaration, or the body of an
// anonymous `new T(...) { ... }`, for a ClassGenerator.
type ClassSpec struct {
	Name        string // empty for anonymous classes
	Modifiers   ast.Modifiers
	IsInterface bool
	Extends     *host.Class
	Implements  []*host.Class
	Body        *ast.BlockStatement
	// Scope is the scope the declaration appears in.
	Scope *Scope
}

// GeneratedClass is the result of class synthesis: a class registered in
// the evaluator's registry.
type GeneratedClass struct {
	Class *host.Class
	// BindStatic, when set, receives the object closure of the class's
	// static scope once the class is imported.
	BindStatic func(static *This) error
}

// ClassGenerator synthesizes host classes from script class declarations.
type ClassGenerator interface {
	Generate(e *Evaluator, spec ClassSpec, cs *CallStack) (*GeneratedClass, error)
}
