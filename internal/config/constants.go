package config

// ConfigFileNames are looked up by FindConfig, in order.
var ConfigFileNames = []string{"bsh.yaml", "bsh.yml"}

// DefaultImports are the packages every global scope imports on creation,
// searched after any script-level imports.
var DefaultImports = []string{"java.lang", "java.util", "bsh"}

// Special names resolved by the name resolver instead of plain variable lookup.
const (
	ThisName        = "this"
	SuperName       = "super"
	GlobalName      = "global"
	CallerName      = "caller"
	InterpreterName = "interpreter"
	NamespaceName   = "namespace"
	VariablesName   = "variables"
	MethodsName     = "methods"
	CallstackName   = "callstack"
	LengthName      = "length"
	ClassName       = "class"
)

// Object closure protocol methods, used when a script object does not declare them.
const (
	ToStringMethod = "toString"
	HashCodeMethod = "hashCode"
	EqualsMethod   = "equals"
	InvokeMethod   = "invoke"
)

// Built-in command names
const (
	PrintFuncName  = "print"
	ErrorFuncName  = "error"
	EvalFuncName   = "eval"
	UnsetFuncName  = "unset"
	TypeOfFuncName = "typeOf"
)

// Scope names used in diagnostics and traces.
const (
	GlobalScopeName  = "global"
	BlockScopeName   = "BlockNameSpace"
	ForeignScopeName = "<foreign code>"
)

const (
	// MaxParseDepth bounds expression nesting in the parser.
	MaxParseDepth = 500
	// DefaultMaxEvalDepth bounds nested method invocations.
	DefaultMaxEvalDepth = 2000
)

// Color modes for the console error sink.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)
