package evaluator

import (
	"fmt"

	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

type ValueType string

const (
	PRIMITIVE_OBJ ValueType = "PRIMITIVE"
	VOID_OBJ      ValueType = "VOID"
	NULL_OBJ      ValueType = "NULL"
	HOST_OBJ      ValueType = "HOST"
	THIS_OBJ      ValueType = "THIS"
	CLASS_OBJ     ValueType = "CLASS"

	RETURN_VALUE_OBJ    ValueType = "RETURN_VALUE"
	BREAK_SIGNAL_OBJ    ValueType = "BREAK"
	CONTINUE_SIGNAL_OBJ ValueType = "CONTINUE"
)

// Value is the outcome of evaluating a node: a primitive, void, null, a host
// object, an object closure, a type reference or a control signal.
type Value interface {
	Type() ValueType
	Inspect() string
}

// Primitive holds one canonical Go value of a primitive kind: bool, uint16
// (char), int8, int16, int32, int64, float32 or float64.
type Primitive struct {
	kind host.Kind
	v    any
}

var (
	TRUE  = &Primitive{kind: host.Boolean, v: true}
	FALSE = &Primitive{kind: host.Boolean, v: false}
)

// NewPrimitive wraps a primitive Go value. Non-canonical integer types are
// converted first. It returns nil for values that are not primitives.
func NewPrimitive(v any) *Primitive {
	v = host.Canonical(v)
	switch x := v.(type) {
	case bool:
		return nativeBool(x)
	case uint16:
		return &Primitive{kind: host.Char, v: x}
	case int8:
		return &Primitive{kind: host.Byte, v: x}
	case int16:
		return &Primitive{kind: host.Short, v: x}
	case int32:
		return &Primitive{kind: host.Int, v: x}
	case int64:
		return &Primitive{kind: host.Long, v: x}
	case float32:
		return &Primitive{kind: host.Float, v: x}
	case float64:
		return &Primitive{kind: host.Double, v: x}
	}
	return nil
}

func nativeBool(b bool) *Primitive {
	if b {
		return TRUE
	}
	return FALSE
}

func (p *Primitive) Type() ValueType  { return PRIMITIVE_OBJ }
func (p *Primitive) Inspect() string  { return lang.ToString(p.v) }
func (p *Primitive) Kind() host.Kind  { return p.kind }
func (p *Primitive) Value() any       { return p.v }
func (p *Primitive) String() string   { return p.Inspect() }
func (p *Primitive) IsBoolean() bool  { return p.kind == host.Boolean }
func (p *Primitive) IsNumeric() bool  { return p.kind.IsNumeric() }
func (p *Primitive) IsIntegral() bool { return p.kind.IsIntegral() }

// Bool reports the value of a boolean primitive.
func (p *Primitive) Bool() bool {
	b, _ := p.v.(bool)
	return b
}

// Int64 returns a numeric primitive as a long, truncating floating values.
func (p *Primitive) Int64() int64 {
	switch x := p.v.(type) {
	case uint16:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case float32:
		return int64(x)
	case float64:
		return int64(x)
	}
	return 0
}

// Float64 returns a numeric primitive as a double.
func (p *Primitive) Float64() float64 {
	switch x := p.v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	}
	return float64(p.Int64())
}

// Void is the absence of a value, for example an undefined variable read.
type Void struct{}

var VOID = &Void{}

func (v *Void) Type() ValueType { return VOID_OBJ }
func (v *Void) Inspect() string { return "void" }

// Null is the null reference. Class records the declared type of a typed
// null; the untyped null is NULL.
type Null struct {
	Class *host.Class
}

var NULL = &Null{}

func (n *Null) Type() ValueType { return NULL_OBJ }
func (n *Null) Inspect() string { return "null" }

func isNull(v Value) bool {
	_, ok := v.(*Null)
	return ok
}

func isVoid(v Value) bool {
	_, ok := v.(*Void)
	return ok
}

// describe names a value for error messages.
func describe(v Value) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case *HostObject:
		return fmt.Sprintf("%s (%s)", lang.ToString(x.Value), lang.ClassName(x.Value))
	case *Primitive:
		return fmt.Sprintf("%s (%s)", x.Inspect(), x.kind)
	}
	return v.Inspect()
}
