package lang

import (
	"cmp"
	"math"
	"strconv"
	"strings"
)

type numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// boxed is a numeric wrapper object. Each boxing allocates a new wrapper,
// so two wrappers are never identical unless they are the same box.
type boxed[T numeric] struct {
	Value T
}

type (
	Byte    = boxed[int8]
	Short   = boxed[int16]
	Integer = boxed[int32]
	Long    = boxed[int64]
	Float   = boxed[float32]
	Double  = boxed[float64]
)

// Boolean wraps a boolean primitive.
type Boolean struct{ Value bool }

// Character wraps a char primitive (a UTF-16 code unit).
type Character struct{ Value uint16 }

// Number is implemented by the numeric wrappers.
type Number interface {
	ByteValue() int8
	ShortValue() int16
	IntValue() int32
	LongValue() int64
	FloatValue() float32
	DoubleValue() float64
}

func (b *boxed[T]) ByteValue() int8      { return int8(b.Value) }
func (b *boxed[T]) ShortValue() int16    { return int16(b.Value) }
func (b *boxed[T]) IntValue() int32      { return int32(b.Value) }
func (b *boxed[T]) LongValue() int64     { return int64(b.Value) }
func (b *boxed[T]) FloatValue() float32  { return float32(b.Value) }
func (b *boxed[T]) DoubleValue() float64 { return float64(b.Value) }

// CompareTo orders wrappers of the same type; a different type compares as unordered (0).
func (b *boxed[T]) CompareTo(o any) int32 {
	if x, ok := o.(*boxed[T]); ok {
		return int32(cmp.Compare(b.Value, x.Value))
	}
	return 0
}

func (b *boxed[T]) Equals(o any) bool {
	x, ok := o.(*boxed[T])
	return ok && x.Value == b.Value
}

func (b *boxed[T]) HashCode() int32  { return HashCode(b.Value) }
func (b *boxed[T]) ToString() string { return ToString(b.Value) }

func (b *Boolean) BooleanValue() bool { return b.Value }
func (b *Boolean) Equals(o any) bool {
	x, ok := o.(*Boolean)
	return ok && x.Value == b.Value
}
func (b *Boolean) HashCode() int32  { return HashCode(b.Value) }
func (b *Boolean) ToString() string { return ToString(b.Value) }
func (b *Boolean) CompareTo(o any) int32 {
	x, ok := o.(*Boolean)
	if !ok || x.Value == b.Value {
		return 0
	}
	if b.Value {
		return 1
	}
	return -1
}

func (c *Character) CharValue() uint16 { return c.Value }
func (c *Character) Equals(o any) bool {
	x, ok := o.(*Character)
	return ok && x.Value == c.Value
}
func (c *Character) HashCode() int32  { return int32(c.Value) }
func (c *Character) ToString() string { return ToString(c.Value) }
func (c *Character) CompareTo(o any) int32 {
	if x, ok := o.(*Character); ok {
		return int32(c.Value) - int32(x.Value)
	}
	return 0
}

// Box wraps a canonical primitive Go value in a new wrapper object.
// Other values are returned unchanged.
func Box(v any) any {
	switch x := v.(type) {
	case bool:
		return &Boolean{x}
	case uint16:
		return &Character{x}
	case int8:
		return &Byte{x}
	case int16:
		return &Short{x}
	case int32:
		return &Integer{x}
	case int64:
		return &Long{x}
	case float32:
		return &Float{x}
	case float64:
		return &Double{x}
	}
	return v
}

// Unbox returns the primitive held by a wrapper object.
func Unbox(v any) (any, bool) {
	switch x := v.(type) {
	case *Boolean:
		return x.Value, true
	case *Character:
		return x.Value, true
	case *Byte:
		return x.Value, true
	case *Short:
		return x.Value, true
	case *Integer:
		return x.Value, true
	case *Long:
		return x.Value, true
	case *Float:
		return x.Value, true
	case *Double:
		return x.Value, true
	}
	return nil, false
}

// IsWrapper reports whether v is a wrapper object.
func IsWrapper(v any) bool {
	_, ok := Unbox(v)
	return ok
}

func numberFormatError(s string) error {
	return NewNumberFormatException("For input string: \"" + s + "\"")
}

func parseIntegral(s string, bits int) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimPrefix(s, "+"), 10, bits)
	if err != nil {
		return 0, numberFormatError(s)
	}
	return n, nil
}

func ParseByte(s string) (int8, error) {
	n, err := parseIntegral(s, 8)
	return int8(n), err
}

func ParseShort(s string) (int16, error) {
	n, err := parseIntegral(s, 16)
	return int16(n), err
}

func ParseInt(s string) (int32, error) {
	n, err := parseIntegral(s, 32)
	return int32(n), err
}

func ParseLong(s string) (int64, error) {
	return parseIntegral(s, 64)
}

func parseFloating(s string, bits int) (float64, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimRight(t, "fFdD")
	switch t {
	case "NaN":
		return math.NaN(), nil
	case "Infinity", "+Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}
	f, err := strconv.ParseFloat(t, bits)
	if err != nil {
		return 0, numberFormatError(s)
	}
	return f, nil
}

func ParseFloat(s string) (float32, error) {
	f, err := parseFloating(s, 32)
	return float32(f), err
}

func ParseDouble(s string) (float64, error) {
	return parseFloating(s, 64)
}

// ParseBoolean is true only for "true", ignoring case.
func ParseBoolean(s string) bool { return strings.EqualFold(s, "true") }

func isDigit(c uint16) bool      { return c >= '0' && c <= '9' }
func isLetter(c uint16) bool     { return (c|0x20) >= 'a' && (c|0x20) <= 'z' || c > 0x7f && !isWhitespace(c) }
func isWhitespace(c uint16) bool { return c == ' ' || c >= '\t' && c <= '\r' || c >= 0x1c && c <= 0x1f }
func isUpper(c uint16) bool      { return c >= 'A' && c <= 'Z' }
func isLower(c uint16) bool      { return c >= 'a' && c <= 'z' }

func toUpperChar(c uint16) uint16 {
	if isLower(c) {
		return c - 32
	}
	return c
}

func toLowerChar(c uint16) uint16 {
	if isUpper(c) {
		return c + 32
	}
	return c
}
