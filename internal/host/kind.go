package host

import (
	"reflect"
)

// Kind classifies primitive types. Reference types have kind Reference.
type Kind uint8

const (
	Reference Kind = iota
	Boolean
	Char
	Byte
	Short
	Int
	Long
	Float
	Double
)

var kindNames = [...]string{
	Reference: "reference",
	Boolean:   "boolean",
	Char:      "char",
	Byte:      "byte",
	Short:     "short",
	Int:       "int",
	Long:      "long",
	Float:     "float",
	Double:    "double",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsPrimitive reports whether k names a primitive kind.
func (k Kind) IsPrimitive() bool { return k != Reference }

// IsNumeric reports whether k takes part in numeric promotion. char is numeric.
func (k Kind) IsNumeric() bool { return k >= Char && k <= Double }

// IsIntegral reports whether k is an integer kind, char included.
func (k Kind) IsIntegral() bool { return k >= Char && k <= Long }

// IsFloating reports whether k is float or double.
func (k Kind) IsFloating() bool { return k == Float || k == Double }

// Canonical Go types of the primitive kinds.
var (
	boolType    = reflect.TypeOf(false)
	charType    = reflect.TypeOf(uint16(0))
	byteType    = reflect.TypeOf(int8(0))
	shortType   = reflect.TypeOf(int16(0))
	intType     = reflect.TypeOf(int32(0))
	longType    = reflect.TypeOf(int64(0))
	floatType   = reflect.TypeOf(float32(0))
	doubleType  = reflect.TypeOf(float64(0))
	anyType     = reflect.TypeOf((*any)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	stringType  = reflect.TypeOf("")
	goIntType   = reflect.TypeOf(int(0))
	goUintType  = reflect.TypeOf(uint(0))
	goUint8Type = reflect.TypeOf(uint8(0))
	goUint32    = reflect.TypeOf(uint32(0))
	goUint64    = reflect.TypeOf(uint64(0))
)

// GoType returns the canonical Go type of a primitive kind.
func (k Kind) GoType() reflect.Type {
	switch k {
	case Boolean:
		return boolType
	case Char:
		return charType
	case Byte:
		return byteType
	case Short:
		return shortType
	case Int:
		return intType
	case Long:
		return longType
	case Float:
		return floatType
	case Double:
		return doubleType
	}
	return nil
}

// KindOf maps a Go type to a primitive kind. Unnamed Go integer types other than
// the canonical ones map by range: uint8 to short; int, uint, uint32 and uint64 to long.
// Named types (type Celsius float64) are references.
func KindOf(t reflect.Type) Kind {
	if t == nil || t.PkgPath() != "" {
		return Reference
	}
	switch t {
	case boolType:
		return Boolean
	case charType:
		return Char
	case byteType:
		return Byte
	case shortType, goUint8Type:
		return Short
	case intType:
		return Int
	case longType, goIntType, goUintType, goUint32, goUint64:
		return Long
	case floatType:
		return Float
	case doubleType:
		return Double
	}
	return Reference
}

// Canonical converts a Go value of a primitive-mapped type to the canonical
// Go type of its kind (int becomes int64, uint8 becomes int16). Other values
// are returned unchanged.
func Canonical(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case uint:
		return int64(x)
	case uint8:
		return int16(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	}
	return v
}

// IsCanonicalPrimitive reports whether v holds one of the eight canonical primitive Go types.
func IsCanonicalPrimitive(v any) bool {
	switch v.(type) {
	case bool, uint16, int8, int16, int32, int64, float32, float64:
		return true
	}
	return false
}

// ZeroValue is the default value of a primitive kind as its canonical Go value.
func ZeroValue(k Kind) any {
	if t := k.GoType(); t != nil {
		return reflect.Zero(t).Interface()
	}
	return nil
}
