package lang

import (
	"fmt"
	"hash/fnv"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf16"
)

type toStringer interface{ ToString() string }

// ToString renders a Go value the way the scripting language prints it:
// null for nil, Java formatting for primitives, ToString or String methods
// for objects and bracketed element lists for arrays.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case uint16:
		return string(utf16.Decode([]uint16{x}))
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float32:
		return formatFloating(float64(x), 32)
	case float64:
		return formatFloating(x, 64)
	case toStringer:
		return x.ToString()
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "null"
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = ToString(canonical(rv.Index(i)))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return "null"
		}
	}
	return fmt.Sprint(v)
}

func canonical(v reflect.Value) any {
	if (v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr) && v.IsNil() {
		return nil
	}
	return v.Interface()
}

// formatFloating follows Float.toString/Double.toString: plain notation with
// at least one fractional digit in [1e-3, 1e7), computerized notation otherwise.
func formatFloating(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	abs := math.Abs(f)
	if abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(f, 'f', -1, bits)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}
		return s
	}
	s := strconv.FormatFloat(f, 'e', -1, bits)
	mant, exp, _ := strings.Cut(s, "e")
	if !strings.ContainsRune(mant, '.') {
		mant += ".0"
	}
	neg := strings.HasPrefix(exp, "-")
	exp = strings.TrimLeft(exp, "+-0")
	if exp == "" {
		exp = "0"
	}
	if neg {
		exp = "-" + exp
	}
	return mant + "E" + exp
}

// HashCode computes the Java hash of strings, primitives and wrappers, and an
// identity-based hash for other references.
func HashCode(v any) int32 {
	if u, ok := Unbox(v); ok {
		v = u
	}
	switch x := v.(type) {
	case nil:
		return 0
	case string:
		var h int32
		for _, c := range utf16.Encode([]rune(x)) {
			h = 31*h + int32(c)
		}
		return h
	case bool:
		if x {
			return 1231
		}
		return 1237
	case uint16:
		return int32(x)
	case int8:
		return int32(x)
	case int16:
		return int32(x)
	case int32:
		return x
	case int64:
		return int32(x ^ int64(uint64(x)>>32))
	case float32:
		return int32(math.Float32bits(x))
	case float64:
		b := math.Float64bits(x)
		return int32(b ^ b>>32)
	case interface{ HashCode() int32 }:
		return x.HashCode()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		p := rv.Pointer()
		return int32(p ^ p>>32)
	}
	h := fnv.New32a()
	fmt.Fprintf(h, "%T:%v", v, v)
	return int32(h.Sum32())
}

// Equals is the value equality of Object.equals: wrappers and strings compare by
// value, types with an Equals method decide themselves, everything else by identity.
func Equals(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if e, ok := a.(interface{ Equals(any) bool }); ok {
		return e.Equals(b)
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ra.Kind() {
	case reflect.Slice, reflect.Map:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	case reflect.Func:
		return ra.Pointer() == rb.Pointer()
	}
	return false
}

// Compare is the natural ordering used by sorting without a comparator.
func Compare(a, b any) (int32, error) {
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			return int32(strings.Compare(x, y)), nil
		}
	}
	if c, ok := a.(Comparable); ok {
		return c.CompareTo(b), nil
	}
	return 0, NewClassCastException(fmt.Sprintf("%s cannot be compared", ClassName(a)))
}

// ClassName is a readable type name for messages.
func ClassName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "java.lang.String"
	case *Integer:
		return "java.lang.Integer"
	case *Long:
		return "java.lang.Long"
	case *Double:
		return "java.lang.Double"
	case *Boolean:
		return "java.lang.Boolean"
	}
	return fmt.Sprintf("%T", v)
}
