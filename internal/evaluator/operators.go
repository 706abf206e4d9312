package evaluator

import (
	"math"
	"reflect"

	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

const errVoidOperand = "illegal use of undefined variable, class, or 'void' literal"

// binaryOperation applies a non short-circuit binary operator to evaluated
// operands. Wrappers are unboxed except when two wrappers are compared with
// == or !=, which compares identity.
func binaryOperation(op string, l, r Value) (Value, error) {
	if isVoid(l) || isVoid(r) {
		return nil, newEvalError(errVoidOperand)
	}
	if op == "+" && (isString(l) || isString(r)) {
		return &HostObject{Value: lang.ToString(ToGo(l)) + lang.ToString(ToGo(r))}, nil
	}

	lp, lok := unwrapPrimitive(l)
	rp, rok := unwrapPrimitive(r)
	identity := (op == "==" || op == "!=") && isWrapperValue(l) && isWrapperValue(r)
	if lok && rok && !identity {
		return primitiveBinary(op, lp, rp)
	}

	switch op {
	case "==":
		return nativeBool(sameObject(l, r)), nil
	case "!=":
		return nativeBool(!sameObject(l, r)), nil
	}
	if isNull(l) || isNull(r) {
		return nil, newEvalError("illegal use of null value or 'null' literal")
	}
	return nil, newEvalError("Operator: '%s' inappropriate for objects", op)
}

// sameObject is reference equality. Strings compare by content.
func sameObject(l, r Value) bool {
	a, b := ToGo(l), ToGo(r)
	if a == nil || b == nil {
		return a == nil && b == nil
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
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	case reflect.Map, reflect.Func:
		return ra.Pointer() == rb.Pointer()
	}
	return false
}

func primitiveBinary(op string, a, b *Primitive) (Value, error) {
	if a.kind == host.Boolean || b.kind == host.Boolean {
		if a.kind != b.kind {
			return nil, newEvalError("Operator: '%s' inappropriate for %s and %s", op, a.kind, b.kind)
		}
		return booleanBinary(op, a.Bool(), b.Bool())
	}

	switch op {
	case "<<", ">>", ">>>":
		return shift(op, a, b)
	}

	switch binaryPromote(a.kind, b.kind) {
	case host.Int:
		return integralBinary(op, int32(a.Int64()), int32(b.Int64()))
	case host.Long:
		return integralBinary(op, a.Int64(), b.Int64())
	case host.Float:
		return floatingBinary(op, float32(a.Float64()), float32(b.Float64()))
	default:
		return floatingBinary(op, a.Float64(), b.Float64())
	}
}

// unaryPromote widens char, byte and short to int.
func unaryPromote(k host.Kind) host.Kind {
	if k == host.Char || k == host.Byte || k == host.Short {
		return host.Int
	}
	return k
}

// binaryPromote is the kind both operands are converted to: the wider of the
// two after unary promotion.
func binaryPromote(a, b host.Kind) host.Kind {
	a, b = unaryPromote(a), unaryPromote(b)
	if a > b {
		return a
	}
	return b
}

func booleanBinary(op string, x, y bool) (Value, error) {
	switch op {
	case "==":
		return nativeBool(x == y), nil
	case "!=":
		return nativeBool(x != y), nil
	case "&", "&&":
		return nativeBool(x && y), nil
	case "|", "||":
		return nativeBool(x || y), nil
	case "^":
		return nativeBool(x != y), nil
	}
	return nil, newEvalError("Operator: '%s' inappropriate for boolean", op)
}

func divideByZero() error {
	return newTargetError(lang.NewArithmeticException("/ by zero"))
}

func integralBinary[T int32 | int64](op string, x, y T) (Value, error) {
	switch op {
	case "+":
		return NewPrimitive(x + y), nil
	case "-":
		return NewPrimitive(x - y), nil
	case "*":
		return NewPrimitive(x * y), nil
	case "/":
		if y == 0 {
			return nil, divideByZero()
		}
		return NewPrimitive(x / y), nil
	case "%":
		if y == 0 {
			return nil, divideByZero()
		}
		return NewPrimitive(x % y), nil
	case "&":
		return NewPrimitive(x & y), nil
	case "|":
		return NewPrimitive(x | y), nil
	case "^":
		return NewPrimitive(x ^ y), nil
	}
	return compare(op, x, y)
}

func floatingBinary[T float32 | float64](op string, x, y T) (Value, error) {
	switch op {
	case "+":
		return NewPrimitive(x + y), nil
	case "-":
		return NewPrimitive(x - y), nil
	case "*":
		return NewPrimitive(x * y), nil
	case "/":
		return NewPrimitive(x / y), nil
	case "%":
		return NewPrimitive(T(math.Mod(float64(x), float64(y)))), nil
	}
	return compare(op, x, y)
}

func compare[T int32 | int64 | float32 | float64](op string, x, y T) (Value, error) {
	switch op {
	case "<":
		return nativeBool(x < y), nil
	case ">":
		return nativeBool(x > y), nil
	case "<=":
		return nativeBool(x <= y), nil
	case ">=":
		return nativeBool(x >= y), nil
	case "==":
		return nativeBool(x == y), nil
	case "!=":
		return nativeBool(x != y), nil
	}
	return nil, newEvalError("Operator: '%s' inappropriate for numeric operands", op)
}

// shift uses the promoted type of the left operand; the count is masked to
// the width of that type.
func shift(op string, a, b *Primitive) (Value, error) {
	if !a.IsIntegral() || !b.IsIntegral() {
		return nil, newEvalError("Operator: '%s' requires integral operands", op)
	}
	n := b.Int64()
	if unaryPromote(a.kind) == host.Long {
		x, s := a.Int64(), uint(n&63)
		switch op {
		case "<<":
			return NewPrimitive(x << s), nil
		case ">>":
			return NewPrimitive(x >> s), nil
		}
		return NewPrimitive(int64(uint64(x) >> s)), nil
	}
	x, s := int32(a.Int64()), uint(n&31)
	switch op {
	case "<<":
		return NewPrimitive(x << s), nil
	case ">>":
		return NewPrimitive(x >> s), nil
	}
	return NewPrimitive(int32(uint32(x) >> s)), nil
}

// unaryOperation applies !, -, + or ~ to an evaluated operand.
func unaryOperation(op string, v Value) (Value, error) {
	if isVoid(v) {
		return nil, newEvalError(errVoidOperand)
	}
	p, ok := unwrapPrimitive(v)
	if !ok {
		if isNull(v) {
			return nil, newEvalError("illegal use of null value or 'null' literal")
		}
		return nil, newEvalError("Operator: '%s' inappropriate for objects", op)
	}
	if op == "!" {
		if p.kind != host.Boolean {
			return nil, newEvalError("Operator: '!' inappropriate for %s", p.kind)
		}
		return nativeBool(!p.Bool()), nil
	}
	if !p.IsNumeric() {
		return nil, newEvalError("Operator: '%s' inappropriate for %s", op, p.kind)
	}

	switch k := unaryPromote(p.kind); op {
	case "+":
		return convertPrimitive(p, k), nil
	case "-":
		switch k {
		case host.Int:
			return NewPrimitive(-int32(p.Int64())), nil
		case host.Long:
			return NewPrimitive(-p.Int64()), nil
		case host.Float:
			return NewPrimitive(-float32(p.Float64())), nil
		}
		return NewPrimitive(-p.Float64()), nil
	case "~":
		switch k {
		case host.Int:
			return NewPrimitive(^int32(p.Int64())), nil
		case host.Long:
			return NewPrimitive(^p.Int64()), nil
		}
		return nil, newEvalError("Operator: '~' inappropriate for %s", p.kind)
	}
	return nil, newEvalError("unknown unary operator %s", op)
}

// increment adds delta keeping the kind of p, as ++ and -- do.
func increment(p *Primitive, delta int64) (*Primitive, error) {
	switch {
	case !p.IsNumeric():
		return nil, newEvalError("Operator: '++/--' inappropriate for %s", p.kind)
	case p.kind == host.Float:
		return NewPrimitive(float32(p.Float64()) + float32(delta)), nil
	case p.kind == host.Double:
		return NewPrimitive(p.Float64() + float64(delta)), nil
	}
	return convertPrimitive(NewPrimitive(p.Int64()+delta), p.kind), nil
}
