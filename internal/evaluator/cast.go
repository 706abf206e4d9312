package evaluator

import (
	"math"

	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

// castMode selects how far a conversion may go.
type castMode int

const (
	// castAssign allows widening, boxing, wrapper promotion and proxies.
	castAssign castMode = iota
	// castDeclare also narrows integral values that fit the target, as Java
	// does for constant initializers.
	castDeclare
	// castExplicit is the (T) operator: any numeric conversion, and a failed
	// reference cast throws ClassCastException.
	castExplicit
)

// IsAssignable reports whether CastTo would succeed.
func IsAssignable(reg *host.Registry, to *host.Class, v Value) bool {
	_, err := castObject(reg, to, v, castAssign, true)
	return err == nil
}

// CastTo converts v for storage in a location of class to. A nil class is a
// loose (untyped) location and accepts anything but void.
func CastTo(reg *host.Registry, to *host.Class, v Value) (Value, error) {
	return castObject(reg, to, v, castAssign, false)
}

func castObject(reg *host.Registry, to *host.Class, v Value, mode castMode, checkOnly bool) (Value, error) {
	if v == nil || isVoid(v) {
		return nil, newEvalError("illegal use of undefined variable, class, or 'void' literal")
	}
	if to == nil {
		return v, nil
	}
	if to.IsVoid() {
		return nil, newEvalError("cannot cast to void")
	}

	switch x := v.(type) {
	case *Null:
		if to.IsPrimitive() {
			return nil, newEvalError("Cannot cast null to primitive type %s", to.Name())
		}
		if checkOnly {
			return v, nil
		}
		return &Null{Class: to}, nil
	case *Primitive:
		return castPrimitiveValue(reg, to, x, mode, checkOnly)
	}

	if to.IsPrimitive() {
		p, ok := unwrapPrimitive(v)
		if !ok {
			return nil, castFailure(reg, to, v, mode)
		}
		np, err := castPrimitive(to.Kind(), p, mode)
		if err != nil {
			return nil, err
		}
		return np, nil
	}

	if to.AssignableFrom(classOf(reg, v)) {
		return v, nil
	}

	// a wrapper may be promoted to a wider wrapper
	if p, ok := unwrapPrimitive(v); ok {
		if k := wrapperKind(reg, to); k != host.Reference {
			np, err := castPrimitive(k, p, mode)
			if err != nil {
				return nil, castFailure(reg, to, v, mode)
			}
			if checkOnly {
				return v, nil
			}
			return &HostObject{Value: lang.Box(np.v)}, nil
		}
	}

	if this, ok := v.(*This); ok && reg.HasProxySupport(to) {
		if checkOnly {
			return v, nil
		}
		p, err := reg.NewProxy(to, this)
		if err != nil {
			return nil, wrapEvalError(err, "cannot make %s from script object", to.Name())
		}
		return ToValue(p), nil
	}
	return nil, castFailure(reg, to, v, mode)
}

func castPrimitiveValue(reg *host.Registry, to *host.Class, p *Primitive, mode castMode, checkOnly bool) (Value, error) {
	if to.IsPrimitive() {
		np, err := castPrimitive(to.Kind(), p, mode)
		if err != nil {
			return nil, err
		}
		return np, nil
	}
	if k := wrapperKind(reg, to); k != host.Reference {
		np, err := castPrimitive(k, p, mode)
		if err != nil {
			return nil, err
		}
		if checkOnly {
			return p, nil
		}
		return &HostObject{Value: lang.Box(np.v)}, nil
	}
	// boxing to Object, Number, Comparable and friends
	if to.AssignableFrom(wrapperClass(reg, p.kind)) {
		if checkOnly {
			return p, nil
		}
		return &HostObject{Value: lang.Box(p.v)}, nil
	}
	return nil, castFailure(reg, to, p, mode)
}

// wrapperKind is the primitive kind boxed by wrapper class c, or Reference.
func wrapperKind(reg *host.Registry, c *host.Class) host.Kind {
	for k := host.Boolean; k <= host.Double; k++ {
		if wrapperClass(reg, k) == c {
			return k
		}
	}
	return host.Reference
}

func castFailure(reg *host.Registry, to *host.Class, v Value, mode castMode) error {
	from := "null"
	if c := classOf(reg, v); c != nil {
		from = c.Name()
	}
	if mode == castExplicit && !to.IsPrimitive() {
		return newTargetError(lang.NewClassCastException(from + " cannot be cast to " + to.Name()))
	}
	return newEvalError("Cannot cast %s to %s", from, to.Name())
}

// castPrimitive converts p to kind k under the rules of mode.
func castPrimitive(k host.Kind, p *Primitive, mode castMode) (*Primitive, error) {
	if p.kind == k {
		return p, nil
	}
	if k == host.Boolean || p.kind == host.Boolean {
		return nil, newEvalError("Cannot cast %s to %s", p.kind, k)
	}
	switch {
	case isWidening(p.kind, k), mode == castExplicit:
		return convertPrimitive(p, k), nil
	case mode == castDeclare && p.kind.IsIntegral() && k.IsIntegral() && fitsKind(p.Int64(), k):
		return convertPrimitive(p, k), nil
	}
	return nil, newEvalError("Cannot cast %s to %s without a loss of precision", p.kind, k)
}

// isWidening reports whether from widens to to: byte < short < int < long <
// float < double, and char widens to int and beyond.
func isWidening(from, to host.Kind) bool {
	if from == to {
		return true
	}
	if !from.IsNumeric() || !to.IsNumeric() {
		return false
	}
	switch from {
	case host.Byte:
		return to == host.Short || to >= host.Int
	case host.Short, host.Char:
		return to >= host.Int
	case host.Int, host.Long, host.Float:
		return to > from
	}
	return false
}

func fitsKind(n int64, k host.Kind) bool {
	switch k {
	case host.Char:
		return n >= 0 && n <= math.MaxUint16
	case host.Byte:
		return n >= math.MinInt8 && n <= math.MaxInt8
	case host.Short:
		return n >= math.MinInt16 && n <= math.MaxInt16
	case host.Int:
		return n >= math.MinInt32 && n <= math.MaxInt32
	}
	return true
}

// convertPrimitive performs a numeric conversion with Java semantics:
// integral narrowing keeps the low bits, floating to integral saturates and
// maps NaN to zero.
func convertPrimitive(p *Primitive, k host.Kind) *Primitive {
	if p.kind.IsFloating() && k.IsIntegral() {
		f := p.Float64()
		if k == host.Long {
			return NewPrimitive(floatToLong(f))
		}
		return convertPrimitive(NewPrimitive(floatToInt(f)), k)
	}
	switch k {
	case host.Char:
		return NewPrimitive(uint16(p.Int64()))
	case host.Byte:
		return NewPrimitive(int8(p.Int64()))
	case host.Short:
		return NewPrimitive(int16(p.Int64()))
	case host.Int:
		return NewPrimitive(int32(p.Int64()))
	case host.Long:
		return NewPrimitive(p.Int64())
	case host.Float:
		if p.kind.IsFloating() {
			return NewPrimitive(float32(p.Float64()))
		}
		return NewPrimitive(float32(p.Int64()))
	case host.Double:
		return NewPrimitive(p.Float64())
	}
	return p
}

func floatToInt(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

func floatToLong(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}
