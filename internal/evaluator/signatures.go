package evaluator

import (
	"strings"

	"github.com/beanshell/beanshell-sub002/internal/host"
)

// callable is an overload candidate: a script method or a host method.
// A nil parameter class is an untyped script parameter and accepts anything.
type callable interface {
	params() []*host.Class
	variadic() bool
}

// hostCallable adapts a host method to overload resolution.
type hostCallable struct{ m *host.Method }

func (h hostCallable) params() []*host.Class { return h.m.Params() }
func (h hostCallable) variadic() bool        { return h.m.IsVariadic() }

func hostCallables(ms []*host.Method) []callable {
	out := make([]callable, len(ms))
	for i, m := range ms {
		out[i] = hostCallable{m}
	}
	return out
}

// Resolution rounds, tried in order until one finds a candidate.
const (
	roundJava   = iota + 1 // assignability with primitive widening
	roundBoxing            // also boxing and unboxing
)

// findMostSpecific selects the candidate to call with args and returns its
// index with the arguments coerced to its parameters, or -1.
//
// The first two rounds keep the most specific applicable candidate: one whose
// parameters are assignable to every other applicable candidate's, the first
// found winning ties. The third round accepts the first candidate every
// argument can be cast to. The last round expands Go variadic parameters.
func findMostSpecific(reg *host.Registry, cands []callable, args []Value) (int, []Value) {
	argClasses := make([]*host.Class, len(args))
	for i, a := range args {
		argClasses[i] = classOf(reg, a)
	}

	for round := roundJava; round <= roundBoxing; round++ {
		best := -1
		for i, c := range cands {
			ps := c.params()
			if len(ps) != len(args) || !signatureApplicable(reg, ps, argClasses, round) {
				continue
			}
			if best < 0 || moreSpecific(reg, ps, cands[best].params()) {
				best = i
			}
		}
		if best >= 0 {
			if coerced, ok := coerceArgs(reg, cands[best].params(), args); ok {
				return best, coerced
			}
		}
	}

	for i, c := range cands {
		ps := c.params()
		if len(ps) != len(args) {
			continue
		}
		if coerced, ok := coerceArgs(reg, ps, args); ok {
			return i, coerced
		}
	}

	for i, c := range cands {
		if !c.variadic() {
			continue
		}
		if coerced, ok := coerceVariadic(reg, c.params(), args); ok {
			return i, coerced
		}
	}
	return -1, nil
}

func signatureApplicable(reg *host.Registry, params, args []*host.Class, round int) bool {
	for i, p := range params {
		if p == nil {
			continue
		}
		if !classAssignable(reg, p, args[i], round) {
			return false
		}
	}
	return true
}

// moreSpecific reports whether a is strictly more specific than b.
func moreSpecific(reg *host.Registry, a, b []*host.Class) bool {
	return paramsAssignable(reg, b, a) && !paramsAssignable(reg, a, b)
}

// paramsAssignable reports whether every parameter of from fits the
// corresponding parameter of to. Untyped parameters are the most general.
func paramsAssignable(reg *host.Registry, to, from []*host.Class) bool {
	for i := range to {
		switch {
		case to[i] == nil:
		case from[i] == nil:
			return false
		case !classAssignable(reg, to[i], from[i], roundJava):
			return false
		}
	}
	return true
}

// classAssignable is assignability between classes; a nil from is the null
// argument.
func classAssignable(reg *host.Registry, to, from *host.Class, round int) bool {
	switch {
	case to == nil:
		return true
	case from == nil:
		return !to.IsPrimitive()
	case to == from:
		return true
	case to.IsPrimitive() && from.IsPrimitive():
		return isWidening(from.Kind(), to.Kind())
	case !to.IsPrimitive() && !from.IsPrimitive():
		return to.AssignableFrom(from)
	case round < roundBoxing:
		return false
	case from.IsPrimitive():
		return to.AssignableFrom(wrapperClass(reg, from.Kind()))
	}
	k := wrapperKind(reg, from)
	return k != host.Reference && isWidening(k, to.Kind())
}

func coerceArgs(reg *host.Registry, params []*host.Class, args []Value) ([]Value, bool) {
	out := make([]Value, len(args))
	for i, a := range args {
		v, err := castObject(reg, params[i], a, castAssign, false)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// coerceVariadic casts the fixed arguments to their parameters and every
// trailing argument to the element class of the variadic parameter.
func coerceVariadic(reg *host.Registry, params []*host.Class, args []Value) ([]Value, bool) {
	fixed := len(params) - 1
	if fixed < 0 || len(args) < fixed {
		return nil, false
	}
	out, ok := coerceArgs(reg, params[:fixed], args[:fixed])
	if !ok {
		return nil, false
	}
	elem := params[fixed].Elem()
	for _, a := range args[fixed:] {
		v, err := castObject(reg, elem, a, castAssign, false)
		if err != nil {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

func sameParams(a, b []*host.Class) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// signatureString renders a call for error messages: name(int, String).
func signatureString(reg *host.Registry, name string, args []Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if c := classOf(reg, a); c != nil {
			parts[i] = c.Name()
		} else {
			parts[i] = "null"
		}
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}
