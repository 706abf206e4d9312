package evaluator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

var numericKinds = []host.Kind{host.Byte, host.Short, host.Int, host.Long, host.Float, host.Double}

func one(k host.Kind) *Primitive {
	return castMust(NewPrimitive(int32(1)), k)
}

func castMust(p *Primitive, k host.Kind) *Primitive {
	np, err := castPrimitive(k, p, castExplicit)
	if err != nil {
		panic(err)
	}
	return np
}

func TestBinaryPromotion(t *testing.T) {
	for i, a := range numericKinds {
		for _, b := range numericKinds[i:] {
			want := b
			if want < host.Int {
				want = host.Int
			}
			for _, op := range []string{"+", "-", "*", "/"} {
				v, err := binaryOperation(op, one(a), one(b))
				require.NoError(t, err)
				p, ok := v.(*Primitive)
				require.True(t, ok)
				assert.Equal(t, want, p.Kind(), "%s %s %s", a, op, b)
			}
		}
	}

	v, err := binaryOperation("+", NewPrimitive(uint16('a')), NewPrimitive(int8(1)))
	require.NoError(t, err)
	assert.Equal(t, host.Int, v.(*Primitive).Kind())
}

func TestAssignabilityMatchesCast(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	reg := ev.Registry()

	var classes []*host.Class
	for _, name := range []string{
		"boolean", "char", "byte", "short", "int", "long", "float", "double",
		"java.lang.Object", "java.lang.String", "java.lang.Integer", "java.lang.Long",
		"java.lang.Double", "java.lang.Number", "java.lang.Runnable", "java.lang.Exception",
	} {
		c, ok := reg.Resolve(name)
		require.True(t, ok, name)
		classes = append(classes, c)
	}

	values := []Value{
		NewPrimitive(true),
		NewPrimitive(uint16('x')),
		NewPrimitive(int8(-3)),
		NewPrimitive(int16(300)),
		NewPrimitive(int32(70000)),
		NewPrimitive(int64(1) << 40),
		NewPrimitive(float32(1.5)),
		NewPrimitive(2.5),
		NULL,
		&HostObject{Value: "text"},
		&HostObject{Value: lang.Box(int32(7))},
		&HostObject{Value: lang.Box(2.5)},
		&HostObject{Value: lang.NewRuntimeException("x")},
		&HostObject{Value: lang.NewArrayList()},
	}

	for _, c := range classes {
		for _, v := range values {
			_, err := CastTo(reg, c, v)
			assert.Equal(t, err == nil, IsAssignable(reg, c, v), "%s <- %s", c.Name(), v.Inspect())
		}
	}
}

func TestCastModes(t *testing.T) {
	tests := []struct {
		name string
		from *Primitive
		to   host.Kind
		mode castMode
		want any
		fail bool
	}{
		{"widen int to long", NewPrimitive(int32(5)), host.Long, castAssign, int64(5), false},
		{"widen char to int", NewPrimitive(uint16('A')), host.Int, castAssign, int32(65), false},
		{"widen long to float", NewPrimitive(int64(3)), host.Float, castAssign, float32(3), false},
		{"no assign narrowing", NewPrimitive(int32(5)), host.Byte, castAssign, nil, true},
		{"byte to char is not widening", NewPrimitive(int8(5)), host.Char, castAssign, nil, true},
		{"declare narrows constants", NewPrimitive(int32(100)), host.Byte, castDeclare, int8(100), false},
		{"declare rejects overflow", NewPrimitive(int32(200)), host.Byte, castDeclare, nil, true},
		{"declare keeps floats", NewPrimitive(1.5), host.Int, castDeclare, nil, true},
		{"explicit truncates", NewPrimitive(int32(300)), host.Byte, castExplicit, int8(44), false},
		{"explicit float to int", NewPrimitive(-3.9), host.Int, castExplicit, int32(-3), false},
		{"explicit saturates", NewPrimitive(1e20), host.Int, castExplicit, int32(2147483647), false},
		{"explicit NaN", NewPrimitive(nan()), host.Long, castExplicit, int64(0), false},
		{"explicit int to char", NewPrimitive(int32(-1)), host.Char, castExplicit, uint16(65535), false},
		{"boolean never converts", NewPrimitive(true), host.Int, castExplicit, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := castPrimitive(tt.to, tt.from, tt.mode)
			if tt.fail {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Value())
		})
	}
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

func TestReferenceCasts(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	reg := ev.Registry()
	str, _ := reg.Resolve("java.lang.String")
	integer, _ := reg.Resolve("java.lang.Integer")
	long, _ := reg.Resolve("java.lang.Long")
	object, _ := reg.Resolve("java.lang.Object")

	// boxing
	v, err := CastTo(reg, integer, NewPrimitive(int32(4)))
	require.NoError(t, err)
	assert.Equal(t, lang.Box(int32(4)), ToGo(v))

	v, err = CastTo(reg, object, NewPrimitive(int32(4)))
	require.NoError(t, err)
	assert.True(t, isWrapperValue(v))

	// wrapper promotion
	v, err = CastTo(reg, long, &HostObject{Value: lang.Box(int32(4))})
	require.NoError(t, err)
	assert.Equal(t, lang.Box(int64(4)), ToGo(v))

	// typed null
	v, err = CastTo(reg, str, NULL)
	require.NoError(t, err)
	n, ok := v.(*Null)
	require.True(t, ok)
	assert.Same(t, str, n.Class)

	// explicit reference cast failure is a script exception
	_, err = castObject(reg, str, &HostObject{Value: lang.Box(int32(4))}, castExplicit, false)
	var te *TargetError
	require.True(t, errors.As(err, &te))
	assert.IsType(t, &lang.ClassCastException{}, te.Thrown)

	// a loose location accepts anything but void
	_, err = CastTo(reg, nil, NewPrimitive(true))
	assert.NoError(t, err)
	_, err = CastTo(reg, nil, VOID)
	assert.Error(t, err)
}

func TestUnaryAndIncrement(t *testing.T) {
	v, err := unaryOperation("-", NewPrimitive(int8(3)))
	require.NoError(t, err)
	assert.Equal(t, int32(-3), ToGo(v))

	v, err = unaryOperation("~", NewPrimitive(int64(0)))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), ToGo(v))

	v, err = unaryOperation("!", &HostObject{Value: lang.Box(true)})
	require.NoError(t, err)
	assert.Equal(t, false, ToGo(v))

	_, err = unaryOperation("!", NewPrimitive(int32(1)))
	assert.Error(t, err)

	p, err := increment(NewPrimitive(int8(127)), 1)
	require.NoError(t, err)
	assert.Equal(t, int8(-128), p.Value())

	p, err = increment(NewPrimitive(uint16(0)), -1)
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), p.Value())
}
