package evaluator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

func TestScopeVariables(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	global := ev.Global()
	child := NewScope(global, "child")

	require.NoError(t, global.SetVariable("a", NewPrimitive(int32(1)), false, false))

	// assignment through the child reaches the existing parent variable
	require.NoError(t, child.SetVariable("a", NewPrimitive(int32(2)), false, true))
	v, ok := global.GetVariable("a", false)
	require.True(t, ok)
	assert.Equal(t, int32(2), ToGo(v))

	// a local assignment shadows it
	require.NoError(t, child.SetLocalVariable("a", NewPrimitive(int32(3)), false))
	v, _ = global.GetVariable("a", false)
	assert.Equal(t, int32(2), ToGo(v))
	v, _ = child.GetVariable("a", false)
	assert.Equal(t, int32(3), ToGo(v))

	_, ok = child.GetVariable("missing", true)
	assert.False(t, ok)

	// strict mode refuses to create variables by assignment
	assert.Error(t, child.SetVariable("fresh", NewPrimitive(true), true, true))

	assert.True(t, child.UnsetVariable("a"))
	v, _ = child.GetVariable("a", true)
	assert.Equal(t, int32(2), ToGo(v))
	assert.Equal(t, []string{}, child.VariableNames())
}

func TestTypedVariables(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	reg := ev.Registry()
	scope := NewScope(ev.Global(), "test")
	intClass := reg.Primitive(host.Int)
	str, _ := reg.Resolve("java.lang.String")

	require.NoError(t, scope.SetTypedVariable("n", intClass, nil, nil))
	v, _ := scope.GetVariable("n", false)
	assert.Equal(t, int32(0), ToGo(v), "default value")

	require.NoError(t, scope.SetTypedVariable("s", str, nil, nil))
	v, _ = scope.GetVariable("s", false)
	assert.IsType(t, &Null{}, v)

	require.NoError(t, scope.SetVariable("n", NewPrimitive(int8(9)), false, false))
	v, _ = scope.GetVariable("n", false)
	assert.Equal(t, int32(9), ToGo(v), "widened on assignment")

	assert.Error(t, scope.SetVariable("n", &HostObject{Value: "x"}, false, false))
	assert.Error(t, scope.SetTypedVariable("n", str, nil, nil), "redeclared with another type")
	assert.NoError(t, scope.SetTypedVariable("n", intClass, NewPrimitive(int32(4)), nil))

	require.NoError(t, scope.SetTypedVariable("f", intClass, NewPrimitive(int32(1)), ast.Modifiers{"final"}))
	assert.Error(t, scope.SetVariable("f", NewPrimitive(int32(2)), false, false))

	vr, ok := scope.Variable("f")
	require.True(t, ok)
	assert.True(t, vr.IsTyped())
	assert.True(t, vr.IsFinal())
}

func TestBlockScope(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	reg := ev.Registry()
	method := NewScope(ev.Global(), "method")
	block := NewBlockScope(method)

	// untyped assignment passes through to the enclosing scope
	require.NoError(t, block.SetVariable("u", NewPrimitive(int32(1)), false, true))
	_, ok := method.Variable("u")
	assert.True(t, ok)
	_, ok = block.Variable("u")
	assert.False(t, ok)

	// typed declarations stay in the block
	require.NoError(t, block.SetTypedVariable("t", reg.Primitive(host.Int), NewPrimitive(int32(2)), nil))
	_, ok = method.Variable("t")
	assert.False(t, ok)
	v, ok := block.GetVariable("t", true)
	require.True(t, ok)
	assert.Equal(t, int32(2), ToGo(v))

	block.SetBlockVariable("e", NewPrimitive(true))
	_, ok = method.Variable("e")
	assert.False(t, ok)

	// the block shares the object closure of its enclosing scope
	assert.Same(t, method.This(), block.This())
	assert.NotSame(t, method.This(), block.BlockThis())
	assert.Same(t, ev.Global().This(), method.Super())
}

func TestScopeMethods(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	_, err := ev.EvalString(`
f(a) { return "loose"; }
f(int a) { return "int"; }
f(int a) { return "int again"; }
g() { return 1; }
`, "test.bsh")
	require.NoError(t, err)

	global := ev.Global()
	assert.Len(t, global.Methods("f"), 2, "same signature replaces")
	assert.Equal(t, []string{"f", "g"}, global.MethodNames())

	m, coerced := global.GetMethod("f", []Value{NewPrimitive(int8(3))}, false)
	require.NotNil(t, m)
	assert.Equal(t, "f(int a)", m.String())
	assert.Equal(t, int32(3), ToGo(coerced[0]))

	m, _ = global.GetMethod("f", []Value{&HostObject{Value: "s"}}, false)
	require.NotNil(t, m)
	assert.Equal(t, "f(a)", m.String())

	inner := NewScope(global, "inner")
	m, _ = inner.GetMethod("g", nil, false)
	assert.NotNil(t, m)
	m, _ = inner.GetMethod("g", nil, true)
	assert.Nil(t, m)
}

func TestClassResolution(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	global := ev.Global()

	c, err := global.GetClass("String")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "java.lang.String", c.Name())

	c, err = global.GetClass("ArrayList")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "java.util.ArrayList", c.Name())

	c, err = global.GetClass("java.util.HashMap")
	require.NoError(t, err)
	require.NotNil(t, c)

	c, err = global.GetClass("NoSuchThing")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = ev.Registry().Register(host.ClassSpec{Name: "geo.Shape", Type: typeOf(&point{})})
	require.NoError(t, err)
	scope := NewScope(global, "importer")
	scope.ImportClass("geo.Shape")
	c, err = scope.GetClass("Shape")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "geo.Shape", c.Name())

	c, err = global.GetClass("Shape")
	require.NoError(t, err)
	assert.Nil(t, c, "imports are per scope")
}

func TestCallStack(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	global := ev.Global()
	a := NewScope(global, "a")
	b := NewScope(global, "b")

	cs := NewCallStack(global)
	cs.Push(a)
	cs.Push(b)
	assert.Equal(t, 3, cs.Depth())
	assert.Same(t, b, cs.Top())
	assert.Same(t, a, cs.Get(1))
	assert.Same(t, global, cs.Get(2))

	foreign := cs.Get(3)
	require.NotNil(t, foreign)
	assert.Same(t, foreign, cs.Get(10))

	cp := cs.Copy()
	c := NewScope(global, "c")
	assert.Same(t, b, cs.Swap(c))
	assert.Same(t, b, cp.Top())

	names := func(ss []*Scope) []string {
		out := make([]string, len(ss))
		for i, s := range ss {
			out[i] = s.Name()
		}
		return out
	}
	if diff := cmp.Diff([]string{"c", "a", global.Name()}, names(cs.Frames())); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}

	assert.Same(t, c, cs.Pop())
	assert.Same(t, a, cs.Pop())
	assert.Same(t, global, cs.Pop())
	assert.Nil(t, cs.Pop())
}

func TestHostOverloads(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	reg := ev.Registry()
	math, ok := reg.Resolve("java.lang.Math")
	require.True(t, ok)
	cands := hostCallables(math.StaticMethods("max"))

	tests := []struct {
		name string
		args []Value
		want any
	}{
		{"ints", []Value{NewPrimitive(int32(1)), NewPrimitive(int32(2))}, int32(2)},
		{"byte and int widen to int", []Value{NewPrimitive(int8(1)), NewPrimitive(int32(2))}, int32(2)},
		{"int and long", []Value{NewPrimitive(int32(1)), NewPrimitive(int64(5))}, int64(5)},
		{"wrappers unbox", []Value{&HostObject{Value: lang.Box(int32(8))}, NewPrimitive(int32(2))}, int32(8)},
		{"doubles", []Value{NewPrimitive(1.5), NewPrimitive(int32(1))}, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, coerced := findMostSpecific(reg, cands, tt.args)
			require.GreaterOrEqual(t, i, 0)
			v, err := ev.callHost(math.StaticMethods("max")[i], nil, coerced, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ToGo(v))
		})
	}

	i, _ := findMostSpecific(reg, cands, []Value{&HostObject{Value: "x"}, NewPrimitive(int32(1))})
	assert.Equal(t, -1, i)

	assert.Equal(t, "max(int, java.lang.String, null)",
		signatureString(reg, "max", []Value{NewPrimitive(int32(1)), &HostObject{Value: "s"}, NULL}))
}
