package lang

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanshell/beanshell-sub002/internal/host"
)

func installed(t *testing.T) (*host.Registry, *bytes.Buffer) {
	t.Helper()
	reg := host.NewRegistry(zerolog.Nop())
	var out bytes.Buffer
	require.NoError(t, Install(reg, Options{Stdout: &out}))
	return reg, &out
}

func TestToString(t *testing.T) {
	tests := []struct {
		in       any
		expected string
	}{
		{nil, "null"},
		{true, "true"},
		{uint16('x'), "x"},
		{int32(-5), "-5"},
		{int64(1) << 40, "1099511627776"},
		{1.0, "1.0"},
		{1.5, "1.5"},
		{float32(0.1), "0.1"},
		{1e10, "1.0E10"},
		{1.5e-5, "1.5E-5"},
		{0.001, "0.001"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
		{&Integer{7}, "7"},
		{&Double{2}, "2.0"},
		{[]int32{1, 2}, "[1, 2]"},
		{[]any{"a", nil}, "[a, null]"},
		{NewArithmeticException("/ by zero"), "java.lang.ArithmeticException: / by zero"},
		{NewStringBuilderOf("ab").Append(int32(1)), "ab1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ToString(tt.in), "%#v", tt.in)
	}
}

func TestBoxing(t *testing.T) {
	for _, v := range []any{true, uint16('a'), int8(1), int16(2), int32(3), int64(4), float32(5), 6.0} {
		boxed := Box(v)
		assert.True(t, IsWrapper(boxed), "%T", v)
		back, ok := Unbox(boxed)
		require.True(t, ok)
		assert.Equal(t, v, back)
	}
	assert.Equal(t, "s", Box("s"))
	a, b := Box(int32(1)), Box(int32(1))
	assert.NotSame(t, a, b)
	assert.True(t, Equals(a, b))
	assert.Equal(t, HashCode(int32(1)), HashCode(a))
}

func TestHashCodeMatchesJava(t *testing.T) {
	assert.Equal(t, int32(99162322), HashCode("hello"))
	assert.Equal(t, int32(1231), HashCode(true))
	assert.Equal(t, int32(0), HashCode(nil))
	assert.Equal(t, int32(1), HashCode(int64(1)))
}

func TestParse(t *testing.T) {
	n, err := ParseInt("-42")
	require.NoError(t, err)
	assert.Equal(t, int32(-42), n)

	_, err = ParseInt("4x")
	var nfe *NumberFormatException
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, `For input string: "4x"`, nfe.GetMessage())

	_, err = ParseByte("300")
	assert.Error(t, err)

	f, err := ParseDouble("2.5d")
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)
	assert.True(t, ParseBoolean("TRUE"))
}

func TestExceptionHierarchy(t *testing.T) {
	reg, _ := installed(t)
	rt, ok := reg.Resolve("java.lang.RuntimeException")
	require.True(t, ok)
	ex, _ := reg.Resolve("java.lang.Exception")
	th, _ := reg.Resolve("java.lang.Throwable")

	nfe := reg.ClassOf(reflect.TypeOf(NewNumberFormatException("x")))
	assert.Equal(t, "java.lang.NumberFormatException", nfe.Name())
	assert.True(t, rt.AssignableFrom(nfe))
	assert.True(t, ex.AssignableFrom(nfe))
	assert.True(t, th.AssignableFrom(nfe))

	plain := reg.ClassOf(reflect.TypeOf(errors.New("x")))
	assert.True(t, ex.AssignableFrom(plain))
	assert.False(t, rt.AssignableFrom(plain))

	ctors := rt.Constructors()
	require.Len(t, ctors, 4)
	v, err := ctors[1].Call(nil, []any{"boom"})
	require.NoError(t, err)
	assert.EqualError(t, v.(error), "java.lang.RuntimeException: boom")

	cause := errors.New("root")
	ee := NewEvalException(cause)
	assert.ErrorIs(t, ee, cause)
}

func TestStringExtensions(t *testing.T) {
	reg, _ := installed(t)
	str, ok := reg.Resolve("java.lang.String")
	require.True(t, ok)

	call := func(name string, args ...any) any {
		t.Helper()
		ms := str.Methods(name)
		require.NotEmpty(t, ms, name)
		for _, m := range ms {
			if len(m.Params()) == len(args) {
				v, err := m.Call("Hello, World", args)
				require.NoError(t, err)
				return v
			}
		}
		t.Fatalf("no %s overload with %d args", name, len(args))
		return nil
	}
	assert.Equal(t, int32(12), call("length"))
	assert.Equal(t, uint16('e'), call("charAt", int32(1)))
	assert.Equal(t, "World", call("substring", int32(7)))
	assert.Equal(t, "lo", call("substring", int32(3), int32(5)))
	assert.Equal(t, "HELLO, WORLD", call("toUpperCase"))
	assert.Equal(t, true, call("startsWith", "Hell"))
	assert.Equal(t, []string{"Hello", "World"}, call("split", ", "))

	_, err := str.Methods("charAt")[0].Call("ab", []any{int32(5)})
	var sioobe *StringIndexOutOfBoundsException
	assert.ErrorAs(t, err, &sioobe)
}

func TestFormat(t *testing.T) {
	s, err := Format("%s=%d (%.2f)%n", "x", &Integer{3}, 1.5)
	require.NoError(t, err)
	assert.Equal(t, "x=3 (1.50)\n", s)

	s, err = Format("%5s|%-3d|%c|%b", int32(7), int32(1), uint16('z'), nil)
	require.NoError(t, err)
	assert.Equal(t, "    7|1  |z|false", s)

	_, err = Format("%d", "nope")
	assert.Error(t, err)
	_, err = Format("%s %s", "one")
	assert.Error(t, err)
}

func TestArrayList(t *testing.T) {
	l := NewArrayList()
	l.Add(&Integer{3})
	l.Add(&Integer{1})
	require.NoError(t, l.AddAt(1, &Integer{2}))
	assert.Equal(t, int32(3), l.Size())
	assert.True(t, l.Contains(&Integer{2}))
	assert.Equal(t, int32(1), l.IndexOf(&Integer{2}))

	require.NoError(t, l.Sort(nil))
	assert.Equal(t, "[1, 2, 3]", l.ToString())

	_, err := l.Get(3)
	var ioobe *IndexOutOfBoundsException
	assert.ErrorAs(t, err, &ioobe)

	assert.True(t, l.RemoveElement(&Integer{2}))
	old, err := l.Remove(0)
	require.NoError(t, err)
	assert.Equal(t, &Integer{1}, old)

	var seen []any
	require.NoError(t, Each(l, func(v any) error { seen = append(seen, v); return nil }))
	assert.Equal(t, []any{&Integer{3}}, seen)
}

func TestHashMapKeys(t *testing.T) {
	m := NewHashMap()
	assert.Nil(t, m.Put(&Integer{1}, "one"))
	assert.Equal(t, "one", m.Put(int32(1), "uno"))
	assert.Equal(t, "uno", m.Get(&Integer{1}))
	m.Put("k", "v")
	assert.True(t, m.ContainsKey("k"))
	assert.Equal(t, int32(2), m.Size())
	assert.Equal(t, "{1=uno, k=v}", m.ToString())
	assert.Equal(t, "uno", m.Remove(int32(1)))
	assert.Equal(t, []any{"k"}, m.KeySet())
	assert.Equal(t, "v", m.Get("k"))
}

func TestInstallRegistersLazyUtil(t *testing.T) {
	reg, out := installed(t)
	assert.True(t, reg.HasPackage("java.util"))

	list, ok := reg.Resolve("java.util.ArrayList")
	require.True(t, ok)
	assert.NotEmpty(t, list.Methods("add"))
	assert.Len(t, list.Methods("add"), 2)

	cmpIface, ok := reg.Resolve("java.util.Comparator")
	require.True(t, ok)
	assert.True(t, reg.HasProxySupport(cmpIface))

	sys, _ := reg.Resolve("java.lang.System")
	f, ok := sys.StaticField("out")
	require.True(t, ok)
	f.Get().(*PrintStream).Println("hi ", int32(1))
	assert.Equal(t, "hi 1\n", out.String())

	abs := func(arg any) any {
		mathClass, _ := reg.Resolve("java.lang.Math")
		for _, m := range mathClass.StaticMethods("abs") {
			if m.Params()[0].Type() == reflect.TypeOf(arg) {
				v, err := m.Call(nil, []any{arg})
				require.NoError(t, err)
				return v
			}
		}
		return nil
	}
	assert.Equal(t, int32(3), abs(int32(-3)))
	assert.Equal(t, 2.5, abs(-2.5))
}

type countingHandler struct{ calls []string }

func (h *countingHandler) Invoke(method string, args []any) (any, error) {
	h.calls = append(h.calls, method)
	switch method {
	case "compare":
		a, _ := Unbox(args[0])
		b, _ := Unbox(args[1])
		return int32(b.(int32) - a.(int32)), nil
	case "run":
		return nil, errors.New("run failed")
	}
	return nil, nil
}

func TestProxiesForwardCalls(t *testing.T) {
	reg, _ := installed(t)
	h := &countingHandler{}

	cmpClass, _ := reg.Resolve("java.util.Comparator")
	p, err := reg.NewProxy(cmpClass, h)
	require.NoError(t, err)
	assert.Same(t, h, p.(host.Proxy).ProxyHandler())
	l := asList(&Integer{1}, &Integer{3}, &Integer{2})
	require.NoError(t, l.Sort(p.(Comparator)))
	assert.Equal(t, "[3, 2, 1]", l.ToString())

	runClass, _ := reg.Resolve("java.lang.Runnable")
	r, err := reg.NewProxy(runClass, h)
	require.NoError(t, err)
	th := NewThread(r.(Runnable))
	require.NoError(t, th.Start())
	assert.EqualError(t, th.Join(), "run failed")
	assert.Error(t, th.Start())
}
