package host

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type point struct {
	X, Y  int32
	label string
}

func (p *point) Sum() int32           { return p.X + p.Y }
func (p *point) GetLabel() string     { return p.label }
func (p *point) SetLabel(s string)    { p.label = s }
func (p *point) IsOrigin() bool       { return p.X == 0 && p.Y == 0 }
func (p *point) Scale(k int32) *point { return &point{X: p.X * k, Y: p.Y * k} }
func (p *point) Fail() error          { return errors.New("boom") }
func (p *point) Join(sep string, parts ...string) string {
	out := ""
	for i, s := range parts {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}

type greeter interface{ Greet(name string) string }

type greeterProxy struct{ h InvocationHandler }

func (g greeterProxy) Greet(name string) string {
	v, err := g.h.Invoke("greet", []any{name})
	if err != nil {
		panic(err)
	}
	s, _ := v.(string)
	return s
}

type handlerFunc func(string, []any) (any, error)

func (f handlerFunc) Invoke(m string, args []any) (any, error) { return f(m, args) }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry(zerolog.Nop())
	_, err := reg.Register(ClassSpec{Name: "java.lang.Object", Type: anyType})
	require.NoError(t, err)
	return reg
}

func TestPrimitiveClasses(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	for k := Boolean; k <= Double; k++ {
		c, ok := reg.Resolve(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, c.Kind())
		assert.Same(t, c, reg.ClassOf(k.GoType()))
	}
	assert.Same(t, reg.Primitive(Long), reg.ClassOf(reflect.TypeOf(0)))
	assert.Same(t, reg.Primitive(Short), reg.ClassOf(reflect.TypeOf(uint8(0))))
	assert.True(t, reg.Void().IsVoid())
}

func TestRegisterAndResolve(t *testing.T) {
	reg := newTestRegistry(t)
	counter := int64(3)
	c, err := reg.Register(ClassSpec{
		Name: "geo.Point",
		Type: reflect.TypeOf(&point{}),
		Fields: map[string]any{
			"ORIGIN_X": int32(0),
			"counter":  Var(&counter),
		},
		Methods: map[string][]any{
			"of": {func(x, y int32) *point { return &point{X: x, Y: y} }},
		},
		Extensions: map[string][]any{
			"describe": {func(p *point) string { return p.label }},
		},
	})
	require.NoError(t, err)

	got, ok := reg.Resolve("geo.Point")
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.Equal(t, "Point", c.SimpleName())
	assert.Equal(t, "geo", c.Package())
	assert.True(t, reg.HasPackage("geo"))

	f, ok := c.StaticField("ORIGIN_X")
	require.True(t, ok)
	assert.True(t, f.IsFinal())
	assert.Error(t, f.Set(int32(1)))

	f, _ = c.StaticField("counter")
	require.NoError(t, f.Set(int32(9)))
	assert.Equal(t, int64(9), counter)

	ms := c.StaticMethods("of")
	require.Len(t, ms, 1)
	p, err := ms[0].Call(nil, []any{int32(1), int32(2)})
	require.NoError(t, err)

	sum := c.Methods("sum")
	require.Len(t, sum, 1)
	v, err := sum[0].Call(p, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), v)

	desc := c.Methods("describe")
	require.NotEmpty(t, desc)
	assert.Empty(t, desc[0].Params())

	arr, ok := reg.Resolve("geo.Point[]")
	require.True(t, ok)
	assert.Same(t, c, arr.Elem())
}

func TestRegisterRejectsMalformed(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Register(ClassSpec{Name: "", Type: anyType})
	assert.Error(t, err)
	_, err = reg.Register(ClassSpec{Name: "a.B", Type: nil})
	assert.Error(t, err)
	_, err = reg.Register(ClassSpec{Name: "a.C", Type: anyType, Methods: map[string][]any{"x": {42}}})
	assert.Error(t, err)
}

func TestMethodCallConversions(t *testing.T) {
	reg := newTestRegistry(t)
	c, err := reg.Register(ClassSpec{Name: "geo.Point", Type: reflect.TypeOf(&point{})})
	require.NoError(t, err)
	p := &point{X: 2, Y: 3}

	join := c.Methods("join")[0]
	assert.True(t, join.IsVariadic())
	v, err := join.Call(p, []any{"-", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "a-b", v)

	v, err = join.Call(p, []any{"+", []string{"x", "y"}})
	require.NoError(t, err)
	assert.Equal(t, "x+y", v)

	// null strings arrive as ""
	v, err = join.Call(p, []any{nil, "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "ab", v)

	_, err = c.Methods("fail")[0].Call(p, nil)
	assert.EqualError(t, err, "boom")

	_, err = c.Methods("scale")[0].Call(p, []any{"nope"})
	var argErr *ArgumentError
	assert.ErrorAs(t, err, &argErr)

	scaled, err := c.Methods("scale")[0].Call(p, []any{int64(2)})
	require.NoError(t, err)
	assert.Equal(t, int32(4), scaled.(*point).X)
}

func TestPanicIsRecovered(t *testing.T) {
	reg := newTestRegistry(t)
	c, err := reg.Register(ClassSpec{
		Name:    "util.Boom",
		Type:    reflect.TypeOf(&point{}),
		Methods: map[string][]any{"explode": {func() int32 { panic(errors.New("kaput")) }}},
	})
	require.NoError(t, err)
	_, err = c.StaticMethods("explode")[0].Call(nil, nil)
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.EqualError(t, errors.Unwrap(err), "kaput")
}

func TestBeanProperties(t *testing.T) {
	reg := newTestRegistry(t)
	c := reg.ClassOf(reflect.TypeOf(&point{}))
	p := &point{label: "a"}

	g := c.Getter("label")
	require.NotNil(t, g)
	v, err := g.Call(p, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	require.NotNil(t, c.Getter("origin"))
	assert.Nil(t, c.Getter("nothing"))

	setters := c.Setters("label")
	require.Len(t, setters, 1)
	_, err = setters[0].Call(p, []any{"b"})
	require.NoError(t, err)
	assert.Equal(t, "b", p.label)
}

func TestInstanceFields(t *testing.T) {
	p := &point{X: 1}
	v, ok := GetField(p, "x")
	require.True(t, ok)
	assert.Equal(t, int32(1), v)
	require.NoError(t, SetField(p, "y", int32(5)))
	assert.Equal(t, int32(5), p.Y)
	assert.False(t, HasField(p, "label"))
	assert.Error(t, SetField(point{}, "x", int32(1)))
}

func TestArrays(t *testing.T) {
	reg := newTestRegistry(t)
	arr, err := NewArray(reg.Primitive(Int), []int{2, 3}, 1)
	require.NoError(t, err)
	grid, ok := arr.([][][]int32)
	require.True(t, ok)
	assert.Len(t, grid, 2)
	assert.Len(t, grid[1], 3)
	assert.Nil(t, grid[1][2])

	ints, err := NewArray(reg.Primitive(Int), []int{3}, 0)
	require.NoError(t, err)
	require.NoError(t, ArraySet(ints, 1, int32(7)))
	v, err := ArrayGet(ints, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(7), v)

	_, err = ArrayGet(ints, 3)
	var ie *IndexError
	assert.ErrorAs(t, err, &ie)

	_, err = NewArray(reg.Primitive(Int), []int{-1}, 0)
	assert.Error(t, err)

	made, err := MakeArray(reg.Primitive(Long), []any{int64(1), int32(2)})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, made)
	assert.Same(t, reg.Primitive(Long), reg.ArrayElemType(made))
}

func TestAssignability(t *testing.T) {
	reg := newTestRegistry(t)
	obj, _ := reg.Resolve("java.lang.Object")
	str := reg.ClassOf(reflect.TypeOf(""))
	assert.True(t, obj.AssignableFrom(str))
	assert.False(t, str.AssignableFrom(obj))
	assert.False(t, reg.Primitive(Long).AssignableFrom(reg.Primitive(Int)))
	assert.True(t, obj.IsInstance("x"))

	errBase, err := reg.Register(ClassSpec{Name: "java.lang.Exception", Type: reflect.TypeOf(&point{})})
	require.NoError(t, err)
	reg.SetErrorBase(errBase)
	unnamed := reg.ClassOf(reflect.TypeOf(errors.New("x")))
	assert.Same(t, errBase, unnamed.Super())
	assert.True(t, errBase.AssignableFrom(unnamed))
}

func TestLazyPackages(t *testing.T) {
	reg := newTestRegistry(t)
	var calls int
	var mu sync.Mutex
	reg.RegisterPackage("geo", func(r *Registry) error {
		mu.Lock()
		calls++
		mu.Unlock()
		_, err := r.Register(ClassSpec{Name: "geo.Point", Type: reflect.TypeOf(&point{})})
		return err
	})

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			if _, ok := reg.Resolve("geo.Point"); !ok {
				return errors.New("geo.Point not resolved")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, calls)

	_, ok := reg.Resolve("geo.Line")
	assert.False(t, ok)
	assert.Equal(t, []string{"geo.Point"}, reg.SimpleNameIndex("Point"))
}

func TestProxies(t *testing.T) {
	reg := newTestRegistry(t)
	gt := reflect.TypeOf((*greeter)(nil)).Elem()
	iface, err := reg.Register(ClassSpec{Name: "demo.Greeter", Type: gt})
	require.NoError(t, err)
	assert.False(t, reg.HasProxySupport(iface))

	require.NoError(t, reg.RegisterProxy(gt, func(h InvocationHandler) any { return greeterProxy{h} }))
	assert.True(t, reg.HasProxySupport(iface))
	assert.Error(t, reg.RegisterProxy(reflect.TypeOf(0), nil))

	p, err := reg.NewProxy(iface, handlerFunc(func(m string, args []any) (any, error) {
		return m + " " + args[0].(string), nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "greet bob", p.(greeter).Greet("bob"))

	// interface methods are bound without a receiver parameter
	m := iface.Methods("greet")
	require.Len(t, m, 1)
	assert.Len(t, m[0].Params(), 1)
}

func TestSubscriptions(t *testing.T) {
	reg := newTestRegistry(t)
	var events []ReloadEvent
	sub := reg.Subscribe(func(ev ReloadEvent) { events = append(events, ev) })
	assert.Equal(t, 1, reg.Subscribers())

	_, err := reg.Register(ClassSpec{Name: "geo.Point", Type: reflect.TypeOf(&point{})})
	require.NoError(t, err)
	reg.Reload()
	require.Len(t, events, 2)
	assert.Equal(t, []string{"geo.Point"}, events[0].Classes)
	assert.Empty(t, events[1].Classes)

	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 0, reg.Subscribers())
	reg.Reload()
	assert.Len(t, events, 2)
}
