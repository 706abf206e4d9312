package evaluator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/beanshell/beanshell-sub002/internal/config"
	"github.com/beanshell/beanshell-sub002/internal/host"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

type bufferConsole struct {
	mu       sync.Mutex
	out, err strings.Builder
}

func (c *bufferConsole) Print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out.WriteString(s)
}

func (c *bufferConsole) Error(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err.WriteString(s)
}

func newTestEvaluator(t *testing.T, configure ...func(*config.Config)) (*Evaluator, *bufferConsole) {
	t.Helper()
	cfg := config.Default()
	for _, f := range configure {
		f(cfg)
	}
	console := &bufferConsole{}
	ev, err := New(Options{Config: cfg, Console: console})
	require.NoError(t, err)
	t.Cleanup(ev.Close)
	return ev, console
}

// run evaluates src in a fresh evaluator and returns the Go value of the result.
func run(t *testing.T, src string) any {
	t.Helper()
	ev, _ := newTestEvaluator(t)
	v, err := ev.EvalString(src, "test.bsh")
	require.NoError(t, err, src)
	return ToGo(v)
}

func runErr(t *testing.T, src string, configure ...func(*config.Config)) error {
	t.Helper()
	ev, _ := newTestEvaluator(t, configure...)
	_, err := ev.EvalString(src, "test.bsh")
	require.Error(t, err, src)
	return err
}

func TestScripts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{"reassign untyped", `x = 1; x = x + 1; return x;`, int32(2)},
		{"last statement value", `int a = 7; a / 2;`, int32(3)},
		{"byte plus long", `byte b = 1; long l = 2; b + l;`, int64(3)},
		{"int plus double", `5 / 2.0;`, 2.5},
		{"char arithmetic", `char c = 'a'; c + 1;`, int32(98)},
		{"string concat left", `"a" + 1 + 2;`, "a12"},
		{"string concat right", `1 + 2 + "a";`, "3a"},
		{"compound narrowing", `int i = 0; i += 2.7; i;`, int32(2)},
		{"compound narrowing long", `long l = 1; l += 0.5; l;`, int64(1)},
		{"compound retypes untyped", `x = 1; x += 0.5; x;`, 1.5},
		{"compound matches plain assignment", `x = 1; y = 1; x += 0.5; y = y + 0.5; x == y;`, true},
		{"compound on untyped char", `c = 'a'; c += 1; c;`, int32(98)},
		{"shift", `-16 >>> 28;`, int32(15)},
		{"long arithmetic", `long big = 2147483647; big + 1;`, int64(2147483648)},
		{"integer overflow wraps", `int m = 2147483647; m + 1;`, int32(-2147483648)},
		{"ternary", `(1 > 0) ? "y" : "n";`, "y"},
		{"logical short circuit", `x = 0; false && (x = 1) == 1; x;`, int32(0)},
		{"prefix and postfix", `i = 5; j = i++; k = ++i; j * 10 + k;`, int32(57)},
		{"explicit byte cast", `(byte) 300;`, int8(44)},
		{"explicit int cast", `(int) 3.9;`, int32(3)},
		{"typed return widens", `int f() { return 'a'; } f();`, int32(97)},
		{"instanceof", `"s" instanceof String;`, true},
		{"instanceof null", `null instanceof String;`, false},
		{"string method", `"hello".substring(1, 3).toUpperCase();`, "EL"},
		{"string length", `s = "abc"; s.length();`, int32(3)},
		{"static field", `Integer.MAX_VALUE;`, int32(2147483647)},
		{"static method", `Math.max(3, 7);`, int32(7)},
		{"array length", `int[] a = {1, 2, 3}; a.length;`, int32(3)},
		{"array element", `int[] a = new int[3]; a[1] = 5; a[1] + a.length;`, int32(8)},
		{"matrix", `int[][] g = new int[2][3]; g[1].length;`, int32(3)},
		{"array initializer narrows", `byte[] b = {1, 2}; b[1];`, int8(2)},
		{"enhanced for over array", `sum = 0; for (int v : new int[]{1, 2, 3}) sum += v; sum;`, int32(6)},
		{"enhanced for over list", `l = new ArrayList(); l.add("a"); l.add("b"); s = ""; for (String x : l) s += x; s;`, "ab"},
		{"map get returns the wrapper", `m = new HashMap(); m.put("a", 2); m.get("a");`, lang.Box(int32(2))},
		{"while", `n = 0; while (n < 5) n++; n;`, int32(5)},
		{"do while runs once", `n = 10; do { n++; } while (n < 5); n;`, int32(11)},
		{"switch fall through", `r = ""; switch (2) { case 1: r += "a"; case 2: r += "b"; case 3: r += "c"; break; default: r += "d"; } r;`, "bc"},
		{"switch default", `r = ""; switch (9) { case 1: r = "one"; break; default: r = "other"; } r;`, "other"},
		{"switch on string", `r = 0; switch ("b") { case "a": r = 1; break; case "b": r = 2; break; } r;`, int32(2)},
		{
			"labelled loops",
			`n = 0;
outer: for (int i = 0; i < 3; i++) {
  for (int j = 0; j < 3; j++) {
    if (j == 1) continue outer;
    if (i == 2) break outer;
    n++;
  }
}
n;`,
			int32(2),
		},
		{"unlabelled break", `n = 0; for (;;) { if (n == 4) break; n++; } n;`, int32(4)},
		{"recursion", `fact(n) { if (n <= 1) return 1; return n * fact(n - 1); } fact(10);`, int32(3628800)},
		{
			"overload prefers most specific",
			`f(Object a) { return "obj"; } f(String a) { return "str"; } f("x");`,
			"str",
		},
		{
			"overload boxes primitives",
			`f(Object a) { return "obj"; } f(String a) { return "str"; } f(1);`,
			"obj",
		},
		{
			"finally supersedes return",
			`f() { try { return "A"; } finally { return "B"; } } f();`,
			"B",
		},
		{
			"catch by superclass",
			`r = ""; try { int x = 1 / 0; } catch (NullPointerException e) { r = "npe"; } catch (RuntimeException e) { r = "rt"; } r;`,
			"rt",
		},
		{
			"finally runs before outer catch",
			`r = 0; try { try { throw new RuntimeException("x"); } finally { r = 1; } } catch (RuntimeException e) { r = r + 10; } r;`,
			int32(11),
		},
		{"untyped catch", `try { throw new Exception("m"); } catch (e) { r = e.getMessage(); } r;`, "m"},
		{
			"object closure",
			`counter() { int n = 0; inc() { n++; return this; } return this; }
c = counter(); c.inc(); c.inc(); c.n;`,
			int32(2),
		},
		{
			"closure method chaining",
			`counter() { int n = 0; inc() { n++; return this; } return this; }
counter().inc().inc().inc().n;`,
			int32(3),
		},
		{"auto allocated closure", `a.b.c = 5; a.b.c;`, int32(5)},
		{"caller", `f() { int x = 5; return g(); } g() { return this.caller.x; } f();`, int32(5)},
		{
			"caller of caller",
			`h() { int x = 1; return f(); } f() { int x = 2; return g(); } g() { return this.caller.caller.x; } h();`,
			int32(1),
		},
		{"variables", `f() { int b = 2; int a = 1; return this.variables; } f();`, []string{"a", "b"}},
		{"methods", `o() { b() { } a() { } return this; } x = o(); x.methods;`, []string{"a", "b"}},
		{"callstack depth", `f() { return this.callstack.depth(); } f();`, int64(2)},
		{"super reaches enclosing scope", `x = "global"; f() { String x = "local"; return super.x + "/" + x; } f();`, "global/local"},
		{
			"anonymous interface",
			`r = 0; Runnable task = new Runnable() { public void run() { r = 5; } }; task.run(); r;`,
			int32(5),
		},
		{"synchronized block", `l = new ArrayList(); synchronized (l) { y = 3; } y;`, int32(3)},
		{"eval builtin", `eval("a = 4; a * 2;");`, int32(8)},
		{"eval return", `x = eval("return 3;"); x + 1;`, int32(4)},
		{"unset", `x = 1; unset("x"); x;`, nil},
		{"typeOf primitive", `typeOf(1);`, "int"},
		{"typeOf string", `typeOf("s");`, "java.lang.String"},
		{"typeOf null", `typeOf(null);`, "null"},
		{"string builder", `sb = new StringBuilder(); sb.append("a").append(1); sb.toString();`, "a1"},
		{"static import", `import static java.lang.Math.abs; abs(-3);`, int32(3)},
		{"invoke meta method", `invoke(name, args) { return name + args.length; } missing(1, 2);`, "missing2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run(t, tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrapperIdentity(t *testing.T) {
	assert.Equal(t, false, run(t, `Integer a = new Integer(5); Integer b = new Integer(5); a == b;`))
	assert.Equal(t, true, run(t, `Integer a = new Integer(5); Integer b = a; a == b;`))
	assert.Equal(t, true, run(t, `int a = 5; int b = 5; a == b;`))
	assert.Equal(t, true, run(t, `Integer a = new Integer(5); int b = 5; a == b;`))
	assert.Equal(t, true, run(t, `Integer a = new Integer(5); Integer b = new Integer(5); a.equals(b);`))
}

func TestNullAssignment(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	v, err := ev.EvalString(`Object o = null; o;`, "test.bsh")
	require.NoError(t, err)
	assert.IsType(t, &Null{}, v)

	_, err = ev.EvalString(`String s = null; s = "x"; s = null; s;`, "test.bsh")
	require.NoError(t, err)

	err = runErr(t, `int i = null;`)
	var ee *EvalError
	assert.True(t, errors.As(err, &ee), "got %T: %v", err, err)
}

func TestFinalVariables(t *testing.T) {
	err := runErr(t, `final int x = 5; x = 6;`)
	assert.Contains(t, err.Error(), "final variable x")

	err = runErr(t, `final int x; x = 5; x = 6;`)
	assert.Contains(t, err.Error(), "final variable x")

	assert.Equal(t, int32(6), run(t, `final int x; x = 6; x;`))
	assert.Equal(t, "b", run(t, `y = 1; y = "a"; y = "b"; y;`))
}

func TestLoopScopes(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	_, err := ev.EvalString(`for (int i = 0; i < 3; i++) { j = i; }`, "test.bsh")
	require.NoError(t, err)

	j, ok := ev.Global().GetVariable("j", false)
	require.True(t, ok)
	assert.Equal(t, int32(2), ToGo(j))
	_, ok = ev.Global().GetVariable("i", true)
	assert.False(t, ok)

	// a body declaration shadows the loop variable inside the body only
	assert.Equal(t, int32(30), run(t, `int s = 0; for (int i = 0; i < 3; i++) { int i = 10; s += i; } s;`))

	// typed declarations in blocks stay in the block
	assert.Nil(t, run(t, `if (true) { int k = 1; } k;`))
	assert.Equal(t, int32(1), run(t, `if (true) { k = 1; } k;`))

	// an untyped enhanced for variable remains visible afterwards
	assert.Equal(t, int32(3), run(t, `for (v : new int[]{1, 2, 3}) { } v;`))
}

func TestHostObjects(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	_, err := ev.Registry().Register(host.ClassSpec{
		Name: "geo.Point",
		Type: reflect.TypeOf(&point{}),
		Constructors: []any{
			func() *point { return &point{} },
			func(x, y int32) *point { return &point{X: x, Y: y} },
		},
	})
	require.NoError(t, err)

	v, err := ev.EvalString(`
import geo.Point;
p = new Point(1, 2);
p.x = 5;
p.label = "home";
p.sum() + ":" + p.label;
`, "test.bsh")
	require.NoError(t, err)
	assert.Equal(t, "7:home", ToGo(v))

	pv, ok := ev.Global().GetVariable("p", false)
	require.True(t, ok)
	p := ToGo(pv).(*point)
	assert.Equal(t, int32(5), p.X)
	assert.Equal(t, "home", p.label)

	require.NoError(t, ev.Global().SetVariable("q", ToValue(&point{X: 3, Y: 4}), false, false))
	v, err = ev.EvalString(`q.sum();`, "test.bsh")
	require.NoError(t, err)
	assert.Equal(t, int32(7), ToGo(v))

	_, err = ev.EvalString(`q.x = "no";`, "test.bsh")
	require.Error(t, err)
}

type point struct {
	X, Y  int32
	label string
}

func (p *point) Sum() int32        { return p.X + p.Y }
func (p *point) GetLabel() string  { return p.label }
func (p *point) SetLabel(s string) { p.label = s }

func TestThrownErrors(t *testing.T) {
	err := runErr(t, `throw new IllegalStateException("bad");`)
	var te *TargetError
	require.True(t, errors.As(err, &te), "got %T: %v", err, err)
	var ise *lang.IllegalStateException
	require.True(t, errors.As(te.Thrown, &ise))
	assert.Equal(t, "bad", ise.Message)

	err = runErr(t, `int[] a = new int[2]; a[2];`)
	require.True(t, errors.As(err, &te))
	assert.Contains(t, te.Thrown.Error(), "Index 2 out of bounds for length 2")

	err = runErr(t, `o = null; o.toString();`)
	require.True(t, errors.As(err, &te))
	assert.IsType(t, &lang.NullPointerException{}, te.Thrown)

	err = runErr(t, `new int[-1];`)
	require.True(t, errors.As(err, &te))
	assert.IsType(t, &lang.NegativeArraySizeException{}, te.Thrown)

	err = runErr(t, `throw null;`)
	require.True(t, errors.As(err, &te))
	assert.IsType(t, &lang.NullPointerException{}, te.Thrown)
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"undefined command", `nothing(1);`, "Command not found: nothing(int)"},
		{"non boolean condition", `if (1) x = 2;`, "Condition must evaluate to a Boolean or boolean"},
		{"void operand", `y = undefinedName + 1;`, "illegal use of undefined variable"},
		{"top level break", `break;`, "break outside of a loop or switch"},
		{"void method value", `void f() { return 1; } f();`, "Cannot return value from void method: f"},
		{"undefined argument", `print(undefinedName);`, "Undefined argument"},
		{"typed redeclaration", `int x = 1; String x = "a";`, "previously declared with type: int"},
		{"class declaration without generator", `class A { }`, "requires a class generator: A"},
		{"wrong arity", `f(a) { return a; } f(1, 2);`, "Command not found: f(int, int)"},
		{"caller through a variable", `y = this; y.caller;`, "Can only call .caller on literal 'this' or literal '.caller'"},
		{"interpreter through a variable", `y = this; y.interpreter;`, "Can only call .interpreter on literal 'this'"},
		{"callstack through a variable", `y = this; y.callstack;`, "Can only call .callstack on literal 'this'"},
		{"assign caller", `f() { this.caller = 1; } f();`, "Can't assign to special variable: caller"},
		{"assign variables", `o() { return this; } x = o(); x.variables = 1;`, "Can't assign to special variable: variables"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runErr(t, tt.input)
			var ee *EvalError
			require.True(t, errors.As(err, &ee), "got %T: %v", err, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestErrorPosition(t *testing.T) {
	err := runErr(t, "x = 1;\ny = x + nothing;\n")
	var ee *EvalError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "test.bsh", ee.File)
	assert.Equal(t, 2, ee.Line)
}

func TestMethodErrorTrace(t *testing.T) {
	err := runErr(t, "inner() { return nothing + 1; }\nouter() { return inner(); }\nouter();")
	var ee *EvalError
	require.True(t, errors.As(err, &ee))
	require.Len(t, ee.StackTrace, 2)
	assert.Equal(t, "inner", ee.StackTrace[0].Name)
	assert.Equal(t, "outer", ee.StackTrace[1].Name)
	assert.Contains(t, ee.Trace(), "inner")
}

func TestCatchEvalErrors(t *testing.T) {
	src := `r = ""; try { nothing(); } catch (EvalException e) { r = "caught"; } r;`

	err := runErr(t, src)
	var ee *EvalError
	assert.True(t, errors.As(err, &ee))

	ev, _ := newTestEvaluator(t, func(c *config.Config) { c.CatchEvalErrors = true })
	v, err := ev.EvalString(src, "test.bsh")
	require.NoError(t, err)
	assert.Equal(t, "caught", ToGo(v))
}

func TestStrictJava(t *testing.T) {
	strict := func(c *config.Config) { c.StrictJava = true }

	err := runErr(t, `x = 1;`, strict)
	assert.Contains(t, err.Error(), "undeclared variable: x")

	err = runErr(t, `f(a) { return a; }`, strict)
	assert.Contains(t, err.Error(), "Strict Java")

	ev, _ := newTestEvaluator(t, strict)
	v, err := ev.EvalString(`int x; x = 4; int twice(int n) { return n * 2; } twice(x);`, "test.bsh")
	require.NoError(t, err)
	assert.Equal(t, int32(8), ToGo(v))
}

func TestMaxEvalDepth(t *testing.T) {
	err := runErr(t, `f(n) { return f(n + 1); } f(0);`, func(c *config.Config) { c.MaxEvalDepth = 50 })
	assert.Contains(t, err.Error(), "Maximum call depth of 50 exceeded")
}

func TestMaxEvalDepthThroughProxy(t *testing.T) {
	err := runErr(t, `r = new Runnable() { public void run() { r.run(); } }; r.run();`,
		func(c *config.Config) { c.MaxEvalDepth = 50 })
	var ee *EvalError
	require.True(t, errors.As(err, &ee), "got %T: %v", err, err)
	assert.Contains(t, err.Error(), "Maximum call depth of 50 exceeded")
}

// evalWithin fails the test when src does not complete in time.
func evalWithin(t *testing.T, ev *Evaluator, src string) any {
	t.Helper()
	type result struct {
		v   Value
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := ev.EvalString(src, "test.bsh")
		done <- result{v, err}
	}()
	select {
	case r := <-done:
		require.NoError(t, r.err)
		return ToGo(r.v)
	case <-time.After(5 * time.Second):
		t.Fatalf("evaluation did not complete: %s", src)
		return nil
	}
}

func TestSynchronizedCallbacks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{
			"proxy receiver",
			`hits = 0;
obj() { synchronized a(Runnable r) { r.run(); } synchronized b() { hits++; } return this; }
o = obj();
r = new Runnable() { public void run() { o.b(); } };
o.a(r);
hits;`,
			int32(1),
		},
		{
			"proxy argument",
			`sorter() {
  synchronized order(l) {
    Collections.sort(l, new Comparator() { public int compare(a, b) { return weigh(a) - weigh(b); } });
  }
  synchronized weigh(x) { return x; }
  return this;
}
l = new ArrayList(); l.add(3); l.add(1); l.add(2);
sorter().order(l);
"" + l.get(0) + l.get(1) + l.get(2);`,
			"123",
		},
		{
			"toString in string concatenation",
			`obj() { synchronized describe() { return "<" + this + ">"; } synchronized toString() { return "obj"; } return this; }
obj().describe();`,
			"<obj>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, _ := newTestEvaluator(t)
			assert.Equal(t, tt.want, evalWithin(t, ev, tt.input))
		})
	}
}

func TestSpecialNames(t *testing.T) {
	ev, _ := newTestEvaluator(t)

	v, err := ev.EvalString(`this.interpreter;`, "test.bsh")
	require.NoError(t, err)
	assert.Same(t, ev, ToGo(v))

	v, err = ev.EvalString(`this.namespace;`, "test.bsh")
	require.NoError(t, err)
	assert.Same(t, ev.Global(), ToGo(v))

	v, err = ev.EvalString(`this.callstack;`, "test.bsh")
	require.NoError(t, err)
	cs, ok := ToGo(v).(*CallStack)
	require.True(t, ok)
	assert.Same(t, ev.Global(), cs.Top())
}

func TestConsoleBuiltins(t *testing.T) {
	ev, console := newTestEvaluator(t)
	_, err := ev.EvalString(`print("hi"); print(1 + 2); error("bad"); System.out.println("direct");`, "test.bsh")
	require.NoError(t, err)
	assert.Equal(t, "hi\n3\ndirect\n", console.out.String())
	assert.Equal(t, "bad\n", console.err.String())
}

func TestRegisterCommand(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	ev.RegisterCommand(&Builtin{
		Name: "twice",
		Fn: func(_ *Evaluator, _ *Scope, _ *CallStack, args []Value) (Value, error) {
			p, ok := unwrapPrimitive(args[0])
			if !ok {
				return nil, fmt.Errorf("not a number")
			}
			return NewPrimitive(int32(p.Int64() * 2)), nil
		},
	})
	v, err := ev.EvalString(`twice(21);`, "test.bsh")
	require.NoError(t, err)
	assert.Equal(t, int32(42), ToGo(v))

	// a script method of the same name takes precedence
	v, err = ev.EvalString(`twice(n) { return "script"; } twice(1);`, "test.bsh")
	require.NoError(t, err)
	assert.Equal(t, "script", ToGo(v))
}

func TestConcurrentEvaluations(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	_, err := ev.EvalString(`
twice(n) { int r = n * 2; return r; }
count = 0;
synchronized inc() { count++; }
`, "setup.bsh")
	require.NoError(t, err)

	const workers = 8
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			for k := 0; k < 50; k++ {
				v, err := ev.EvalString(fmt.Sprintf("inc(); twice(%d);", i), "worker.bsh")
				if err != nil {
					return err
				}
				if got := ToGo(v); got != int32(2*i) {
					return fmt.Errorf("worker %d: got %v", i, got)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	count, ok := ev.Global().GetVariable("count", false)
	require.True(t, ok)
	assert.Equal(t, int32(workers*50), ToGo(count))
}

func TestEvaluatorIdentity(t *testing.T) {
	a, _ := newTestEvaluator(t)
	b, _ := newTestEvaluator(t)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Same(t, a.Global(), a.Global().Global().Scope())
}

func TestInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Color = "sometimes"
	_, err := New(Options{Config: cfg})
	require.Error(t, err)
}
