package bsh_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/beanshell/beanshell-sub002/internal/config"
	"github.com/beanshell/beanshell-sub002/internal/evaluator"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
	bsh "github.com/beanshell/beanshell-sub002/pkg/embed"
)

// User represents a Go struct to be used as a host object
type User struct {
	Name  string
	Score int
}

func (u *User) AddScore(points int) {
	u.Score += points
}

func (u *User) GetStatus() string {
	return fmt.Sprintf("User %s has %d points", u.Name, u.Score)
}

func newInterpreter(t *testing.T, opts ...bsh.Option) *bsh.Interpreter {
	t.Helper()
	in, err := bsh.New(append([]bsh.Option{bsh.WithOutput(&strings.Builder{}, &strings.Builder{})}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(in.Close)
	return in
}

func TestEmbedAPI(t *testing.T) {
	in := newInterpreter(t)

	require.NoError(t, in.Bind("twice", func(x int) int {
		return x * 2
	}))

	user := &User{Name: "Alice", Score: 10}
	require.NoError(t, in.Bind("player", user))

	res, err := in.Eval(`
doubled = twice(21);
name = player.name;
player.addScore(5);
status = player.getStatus();

results = new ArrayList();
results.add(doubled);
results.add(name);
results.add(status);
results;
`)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(42), "Alice", "User Alice has 15 points"}, res)
	assert.Equal(t, 15, user.Score, "the script shares the Go object")
}

func TestSetGet(t *testing.T) {
	in := newInterpreter(t)

	require.NoError(t, in.Set("n", 5))
	res, err := in.Eval("n * 2;")
	require.NoError(t, err)
	assert.Equal(t, int64(10), res)

	require.NoError(t, in.Set("scores", map[string]int{"b": 2, "a": 1}))
	res, err = in.Eval(`scores.get("a");`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res)

	got, err := in.Get("scores")
	require.NoError(t, err)
	assert.Equal(t, map[any]any{"a": int64(1), "b": int64(2)}, got)

	require.NoError(t, in.Set("bob", User{Name: "Bob"}))
	res, err = in.Eval("bob.name;")
	require.NoError(t, err)
	assert.Equal(t, "Bob", res)

	_, err = in.Eval(`s = "text"; i = 7;`)
	require.NoError(t, err)
	got, err = in.Get("s")
	require.NoError(t, err)
	assert.Equal(t, "text", got)
	got, err = in.Get("i")
	require.NoError(t, err)
	assert.Equal(t, int32(7), got)

	_, err = in.Get("missing")
	assert.Error(t, err)

	assert.True(t, in.Unset("i"))
	_, err = in.Get("i")
	assert.Error(t, err)
}

var errBoom = errors.New("boom")

func TestBindFunctions(t *testing.T) {
	in := newInterpreter(t)
	require.NoError(t, in.Bind("twice", func(x int) int { return x * 2 }))
	require.NoError(t, in.Bind("sum", func(xs ...int) int {
		total := 0
		for _, x := range xs {
			total += x
		}
		return total
	}))
	require.NoError(t, in.Bind("split", func(s string) (string, string) { return s[:1], s[1:] }))
	require.NoError(t, in.Bind("fail", func() error { return errBoom }))
	require.NoError(t, in.Bind("count", func(items []string) int { return len(items) }))

	tests := []struct {
		name  string
		input string
		want  any
	}{
		{"variadic", "sum(1, 2, 3);", int64(6)},
		{"variadic empty", "sum();", int64(0)},
		{"multiple results", `r = split("ab"); r[1];`, "b"},
		{"list argument", `l = new ArrayList(); l.add("x"); l.add("y"); count(l);`, int64(2)},
		{"array argument", `count(new String[] { "a", "b", "c" });`, int64(3)},
		{"script method shadows command", `twice(int x) { return -x; } twice(2);`, int32(-2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := in.Eval(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
		})
	}

	_, err := in.Eval("fail();")
	var te *evaluator.TargetError
	require.True(t, errors.As(err, &te))
	assert.Same(t, errBoom, te.Thrown)

	_, err = in.Eval(`try { fail(); } catch (e) { caught = e; }`)
	require.NoError(t, err)
	caught, err := in.Get("caught")
	require.NoError(t, err)
	assert.Same(t, errBoom, caught)

	_, err = in.Eval(`sum("x");`)
	var ee *evaluator.EvalError
	require.True(t, errors.As(err, &ee))
	assert.Contains(t, ee.Message, "argument 1")

	_, err = in.Eval(`split();`)
	require.True(t, errors.As(err, &ee))
	assert.Contains(t, ee.Message, "expected 1 arguments, got 0")

	require.NoError(t, in.Bind("explode", func() { panic("kaboom") }))
	_, err = in.Eval(`explode();`)
	require.True(t, errors.As(err, &te))
	assert.IsType(t, &lang.RuntimeException{}, te.Thrown)
	assert.Contains(t, te.Error(), "kaboom")

	assert.Error(t, in.Bind("nothing", (func())(nil)))
}

func TestBindClass(t *testing.T) {
	in := newInterpreter(t)
	require.NoError(t, in.BindClass("game.User", &User{}, func(name string) *User {
		return &User{Name: name}
	}))

	res, err := in.Eval(`
u = new User("Carol");
u.addScore(2);
u.getStatus();
`)
	require.NoError(t, err)
	assert.Equal(t, "User Carol has 2 points", res)

	res, err = in.Eval(`u instanceof game.User;`)
	require.NoError(t, err)
	assert.Equal(t, true, res)

	got, err := in.Get("u")
	require.NoError(t, err)
	assert.Equal(t, &User{Name: "Carol", Score: 2}, got)
}

func TestCall(t *testing.T) {
	in := newInterpreter(t)
	_, err := in.Eval(`
add(int a, int b) { return a + b; }
greet(name) { return "hi " + name; }
counter() {
	n = 0;
	inc() { n++; return n; }
	return this;
}
c = counter();
`)
	require.NoError(t, err)

	res, err := in.Call("add", int32(2), int32(3))
	require.NoError(t, err)
	assert.Equal(t, int32(5), res)

	_, err = in.Call("add", 2, 3)
	assert.Error(t, err, "Go int is a long and does not narrow to int")

	res, err = in.Call("greet", "bob")
	require.NoError(t, err)
	assert.Equal(t, "hi bob", res)

	_, err = in.Call("nope")
	assert.Error(t, err)

	c, err := in.Get("c")
	require.NoError(t, err)
	obj, ok := c.(*evaluator.This)
	require.True(t, ok)
	_, err = in.CallOn(obj, "inc")
	require.NoError(t, err)
	res, err = in.CallOn(obj, "inc")
	require.NoError(t, err)
	assert.Equal(t, int32(2), res)
}

func TestConcurrentCalls(t *testing.T) {
	in := newInterpreter(t)
	_, err := in.Eval(`square(int x) { return x * x; }`)
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		i := int32(i)
		g.Go(func() error {
			for j := 0; j < 20; j++ {
				res, err := in.Call("square", i)
				if err != nil {
					return err
				}
				if res != i*i {
					return fmt.Errorf("square(%d) = %v", i, res)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestLoadFile(t *testing.T) {
	in := newInterpreter(t)
	dir := t.TempDir()

	ok := filepath.Join(dir, "ok.bsh")
	require.NoError(t, os.WriteFile(ok, []byte("x = 40 + 2;\nx;\n"), 0o644))
	res, err := in.LoadFile(ok)
	require.NoError(t, err)
	assert.Equal(t, int32(42), res)

	bad := filepath.Join(dir, "bad.bsh")
	require.NoError(t, os.WriteFile(bad, []byte("y = 1;\nthrow new IllegalStateException(\"bad\");\n"), 0o644))
	_, err = in.LoadFile(bad)
	var te *evaluator.TargetError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, bad, te.File)
	assert.Equal(t, 2, te.Line)

	_, err = in.LoadFile(filepath.Join(dir, "missing.bsh"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOptions(t *testing.T) {
	var out, errOut strings.Builder
	in := newInterpreter(t, bsh.WithOutput(&out, &errOut))
	_, err := in.Eval(`print("hello"); System.out.println(3); error("oops");`)
	require.NoError(t, err)
	assert.Equal(t, "hello\n3\n", out.String())
	assert.Equal(t, "oops\n", errOut.String())

	cfg := config.Default()
	cfg.StrictJava = true
	strict := newInterpreter(t, bsh.WithConfig(cfg))
	_, err = strict.Eval("x = 1;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared variable")
}

func TestConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "scripts", "lib")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bsh.yaml"), []byte("strict_java: true\ncolor: never\n"), 0o644))

	in := newInterpreter(t, bsh.WithConfigSearch(nested))
	assert.True(t, in.Evaluator().Config().StrictJava)
	_, err := in.Eval("x = 1;")
	assert.Error(t, err)

	plain := newInterpreter(t, bsh.WithConfigSearch(t.TempDir()))
	assert.False(t, plain.Evaluator().Config().StrictJava)

	bad := filepath.Join(root, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("color: purple\n"), 0o644))
	_, err = bsh.New(bsh.WithConfigFile(bad))
	assert.Error(t, err)
}
