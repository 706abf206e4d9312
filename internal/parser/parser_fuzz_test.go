package parser_test

import (
	"testing"

	"github.com/beanshell/beanshell-sub002/internal/parser"
)

// FuzzParser feeds arbitrary text to the parser. It must never panic and
// must return either a program or an error.
func FuzzParser(f *testing.F) {
	f.Add("x = 1 + 2;")
	f.Add(`print("Hello");`)
	f.Add("if (a) { b(); } else c;")
	f.Add("for (int i = 0; i < 10; i++) { s += i; }")
	f.Add("f(int a, b) { return a ? b : -b; }")
	f.Add("try { throw new Exception(); } catch (e) { } finally { }")
	f.Add("int[][] m = {{1}, {2, 3}};")
	f.Add("((((")

	f.Fuzz(func(t *testing.T, input string) {
		prog, err := parser.ParseString("fuzz.bsh", input)
		if (prog == nil) == (err == nil) {
			t.Fatalf("program %v and error %v for %q", prog, err, input)
		}
	})
}
