package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/parser"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseString("test.bsh", input)
	require.NoError(t, err, "input: %s", input)
	return prog
}

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a + b * c;", "(a + (b * c));"},
		{"a = b = c;", "a = b = c;"},
		{"x += 1 << 2 + 3;", "x += (1 << (2 + 3));"},
		{"a || b && c == d;", "(a || (b && (c == d)));"},
		{"a ? b : c ? d : e;", "(a ? b : (c ? d : e));"},
		{"-a * b;", "((-a) * b);"},
		{"!a.b.c;", "(!a.b.c);"},
		{"i++ + --j;", "((i++) + (--j));"},
		{"x instanceof String && y;", "((x instanceof String) && y);"},
		{"(int) x + 1;", "(((int)x) + 1);"},
		{"(String) a.b();", "((String)a.b());"},
		{"(a) + b;", "(a + b);"},
		{"(x + y) * z;", "((x + y) * z);"},
		{"a[i][j] = 3;", "a[i][j] = 3;"},
		{"foo().bar.baz(1, 2);", "foo().bar.baz(1, 2);"},
		{"String.class;", "String.class;"},
		{"int[].class;", "int[].class;"},
		{"a & b | c ^ d;", "((a & b) | (c ^ d));"},
		{"x >>> 1 >= y;", "((x >>> 1) >= y);"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parse(t, tt.input)
			require.Len(t, prog.Statements, 1)
			if diff := cmp.Diff(tt.expected, prog.Statements[0].String()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"1;", int32(1)},
		{"-2147483648;", int32(-2147483648)},
		{"-9223372036854775808L;", int64(-9223372036854775808)},
		{"3L;", int64(3)},
		{"1.5f;", float32(1.5)},
		{"1.5;", 1.5},
		{"'c';", uint16('c')},
		{`"s";`, "s"},
		{"true;", true},
		{"null;", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parse(t, tt.input)
			es := prog.Statements[0].(*ast.ExpressionStatement)
			lit, ok := es.Expression.(*ast.Literal)
			require.True(t, ok, "got %T", es.Expression)
			assert.Equal(t, tt.expected, lit.Value)
		})
	}
}

func TestNames(t *testing.T) {
	prog := parse(t, "a.b.c; a.b.c(1); this.caller.x;")
	require.Len(t, prog.Statements, 3)

	name := prog.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.AmbiguousName)
	assert.Equal(t, "a.b.c", name.Name)

	call := prog.Statements[1].(*ast.ExpressionStatement).Expression.(*ast.MethodInvocation)
	assert.Equal(t, "a.b.c", call.Name)
	assert.Len(t, call.Arguments, 1)

	name = prog.Statements[2].(*ast.ExpressionStatement).Expression.(*ast.AmbiguousName)
	assert.Equal(t, "this.caller.x", name.Name)
}

func TestDeclarations(t *testing.T) {
	prog := parse(t, `
int a = 1, b[] = {2, 3};
final java.util.List<String> names = new ArrayList<>();
String[][] grid;
add(a, b) { return a + b; }
public static synchronized int twice(final int x) throws Exception { return x * 2; }
class Point implements Comparable { int x; }
`)
	require.Len(t, prog.Statements, 6)

	vd := prog.Statements[0].(*ast.VariableDeclaration)
	assert.Equal(t, "int", vd.Type.Name)
	require.Len(t, vd.Declarators, 2)
	assert.Equal(t, 1, vd.Declarators[1].Dims)
	assert.IsType(t, &ast.ArrayInitializer{}, vd.Declarators[1].Value)

	vd = prog.Statements[1].(*ast.VariableDeclaration)
	assert.True(t, vd.Modifiers.Has("final"))
	assert.Equal(t, "java.util.List", vd.Type.Name)
	assert.IsType(t, &ast.NewExpression{}, vd.Declarators[0].Value)

	vd = prog.Statements[2].(*ast.VariableDeclaration)
	assert.Equal(t, 2, vd.Type.Dims)

	md := prog.Statements[3].(*ast.MethodDeclaration)
	assert.Nil(t, md.ReturnType)
	assert.Equal(t, "add", md.Name)
	require.Len(t, md.Params, 2)
	assert.Nil(t, md.Params[0].Type)

	md = prog.Statements[4].(*ast.MethodDeclaration)
	assert.Equal(t, "int", md.ReturnType.Name)
	assert.True(t, md.Modifiers.Has("synchronized"))
	assert.True(t, md.Params[0].Final)
	assert.Equal(t, []string{"Exception"}, md.Throws)

	cd := prog.Statements[5].(*ast.ClassDeclaration)
	assert.Equal(t, "Point", cd.Name)
	assert.Equal(t, []string{"Comparable"}, cd.Implements)
}

func TestControlStatements(t *testing.T) {
	prog := parse(t, `
for (int i = 0, j = 1; i < 10; i++, j++) { continue; }
for (String s : list) print(s);
for (x : list) {}
for (;;) break;
outer: while (true) { break outer; }
do { x--; } while (x > 0);
switch (x) { case 1: case 2: y = 1; break; default: y = 2; }
try { throw new Exception("x"); } catch (Exception e) { } catch (e) { } finally { }
synchronized (lock) { n++; }
import java.util.*;
import static java.lang.Math.max;
import *;
`)
	require.Len(t, prog.Statements, 12)

	fs := prog.Statements[0].(*ast.ForStatement)
	require.Len(t, fs.Init, 1)
	assert.Len(t, fs.Update, 2)

	efs := prog.Statements[1].(*ast.EnhancedForStatement)
	assert.Equal(t, "String", efs.VarType.Name)
	assert.Equal(t, "s", efs.VarName)

	efs = prog.Statements[2].(*ast.EnhancedForStatement)
	assert.Nil(t, efs.VarType)

	fs = prog.Statements[3].(*ast.ForStatement)
	assert.Nil(t, fs.Condition)

	ls := prog.Statements[4].(*ast.LabeledStatement)
	assert.Equal(t, "outer", ls.Label)

	ss := prog.Statements[6].(*ast.SwitchStatement)
	require.Len(t, ss.Cases, 2)
	assert.Len(t, ss.Cases[0].Values, 2)
	assert.True(t, ss.Cases[1].IsDefault)

	ts := prog.Statements[7].(*ast.TryStatement)
	require.Len(t, ts.Catches, 2)
	assert.Nil(t, ts.Catches[1].Param.Type)
	assert.NotNil(t, ts.Finally)

	imp := prog.Statements[9].(*ast.ImportStatement)
	assert.True(t, imp.Wildcard)
	assert.Equal(t, "java.util", imp.Name)
	imp = prog.Statements[10].(*ast.ImportStatement)
	assert.True(t, imp.Static)
	assert.Equal(t, "java.lang.Math.max", imp.Name)
	imp = prog.Statements[11].(*ast.ImportStatement)
	assert.True(t, imp.Super)
}

func TestAllocations(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"new int[3][];", "new int[3][]"},
		{"new String[]{\"a\", \"b\",};", `new String[]{"a", "b"}`},
		{"new java.util.HashMap();", "new java.util.HashMap()"},
		{"new Runnable() { run() { } };", "new Runnable() { run() { } }"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parse(t, tt.input)
			es := prog.Statements[0].(*ast.ExpressionStatement)
			assert.Equal(t, tt.expected, es.Expression.String())
		})
	}
}

func TestMissingSemicolonAtEnd(t *testing.T) {
	prog := parse(t, "x = 1; x + 1")
	assert.Len(t, prog.Statements, 2)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"x = ;", "unexpected"},
		{"1 = 2;", "invalid assignment target"},
		{"if (x { }", "expected ')'"},
		{"int = 3;", "expected"},
		{"try { }", "try without catch or finally"},
		{"x = 2147483648;", "integer number too large"},
		{"a b c;", "expected ';'"},
		{"{ x = 1;", "expected '}'"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parser.ParseString("bad.bsh", tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.Contains(t, err.Error(), "bad.bsh:")
		})
	}
}
