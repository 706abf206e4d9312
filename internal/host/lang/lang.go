// Package lang registers the standard classes scripts expect: java.lang
// (Object, String, the wrappers, Math, System, Thread, exceptions), java.util
// (loaded lazily) and bsh.
package lang

import (
	"errors"
	"io"
	"math"
	"reflect"
	"strconv"

	"github.com/beanshell/beanshell-sub002/internal/host"
)

// Options configures Install.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
}

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// installer registers classes until the first failure.
type installer struct {
	reg *host.Registry
	err error
}

func (in *installer) add(spec host.ClassSpec) *host.Class {
	if in.err != nil {
		return nil
	}
	c, err := in.reg.Register(spec)
	if err != nil {
		in.err = err
	}
	return c
}

func (in *installer) class(name string) *host.Class {
	c, _ := in.reg.Resolve(name)
	return c
}

// Install registers java.lang and bsh eagerly and java.util as a lazy package.
func Install(reg *host.Registry, opts Options) error {
	in := &installer{reg: reg}

	object := in.add(host.ClassSpec{
		Name: "java.lang.Object",
		Type: typeOf[any](),
		Extensions: map[string][]any{
			"toString": {ToString},
			"hashCode": {HashCode},
			"equals":   {Equals},
			"getClass": {func(v any) *host.Class { return reg.ClassOf(reflect.TypeOf(v)) }},
		},
	})
	in.add(host.ClassSpec{
		Name: "java.lang.Class",
		Type: reflect.TypeOf(&host.Class{}),
		Extensions: map[string][]any{
			"getName":       {(*host.Class).Name},
			"getSimpleName": {(*host.Class).SimpleName},
			"isInterface":   {(*host.Class).IsInterface},
			"isArray":       {(*host.Class).IsArray},
			"isPrimitive":   {(*host.Class).IsPrimitive},
			"isInstance":    {(*host.Class).IsInstance},
			"getSuperclass": {func(c *host.Class) *host.Class {
				if c.Super() != nil {
					return c.Super()
				}
				if c.IsPrimitive() || c.IsInterface() {
					return nil
				}
				return object
			}},
		},
	})
	in.add(host.ClassSpec{
		Name:         "java.lang.String",
		Type:         typeOf[string](),
		Constructors: []any{func() string { return "" }, func(s string) string { return s }, fromUnits},
		Methods:      stringStatics(),
		Extensions:   stringExtensions(),
	})
	in.add(host.ClassSpec{
		Name:         "java.lang.StringBuilder",
		Type:         reflect.TypeOf(&StringBuilder{}),
		Constructors: []any{NewStringBuilder, NewStringBuilderOf},
	})
	in.installWrappers()

	in.add(host.ClassSpec{
		Name: classThrowable,
		Type: typeOf[error](),
		Extensions: map[string][]any{
			"getMessage": {func(e error) string { return e.Error() }},
			"toString":   {func(e error) string { return e.Error() }},
			"getCause":   {unwrapCause},
			"printStackTrace": {func(e error) {
				if opts.Stderr != nil {
					io.WriteString(opts.Stderr, e.Error()+"\n")
				}
			}},
		},
	})
	in.addExceptions(exceptionClasses())
	if exc := in.class(classException); exc != nil {
		reg.SetErrorBase(exc)
	}

	in.add(host.ClassSpec{
		Name:    "java.lang.Math",
		Type:    reflect.TypeOf(mathClass{}),
		Fields:  map[string]any{"PI": math.Pi, "E": math.E},
		Methods: mathStatics(),
	})
	out, errOut := NewPrintStream(orDiscard(opts.Stdout)), NewPrintStream(orDiscard(opts.Stderr))
	in.add(host.ClassSpec{Name: "java.io.PrintStream", Type: reflect.TypeOf(out)})
	in.add(host.ClassSpec{
		Name:   "java.lang.System",
		Type:   reflect.TypeOf(systemClass{}),
		Fields: map[string]any{"out": out, "err": errOut},
		Methods: map[string][]any{
			"currentTimeMillis": {currentTimeMillis},
			"nanoTime":          {nanoTime},
			"identityHashCode":  {identityHashCode},
			"lineSeparator":     {func() string { return "\n" }},
		},
	})
	in.add(host.ClassSpec{
		Name:         "java.lang.Thread",
		Type:         reflect.TypeOf(&Thread{}),
		Constructors: []any{func() *Thread { return NewThread(nil) }, NewThread},
		Methods:      map[string][]any{"sleep": {sleep}},
	})

	in.addInterface("java.lang.Runnable", typeOf[Runnable](), func(h host.InvocationHandler) any { return runnableProxy{h} })
	in.addInterface("java.lang.Comparable", typeOf[Comparable](), func(h host.InvocationHandler) any { return comparableProxy{h} })
	in.addInterface("java.lang.Iterable", typeOf[Iterable](), func(h host.InvocationHandler) any { return iterableProxy{h} })
	in.addInterface("java.util.concurrent.Callable", typeOf[Callable](), func(h host.InvocationHandler) any { return callableProxy{h} })
	in.add(host.ClassSpec{Name: "java.lang.Number", Type: typeOf[Number]()})

	if in.err != nil {
		return in.err
	}
	reg.RegisterPackage("java.util", installUtil)
	return nil
}

type (
	mathClass   struct{}
	systemClass struct{}
	arraysClass struct{}
)

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// unwrapCause returns the cause as an object so that it is not taken as a thrown error.
func unwrapCause(e error) any {
	if c := errors.Unwrap(e); c != nil {
		return c
	}
	return nil
}

func (in *installer) addInterface(name string, t reflect.Type, f host.ProxyFactory) {
	if in.add(host.ClassSpec{Name: name, Type: t}) == nil {
		return
	}
	if err := in.reg.RegisterProxy(t, f); err != nil && in.err == nil {
		in.err = err
	}
}

func (in *installer) addExceptions(defs []exceptionClass) {
	for _, d := range defs {
		d := d
		in.add(host.ClassSpec{
			Name:  d.name,
			Type:  reflect.TypeOf(d.zero),
			Super: in.class(d.super),
			Constructors: []any{
				func() any { return d.build("", nil) },
				func(msg string) any { return d.build(msg, nil) },
				func(msg string, cause error) any { return d.build(msg, cause) },
				func(cause error) any {
					msg := ""
					if cause != nil {
						msg = cause.Error()
					}
					return d.build(msg, cause)
				},
			},
		})
	}
}

func (in *installer) installWrappers() {
	in.add(host.ClassSpec{
		Name:         "java.lang.Boolean",
		Type:         reflect.TypeOf(&Boolean{}),
		Constructors: []any{func(b bool) *Boolean { return &Boolean{b} }},
		Fields:       map[string]any{"TRUE": &Boolean{true}, "FALSE": &Boolean{false}},
		Methods: map[string][]any{
			"parseBoolean": {ParseBoolean},
			"valueOf":      {func(b bool) *Boolean { return &Boolean{b} }, func(s string) *Boolean { return &Boolean{ParseBoolean(s)} }},
			"toString":     {func(b bool) string { return strconv.FormatBool(b) }},
		},
	})
	in.add(host.ClassSpec{
		Name:         "java.lang.Character",
		Type:         reflect.TypeOf(&Character{}),
		Constructors: []any{func(c uint16) *Character { return &Character{c} }},
		Fields:       map[string]any{"MIN_VALUE": uint16(0), "MAX_VALUE": uint16(0xffff)},
		Methods: map[string][]any{
			"valueOf":      {func(c uint16) *Character { return &Character{c} }},
			"isDigit":      {isDigit},
			"isLetter":     {isLetter},
			"isWhitespace": {isWhitespace},
			"isUpperCase":  {isUpper},
			"isLowerCase":  {isLower},
			"toUpperCase":  {toUpperChar},
			"toLowerCase":  {toLowerChar},
			"toString":     {func(c uint16) string { return ToString(c) }},
			"getNumericValue": {func(c uint16) int32 {
				if isDigit(c) {
					return int32(c - '0')
				}
				return -1
			}},
		},
	})
	in.add(host.ClassSpec{
		Name:         "java.lang.Byte",
		Type:         reflect.TypeOf(&Byte{}),
		Constructors: []any{func(v int8) *Byte { return &Byte{v} }},
		Fields:       map[string]any{"MIN_VALUE": int8(math.MinInt8), "MAX_VALUE": int8(math.MaxInt8)},
		Methods: map[string][]any{
			"parseByte": {ParseByte},
			"valueOf":   {func(v int8) *Byte { return &Byte{v} }},
		},
	})
	in.add(host.ClassSpec{
		Name:         "java.lang.Short",
		Type:         reflect.TypeOf(&Short{}),
		Constructors: []any{func(v int16) *Short { return &Short{v} }},
		Fields:       map[string]any{"MIN_VALUE": int16(math.MinInt16), "MAX_VALUE": int16(math.MaxInt16)},
		Methods: map[string][]any{
			"parseShort": {ParseShort},
			"valueOf":    {func(v int16) *Short { return &Short{v} }},
		},
	})
	in.add(host.ClassSpec{
		Name: "java.lang.Integer",
		Type: reflect.TypeOf(&Integer{}),
		Constructors: []any{
			func(v int32) *Integer { return &Integer{v} },
			func(s string) (*Integer, error) {
				n, err := ParseInt(s)
				return &Integer{n}, err
			},
		},
		Fields: map[string]any{"MIN_VALUE": int32(math.MinInt32), "MAX_VALUE": int32(math.MaxInt32)},
		Methods: map[string][]any{
			"parseInt": {ParseInt, func(s string, radix int32) (int32, error) {
				n, err := strconv.ParseInt(s, int(radix), 32)
				if err != nil {
					return 0, numberFormatError(s)
				}
				return int32(n), nil
			}},
			"valueOf": {
				func(v int32) *Integer { return &Integer{v} },
				func(s string) (*Integer, error) {
					n, err := ParseInt(s)
					return &Integer{n}, err
				},
			},
			"toString":       {func(v int32) string { return ToString(v) }},
			"toHexString":    {func(v int32) string { return strconv.FormatUint(uint64(uint32(v)), 16) }},
			"toBinaryString": {func(v int32) string { return strconv.FormatUint(uint64(uint32(v)), 2) }},
			"compare":        {func(a, b int32) int32 { return int32(cmpInt(int64(a), int64(b))) }},
			"signum":         {func(v int32) int32 { return int32(cmpInt(int64(v), 0)) }},
			"sum":            {func(a, b int32) int32 { return a + b }},
		},
	})
	in.add(host.ClassSpec{
		Name:         "java.lang.Long",
		Type:         reflect.TypeOf(&Long{}),
		Constructors: []any{func(v int64) *Long { return &Long{v} }},
		Fields:       map[string]any{"MIN_VALUE": int64(math.MinInt64), "MAX_VALUE": int64(math.MaxInt64)},
		Methods: map[string][]any{
			"parseLong": {ParseLong},
			"valueOf":   {func(v int64) *Long { return &Long{v} }},
			"toString":  {func(v int64) string { return ToString(v) }},
			"compare":   {func(a, b int64) int32 { return int32(cmpInt(a, b)) }},
		},
	})
	in.add(host.ClassSpec{
		Name:         "java.lang.Float",
		Type:         reflect.TypeOf(&Float{}),
		Constructors: []any{func(v float32) *Float { return &Float{v} }},
		Fields: map[string]any{
			"MIN_VALUE": float32(math.SmallestNonzeroFloat32), "MAX_VALUE": float32(math.MaxFloat32),
			"NaN": float32(math.NaN()), "POSITIVE_INFINITY": float32(math.Inf(1)), "NEGATIVE_INFINITY": float32(math.Inf(-1)),
		},
		Methods: map[string][]any{
			"parseFloat": {ParseFloat},
			"valueOf":    {func(v float32) *Float { return &Float{v} }},
			"isNaN":      {func(v float32) bool { return math.IsNaN(float64(v)) }},
			"toString":   {func(v float32) string { return ToString(v) }},
		},
	})
	in.add(host.ClassSpec{
		Name:         "java.lang.Double",
		Type:         reflect.TypeOf(&Double{}),
		Constructors: []any{func(v float64) *Double { return &Double{v} }},
		Fields: map[string]any{
			"MIN_VALUE": math.SmallestNonzeroFloat64, "MAX_VALUE": math.MaxFloat64,
			"NaN": math.NaN(), "POSITIVE_INFINITY": math.Inf(1), "NEGATIVE_INFINITY": math.Inf(-1),
		},
		Methods: map[string][]any{
			"parseDouble": {ParseDouble},
			"valueOf":     {func(v float64) *Double { return &Double{v} }},
			"isNaN":       {math.IsNaN},
			"toString":    {func(v float64) string { return ToString(v) }},
			"compare":     {func(a, b float64) int32 { return int32(cmpFloat(a - b)) }},
		},
	})
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// installUtil is the lazy loader of java.util. It registers java.util names
// only, resolving the java.lang classes it extends.
func installUtil(reg *host.Registry) error {
	in := &installer{reg: reg}
	in.addExceptions(utilExceptionClasses())
	in.add(host.ClassSpec{Name: "java.util.Iterator", Type: typeOf[Iterator]()})
	if err := reg.RegisterProxy(typeOf[Iterator](), func(h host.InvocationHandler) any { return iteratorProxy{h} }); err != nil {
		return err
	}
	in.add(host.ClassSpec{Name: "java.util.Comparator", Type: typeOf[Comparator]()})
	if err := reg.RegisterProxy(typeOf[Comparator](), func(h host.InvocationHandler) any { return comparatorProxy{h} }); err != nil {
		return err
	}
	in.add(host.ClassSpec{Name: "java.util.List", Type: typeOf[List]()})
	in.add(host.ClassSpec{Name: "java.util.Collection", Type: typeOf[List]()})
	in.add(host.ClassSpec{Name: "java.util.Map", Type: typeOf[Map]()})
	in.add(host.ClassSpec{
		Name:         "java.util.ArrayList",
		Type:         reflect.TypeOf(&ArrayList{}),
		Constructors: []any{NewArrayList, func(capacity int32) *ArrayList { return NewArrayList() }, NewArrayListOf},
		Extensions: map[string][]any{
			"add":    {(*ArrayList).AddAt},
			"remove": {(*ArrayList).RemoveElement},
		},
	})
	in.add(host.ClassSpec{
		Name:         "java.util.HashMap",
		Type:         reflect.TypeOf(&HashMap{}),
		Constructors: []any{NewHashMap},
	})
	in.add(host.ClassSpec{
		Name: "java.util.Arrays",
		Type: reflect.TypeOf(arraysClass{}),
		Methods: map[string][]any{
			"asList":   {asList},
			"toString": {arraysToString},
			"sort":     {sortArray},
		},
	})
	in.add(host.ClassSpec{
		Name: "java.util.Collections",
		Type: reflect.TypeOf(collectionsClass{}),
		Methods: map[string][]any{
			"sort":      {func(l *ArrayList) error { return l.Sort(nil) }, (*ArrayList).Sort},
			"emptyList": {NewArrayList},
			"reverse": {func(l *ArrayList) {
				for i, j := 0, len(l.elems)-1; i < j; i, j = i+1, j-1 {
					l.elems[i], l.elems[j] = l.elems[j], l.elems[i]
				}
			}},
		},
	})
	return in.err
}

type collectionsClass struct{}
