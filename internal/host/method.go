package host

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"
)

// Method is a callable host member: a Go method, a static function, a constructor
// or an extension function taking its receiver as first argument.
type Method struct {
	name   string
	owner  *Class
	static bool

	fn       reflect.Value // function value; receiver first when ext is set
	goName   string        // set for Go methods bound by name on the receiver
	ext      bool
	implicit func() reflect.Value

	// signature, resolved on first use so that registration order does not matter
	once     sync.Once
	sigType  reflect.Type
	sigSkip  int
	params   []*Class
	ret      *Class // nil for void
	variadic bool
	errRet   bool
}

func (m *Method) resolve() {
	m.once.Do(func() {
		if m.sigType == nil {
			return
		}
		reg := m.owner.reg
		ft := m.sigType
		for i := m.sigSkip; i < ft.NumIn(); i++ {
			m.params = append(m.params, reg.ClassOf(ft.In(i)))
		}
		m.variadic = ft.IsVariadic()
		nout := ft.NumOut()
		if nout > 0 && ft.Out(nout-1) == errorType {
			m.errRet = true
			nout--
		}
		if nout > 0 && m.ret == nil {
			m.ret = reg.ClassOf(ft.Out(0))
		}
	})
}

func (m *Method) Name() string { return m.name }

// Owner is the class the method was found on.
func (m *Method) Owner() *Class { return m.owner }

// Params are the script-visible parameter classes, receiver excluded. For a
// variadic method the last entry is the array class of the variadic parameter.
func (m *Method) Params() []*Class {
	m.resolve()
	return m.params
}

// ReturnType is nil for methods without a script-visible result.
func (m *Method) ReturnType() *Class {
	m.resolve()
	return m.ret
}

func (m *Method) IsVariadic() bool {
	m.resolve()
	return m.variadic
}

func (m *Method) IsStatic() bool { return m.static }

func (m *Method) String() string {
	m.resolve()
	s := m.owner.Name() + "." + m.name + "("
	for i, p := range m.params {
		if i > 0 {
			s += ", "
		}
		if m.variadic && i == len(m.params)-1 {
			s += p.Elem().Name() + "..."
		} else {
			s += p.Name()
		}
	}
	return s + ")"
}

// PanicError is a recovered panic raised by host code.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("host panic: %v", e.Value) }

// Unwrap exposes a panicked error value.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ArgumentError reports arguments that do not fit the Go signature.
// It indicates a resolution defect, not an exception thrown by the host.
type ArgumentError struct {
	Method string
	Index  int
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: argument %d: %s", e.Method, e.Index+1, e.Reason)
}

// Call invokes the method. receiver is ignored for static methods and constructors.
// Arguments are canonical Go values (nil for null) already matched to Params.
// A non-nil error is either an *ArgumentError or a value thrown by the host:
// the method's trailing error result or a *PanicError.
func (m *Method) Call(receiver any, args []any) (result any, err error) {
	if m.implicit != nil {
		return m.implicit().Interface(), nil
	}
	m.resolve()

	fn := m.fn
	var in []reflect.Value
	switch {
	case m.goName != "":
		if receiver == nil {
			return nil, &ArgumentError{Method: m.String(), Index: -1, Reason: "nil receiver"}
		}
		fn = reflect.ValueOf(receiver).MethodByName(m.goName)
		if !fn.IsValid() {
			return nil, &ArgumentError{Method: m.String(), Index: -1, Reason: fmt.Sprintf("%T has no method %s", receiver, m.goName)}
		}
	case m.ext:
		rt := fn.Type().In(0)
		rv, err := convertArg(receiver, rt)
		if err != nil {
			return nil, &ArgumentError{Method: m.String(), Index: -1, Reason: err.Error()}
		}
		in = append(in, rv)
	}

	ft := fn.Type()
	offset := len(in)
	spread := false
	if n := len(args); ft.IsVariadic() && n > 0 && n+offset == ft.NumIn() && args[n-1] != nil {
		spread = reflect.TypeOf(args[n-1]).AssignableTo(ft.In(ft.NumIn() - 1))
	}
	for i, a := range args {
		var pt reflect.Type
		if ft.IsVariadic() && !spread && i+offset >= ft.NumIn()-1 {
			pt = ft.In(ft.NumIn() - 1).Elem()
		} else if i+offset < ft.NumIn() {
			pt = ft.In(i + offset)
		} else {
			return nil, &ArgumentError{Method: m.String(), Index: i, Reason: "too many arguments"}
		}
		v, err := convertArg(a, pt)
		if err != nil {
			return nil, &ArgumentError{Method: m.String(), Index: i, Reason: err.Error()}
		}
		in = append(in, v)
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	var out []reflect.Value
	if spread {
		out = fn.CallSlice(in)
	} else {
		out = fn.Call(in)
	}
	if m.errRet {
		if e := out[len(out)-1]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return FromReflect(out[0]), nil
}

// FromReflect unwraps a reflect value into a canonical Go value; nil pointers,
// interfaces, maps, slices and funcs become nil.
func FromReflect(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	return Canonical(v.Interface())
}

// convertArg adapts a canonical Go value to a parameter type: nil becomes the
// zero value of nillable types and numeric kinds convert between Go widths.
func convertArg(a any, t reflect.Type) (reflect.Value, error) {
	if a == nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.String:
			// null strings arrive as ""
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("null is not assignable to %s", t)
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(t) {
		if v.Type() != t {
			nv := reflect.New(t).Elem()
			nv.Set(v)
			return nv, nil
		}
		return v, nil
	}
	if KindOf(v.Type()).IsNumeric() && isNumericGoKind(t.Kind()) {
		return v.Convert(t), nil
	}
	if v.Type().ConvertibleTo(t) && v.Kind() == t.Kind() {
		// named types over the same underlying type
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), t)
}

func isNumericGoKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Field is a static field: a pointer to a Go variable, or a constant value.
type Field struct {
	Name  string
	Class *Class
	ptr   reflect.Value
	value reflect.Value
}

func (f *Field) IsFinal() bool { return !f.ptr.IsValid() }

func (f *Field) Get() any {
	if f.ptr.IsValid() {
		return FromReflect(f.ptr.Elem())
	}
	return FromReflect(f.value)
}

// Set stores v, converting numeric widths. Final fields reject writes.
func (f *Field) Set(v any) error {
	if f.IsFinal() {
		return fmt.Errorf("cannot assign a value to final field %s", f.Name)
	}
	rv, err := convertArg(v, f.ptr.Elem().Type())
	if err != nil {
		return err
	}
	f.ptr.Elem().Set(rv)
	return nil
}

func implicitConstructor(c *Class, mk func() reflect.Value) *Method {
	return &Method{name: "<init>", owner: c, ret: c, static: true, implicit: mk}
}
