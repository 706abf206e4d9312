package host

import (
	"fmt"
	"reflect"
)

// IndexError reports an array access outside the slice bounds.
type IndexError struct {
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of bounds for length %d", e.Index, e.Length)
}

func structValue(obj any) (reflect.Value, bool) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.Kind() == reflect.Struct
}

func instanceField(obj any, name string) (reflect.Value, bool) {
	sv, ok := structValue(obj)
	if !ok {
		return reflect.Value{}, false
	}
	for _, n := range memberNames(name) {
		sf, ok := sv.Type().FieldByName(n)
		if ok && sf.IsExported() {
			return sv.FieldByIndex(sf.Index), true
		}
	}
	return reflect.Value{}, false
}

// HasField reports whether obj exposes an exported struct field for the script name.
func HasField(obj any, name string) bool {
	_, ok := instanceField(obj, name)
	return ok
}

// GetField reads an exported struct field.
func GetField(obj any, name string) (any, bool) {
	f, ok := instanceField(obj, name)
	if !ok {
		return nil, false
	}
	return FromReflect(f), true
}

// FieldClass returns the class of an instance field's declared type.
func FieldClass(reg *Registry, obj any, name string) (*Class, bool) {
	f, ok := instanceField(obj, name)
	if !ok {
		return nil, false
	}
	return reg.ClassOf(f.Type()), true
}

// SetField writes an exported struct field; the struct must be reached through a pointer.
func SetField(obj any, name string, v any) error {
	f, ok := instanceField(obj, name)
	if !ok {
		return fmt.Errorf("no field %s on %T", name, obj)
	}
	if !f.CanSet() {
		return fmt.Errorf("field %s of %T is not assignable", name, obj)
	}
	rv, err := convertArg(v, f.Type())
	if err != nil {
		return err
	}
	f.Set(rv)
	return nil
}

// Getter returns the bean accessor for a property: GetX, IsX, or X taking no arguments.
func (c *Class) Getter(property string) *Method {
	if c.typ == nil || property == "" {
		return nil
	}
	exported := exportName(property)
	for _, goName := range []string{"Get" + exported, "Is" + exported, exported} {
		gm, ok := c.typ.MethodByName(goName)
		if !ok {
			continue
		}
		m := c.reg.boundMethod(c, scriptName(goName), gm)
		if len(m.Params()) == 0 && m.ReturnType() != nil {
			return m
		}
	}
	return nil
}

// Setters returns the SetX overloads taking one argument.
func (c *Class) Setters(property string) []*Method {
	if c.typ == nil || property == "" {
		return nil
	}
	goName := "Set" + exportName(property)
	gm, ok := c.typ.MethodByName(goName)
	if !ok {
		return nil
	}
	m := c.reg.boundMethod(c, scriptName(goName), gm)
	if len(m.Params()) != 1 || m.IsVariadic() {
		return nil
	}
	return []*Method{m}
}

// ArrayLength returns the length of a slice or Go array value.
func ArrayLength(arr any) (int, bool) {
	v := reflect.ValueOf(arr)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return v.Len(), true
	}
	return 0, false
}

// IsArray reports whether v is a slice or Go array.
func IsArray(v any) bool {
	_, ok := ArrayLength(v)
	return ok
}

// ArrayGet reads one element.
func ArrayGet(arr any, i int) (any, error) {
	v := reflect.ValueOf(arr)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, fmt.Errorf("%T is not an array", arr)
	}
	if i < 0 || i >= v.Len() {
		return nil, &IndexError{Index: i, Length: v.Len()}
	}
	return FromReflect(v.Index(i)), nil
}

// ArraySet stores one element, converting numeric widths.
func ArraySet(arr any, i int, x any) error {
	v := reflect.ValueOf(arr)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("%T is not an assignable array", arr)
	}
	if i < 0 || i >= v.Len() {
		return &IndexError{Index: i, Length: v.Len()}
	}
	rv, err := convertArg(x, v.Type().Elem())
	if err != nil {
		return err
	}
	v.Index(i).Set(rv)
	return nil
}

// ArrayElemType is the component class of an array value.
func (r *Registry) ArrayElemType(arr any) *Class {
	t := reflect.TypeOf(arr)
	if t == nil || (t.Kind() != reflect.Slice && t.Kind() != reflect.Array) {
		return nil
	}
	return r.ClassOf(t.Elem())
}

// NewArray allocates a multi-dimensional array of elem. dims are the
// specified lengths, extra the number of trailing unspecified dimensions,
// left nil.
func NewArray(elem *Class, dims []int, extra int) (any, error) {
	if elem == nil || elem.IsVoid() {
		return nil, fmt.Errorf("array of void")
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("array allocation without dimensions")
	}
	t := elem.typ
	for i := 0; i < len(dims)+extra; i++ {
		t = reflect.SliceOf(t)
	}
	v, err := makeArray(t, dims)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

func makeArray(t reflect.Type, dims []int) (reflect.Value, error) {
	n := dims[0]
	if n < 0 {
		return reflect.Value{}, fmt.Errorf("negative array size %d", n)
	}
	s := reflect.MakeSlice(t, n, n)
	if len(dims) > 1 {
		for i := 0; i < n; i++ {
			sub, err := makeArray(t.Elem(), dims[1:])
			if err != nil {
				return reflect.Value{}, err
			}
			s.Index(i).Set(sub)
		}
	}
	return s, nil
}

// MakeArray builds a one-dimensional array of elem from elements already
// converted to the component type.
func MakeArray(elem *Class, elems []any) (any, error) {
	if elem == nil || elem.IsVoid() {
		return nil, fmt.Errorf("array of void")
	}
	s := reflect.MakeSlice(reflect.SliceOf(elem.typ), len(elems), len(elems))
	for i, e := range elems {
		rv, err := convertArg(e, elem.typ)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		s.Index(i).Set(rv)
	}
	return s.Interface(), nil
}
