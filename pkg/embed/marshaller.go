package bsh

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/beanshell/beanshell-sub002/internal/evaluator"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

var valueType = reflect.TypeOf((*evaluator.Value)(nil)).Elem()

// Marshaller handles conversion between Go and script values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to a script value. Go maps become
// java.util.HashMap instances, structs passed by value are copied so the
// script can assign their fields, everything else is shared by reference.
func (m *Marshaller) ToValue(val any) (evaluator.Value, error) {
	if val == nil {
		return evaluator.NULL, nil
	}
	if obj, ok := val.(evaluator.Value); ok {
		return obj, nil
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return evaluator.NULL, nil
		}
		return m.mapToHashMap(v)
	case reflect.Struct:
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		return &evaluator.HostObject{Value: p.Interface()}, nil
	}
	return evaluator.ToValue(val), nil
}

func (m *Marshaller) mapToHashMap(v reflect.Value) (evaluator.Value, error) {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	hm := lang.NewHashMap()
	for _, k := range keys {
		kv, err := m.ToValue(k.Interface())
		if err != nil {
			return nil, err
		}
		vv, err := m.ToValue(v.MapIndex(k).Interface())
		if err != nil {
			return nil, err
		}
		hm.Put(evaluator.ToGo(kv), evaluator.ToGo(vv))
	}
	return &evaluator.HostObject{Value: hm}, nil
}

// FromValue converts a script value to a Go value. targetType is optional;
// without it wrappers are unboxed, lists become []any and maps become
// map[any]any.
func (m *Marshaller) FromValue(obj evaluator.Value, targetType reflect.Type) (any, error) {
	if obj == nil {
		return nil, nil
	}
	if targetType == valueType {
		return obj, nil
	}
	return m.fromGo(evaluator.ToGo(obj), targetType)
}

func (m *Marshaller) fromGo(x any, targetType reflect.Type) (any, error) {
	if u, ok := lang.Unbox(x); ok {
		x = u
	}
	if targetType == nil {
		switch o := x.(type) {
		case *lang.ArrayList:
			return m.listToSlice(o.ToArray(), reflect.TypeOf([]any{}))
		case *lang.HashMap:
			return m.hashMapToMap(o, reflect.TypeOf(map[any]any{}))
		}
		return x, nil
	}

	if x == nil {
		switch targetType.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(targetType).Interface(), nil
		}
		return nil, fmt.Errorf("cannot convert null to %s", targetType)
	}

	v := reflect.ValueOf(x)
	if v.Type().AssignableTo(targetType) {
		return x, nil
	}

	switch targetType.Kind() {
	case reflect.Slice:
		switch o := x.(type) {
		case *lang.ArrayList:
			return m.listToSlice(o.ToArray(), targetType)
		}
		if v.Kind() == reflect.Slice {
			elems := make([]any, v.Len())
			for i := range elems {
				elems[i] = v.Index(i).Interface()
			}
			return m.listToSlice(elems, targetType)
		}
	case reflect.Map:
		if o, ok := x.(*lang.HashMap); ok {
			return m.hashMapToMap(o, targetType)
		}
	}

	if isNumber(v.Kind()) && isNumber(targetType.Kind()) {
		return v.Convert(targetType).Interface(), nil
	}
	if v.Kind() == targetType.Kind() && v.CanConvert(targetType) {
		return v.Convert(targetType).Interface(), nil
	}
	return nil, fmt.Errorf("cannot convert %s to %s", reflect.TypeOf(x), targetType)
}

func (m *Marshaller) listToSlice(elems []any, sliceType reflect.Type) (any, error) {
	out := reflect.MakeSlice(sliceType, len(elems), len(elems))
	for i, e := range elems {
		ge, err := m.fromGo(e, elemTarget(sliceType.Elem()))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		setValue(out.Index(i), ge)
	}
	return out.Interface(), nil
}

func (m *Marshaller) hashMapToMap(hm *lang.HashMap, mapType reflect.Type) (any, error) {
	out := reflect.MakeMapWithSize(mapType, int(hm.Size()))
	keys, vals := hm.KeySet(), hm.Values()
	for i := range keys {
		k, err := m.fromGo(keys[i], elemTarget(mapType.Key()))
		if err != nil {
			return nil, fmt.Errorf("key %v: %w", keys[i], err)
		}
		v, err := m.fromGo(vals[i], elemTarget(mapType.Elem()))
		if err != nil {
			return nil, fmt.Errorf("value of %v: %w", keys[i], err)
		}
		kv := reflect.New(mapType.Key()).Elem()
		setValue(kv, k)
		vv := reflect.New(mapType.Elem()).Elem()
		setValue(vv, v)
		out.SetMapIndex(kv, vv)
	}
	return out.Interface(), nil
}

// elemTarget maps an empty interface element type to "no preference" so
// nested containers convert with their defaults.
func elemTarget(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return nil
	}
	return t
}

func setValue(dst reflect.Value, x any) {
	if x == nil {
		return
	}
	dst.Set(reflect.ValueOf(x))
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
