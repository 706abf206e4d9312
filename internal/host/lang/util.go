package lang

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/beanshell/beanshell-sub002/internal/host"
)

// List is the script view of ordered collections.
type List interface {
	Iterable
	Add(v any) bool
	Get(i int32) (any, error)
	Size() int32
}

// ArrayList is a growable list of objects. It is not safe for concurrent use.
type ArrayList struct {
	elems []any
}

func NewArrayList() *ArrayList { return &ArrayList{} }

// NewArrayListOf copies the elements of a collection or array.
func NewArrayListOf(src any) (*ArrayList, error) {
	l := &ArrayList{}
	if _, err := l.AddAll(src); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *ArrayList) checkIndex(i int32, size int) error {
	if i < 0 || int(i) >= size {
		return NewIndexOutOfBoundsException(fmt.Sprintf("Index %d out of bounds for length %d", i, len(l.elems)))
	}
	return nil
}

func (l *ArrayList) Add(v any) bool {
	l.elems = append(l.elems, v)
	return true
}

// AddAt inserts v at position i.
func (l *ArrayList) AddAt(i int32, v any) error {
	if err := l.checkIndex(i, len(l.elems)+1); err != nil {
		return err
	}
	l.elems = append(l.elems, nil)
	copy(l.elems[i+1:], l.elems[i:])
	l.elems[i] = v
	return nil
}

func (l *ArrayList) AddAll(src any) (bool, error) {
	n := len(l.elems)
	err := Each(src, func(v any) error {
		l.elems = append(l.elems, v)
		return nil
	})
	return len(l.elems) > n, err
}

func (l *ArrayList) Get(i int32) (any, error) {
	if err := l.checkIndex(i, len(l.elems)); err != nil {
		return nil, err
	}
	return l.elems[i], nil
}

func (l *ArrayList) Set(i int32, v any) (any, error) {
	if err := l.checkIndex(i, len(l.elems)); err != nil {
		return nil, err
	}
	old := l.elems[i]
	l.elems[i] = v
	return old, nil
}

func (l *ArrayList) Remove(i int32) (any, error) {
	if err := l.checkIndex(i, len(l.elems)); err != nil {
		return nil, err
	}
	old := l.elems[i]
	l.elems = append(l.elems[:i], l.elems[i+1:]...)
	return old, nil
}

// RemoveElement removes the first element equal to v.
func (l *ArrayList) RemoveElement(v any) bool {
	if i := l.IndexOf(v); i >= 0 {
		l.elems = append(l.elems[:i], l.elems[i+1:]...)
		return true
	}
	return false
}

func (l *ArrayList) IndexOf(v any) int32 {
	for i, e := range l.elems {
		if Equals(e, v) {
			return int32(i)
		}
	}
	return -1
}

func (l *ArrayList) Contains(v any) bool { return l.IndexOf(v) >= 0 }
func (l *ArrayList) Size() int32         { return int32(len(l.elems)) }
func (l *ArrayList) IsEmpty() bool       { return len(l.elems) == 0 }
func (l *ArrayList) Clear()              { l.elems = nil }
func (l *ArrayList) ToArray() []any      { return append([]any{}, l.elems...) }
func (l *ArrayList) Iterator() Iterator  { return &sliceIterator{elems: l.elems} }
func (l *ArrayList) ToString() string    { return ToString(l.elems) }

// Sort orders the list with c, or by natural ordering when c is nil.
func (l *ArrayList) Sort(c Comparator) error {
	var failure error
	sort.SliceStable(l.elems, func(i, j int) bool {
		if c != nil {
			return c.Compare(l.elems[i], l.elems[j]) < 0
		}
		n, err := Compare(l.elems[i], l.elems[j])
		if err != nil && failure == nil {
			failure = err
		}
		return n < 0
	})
	return failure
}

func (l *ArrayList) Equals(o any) bool {
	x, ok := o.(*ArrayList)
	if !ok || len(x.elems) != len(l.elems) {
		return false
	}
	for i := range l.elems {
		if !Equals(l.elems[i], x.elems[i]) {
			return false
		}
	}
	return true
}

func (l *ArrayList) HashCode() int32 {
	h := int32(1)
	for _, e := range l.elems {
		h = 31*h + HashCode(e)
	}
	return h
}

type sliceIterator struct {
	elems []any
	pos   int
}

func (it *sliceIterator) HasNext() bool { return it.pos < len(it.elems) }

func (it *sliceIterator) Next() (any, error) {
	if it.pos >= len(it.elems) {
		return nil, NewNoSuchElementException("")
	}
	v := it.elems[it.pos]
	it.pos++
	return v, nil
}

// Map is the script view of key/value collections.
type Map interface {
	Put(k, v any) any
	Get(k any) any
	ContainsKey(k any) bool
	Size() int32
}

// HashMap maps keys by value equality: wrappers hash as their primitive and
// strings by content. Iteration follows insertion order.
type HashMap struct {
	index map[any]int
	keys  []any
	vals  []any
}

func NewHashMap() *HashMap { return &HashMap{index: make(map[any]int)} }

type identityKey struct {
	typ reflect.Type
	ptr uintptr
}

func mapKey(k any) any {
	if u, ok := Unbox(k); ok {
		return u
	}
	if k == nil {
		return nil
	}
	t := reflect.TypeOf(k)
	if t.Comparable() {
		return k
	}
	// slices and maps key by identity
	return identityKey{typ: t, ptr: reflect.ValueOf(k).Pointer()}
}

func (m *HashMap) Put(k, v any) any {
	key := mapKey(k)
	if i, ok := m.index[key]; ok {
		old := m.vals[i]
		m.vals[i] = v
		return old
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
	return nil
}

func (m *HashMap) Get(k any) any {
	if i, ok := m.index[mapKey(k)]; ok {
		return m.vals[i]
	}
	return nil
}

func (m *HashMap) GetOrDefault(k, def any) any {
	if i, ok := m.index[mapKey(k)]; ok {
		return m.vals[i]
	}
	return def
}

func (m *HashMap) ContainsKey(k any) bool {
	_, ok := m.index[mapKey(k)]
	return ok
}

func (m *HashMap) ContainsValue(v any) bool {
	for _, x := range m.vals {
		if Equals(x, v) {
			return true
		}
	}
	return false
}

func (m *HashMap) Remove(k any) any {
	key := mapKey(k)
	i, ok := m.index[key]
	if !ok {
		return nil
	}
	old := m.vals[i]
	delete(m.index, key)
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	for j := i; j < len(m.keys); j++ {
		m.index[mapKey(m.keys[j])] = j
	}
	return old
}

func (m *HashMap) Size() int32     { return int32(len(m.keys)) }
func (m *HashMap) IsEmpty() bool   { return len(m.keys) == 0 }
func (m *HashMap) KeySet() []any   { return append([]any{}, m.keys...) }
func (m *HashMap) Values() []any   { return append([]any{}, m.vals...) }
func (m *HashMap) Clear()          { m.index, m.keys, m.vals = make(map[any]int), nil, nil }
func (m *HashMap) HashCode() int32 { return int32(len(m.keys)) }

func (m *HashMap) ToString() string {
	parts := make([]string, len(m.keys))
	for i := range m.keys {
		parts[i] = ToString(m.keys[i]) + "=" + ToString(m.vals[i])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Each calls fn for every element of an array, Iterable, map (keys) or string (chars).
func Each(src any, fn func(v any) error) error {
	switch x := src.(type) {
	case nil:
		return NewNullPointerException("cannot iterate over null")
	case string:
		for _, c := range units(x) {
			if err := fn(c); err != nil {
				return err
			}
		}
		return nil
	case *HashMap:
		for _, k := range x.KeySet() {
			if err := fn(k); err != nil {
				return err
			}
		}
		return nil
	case Iterable:
		it := x.Iterator()
		for it.HasNext() {
			v, err := it.Next()
			if err != nil {
				return err
			}
			if err := fn(v); err != nil {
				return err
			}
		}
		return nil
	case Iterator:
		for x.HasNext() {
			v, err := x.Next()
			if err != nil {
				return err
			}
			if err := fn(v); err != nil {
				return err
			}
		}
		return nil
	}
	rv := reflect.ValueOf(src)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := fn(canonicalElem(rv.Index(i))); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j]) })
		for _, k := range keys {
			if err := fn(canonicalElem(k)); err != nil {
				return err
			}
		}
		return nil
	}
	return NewIllegalArgumentException(fmt.Sprintf("cannot iterate over %s", ClassName(src)))
}

// IsIterable reports whether Each accepts v.
func IsIterable(v any) bool {
	switch v.(type) {
	case string, *HashMap, Iterable, Iterator:
		return true
	}
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

func canonicalElem(v reflect.Value) any {
	return host.FromReflect(v)
}

// asList builds a list from its arguments.
func asList(elems ...any) *ArrayList {
	return &ArrayList{elems: append([]any{}, elems...)}
}

func arraysToString(arr any) string { return ToString(arr) }

func sortArray(arr any) error {
	rv := reflect.ValueOf(arr)
	if rv.Kind() != reflect.Slice {
		return NewIllegalArgumentException(ClassName(arr) + " is not an array")
	}
	var failure error
	sort.SliceStable(arr, func(i, j int) bool {
		a, b := canonicalElem(rv.Index(i)), canonicalElem(rv.Index(j))
		if less, ok := primitiveLess(a, b); ok {
			return less
		}
		n, err := Compare(a, b)
		if err != nil && failure == nil {
			failure = err
		}
		return n < 0
	})
	return failure
}

func primitiveLess(a, b any) (bool, bool) {
	switch x := a.(type) {
	case int8:
		return x < b.(int8), true
	case int16:
		return x < b.(int16), true
	case int32:
		return x < b.(int32), true
	case int64:
		return x < b.(int64), true
	case uint16:
		return x < b.(uint16), true
	case float32:
		return x < b.(float32), true
	case float64:
		return x < b.(float64), true
	}
	return false, false
}
