package evaluator

import (
	"reflect"
	"sync"

	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

// monitor is a re-entrant lock owned by one call stack at a time.
type monitor struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner *CallStack
	count int
	refs  int // guarded by monitorTable.mu
}

func (m *monitor) lock(cs *CallStack) {
	m.mu.Lock()
	for m.owner != nil && m.owner != cs {
		m.cond.Wait()
	}
	m.owner = cs
	m.count++
	m.mu.Unlock()
}

func (m *monitor) unlock() {
	m.mu.Lock()
	m.count--
	if m.count == 0 {
		m.owner = nil
		m.cond.Signal()
	}
	m.mu.Unlock()
}

// monitorTable holds the monitors in use, keyed on the locked object.
// An entry lives while some evaluation holds or waits for it.
type monitorTable struct {
	mu sync.Mutex
	m  map[any]*monitor
}

func (t *monitorTable) acquire(key any, cs *CallStack) func() {
	t.mu.Lock()
	if t.m == nil {
		t.m = make(map[any]*monitor)
	}
	mon := t.m[key]
	if mon == nil {
		mon = &monitor{}
		mon.cond = sync.NewCond(&mon.mu)
		t.m[key] = mon
	}
	mon.refs++
	t.mu.Unlock()

	mon.lock(cs)
	return func() {
		mon.unlock()
		t.mu.Lock()
		mon.refs--
		if mon.refs == 0 {
			delete(t.m, key)
		}
		t.mu.Unlock()
	}
}

// lockKey is the identity a synchronized statement locks on.
func lockKey(v Value) (any, error) {
	switch x := v.(type) {
	case *Void:
		return nil, newEvalError(errVoidOperand)
	case *Null:
		return nil, newTargetError(lang.NewNullPointerException("synchronized on null"))
	case *Primitive:
		return nil, newEvalError("synchronized requires an object, got %s", describe(v))
	case *This:
		return x, nil
	case *ClassRef:
		return x.Class, nil
	}
	g := ToGo(v)
	if reflect.TypeOf(g).Comparable() {
		return g, nil
	}
	switch rv := reflect.ValueOf(g); rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Func:
		return rv.Pointer(), nil
	}
	return nil, newEvalError("cannot synchronize on %s", describe(v))
}
