package lang

import (
	"github.com/beanshell/beanshell-sub002/internal/host"
)

type (
	// Runnable is a task without a result.
	Runnable interface{ Run() }

	// Callable is a task with a result that may fail.
	Callable interface{ Call() (any, error) }

	// Comparable is the natural ordering of a value.
	Comparable interface{ CompareTo(o any) int32 }

	// Comparator orders two values.
	Comparator interface{ Compare(a, b any) int32 }

	// Iterator walks a sequence once.
	Iterator interface {
		HasNext() bool
		Next() (any, error)
	}

	// Iterable produces iterators; enhanced for loops accept it.
	Iterable interface{ Iterator() Iterator }
)

// Proxies forward interface calls to a script object. A failed call that
// cannot report an error panics with it; the host bridge recovers the panic.

type runnableProxy struct{ h host.InvocationHandler }

func (p runnableProxy) ProxyHandler() host.InvocationHandler { return p.h }

func (p runnableProxy) Run() {
	if _, err := p.h.Invoke("run", nil); err != nil {
		panic(err)
	}
}

type callableProxy struct{ h host.InvocationHandler }

func (p callableProxy) ProxyHandler() host.InvocationHandler { return p.h }

func (p callableProxy) Call() (any, error) { return p.h.Invoke("call", nil) }

type comparableProxy struct{ h host.InvocationHandler }

func (p comparableProxy) ProxyHandler() host.InvocationHandler { return p.h }

func (p comparableProxy) CompareTo(o any) int32 {
	return toInt32(p.h.Invoke("compareTo", []any{o}))
}

type comparatorProxy struct{ h host.InvocationHandler }

func (p comparatorProxy) ProxyHandler() host.InvocationHandler { return p.h }

func (p comparatorProxy) Compare(a, b any) int32 {
	return toInt32(p.h.Invoke("compare", []any{a, b}))
}

type iteratorProxy struct{ h host.InvocationHandler }

func (p iteratorProxy) ProxyHandler() host.InvocationHandler { return p.h }

func (p iteratorProxy) HasNext() bool {
	v, err := p.h.Invoke("hasNext", nil)
	if err != nil {
		panic(err)
	}
	if u, ok := Unbox(v); ok {
		v = u
	}
	b, _ := v.(bool)
	return b
}

func (p iteratorProxy) Next() (any, error) { return p.h.Invoke("next", nil) }

type iterableProxy struct{ h host.InvocationHandler }

func (p iterableProxy) ProxyHandler() host.InvocationHandler { return p.h }

func (p iterableProxy) Iterator() Iterator {
	v, err := p.h.Invoke("iterator", nil)
	if err != nil {
		panic(err)
	}
	if it, ok := v.(Iterator); ok {
		return it
	}
	panic(NewClassCastException(ClassName(v) + " is not an Iterator"))
}

func toInt32(v any, err error) int32 {
	if err != nil {
		panic(err)
	}
	if u, ok := Unbox(v); ok {
		v = u
	}
	switch x := v.(type) {
	case int32:
		return x
	case int8:
		return int32(x)
	case int16:
		return int32(x)
	case uint16:
		return int32(x)
	case int64:
		return int32(x)
	}
	panic(NewClassCastException(ClassName(v) + " cannot be cast to int"))
}
