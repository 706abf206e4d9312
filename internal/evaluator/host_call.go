package evaluator

import (
	"sync"

	"github.com/beanshell/beanshell-sub002/internal/host"
)

// hostCall is a host method call in progress on a call stack. Script objects
// handed to the call run the callbacks it makes nested on that stack, one
// callback at a time and only while the call lasts.
type hostCall struct {
	cs *CallStack
	mu sync.Mutex
}

// enterHost registers the script objects among recv and args with a call
// made on cs. The returned func ends the call, waiting for a callback still
// running on another goroutine.
func enterHost(cs *CallStack, recv any, args []any) func() {
	if cs == nil {
		return func() {}
	}
	var objs []*This
	if t := scriptObject(recv); t != nil {
		objs = append(objs, t)
	}
	for _, a := range args {
		if t := scriptObject(a); t != nil {
			objs = append(objs, t)
		}
	}
	if len(objs) == 0 {
		return func() {}
	}

	call := &hostCall{cs: cs}
	for _, t := range objs {
		t.pushCall(call)
	}
	return func() {
		for _, t := range objs {
			t.popCall(call)
		}
		call.mu.Lock()
	}
}

// scriptObject is the object closure behind a host value: the closure itself
// or the handler of a proxy.
func scriptObject(v any) *This {
	switch x := v.(type) {
	case *This:
		return x
	case host.Proxy:
		t, _ := x.ProxyHandler().(*This)
		return t
	}
	return nil
}

func (t *This) pushCall(c *hostCall) {
	t.mu.Lock()
	t.calls = append(t.calls, c)
	t.mu.Unlock()
}

func (t *This) popCall(c *hostCall) {
	t.mu.Lock()
	defer t.mu.Unlock()
	kept := t.calls[:0]
	for _, x := range t.calls {
		if x != c {
			kept = append(kept, x)
		}
	}
	for i := len(kept); i < len(t.calls); i++ {
		t.calls[i] = nil
	}
	t.calls = kept
}

// callStack is the stack a callback from host code runs on: that of the
// innermost free host call the object was handed to, else a fresh one.
func (t *This) callStack() (*CallStack, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.calls) - 1; i >= 0; i-- {
		if c := t.calls[i]; c.mu.TryLock() {
			return c.cs, c.mu.Unlock
		}
	}
	return NewCallStack(t.scope), func() {}
}
