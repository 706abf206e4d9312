package host

import (
	"fmt"
	"reflect"
)

// InvocationHandler receives the calls made on a proxy. Script object
// closures implement it.
type InvocationHandler interface {
	Invoke(method string, args []any) (any, error)
}

// Proxy is implemented by proxy values that expose the handler they
// forward to.
type Proxy interface {
	ProxyHandler() InvocationHandler
}

// ProxyFactory builds a value implementing one Go interface whose methods
// forward to h. A forwarded call that fails panics with the returned error
// when the interface method has no error result.
type ProxyFactory func(h InvocationHandler) any

// RegisterProxy installs the proxy factory for an interface type.
func (r *Registry) RegisterProxy(iface reflect.Type, f ProxyFactory) error {
	if iface == nil || iface.Kind() != reflect.Interface {
		return fmt.Errorf("register proxy: %v is not an interface type", iface)
	}
	r.mu.Lock()
	r.proxies[iface] = f
	r.mu.Unlock()
	return nil
}

// HasProxySupport reports whether values of the interface class can be
// produced from an InvocationHandler.
func (r *Registry) HasProxySupport(iface *Class) bool {
	if iface == nil || !iface.IsInterface() {
		return false
	}
	if iface.typ == anyType {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.proxies[iface.typ]
	return ok
}

// NewProxy returns a value implementing iface that forwards to h.
func (r *Registry) NewProxy(iface *Class, h InvocationHandler) (any, error) {
	if iface == nil || !iface.IsInterface() {
		return nil, fmt.Errorf("proxy: %v is not an interface", iface)
	}
	if iface.typ == anyType {
		return h, nil
	}
	r.mu.RLock()
	f, ok := r.proxies[iface.typ]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("proxy: no proxy factory for %s", iface.name)
	}
	p := f(h)
	if p == nil || !reflect.TypeOf(p).Implements(iface.typ) {
		return nil, fmt.Errorf("proxy: factory for %s returned %T", iface.name, p)
	}
	return p, nil
}
