package evaluator

import (
	"github.com/beanshell/beanshell-sub002/internal/config"
)

// NewBlockScope creates the scope of a braced block. Untyped reads and writes
// pass through to the parent; only typed declarations made directly in the
// block, catch parameters and loop variables live in it.
func NewBlockScope(parent *Scope) *Scope {
	s := newScope(parent, config.BlockScopeName, parent.ctx)
	s.block = true
	return s
}

// newLoopScope holds the initializer of a for statement. Each iteration of
// the body runs in a fresh block scope below it.
func newLoopScope(parent *Scope) *Scope {
	s := NewBlockScope(parent)
	s.name = "ForInit"
	return s
}

func (s *Scope) setBlockScoped(name string, val Value, strict, recurse bool) error {
	if v, ok := s.Variable(name); ok {
		return v.set(s.ctx.reg, val, castAssign)
	}
	return s.parent.SetVariable(name, val, strict, recurse)
}

// SetBlockVariable binds an untyped variable in this scope itself, even for a
// block scope.
func (s *Scope) SetBlockVariable(name string, val Value) {
	s.mu.Lock()
	s.vars[name] = &Variable{Name: name, value: val, assigned: true}
	s.mu.Unlock()
}

// BlockThis is the object closure of this scope itself, where This would
// return the enclosing non-block scope's.
func (s *Scope) BlockThis() *This { return s.ownThis() }
