package evaluator

import (
	"strings"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/config"
)

// CallStack is the dynamic chain of method scopes of one evaluation, index 0
// being the innermost. It is not safe for concurrent use; every top-level
// evaluation owns its own.
type CallStack struct {
	frames  []*Scope
	foreign *Scope

	// per evaluation state
	file string
	node ast.Node
}

// NewCallStack creates a stack whose outermost frame is root.
func NewCallStack(root *Scope) *CallStack {
	cs := &CallStack{}
	if root != nil {
		cs.frames = append(cs.frames, root)
	}
	return cs
}

func (cs *CallStack) Push(s *Scope) { cs.frames = append(cs.frames, s) }

// Pop removes and returns the innermost scope, nil when the stack is empty.
func (cs *CallStack) Pop() *Scope {
	n := len(cs.frames)
	if n == 0 {
		return nil
	}
	s := cs.frames[n-1]
	cs.frames = cs.frames[:n-1]
	return s
}

// Top is the innermost scope.
func (cs *CallStack) Top() *Scope { return cs.Get(0) }

// Get returns the scope depth frames out. Past the outermost frame it returns
// a placeholder scope standing for the foreign code that started evaluation.
func (cs *CallStack) Get(depth int) *Scope {
	if depth >= 0 && depth < len(cs.frames) {
		return cs.frames[len(cs.frames)-1-depth]
	}
	if cs.foreign == nil {
		var parent *Scope
		if len(cs.frames) > 0 {
			parent = cs.frames[0].root()
		}
		if parent != nil {
			cs.foreign = NewScope(parent, config.ForeignScopeName)
		}
	}
	return cs.foreign
}

// Swap replaces the innermost scope and returns the previous one.
func (cs *CallStack) Swap(s *Scope) *Scope {
	n := len(cs.frames)
	if n == 0 {
		cs.frames = append(cs.frames, s)
		return nil
	}
	old := cs.frames[n-1]
	cs.frames[n-1] = s
	return old
}

// Depth is the number of frames.
func (cs *CallStack) Depth() int { return len(cs.frames) }

// Copy returns an independent stack with the same frames, used to keep the
// state of a failed invocation for its error.
func (cs *CallStack) Copy() *CallStack {
	return &CallStack{
		frames: append([]*Scope(nil), cs.frames...),
		file:   cs.file,
	}
}

// Frames lists the scopes, innermost first.
func (cs *CallStack) Frames() []*Scope {
	out := make([]*Scope, len(cs.frames))
	for i := range cs.frames {
		out[i] = cs.frames[len(cs.frames)-1-i]
	}
	return out
}

func (cs *CallStack) String() string {
	var b strings.Builder
	b.WriteString("CallStack:\n")
	for _, s := range cs.Frames() {
		b.WriteString("\t")
		b.WriteString(s.String())
		b.WriteString("\n")
	}
	return b.String()
}
