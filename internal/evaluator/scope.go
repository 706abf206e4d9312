package evaluator

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/host"
)

// Scope is a namespace of variables, methods and imports chained to a
// parent for lookups. The maps are guarded for concurrent evaluations; no
// other atomicity is promised.
type Scope struct {
	name   string
	parent *Scope
	ctx    *scopeContext

	block    bool
	isMethod bool
	isStatic bool

	mu               sync.RWMutex
	vars             map[string]*Variable
	methods          map[string][]*Method
	importedClasses  map[string]string
	importedPackages []string
	importedStatics  []staticImport
	classCache       map[string]cachedClass
	this             *This
}

// scopeContext is the type resolution state shared by a tree of scopes and
// owned by its root.
type scopeContext struct {
	ev          *Evaluator
	reg         *host.Registry
	generation  atomic.Uint64
	superImport atomic.Bool
	sub         *host.Subscription
}

type cachedClass struct {
	class *host.Class
	gen   uint64
}

type staticImport struct {
	class  *host.Class
	member string // "*" imports every static member
}

func newRootScope(ev *Evaluator, name string) *Scope {
	ctx := &scopeContext{ev: ev, reg: ev.reg}
	ctx.sub = ev.reg.Subscribe(func(host.ReloadEvent) { ctx.generation.Add(1) })
	return newScope(nil, name, ctx)
}

func newScope(parent *Scope, name string, ctx *scopeContext) *Scope {
	return &Scope{
		name:    name,
		parent:  parent,
		ctx:     ctx,
		vars:    make(map[string]*Variable),
		methods: make(map[string][]*Method),
	}
}

// NewScope creates a child scope sharing the parent's type resolution.
func NewScope(parent *Scope, name string) *Scope {
	return newScope(parent, name, parent.ctx)
}

// Close stops reload notifications for a root scope.
func (s *Scope) Close() {
	if s.parent == nil {
		s.ctx.sub.Cancel()
	}
}

func (s *Scope) Name() string          { return s.name }
func (s *Scope) Parent() *Scope        { return s.parent }
func (s *Scope) IsMethod() bool        { return s.isMethod }
func (s *Scope) IsStatic() bool        { return s.isStatic }
func (s *Scope) IsBlock() bool         { return s.block }
func (s *Scope) Evaluator() *Evaluator { return s.ctx.ev }

func (s *Scope) String() string {
	if s.parent == nil {
		return "NameSpace: " + s.name
	}
	return "NameSpace: " + s.name + " (child of " + s.parent.name + ")"
}

func (s *Scope) root() *Scope {
	r := s
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// nonBlock is the nearest scope that is not a block scope.
func (s *Scope) nonBlock() *Scope {
	n := s
	for n.block && n.parent != nil {
		n = n.parent
	}
	return n
}

func (s *Scope) lookupVariable(name string, recurse bool) *Variable {
	for sc := s; sc != nil; sc = sc.parent {
		sc.mu.RLock()
		v := sc.vars[name]
		sc.mu.RUnlock()
		if v != nil || !recurse {
			return v
		}
	}
	return nil
}

// GetVariable returns the value of name, searching the parents when recurse
// is set. Static-imported fields are the last resort. A declared but unset
// slot reads as void.
func (s *Scope) GetVariable(name string, recurse bool) (Value, bool) {
	if v := s.lookupVariable(name, recurse); v != nil {
		return v.Value(), true
	}
	if recurse {
		return s.staticImportField(name)
	}
	return nil, false
}

// Variable returns the slot of name in this scope only.
func (s *Scope) Variable(name string) (*Variable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

// SetVariable assigns an existing variable reachable from this scope
// (through the parents when recurse is set), casting for typed ones.
// Otherwise an untyped variable is created here, unless strict mode
// requires a declaration.
func (s *Scope) SetVariable(name string, val Value, strict, recurse bool) error {
	if s.block {
		return s.setBlockScoped(name, val, strict, recurse)
	}
	if v := s.lookupVariable(name, recurse); v != nil {
		return v.set(s.ctx.reg, val, castAssign)
	}
	if strict {
		return newEvalError("(Strict Java mode) Assignment to undeclared variable: %s", name)
	}
	s.mu.Lock()
	s.vars[name] = &Variable{Name: name, value: val, assigned: true}
	s.mu.Unlock()
	return nil
}

// SetLocalVariable assigns name without consulting the parents.
func (s *Scope) SetLocalVariable(name string, val Value, strict bool) error {
	return s.SetVariable(name, val, strict, false)
}

// SetTypedVariable declares name with a class in this scope. A nil value
// installs the default of the class. Redeclaring with the same class assigns;
// with another class it fails.
func (s *Scope) SetTypedVariable(name string, class *host.Class, val Value, mods ast.Modifiers) error {
	s.mu.RLock()
	existing := s.vars[name]
	s.mu.RUnlock()
	if existing != nil && existing.Class != nil {
		if existing.Class != class {
			return newEvalError("Typed variable: %s was previously declared with type: %s", name, existing.Class.Name())
		}
		return existing.set(s.ctx.reg, val, castDeclare)
	}
	v, err := newVariable(s.ctx.reg, name, class, val, mods)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.vars[name] = v
	s.mu.Unlock()
	return nil
}

// UnsetVariable removes the nearest variable called name.
func (s *Scope) UnsetVariable(name string) bool {
	for sc := s; sc != nil; sc = sc.parent {
		sc.mu.Lock()
		_, ok := sc.vars[name]
		if ok {
			delete(sc.vars, name)
		}
		sc.mu.Unlock()
		if ok {
			return true
		}
	}
	return false
}

// VariableNames lists the variables declared in this scope, sorted.
func (s *Scope) VariableNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.vars))
	for n := range s.vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SetMethod adds a script method to this scope's overload set, replacing a
// method with the same parameter classes.
func (s *Scope) SetMethod(m *Method) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.methods[m.Name]
	for i, old := range list {
		if sameParams(old.paramClasses, m.paramClasses) {
			list[i] = m
			return
		}
	}
	s.methods[m.Name] = append(list, m)
}

// Methods returns the overloads of name declared in this scope.
func (s *Scope) Methods(name string) []*Method {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Method(nil), s.methods[name]...)
}

// MethodNames lists the method names declared in this scope, sorted.
func (s *Scope) MethodNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.methods))
	for n := range s.methods {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GetMethod finds the most specific script method name applicable to args in
// this scope or, unless declaredOnly, in the nearest parent having one. The
// returned arguments are coerced for the chosen method.
func (s *Scope) GetMethod(name string, args []Value, declaredOnly bool) (*Method, []Value) {
	for sc := s; sc != nil; sc = sc.parent {
		if cands := sc.Methods(name); len(cands) > 0 {
			callables := make([]callable, len(cands))
			for i, m := range cands {
				callables[i] = m
			}
			if i, coerced := findMostSpecific(s.ctx.reg, callables, args); i >= 0 {
				return cands[i], coerced
			}
		}
		if declaredOnly {
			break
		}
	}
	return nil, nil
}

// ImportClass makes a qualified class name available by its simple name.
func (s *Scope) ImportClass(name string) {
	simple := name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		simple = name[i+1:]
	}
	s.mu.Lock()
	if s.importedClasses == nil {
		s.importedClasses = make(map[string]string)
	}
	s.importedClasses[simple] = name
	s.classCache = nil
	s.mu.Unlock()
	s.logImport(name)
}

// ImportPackage adds a package to the search list. The most recent import is
// searched first.
func (s *Scope) ImportPackage(pkg string) {
	s.mu.Lock()
	for i, p := range s.importedPackages {
		if p == pkg {
			s.importedPackages = append(s.importedPackages[:i], s.importedPackages[i+1:]...)
			break
		}
	}
	s.importedPackages = append(s.importedPackages, pkg)
	s.classCache = nil
	s.mu.Unlock()
	s.logImport(pkg + ".*")
}

// ImportStatic makes a static member of class, or all of them for "*",
// usable without qualification.
func (s *Scope) ImportStatic(class *host.Class, member string) {
	s.mu.Lock()
	s.importedStatics = append(s.importedStatics, staticImport{class: class, member: member})
	s.mu.Unlock()
	s.logImport("static " + class.Name() + "." + member)
}

// DoSuperImport makes every registered class resolvable by simple name.
func (s *Scope) DoSuperImport() {
	s.ctx.superImport.Store(true)
	s.ctx.generation.Add(1)
	s.logImport("*")
}

func (s *Scope) logImport(what string) {
	if ev := s.ctx.ev; ev != nil {
		ev.log.Debug().Str("scope", s.name).Str("import", what).Msg("import")
	}
}

// GetClass resolves a simple or qualified class name: imports of this scope,
// then absolute, then the parents, then the super import index.
func (s *Scope) GetClass(name string) (*host.Class, error) {
	for sc := s; sc != nil; sc = sc.parent {
		if c := sc.getClassImpl(name); c != nil {
			return c, nil
		}
	}
	if strings.Contains(name, ".") || !s.ctx.superImport.Load() {
		return nil, nil
	}
	names := s.ctx.reg.SimpleNameIndex(name)
	switch len(names) {
	case 0:
		return nil, nil
	case 1:
		c, _ := s.ctx.reg.Resolve(names[0])
		return c, nil
	}
	return nil, newEvalError("Ambiguous class name %s: %s", name, strings.Join(names, ", "))
}

func (s *Scope) getClassImpl(name string) *host.Class {
	gen := s.ctx.generation.Load()
	s.mu.RLock()
	if e, ok := s.classCache[name]; ok && e.gen == gen {
		s.mu.RUnlock()
		return e.class
	}
	var full string
	var pkgs []string
	if !strings.Contains(name, ".") {
		full = s.importedClasses[name]
		pkgs = append(pkgs, s.importedPackages...)
	}
	s.mu.RUnlock()

	reg := s.ctx.reg
	var c *host.Class
	if full != "" {
		c, _ = reg.Resolve(full)
	}
	for i := len(pkgs) - 1; c == nil && i >= 0; i-- {
		c, _ = reg.Resolve(pkgs[i] + "." + name)
	}
	if c == nil {
		c, _ = reg.Resolve(name)
	}

	s.mu.Lock()
	if s.classCache == nil {
		s.classCache = make(map[string]cachedClass)
	}
	s.classCache[name] = cachedClass{class: c, gen: gen}
	s.mu.Unlock()
	return c
}

func (s *Scope) staticImports() []staticImport {
	var out []staticImport
	for sc := s; sc != nil; sc = sc.parent {
		sc.mu.RLock()
		out = append(out, sc.importedStatics...)
		sc.mu.RUnlock()
	}
	return out
}

func (s *Scope) staticImportField(name string) (Value, bool) {
	for _, imp := range s.staticImports() {
		if imp.member != "*" && imp.member != name {
			continue
		}
		if f, ok := imp.class.StaticField(name); ok {
			return ToValue(f.Get()), true
		}
	}
	return nil, false
}

func (s *Scope) staticImportMethods(name string) []*host.Method {
	var out []*host.Method
	for _, imp := range s.staticImports() {
		if imp.member == "*" || imp.member == name {
			out = append(out, imp.class.StaticMethods(name)...)
		}
	}
	return out
}

// This is the object closure of the scope; block scopes share their parent's.
func (s *Scope) This() *This {
	return s.nonBlock().ownThis()
}

func (s *Scope) ownThis() *This {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.this == nil {
		s.this = &This{scope: s}
	}
	return s.this
}

// Super is the object closure of the enclosing scope, or of the root when
// there is none.
func (s *Scope) Super() *This {
	n := s.nonBlock()
	if n.parent != nil {
		return n.parent.This()
	}
	return n.This()
}

// Global is the object closure of the root scope.
func (s *Scope) Global() *This { return s.root().This() }
