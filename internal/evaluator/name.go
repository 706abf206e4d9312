package evaluator

import (
	"strings"

	"github.com/beanshell/beanshell-sub002/internal/config"
	"github.com/beanshell/beanshell-sub002/internal/host/lang"
)

// Name resolves a possibly dotted identifier in a scope. The walk consumes
// one or more segments per round and reclassifies the partial result: a
// variable, a type, a static member, a field or property of an object.
type Name struct {
	ev    *Evaluator
	scope *Scope
	cs    *CallStack
	value string

	// walk state
	evalName       string // the part not consumed yet
	lastEvalName   string // the segment consumed by the last round
	base           Value  // nil before the first round
	callstackDepth int
}

func (e *Evaluator) newName(value string, scope *Scope, cs *CallStack) *Name {
	return &Name{ev: e, scope: scope, cs: cs, value: value}
}

func (n *Name) reset() {
	n.evalName = n.value
	n.lastEvalName = ""
	n.base = nil
	n.callstackDepth = 0
}

func isCompound(s string) bool { return strings.Contains(s, ".") }

// prefix returns the first parts segments of s.
func prefix(s string, parts int) string {
	i := 0
	for ; parts > 0; parts-- {
		j := strings.IndexByte(s[i:], '.')
		if j < 0 {
			return s
		}
		i += j + 1
	}
	return s[:i-1]
}

// suffix is what follows the first parts segments, empty when nothing does.
func suffix(s string, parts int) string {
	p := prefix(s, parts)
	if len(p) == len(s) {
		return ""
	}
	return s[len(p)+1:]
}

func countParts(s string) int { return strings.Count(s, ".") + 1 }

// ToObject resolves the name to a value: a variable value, a type as a
// *ClassRef, a field value, or void for an unknown simple name.
func (n *Name) ToObject() (Value, error) {
	return n.toObject(false)
}

// ToType resolves the name, requiring the result to be a type.
func (n *Name) ToType() (*ClassRef, error) {
	v, err := n.toObject(true)
	if err != nil {
		return nil, err
	}
	c, ok := v.(*ClassRef)
	if !ok {
		return nil, newEvalError("%s does not resolve to a class name.", n.value)
	}
	return c, nil
}

func (n *Name) toObject(forceClass bool) (Value, error) {
	n.reset()
	var obj Value
	for n.evalName != "" {
		var err error
		if obj, err = n.consumeNextObjectField(forceClass, false); err != nil {
			return nil, err
		}
	}
	if obj == nil {
		return nil, interpreterError("null value resolving %s", n.value)
	}
	return obj, nil
}

func (n *Name) completeRound(consumed, rest string, obj Value) Value {
	n.lastEvalName = consumed
	n.evalName = rest
	n.base = obj
	return obj
}

func (n *Name) consumeNextObjectField(forceClass, autoAllocateThis bool) (Value, error) {
	// a simple variable first, for Java precedence of variables over types
	if n.base == nil && !isCompound(n.evalName) && !forceClass {
		obj, err := n.resolveThisFieldReference(n.scope, n.evalName, false)
		if err != nil {
			return nil, err
		}
		if !isVoid(obj) {
			return n.completeRound(n.evalName, "", obj), nil
		}
	}

	varName := prefix(n.evalName, 1)
	if !forceClass {
		var (
			obj Value
			err error
		)
		switch b := n.base.(type) {
		case nil:
			obj, err = n.resolveThisFieldReference(n.scope, varName, false)
		case *This:
			obj, err = n.resolveThisFieldReference(b.scope, varName, true)
		}
		if err != nil {
			return nil, err
		}
		if obj != nil && !isVoid(obj) {
			return n.completeRound(varName, suffix(n.evalName, 1), obj), nil
		}
	}

	// the longest-first search would shadow packages by classes; Java takes
	// the shortest prefix naming a class
	if n.base == nil {
		parts := countParts(n.evalName)
		for i := 1; i <= parts; i++ {
			className := prefix(n.evalName, i)
			c, err := n.scope.GetClass(className)
			if err != nil {
				return nil, err
			}
			if c != nil {
				return n.completeRound(className, suffix(n.evalName, i), &ClassRef{Class: c}), nil
			}
		}
	}

	if !forceClass && autoAllocateThis {
		var target *Scope
		switch b := n.base.(type) {
		case nil:
			target = n.scope
		case *This:
			target = b.scope
		}
		if target != nil {
			obj := NewScope(target, "auto: "+varName).This()
			if err := target.SetVariable(varName, obj, false, true); err != nil {
				return nil, err
			}
			return n.completeRound(varName, suffix(n.evalName, 1), obj), nil
		}
	}

	if n.base == nil {
		if !isCompound(n.evalName) {
			return n.completeRound(n.evalName, "", VOID), nil
		}
		return nil, newEvalError("Class or variable not found: %s", n.evalName)
	}

	switch b := n.base.(type) {
	case *Null:
		return nil, newTargetError(lang.NewNullPointerException("Null Pointer while evaluating: " + n.value))
	case *Void:
		return nil, newEvalError("Undefined variable or class name while evaluating: %s", n.value)
	case *Primitive:
		return nil, newEvalError("Can't treat primitive like an object. Error while evaluating: %s", n.value)
	case *ClassRef:
		field := prefix(n.evalName, 1)
		obj, err := n.ev.getStaticMember(b.Class, field, n.scope)
		if err != nil {
			return nil, err
		}
		return n.completeRound(field, suffix(n.evalName, 1), obj), nil
	}

	if forceClass {
		return nil, newEvalError("%s does not resolve to a class name.", n.value)
	}
	field := prefix(n.evalName, 1)
	obj, err := n.ev.getObjectField(n.base, field)
	if err != nil {
		return nil, err
	}
	return n.completeRound(field, suffix(n.evalName, 1), obj), nil
}

// resolveThisFieldReference resolves one segment against a scope: the
// special names, then a variable. specialFieldsVisible is set when the
// segment follows an object closure.
func (n *Name) resolveThisFieldReference(scope *Scope, varName string, specialFieldsVisible bool) (Value, error) {
	switch varName {
	case config.ThisName:
		if specialFieldsVisible {
			return nil, newEvalError("Redundant to call .this on This type")
		}
		return scope.This(), nil
	case config.SuperName:
		return scope.Super(), nil
	case config.GlobalName:
		return scope.Global(), nil
	}

	if specialFieldsVisible {
		switch varName {
		case config.NamespaceName:
			return &HostObject{Value: scope}, nil
		case config.VariablesName:
			return &HostObject{Value: scope.VariableNames()}, nil
		case config.MethodsName:
			return &HostObject{Value: scope.MethodNames()}, nil
		case config.InterpreterName:
			if n.lastEvalName != config.ThisName {
				return nil, newEvalError("Can only call .interpreter on literal 'this'")
			}
			return &HostObject{Value: n.ev}, nil
		case config.CallerName:
			if n.lastEvalName != config.ThisName && n.lastEvalName != config.CallerName {
				return nil, newEvalError("Can only call .caller on literal 'this' or literal '.caller'")
			}
			if n.cs == nil {
				return nil, interpreterError("no call stack resolving %s", n.value)
			}
			n.callstackDepth++
			return n.cs.Get(n.callstackDepth).This(), nil
		case config.CallstackName:
			if n.lastEvalName != config.ThisName {
				return nil, newEvalError("Can only call .callstack on literal 'this'")
			}
			if n.cs == nil {
				return nil, interpreterError("no call stack resolving %s", n.value)
			}
			return &HostObject{Value: n.cs}, nil
		}
	}

	if v, ok := scope.GetVariable(varName, true); ok {
		return v, nil
	}
	return VOID, nil
}

// ToLHS resolves the name to an assignable target. All but the last segment
// are walked as by ToObject, allocating object closures for undefined
// simple prefixes.
func (n *Name) ToLHS() (LHS, error) {
	n.reset()
	strict := n.ev.cfg.StrictJava

	if !isCompound(n.evalName) {
		if n.evalName == config.ThisName {
			return nil, newEvalError("Can't assign to 'this'.")
		}
		return &varLHS{scope: n.scope, name: n.evalName, strict: strict}, nil
	}

	var obj Value
	for n.evalName != "" && isCompound(n.evalName) {
		var err error
		if obj, err = n.consumeNextObjectField(false, true); err != nil {
			if _, ok := err.(*EvalError); ok {
				return nil, wrapEvalError(err, "LHS evaluation")
			}
			return nil, err
		}
	}
	if n.evalName == "" {
		if _, ok := obj.(*ClassRef); ok {
			return nil, newEvalError("Can't assign to class: %s", n.value)
		}
	}
	if obj == nil {
		return nil, newEvalError("Error in LHS: %s", n.value)
	}

	switch b := obj.(type) {
	case *This:
		switch n.evalName {
		case config.NamespaceName, config.VariablesName, config.MethodsName, config.CallerName:
			return nil, newEvalError("Can't assign to special variable: %s", n.evalName)
		}
		// a literal super keeps the normal search for the nearest definition
		local := n.lastEvalName != config.SuperName
		return &varLHS{scope: b.scope, name: n.evalName, local: local, strict: strict}, nil
	case *ClassRef:
		return n.ev.staticFieldLHS(b.Class, n.evalName)
	}
	return n.ev.objectFieldLHS(obj, n.evalName)
}
