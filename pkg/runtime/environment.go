package runtime

import (
	"fmt"
	"sync"
)

// UndefinedVariableError is returned when a name resolves in no frame.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable '%s'", e.Name)
}

// ConstAssignmentError is returned when assigning to a const binding.
type ConstAssignmentError struct {
	Name string
}

func (e *ConstAssignmentError) Error() string {
	return fmt.Sprintf("cannot assign to const '%s'", e.Name)
}

type binding struct {
	value   Value
	isConst bool
}

// Environment provides lexical scoping for Lux runtime values. Each frame
// guards its own bindings; parents are only reached through the chain.
type Environment struct {
	mu     sync.RWMutex
	names  []string
	values map[string]*binding
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]*binding),
		parent: parent,
	}
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Extend creates a child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

// Declare creates or overwrites a binding in this frame and reports whether
// the name was already declared here.
func (e *Environment) Declare(name string, value Value, isConst bool) bool {
	if value == nil {
		value = Nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.values[name]; ok {
		b.value = value
		b.isConst = isConst
		return true
	}
	e.names = append(e.names, name)
	e.values[name] = &binding{value: value, isConst: isConst}
	return false
}

// Define declares a mutable binding, ignoring redeclaration.
func (e *Environment) Define(name string, value Value) {
	e.Declare(name, value, false)
}

// Assign updates an existing binding in the nearest frame where it appears.
func (e *Environment) Assign(name string, value Value) error {
	if value == nil {
		value = Nil
	}
	for env := e; env != nil; env = env.parent {
		env.mu.Lock()
		b, ok := env.values[name]
		if ok {
			if b.isConst {
				env.mu.Unlock()
				return &ConstAssignmentError{Name: name}
			}
			b.value = value
			env.mu.Unlock()
			return nil
		}
		env.mu.Unlock()
	}
	return &UndefinedVariableError{Name: name}
}

// Resolve retrieves a binding, searching outward through the scope chain.
func (e *Environment) Resolve(name string) (Value, error) {
	if v, ok := e.Lookup(name); ok {
		return v, nil
	}
	return nil, &UndefinedVariableError{Name: name}
}

// Lookup is Resolve without the error.
func (e *Environment) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		env.mu.RLock()
		b, ok := env.values[name]
		var v Value
		if ok {
			v = b.value
		}
		env.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

// HasOwn reports whether name is declared in this frame.
func (e *Environment) HasOwn(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.values[name]
	return ok
}

// Keys returns this frame's names in declaration order.
func (e *Environment) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Snapshot returns a copy of this frame's bindings.
func (e *Environment) Snapshot() map[string]Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]Value, len(e.values))
	for k, b := range e.values {
		out[k] = b.value
	}
	return out
}

// CloneFrame copies this frame's bindings into a new sibling frame with the
// same parent. Loops use it to give each iteration its own variables.
func (e *Environment) CloneFrame() *Environment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	clone := NewEnvironment(e.parent)
	clone.names = append(clone.names, e.names...)
	for k, b := range e.values {
		copied := *b
		clone.values[k] = &copied
	}
	return clone
}
