package rscript

import (
	"sort"

	"github.com/charmbracelet/log"
)

type binding struct {
	value   Value
	mutable bool
}

type scope map[string]binding

// Closure is the chain of scopes visible where a function was declared. The scopes are
// shared with the environment, so later declarations in them stay visible.
type Closure struct {
	scopes []scope
}

type frame struct {
	saved []scope
}

// Environment is a stack of lexical scopes. The first scope is the global scope and is never
// popped.
type Environment struct {
	scopes []scope
	frames []frame
	logger *log.Logger
}

func NewEnvironment(opts ...Option) *Environment {
	o := newOptions(opts)

	return &Environment{
		scopes: []scope{make(scope)},
		logger: o.logger,
	}
}

// Declare binds name in the innermost scope. A binding of the same name in an outer scope is
// shadowed, one in the same scope is replaced.
func (e *Environment) Declare(name string, value Value) {
	e.declare(name, binding{value: value})
}

func (e *Environment) DeclareMutable(name string, value Value) {
	e.declare(name, binding{value: value, mutable: true})
}

func (e *Environment) declare(name string, b binding) {
	e.logger.Debug("declaring variable", "name", name, "value", b.value, "depth", len(e.scopes))
	e.scopes[len(e.scopes)-1][name] = b
}

// Get searches the scopes from the innermost outwards.
func (e *Environment) Get(name string) (Value, error) {
	if b, ok := e.lookup(name); ok {
		return b.value, nil
	}

	return nil, &VariableNotFoundError{Name: name}
}

// Set replaces the value of the nearest binding of name.
func (e *Environment) Set(name string, value Value) error {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		b, ok := e.scopes[i][name]
		if !ok {
			continue
		}

		if !b.mutable {
			return &ImmutableAssignmentError{Name: name}
		}

		e.scopes[i][name] = binding{value: value, mutable: true}
		return nil
	}

	return &VariableNotFoundError{Name: name}
}

// DeclaredInScope reports whether name is bound in the innermost scope.
func (e *Environment) DeclaredInScope(name string) bool {
	_, ok := e.scopes[len(e.scopes)-1][name]
	return ok
}

func (e *Environment) lookup(name string) (binding, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if b, ok := e.scopes[i][name]; ok {
			return b, true
		}
	}

	return binding{}, false
}

func (e *Environment) PushScope() {
	e.scopes = append(e.scopes, make(scope))
}

func (e *Environment) PopScope() {
	if len(e.scopes) == 1 {
		e.logger.Warn("attempted to pop the global scope")
		return
	}

	e.scopes = e.scopes[:len(e.scopes)-1]
}

// Depth returns the number of visible scopes.
func (e *Environment) Depth() int {
	return len(e.scopes)
}

// Capture returns the scopes visible at this point.
func (e *Environment) Capture() Closure {
	return Closure{scopes: append([]scope(nil), e.scopes...)}
}

// PushFrame enters a function body: until the matching PopFrame only the scopes of closure
// are visible, with a fresh scope pushed for the body. An empty closure sees the global scope.
func (e *Environment) PushFrame(closure Closure) {
	visible := closure.scopes
	if len(visible) == 0 {
		visible = e.scopes[:1]
	}

	e.frames = append(e.frames, frame{saved: e.scopes})
	e.scopes = append(visible[:len(visible):len(visible)], make(scope))
}

func (e *Environment) PopFrame() {
	if len(e.frames) == 0 {
		e.logger.Warn("attempted to pop a frame with none active")
		return
	}

	f := e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	e.scopes = f.saved
}

// Names returns the sorted names visible from the innermost scope.
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	for _, s := range e.scopes {
		for name := range s {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
