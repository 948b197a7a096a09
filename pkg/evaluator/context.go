package evaluator

import (
	"context"
	"fmt"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// EvalContext is the scope chain of one evaluation: scope objects ordered
// innermost first. The chain itself is never mutated; entering a function
// creates a child context with a new frame in front.
type EvalContext struct {
	scopes []any
}

// NewContext creates a context over scopes. The slice is copied, so closures
// created during evaluation keep their chain even if the caller reuses it.
func NewContext(scopes []any) *EvalContext {
	s := make([]any, len(scopes))
	copy(s, scopes)
	return &EvalContext{scopes: s}
}

// Scopes returns the scope chain, innermost first.
func (c *EvalContext) Scopes() []any {
	return c.scopes
}

// WithFrame returns a child context whose innermost scope is frame.
func (c *EvalContext) WithFrame(frame map[string]any) *EvalContext {
	s := make([]any, 0, len(c.scopes)+1)
	s = append(s, frame)
	s = append(s, c.scopes...)
	return &EvalContext{scopes: s}
}

// Lookup finds the first scope holding name and returns that scope and the
// bound value.
func (c *EvalContext) Lookup(name string) (scope any, value any, ok bool) {
	for _, s := range c.scopes {
		if v, found := scopeGet(s, name); found {
			return s, v, true
		}
	}
	return nil, nil, false
}

// String returns a string representation of the context.
func (c *EvalContext) String() string {
	return fmt.Sprintf("Context{scopes=%d}", len(c.scopes))
}

// globalScope marks the evaluator's global scope at the end of every chain.
// It is shared by concurrent evaluations, so assignment never writes to it.
type globalScope map[string]any

// scopeGet reads name from a scope object. Values that cannot hold named
// bindings are skipped.
func scopeGet(scope any, name string) (any, bool) {
	switch s := scope.(type) {
	case map[string]any:
		v, ok := s[name]
		return v, ok
	case globalScope:
		v, ok := s[name]
		return v, ok
	case types.PropertyGetter:
		return s.Get(name)
	}
	return nil, false
}

// assignmentLockKey marks a context.Context in which assignment is refused.
type assignmentLockKey struct{}

// withAssignmentLocked returns a context in which assignment expressions fail.
// The lock follows the Go context, so it covers everything evaluated
// synchronously beneath it but not closures invoked later with another context.
func withAssignmentLocked(ctx context.Context) context.Context {
	return context.WithValue(ctx, assignmentLockKey{}, true)
}

func assignmentLocked(ctx context.Context) bool {
	locked, _ := ctx.Value(assignmentLockKey{}).(bool)
	return locked
}
