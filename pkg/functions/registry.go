// Package functions provides adapters that expose Go functions to expressions.
//
// Expressions call anything that implements types.Callable. The adapters in
// this package wrap plain Go functions so that callers do not have to deal
// with the receiver argument or the argument slice directly.
//
// # Example
//
//	greet := functions.Func(func(args ...any) (any, error) {
//	    return "Hello, " + fmt.Sprint(args[0]) + "!", nil
//	})
//	ev := evaluator.New(evaluator.WithGlobalScope(map[string]any{"greet": greet}))
//
// Named definitions can also be registered in bulk:
//
//	ev := evaluator.New(evaluator.WithFunctions(
//	    functions.CustomFunctionDef{Name: "greet", Fn: greetFn},
//	))
package functions

import (
	"context"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// CustomFunc is the signature for functions that only need their arguments.
type CustomFunc func(ctx context.Context, args ...any) (any, error)

// MethodFunc is the signature for functions that use the receiver the
// expression called them on ("this").
type MethodFunc func(ctx context.Context, this any, args ...any) (any, error)

// CustomFunctionDef is a named function exposed in the global scope.
type CustomFunctionDef struct {
	// Name is the identifier under which the function is visible.
	Name string
	// Fn is the implementation.
	Fn CustomFunc
}

// MethodFunctionDef is a named function that receives "this".
type MethodFunctionDef struct {
	Name string
	Fn   MethodFunc
}

// FunctionEntry is implemented by CustomFunctionDef and MethodFunctionDef.
// It allows mixing both kinds in a single variadic call to evaluator.WithFunctions.
type FunctionEntry interface {
	EntryName() string
	Callable() types.Callable
}

// EntryName returns the global name.
func (d CustomFunctionDef) EntryName() string { return d.Name }

// Callable returns the callable value for the definition.
func (d CustomFunctionDef) Callable() types.Callable { return Context(d.Fn) }

// EntryName returns the global name.
func (d MethodFunctionDef) EntryName() string { return d.Name }

// Callable returns the callable value for the definition.
func (d MethodFunctionDef) Callable() types.Callable { return Method(d.Fn) }

// Func adapts a context-free Go function.
func Func(fn func(args ...any) (any, error)) types.NativeFunc {
	return func(_ context.Context, _ any, args []any) (any, error) {
		return fn(args...)
	}
}

// Context adapts a function that needs the evaluation context.
func Context(fn CustomFunc) types.NativeFunc {
	return func(ctx context.Context, _ any, args []any) (any, error) {
		return fn(ctx, args...)
	}
}

// Method adapts a function that receives the call receiver.
func Method(fn MethodFunc) types.NativeFunc {
	return func(ctx context.Context, this any, args []any) (any, error) {
		return fn(ctx, this, args...)
	}
}

// Call invokes fn with the given receiver and arguments. It is the helper
// that higher-order Go functions use to call back into expression functions.
func Call(ctx context.Context, fn any, this any, args ...any) (any, error) {
	c, ok := fn.(types.Callable)
	if !ok {
		return nil, types.NewError(types.KindType, "Expression is not a function")
	}
	return c.Call(ctx, this, args)
}

// Namespace builds an ordered object holding the given members, in the order
// given by names. It is used for global objects such as Math or JSON, and the
// result is frozen so evaluations can share it.
func Namespace(names []string, members map[string]any) *types.Object {
	obj := types.NewObject()
	for _, name := range names {
		if v, ok := members[name]; ok {
			obj.Put(name, v)
		}
	}
	return obj.Freeze()
}
