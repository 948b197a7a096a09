// Package extutil provides shared helpers for the ext sub-packages.
package extutil

import (
	"context"

	"github.com/sandrolain/cspexpr/pkg/evaluator"
	"github.com/sandrolain/cspexpr/pkg/types"
)

// Num returns args[i] converted to a number; missing arguments are NaN.
func Num(args []any, i int) float64 {
	return evaluator.ToNumber(types.Arg(args, i))
}

// Nums converts every argument to a number.
func Nums(args []any) []float64 {
	out := make([]float64, len(args))
	for i, a := range args {
		out[i] = evaluator.ToNumber(a)
	}
	return out
}

// Str returns args[i] converted to a string.
func Str(args []any, i int) string {
	return evaluator.ToString(types.Arg(args, i))
}

// Unary adapts a float64 function to a callable taking one argument.
func Unary(fn func(float64) float64) types.NativeFunc {
	return func(_ context.Context, _ any, args []any) (any, error) {
		return fn(Num(args, 0)), nil
	}
}

// Binary adapts a float64 function to a callable taking two arguments.
func Binary(fn func(float64, float64) float64) types.NativeFunc {
	return func(_ context.Context, _ any, args []any) (any, error) {
		return fn(Num(args, 0), Num(args, 1)), nil
	}
}
