// Package extmath provides the Math global object together with the NaN and
// Infinity constants.
package extmath

import (
	"context"
	"math"
	"math/rand"

	"github.com/sandrolain/cspexpr/pkg/ext/extutil"
	"github.com/sandrolain/cspexpr/pkg/functions"
	"github.com/sandrolain/cspexpr/pkg/types"
)

// Globals returns Math, NaN and Infinity.
func Globals() map[string]any {
	return map[string]any{
		"Math":     Math(),
		"NaN":      math.NaN(),
		"Infinity": math.Inf(1),
	}
}

// Math returns a new Math object.
func Math() *types.Object {
	return functions.Namespace(
		[]string{
			"PI", "E", "LN2", "LN10", "SQRT2",
			"abs", "floor", "ceil", "round", "trunc", "sign",
			"min", "max", "pow", "sqrt", "cbrt", "log", "log2", "log10", "exp",
			"random",
		},
		map[string]any{
			"PI":    math.Pi,
			"E":     math.E,
			"LN2":   math.Ln2,
			"LN10":  math.Ln10,
			"SQRT2": math.Sqrt2,

			"abs":   extutil.Unary(math.Abs),
			"floor": extutil.Unary(math.Floor),
			"ceil":  extutil.Unary(math.Ceil),
			"round": extutil.Unary(Round),
			"trunc": extutil.Unary(math.Trunc),
			"sign":  extutil.Unary(Sign),
			"min":   types.NativeFunc(minimum),
			"max":   types.NativeFunc(maximum),
			"pow":   extutil.Binary(Pow),
			"sqrt":  extutil.Unary(math.Sqrt),
			"cbrt":  extutil.Unary(math.Cbrt),
			"log":   extutil.Unary(math.Log),
			"log2":  extutil.Unary(math.Log2),
			"log10": extutil.Unary(math.Log10),
			"exp":   extutil.Unary(math.Exp),
			"random": types.NativeFunc(func(context.Context, any, []any) (any, error) {
				return rand.Float64(), nil
			}),
		},
	)
}

// Round rounds half up towards +Infinity, so Round(-2.5) is -2.
func Round(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r := math.Floor(x + 0.5)
	if r == 0 && math.Signbit(x) {
		return math.Copysign(0, -1)
	}
	return r
}

// Sign returns -1, 1, or x itself for zeros and NaN.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x
}

// Pow differs from math.Pow where ** does: 1 to an infinite power is NaN.
func Pow(x, y float64) float64 {
	if math.IsNaN(y) || (math.Abs(x) == 1 && math.IsInf(y, 0)) {
		return math.NaN()
	}
	return math.Pow(x, y)
}

func minimum(_ context.Context, _ any, args []any) (any, error) {
	out := math.Inf(1)
	for _, f := range extutil.Nums(args) {
		if math.IsNaN(f) {
			return math.NaN(), nil
		}
		if f < out || (f == 0 && out == 0 && math.Signbit(f)) {
			out = f
		}
	}
	return out, nil
}

func maximum(_ context.Context, _ any, args []any) (any, error) {
	out := math.Inf(-1)
	for _, f := range extutil.Nums(args) {
		if math.IsNaN(f) {
			return math.NaN(), nil
		}
		if f > out || (f == 0 && out == 0 && !math.Signbit(f)) {
			out = f
		}
	}
	return out, nil
}
