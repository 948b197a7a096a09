// Package ext provides optional global-scope packs for expressions.
//
// The evaluator itself only defines the Object global. The packs live in
// sub-packages grouped by category:
//   - extmath  – Math, NaN, Infinity
//   - extjson  – JSON.stringify, JSON.parse
//   - extconv  – String, Number, Boolean, parseInt, parseFloat, isNaN, isFinite
//   - extarray – Array, Array.isArray, Array.of, Array.from
//
// # Integration – all packs at once
//
//	import "github.com/sandrolain/cspexpr/pkg/ext"
//
//	result, err := cspexpr.Eval(expr, scope, ext.WithAll())
//
// # Integration – by category
//
//	result, err := cspexpr.Eval(expr, scope,
//	    ext.WithMath(),
//	    ext.WithJSON(),
//	)
//
// # Integration – single function from a sub-package
//
//	import "github.com/sandrolain/cspexpr/pkg/ext/extconv"
//
//	result, err := cspexpr.Eval(expr, scope,
//	    evaluator.WithFunctions(extconv.ParseInt()),
//	)
package ext

import (
	"github.com/sandrolain/cspexpr/pkg/evaluator"
	"github.com/sandrolain/cspexpr/pkg/ext/extarray"
	"github.com/sandrolain/cspexpr/pkg/ext/extconv"
	"github.com/sandrolain/cspexpr/pkg/ext/extjson"
	"github.com/sandrolain/cspexpr/pkg/ext/extmath"
)

// Globals returns the identifiers of every pack merged into one map.
func Globals() map[string]any {
	all := make(map[string]any)
	for _, g := range []map[string]any{
		extmath.Globals(),
		extjson.Globals(),
		extconv.Globals(),
		extarray.Globals(),
	} {
		for k, v := range g {
			all[k] = v
		}
	}
	return all
}

// WithAll returns an EvalOption that registers every pack.
func WithAll() evaluator.EvalOption {
	return evaluator.WithGlobalScope(Globals())
}

// WithMath registers Math, NaN and Infinity.
func WithMath() evaluator.EvalOption {
	return evaluator.WithGlobalScope(extmath.Globals())
}

// WithJSON registers JSON.
func WithJSON() evaluator.EvalOption {
	return evaluator.WithGlobalScope(extjson.Globals())
}

// WithConv registers the conversion functions.
func WithConv() evaluator.EvalOption {
	return evaluator.WithFunctions(extconv.AllEntries()...)
}

// WithArray registers Array.
func WithArray() evaluator.EvalOption {
	return evaluator.WithGlobalScope(extarray.Globals())
}
