// Package cspexpr evaluates binding expressions written in a JavaScript
// subset without executing host code.
//
// Expressions are parsed into an AST once and interpreted node by node
// against a scope chain: an ordered list of scope objects, innermost first.
// It is designed for template binding layers running under a strict Content
// Security Policy, where eval and new Function are not available:
//   - Safety: no dynamic code execution, only AST interpretation
//   - Familiarity: JavaScript operators, coercions and optional chaining
//   - Concurrency: compiled expressions are immutable and shareable
//   - Control: timeouts, cancellation and a nesting depth guard
//
// # Quick Start
//
//	// Simple evaluation
//	result, err := cspexpr.Eval("user.name.toUpperCase()", scope)
//
//	// Compile once, evaluate many times
//	ev := evaluator.New(ext.WithAll())
//	h, err := ev.CreateEvaluator("items.filter(i => i.price > limit).length")
//	result1, _ := h.Evaluate(ctx, viewModel1, parent)
//	result2, _ := h.Evaluate(ctx, viewModel2, parent)
//
//	// With options
//	result, err := cspexpr.Eval("count + 1", scope,
//	    evaluator.WithTimeout(time.Second),
//	    ext.WithMath(),
//	)
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/sandrolain/cspexpr/pkg/parser
//   - Evaluator: github.com/sandrolain/cspexpr/pkg/evaluator
//   - Functions: github.com/sandrolain/cspexpr/pkg/functions
//   - Extension globals: github.com/sandrolain/cspexpr/pkg/ext
//   - Types: github.com/sandrolain/cspexpr/pkg/types
package cspexpr

import (
	"context"
	"fmt"

	"github.com/sandrolain/cspexpr/pkg/evaluator"
	"github.com/sandrolain/cspexpr/pkg/parser"
	"github.com/sandrolain/cspexpr/pkg/types"
)

// Version returns the current version of cspexpr.
func Version() string {
	return "v0.1.0-dev"
}

// Compile parses an expression for repeated evaluation.
//
// The compiled expression is immutable and safe for concurrent use.
//
// Example:
//
//	expr, err := cspexpr.Compile("a + b * c")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, _ := evaluator.New().Evaluate(ctx, expr, scope)
func Compile(text string, opts ...parser.CompileOption) (*types.Expression, error) {
	expr, err := parser.Compile(text, opts...)
	if err != nil {
		return nil, types.WrapExpression(err, text)
	}
	return expr, nil
}

// MustCompile is like Compile but panics if the expression cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(text string) *types.Expression {
	expr, err := Compile(text)
	if err != nil {
		panic(fmt.Sprintf("cspexpr: Compile(%q): %v", text, err))
	}
	return expr
}

// Eval compiles and evaluates an expression in a single call against scope
// and the global scope.
//
// For repeated evaluations of the same expression, use Compile or
// evaluator.CreateEvaluator instead.
//
// Example:
//
//	result, err := cspexpr.Eval("user.name", map[string]any{"user": user})
func Eval(text string, scope any, opts ...evaluator.EvalOption) (any, error) {
	return EvalWithContext(context.Background(), text, scope, opts...)
}

// EvalWithContext evaluates an expression with a custom context.
// A nil scope evaluates against the global scope only.
func EvalWithContext(ctx context.Context, text string, scope any, opts ...evaluator.EvalOption) (any, error) {
	expr, err := Compile(text)
	if err != nil {
		return nil, err
	}

	var scopes []any
	if scope != nil {
		scopes = []any{scope}
	}
	return evaluator.New(opts...).EvaluateScopes(ctx, expr, scopes)
}
