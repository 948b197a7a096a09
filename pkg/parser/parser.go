// Package parser implements the expression parser.
//
// The parser is hand written: a lazy lexer over a single cursor feeds a
// recursive descent parser that uses precedence climbing for binary operators.
// It accepts a restricted JavaScript expression language: literals, template
// literals, member and call chains with optional chaining, unary, binary,
// logical and conditional operators, assignment, array and object literals
// with spread, arrow functions and function expressions with single-expression
// bodies, and `new` expressions.
//
// # Example
//
//	expr, err := parser.Parse("items.filter(i => i.price > limit).length")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ast := expr.AST()
//
// Parse errors are *types.Error values of kind types.KindSyntax carrying the
// character index of the failure.
package parser

import (
	"github.com/sandrolain/cspexpr/pkg/types"
)

// Parse parses an expression and returns the compiled Expression.
//
// Text holding a single statement yields that statement's node as the AST
// root; zero or several ';'-separated statements yield a *types.Compound.
//
// Example:
//
//	expr, err := parser.Parse("a ? b : c")
//	if err != nil {
//	    var perr *types.Error
//	    if errors.As(err, &perr) {
//	        fmt.Printf("parse error at character %d\n", perr.Index)
//	    }
//	    return
//	}
func Parse(query string, opts ...CompileOption) (*types.Expression, error) {
	p := NewParser(query, opts...)
	return p.Parse()
}

// Compile is an alias for Parse, provided for API consistency.
func Compile(query string, opts ...CompileOption) (*types.Expression, error) {
	return Parse(query, opts...)
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits expression nesting to prevent stack overflow.
	// Zero or negative disables the check.
	MaxDepth int
}

// DefaultMaxDepth is the nesting limit applied when no WithMaxDepth option is given.
const DefaultMaxDepth = 512

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}
