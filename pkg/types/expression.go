// Package types defines the core type system for cspexpr.
//
// This package contains type definitions for:
//   - Expression: compiled expressions
//   - Node: the closed set of AST node structs
//   - Values: Undefined, ordered objects and the callable interfaces
//   - Error: structured errors with JavaScript-style kinds
package types

// Expression represents a compiled expression.
//
// An Expression can be evaluated any number of times against different scope
// chains. The AST is never mutated after parsing, so an Expression is safe for
// concurrent use by multiple goroutines.
type Expression struct {
	ast    Node
	source string
}

// NewCompiled creates a new Expression from an AST.
func NewCompiled(ast Node, source string) *Expression {
	return &Expression{
		ast:    ast,
		source: source,
	}
}

// AST returns the root node of the expression.
func (e *Expression) AST() Node {
	return e.ast
}

// Source returns the original source text of the expression.
func (e *Expression) Source() string {
	return e.source
}

// String returns the source text.
func (e *Expression) String() string {
	return e.source
}
