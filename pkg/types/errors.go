package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an Error the way JavaScript classifies thrown errors.
type ErrorKind string

const (
	KindSyntax    ErrorKind = "SyntaxError"    // parse time
	KindReference ErrorKind = "ReferenceError" // unresolved identifier
	KindType      ErrorKind = "TypeError"      // bad call, constructor or assignment target
	KindRange     ErrorKind = "RangeError"     // evaluation depth exceeded
)

// Error is the single structured error type produced by the parser and the evaluator.
type Error struct {
	Kind ErrorKind
	// Message is the full message without the expression suffix.
	Message string
	// Description is the bare parse error description (syntax errors only).
	Description string
	// Index is the character offset of a syntax error, -1 when unknown.
	Index int
	// Expression is the source text the error is attributed to, set by wrapping.
	Expression string
	Err        error
}

// NewError creates an evaluation error without a source position.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Index:   -1,
	}
}

// Errorf is NewError with formatting.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return NewError(kind, fmt.Sprintf(format, args...))
}

// NewSyntaxError creates a parse error at the given character index.
func NewSyntaxError(description string, index int) *Error {
	return &Error{
		Kind:        KindSyntax,
		Message:     fmt.Sprintf("%s at character %d", description, index),
		Description: description,
		Index:       index,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Expression != "" {
		return e.Message + ` in expression "` + e.Expression + `"`
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// WrapExpression attributes err to the expression text. A *Error is copied
// with Expression set; any other error becomes a TypeError carrying it as cause.
// Errors already attributed to an expression are returned unchanged.
func WrapExpression(err error, expression string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Expression != "" {
			return err
		}
		wrapped := *e
		wrapped.Expression = expression
		return &wrapped
	}
	return &Error{
		Kind:       KindType,
		Message:    err.Error(),
		Index:      -1,
		Expression: expression,
		Err:        err,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsSyntaxError reports whether err is a parse error.
func IsSyntaxError(err error) bool { return KindOf(err) == KindSyntax }

// IsReferenceError reports whether err is an unresolved identifier error.
func IsReferenceError(err error) bool { return KindOf(err) == KindReference }

// IsTypeError reports whether err is a type error.
func IsTypeError(err error) bool { return KindOf(err) == KindType }
