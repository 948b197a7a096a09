package evaluator

import (
	"context"
	"errors"
	"io"

	json "github.com/goccy/go-json"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// StreamResult holds the output of a single streaming evaluation step.
type StreamResult struct {
	// Value is the evaluated result for one input document, or nil when Err is set.
	Value any
	// Err is non-nil when evaluation of a single document failed.
	Err error
}

// EvalStream reads a sequence of JSON documents from r (NDJSON or
// concatenated JSON) and evaluates expr once per document. Each document is
// the innermost scope, followed by parents and the global scope.
//
// Per-document evaluation errors are sent individually and the stream
// continues. A decode error is sent and then the channel is closed. The
// channel is also closed when r is exhausted or ctx is cancelled; callers
// must drain it or cancel ctx.
func (e *Evaluator) EvalStream(ctx context.Context, expr *types.Expression, r io.Reader, parents ...any) (<-chan StreamResult, error) {
	if expr == nil || expr.AST() == nil {
		return nil, types.NewError(types.KindType, "invalid expression")
	}

	ch := make(chan StreamResult, 16)

	go func() {
		defer close(ch)

		send := func(res StreamResult) bool {
			select {
			case ch <- res:
				return true
			case <-ctx.Done():
				return false
			}
		}

		dec := json.NewDecoder(r)
		scopes := make([]any, len(parents)+1)
		copy(scopes[1:], parents)
		for {
			if ctx.Err() != nil {
				return
			}

			var doc any
			if err := dec.Decode(&doc); err != nil {
				if !errors.Is(err, io.EOF) {
					send(StreamResult{Err: types.NewError(types.KindSyntax, "invalid JSON document").WithCause(err)})
				}
				return
			}

			scopes[0] = doc
			result, err := e.EvaluateScopes(ctx, expr, scopes)
			if !send(StreamResult{Value: result, Err: err}) {
				return
			}
		}
	}()

	return ch, nil
}
