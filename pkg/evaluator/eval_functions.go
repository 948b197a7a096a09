package evaluator

import (
	"context"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// evalArguments evaluates call arguments left to right, flattening spread
// elements in place.
func (e *Evaluator) evalArguments(ctx context.Context, nodes []types.Node, evalCtx *EvalContext) ([]any, error) {
	args := make([]any, 0, len(nodes))
	for _, n := range nodes {
		if spread, ok := n.(*types.SpreadElement); ok {
			v, err := e.evalNode(ctx, spread.Argument, evalCtx)
			if err != nil {
				return nil, err
			}
			items, err := spreadItems(v)
			if err != nil {
				return nil, err
			}
			args = append(args, items...)
			continue
		}
		v, err := e.evalNode(ctx, n, evalCtx)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// spreadItems returns the elements a spread operand contributes: the items of
// an array or the characters of a string.
func spreadItems(v any) ([]any, error) {
	switch s := v.(type) {
	case []any:
		return s, nil
	case string:
		items := make([]any, 0, len(s))
		for _, r := range s {
			items = append(items, string(r))
		}
		return items, nil
	}
	return nil, types.Errorf(types.KindType, "Spread syntax requires an iterable, got %s", describeValue(v))
}

// callValue invokes fn with receiver this.
func callValue(ctx context.Context, fn any, this any, args []any) (any, error) {
	c := asCallable(fn)
	if c == nil {
		return nil, types.NewError(types.KindType, "Expression is not a function")
	}
	v, err := c.Call(ctx, this, args)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// asCallable returns fn as a types.Callable, adapting plain Go functions.
func asCallable(fn any) types.Callable {
	if c, ok := fn.(types.Callable); ok {
		return c
	}
	return asGoFunc(fn)
}

// asGoFunc adapts the Go function shapes accepted as expression functions
// without going through the functions package.
func asGoFunc(fn any) types.Callable {
	switch f := fn.(type) {
	case func(args ...any) (any, error):
		return types.NativeFunc(func(_ context.Context, _ any, args []any) (any, error) {
			return f(args...)
		})
	case func(args ...any) any:
		return types.NativeFunc(func(_ context.Context, _ any, args []any) (any, error) {
			return f(args...), nil
		})
	case func(ctx context.Context, args ...any) (any, error):
		return types.NativeFunc(func(ctx context.Context, _ any, args []any) (any, error) {
			return f(ctx, args...)
		})
	}
	return nil
}

// evalNew evaluates new callee(args).
func (e *Evaluator) evalNew(ctx context.Context, n *types.NewExpression, evalCtx *EvalContext) (any, error) {
	callee, err := e.evalNode(ctx, n.Callee, evalCtx)
	if err != nil {
		return nil, err
	}
	ctor, ok := callee.(types.Constructor)
	if !ok {
		return nil, types.Errorf(types.KindType, "%s is not a constructor", calleeName(n.Callee))
	}
	args, err := e.evalArguments(ctx, n.Arguments, evalCtx)
	if err != nil {
		return nil, err
	}
	return ctor.Construct(ctx, args)
}

// calleeName renders a callee for error messages.
func calleeName(n types.Node) string {
	switch c := n.(type) {
	case *types.Identifier:
		return c.Name
	case *types.MemberExpression:
		if id, ok := c.Property.(*types.Identifier); ok && !c.Computed {
			return calleeName(c.Object) + "." + id.Name
		}
		return calleeName(c.Object) + "[...]"
	}
	return "Expression"
}
