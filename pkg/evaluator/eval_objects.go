package evaluator

import (
	"context"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// evalArray evaluates an array literal. Holes read as undefined and spread
// elements are flattened in place.
func (e *Evaluator) evalArray(ctx context.Context, n *types.ArrayExpression, evalCtx *EvalContext) (any, error) {
	result := make([]any, 0, len(n.Elements))
	for _, el := range n.Elements {
		if el == nil {
			result = append(result, types.Undefined)
			continue
		}
		if spread, ok := el.(*types.SpreadElement); ok {
			v, err := e.evalNode(ctx, spread.Argument, evalCtx)
			if err != nil {
				return nil, err
			}
			items, err := spreadItems(v)
			if err != nil {
				return nil, err
			}
			result = append(result, items...)
			continue
		}
		v, err := e.evalNode(ctx, el, evalCtx)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// evalObject evaluates an object literal into an ordered object. Keys and
// values are evaluated in source order; a repeated key keeps its first
// position and its last value.
//
// The value of the writer-marker key is evaluated with assignment locked:
// it may build writer functions but must not run an assignment while doing so.
func (e *Evaluator) evalObject(ctx context.Context, n *types.ObjectExpression, evalCtx *EvalContext) (any, error) {
	obj := types.NewObject()
	for _, prop := range n.Properties {
		key, err := e.propertyKey(ctx, prop, evalCtx)
		if err != nil {
			return nil, err
		}

		valueCtx := ctx
		if e.opts.WriterMarker != "" && key == e.opts.WriterMarker {
			valueCtx = withAssignmentLocked(ctx)
		}
		v, err := e.evalNode(valueCtx, prop.Value, evalCtx)
		if err != nil {
			return nil, err
		}
		obj.Put(key, v)
	}
	return obj, nil
}

// propertyKey returns the key of an object literal property.
func (e *Evaluator) propertyKey(ctx context.Context, prop *types.Property, evalCtx *EvalContext) (string, error) {
	if !prop.Computed {
		switch k := prop.Key.(type) {
		case *types.Identifier:
			return k.Name, nil
		case *types.Literal:
			return ToPropertyKey(k.Value), nil
		}
	}
	v, err := e.evalNode(ctx, prop.Key, evalCtx)
	if err != nil {
		return "", err
	}
	return ToPropertyKey(v), nil
}
