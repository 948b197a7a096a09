package evaluator

import (
	"context"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// recurseDepthKey stores a *int pointer so depth can be incremented/decremented
// (stack-style) by every evaluation frame sharing the same evaluation tree.
type recurseDepthKey struct{}

// getRecurseDepthPtr returns the depth counter pointer from the context, or nil.
func getRecurseDepthPtr(ctx context.Context) *int {
	if p, ok := ctx.Value(recurseDepthKey{}).(*int); ok {
		return p
	}
	return nil
}

// withNewRecurseDepthPtr returns a context that carries a fresh depth counter pointer.
// Call this once at the start of each top-level evaluation.
func withNewRecurseDepthPtr(ctx context.Context) context.Context {
	d := 0
	return context.WithValue(ctx, recurseDepthKey{}, &d)
}

// evalNode evaluates an AST node in the given scope chain.
func (e *Evaluator) evalNode(ctx context.Context, node types.Node, evalCtx *EvalContext) (any, error) {
	// Check context cancellation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Check recursion depth
	if depth := getRecurseDepthPtr(ctx); depth != nil {
		*depth++
		defer func() { *depth-- }()
		if *depth > e.opts.MaxDepth {
			return nil, types.NewError(types.KindRange, "Maximum evaluation depth exceeded")
		}
	}

	if e.opts.Debug {
		e.logger.Debug("evaluating node",
			"type", node.Type(),
			"pos", node.Pos(),
			"scopes", len(evalCtx.scopes))
	}

	switch n := node.(type) {
	case *types.Literal:
		return n.Value, nil
	case *types.Identifier:
		return e.evalIdentifier(n, evalCtx)
	case *types.MemberExpression, *types.CallExpression:
		v, _, short, err := e.evalChain(ctx, node, evalCtx)
		if err != nil {
			return nil, err
		}
		if short {
			return types.Undefined, nil
		}
		return v, nil
	case *types.NewExpression:
		return e.evalNew(ctx, n, evalCtx)
	case *types.UnaryExpression:
		return e.evalUnary(ctx, n, evalCtx)
	case *types.BinaryExpression:
		if n.Operator == "=" {
			return e.evalAssignment(ctx, n, evalCtx)
		}
		return e.evalBinary(ctx, n, evalCtx)
	case *types.LogicalExpression:
		return e.evalLogical(ctx, n, evalCtx)
	case *types.ConditionalExpression:
		return e.evalConditional(ctx, n, evalCtx)
	case *types.ArrayExpression:
		return e.evalArray(ctx, n, evalCtx)
	case *types.ObjectExpression:
		return e.evalObject(ctx, n, evalCtx)
	case *types.TemplateLiteral:
		return e.evalTemplate(ctx, n, evalCtx)
	case *types.FunctionExpression:
		return e.newClosure(n, evalCtx), nil
	case *types.ArrowFunctionExpression:
		return e.newArrow(n, evalCtx), nil
	case *types.SequenceExpression:
		return e.evalList(ctx, n.Expressions, evalCtx)
	case *types.Compound:
		return e.evalList(ctx, n.Body, evalCtx)
	case *types.SpreadElement:
		return nil, types.NewError(types.KindSyntax, "Spread syntax is only allowed in array literals and argument lists")
	default:
		return nil, types.Errorf(types.KindType, "Unsupported node type %s", node.Type())
	}
}

// evalIdentifier resolves a name through the scope chain.
func (e *Evaluator) evalIdentifier(n *types.Identifier, evalCtx *EvalContext) (any, error) {
	_, v, ok := evalCtx.Lookup(n.Name)
	if !ok {
		return nil, types.Errorf(types.KindReference, "Variable %s is undefined", n.Name)
	}
	return v, nil
}

// evalConditional evaluates exactly one branch.
func (e *Evaluator) evalConditional(ctx context.Context, n *types.ConditionalExpression, evalCtx *EvalContext) (any, error) {
	test, err := e.evalNode(ctx, n.Test, evalCtx)
	if err != nil {
		return nil, err
	}
	if Truthy(test) {
		return e.evalNode(ctx, n.Consequent, evalCtx)
	}
	return e.evalNode(ctx, n.Alternate, evalCtx)
}

// evalTemplate concatenates the cooked chunks with the string values of the
// substitutions.
func (e *Evaluator) evalTemplate(ctx context.Context, n *types.TemplateLiteral, evalCtx *EvalContext) (any, error) {
	b := acquireBuf()
	defer releaseBuf(b)
	for i, q := range n.Quasis {
		b.WriteString(q.Cooked)
		if i >= len(n.Expressions) {
			continue
		}
		v, err := e.evalNode(ctx, n.Expressions[i], evalCtx)
		if err != nil {
			return nil, err
		}
		b.WriteString(ToString(v))
	}
	return b.String(), nil
}

// evalList evaluates nodes in order and returns the last value.
func (e *Evaluator) evalList(ctx context.Context, nodes []types.Node, evalCtx *EvalContext) (any, error) {
	var result any = types.Undefined
	for _, n := range nodes {
		v, err := e.evalNode(ctx, n, evalCtx)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}
