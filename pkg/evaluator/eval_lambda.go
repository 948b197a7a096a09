package evaluator

import (
	"context"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// Closure is the value of a function expression or arrow function. It
// captures the scope chain that was current when it was created.
type Closure struct {
	ev     *Evaluator
	name   string
	params []*types.Identifier
	body   types.Node
	// exprBody is set for arrows whose body is a bare expression.
	exprBody bool
	arrow    bool
	scope    *EvalContext
}

func (e *Evaluator) newClosure(n *types.FunctionExpression, evalCtx *EvalContext) *Closure {
	c := &Closure{
		ev:     e,
		params: n.Params,
		body:   n.Body,
		scope:  evalCtx,
	}
	if n.Name != nil {
		c.name = n.Name.Name
	}
	return c
}

func (e *Evaluator) newArrow(n *types.ArrowFunctionExpression, evalCtx *EvalContext) *Closure {
	return &Closure{
		ev:       e,
		params:   n.Params,
		body:     n.Body,
		exprBody: n.ExpressionBody,
		arrow:    true,
		scope:    evalCtx,
	}
}

// Name returns the function name, empty for anonymous functions.
func (c *Closure) Name() string {
	return c.name
}

// Arrow reports whether the closure is an arrow function.
func (c *Closure) Arrow() bool {
	return c.arrow
}

// Call invokes the closure. Function expressions see this as "this"; arrow
// functions resolve "this" lexically like any other name.
func (c *Closure) Call(ctx context.Context, this any, args []any) (any, error) {
	// Closures may be called from Go code long after the evaluation that
	// created them; give those calls their own depth budget.
	if c.ev.opts.MaxDepth > 0 && getRecurseDepthPtr(ctx) == nil {
		ctx = withNewRecurseDepthPtr(ctx)
	}

	frame := make(map[string]any, len(c.params)+2)
	if !c.arrow {
		if c.name != "" {
			frame[c.name] = c
		}
		frame["this"] = this
	}
	for i, p := range c.params {
		frame[p.Name] = types.Arg(args, i)
	}
	evalCtx := c.scope.WithFrame(frame)

	if c.exprBody {
		return c.ev.evalNode(ctx, c.body, evalCtx)
	}

	body, ok := c.body.(*types.FunctionBody)
	if !ok {
		return c.ev.evalNode(ctx, c.body, evalCtx)
	}
	if body.Argument == nil {
		return types.Undefined, nil
	}
	v, err := c.ev.evalNode(ctx, body.Argument, evalCtx)
	if err != nil {
		return nil, err
	}
	if !body.Return {
		return types.Undefined, nil
	}
	return v, nil
}

// Construct invokes a function expression as a constructor. The new object
// is "this"; an object returned by the body replaces it.
func (c *Closure) Construct(ctx context.Context, args []any) (any, error) {
	if c.arrow {
		return nil, types.NewError(types.KindType, "Arrow function is not a constructor")
	}
	obj := types.NewObject()
	v, err := c.Call(ctx, obj, args)
	if err != nil {
		return nil, err
	}
	if isObjectLike(v) {
		return v, nil
	}
	return obj, nil
}

// String renders the closure the way JavaScript prints a function.
func (c *Closure) String() string {
	if c.arrow {
		return "() => { [expression] }"
	}
	return "function " + c.name + "() { [expression] }"
}
