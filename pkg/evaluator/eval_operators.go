package evaluator

import (
	"context"
	"math"
	"strings"

	"github.com/sandrolain/cspexpr/pkg/types"
)

func (e *Evaluator) evalUnary(ctx context.Context, n *types.UnaryExpression, evalCtx *EvalContext) (any, error) {
	// typeof of an unresolvable name is "undefined", not a ReferenceError.
	if n.Operator == "typeof" {
		if id, ok := n.Argument.(*types.Identifier); ok {
			if _, _, found := evalCtx.Lookup(id.Name); !found {
				return "undefined", nil
			}
		}
	}

	v, err := e.evalNode(ctx, n.Argument, evalCtx)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "-":
		return -ToNumber(v), nil
	case "+":
		return ToNumber(v), nil
	case "!":
		return !Truthy(v), nil
	case "~":
		return float64(^ToInt32(v)), nil
	case "typeof":
		return TypeOf(v), nil
	case "void":
		return types.Undefined, nil
	}
	return nil, types.Errorf(types.KindType, "Unsupported unary operator %s", n.Operator)
}

func (e *Evaluator) evalBinary(ctx context.Context, n *types.BinaryExpression, evalCtx *EvalContext) (any, error) {
	left, err := e.evalNode(ctx, n.Left, evalCtx)
	if err != nil {
		return nil, err
	}
	right, err := e.evalNode(ctx, n.Right, evalCtx)
	if err != nil {
		return nil, err
	}
	return BinaryOp(n.Operator, left, right)
}

// BinaryOp applies a non-short-circuit binary operator with JavaScript semantics.
func BinaryOp(op string, left, right any) (any, error) {
	// Fast-path for the most common case: both operands are float64.
	if lf, ok := left.(float64); ok {
		if rf, ok := right.(float64); ok {
			switch op {
			case "+":
				return lf + rf, nil
			case "-":
				return lf - rf, nil
			case "*":
				return lf * rf, nil
			case "/":
				return lf / rf, nil
			case "<":
				return lf < rf, nil
			case ">":
				return lf > rf, nil
			case "<=":
				return lf <= rf, nil
			case ">=":
				return lf >= rf, nil
			case "===", "==":
				return lf == rf, nil
			case "!==", "!=":
				return lf != rf, nil
			}
		}
	}

	switch op {
	case "+":
		return add(left, right), nil
	case "-":
		return ToNumber(left) - ToNumber(right), nil
	case "*":
		return ToNumber(left) * ToNumber(right), nil
	case "/":
		return ToNumber(left) / ToNumber(right), nil
	case "%":
		return math.Mod(ToNumber(left), ToNumber(right)), nil
	case "**":
		return pow(ToNumber(left), ToNumber(right)), nil
	case "|":
		return float64(ToInt32(left) | ToInt32(right)), nil
	case "^":
		return float64(ToInt32(left) ^ ToInt32(right)), nil
	case "&":
		return float64(ToInt32(left) & ToInt32(right)), nil
	case "<<":
		return float64(ToInt32(left) << (ToUint32(right) & 31)), nil
	case ">>":
		return float64(ToInt32(left) >> (ToUint32(right) & 31)), nil
	case ">>>":
		return float64(ToUint32(left) >> (ToUint32(right) & 31)), nil
	case "==":
		return LooseEqual(left, right), nil
	case "!=":
		return !LooseEqual(left, right), nil
	case "===":
		return StrictEqual(left, right), nil
	case "!==":
		return !StrictEqual(left, right), nil
	case "<":
		return compare(left, right, func(c int) bool { return c < 0 }), nil
	case ">":
		return compare(left, right, func(c int) bool { return c > 0 }), nil
	case "<=":
		return compare(left, right, func(c int) bool { return c <= 0 }), nil
	case ">=":
		return compare(left, right, func(c int) bool { return c >= 0 }), nil
	case "in":
		return HasProperty(right, ToPropertyKey(left))
	case "instanceof":
		return instanceOf(left, right)
	}
	return nil, types.Errorf(types.KindType, "Unsupported binary operator %s", op)
}

// add implements +: string concatenation when either primitive operand is a
// string, numeric addition otherwise.
func add(left, right any) any {
	lp, rp := toPrimitive(left), toPrimitive(right)
	ls, lok := lp.(string)
	rs, rok := rp.(string)
	if lok || rok {
		if !lok {
			ls = ToString(lp)
		}
		if !rok {
			rs = ToString(rp)
		}
		return ls + rs
	}
	return ToNumber(lp) + ToNumber(rp)
}

// pow differs from math.Pow where JavaScript does: 1 ** ±Infinity and
// -1 ** ±Infinity are NaN.
func pow(x, y float64) float64 {
	if math.IsInf(y, 0) && (x == 1 || x == -1) {
		return math.NaN()
	}
	return math.Pow(x, y)
}

// compare orders two values as relational operators do. Comparisons
// involving NaN are always false.
func compare(left, right any, ok func(int) bool) bool {
	lp, rp := toPrimitive(left), toPrimitive(right)
	if ls, lok := lp.(string); lok {
		if rs, rok := rp.(string); rok {
			return ok(strings.Compare(ls, rs))
		}
	}
	l, r := ToNumber(lp), ToNumber(rp)
	if math.IsNaN(l) || math.IsNaN(r) {
		return false
	}
	switch {
	case l < r:
		return ok(-1)
	case l > r:
		return ok(1)
	}
	return ok(0)
}

func instanceOf(left, right any) (bool, error) {
	if ic, ok := right.(types.InstanceChecker); ok {
		return ic.HasInstance(left), nil
	}
	if asCallable(right) != nil {
		return false, nil
	}
	return false, types.NewError(types.KindType, "Right-hand side of 'instanceof' is not callable")
}

// evalLogical evaluates &&, || and ?? lazily: the right operand is evaluated
// only when the left one does not decide the result.
func (e *Evaluator) evalLogical(ctx context.Context, n *types.LogicalExpression, evalCtx *EvalContext) (any, error) {
	left, err := e.evalNode(ctx, n.Left, evalCtx)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "&&":
		if !Truthy(left) {
			return left, nil
		}
	case "||":
		if Truthy(left) {
			return left, nil
		}
	case "??":
		if !types.IsNullish(left) {
			return left, nil
		}
	default:
		return nil, types.Errorf(types.KindType, "Unsupported logical operator %s", n.Operator)
	}
	return e.evalNode(ctx, n.Right, evalCtx)
}

// evalAssignment evaluates target = value and returns value. Identifier
// targets must already be bound in some scope.
func (e *Evaluator) evalAssignment(ctx context.Context, n *types.BinaryExpression, evalCtx *EvalContext) (any, error) {
	if assignmentLocked(ctx) {
		return nil, types.NewError(types.KindType, "Assignment is not allowed while evaluating property writers")
	}

	switch target := n.Left.(type) {
	case *types.Identifier:
		value, err := e.evalNode(ctx, n.Right, evalCtx)
		if err != nil {
			return nil, err
		}
		scope, _, ok := evalCtx.Lookup(target.Name)
		if !ok {
			return nil, types.Errorf(types.KindType, "Cannot assign to undefined variable %s", target.Name)
		}
		if _, global := scope.(globalScope); global {
			return nil, types.Errorf(types.KindType, "Cannot assign to global variable %s", target.Name)
		}
		if err := SetMember(scope, target.Name, value); err != nil {
			return nil, err
		}
		return value, nil

	case *types.MemberExpression:
		obj, err := e.evalNode(ctx, target.Object, evalCtx)
		if err != nil {
			return nil, err
		}
		key, err := e.memberKey(ctx, target, evalCtx)
		if err != nil {
			return nil, err
		}
		value, err := e.evalNode(ctx, n.Right, evalCtx)
		if err != nil {
			return nil, err
		}
		if err := SetMember(obj, key, value); err != nil {
			return nil, err
		}
		return value, nil
	}

	return nil, types.Errorf(types.KindType, "%s not supported for assignment", n.Left.Type())
}
