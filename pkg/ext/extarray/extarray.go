// Package extarray provides the Array global: Array(...), new Array(...),
// Array.isArray, Array.of and Array.from.
package extarray

import (
	"context"
	"math"

	"github.com/sandrolain/cspexpr/pkg/evaluator"
	"github.com/sandrolain/cspexpr/pkg/functions"
	"github.com/sandrolain/cspexpr/pkg/types"
)

// Globals returns the Array constructor.
func Globals() map[string]any {
	return map[string]any{"Array": Constructor{}}
}

// Constructor is the Array global. It is callable, constructable, the
// right-hand side of instanceof and the holder of the Array.* helpers.
type Constructor struct{}

var statics = map[string]types.NativeFunc{
	"isArray": isArray,
	"of":      of,
	"from":    from,
}

// Call implements Array(...): a single numeric argument is a length,
// anything else lists the elements.
func (Constructor) Call(_ context.Context, _ any, args []any) (any, error) {
	if len(args) == 1 && evaluator.TypeOf(args[0]) == "number" {
		f := evaluator.ToNumber(args[0])
		if f < 0 || f != math.Trunc(f) || f > math.MaxUint32 {
			return nil, types.NewError(types.KindRange, "Invalid array length")
		}
		if f > evaluator.MaxLength {
			return nil, types.NewError(types.KindRange, "Invalid array length")
		}
		out := make([]any, int(f))
		for i := range out {
			out[i] = types.Undefined
		}
		return out, nil
	}
	return append([]any{}, args...), nil
}

// Construct implements new Array(...).
func (c Constructor) Construct(ctx context.Context, args []any) (any, error) {
	return c.Call(ctx, types.Undefined, args)
}

// HasInstance reports whether v is an array.
func (Constructor) HasInstance(v any) bool {
	_, ok := v.([]any)
	return ok
}

// Get returns the Array.* helper named key.
func (Constructor) Get(key string) (any, bool) {
	fn, ok := statics[key]
	return fn, ok
}

// String renders the constructor like a native function.
func (Constructor) String() string {
	return "function Array() { [native code] }"
}

func isArray(_ context.Context, _ any, args []any) (any, error) {
	_, ok := types.Arg(args, 0).([]any)
	return ok, nil
}

func of(_ context.Context, _ any, args []any) (any, error) {
	return append([]any{}, args...), nil
}

// from copies arrays, splits strings into code points and reads array-like
// objects through their length property. An optional map function receives
// each element and its index.
func from(ctx context.Context, _ any, args []any) (any, error) {
	src := types.Arg(args, 0)
	if types.IsNullish(src) {
		return nil, types.Errorf(types.KindType, "%s is not iterable", evaluator.ToString(src))
	}

	var items []any
	switch s := src.(type) {
	case []any:
		items = append([]any{}, s...)
	case string:
		items = make([]any, 0, len(s))
		for _, r := range s {
			items = append(items, string(r))
		}
	default:
		length, err := evaluator.GetMember(src, "length")
		if err != nil {
			return nil, err
		}
		n := evaluator.ToIntegerOrInfinity(length)
		if n < 0 {
			n = 0
		}
		if n > evaluator.MaxLength {
			return nil, types.NewError(types.KindRange, "Invalid array length")
		}
		items = make([]any, int(n))
		for i := range items {
			v, err := evaluator.GetMember(src, evaluator.ToPropertyKey(float64(i)))
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
	}

	mapFn := types.Arg(args, 1)
	if types.IsUndefined(mapFn) {
		return items, nil
	}
	if evaluator.TypeOf(mapFn) != "function" {
		return nil, types.Errorf(types.KindType, "%s is not a function", evaluator.ToString(mapFn))
	}
	for i, item := range items {
		v, err := functions.Call(ctx, mapFn, types.Arg(args, 2), item, float64(i))
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return items, nil
}
