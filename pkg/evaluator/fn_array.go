package evaluator

import (
	"context"
	"math"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// Array methods never mutate their receiver; only the non-mutating subset
// exists.

func thisArray(name string, this any) ([]any, error) {
	if a, ok := this.([]any); ok {
		return a, nil
	}
	return nil, types.Errorf(types.KindType, "Array.prototype.%s called on %s", name, describeValue(this))
}

// callbackArg returns the callback argument of an iteration method.
func callbackArg(name string, args []any) (types.Callable, any, error) {
	fn := asCallable(types.Arg(args, 0))
	if fn == nil {
		return nil, nil, types.Errorf(types.KindType, "%s is not a function", ToString(types.Arg(args, 0)))
	}
	return fn, types.Arg(args, 1), nil
}

// iterate calls fn(element, index, array) for every element until visit
// returns false.
func iterate(ctx context.Context, name string, this any, args []any, visit func(i int, el, result any) bool) error {
	arr, err := thisArray(name, this)
	if err != nil {
		return err
	}
	fn, thisArg, err := callbackArg(name, args)
	if err != nil {
		return err
	}
	for i, el := range arr {
		v, err := fn.Call(ctx, thisArg, []any{el, float64(i), arr})
		if err != nil {
			return err
		}
		if !visit(i, el, v) {
			break
		}
	}
	return nil
}

var arrayMethods map[string]types.NativeFunc

func init() {
	arrayMethods = map[string]types.NativeFunc{
		"map": func(ctx context.Context, this any, args []any) (any, error) {
			var out []any
			err := iterate(ctx, "map", this, args, func(_ int, _, v any) bool {
				out = append(out, v)
				return true
			})
			if err != nil {
				return nil, err
			}
			if out == nil {
				out = []any{}
			}
			return out, nil
		},
		"filter": func(ctx context.Context, this any, args []any) (any, error) {
			out := []any{}
			err := iterate(ctx, "filter", this, args, func(_ int, el, v any) bool {
				if Truthy(v) {
					out = append(out, el)
				}
				return true
			})
			return out, err
		},
		"forEach": func(ctx context.Context, this any, args []any) (any, error) {
			err := iterate(ctx, "forEach", this, args, func(int, any, any) bool { return true })
			return types.Undefined, err
		},
		"some": func(ctx context.Context, this any, args []any) (any, error) {
			found := false
			err := iterate(ctx, "some", this, args, func(_ int, _, v any) bool {
				found = Truthy(v)
				return !found
			})
			return found, err
		},
		"every": func(ctx context.Context, this any, args []any) (any, error) {
			all := true
			err := iterate(ctx, "every", this, args, func(_ int, _, v any) bool {
				all = Truthy(v)
				return all
			})
			return all, err
		},
		"find": func(ctx context.Context, this any, args []any) (any, error) {
			var found any = types.Undefined
			err := iterate(ctx, "find", this, args, func(_ int, el, v any) bool {
				if Truthy(v) {
					found = el
					return false
				}
				return true
			})
			return found, err
		},
		"findIndex": func(ctx context.Context, this any, args []any) (any, error) {
			idx := -1
			err := iterate(ctx, "findIndex", this, args, func(i int, _, v any) bool {
				if Truthy(v) {
					idx = i
					return false
				}
				return true
			})
			return float64(idx), err
		},
		"reduce": arrayReduce,
		"indexOf": func(_ context.Context, this any, args []any) (any, error) {
			arr, err := thisArray("indexOf", this)
			if err != nil {
				return nil, err
			}
			search := types.Arg(args, 0)
			for i := relativeIndex(types.Arg(args, 1), len(arr), 0); i < len(arr); i++ {
				if StrictEqual(arr[i], search) {
					return float64(i), nil
				}
			}
			return float64(-1), nil
		},
		"lastIndexOf": func(_ context.Context, this any, args []any) (any, error) {
			arr, err := thisArray("lastIndexOf", this)
			if err != nil {
				return nil, err
			}
			search := types.Arg(args, 0)
			for i := len(arr) - 1; i >= 0; i-- {
				if StrictEqual(arr[i], search) {
					return float64(i), nil
				}
			}
			return float64(-1), nil
		},
		"includes": func(_ context.Context, this any, args []any) (any, error) {
			arr, err := thisArray("includes", this)
			if err != nil {
				return nil, err
			}
			search := types.Arg(args, 0)
			for i := relativeIndex(types.Arg(args, 1), len(arr), 0); i < len(arr); i++ {
				if sameValueZero(arr[i], search) {
					return true, nil
				}
			}
			return false, nil
		},
		"join": func(_ context.Context, this any, args []any) (any, error) {
			arr, err := thisArray("join", this)
			if err != nil {
				return nil, err
			}
			sep := ","
			if s := types.Arg(args, 0); !types.IsUndefined(s) {
				sep = ToString(s)
			}
			return joinValues(arr, sep), nil
		},
		"slice": func(_ context.Context, this any, args []any) (any, error) {
			arr, err := thisArray("slice", this)
			if err != nil {
				return nil, err
			}
			start := relativeIndex(types.Arg(args, 0), len(arr), 0)
			end := relativeIndex(types.Arg(args, 1), len(arr), len(arr))
			out := []any{}
			if start < end {
				out = append(out, arr[start:end]...)
			}
			return out, nil
		},
		"concat": func(_ context.Context, this any, args []any) (any, error) {
			arr, err := thisArray("concat", this)
			if err != nil {
				return nil, err
			}
			out := append([]any{}, arr...)
			for _, a := range args {
				if items, ok := a.([]any); ok {
					out = append(out, items...)
					continue
				}
				out = append(out, a)
			}
			return out, nil
		},
		"at": func(_ context.Context, this any, args []any) (any, error) {
			arr, err := thisArray("at", this)
			if err != nil {
				return nil, err
			}
			i := clampInt(ToIntegerOrInfinity(types.Arg(args, 0)))
			if i < 0 {
				i += len(arr)
			}
			if i < 0 || i >= len(arr) {
				return types.Undefined, nil
			}
			return arr[i], nil
		},
		"flat": func(_ context.Context, this any, args []any) (any, error) {
			arr, err := thisArray("flat", this)
			if err != nil {
				return nil, err
			}
			depth := 1
			if d := types.Arg(args, 0); !types.IsUndefined(d) {
				depth = clampInt(ToIntegerOrInfinity(d))
			}
			return flatten(arr, depth, nil)
		},
		"toString": func(_ context.Context, this any, _ []any) (any, error) {
			return ToString(this), nil
		},
	}
}

func arrayReduce(ctx context.Context, this any, args []any) (any, error) {
	arr, err := thisArray("reduce", this)
	if err != nil {
		return nil, err
	}
	fn := asCallable(types.Arg(args, 0))
	if fn == nil {
		return nil, types.Errorf(types.KindType, "%s is not a function", ToString(types.Arg(args, 0)))
	}

	start := 0
	var acc any
	if len(args) >= 2 {
		acc = args[1]
	} else {
		if len(arr) == 0 {
			return nil, types.NewError(types.KindType, "Reduce of empty array with no initial value")
		}
		acc = arr[0]
		start = 1
	}

	for i := start; i < len(arr); i++ {
		acc, err = fn.Call(ctx, types.Undefined, []any{acc, arr[i], float64(i), arr})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// flatten spreads nested arrays up to depth levels. seen holds the arrays
// being flattened further up the stack; meeting one again is a cycle that
// would never terminate at unbounded depth.
func flatten(arr []any, depth int, seen map[*any]struct{}) ([]any, error) {
	out := make([]any, 0, len(arr))
	for _, el := range arr {
		inner, ok := el.([]any)
		if !ok || depth <= 0 {
			out = append(out, el)
			continue
		}
		if len(inner) == 0 {
			continue
		}
		id := &inner[0]
		if _, cyclic := seen[id]; cyclic {
			return nil, types.NewError(types.KindRange, "Maximum call stack size exceeded")
		}
		if seen == nil {
			seen = make(map[*any]struct{})
		}
		seen[id] = struct{}{}
		flat, err := flatten(inner, depth-1, seen)
		delete(seen, id)
		if err != nil {
			return nil, err
		}
		out = append(out, flat...)
	}
	return out, nil
}

// sameValueZero is === except that NaN equals NaN.
func sameValueZero(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok && math.IsNaN(af) && math.IsNaN(bf) {
		return true
	}
	return StrictEqual(a, b)
}
