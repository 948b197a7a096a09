package evaluator

import (
	"context"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// builtinGlobals returns the minimal global scope every evaluator starts
// from. Constructor expressions and object checks rely on Object being
// resolvable even when the caller configures no globals.
func builtinGlobals() map[string]any {
	return map[string]any{
		"Object": ObjectConstructor{},
	}
}

// ObjectConstructor is the global Object: callable, constructable, the
// right-hand side of instanceof and the holder of the Object.* helpers.
type ObjectConstructor struct{}

var objectStatics = map[string]types.NativeFunc{
	"keys":        objectKeys,
	"values":      objectValues,
	"entries":     objectEntries,
	"assign":      objectAssign,
	"fromEntries": objectFromEntries,
	"freeze":      objectIdentity,
}

// Call implements Object(value).
func (ObjectConstructor) Call(_ context.Context, _ any, args []any) (any, error) {
	v := types.Arg(args, 0)
	if types.IsNullish(v) {
		return types.NewObject(), nil
	}
	return v, nil
}

// Construct implements new Object(value).
func (o ObjectConstructor) Construct(ctx context.Context, args []any) (any, error) {
	return o.Call(ctx, types.Undefined, args)
}

// HasInstance reports whether v is an object, array or function.
func (ObjectConstructor) HasInstance(v any) bool {
	return isObjectLike(v)
}

// Get returns the Object.* helper named key.
func (ObjectConstructor) Get(key string) (any, bool) {
	fn, ok := objectStatics[key]
	return fn, ok
}

// String renders the constructor like a native function.
func (ObjectConstructor) String() string {
	return "function Object() { [native code] }"
}

func requireObject(name string, v any) error {
	if types.IsNullish(v) {
		return types.Errorf(types.KindType, "%s called on %s", name, ToString(v))
	}
	return nil
}

func objectKeys(_ context.Context, _ any, args []any) (any, error) {
	v := types.Arg(args, 0)
	if err := requireObject("Object.keys", v); err != nil {
		return nil, err
	}
	keys := OwnKeys(v)
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out, nil
}

func objectValues(_ context.Context, _ any, args []any) (any, error) {
	v := types.Arg(args, 0)
	if err := requireObject("Object.values", v); err != nil {
		return nil, err
	}
	keys := OwnKeys(v)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		val, err := GetMember(v, k)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

func objectEntries(_ context.Context, _ any, args []any) (any, error) {
	v := types.Arg(args, 0)
	if err := requireObject("Object.entries", v); err != nil {
		return nil, err
	}
	keys := OwnKeys(v)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		val, err := GetMember(v, k)
		if err != nil {
			return nil, err
		}
		out = append(out, []any{k, val})
	}
	return out, nil
}

func objectAssign(_ context.Context, _ any, args []any) (any, error) {
	target := types.Arg(args, 0)
	if err := requireObject("Object.assign", target); err != nil {
		return nil, err
	}
	for _, src := range args[1:] {
		if types.IsNullish(src) {
			continue
		}
		for _, k := range OwnKeys(src) {
			val, err := GetMember(src, k)
			if err != nil {
				return nil, err
			}
			if err := SetMember(target, k, val); err != nil {
				return nil, err
			}
		}
	}
	return target, nil
}

func objectFromEntries(_ context.Context, _ any, args []any) (any, error) {
	entries, ok := types.Arg(args, 0).([]any)
	if !ok {
		return nil, types.NewError(types.KindType, "Object.fromEntries requires an array of entries")
	}
	obj := types.NewObject()
	for _, entry := range entries {
		pair, ok := entry.([]any)
		if !ok {
			return nil, types.Errorf(types.KindType, "Iterator value %s is not an entry object", ToString(entry))
		}
		obj.Put(ToPropertyKey(types.Arg(pair, 0)), types.Arg(pair, 1))
	}
	return obj, nil
}

func objectIdentity(_ context.Context, _ any, args []any) (any, error) {
	return types.Arg(args, 0), nil
}

// objectMethods are the members every object inherits.
var objectMethods = map[string]types.NativeFunc{
	"hasOwnProperty": func(_ context.Context, this any, args []any) (any, error) {
		key := ToPropertyKey(types.Arg(args, 0))
		switch o := this.(type) {
		case map[string]any:
			_, ok := o[key]
			return ok, nil
		case types.PropertyGetter:
			_, ok := o.Get(key)
			return ok, nil
		}
		return false, nil
	},
	"toString": func(_ context.Context, this any, _ []any) (any, error) {
		return "[object Object]", nil
	},
	"valueOf": func(_ context.Context, this any, _ []any) (any, error) {
		return this, nil
	},
}

// booleanMethods are the members of boolean values.
var booleanMethods = map[string]types.NativeFunc{
	"toString": func(_ context.Context, this any, _ []any) (any, error) {
		return ToString(this), nil
	},
	"valueOf": func(_ context.Context, this any, _ []any) (any, error) {
		return this, nil
	},
}

// functionMethods are the members of function values.
var functionMethods = map[string]types.NativeFunc{
	"call": func(ctx context.Context, this any, args []any) (any, error) {
		var rest []any
		if len(args) > 1 {
			rest = args[1:]
		}
		return callValue(ctx, this, types.Arg(args, 0), rest)
	},
	"apply": func(ctx context.Context, this any, args []any) (any, error) {
		var rest []any
		switch a := types.Arg(args, 1).(type) {
		case []any:
			rest = a
		default:
			if !types.IsNullish(a) {
				return nil, types.NewError(types.KindType, "CreateListFromArrayLike called on non-object")
			}
		}
		return callValue(ctx, this, types.Arg(args, 0), rest)
	},
	"toString": func(_ context.Context, this any, _ []any) (any, error) {
		return ToString(this), nil
	},
}
