package evaluator

import (
	"context"
	"reflect"
	"strconv"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// evalChain evaluates a member/call chain. Besides the value it returns the
// receiver the value was read from, which becomes "this" when the value is
// called, and whether an optional link short-circuited the chain. Once a link
// short-circuits, every following link is skipped.
func (e *Evaluator) evalChain(ctx context.Context, node types.Node, evalCtx *EvalContext) (value, this any, short bool, err error) {
	switch n := node.(type) {
	case *types.MemberExpression:
		obj, _, short, err := e.evalChainLink(ctx, n.Object, evalCtx)
		if err != nil || short {
			return nil, nil, short, err
		}
		if n.Optional && types.IsNullish(obj) {
			return nil, nil, true, nil
		}
		key, err := e.memberKey(ctx, n, evalCtx)
		if err != nil {
			return nil, nil, false, err
		}
		v, err := GetMember(obj, key)
		if err != nil {
			return nil, nil, false, err
		}
		return v, obj, false, nil

	case *types.CallExpression:
		fn, recv, short, err := e.evalCallee(ctx, n.Callee, evalCtx)
		if err != nil || short {
			return nil, nil, short, err
		}
		if n.Optional && types.IsNullish(fn) {
			return nil, nil, true, nil
		}
		args, err := e.evalArguments(ctx, n.Arguments, evalCtx)
		if err != nil {
			return nil, nil, false, err
		}
		v, err := callValue(ctx, fn, recv, args)
		if err != nil {
			return nil, nil, false, err
		}
		return v, nil, false, nil
	}

	v, err := e.evalNode(ctx, node, evalCtx)
	return v, nil, false, err
}

// evalChainLink evaluates the object part of a chain link, continuing the
// chain when it is itself a member or call.
func (e *Evaluator) evalChainLink(ctx context.Context, node types.Node, evalCtx *EvalContext) (any, any, bool, error) {
	switch node.(type) {
	case *types.MemberExpression, *types.CallExpression:
		return e.evalChain(ctx, node, evalCtx)
	}
	v, err := e.evalNode(ctx, node, evalCtx)
	return v, nil, false, err
}

// evalCallee resolves a callee to the function value and its receiver.
// Identifier callees are called with the scope object that holds the name;
// member callees with the object the member was read from; anything else
// gets undefined.
func (e *Evaluator) evalCallee(ctx context.Context, node types.Node, evalCtx *EvalContext) (fn, this any, short bool, err error) {
	switch n := node.(type) {
	case *types.Identifier:
		scope, v, ok := evalCtx.Lookup(n.Name)
		if !ok {
			return nil, nil, false, types.Errorf(types.KindReference, "Variable %s is undefined", n.Name)
		}
		if g, global := scope.(globalScope); global {
			scope = map[string]any(g)
		}
		return v, scope, false, nil
	case *types.MemberExpression, *types.CallExpression:
		fn, this, short, err := e.evalChain(ctx, node, evalCtx)
		if this == nil {
			this = types.Undefined
		}
		return fn, this, short, err
	}
	v, err := e.evalNode(ctx, node, evalCtx)
	return v, types.Undefined, false, err
}

// memberKey returns the property key of a member expression: the name for
// a.b, the evaluated property converted to a key for a[b].
func (e *Evaluator) memberKey(ctx context.Context, n *types.MemberExpression, evalCtx *EvalContext) (string, error) {
	if !n.Computed {
		if id, ok := n.Property.(*types.Identifier); ok {
			return id.Name, nil
		}
	}
	v, err := e.evalNode(ctx, n.Property, evalCtx)
	if err != nil {
		return "", err
	}
	return ToPropertyKey(v), nil
}

// ToPropertyKey converts a value to the string used to index objects,
// arrays and strings.
func ToPropertyKey(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ToString(v)
}

// GetMember reads property key of obj with JavaScript semantics. Missing
// properties read as undefined; reading from null or undefined fails.
func GetMember(obj any, key string) (any, error) {
	if types.IsNullish(obj) {
		return nil, types.Errorf(types.KindType, "Cannot read properties of %s (reading '%s')", ToString(obj), key)
	}

	switch o := obj.(type) {
	case map[string]any:
		if v, ok := o[key]; ok {
			return v, nil
		}
		return objectMember(key), nil
	case []any:
		if key == "length" {
			return float64(len(o)), nil
		}
		if i, ok := arrayIndex(key); ok {
			if i < len(o) {
				return o[i], nil
			}
			return types.Undefined, nil
		}
		return lookupMethod(arrayMethods, key), nil
	case string:
		if key == "length" {
			return float64(utf16Len(o)), nil
		}
		if i, ok := arrayIndex(key); ok {
			units := toUTF16(o)
			if i < len(units) {
				return fromUTF16(units[i : i+1]), nil
			}
			return types.Undefined, nil
		}
		return lookupMethod(stringMethods, key), nil
	case bool:
		return lookupMethod(booleanMethods, key), nil
	case types.PropertyGetter:
		if v, ok := o.Get(key); ok {
			return v, nil
		}
		if _, ok := obj.(types.Callable); ok {
			return lookupMethod(functionMethods, key), nil
		}
		return objectMember(key), nil
	case types.Callable:
		return lookupMethod(functionMethods, key), nil
	}

	if _, ok := toFloat(obj); ok {
		return lookupMethod(numberMethods, key), nil
	}
	if asGoFunc(obj) != nil {
		return lookupMethod(functionMethods, key), nil
	}
	return getReflectMember(obj, key), nil
}

// objectMember returns the built-in member shared by all objects.
func objectMember(key string) any {
	return lookupMethod(objectMethods, key)
}

func lookupMethod(methods map[string]types.NativeFunc, key string) any {
	if m, ok := methods[key]; ok {
		return m
	}
	return types.Undefined
}

// getReflectMember reads exported struct fields, string-keyed maps and
// slices of other Go types, so that host values can be used as scopes and
// members without conversion.
func getReflectMember(obj any, key string) any {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return types.Undefined
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return types.Undefined
		}
		v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return types.Undefined
		}
		return v.Interface()
	case reflect.Slice, reflect.Array:
		if key == "length" {
			return float64(rv.Len())
		}
		if i, ok := arrayIndex(key); ok && i < rv.Len() {
			return rv.Index(i).Interface()
		}
	case reflect.Struct:
		f := rv.FieldByName(key)
		if f.IsValid() && f.CanInterface() {
			return f.Interface()
		}
	}
	return types.Undefined
}

// arrayIndex parses a canonical non-negative integer key.
func arrayIndex(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return i, true
}

// HasProperty implements the in operator.
func HasProperty(obj any, key string) (bool, error) {
	switch o := obj.(type) {
	case map[string]any:
		_, ok := o[key]
		return ok, nil
	case []any:
		if key == "length" {
			return true, nil
		}
		i, ok := arrayIndex(key)
		return ok && i < len(o), nil
	case types.PropertyGetter:
		_, ok := o.Get(key)
		return ok, nil
	case types.Callable:
		return false, nil
	}
	return false, types.Errorf(types.KindType, "Cannot use 'in' operator to search for '%s' in %s", key, ToString(obj))
}

// SetMember assigns value to property key of obj.
func SetMember(obj any, key string, value any) error {
	if types.IsNullish(obj) {
		return types.Errorf(types.KindType, "Cannot set properties of %s (setting '%s')", ToString(obj), key)
	}

	switch o := obj.(type) {
	case map[string]any:
		o[key] = value
		return nil
	case types.PropertySetter:
		return o.Set(key, value)
	case []any:
		i, ok := arrayIndex(key)
		if !ok || i >= len(o) {
			return types.Errorf(types.KindType, "Array index %s not supported for assignment", key)
		}
		o[i] = value
		return nil
	}
	return types.Errorf(types.KindType, "Property %s of %s not supported for assignment", key, TypeOf(obj))
}
