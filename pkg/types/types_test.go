package types_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/cspexpr/pkg/types"
)

func TestObjectOrder(t *testing.T) {
	o := types.NewObject().Put("z", 1).Put("a", 2).Put("m", 3)
	assert.Equal(t, []string{"z", "a", "m"}, o.Keys())

	// Overwriting keeps the original position
	o.Put("z", 10)
	assert.Equal(t, []string{"z", "a", "m"}, o.Keys())
	v, ok := o.Get("z")
	assert.True(t, ok)
	assert.Equal(t, 10, v)

	o.Delete("a")
	o.Delete("missing")
	assert.Equal(t, []string{"z", "m"}, o.Keys())
	assert.Equal(t, 2, o.Len())
	assert.False(t, o.Has("a"))

	// Keys returns a copy
	keys := o.Keys()
	keys[0] = "changed"
	assert.Equal(t, []string{"z", "m"}, o.Keys())

	assert.Equal(t, map[string]any{"z": 10, "m": 3}, o.ToMap())
}

func TestObjectFreeze(t *testing.T) {
	o := types.NewObject().Put("a", 1)
	assert.False(t, o.Frozen())
	assert.Same(t, o, o.Freeze())
	assert.True(t, o.Frozen())

	err := o.Set("a", 2)
	require.Error(t, err)
	assert.Equal(t, types.KindType, types.KindOf(err))
	require.Error(t, o.Set("b", 3))

	o.Delete("a")
	assert.Equal(t, []string{"a"}, o.Keys())
	v, _ := o.Get("a")
	assert.Equal(t, 1, v)
}

func TestObjectJSON(t *testing.T) {
	o := types.NewObject().Put("b", 1).Put("a", []any{"x", nil}).Put("u", types.Undefined)
	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":["x",null],"u":null}`, string(data))

	from := types.ObjectFromMap(map[string]any{"c": 1, "a": 2, "b": 3})
	assert.Equal(t, []string{"a", "b", "c"}, from.Keys())
}

func TestUndefined(t *testing.T) {
	assert.True(t, types.IsUndefined(types.Undefined))
	assert.False(t, types.IsUndefined(nil))
	assert.True(t, types.IsNullish(nil))
	assert.True(t, types.IsNullish(types.Undefined))
	assert.False(t, types.IsNullish(false))
	assert.Equal(t, "undefined", fmt.Sprint(types.Undefined))

	assert.Equal(t, types.Undefined, types.Arg(nil, 0))
	assert.Equal(t, "a", types.Arg([]any{"a"}, 0))
}

func TestNativeFunc(t *testing.T) {
	var fn types.Callable = types.NativeFunc(func(_ context.Context, this any, args []any) (any, error) {
		return fmt.Sprint(this, len(args)), nil
	})
	v, err := fn.Call(context.Background(), "self", []any{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "self2", v)
}

func TestErrors(t *testing.T) {
	serr := types.NewSyntaxError("Unexpected end of expression", 3)
	assert.Equal(t, "Unexpected end of expression at character 3", serr.Error())
	assert.Equal(t, 3, serr.Index)

	wrapped := types.WrapExpression(serr, "1 +")
	assert.Equal(t, `Unexpected end of expression at character 3 in expression "1 +"`, wrapped.Error())
	assert.True(t, types.IsSyntaxError(wrapped))
	assert.Empty(t, serr.Expression, "wrapping copies the error")

	// Already attributed errors are left alone
	assert.Same(t, wrapped, types.WrapExpression(wrapped, "other"))

	cause := errors.New("boom")
	wrapped = types.WrapExpression(cause, "f()")
	assert.True(t, types.IsTypeError(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, `boom in expression "f()"`, wrapped.Error())

	assert.NoError(t, types.WrapExpression(nil, "x"))

	ref := types.Errorf(types.KindReference, "Variable %s is undefined", "foo")
	assert.True(t, types.IsReferenceError(fmt.Errorf("outer: %w", ref)))
	assert.Equal(t, -1, ref.Index)
	assert.Equal(t, types.ErrorKind(""), types.KindOf(cause))

	withCause := types.NewError(types.KindRange, "too deep").WithCause(cause)
	assert.ErrorIs(t, withCause, cause)
	assert.Equal(t, types.KindRange, types.KindOf(withCause))
}

func TestExpression(t *testing.T) {
	ast := &types.Identifier{Name: "a"}
	expr := types.NewCompiled(ast, "a")
	assert.Same(t, ast, expr.AST())
	assert.Equal(t, "a", expr.Source())
	assert.Equal(t, "a", expr.String())
}

func TestWalk(t *testing.T) {
	// a ? [b, , ...c] : { [k]: v, w }
	root := &types.ConditionalExpression{
		Test: &types.Identifier{Name: "a"},
		Consequent: &types.ArrayExpression{Elements: []types.Node{
			&types.Identifier{Name: "b"},
			nil,
			&types.SpreadElement{Argument: &types.Identifier{Name: "c"}},
		}},
		Alternate: &types.ObjectExpression{Properties: []*types.Property{
			{Key: &types.Identifier{Name: "k"}, Value: &types.Identifier{Name: "v"}, Computed: true},
			{Key: &types.Identifier{Name: "w"}, Value: &types.Identifier{Name: "w"}, Shorthand: true},
		}},
	}

	var names []string
	types.Walk(root, func(n types.Node) bool {
		if id, ok := n.(*types.Identifier); ok {
			names = append(names, id.Name)
		}
		// Skip array contents
		return n.Type() != types.NodeArray
	})
	assert.Equal(t, []string{"a", "k", "v", "w"}, names)

	assert.Equal(t, 4, types.Depth(root))
	assert.Equal(t, 0, types.Depth(nil))
	assert.Len(t, types.Children(root), 3)
	assert.Empty(t, types.Children(&types.Literal{Value: 1.0}))

	body := &types.FunctionBody{}
	assert.Empty(t, types.Children(body))
	fn := &types.ArrowFunctionExpression{Params: []*types.Identifier{{Name: "x"}}, Body: body}
	assert.Len(t, types.Children(fn), 2)
}
