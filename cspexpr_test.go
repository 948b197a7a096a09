package cspexpr_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/cspexpr"
	"github.com/sandrolain/cspexpr/pkg/evaluator"
	"github.com/sandrolain/cspexpr/pkg/ext"
	"github.com/sandrolain/cspexpr/pkg/types"
)

func TestEval(t *testing.T) {
	scope := map[string]any{
		"user":  map[string]any{"name": "ada"},
		"items": []any{float64(1), float64(2), float64(3)},
	}

	v, err := cspexpr.Eval("user.name.toUpperCase()", scope)
	require.NoError(t, err)
	assert.Equal(t, "ADA", v)

	v, err = cspexpr.Eval("items.filter(i => i > 1).length", scope)
	require.NoError(t, err)
	assert.Equal(t, float64(2), v)

	v, err = cspexpr.Eval("Math.max(...items)", scope, ext.WithMath())
	require.NoError(t, err)
	assert.Equal(t, float64(3), v)

	v, err = cspexpr.Eval("1 + 1", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(2), v)
}

func TestEvalErrors(t *testing.T) {
	_, err := cspexpr.Eval("a +", nil)
	require.Error(t, err)
	assert.True(t, types.IsSyntaxError(err))
	assert.Contains(t, err.Error(), `in expression "a +"`)

	_, err = cspexpr.Eval("missing.x", nil)
	require.Error(t, err)
	assert.True(t, types.IsReferenceError(err))
}

func TestEvalWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cspexpr.EvalWithContext(ctx, "[1, 2, 3].map(x => x * 2)", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompile(t *testing.T) {
	expr, err := cspexpr.Compile("a * 2")
	require.NoError(t, err)
	assert.Equal(t, "a * 2", expr.Source())

	ev := evaluator.New()
	for _, a := range []float64{1, 2, 3} {
		v, err := ev.Evaluate(context.Background(), expr, map[string]any{"a": a})
		require.NoError(t, err)
		assert.Equal(t, a*2, v)
	}

	assert.NotPanics(t, func() { cspexpr.MustCompile("a") })
	assert.PanicsWithValue(t,
		`cspexpr: Compile("(a"): Expected ) but got end of expression at character 2 in expression "(a"`,
		func() { cspexpr.MustCompile("(a") })
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, cspexpr.Version())
}

var fixtureScope = map[string]any{
	"name": "Alice",
	"age":  float64(30),
	"items": []any{
		map[string]any{"name": "foo", "price": float64(10)},
		map[string]any{"name": "bar", "price": float64(200)},
	},
}

func FuzzEval(f *testing.F) {
	seeds := []string{
		`name`,
		`items.filter(i => i.price > 100)[0].name`,
		`items.map(i => i.price).reduce((a, b) => a + b, 0)`,
		"`${name} is ${age}`",
		`age > 18 ? "adult" : "minor"`,
		`items?.[5]?.name ?? "none"`,
		`1 / 0`,
		`missing.path`,
		`x = 1; x + 1`,
		``,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		scope := map[string]any{}
		_, _ = cspexpr.EvalWithContext(ctx, input, scope, evaluator.WithGlobalScope(fixtureScope))
	})
}
