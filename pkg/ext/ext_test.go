package ext_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/cspexpr"
	"github.com/sandrolain/cspexpr/pkg/evaluator"
	"github.com/sandrolain/cspexpr/pkg/ext"
	"github.com/sandrolain/cspexpr/pkg/ext/extconv"
	"github.com/sandrolain/cspexpr/pkg/ext/extjson"
	"github.com/sandrolain/cspexpr/pkg/types"
)

func eval(t *testing.T, expr string, scope any, opts ...evaluator.EvalOption) any {
	t.Helper()
	result, err := cspexpr.Eval(expr, scope, opts...)
	require.NoError(t, err, "Eval(%q)", expr)
	return result
}

type evalCase struct {
	expr string
	want any
}

func runCases(t *testing.T, opt evaluator.EvalOption, tests []evalCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.expr, nil, opt))
		})
	}
}

// ── Math ───────────────────────────────────────────────────────────────────

func TestWithMath(t *testing.T) {
	runCases(t, ext.WithMath(), []evalCase{
		{`Math.abs(-3)`, float64(3)},
		{`Math.floor(2.7)`, float64(2)},
		{`Math.ceil("2.1")`, float64(3)},
		{`Math.round(2.5)`, float64(3)},
		{`Math.round(-2.5)`, float64(-2)},
		{`Math.trunc(-2.7)`, float64(-2)},
		{`Math.sign(-8)`, float64(-1)},
		{`Math.min(3, 1, 2)`, float64(1)},
		{`Math.max(3, 1, 2)`, float64(3)},
		{`Math.max()`, math.Inf(-1)},
		{`Math.min()`, math.Inf(1)},
		{`Math.pow(2, 10)`, float64(1024)},
		{`Math.sqrt(16)`, float64(4)},
		{`Math.cbrt(27)`, float64(3)},
		{`Math.exp(0)`, float64(1)},
		{`Math.log(1)`, float64(0)},
		{`Math.PI`, math.Pi},
		{`Math.E`, math.E},
		{`Infinity`, math.Inf(1)},
		{`-Infinity < 0`, true},
		{`typeof Math.abs`, "function"},
	})
}

func TestWithMath_NaN(t *testing.T) {
	for _, expr := range []string{`NaN`, `Math.max(1, "x")`, `Math.pow(1, Infinity)`, `Math.sqrt(-1)`} {
		v := eval(t, expr, nil, ext.WithMath())
		f, ok := v.(float64)
		require.True(t, ok, expr)
		assert.True(t, math.IsNaN(f), expr)
	}
}

func TestWithMath_Random(t *testing.T) {
	v := eval(t, `Math.random()`, nil, ext.WithMath())
	f, ok := v.(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, f, 0.0)
	assert.Less(t, f, 1.0)
}

// ── JSON ───────────────────────────────────────────────────────────────────

func TestWithJSON_Stringify(t *testing.T) {
	runCases(t, ext.WithJSON(), []evalCase{
		{`JSON.stringify({ b: 1, a: "x" })`, `{"b":1,"a":"x"}`},
		{`JSON.stringify([1, "two", null, true])`, `[1,"two",null,true]`},
		{`JSON.stringify({ a: undefined, f: () => 1, n: null })`, `{"n":null}`},
		{`JSON.stringify([undefined, () => 1])`, `[null,null]`},
		{`JSON.stringify(1 / 0)`, `null`},
		{`JSON.stringify("<a & b>")`, `"<a & b>"`},
		{`JSON.stringify({ "<k>": ["a&b"] })`, `{"<k>":["a&b"]}`},
		{`JSON.stringify({ a: [1, 2] }, null, 2)`, "{\n  \"a\": [\n    1,\n    2\n  ]\n}"},
		{`JSON.stringify({}, null, 2)`, `{}`},
		{`JSON.stringify([], null, "\t")`, `[]`},
		{`JSON.stringify(undefined)`, types.Undefined},
		{`JSON.stringify(x => x)`, types.Undefined},
	})
}

func TestWithJSON_Parse(t *testing.T) {
	v := eval(t, `JSON.parse('{"a": [1, 2.5, "x"], "b": null}')`, nil, ext.WithJSON())
	assert.Equal(t, map[string]any{"a": []any{float64(1), 2.5, "x"}, "b": nil}, v)

	assert.Equal(t, float64(3), eval(t, `JSON.parse('{"a": [1, 2]}').a.length + 1`, nil, ext.WithJSON()))

	_, err := cspexpr.Eval(`JSON.parse("{")`, nil, ext.WithJSON())
	require.Error(t, err)
	assert.True(t, types.IsSyntaxError(err))
}

func TestStringify_GoValues(t *testing.T) {
	type point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}

	s, ok, err := extjson.Stringify(map[string]any{"p": point{1, 2}, "n": int64(3)}, "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"n":3,"p":{"x":1,"y":2}}`, s)

	obj := types.NewObject().Put("z", 1).Put("a", []any{types.NewObject()})
	s, ok, err = extjson.Stringify(obj, " ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "{\n \"z\": 1,\n \"a\": [\n  {}\n ]\n}", s)
}

func TestStringify_NoHTMLEscape(t *testing.T) {
	type tag struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name   string
		value  any
		indent string
		want   string
	}{
		{"string", "<a & b>", "", `"<a & b>"`},
		{"key", map[string]any{"a<b": "c>d"}, "", `{"a<b":"c>d"}`},
		{"struct", tag{Name: "<&>"}, "", `{"name":"<&>"}`},
		{"nested struct", []any{tag{Name: "x&y"}}, " ", "[\n {\n  \"name\": \"x&y\"\n }\n]"},
		{"typed map", map[string]string{"k": "<v>"}, "", `{"k":"<v>"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok, err := extjson.Stringify(tt.value, tt.indent)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, s)
		})
	}
}

// ── Conversions ────────────────────────────────────────────────────────────

func TestWithConv(t *testing.T) {
	runCases(t, ext.WithConv(), []evalCase{
		{`String(12)`, "12"},
		{`String(null)`, "null"},
		{`String()`, ""},
		{`String([1, [2, 3]])`, "1,2,3"},
		{`Number("42")`, float64(42)},
		{`Number("0x1f")`, float64(31)},
		{`Number("")`, float64(0)},
		{`Number()`, float64(0)},
		{`Number(true)`, float64(1)},
		{`Boolean("")`, false},
		{`Boolean("0")`, true},
		{`Boolean()`, false},
		{`parseInt("42px")`, float64(42)},
		{`parseInt("  -17")`, float64(-17)},
		{`parseInt("0x1A")`, float64(26)},
		{`parseInt("ff", 16)`, float64(255)},
		{`parseInt("101", 2)`, float64(5)},
		{`parseFloat("3.14abc")`, 3.14},
		{`parseFloat(".5")`, 0.5},
		{`parseFloat("1e3x")`, float64(1000)},
		{`parseFloat("-Infinityx")`, math.Inf(-1)},
		{`isNaN("abc")`, true},
		{`isNaN("12")`, false},
		{`isFinite(1 / 0)`, false},
		{`isFinite("5")`, true},
	})
}

func TestWithConv_NaN(t *testing.T) {
	for _, expr := range []string{`parseInt("px")`, `parseInt("1", 1)`, `parseFloat("")`, `Number("1_000")`, `Number(undefined)`} {
		v := eval(t, expr, nil, ext.WithConv())
		f, ok := v.(float64)
		require.True(t, ok, expr)
		assert.True(t, math.IsNaN(f), expr)
	}
}

func TestConvSingleFunction(t *testing.T) {
	v := eval(t, `parseInt(s)`, map[string]any{"s": "7"}, evaluator.WithFunctions(extconv.ParseInt()))
	assert.Equal(t, float64(7), v)

	_, err := cspexpr.Eval(`parseFloat(s)`, map[string]any{"s": "7"}, evaluator.WithFunctions(extconv.ParseInt()))
	require.Error(t, err)
	assert.True(t, types.IsReferenceError(err))
}

// ── Array ──────────────────────────────────────────────────────────────────

func TestWithArray(t *testing.T) {
	runCases(t, ext.WithArray(), []evalCase{
		{`Array.isArray([1])`, true},
		{`Array.isArray("x")`, false},
		{`Array.of(1, 2)`, []any{float64(1), float64(2)}},
		{`Array.from("héllo").length`, float64(5)},
		{`Array.from([1, 2], x => x * 10)`, []any{float64(10), float64(20)}},
		{`Array.from({ length: 2, 0: "a", 1: "b" })`, []any{"a", "b"}},
		{`Array(3).length`, float64(3)},
		{`new Array(1, 2)`, []any{float64(1), float64(2)}},
		{`[] instanceof Array`, true},
		{`({}) instanceof Array`, false},
		{`[] instanceof Object`, true},
	})
}

func TestWithArray_Errors(t *testing.T) {
	tests := []struct {
		expr string
		kind types.ErrorKind
		desc string
	}{
		{`Array(-1)`, types.KindRange, "Invalid array length"},
		{`Array(1.5)`, types.KindRange, "Invalid array length"},
		{`Array(4294967295)`, types.KindRange, "Invalid array length"},
		{`new Array(1e10)`, types.KindRange, "Invalid array length"},
		{`Array.from({ length: 1e20 })`, types.KindRange, "Invalid array length"},
		{`Array.from(null)`, types.KindType, "null is not iterable"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := cspexpr.Eval(tt.expr, nil, ext.WithArray())
			require.Error(t, err)
			var e *types.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Contains(t, e.Error(), tt.desc)
		})
	}
}

// ── WithAll ────────────────────────────────────────────────────────────────

func TestWithAll(t *testing.T) {
	runCases(t, ext.WithAll(), []evalCase{
		{`JSON.stringify(Array.of(Math.max(1, 2), parseInt("3")))`, `[2,3]`},
		{`String(Math.PI).slice(0, 4)`, "3.14"},
		{`isNaN(NaN) && !isFinite(Infinity)`, true},
		{`Object.keys(JSON.parse('{"b":1,"a":2}'))`, []any{"a", "b"}},
	})
}

func TestGlobals_ReadOnly(t *testing.T) {
	tests := []string{
		`Math.PI = 3`,
		`Math.abs = x => x`,
		`JSON.extra = 1`,
		`Object.assign(Math, { a: 1 })`,
	}
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			_, err := cspexpr.Eval(expr, nil, ext.WithAll())
			require.Error(t, err)
			assert.True(t, types.IsTypeError(err))
			assert.Contains(t, err.Error(), "read only property")
		})
	}
	assert.Equal(t, math.Pi, eval(t, `Math.PI`, nil, ext.WithAll()))
}

func TestGlobals_ScopeShadowing(t *testing.T) {
	ev := evaluator.New(ext.WithAll())
	h, err := ev.CreateEvaluator(`Math.abs(-1)`)
	require.NoError(t, err)

	// A scope entry shadows the global of the same name.
	local := map[string]any{"Math": map[string]any{"abs": func(args ...any) (any, error) { return "local", nil }}}
	v, err := h.Evaluate(context.Background(), local)
	require.NoError(t, err)
	assert.Equal(t, "local", v)

	v, err = h.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(1), v)
}
