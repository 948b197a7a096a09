package parser_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/cspexpr/pkg/parser"
	"github.com/sandrolain/cspexpr/pkg/types"
)

func mustParse(t *testing.T, input string) types.Node {
	t.Helper()
	expr, err := parser.Parse(input)
	require.NoError(t, err, "Parse(%q)", input)
	return expr.AST()
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"42", float64(42)},
		{"1.5e10", float64(15000000000)},
		{".5", 0.5},
		{`"a\nb"`, "a\nb"},
		{`'Aé'`, "Aé"},
		{`"😀"`, "😀"},
		{`"\q"`, "q"},
		{"true", true},
		{"false", false},
		{"null", nil},
		{"undefined", types.Undefined},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lit, ok := mustParse(t, tt.input).(*types.Literal)
			require.True(t, ok)
			assert.Equal(t, tt.want, lit.Value)
		})
	}

	// Out of range literals overflow to Infinity
	lit := mustParse(t, "1e400").(*types.Literal)
	assert.Equal(t, "1e400", lit.Raw)
	assert.True(t, math.IsInf(lit.Value.(float64), 1))
}

func TestParsePrecedence(t *testing.T) {
	// 1 + 2 * 3
	bin := mustParse(t, "1 + 2 * 3").(*types.BinaryExpression)
	assert.Equal(t, "+", bin.Operator)
	assert.Equal(t, "*", bin.Right.(*types.BinaryExpression).Operator)

	// 1 - 2 - 3 is left-associative
	bin = mustParse(t, "1 - 2 - 3").(*types.BinaryExpression)
	assert.Equal(t, "-", bin.Left.(*types.BinaryExpression).Operator)
	assert.Equal(t, float64(3), bin.Right.(*types.Literal).Value)

	// 2 ** 3 ** 2 is right-associative
	bin = mustParse(t, "2 ** 3 ** 2").(*types.BinaryExpression)
	assert.Equal(t, float64(2), bin.Left.(*types.Literal).Value)
	assert.Equal(t, "**", bin.Right.(*types.BinaryExpression).Operator)

	// a || b && c
	logical := mustParse(t, "a || b && c").(*types.LogicalExpression)
	assert.Equal(t, "||", logical.Operator)
	assert.Equal(t, "&&", logical.Right.(*types.LogicalExpression).Operator)

	// a == b < c
	bin = mustParse(t, "a == b < c").(*types.BinaryExpression)
	assert.Equal(t, "==", bin.Operator)
	assert.Equal(t, "<", bin.Right.(*types.BinaryExpression).Operator)

	// -a ** 2 applies the unary operator first
	bin = mustParse(t, "-a ** 2").(*types.BinaryExpression)
	assert.Equal(t, "-", bin.Left.(*types.UnaryExpression).Operator)

	// typeof a === "b"
	bin = mustParse(t, `typeof a === "b"`).(*types.BinaryExpression)
	assert.Equal(t, "typeof", bin.Left.(*types.UnaryExpression).Operator)

	bin = mustParse(t, "x instanceof Y").(*types.BinaryExpression)
	assert.Equal(t, "instanceof", bin.Operator)
}

func TestParseConditional(t *testing.T) {
	cond := mustParse(t, "a ? .5 : b").(*types.ConditionalExpression)
	assert.Equal(t, 0.5, cond.Consequent.(*types.Literal).Value)
	assert.Equal(t, "b", cond.Alternate.(*types.Identifier).Name)

	cond = mustParse(t, "a?.5:b").(*types.ConditionalExpression)
	assert.Equal(t, 0.5, cond.Consequent.(*types.Literal).Value)

	// Nested conditionals associate to the right
	cond = mustParse(t, "a ? b : c ? d : e").(*types.ConditionalExpression)
	assert.Equal(t, types.NodeConditional, cond.Alternate.Type())
}

func TestParseMemberChains(t *testing.T) {
	call := mustParse(t, "a.b[c](d)").(*types.CallExpression)
	require.Len(t, call.Arguments, 1)
	member := call.Callee.(*types.MemberExpression)
	assert.True(t, member.Computed)
	assert.Equal(t, "c", member.Property.(*types.Identifier).Name)
	inner := member.Object.(*types.MemberExpression)
	assert.False(t, inner.Computed)
	assert.Equal(t, "b", inner.Property.(*types.Identifier).Name)

	// Reserved words are valid property names
	member = mustParse(t, "a.new.in").(*types.MemberExpression)
	assert.Equal(t, "in", member.Property.(*types.Identifier).Name)

	member = mustParse(t, "a?.b").(*types.MemberExpression)
	assert.True(t, member.Optional)

	member = mustParse(t, "a?.[0]").(*types.MemberExpression)
	assert.True(t, member.Optional)
	assert.True(t, member.Computed)

	call = mustParse(t, "a?.(1, 2)").(*types.CallExpression)
	assert.True(t, call.Optional)
	assert.Len(t, call.Arguments, 2)
}

func TestParseStatements(t *testing.T) {
	compound := mustParse(t, "a; b").(*types.Compound)
	require.Len(t, compound.Body, 2)

	compound = mustParse(t, "").(*types.Compound)
	assert.Empty(t, compound.Body)

	compound = mustParse(t, ";;").(*types.Compound)
	assert.Empty(t, compound.Body)

	// A single statement with a trailing semicolon is not wrapped
	assert.Equal(t, types.NodeIdentifier, mustParse(t, "a;").Type())

	seq := mustParse(t, "a, b, c").(*types.SequenceExpression)
	assert.Len(t, seq.Expressions, 3)
}

func TestParseAssignment(t *testing.T) {
	bin := mustParse(t, "a = b = 2").(*types.BinaryExpression)
	assert.Equal(t, "=", bin.Operator)
	assert.Equal(t, "a", bin.Left.(*types.Identifier).Name)
	assert.Equal(t, "=", bin.Right.(*types.BinaryExpression).Operator)

	bin = mustParse(t, "a.b[0] = 1").(*types.BinaryExpression)
	assert.Equal(t, types.NodeMember, bin.Left.Type())
}

func TestParseConstructors(t *testing.T) {
	arr := mustParse(t, "[1, , ...xs]").(*types.ArrayExpression)
	require.Len(t, arr.Elements, 3)
	assert.Nil(t, arr.Elements[1])
	assert.Equal(t, types.NodeSpread, arr.Elements[2].Type())

	assert.Empty(t, mustParse(t, "[]").(*types.ArrayExpression).Elements)
	assert.Len(t, mustParse(t, "[1,]").(*types.ArrayExpression).Elements, 1)

	obj := mustParse(t, `({a, "b": 1, 2: 3, [k]: 4, new: 5})`).(*types.ObjectExpression)
	require.Len(t, obj.Properties, 5)
	assert.True(t, obj.Properties[0].Shorthand)
	assert.Equal(t, "a", obj.Properties[0].Value.(*types.Identifier).Name)
	assert.Equal(t, "b", obj.Properties[1].Key.(*types.Literal).Value)
	assert.Equal(t, float64(2), obj.Properties[2].Key.(*types.Literal).Value)
	assert.True(t, obj.Properties[3].Computed)
	assert.Equal(t, "new", obj.Properties[4].Key.(*types.Identifier).Name)

	tpl := mustParse(t, "`a${b}c${d + 1}`").(*types.TemplateLiteral)
	require.Len(t, tpl.Quasis, 3)
	require.Len(t, tpl.Expressions, 2)
	assert.Equal(t, "a", tpl.Quasis[0].Cooked)
	assert.True(t, tpl.Quasis[2].Tail)
	assert.Equal(t, "", tpl.Quasis[2].Cooked)

	tpl = mustParse(t, "`line\\n${`in${x}`}`").(*types.TemplateLiteral)
	assert.Equal(t, `line\n`, tpl.Quasis[0].Raw)
	assert.Equal(t, "line\n", tpl.Quasis[0].Cooked)
	assert.Equal(t, types.NodeTemplate, tpl.Expressions[0].Type())

	newExpr := mustParse(t, "new a.B(1)").(*types.NewExpression)
	assert.Equal(t, types.NodeMember, newExpr.Callee.Type())
	assert.Len(t, newExpr.Arguments, 1)

	// Calls after new apply to the constructed value
	call := mustParse(t, "new A()()").(*types.CallExpression)
	assert.Equal(t, types.NodeNew, call.Callee.Type())
}

func TestParseFunctions(t *testing.T) {
	arrow := mustParse(t, "x => x * 2").(*types.ArrowFunctionExpression)
	require.Len(t, arrow.Params, 1)
	assert.True(t, arrow.ExpressionBody)

	arrow = mustParse(t, "(a, b) => a + b").(*types.ArrowFunctionExpression)
	assert.Len(t, arrow.Params, 2)

	arrow = mustParse(t, "() => { return 1 }").(*types.ArrowFunctionExpression)
	assert.Empty(t, arrow.Params)
	assert.False(t, arrow.ExpressionBody)
	body := arrow.Body.(*types.FunctionBody)
	assert.True(t, body.Return)

	// A parenthesised expression that is not a parameter list
	bin := mustParse(t, "(a + b) * c").(*types.BinaryExpression)
	assert.Equal(t, "+", bin.Left.(*types.BinaryExpression).Operator)
	assert.Equal(t, types.NodeSequence, mustParse(t, "(a, b)").Type())

	fn := mustParse(t, "function add(a, b) { return a + b; }").(*types.FunctionExpression)
	assert.Equal(t, "add", fn.Name.Name)
	assert.Len(t, fn.Params, 2)
	assert.True(t, fn.Body.Return)

	fn = mustParse(t, "function () {}").(*types.FunctionExpression)
	assert.Nil(t, fn.Name)
	assert.Nil(t, fn.Body.Argument)

	// Arrow bodies extend as far right as possible
	call := mustParse(t, "xs.map(x => x.a ? 1 : 2)").(*types.CallExpression)
	arrow = call.Arguments[0].(*types.ArrowFunctionExpression)
	assert.Equal(t, types.NodeConditional, arrow.Body.Type())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		desc  string
		index int
	}{
		{"1 +", "Unexpected end of expression", 3},
		{"1abc", "Variable names cannot start with a number (1a...)", 0},
		{"(a", "Expected ) but got end of expression", 2},
		{"[1, 2", "Expected ] but got end of expression", 5},
		{"1 = 2", "Invalid left-hand side in assignment", 2},
		{"a?.b = 1", "Invalid left-hand side in assignment", 5},
		{"a + b = 1", "Invalid left-hand side in assignment", 6},
		{"new X", "new must be followed by a call expression", 0},
		{"a b", `Unexpected "b"`, 2},
		{"a.+", "Expected property name but got token +", 2},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parser.Parse(tt.input)
			require.Error(t, err)
			var e *types.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, types.KindSyntax, e.Kind)
			assert.Contains(t, e.Description, tt.desc)
			assert.Equal(t, tt.index, e.Index)
		})
	}

	for _, input := range []string{"`abc", "`a${b", `"abc`, "{a: 1", "function (a) { a b }", "(a, 1) => a", "x => ", "a ? b", ")"} {
		_, err := parser.Parse(input)
		assert.True(t, types.IsSyntaxError(err), "Parse(%q): %v", input, err)
	}
}

func TestParseMaxDepth(t *testing.T) {
	deep := strings.Repeat("(", 10) + "1" + strings.Repeat(")", 10)

	_, err := parser.Parse(deep, parser.WithMaxDepth(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Maximum nesting depth of 5 exceeded")

	_, err = parser.Parse(deep, parser.WithMaxDepth(0))
	assert.NoError(t, err)

	_, err = parser.Parse(strings.Repeat("[", 1000) + strings.Repeat("]", 1000))
	assert.True(t, types.IsSyntaxError(err))

	_, err = parser.Parse(strings.Repeat("-", 1000) + "1")
	assert.True(t, types.IsSyntaxError(err))
}

func TestParseWalk(t *testing.T) {
	expr, err := parser.Compile("a.b(c, [d, ...e]) + f")
	require.NoError(t, err)
	assert.Equal(t, "a.b(c, [d, ...e]) + f", expr.String())

	var names []string
	types.Walk(expr.AST(), func(n types.Node) bool {
		if id, ok := n.(*types.Identifier); ok {
			names = append(names, id.Name)
		}
		return true
	})
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, names)
	assert.Equal(t, 5, types.Depth(expr.AST()))
}

func BenchmarkParse(b *testing.B) {
	input := "items.filter(i => i.price > limit && i.tags?.includes('sale')).map(i => `${i.name}: ${i.price * (1 - discount)}`)"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := parser.Parse(input); err != nil {
			b.Fatal(err)
		}
	}
}
