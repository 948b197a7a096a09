package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/cspexpr/pkg/parser"
	"github.com/sandrolain/cspexpr/pkg/types"
)

type lexerTestCase struct {
	name      string
	input     string
	expected  []parser.Token
	expectErr string // non-empty: description of the expected lexer error
}

func lexAll(input string) ([]parser.Token, error) {
	l := parser.NewLexer(input)
	var tokens []parser.Token
	for {
		t := l.Next()
		switch t.Type {
		case parser.TokenEOF:
			return tokens, nil
		case parser.TokenError:
			return tokens, l.Error()
		}
		tokens = append(tokens, t)
	}
}

func runLexerTests(t *testing.T, tests []lexerTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := lexAll(tt.input)
			if tt.expectErr != "" {
				require.Error(t, err)
				var e *types.Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, types.KindSyntax, e.Kind)
				assert.Equal(t, tt.expectErr, e.Description)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tokens)
		})
	}
}

func TestLexerWhitespaceAndComments(t *testing.T) {
	runLexerTests(t, []lexerTestCase{
		{
			name:  "leading whitespace",
			input: "   abc",
			expected: []parser.Token{
				{Type: parser.TokenName, Value: "abc", Position: 3},
			},
		},
		{
			name:  "mixed whitespace",
			input: " \t\n\r\vabc ",
			expected: []parser.Token{
				{Type: parser.TokenName, Value: "abc", Position: 5},
			},
		},
		{
			name:  "block comment",
			input: "a /* x */ + b",
			expected: []parser.Token{
				{Type: parser.TokenName, Value: "a", Position: 0},
				{Type: parser.TokenPlus, Value: "+", Position: 10},
				{Type: parser.TokenName, Value: "b", Position: 12},
			},
		},
		{
			name:      "unclosed comment",
			input:     "a /* x",
			expectErr: "Unclosed comment",
		},
	})
}

func TestLexerLiterals(t *testing.T) {
	runLexerTests(t, []lexerTestCase{
		{
			name:  "double quoted string",
			input: `"hello"`,
			expected: []parser.Token{
				{Type: parser.TokenString, Value: "hello", Position: 0},
			},
		},
		{
			name:  "escaped quote keeps raw text",
			input: `'a\'b'`,
			expected: []parser.Token{
				{Type: parser.TokenString, Value: `a\'b`, Position: 0},
			},
		},
		{
			name:  "exponent",
			input: "1.5e10",
			expected: []parser.Token{
				{Type: parser.TokenNumber, Value: "1.5e10", Position: 0},
			},
		},
		{
			name:  "leading dot",
			input: ".5",
			expected: []parser.Token{
				{Type: parser.TokenNumber, Value: ".5", Position: 0},
			},
		},
		{
			name:  "keywords",
			input: "true null undefined typeof newer",
			expected: []parser.Token{
				{Type: parser.TokenBoolean, Value: "true", Position: 0},
				{Type: parser.TokenNull, Value: "null", Position: 5},
				{Type: parser.TokenUndefined, Value: "undefined", Position: 10},
				{Type: parser.TokenTypeof, Value: "typeof", Position: 20},
				{Type: parser.TokenName, Value: "newer", Position: 27},
			},
		},
		{
			name:  "unicode identifiers",
			input: "café $a_1",
			expected: []parser.Token{
				{Type: parser.TokenName, Value: "café", Position: 0},
				{Type: parser.TokenName, Value: "$a_1", Position: 6},
			},
		},
		{
			name:      "number followed by a name",
			input:     "1abc",
			expectErr: "Variable names cannot start with a number (1a...)",
		},
		{
			name:      "second period",
			input:     "1.2.3",
			expectErr: "Unexpected period",
		},
		{
			name:      "missing exponent digits",
			input:     "1e",
			expectErr: "Expected exponent (1e)",
		},
		{
			name:      "unclosed string",
			input:     `"abc`,
			expectErr: `Unclosed quote after "abc"`,
		},
		{
			name:      "unexpected character",
			input:     "a # b",
			expectErr: "Unexpected character '#'",
		},
	})
}

func TestLexerOperators(t *testing.T) {
	runLexerTests(t, []lexerTestCase{
		{
			name:  "longest match",
			input: "a >>> b !== c",
			expected: []parser.Token{
				{Type: parser.TokenName, Value: "a", Position: 0},
				{Type: parser.TokenUShr, Value: ">>>", Position: 2},
				{Type: parser.TokenName, Value: "b", Position: 6},
				{Type: parser.TokenStrictNotEq, Value: "!==", Position: 8},
				{Type: parser.TokenName, Value: "c", Position: 12},
			},
		},
		{
			name:  "optional chain",
			input: "a?.b",
			expected: []parser.Token{
				{Type: parser.TokenName, Value: "a", Position: 0},
				{Type: parser.TokenOptionalChain, Value: "?.", Position: 1},
				{Type: parser.TokenName, Value: "b", Position: 3},
			},
		},
		{
			name:  "conditional before a fraction",
			input: "a?.5:b",
			expected: []parser.Token{
				{Type: parser.TokenName, Value: "a", Position: 0},
				{Type: parser.TokenCondition, Value: "?", Position: 1},
				{Type: parser.TokenNumber, Value: ".5", Position: 2},
				{Type: parser.TokenColon, Value: ":", Position: 4},
				{Type: parser.TokenName, Value: "b", Position: 5},
			},
		},
		{
			name:  "spread and arrow",
			input: "...x=>x",
			expected: []parser.Token{
				{Type: parser.TokenSpread, Value: "...", Position: 0},
				{Type: parser.TokenName, Value: "x", Position: 3},
				{Type: parser.TokenArrow, Value: "=>", Position: 4},
				{Type: parser.TokenName, Value: "x", Position: 6},
			},
		},
		{
			name:  "coalesce and exponent",
			input: "a ?? b ** 2",
			expected: []parser.Token{
				{Type: parser.TokenName, Value: "a", Position: 0},
				{Type: parser.TokenCoalesce, Value: "??", Position: 2},
				{Type: parser.TokenName, Value: "b", Position: 5},
				{Type: parser.TokenExp, Value: "**", Position: 7},
				{Type: parser.TokenNumber, Value: "2", Position: 10},
			},
		},
	})
}

func TestLexerTemplate(t *testing.T) {
	l := parser.NewLexer("`a${b}c`")

	assert.Equal(t, parser.Token{Type: parser.TokenTemplate, Value: "a", Position: 1}, l.Next())
	assert.Equal(t, parser.Token{Type: parser.TokenName, Value: "b", Position: 4}, l.Next())
	assert.Equal(t, parser.Token{Type: parser.TokenBraceClose, Value: "}", Position: 5}, l.Next())
	assert.Equal(t, parser.Token{Type: parser.TokenTemplate, Value: "c", Position: 6, Tail: true}, l.ContinueTemplate())
	assert.Equal(t, parser.TokenEOF, l.Next().Type)
	assert.NoError(t, l.Error())

	l = parser.NewLexer("`abc")
	assert.Equal(t, parser.TokenError, l.Next().Type)
	assert.ErrorContains(t, l.Error(), "Unterminated template literal")
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "(eof)", parser.TokenEOF.String())
	assert.Equal(t, "?.", parser.TokenOptionalChain.String())
	assert.Equal(t, "(unknown)", parser.TokenType(255).String())
}
