package parser

import (
	"fmt"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// Parser implements a recursive descent parser for binding expressions.
// Binary operators are parsed with precedence climbing over an explicit
// operand/operator stack.
type Parser struct {
	lexer   *Lexer
	current Token
	prev    Token
	opts    CompileOptions
	depth   int
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&options)
	}

	p := &Parser{
		lexer: NewLexer(input),
		opts:  options,
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire input and returns the compiled expression.
func (p *Parser) Parse() (*types.Expression, error) {
	var body []types.Node

	for p.current.Type != TokenEOF {
		if p.current.Type == TokenSemicolon {
			p.advance()
			continue
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)

		switch p.current.Type {
		case TokenSemicolon:
			p.advance()
		case TokenEOF:
		default:
			return nil, p.unexpected()
		}
	}

	var root types.Node
	if len(body) == 1 {
		root = body[0]
	} else {
		root = &types.Compound{Body: body}
	}
	return types.NewCompiled(root, p.lexer.input), nil
}

// Binary operator precedence. Higher values bind more tightly.
// Assignment, the conditional operator and arrow heads are parsed outside the
// precedence-climbing loop, below every entry of this table.
var precedence = map[TokenType]int{
	TokenOr:           1,  // ||
	TokenCoalesce:     1,  // ??
	TokenAnd:          2,  // &&
	TokenBitOr:        3,  // |
	TokenBitXor:       4,  // ^
	TokenBitAnd:       5,  // &
	TokenEqual:        6,  // ==
	TokenNotEqual:     6,  // !=
	TokenStrictEqual:  6,  // ===
	TokenStrictNotEq:  6,  // !==
	TokenLess:         7,  // <
	TokenGreater:      7,  // >
	TokenLessEqual:    7,  // <=
	TokenGreaterEqual: 7,  // >=
	TokenInstanceof:   7,  // instanceof
	TokenIn:           7,  // in
	TokenShl:          8,  // <<
	TokenShr:          8,  // >>
	TokenUShr:         8,  // >>>
	TokenPlus:         9,  // +
	TokenMinus:        9,  // -
	TokenMult:         10, // *
	TokenDiv:          10, // /
	TokenMod:          10, // %
	TokenExp:          11, // ** (right-associative)
}

// getPrecedence returns the binary precedence of a token type, 0 for non-operators.
func (p *Parser) getPrecedence(tt TokenType) int {
	return precedence[tt]
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.prev = p.current
	p.current = p.lexer.Next()
}

// snapshot captures the complete parser position for speculative parsing.
type snapshot struct {
	lexer   Lexer
	current Token
	prev    Token
	depth   int
}

func (p *Parser) snapshot() snapshot {
	return snapshot{lexer: *p.lexer, current: p.current, prev: p.prev, depth: p.depth}
}

func (p *Parser) restore(s snapshot) {
	*p.lexer = s.lexer
	p.current = s.current
	p.prev = s.prev
	p.depth = s.depth
}

// expect checks if the current token matches the expected type and advances.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		if p.current.Type == TokenError {
			return p.lexer.Error()
		}
		return p.error(fmt.Sprintf("Expected %s but got %s", tt.String(), p.describe(p.current)))
	}
	p.advance()
	return nil
}

// error creates a syntax error at the current token.
func (p *Parser) error(description string) error {
	return types.NewSyntaxError(description, p.current.Position)
}

// errorAt creates a syntax error at an explicit position.
func (p *Parser) errorAt(description string, pos int) error {
	return types.NewSyntaxError(description, pos)
}

// unexpected reports the current token as out of place. Lexer failures take
// precedence since they explain why the token stream stopped.
func (p *Parser) unexpected() error {
	switch p.current.Type {
	case TokenError:
		return p.lexer.Error()
	case TokenEOF:
		return p.error("Unexpected end of expression")
	}
	return p.error(fmt.Sprintf("Unexpected %s", p.describe(p.current)))
}

func (p *Parser) describe(t Token) string {
	switch t.Type {
	case TokenEOF:
		return "end of expression"
	case TokenString, TokenNumber, TokenName:
		return fmt.Sprintf("%q", t.Value)
	}
	return fmt.Sprintf("token %s", t.Type.String())
}

// enter increments the nesting depth, failing once MaxDepth is exceeded.
func (p *Parser) enter() error {
	p.depth++
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return p.error(fmt.Sprintf("Maximum nesting depth of %d exceeded", p.opts.MaxDepth))
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// parseStatement parses a comma separated expression list.
func (p *Parser) parseStatement() (types.Node, error) {
	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenComma {
		return first, nil
	}

	seq := &types.SequenceExpression{
		Position:    types.Position{Offset: first.Pos()},
		Expressions: []types.Node{first},
	}
	for p.current.Type == TokenComma {
		p.advance()
		next, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		seq.Expressions = append(seq.Expressions, next)
	}
	return seq, nil
}

// parseExpression parses an assignment-level expression. Assignment is
// right-associative: a = b = 2 assigns b first.
func (p *Parser) parseExpression() (types.Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenAssign {
		return left, nil
	}

	if !isAssignable(left) {
		return nil, p.error("Invalid left-hand side in assignment")
	}
	p.advance()

	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &types.BinaryExpression{
		Position: types.Position{Offset: left.Pos()},
		Operator: "=",
		Left:     left,
		Right:    right,
	}, nil
}

// isAssignable reports whether n may appear on the left of "=".
func isAssignable(n types.Node) bool {
	switch n := n.(type) {
	case *types.Identifier:
		return true
	case *types.MemberExpression:
		return !n.Optional
	}
	return false
}

// parseConditional parses test ? consequent : alternate.
func (p *Parser) parseConditional() (types.Node, error) {
	test, err := p.parseBinary()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenCondition {
		return test, nil
	}
	p.advance()

	consequent, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	alternate, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &types.ConditionalExpression{
		Position:   types.Position{Offset: test.Pos()},
		Test:       test,
		Consequent: consequent,
		Alternate:  alternate,
	}, nil
}

// parseBinary parses a chain of binary operators with precedence climbing.
//
// Operands and operators are kept on two stacks. Before an operator is pushed,
// every stacked operator whose precedence is greater than or equal to it is
// reduced, which makes operators left-associative. "**" meeting "**" is not
// reduced, which makes exponentiation right-associative.
func (p *Parser) parseBinary() (types.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.getPrecedence(p.current.Type) == 0 {
		return left, nil
	}

	operands := []types.Node{left}
	var operators []Token

	reduce := func() {
		op := operators[len(operators)-1]
		operators = operators[:len(operators)-1]
		r := operands[len(operands)-1]
		l := operands[len(operands)-2]
		operands = append(operands[:len(operands)-2], newBinary(op, l, r))
	}

	for {
		prec := p.getPrecedence(p.current.Type)
		if prec == 0 {
			break
		}
		op := p.current

		for len(operators) > 0 {
			top := operators[len(operators)-1]
			topPrec := p.getPrecedence(top.Type)
			if prec > topPrec {
				break
			}
			if prec == topPrec && op.Type == TokenExp && top.Type == TokenExp {
				break
			}
			reduce()
		}

		operators = append(operators, op)
		p.advance()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
	}

	for len(operators) > 0 {
		reduce()
	}
	return operands[0], nil
}

// newBinary builds a LogicalExpression for short-circuit operators and a
// BinaryExpression otherwise.
func newBinary(op Token, left, right types.Node) types.Node {
	pos := types.Position{Offset: left.Pos()}
	switch op.Type {
	case TokenAnd, TokenOr, TokenCoalesce:
		return &types.LogicalExpression{Position: pos, Operator: op.Value, Left: left, Right: right}
	}
	return &types.BinaryExpression{Position: pos, Operator: op.Value, Left: left, Right: right}
}

// parseUnary parses prefix operators.
func (p *Parser) parseUnary() (types.Node, error) {
	switch p.current.Type {
	case TokenMinus, TokenPlus, TokenNot, TokenBitNot, TokenTypeof, TokenVoid:
		op := p.current
		p.advance()

		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()

		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &types.UnaryExpression{
			Position: types.Position{Offset: op.Position},
			Operator: op.Value,
			Argument: arg,
		}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any number of
// member accesses and calls, building the chain left to right.
func (p *Parser) parsePostfix() (types.Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.current.Type {
		case TokenDot:
			p.advance()
			prop, err := p.parsePropertyName()
			if err != nil {
				return nil, err
			}
			node = &types.MemberExpression{
				Position: types.Position{Offset: node.Pos()},
				Object:   node,
				Property: prop,
			}

		case TokenOptionalChain:
			p.advance()
			switch p.current.Type {
			case TokenBracketOpen:
				prop, err := p.parseComputedProperty()
				if err != nil {
					return nil, err
				}
				node = &types.MemberExpression{
					Position: types.Position{Offset: node.Pos()},
					Object:   node,
					Property: prop,
					Computed: true,
					Optional: true,
				}
			case TokenParenOpen:
				args, err := p.parseArguments()
				if err != nil {
					return nil, err
				}
				node = &types.CallExpression{
					Position:  types.Position{Offset: node.Pos()},
					Callee:    node,
					Arguments: args,
					Optional:  true,
				}
			default:
				prop, err := p.parsePropertyName()
				if err != nil {
					return nil, err
				}
				node = &types.MemberExpression{
					Position: types.Position{Offset: node.Pos()},
					Object:   node,
					Property: prop,
					Optional: true,
				}
			}

		case TokenBracketOpen:
			prop, err := p.parseComputedProperty()
			if err != nil {
				return nil, err
			}
			node = &types.MemberExpression{
				Position: types.Position{Offset: node.Pos()},
				Object:   node,
				Property: prop,
				Computed: true,
			}

		case TokenParenOpen:
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			node = &types.CallExpression{
				Position:  types.Position{Offset: node.Pos()},
				Callee:    node,
				Arguments: args,
			}

		default:
			return node, nil
		}
	}
}

// parseComputedProperty parses [expression].
func (p *Parser) parseComputedProperty() (types.Node, error) {
	if err := p.expect(TokenBracketOpen); err != nil {
		return nil, err
	}
	prop, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenBracketClose); err != nil {
		return nil, err
	}
	return prop, nil
}

// parsePropertyName parses the name after "." or "?.". Reserved words are
// valid property names.
func (p *Parser) parsePropertyName() (types.Node, error) {
	if !isNameToken(p.current.Type) {
		if p.current.Type == TokenError {
			return nil, p.lexer.Error()
		}
		return nil, p.error(fmt.Sprintf("Expected property name but got %s", p.describe(p.current)))
	}
	id := &types.Identifier{
		Position: types.Position{Offset: p.current.Position},
		Name:     p.current.Value,
	}
	p.advance()
	return id, nil
}

// isNameToken reports whether tt is an identifier or a reserved word.
func isNameToken(tt TokenType) bool {
	switch tt {
	case TokenName, TokenBoolean, TokenNull, TokenUndefined, TokenNew, TokenFunction,
		TokenReturn, TokenTypeof, TokenVoid, TokenInstanceof, TokenIn:
		return true
	}
	return false
}

// parseArguments parses (arg, ...spread, ...).
func (p *Parser) parseArguments() ([]types.Node, error) {
	if err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}

	args := []types.Node{}
	for p.current.Type != TokenParenClose {
		arg, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.current.Type == TokenComma {
			p.advance()
			continue
		}
		if p.current.Type != TokenParenClose {
			return nil, p.expect(TokenParenClose)
		}
	}
	p.advance()
	return args, nil
}

// parseElement parses an array element or call argument, which may be spread.
func (p *Parser) parseElement() (types.Node, error) {
	if p.current.Type != TokenSpread {
		return p.parseExpression()
	}
	pos := p.current.Position
	p.advance()
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &types.SpreadElement{
		Position: types.Position{Offset: pos},
		Argument: arg,
	}, nil
}
