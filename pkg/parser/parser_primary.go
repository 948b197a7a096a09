package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// parsePrimary parses literals, identifiers, grouping, constructors,
// functions and new expressions.
func (p *Parser) parsePrimary() (types.Node, error) {
	token := p.current

	switch token.Type {
	case TokenNumber:
		return p.parseNumber()
	case TokenString:
		return p.parseString()
	case TokenTemplate:
		return p.parseTemplate()
	case TokenBoolean:
		p.advance()
		return &types.Literal{Position: types.Position{Offset: token.Position}, Value: token.Value == "true", Raw: token.Value}, nil
	case TokenNull:
		p.advance()
		return &types.Literal{Position: types.Position{Offset: token.Position}, Value: nil, Raw: token.Value}, nil
	case TokenUndefined:
		p.advance()
		return &types.Literal{Position: types.Position{Offset: token.Position}, Value: types.Undefined, Raw: token.Value}, nil
	case TokenName:
		return p.parseIdentifier()
	case TokenParenOpen:
		return p.parseGroupingOrArrow()
	case TokenBracketOpen:
		return p.parseArrayLiteral()
	case TokenBraceOpen:
		return p.parseObjectLiteral()
	case TokenFunction:
		return p.parseFunction()
	case TokenNew:
		return p.parseNew()
	default:
		return nil, p.unexpected()
	}
}

// parseNumber parses a number literal.
func (p *Parser) parseNumber() (types.Node, error) {
	token := p.current
	val, err := strconv.ParseFloat(token.Value, 64)
	// Out of range literals become ±Inf or 0, as in JavaScript.
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, p.error(fmt.Sprintf("Invalid number %s", token.Value))
	}
	p.advance()
	return &types.Literal{
		Position: types.Position{Offset: token.Position},
		Value:    val,
		Raw:      token.Value,
	}, nil
}

// parseString parses a string literal.
func (p *Parser) parseString() (types.Node, error) {
	token := p.current
	p.advance()
	return &types.Literal{
		Position: types.Position{Offset: token.Position},
		Value:    unescapeString(token.Value),
		Raw:      token.Value,
	}, nil
}

// parseIdentifier parses a name, or a single-parameter arrow function when
// the name is followed by "=>".
func (p *Parser) parseIdentifier() (types.Node, error) {
	id := &types.Identifier{
		Position: types.Position{Offset: p.current.Position},
		Name:     p.current.Value,
	}
	p.advance()

	if p.current.Type == TokenArrow {
		return p.parseArrowBody(id.Pos(), []*types.Identifier{id})
	}
	return id, nil
}

// parseGroupingOrArrow parses (expression) or an arrow function head.
// The arrow head is tried first from a snapshot of the lexer; if the tokens
// after "(" are not a parameter list followed by "=>", the snapshot is
// restored and the parenthesis is parsed as grouping.
func (p *Parser) parseGroupingOrArrow() (types.Node, error) {
	start := p.current.Position
	snap := p.snapshot()

	if params, err := p.parseParams(); err == nil && p.current.Type == TokenArrow {
		return p.parseArrowBody(start, params)
	}
	p.restore(snap)

	p.advance() // (
	expr, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseParams parses a parenthesised list of parameter names.
func (p *Parser) parseParams() ([]*types.Identifier, error) {
	if err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}

	params := []*types.Identifier{}
	for p.current.Type != TokenParenClose {
		if p.current.Type != TokenName {
			return nil, p.unexpected()
		}
		params = append(params, &types.Identifier{
			Position: types.Position{Offset: p.current.Position},
			Name:     p.current.Value,
		})
		p.advance()

		if p.current.Type == TokenComma {
			p.advance()
			continue
		}
		if p.current.Type != TokenParenClose {
			return nil, p.expect(TokenParenClose)
		}
	}
	p.advance()
	return params, nil
}

// parseArrowBody parses "=> body" for already parsed parameters.
func (p *Parser) parseArrowBody(pos int, params []*types.Identifier) (types.Node, error) {
	if err := p.expect(TokenArrow); err != nil {
		return nil, err
	}

	arrow := &types.ArrowFunctionExpression{
		Position: types.Position{Offset: pos},
		Params:   params,
	}
	if p.current.Type == TokenBraceOpen {
		body, err := p.parseFunctionBody()
		if err != nil {
			return nil, err
		}
		arrow.Body = body
		return arrow, nil
	}

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	arrow.Body = body
	arrow.ExpressionBody = true
	return arrow, nil
}

// parseFunction parses function name?(params) { body }.
func (p *Parser) parseFunction() (types.Node, error) {
	fn := &types.FunctionExpression{
		Position: types.Position{Offset: p.current.Position},
	}
	p.advance()

	if p.current.Type == TokenName {
		fn.Name = &types.Identifier{
			Position: types.Position{Offset: p.current.Position},
			Name:     p.current.Value,
		}
		p.advance()
	}

	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	fn.Params = params

	body, err := p.parseFunctionBody()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

// parseFunctionBody parses the reduced block grammar used by callbacks:
// { [return] [expression] [;] }. General statements are not supported.
func (p *Parser) parseFunctionBody() (*types.FunctionBody, error) {
	body := &types.FunctionBody{
		Position: types.Position{Offset: p.current.Position},
	}
	if err := p.expect(TokenBraceOpen); err != nil {
		return nil, err
	}

	for p.current.Type == TokenSemicolon {
		p.advance()
	}
	if p.current.Type == TokenReturn {
		body.Return = true
		p.advance()
	}
	if p.current.Type != TokenSemicolon && p.current.Type != TokenBraceClose {
		arg, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body.Argument = arg
	}
	for p.current.Type == TokenSemicolon {
		p.advance()
	}

	if err := p.expect(TokenBraceClose); err != nil {
		return nil, err
	}
	return body, nil
}

// parseNew parses new callee(args). The callee is a primary expression
// followed by member accesses only; the argument list is mandatory.
func (p *Parser) parseNew() (types.Node, error) {
	pos := p.current.Position
	p.advance()

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	callee, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		if p.current.Type == TokenDot {
			p.advance()
			prop, err := p.parsePropertyName()
			if err != nil {
				return nil, err
			}
			callee = &types.MemberExpression{
				Position: types.Position{Offset: callee.Pos()},
				Object:   callee,
				Property: prop,
			}
			continue
		}
		if p.current.Type == TokenBracketOpen {
			prop, err := p.parseComputedProperty()
			if err != nil {
				return nil, err
			}
			callee = &types.MemberExpression{
				Position: types.Position{Offset: callee.Pos()},
				Object:   callee,
				Property: prop,
				Computed: true,
			}
			continue
		}
		break
	}

	if p.current.Type != TokenParenOpen {
		if p.current.Type == TokenError {
			return nil, p.lexer.Error()
		}
		return nil, p.errorAt("new must be followed by a call expression", pos)
	}
	args, err := p.parseArguments()
	if err != nil {
		return nil, err
	}

	return &types.NewExpression{
		Position:  types.Position{Offset: pos},
		Callee:    callee,
		Arguments: args,
	}, nil
}

// parseArrayLiteral parses [a, , ...b]. Elisions are stored as nil elements.
func (p *Parser) parseArrayLiteral() (types.Node, error) {
	arr := &types.ArrayExpression{
		Position: types.Position{Offset: p.current.Position},
		Elements: []types.Node{},
	}
	p.advance()

	for p.current.Type != TokenBracketClose {
		if p.current.Type == TokenComma {
			arr.Elements = append(arr.Elements, nil)
			p.advance()
			continue
		}

		el, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, el)

		if p.current.Type == TokenComma {
			p.advance()
			continue
		}
		if p.current.Type != TokenBracketClose {
			return nil, p.expect(TokenBracketClose)
		}
	}
	p.advance()
	return arr, nil
}

// parseObjectLiteral parses {key: value, [computed]: value, shorthand}.
func (p *Parser) parseObjectLiteral() (types.Node, error) {
	obj := &types.ObjectExpression{
		Position:   types.Position{Offset: p.current.Position},
		Properties: []*types.Property{},
	}
	p.advance()

	for p.current.Type != TokenBraceClose {
		prop, err := p.parseProperty()
		if err != nil {
			return nil, err
		}
		obj.Properties = append(obj.Properties, prop)

		if p.current.Type == TokenComma {
			p.advance()
			continue
		}
		if p.current.Type != TokenBraceClose {
			return nil, p.expect(TokenBraceClose)
		}
	}
	p.advance()
	return obj, nil
}

// parseProperty parses one object literal member.
func (p *Parser) parseProperty() (*types.Property, error) {
	token := p.current
	prop := &types.Property{}

	switch {
	case token.Type == TokenBracketOpen:
		key, err := p.parseComputedProperty()
		if err != nil {
			return nil, err
		}
		prop.Key = key
		prop.Computed = true
	case token.Type == TokenString:
		p.advance()
		prop.Key = &types.Literal{Position: types.Position{Offset: token.Position}, Value: unescapeString(token.Value), Raw: token.Value}
	case token.Type == TokenNumber:
		key, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		prop.Key = key
	case isNameToken(token.Type):
		p.advance()
		prop.Key = &types.Identifier{Position: types.Position{Offset: token.Position}, Name: token.Value}
	default:
		return nil, p.unexpected()
	}

	if p.current.Type == TokenColon {
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		prop.Value = value
		return prop, nil
	}

	// Shorthand {a} stands for {a: a}
	if token.Type == TokenName && (p.current.Type == TokenComma || p.current.Type == TokenBraceClose) {
		prop.Value = &types.Identifier{Position: types.Position{Offset: token.Position}, Name: token.Value}
		prop.Shorthand = true
		return prop, nil
	}
	return nil, p.expect(TokenColon)
}

// parseTemplate parses a template literal. Each ${} substitution is parsed
// with the full expression grammar; the lexer resumes scanning template text
// after the closing brace.
func (p *Parser) parseTemplate() (types.Node, error) {
	tpl := &types.TemplateLiteral{
		Position: types.Position{Offset: p.current.Position - 1},
	}

	for {
		chunk := p.current
		tpl.Quasis = append(tpl.Quasis, &types.TemplateElement{
			Raw:    chunk.Value,
			Cooked: unescapeString(chunk.Value),
			Tail:   chunk.Tail,
		})
		p.advance()
		if chunk.Tail {
			return tpl, nil
		}

		expr, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		tpl.Expressions = append(tpl.Expressions, expr)

		if p.current.Type != TokenBraceClose {
			if p.current.Type == TokenError {
				return nil, p.lexer.Error()
			}
			return nil, p.error("Unterminated template literal substitution")
		}
		p.prev = p.current
		p.current = p.lexer.ContinueTemplate()
		if p.current.Type == TokenError {
			return nil, p.lexer.Error()
		}
	}
}

// unescapeString processes escape sequences in string and template text.
// Handles \n \r \t \b \f \v and \uXXXX (including UTF-16 surrogate pairs);
// any other escaped character stands for itself.
func unescapeString(s string) string {
	if !strings.Contains(s, "\\") {
		return s // Fast path: no escapes
	}

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			result.WriteByte(s[i])
			continue
		}

		i++ // Skip backslash
		if i >= len(s) {
			break
		}

		switch s[i] {
		case 'n':
			result.WriteByte('\n')
		case 'r':
			result.WriteByte('\r')
		case 't':
			result.WriteByte('\t')
		case 'b':
			result.WriteByte('\b')
		case 'f':
			result.WriteByte('\f')
		case 'v':
			result.WriteByte('\v')
		case 'u':
			r, n := decodeUnicodeEscape(s[i+1:])
			if n == 0 {
				result.WriteByte('u')
				continue
			}
			result.WriteRune(r)
			i += n
		default:
			result.WriteByte(s[i])
		}
	}

	return result.String()
}

// decodeUnicodeEscape decodes the XXXX of \uXXXX, joining a following
// \uXXXX low surrogate when the first unit is a high surrogate. It returns
// the rune and the number of bytes consumed after the 'u', or 0 when the
// escape is malformed.
func decodeUnicodeEscape(s string) (rune, int) {
	if len(s) < 4 {
		return 0, 0
	}
	hi, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0
	}
	r := rune(hi)
	if !utf16.IsSurrogate(r) || len(s) < 10 || s[4] != '\\' || s[5] != 'u' {
		return r, 4
	}
	lo, err := strconv.ParseUint(s[6:10], 16, 16)
	if err != nil {
		return r, 4
	}
	if combined := utf16.DecodeRune(r, rune(lo)); combined != unicode.ReplacementChar {
		return combined, 10
	}
	return r, 4
}
