package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tdewolff/parse/v2/js"

	"github.com/sandrolain/cspexpr/pkg/types"
)

const eof = -1

// Lexer converts an expression into a sequence of tokens on demand.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
// Its whole state is a handful of integers over the input, so copying a Lexer
// value is a complete snapshot of the scan position.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	err     error  // First error encountered
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all subsequent calls.
func (l *Lexer) Next() Token {
	l.skipWhitespace()
	if l.err != nil {
		return l.newToken(TokenError)
	}

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	// A dot followed by a digit starts a number (.5)
	if ch == '.' && isDigit(l.peek()) {
		l.backup()
		return l.scanNumber()
	}

	if ch >= '0' && ch <= '9' {
		l.backup()
		return l.scanNumber()
	}

	switch ch {
	case '"', '\'':
		l.ignore()
		return l.scanString(ch)
	case '`':
		l.ignore()
		return l.scanTemplate()
	}

	if syms := lookupSymbols(ch); syms != nil {
		l.backup()
		rest := l.input[l.current:]
		for _, s := range syms {
			if !strings.HasPrefix(rest, s.text) {
				continue
			}
			// "?." before a digit is a conditional followed by a number (a?.5:b)
			if s.tt == TokenOptionalChain && len(rest) > 2 && isDigit(rune(rest[2])) {
				continue
			}
			l.current += len(s.text)
			return l.newToken(s.tt)
		}
	}

	if isIdentifierStart(ch) {
		l.backup()
		return l.scanName()
	}

	return l.error("Unexpected character '" + string(ch) + "'")
}

// ContinueTemplate scans the template chunk that follows the closing brace of
// a ${} substitution. The parser calls it while the brace is its current token,
// so the lexer is positioned just after the brace.
func (l *Lexer) ContinueTemplate() Token {
	l.ignore()
	return l.scanTemplate()
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// scanString reads a string literal from the current position.
// The opening quote has already been consumed; the token value is the raw
// text between the quotes.
func (l *Lexer) scanString(quote rune) Token {
Loop:
	for {
		switch l.nextRune() {
		case quote:
			break Loop
		case '\\':
			// Consume escaped character
			if r := l.nextRune(); r != eof {
				break
			}
			fallthrough
		case eof:
			return l.error("Unclosed quote after \"" + l.input[l.start:l.current] + "\"")
		}
	}

	l.backup()
	t := l.newToken(TokenString)
	t.Position--
	l.acceptRune(quote)
	l.ignore()
	return t
}

// scanTemplate reads template text up to the next "${" or the closing backtick.
func (l *Lexer) scanTemplate() Token {
	for {
		switch l.nextRune() {
		case '`':
			l.backup()
			t := l.newToken(TokenTemplate)
			t.Tail = true
			l.acceptRune('`')
			l.ignore()
			return t
		case '$':
			if l.peek() == '{' {
				l.backup()
				t := l.newToken(TokenTemplate)
				l.current += 2 // ${
				l.ignore()
				return t
			}
		case '\\':
			if r := l.nextRune(); r != eof {
				break
			}
			fallthrough
		case eof:
			return l.error("Unterminated template literal")
		}
	}
}

// scanNumber reads a number literal from the current position.
// Format: [0-9]*(\.[0-9]*)?([eE][+-]?[0-9]+)?
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)

	// Decimal part
	if l.acceptRune('.') {
		l.acceptAll(isDigit)
	}

	// Exponent part
	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		if !l.acceptAll(isDigit) {
			return l.error("Expected exponent (" + l.input[l.start:l.current] + ")")
		}
	}

	if r := l.peek(); r != eof && isIdentifierStart(r) {
		return l.error("Variable names cannot start with a number (" + l.input[l.start:l.current] + string(r) + "...)")
	}
	if l.peek() == '.' {
		return l.error("Unexpected period")
	}

	return l.newToken(TokenNumber)
}

// scanName reads an identifier or keyword from the current position.
func (l *Lexer) scanName() Token {
	l.nextRune()
	for {
		ch := l.nextRune()
		if ch == eof {
			break
		}
		if !isIdentifierPart(ch) {
			l.backup()
			break
		}
	}

	t := l.newToken(TokenName)
	t.Type = lookupKeyword(t.Value)
	return t
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(description string) Token {
	t := l.newToken(TokenError)
	l.err = types.NewSyntaxError(description, t.Position)
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) peek() rune {
	if l.current >= l.length {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.current:])
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
	l.width = 0
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	for {
		if l.err != nil {
			return
		}

		l.acceptAll(isWhitespace)
		l.ignore()

		// Block comments
		if !strings.HasPrefix(l.input[l.current:], "/*") {
			return
		}
		end := strings.Index(l.input[l.current+2:], "*/")
		if end < 0 {
			l.err = types.NewSyntaxError("Unclosed comment", l.current)
			return
		}
		l.current += end + 4
		l.ignore()
	}
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	case eof:
		return false
	}
	return r >= utf8.RuneSelf && unicode.IsSpace(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isIdentifierStart accepts ASCII letters, '_', '$' and any non-ASCII rune
// that Unicode allows at the start of a JavaScript identifier.
func isIdentifierStart(r rune) bool {
	switch {
	case r == '_' || r == '$':
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r < utf8.RuneSelf:
		return false
	}
	return js.IsIdentifierStart([]byte(string(r)))
}

func isIdentifierPart(r rune) bool {
	if isIdentifierStart(r) || isDigit(r) {
		return true
	}
	if r < utf8.RuneSelf {
		return false
	}
	return js.IsIdentifierContinue([]byte(string(r)))
}
