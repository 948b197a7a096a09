package parser

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenString   // "hello" or 'hello'
	TokenNumber   // 123, 3.14, 1e-10, .5
	TokenTemplate // a chunk of `...${ or }...`
	TokenName     // identifier

	// Keywords
	TokenBoolean    // true, false
	TokenNull       // null
	TokenUndefined  // undefined
	TokenNew        // new
	TokenFunction   // function
	TokenReturn     // return
	TokenTypeof     // typeof
	TokenVoid       // void
	TokenInstanceof // instanceof
	TokenIn         // in

	// Grouping symbols
	TokenBracketOpen  // [
	TokenBracketClose // ]
	TokenBraceOpen    // {
	TokenBraceClose   // }
	TokenParenOpen    // (
	TokenParenClose   // )

	// Punctuation
	TokenDot           // .
	TokenOptionalChain // ?.
	TokenSpread        // ...
	TokenComma         // ,
	TokenColon         // :
	TokenSemicolon     // ;
	TokenCondition     // ?
	TokenArrow         // =>
	TokenAssign        // =

	// Arithmetic operators
	TokenPlus  // +
	TokenMinus // -
	TokenMult  // *
	TokenDiv   // /
	TokenMod   // %
	TokenExp   // **

	// Unary-only operators
	TokenNot    // !
	TokenBitNot // ~

	// Bitwise operators
	TokenBitAnd // &
	TokenBitOr  // |
	TokenBitXor // ^
	TokenShl    // <<
	TokenShr    // >>
	TokenUShr   // >>>

	// Comparison operators
	TokenEqual        // ==
	TokenNotEqual     // !=
	TokenStrictEqual  // ===
	TokenStrictNotEq  // !==
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=

	// Logical operators
	TokenAnd      // &&
	TokenOr       // ||
	TokenCoalesce // ??
)

var tokenNames = [...]string{
	TokenEOF:           "(eof)",
	TokenError:         "(error)",
	TokenString:        "(string)",
	TokenNumber:        "(number)",
	TokenTemplate:      "(template)",
	TokenName:          "(name)",
	TokenBoolean:       "(boolean)",
	TokenNull:          "null",
	TokenUndefined:     "undefined",
	TokenNew:           "new",
	TokenFunction:      "function",
	TokenReturn:        "return",
	TokenTypeof:        "typeof",
	TokenVoid:          "void",
	TokenInstanceof:    "instanceof",
	TokenIn:            "in",
	TokenBracketOpen:   "[",
	TokenBracketClose:  "]",
	TokenBraceOpen:     "{",
	TokenBraceClose:    "}",
	TokenParenOpen:     "(",
	TokenParenClose:    ")",
	TokenDot:           ".",
	TokenOptionalChain: "?.",
	TokenSpread:        "...",
	TokenComma:         ",",
	TokenColon:         ":",
	TokenSemicolon:     ";",
	TokenCondition:     "?",
	TokenArrow:         "=>",
	TokenAssign:        "=",
	TokenPlus:          "+",
	TokenMinus:         "-",
	TokenMult:          "*",
	TokenDiv:           "/",
	TokenMod:           "%",
	TokenExp:           "**",
	TokenNot:           "!",
	TokenBitNot:        "~",
	TokenBitAnd:        "&",
	TokenBitOr:         "|",
	TokenBitXor:        "^",
	TokenShl:           "<<",
	TokenShr:           ">>",
	TokenUShr:          ">>>",
	TokenEqual:         "==",
	TokenNotEqual:      "!=",
	TokenStrictEqual:   "===",
	TokenStrictNotEq:   "!==",
	TokenLess:          "<",
	TokenLessEqual:     "<=",
	TokenGreater:       ">",
	TokenGreaterEqual:  ">=",
	TokenAnd:           "&&",
	TokenOr:            "||",
	TokenCoalesce:      "??",
}

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	if int(tt) < len(tokenNames) && tokenNames[tt] != "" {
		return tokenNames[tt]
	}
	return "(unknown)"
}

// Token represents a lexical token.
type Token struct {
	Type     TokenType // Type of the token
	Value    string    // Literal text of the token (raw text for strings and templates)
	Position int       // Starting position in the input string
	Tail     bool      // For TokenTemplate: the chunk ends the template
}

// symbol pairs an operator spelling with its token type.
type symbol struct {
	text string
	tt   TokenType
}

// symbols maps the first byte of an operator to its candidate spellings,
// longest first so that the lexer can take the first match.
var symbols = [128][]symbol{
	'[': {{"[", TokenBracketOpen}},
	']': {{"]", TokenBracketClose}},
	'{': {{"{", TokenBraceOpen}},
	'}': {{"}", TokenBraceClose}},
	'(': {{"(", TokenParenOpen}},
	')': {{")", TokenParenClose}},
	'.': {{"...", TokenSpread}, {".", TokenDot}},
	',': {{",", TokenComma}},
	':': {{":", TokenColon}},
	';': {{";", TokenSemicolon}},
	'?': {{"??", TokenCoalesce}, {"?.", TokenOptionalChain}, {"?", TokenCondition}},
	'=': {{"===", TokenStrictEqual}, {"==", TokenEqual}, {"=>", TokenArrow}, {"=", TokenAssign}},
	'!': {{"!==", TokenStrictNotEq}, {"!=", TokenNotEqual}, {"!", TokenNot}},
	'+': {{"+", TokenPlus}},
	'-': {{"-", TokenMinus}},
	'*': {{"**", TokenExp}, {"*", TokenMult}},
	'/': {{"/", TokenDiv}},
	'%': {{"%", TokenMod}},
	'~': {{"~", TokenBitNot}},
	'&': {{"&&", TokenAnd}, {"&", TokenBitAnd}},
	'|': {{"||", TokenOr}, {"|", TokenBitOr}},
	'^': {{"^", TokenBitXor}},
	'<': {{"<<", TokenShl}, {"<=", TokenLessEqual}, {"<", TokenLess}},
	'>': {{">>>", TokenUShr}, {">>", TokenShr}, {">=", TokenGreaterEqual}, {">", TokenGreater}},
}

// lookupSymbols returns the operator spellings starting with r, or nil.
func lookupSymbols(r rune) []symbol {
	if r < 0 || int(r) >= len(symbols) {
		return nil
	}
	return symbols[r]
}

// lookupKeyword returns the token type for a keyword.
// Returns TokenName if the string is not a reserved word.
func lookupKeyword(s string) TokenType {
	switch s {
	case "true", "false":
		return TokenBoolean
	case "null":
		return TokenNull
	case "undefined":
		return TokenUndefined
	case "new":
		return TokenNew
	case "function":
		return TokenFunction
	case "return":
		return TokenReturn
	case "typeof":
		return TokenTypeof
	case "void":
		return TokenVoid
	case "instanceof":
		return TokenInstanceof
	case "in":
		return TokenIn
	default:
		return TokenName
	}
}
