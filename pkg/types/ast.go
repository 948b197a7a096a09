package types

// NodeType identifies the kind of an AST node.
type NodeType string

// AST node types. The names follow the ESTree vocabulary used by JavaScript tooling.
const (
	// Leaves
	NodeIdentifier NodeType = "Identifier"
	NodeLiteral    NodeType = "Literal"

	// Access and invocation
	NodeMember NodeType = "MemberExpression"
	NodeCall   NodeType = "CallExpression"
	NodeNew    NodeType = "NewExpression"

	// Operators
	NodeUnary       NodeType = "UnaryExpression"
	NodeBinary      NodeType = "BinaryExpression" // arithmetic, comparison, bitwise and "="
	NodeLogical     NodeType = "LogicalExpression"
	NodeConditional NodeType = "ConditionalExpression"

	// Constructors
	NodeArray    NodeType = "ArrayExpression"
	NodeObject   NodeType = "ObjectExpression"
	NodeTemplate NodeType = "TemplateLiteral"
	NodeSpread   NodeType = "SpreadElement"

	// Functions
	NodeFunction     NodeType = "FunctionExpression"
	NodeArrow        NodeType = "ArrowFunctionExpression"
	NodeFunctionBody NodeType = "FunctionBody"

	// Statement lists
	NodeSequence NodeType = "SequenceExpression"
	NodeCompound NodeType = "Compound"
)

// Node is an immutable AST node. The set of implementations is closed: only the
// node structs in this package satisfy it.
type Node interface {
	Type() NodeType
	// Pos returns the byte offset of the node in the source text.
	Pos() int
	node()
}

// Position is embedded by every node to record its source offset.
type Position struct {
	Offset int
}

// Pos returns the byte offset of the node in the source text.
func (p Position) Pos() int { return p.Offset }

func (Position) node() {}

// Identifier is a bare name resolved against the scope chain.
type Identifier struct {
	Position
	Name string
}

// Literal is a primitive constant: float64, string, bool, nil (null) or Undefined.
type Literal struct {
	Position
	Value any
	Raw   string
}

// MemberExpression is object.property, object[property] or their optional forms.
type MemberExpression struct {
	Position
	Object   Node
	Property Node
	Computed bool
	Optional bool
}

// CallExpression is callee(arguments...). Optional marks callee?.(...).
type CallExpression struct {
	Position
	Callee    Node
	Arguments []Node
	Optional  bool
}

// NewExpression is new callee(arguments...).
type NewExpression struct {
	Position
	Callee    Node
	Arguments []Node
}

// UnaryExpression is a prefix operator applied to Argument.
type UnaryExpression struct {
	Position
	Operator string
	Argument Node
}

// Prefix is always true; only prefix unary operators exist in the grammar.
func (*UnaryExpression) Prefix() bool { return true }

// BinaryExpression is Left Operator Right. Assignment is the "=" operator.
type BinaryExpression struct {
	Position
	Operator string
	Left     Node
	Right    Node
}

// LogicalExpression is a short-circuit operator: "&&", "||" or "??".
type LogicalExpression struct {
	Position
	Operator string
	Left     Node
	Right    Node
}

// ConditionalExpression is Test ? Consequent : Alternate.
type ConditionalExpression struct {
	Position
	Test       Node
	Consequent Node
	Alternate  Node
}

// ArrayExpression is an array literal. A nil element is an elision (hole).
type ArrayExpression struct {
	Position
	Elements []Node
}

// Property is a single key/value pair of an object literal.
type Property struct {
	Key       Node // *Identifier or *Literal when not Computed
	Value     Node
	Computed  bool
	Shorthand bool
}

// ObjectExpression is an object literal.
type ObjectExpression struct {
	Position
	Properties []*Property
}

// SpreadElement is ...Argument inside an array literal or an argument list.
type SpreadElement struct {
	Position
	Argument Node
}

// TemplateElement is one literal chunk of a template literal.
type TemplateElement struct {
	Raw    string
	Cooked string
	Tail   bool
}

// TemplateLiteral is a backtick string with ${} interpolations.
// len(Quasis) == len(Expressions)+1.
type TemplateLiteral struct {
	Position
	Quasis      []*TemplateElement
	Expressions []Node
}

// FunctionBody is the reduced block grammar of function bodies: an optional
// return keyword followed by at most one expression.
type FunctionBody struct {
	Position
	Argument Node // nil for an empty body
	Return   bool
}

// FunctionExpression is function name?(params) { body }.
type FunctionExpression struct {
	Position
	Name   *Identifier
	Params []*Identifier
	Body   *FunctionBody
}

// ArrowFunctionExpression is (params) => body. When ExpressionBody is set the
// body value is returned implicitly.
type ArrowFunctionExpression struct {
	Position
	Params         []*Identifier
	Body           Node
	ExpressionBody bool
}

// SequenceExpression is a comma separated list evaluating to its last element.
type SequenceExpression struct {
	Position
	Expressions []Node
}

// Compound holds several top-level statements separated by ';'.
type Compound struct {
	Position
	Body []Node
}

func (*Identifier) Type() NodeType              { return NodeIdentifier }
func (*Literal) Type() NodeType                 { return NodeLiteral }
func (*MemberExpression) Type() NodeType        { return NodeMember }
func (*CallExpression) Type() NodeType          { return NodeCall }
func (*NewExpression) Type() NodeType           { return NodeNew }
func (*UnaryExpression) Type() NodeType         { return NodeUnary }
func (*BinaryExpression) Type() NodeType        { return NodeBinary }
func (*LogicalExpression) Type() NodeType       { return NodeLogical }
func (*ConditionalExpression) Type() NodeType   { return NodeConditional }
func (*ArrayExpression) Type() NodeType         { return NodeArray }
func (*ObjectExpression) Type() NodeType        { return NodeObject }
func (*SpreadElement) Type() NodeType           { return NodeSpread }
func (*TemplateLiteral) Type() NodeType         { return NodeTemplate }
func (*FunctionBody) Type() NodeType            { return NodeFunctionBody }
func (*FunctionExpression) Type() NodeType      { return NodeFunction }
func (*ArrowFunctionExpression) Type() NodeType { return NodeArrow }
func (*SequenceExpression) Type() NodeType      { return NodeSequence }
func (*Compound) Type() NodeType                { return NodeCompound }
