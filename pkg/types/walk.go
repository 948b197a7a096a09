package types

// Children returns the direct child nodes of n in source order.
// Array holes are skipped.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Identifier, *Literal:
		return nil
	case *MemberExpression:
		return []Node{n.Object, n.Property}
	case *CallExpression:
		return append([]Node{n.Callee}, n.Arguments...)
	case *NewExpression:
		return append([]Node{n.Callee}, n.Arguments...)
	case *UnaryExpression:
		return []Node{n.Argument}
	case *BinaryExpression:
		return []Node{n.Left, n.Right}
	case *LogicalExpression:
		return []Node{n.Left, n.Right}
	case *ConditionalExpression:
		return []Node{n.Test, n.Consequent, n.Alternate}
	case *ArrayExpression:
		out := make([]Node, 0, len(n.Elements))
		for _, el := range n.Elements {
			if el != nil {
				out = append(out, el)
			}
		}
		return out
	case *ObjectExpression:
		out := make([]Node, 0, 2*len(n.Properties))
		for _, p := range n.Properties {
			if p.Computed {
				out = append(out, p.Key)
			}
			out = append(out, p.Value)
		}
		return out
	case *SpreadElement:
		return []Node{n.Argument}
	case *TemplateLiteral:
		return n.Expressions
	case *FunctionBody:
		if n.Argument == nil {
			return nil
		}
		return []Node{n.Argument}
	case *FunctionExpression:
		out := make([]Node, 0, len(n.Params)+1)
		for _, p := range n.Params {
			out = append(out, p)
		}
		return append(out, n.Body)
	case *ArrowFunctionExpression:
		out := make([]Node, 0, len(n.Params)+1)
		for _, p := range n.Params {
			out = append(out, p)
		}
		return append(out, n.Body)
	case *SequenceExpression:
		return n.Expressions
	case *Compound:
		return n.Body
	}
	return nil
}

// Walk visits n and its descendants depth-first. When fn returns false the
// children of the current node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Depth returns the nesting depth of the tree rooted at n (a leaf has depth 1).
func Depth(n Node) int {
	if n == nil {
		return 0
	}
	max := 0
	for _, c := range Children(n) {
		if d := Depth(c); d > max {
			max = d
		}
	}
	return max + 1
}
