// Package ast holds the syntax tree produced by a successful parse and the
// read-only queries over it.
package ast

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dhamidi/grit/token"
)

// Type tags a node. Rule nodes are typed by their rule key, leaf nodes by
// their token type.
type Type interface {
	Name() string
}

// Node is a syntax tree node. The tree is built once by the parsing machine
// and is immutable afterwards; parent and sibling links are for navigation
// only.
type Node struct {
	typ      Type
	tok      *token.Token
	from     int
	to       int
	children []*Node
	parent   *Node
	index    int
}

// NewNode returns a detached node covering the input range [from, to).
// Leaf nodes carry the token they were built from.
func NewNode(typ Type, tok *token.Token, from, to int) *Node {
	return &Node{typ: typ, tok: tok, from: from, to: to, index: -1}
}

// AddChild attaches child as the last child of n. It is only meant to be
// used while the tree is built.
func (n *Node) AddChild(child *Node) {
	if child != nil {
		child.parent = n
		child.index = len(n.children)
		n.children = append(n.children, child)
	}
}

func (n *Node) Type() Type          { return n.typ }
func (n *Node) Token() *token.Token { return n.tok }
func (n *Node) FromIndex() int      { return n.from }
func (n *Node) ToIndex() int        { return n.to }
func (n *Node) Parent() *Node       { return n.parent }
func (n *Node) NumChildren() int    { return len(n.children) }
func (n *Node) HasChildren() bool   { return len(n.children) > 0 }
func (n *Node) IsLeaf() bool        { return n.tok != nil && len(n.children) == 0 }

func (n *Node) Name() string {
	return n.typ.Name()
}

// Value returns the token value of a leaf and the reconstructed text of any
// other node.
func (n *Node) Value() string {
	if n.tok != nil {
		return n.tok.Value
	}
	return n.TokenText()
}

// Is reports whether n has one of types.
func (n *Node) Is(types ...Type) bool {
	for _, t := range types {
		if n.typ == t {
			return true
		}
	}
	return false
}

func (n *Node) matches(types []Type) bool {
	return len(types) == 0 || n.Is(types...)
}

// Children returns the children of n having one of types, or all of them
// when no type is given. The result is a copy.
func (n *Node) Children(types ...Type) []*Node {
	if len(types) == 0 {
		return slices.Clone(n.children)
	}
	var result []*Node
	for _, child := range n.children {
		if child.Is(types...) {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) FirstChild(types ...Type) *Node {
	for _, child := range n.children {
		if child.matches(types) {
			return child
		}
	}
	return nil
}

func (n *Node) LastChild(types ...Type) *Node {
	for i := len(n.children) - 1; i >= 0; i-- {
		if n.children[i].matches(types) {
			return n.children[i]
		}
	}
	return nil
}

func (n *Node) NextSibling() *Node {
	if n.parent == nil || n.index+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[n.index+1]
}

func (n *Node) PreviousSibling() *Node {
	if n.parent == nil || n.index <= 0 {
		return nil
	}
	return n.parent.children[n.index-1]
}

// FirstAncestor returns the closest ancestor having one of types, or the
// parent when no type is given.
func (n *Node) FirstAncestor(types ...Type) *Node {
	for p := n.parent; p != nil; p = p.parent {
		if p.matches(types) {
			return p
		}
	}
	return nil
}

// Descendants returns, in pre-order, every descendant having one of types.
func (n *Node) Descendants(types ...Type) []*Node {
	var result []*Node
	n.descendants(types, &result)
	return result
}

func (n *Node) descendants(types []Type, result *[]*Node) {
	for _, child := range n.children {
		if child.matches(types) {
			*result = append(*result, child)
		}
		child.descendants(types, result)
	}
}

func (n *Node) HasDescendant(types ...Type) bool {
	for _, child := range n.children {
		if child.matches(types) || child.HasDescendant(types...) {
			return true
		}
	}
	return false
}

// Tokens returns the tokens of all leaves below n, in source order.
func (n *Node) Tokens() []*token.Token {
	var result []*token.Token
	n.collectTokens(&result)
	return result
}

func (n *Node) collectTokens(result *[]*token.Token) {
	if n.tok != nil {
		*result = append(*result, n.tok)
	}
	for _, child := range n.children {
		child.collectTokens(result)
	}
}

// FirstToken returns the first token below n, or nil for an empty node.
func (n *Node) FirstToken() *token.Token {
	if n.tok != nil {
		return n.tok
	}
	for _, child := range n.children {
		if tok := child.FirstToken(); tok != nil {
			return tok
		}
	}
	return nil
}

func (n *Node) LastToken() *token.Token {
	if len(n.children) == 0 {
		return n.tok
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if tok := n.children[i].LastToken(); tok != nil {
			return tok
		}
	}
	return n.tok
}

// TokenText concatenates the original text of the leaf tokens. Trivia is
// left out.
func (n *Node) TokenText() string {
	var sb strings.Builder
	for _, tok := range n.Tokens() {
		sb.WriteString(tok.OriginalValue)
	}
	return sb.String()
}

// Line is the line of the first token, or 0.
func (n *Node) Line() int {
	if tok := n.FirstToken(); tok != nil {
		return tok.Line
	}
	return 0
}

func (n *Node) Column() int {
	if tok := n.FirstToken(); tok != nil {
		return tok.Column
	}
	return 0
}

func (n *Node) String() string {
	var sb strings.Builder
	n.writeIndent(&sb, 0, false)
	return sb.String()
}

// StringWithPositions is like String but also prints input ranges.
func (n *Node) StringWithPositions() string {
	var sb strings.Builder
	n.writeIndent(&sb, 0, true)
	return sb.String()
}

func (n *Node) writeIndent(sb *strings.Builder, indent int, showPositions bool) {
	sb.WriteString(strings.Repeat("  ", indent))
	sb.WriteString(n.Name())
	if showPositions {
		sb.WriteString(" [")
		sb.WriteString(strconv.Itoa(n.from))
		sb.WriteString("-")
		sb.WriteString(strconv.Itoa(n.to))
		sb.WriteString("]")
	}
	if n.tok != nil {
		sb.WriteString(" ")
		sb.WriteString(n.tok.OriginalValue)
	}
	sb.WriteString("\n")
	for _, child := range n.children {
		child.writeIndent(sb, indent+1, showPositions)
	}
}
