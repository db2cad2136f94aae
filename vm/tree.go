package vm

import (
	"github.com/dhamidi/grit/ast"
	"github.com/dhamidi/grit/grammar"
	"github.com/dhamidi/grit/token"
)

// shape applies the rule's AST policy to the node built from kids. The
// result replaces the rule node in its parent's child list.
func shape(rule *grammar.Rule, from, to int, kids []*ast.Node) []*ast.Node {
	switch rule.Policy() {
	case grammar.Skip:
		return kids
	case grammar.SkipIfOneChild:
		if len(kids) == 1 {
			return kids
		}
	}
	n := ast.NewNode(rule.Key, nil, from, to)
	for _, kid := range kids {
		n.AddChild(kid)
	}
	return []*ast.Node{n}
}

// root turns the shaped top-level result into a single node.
func root(rule *grammar.Rule, from, to int, nodes []*ast.Node) *ast.Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	n := ast.NewNode(rule.Key, nil, from, to)
	for _, kid := range nodes {
		n.AddChild(kid)
	}
	return n
}

// lexerlessBuilder turns the parse tree over characters into tokens and
// AST nodes. Trivia is kept until the next token is created.
type lexerlessBuilder struct {
	uri     string
	input   []rune
	pending []token.Trivia

	offset int
	line   int
	column int
}

func buildLexerless(uri string, input []rune, top *node) *ast.Node {
	b := &lexerlessBuilder{uri: uri, input: input, line: 1, column: 1}
	rule := top.expr.(*grammar.Rule)
	return root(rule, top.from, top.to, b.visit(top))
}

// position returns the line and column of offset. Offsets are requested in
// increasing order, so the scan resumes where the previous call stopped.
func (b *lexerlessBuilder) position(offset int) (int, int) {
	if offset < b.offset {
		b.offset, b.line, b.column = 0, 1, 1
	}
	for ; b.offset < offset; b.offset++ {
		if b.input[b.offset] == '\n' {
			b.line++
			b.column = 1
		} else {
			b.column++
		}
	}
	return b.line, b.column
}

func (b *lexerlessBuilder) token(typ token.Type, n *node) *token.Token {
	line, column := b.position(n.from)
	text := string(b.input[n.from:n.to])
	return &token.Token{
		Type:          typ,
		Value:         text,
		OriginalValue: text,
		URI:           b.uri,
		Line:          line,
		Column:        column,
		Offset:        n.from,
	}
}

func (b *lexerlessBuilder) leaf(typ token.Type, n *node) []*ast.Node {
	tok := b.token(typ, n)
	if typ.SkipFromAST() {
		return nil
	}
	if len(b.pending) > 0 {
		tok.Trivia = b.pending
		b.pending = nil
	}
	return []*ast.Node{ast.NewNode(typ, tok, n.from, n.to)}
}

func (b *lexerlessBuilder) visit(n *node) []*ast.Node {
	switch e := n.expr.(type) {
	case *grammar.Rule:
		var kids []*ast.Node
		for _, child := range n.children {
			kids = append(kids, b.visit(child)...)
		}
		return shape(e, n.from, n.to, kids)

	case *grammar.Trivia:
		if n.from == n.to {
			return nil
		}
		typ := token.Type(token.Undefined)
		if e.Kind == token.TriviaComment {
			typ = token.Comment
		}
		b.pending = append(b.pending, token.Trivia{Kind: e.Kind, Tokens: []*token.Token{b.token(typ, n)}})
		return nil

	case *grammar.Token:
		return b.leaf(e.Type, n)
	}
	return b.leaf(token.Undefined, n)
}

func buildLexerful(tokens []*token.Token, top *node) *ast.Node {
	rule := top.expr.(*grammar.Rule)
	return root(rule, top.from, top.to, visitTokens(tokens, top))
}

func visitTokens(tokens []*token.Token, n *node) []*ast.Node {
	if rule, ok := n.expr.(*grammar.Rule); ok {
		var kids []*ast.Node
		for _, child := range n.children {
			kids = append(kids, visitTokens(tokens, child)...)
		}
		return shape(rule, n.from, n.to, kids)
	}
	var leaves []*ast.Node
	for i := n.from; i < n.to; i++ {
		tok := tokens[i]
		if tok.Type.SkipFromAST() {
			continue
		}
		leaves = append(leaves, ast.NewNode(tok.Type, tok, i, i+1))
	}
	return leaves
}
