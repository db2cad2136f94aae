package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/grit/ast"
	"github.com/dhamidi/grit/token"
)

type ASTJSONEncoder struct {
	w io.Writer
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(node *ast.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(text); err != nil {
		return err
	}
	_, err = io.WriteString(e.w, "\n")
	return err
}

func (e *ASTJSONEncoder) MarshalText(node *ast.Node) ([]byte, error) {
	return json.MarshalIndent(nodeToData(node), "", "  ")
}

// astNode is the shape shared by the JSON and YAML encoders.
type astNode struct {
	Type     string     `json:"type" yaml:"type"`
	Span     *astSpan   `json:"span,omitempty" yaml:"span,omitempty"`
	Token    *astToken  `json:"token,omitempty" yaml:"token,omitempty"`
	Children []*astNode `json:"children,omitempty" yaml:"children,omitempty"`
}

type astSpan struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

type astToken struct {
	Value    string      `json:"value" yaml:"value"`
	Original string      `json:"original,omitempty" yaml:"original,omitempty"`
	Line     int         `json:"line" yaml:"line"`
	Column   int         `json:"column" yaml:"column"`
	Trivia   []astTrivia `json:"trivia,omitempty" yaml:"trivia,omitempty"`
}

type astTrivia struct {
	Kind string `json:"kind" yaml:"kind"`
	Text string `json:"text" yaml:"text"`
}

func nodeToData(n *ast.Node) *astNode {
	an := &astNode{
		Type: n.Name(),
		Span: &astSpan{From: n.FromIndex(), To: n.ToIndex()},
	}

	if tok := n.Token(); tok != nil {
		an.Token = tokenToData(tok)
	}

	if n.HasChildren() {
		children := n.Children()
		an.Children = make([]*astNode, len(children))
		for i, child := range children {
			an.Children[i] = nodeToData(child)
		}
	}

	return an
}

func tokenToData(tok *token.Token) *astToken {
	at := &astToken{Value: tok.Value, Line: tok.Line, Column: tok.Column}
	if tok.OriginalValue != tok.Value {
		at.Original = tok.OriginalValue
	}
	for _, tr := range tok.Trivia {
		at.Trivia = append(at.Trivia, astTrivia{Kind: tr.Kind.String(), Text: tr.Text()})
	}
	return at
}
