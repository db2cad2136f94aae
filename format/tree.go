package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/grit/ast"
	"github.com/dhamidi/grit/token"
)

// TreeEncoder writes a tree one node per line, indented by depth. Leaves
// show their position and quoted text.
type TreeEncoder struct {
	w io.Writer
	// Trivia also prints the trivia attached to leaves.
	Trivia bool
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w}
}

func (e *TreeEncoder) Encode(node *ast.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TreeEncoder) MarshalText(node *ast.Node) ([]byte, error) {
	var sb strings.Builder
	e.write(&sb, node, 0)
	return []byte(sb.String()), nil
}

func (e *TreeEncoder) write(sb *strings.Builder, n *ast.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	tok := n.Token()
	if tok == nil {
		fmt.Fprintf(sb, "%s%s\n", indent, n.Name())
	} else {
		if e.Trivia {
			for _, tr := range tok.Trivia {
				fmt.Fprintf(sb, "%s# %s %s\n", indent, tr.Kind, strconv.Quote(tr.Text()))
			}
		}
		fmt.Fprintf(sb, "%s%s %d:%d %s\n", indent, n.Name(), tok.Line, tok.Column, strconv.Quote(tok.OriginalValue))
	}
	for _, child := range n.Children() {
		e.write(sb, child, depth+1)
	}
}

// TokenEncoder writes tokens one per line, tab separated: position, type
// and quoted text, each preceded by its trivia.
type TokenEncoder struct {
	w io.Writer
}

func NewTokenEncoder(w io.Writer) *TokenEncoder {
	return &TokenEncoder{w: w}
}

func (e *TokenEncoder) Encode(tokens []*token.Token) error {
	text, err := e.MarshalText(tokens)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TokenEncoder) MarshalText(tokens []*token.Token) ([]byte, error) {
	var sb strings.Builder
	for _, tok := range tokens {
		for _, tr := range tok.Trivia {
			first := tr.Token()
			fmt.Fprintf(&sb, "%d:%d\t%s\t%s\n", first.Line, first.Column, strings.ToLower(tr.Kind.String()), strconv.Quote(tr.Text()))
		}
		fmt.Fprintf(&sb, "%d:%d\t%s\t%s\n", tok.Line, tok.Column, tok.Type.Name(), strconv.Quote(tok.OriginalValue))
	}
	return []byte(sb.String()), nil
}
