package format

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/grit/ast"
)

// ASTYAMLEncoder writes one YAML document per tree.
type ASTYAMLEncoder struct {
	w io.Writer
}

func NewASTYAMLEncoder(w io.Writer) *ASTYAMLEncoder {
	return &ASTYAMLEncoder{w: w}
}

func (e *ASTYAMLEncoder) Encode(node *ast.Node) error {
	enc := yaml.NewEncoder(e.w)
	enc.SetIndent(2)
	if err := enc.Encode(nodeToData(node)); err != nil {
		return err
	}
	return enc.Close()
}
