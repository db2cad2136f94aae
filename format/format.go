// Package format encodes syntax trees and token lists for display and for
// consumption by other tools.
package format

import (
	"fmt"
	"io"
	"sort"

	"github.com/dhamidi/grit/ast"
)

type Encoder interface {
	Encode(n *ast.Node) error
}

var encoders = map[string]func(io.Writer) Encoder{
	"json": func(w io.Writer) Encoder { return NewASTJSONEncoder(w) },
	"yaml": func(w io.Writer) Encoder { return NewASTYAMLEncoder(w) },
	"tree": func(w io.Writer) Encoder { return NewTreeEncoder(w) },
}

// New returns the encoder called name writing to w.
func New(name string, w io.Writer) (Encoder, error) {
	if f, ok := encoders[name]; ok {
		return f(w), nil
	}
	return nil, fmt.Errorf("unknown format %q, want one of %v", name, Names())
}

func Names() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
