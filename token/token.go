// Package token defines the lexical units shared by the lexer, the grammar
// model and the parsing machine.
package token

import (
	"fmt"
	"strings"
)

// Type classifies a token. The set of types is open: grammars declare their
// own keywords and punctuators next to the Generic built-ins.
type Type interface {
	Name() string
	Value() string
	// SkipFromAST reports whether tokens of this type are matched but left
	// out of the syntax tree.
	SkipFromAST() bool
}

// Kind is a comparable Type for keywords, punctuators and other
// grammar-specific token classes.
type Kind struct {
	name  string
	value string
	skip  bool
}

// NewKind returns a Type named name whose canonical spelling is value.
func NewKind(name, value string) Kind {
	return Kind{name: name, value: value}
}

// NewSkippedKind is like NewKind but the resulting tokens never appear in
// the syntax tree.
func NewSkippedKind(name, value string) Kind {
	return Kind{name: name, value: value, skip: true}
}

func (k Kind) Name() string      { return k.name }
func (k Kind) Value() string     { return k.value }
func (k Kind) SkipFromAST() bool { return k.skip }
func (k Kind) String() string    { return k.name }

// Generic holds the token types every grammar can rely on.
type Generic int

const (
	EOF Generic = iota
	Identifier
	Literal
	Constant
	Comment
	UnknownChar
	Undefined
)

var genericNames = map[Generic]string{
	EOF:         "EOF",
	Identifier:  "IDENTIFIER",
	Literal:     "LITERAL",
	Constant:    "CONSTANT",
	Comment:     "COMMENT",
	UnknownChar: "UNKNOWN_CHAR",
	Undefined:   "TOKEN",
}

func (g Generic) Name() string {
	if name, ok := genericNames[g]; ok {
		return name
	}
	return "Unknown"
}

func (g Generic) Value() string {
	if g == EOF {
		return "EOF"
	}
	return g.Name()
}

func (g Generic) SkipFromAST() bool { return false }
func (g Generic) String() string    { return g.Name() }

// Token is a classified, positioned lexical unit. Tokens are created once,
// by the lexer or by the lexerless tree builder, and never modified.
type Token struct {
	Type Type
	// Value is the literal text, normalised for case-insensitive keywords.
	Value string
	// OriginalValue is the text exactly as it appears in the source.
	OriginalValue string
	URI           string
	Line          int
	Column        int
	// Offset is the rune offset of the first character in the source.
	Offset int
	Trivia []Trivia
}

// HasTrivia reports whether comments or skipped text precede the token.
func (t *Token) HasTrivia() bool {
	return len(t.Trivia) > 0
}

// Comments returns the comment trivia attached to the token.
func (t *Token) Comments() []Trivia {
	var result []Trivia
	for _, tr := range t.Trivia {
		if tr.Kind == TriviaComment {
			result = append(result, tr)
		}
	}
	return result
}

// EndLine returns the line on which the token's text ends, accounting for
// embedded newlines.
func (t *Token) EndLine() int {
	return t.Line + strings.Count(t.OriginalValue, "\n")
}

// EndOffset is the rune offset just past the token.
func (t *Token) EndOffset() int {
	return t.Offset + len([]rune(t.OriginalValue))
}

func (t *Token) String() string {
	if t.URI != "" {
		return fmt.Sprintf("%s:%d:%d %s %q", t.URI, t.Line, t.Column, t.Type.Name(), t.OriginalValue)
	}
	return fmt.Sprintf("%d:%d %s %q", t.Line, t.Column, t.Type.Name(), t.OriginalValue)
}
