package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindIsComparable(t *testing.T) {
	a := NewKind("EQ", "==")
	b := NewKind("EQ", "==")
	assert.Equal(t, Type(a), Type(b))
	assert.NotEqual(t, Type(a), Type(NewKind("ASSIGN", "=")))
	assert.False(t, a.SkipFromAST())
	assert.True(t, NewSkippedKind("SEMI", ";").SkipFromAST())
}

func TestGenericNames(t *testing.T) {
	tests := []struct {
		typ  Generic
		name string
	}{
		{EOF, "EOF"},
		{Identifier, "IDENTIFIER"},
		{Comment, "COMMENT"},
		{UnknownChar, "UNKNOWN_CHAR"},
		{Undefined, "TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.typ.Name())
		})
	}
}

func TestTokenPositions(t *testing.T) {
	tok := &Token{
		Type:          Comment,
		Value:         "/* a\nb\nc */",
		OriginalValue: "/* a\nb\nc */",
		Line:          3,
		Column:        5,
		Offset:        10,
	}
	assert.Equal(t, 5, tok.EndLine())
	assert.Equal(t, 21, tok.EndOffset())
	assert.Equal(t, `3:5 COMMENT "/* a\nb\nc */"`, tok.String())
}

func TestTokenComments(t *testing.T) {
	c := &Token{Type: Comment, OriginalValue: "// x"}
	s := &Token{Type: Undefined, OriginalValue: "  "}
	tok := &Token{
		Type:   Identifier,
		Trivia: []Trivia{NewSkippedText(s), NewComment(c)},
	}
	assert.True(t, tok.HasTrivia())
	comments := tok.Comments()
	if assert.Len(t, comments, 1) {
		assert.Equal(t, c, comments[0].Token())
		assert.Equal(t, "// x", comments[0].Text())
	}
}
