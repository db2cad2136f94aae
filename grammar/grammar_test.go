package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/grit/token"
)

const (
	expr   RuleKey = "EXPR"
	number RuleKey = "NUMBER"
	stmt   RuleKey = "STMT"
)

var semi = token.NewKind("SEMI", ";")

func TestBuildLexerless(t *testing.T) {
	b := NewLexerlessBuilder()
	b.Rule(expr).Is(number, b.ZeroOrMore("+", number)).SkipIfOneChild()
	b.Rule(number).Is(b.Regexp(`[0-9]+`))
	b.SetRoot(expr)

	g, err := b.Build()
	require.NoError(t, err)

	assert.True(t, g.Lexerless())
	assert.Equal(t, expr, g.Root())
	assert.Equal(t, []RuleKey{expr, number}, g.Rules())

	r := g.Rule(expr)
	require.NotNil(t, r)
	assert.Equal(t, SkipIfOneChild, r.Policy())

	seq, ok := r.Body().(*Sequence)
	require.True(t, ok)
	require.Len(t, seq.Subs, 2)
	assert.Same(t, g.Rule(number), seq.Subs[0])
	assert.Equal(t, `zeroOrMore(sequence("+", NUMBER))`, seq.Subs[1].String())
}

func TestBuildFaults(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
		rule  RuleKey
	}{
		{
			name: "missing body",
			build: func(b *Builder) {
				b.Rule(expr).Is(number)
			},
			rule: number,
		},
		{
			name: "body assigned twice",
			build: func(b *Builder) {
				b.Rule(expr).Is("a")
				b.Rule(expr).Is("b")
			},
			rule: expr,
		},
		{
			name: "invalid argument type",
			build: func(b *Builder) {
				b.Rule(expr).Is(42.0)
			},
			rule: expr,
		},
		{
			name: "token type in lexerless grammar",
			build: func(b *Builder) {
				b.Rule(stmt).Is(semi)
			},
			rule: stmt,
		},
		{
			name: "lexerful leaf in lexerless grammar",
			build: func(b *Builder) {
				b.Rule(stmt).Is(b.TillNewLine())
			},
		},
		{
			name: "invalid regexp",
			build: func(b *Builder) {
				b.Rule(number).Is(b.Regexp(`[0-`))
			},
		},
		{
			name: "undefined root",
			build: func(b *Builder) {
				b.Rule(expr).Is("x")
				b.SetRoot(stmt)
			},
			rule: stmt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewLexerlessBuilder()
			tt.build(b)
			g, err := b.Build()
			assert.Nil(t, g)

			var gerr *Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tt.rule, gerr.Rule)
		})
	}
}

func TestFirstFaultIsSticky(t *testing.T) {
	b := NewLexerlessBuilder()
	b.Rule(expr).Is(3)
	b.Rule(expr).Is("a")
	b.Rule(expr).Is("b")

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incorrect type of parsing expression: int")
}

func TestOverrideReplacesBody(t *testing.T) {
	b := NewLexerlessBuilder()
	b.Rule(expr).Is("a")
	b.Rule(expr).Override("b")

	g, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, `"b"`, g.Rule(expr).Body().String())
}

func TestLexerfulLeaves(t *testing.T) {
	lparen := token.NewKind("LPAREN", "(")
	rparen := token.NewKind("RPAREN", ")")

	b := NewLexerfulBuilder()
	b.Rule(stmt).Is(
		b.FirstOf(
			b.TokenBridge(lparen, rparen),
			b.TokenTypes(token.Identifier, token.Constant),
			b.AnyToken(),
		),
		semi,
		b.TillNewLine(),
		b.EndOfInput(),
	)
	g, err := b.Build()
	require.NoError(t, err)
	assert.False(t, g.Lexerless())

	seq := g.Rule(stmt).Body().(*Sequence)
	assert.Equal(t, "firstOf(bridge(LPAREN, RPAREN), IDENTIFIER or CONSTANT, any token)", seq.Subs[0].String())
	assert.IsType(t, &TokenType{}, seq.Subs[1])
	assert.Equal(t, "end of input", seq.Subs[3].String())

	b = NewLexerfulBuilder()
	b.Rule(stmt).Is(b.Regexp(`x`))
	_, err = b.Build()
	assert.Error(t, err)
}

func TestRetainedRuleBuilderCannotChangeBuiltGrammar(t *testing.T) {
	b := NewLexerlessBuilder()
	rb := b.Rule(expr).Is("a")
	g, err := b.Build()
	require.NoError(t, err)

	rb.Override("zzz").Skip()
	rb.SkipIfOneChild()

	r := g.Rule(expr)
	require.NotNil(t, r)
	assert.Equal(t, `"a"`, r.Body().String())
	assert.Equal(t, Keep, r.Policy())
}

func TestSingleArgumentIsNotWrapped(t *testing.T) {
	b := NewLexerlessBuilder()
	lit := b.Literal("x")
	assert.Same(t, lit, b.Sequence(lit))
	assert.Same(t, lit, b.FirstOf(lit))
}

func TestChildren(t *testing.T) {
	b := NewLexerlessBuilder()
	a, c := b.Literal("a"), b.Literal("c")
	seq := b.Sequence(a, c)
	assert.Equal(t, []Expr{a, c}, Children(seq))
	assert.Equal(t, []Expr{seq}, Children(b.Optional(seq)))
	assert.Empty(t, Children(a))
	assert.Empty(t, Children(b.Rule(expr).rule))
}

func TestBuilderIsSpentAfterBuild(t *testing.T) {
	b := NewLexerlessBuilder()
	b.Rule(expr).Is("x")
	g, err := b.Build()
	require.NoError(t, err)

	b.Rule(stmt).Is("y")
	assert.Nil(t, g.Rule(stmt))
	_, err = b.Build()
	assert.Error(t, err)
}
