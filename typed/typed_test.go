package typed

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/grit/ast"
	"github.com/dhamidi/grit/grammar"
	"github.com/dhamidi/grit/parser"
	"github.com/dhamidi/grit/token"
)

const (
	ruleSum    grammar.RuleKey = "SUM"
	ruleNumber grammar.RuleKey = "NUMBER"
	rulePlus   grammar.RuleKey = "PLUS"
	ruleWrap   grammar.RuleKey = "WRAP"
)

func parse(t *testing.T, root grammar.RuleKey, src string) *ast.Node {
	t.Helper()
	b := grammar.NewLexerlessBuilder()
	b.Rule(ruleSum).Is(ruleNumber, b.ZeroOrMore(rulePlus, ruleNumber), b.EndOfInput())
	b.Rule(ruleNumber).Is(b.Regexp(`[0-9]+`))
	b.Rule(rulePlus).Is("+")
	b.Rule(ruleWrap).Is(ruleNumber)
	g, err := b.Build()
	require.NoError(t, err)
	p, err := parser.NewLexerless(g, parser.WithRoot(root))
	require.NoError(t, err)
	n, err := p.ParseString(src)
	require.NoError(t, err)
	return n
}

func number(_ *Context, n *ast.Node) (int, error) {
	return strconv.Atoi(n.TokenText())
}

func sum(ctx *Context, n *ast.Node) (int, error) {
	terms, err := All[int](ctx, n.Children(ruleNumber))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, term := range terms {
		total += term
	}
	return total, nil
}

func TestBuild(t *testing.T) {
	r := NewRegistry()
	Register(r, ruleNumber, number)
	Register(r, ruleSum, sum)
	assert.True(t, r.Has(ruleSum))
	assert.False(t, r.Has(rulePlus))

	total, err := Build[int](r, parse(t, ruleSum, "12+3+4"))
	require.NoError(t, err)
	assert.Equal(t, 19, total)
}

func TestFallbacks(t *testing.T) {
	r := NewRegistry()
	Register(r, ruleNumber, number)

	v, err := Build[int](r, parse(t, ruleWrap, "42"))
	require.NoError(t, err)
	assert.Equal(t, 42, v, "a node with one child takes the child's value")

	tree := parse(t, ruleSum, "1+2")
	tok, err := Build[*token.Token](r, tree.FirstChild(rulePlus))
	require.NoError(t, err)
	assert.Equal(t, "+", tok.Value)

	_, err = Build[int](r, tree)
	assert.ErrorIs(t, err, ErrNoFactory)
	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Same(t, tree, terr.Node)
}

func TestErrors(t *testing.T) {
	r := NewRegistry()
	Register(r, ruleNumber, func(*Context, *ast.Node) (int, error) {
		return 0, errors.New("boom")
	})
	Register(r, ruleSum, sum)

	_, err := Build[int](r, parse(t, ruleSum, "1+2"))
	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "NUMBER", terr.Node.Name(), "the innermost failing node is reported")
	assert.Equal(t, "typed: NUMBER at 1:1: boom", err.Error())

	Register(r, ruleNumber, number)
	_, err = Build[string](r, parse(t, ruleWrap, "7"))
	assert.EqualError(t, err, "typed: WRAP at 1:1: got int, want string")
}

func TestContextValue(t *testing.T) {
	type scope struct{ seen []string }
	r := NewRegistry()
	Register(r, ruleNumber, func(ctx *Context, n *ast.Node) (string, error) {
		s := ctx.Value.(*scope)
		s.seen = append(s.seen, n.TokenText())
		return Text(ctx, n)
	})
	Register(r, ruleSum, func(ctx *Context, n *ast.Node) ([]string, error) {
		return All[string](ctx, n.Children(ruleNumber))
	})

	s := &scope{}
	texts, err := BuildWith[[]string](r, s, parse(t, ruleSum, "1+22"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "22"}, texts)
	assert.Equal(t, texts, s.seen)
}

func TestOptionalAndTok(t *testing.T) {
	r := NewRegistry()
	Register(r, ruleNumber, Tok)
	ctx := &Context{registry: r}
	tree := parse(t, ruleSum, "5")

	missing, err := Optional[*token.Token](ctx, tree.FirstChild(rulePlus))
	require.NoError(t, err)
	assert.Nil(t, missing)

	tok, err := Optional[*token.Token](ctx, tree.FirstChild(ruleNumber))
	require.NoError(t, err)
	assert.Equal(t, "5", tok.Value)
}
