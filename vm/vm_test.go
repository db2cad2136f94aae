package vm

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/grit/ast"
	"github.com/dhamidi/grit/grammar"
	"github.com/dhamidi/grit/pattern"
	"github.com/dhamidi/grit/token"
)

const (
	ruleExpr   grammar.RuleKey = "EXPR"
	ruleNumber grammar.RuleKey = "NUMBER"
	rulePlus   grammar.RuleKey = "PLUS"
	ruleA      grammar.RuleKey = "A"
	ruleB      grammar.RuleKey = "B"
	ruleR      grammar.RuleKey = "R"
	ruleY      grammar.RuleKey = "Y"
)

func compile(t testing.TB, b *grammar.Builder, root grammar.RuleKey) *Program {
	t.Helper()
	g, err := b.Build()
	require.NoError(t, err)
	p, err := Compile(g, root)
	require.NoError(t, err)
	return p
}

func parseChars(t *testing.T, p *Program, input string) *ast.Node {
	t.Helper()
	n, err := p.RunChars("", []rune(input))
	require.NoError(t, err)
	return n
}

func failChars(t *testing.T, p *Program, input string) *Failure {
	t.Helper()
	_, err := p.RunChars("", []rune(input))
	var f *Failure
	require.ErrorAs(t, err, &f)
	return f
}

func names(nodes []*ast.Node) []string {
	var result []string
	for _, n := range nodes {
		result = append(result, n.Name()+"("+n.TokenText()+")")
	}
	return result
}

func TestNumberScenario(t *testing.T) {
	b := grammar.NewLexerlessBuilder()
	digit := b.Regexp(`[0-9]`)
	b.Rule(ruleNumber).Is(b.Token(token.Literal, digit, b.ZeroOrMore(digit)))
	p := compile(t, b, ruleNumber)

	n := parseChars(t, p, "123")
	assert.Equal(t, ruleNumber, n.Type())
	require.Equal(t, 1, n.NumChildren())
	child := n.FirstChild()
	assert.True(t, child.Is(token.Literal))
	assert.Equal(t, "123", child.Token().Value)
	assert.Equal(t, 0, n.FromIndex())
	assert.Equal(t, 3, n.ToIndex())

	f := failChars(t, p, "")
	assert.Equal(t, 0, f.Index)
	require.Len(t, f.Expectations, 1)
	assert.IsType(t, &grammar.Token{}, f.Expectations[0].Expr)
	assert.Equal(t, "LITERAL in NUMBER", f.Expectations[0].String())
}

func TestExprScenario(t *testing.T) {
	b := grammar.NewLexerlessBuilder()
	b.Rule(ruleExpr).Is(ruleNumber, b.Optional(rulePlus, ruleNumber)).SkipIfOneChild()
	b.Rule(ruleNumber).Is(b.Regexp(`[0-9]+`))
	b.Rule(rulePlus).Is("+")
	p := compile(t, b, ruleExpr)

	n := parseChars(t, p, "1+2")
	assert.Equal(t, ruleExpr, n.Type())
	assert.Equal(t, []string{"NUMBER(1)", "PLUS(+)", "NUMBER(2)"}, names(n.Children()))

	n = parseChars(t, p, "1")
	assert.Equal(t, ruleNumber, n.Type())
	assert.Equal(t, "1", n.TokenText())
	assert.Nil(t, n.Parent())
}

func TestOrderedChoicePrefersFirst(t *testing.T) {
	b := grammar.NewLexerlessBuilder()
	b.Rule(ruleR).Is(b.FirstOf(ruleA, ruleB))
	b.Rule(ruleA).Is("ab")
	b.Rule(ruleB).Is("a", "b")
	p := compile(t, b, ruleR)

	n := parseChars(t, p, "ab")
	assert.Equal(t, []string{"A(ab)"}, names(n.Children()))
}

func TestFailedAlternativeLeavesNoNodes(t *testing.T) {
	b := grammar.NewLexerlessBuilder()
	b.Rule(ruleR).Is(b.FirstOf(b.Sequence(ruleA, "x"), b.Sequence(ruleA, "b")))
	b.Rule(ruleA).Is("a")
	p := compile(t, b, ruleR)

	n := parseChars(t, p, "ab")
	assert.Equal(t, []string{"A(a)", "TOKEN(b)"}, names(n.Children()))
}

func TestLookaheadNeitherConsumesNorBuildsNodes(t *testing.T) {
	tree := func(body func(b *grammar.Builder) []any) string {
		b := grammar.NewLexerlessBuilder()
		b.Rule(ruleR).Is(body(b)...)
		b.Rule(ruleY).Is("y")
		p := compile(t, b, ruleR)
		return parseChars(t, p, "y").StringWithPositions()
	}

	plain := tree(func(b *grammar.Builder) []any { return []any{ruleY} })
	assert.Equal(t, plain, tree(func(b *grammar.Builder) []any {
		return []any{b.NextNot("x"), ruleY}
	}))
	assert.Equal(t, plain, tree(func(b *grammar.Builder) []any {
		return []any{b.Next(ruleY), ruleY}
	}))
}

func TestNextNotFails(t *testing.T) {
	b := grammar.NewLexerlessBuilder()
	b.Rule(ruleR).Is(b.NextNot("x"), b.Regexp(`[a-z]`))
	p := compile(t, b, ruleR)

	parseChars(t, p, "a")
	f := failChars(t, p, "x")
	assert.Equal(t, 0, f.Index)
	assert.Equal(t, `nextNot("x")`, f.Expected())

	b = grammar.NewLexerlessBuilder()
	b.Rule(ruleR).Is("abc", b.NextNot("d"), b.Regexp(`[a-z]*`))
	p = compile(t, b, ruleR)

	parseChars(t, p, "abc")
	f = failChars(t, p, "abcd")
	assert.Equal(t, 3, f.Index)
	require.Len(t, f.Expectations, 1)
	assert.Equal(t, `nextNot("d") in R`, f.Expectations[0].String())
}

func TestDeepestFailure(t *testing.T) {
	b := grammar.NewLexerlessBuilder()
	b.Rule(ruleR).Is("foo", " bar", b.EndOfInput())
	p := compile(t, b, ruleR)

	f := failChars(t, p, "foo")
	assert.Equal(t, 3, f.Index)
	assert.Equal(t, `parse error at index 3: expected " bar"`, f.Error())

	f = failChars(t, p, "foo bar!")
	assert.Equal(t, 7, f.Index)
	assert.Equal(t, "end of input", f.Expected())
}

func TestDeepestFailureKeepsAllAlternatives(t *testing.T) {
	b := grammar.NewLexerlessBuilder()
	b.Rule(ruleR).Is(b.FirstOf(b.Sequence("a", "b"), b.Sequence("a", ruleY), b.Sequence("x", "y", "z")))
	b.Rule(ruleY).Is("c")
	p := compile(t, b, ruleR)

	f := failChars(t, p, "ad")
	assert.Equal(t, 1, f.Index)
	require.Len(t, f.Expectations, 2)
	assert.Equal(t, `"b" in R`, f.Expectations[0].String())
	assert.Equal(t, `"c" in Y`, f.Expectations[1].String())
	assert.Equal(t, `"b" or "c"`, f.Expected())
}

func TestRepetition(t *testing.T) {
	b := grammar.NewLexerlessBuilder()
	b.Rule(ruleR).Is(b.ZeroOrMore(b.Optional("a")), b.EndOfInput())
	b.Rule(ruleY).Is(b.OneOrMore("a"), b.EndOfInput())
	g, err := b.Build()
	require.NoError(t, err)

	zero, err := Compile(g, ruleR)
	require.NoError(t, err)
	assert.Equal(t, 0, parseChars(t, zero, "").NumChildren())
	assert.Equal(t, 3, parseChars(t, zero, "aaa").NumChildren())

	one, err := Compile(g, ruleY)
	require.NoError(t, err)
	assert.Equal(t, 2, parseChars(t, one, "aa").NumChildren())
	assert.Equal(t, 0, failChars(t, one, "").Index)
}

func TestPolicies(t *testing.T) {
	b := grammar.NewLexerlessBuilder()
	b.Rule(ruleR).Is(ruleA, ruleB)
	b.Rule(ruleA).Is("a", "a").Skip()
	b.Rule(ruleB).Is("b").SkipIfOneChild()
	p := compile(t, b, ruleR)

	n := parseChars(t, p, "aab")
	assert.Equal(t, []string{"TOKEN(a)", "TOKEN(a)", "TOKEN(b)"}, names(n.Children()))
	for i, child := range n.Children() {
		assert.Same(t, n, child.Parent())
		assert.Equal(t, i, child.FromIndex())
	}
}

func TestLexerlessTrivia(t *testing.T) {
	id := token.NewKind("ID", "ID")
	b := grammar.NewLexerlessBuilder()
	spacing := b.SkippedTrivia(b.Regexp(`\s*`))
	b.Rule(ruleR).Is(
		spacing,
		b.Optional(b.CommentTrivia(b.Regexp(`#[^\n]*`)), spacing),
		b.Token(id, b.Regexp(`[a-z]+`)),
		spacing,
		b.EndOfInput(),
	)
	p := compile(t, b, ruleR)

	n, err := p.RunChars("test.txt", []rune(" # hi\n  foo "))
	require.NoError(t, err)
	require.Equal(t, 1, n.NumChildren())

	tok := n.FirstChild().Token()
	assert.Equal(t, token.Type(id), tok.Type)
	assert.Equal(t, "foo", tok.Value)
	assert.Equal(t, "test.txt", tok.URI)
	assert.Equal(t, [3]int{2, 3, 8}, [3]int{tok.Line, tok.Column, tok.Offset})

	require.Len(t, tok.Trivia, 3)
	assert.Equal(t, token.TriviaSkippedText, tok.Trivia[0].Kind)
	assert.Equal(t, " ", tok.Trivia[0].Text())
	require.Len(t, tok.Comments(), 1)
	assert.Equal(t, "# hi", tok.Comments()[0].Text())
	assert.Equal(t, token.Type(token.Comment), tok.Comments()[0].Token().Type)
	assert.Equal(t, 2, tok.Comments()[0].Token().Column)
	assert.Equal(t, "\n  ", tok.Trivia[2].Text())
}

func TestLeftRecursionOverflowsTheStack(t *testing.T) {
	b := grammar.NewLexerlessBuilder()
	b.Rule(ruleR).Is(b.FirstOf(b.Sequence(ruleR, "a"), "a"))
	p := compile(t, b, ruleR)

	_, err := p.RunChars("", []rune("aa"))
	assert.ErrorIs(t, err, ErrStackOverflow)
}

func TestPathologicalPattern(t *testing.T) {
	b := grammar.NewLexerlessBuilder()
	b.SetPatternTimeout(20 * time.Millisecond)
	b.Rule(ruleR).Is(b.Regexp(`(a+)+b`))
	p := compile(t, b, ruleR)

	_, err := p.RunChars("", []rune(strings.Repeat("a", 64)+"c"))
	var perr *pattern.Error
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, pattern.ErrTimeout)
}

func TestCompile(t *testing.T) {
	b := grammar.NewLexerlessBuilder()
	b.Rule(ruleExpr).Is(ruleNumber, b.ZeroOrMore(rulePlus, ruleNumber))
	b.Rule(ruleNumber).Is(b.Regexp(`[0-9]+`))
	b.Rule(rulePlus).Is("+")
	b.Rule(ruleY).Is("unused")
	b.SetRoot(ruleExpr)
	g, err := b.Build()
	require.NoError(t, err)

	p, err := Compile(g, "")
	require.NoError(t, err)
	assert.Equal(t, ruleExpr, p.Root().Key)
	assert.True(t, p.Lexerless())

	listing := p.String()
	assert.Equal(t, 1, strings.Count(listing, "NUMBER:\n"))
	assert.Equal(t, 4, strings.Count(listing, "call "))
	assert.NotContains(t, listing, "Y:")
	_, ok := p.Entry(ruleY)
	assert.False(t, ok)

	_, err = Compile(g, "MISSING")
	var gerr *grammar.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, grammar.RuleKey("MISSING"), gerr.Rule)
}

func TestProgramIsSharedBetweenGoroutines(t *testing.T) {
	b := grammar.NewLexerlessBuilder()
	b.Rule(ruleExpr).Is(ruleNumber, b.ZeroOrMore(rulePlus, ruleNumber), b.EndOfInput())
	b.Rule(ruleNumber).Is(b.Regexp(`[0-9]+`))
	b.Rule(rulePlus).Is("+")
	p := compile(t, b, ruleExpr)

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			input := strings.Repeat("1+", i) + "1"
			n, err := p.RunChars("", []rune(input))
			if err == nil && n.TokenText() != input {
				err = assert.AnError
			}
			errs[i] = err
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestRunModeMismatch(t *testing.T) {
	b := grammar.NewLexerlessBuilder()
	b.Rule(ruleR).Is("a")
	p := compile(t, b, ruleR)
	_, err := p.RunTokens(nil)
	assert.Error(t, err)
}
