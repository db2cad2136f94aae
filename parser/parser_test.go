package parser

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/grit/grammar"
	"github.com/dhamidi/grit/lexer"
	"github.com/dhamidi/grit/token"
	"github.com/dhamidi/grit/vm"
)

var (
	kwLet   = token.NewKind("LET", "let")
	pAssign = token.NewKind("ASSIGN", "=")
	pSemi   = token.NewKind("SEMI", ";")
	tyNum   = token.NewKind("NUMBER", "NUMBER")
)

func greeting(t *testing.T) *grammar.Grammar {
	t.Helper()
	b := grammar.NewLexerlessBuilder()
	b.Rule("GREETING").Is("foo", " bar", b.EndOfInput())
	b.Rule("NAME").Is(b.Regexp(`[a-zé]+`), b.EndOfInput())
	b.SetRoot("GREETING")
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func statements(t *testing.T) (*grammar.Grammar, *lexer.Lexer) {
	t.Helper()
	lx, err := lexer.New(lexer.WithChannels(
		lexer.BlackHole(`\s+`),
		lexer.Regexp(tyNum, `[0-9]+`),
		lexer.IdentifierAndKeyword(`[a-z]+`, true, kwLet),
		lexer.Punctuator(pAssign, pSemi),
	))
	require.NoError(t, err)

	b := grammar.NewLexerfulBuilder()
	b.Rule("PROGRAM").Is(b.ZeroOrMore("STATEMENT"), token.EOF)
	b.Rule("STATEMENT").Is(kwLet, token.Identifier, pAssign, tyNum, pSemi)
	b.SetRoot("PROGRAM")
	g, err := b.Build()
	require.NoError(t, err)
	return g, lx
}

func TestLexerlessParse(t *testing.T) {
	p, err := NewLexerless(greeting(t))
	require.NoError(t, err)

	n, err := p.ParseString("foo bar")
	require.NoError(t, err)
	assert.Equal(t, "GREETING", n.Name())
	assert.Equal(t, "foo bar", n.TokenText())

	_, err = p.ParseString("foo")
	var rerr *RecognitionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 1, rerr.Line)
	assert.Equal(t, 4, rerr.Column)
	assert.Contains(t, rerr.Error(), "Parse error at line 1 column 4:")
	assert.Contains(t, rerr.Error(), `Expected: " bar" in GREETING`)

	var f *vm.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, 3, f.Index)
}

func TestWithRoot(t *testing.T) {
	p, err := NewLexerless(greeting(t), WithRoot("NAME"))
	require.NoError(t, err)

	n, err := p.ParseString("café")
	require.NoError(t, err)
	assert.Equal(t, "NAME", n.Name())

	_, err = NewLexerless(greeting(t), WithRoot("MISSING"))
	var gerr *grammar.Error
	assert.ErrorAs(t, err, &gerr)
}

func TestFlavorMismatch(t *testing.T) {
	g, lx := statements(t)
	_, err := NewLexerless(g)
	assert.Error(t, err)
	_, err = NewLexerful(greeting(t), lx)
	assert.Error(t, err)
}

func TestParseReaderWithCharset(t *testing.T) {
	p, err := NewLexerless(greeting(t), WithRoot("NAME"), WithCharset("ISO-8859-1"))
	require.NoError(t, err)

	n, err := p.ParseReader("latin1.txt", bytes.NewReader([]byte{'c', 'a', 'f', 0xe9}))
	require.NoError(t, err)
	assert.Equal(t, "café", n.TokenText())

	_, err = p.ParseReader("latin1.txt", bytes.NewReader([]byte{'C'}))
	var rerr *RecognitionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "latin1.txt", rerr.URI)
	assert.Contains(t, rerr.Error(), "latin1.txt: Parse error at line 1 column 1:")

	bad, err := NewLexerless(greeting(t), WithCharset("no-such-charset"))
	require.NoError(t, err)
	_, err = bad.ParseString("foo bar")
	require.NoError(t, err, "strings are not decoded")
	_, err = bad.ParseReader("x", bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "greeting.txt")
	require.NoError(t, os.WriteFile(path, []byte("foo bar"), 0o644))

	p, err := NewLexerless(greeting(t))
	require.NoError(t, err)
	n, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foo bar", n.TokenText())

	_, err = p.ParseFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLexerfulParse(t *testing.T) {
	g, lx := statements(t)
	p, err := NewLexerful(g, lx)
	require.NoError(t, err)
	assert.Same(t, lx, p.Lexer())

	n, err := p.ParseString("let x = 1;\nlet y = 2;")
	require.NoError(t, err)
	assert.Len(t, n.Children(grammar.RuleKey("STATEMENT")), 2)

	_, err = p.ParseString("let x = 1;\nlet y 2;")
	var rerr *RecognitionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 2, rerr.Line)
	assert.Equal(t, 7, rerr.Column)
	assert.Contains(t, rerr.Message, "Expected: ASSIGN in STATEMENT")
	assert.Contains(t, rerr.Message, "--> 2 | let y 2;")
}

func TestLexicalErrorsPropagate(t *testing.T) {
	g, lx := statements(t)
	p, err := NewLexerful(g, lx)
	require.NoError(t, err)

	_, err = p.ParseString("let x = 1; $")
	var lerr *lexer.Error
	require.ErrorAs(t, err, &lerr)
	assert.True(t, errors.Is(err, lexer.ErrNoChannel))
	var rerr *RecognitionError
	assert.False(t, errors.As(err, &rerr))
}

func TestParseTokensWithoutTokens(t *testing.T) {
	g, lx := statements(t)
	p, err := NewLexerful(g, lx)
	require.NoError(t, err)

	_, err = p.ParseTokens(nil)
	var rerr *RecognitionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 1, rerr.Line)
	assert.Equal(t, 1, rerr.Column)
}

func TestConcurrentParsing(t *testing.T) {
	g, lx := statements(t)
	p, err := NewLexerful(g, lx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src := "let a = 1;"
			if i%2 == 1 {
				src = "let a = ;"
			}
			_, errs[i] = p.ParseString(src)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if i%2 == 0 {
			assert.NoError(t, err)
		} else {
			assert.Error(t, err)
		}
	}
}
