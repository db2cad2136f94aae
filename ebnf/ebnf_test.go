package ebnf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/grit/ast"
	"github.com/dhamidi/grit/grammar"
	"github.com/dhamidi/grit/parser"
	"github.com/dhamidi/grit/vm"
)

const greeting = `
Greeting = "hello" name { "," name } "!" .
name     = letter { letter } .
letter   = "a" … "z" .
`

func load(t *testing.T, src, start string, opts ...Option) *parser.Lexerless {
	t.Helper()
	g, err := Load("test.ebnf", strings.NewReader(src), start, opts...)
	require.NoError(t, err)
	p, err := parser.NewLexerless(g)
	require.NoError(t, err)
	return p
}

func TestLoad(t *testing.T) {
	p := load(t, greeting, "Greeting")

	n, err := p.ParseString("hello bob,  alice !")
	require.NoError(t, err)
	assert.Equal(t, "Greeting", n.Name())

	var names []string
	for _, name := range n.Children(Kind("name")) {
		names = append(names, name.Value())
	}
	assert.Equal(t, []string{"bob", "alice"}, names)
	assert.Equal(t, 5, n.NumChildren())

	bob := n.FirstChild(Kind("name")).Token()
	require.Len(t, bob.Trivia, 1)
	assert.Equal(t, " ", bob.Trivia[0].Text())
	assert.Equal(t, 7, bob.Column)
}

func TestLexicalProductionsAdmitNoSpacing(t *testing.T) {
	p := load(t, greeting, "Greeting")

	_, err := p.ParseString("hello b ob!")
	var f *vm.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, 8, f.Index, "spacing after the first letter ends the name")
}

func TestFailureMessage(t *testing.T) {
	p := load(t, greeting, "Greeting")

	_, err := p.ParseString("hello bob")
	var rerr *parser.RecognitionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 10, rerr.Column)
	assert.Equal(t, `"," or "!"`, rerr.Failure.Expected())
}

func TestComments(t *testing.T) {
	p := load(t, greeting, "Greeting", WithComments(`#[^\n]*`))

	n, err := p.ParseString("hello # the name\n  bob!")
	require.NoError(t, err)
	bob := n.FirstChild(Kind("name")).Token()
	require.Len(t, bob.Comments(), 1)
	assert.Equal(t, "# the name", bob.Comments()[0].Text())
	assert.Len(t, bob.Trivia, 3)
}

func TestAlternativesAreOrdered(t *testing.T) {
	first := load(t, `Word = "a" | "ab" .`, "Word")
	_, err := first.ParseString("ab")
	assert.Error(t, err)

	longest := load(t, `Word = "ab" | "a" .`, "Word")
	for _, input := range []string{"a", "ab"} {
		_, err := longest.ParseString(input)
		assert.NoError(t, err, input)
	}
}

func TestRootCollapsesToStartProduction(t *testing.T) {
	p := load(t, `List = [ Item { Item } ] . Item = "x" .`, "List")

	n, err := p.ParseString(" x x ")
	require.NoError(t, err)
	assert.True(t, n.Is(grammar.RuleKey("List")))
	assert.Len(t, n.Children(grammar.RuleKey("Item")), 2)

	empty, err := p.ParseString("")
	require.NoError(t, err)
	assert.True(t, empty.Is(grammar.RuleKey("List")))
	assert.False(t, empty.HasChildren())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		start string
		want  string
	}{
		{"syntax", `Greeting = "hello"`, "Greeting", "parse grammar"},
		{"missing start", greeting, "Farewell", "verify grammar"},
		{"undefined", `A = B .`, "A", "verify grammar"},
		{"lexical start", `a = "x" .`, "a", "verify grammar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("test.ebnf", strings.NewReader(tt.src), tt.start)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "greeting.ebnf")
	require.NoError(t, os.WriteFile(path, []byte(greeting), 0o644))

	g, err := LoadFile(path, "Greeting")
	require.NoError(t, err)
	assert.Equal(t, RootKey, g.Root())
	assert.NotNil(t, g.Rule("letter"))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.ebnf"), "Greeting")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsLexical(t *testing.T) {
	assert.True(t, IsLexical("digit"))
	assert.True(t, IsLexical("_x"))
	assert.False(t, IsLexical("Expr"))
	var _ ast.Type = Kind("digit")
}
