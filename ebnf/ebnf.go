// Package ebnf builds lexerless grammars from EBNF grammar files in the
// notation of golang.org/x/exp/ebnf.
//
// Productions whose names start with a lower-case letter are lexical: each
// becomes a single token of its own kind, with no node of its own, and
// nothing may appear between its parts. The other productions are
// syntactic, and whitespace (and, when configured, comments) may precede
// every token they contain. Alternatives are tried in the order they are
// written.
package ebnf

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"
	"unicode"
	"unicode/utf8"

	xebnf "golang.org/x/exp/ebnf"

	"github.com/dhamidi/grit/grammar"
	"github.com/dhamidi/grit/pattern"
	"github.com/dhamidi/grit/token"
)

const (
	// RootKey names the generated rule matching the start production,
	// the trailing spacing and the end of input.
	RootKey grammar.RuleKey = "$root"
	// SpacingKey names the generated rule matching whitespace and comments.
	SpacingKey grammar.RuleKey = "$spacing"
)

type Option func(*loader)

// WithWhitespace replaces the whitespace pattern, `\s+` by default.
func WithWhitespace(regexp string) Option {
	return func(l *loader) {
		l.whitespace = regexp
	}
}

// WithComments makes text matching regexp comment trivia wherever
// whitespace may appear.
func WithComments(regexp string) Option {
	return func(l *loader) {
		l.comments = append(l.comments, regexp)
	}
}

func WithPatternTimeout(d time.Duration) Option {
	return func(l *loader) {
		l.timeout = d
	}
}

type loader struct {
	whitespace string
	comments   []string
	timeout    time.Duration

	source xebnf.Grammar
	b      *grammar.Builder
	err    error
}

// Parse reads an EBNF grammar without converting it.
func Parse(filename string, r io.Reader) (xebnf.Grammar, error) {
	g, err := xebnf.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return g, nil
}

// LoadFile reads the EBNF grammar at path and converts it starting at the
// production start.
func LoadFile(path, start string, opts ...Option) (*grammar.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()
	return Load(path, f, start, opts...)
}

func Load(filename string, r io.Reader, start string, opts ...Option) (*grammar.Grammar, error) {
	g, err := Parse(filename, r)
	if err != nil {
		return nil, err
	}
	return Convert(g, start, opts...)
}

// Convert verifies g from start and turns it into a lexerless grammar whose
// root rule is RootKey.
func Convert(g xebnf.Grammar, start string, opts ...Option) (*grammar.Grammar, error) {
	if err := xebnf.Verify(g, start); err != nil {
		return nil, fmt.Errorf("verify grammar: %w", err)
	}
	if IsLexical(start) {
		return nil, fmt.Errorf("verify grammar: start production %s is lexical", start)
	}
	l := &loader{
		whitespace: `\s+`,
		timeout:    pattern.DefaultTimeout,
		source:     g,
		b:          grammar.NewLexerlessBuilder(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.b.SetPatternTimeout(l.timeout)
	return l.convert(start)
}

// IsLexical reports whether name is a lexical production.
func IsLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}

func (l *loader) convert(start string) (*grammar.Grammar, error) {
	b := l.b
	b.Rule(RootKey).Is(grammar.RuleKey(start), SpacingKey, b.EndOfInput()).Skip()
	b.Rule(SpacingKey).Is(l.spacing()).Skip()
	b.SetRoot(RootKey)

	names := make([]string, 0, len(l.source))
	for name := range l.source {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prod := l.source[name]
		key := grammar.RuleKey(name)
		if IsLexical(name) {
			b.Rule(key).Is(b.Token(Kind(name), l.expr(prod.Expr, true))).Skip()
		} else {
			b.Rule(key).Is(l.expr(prod.Expr, false))
		}
	}
	if l.err != nil {
		return nil, l.err
	}
	return b.Build()
}

func (l *loader) spacing() grammar.Expr {
	b := l.b
	if len(l.comments) == 0 {
		return b.SkippedTrivia(b.Regexp("(?:" + l.whitespace + ")*"))
	}
	alts := []any{b.SkippedTrivia(b.Regexp(l.whitespace))}
	for _, c := range l.comments {
		alts = append(alts, b.CommentTrivia(b.Regexp(c)))
	}
	return b.ZeroOrMore(b.FirstOf(alts...))
}

// Kind returns the token type of the lexical production name, for use with
// ast.Node.Is and Children.
func Kind(name string) token.Kind {
	return token.NewKind(name, name)
}

// expr converts e. Inside lexical productions nothing is skipped; in
// syntactic ones spacing precedes every token.
func (l *loader) expr(e xebnf.Expression, lexical bool) grammar.Expr {
	b := l.b
	switch e := e.(type) {
	case nil:
		return b.Literal("")
	case xebnf.Alternative:
		alts := make([]any, len(e))
		for i, alt := range e {
			alts[i] = l.expr(alt, lexical)
		}
		return b.FirstOf(alts...)
	case xebnf.Sequence:
		items := make([]any, len(e))
		for i, item := range e {
			items[i] = l.expr(item, lexical)
		}
		return b.Sequence(items...)
	case *xebnf.Group:
		return l.expr(e.Body, lexical)
	case *xebnf.Option:
		return b.Optional(l.expr(e.Body, lexical))
	case *xebnf.Repetition:
		return b.ZeroOrMore(l.expr(e.Body, lexical))
	case *xebnf.Name:
		if !lexical && IsLexical(e.String) {
			return b.Sequence(SpacingKey, grammar.RuleKey(e.String))
		}
		return b.Sequence(grammar.RuleKey(e.String))
	case *xebnf.Token:
		return l.spaced(b.Literal(e.String), lexical)
	case *xebnf.Range:
		class := "[" + pattern.Escape(e.Begin.String) + "-" + pattern.Escape(e.End.String) + "]"
		return l.spaced(b.Regexp(class), lexical)
	}
	if l.err == nil {
		l.err = fmt.Errorf("convert grammar: unsupported expression %T at %s", e, e.Pos())
	}
	return b.Literal("")
}

func (l *loader) spaced(leaf grammar.Expr, lexical bool) grammar.Expr {
	if lexical {
		return leaf
	}
	return l.b.Sequence(SpacingKey, leaf)
}
