// Package parser ties lexers, compiled grammars and the diagnostics
// formatter together into ready-to-use parsers.
package parser

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/grit/ast"
	"github.com/dhamidi/grit/diag"
	"github.com/dhamidi/grit/grammar"
	"github.com/dhamidi/grit/internal/charset"
	"github.com/dhamidi/grit/lexer"
	"github.com/dhamidi/grit/token"
	"github.com/dhamidi/grit/vm"
)

type Option func(*settings)

type settings struct {
	root      grammar.RuleKey
	formatter *diag.Formatter
	charset   string
	log       commonlog.Logger
}

// WithRoot starts parsing at root instead of the grammar's root rule.
func WithRoot(root grammar.RuleKey) Option {
	return func(s *settings) {
		s.root = root
	}
}

func WithFormatter(f *diag.Formatter) Option {
	return func(s *settings) {
		s.formatter = f
	}
}

// WithCharset decodes readers and files with the named IANA charset.
// Lexerful parsers use the charset of their lexer instead.
func WithCharset(name string) Option {
	return func(s *settings) {
		s.charset = name
	}
}

func WithLogger(log commonlog.Logger) Option {
	return func(s *settings) {
		s.log = log
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		formatter: &diag.Formatter{},
		log:       commonlog.GetLogger("grit.parser"),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// RecognitionError reports input the grammar does not accept. Its message
// is the rendered diagnostic.
type RecognitionError struct {
	URI     string
	Line    int
	Column  int
	Message string
	Failure *vm.Failure
}

func (e *RecognitionError) Error() string {
	if e.URI != "" {
		return e.URI + ": " + e.Message
	}
	return e.Message
}

func (e *RecognitionError) Unwrap() error {
	return e.Failure
}

// Lexerless parses characters with a lexerless grammar. It is safe for
// concurrent use.
type Lexerless struct {
	settings
	program *vm.Program
}

func NewLexerless(g *grammar.Grammar, opts ...Option) (*Lexerless, error) {
	if !g.Lexerless() {
		return nil, fmt.Errorf("parser: lexerless parser needs a lexerless grammar")
	}
	s := newSettings(opts)
	program, err := vm.Compile(g, s.root)
	if err != nil {
		return nil, err
	}
	return &Lexerless{settings: s, program: program}, nil
}

func (p *Lexerless) ParseString(src string) (*ast.Node, error) {
	return p.ParseRunes("", []rune(src))
}

func (p *Lexerless) ParseRunes(uri string, input []rune) (*ast.Node, error) {
	n, err := p.program.RunChars(uri, input)
	if f, ok := err.(*vm.Failure); ok {
		line, column := diag.Position(input, f.Index)
		p.log.Debugf("%s: recognition failed at %d:%d", uri, line, column)
		return nil, &RecognitionError{
			URI:     uri,
			Line:    line,
			Column:  column,
			Message: p.formatter.FormatChars(input, f),
			Failure: f,
		}
	}
	return n, err
}

func (p *Lexerless) ParseReader(uri string, r io.Reader) (*ast.Node, error) {
	src, err := charset.ReadAll(r, p.charset)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	return p.ParseRunes(uri, []rune(src))
}

func (p *Lexerless) ParseFile(path string) (*ast.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return p.ParseReader(path, f)
}

// Lexerful tokenizes input with its lexer and parses the tokens with a
// lexerful grammar. It is safe for concurrent use.
type Lexerful struct {
	settings
	program *vm.Program
	lexer   *lexer.Lexer
}

func NewLexerful(g *grammar.Grammar, lx *lexer.Lexer, opts ...Option) (*Lexerful, error) {
	if g.Lexerless() {
		return nil, fmt.Errorf("parser: lexerful parser needs a lexerful grammar")
	}
	s := newSettings(opts)
	program, err := vm.Compile(g, s.root)
	if err != nil {
		return nil, err
	}
	return &Lexerful{settings: s, program: program, lexer: lx}, nil
}

// Lexer returns the lexer used by the parse methods that take text.
func (p *Lexerful) Lexer() *lexer.Lexer {
	return p.lexer
}

func (p *Lexerful) ParseString(src string) (*ast.Node, error) {
	return p.parseRunes("", []rune(src))
}

// ParseReader tokenizes r with the lexer, which decodes it with its own
// charset, and parses the tokens.
func (p *Lexerful) ParseReader(uri string, r io.Reader) (*ast.Node, error) {
	tokens, err := p.lexer.LexReader(uri, r)
	if err != nil {
		return nil, err
	}
	return p.ParseTokens(tokens)
}

func (p *Lexerful) ParseFile(path string) (*ast.Node, error) {
	tokens, err := p.lexer.LexFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseTokens(tokens)
}

func (p *Lexerful) parseRunes(uri string, input []rune) (*ast.Node, error) {
	tokens, err := p.lexer.LexRunes(uri, input)
	if err != nil {
		return nil, err
	}
	return p.ParseTokens(tokens)
}

// ParseTokens parses a token list, typically ending with an EOF token.
func (p *Lexerful) ParseTokens(tokens []*token.Token) (*ast.Node, error) {
	n, err := p.program.RunTokens(tokens)
	if f, ok := err.(*vm.Failure); ok {
		rerr := &RecognitionError{
			Message: p.formatter.FormatTokenFailure(tokens, f),
			Failure: f,
			Line:    1,
			Column:  1,
		}
		if len(tokens) > 0 {
			tok := tokens[min(f.Index, len(tokens)-1)]
			rerr.URI, rerr.Line, rerr.Column = tok.URI, tok.Line, tok.Column
		}
		p.log.Debugf("%s: recognition failed at %d:%d", rerr.URI, rerr.Line, rerr.Column)
		return nil, rerr
	}
	return n, err
}
