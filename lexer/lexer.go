// Package lexer turns source text into tokens by trying an ordered list of
// channels at every offset.
package lexer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/grit/internal/charset"
	"github.com/dhamidi/grit/token"
)

// Channel attempts to consume input at the reader's cursor. A channel that
// reports true must have advanced the reader.
type Channel interface {
	Consume(r *CodeReader, out *Output) (bool, error)
}

// compiler is implemented by channels that hold patterns. The lexer keeps
// the compiled copy, so one channel value can serve lexers with different
// timeouts.
type compiler interface {
	compile(timeout time.Duration) (Channel, error)
}

// Output collects tokens and the trivia waiting for the next token.
type Output struct {
	uri     string
	tokens  []*token.Token
	pending []token.Trivia
}

func (o *Output) URI() string {
	return o.uri
}

// AddToken appends tok, attaching the pending trivia to it.
func (o *Output) AddToken(tok *token.Token) {
	if len(o.pending) > 0 {
		tok.Trivia = o.pending
		o.pending = nil
	}
	o.tokens = append(o.tokens, tok)
}

func (o *Output) AddTrivia(tr token.Trivia) {
	o.pending = append(o.pending, tr)
}

// Tokens returns the tokens emitted so far.
func (o *Output) Tokens() []*token.Token {
	return o.tokens
}

// NewToken builds a token starting at start.
func (o *Output) NewToken(typ token.Type, value, original string, start Position) *token.Token {
	return &token.Token{
		Type:          typ,
		Value:         value,
		OriginalValue: original,
		URI:           o.uri,
		Line:          start.Line,
		Column:        start.Column,
		Offset:        start.Offset,
	}
}

type Option func(*Lexer)

func WithChannels(channels ...Channel) Option {
	return func(l *Lexer) {
		l.channels = append(l.channels, channels...)
	}
}

// WithFailIfNoChannel selects between a hard error and skipping the
// character when no channel consumes it. Skipped characters become
// SkippedText trivia.
func WithFailIfNoChannel(fail bool) Option {
	return func(l *Lexer) {
		l.failIfNoChannel = fail
	}
}

func WithCharset(name string) Option {
	return func(l *Lexer) {
		l.charset = name
	}
}

func WithPatternTimeout(d time.Duration) Option {
	return func(l *Lexer) {
		l.timeout = d
	}
}

func WithLogger(log commonlog.Logger) Option {
	return func(l *Lexer) {
		l.log = log
	}
}

// Lexer is immutable after New and may be shared between goroutines.
type Lexer struct {
	channels        []Channel
	failIfNoChannel bool
	charset         string
	timeout         time.Duration
	log             commonlog.Logger
}

var (
	ErrNoChannel       = errors.New("no channel can consume the character")
	ErrNoProgress      = errors.New("channel reported success without consuming input")
	ErrUnknownNotLast  = errors.New("unknown character channel must be the last channel")
	ErrMissingChannels = errors.New("no channels configured")
)

func New(opts ...Option) (*Lexer, error) {
	l := &Lexer{
		failIfNoChannel: true,
		log:             commonlog.GetLogger("grit.lexer"),
	}
	for _, opt := range opts {
		opt(l)
	}
	if len(l.channels) == 0 {
		return nil, ErrMissingChannels
	}
	channels := make([]Channel, len(l.channels))
	for i, ch := range l.channels {
		if _, ok := ch.(*unknownCharacterChannel); ok && i != len(l.channels)-1 {
			return nil, ErrUnknownNotLast
		}
		if c, ok := ch.(compiler); ok {
			compiled, err := c.compile(l.timeout)
			if err != nil {
				return nil, fmt.Errorf("channel %d: %w", i, err)
			}
			ch = compiled
		}
		channels[i] = ch
	}
	l.channels = channels
	return l, nil
}

// Lex tokenizes src. The result always ends with an EOF token.
func (l *Lexer) Lex(src string) ([]*token.Token, error) {
	return l.LexRunes("", []rune(src))
}

// LexReader decodes r with the configured charset and tokenizes it.
func (l *Lexer) LexReader(uri string, r io.Reader) ([]*token.Token, error) {
	src, err := charset.ReadAll(r, l.charset)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	return l.LexRunes(uri, []rune(src))
}

func (l *Lexer) LexFile(path string) ([]*token.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return l.LexReader(path, f)
}

func (l *Lexer) LexRunes(uri string, input []rune) ([]*token.Token, error) {
	r := NewCodeReader(input, uri)
	out := &Output{uri: uri}

	for r.Peek() != EOF {
		consumed, err := l.consume(r, out)
		if err != nil {
			return nil, err
		}
		if consumed {
			continue
		}
		pos := r.Position()
		if l.failIfNoChannel {
			return nil, &Error{URI: uri, Line: pos.Line, Column: pos.Column, Char: r.Peek(), Err: ErrNoChannel}
		}
		text := r.Advance(1)
		if l.log.AllowLevel(commonlog.Debug) {
			l.log.Debugf("%s: skipping %q", pos, text)
		}
		out.AddTrivia(token.NewSkippedText(out.NewToken(token.Undefined, text, text, pos)))
	}

	out.AddToken(out.NewToken(token.EOF, "EOF", "", r.Position()))
	return out.tokens, nil
}

func (l *Lexer) consume(r *CodeReader, out *Output) (bool, error) {
	start := r.Position()
	for _, ch := range l.channels {
		ok, err := ch.Consume(r, out)
		if err != nil {
			return false, &Error{URI: start.File, Line: start.Line, Column: start.Column, Char: r.Peek(), Err: err}
		}
		if !ok {
			continue
		}
		if r.Offset() == start.Offset {
			return false, &Error{URI: start.File, Line: start.Line, Column: start.Column, Char: r.Peek(), Err: ErrNoProgress}
		}
		return true, nil
	}
	return false, nil
}

// Error is a lexical fault.
type Error struct {
	URI    string
	Line   int
	Column int
	Char   rune
	Err    error
}

func (e *Error) Error() string {
	pos := Position{File: e.URI, Line: e.Line, Column: e.Column}
	if e.Char == EOF {
		return fmt.Sprintf("%s: %v", pos, e.Err)
	}
	return fmt.Sprintf("%s: %v: %q", pos, e.Err, e.Char)
}

func (e *Error) Unwrap() error {
	return e.Err
}
