package lexer

import (
	"sort"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/text/cases"

	"github.com/dhamidi/grit/pattern"
	"github.com/dhamidi/grit/token"
)

type patternSource struct {
	source  string
	matcher *pattern.Matcher
}

// compiled returns a copy of p holding its matcher.
func (p patternSource) compiled(timeout time.Duration) (patternSource, error) {
	m, err := pattern.Compile(p.source, timeout)
	if err != nil {
		return p, err
	}
	p.matcher = m
	return p, nil
}

// match returns the consumed text, or ok=false when the pattern does not
// match a non-empty prefix.
func (p *patternSource) match(r *CodeReader) (start Position, text string, ok bool, err error) {
	n, err := r.Match(p.matcher)
	if err != nil || n <= 0 {
		return start, "", false, err
	}
	start = r.Position()
	return start, r.Advance(n), true, nil
}

type blackHoleChannel struct {
	patternSource
}

// BlackHole discards whatever pattern matches, typically whitespace.
func BlackHole(regexp string) Channel {
	return &blackHoleChannel{patternSource{source: regexp}}
}

func (c *blackHoleChannel) compile(timeout time.Duration) (Channel, error) {
	p, err := c.compiled(timeout)
	if err != nil {
		return nil, err
	}
	return &blackHoleChannel{p}, nil
}

func (c *blackHoleChannel) Consume(r *CodeReader, out *Output) (bool, error) {
	_, _, ok, err := c.match(r)
	return ok, err
}

type regexpChannel struct {
	patternSource
	typ token.Type
}

// Regexp emits one token of type typ for every match of regexp.
func Regexp(typ token.Type, regexp string) Channel {
	return &regexpChannel{patternSource: patternSource{source: regexp}, typ: typ}
}

func (c *regexpChannel) compile(timeout time.Duration) (Channel, error) {
	p, err := c.compiled(timeout)
	if err != nil {
		return nil, err
	}
	cp := *c
	cp.patternSource = p
	return &cp, nil
}

func (c *regexpChannel) Consume(r *CodeReader, out *Output) (bool, error) {
	start, text, ok, err := c.match(r)
	if !ok {
		return false, err
	}
	out.AddToken(out.NewToken(c.typ, text, text, start))
	return true, nil
}

type triviaChannel struct {
	patternSource
	kind token.TriviaKind
	typ  token.Type
}

// TriviaRegexp turns every match of regexp into trivia of the given kind,
// carried by a token of type typ.
func TriviaRegexp(kind token.TriviaKind, typ token.Type, regexp string) Channel {
	return &triviaChannel{patternSource: patternSource{source: regexp}, kind: kind, typ: typ}
}

// CommentRegexp captures comments as trivia.
func CommentRegexp(regexp string) Channel {
	return TriviaRegexp(token.TriviaComment, token.Comment, regexp)
}

func (c *triviaChannel) compile(timeout time.Duration) (Channel, error) {
	p, err := c.compiled(timeout)
	if err != nil {
		return nil, err
	}
	cp := *c
	cp.patternSource = p
	return &cp, nil
}

func (c *triviaChannel) Consume(r *CodeReader, out *Output) (bool, error) {
	start, text, ok, err := c.match(r)
	if !ok {
		return false, err
	}
	out.AddTrivia(token.Trivia{Kind: c.kind, Tokens: []*token.Token{out.NewToken(c.typ, text, text, start)}})
	return true, nil
}

type identifierChannel struct {
	patternSource
	caseSensitive bool
	keywords      map[string]token.Type
}

// IdentifierAndKeyword matches identifiers with regexp and upgrades exact
// keyword spellings to their keyword type. Without case sensitivity the
// lookup uses Unicode case folding and the token value is the keyword's
// canonical spelling.
func IdentifierAndKeyword(regexp string, caseSensitive bool, keywords ...token.Type) Channel {
	c := &identifierChannel{
		patternSource: patternSource{source: regexp},
		caseSensitive: caseSensitive,
		keywords:      make(map[string]token.Type, len(keywords)),
	}
	for _, kw := range keywords {
		c.keywords[c.key(kw.Value())] = kw
	}
	return c
}

func (c *identifierChannel) key(word string) string {
	if c.caseSensitive {
		return word
	}
	return cases.Fold().String(word)
}

func (c *identifierChannel) compile(timeout time.Duration) (Channel, error) {
	p, err := c.compiled(timeout)
	if err != nil {
		return nil, err
	}
	cp := *c
	cp.patternSource = p
	return &cp, nil
}

func (c *identifierChannel) Consume(r *CodeReader, out *Output) (bool, error) {
	start, text, ok, err := c.match(r)
	if !ok {
		return false, err
	}
	if kw, found := c.keywords[c.key(text)]; found {
		out.AddToken(out.NewToken(kw, kw.Value(), text, start))
		return true, nil
	}
	out.AddToken(out.NewToken(token.Identifier, text, text, start))
	return true, nil
}

type punctuatorChannel struct {
	types    []token.Type
	literals [][]rune
}

// Punctuator matches fixed spellings, preferring the longest one so that
// "==" wins over "=".
func Punctuator(types ...token.Type) Channel {
	sorted := make([]token.Type, len(types))
	copy(sorted, types)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len([]rune(sorted[i].Value())) > len([]rune(sorted[j].Value()))
	})
	c := &punctuatorChannel{types: sorted}
	for _, typ := range sorted {
		c.literals = append(c.literals, []rune(typ.Value()))
	}
	return c
}

func (c *punctuatorChannel) Consume(r *CodeReader, out *Output) (bool, error) {
	for i, lit := range c.literals {
		if len(lit) == 0 || !r.HasPrefix(lit) {
			continue
		}
		start := r.Position()
		text := r.Advance(len(lit))
		out.AddToken(out.NewToken(c.types[i], text, text, start))
		return true, nil
	}
	return false, nil
}

type unknownCharacterChannel struct {
	log commonlog.Logger
}

// UnknownCharacter consumes any single character as an UnknownChar token.
// It must be the last channel.
func UnknownCharacter() Channel {
	return &unknownCharacterChannel{log: commonlog.GetLogger("grit.lexer")}
}

func (c *unknownCharacterChannel) Consume(r *CodeReader, out *Output) (bool, error) {
	if r.Peek() == EOF {
		return false, nil
	}
	start := r.Position()
	text := r.Advance(1)
	c.log.Debugf("%s: unknown character %q", start, text)
	out.AddToken(out.NewToken(token.UnknownChar, text, text, start))
	return true, nil
}
