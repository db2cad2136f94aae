package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dhamidi/grit/pattern"
	"github.com/dhamidi/grit/token"
)

// Expr is a parsing expression. The set of implementations is closed; the
// compiler in package vm switches over all of them.
type Expr interface {
	expr()
	String() string
}

// RuleKey names a rule. It is also the AST node type of the rule's nodes.
type RuleKey string

func (k RuleKey) Name() string   { return string(k) }
func (k RuleKey) String() string { return string(k) }

// Policy controls how a rule's node appears in the syntax tree.
type Policy uint8

const (
	Keep Policy = iota
	// SkipIfOneChild replaces the node by its only child.
	SkipIfOneChild
	// Skip always replaces the node by its children.
	Skip
)

// Rule is a named node in the rule graph. Its body is assigned exactly once
// while the grammar is built.
type Rule struct {
	Key    RuleKey
	body   Expr
	policy Policy
}

func (r *Rule) Body() Expr     { return r.body }
func (r *Rule) Policy() Policy { return r.policy }

// Literal matches text exactly: characters in lexerless grammars, a token
// value in lexerful ones.
type Literal struct {
	Text  string
	Runes []rune
}

type Pattern struct {
	Matcher *pattern.Matcher
}

type Sequence struct {
	Subs []Expr
}

// FirstOf is ordered choice.
type FirstOf struct {
	Subs []Expr
}

type Optional struct {
	Sub Expr
}

type ZeroOrMore struct {
	Sub Expr
}

type OneOrMore struct {
	Sub Expr
}

// Next is positive lookahead.
type Next struct {
	Sub Expr
}

// NextNot is negative lookahead.
type NextNot struct {
	Sub Expr
}

type EndOfInput struct{}

type TokenType struct {
	Type token.Type
}

type TokenTypes struct {
	Types []token.Type
}

// TokenBridge matches a balanced run of tokens starting with Open and ending
// with the matching Close.
type TokenBridge struct {
	Open  token.Type
	Close token.Type
}

// TillNewLine consumes the remaining tokens on the line of the previous
// token.
type TillNewLine struct{}

type AnyToken struct{}

// Trivia turns the text matched by Sub into trivia attached to the next
// token.
type Trivia struct {
	Kind token.TriviaKind
	Sub  Expr
}

// Token turns the text matched by Sub into a single token of Type.
type Token struct {
	Type token.Type
	Sub  Expr
}

func (*Rule) expr()        {}
func (*Literal) expr()     {}
func (*Pattern) expr()     {}
func (*Sequence) expr()    {}
func (*FirstOf) expr()     {}
func (*Optional) expr()    {}
func (*ZeroOrMore) expr()  {}
func (*OneOrMore) expr()   {}
func (*Next) expr()        {}
func (*NextNot) expr()     {}
func (*EndOfInput) expr()  {}
func (*TokenType) expr()   {}
func (*TokenTypes) expr()  {}
func (*TokenBridge) expr() {}
func (*TillNewLine) expr() {}
func (*AnyToken) expr()    {}
func (*Trivia) expr()      {}
func (*Token) expr()       {}

func (r *Rule) String() string       { return string(r.Key) }
func (l *Literal) String() string    { return strconv.Quote(l.Text) }
func (p *Pattern) String() string    { return fmt.Sprintf("regexp(%q)", p.Matcher.String()) }
func (s *Sequence) String() string   { return "sequence(" + join(s.Subs) + ")" }
func (f *FirstOf) String() string    { return "firstOf(" + join(f.Subs) + ")" }
func (o *Optional) String() string   { return "optional(" + o.Sub.String() + ")" }
func (z *ZeroOrMore) String() string { return "zeroOrMore(" + z.Sub.String() + ")" }
func (o *OneOrMore) String() string  { return "oneOrMore(" + o.Sub.String() + ")" }
func (n *Next) String() string       { return "next(" + n.Sub.String() + ")" }
func (n *NextNot) String() string    { return "nextNot(" + n.Sub.String() + ")" }
func (*EndOfInput) String() string   { return "end of input" }
func (t *TokenType) String() string  { return t.Type.Name() }
func (*TillNewLine) String() string  { return "tillNewLine" }
func (*AnyToken) String() string     { return "any token" }
func (t *Token) String() string      { return t.Type.Name() }

func (t *TokenTypes) String() string {
	names := make([]string, len(t.Types))
	for i, typ := range t.Types {
		names[i] = typ.Name()
	}
	return strings.Join(names, " or ")
}

func (b *TokenBridge) String() string {
	return fmt.Sprintf("bridge(%s, %s)", b.Open.Name(), b.Close.Name())
}

func (t *Trivia) String() string {
	return strings.ToLower(t.Kind.String())
}

func join(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// Children returns the direct sub-expressions of e. Rule references have
// none: a rule's body belongs to the rule, not to the referencing site.
func Children(e Expr) []Expr {
	switch e := e.(type) {
	case *Sequence:
		return e.Subs
	case *FirstOf:
		return e.Subs
	case *Optional:
		return []Expr{e.Sub}
	case *ZeroOrMore:
		return []Expr{e.Sub}
	case *OneOrMore:
		return []Expr{e.Sub}
	case *Next:
		return []Expr{e.Sub}
	case *NextNot:
		return []Expr{e.Sub}
	case *Trivia:
		return []Expr{e.Sub}
	case *Token:
		return []Expr{e.Sub}
	}
	return nil
}
