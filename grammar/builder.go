// Package grammar declares grammars as graphs of parsing expressions.
//
// A grammar is assembled with a Builder and frozen by Build. Two builder
// flavours share the same combinators: lexerless grammars match characters
// directly, lexerful grammars match the tokens produced by package lexer.
// Only the leaf expressions differ between the two.
package grammar

import (
	"fmt"
	"time"

	"github.com/dhamidi/grit/pattern"
	"github.com/dhamidi/grit/token"
)

type Flavor uint8

const (
	Lexerless Flavor = iota
	Lexerful
)

func (f Flavor) String() string {
	if f == Lexerful {
		return "lexerful"
	}
	return "lexerless"
}

// Error is a grammar build fault. It always indicates a mistake in the
// grammar, never a property of the parsed input.
type Error struct {
	Rule   RuleKey
	Reason string
}

func (e *Error) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("grammar: rule %q: %s", string(e.Rule), e.Reason)
	}
	return "grammar: " + e.Reason
}

// Builder is the mutable half of the two-phase construction. It is not safe
// for concurrent use. The first fault is kept and reported by Build.
type Builder struct {
	flavor  Flavor
	rules   map[RuleKey]*Rule
	order   []RuleKey
	root    RuleKey
	timeout time.Duration
	err     error
	built   bool
}

func NewLexerlessBuilder() *Builder {
	return newBuilder(Lexerless)
}

func NewLexerfulBuilder() *Builder {
	return newBuilder(Lexerful)
}

func newBuilder(flavor Flavor) *Builder {
	return &Builder{
		flavor: flavor,
		rules:  make(map[RuleKey]*Rule),
	}
}

// SetPatternTimeout bounds every Regexp created afterwards.
func (b *Builder) SetPatternTimeout(d time.Duration) {
	b.timeout = d
}

func (b *Builder) fail(rule RuleKey, format string, args ...any) {
	if b.err == nil {
		b.err = &Error{Rule: rule, Reason: fmt.Sprintf(format, args...)}
	}
}

// Err returns the first fault recorded so far.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) rule(key RuleKey) *Rule {
	if r, ok := b.rules[key]; ok {
		return r
	}
	r := &Rule{Key: key}
	b.rules[key] = r
	b.order = append(b.order, key)
	return r
}

// RuleBuilder configures a single rule.
type RuleBuilder struct {
	b    *Builder
	rule *Rule
}

// Rule returns the builder for key, declaring the rule on first use.
func (b *Builder) Rule(key RuleKey) *RuleBuilder {
	return &RuleBuilder{b: b, rule: b.rule(key)}
}

// Is assigns the rule body. Several arguments form an implicit sequence.
func (rb *RuleBuilder) Is(args ...any) *RuleBuilder {
	if rb.rule.body != nil {
		rb.b.fail(rb.rule.Key, "body already defined, use Override to redefine it")
		return rb
	}
	return rb.Override(args...)
}

// Override replaces the rule body.
func (rb *RuleBuilder) Override(args ...any) *RuleBuilder {
	if rb.spent() {
		return rb
	}
	e := rb.b.sequence(rb.rule.Key, args)
	if e != nil {
		rb.rule.body = e
	}
	return rb
}

func (rb *RuleBuilder) SkipIfOneChild() *RuleBuilder {
	if !rb.spent() {
		rb.rule.policy = SkipIfOneChild
	}
	return rb
}

func (rb *RuleBuilder) Skip() *RuleBuilder {
	if !rb.spent() {
		rb.rule.policy = Skip
	}
	return rb
}

// spent reports whether the rule already belongs to a built grammar, which
// must not change anymore.
func (rb *RuleBuilder) spent() bool {
	if rb.b.built {
		rb.b.fail(rb.rule.Key, "builder already built")
		return true
	}
	return false
}

func (b *Builder) SetRoot(key RuleKey) {
	b.root = key
}

func (b *Builder) convert(context RuleKey, arg any) Expr {
	switch v := arg.(type) {
	case nil:
		b.fail(context, "nil parsing expression")
	case Expr:
		return v
	case RuleKey:
		return b.rule(v)
	case string:
		return &Literal{Text: v, Runes: []rune(v)}
	case rune:
		return &Literal{Text: string(v), Runes: []rune{v}}
	case token.Type:
		if b.flavor != Lexerful {
			b.fail(context, "token type %s is only allowed in lexerful grammars", v.Name())
			return nil
		}
		return &TokenType{Type: v}
	default:
		b.fail(context, "incorrect type of parsing expression: %T", arg)
	}
	return nil
}

func (b *Builder) convertAll(context RuleKey, args []any) []Expr {
	exprs := make([]Expr, 0, len(args))
	for _, arg := range args {
		e := b.convert(context, arg)
		if e == nil {
			return nil
		}
		exprs = append(exprs, e)
	}
	return exprs
}

func (b *Builder) sequence(context RuleKey, args []any) Expr {
	if len(args) == 0 {
		b.fail(context, "empty sequence")
		return nil
	}
	exprs := b.convertAll(context, args)
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	}
	return &Sequence{Subs: exprs}
}

func (b *Builder) require(flavor Flavor, what string) bool {
	if b.flavor != flavor {
		b.fail("", "%s is only allowed in %s grammars", what, flavor)
		return false
	}
	return true
}

// Sequence matches its arguments one after another.
func (b *Builder) Sequence(args ...any) Expr {
	return b.sequence("", args)
}

// FirstOf tries its arguments in order and keeps the first that matches.
func (b *Builder) FirstOf(args ...any) Expr {
	if len(args) == 0 {
		b.fail("", "firstOf needs at least one alternative")
		return nil
	}
	exprs := b.convertAll("", args)
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	}
	return &FirstOf{Subs: exprs}
}

func (b *Builder) Optional(args ...any) Expr {
	if sub := b.sequence("", args); sub != nil {
		return &Optional{Sub: sub}
	}
	return nil
}

func (b *Builder) ZeroOrMore(args ...any) Expr {
	if sub := b.sequence("", args); sub != nil {
		return &ZeroOrMore{Sub: sub}
	}
	return nil
}

func (b *Builder) OneOrMore(args ...any) Expr {
	if sub := b.sequence("", args); sub != nil {
		return &OneOrMore{Sub: sub}
	}
	return nil
}

func (b *Builder) Next(args ...any) Expr {
	if sub := b.sequence("", args); sub != nil {
		return &Next{Sub: sub}
	}
	return nil
}

func (b *Builder) NextNot(args ...any) Expr {
	if sub := b.sequence("", args); sub != nil {
		return &NextNot{Sub: sub}
	}
	return nil
}

func (b *Builder) EndOfInput() Expr {
	return &EndOfInput{}
}

func (b *Builder) Literal(text string) Expr {
	return &Literal{Text: text, Runes: []rune(text)}
}

// Regexp matches a regular expression at the cursor. Lexerless only.
func (b *Builder) Regexp(regexp string) Expr {
	if !b.require(Lexerless, "regexp") {
		return nil
	}
	m, err := pattern.Compile(regexp, b.timeout)
	if err != nil {
		b.fail("", "%v", err)
		return nil
	}
	return &Pattern{Matcher: m}
}

// Token makes the text matched by args a single token of type typ.
// Lexerless only.
func (b *Builder) Token(typ token.Type, args ...any) Expr {
	if !b.require(Lexerless, "token") {
		return nil
	}
	if sub := b.sequence("", args); sub != nil {
		return &Token{Type: typ, Sub: sub}
	}
	return nil
}

// CommentTrivia makes the matched text a comment attached to the next
// token. Lexerless only.
func (b *Builder) CommentTrivia(args ...any) Expr {
	return b.trivia(token.TriviaComment, args)
}

// SkippedTrivia makes the matched text skipped-text trivia, typically
// whitespace. Lexerless only.
func (b *Builder) SkippedTrivia(args ...any) Expr {
	return b.trivia(token.TriviaSkippedText, args)
}

func (b *Builder) trivia(kind token.TriviaKind, args []any) Expr {
	if !b.require(Lexerless, "trivia") {
		return nil
	}
	if sub := b.sequence("", args); sub != nil {
		return &Trivia{Kind: kind, Sub: sub}
	}
	return nil
}

// TokenType matches one token of typ. Lexerful only.
func (b *Builder) TokenType(typ token.Type) Expr {
	if !b.require(Lexerful, "token type") {
		return nil
	}
	return &TokenType{Type: typ}
}

// TokenTypes matches one token of any of types. Lexerful only.
func (b *Builder) TokenTypes(types ...token.Type) Expr {
	if !b.require(Lexerful, "token types") {
		return nil
	}
	if len(types) == 0 {
		b.fail("", "token types needs at least one type")
		return nil
	}
	return &TokenTypes{Types: types}
}

// TokenBridge matches a balanced open/close run. Lexerful only.
func (b *Builder) TokenBridge(open, close token.Type) Expr {
	if !b.require(Lexerful, "token bridge") {
		return nil
	}
	return &TokenBridge{Open: open, Close: close}
}

// TillNewLine consumes the rest of the current line. Lexerful only.
func (b *Builder) TillNewLine() Expr {
	if !b.require(Lexerful, "tillNewLine") {
		return nil
	}
	return &TillNewLine{}
}

// AnyToken matches any token but EOF. Lexerful only.
func (b *Builder) AnyToken() Expr {
	if !b.require(Lexerful, "anyToken") {
		return nil
	}
	return &AnyToken{}
}

// Build freezes the grammar. Every declared or referenced rule must have a
// body; otherwise Build fails and returns no grammar.
func (b *Builder) Build() (*Grammar, error) {
	if b.err != nil {
		return nil, b.err
	}
	for _, key := range b.order {
		if b.rules[key].body == nil {
			return nil, &Error{Rule: key, Reason: "the rule is referenced but has no body"}
		}
	}
	if b.root != "" {
		if _, ok := b.rules[b.root]; !ok {
			return nil, &Error{Rule: b.root, Reason: "root rule is not defined"}
		}
	}

	g := &Grammar{
		flavor: b.flavor,
		rules:  make(map[RuleKey]*Rule, len(b.rules)),
		order:  append([]RuleKey(nil), b.order...),
		root:   b.root,
	}
	for key, r := range b.rules {
		g.rules[key] = r
	}
	// Later changes through b must not leak into g.
	b.rules = make(map[RuleKey]*Rule)
	b.order = nil
	b.err = &Error{Reason: "builder already built"}
	b.built = true
	return g, nil
}

// MustBuild is like Build but panics on a fault.
func (b *Builder) MustBuild() *Grammar {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
