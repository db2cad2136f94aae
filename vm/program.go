// Package vm compiles grammars into instruction lists and runs them with a
// backtracking machine over characters or tokens.
package vm

import (
	"fmt"
	"strings"

	"github.com/dhamidi/grit/grammar"
)

type opcode uint8

const (
	opCall opcode = iota
	opRet
	opJump
	opChoice
	opCommit
	opCommitVerify
	opBackCommit
	opFailTwice
	opFail
	opEnd
	opMatch
)

var opcodeNames = [...]string{
	opCall:         "call",
	opRet:          "ret",
	opJump:         "jump",
	opChoice:       "choice",
	opCommit:       "commit",
	opCommitVerify: "commitVerify",
	opBackCommit:   "backCommit",
	opFailTwice:    "failTwice",
	opFail:         "fail",
	opEnd:          "end",
	opMatch:        "match",
}

func (op opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("opcode(%d)", op)
}

// instruction offsets are relative to the instruction's own address, so a
// compiled expression can be placed anywhere.
type instruction struct {
	op     opcode
	offset int
	// rule is the callee of a rule call and the owner of a ret.
	rule *grammar.Rule
	// expr is the leaf of a match, the token/trivia wrapper of a call or the
	// lookahead a failTwice rejects.
	expr grammar.Expr
	// quiet marks a choice whose body records no expectations.
	quiet bool
}

func (in instruction) String() string {
	switch in.op {
	case opCall:
		if in.rule != nil {
			return fmt.Sprintf("call %+d %s", in.offset, in.rule.Key)
		}
		return fmt.Sprintf("call %+d %s", in.offset, in.expr)
	case opJump, opChoice, opCommit, opCommitVerify, opBackCommit:
		if in.quiet {
			return fmt.Sprintf("%s %+d quiet", in.op, in.offset)
		}
		return fmt.Sprintf("%s %+d", in.op, in.offset)
	case opRet:
		if in.rule != nil {
			return "ret " + string(in.rule.Key)
		}
	case opMatch:
		return "match " + in.expr.String()
	}
	return in.op.String()
}

// Program is a compiled grammar. It is immutable and may be run by any
// number of goroutines at once.
type Program struct {
	code      []instruction
	root      *grammar.Rule
	lexerless bool
	entries   map[grammar.RuleKey]int
}

// Root returns the rule the program starts with.
func (p *Program) Root() *grammar.Rule {
	return p.root
}

func (p *Program) Lexerless() bool {
	return p.lexerless
}

// Len is the number of instructions.
func (p *Program) Len() int {
	return len(p.code)
}

// Entry returns the address of the first instruction of a rule body.
func (p *Program) Entry(key grammar.RuleKey) (int, bool) {
	addr, ok := p.entries[key]
	return addr, ok
}

// String lists the instructions, one per line, with rule entry labels.
func (p *Program) String() string {
	labels := make(map[int]grammar.RuleKey, len(p.entries))
	for key, addr := range p.entries {
		labels[addr] = key
	}
	var sb strings.Builder
	for addr, in := range p.code {
		if key, ok := labels[addr]; ok {
			fmt.Fprintf(&sb, "%s:\n", key)
		}
		fmt.Fprintf(&sb, "%4d  %s\n", addr, in)
	}
	return sb.String()
}

type compiler struct {
	g       *grammar.Grammar
	queue   []*grammar.Rule
	queued  map[*grammar.Rule]bool
	entries map[*grammar.Rule]int
	err     error
}

// Compile translates g into a program starting at root. An empty root
// selects the grammar's own root. Every rule reachable from root is
// compiled exactly once; rule references become calls.
func Compile(g *grammar.Grammar, root grammar.RuleKey) (*Program, error) {
	if root == "" {
		root = g.Root()
	}
	r := g.Rule(root)
	if r == nil {
		return nil, &grammar.Error{Rule: root, Reason: "root rule is not defined"}
	}

	c := &compiler{
		g:       g,
		queued:  make(map[*grammar.Rule]bool),
		entries: make(map[*grammar.Rule]int),
	}
	code := []instruction{
		{op: opCall, rule: r},
		{op: opEnd},
	}
	c.enqueue(r)

	for len(c.queue) > 0 {
		rule := c.queue[0]
		c.queue = c.queue[1:]
		c.entries[rule] = len(code)
		code = append(code, c.compile(rule, rule.Body())...)
		code = append(code, instruction{op: opRet, rule: rule})
	}
	if c.err != nil {
		return nil, c.err
	}

	for addr := range code {
		in := &code[addr]
		if in.op == opCall && in.rule != nil {
			in.offset = c.entries[in.rule] - addr
		}
	}

	p := &Program{
		code:      code,
		root:      r,
		lexerless: g.Lexerless(),
		entries:   make(map[grammar.RuleKey]int, len(c.entries)),
	}
	for rule, addr := range c.entries {
		p.entries[rule.Key] = addr
	}
	return p, nil
}

func (c *compiler) enqueue(r *grammar.Rule) {
	if !c.queued[r] {
		c.queued[r] = true
		c.queue = append(c.queue, r)
	}
}

func (c *compiler) fail(rule *grammar.Rule, format string, args ...any) {
	if c.err == nil {
		c.err = &grammar.Error{Rule: rule.Key, Reason: fmt.Sprintf(format, args...)}
	}
}

func (c *compiler) compile(rule *grammar.Rule, e grammar.Expr) []instruction {
	switch e := e.(type) {
	case *grammar.Rule:
		c.enqueue(e)
		return []instruction{{op: opCall, rule: e}}

	case *grammar.Sequence:
		var code []instruction
		for _, sub := range e.Subs {
			code = append(code, c.compile(rule, sub)...)
		}
		return code

	case *grammar.FirstOf:
		alts := make([][]instruction, len(e.Subs))
		size := 0
		for i, sub := range e.Subs {
			alts[i] = c.compile(rule, sub)
			size += len(alts[i])
			if i < len(e.Subs)-1 {
				size += 2
			}
		}
		code := make([]instruction, 0, size)
		for i, alt := range alts {
			if i == len(alts)-1 {
				code = append(code, alt...)
				break
			}
			code = append(code, instruction{op: opChoice, offset: len(alt) + 2})
			code = append(code, alt...)
			code = append(code, instruction{op: opCommit, offset: size - len(code)})
		}
		return code

	case *grammar.Optional:
		sub := c.compile(rule, e.Sub)
		code := []instruction{{op: opChoice, offset: len(sub) + 2}}
		code = append(code, sub...)
		return append(code, instruction{op: opCommit, offset: 1})

	case *grammar.ZeroOrMore:
		return c.loop(c.compile(rule, e.Sub))

	case *grammar.OneOrMore:
		sub := c.compile(rule, e.Sub)
		return append(append([]instruction(nil), sub...), c.loop(sub)...)

	case *grammar.Next:
		sub := c.compile(rule, e.Sub)
		code := []instruction{{op: opChoice, offset: len(sub) + 2}}
		code = append(code, sub...)
		return append(code,
			instruction{op: opBackCommit, offset: 2},
			instruction{op: opFail},
		)

	case *grammar.NextNot:
		sub := c.compile(rule, e.Sub)
		code := []instruction{{op: opChoice, offset: len(sub) + 2, quiet: true}}
		code = append(code, sub...)
		return append(code, instruction{op: opFailTwice, expr: e})

	case *grammar.Token, *grammar.Trivia:
		if !c.g.Lexerless() {
			c.fail(rule, "%s is only allowed in lexerless grammars", e)
		}
		sub := c.compile(rule, grammar.Children(e)[0])
		code := []instruction{
			{op: opCall, offset: 2, expr: e},
			{op: opJump, offset: len(sub) + 2},
		}
		code = append(code, sub...)
		return append(code, instruction{op: opRet})

	case *grammar.Pattern:
		if !c.g.Lexerless() {
			c.fail(rule, "%s is only allowed in lexerless grammars", e)
		}
		return []instruction{{op: opMatch, expr: e}}

	case *grammar.TokenType, *grammar.TokenTypes, *grammar.TokenBridge, *grammar.TillNewLine, *grammar.AnyToken:
		if c.g.Lexerless() {
			c.fail(rule, "%s is only allowed in lexerful grammars", e)
		}
		return []instruction{{op: opMatch, expr: e}}

	case *grammar.Literal, *grammar.EndOfInput:
		return []instruction{{op: opMatch, expr: e}}

	case nil:
		c.fail(rule, "missing parsing expression")
		return nil
	}
	c.fail(rule, "unsupported parsing expression %T", e)
	return nil
}

// loop repeats body until it fails or stops consuming input.
func (c *compiler) loop(body []instruction) []instruction {
	code := []instruction{{op: opChoice, offset: len(body) + 2}}
	code = append(code, body...)
	return append(code, instruction{op: opCommitVerify, offset: -(len(body) + 1)})
}
