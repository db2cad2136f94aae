package vm

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/grit/ast"
	"github.com/dhamidi/grit/grammar"
	"github.com/dhamidi/grit/token"
)

// MaxStackDepth bounds the frame stack of a single run.
const MaxStackDepth = 1 << 18

// ErrStackOverflow is returned when a run exceeds MaxStackDepth, which in
// practice means the grammar is left recursive.
var ErrStackOverflow = errors.New("stack overflow")

var log = commonlog.GetLogger("grit.vm")

// node is a parse tree node: a rule, a token/trivia wrapper or a leaf match
// over the input range [from, to).
type node struct {
	expr     grammar.Expr
	from     int
	to       int
	children []*node
}

// frame is either a call frame (rules and token/trivia wrappers) or a
// choice frame. Nodes produced while the frame is on top are collected in
// the frame and handed to the frame below only on success.
type frame struct {
	call bool
	// ret is the return address of a call frame and the alternative of a
	// choice frame.
	ret     int
	index   int
	rule    *grammar.Rule
	wrapper grammar.Expr
	// owner is the innermost rule being matched, for expectations.
	owner *grammar.Rule
	quiet bool
	// report marks a wrapper whose failure is recorded as one expectation.
	report bool
	nodes  []*node
}

type machine struct {
	program *Program
	chars   []rune
	tokens  []*token.Token
	length  int
	index   int
	pc      int
	stack   []frame
	failure Failure
	steps   int
}

func newMachine(p *Program, length int) *machine {
	return &machine{
		program: p,
		length:  length,
		stack:   make([]frame, 1, 64),
		failure: Failure{Index: -1},
	}
}

// RunChars matches input with a lexerless program and builds the syntax
// tree. Tokens created for the tree carry uri. A recognition failure is
// returned as *Failure.
func (p *Program) RunChars(uri string, input []rune) (*ast.Node, error) {
	if !p.lexerless {
		return nil, errors.New("vm: RunChars needs a lexerless program")
	}
	m := newMachine(p, len(input))
	m.chars = input
	root, err := m.run()
	if err != nil {
		return nil, err
	}
	return buildLexerless(uri, input, root), nil
}

// RunTokens matches tokens with a lexerful program and builds the syntax
// tree. A recognition failure is returned as *Failure.
func (p *Program) RunTokens(tokens []*token.Token) (*ast.Node, error) {
	if p.lexerless {
		return nil, errors.New("vm: RunTokens needs a lexerful program")
	}
	m := newMachine(p, len(tokens))
	m.tokens = tokens
	root, err := m.run()
	if err != nil {
		return nil, err
	}
	return buildLexerful(tokens, root), nil
}

func (m *machine) top() *frame {
	return &m.stack[len(m.stack)-1]
}

func (m *machine) push(f frame) error {
	if len(m.stack) >= MaxStackDepth {
		return fmt.Errorf("vm: %w at index %d in rule %s", ErrStackOverflow, m.index, f.owner.Key)
	}
	m.stack = append(m.stack, f)
	return nil
}

func (m *machine) pop() frame {
	f := m.stack[len(m.stack)-1]
	m.stack[len(m.stack)-1] = frame{}
	m.stack = m.stack[:len(m.stack)-1]
	return f
}

func (m *machine) run() (*node, error) {
	code := m.program.code
	for {
		m.steps++
		in := &code[m.pc]
		switch in.op {
		case opCall:
			top := m.top()
			f := frame{
				call:  true,
				ret:   m.pc + 1,
				index: m.index,
				owner: top.owner,
				quiet: top.quiet,
			}
			if in.rule != nil {
				f.rule = in.rule
				f.owner = in.rule
			} else {
				f.wrapper = in.expr
				f.report = !top.quiet
				f.quiet = true
			}
			if err := m.push(f); err != nil {
				return nil, err
			}
			m.pc += in.offset

		case opRet:
			f := m.pop()
			n := &node{from: f.index, to: m.index, children: f.nodes}
			if f.rule != nil {
				n.expr = f.rule
			} else {
				n.expr = f.wrapper
			}
			top := m.top()
			top.nodes = append(top.nodes, n)
			m.pc = f.ret

		case opJump:
			m.pc += in.offset

		case opChoice:
			top := m.top()
			f := frame{
				ret:   m.pc + in.offset,
				index: m.index,
				owner: top.owner,
				quiet: top.quiet || in.quiet,
			}
			if err := m.push(f); err != nil {
				return nil, err
			}
			m.pc++

		case opCommit:
			f := m.pop()
			m.merge(f)
			m.pc += in.offset

		case opCommitVerify:
			f := m.pop()
			m.merge(f)
			if m.index == f.index {
				m.pc++
			} else {
				m.pc += in.offset
			}

		case opBackCommit:
			f := m.pop()
			m.index = f.index
			m.pc += in.offset

		case opFailTwice:
			f := m.pop()
			m.expect(f.index, in.expr, m.top())
			if !m.backtrack() {
				return nil, m.fail()
			}

		case opFail:
			if !m.backtrack() {
				return nil, m.fail()
			}

		case opEnd:
			base := m.stack[0]
			if log.AllowLevel(commonlog.Debug) {
				log.Debugf("matched %d of %d in %d steps", m.index, m.length, m.steps)
			}
			return base.nodes[0], nil

		case opMatch:
			n, err := m.match(in.expr)
			if err != nil {
				return nil, err
			}
			if n < 0 {
				m.expect(m.index, in.expr, m.top())
				if !m.backtrack() {
					return nil, m.fail()
				}
				continue
			}
			if n > 0 || !m.program.lexerless {
				top := m.top()
				top.nodes = append(top.nodes, &node{expr: in.expr, from: m.index, to: m.index + n})
			}
			m.index += n
			m.pc++
		}
	}
}

func (m *machine) merge(f frame) {
	if len(f.nodes) > 0 {
		top := m.top()
		top.nodes = append(top.nodes, f.nodes...)
	}
}

// backtrack unwinds to the most recent choice frame. It reports false when
// no alternative is left.
func (m *machine) backtrack() bool {
	for len(m.stack) > 1 {
		f := m.pop()
		if f.call {
			if f.wrapper != nil && f.report {
				m.record(f.index, f.wrapper, f.owner)
			}
			continue
		}
		m.index = f.index
		m.pc = f.ret
		return true
	}
	return false
}

func (m *machine) expect(index int, e grammar.Expr, f *frame) {
	if !f.quiet {
		m.record(index, e, f.owner)
	}
}

// record keeps the expectations at the deepest index seen so far.
func (m *machine) record(index int, e grammar.Expr, owner *grammar.Rule) {
	if index < m.failure.Index {
		return
	}
	if index > m.failure.Index {
		m.failure.Index = index
		m.failure.Expectations = m.failure.Expectations[:0]
	}
	for _, x := range m.failure.Expectations {
		if x.Expr == e && x.Rule == owner {
			return
		}
	}
	m.failure.Expectations = append(m.failure.Expectations, Expectation{Expr: e, Rule: owner})
}

func (m *machine) fail() error {
	f := &Failure{Index: m.failure.Index, Expectations: m.failure.Expectations}
	if f.Index < 0 {
		f.Index = 0
	}
	if log.AllowLevel(commonlog.Debug) {
		log.Debugf("failed at %d after %d steps: %s", f.Index, m.steps, f.Expected())
	}
	return f
}
