package minic

import (
	"github.com/dhamidi/grit/ast"
	"github.com/dhamidi/grit/token"
)

// Metrics summarises one MiniC compilation unit.
type Metrics struct {
	LinesOfCode  int `json:"linesOfCode" yaml:"linesOfCode"`
	CommentLines int `json:"commentLines" yaml:"commentLines"`
	Functions    int `json:"functions" yaml:"functions"`
	Statements   int `json:"statements" yaml:"statements"`
	Complexity   int `json:"complexity" yaml:"complexity"`
	MaxNesting   int `json:"maxNesting" yaml:"maxNesting"`
}

// Measure computes the metrics of a tree produced by the MiniC parser.
func Measure(root *ast.Node) Metrics {
	c := &metricsContext{
		code:     make(map[int]bool),
		comments: make(map[int]bool),
	}
	ast.Walk(root, c)
	c.metrics.LinesOfCode = len(c.code)
	c.metrics.CommentLines = len(c.comments)
	return c.metrics
}

var statements = []ast.Type{
	CompoundStatement,
	ExpressionStatement,
	ReturnStatement,
	ContinueStatement,
	BreakStatement,
	IfStatement,
	WhileStatement,
	VariableDefinition,
}

var nesting = []ast.Type{IfStatement, WhileStatement}

// metricsContext is the state of one walk.
type metricsContext struct {
	metrics  Metrics
	depth    int
	code     map[int]bool
	comments map[int]bool
}

func (c *metricsContext) Visit(n *ast.Node) bool {
	switch {
	case n.Is(FunctionDefinition):
		c.metrics.Functions++
		c.metrics.Complexity++
	case n.Is(nesting...):
		c.metrics.Complexity++
		c.depth++
		c.metrics.MaxNesting = max(c.metrics.MaxNesting, c.depth)
	case n.Is(AndAnd, OrOr):
		c.metrics.Complexity++
	}
	if n.Is(statements...) && !isGlobal(n) {
		c.metrics.Statements++
	}
	if tok := n.Token(); tok != nil {
		c.token(tok)
	}
	return true
}

func (c *metricsContext) Leave(n *ast.Node) {
	if n.Is(nesting...) {
		c.depth--
	}
}

func (c *metricsContext) token(tok *token.Token) {
	for _, comment := range tok.Comments() {
		mark(c.comments, comment.Token())
	}
	if tok.Type != token.EOF {
		mark(c.code, tok)
	}
}

func mark(lines map[int]bool, tok *token.Token) {
	for line := tok.Line; line <= tok.EndLine(); line++ {
		lines[line] = true
	}
}

// isGlobal reports whether n is a definition at the top of the unit.
func isGlobal(n *ast.Node) bool {
	p := n.Parent()
	return p == nil || p.Is(CompilationUnit)
}
