package minic

import (
	"github.com/dhamidi/grit/grammar"
	"github.com/dhamidi/grit/parser"
	"github.com/dhamidi/grit/token"
)

const (
	CompilationUnit      grammar.RuleKey = "COMPILATION_UNIT"
	Type                 grammar.RuleKey = "TYPE"
	StructDefinition     grammar.RuleKey = "STRUCT_DEFINITION"
	StructMember         grammar.RuleKey = "STRUCT_MEMBER"
	FunctionDefinition   grammar.RuleKey = "FUNCTION_DEFINITION"
	ParameterList        grammar.RuleKey = "PARAMETER_LIST"
	ParameterDeclaration grammar.RuleKey = "PARAMETER_DECLARATION"
	VariableDefinition   grammar.RuleKey = "VARIABLE_DEFINITION"

	Statement           grammar.RuleKey = "STATEMENT"
	CompoundStatement   grammar.RuleKey = "COMPOUND_STATEMENT"
	ExpressionStatement grammar.RuleKey = "EXPRESSION_STATEMENT"
	ReturnStatement     grammar.RuleKey = "RETURN_STATEMENT"
	ContinueStatement   grammar.RuleKey = "CONTINUE_STATEMENT"
	BreakStatement      grammar.RuleKey = "BREAK_STATEMENT"
	IfStatement         grammar.RuleKey = "IF_STATEMENT"
	ElseClause          grammar.RuleKey = "ELSE_CLAUSE"
	WhileStatement      grammar.RuleKey = "WHILE_STATEMENT"
	ConditionClause     grammar.RuleKey = "CONDITION_CLAUSE"

	Expression               grammar.RuleKey = "EXPRESSION"
	AssignmentExpression     grammar.RuleKey = "ASSIGNMENT_EXPRESSION"
	OrExpression             grammar.RuleKey = "OR_EXPRESSION"
	AndExpression            grammar.RuleKey = "AND_EXPRESSION"
	RelationalExpression     grammar.RuleKey = "RELATIONAL_EXPRESSION"
	AdditiveExpression       grammar.RuleKey = "ADDITIVE_EXPRESSION"
	MultiplicativeExpression grammar.RuleKey = "MULTIPLICATIVE_EXPRESSION"
	UnaryExpression          grammar.RuleKey = "UNARY_EXPRESSION"
	PostfixExpression        grammar.RuleKey = "POSTFIX_EXPRESSION"
	PrimaryExpression        grammar.RuleKey = "PRIMARY_EXPRESSION"
	FunctionCall             grammar.RuleKey = "FUNCTION_CALL"
	Arguments                grammar.RuleKey = "ARGUMENTS"
	ParenthesizedExpression  grammar.RuleKey = "PARENTHESIZED_EXPRESSION"
)

// NewGrammarBuilder returns a builder holding every MiniC rule, so that
// callers can override rules or pick another root before building.
func NewGrammarBuilder() *grammar.Builder {
	b := grammar.NewLexerfulBuilder()

	b.Rule(CompilationUnit).Is(
		b.ZeroOrMore(b.FirstOf(StructDefinition, FunctionDefinition, VariableDefinition)),
		token.EOF,
	)
	b.Rule(Type).Is(b.FirstOf(Int, Void, b.Sequence(Struct, token.Identifier)))
	b.Rule(StructDefinition).Is(Struct, token.Identifier, LBrace, b.OneOrMore(StructMember), RBrace, Semicolon)
	b.Rule(StructMember).Is(Type, token.Identifier, Semicolon)
	b.Rule(FunctionDefinition).Is(Type, token.Identifier, LParen, b.Optional(ParameterList), RParen, CompoundStatement)
	b.Rule(ParameterList).Is(ParameterDeclaration, b.ZeroOrMore(Comma, ParameterDeclaration))
	b.Rule(ParameterDeclaration).Is(Type, token.Identifier)
	b.Rule(VariableDefinition).Is(Type, token.Identifier, b.Optional(Assign, Expression), Semicolon)

	b.Rule(Statement).Is(b.FirstOf(
		CompoundStatement,
		ReturnStatement,
		ContinueStatement,
		BreakStatement,
		IfStatement,
		WhileStatement,
		ExpressionStatement,
	)).Skip()
	b.Rule(CompoundStatement).Is(LBrace, b.ZeroOrMore(VariableDefinition), b.ZeroOrMore(Statement), RBrace)
	b.Rule(ExpressionStatement).Is(Expression, Semicolon)
	b.Rule(ReturnStatement).Is(Return, b.Optional(Expression), Semicolon)
	b.Rule(ContinueStatement).Is(Continue, Semicolon)
	b.Rule(BreakStatement).Is(Break, Semicolon)
	b.Rule(IfStatement).Is(If, ConditionClause, Statement, b.Optional(ElseClause))
	b.Rule(ElseClause).Is(Else, Statement)
	b.Rule(WhileStatement).Is(While, ConditionClause, Statement)
	b.Rule(ConditionClause).Is(LParen, Expression, RParen)

	b.Rule(Expression).Is(AssignmentExpression).Skip()
	b.Rule(AssignmentExpression).Is(b.FirstOf(
		b.Sequence(token.Identifier, Assign, Expression),
		OrExpression,
	)).SkipIfOneChild()
	b.Rule(OrExpression).Is(AndExpression, b.ZeroOrMore(OrOr, AndExpression)).SkipIfOneChild()
	b.Rule(AndExpression).Is(RelationalExpression, b.ZeroOrMore(AndAnd, RelationalExpression)).SkipIfOneChild()
	b.Rule(RelationalExpression).Is(
		AdditiveExpression,
		b.Optional(b.TokenTypes(EqEq, Ne, Lte, Lt, Gte, Gt), AdditiveExpression),
	).SkipIfOneChild()
	b.Rule(AdditiveExpression).Is(MultiplicativeExpression, b.ZeroOrMore(b.TokenTypes(Add, Sub), MultiplicativeExpression)).SkipIfOneChild()
	b.Rule(MultiplicativeExpression).Is(UnaryExpression, b.ZeroOrMore(b.TokenTypes(Mul, Div), UnaryExpression)).SkipIfOneChild()
	b.Rule(UnaryExpression).Is(b.FirstOf(
		b.Sequence(b.TokenTypes(Inc, Dec, Sub), PrimaryExpression),
		PostfixExpression,
	)).SkipIfOneChild()
	b.Rule(PostfixExpression).Is(PrimaryExpression, b.Optional(b.TokenTypes(Inc, Dec))).SkipIfOneChild()
	b.Rule(PrimaryExpression).Is(b.FirstOf(
		Integer,
		FunctionCall,
		token.Identifier,
		ParenthesizedExpression,
	)).SkipIfOneChild()
	b.Rule(FunctionCall).Is(token.Identifier, LParen, b.Optional(Arguments), RParen)
	b.Rule(Arguments).Is(Expression, b.ZeroOrMore(Comma, Expression))
	b.Rule(ParenthesizedExpression).Is(LParen, Expression, RParen)

	b.SetRoot(CompilationUnit)
	return b
}

// Grammar builds the MiniC grammar.
func Grammar() (*grammar.Grammar, error) {
	return NewGrammarBuilder().Build()
}

// NewParser returns a parser for MiniC compilation units, or for the rule
// given with parser.WithRoot.
func NewParser(opts ...parser.Option) (*parser.Lexerful, error) {
	g, err := Grammar()
	if err != nil {
		return nil, err
	}
	lx, err := NewLexer()
	if err != nil {
		return nil, err
	}
	return parser.NewLexerful(g, lx, opts...)
}
