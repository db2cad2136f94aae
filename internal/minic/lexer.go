// Package minic is a small C-like language used to exercise the lexer, the
// lexerful grammar API and the tree walkers end to end.
package minic

import (
	"github.com/dhamidi/grit/lexer"
	"github.com/dhamidi/grit/token"
)

var (
	Int      = token.NewKind("INT", "int")
	Void     = token.NewKind("VOID", "void")
	Struct   = token.NewKind("STRUCT", "struct")
	Return   = token.NewKind("RETURN", "return")
	If       = token.NewKind("IF", "if")
	Else     = token.NewKind("ELSE", "else")
	While    = token.NewKind("WHILE", "while")
	Continue = token.NewKind("CONTINUE", "continue")
	Break    = token.NewKind("BREAK", "break")

	Keywords = []token.Type{Int, Void, Struct, Return, If, Else, While, Continue, Break}
)

var (
	LParen    = token.NewKind("LPAREN", "(")
	RParen    = token.NewKind("RPAREN", ")")
	LBrace    = token.NewKind("LBRACE", "{")
	RBrace    = token.NewKind("RBRACE", "}")
	Semicolon = token.NewKind("SEMICOLON", ";")
	Comma     = token.NewKind("COMMA", ",")
	Assign    = token.NewKind("EQ", "=")
	EqEq      = token.NewKind("EQEQ", "==")
	Ne        = token.NewKind("NE", "!=")
	Lt        = token.NewKind("LT", "<")
	Lte       = token.NewKind("LTE", "<=")
	Gt        = token.NewKind("GT", ">")
	Gte       = token.NewKind("GTE", ">=")
	Add       = token.NewKind("ADD", "+")
	Sub       = token.NewKind("SUB", "-")
	Mul       = token.NewKind("MUL", "*")
	Div       = token.NewKind("DIV", "/")
	Inc       = token.NewKind("INC", "++")
	Dec       = token.NewKind("DEC", "--")
	AndAnd    = token.NewKind("ANDAND", "&&")
	OrOr      = token.NewKind("OROR", "||")

	Punctuators = []token.Type{
		LParen, RParen, LBrace, RBrace, Semicolon, Comma,
		Assign, EqEq, Ne, Lt, Lte, Gt, Gte,
		Add, Sub, Mul, Div, Inc, Dec, AndAnd, OrOr,
	}
)

var (
	Integer   = token.NewKind("INTEGER", "INTEGER")
	Directive = token.NewKind("DIRECTIVE", "DIRECTIVE")
)

// NewLexer returns the MiniC lexer. Options are applied after the
// built-in ones.
func NewLexer(opts ...lexer.Option) (*lexer.Lexer, error) {
	base := []lexer.Option{lexer.WithChannels(
		lexer.BlackHole(`\s+`),
		lexer.CommentRegexp(`//[^\n\r]*`),
		lexer.CommentRegexp(`/\*[\s\S]*?\*/`),
		lexer.TriviaRegexp(token.TriviaPreprocessor, Directive, `#[^\n\r]*`),
		lexer.Regexp(Integer, `[0-9]+`),
		lexer.IdentifierAndKeyword(`[a-zA-Z_][a-zA-Z0-9_]*`, true, Keywords...),
		lexer.Punctuator(Punctuators...),
	)}
	return lexer.New(append(base, opts...)...)
}
