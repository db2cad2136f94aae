package token

// TriviaKind classifies non-significant lexical material.
type TriviaKind uint8

const (
	TriviaComment TriviaKind = iota
	TriviaSkippedText
	TriviaPreprocessor
)

var triviaKindNames = map[TriviaKind]string{
	TriviaComment:      "Comment",
	TriviaSkippedText:  "SkippedText",
	TriviaPreprocessor: "Preprocessor",
}

func (k TriviaKind) String() string {
	if name, ok := triviaKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Trivia is attached to the significant token that follows it.
type Trivia struct {
	Kind   TriviaKind
	Tokens []*Token
}

// NewComment wraps a comment token.
func NewComment(tok *Token) Trivia {
	return Trivia{Kind: TriviaComment, Tokens: []*Token{tok}}
}

// NewSkippedText wraps tokens that were consumed but carry no meaning.
func NewSkippedText(toks ...*Token) Trivia {
	return Trivia{Kind: TriviaSkippedText, Tokens: toks}
}

// NewPreprocessor wraps a preprocessor-like directive.
func NewPreprocessor(toks ...*Token) Trivia {
	return Trivia{Kind: TriviaPreprocessor, Tokens: toks}
}

// Token returns the first token of the trivia, or nil.
func (t Trivia) Token() *Token {
	if len(t.Tokens) == 0 {
		return nil
	}
	return t.Tokens[0]
}

// Text concatenates the original text of the trivia tokens.
func (t Trivia) Text() string {
	var s string
	for _, tok := range t.Tokens {
		s += tok.OriginalValue
	}
	return s
}
