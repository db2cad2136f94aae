package vm

import (
	"github.com/dhamidi/grit/grammar"
	"github.com/dhamidi/grit/token"
)

// match returns how much input e consumes at the cursor, or -1.
func (m *machine) match(e grammar.Expr) (int, error) {
	if m.program.lexerless {
		return m.matchChars(e)
	}
	return m.matchTokens(e), nil
}

func (m *machine) matchChars(e grammar.Expr) (int, error) {
	switch e := e.(type) {
	case *grammar.Literal:
		if m.index+len(e.Runes) > m.length {
			return -1, nil
		}
		for i, ch := range e.Runes {
			if m.chars[m.index+i] != ch {
				return -1, nil
			}
		}
		return len(e.Runes), nil

	case *grammar.Pattern:
		return e.Matcher.Match(m.chars, m.index)

	case *grammar.EndOfInput:
		if m.index == m.length {
			return 0, nil
		}
	}
	return -1, nil
}

func (m *machine) matchTokens(e grammar.Expr) int {
	var tok *token.Token
	if m.index < m.length {
		tok = m.tokens[m.index]
	}

	switch e := e.(type) {
	case *grammar.EndOfInput:
		if tok == nil || tok.Type == token.Type(token.EOF) {
			return 0
		}

	case *grammar.Literal:
		if tok != nil && tok.Value == e.Text {
			return 1
		}

	case *grammar.TokenType:
		if tok != nil && tok.Type == e.Type {
			return 1
		}

	case *grammar.TokenTypes:
		if tok != nil {
			for _, typ := range e.Types {
				if tok.Type == typ {
					return 1
				}
			}
		}

	case *grammar.AnyToken:
		if tok != nil && tok.Type != token.Type(token.EOF) {
			return 1
		}

	case *grammar.TokenBridge:
		return m.bridge(e.Open, e.Close)

	case *grammar.TillNewLine:
		return m.tillNewLine()
	}
	return -1
}

// bridge consumes a balanced run starting with an open token. The nesting
// counter must return to zero before the end of the stream.
func (m *machine) bridge(open, close token.Type) int {
	if m.index+2 > m.length || m.tokens[m.index].Type != open {
		return -1
	}
	depth := 0
	i := m.index
	for {
		switch m.tokens[i].Type {
		case open:
			depth++
		case close:
			depth--
		}
		i++
		if depth == 0 {
			return i - m.index
		}
		if i >= m.length {
			return -1
		}
	}
}

// tillNewLine consumes the tokens on the line where the previous token
// ends. It never fails.
func (m *machine) tillNewLine() int {
	line := 1
	if m.index > 0 {
		line = m.tokens[m.index-1].EndLine()
	}
	i := m.index
	for i < m.length && m.tokens[i].Type != token.Type(token.EOF) && m.tokens[i].Line == line {
		i++
	}
	return i - m.index
}
