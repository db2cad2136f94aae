package lexer

import (
	"fmt"

	"github.com/dhamidi/grit/pattern"
)

// EOF is returned by Peek once the input is exhausted.
const EOF rune = -1

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// CodeReader is the cursor channels consume input through. Offsets and
// columns count runes.
type CodeReader struct {
	input  []rune
	file   string
	pos    int
	line   int
	column int
}

func NewCodeReader(input []rune, file string) *CodeReader {
	return &CodeReader{
		input:  input,
		file:   file,
		line:   1,
		column: 1,
	}
}

func (r *CodeReader) Position() Position {
	return Position{
		File:   r.file,
		Offset: r.pos,
		Line:   r.line,
		Column: r.column,
	}
}

func (r *CodeReader) Offset() int {
	return r.pos
}

func (r *CodeReader) Peek() rune {
	return r.PeekN(0)
}

func (r *CodeReader) PeekN(n int) rune {
	if r.pos+n >= len(r.input) {
		return EOF
	}
	return r.input[r.pos+n]
}

// HasPrefix reports whether the unread input starts with s.
func (r *CodeReader) HasPrefix(s []rune) bool {
	if r.pos+len(s) > len(r.input) {
		return false
	}
	for i, ch := range s {
		if r.input[r.pos+i] != ch {
			return false
		}
	}
	return true
}

func (r *CodeReader) Pop() rune {
	if r.pos >= len(r.input) {
		return EOF
	}
	ch := r.input[r.pos]
	r.pos++
	if ch == '\n' {
		r.line++
		r.column = 1
	} else {
		r.column++
	}
	return ch
}

// Advance consumes n runes and returns them as a string.
func (r *CodeReader) Advance(n int) string {
	start := r.pos
	for i := 0; i < n; i++ {
		if r.Pop() == EOF {
			break
		}
	}
	return string(r.input[start:r.pos])
}

// Match returns how many runes m matches at the cursor, or -1.
func (r *CodeReader) Match(m *pattern.Matcher) (int, error) {
	return m.Match(r.input, r.pos)
}
