// Package diag renders recognition failures with the surrounding source.
package diag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/dhamidi/grit/token"
	"github.com/dhamidi/grit/vm"
)

const (
	DefaultRadius = 10
	DefaultLines  = 2
	tabWidth      = 8
)

var (
	errorStyle  = []color.Attribute{color.FgRed, color.Bold}
	markerStyle = []color.Attribute{color.FgBlue, color.Bold}
	caretStyle  = []color.Attribute{color.FgRed, color.Bold}
)

// Formatter renders failures. Zero values select the defaults.
type Formatter struct {
	// Radius is the number of tokens shown on each side of a failing token.
	Radius int
	// Lines is the number of lines shown before and after a failing line in
	// character input.
	Lines int
	// Color enables ANSI colours.
	Color bool
}

func (f *Formatter) radius() int {
	if f.Radius <= 0 {
		return DefaultRadius
	}
	return f.Radius
}

func (f *Formatter) lines() int {
	if f.Lines <= 0 {
		return DefaultLines
	}
	return f.Lines
}

func (f *Formatter) style(attrs []color.Attribute, s string) string {
	if !f.Color {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// Position returns the 1-based line and column of index in input.
func Position(input []rune, index int) (line, column int) {
	line, column = 1, 1
	for i := 0; i < index && i < len(input); i++ {
		if input[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

// FormatChars renders a failure over character input.
func (f *Formatter) FormatChars(input []rune, failure *vm.Failure) string {
	line, column := Position(input, failure.Index)
	lines := strings.Split(string(input), "\n")

	first := max(1, line-f.lines())
	last := min(len(lines), line+f.lines())
	ctx := make(map[int]string, last-first+1)
	for l := first; l <= last; l++ {
		ctx[l] = lines[l-1]
	}

	var sb strings.Builder
	f.header(&sb, line, column)
	f.expected(&sb, failure)
	f.context(&sb, ctx, first, last, line, column)
	return sb.String()
}

// FormatTokens renders the tokens around index. Line numbers come from the
// token positions; a token spanning several lines moves the following text
// down accordingly.
func (f *Formatter) FormatTokens(tokens []*token.Token, index int) string {
	var sb strings.Builder
	f.formatTokens(&sb, tokens, index, nil)
	return sb.String()
}

// FormatTokenFailure is FormatTokens with the expectations of failure.
func (f *Formatter) FormatTokenFailure(tokens []*token.Token, failure *vm.Failure) string {
	var sb strings.Builder
	f.formatTokens(&sb, tokens, failure.Index, failure)
	return sb.String()
}

func (f *Formatter) formatTokens(sb *strings.Builder, tokens []*token.Token, index int, failure *vm.Failure) {
	if len(tokens) == 0 {
		f.header(sb, 1, 1)
		f.expected(sb, failure)
		return
	}
	index = max(0, min(index, len(tokens)-1))
	failing := tokens[index]

	ctx := make(map[int]string)
	first, last := failing.Line, failing.Line
	from := max(0, index-f.radius())
	to := min(len(tokens)-1, index+f.radius())
	for _, tok := range tokens[from : to+1] {
		if tok.Type == token.Type(token.EOF) {
			continue
		}
		parts := strings.Split(tok.OriginalValue, "\n")
		for i, part := range parts {
			l, col := tok.Line+i, 1
			if i == 0 {
				col = tok.Column
			}
			ctx[l] = place(ctx[l], col, part)
			first, last = min(first, l), max(last, l)
		}
	}

	f.header(sb, failing.Line, failing.Column)
	f.expected(sb, failure)
	f.context(sb, ctx, first, last, failing.Line, failing.Column)
}

// place writes text into line so that it starts at column.
func place(line string, column int, text string) string {
	if n := len([]rune(line)); n < column-1 {
		line += strings.Repeat(" ", column-1-n)
	} else if n > column-1 && line != "" {
		line += " "
	}
	return line + text
}

func (f *Formatter) header(sb *strings.Builder, line, column int) {
	sb.WriteString(f.style(errorStyle, "Parse error"))
	fmt.Fprintf(sb, " at line %d column %d:\n", line, column)
}

func (f *Formatter) expected(sb *strings.Builder, failure *vm.Failure) {
	if failure == nil || len(failure.Expectations) == 0 {
		return
	}
	sb.WriteString("\n")
	if len(failure.Expectations) == 1 {
		fmt.Fprintf(sb, "Expected: %s\n", failure.Expectations[0])
		return
	}
	sb.WriteString("Expected one of:\n")
	for _, x := range failure.Expectations {
		fmt.Fprintf(sb, "  - %s\n", x)
	}
}

func (f *Formatter) context(sb *strings.Builder, ctx map[int]string, first, last, line, column int) {
	width := len(strconv.Itoa(last))
	gutter := strings.Repeat(" ", width)

	sb.WriteString("\n")
	for l := first; l <= last; l++ {
		text := expandTabs(ctx[l])
		marker := "   "
		if l == line {
			marker = f.style(markerStyle, "-->")
		}
		text = strings.TrimRight(text, " \r")
		if text == "" {
			fmt.Fprintf(sb, "%s %*d |\n", marker, width, l)
		} else {
			fmt.Fprintf(sb, "%s %*d | %s\n", marker, width, l, text)
		}
		if l == line {
			caret := strings.Repeat(" ", visualColumn(ctx[l], column))
			fmt.Fprintf(sb, "    %s | %s%s\n", gutter, caret, f.style(caretStyle, "^"))
		}
	}
}

func expandTabs(line string) string {
	var expanded strings.Builder
	col := 0
	for _, ch := range line {
		if ch == '\t' {
			n := tabWidth - col%tabWidth
			expanded.WriteString(strings.Repeat(" ", n))
			col += n
		} else {
			expanded.WriteRune(ch)
			col++
		}
	}
	return expanded.String()
}

// visualColumn is the 0-based display column of the 1-based rune column.
func visualColumn(line string, column int) int {
	visual := 0
	i := 1
	for _, ch := range line {
		if i == column {
			break
		}
		if ch == '\t' {
			visual += tabWidth - visual%tabWidth
		} else {
			visual++
		}
		i++
	}
	if i < column {
		visual += column - i
	}
	return visual
}
