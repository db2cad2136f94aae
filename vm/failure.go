package vm

import (
	"fmt"
	"strings"

	"github.com/dhamidi/grit/grammar"
)

// Expectation is an expression that failed at the deepest index, together
// with the innermost rule it was matched for.
type Expectation struct {
	Expr grammar.Expr
	Rule *grammar.Rule
}

func (e Expectation) String() string {
	if e.Rule == nil {
		return e.Expr.String()
	}
	return fmt.Sprintf("%s in %s", e.Expr, e.Rule.Key)
}

// Failure is a recognition failure. Index is the deepest character or token
// index any alternative reached; every expectation recorded there is kept.
type Failure struct {
	Index        int
	Expectations []Expectation
}

func (f *Failure) Error() string {
	if len(f.Expectations) == 0 {
		return fmt.Sprintf("parse error at index %d", f.Index)
	}
	return fmt.Sprintf("parse error at index %d: expected %s", f.Index, f.Expected())
}

// Expected renders the expected expressions as a readable alternative list.
func (f *Failure) Expected() string {
	seen := make(map[string]bool, len(f.Expectations))
	var names []string
	for _, x := range f.Expectations {
		s := x.Expr.String()
		if !seen[s] {
			seen[s] = true
			names = append(names, s)
		}
	}
	switch len(names) {
	case 0:
		return "nothing"
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}
