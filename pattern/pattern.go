// Package pattern wraps backtracking regular expressions for channels and
// lexerless grammar leaves. Every match is anchored at the requested offset
// and bounded by a timeout, so a pattern with catastrophic backtracking
// yields an *Error instead of hanging the process.
package pattern

import (
	"errors"
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultTimeout bounds a single match attempt.
const DefaultTimeout = time.Second

// Error reports a pattern that could not be compiled or whose evaluation
// was aborted.
type Error struct {
	Pattern string
	Offset  int
	Err     error
}

func (e *Error) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("pattern %q failed at offset %d: %v", e.Pattern, e.Offset, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrTimeout is wrapped by errors caused by a match exceeding its timeout.
var ErrTimeout = errors.New("match timeout")

// Matcher is safe for concurrent use.
type Matcher struct {
	source string
	re     *regexp2.Regexp
}

// Compile compiles source so that it only matches at the starting offset
// given to Match. A zero timeout selects DefaultTimeout.
func Compile(source string, timeout time.Duration) (*Matcher, error) {
	re, err := regexp2.Compile(`\G(?:`+source+`)`, regexp2.None)
	if err != nil {
		return nil, &Error{Pattern: source, Offset: -1, Err: err}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	re.MatchTimeout = timeout
	return &Matcher{source: source, re: re}, nil
}

// MustCompile is like Compile but panics on an invalid pattern.
func MustCompile(source string) *Matcher {
	m, err := Compile(source, 0)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Matcher) String() string {
	return m.source
}

// Match returns the number of runes matched at offset at, or -1 when the
// pattern does not match there. An empty match returns 0.
func (m *Matcher) Match(input []rune, at int) (int, error) {
	if at > len(input) {
		return -1, nil
	}
	match, err := m.re.FindRunesMatchStartingAt(input, at)
	if err != nil {
		return -1, &Error{Pattern: m.source, Offset: at, Err: fmt.Errorf("%w: %v", ErrTimeout, err)}
	}
	if match == nil || match.Index != at {
		return -1, nil
	}
	return match.Length, nil
}

// Escape quotes every metacharacter in s.
func Escape(s string) string {
	return regexp2.Escape(s)
}
