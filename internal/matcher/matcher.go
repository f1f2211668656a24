// Package matcher turns a pattern into a literal or regexp matcher, honoring case sensitivity
package matcher

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/UnendingLoop/TextSplitter/internal/apperr"
	"github.com/dlclark/regexp2"
)

type Mode string

const (
	Literal = Mode("literal")
	Regex   = Mode("regex")
)

// ModeFor maps the use-regex switch of the public operations onto a Mode
func ModeFor(useRegex bool) Mode {
	if useRegex {
		return Regex
	}
	return Literal
}

// Options bound regexp evaluation. Zero values disable the corresponding limit.
type Options struct {
	Timeout   time.Duration
	MaxLength int
}

var DefaultOptions = Options{
	Timeout:   10 * time.Second,
	MaxLength: 10_000,
}

// Matcher is what the splitter, filter and remover need from a pattern
type Matcher interface {
	Split(line string) ([]string, error)
	FindAll(line string) ([]string, error)
	ReplaceAll(line, repl string) (string, error)
	IsMatch(line string) (bool, error)
}

// New validates and compiles the pattern up front, so callers fail before touching any line
func New(pattern string, mode Mode, caseSensitive bool, opts Options) (Matcher, error) {
	if opts.MaxLength > 0 && len(pattern) > opts.MaxLength {
		return nil, apperr.InvalidPattern(shorten(pattern), fmt.Errorf("pattern is longer than %d characters", opts.MaxLength))
	}

	switch mode {
	case Regex:
		return compile(pattern, caseSensitive, opts)
	case Literal:
		return newLiteral(pattern, caseSensitive, opts)
	default:
		return nil, apperr.InvalidOption("pattern mode", string(mode))
	}
}

type regexMatcher struct {
	pattern string
	re      *regexp2.Regexp
}

// compile expects a pattern that already passed the length check in New
func compile(pattern string, caseSensitive bool, opts Options) (*regexMatcher, error) {
	expr := pattern
	if !caseSensitive {
		expr = "(?i)" + pattern
	}

	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, apperr.InvalidPattern(shorten(pattern), err)
	}
	if opts.Timeout > 0 {
		re.MatchTimeout = opts.Timeout
	}

	return &regexMatcher{pattern: pattern, re: re}, nil
}

// Split returns the text between successive matches followed by the tail after the last one
func (m *regexMatcher) Split(line string) ([]string, error) {
	runes := []rune(line)
	result := make([]string, 0, 2)
	last := 0

	err := m.each(line, func(match *regexp2.Match) {
		result = append(result, string(runes[last:match.Index]))
		last = match.Index + match.Length
	})
	if err != nil {
		return nil, err
	}

	return append(result, string(runes[last:])), nil
}

func (m *regexMatcher) FindAll(line string) ([]string, error) {
	var result []string
	err := m.each(line, func(match *regexp2.Match) {
		result = append(result, match.String())
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (m *regexMatcher) ReplaceAll(line, repl string) (string, error) {
	res, err := m.re.Replace(line, repl, -1, -1)
	if err != nil {
		return "", apperr.PatternTimeout(shorten(m.pattern), err)
	}
	return res, nil
}

func (m *regexMatcher) IsMatch(line string) (bool, error) {
	ok, err := m.re.MatchString(line)
	if err != nil {
		return false, apperr.PatternTimeout(shorten(m.pattern), err)
	}
	return ok, nil
}

// each walks the matches left to right; match indexes are rune offsets
func (m *regexMatcher) each(line string, fn func(match *regexp2.Match)) error {
	match, err := m.re.FindStringMatch(line)
	for match != nil && err == nil {
		fn(match)
		match, err = m.re.FindNextMatch(match)
	}
	if err != nil {
		return apperr.PatternTimeout(shorten(m.pattern), err)
	}
	return nil
}

type literalMatcher struct {
	pattern       string
	lowered       string
	caseSensitive bool
	folded        *regexMatcher // case-insensitive split/find/replace go through the escaped pattern
}

func newLiteral(pattern string, caseSensitive bool, opts Options) (*literalMatcher, error) {
	m := &literalMatcher{
		pattern:       pattern,
		lowered:       strings.ToLower(pattern),
		caseSensitive: caseSensitive,
	}
	if !caseSensitive && pattern != "" {
		folded, err := compile(regexp2.Escape(pattern), false, opts)
		if err != nil {
			return nil, err
		}
		m.folded = folded
	}
	return m, nil
}

func (m *literalMatcher) Split(line string) ([]string, error) {
	switch {
	case m.pattern == "":
		return []string{line}, nil
	case m.caseSensitive:
		return strings.Split(line, m.pattern), nil
	default:
		return m.folded.Split(line)
	}
}

func (m *literalMatcher) FindAll(line string) ([]string, error) {
	switch {
	case m.pattern == "":
		return nil, nil
	case m.caseSensitive:
		return slices.Repeat([]string{m.pattern}, strings.Count(line, m.pattern)), nil
	default:
		return m.folded.FindAll(line)
	}
}

func (m *literalMatcher) ReplaceAll(line, repl string) (string, error) {
	switch {
	case m.pattern == "":
		return line, nil
	case m.caseSensitive:
		return strings.ReplaceAll(line, m.pattern, repl), nil
	default:
		return m.folded.ReplaceAll(line, repl)
	}
}

// IsMatch is plain substring containment; case-insensitive means lowercasing both sides
func (m *literalMatcher) IsMatch(line string) (bool, error) {
	if m.caseSensitive {
		return strings.Contains(line, m.pattern), nil
	}
	return strings.Contains(strings.ToLower(line), m.lowered), nil
}

func shorten(pattern string) string {
	const limit = 64
	runes := []rune(pattern)
	if len(runes) <= limit {
		return pattern
	}
	return string(runes[:limit]) + "..."
}
