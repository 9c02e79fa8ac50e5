package ignore

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ProjectIgnoreFile is the per-project overlay file, read from the scan root.
const ProjectIgnoreFile = ".contextignore"

// defaultPatterns ships with the tool and is always evaluated first.
//
//go:embed default.contextignore
var defaultPatterns string

// Matcher evaluates an ordered pattern list against relative paths.
// Evaluation order equals file order: the last pattern that matches a path,
// negated or not, decides the outcome.
type Matcher struct {
	patterns []Pattern
}

// NewMatcher builds a matcher over patterns, preserving their order.
func NewMatcher(patterns []Pattern) *Matcher {
	return &Matcher{patterns: patterns}
}

// Match reports whether path is ignored. A plain pattern that matches sets
// the result to ignored; a negated pattern that matches resets it. Later
// patterns always override earlier ones.
func (m *Matcher) Match(path string) bool {
	ignored := false
	for _, p := range m.patterns {
		if !p.matches(path) {
			continue
		}
		ignored = !p.Negated
	}
	return ignored
}

// Len returns the number of compiled patterns.
func (m *Matcher) Len() int {
	return len(m.patterns)
}

// ParseReader reads pattern lines from r, skipping blank lines and comments.
func ParseReader(r io.Reader) ([]Pattern, error) {
	var patterns []Pattern

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := Parse(line)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ignore patterns: %w", err)
	}

	return patterns, nil
}

// ParseFile reads pattern lines from the file at path.
func ParseFile(path string) ([]Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ignore file %s: %w", path, err)
	}
	defer f.Close()

	return ParseReader(f)
}

// DefaultPatterns returns the compiled built-in pattern list.
// The embedded file is validated by tests, so a parse failure here is a
// programming error and panics.
func DefaultPatterns() []Pattern {
	patterns, err := ParseReader(strings.NewReader(defaultPatterns))
	if err != nil {
		panic(fmt.Sprintf("ignore: embedded default patterns are invalid: %v", err))
	}
	return patterns
}

// LoadRoot builds the effective matcher for a project root: the shipped
// defaults first, then the project's .contextignore appended after them so
// the overlay can re-include files the defaults exclude.
func LoadRoot(root string) (*Matcher, error) {
	patterns := DefaultPatterns()

	projectFile := filepath.Join(root, ProjectIgnoreFile)
	if _, err := os.Stat(projectFile); err == nil {
		project, err := ParseFile(projectFile)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, project...)
	}

	return NewMatcher(patterns), nil
}
