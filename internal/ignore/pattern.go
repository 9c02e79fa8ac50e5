// Package ignore implements gitignore-compatible pattern matching for scan
// filtering. Patterns come from two layers: a default set shipped with the
// tool and a project-specific .contextignore overlay appended after it, so
// project patterns (including negations) always win over the defaults.
package ignore

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern is a single compiled ignore rule. Immutable once parsed.
type Pattern struct {
	// Raw is the pattern text as written, including any ! / markers.
	Raw string

	// Negated re-includes paths excluded by an earlier pattern.
	Negated bool

	// DirOnly patterns (trailing slash) match a directory name anywhere
	// in the tree, plus everything beneath it.
	DirOnly bool

	// Anchored patterns (leading slash) must match from the path start.
	Anchored bool

	// stem is the directory name a DirOnly pattern matches against.
	stem string

	// re is the compiled glob for non-DirOnly patterns, anchored at both
	// ends so a candidate string must match in full.
	re *regexp.Regexp
}

// Parse compiles one pattern line. Callers are expected to have dropped
// blank lines and comments already.
func Parse(line string) (Pattern, error) {
	p := Pattern{Raw: line}

	text := line
	if strings.HasPrefix(text, "!") {
		p.Negated = true
		text = text[1:]
	}

	// Directory-only patterns are matched by segment, not by regexp.
	// The leading slash, if any, is kept in the stem: this mirrors git's
	// behavior of an anchored directory pattern never matching a relative
	// path by bare segment name.
	if strings.HasSuffix(text, "/") {
		p.DirOnly = true
		p.stem = strings.TrimSuffix(text, "/")
		return p, nil
	}

	if strings.HasPrefix(text, "/") {
		p.Anchored = true
		text = text[1:]
	}

	re, err := compileGlob(text)
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid ignore pattern %q: %w", line, err)
	}
	p.re = re

	return p, nil
}

// compileGlob translates a gitignore glob into an anchored regexp:
//
//	**/  → optionally matches zero or more leading directories
//	**   → matches anything, including /
//	*    → matches anything except /
//	?    → one character that is not /
//	[ ]  → passed through as a character class
//	\x   → the literal character x
//
// Everything else is quoted.
func compileGlob(glob string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^(?:")

	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				if i+2 < len(glob) && glob[i+2] == '/' {
					b.WriteString("(?:.*/)?")
					i += 2
				} else {
					b.WriteString(".*")
					i++
				}
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '[', ']':
			b.WriteByte(c)
		case '\\':
			if i+1 < len(glob) {
				b.WriteString(regexp.QuoteMeta(string(glob[i+1])))
				i++
			} else {
				b.WriteString(`\\`)
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	b.WriteString(")$")
	return regexp.Compile(b.String())
}

// matches reports whether this pattern (ignoring negation) applies to path.
// Paths are slash-separated and relative to the scan root.
func (p Pattern) matches(path string) bool {
	if p.DirOnly {
		if path == p.stem || strings.HasPrefix(path, p.stem+"/") {
			return true
		}
		for _, segment := range strings.Split(path, "/") {
			if segment == p.stem {
				return true
			}
		}
		return false
	}

	if p.Anchored {
		return p.re.MatchString(path)
	}

	// Unanchored: the glob may match the whole path, the bare filename,
	// or any suffix starting at a directory boundary.
	if p.re.MatchString(path) {
		return true
	}
	segments := strings.Split(path, "/")
	if p.re.MatchString(segments[len(segments)-1]) {
		return true
	}
	for i := 1; i < len(segments); i++ {
		if p.re.MatchString(strings.Join(segments[i:], "/")) {
			return true
		}
	}
	return false
}
