// Package scanner enumerates the in-scope files of a project root.
//
// When git is available and the root is the top level of a checked-out
// worktree, the file list comes from git itself (tracked plus untracked but
// not ignored), with the project ignore matcher applied as an additional
// exclude-only filter. Otherwise the scanner walks the tree best-effort,
// pruning ignored, hidden, and submodule directories before descending.
package scanner

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/harrison/ctxgen/internal/ignore"
)

// Ignore modes reported in Result.IgnoreMode.
const (
	// ModeGit means the file list came from git's own exclusion rules.
	ModeGit = "git"
	// ModeBestEffort means the scanner walked the tree with pattern
	// matching only, which may diverge from git's ignore semantics.
	ModeBestEffort = "best_effort"
)

// Result is the scanner output contract.
type Result struct {
	// Files holds slash-separated paths relative to the root, sorted
	// lexicographically for deterministic downstream hashing.
	Files []string `json:"files"`

	// IgnoreMode is ModeGit or ModeBestEffort.
	IgnoreMode string `json:"ignore_mode"`

	// Warnings collects non-fatal problems encountered during the scan.
	Warnings []string `json:"warnings"`

	// PriorityPaths flags files whose base name matches a well-known
	// pattern (README, manifests, entrypoints, configs), in scan order.
	PriorityPaths []string `json:"priority_paths"`
}

// priorityPatterns match base names of files worth surfacing first.
var priorityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^README`),
	regexp.MustCompile(`(?i)^CLAUDE\.md$`),
	regexp.MustCompile(`(?i)^package\.json$`),
	regexp.MustCompile(`(?i)^Cargo\.toml$`),
	regexp.MustCompile(`(?i)^go\.mod$`),
	regexp.MustCompile(`(?i)^pyproject\.toml$`),
	regexp.MustCompile(`(?i)^setup\.py$`),
	regexp.MustCompile(`(?i)^main\.(py|js|ts|go|rs|scala)$`),
	regexp.MustCompile(`(?i)^app\.(py|js|ts)$`),
	regexp.MustCompile(`(?i)^index\.(py|js|ts)$`),
	regexp.MustCompile(`(?i)^__main__\.py$`),
	regexp.MustCompile(`(?i)^config\.(yaml|yml|json|toml)$`),
	regexp.MustCompile(`(?i)^settings\.(py|yaml|yml|json)$`),
	regexp.MustCompile(`(?i)^Makefile$`),
	regexp.MustCompile(`(?i)^Dockerfile$`),
}

// Scanner produces the in-scope file set for one root directory.
type Scanner struct {
	root string

	// disableGit forces best-effort mode, used by tests and dry runs that
	// must not shell out.
	disableGit bool

	// lookPath and readDir are indirection points for tests: lookPath to
	// simulate a missing git binary, readDir to count directory accesses
	// when verifying pruning.
	lookPath func(file string) (string, error)
	readDir  func(name string) ([]os.DirEntry, error)
}

// New creates a Scanner for root.
func New(root string) *Scanner {
	return &Scanner{
		root:     root,
		lookPath: exec.LookPath,
		readDir:  os.ReadDir,
	}
}

// NewWithoutGit creates a Scanner that never invokes git, forcing
// best-effort mode regardless of the environment.
func NewWithoutGit(root string) *Scanner {
	s := New(root)
	s.disableGit = true
	return s
}

// Scan enumerates in-scope files. It never returns an error: a missing or
// invalid root yields an empty result carrying a warning.
func (s *Scanner) Scan() *Result {
	result := &Result{
		Files:         []string{},
		IgnoreMode:    ModeBestEffort,
		Warnings:      []string{},
		PriorityPaths: []string{},
	}

	info, err := os.Stat(s.root)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Root directory does not exist: %s", s.root))
		return result
	}
	if !info.IsDir() {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Root is not a directory: %s", s.root))
		return result
	}

	matcher, err := ignore.LoadRoot(s.root)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("ignoring project %s: %v", ignore.ProjectIgnoreFile, err))
		matcher = ignore.NewMatcher(ignore.DefaultPatterns())
	}

	gitOnPath := s.gitAvailable()
	if !gitOnPath {
		result.Warnings = append(result.Warnings, "git not found; using best-effort ignore matching")
	}

	if gitOnPath && s.inGitWorktree() {
		result.IgnoreMode = ModeGit
		files, err := s.listGitFiles()
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("git ls-files failed: %v", err))
		}
		// The project matcher is an additional exclude-only filter on
		// top of git's own rules; it cannot re-include what git hid.
		for _, f := range files {
			if !matcher.Match(f) {
				result.Files = append(result.Files, f)
			}
		}
		sort.Strings(result.Files)
	} else {
		submodules := s.registeredSubmodules()
		s.walk("", matcher, submodules, result)
		sort.Strings(result.Files)
	}

	for _, path := range result.Files {
		segments := strings.Split(path, "/")
		if isPriorityName(segments[len(segments)-1]) {
			result.PriorityPaths = append(result.PriorityPaths, path)
		}
	}

	return result
}

// walk recursively collects files under rel (slash-separated, "" for the
// root). Pruning decisions are made before descending: an excluded directory
// is never read, not merely filtered from the output.
func (s *Scanner) walk(rel string, matcher *ignore.Matcher, submodules map[string]bool, result *Result) {
	dir := s.root
	if rel != "" {
		dir = filepath.Join(s.root, filepath.FromSlash(rel))
	}

	entries, err := s.readDir(dir)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("skipping unreadable directory %s: %v", dir, err))
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}

		if entry.IsDir() {
			if submodules[childRel] {
				continue
			}
			if isSubmoduleDir(filepath.Join(dir, name)) {
				continue
			}
			if matcher.Match(childRel) {
				continue
			}
			s.walk(childRel, matcher, submodules, result)
			continue
		}

		if !matcher.Match(childRel) {
			result.Files = append(result.Files, childRel)
		}
	}
}

// isPriorityName reports whether a base name matches a priority pattern.
func isPriorityName(name string) bool {
	for _, re := range priorityPatterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
