// Package report assembles the project context document from per-file
// summaries. It renders markdown, JSON, and HTML variants plus the delta
// formats used by change-only builds.
package report

import (
	"fmt"
	"math"
	"path"
	"sort"
	"strings"

	"github.com/harrison/ctxgen/internal/manifest"
	"github.com/harrison/ctxgen/internal/summary"
)

const (
	// DefaultTokenBudget is the soft output size limit in approximate
	// tokens. Exceeding it produces a warning, never truncation.
	DefaultTokenBudget = 8000

	// keyFileThreshold is the minimum priority score for the key files
	// section.
	keyFileThreshold = 5

	// summaryTableWidth truncates summaries in the other-files table.
	summaryTableWidth = 60

	maxListed = 10
)

// keyFilePatterns are filename fragments that mark likely key files.
var keyFilePatterns = []string{
	"readme", "claude.md", "package.json", "cargo.toml",
	"go.mod", "pyproject.toml",
}

// File is one summarized input to the generator.
type File struct {
	Path       string
	SourceHash string
	Summary    *summary.Result
}

// Options configure a generation run.
type Options struct {
	IgnoreMode    string
	CacheHits     int
	CacheTotal    int
	PriorityPaths []string
	ProjectName   string
	TokenBudget   int
}

// Result is the generated document plus bookkeeping.
type Result struct {
	Content      string
	Warnings     []string
	ApproxTokens int
	ScanHash     string
}

// role and summaryText tolerate files whose summarization failed outright.

func (f File) role() string {
	if f.Summary == nil {
		return "unknown"
	}
	return f.Summary.Role
}

func (f File) summaryText() string {
	if f.Summary == nil {
		return ""
	}
	return f.Summary.Summary
}

// priorityScore ranks a file for the key files section. Entrypoints
// dominate, then configs, docs, well-known filenames, scanner priority
// paths, and confident entrypoint evidence.
func priorityScore(f File, priorityPaths map[string]bool) int {
	score := 0
	name := strings.ToLower(path.Base(f.Path))

	switch f.role() {
	case "entrypoint":
		score += 10
	case "config":
		score += 5
	case "docs":
		score += 3
	}

	for _, pattern := range keyFilePatterns {
		if strings.Contains(name, pattern) {
			score += 3
			break
		}
	}

	if priorityPaths[f.Path] {
		score += 2
	}

	if f.Summary != nil {
		for _, ep := range f.Summary.Entrypoints {
			if ep.Confidence > 0.8 {
				score++
				break
			}
		}
	}

	return score
}

type scoredFile struct {
	file  File
	score int
}

// classify splits files into key files (score descending, then path) and
// the rest (path order).
func classify(files []File, priorityPaths []string) (key []scoredFile, other []File) {
	prioritySet := make(map[string]bool, len(priorityPaths))
	for _, p := range priorityPaths {
		prioritySet[p] = true
	}

	for _, f := range files {
		s := priorityScore(f, prioritySet)
		if s >= keyFileThreshold {
			key = append(key, scoredFile{file: f, score: s})
		} else {
			other = append(other, f)
		}
	}

	sort.Slice(key, func(i, j int) bool {
		if key[i].score != key[j].score {
			return key[i].score > key[j].score
		}
		return key[i].file.Path < key[j].file.Path
	})
	sort.Slice(other, func(i, j int) bool { return other[i].Path < other[j].Path })
	return key, other
}

// scanHash aggregates the input snapshot, matching the manifest hash so the
// header and the saved baseline agree.
func scanHash(files []File, ignoreMode string) string {
	hashes := make([]manifest.FileHash, 0, len(files))
	for _, f := range files {
		hashes = append(hashes, manifest.FileHash{Path: f.Path, SourceHash: f.SourceHash})
	}
	return manifest.ComputeScanHash(hashes, ignoreMode)
}

// Generate renders the markdown context document.
func Generate(files []File, opts Options) Result {
	result := Result{ScanHash: scanHash(files, opts.IgnoreMode)}

	keyFiles, otherFiles := classify(files, opts.PriorityPaths)

	name := opts.ProjectName
	if name == "" {
		name = "Project"
	}
	total := opts.CacheTotal
	if total <= 0 {
		total = len(files)
	}

	var sections []string
	sections = append(sections,
		fmt.Sprintf("# Project Context: %s", name),
		"",
		fmt.Sprintf("> Files: %d | Cache: %d/%d hits | Mode: %s | Hash: %s",
			len(files), opts.CacheHits, total, opts.IgnoreMode, result.ScanHash),
		"",
		"## Directory Structure",
		"",
		"```",
		renderTree(filePaths(files)),
		"```",
		"",
	)

	if len(keyFiles) > 0 {
		sections = append(sections, "## Key Files", "")
		for _, sf := range keyFiles {
			sections = append(sections, keyFileSection(sf.file), "")
		}
	}

	if len(otherFiles) > 0 {
		sections = append(sections,
			"## Other Files",
			"",
			"| File | Role | Summary |",
			"|------|------|---------|",
		)
		for _, f := range otherFiles {
			text := f.summaryText()
			if runes := []rune(text); len(runes) > summaryTableWidth {
				text = string(runes[:summaryTableWidth]) + "..."
			}
			sections = append(sections, fmt.Sprintf("| %s | %s | %s |", f.Path, f.role(), text))
		}
		sections = append(sections, "")
	}

	result.Content = strings.Join(sections, "\n")
	result.ApproxTokens = EstimateTokens(result.Content)

	budget := opts.TokenBudget
	if budget <= 0 {
		budget = DefaultTokenBudget
	}
	if result.ApproxTokens > budget {
		result.Warnings = append(result.Warnings, "token_budget_exceeded")
	}

	return result
}

// EstimateTokens approximates the token count of text at four characters
// per token, rounding up.
func EstimateTokens(text string) int {
	return int(math.Ceil(float64(len(text)) / 4))
}

// keyFileSection renders the detailed block for one key file.
func keyFileSection(f File) string {
	lines := []string{
		fmt.Sprintf("### %s", f.Path),
		fmt.Sprintf("**Role:** %s", f.role()),
		"",
		f.summaryText(),
	}

	if f.Summary != nil {
		if len(f.Summary.PublicSymbols) > 0 {
			lines = append(lines, "",
				"**Provides:** "+strings.Join(truncateList(f.Summary.PublicSymbols), ", "))
		}
		if len(f.Summary.ImportDeps) > 0 {
			lines = append(lines,
				"**Consumes:** "+strings.Join(truncateList(f.Summary.ImportDeps), ", "))
		}
		if len(f.Summary.Entrypoints) > 0 {
			ep := f.Summary.Entrypoints[0]
			lines = append(lines, fmt.Sprintf("**Entry:** `%s` (line %d)", ep.Evidence, ep.Line))
		}
	}

	return strings.Join(lines, "\n")
}

func truncateList(items []string) []string {
	if len(items) > maxListed {
		return items[:maxListed]
	}
	return items
}

func filePaths(files []File) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}
