// Package summary produces heuristic per-file summaries: role
// classification, public symbol and import extraction, and safety gates for
// binary files, oversized files, and embedded secrets.
//
// Summaries feed the cache and the report generator. The package never
// returns an error for a bad input file; exclusions are expressed in the
// result itself so the pipeline can keep going.
package summary

import (
	"fmt"
	"os"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/harrison/ctxgen/internal/cache"
)

// Limits applied before summarization.
const (
	// MaxFileBytes caps the bytes considered for full summarization.
	MaxFileBytes = 200_000

	// MaxSummaryChars caps the summary text length.
	MaxSummaryChars = 500

	// binaryProbeBytes is how much of the head is checked for NUL bytes.
	binaryProbeBytes = 8192
)

// Prompt is the summarization prompt. Its hash is a cache invalidation
// axis: editing this text invalidates every cached summary.
const Prompt = `Analyze this source file and provide a JSON response with:
- summary: 2-5 sentence description (max 500 chars)
- role: one of entrypoint|config|library|test|docs|asset|unknown
- public_symbols: list of exported/public function/class names
- import_deps: list of imported modules
- provides: what this file exports/provides
- consumes: what external things this file uses

File path: {path}
Content:
{content}

Respond with only valid JSON, no markdown fences or other text.`

// BackendID names the summarization backend, the third cache-key axis.
// Summaries are currently heuristic-only.
const BackendID = "heuristic:v1"

// PromptHash is the truncated hash of Prompt.
var PromptHash = cache.HashPrompt(Prompt)

// Exclusion reasons reported in Result.ExclusionReason.
const (
	ReasonFileNotFound    = "file_not_found"
	ReasonReadError       = "read_error"
	ReasonBinaryFile      = "binary_file"
	ReasonFileTooLarge    = "file_too_large"
	ReasonPrivateKeyBlock = "private_key_block"
)

// Entrypoint records evidence that a file is a program entrypoint.
type Entrypoint struct {
	Path       string  `json:"path"`
	Line       int     `json:"lineno"`
	Evidence   string  `json:"evidence"`
	Confidence float64 `json:"confidence"`
}

// Result is the summary for one file. Field names match the persisted
// cache artifact format.
type Result struct {
	Summary            string       `json:"summary"`
	Role               string       `json:"role"`
	PublicSymbols      []string     `json:"public_symbols"`
	PublicSymbolsCount int          `json:"public_symbols_count"`
	ImportDeps         []string     `json:"import_deps"`
	Provides           []string     `json:"provides"`
	Consumes           []string     `json:"consumes"`
	Entrypoints        []Entrypoint `json:"entrypoints"`
	EntrypointsCount   int          `json:"entrypoints_count"`
	Excluded           bool         `json:"excluded"`
	ExclusionReason    string       `json:"exclusion_reason,omitempty"`
	RedactionCount     int          `json:"redaction_count"`
	IsBinary           bool         `json:"is_binary"`
	DecodeLossy        bool         `json:"decode_lossy"`
}

// newResult returns a Result with empty (not nil) slices so the JSON
// artifact always carries lists.
func newResult() *Result {
	return &Result{
		Role:          "unknown",
		PublicSymbols: []string{},
		ImportDeps:    []string{},
		Provides:      []string{},
		Consumes:      []string{},
		Entrypoints:   []Entrypoint{},
	}
}

// finalize recomputes derived counts and enforces the summary length cap.
func (r *Result) finalize() *Result {
	r.PublicSymbolsCount = len(r.PublicSymbols)
	r.EntrypointsCount = len(r.Entrypoints)
	if runes := []rune(r.Summary); len(runes) > MaxSummaryChars {
		r.Summary = string(runes[:MaxSummaryChars-3]) + "..."
	}
	return r
}

// Summarize produces the summary for the file at fullPath, reported under
// relPath. It never fails: unreadable, binary, oversized, and secret-bearing
// files come back as excluded results with a reason.
func Summarize(fullPath, relPath string) *Result {
	raw, err := os.ReadFile(fullPath)
	if err != nil {
		result := newResult()
		result.Excluded = true
		if os.IsNotExist(err) {
			result.ExclusionReason = ReasonFileNotFound
			result.Summary = fmt.Sprintf("File not found: %s", relPath)
		} else {
			result.ExclusionReason = ReasonReadError
			result.Summary = fmt.Sprintf("Could not read file: %v", err)
		}
		return result.finalize()
	}

	if isBinary(raw) {
		result := newResult()
		result.IsBinary = true
		result.Excluded = true
		result.ExclusionReason = ReasonBinaryFile
		result.Summary = fmt.Sprintf("Binary file: %s", path.Base(relPath))
		return result.finalize()
	}

	if len(raw) > MaxFileBytes {
		// Too large for full treatment, but a structural summary is
		// still better than nothing.
		result := heuristicSummary(relPath, decode(raw))
		result.DecodeLossy = true
		result.Excluded = true
		result.ExclusionReason = ReasonFileTooLarge
		return result.finalize()
	}

	if hasPrivateKeyBlock(raw) {
		result := newResult()
		result.Excluded = true
		result.ExclusionReason = ReasonPrivateKeyBlock
		result.Summary = "File excluded: contains private key"
		return result.finalize()
	}

	text := string(raw)
	lossy := false
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
		lossy = true
	}

	_, redactions := redactSuspiciousAssignments(text)

	result := heuristicSummary(relPath, text)
	result.DecodeLossy = lossy
	result.RedactionCount = redactions
	return result.finalize()
}

// decode converts raw bytes to a valid UTF-8 string, replacing invalid
// sequences.
func decode(raw []byte) string {
	text := string(raw)
	if !utf8.ValidString(text) {
		return strings.ToValidUTF8(text, "�")
	}
	return text
}

// heuristicSummary dispatches to the per-language extractor.
func heuristicSummary(relPath, text string) *Result {
	result := newResult()
	result.Role = classifyRole(relPath, text)

	name := path.Base(relPath)
	ext := strings.ToLower(path.Ext(relPath))

	switch ext {
	case ".go":
		extractGo(result, relPath, name, text)
	case ".py":
		extractPython(result, relPath, name, text)
	case ".js", ".ts", ".jsx", ".tsx":
		extractJavaScript(result, text)
	case ".yaml", ".yml", ".json", ".toml":
		result.Summary = fmt.Sprintf("Configuration file: %s", name)
	case ".md":
		if heading := firstMarkdownHeading(text); heading != "" {
			result.Summary = fmt.Sprintf("Documentation: %s", heading)
		} else {
			result.Summary = fmt.Sprintf("Markdown documentation: %s", name)
		}
	default:
		lines := len(strings.Split(text, "\n"))
		result.Summary = fmt.Sprintf("%s: %d lines", name, lines)
	}

	return result
}

// classifyRole assigns one of test/config/docs/entrypoint/library/unknown
// from the path and content.
func classifyRole(relPath, content string) string {
	name := strings.ToLower(path.Base(relPath))

	if strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test.py") ||
		strings.HasSuffix(name, "_test.go") {
		return "test"
	}
	if strings.Contains(relPath, "/tests/") || strings.Contains(relPath, "/test/") {
		return "test"
	}

	configMarkers := []string{
		"config.", "settings.", ".yaml", ".yml", ".toml", ".json", ".ini",
		"dockerfile", "makefile", ".env", "pyproject.toml", "package.json",
		"cargo.toml", "go.mod",
	}
	for _, marker := range configMarkers {
		if strings.Contains(name, marker) {
			return "config"
		}
	}

	docMarkers := []string{".md", ".rst", ".txt", "readme", "changelog", "license"}
	for _, marker := range docMarkers {
		if strings.Contains(name, marker) {
			return "docs"
		}
	}

	if strings.Contains(content, "if __name__") {
		return "entrypoint"
	}
	switch name {
	case "main.py", "app.py", "index.py", "__main__.py",
		"main.js", "index.js", "app.js", "main.go":
		return "entrypoint"
	}

	for _, ext := range []string{".py", ".js", ".ts", ".go", ".rs", ".scala", ".sc"} {
		if strings.HasSuffix(name, ext) {
			return "library"
		}
	}

	return "unknown"
}
