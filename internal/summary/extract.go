package summary

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const maxListedSymbols = 10

var (
	pyImport     = regexp.MustCompile(`(?m)^import\s+([\w.]+)`)
	pyFromImport = regexp.MustCompile(`(?m)^from\s+([\w.]+)\s+import`)
	pyDef        = regexp.MustCompile(`(?m)^(?:async\s+)?def\s+([A-Za-z]\w*)`)
	pyClass      = regexp.MustCompile(`(?m)^class\s+([A-Za-z]\w*)`)
	pyMainGuard  = regexp.MustCompile(`(?m)^if\s+__name__\s*==`)

	jsExport = regexp.MustCompile(`export\s+(?:default\s+)?(?:async\s+)?(?:function|class|const|let|var)\s+(\w+)`)
	jsImport = regexp.MustCompile(`import\s+[^;\n]*?from\s+["']([^"']+)["']`)

	mdHeading = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// extractPython fills the result from a Python source file using top-level
// def/class/import regexes. Names starting with an underscore are private
// and skipped.
func extractPython(result *Result, relPath, name, text string) {
	for _, m := range pyDef.FindAllStringSubmatch(text, -1) {
		result.PublicSymbols = append(result.PublicSymbols, m[1])
	}
	for _, m := range pyClass.FindAllStringSubmatch(text, -1) {
		result.PublicSymbols = append(result.PublicSymbols, m[1])
	}

	deps := map[string]bool{}
	for _, m := range pyImport.FindAllStringSubmatch(text, -1) {
		deps[strings.SplitN(m[1], ".", 2)[0]] = true
	}
	for _, m := range pyFromImport.FindAllStringSubmatch(text, -1) {
		deps[strings.SplitN(m[1], ".", 2)[0]] = true
	}
	for dep := range deps {
		result.ImportDeps = append(result.ImportDeps, dep)
	}
	sort.Strings(result.ImportDeps)

	if loc := pyMainGuard.FindStringIndex(text); loc != nil {
		result.Role = "entrypoint"
		result.Entrypoints = append(result.Entrypoints, Entrypoint{
			Path:       relPath,
			Line:       1 + strings.Count(text[:loc[0]], "\n"),
			Evidence:   `if __name__ == "__main__"`,
			Confidence: 0.95,
		})
	}

	result.Summary = describeSource("Python", name, result, firstPythonDocstring(text))
}

// firstPythonDocstring returns the module docstring text, if the file opens
// with one.
func firstPythonDocstring(text string) string {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	for _, quote := range []string{`"""`, "'''"} {
		if !strings.HasPrefix(trimmed, quote) {
			continue
		}
		rest := trimmed[len(quote):]
		end := strings.Index(rest, quote)
		if end < 0 {
			return ""
		}
		doc := strings.TrimSpace(rest[:end])
		// First line is enough for a one-line summary.
		if i := strings.IndexByte(doc, '\n'); i >= 0 {
			doc = strings.TrimSpace(doc[:i])
		}
		return doc
	}
	return ""
}

// extractJavaScript fills the result from a JS/TS source file.
func extractJavaScript(result *Result, text string) {
	for _, m := range jsExport.FindAllStringSubmatch(text, -1) {
		result.PublicSymbols = append(result.PublicSymbols, m[1])
		if len(result.PublicSymbols) >= maxListedSymbols {
			break
		}
	}
	for _, m := range jsImport.FindAllStringSubmatch(text, -1) {
		result.ImportDeps = append(result.ImportDeps, m[1])
	}
	result.Summary = fmt.Sprintf("JavaScript/TypeScript file with %d exports", len(result.PublicSymbols))
}

// firstMarkdownHeading returns the first level-one heading, if any.
func firstMarkdownHeading(text string) string {
	if m := mdHeading.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// describeSource builds the summary sentence shared by the language
// extractors: docstring if present, otherwise symbols and imports.
func describeSource(language, name string, result *Result, doc string) string {
	if doc != "" {
		if runes := []rune(doc); len(runes) > 200 {
			doc = string(runes[:200])
		}
		return doc
	}

	var parts []string
	if len(result.PublicSymbols) > 0 {
		listed := result.PublicSymbols
		if len(listed) > maxListedSymbols {
			listed = listed[:maxListedSymbols]
		}
		parts = append(parts, "Defines: "+strings.Join(listed, ", "))
	}
	if len(result.ImportDeps) > 0 {
		listed := result.ImportDeps
		if len(listed) > maxListedSymbols {
			listed = listed[:maxListedSymbols]
		}
		parts = append(parts, "Imports: "+strings.Join(listed, ", "))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s file: %s", language, name)
	}
	return strings.Join(parts, ". ")
}
