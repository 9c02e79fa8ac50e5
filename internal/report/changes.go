package report

import (
	"fmt"
	"strings"

	"github.com/harrison/ctxgen/internal/manifest"
	"github.com/harrison/ctxgen/internal/summary"
)

// SummaryFunc resolves the current summary for a path. Delta formatting
// pulls summaries lazily so only changed files are summarized.
type SummaryFunc func(path string) *summary.Result

func changesHeader(projectName string, changes *manifest.ChangeSet) []string {
	return []string{
		fmt.Sprintf("# Project Changes: %s", projectName),
		"",
		fmt.Sprintf("> Since scan: %s → %s | Mode: %s",
			changes.PrevScanHash, changes.CurScanHash, changes.IgnoreMode),
		"",
	}
}

// FormatChangesList renders the change set as path lists only.
func FormatChangesList(projectName string, changes *manifest.ChangeSet) string {
	lines := changesHeader(projectName, changes)

	appendPaths := func(heading string, paths []string) {
		if len(paths) == 0 {
			return
		}
		lines = append(lines, heading)
		for _, p := range paths {
			lines = append(lines, "- "+p)
		}
		lines = append(lines, "")
	}

	appendPaths("## Modified", changes.Modified)
	appendPaths("## Added", changes.Added)
	appendPaths("## Deleted", changes.Deleted)

	if len(changes.Renamed) > 0 {
		lines = append(lines, "## Renamed")
		for _, r := range changes.Renamed {
			lines = append(lines, fmt.Sprintf("- %s → %s", r.From, r.To))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// FormatChangesSummaries renders the change set with a summary block per
// added, modified, and renamed file.
func FormatChangesSummaries(projectName string, changes *manifest.ChangeSet, lookup SummaryFunc) string {
	lines := changesHeader(projectName, changes)
	lines = appendSummarySections(lines, changes, lookup)
	return strings.Join(lines, "\n")
}

// FormatChangesBoth renders the one-line change counts followed by the
// per-file summary blocks.
func FormatChangesBoth(projectName string, changes *manifest.ChangeSet, lookup SummaryFunc) string {
	lines := changesHeader(projectName, changes)

	var parts []string
	if n := len(changes.Modified); n > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", n))
	}
	if n := len(changes.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("%d added", n))
	}
	if n := len(changes.Deleted); n > 0 {
		parts = append(parts, fmt.Sprintf("%d deleted", n))
	}
	if n := len(changes.Renamed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d renamed", n))
	}
	lines = append(lines, "**Changes:** "+strings.Join(parts, ", "), "")

	lines = appendSummarySections(lines, changes, lookup)
	return strings.Join(lines, "\n")
}

func appendSummarySections(lines []string, changes *manifest.ChangeSet, lookup SummaryFunc) []string {
	if len(changes.Modified) > 0 {
		lines = append(lines, "## Modified", "")
		for _, p := range changes.Modified {
			lines = append(lines, fileSummaryBlock(p, lookup(p))...)
		}
	}

	if len(changes.Added) > 0 {
		lines = append(lines, "## Added", "")
		for _, p := range changes.Added {
			lines = append(lines, fileSummaryBlock(p, lookup(p))...)
		}
	}

	if len(changes.Renamed) > 0 {
		lines = append(lines, "## Renamed", "")
		for _, r := range changes.Renamed {
			lines = append(lines, fmt.Sprintf("### %s → %s", r.From, r.To))
			// Skip the per-file header; the rename line replaces it.
			lines = append(lines, fileSummaryBlock(r.To, lookup(r.To))[1:]...)
		}
	}

	if len(changes.Deleted) > 0 {
		lines = append(lines, "## Deleted", "")
		for _, p := range changes.Deleted {
			lines = append(lines, "- "+p)
		}
		lines = append(lines, "")
	}

	return lines
}

func fileSummaryBlock(path string, s *summary.Result) []string {
	role := "unknown"
	text := ""
	if s != nil {
		role = s.Role
		text = s.Summary
	}

	lines := []string{
		fmt.Sprintf("### %s", path),
		fmt.Sprintf("**Role:** %s", role),
		"",
		text,
	}

	if s != nil {
		if len(s.PublicSymbols) > 0 {
			lines = append(lines, "",
				"**Provides:** "+strings.Join(truncateList(s.PublicSymbols), ", "))
		}
		if len(s.ImportDeps) > 0 {
			lines = append(lines,
				"**Consumes:** "+strings.Join(truncateList(s.ImportDeps), ", "))
		}
	}

	lines = append(lines, "")
	return lines
}
