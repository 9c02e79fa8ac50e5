package display

import (
	"bytes"
	"strings"
	"testing"
)

func TestWarningDisplayFull(t *testing.T) {
	var buf bytes.Buffer
	w := Warning{
		Title:      "Baseline mismatch",
		Message:    "Previous manifest used git mode",
		Paths:      []string{".context-cache/manifest.json"},
		Suggestion: "Run a full build to reset the baseline",
	}
	w.Display(&buf)

	out := buf.String()
	for _, want := range []string{
		"Warning: Baseline mismatch",
		"Previous manifest used git mode",
		"Affected path:",
		"1. .context-cache/manifest.json",
		"Suggestion:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Warning output missing %q:\n%s", want, out)
		}
	}
}

func TestWarningDisplayPluralPaths(t *testing.T) {
	var buf bytes.Buffer
	Warning{
		Title: "Unreadable files skipped",
		Paths: []string{"a.go", "b.go"},
	}.Display(&buf)

	if !strings.Contains(buf.String(), "Affected paths:") {
		t.Errorf("Expected plural path header:\n%s", buf.String())
	}
}

func TestWarnScanFallback(t *testing.T) {
	w := WarnScanFallback("git not found on PATH")
	if w.Message != "git not found on PATH" {
		t.Errorf("Unexpected message: %q", w.Message)
	}
	if w.Suggestion == "" {
		t.Error("Fallback warning should carry a suggestion")
	}
}

func TestProgressIndicatorInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressIndicator(&buf, 120)

	for i := 0; i < 120; i++ {
		p.Step()
	}

	out := buf.String()
	if !strings.Contains(out, "Processed 50/120 files...") {
		t.Errorf("Missing first interval line:\n%s", out)
	}
	if !strings.Contains(out, "Processed 100/120 files...") {
		t.Errorf("Missing second interval line:\n%s", out)
	}
	if strings.Contains(out, "Processed 120/120") {
		t.Error("No interval line expected at 120")
	}

	p.Complete()
	if !strings.Contains(buf.String(), "Summarized 120 files") {
		t.Errorf("Missing completion line:\n%s", buf.String())
	}
}
