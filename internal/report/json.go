package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/ctxgen/internal/summary"
)

// Metadata heads the JSON report.
type Metadata struct {
	BuildID     string `json:"build_id"`
	GeneratedAt string `json:"generated_at"`
	Files       int    `json:"files"`
	CacheHits   int    `json:"cache_hits"`
	IgnoreMode  string `json:"ignore_mode"`
	ScanHash    string `json:"scan_hash"`
}

// KeyFileEntry is the JSON form of one key file.
type KeyFileEntry struct {
	Path          string              `json:"path"`
	Role          string              `json:"role"`
	Summary       string              `json:"summary"`
	PublicSymbols []string            `json:"public_symbols"`
	ImportDeps    []string            `json:"import_deps"`
	Entrypoints   []summary.Entrypoint `json:"entrypoints"`
}

// OtherFileEntry is the JSON form of one non-key file.
type OtherFileEntry struct {
	Path    string `json:"path"`
	Role    string `json:"role"`
	Summary string `json:"summary"`
}

// JSONReport is the machine-readable report document.
type JSONReport struct {
	Metadata   Metadata         `json:"metadata"`
	Tree       string           `json:"tree"`
	KeyFiles   []KeyFileEntry   `json:"key_files"`
	OtherFiles []OtherFileEntry `json:"other_files"`
}

// GenerateJSON renders the report as indented JSON. Each run gets a fresh
// build id.
func GenerateJSON(files []File, opts Options) (string, error) {
	keyFiles, otherFiles := classify(files, opts.PriorityPaths)

	doc := JSONReport{
		Metadata: Metadata{
			BuildID:     uuid.NewString(),
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			Files:       len(files),
			CacheHits:   opts.CacheHits,
			IgnoreMode:  opts.IgnoreMode,
			ScanHash:    scanHash(files, opts.IgnoreMode),
		},
		Tree:       renderTree(filePaths(files)),
		KeyFiles:   []KeyFileEntry{},
		OtherFiles: []OtherFileEntry{},
	}

	for _, sf := range keyFiles {
		f := sf.file
		entry := KeyFileEntry{
			Path:          f.Path,
			Role:          f.role(),
			Summary:       f.summaryText(),
			PublicSymbols: []string{},
			ImportDeps:    []string{},
			Entrypoints:   []summary.Entrypoint{},
		}
		if f.Summary != nil {
			entry.PublicSymbols = f.Summary.PublicSymbols
			entry.ImportDeps = f.Summary.ImportDeps
			entry.Entrypoints = f.Summary.Entrypoints
		}
		doc.KeyFiles = append(doc.KeyFiles, entry)
	}

	for _, f := range otherFiles {
		doc.OtherFiles = append(doc.OtherFiles, OtherFileEntry{
			Path:    f.Path,
			Role:    f.role(),
			Summary: f.summaryText(),
		})
	}

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode json report: %w", err)
	}
	return string(data), nil
}
