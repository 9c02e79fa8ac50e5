// Package manifest persists build snapshots and computes change sets
// between them. A manifest records the file set of one successful build
// (path plus content hash per file) together with the ignore mode and an
// aggregate scan hash; diffing a fresh snapshot against the stored manifest
// yields the added/modified/deleted/renamed partition.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/harrison/ctxgen/internal/filelock"
)

// FileName is the fixed manifest name inside the cache directory.
// Exactly one manifest exists per root at a time.
const FileName = "manifest.json"

// SchemaVersion identifies the manifest format.
const SchemaVersion = 1

// FileHash pairs a relative path with its content hash.
type FileHash struct {
	Path       string `json:"path"`
	SourceHash string `json:"source_hash"`
}

// Manifest is one persisted build snapshot. Files are sorted by path for
// deterministic serialization.
type Manifest struct {
	SchemaVersion int        `json:"schema_version"`
	ToolVersion   string     `json:"tool_version"`
	IgnoreMode    string     `json:"ignore_mode"`
	ScanHash      string     `json:"scan_hash"`
	Files         []FileHash `json:"files"`
}

// Save writes the manifest for cacheDir atomically under an advisory lock,
// replacing any previous snapshot. Files are sorted before writing.
func Save(cacheDir, toolVersion, ignoreMode, scanHash string, files []FileHash) error {
	sorted := make([]FileHash, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	m := Manifest{
		SchemaVersion: SchemaVersion,
		ToolVersion:   toolVersion,
		IgnoreMode:    ignoreMode,
		ScanHash:      scanHash,
		Files:         sorted,
	}

	data, err := json.MarshalIndent(&m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	path := filepath.Join(cacheDir, FileName)
	if err := filelock.LockAndWrite(path, data); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Load reads the manifest from cacheDir. A missing, unreadable, or
// malformed manifest returns nil: stale state degrades to "no baseline"
// rather than an error.
func Load(cacheDir string) *Manifest {
	data, err := os.ReadFile(filepath.Join(cacheDir, FileName))
	if err != nil {
		return nil
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	if m.SchemaVersion == 0 || m.IgnoreMode == "" {
		return nil
	}
	return &m
}

// ComputeScanHash derives the aggregate hash of a snapshot from sorted
// (ignoreMode, path, sourceHash) triples. Including the ignore mode makes
// hashes from git-backed and best-effort scans of identical file sets
// differ, since the two listings are not comparable.
func ComputeScanHash(files []FileHash, ignoreMode string) string {
	triples := make([][3]string, 0, len(files))
	for _, f := range files {
		triples = append(triples, [3]string{ignoreMode, f.Path, f.SourceHash})
	}
	sort.Slice(triples, func(i, j int) bool {
		a, b := triples[i], triples[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})

	// Canonical JSON of the sorted triples; marshaling fixed-size string
	// arrays cannot fail.
	data, _ := json.Marshal(triples)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
