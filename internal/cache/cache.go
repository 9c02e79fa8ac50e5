// Package cache stores per-file summaries keyed by a four-axis invalidation
// key: source hash, prompt hash, backend id, and tool version. Any single
// differing axis invalidates an entry.
//
// Storage layout is one JSON file per source path under the cache directory,
// named by a truncated hash of the path. Entries are written atomically;
// unreadable or malformed entries are indistinguishable from absent ones.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/ctxgen/internal/filelock"
)

// Staleness reasons reported on cache misses, in check-priority order.
const (
	ReasonNotCached      = "not_cached"
	ReasonSourceChanged  = "source_changed"
	ReasonPromptChanged  = "prompt_changed"
	ReasonBackendChanged = "backend_changed"
	ReasonToolChanged    = "tool_changed"
)

// Key holds the four independent invalidation axes. Equality is structural:
// an entry is valid only when every component matches exactly.
type Key struct {
	SourceHash  string
	PromptHash  string
	BackendID   string
	ToolVersion string
}

// Entry is the persisted cache record. Field names match the on-disk JSON
// format and must not change without a tool version bump.
type Entry struct {
	Path         string          `json:"path"`
	SourceHash   string          `json:"source_hash"`
	PromptHash   string          `json:"prompt_hash"`
	BackendID    string          `json:"backend_id"`
	ToolVersion  string          `json:"tool_version"`
	Summary      json.RawMessage `json:"summary"`
	Timestamp    string          `json:"timestamp"`
	ApproxTokens int             `json:"approx_tokens"`
}

// matches compares the entry against key one axis at a time, returning the
// name of the first axis that differs. The order is fixed: source, prompt,
// backend, tool.
func (e *Entry) matches(key Key) (bool, string) {
	if e.SourceHash != key.SourceHash {
		return false, ReasonSourceChanged
	}
	if e.PromptHash != key.PromptHash {
		return false, ReasonPromptChanged
	}
	if e.BackendID != key.BackendID {
		return false, ReasonBackendChanged
	}
	if e.ToolVersion != key.ToolVersion {
		return false, ReasonToolChanged
	}
	return true, ""
}

// Result is the outcome of a cache lookup.
type Result struct {
	Hit             bool
	Summary         json.RawMessage
	IsStale         bool
	StalenessReason string
}

// Status is the outcome of a read-only staleness check.
type Status struct {
	IsStale         bool
	StalenessReason string
}

// Stats tracks lookup outcomes for one cache instance. Counters are owned
// by the instance and reset only by constructing a new Cache, so separate
// instances (as in tests) never share state.
type Stats struct {
	Hits        int
	Misses      int
	TokensSaved int
}

// HitRate returns hits/(hits+misses), or 0 when no lookups have happened.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a content-addressed summary store rooted at one directory.
// Not safe for concurrent use; ctxgen runs are single-threaded.
type Cache struct {
	dir   string
	stats Stats
}

// New creates a Cache over dir. The directory is created lazily on the
// first Put.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// entryPath maps a source path to its cache file.
func (c *Cache) entryPath(path string) string {
	return filepath.Join(c.dir, pathHash(path)+".json")
}

// loadEntry reads the persisted entry for path. Any failure — missing file,
// unreadable file, malformed JSON, missing required fields — yields nil:
// corruption is equivalent to "not cached", never an error.
func (c *Cache) loadEntry(path string) *Entry {
	data, err := os.ReadFile(c.entryPath(path))
	if err != nil {
		return nil
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}
	if entry.Path == "" || entry.SourceHash == "" {
		return nil
	}
	return &entry
}

// Get looks up the summary for path under key. A full key match is a hit
// and credits the entry's stored token count to the stats; any miss records
// the first differing axis as the staleness reason.
func (c *Cache) Get(path string, key Key) Result {
	entry := c.loadEntry(path)
	if entry == nil {
		c.stats.Misses++
		return Result{IsStale: true, StalenessReason: ReasonNotCached}
	}

	ok, reason := entry.matches(key)
	if !ok {
		c.stats.Misses++
		return Result{IsStale: true, StalenessReason: reason}
	}

	c.stats.Hits++
	c.stats.TokensSaved += entry.ApproxTokens
	return Result{Hit: true, Summary: entry.Summary}
}

// CheckStatus reports whether the entry for path is stale under key without
// touching hit/miss statistics.
func (c *Cache) CheckStatus(path string, key Key) Status {
	entry := c.loadEntry(path)
	if entry == nil {
		return Status{IsStale: true, StalenessReason: ReasonNotCached}
	}

	ok, reason := entry.matches(key)
	if !ok {
		return Status{IsStale: true, StalenessReason: reason}
	}
	return Status{}
}

// Put persists a new entry for path, replacing any prior one. The write
// goes through a temp file and atomic rename, so a crash mid-write leaves
// either the old entry or the new one, never a torn file; the temp file is
// removed if the write fails before the rename.
func (c *Cache) Put(path string, key Key, summary json.RawMessage, approxTokens int) error {
	entry := Entry{
		Path:         path,
		SourceHash:   key.SourceHash,
		PromptHash:   key.PromptHash,
		BackendID:    key.BackendID,
		ToolVersion:  key.ToolVersion,
		Summary:      summary,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		ApproxTokens: approxTokens,
	}

	data, err := json.MarshalIndent(&entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache entry for %s: %w", path, err)
	}

	if err := filelock.AtomicWrite(c.entryPath(path), data); err != nil {
		return fmt.Errorf("failed to write cache entry for %s: %w", path, err)
	}
	return nil
}

// Clear deletes all cache entries and returns how many were removed.
// Only files named like entries (a truncated path hash plus ".json") are
// touched; the build manifest and anything else sharing the directory
// survive. Individual deletion failures are skipped, not fatal.
func (c *Cache) Clear() int {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0
	}

	count := 0
	for _, m := range matches {
		if !isEntryName(filepath.Base(m)) {
			continue
		}
		if err := os.Remove(m); err == nil {
			count++
		}
	}
	return count
}

// isEntryName reports whether name has the shape entryPath produces:
// shortHashLen hex digits followed by ".json".
func isEntryName(name string) bool {
	stem, ok := strings.CutSuffix(name, ".json")
	if !ok || len(stem) != shortHashLen {
		return false
	}
	for _, r := range stem {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}

// Stats returns a copy of the instance counters.
func (c *Cache) Stats() Stats {
	return c.stats
}
