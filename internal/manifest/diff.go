package manifest

import (
	"errors"
	"sort"
)

// ErrIgnoreModeMismatch is returned when the previous manifest was recorded
// under a different ignore mode than the current scan. The two snapshots are
// not comparable; the caller must rebuild a fresh baseline.
var ErrIgnoreModeMismatch = errors.New("manifest ignore mode differs from current scan; run a full build to reset the baseline")

// Rename records one inferred rename pair.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ChangeSet partitions the difference between two snapshots. The partitions
// are disjoint: a path appears in at most one of Added/Modified/Deleted, and
// each Rename consumes one would-be added and one would-be deleted path.
type ChangeSet struct {
	PrevScanHash string   `json:"prev_scan_hash"`
	CurScanHash  string   `json:"cur_scan_hash"`
	IgnoreMode   string   `json:"ignore_mode"`
	Added        []string `json:"added"`
	Modified     []string `json:"modified"`
	Deleted      []string `json:"deleted"`
	Renamed      []Rename `json:"renamed"`
}

// IsEmpty reports whether the change set contains no changes.
func (c *ChangeSet) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 &&
		len(c.Deleted) == 0 && len(c.Renamed) == 0
}

// Diff compares the current snapshot against a previous manifest.
//
// Renames are inferred by content hash: a deleted path and an added path
// with the same hash become a rename pair. When several deleted paths share
// one hash, the first in sorted path order is the only candidate; the others
// remain plain deletions. This is an iteration-order tie-break, not
// best-match renaming — with byte-identical files the chosen pairing can
// surprise, and is documented rather than guaranteed.
//
// For the same inputs the output is bit-identical across runs: every
// iteration that feeds the result walks sorted paths.
func Diff(prev *Manifest, current []FileHash, curScanHash, ignoreMode string) (*ChangeSet, error) {
	if prev.IgnoreMode != ignoreMode {
		return nil, ErrIgnoreModeMismatch
	}

	prevHashes := make(map[string]string, len(prev.Files))
	for _, f := range prev.Files {
		prevHashes[f.Path] = f.SourceHash
	}
	curHashes := make(map[string]string, len(current))
	for _, f := range current {
		curHashes[f.Path] = f.SourceHash
	}

	changes := &ChangeSet{
		PrevScanHash: prev.ScanHash,
		CurScanHash:  curScanHash,
		IgnoreMode:   ignoreMode,
		Added:        []string{},
		Modified:     []string{},
		Deleted:      []string{},
		Renamed:      []Rename{},
	}

	var added, deleted []string
	for path := range curHashes {
		if _, ok := prevHashes[path]; !ok {
			added = append(added, path)
		}
	}
	for path := range prevHashes {
		if _, ok := curHashes[path]; !ok {
			deleted = append(deleted, path)
		}
	}
	sort.Strings(added)
	sort.Strings(deleted)

	for _, f := range current {
		prevHash, ok := prevHashes[f.Path]
		if ok && prevHash != f.SourceHash {
			changes.Modified = append(changes.Modified, f.Path)
		}
	}
	sort.Strings(changes.Modified)

	// Hash → deleted path candidates for rename inference. First sorted
	// path wins per hash.
	deletedByHash := make(map[string]string, len(deleted))
	for _, path := range deleted {
		hash := prevHashes[path]
		if _, ok := deletedByHash[hash]; !ok {
			deletedByHash[hash] = path
		}
	}

	consumed := make(map[string]bool)
	for _, path := range added {
		hash := curHashes[path]
		from, ok := deletedByHash[hash]
		if !ok {
			changes.Added = append(changes.Added, path)
			continue
		}
		changes.Renamed = append(changes.Renamed, Rename{From: from, To: path})
		consumed[from] = true
		delete(deletedByHash, hash)
	}

	for _, path := range deleted {
		if !consumed[path] {
			changes.Deleted = append(changes.Deleted, path)
		}
	}

	return changes, nil
}
