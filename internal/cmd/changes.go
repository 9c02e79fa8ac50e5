package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/harrison/ctxgen/internal/cache"
	"github.com/harrison/ctxgen/internal/clipboard"
	"github.com/harrison/ctxgen/internal/config"
	"github.com/harrison/ctxgen/internal/logger"
	"github.com/harrison/ctxgen/internal/manifest"
	"github.com/harrison/ctxgen/internal/report"
	"github.com/harrison/ctxgen/internal/scanner"
	"github.com/harrison/ctxgen/internal/summary"
	"github.com/harrison/ctxgen/internal/version"
)

// runBuildChanges prints the delta since the last full build instead of a
// full report.
func runBuildChanges(out io.Writer, log *logger.ConsoleLogger, root string, cfg *config.Config, store *cache.Cache, mode string) error {
	prev := manifest.Load(store.Dir())
	if prev == nil {
		return errors.New("no previous build snapshot found; run 'ctxgen build' first")
	}

	scan := scanner.New(root).Scan()
	for _, warning := range scan.Warnings {
		log.Warnf("%s", warning)
	}

	current := hashFiles(root, scan.Files)
	curScanHash := manifest.ComputeScanHash(current, scan.IgnoreMode)

	changes, err := manifest.Diff(prev, current, curScanHash, scan.IgnoreMode)
	if err != nil {
		if errors.Is(err, manifest.ErrIgnoreModeMismatch) {
			return fmt.Errorf("baseline built with ignore_mode=%s, current run is %s: %w",
				prev.IgnoreMode, scan.IgnoreMode, err)
		}
		return err
	}

	if changes.IsEmpty() {
		fmt.Fprintln(out, "No changes since last build.")
		return nil
	}

	projectName := filepath.Base(root)
	lookup := summaryLookup(root, store)

	var output string
	switch mode {
	case "list":
		output = report.FormatChangesList(projectName, changes)
	case "summaries":
		output = report.FormatChangesSummaries(projectName, changes, lookup)
	default:
		output = report.FormatChangesBoth(projectName, changes, lookup)
	}

	fmt.Fprintln(out, output)

	if cfg.Clip {
		if clipboard.Copy(output) {
			log.Infof("Copied to clipboard")
		} else {
			log.Warnf("Could not copy to clipboard")
		}
	}

	return nil
}

// hashFiles computes the current snapshot, skipping files that vanish
// mid-run.
func hashFiles(root string, paths []string) []manifest.FileHash {
	hashes := make([]manifest.FileHash, 0, len(paths))
	for _, rel := range paths {
		full := filepath.Join(root, filepath.FromSlash(rel))
		sourceHash, err := cache.HashFile(full)
		if err != nil {
			continue
		}
		hashes = append(hashes, manifest.FileHash{Path: rel, SourceHash: sourceHash})
	}
	return hashes
}

// summaryLookup resolves summaries for changed files through the cache.
func summaryLookup(root string, store *cache.Cache) report.SummaryFunc {
	return func(rel string) *summary.Result {
		full := filepath.Join(root, filepath.FromSlash(rel))

		sourceHash, err := cache.HashFile(full)
		if err != nil {
			return &summary.Result{Role: "unknown", Summary: fmt.Sprintf("Could not read: %s", rel)}
		}

		key := cache.Key{
			SourceHash:  sourceHash,
			PromptHash:  summary.PromptHash,
			BackendID:   summary.BackendID,
			ToolVersion: version.Version,
		}

		if cached := store.Get(rel, key); cached.Hit {
			var result summary.Result
			if err := json.Unmarshal(cached.Summary, &result); err == nil {
				return &result
			}
		}

		result := summary.Summarize(full, rel)
		if data, err := json.Marshal(result); err == nil {
			_ = store.Put(rel, key, data, report.EstimateTokens(string(data)))
		}
		return result
	}
}
