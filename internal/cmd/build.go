package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/ctxgen/internal/cache"
	"github.com/harrison/ctxgen/internal/clipboard"
	"github.com/harrison/ctxgen/internal/config"
	"github.com/harrison/ctxgen/internal/display"
	"github.com/harrison/ctxgen/internal/filelock"
	"github.com/harrison/ctxgen/internal/logger"
	"github.com/harrison/ctxgen/internal/manifest"
	"github.com/harrison/ctxgen/internal/report"
	"github.com/harrison/ctxgen/internal/scanner"
	"github.com/harrison/ctxgen/internal/summary"
	"github.com/harrison/ctxgen/internal/version"
)

const dryRunListLimit = 20

// NewBuildCommand creates the build command
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the project context file",
		Long: `Scan the project, summarize every in-scope file, and write the context
report. Summaries are cached; unchanged files reuse the cached entry.

With --changes, no full report is written. Instead the current tree is
compared against the snapshot of the last full build and only the delta
is printed.

Examples:
  ctxgen build
  ctxgen build --root ../other-project
  ctxgen build --dry-run                # List files without summarizing
  ctxgen build --format json            # Machine-readable report
  ctxgen build --changes               # Delta since last build (list + summaries)
  ctxgen build --changes=list --clip   # Path lists only, copied to clipboard`,
		Args: cobra.NoArgs,
		RunE: runBuildCommand,
	}

	cmd.Flags().String("root", "", "Project root directory (default: git toplevel or cwd)")
	cmd.Flags().Bool("dry-run", false, "List files that would be summarized, then stop")
	cmd.Flags().Bool("clip", false, "Copy the output to the clipboard")
	cmd.Flags().String("format", config.FormatMarkdown, "Output format: md, json, or html")
	cmd.Flags().String("log-level", "", "Log verbosity: trace, debug, info, warn, error")
	cmd.Flags().String("changes", "", "Show changes since last build: list, summaries, or both")
	cmd.Flags().Lookup("changes").NoOptDefVal = "both"

	return cmd
}

func runBuildCommand(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	flagRoot, _ := flags.GetString("root")
	dryRun, _ := flags.GetBool("dry-run")
	changesMode, _ := flags.GetString("changes")

	root, err := findProjectRoot(flagRoot)
	if err != nil {
		return err
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("root directory does not exist: %s", root)
	}

	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	log := logger.NewConsoleLogger(out, cfg.LogLevel)
	store := cache.New(filepath.Join(root, cfg.CacheDir))

	if changesMode != "" {
		switch changesMode {
		case "list", "summaries", "both":
		default:
			return fmt.Errorf("changes mode must be list, summaries, or both, got %q", changesMode)
		}
		return runBuildChanges(out, log, root, cfg, store, changesMode)
	}

	return runBuild(out, log, root, cfg, store, dryRun)
}

// summarizedFile pairs a scanned path with its hash and summary for the
// generator.
type summarizedFile struct {
	path       string
	sourceHash string
	result     *summary.Result
}

// runBuild executes the full pipeline: scan, summarize with caching,
// generate, write, snapshot.
func runBuild(out io.Writer, log *logger.ConsoleLogger, root string, cfg *config.Config, store *cache.Cache, dryRun bool) error {
	log.Infof("Scanning %s...", root)

	scan := scanner.New(root).Scan()
	for _, warning := range scan.Warnings {
		log.Warnf("%s", warning)
	}
	if scan.IgnoreMode == scanner.ModeBestEffort {
		display.WarnScanFallback("project is not a git worktree or git is unavailable").Display(out)
	}
	log.Infof("Found %d files (mode: %s)", len(scan.Files), scan.IgnoreMode)

	if dryRun {
		fmt.Fprintln(out, "\n[Dry run] Would summarize:")
		for i, f := range scan.Files {
			if i >= dryRunListLimit {
				fmt.Fprintf(out, "  ... and %d more\n", len(scan.Files)-dryRunListLimit)
				break
			}
			fmt.Fprintf(out, "  %s\n", f)
		}
		return nil
	}

	log.Infof("Summarizing files...")
	summaries, err := summarizeAll(out, root, scan.Files, store)
	if err != nil {
		return err
	}

	stats := store.Stats()
	log.Infof("Cache: %d/%d hits", stats.Hits, len(summaries))

	log.Infof("Generating context...")
	files := make([]report.File, 0, len(summaries))
	hashes := make([]manifest.FileHash, 0, len(summaries))
	for _, s := range summaries {
		files = append(files, report.File{Path: s.path, SourceHash: s.sourceHash, Summary: s.result})
		hashes = append(hashes, manifest.FileHash{Path: s.path, SourceHash: s.sourceHash})
	}

	opts := report.Options{
		IgnoreMode:    scan.IgnoreMode,
		CacheHits:     stats.Hits,
		CacheTotal:    len(summaries),
		PriorityPaths: scan.PriorityPaths,
		ProjectName:   filepath.Base(root),
		TokenBudget:   cfg.TokenBudget,
	}

	content, scanHash, err := renderReport(files, opts, cfg, log)
	if err != nil {
		return err
	}

	target := outputPath(root, cfg)
	if err := filelock.AtomicWrite(target, []byte(content)); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	log.Infof("Wrote %s", target)

	if err := manifest.Save(store.Dir(), version.Version, scan.IgnoreMode, scanHash, hashes); err != nil {
		return err
	}

	if cfg.Clip {
		if clipboard.Copy(content) {
			log.Infof("Copied to clipboard")
		} else {
			log.Warnf("Could not copy to clipboard")
		}
	}

	return nil
}

// renderReport produces the output document in the configured format and
// returns it with the snapshot hash.
func renderReport(files []report.File, opts report.Options, cfg *config.Config, log *logger.ConsoleLogger) (string, string, error) {
	result := report.Generate(files, opts)
	for _, warning := range result.Warnings {
		log.Warnf("%s", warning)
	}
	log.Infof("Tokens: ~%d", result.ApproxTokens)

	switch cfg.Format {
	case config.FormatJSON:
		content, err := report.GenerateJSON(files, opts)
		return content, result.ScanHash, err
	case config.FormatHTML:
		content, err := report.RenderHTML(result.Content, "Project Context: "+opts.ProjectName)
		return content, result.ScanHash, err
	default:
		return result.Content, result.ScanHash, nil
	}
}

// summarizeAll hashes and summarizes every file, reusing cached entries.
// Files that vanish between scan and read are skipped.
func summarizeAll(out io.Writer, root string, paths []string, store *cache.Cache) ([]summarizedFile, error) {
	progress := display.NewProgressIndicator(out, len(paths))
	summaries := make([]summarizedFile, 0, len(paths))

	for _, rel := range paths {
		full := filepath.Join(root, filepath.FromSlash(rel))

		sourceHash, err := cache.HashFile(full)
		if err != nil {
			progress.Step()
			continue
		}

		key := cache.Key{
			SourceHash:  sourceHash,
			PromptHash:  summary.PromptHash,
			BackendID:   summary.BackendID,
			ToolVersion: version.Version,
		}

		result := lookupOrSummarize(store, rel, full, key)
		summaries = append(summaries, summarizedFile{path: rel, sourceHash: sourceHash, result: result})
		progress.Step()
	}

	progress.Complete()
	return summaries, nil
}

// lookupOrSummarize returns the cached summary for rel when fresh,
// summarizing and caching otherwise.
func lookupOrSummarize(store *cache.Cache, rel, full string, key cache.Key) *summary.Result {
	if cached := store.Get(rel, key); cached.Hit {
		var result summary.Result
		if err := json.Unmarshal(cached.Summary, &result); err == nil {
			return &result
		}
	}

	result := summary.Summarize(full, rel)
	data, err := json.Marshal(result)
	if err != nil {
		return result
	}
	// Cache write failures only cost a re-summarization next run.
	_ = store.Put(rel, key, data, report.EstimateTokens(string(data)))
	return result
}
