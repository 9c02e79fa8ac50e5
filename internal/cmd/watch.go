package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/ctxgen/internal/cache"
	"github.com/harrison/ctxgen/internal/ignore"
	"github.com/harrison/ctxgen/internal/logger"
	"github.com/harrison/ctxgen/internal/watcher"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the context file on changes",
		Long: `Run an initial build, then watch the project tree and rebuild whenever
in-scope files change. Changes to ignored paths, hidden files, and the
generated output itself do not trigger rebuilds. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: runWatchCommand,
	}

	cmd.Flags().String("root", "", "Project root directory (default: git toplevel or cwd)")
	cmd.Flags().String("log-level", "", "Log verbosity: trace, debug, info, warn, error")

	return cmd
}

func runWatchCommand(cmd *cobra.Command, _ []string) error {
	flagRoot, _ := cmd.Flags().GetString("root")
	root, err := findProjectRoot(flagRoot)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	log := logger.NewConsoleLogger(out, cfg.LogLevel)
	cacheDir := filepath.Join(root, cfg.CacheDir)

	// A fresh cache handle per build keeps hit statistics per run.
	if err := runBuild(out, log, root, cfg, cache.New(cacheDir), false); err != nil {
		return err
	}

	matcher, err := ignore.LoadRoot(root)
	if err != nil {
		return err
	}

	w, err := watcher.New(root, matcher)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("Watching %s for changes (Ctrl-C to stop)...", root)

	for {
		select {
		case <-ctx.Done():
			log.Infof("Stopping watch.")
			return nil
		case err := <-w.Errors():
			log.Warnf("watch error: %v", err)
		case <-w.Triggers():
			log.Infof("Change detected, rebuilding...")
			if err := runBuild(out, log, root, cfg, cache.New(cacheDir), false); err != nil {
				log.Errorf("rebuild failed: %v", err)
			}
		}
	}
}
