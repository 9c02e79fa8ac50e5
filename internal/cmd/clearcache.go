package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewClearCacheCommand creates the clear-cache command
func NewClearCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Remove the summary cache",
		Long: `Remove the cache directory, including the build snapshot used by
'build --changes'. The next build re-summarizes every file.`,
		Args: cobra.NoArgs,
		RunE: runClearCacheCommand,
	}

	cmd.Flags().String("root", "", "Project root directory (default: git toplevel or cwd)")

	return cmd
}

func runClearCacheCommand(cmd *cobra.Command, _ []string) error {
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
	cacheDir := filepath.Join(root, cfg.CacheDir)

	if _, err := os.Stat(cacheDir); err != nil {
		fmt.Fprintln(out, "No cache to clear.")
		return nil
	}

	if err := os.RemoveAll(cacheDir); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintf(out, "Cleared %s\n", cacheDir)

	return nil
}
