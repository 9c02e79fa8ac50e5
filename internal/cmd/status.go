package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show cache and context file status",
		Args:  cobra.NoArgs,
		RunE:  runStatusCommand,
	}

	cmd.Flags().String("root", "", "Project root directory (default: git toplevel or cwd)")

	return cmd
}

func runStatusCommand(cmd *cobra.Command, _ []string) error {
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
		fmt.Fprintln(out, "No cache found.")
		return nil
	}

	entries, err := filepath.Glob(filepath.Join(cacheDir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list cache entries: %w", err)
	}
	fmt.Fprintf(out, "Cache directory: %s\n", cacheDir)
	fmt.Fprintf(out, "Cache entries: %d\n", len(entries))

	contextFile := outputPath(root, cfg)
	if info, err := os.Stat(contextFile); err == nil {
		fmt.Fprintf(out, "Context file: %s (%d bytes)\n", contextFile, info.Size())
	} else {
		fmt.Fprintln(out, "Context file: not found")
	}

	return nil
}
