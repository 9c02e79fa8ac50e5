package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/ctxgen/internal/config"
)

const gitRootTimeout = 5 * time.Second

// findProjectRoot resolves the project root: the --root flag when given,
// the enclosing git worktree otherwise, the working directory as a last
// resort.
func findProjectRoot(flagRoot string) (string, error) {
	if flagRoot != "" {
		root, err := filepath.Abs(flagRoot)
		if err != nil {
			return "", fmt.Errorf("failed to resolve root %s: %w", flagRoot, err)
		}
		return root, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine working directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), gitRootTimeout)
	defer cancel()

	gitCmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	gitCmd.Dir = cwd
	out, err := gitCmd.Output()
	if err == nil {
		if top := strings.TrimSpace(string(out)); top != "" {
			return top, nil
		}
	}

	return cwd, nil
}

// loadConfig reads the project configuration and applies flag overrides.
// Only flags the user actually set override file values.
func loadConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("clip") {
		cfg.Clip, _ = flags.GetBool("clip")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// outputPath derives the report location from the configured output name
// and the selected format.
func outputPath(root string, cfg *config.Config) string {
	name := cfg.Output
	switch cfg.Format {
	case config.FormatJSON:
		name = replaceExt(name, ".json")
	case config.FormatHTML:
		name = replaceExt(name, ".html")
	}
	return filepath.Join(root, name)
}

func replaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
