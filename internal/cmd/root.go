// Package cmd wires the ctxgen command-line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/ctxgen/internal/version"
)

// NewRootCommand creates and returns the root cobra command for ctxgen
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ctxgen",
		Short: "Generate LLM context files for codebases",
		Long: `ctxgen scans a project, summarizes every in-scope file, and assembles
a single PROJECT_CONTEXT.md an LLM can consume.

Scanning respects .gitignore through git itself when available, falling
back to built-in patterns plus a project .contextignore overlay. Summaries
are cached on disk and invalidated when the file, the prompt, the backend,
or the tool version changes.`,
		Version: version.Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewBuildCommand())
	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewClearCacheCommand())
	cmd.AddCommand(NewWatchCommand())

	return cmd
}
