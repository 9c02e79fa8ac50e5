package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "ctxgen", root.Use)
	assert.True(t, root.SilenceUsage)

	names := map[string]bool{}
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"build", "status", "clear-cache", "watch"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRootVersionFlag(t *testing.T) {
	out, err := runCLI(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "0.3.0")
}

func TestChangesModeValidation(t *testing.T) {
	dir := seedProject(t)
	_, err := runCLI(t, "build", "--root", dir, "--changes=bogus")
	assert.Error(t, err)
}
