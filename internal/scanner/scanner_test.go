package scanner

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files under root from relative path → content.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

func TestScanMissingRoot(t *testing.T) {
	s := NewWithoutGit(filepath.Join(t.TempDir(), "nope"))
	result := s.Scan()

	assert.Empty(t, result.Files)
	assert.Equal(t, ModeBestEffort, result.IgnoreMode)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[len(result.Warnings)-1], "does not exist")
}

func TestScanRootIsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	result := NewWithoutGit(file).Scan()
	assert.Empty(t, result.Files)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[len(result.Warnings)-1], "not a directory")
}

func TestScanBestEffortBasic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":          "package main",
		"src/util.go":      "package src",
		"docs/guide.md":    "# Guide",
		".hidden.txt":      "hidden file",
		".secret/creds":    "hidden dir",
		"debug.log":        "ignored by defaults",
	})

	result := NewWithoutGit(root).Scan()

	assert.Equal(t, ModeBestEffort, result.IgnoreMode)
	assert.Equal(t, []string{"docs/guide.md", "main.go", "src/util.go"}, result.Files)
	assert.Contains(t, result.Warnings, "git not found; using best-effort ignore matching")
}

func TestScanProjectOverlayOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".contextignore": "!keep.log\ndocs/\n",
		"keep.log":       "re-included by overlay",
		"drop.log":       "still excluded by defaults",
		"docs/guide.md":  "excluded by overlay",
		"main.go":        "package main",
	})

	result := NewWithoutGit(root).Scan()
	assert.Equal(t, []string{"keep.log", "main.go"}, result.Files)
}

func TestScanPrunesIgnoredDirectoriesBeforeDescent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":               "package main",
		"vendor/lib/a.go":       "vendored",
		"vendor/lib/deep/b.go":  "vendored",
		"node_modules/x/y.js":   "dependency",
	})

	s := NewWithoutGit(root)
	visited := make(map[string]bool)
	s.readDir = func(name string) ([]os.DirEntry, error) {
		visited[name] = true
		return os.ReadDir(name)
	}

	result := s.Scan()
	assert.Equal(t, []string{"main.go"}, result.Files)

	for dir := range visited {
		rel, err := filepath.Rel(root, dir)
		require.NoError(t, err)
		assert.False(t, strings.HasPrefix(rel, "vendor"),
			"walked into pruned directory: %s", rel)
		assert.False(t, strings.HasPrefix(rel, "node_modules"),
			"walked into pruned directory: %s", rel)
	}
}

func TestScanSkipsRegisteredSubmodules(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitmodules": "[submodule \"extlib\"]\n\tpath = extlib\n\turl = https://example.com/extlib.git\n",
		"extlib/src/lib.c": "submodule content",
		"main.go":          "package main",
	})

	result := NewWithoutGit(root).Scan()
	assert.Equal(t, []string{"main.go"}, result.Files)
}

func TestScanSkipsGitdirPointerDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"subrepo/.git":    "gitdir: ../.git/modules/subrepo\n",
		"subrepo/code.go": "package subrepo",
		"main.go":         "package main",
	})

	result := NewWithoutGit(root).Scan()
	assert.Equal(t, []string{"main.go"}, result.Files)
}

func TestScanPriorityPaths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md":     "# Project",
		"readme.txt":    "case-insensitive",
		"go.mod":        "module example",
		"main.go":       "package main",
		"src/helper.go": "package src",
		"Dockerfile":    "FROM scratch",
	})

	result := NewWithoutGit(root).Scan()

	assert.Equal(t, []string{"Dockerfile", "README.md", "go.mod", "main.go", "readme.txt"}, result.PriorityPaths)
	assert.Contains(t, result.Files, "src/helper.go")
}

func TestScanGitMissingOnPath(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.go": "package main"})

	s := New(root)
	s.lookPath = func(string) (string, error) {
		return "", errors.New("executable file not found in $PATH")
	}

	result := s.Scan()
	assert.Equal(t, ModeBestEffort, result.IgnoreMode)
	assert.Contains(t, result.Warnings, "git not found; using best-effort ignore matching")
}

func TestScanGitModeAdditionalFilter(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":        "package main",
		"notes/todo.txt": "tracked by git, excluded by overlay",
		".contextignore": "notes/\n",
	})

	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = root
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Skipf("git %v failed: %v (%s)", args, err, out)
		}
	}
	run("init", "-q")
	run("add", ".")

	result := New(root).Scan()
	assert.Equal(t, ModeGit, result.IgnoreMode)
	assert.Contains(t, result.Files, "main.go")
	assert.NotContains(t, result.Files, "notes/todo.txt")
	// .contextignore itself is untracked-but-listed by git and not excluded.
	assert.Contains(t, result.Files, ".contextignore")
}

func TestIsPriorityName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"README", true},
		{"README.rst", true},
		{"package.json", true},
		{"main.rs", true},
		{"app.ts", true},
		{"__main__.py", true},
		{"config.toml", true},
		{"Makefile", true},
		{"helper.go", false},
		{"main.c", false},
		{"packages.json", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isPriorityName(tt.name), "name %q", tt.name)
	}
}
