package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/ctxgen/internal/ignore"
)

func waitTrigger(t *testing.T, w *Watcher, timeout time.Duration) bool {
	t.Helper()
	select {
	case <-w.Triggers():
		return true
	case <-time.After(timeout):
		return false
	}
}

func newTestWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	matcher, err := ignore.LoadRoot(root)
	require.NoError(t, err)

	w, err := New(root, matcher)
	require.NoError(t, err)
	w.debounceDelay = 50 * time.Millisecond
	t.Cleanup(func() { w.Close() })
	return w
}

func TestTriggerOnWrite(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0644))

	w := newTestWatcher(t, root)

	require.NoError(t, os.WriteFile(path, []byte("package main // edited\n"), 0644))
	assert.True(t, waitTrigger(t, w, 3*time.Second), "expected a trigger after a write")
}

func TestBurstCoalescesToOneTrigger(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	for i := 0; i < 5; i++ {
		name := filepath.Join(root, "file"+string(rune('a'+i))+".go")
		require.NoError(t, os.WriteFile(name, []byte("package x\n"), 0644))
	}

	require.True(t, waitTrigger(t, w, 3*time.Second))
	// The burst settled into a single trigger; nothing else is pending.
	assert.False(t, waitTrigger(t, w, 200*time.Millisecond))
}

func TestIgnoredPathsDoNotTrigger(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0755))
	w := newTestWatcher(t, root)

	require.NoError(t, os.WriteFile(
		filepath.Join(root, "node_modules", "dep.js"), []byte("x"), 0644))
	assert.False(t, waitTrigger(t, w, 300*time.Millisecond))

	require.NoError(t, os.WriteFile(
		filepath.Join(root, ".hidden"), []byte("x"), 0644))
	assert.False(t, waitTrigger(t, w, 300*time.Millisecond))
}

func TestGeneratedOutputDoesNotRetrigger(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	// A rebuild writing its own report must not feed back into the
	// watcher, whatever the output format.
	for _, name := range []string{"PROJECT_CONTEXT.md", "PROJECT_CONTEXT.json", "PROJECT_CONTEXT.html"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("report"), 0644))
	}
	assert.False(t, waitTrigger(t, w, 300*time.Millisecond))
}

func TestNewDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(sub, 0755))
	require.True(t, waitTrigger(t, w, 3*time.Second))

	require.NoError(t, os.WriteFile(filepath.Join(sub, "new.go"), []byte("package pkg\n"), 0644))
	assert.True(t, waitTrigger(t, w, 3*time.Second), "expected trigger from file in new directory")
}

func TestCloseIsIdempotent(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
