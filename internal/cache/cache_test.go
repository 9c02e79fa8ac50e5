package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() Key {
	return Key{
		SourceHash:  "src-aaa",
		PromptHash:  "prompt-bbb",
		BackendID:   "heuristic:v1",
		ToolVersion: "0.3.0",
	}
}

func TestPutThenGetHit(t *testing.T) {
	c := New(t.TempDir())
	key := testKey()
	summary := json.RawMessage(`{"role":"library","summary":"helpers"}`)

	require.NoError(t, c.Put("src/util.go", key, summary, 42))

	result := c.Get("src/util.go", key)
	assert.True(t, result.Hit)
	assert.False(t, result.IsStale)
	assert.JSONEq(t, string(summary), string(result.Summary))

	stats := c.Stats()
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 0, stats.Misses)
	assert.Equal(t, 42, stats.TokensSaved)
}

func TestGetMissNotCached(t *testing.T) {
	c := New(t.TempDir())

	result := c.Get("never/stored.go", testKey())
	assert.False(t, result.Hit)
	assert.True(t, result.IsStale)
	assert.Equal(t, ReasonNotCached, result.StalenessReason)
	assert.Equal(t, 1, c.Stats().Misses)
}

func TestGetMissReportsFirstDifferingAxis(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Key)
		reason string
	}{
		{"source", func(k *Key) { k.SourceHash = "changed" }, ReasonSourceChanged},
		{"prompt", func(k *Key) { k.PromptHash = "changed" }, ReasonPromptChanged},
		{"backend", func(k *Key) { k.BackendID = "changed" }, ReasonBackendChanged},
		{"tool", func(k *Key) { k.ToolVersion = "changed" }, ReasonToolChanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(t.TempDir())
			require.NoError(t, c.Put("a.go", testKey(), json.RawMessage(`{}`), 0))

			lookup := testKey()
			tt.mutate(&lookup)

			result := c.Get("a.go", lookup)
			assert.False(t, result.Hit)
			assert.Equal(t, tt.reason, result.StalenessReason)
		})
	}
}

func TestStalenessPriorityOrder(t *testing.T) {
	// With several axes differing, the reason names the highest-priority
	// one: source before prompt before backend before tool.
	c := New(t.TempDir())
	require.NoError(t, c.Put("a.go", testKey(), json.RawMessage(`{}`), 0))

	lookup := Key{SourceHash: "x", PromptHash: "y", BackendID: "z", ToolVersion: "w"}
	result := c.Get("a.go", lookup)
	assert.Equal(t, ReasonSourceChanged, result.StalenessReason)
}

func TestPutOverwritesExisting(t *testing.T) {
	c := New(t.TempDir())
	key := testKey()

	require.NoError(t, c.Put("a.go", key, json.RawMessage(`{"v":1}`), 1))
	require.NoError(t, c.Put("a.go", key, json.RawMessage(`{"v":2}`), 2))

	result := c.Get("a.go", key)
	require.True(t, result.Hit)
	assert.JSONEq(t, `{"v":2}`, string(result.Summary))
}

func TestCheckStatusDoesNotMutateStats(t *testing.T) {
	c := New(t.TempDir())
	key := testKey()
	require.NoError(t, c.Put("a.go", key, json.RawMessage(`{}`), 10))

	status := c.CheckStatus("a.go", key)
	assert.False(t, status.IsStale)

	stale := key
	stale.PromptHash = "different"
	status = c.CheckStatus("a.go", stale)
	assert.True(t, status.IsStale)
	assert.Equal(t, ReasonPromptChanged, status.StalenessReason)

	status = c.CheckStatus("missing.go", key)
	assert.True(t, status.IsStale)
	assert.Equal(t, ReasonNotCached, status.StalenessReason)

	stats := c.Stats()
	assert.Equal(t, 0, stats.Hits)
	assert.Equal(t, 0, stats.Misses)
	assert.Equal(t, 0, stats.TokensSaved)
}

func TestCorruptEntryTreatedAsNotCached(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	key := testKey()
	require.NoError(t, c.Put("a.go", key, json.RawMessage(`{"ok":true}`), 0))

	// Overwrite the persisted entry with garbage bytes.
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, os.WriteFile(entries[0], []byte("\x00\xffnot json"), 0644))

	result := c.Get("a.go", key)
	assert.False(t, result.Hit)
	assert.Equal(t, ReasonNotCached, result.StalenessReason)
}

func TestEntryMissingRequiredFieldsTreatedAsNotCached(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	key := testKey()
	require.NoError(t, c.Put("a.go", key, json.RawMessage(`{}`), 0))

	entries, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	require.Len(t, entries, 1)
	// Valid JSON but missing path and source_hash.
	require.NoError(t, os.WriteFile(entries[0], []byte(`{"summary":{}}`), 0644))

	result := c.Get("a.go", key)
	assert.Equal(t, ReasonNotCached, result.StalenessReason)
}

func TestClear(t *testing.T) {
	c := New(t.TempDir())
	key := testKey()
	require.NoError(t, c.Put("a.go", key, json.RawMessage(`{}`), 0))
	require.NoError(t, c.Put("b.go", key, json.RawMessage(`{}`), 0))
	require.NoError(t, c.Put("c.go", key, json.RawMessage(`{}`), 0))

	assert.Equal(t, 3, c.Clear())
	assert.Equal(t, ReasonNotCached, c.Get("a.go", key).StalenessReason)

	// Clearing an empty or missing directory removes nothing.
	assert.Equal(t, 0, c.Clear())
	assert.Equal(t, 0, New(filepath.Join(t.TempDir(), "missing")).Clear())
}

func TestClearLeavesNonEntryFilesAlone(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	require.NoError(t, c.Put("a.go", testKey(), json.RawMessage(`{}`), 0))

	// The build manifest shares the cache directory but is not an entry.
	manifestPath := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(manifestPath, []byte(`{"schema_version":1}`), 0644))

	assert.Equal(t, 1, c.Clear())
	_, err := os.Stat(manifestPath)
	assert.NoError(t, err)
}

func TestIsEntryName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"0123456789abcdef.json", true},
		{"manifest.json", false},
		{"0123456789abcdef.txt", false},
		{"0123456789abcdeX.json", false},
		{"0123456789abcde.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isEntryName(tt.name))
		})
	}
}

func TestEntryFilenameIsShortPathHash(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	require.NoError(t, c.Put("some/deep/path.go", testKey(), json.RawMessage(`{}`), 0))

	entries, _ := os.ReadDir(dir)
	require.Len(t, entries, 1)
	name := entries[0].Name()
	assert.True(t, strings.HasSuffix(name, ".json"))
	assert.Len(t, strings.TrimSuffix(name, ".json"), shortHashLen)
}

func TestSeparateInstancesDoNotShareStats(t *testing.T) {
	dir := t.TempDir()
	first := New(dir)
	require.NoError(t, first.Put("a.go", testKey(), json.RawMessage(`{}`), 5))
	first.Get("a.go", testKey())
	assert.Equal(t, 1, first.Stats().Hits)

	second := New(dir)
	assert.Equal(t, Stats{}, second.Stats())
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	h, err := HashFile(path)
	require.NoError(t, err)
	// sha256("hello")
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", h)

	_, err = HashFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestHashPrompt(t *testing.T) {
	h := HashPrompt("summarize this file")
	assert.Len(t, h, shortHashLen)
	assert.Equal(t, h, HashPrompt("summarize this file"))
	assert.NotEqual(t, h, HashPrompt("summarize that file"))
}
