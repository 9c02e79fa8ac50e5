package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// shortHashLen truncates path and prompt hashes; 16 hex characters is plenty
// for a cache filename, which is addressing, not a security boundary.
const shortHashLen = 16

// HashFile computes the full SHA-256 hex digest of a file's contents.
// This is the sourceHash axis of the cache key.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashPrompt computes the truncated SHA-256 hex digest of a prompt string.
func HashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])[:shortHashLen]
}

// pathHash maps a source path to its cache filename stem.
func pathHash(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])[:shortHashLen]
}
