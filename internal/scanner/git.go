package scanner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// External git calls are bounded so a hung git never hangs a scan.
// A timeout degrades to best-effort mode rather than failing the run.
const (
	gitProbeTimeout = 5 * time.Second
	gitListTimeout  = 30 * time.Second
)

// gitAvailable reports whether the git binary is resolvable on PATH.
func (s *Scanner) gitAvailable() bool {
	if s.disableGit {
		return false
	}
	_, err := s.lookPath("git")
	return err == nil
}

// inGitWorktree reports whether the scan root is the top level of a
// checked-out repository. Detecting a .git entry is not enough: git itself
// is asked for the top level and its answer compared against the root, so a
// scan started in a subdirectory of a repository stays in best-effort mode.
func (s *Scanner) inGitWorktree() bool {
	// .git may be a directory, or a file for linked worktrees.
	if _, err := os.Stat(filepath.Join(s.root, ".git")); err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), gitProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = s.root
	out, err := cmd.Output()
	if err != nil {
		return false
	}

	toplevel := strings.TrimSpace(string(out))
	return samePath(toplevel, s.root)
}

// samePath compares two paths after resolving symlinks, falling back to a
// cleaned absolute comparison when resolution fails.
func samePath(a, b string) bool {
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	if errA == nil && errB == nil {
		return ra == rb
	}

	aa, errA := filepath.Abs(a)
	ab, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return false
	}
	return filepath.Clean(aa) == filepath.Clean(ab)
}

// listGitFiles enumerates tracked plus untracked-but-not-ignored files using
// git's own exclusion rules. Paths are NUL-separated to survive unusual
// filenames, and quotepath is disabled so non-ASCII names come back raw.
func (s *Scanner) listGitFiles() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), gitListTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx,
		"git", "-c", "core.quotepath=false",
		"ls-files", "-z",
		"--cached", "--others", "--exclude-standard",
	)
	cmd.Dir = s.root
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var files []string
	for _, raw := range bytes.Split(out, []byte{0}) {
		if len(raw) == 0 {
			continue
		}
		files = append(files, strings.ReplaceAll(string(raw), "\\", "/"))
	}
	return files, nil
}

// gitmodulesPathRe extracts the path entries of a .gitmodules file.
var gitmodulesPathRe = regexp.MustCompile(`path\s*=\s*(.+)`)

// registeredSubmodules returns the relative paths registered in .gitmodules.
// An unreadable or absent file yields an empty set.
func (s *Scanner) registeredSubmodules() map[string]bool {
	submodules := make(map[string]bool)

	data, err := os.ReadFile(filepath.Join(s.root, ".gitmodules"))
	if err != nil {
		return submodules
	}

	for _, m := range gitmodulesPathRe.FindAllStringSubmatch(string(data), -1) {
		path := strings.TrimSpace(m[1])
		if path != "" {
			submodules[strings.ReplaceAll(path, "\\", "/")] = true
		}
	}
	return submodules
}

// isSubmoduleDir reports whether dir is a checked-out sub-repository,
// identified by a .git pointer file containing a gitdir: line. This catches
// submodules even when .gitmodules is missing or stale.
func isSubmoduleDir(dir string) bool {
	gitPath := filepath.Join(dir, ".git")
	info, err := os.Stat(gitPath)
	if err != nil || info.IsDir() {
		return false
	}

	data, err := os.ReadFile(gitPath)
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(string(data)), "gitdir:")
}
