package git

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const timeout = 10 * time.Second

// RepoRoot returns the absolute path of the git repository containing dir.
func RepoRoot(dir string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// DirtyFiles returns the absolute paths of files with uncommitted changes
// (staged, unstaged or untracked) under repoRoot.
func DirtyFiles(repoRoot string) (map[string]bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx,
		"git", "-C", repoRoot, "status", "--porcelain", "-z", "--untracked-files=all",
	).Output()
	if err != nil {
		return nil, fmt.Errorf("git status: %w", err)
	}
	return parseStatus(repoRoot, string(out)), nil
}

// parseStatus reads `git status --porcelain -z` output: NUL-terminated
// "XY path" records, where a rename or copy is followed by one more record
// holding the original path. Paths are never quoted in this form.
func parseStatus(repoRoot, raw string) map[string]bool {
	dirty := make(map[string]bool)
	records := strings.Split(raw, "\x00")
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 4 {
			continue
		}
		dirty[filepath.Join(repoRoot, rec[3:])] = true
		if rec[0] == 'R' || rec[0] == 'C' {
			i++
		}
	}
	return dirty
}

// AnyDirty reports which of paths have uncommitted changes. Paths outside a
// git repository are never dirty.
func AnyDirty(paths []string) ([]string, error) {
	roots := make(map[string]map[string]bool)
	var hits []string
	for _, p := range paths {
		root, err := RepoRoot(filepath.Dir(p))
		if err != nil {
			continue
		}
		dirty, ok := roots[root]
		if !ok {
			dirty, err = DirtyFiles(root)
			if err != nil {
				return nil, err
			}
			roots[root] = dirty
		}
		if dirty[filepath.Clean(p)] {
			hits = append(hits, p)
		}
	}
	return hits, nil
}
