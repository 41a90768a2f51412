// Package vcs materializes remote repositories on local disk so the
// analyzer only ever reads a directory tree.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// IsRemote reports whether ref names a remote repository rather than a
// local path.
func IsRemote(ref string) bool {
	return strings.Contains(ref, "://") || strings.HasPrefix(ref, "git@")
}

// dirName derives a filesystem-safe directory name from a repository URL.
func dirName(url string) string {
	name := strings.TrimSuffix(url, ".git")
	name = strings.TrimSuffix(name, "/")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "repo"
	}
	return b.String()
}

// Ensure returns a local checkout of url under cacheDir, cloning on first
// use. An existing checkout is reused; with refresh set it is pulled first.
func Ensure(ctx context.Context, url, cacheDir string, refresh bool) (string, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create clone directory: %w", err)
	}
	dest := filepath.Join(cacheDir, dirName(url))

	repo, err := git.PlainOpen(dest)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		cloneOpts := &git.CloneOptions{URL: url}
		if IsRemote(url) {
			// Shallow fetches are unsupported over the local file transport.
			cloneOpts.Depth = 1
		}
		_, err := git.PlainCloneContext(ctx, dest, false, cloneOpts)
		if err != nil {
			return "", fmt.Errorf("failed to clone %s: %w", url, err)
		}
		return dest, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to open clone of %s: %w", url, err)
	}

	if refresh {
		wt, err := repo.Worktree()
		if err != nil {
			return "", fmt.Errorf("failed to open worktree of %s: %w", url, err)
		}
		err = wt.PullContext(ctx, &git.PullOptions{})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return "", fmt.Errorf("failed to update clone of %s: %w", url, err)
		}
	}
	return dest, nil
}
