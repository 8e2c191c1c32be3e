// Package vcs guards rewrites against clobbering uncommitted work by
// consulting the git worktree status.
package vcs

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
)

// Repo reports worktree cleanliness for files in a git repository. The
// status is computed once and reused until Refresh.
type Repo struct {
	repo *git.Repository
	root string

	mu     sync.Mutex
	status git.Status
}

// Open finds the repository containing path, searching parent directories.
func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	root, err := canonical(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	return &Repo{repo: repo, root: root}, nil
}

// Root returns the worktree root.
func (r *Repo) Root() string {
	return r.root
}

func (r *Repo) load() (git.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != nil {
		return r.status, nil
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}
	r.status = status
	return status, nil
}

// Refresh drops the cached status.
func (r *Repo) Refresh() {
	r.mu.Lock()
	r.status = nil
	r.mu.Unlock()
}

// IsDirty reports whether path has staged, unstaged or untracked changes.
// Files outside the worktree are never dirty.
func (r *Repo) IsDirty(path string) (bool, error) {
	status, err := r.load()
	if err != nil {
		return false, err
	}

	abs, err := canonical(path)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}

	fs, ok := status[filepath.ToSlash(rel)]
	if !ok {
		return false, nil
	}
	return fs.Staging != git.Unmodified || fs.Worktree != git.Unmodified, nil
}

// DirtyFiles returns the worktree-relative paths with changes, sorted.
func (r *Repo) DirtyFiles() ([]string, error) {
	status, err := r.load()
	if err != nil {
		return nil, err
	}

	var files []string
	for path, fs := range status {
		if fs.Staging != git.Unmodified || fs.Worktree != git.Unmodified {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
