// Package testutil builds throwaway git repositories for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// WriteFile writes content to a file, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// Repo is a git repository in a temporary directory.
type Repo struct {
	t    *testing.T
	Dir  string
	repo *git.Repository
}

// NewRepo initializes an empty repository that is removed when the test ends.
func NewRepo(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit(%s) error: %v", dir, err)
	}
	return &Repo{t: t, Dir: dir, repo: repo}
}

// Commit writes files (relative path -> content), stages them and commits
// them as email at when.
func (r *Repo) Commit(email string, when time.Time, files map[string]string) plumbing.Hash {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("Worktree() error: %v", err)
	}
	for name, content := range files {
		WriteFile(r.t, filepath.Join(r.Dir, name), content)
		if _, err := wt.Add(filepath.ToSlash(name)); err != nil {
			r.t.Fatalf("Add(%s) error: %v", name, err)
		}
	}

	hash, err := wt.Commit("update", &git.CommitOptions{
		Author: &object.Signature{Name: email, Email: email, When: when},
	})
	if err != nil {
		r.t.Fatalf("Commit() error: %v", err)
	}
	return hash
}

// Tag creates a lightweight tag at hash.
func (r *Repo) Tag(name string, hash plumbing.Hash) {
	r.t.Helper()
	if _, err := r.repo.CreateTag(name, hash, nil); err != nil {
		r.t.Fatalf("CreateTag(%s) error: %v", name, err)
	}
}
