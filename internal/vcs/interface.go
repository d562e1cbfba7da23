// Package vcs is the narrow view of a git repository that history collection
// needs: open a worktree, walk commits since a cutoff and read the files each
// commit touched.
package vcs

import (
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Opener locates and opens repositories.
type Opener interface {
	PlainOpen(path string) (Repository, error)
	// PlainOpenWithDetect walks up from path until it finds a .git directory.
	PlainOpenWithDetect(path string) (Repository, error)
}

// Repository is an opened repository rooted at its worktree.
type Repository interface {
	Head() (Reference, error)
	// Log walks commits reachable from HEAD, newest first.
	Log(opts *LogOptions) (CommitIterator, error)
	// RepoPath is the absolute worktree root. Paths in commit stats are
	// relative to it.
	RepoPath() string
}

// Reference is a resolved ref. Only its target hash is needed to key cached history.
type Reference interface {
	Hash() plumbing.Hash
}

// LogOptions narrows a history walk.
type LogOptions struct {
	// Since drops commits authored before this instant.
	Since *time.Time
}

// CommitIterator yields commits until fn returns an error or history ends.
type CommitIterator interface {
	ForEach(fn func(Commit) error) error
	Close()
}

// Commit is a single change event in the history.
type Commit interface {
	Hash() plumbing.Hash
	NumParents() int
	// Stats lists the files the commit touched, diffed against its first parent.
	Stats() (object.FileStats, error)
	// Author carries the contributor email and the authored time the change
	// is bucketed by.
	Author() object.Signature
}
