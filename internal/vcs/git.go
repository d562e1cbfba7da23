package vcs

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitOpener opens repositories on disk through go-git.
type GitOpener struct{}

// NewGitOpener returns an Opener backed by go-git.
func NewGitOpener() *GitOpener {
	return &GitOpener{}
}

func (o *GitOpener) PlainOpen(path string) (Repository, error) {
	return open(path, false)
}

func (o *GitOpener) PlainOpenWithDetect(path string) (Repository, error) {
	return open(path, true)
}

func open(path string, detect bool) (Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: detect})
	if err != nil {
		return nil, err
	}
	// With detection the worktree root can sit above path.
	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &gitRepo{Repository: repo, root: root}, nil
}

type gitRepo struct {
	*git.Repository
	root string
}

func (r *gitRepo) RepoPath() string { return r.root }

func (r *gitRepo) Head() (Reference, error) {
	ref, err := r.Repository.Head()
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func (r *gitRepo) Log(opts *LogOptions) (CommitIterator, error) {
	var logOpts git.LogOptions
	if opts != nil {
		logOpts.Since = opts.Since
	}
	iter, err := r.Repository.Log(&logOpts)
	if err != nil {
		return nil, err
	}
	return commitIter{iter}, nil
}

type commitIter struct {
	object.CommitIter
}

func (it commitIter) ForEach(fn func(Commit) error) error {
	return it.CommitIter.ForEach(func(c *object.Commit) error {
		return fn(gitCommit{c})
	})
}

// gitCommit adapts *object.Commit, whose Hash and Author are fields rather
// than methods. NumParents and Stats are promoted unchanged.
type gitCommit struct {
	*object.Commit
}

func (c gitCommit) Hash() plumbing.Hash      { return c.Commit.Hash }
func (c gitCommit) Author() object.Signature { return c.Commit.Author }

var defaultOpener Opener = NewGitOpener()

// DefaultOpener returns the process-wide opener.
func DefaultOpener() Opener {
	return defaultOpener
}

// SetDefaultOpener replaces the process-wide opener. Tests use it to inject mocks.
func SetDefaultOpener(opener Opener) {
	defaultOpener = opener
}
