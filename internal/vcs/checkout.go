package vcs

import (
	"github.com/go-git/go-git/v5"
)

// Checkout describes the working copy a report was run against.
type Checkout struct {
	// Ref is the branch name, or the commit hash when HEAD is detached.
	// Empty for a repository without commits.
	Ref string
	// Dirty reports tracked files with staged or unstaged edits. Those
	// edits are not in the history, so line counts and change counts can
	// disagree.
	Dirty bool
}

// Inspect reads the checkout state of the repository containing path.
func Inspect(path string) (*Checkout, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}

	co := &Checkout{}
	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			co.Ref = head.Name().Short()
		} else {
			co.Ref = head.Hash().String()
		}
	}

	wt, err := repo.Worktree()
	if err != nil {
		return co, err
	}
	status, err := wt.Status()
	if err != nil {
		return co, err
	}
	for _, fs := range status {
		if fs.Worktree == git.Untracked {
			continue
		}
		if fs.Staging != git.Unmodified || fs.Worktree != git.Unmodified {
			co.Dirty = true
			break
		}
	}
	return co, nil
}
