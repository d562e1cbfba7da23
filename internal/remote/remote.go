// Package remote resolves repository references that are not local paths
// and clones them for analysis.
package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Source represents a remote repository to analyze.
type Source struct {
	URL      string // normalized git URL
	Ref      string // branch, tag, or SHA (empty = default branch)
	CloneDir string // temp directory after clone
}

// Parse detects if a path is a remote reference.
// Returns nil if path exists on filesystem (local path takes precedence)
// or does not look like a repository URL.
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	// SSH URLs contain '@' before the host, so refs are only split off
	// after the last path separator.
	ref := ""
	if idx := strings.LastIndex(path, "@"); idx != -1 && idx > strings.LastIndexAny(path, "/:") {
		ref = path[idx+1:]
		path = path[:idx]
	}

	switch {
	case strings.HasPrefix(path, "https://"), strings.HasPrefix(path, "http://"):
		return &Source{URL: path, Ref: ref}, nil
	case strings.HasPrefix(path, "git@"), strings.HasPrefix(path, "ssh://"):
		return &Source{URL: path, Ref: ref}, nil
	case isHostPath(path):
		return &Source{URL: "https://" + path, Ref: ref}, nil
	case isGitHubShorthand(path):
		return &Source{URL: "https://github.com/" + path, Ref: ref}, nil
	}
	return nil, nil
}

// isHostPath matches host/owner/repo without a scheme, e.g. github.com/golang/go.
func isHostPath(path string) bool {
	parts := strings.Split(path, "/")
	if len(parts) < 3 || strings.HasPrefix(parts[0], ".") {
		return false
	}
	return strings.Contains(parts[0], ".") && parts[1] != "" && parts[2] != ""
}

// isGitHubShorthand returns true if path matches owner/repo pattern.
func isGitHubShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx == -1 {
		return false
	}
	if strings.Count(path, "/") != 1 {
		return false
	}
	// A dot before the slash is a domain or a relative path.
	if strings.Contains(path[:slashIdx], ".") {
		return false
	}
	return slashIdx > 0 && slashIdx < len(path)-1
}

// Clone fetches the full history into a temporary directory and checks out
// Ref when set. Progress messages from the server go to progress, which
// may be nil.
func (s *Source) Clone(ctx context.Context, progress io.Writer) error {
	dir, err := os.MkdirTemp("", "churnscope-clone-*")
	if err != nil {
		return err
	}
	s.CloneDir = dir

	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:      s.URL,
		Progress: progress,
	})
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("clone %s: %w", s.URL, err)
	}

	if s.Ref == "" {
		return nil
	}
	if err := checkout(repo, s.Ref); err != nil {
		s.Cleanup()
		return fmt.Errorf("checkout %s: %w", s.Ref, err)
	}
	return nil
}

func checkout(repo *git.Repository, ref string) error {
	// Remote branches are only present as origin/<name> after a clone.
	hash, err := repo.ResolveRevision(plumbing.Revision("refs/remotes/origin/" + ref))
	if err != nil {
		hash, err = repo.ResolveRevision(plumbing.Revision(ref))
		if err != nil {
			return err
		}
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true})
}

// Cleanup removes the clone directory.
func (s *Source) Cleanup() {
	if s.CloneDir != "" {
		os.RemoveAll(s.CloneDir)
		s.CloneDir = ""
	}
}
