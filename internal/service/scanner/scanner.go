// Package scanner locates the repository a report runs against and
// measures its source files.
package scanner

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/panbanda/churnscope/internal/fileproc"
	"github.com/panbanda/churnscope/internal/scanner"
	"github.com/panbanda/churnscope/internal/vcs"
	"github.com/panbanda/churnscope/pkg/config"
)

// ScanResult contains the source files under a repository root and their line counts.
type ScanResult struct {
	Root  string
	Files []string
	Index *scanner.Index
	// Errors lists files that were found but could not be counted.
	Errors *fileproc.FileErrors
}

// Service ties the configured extensions and exclusions to a repository.
type Service struct {
	config *config.Config
	opener vcs.Opener
}

type Option func(*Service)

func WithConfig(cfg *config.Config) Option {
	return func(s *Service) { s.config = cfg }
}

// WithOpener replaces the go-git opener, typically with a mock.
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) { s.opener = opener }
}

func New(opts ...Option) *Service {
	s := &Service{config: config.DefaultConfig(), opener: vcs.DefaultOpener()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenRepository opens the git repository containing path, which may be
// any directory inside the worktree.
func (s *Service) OpenRepository(path string) (vcs.Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &Error{Op: OpResolve, Path: path, Err: err}
	}
	repo, err := s.opener.PlainOpenWithDetect(abs)
	if err != nil {
		return nil, &Error{Op: OpOpen, Path: abs, Err: err}
	}
	return repo, nil
}

// Scan lists the source files under root and counts their lines.
// onProgress, if set, is called once per file.
func (s *Service) Scan(ctx context.Context, root string, onProgress fileproc.ProgressFunc) (*ScanResult, error) {
	files, err := s.ScanFiles(root)
	if err != nil {
		return nil, err
	}
	return s.Index(ctx, root, files, onProgress)
}

// Index counts the lines of files previously returned by ScanFiles.
// Unreadable files end up in ScanResult.Errors; only cancellation fails
// the whole call.
func (s *Service) Index(ctx context.Context, root string, files []string, onProgress fileproc.ProgressFunc) (*ScanResult, error) {
	index, errs := scanner.BuildIndex(ctx, root, files, onProgress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ScanResult{Root: root, Files: files, Index: index, Errors: errs}, nil
}

// ScanFiles lists the source files under root without reading them.
func (s *Service) ScanFiles(root string) ([]string, error) {
	files, err := scanner.NewScanner(s.config).ScanDir(root)
	if err != nil {
		return nil, &Error{Op: OpScan, Path: root, Err: err}
	}
	return files, nil
}

// Op names the step that failed.
type Op string

const (
	OpResolve Op = "resolve"
	OpOpen    Op = "open"
	OpScan    Op = "scan"
)

// Error is returned by Service when a path cannot be resolved, is not
// inside a git worktree, or cannot be walked.
type Error struct {
	Op   Op
	Path string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	switch e.Op {
	case OpResolve:
		b.WriteString("invalid path ")
	case OpOpen:
		b.WriteString("not a git repository (or any parent): ")
	default:
		b.WriteString("failed to scan directory ")
	}
	b.WriteString(e.Path)
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }
