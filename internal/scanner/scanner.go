// Package scanner finds the source files of a repository and measures them.
package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/churnscope/pkg/config"
)

// Scanner lists the files a report counts as source: files with a
// configured extension that no exclusion rule matches.
type Scanner struct {
	config     *config.Config
	extensions map[string]struct{}
}

// NewScanner returns a scanner for cfg, or for the defaults when cfg is nil.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	exts := make(map[string]struct{})
	for _, e := range cfg.NormalizedExtensions() {
		exts[e] = struct{}{}
	}
	return &Scanner{config: cfg, extensions: exts}
}

// excluder compiles the configured directories and patterns, plus every
// .gitignore below root when enabled, into one gitignore matcher. It
// returns nil when nothing is excluded.
func (s *Scanner) excluder(root string) gitignore.Matcher {
	var patterns []gitignore.Pattern
	for _, dir := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(strings.TrimSuffix(dir, "/")+"/", nil))
	}
	for _, p := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	if s.config.Exclude.Gitignore {
		// Unreadable .gitignore files are treated as empty.
		if ignored, err := gitignore.ReadPatterns(osfs.New(root), nil); err == nil {
			patterns = append(patterns, ignored...)
		}
	}
	if len(patterns) == 0 {
		return nil
	}
	return gitignore.NewMatcher(patterns)
}

func (s *Scanner) isSource(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	_, ok := s.extensions[ext]
	return ok
}

// ScanDir walks root and returns the paths of its source files. Excluded
// directories are not descended into, unreadable entries are skipped and
// symlinks pointing outside root are ignored.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	realRoot, err := filepath.Abs(root)
	if err == nil {
		realRoot, err = filepath.EvalSymlinks(realRoot)
	}
	if err != nil {
		return nil, err
	}

	excluded := s.excluder(root)
	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(target, realRoot) {
				return nil
			}
		}

		if excluded != nil && excluded.Match(strings.Split(filepath.ToSlash(rel), "/"), d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && s.isSource(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// isWithinRoot reports whether path is root or lies below it.
func isWithinRoot(path, root string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	abs, root = filepath.Clean(abs), filepath.Clean(root)
	return abs == root || strings.HasPrefix(abs, root+string(filepath.Separator))
}
