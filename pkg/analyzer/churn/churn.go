package churn

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/panbanda/churnscope/internal/progress"
	"github.com/panbanda/churnscope/internal/vcs"
	"github.com/panbanda/churnscope/pkg/analyzer"
)

// DefaultGitTimeout bounds a history walk when the caller passes no context.
const DefaultGitTimeout = 5 * time.Minute

// DefaultDays is the default length of the history window.
const DefaultDays = 365

// ErrNotRepository is returned when the target is not inside a git repository.
var ErrNotRepository = errors.New("not a git repository")

// Analyzer collects per-file modification histories from git.
type Analyzer struct {
	days      int
	now       func() time.Time
	spinner   *progress.Tracker
	opener    vcs.Opener
	useNative bool
}

var _ analyzer.RepoAnalyzer[*Analysis] = (*Analyzer)(nil)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDays sets the number of days of history to collect.
func WithDays(days int) Option {
	return func(a *Analyzer) {
		if days > 0 {
			a.days = days
		}
	}
}

// WithSpinner sets a progress spinner ticked once per commit.
func WithSpinner(spinner *progress.Tracker) Option {
	return func(a *Analyzer) {
		a.spinner = spinner
	}
}

// WithOpener reads history through opener instead of the git binary.
func WithOpener(opener vcs.Opener) Option {
	return func(a *Analyzer) {
		a.opener = opener
		a.useNative = false
	}
}

// WithNativeGit chooses between "git log --numstat" (the default) and go-git.
func WithNativeGit(use bool) Option {
	return func(a *Analyzer) {
		a.useNative = use
	}
}

// WithClock overrides the reference time for the history window.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates a new history analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		days:      DefaultDays,
		now:       time.Now,
		opener:    vcs.DefaultOpener(),
		useNative: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Days returns the configured history window.
func (a *Analyzer) Days() int { return a.days }

// Analyze collects the history of every file changed in the window.
func (a *Analyzer) Analyze(ctx context.Context, repoPath string) (*Analysis, error) {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultGitTimeout)
		defer cancel()
	}

	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		absPath = repoPath
	}

	c := newCollector()
	if a.useNative {
		err = a.collectNative(ctx, repoPath, c)
	} else {
		err = a.collectGoGit(ctx, repoPath, c)
	}
	if err != nil {
		return nil, err
	}

	return c.build(absPath, a.days, a.now().UTC()), nil
}

// Close is a no-op; the analyzer holds no open repository between calls.
func (a *Analyzer) Close() {}

func (a *Analyzer) cutoff() time.Time {
	return a.now().AddDate(0, 0, -a.days)
}

// collectNative shells out to git. Each commit is a header line
// "hash|email|date" followed by numstat lines "added\tdeleted\tpath".
func (a *Analyzer) collectNative(ctx context.Context, repoPath string, c *collector) error {
	cmd := exec.CommandContext(ctx, "git", "log", "--numstat",
		"--since="+a.cutoff().Format(time.RFC3339), "--format=%H|%aE|%aI")
	cmd.Dir = repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		msg := stderr.String()
		if strings.Contains(msg, "not a git repository") {
			return fmt.Errorf("%w: %s", ErrNotRepository, repoPath)
		}
		// An empty repository has no history to report.
		if strings.Contains(msg, "does not have any commits") {
			return nil
		}
		return fmt.Errorf("git log: %w: %s", err, strings.TrimSpace(msg))
	}

	return a.parseGitLogNumstat(&stdout, c)
}

// parseGitLogNumstat parses output from git log --numstat --format="%H|%aE|%aI".
func (a *Analyzer) parseGitLogNumstat(r io.Reader, c *collector) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		author string
		when   time.Time
	)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		// Numstat lines always contain two tabs; commit headers never do.
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			header := strings.SplitN(line, "|", 3)
			if len(header) != 3 {
				continue
			}
			t, err := time.Parse(time.RFC3339, header[2])
			if err != nil {
				continue
			}
			c.commit(header[0], header[1])
			author, when = header[1], t
			a.spinner.Tick()
			continue
		}

		if when.IsZero() {
			continue
		}

		// Binary files report "-" for both counts.
		added, _ := strconv.Atoi(parts[0])
		deleted, _ := strconv.Atoi(parts[1])

		c.record(resolveRenamePath(parts[2]), when, author, added, deleted)
	}

	return scanner.Err()
}

// collectGoGit walks history through the vcs abstraction, diffing each
// commit against its first parent.
func (a *Analyzer) collectGoGit(ctx context.Context, repoPath string, c *collector) error {
	repo, err := a.opener.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotRepository, err)
	}

	cutoff := a.cutoff()
	commits, err := repo.Log(&vcs.LogOptions{Since: &cutoff})
	if err != nil {
		return err
	}
	defer commits.Close()

	return commits.ForEach(func(commit vcs.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		a.spinner.Tick()

		stats, err := commit.Stats()
		if err != nil {
			return nil
		}

		sig := commit.Author()
		c.commit(commit.Hash().String(), sig.Email)
		for _, fs := range stats {
			c.record(fs.Name, sig.When, sig.Email, fs.Addition, fs.Deletion)
		}
		return nil
	})
}

// resolveRenamePath maps numstat rename notation to the new path:
// "old => new" and "dir/{old => new}/file".
func resolveRenamePath(p string) string {
	if !strings.Contains(p, " => ") {
		return p
	}
	open := strings.Index(p, "{")
	end := strings.Index(p, "}")
	if open >= 0 && end > open {
		inner := p[open+1 : end]
		_, to, _ := strings.Cut(inner, " => ")
		joined := p[:open] + to + p[end+1:]
		return strings.ReplaceAll(joined, "//", "/")
	}
	_, to, _ := strings.Cut(p, " => ")
	return to
}

type collector struct {
	files        map[string]*FileHistory
	commits      map[string]struct{}
	contributors map[string]struct{}
}

func newCollector() *collector {
	return &collector{
		files:        make(map[string]*FileHistory),
		commits:      make(map[string]struct{}),
		contributors: make(map[string]struct{}),
	}
}

func (c *collector) commit(hash, author string) {
	c.commits[hash] = struct{}{}
	if a := normalizeContributor(author); a != "" {
		c.contributors[a] = struct{}{}
	}
}

func (c *collector) record(path string, when time.Time, author string, added, deleted int) {
	fh, ok := c.files[path]
	if !ok {
		fh = NewFileHistory(path)
		c.files[path] = fh
	}
	fh.Record(when, author, added, deleted)
}

// build constructs the final analysis with files sorted by path.
func (c *collector) build(absPath string, days int, now time.Time) *Analysis {
	out := &Analysis{
		GeneratedAt:    now,
		PeriodDays:     days,
		RepositoryRoot: absPath,
		Files:          make([]*FileHistory, 0, len(c.files)),
	}
	for _, fh := range c.files {
		out.Files = append(out.Files, fh)
		out.Summary.TotalAdditions += fh.LinesAdded()
		out.Summary.TotalDeletions += fh.LinesDeleted()
	}
	sort.Slice(out.Files, func(i, j int) bool { return out.Files[i].Path < out.Files[j].Path })

	out.Summary.TotalFilesChanged = len(out.Files)
	out.Summary.TotalCommits = len(c.commits)
	out.Summary.TotalContributors = len(c.contributors)
	return out
}
