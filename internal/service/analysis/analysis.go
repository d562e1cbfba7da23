// Package analysis runs a complete change-frequency report: history
// collection, source scanning and report assembly.
package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/panbanda/churnscope/internal/cache"
	"github.com/panbanda/churnscope/internal/logging"
	"github.com/panbanda/churnscope/internal/progress"
	scansvc "github.com/panbanda/churnscope/internal/service/scanner"
	"github.com/panbanda/churnscope/internal/vcs"
	"github.com/panbanda/churnscope/pkg/analyzer/churn"
	"github.com/panbanda/churnscope/pkg/analyzer/frequency"
	"github.com/panbanda/churnscope/pkg/config"
	"github.com/panbanda/churnscope/pkg/decomposition"
)

// Service orchestrates change-frequency analysis.
type Service struct {
	config       *config.Config
	opener       vcs.Opener
	customOpener bool
	cache        *cache.Cache
	logger       *logging.Logger
	progress     bool
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithOpener sets the VCS opener (for testing). History is then collected
// through the opener instead of the git binary.
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
		s.customOpener = true
	}
}

// WithCache sets the history cache. Without it a cache is created under the
// repository root when the configuration enables one.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithProgress shows progress bars on stderr.
func WithProgress(enabled bool) Option {
	return func(s *Service) {
		s.progress = enabled
	}
}

// WithClock overrides the reference time of the history window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		opener: vcs.DefaultOpener(),
		logger: logging.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReportOptions overrides configuration for a single run.
type ReportOptions struct {
	Days    int
	Top     int
	NoCache bool
}

// Result is a finished report plus facts about how it was produced.
type Result struct {
	Report   *frequency.Report
	Ref      string
	Dirty    bool
	CacheHit bool
	// Unreadable lists source files whose lines could not be counted.
	Unreadable []string
}

// AnalyzeChangeFrequency builds the change-frequency report for the
// repository containing path.
func (s *Service) AnalyzeChangeFrequency(ctx context.Context, path string, opts ReportOptions) (*Result, error) {
	changeSet, err := s.config.Thresholds.ChangeFrequency.Set()
	if err != nil {
		return nil, fmt.Errorf("thresholds.change_frequency: %w", err)
	}
	contributorSet, err := s.config.Thresholds.Contributors.Set()
	if err != nil {
		return nil, fmt.Errorf("thresholds.contributors: %w", err)
	}
	decomps, err := decomposition.Compile(s.config.LogicalDecompositions)
	if err != nil {
		return nil, fmt.Errorf("logical_decompositions: %w", err)
	}

	scanner := scansvc.New(scansvc.WithConfig(s.config), scansvc.WithOpener(s.opener))
	repo, err := scanner.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", churn.ErrNotRepository, err)
	}
	root := repo.RepoPath()
	log := s.logger.With("repo", root)

	result := &Result{}
	result.Ref, result.Dirty = s.checkout(root, log)

	days := opts.Days
	if days <= 0 {
		days = s.config.Analysis.HistoryDays
	}
	top := opts.Top
	if top <= 0 {
		top = s.config.Analysis.Top
	}

	history, hit, err := s.history(ctx, repo, days, opts.NoCache, log)
	if err != nil {
		return nil, err
	}
	result.CacheHit = hit

	start := time.Now()
	files, err := scanner.ScanFiles(root)
	if err != nil {
		return nil, err
	}
	var tracker *progress.Tracker
	if s.progress {
		tracker = progress.NewTracker("Counting lines", len(files))
		if len(files) == 0 {
			tracker.FinishSkipped("no source files")
			tracker = nil
		}
	}
	scan, err := scanner.Index(ctx, root, files, tracker.Tick)
	if err != nil {
		tracker.FinishError(err)
		return nil, err
	}
	tracker.FinishSuccess()
	if scan.Errors != nil {
		for _, e := range scan.Errors.Errors {
			log.Debugf("skipping %s: %v", e.Path, e.Err)
			result.Unreadable = append(result.Unreadable, e.Path)
		}
		log.Warnf("%d source files could not be read", len(scan.Errors.Errors))
	}
	log.With("files", len(scan.Files)).Duration("source scanned", time.Since(start))

	report, err := frequency.Build(frequency.Input{
		History:               history,
		Sources:               scan.Index,
		ChangeThresholds:      changeSet,
		ContributorThresholds: contributorSet,
		Extensions:            s.config.NormalizedExtensions(),
		Decompositions:        decomps,
		Top:                   top,
	})
	if err != nil {
		return nil, err
	}
	report.Summary.SourceFiles = scan.Index.Len()
	report.Summary.SourceLOC = scan.Index.TotalLOC()
	result.Report = report
	return result, nil
}

func (s *Service) checkout(root string, log *logging.Logger) (string, bool) {
	co, err := vcs.Inspect(root)
	if err != nil {
		log.Debugf("cannot inspect checkout: %v", err)
		if co == nil {
			return "", false
		}
	}
	if co.Dirty {
		log.Warn("working tree has uncommitted changes; they are not part of the history")
	}
	return co.Ref, co.Dirty
}

// history returns the collected history, from the cache when HEAD and the
// window are unchanged.
func (s *Service) history(ctx context.Context, repo vcs.Repository, days int, noCache bool, log *logging.Logger) (*churn.Analysis, bool, error) {
	root := repo.RepoPath()

	var key string
	c := s.historyCache(root, noCache, log)
	if head, err := repo.Head(); err == nil {
		key = cache.HistoryKey(root, head.Hash().String(), s.now().AddDate(0, 0, -days), days)
	} else {
		log.Debugf("no HEAD, history will not be cached: %v", err)
	}

	if c != nil && key != "" {
		var cached churn.Analysis
		if c.GetJSON(key, &cached) {
			log.Debug("history cache hit")
			return &cached, true, nil
		}
		log.Debug("history cache miss")
	}

	analyzerOpts := []churn.Option{
		churn.WithDays(days),
		churn.WithNativeGit(s.config.Analysis.NativeGit),
		churn.WithClock(s.now),
	}
	if s.customOpener {
		analyzerOpts = append(analyzerOpts, churn.WithOpener(s.opener))
	}
	var spinner *progress.Tracker
	if s.progress {
		spinner = progress.NewSpinner("Collecting history")
		analyzerOpts = append(analyzerOpts, churn.WithSpinner(spinner))
	}

	start := time.Now()
	analyzer := churn.New(analyzerOpts...)
	defer analyzer.Close()

	history, err := analyzer.Analyze(ctx, root)
	if err != nil {
		spinner.FinishError(err)
		return nil, false, err
	}
	spinner.FinishSuccess()
	log.With("files", len(history.Files)).Duration("history collected", time.Since(start))

	if c != nil && key != "" {
		if err := c.SetJSON(key, history); err != nil {
			log.Warnf("cannot cache history: %v", err)
		}
	}
	return history, false, nil
}

func (s *Service) historyCache(root string, noCache bool, log *logging.Logger) *cache.Cache {
	if noCache {
		return nil
	}
	if s.cache != nil {
		return s.cache
	}
	if !s.config.Cache.Enabled {
		return nil
	}
	c, err := cache.New(s.cacheDir(root), s.config.Cache.TTL, true)
	if err != nil {
		log.Warnf("cache disabled: %v", err)
		return nil
	}
	s.cache = c
	return c
}

// cacheDir resolves the configured cache directory against the repository root.
func (s *Service) cacheDir(root string) string {
	if filepath.IsAbs(s.config.Cache.Dir) {
		return s.config.Cache.Dir
	}
	return filepath.Join(root, s.config.Cache.Dir)
}

// Cache opens the history cache of the repository containing path. The
// returned cache is disabled when the configuration turns caching off.
func (s *Service) Cache(path string) (*cache.Cache, error) {
	if s.cache != nil {
		return s.cache, nil
	}
	repo, err := scansvc.New(scansvc.WithOpener(s.opener)).OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", churn.ErrNotRepository, err)
	}
	return cache.New(s.cacheDir(repo.RepoPath()), s.config.Cache.TTL, s.config.Cache.Enabled)
}
