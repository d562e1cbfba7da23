// Package frequency assembles the change-frequency report from collected
// file histories and the source line-count index.
package frequency

import (
	"fmt"
	"sort"
	"time"

	"github.com/panbanda/churnscope/pkg/analyzer/churn"
	"github.com/panbanda/churnscope/pkg/analyzer/correlation"
	"github.com/panbanda/churnscope/pkg/analyzer/risk"
	"github.com/panbanda/churnscope/pkg/decomposition"
	"github.com/panbanda/churnscope/pkg/threshold"
)

// DefaultTop is the length of the most-changed lists when Input.Top is unset.
const DefaultTop = 10

// Correlation names.
const (
	FileSizeVsChanges     = "File Size vs. Number of Changes"
	ContributorsVsChanges = "Number of Contributors vs. Number of Changes"
)

// LineCounter resolves a repository-relative path to its line count.
// A miss must report found=false rather than a zero count.
type LineCounter interface {
	Lookup(relPath string) (loc int, found bool)
}

// Input is everything Build needs. History, Sources and both threshold sets
// are required.
type Input struct {
	History               *churn.Analysis
	Sources               LineCounter
	ChangeThresholds      *threshold.Set
	ContributorThresholds *threshold.Set
	Extensions            []string
	Decompositions        *decomposition.Index
	Top                   int
}

// File is one analyzed file: a changed file that is also part of the
// scanned source.
type File struct {
	Path            string           `json:"path"`
	Changes         int              `json:"changes"`
	Contributors    int              `json:"contributors"`
	Commits         int              `json:"commits"`
	LOC             int              `json:"loc"`
	FirstChange     time.Time        `json:"first_change"`
	LastChange      time.Time        `json:"last_change"`
	ChangeRisk      threshold.Bucket `json:"change_risk"`
	ContributorRisk threshold.Bucket `json:"contributor_risk"`
}

// Thresholds is the rendering view of a threshold.Set.
type Thresholds struct {
	NegligibleMax int      `json:"negligible_max"`
	LowMax        int      `json:"low_max"`
	MediumMax     int      `json:"medium_max"`
	HighMax       int      `json:"high_max"`
	Labels        []string `json:"labels"`
}

func thresholdsOf(s *threshold.Set) Thresholds {
	return Thresholds{
		NegligibleMax: s.NegligibleMax(),
		LowMax:        s.LowMax(),
		MediumMax:     s.MediumMax(),
		HighMax:       s.HighMax(),
		Labels:        s.Labels(),
	}
}

// DecompositionStats is the per-component distribution of one logical decomposition.
type DecompositionStats struct {
	Name       string       `json:"name"`
	Components []risk.Stats `json:"components"`
}

// Correlation is a named correlation between two file attributes.
type Correlation struct {
	Name   string             `json:"name"`
	XLabel string             `json:"x_label"`
	YLabel string             `json:"y_label"`
	Result correlation.Result `json:"result"`
}

// Summary counts what went into the report.
type Summary struct {
	FilesChanged      int `json:"files_changed"`
	FilesAnalyzed     int `json:"files_analyzed"`
	FilesSkipped      int `json:"files_skipped"`
	AnalyzedLOC       int `json:"analyzed_loc"`
	TotalCommits      int `json:"total_commits"`
	TotalContributors int `json:"total_contributors"`
	// SourceFiles and SourceLOC describe the whole scanned tree, changed or
	// not. Build leaves them zero; the caller owning the scan fills them in.
	SourceFiles int `json:"source_files"`
	SourceLOC   int `json:"source_loc"`
}

// Report is the assembled change-frequency report. Renderers display it as is.
type Report struct {
	GeneratedAt           time.Time            `json:"generated_at"`
	PeriodDays            int                  `json:"period_days"`
	RepositoryRoot        string               `json:"repository_root"`
	ChangeThresholds      Thresholds           `json:"change_thresholds"`
	ContributorThresholds Thresholds           `json:"contributor_thresholds"`
	Summary               Summary              `json:"summary"`
	Overall               risk.Stats           `json:"overall"`
	PerExtension          []risk.Stats         `json:"per_extension"`
	PerDecomposition      []DecompositionStats `json:"per_decomposition"`
	ContributorsOverall   risk.Stats           `json:"contributors_overall"`
	MostChanged           []File               `json:"most_changed"`
	MostContributors      []File               `json:"most_contributors"`
	Correlations          []Correlation        `json:"correlations"`
}

// Build assembles the report. Changed files missing from the source index
// are left out of every distribution and correlation.
func Build(in Input) (*Report, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	files, err := in.analyzedFiles()
	if err != nil {
		return nil, err
	}

	changeItems := make([]risk.Item, len(files))
	contributorItems := make([]risk.Item, len(files))
	loc := 0
	for i, f := range files {
		changeItems[i] = risk.Item{Key: f.Path, Count: f.Changes, Value: f.LOC}
		contributorItems[i] = risk.Item{Key: f.Path, Count: f.Contributors, Value: f.LOC}
		loc += f.LOC
	}

	report := &Report{
		GeneratedAt:           in.History.GeneratedAt,
		PeriodDays:            in.History.PeriodDays,
		RepositoryRoot:        in.History.RepositoryRoot,
		ChangeThresholds:      thresholdsOf(in.ChangeThresholds),
		ContributorThresholds: thresholdsOf(in.ContributorThresholds),
		Summary: Summary{
			FilesChanged:      len(in.History.Files),
			FilesAnalyzed:     len(files),
			FilesSkipped:      len(in.History.Files) - len(files),
			AnalyzedLOC:       loc,
			TotalCommits:      in.History.Summary.TotalCommits,
			TotalContributors: in.History.Summary.TotalContributors,
		},
	}

	if report.Overall, err = risk.Aggregate(risk.OverallKey, changeItems, in.ChangeThresholds); err != nil {
		return nil, fmt.Errorf("overall distribution: %w", err)
	}
	if report.ContributorsOverall, err = risk.Aggregate(risk.OverallKey, contributorItems, in.ContributorThresholds); err != nil {
		return nil, fmt.Errorf("contributor distribution: %w", err)
	}

	report.PerExtension, err = risk.NewBuilder(in.ChangeThresholds, in.Extensions).Build(changeItems, risk.ByExtension)
	if err != nil {
		return nil, fmt.Errorf("extension distribution: %w", err)
	}

	if in.Decompositions != nil {
		for _, d := range in.Decompositions.All() {
			stats, err := risk.NewBuilder(in.ChangeThresholds, d.ComponentNames()).Build(changeItems, d.KeyFunc())
			if err != nil {
				return nil, fmt.Errorf("decomposition %q: %w", d.Name(), err)
			}
			report.PerDecomposition = append(report.PerDecomposition, DecompositionStats{Name: d.Name(), Components: stats})
		}
	}

	top := in.Top
	if top <= 0 {
		top = DefaultTop
	}
	report.MostChanged = topFiles(files, top, func(f File) int { return f.Changes })
	report.MostContributors = topFiles(files, top, func(f File) int { return f.Contributors })

	if in.History.HasContributors() {
		report.Correlations = in.correlations()
	}

	return report, nil
}

func (in Input) validate() error {
	switch {
	case in.History == nil:
		return fmt.Errorf("%w: history is required", threshold.ErrInvalidArgument)
	case in.Sources == nil:
		return fmt.Errorf("%w: source index is required", threshold.ErrInvalidArgument)
	case in.ChangeThresholds == nil:
		return fmt.Errorf("%w: change frequency thresholds are required", threshold.ErrInvalidArgument)
	case in.ContributorThresholds == nil:
		return fmt.Errorf("%w: contributor thresholds are required", threshold.ErrInvalidArgument)
	}
	return nil
}

func (in Input) analyzedFiles() ([]File, error) {
	files := make([]File, 0, len(in.History.Files))
	for _, h := range in.History.Files {
		loc, found := in.Sources.Lookup(h.Path)
		if !found {
			continue
		}
		f := File{
			Path:         h.Path,
			Changes:      h.ChangeCount(),
			Contributors: h.ContributorCount(),
			Commits:      h.Commits(),
			LOC:          loc,
			FirstChange:  h.FirstChange(),
			LastChange:   h.LastChange(),
		}
		var err error
		if f.ChangeRisk, err = in.ChangeThresholds.Classify(f.Changes); err != nil {
			return nil, fmt.Errorf("classify %q: %w", f.Path, err)
		}
		if f.ContributorRisk, err = in.ContributorThresholds.Classify(f.Contributors); err != nil {
			return nil, fmt.Errorf("classify %q: %w", f.Path, err)
		}
		files = append(files, f)
	}
	return files, nil
}

// correlations runs over every changed file, letting the LOC lookup decide
// which ones take part.
func (in Input) correlations() []Correlation {
	items := in.History.Files
	lines := func(h *churn.FileHistory) float64 {
		loc, _ := in.Sources.Lookup(h.Path)
		return float64(loc)
	}
	changes := func(h *churn.FileHistory) float64 { return float64(h.ChangeCount()) }
	contributors := func(h *churn.FileHistory) float64 { return float64(h.ContributorCount()) }
	label := func(h *churn.FileHistory) string { return h.Path }
	inSource := func(h *churn.FileHistory) bool {
		loc, found := in.Sources.Lookup(h.Path)
		return found && loc > 0
	}

	return []Correlation{
		{
			Name:   FileSizeVsChanges,
			XLabel: "lines of code",
			YLabel: "changes",
			Result: correlation.Correlate(items, lines, changes, label, inSource),
		},
		{
			Name:   ContributorsVsChanges,
			XLabel: "contributors",
			YLabel: "changes",
			Result: correlation.Correlate(items, contributors, changes, label, inSource),
		},
	}
}

// topFiles returns the n files with the highest metric, ties broken by path.
func topFiles(files []File, n int, metric func(File) int) []File {
	sorted := make([]File, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool {
		mi, mj := metric(sorted[i]), metric(sorted[j])
		if mi != mj {
			return mi > mj
		}
		return sorted[i].Path < sorted[j].Path
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
