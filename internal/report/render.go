// Package report turns an assembled change-frequency report into output
// renderables. It formats values but never recomputes them.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/panbanda/churnscope/internal/output"
	"github.com/panbanda/churnscope/pkg/analyzer/correlation"
	"github.com/panbanda/churnscope/pkg/analyzer/frequency"
	"github.com/panbanda/churnscope/pkg/analyzer/risk"
	"github.com/panbanda/churnscope/pkg/threshold"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Title is the heading of every rendered report.
const Title = "File Change Frequency"

var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
)

// Build returns the renderable form of r. JSON and TOON output serialize r itself.
func Build(r *frequency.Report) *output.Report {
	sections := []output.Renderable{
		summarySection(r),
		&distributionTable{
			title:  "Change Frequency Distribution",
			labels: r.ChangeThresholds.Labels,
			stats:  r.Overall,
		},
		&groupTable{
			title:     "Change Frequency per Extension",
			keyHeader: "Extension",
			labels:    r.ChangeThresholds.Labels,
			stats:     r.PerExtension,
		},
	}

	for _, d := range r.PerDecomposition {
		sections = append(sections, &groupTable{
			title:     fmt.Sprintf("Change Frequency per Component (%s)", d.Name),
			keyHeader: "Component",
			labels:    r.ChangeThresholds.Labels,
			stats:     d.Components,
		})
	}

	sections = append(sections,
		&distributionTable{
			title:  "Contributors Distribution",
			labels: r.ContributorThresholds.Labels,
			stats:  r.ContributorsOverall,
		},
		&fileTable{title: "Most Frequently Changed Files", files: r.MostChanged, risk: changeRisk},
		&fileTable{title: "Files with Most Contributors", files: r.MostContributors, risk: contributorRisk},
	)

	if len(r.Correlations) > 0 {
		sections = append(sections, correlationSection(r.Correlations))
	}

	return &output.Report{Title: Title, Sections: sections, Data: r}
}

// Number formats n with thousands separators.
func Number(n int) string {
	return printer.Sprintf("%d", n)
}

// Percent formats part as a share of total.
func Percent(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
}

// BucketName is the display name of a bucket, e.g. "Very High".
func BucketName(b threshold.Bucket) string {
	return titler.String(strings.ReplaceAll(b.String(), "_", " "))
}

// Coefficient renders a correlation result, keeping "not computable"
// distinct from a coefficient near zero.
func Coefficient(res correlation.Result) string {
	if v, ok := res.Value(); ok {
		return fmt.Sprintf("%.2f", v)
	}
	return "not computable"
}

func summarySection(r *frequency.Report) *output.Section {
	s := r.Summary
	lines := []string{
		fmt.Sprintf("Repository:        %s", r.RepositoryRoot),
		fmt.Sprintf("Period:            last %d days", r.PeriodDays),
		fmt.Sprintf("Generated:         %s", r.GeneratedAt.Format(time.RFC3339)),
		fmt.Sprintf("Files changed:     %s", Number(s.FilesChanged)),
		fmt.Sprintf("Files analyzed:    %s (%s not in scanned source)", Number(s.FilesAnalyzed), Number(s.FilesSkipped)),
		fmt.Sprintf("Lines of code:     %s", Number(s.AnalyzedLOC)),
		fmt.Sprintf("Commits:           %s", Number(s.TotalCommits)),
		fmt.Sprintf("Contributors:      %s", Number(s.TotalContributors)),
	}
	if s.SourceFiles > 0 {
		lines = append(lines, fmt.Sprintf("Source tree:       %s files, %s lines", Number(s.SourceFiles), Number(s.SourceLOC)))
	}
	return &output.Section{
		Title:   "Summary",
		Content: strings.Join(lines, "\n"),
		Data:    s,
	}
}

func correlationSection(cs []frequency.Correlation) *output.Section {
	sec := &output.Section{Title: "Correlations", Data: cs}
	for _, c := range cs {
		sec.Sections = append(sec.Sections, output.Section{
			Title: c.Name,
			Content: fmt.Sprintf("Pearson r (%s vs. %s): %s over %s files",
				c.XLabel, c.YLabel, Coefficient(c.Result), Number(len(c.Result.Samples))),
		})
	}
	return sec
}

// distributionTable shows one distribution, a row per bucket.
type distributionTable struct {
	title  string
	labels []string
	stats  risk.Stats
}

func (d *distributionTable) table(colored bool) *output.Table {
	total := d.stats.TotalValue()
	rows := make([][]string, 0, threshold.BucketCount)
	for _, b := range threshold.Buckets() {
		rows = append(rows, []string{
			bucketLabel(d.labels, b, colored),
			Number(d.stats.Count(b)),
			Number(d.stats.Value(b)),
			Percent(d.stats.Value(b), total),
		})
	}
	footer := []string{"Total", Number(d.stats.TotalCount()), Number(total), Percent(total, total)}
	return output.NewTable(d.title, []string{"Range", "Files", "LOC", "Share"}, rows, footer, d.stats)
}

func (d *distributionTable) RenderText(w io.Writer, colored bool) error {
	return d.table(colored).RenderText(w, colored)
}

func (d *distributionTable) RenderMarkdown(w io.Writer) error {
	return d.table(false).RenderMarkdown(w)
}

func (d *distributionTable) RenderData() any { return d.stats }

// groupTable shows one distribution per grouping key, a column per bucket.
// Cells read "LOC (files)".
type groupTable struct {
	title     string
	keyHeader string
	labels    []string
	stats     []risk.Stats
}

func (g *groupTable) table(colored bool) *output.Table {
	headers := make([]string, 0, threshold.BucketCount+2)
	headers = append(headers, g.keyHeader)
	for _, b := range threshold.Buckets() {
		headers = append(headers, bucketLabel(g.labels, b, colored))
	}
	headers = append(headers, "Total")

	rows := make([][]string, 0, len(g.stats))
	for _, s := range g.stats {
		row := make([]string, 0, len(headers))
		row = append(row, s.Key)
		for _, b := range threshold.Buckets() {
			row = append(row, cell(s.Value(b), s.Count(b)))
		}
		row = append(row, cell(s.TotalValue(), s.TotalCount()))
		rows = append(rows, row)
	}
	return output.NewTable(g.title, headers, rows, nil, g.stats)
}

func cell(loc, files int) string {
	return fmt.Sprintf("%s (%s)", Number(loc), Number(files))
}

func (g *groupTable) RenderText(w io.Writer, colored bool) error {
	if len(g.stats) == 0 {
		return nil
	}
	return g.table(colored).RenderText(w, colored)
}

func (g *groupTable) RenderMarkdown(w io.Writer) error {
	if len(g.stats) == 0 {
		return nil
	}
	return g.table(false).RenderMarkdown(w)
}

func (g *groupTable) RenderData() any { return g.stats }

func changeRisk(f frequency.File) threshold.Bucket      { return f.ChangeRisk }
func contributorRisk(f frequency.File) threshold.Bucket { return f.ContributorRisk }

// fileTable lists files with the bucket picked by risk.
type fileTable struct {
	title string
	files []frequency.File
	risk  func(frequency.File) threshold.Bucket
}

func (f *fileTable) table(colored bool) *output.Table {
	rows := make([][]string, 0, len(f.files))
	for _, file := range f.files {
		b := f.risk(file)
		name := BucketName(b)
		if colored {
			name = output.BucketColor(b, name)
		}
		rows = append(rows, []string{
			file.Path,
			Number(file.Changes),
			Number(file.Contributors),
			Number(file.LOC),
			day(file.FirstChange),
			day(file.LastChange),
			name,
		})
	}
	headers := []string{"File", "Changes", "Contributors", "LOC", "First Change", "Last Change", "Risk"}
	return output.NewTable(f.title, headers, rows, nil, f.files)
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}

func (f *fileTable) RenderText(w io.Writer, colored bool) error {
	if len(f.files) == 0 {
		return nil
	}
	return f.table(colored).RenderText(w, colored)
}

func (f *fileTable) RenderMarkdown(w io.Writer) error {
	if len(f.files) == 0 {
		return nil
	}
	return f.table(false).RenderMarkdown(w)
}

func (f *fileTable) RenderData() any { return f.files }

func bucketLabel(labels []string, b threshold.Bucket, colored bool) string {
	label := BucketName(b)
	if int(b) < len(labels) && labels[b] != "" {
		label = labels[b]
	}
	if colored {
		return output.BucketColor(b, label)
	}
	return label
}
