package churn

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

const secondsPerDay = 24 * 60 * 60

// FileHistory is the modification history of a single file: the days it
// changed on and the people who changed it.
type FileHistory struct {
	Path string

	days         *roaring.Bitmap
	contributors map[string]struct{}
	commits      int
	linesAdded   int
	linesDeleted int
}

// NewFileHistory creates an empty history for path.
func NewFileHistory(path string) *FileHistory {
	return &FileHistory{
		Path:         path,
		days:         roaring.New(),
		contributors: make(map[string]struct{}),
	}
}

// Record adds one commit touching the file.
func (f *FileHistory) Record(when time.Time, contributor string, added, deleted int) {
	f.days.Add(dayOf(when))
	if c := normalizeContributor(contributor); c != "" {
		f.contributors[c] = struct{}{}
	}
	f.commits++
	f.linesAdded += added
	f.linesDeleted += deleted
}

// ChangeCount is the number of distinct days with at least one commit.
func (f *FileHistory) ChangeCount() int { return int(f.days.GetCardinality()) }

// ContributorCount is the number of distinct contributors.
func (f *FileHistory) ContributorCount() int { return len(f.contributors) }

// Commits is the number of commits that touched the file.
func (f *FileHistory) Commits() int { return f.commits }

// LinesAdded is the total number of added lines.
func (f *FileHistory) LinesAdded() int { return f.linesAdded }

// LinesDeleted is the total number of deleted lines.
func (f *FileHistory) LinesDeleted() int { return f.linesDeleted }

// Dates returns the change days in ascending order, as UTC midnights.
func (f *FileHistory) Dates() []time.Time {
	days := f.days.ToArray()
	out := make([]time.Time, len(days))
	for i, d := range days {
		out[i] = dayTime(d)
	}
	return out
}

// Contributors returns the contributor identifiers sorted.
func (f *FileHistory) Contributors() []string {
	out := make([]string, 0, len(f.contributors))
	for c := range f.contributors {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// FirstChange returns the earliest change day, or the zero time for an empty history.
func (f *FileHistory) FirstChange() time.Time {
	if f.days.IsEmpty() {
		return time.Time{}
	}
	return dayTime(f.days.Minimum())
}

// LastChange returns the latest change day, or the zero time for an empty history.
func (f *FileHistory) LastChange() time.Time {
	if f.days.IsEmpty() {
		return time.Time{}
	}
	return dayTime(f.days.Maximum())
}

type fileHistoryJSON struct {
	Path         string   `json:"path"`
	Days         []uint32 `json:"days"`
	Contributors []string `json:"contributors"`
	Commits      int      `json:"commits"`
	LinesAdded   int      `json:"additions"`
	LinesDeleted int      `json:"deletions"`
}

// MarshalJSON encodes the history with days as integers since the Unix epoch.
func (f *FileHistory) MarshalJSON() ([]byte, error) {
	return json.Marshal(fileHistoryJSON{
		Path:         f.Path,
		Days:         f.days.ToArray(),
		Contributors: f.Contributors(),
		Commits:      f.commits,
		LinesAdded:   f.linesAdded,
		LinesDeleted: f.linesDeleted,
	})
}

// UnmarshalJSON decodes a history written by MarshalJSON.
func (f *FileHistory) UnmarshalJSON(data []byte) error {
	var raw fileHistoryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = *NewFileHistory(raw.Path)
	f.days.AddMany(raw.Days)
	for _, c := range raw.Contributors {
		f.contributors[c] = struct{}{}
	}
	f.commits = raw.Commits
	f.linesAdded = raw.LinesAdded
	f.linesDeleted = raw.LinesDeleted
	return nil
}

// Summary provides aggregate statistics over all histories.
type Summary struct {
	TotalFilesChanged int `json:"total_files_changed"`
	TotalCommits      int `json:"total_commits"`
	TotalContributors int `json:"total_contributors"`
	TotalAdditions    int `json:"total_additions"`
	TotalDeletions    int `json:"total_deletions"`
}

// Analysis is the collected history of every file changed in the period.
type Analysis struct {
	GeneratedAt    time.Time      `json:"generated_at"`
	PeriodDays     int            `json:"period_days"`
	RepositoryRoot string         `json:"repository_root"`
	Files          []*FileHistory `json:"files"`
	Summary        Summary        `json:"summary"`
}

// HasContributors reports whether any file has at least one contributor.
func (a *Analysis) HasContributors() bool {
	for _, f := range a.Files {
		if f.ContributorCount() > 0 {
			return true
		}
	}
	return false
}

// Lookup returns the history for path, if any.
func (a *Analysis) Lookup(path string) (*FileHistory, bool) {
	i := sort.Search(len(a.Files), func(i int) bool { return a.Files[i].Path >= path })
	if i < len(a.Files) && a.Files[i].Path == path {
		return a.Files[i], true
	}
	return nil, false
}

func dayOf(t time.Time) uint32 {
	sec := t.UTC().Unix()
	if sec < 0 {
		return 0
	}
	return uint32(sec / secondsPerDay)
}

func dayTime(d uint32) time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

func normalizeContributor(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
