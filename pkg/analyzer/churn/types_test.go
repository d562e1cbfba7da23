package churn

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHistory_Record(t *testing.T) {
	fh := NewFileHistory("a.go")
	base := time.Date(2024, 1, 10, 23, 30, 0, 0, time.UTC)

	fh.Record(base, "Alice@x.io", 3, 1)
	fh.Record(base.Add(40*time.Minute), "alice@x.io ", 1, 0) // next UTC day
	fh.Record(base.Add(-time.Hour), "bob@x.io", 0, 2)
	fh.Record(base.AddDate(0, 0, 5), "", 1, 1)

	assert.Equal(t, 3, fh.ChangeCount())
	assert.Equal(t, 4, fh.Commits())
	assert.Equal(t, []string{"alice@x.io", "bob@x.io"}, fh.Contributors())
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), fh.FirstChange())
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), fh.LastChange())
	assert.Len(t, fh.Dates(), 3)
}

func TestFileHistory_Empty(t *testing.T) {
	fh := NewFileHistory("empty.go")

	assert.Zero(t, fh.ChangeCount())
	assert.Zero(t, fh.ContributorCount())
	assert.True(t, fh.FirstChange().IsZero())
	assert.True(t, fh.LastChange().IsZero())
	assert.Empty(t, fh.Dates())
}

func TestFileHistory_JSONRoundTrip(t *testing.T) {
	day := time.Date(2023, 7, 4, 8, 0, 0, 0, time.UTC)
	orig := NewFileHistory("pkg/a.go")
	orig.Record(day, "a@x.io", 4, 2)
	orig.Record(day.AddDate(0, 1, 0), "b@x.io", 1, 0)

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var decoded FileHistory
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, orig.Path, decoded.Path)
	assert.Equal(t, orig.Dates(), decoded.Dates())
	assert.Equal(t, orig.Contributors(), decoded.Contributors())
	assert.Equal(t, orig.Commits(), decoded.Commits())
	assert.Equal(t, orig.LinesAdded(), decoded.LinesAdded())
	assert.Equal(t, orig.LinesDeleted(), decoded.LinesDeleted())
}

func TestAnalysis_Lookup(t *testing.T) {
	a := &Analysis{Files: []*FileHistory{
		NewFileHistory("a.go"),
		NewFileHistory("b/c.go"),
		NewFileHistory("z.go"),
	}}

	fh, ok := a.Lookup("b/c.go")
	require.True(t, ok)
	assert.Equal(t, "b/c.go", fh.Path)

	_, ok = a.Lookup("missing.go")
	assert.False(t, ok)
}
