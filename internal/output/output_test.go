package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/panbanda/churnscope/pkg/threshold"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"TEXT", FormatText},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"TOON", FormatTOON},
		{"", FormatText},
		{"unknown", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseFormat(tt.input)
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	f, err := NewFormatter(FormatJSON, path, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	if f.Colored() {
		t.Error("file output should never be colored")
	}
	if err := f.Output(map[string]int{"files": 3}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), `"files": 3`) {
		t.Errorf("unexpected file content: %s", data)
	}
}

func TestNewFormatterInvalidPath(t *testing.T) {
	_, err := NewFormatter(FormatText, "/nonexistent/dir/out.txt", false)
	if err == nil {
		t.Error("NewFormatter() should fail for an unwritable path")
	}
}

func TestTableRenderText(t *testing.T) {
	tests := []struct {
		name  string
		table *Table
		want  []string
	}{
		{
			name: "simple_table",
			table: NewTable(
				"Most Changed Files",
				[]string{"File", "Changes", "LOC"},
				[][]string{
					{"core/engine.go", "30", "900"},
					{"api/handler.go", "12", "200"},
				},
				nil,
				nil,
			),
			want: []string{"Most Changed Files", "FILE", "CHANGES", "core/engine.go", "900"},
		},
		{
			name: "table_with_footer",
			table: NewTable(
				"Distribution",
				[]string{"Bucket", "Files"},
				[][]string{{"1-5", "10"}},
				[]string{"Total", "10"},
				nil,
			),
			want: []string{"Distribution", "BUCKET", "1-5", "Total"},
		},
		{
			name:  "empty_table",
			table: NewTable("Empty", []string{"Col1", "Col2"}, [][]string{}, nil, nil),
			want:  []string{"Empty", "COL 1", "COL 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.table.RenderText(&buf, false); err != nil {
				t.Fatalf("RenderText() error: %v", err)
			}

			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("RenderText() missing %q in output:\n%s", want, out)
				}
			}
		})
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := NewTable(
		"Per Extension",
		[]string{"Extension", "Files"},
		[][]string{{"go", "3"}, {"sql", "1"}},
		[]string{"Total", "4"},
		nil,
	)

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}

	want := "## Per Extension\n\n| Extension | Files |\n| --- | --- |\n| go | 3 |\n| sql | 1 |\n| Total | 4 |\n\n"
	if buf.String() != want {
		t.Errorf("RenderMarkdown() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestTableRenderData(t *testing.T) {
	table := NewTable("", []string{"File", "Changes"}, [][]string{{"a.go", "3"}}, nil, nil)
	rows, ok := table.RenderData().([]map[string]string)
	if !ok {
		t.Fatalf("RenderData() type = %T", table.RenderData())
	}
	if rows[0]["File"] != "a.go" || rows[0]["Changes"] != "3" {
		t.Errorf("RenderData() = %v", rows)
	}

	raw := map[string]int{"x": 1}
	withData := NewTable("", nil, nil, nil, raw)
	if got := withData.RenderData().(map[string]int); got["x"] != 1 {
		t.Errorf("RenderData() should return wrapped data, got %v", got)
	}
}

func TestSectionRender(t *testing.T) {
	s := &Section{
		Title:   "Correlations",
		Content: "File Size vs. Number of Changes: 0.82",
		Sections: []Section{
			{Title: "Samples", Content: "4 files"},
		},
	}

	var text bytes.Buffer
	if err := s.RenderText(&text, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	for _, want := range []string{"Correlations\n============", "Samples\n-------", "4 files"} {
		if !strings.Contains(text.String(), want) {
			t.Errorf("RenderText() missing %q in:\n%s", want, text.String())
		}
	}

	var md bytes.Buffer
	if err := s.RenderMarkdown(&md); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	if !strings.Contains(md.String(), "## Correlations") || !strings.Contains(md.String(), "### Samples") {
		t.Errorf("RenderMarkdown() heading levels wrong:\n%s", md.String())
	}
}

func TestReportRender(t *testing.T) {
	r := &Report{
		Title: "Change Frequency",
		Sections: []Renderable{
			NewTable("Overall", []string{"Bucket"}, [][]string{{"1-5"}}, nil, nil),
			&Section{Title: "Notes", Content: "none"},
		},
	}

	var text bytes.Buffer
	if err := r.RenderText(&text, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	if !strings.HasPrefix(text.String(), "Change Frequency\n") {
		t.Errorf("RenderText() should start with title:\n%s", text.String())
	}

	var md bytes.Buffer
	if err := r.RenderMarkdown(&md); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	if !strings.HasPrefix(md.String(), "# Change Frequency\n\n## Overall") {
		t.Errorf("RenderMarkdown() unexpected:\n%s", md.String())
	}

	data := r.RenderData().(map[string]any)
	if data["title"] != "Change Frequency" {
		t.Errorf("RenderData() title = %v", data["title"])
	}
	if parts := data["sections"].([]any); len(parts) != 2 {
		t.Errorf("RenderData() sections = %d, want 2", len(parts))
	}
}

func TestFormatterOutputRenderable(t *testing.T) {
	table := NewTable("T", []string{"File", "Changes"}, [][]string{{"a.go", "7"}}, nil, map[string]int{"a.go": 7})

	tests := []struct {
		format Format
		want   string
	}{
		{FormatText, "a.go"},
		{FormatMarkdown, "| a.go | 7 |"},
		{FormatJSON, `"a.go": 7`},
		{FormatTOON, "a.go: 7"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			f := NewWriterFormatter(tt.format, &buf, false)
			if err := f.Output(table); err != nil {
				t.Fatalf("Output() error: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("Output(%s) missing %q in:\n%s", tt.format, tt.want, buf.String())
			}
		})
	}
}

func TestFormatterOutputRaw(t *testing.T) {
	data := map[string]any{"files": 2}

	var buf bytes.Buffer
	f := NewWriterFormatter(FormatJSON, &buf, false)
	if err := f.Output(data); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	buf.Reset()
	f = NewWriterFormatter(FormatMarkdown, &buf, false)
	if err := f.Output(data); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "```json\n") {
		t.Errorf("markdown raw output should be fenced:\n%s", buf.String())
	}
}

func TestMarshalTOON(t *testing.T) {
	out, err := MarshalTOON(map[string]any{"period_days": 90})
	if err != nil {
		t.Fatalf("MarshalTOON() error: %v", err)
	}
	if !strings.Contains(string(out), "period_days: 90") {
		t.Errorf("MarshalTOON() = %q", out)
	}
}

func TestBucketColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	for _, b := range threshold.Buckets() {
		got := BucketColor(b, "x")
		if got == "x" || !strings.Contains(got, "x") {
			t.Errorf("BucketColor(%s) = %q, want colored text", b, got)
		}
	}
	if got := BucketColor(threshold.Bucket(99), "x"); got != "x" {
		t.Errorf("unknown bucket should be uncolored, got %q", got)
	}
}
