package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/panbanda/churnscope/internal/testutil"
	"github.com/panbanda/churnscope/pkg/analyzer/frequency"
	"github.com/panbanda/churnscope/pkg/config"
	"github.com/panbanda/churnscope/pkg/threshold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `[analysis]
native_git = false

[cache]
enabled = false
`

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"churnscope"}, args...))
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "churnscope.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func createTestRepo(t *testing.T) string {
	t.Helper()
	repo := testutil.NewRepo(t)
	for i, name := range []string{"main.go", "util.go", "main.go"} {
		content := strings.Repeat("// line\n", i+1) + "package main\n"
		repo.Commit("test@example.com", time.Now().AddDate(0, 0, -(3-i)), map[string]string{name: content})
	}
	return repo.Dir
}

func TestReport_JSON(t *testing.T) {
	repo := createTestRepo(t)
	cfgPath := writeTestConfig(t, testConfig)

	stdout, _, err := runApp(t, "--config", cfgPath, "report", "--quiet", "--format", "json", "--days", "30", repo)
	require.NoError(t, err)

	var report frequency.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 30, report.PeriodDays)
	assert.Equal(t, 2, report.Summary.FilesAnalyzed)
	require.NotEmpty(t, report.MostChanged)
	assert.Equal(t, "main.go", report.MostChanged[0].Path)
	assert.Equal(t, 2, report.MostChanged[0].Changes)
	assert.Equal(t, threshold.Negligible, report.MostChanged[0].ChangeRisk)
}

func TestReport_OutputFile(t *testing.T) {
	repo := createTestRepo(t)
	cfgPath := writeTestConfig(t, testConfig)
	out := filepath.Join(t.TempDir(), "report.md")

	stdout, _, err := runApp(t, "-c", cfgPath, "report", "-q", "-f", "markdown", "-o", out, repo)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# File Change Frequency"))
	assert.NotContains(t, string(data), "\x1b[", "files never contain color codes")
}

func TestReport_Errors(t *testing.T) {
	cfgPath := writeTestConfig(t, testConfig)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"not a repository", []string{"-c", cfgPath, "report", "-q", t.TempDir()}, "not a git repository"},
		{"two paths", []string{"-c", cfgPath, "report", "a", "b"}, "at most one path"},
		{"negative days", []string{"-c", cfgPath, "report", "--days", "-1"}, "must not be negative"},
		{"invalid config", []string{"-c", writeTestConfig(t, "[thresholds.change_frequency]\nnegligible = 10\nlow = 5\nmedium = 50\nhigh = 100\n"), "report"}, "strictly increasing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runApp(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfgPath := writeTestConfig(t, testConfig)
	stdout, _, err := runApp(t, "-c", cfgPath, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration valid: "+cfgPath)

	bad := writeTestConfig(t, "[analysis]\nunknown_key = 1\n")
	_, stderr, err := runApp(t, "-c", bad, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, stderr, "Configuration validation failed")
}

func TestConfigShow(t *testing.T) {
	cfgPath := writeTestConfig(t, testConfig)
	stdout, _, err := runApp(t, "-c", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Configuration from: "+cfgPath)
	assert.Contains(t, stdout, "native_git = false")
	assert.Contains(t, stdout, "history_days = 365")
}

func TestCache(t *testing.T) {
	repo := createTestRepo(t)
	cfgPath := writeTestConfig(t, "[analysis]\nnative_git = false\n")

	_, _, err := runApp(t, "-c", cfgPath, "report", "-q", "-f", "json", repo)
	require.NoError(t, err)

	stdout, _, err := runApp(t, "-c", cfgPath, "cache", "stats", "-f", "json", repo)
	require.NoError(t, err)
	var stats struct {
		Entries int `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &stats))
	assert.Equal(t, 1, stats.Entries)

	stdout, _, err = runApp(t, "-c", cfgPath, "cache", "clear", repo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Cleared")
	_, err = os.Stat(filepath.Join(repo, ".churnscope", "cache"))
	assert.True(t, os.IsNotExist(err))

	stdout, _, err = runApp(t, "-c", writeTestConfig(t, testConfig), "cache", "stats", repo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "disabled")
}

func TestInit(t *testing.T) {
	for _, format := range []string{"toml", "yaml"} {
		t.Run(format, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), ".churnscope", "churnscope."+format)

			_, _, err := runApp(t, "init", "--format", format, "-o", out)
			require.NoError(t, err)

			cfg, err := config.Load(out)
			require.NoError(t, err)
			assert.Equal(t, config.DefaultConfig().Thresholds, cfg.Thresholds)

			_, _, err = runApp(t, "init", "--format", format, "-o", out)
			require.Error(t, err, "existing files are kept without --force")

			_, _, err = runApp(t, "init", "--format", format, "-o", out, "--force")
			require.NoError(t, err)
		})
	}
}

func TestInit_UnsupportedFormat(t *testing.T) {
	_, _, err := runApp(t, "init", "--format", "ini", "-o", filepath.Join(t.TempDir(), "x.ini"))
	require.Error(t, err)
}

func TestMCPManifest(t *testing.T) {
	stdout, _, err := runApp(t, "mcp", "manifest")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"name": "io.github.panbanda/churnscope"`)
}
