package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/churnscope/internal/output"
	"github.com/panbanda/churnscope/internal/testutil"
	"github.com/panbanda/churnscope/pkg/analyzer/frequency"
	"github.com/panbanda/churnscope/pkg/config"
)

func testServer() *Server {
	cfg := config.DefaultConfig()
	cfg.Analysis.NativeGit = false
	cfg.Cache.Enabled = false
	return NewServer("1.0.0-test", cfg, nil)
}

func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test", nil, nil)
	if server == nil || server.server == nil {
		t.Fatal("NewServer() returned nil or has nil server")
	}
	if server.config == nil || server.logger == nil {
		t.Error("NewServer() should default config and logger")
	}
}

func TestToolDescription(t *testing.T) {
	desc := describeChangeFrequency()
	for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
		if !strings.Contains(desc, section) {
			t.Errorf("description missing %s section", section)
		}
	}
}

func TestGetPath(t *testing.T) {
	if got := getPath(ChangeFrequencyInput{}); got != "." {
		t.Errorf("getPath() = %q, want %q", got, ".")
	}
	if got := getPath(ChangeFrequencyInput{Path: "/repo"}); got != "/repo" {
		t.Errorf("getPath() = %q, want %q", got, "/repo")
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		format   string
		expected output.Format
	}{
		{"", output.FormatTOON},
		{"json", output.FormatJSON},
		{"markdown", output.FormatMarkdown},
		{"md", output.FormatMarkdown},
		{"toon", output.FormatTOON},
		{"xml", output.FormatTOON},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := getFormat(ChangeFrequencyInput{Format: tt.format}); got != tt.expected {
				t.Errorf("getFormat(%q) = %v, want %v", tt.format, got, tt.expected)
			}
		})
	}
}

func TestToolError(t *testing.T) {
	result, _, err := toolError("test error message")
	if err != nil {
		t.Fatalf("toolError returned unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("toolError result.IsError should be true")
	}
	text := resultText(t, result)
	if text != "Error: test error message" {
		t.Errorf("toolError text = %q", text)
	}
}

func TestToolResult(t *testing.T) {
	table := output.NewTable("Sample", []string{"key"}, [][]string{{"value"}}, nil, map[string]int{"num": 42})
	result, _, err := toolResult(table, output.FormatJSON)
	if err != nil {
		t.Fatalf("toolResult returned error: %v", err)
	}
	if result.IsError {
		t.Error("toolResult.IsError should be false")
	}
	if text := resultText(t, result); !strings.Contains(text, `"num": 42`) {
		t.Errorf("toolResult text = %q", text)
	}
}

func TestHandleAnalyzeChangeFrequency(t *testing.T) {
	repo := createTestRepo(t)

	result, _, err := testServer().handleAnalyzeChangeFrequency(context.Background(), nil, ChangeFrequencyInput{
		Path:   repo,
		Days:   30,
		Format: "json",
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("handler returned tool error: %s", resultText(t, result))
	}

	var report frequency.Report
	if err := json.Unmarshal([]byte(resultText(t, result)), &report); err != nil {
		t.Fatalf("result is not a JSON report: %v", err)
	}
	if report.PeriodDays != 30 {
		t.Errorf("PeriodDays = %d, want 30", report.PeriodDays)
	}
	if report.Summary.FilesAnalyzed != 1 {
		t.Errorf("FilesAnalyzed = %d, want 1", report.Summary.FilesAnalyzed)
	}
	if len(report.MostChanged) != 1 || report.MostChanged[0].Path != "main.go" {
		t.Errorf("MostChanged = %+v", report.MostChanged)
	}
}

func TestHandleAnalyzeChangeFrequency_Markdown(t *testing.T) {
	repo := createTestRepo(t)

	result, _, err := testServer().handleAnalyzeChangeFrequency(context.Background(), nil, ChangeFrequencyInput{
		Path:   repo,
		Format: "markdown",
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if text := resultText(t, result); !strings.HasPrefix(text, "# File Change Frequency") {
		t.Errorf("unexpected markdown output: %q", text)
	}
}

func TestHandleAnalyzeChangeFrequency_NotRepository(t *testing.T) {
	result, _, err := testServer().handleAnalyzeChangeFrequency(context.Background(), nil, ChangeFrequencyInput{
		Path: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected a tool error outside a repository")
	}
}

func TestHandleAnalyzeChangeFrequency_NegativeArguments(t *testing.T) {
	result, _, _ := testServer().handleAnalyzeChangeFrequency(context.Background(), nil, ChangeFrequencyInput{Days: -1})
	if !result.IsError {
		t.Error("expected a tool error for negative days")
	}
}

func TestLoadPrompts(t *testing.T) {
	defs := loadPrompts()
	if len(defs) == 0 {
		t.Fatal("no prompts loaded")
	}
	for _, def := range defs {
		t.Run(def.Name, func(t *testing.T) {
			if def.Description == "" {
				t.Error("prompt description is empty")
			}
			if def.Body == "" {
				t.Error("prompt body is empty")
			}
			if !strings.Contains(def.Body, "analyze_change_frequency") {
				t.Error("prompt should reference the analysis tool")
			}
		})
	}
}

func TestPromptHandler(t *testing.T) {
	def := promptDefinition{
		Name: "sample",
		promptFrontmatter: promptFrontmatter{
			Description: "sample prompt",
			Arguments:   []promptArgument{{Name: "path", Default: "."}, {Name: "days", Default: "90"}},
		},
		Body: "Review {{path}} over {{days}} days.",
	}

	req := &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{
		Name:      "sample",
		Arguments: map[string]string{"path": "src"},
	}}
	result, err := makePromptHandler(def)(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.Description != "sample prompt" {
		t.Errorf("Description = %q", result.Description)
	}
	if len(result.Messages) != 1 || result.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", result.Messages)
	}
	text, ok := result.Messages[0].Content.(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Messages[0].Content)
	}
	if text.Text != "Review src over 90 days." {
		t.Errorf("text = %q", text.Text)
	}
}

func TestParseFrontmatter(t *testing.T) {
	fm, body, ok := parseFrontmatter([]byte("---\ndescription: hello\n---\n\nbody text\n"))
	if !ok || fm.Description != "hello" || body != "body text\n" {
		t.Errorf("parseFrontmatter() = %+v, %q, %v", fm, body, ok)
	}

	if _, _, ok := parseFrontmatter([]byte("no header")); ok {
		t.Error("content without frontmatter should not parse")
	}
	if _, _, ok := parseFrontmatter([]byte("---\ndescription: [\n---\nbody")); ok {
		t.Error("invalid YAML should not parse")
	}
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("")
	if err != nil {
		t.Fatalf("GenerateManifest() error = %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if m.Version != "0.0.0" {
		t.Errorf("Version = %q, want 0.0.0", m.Version)
	}
	if len(m.Packages) != 1 || m.Packages[0].Identifier != "ghcr.io/panbanda/churnscope:0.0.0" {
		t.Errorf("Packages = %+v", m.Packages)
	}
	if m.Packages[0].Transport.Type != "stdio" || m.Packages[0].PackageArguments[0].Value != "mcp" {
		t.Errorf("package should start the stdio server: %+v", m.Packages[0])
	}

	data, err = GenerateManifest("v1.4.0")
	if err != nil {
		t.Fatalf("GenerateManifest() error = %v", err)
	}
	m = Manifest{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if m.Version != "1.4.0" || m.Repository == nil || m.Repository.Source != "github" {
		t.Errorf("manifest = %+v", m)
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is not TextContent: %T", result.Content[0])
	}
	return text.Text
}

// createTestRepo creates a repository with one recent commit of main.go.
func createTestRepo(t *testing.T) string {
	t.Helper()
	repo := testutil.NewRepo(t)
	repo.Commit("test@example.com", time.Now().Add(-time.Hour), map[string]string{
		"main.go": "package main\n\nfunc main() {}\n",
	})
	return repo.Dir
}
