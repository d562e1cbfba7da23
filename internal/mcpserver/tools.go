package mcpserver

import (
	"bytes"
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/churnscope/internal/output"
	"github.com/panbanda/churnscope/internal/report"
	"github.com/panbanda/churnscope/internal/service/analysis"
)

// ChangeFrequencyInput is the input of analyze_change_frequency.
type ChangeFrequencyInput struct {
	Path    string `json:"path,omitempty" jsonschema:"Path inside the repository to analyze. Defaults to the current directory."`
	Days    int    `json:"days,omitempty" jsonschema:"Number of days of git history to analyze. Defaults to the configured window."`
	Top     int    `json:"top,omitempty" jsonschema:"Number of files in each top list. Defaults to the configured value."`
	Format  string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
	NoCache bool   `json:"no_cache,omitempty" jsonschema:"Collect history again even if a cached copy exists."`
}

func getPath(input ChangeFrequencyInput) string {
	if input.Path == "" {
		return "."
	}
	return input.Path
}

func getFormat(input ChangeFrequencyInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data output.Renderable, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewWriterFormatter(format, &buf, false).Output(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toolResult(data output.Renderable, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleAnalyzeChangeFrequency(ctx context.Context, req *mcp.CallToolRequest, input ChangeFrequencyInput) (*mcp.CallToolResult, any, error) {
	if input.Days < 0 || input.Top < 0 {
		return toolError("days and top must not be negative")
	}

	svc := analysis.New(
		analysis.WithConfig(s.config),
		analysis.WithLogger(s.logger),
	)
	result, err := svc.AnalyzeChangeFrequency(ctx, getPath(input), analysis.ReportOptions{
		Days:    input.Days,
		Top:     input.Top,
		NoCache: input.NoCache,
	})
	if err != nil {
		return toolError(err.Error())
	}
	if result.Dirty {
		s.logger.Warn("working tree has uncommitted changes")
	}

	return toolResult(report.Build(result.Report), getFormat(input))
}
