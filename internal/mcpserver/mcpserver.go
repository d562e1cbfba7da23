// Package mcpserver exposes change-frequency analysis as MCP tools and prompts.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/churnscope/internal/logging"
	"github.com/panbanda/churnscope/pkg/config"
)

// Server wraps the MCP server and registers the churnscope tools.
type Server struct {
	server *mcp.Server
	config *config.Config
	logger *logging.Logger
}

// NewServer creates a new MCP server. A nil cfg uses the defaults.
func NewServer(version string, cfg *config.Config, logger *logging.Logger) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "churnscope",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, config: cfg, logger: logger}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_change_frequency",
		Description: describeChangeFrequency(),
	}, s.handleAnalyzeChangeFrequency)
}
