// ABOUTME: MCP stdio server for hosts that launch the gateway as a subprocess.
// ABOUTME: Registers the same tool descriptors and outcome mapping as the HTTP server.

package mcp

import (
	"context"
	"errors"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389/apollo-gateway/internal/packs"
)

// StdioConfig holds configuration for the stdio server.
type StdioConfig struct {
	Registry *packs.Registry
	Router   *packs.Router
	Logger   *slog.Logger
	// Capabilities limits the exposed tools; empty exposes every tool.
	Capabilities []string
}

// StdioServer serves the registry's tools over an MCP stdio session.
type StdioServer struct {
	server *mcpsdk.Server
	router *packs.Router
	logger *slog.Logger
}

// NewStdioServer creates a stdio server exposing the tools the capabilities allow.
func NewStdioServer(cfg StdioConfig) (*StdioServer, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Router == nil {
		return nil, errors.New("router is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &StdioServer{
		server: mcpsdk.NewServer(&mcpsdk.Implementation{Name: ServerName, Version: ServerVersion}, nil),
		router: cfg.Router,
		logger: logger.With("component", "mcp-stdio"),
	}

	caps := cfg.Capabilities
	if len(caps) == 0 {
		caps = allCapabilities(cfg.Registry)
	}
	for _, def := range cfg.Registry.GetToolsForCapabilities(caps) {
		s.server.AddTool(&mcpsdk.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, s.handler(def.Name))
		s.logger.Debug("registered stdio tool", "tool_name", def.Name)
	}

	return s, nil
}

// Run serves MCP on stdin/stdout until the client disconnects or ctx is done.
func (s *StdioServer) Run(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio")
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves MCP over an arbitrary transport.
func (s *StdioServer) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *StdioServer) handler(name string) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		outcome, err := outcomeFor(s.router.Invoke(ctx, name, req.Params.Arguments))
		if err != nil {
			s.logger.Warn("tool execution failed", "tool_name", name, "error", err)
			return nil, err
		}

		result := &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: outcome.Text}},
			IsError: outcome.IsError,
		}
		if outcome.StructuredContent != nil {
			result.StructuredContent = outcome.StructuredContent
		}
		return result, nil
	}
}
