// Package mcpserver exposes the ideaforge generators as Model Context
// Protocol tools, served over stdio with the official MCP Go SDK.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Name is the implementation name announced to MCP clients.
const Name = "ideaforge"

// Server answers MCP tool calls with the registered tools.
type Server struct {
	server *mcp.Server
	log    *slog.Logger
}

// New builds a Server announcing version and registers tools on it. A nil
// logger means slog.Default().
func New(version string, log *slog.Logger, tools ...Tool) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil),
		log:    log,
	}

	for _, t := range tools {
		s.server.AddTool(&mcp.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		}, s.call(t))
	}

	return s
}

// ServeStdio answers requests on the process stdin and stdout until ctx is
// cancelled or the client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.run(ctx, &mcp.StdioTransport{})
}

func (s *Server) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// call adapts t to the SDK. A failing tool yields an IsError result carrying
// the message, never a protocol error.
func (s *Server) call(t Tool) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}

		start := time.Now()
		text, err := t.Handler(ctx, args)
		log := s.log.With("tool", t.Name, "duration", time.Since(start))

		if err != nil {
			log.ErrorContext(ctx, "tool call failed", "error", err)
			return textResult(err.Error(), true), nil
		}

		log.InfoContext(ctx, "tool call finished", "bytes", len(text))

		return textResult(text, false), nil
	}
}

func textResult(text string, isErr bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isErr,
	}
}
