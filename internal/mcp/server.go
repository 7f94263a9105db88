// Package mcp exposes a generated bundle over the Model Context Protocol so
// AI agents can inspect operation plans, ordinal schemas, and build
// diagnostics without parsing unit JSON themselves.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/opforge/opforge/internal/model"
)

// MCPServer wraps the mcp-go server with inspection tools over one built
// bundle. The bundle is immutable for the lifetime of the server; rebuilds
// need a new server.
type MCPServer struct {
	units  []*model.GeneratedUnit
	logger *slog.Logger
	server *server.MCPServer
}

// NewMCPServer creates an MCPServer pre-loaded with the inspection tools and
// resources for the given units. The returned server is ready to serve over
// stdio or HTTP.
func NewMCPServer(units []*model.GeneratedUnit, logger *slog.Logger) *MCPServer {
	s := &MCPServer{
		units:  units,
		logger: logger,
	}

	mcpServer := server.NewMCPServer(
		"OpForge Build Inspector",
		"0.1.0",
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.server = mcpServer
	return s
}

// Server returns the underlying mcp-go MCPServer instance. Useful for
// advanced configuration or testing.
func (s *MCPServer) Server() *server.MCPServer {
	return s.server
}

// unit returns the generated unit for the named type, or nil.
func (s *MCPServer) unit(typeName string) *model.GeneratedUnit {
	for _, u := range s.units {
		if u.TypeName == typeName {
			return u
		}
	}
	return nil
}

func (s *MCPServer) typeNames() []string {
	names := make([]string, len(s.units))
	for i, u := range s.units {
		names[i] = u.TypeName
	}
	return names
}

// ServeStdio starts the MCP server in stdio mode. This is the primary
// integration path for MCP clients that launch the server as a subprocess.
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server in stdio mode", "types", len(s.units))
	return server.ServeStdio(s.server)
}

// ServeHTTP starts the MCP server in Streamable HTTP mode, listening on
// the given address (e.g. ":3001").
func (s *MCPServer) ServeHTTP(addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.server)
	s.logger.Info("MCP HTTP server starting", "addr", addr)
	return httpServer.Start(addr)
}

func readOnlyAnnotation() mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		ReadOnlyHint: boolPtr(true),
	}
}

func boolPtr(b bool) *bool {
	return &b
}
