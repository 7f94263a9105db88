package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerResources adds MCP resource definitions to the server. Resources
// provide read-only data that LLM clients can load into their context.
func (s *MCPServer) registerResources(srv *server.MCPServer) {

	srv.AddResource(
		mcp.NewResource(
			"opforge://types",
			"Generated Types",
			mcp.WithResourceDescription(
				"List of every type in the generated bundle with its operation "+
					"names and build fingerprint.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handleTypesResource,
	)

	srv.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"opforge://unit/{type}",
			"Generated Unit",
			mcp.WithTemplateDescription(
				"The full generated unit for one type: operation plans, ordinal "+
					"schema, hook capabilities, and diagnostics.",
			),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleUnitResource,
	)
}

func (s *MCPServer) handleTypesResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	type typeInfo struct {
		Name        string   `json:"name"`
		Operations  []string `json:"operations"`
		Fingerprint string   `json:"fingerprint"`
	}

	items := make([]typeInfo, len(s.units))
	for i, u := range s.units {
		ops := make([]string, len(u.Plans))
		for j, p := range u.Plans {
			ops[j] = p.Name
		}
		items[i] = typeInfo{Name: u.TypeName, Operations: ops, Fingerprint: u.Fingerprint}
	}

	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal types: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

func (s *MCPServer) handleUnitResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	uri := request.Params.URI
	typeName := strings.TrimPrefix(uri, "opforge://unit/")
	if typeName == uri || typeName == "" {
		return nil, fmt.Errorf("invalid unit URI %q", uri)
	}

	unit := s.unit(typeName)
	if unit == nil {
		return nil, fmt.Errorf("type %q not found in bundle", typeName)
	}

	b, err := json.MarshalIndent(unit, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal unit: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
