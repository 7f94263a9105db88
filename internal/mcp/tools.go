package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/opforge/opforge/internal/diag"
)

// registerTools registers the bundle inspection tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	srv.AddTool(
		mcp.NewTool("opforge_list_types",
			mcp.WithDescription(
				"List every type in the generated bundle with its operation count, "+
					"fingerprint, and whether an ordinal schema was generated. Use this "+
					"first to discover what the build produced.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleListTypes,
	)

	srv.AddTool(
		mcp.NewTool("opforge_describe_type",
			mcp.WithDescription(
				"Get the full generated unit for one type: every operation plan with "+
					"its assigned name, delegate ID, signature, async/remote attributes, "+
					"and authorization bindings, plus the ordinal schema when present.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("type",
				mcp.Required(),
				mcp.Description("Name of the type to describe"),
			),
		),
		s.handleDescribeType,
	)

	srv.AddTool(
		mcp.NewTool("opforge_diagnostics",
			mcp.WithDescription(
				"List the diagnostics the build raised, optionally filtered by type "+
					"or severity (error, warning, info). Info-level diagnostics include "+
					"members skipped for carrying no operation marker.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("type",
				mcp.Description("Restrict to diagnostics for one type"),
			),
			mcp.WithString("severity",
				mcp.Description("Restrict to one severity: error, warning, or info"),
			),
		),
		s.handleDiagnostics,
	)
}

func (s *MCPServer) handleListTypes(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	type typeInfo struct {
		Name        string `json:"name"`
		Operations  int    `json:"operations"`
		Remote      int    `json:"remote_operations"`
		HasSchema   bool   `json:"has_ordinal_schema"`
		Diagnostics int    `json:"diagnostics"`
		Fingerprint string `json:"fingerprint"`
	}

	items := make([]typeInfo, len(s.units))
	for i, u := range s.units {
		items[i] = typeInfo{
			Name:        u.TypeName,
			Operations:  len(u.Plans),
			Remote:      len(u.RemotePlans()),
			HasSchema:   u.Schema != nil,
			Diagnostics: len(u.Diagnostics),
			Fingerprint: u.Fingerprint,
		}
	}

	return successJSON(items)
}

func (s *MCPServer) handleDescribeType(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	typeName, err := requireString(request, "type")
	if err != nil {
		return toolError("%v. Available types: %v", err, s.typeNames())
	}

	unit := s.unit(typeName)
	if unit == nil {
		return toolError("Type %q not found in bundle. Available types: %v",
			typeName, s.typeNames())
	}

	return successJSON(unit)
}

func (s *MCPServer) handleDiagnostics(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	typeName := optionalString(request, "type")
	severity := optionalString(request, "severity")
	if severity != "" {
		switch diag.Severity(severity) {
		case diag.SeverityError, diag.SeverityWarning, diag.SeverityInfo:
		default:
			return toolError("Unknown severity %q; use error, warning, or info", severity)
		}
	}
	if typeName != "" && s.unit(typeName) == nil {
		return toolError("Type %q not found in bundle. Available types: %v",
			typeName, s.typeNames())
	}

	var out []diag.Diagnostic
	for _, u := range s.units {
		if typeName != "" && u.TypeName != typeName {
			continue
		}
		for _, d := range u.Diagnostics {
			if severity != "" && d.Severity != diag.Severity(severity) {
				continue
			}
			out = append(out, d)
		}
	}
	if out == nil {
		out = []diag.Diagnostic{}
	}

	return successJSON(out)
}
