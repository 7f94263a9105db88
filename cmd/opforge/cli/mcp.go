package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	fmcp "github.com/opforge/opforge/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var (
		transport string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "mcp <model.yaml>",
		Short: "Start the MCP inspection server for AI agents",
		Long: `Build the input model and expose the generated bundle over the Model
Context Protocol. Agents can list generated types, fetch full units, and
filter build diagnostics.

In stdio mode the server communicates over stdin/stdout using JSON-RPC,
suitable for MCP clients that launch the server as a subprocess. In HTTP
mode it listens on the specified port.`,
		Example: `  opforge mcp model.yaml                            # stdio mode
  opforge mcp model.yaml --transport http --port 3001`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(args[0], transport, port)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport mode: stdio or http")
	cmd.Flags().IntVar(&port, "port", 3001, "HTTP port (only used with --transport http)")

	return cmd
}

func runMCP(modelPath, transport string, port int) error {
	// Logs go to stderr; stdout belongs to the stdio transport.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	bundle, err := buildBundle(context.Background(), modelPath, true)
	if err != nil {
		return err
	}

	srv := fmcp.NewMCPServer(bundle.Units, logger)

	switch transport {
	case "stdio":
		return srv.ServeStdio()
	case "http":
		return srv.ServeHTTP(fmt.Sprintf(":%d", port))
	default:
		return fmt.Errorf("unsupported transport %q; use 'stdio' or 'http'", transport)
	}
}
