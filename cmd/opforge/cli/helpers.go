package cli

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/opforge/opforge/internal/cache"
	"github.com/opforge/opforge/internal/diag"
	"github.com/opforge/opforge/internal/engine"
	"github.com/opforge/opforge/internal/input"
	"github.com/opforge/opforge/internal/model"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from --data-dir flag,
// OPFORGE_DATA_DIR env var, or ~/.opforge as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("OPFORGE_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return home + "/.opforge"
}

// openCacheStore opens the SQLite build cache under the resolved data dir.
func openCacheStore() (*cache.Store, error) {
	return cache.NewStore(resolveDataDir())
}

// buildBundle loads an input-model file and runs the pipeline over it.
// useCache controls whether unchanged types are served from the build cache.
func buildBundle(ctx context.Context, modelPath string, useCache bool) (*engine.Bundle, error) {
	types, err := input.Load(modelPath)
	if err != nil {
		return nil, err
	}

	var unitCache engine.UnitCache
	if useCache {
		store, err := openCacheStore()
		if err != nil {
			return nil, fmt.Errorf("open build cache: %w", err)
		}
		defer store.Close()
		unitCache = store
	}

	return engine.New(unitCache).Build(ctx, types)
}

// isTTY reports whether stdout is a terminal. Table rendering and diagnostic
// coloring are reserved for interactive runs.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// printDiagnostics writes a unit's diagnostics to stdout. Info-level entries
// (members skipped for carrying no marker) appear only in verbose mode.
func printDiagnostics(unit *model.GeneratedUnit, verbose bool) {
	for _, d := range unit.Diagnostics {
		if d.Severity == diag.SeverityInfo && !verbose {
			continue
		}
		fmt.Printf("  %s\n", d)
	}
}
