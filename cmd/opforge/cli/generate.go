package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/opforge/opforge/internal/diag"
	"github.com/opforge/opforge/internal/engine"
)

func newGenerateCmd() *cobra.Command {
	var (
		outputFile string
		noCache    bool
		force      bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "generate <model.yaml>",
		Short: "Build the generated bundle for an input model",
		Long: `Run the full pipeline over every type in the input model: classification,
authorization composition, save merging, dispatch synthesis, and ordinal
schema building. Types whose input is unchanged since the last run are served
from the build cache unless --force is given.`,
		Example: `  opforge generate model.yaml                # bundle JSON to stdout
  opforge generate model.yaml -o bundle.json # write to file
  opforge generate model.yaml --force -v     # rebuild everything, all diagnostics`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(args[0], outputFile, !noCache && !force, verbose)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write bundle JSON to file instead of stdout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Build without consulting or populating the cache")
	cmd.Flags().BoolVar(&force, "force", false, "Rebuild every type even when its input is unchanged")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print info-level diagnostics (skipped members)")

	return cmd
}

func runGenerate(modelPath, outputFile string, useCache, verbose bool) error {
	bundle, err := buildBundle(context.Background(), modelPath, useCache)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("write bundle: %w", err)
		}
		printSummary(bundle, verbose)
		fmt.Printf("bundle written to %s\n", outputFile)
		return nil
	}

	// Bundle goes to stdout; keep the summary off it so the output stays
	// machine-readable when piped.
	fmt.Println(string(data))
	if isTTY() {
		printSummary(bundle, verbose)
	}
	return nil
}

func printSummary(bundle *engine.Bundle, verbose bool) {
	errs, warns := 0, 0
	for _, u := range bundle.Units {
		for _, d := range u.Diagnostics {
			switch d.Severity {
			case diag.SeverityError:
				errs++
			case diag.SeverityWarning:
				warns++
			}
		}
	}

	fmt.Printf("built %d type(s), %d reused from cache, %d error(s), %d warning(s)\n",
		len(bundle.Units), bundle.Reused, errs, warns)

	if isTTY() {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tOPERATIONS\tREMOTE\tSCHEMA\tFINGERPRINT")
		for _, u := range bundle.Units {
			schema := "yes"
			if u.Schema == nil {
				schema = "opt-out"
			}
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%.12s\n",
				u.TypeName, len(u.Plans), len(u.RemotePlans()), schema, u.Fingerprint)
		}
		w.Flush()
	}

	for _, u := range bundle.Units {
		printDiagnostics(u, verbose)
	}
}
