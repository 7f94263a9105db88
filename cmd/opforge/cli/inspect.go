package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/opforge/opforge/internal/engine"
	"github.com/opforge/opforge/internal/input"
	"github.com/opforge/opforge/internal/model"
)

func newInspectCmd() *cobra.Command {
	var (
		typeName string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <model.yaml>",
		Short: "Show what the pipeline derives from an input model",
		Long: `Build the input model (bypassing the cache) and print each type's derived
operation surface: classified operations, synthesized Save and pre-flight
entry points, authorization bindings, ordinal property order, and the
diagnostics raised along the way.`,
		Example: `  opforge inspect model.yaml                 # every type
  opforge inspect model.yaml --type Invoice  # one type
  opforge inspect model.yaml -v              # include skipped members`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0], typeName, verbose)
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Restrict output to one type")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print info-level diagnostics (skipped members)")

	return cmd
}

func runInspect(modelPath, typeName string, verbose bool) error {
	types, err := input.Load(modelPath)
	if err != nil {
		return err
	}

	found := false
	for _, td := range types {
		if typeName != "" && td.Name != typeName {
			continue
		}
		found = true
		inspectUnit(engine.BuildUnit(td), verbose)
	}
	if !found {
		return fmt.Errorf("type %q not found in %s", typeName, modelPath)
	}
	return nil
}

func inspectUnit(unit *model.GeneratedUnit, verbose bool) {
	fmt.Printf("%s  (fingerprint %.12s)\n", unit.TypeName, unit.Fingerprint)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  NAME\tKIND\tDELEGATE\tSIGNATURE\tATTRIBUTES\tAUTH")
	for _, p := range unit.Plans {
		fmt.Fprintf(w, "  %s\t%s\t%.8s\t%s\t%s\t%s\n",
			p.Name, planKind(p), p.DelegateID, signature(p), attributes(p), authSummary(p))
	}
	w.Flush()

	if unit.Schema != nil {
		names := make([]string, len(unit.Schema.Properties))
		for i, prop := range unit.Schema.Properties {
			names[i] = prop.Name
		}
		fmt.Printf("  ordinal order (%s): %s\n", unit.Schema.Construction, strings.Join(names, ", "))
	} else {
		fmt.Println("  ordinal schema: opted out")
	}

	printDiagnostics(unit, verbose)
	fmt.Println()
}

func planKind(p model.OperationPlanModel) string {
	switch {
	case p.IsSave:
		return "save"
	case p.IsPreflight:
		return "preflight"
	default:
		return string(p.Kind)
	}
}

func signature(p model.OperationPlanModel) string {
	parts := make([]string, len(p.Parameters))
	for i, param := range p.Parameters {
		parts[i] = param.Name
	}
	return "(" + strings.Join(parts, ", ") + ") " + string(p.ReturnShape)
}

func attributes(p model.OperationPlanModel) string {
	var attrs []string
	if p.IsAsync {
		attrs = append(attrs, "async")
	}
	if p.IsRemote {
		attrs = append(attrs, "remote")
	}
	if len(attrs) == 0 {
		return "-"
	}
	return strings.Join(attrs, ",")
}

func authSummary(p model.OperationPlanModel) string {
	bindings := p.Authorization.Bindings
	if p.IsSave {
		// Save plans gate per routed member; show the union.
		seen := map[string]bool{}
		bindings = nil
		for _, kind := range []model.OperationKind{model.KindInsert, model.KindUpdate, model.KindDelete} {
			for _, b := range p.SaveAuth[kind].Bindings {
				key := b.ProviderName + "." + b.MethodName
				if !seen[key] {
					seen[key] = true
					bindings = append(bindings, b)
				}
			}
		}
	}
	if len(bindings) == 0 {
		return "-"
	}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		name := b.ProviderName + "." + b.MethodName
		if b.IsPolicy {
			name = "policy:" + b.MethodName
		}
		parts[i] = name
	}
	return strings.Join(parts, " AND ")
}
