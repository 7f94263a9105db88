package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opforge/opforge/internal/manifest"
)

func newManifestCmd() *cobra.Command {
	var (
		baseURL    string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "manifest <model.yaml>",
		Short: "Generate the OpenAPI manifest for the remote delegate surface",
		Long: `Build the input model and emit an OpenAPI 3.1 document describing every
remote-flagged delegate: one POST path per delegate identity, request schema
from the operation's public parameters.`,
		Example: `  opforge manifest model.yaml                          # spec to stdout
  opforge manifest model.yaml -o openapi.json          # write to file
  opforge manifest model.yaml --base-url https://ops.example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(args[0], baseURL, outputFile)
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8080", "Server base URL for the spec")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write spec to file instead of stdout")

	return cmd
}

func runManifest(modelPath, baseURL, outputFile string) error {
	bundle, err := buildBundle(context.Background(), modelPath, true)
	if err != nil {
		return err
	}

	doc := manifest.Generate(baseURL, bundle.Units)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		fmt.Printf("manifest written to %s\n", outputFile)
		return nil
	}
	fmt.Println(string(data))
	return nil
}
