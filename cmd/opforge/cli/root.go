package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "opforge",
		Short: "Derive dispatchable operation surfaces from declarative type models",
		Long: `OpForge classifies the members of declarative type descriptions into
operations, composes their authorization chains, merges write operations into
routed Save entry points, and synthesizes dispatch plans with deterministic
delegate identities and positional serialization schemas.

Builds are incremental: types whose input is unchanged are served from the
local cache. The generated bundle can be hosted over HTTP, described as an
OpenAPI document, or inspected through an MCP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./opforge.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for the build cache (default: ~/.opforge)")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newManifestCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("opforge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.opforge")
	}

	viper.SetEnvPrefix("OPFORGE")
	viper.AutomaticEnv()
	viper.ReadInConfig() // Ignore error - config file is optional
}
