package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opforge/opforge/internal/authz"
	"github.com/opforge/opforge/internal/dispatch"
	"github.com/opforge/opforge/internal/engine"
	"github.com/opforge/opforge/internal/transport"
)

func newServeCmd() *cobra.Command {
	var (
		port      int
		host      string
		jwtSecret string
		dev       bool
	)

	cmd := &cobra.Command{
		Use:   "serve <model.yaml>",
		Short: "Host the generated delegates over HTTP",
		Long: `Build the input model and host its generated delegates as a delegate host.
The host executes every delegate's local strategy; remote callers reach them
at POST /api/v1/delegate/{delegateID}.

Without implementation bindings the host serves the delegate directory and
pre-flight authorization checks; embedding applications register real
implementations through the engine's Binder.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(args[0], host, port, jwtSecret, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().StringVar(&jwtSecret, "jwt-secret", "", "HMAC secret for bearer auth (empty disables auth)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	viper.BindPFlag("auth.jwt_secret", cmd.Flags().Lookup("jwt-secret"))

	return cmd
}

// hostBinder is the serve command's Binder: no member implementations, every
// check allowed. Pre-flight delegates stay functional; real implementations
// come from embedding applications.
type hostBinder struct{}

func (hostBinder) Impl(typeName, memberName string) dispatch.Impl { return nil }
func (hostBinder) HookHost(typeName string) any                   { return nil }
func (hostBinder) Evaluator() authz.Evaluator                     { return authz.AllowAll }

func runServe(modelPath, host string, port int, jwtSecret string, dev bool) error {
	logLevel := slog.LevelInfo
	if dev {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	bundle, err := buildBundle(context.Background(), modelPath, true)
	if err != nil {
		return err
	}
	logger.Info("bundle built", "types", len(bundle.Units), "reused", bundle.Reused)

	registry, err := dispatch.NewRegistry(dispatch.ModeInProcess, nil)
	if err != nil {
		return err
	}
	for _, unit := range bundle.Units {
		engine.RegisterUnit(registry, unit, hostBinder{}, logger)
	}
	logger.Info("delegates registered", "count", len(registry.DelegateIDs()))

	if jwtSecret == "" {
		jwtSecret = viper.GetString("auth.jwt_secret")
	}
	tokens := transport.NewTokenService(jwtSecret)
	if tokens == nil {
		logger.Warn("no JWT secret configured; authentication is disabled")
	}

	cfg := transport.DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	if viper.IsSet("server.requests_per_minute") {
		cfg.RequestsPerMinute = viper.GetInt("server.requests_per_minute")
	}

	srv := transport.New(cfg, registry, tokens, logger)
	fmt.Printf("delegate host listening on %s:%d\n", host, port)
	return srv.ListenAndServe()
}
