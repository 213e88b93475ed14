// Package main is the entry point of the Censudex API gateway. It loads
// configuration, wires the backend pools and the auth service client, and
// serves the REST API until interrupted.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/phrazzld/censudex-gateway/internal/config"
	"github.com/phrazzld/censudex-gateway/internal/platform/logger"
	"github.com/phrazzld/censudex-gateway/internal/platform/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the censudex-gateway command. Flags override the
// config file and environment.
func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "censudex-gateway",
		Short: "REST gateway in front of the Censudex microservices",
		Long: `Exposes the clients, products, orders and auth services of Censudex
as a single REST/JSON API. Protected routes require a bearer token that is
validated against the auth service.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configFile, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			return run(cmd.Context(), v, configFile)
		},
	}

	cmd.Flags().StringP("config", "c", "", "Path to configuration file (YAML)")
	cmd.Flags().IntP("port", "p", 0, "Port to listen on")
	cmd.Flags().StringP("log-level", "l", "", "Log level (debug, info, warn, error)")

	// only flags set on the command line override lower layers
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		if cmd.Flags().Changed("port") {
			if err := v.BindPFlag("server.port", cmd.Flags().Lookup("port")); err != nil {
				return fmt.Errorf("failed to bind port flag: %w", err)
			}
		}
		if cmd.Flags().Changed("log-level") {
			if err := v.BindPFlag("server.log_level", cmd.Flags().Lookup("log-level")); err != nil {
				return fmt.Errorf("failed to bind log-level flag: %w", err)
			}
		}
		return nil
	}

	return cmd
}

// run loads configuration, sets up logging and tracing, and serves until
// SIGINT or SIGTERM.
func run(parent context.Context, v *viper.Viper, configFile string) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := config.Load(config.Options{ConfigFile: configFile, Viper: v})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("base_path", cfg.Server.BasePath),
		slog.String("connection_mode", string(cfg.Backends.ConnectionMode)))

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupProvider(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}

	app, err := newApplication(cfg, log)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	app.shutdownTracing = shutdownTracing

	return app.Run(ctx)
}
