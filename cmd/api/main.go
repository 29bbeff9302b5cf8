package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"casedocs/internal/config"
	"casedocs/internal/logger"
)

// @title Case Documents API
// @version 1.0
// @description Ingests declaration documents, stores them and tracks their OCR processing.
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "casedocs",
		Short:         "Document ingestion and OCR tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), runServe)
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the OCR output poller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), runServe)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), runMigrate)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "resubmit <docId>",
		Short: "Queue a document that is still waiting for OCR again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(ctx context.Context, a *app) error {
				return runResubmit(ctx, a, args[0])
			})
		},
	})

	return rootCmd
}

// run loads configuration, builds the dependencies and hands them to fn.
func run(ctx context.Context, fn func(context.Context, *app) error) error {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.Stdout(cfg.Location())

	if err := cfg.Validate(); err != nil {
		log.Error().Str("event", "config_invalid").Err(err).Send()
		return err
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error().Str("event", "startup_failed").Err(err).Send()
		return err
	}
	defer a.Close()

	if err := fn(ctx, a); err != nil {
		log.Error().Str("event", "command_failed").Err(err).Send()
		return err
	}
	return nil
}
