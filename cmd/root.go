// Package cmd contains the Cobra commands for askdb.
//
// Design decision: the root command starts the HTTP backend directly.
// Everything is configured through the environment (plus an optional
// .env file), so running `askdb` with no arguments brings the service up.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/askdb/askdb/ai"
	"github.com/askdb/askdb/chat"
	"github.com/askdb/askdb/config"
	"github.com/askdb/askdb/db"
	"github.com/askdb/askdb/server"
)

var (
	flagAddr    string
	flagEnvFile string
)

var rootCmd = &cobra.Command{
	Use:   "askdb",
	Short: "Natural-language-to-SQL chatbot backend",
	Long: `askdb answers questions about a PostgreSQL database in plain language:
  • converts the question to a read-only SELECT via an AI provider
  • validates and executes the query
  • summarizes the result in the user's language

Endpoints: GET /health, GET /schema, POST /query, GET /metrics.
Configuration comes from the environment (see .env.example).`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides ASKDB_ADDR)")
	rootCmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "path to an optional .env file")
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func run(ctx context.Context) error {
	cfg, err := config.LoadFromEnv(flagEnvFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagAddr != "" {
		cfg.HTTP.Addr = flagAddr
	}

	logger := newLogger(cfg.Log)

	database, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close()

	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("ai provider: %w", err)
	}
	logger.Info("ai provider ready", slog.String("provider", provider.Name()))

	chatSvc := chat.NewService(database, provider, logger, cfg.AI.Timeout)
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      server.New(chatSvc, database, logger).Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(slog.String("service", "askdb"))
}
