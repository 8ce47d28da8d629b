// Package main provides a local GraphQL endpoint serving a fixture catalog
// with the same schema subset as PokeAPI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/raphaelgruber/pokerub/internal/config"
	"github.com/raphaelgruber/pokerub/internal/server"
	"github.com/spf13/cobra"
)

var (
	port     int
	latency  time.Duration
	fixtures string
	debug    bool
)

var rootCmd = &cobra.Command{
	Use:   "pokerub-mock",
	Short: "Serve a fixture Pokémon catalog over GraphQL",
	Long: `Serve a fixture Pokémon catalog over GraphQL for offline use and tests.

Point pokerub at it with:
  pokerub --endpoint http://localhost:8585/graphql list

Routes:
  POST /graphql, /graphql/v1beta   GraphQL endpoint
  GET  /schema.graphql             schema subset
  GET  /health                     health check`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	cfg, err := config.Load("")
	if err != nil {
		cfg = config.Defaults()
	}
	rootCmd.Flags().IntVarP(&port, "port", "p", cfg.MockPort, "listen port (env POKERUB_MOCK_PORT)")
	rootCmd.Flags().DurationVar(&latency, "latency", 0, "artificial delay per GraphQL request")
	rootCmd.Flags().StringVar(&fixtures, "fixtures", "", "JSON fixture file replacing the built-in catalog")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "log every request")
}

func run(cmd *cobra.Command, args []string) error {
	if port <= 0 || port > 65535 {
		return config.ErrInvalidPort
	}

	level := slog.LevelInfo
	if debug || os.Getenv("POKERUB_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	opts := []server.Option{server.WithLatency(latency)}
	if fixtures != "" {
		data, err := os.ReadFile(fixtures) //nolint:gosec // user-provided fixture path is intentional
		if err != nil {
			return fmt.Errorf("read fixtures: %w", err)
		}
		catalog, err := server.LoadCatalog(data)
		if err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
		opts = append(opts, server.WithCatalog(catalog))
	}

	srv, err := server.New(logger, opts...)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	addr := ":" + strconv.Itoa(port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30*time.Second + latency,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("GraphQL endpoint available", "url", fmt.Sprintf("http://localhost:%d/graphql", port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal or a listener failure
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
