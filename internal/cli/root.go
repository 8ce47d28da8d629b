// Package cli provides the command-line interface for pokerub.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/raphaelgruber/pokerub/internal/catalog"
	"github.com/raphaelgruber/pokerub/internal/client"
	"github.com/raphaelgruber/pokerub/internal/config"
	"github.com/raphaelgruber/pokerub/internal/metrics"
	"github.com/raphaelgruber/pokerub/internal/service"
	"github.com/raphaelgruber/pokerub/internal/state"
	"github.com/raphaelgruber/pokerub/internal/store"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose       bool
	configPath    string
	endpointFlag  string
	storeFlag     string
	storePathFlag string

	// Initialized in PersistentPreRunE, released by shutdown
	cfg       config.Config
	logger    *slog.Logger
	closeLog  func() error
	collector *metrics.Collector
	kv        store.KV
	manager   *state.Manager
	pokedex   *service.PokedexService
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pokerub",
	Short: "Browse the Pokémon catalog from your terminal",
	Long: `Pokerub pages through the PokeAPI GraphQL catalog, keeps a local list of
favorite Pokémon and remembers which ones you have evolved.

Favorites and evolutions are stored locally (SQLite by default) and shared
by the interactive browser and every command.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for help and completion
		for c := cmd; c != nil; c = c.Parent() {
			if c.Name() == "help" || c.Name() == "completion" {
				return nil
			}
		}
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if verbose && collector != nil {
			printStats(cmd.ErrOrStderr(), collector.Snapshot())
		}
	},
}

// setup loads configuration and opens the store, the state manager and the
// catalog client.
func setup(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// The browser owns the terminal; it logs to the file only.
	var console io.Writer = cmd.ErrOrStderr()
	if cmd.Name() == "browse" {
		console = nil
	}
	level := cfg.LogLevel
	if verbose {
		level = slog.LevelDebug
	}
	logger, closeLog = config.SetupLogger(cfg.LogFile, console, level)

	collector = metrics.NewCollector()
	ctx := cmd.Context()

	raw, err := store.Open(ctx, store.Config{
		Engine: cfg.StoreEngine,
		Path:   cfg.StorePath,
		Surreal: store.SurrealConfig{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	kv = store.Instrument(raw, collector)
	manager = state.Open(ctx, kv, logger)

	c, err := client.New(cfg.Endpoint,
		client.WithTimeout(cfg.ClientTimeout),
		client.WithLogger(logger),
		client.WithMetrics(collector),
	)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	pokedex = service.NewPokedexService(c, manager,
		catalog.NewPagination(cfg.PageSize, cfg.TotalCount),
		cfg.PrefetchConcurrency, logger)
	logger.Debug("pokerub ready", "endpoint", cfg.Endpoint, "store", cfg.StoreEngine, "path", cfg.StorePath)
	return nil
}

// applyFlags overrides configuration with explicitly set global flags.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		c.Endpoint = endpointFlag
	}
	if flags.Changed("store") {
		// A default path follows the engine; an explicit one stays.
		if c.StorePath == config.DefaultStorePath(c.StoreEngine) {
			c.StorePath = ""
		}
		c.StoreEngine = storeFlag
	}
	if flags.Changed("store-path") {
		c.StorePath = storePathFlag
	}
	c.ResolvePaths()
}

// shutdown flushes pending writes and releases everything setup opened.
// It is safe to call more than once.
func shutdown() {
	if manager != nil {
		if err := manager.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to flush state: %v\n", err)
		}
		manager = nil
	}
	if kv != nil {
		if err := kv.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
		}
		kv = nil
	}
	if closeLog != nil {
		_ = closeLog()
		closeLog = nil
	}
	pokedex = nil
	collector = nil
}

// Execute runs the root command with ctx and releases resources afterwards.
func Execute(ctx context.Context) error {
	defer shutdown()
	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output and runtime stats")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pokerub/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&endpointFlag, "endpoint", "", "GraphQL endpoint")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "store engine: sqlite, json, memory or surreal")
	rootCmd.PersistentFlags().StringVar(&storePathFlag, "store-path", "", "store file for sqlite and json")

	// Add subcommands
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(evolveCmd)
}
