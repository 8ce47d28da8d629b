package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Engine names accepted by Open.
const (
	EngineSQLite  = "sqlite"
	EngineJSON    = "json"
	EngineMemory  = "memory"
	EngineSurreal = "surreal"
)

// Config selects and configures a store engine.
type Config struct {
	Engine  string
	Path    string // sqlite and json
	Surreal SurrealConfig
}

// Open creates the store for cfg.Engine. An empty engine means sqlite.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Engine)) {
	case "", EngineSQLite:
		return NewSQLiteStore(cfg.Path)
	case EngineJSON:
		return NewJSONStore(cfg.Path)
	case EngineMemory:
		return NewMemoryStore(), nil
	case EngineSurreal:
		return NewSurrealStore(ctx, cfg.Surreal, logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEngine, cfg.Engine)
	}
}
