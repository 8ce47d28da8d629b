package store

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

func init() {
	// Force HTTP/1.1 for WSS connections to prevent HTTP/2 ALPN negotiation.
	// WebSocket upgrade requires HTTP/1.1 semantics which fail under HTTP/2.
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

// surrealSchema defines the single key-value table.
const surrealSchema = `
DEFINE TABLE IF NOT EXISTS kv SCHEMAFULL;
DEFINE FIELD IF NOT EXISTS value ON kv TYPE string;
DEFINE FIELD IF NOT EXISTS updated ON kv TYPE datetime DEFAULT time::now();
`

// SurrealConfig holds SurrealDB connection configuration.
type SurrealConfig struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	AuthLevel string // "root" or "database"
}

// SurrealStore keeps values in a SurrealDB table over an auto-reconnecting
// WebSocket, so several devices can share one favorites list.
type SurrealStore struct {
	conn   *rews.Connection[*gorillaws.Connection]
	db     *surrealdb.DB
	logger logger.Logger
}

type kvRecord struct {
	Value string `json:"value"`
}

// NewSurrealStore connects, signs in, selects the namespace/database and
// defines the kv table.
func NewSurrealStore(ctx context.Context, cfg SurrealConfig, log *slog.Logger) (*SurrealStore, error) {
	if log == nil {
		log = slog.Default()
	}
	sdkLogger := logger.New(log.Handler())

	// surrealcbor handles SurrealDB custom CBOR tags
	codec := surrealcbor.New()

	// gorillaws adds /rpc itself
	baseURL := strings.TrimSuffix(cfg.URL, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			ws := gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      sdkLogger,
			})
			return ws, nil
		},
		5*time.Second,
		codec,
		sdkLogger,
	)

	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = 1 * time.Second
	retryer.MaxDelay = 30 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = 10
	conn.Retryer = retryer

	sdkLogger.Info("connecting to SurrealDB", "url", cfg.URL)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("from connection: %w", err)
	}

	if cfg.AuthLevel == "database" {
		_, err = db.SignIn(ctx, surrealdb.Auth{
			Namespace: cfg.Namespace,
			Database:  cfg.Database,
			Username:  cfg.Username,
			Password:  cfg.Password,
		})
	} else {
		_, err = db.SignIn(ctx, surrealdb.Auth{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("signin: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("use: %w", err)
	}

	if _, err := surrealdb.Query[any](ctx, db, surrealSchema, nil); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("init schema: %w", err)
	}

	sdkLogger.Info("SurrealDB store ready", "namespace", cfg.Namespace, "database", cfg.Database)
	return &SurrealStore{conn: conn, db: db, logger: sdkLogger}, nil
}

func (s *SurrealStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	results, err := surrealdb.Query[[]kvRecord](ctx, s.db,
		`SELECT value FROM type::record("kv", $key)`,
		map[string]any{"key": key},
	)
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, false, nil
	}
	return []byte((*results)[0].Result[0].Value), true, nil
}

func (s *SurrealStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := surrealdb.Query[any](ctx, s.db,
		`UPSERT type::record("kv", $key) SET value = $value, updated = time::now() RETURN NONE`,
		map[string]any{"key": key, "value": string(value)},
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, wrapQueryError(err))
	}
	return nil
}

func (s *SurrealStore) Remove(ctx context.Context, key string) error {
	_, err := surrealdb.Query[any](ctx, s.db,
		`DELETE type::record("kv", $key)`,
		map[string]any{"key": key},
	)
	if err != nil {
		return fmt.Errorf("remove %s: %w", key, wrapQueryError(err))
	}
	return nil
}

// Close closes the SurrealDB connection.
func (s *SurrealStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("closing SurrealDB connection")
	return s.conn.Close(ctx)
}

// wrapQueryError maps known SurrealDB query errors onto sentinel errors.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}
	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) && strings.Contains(queryErr.Message, "Transaction conflict") {
		return fmt.Errorf("%w: %s", ErrTransactionConflict, queryErr.Message)
	}
	return err
}
