package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/raphaelgruber/pokerub/internal/client"
	"gopkg.in/yaml.v3"
)

// AppName names the XDG subdirectories.
const AppName = "pokerub"

// DefaultEndpoint is the public PokeAPI GraphQL endpoint.
const DefaultEndpoint = client.DefaultEndpoint

// TotalCount is the number of entities the catalog pages over.
const TotalCount = 898

// Sentinel errors returned by Validate and Load.
var (
	ErrInvalidPageSize    = errors.New("page size must be positive")
	ErrInvalidTimeout     = errors.New("client timeout must be positive")
	ErrInvalidTotalCount  = errors.New("total count must be positive")
	ErrInvalidConcurrency = errors.New("prefetch concurrency must be positive")
	ErrInvalidPort        = errors.New("mock port must be between 1 and 65535")
	ErrConfigNotFound     = errors.New("configuration file not found")
)

// Config holds all configuration values.
type Config struct {
	// GraphQL catalog
	Endpoint            string
	ClientTimeout       time.Duration
	PageSize            int
	TotalCount          int
	PrefetchConcurrency int

	// Persistence
	StoreEngine string
	StorePath   string

	// SurrealDB connection (store engine "surreal")
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Local mock endpoint
	MockPort int
}

// File is the YAML configuration file layout. Zero values leave the
// default in place.
type File struct {
	Endpoint            string `yaml:"endpoint"`
	ClientTimeout       string `yaml:"client_timeout"`
	PageSize            int    `yaml:"page_size"`
	TotalCount          int    `yaml:"total_count"`
	PrefetchConcurrency int    `yaml:"prefetch_concurrency"`

	Store struct {
		Engine string `yaml:"engine"`
		Path   string `yaml:"path"`
	} `yaml:"store"`

	Surreal struct {
		URL       string `yaml:"url"`
		Namespace string `yaml:"namespace"`
		Database  string `yaml:"database"`
		User      string `yaml:"user"`
		Pass      string `yaml:"pass"`
		AuthLevel string `yaml:"auth_level"`
	} `yaml:"surreal"`

	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`

	Mock struct {
		Port int `yaml:"port"`
	} `yaml:"mock"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Endpoint:            DefaultEndpoint,
		ClientTimeout:       15 * time.Second,
		PageSize:            10,
		TotalCount:          TotalCount,
		PrefetchConcurrency: 4,

		StoreEngine: "sqlite",

		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "pokerub",
		SurrealDBDatabase:  "favorites",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",
		SurrealDBAuthLevel: "root",

		LogFile:  filepath.Join(xdg.StateHome, AppName, "pokerub.log"),
		LogLevel: slog.LevelInfo,

		MockPort: 8585,
	}
}

// Load layers defaults, the YAML file and environment variables, in that
// order. An explicit path (or $POKERUB_CONFIG) must exist; the default
// XDG location is optional.
func Load(path string) (Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("POKERUB_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultConfigPath()
	}

	file, err := LoadFile(path)
	switch {
	case errors.Is(err, ErrConfigNotFound) && !explicit:
	case err != nil:
		return Config{}, err
	default:
		if err := cfg.applyFile(file); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.ResolvePaths()
	return cfg, nil
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &f, nil
}

// DefaultConfigPath is $XDG_CONFIG_HOME/pokerub/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// DefaultStorePath returns the data file for a store engine.
func DefaultStorePath(engine string) string {
	name := "pokerub.db"
	if strings.EqualFold(engine, "json") {
		name = "favorites.json"
	}
	return filepath.Join(xdg.DataHome, AppName, name)
}

// ResolvePaths fills in paths that depend on other settings. Call it again
// after overriding StoreEngine.
func (c *Config) ResolvePaths() {
	if c.StorePath == "" {
		c.StorePath = DefaultStorePath(c.StoreEngine)
	}
}

// Validate checks the numeric settings.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return ErrInvalidPageSize
	}
	if c.ClientTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.TotalCount <= 0 {
		return ErrInvalidTotalCount
	}
	if c.PrefetchConcurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MockPort <= 0 || c.MockPort > 65535 {
		return ErrInvalidPort
	}
	return nil
}

func (c *Config) applyFile(f *File) error {
	setString(&c.Endpoint, f.Endpoint)
	if f.ClientTimeout != "" {
		d, err := time.ParseDuration(f.ClientTimeout)
		if err != nil {
			return fmt.Errorf("client_timeout: %w", err)
		}
		c.ClientTimeout = d
	}
	setInt(&c.PageSize, f.PageSize)
	setInt(&c.TotalCount, f.TotalCount)
	setInt(&c.PrefetchConcurrency, f.PrefetchConcurrency)

	setString(&c.StoreEngine, f.Store.Engine)
	setString(&c.StorePath, f.Store.Path)

	setString(&c.SurrealDBURL, f.Surreal.URL)
	setString(&c.SurrealDBNamespace, f.Surreal.Namespace)
	setString(&c.SurrealDBDatabase, f.Surreal.Database)
	setString(&c.SurrealDBUser, f.Surreal.User)
	setString(&c.SurrealDBPass, f.Surreal.Pass)
	setString(&c.SurrealDBAuthLevel, f.Surreal.AuthLevel)

	setString(&c.LogFile, f.LogFile)
	if f.LogLevel != "" {
		c.LogLevel = parseLogLevel(f.LogLevel)
	}
	setInt(&c.MockPort, f.Mock.Port)
	return nil
}

func (c *Config) applyEnv() error {
	c.Endpoint = getEnv("POKERUB_ENDPOINT", c.Endpoint)

	if v := os.Getenv("POKERUB_CLIENT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("POKERUB_CLIENT_TIMEOUT: %w", err)
		}
		c.ClientTimeout = d
	}
	for _, e := range []struct {
		key string
		dst *int
	}{
		{"POKERUB_PAGE_SIZE", &c.PageSize},
		{"POKERUB_TOTAL_COUNT", &c.TotalCount},
		{"POKERUB_PREFETCH_CONCURRENCY", &c.PrefetchConcurrency},
		{"POKERUB_MOCK_PORT", &c.MockPort},
	} {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}

	c.StoreEngine = getEnv("POKERUB_STORE_ENGINE", c.StoreEngine)
	c.StorePath = getEnv("POKERUB_STORE_PATH", c.StorePath)

	c.SurrealDBURL = getEnv("SURREALDB_URL", c.SurrealDBURL)
	c.SurrealDBNamespace = getEnv("SURREALDB_NAMESPACE", c.SurrealDBNamespace)
	c.SurrealDBDatabase = getEnv("SURREALDB_DATABASE", c.SurrealDBDatabase)
	c.SurrealDBUser = getEnv("SURREALDB_USER", c.SurrealDBUser)
	c.SurrealDBPass = getEnv("SURREALDB_PASS", c.SurrealDBPass)
	c.SurrealDBAuthLevel = getEnv("SURREALDB_AUTH_LEVEL", c.SurrealDBAuthLevel)

	c.LogFile = getEnv("POKERUB_LOG_FILE", c.LogFile)
	if v := os.Getenv("POKERUB_LOG_LEVEL"); v != "" {
		c.LogLevel = parseLogLevel(v)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
