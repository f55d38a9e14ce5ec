package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	redisrepo "github.com/joshdurbin/shortlink/internal/repository/redis"
	"github.com/joshdurbin/shortlink/internal/shortener"
)

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Store     StoreConfig      `yaml:"store"`
	Shortener shortener.Config `yaml:"shortener"`
	Logging   LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ServerURL       string        `yaml:"server_url"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// StoreConfig selects and configures the mapping store
type StoreConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
}

// SQLiteConfig holds sqlite settings
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig holds postgres settings
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// RedisConfig holds redis settings
type RedisConfig struct {
	URL string `yaml:"url"`
	// KeyPrefix must contain a non-empty {hash tag}; the store's scripts touch
	// several keys at once and a cluster only allows that within one slot.
	KeyPrefix string `yaml:"key_prefix"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used when nothing else is supplied
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ServerURL:       "http://localhost:8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			SQLite: SQLiteConfig{Path: "urls.db"},
			Postgres: PostgresConfig{
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: 30 * time.Minute,
				ConnMaxIdleTime: 5 * time.Minute,
			},
			Redis: RedisConfig{KeyPrefix: "{shortlink}:"},
		},
		Shortener: shortener.DefaultConfig(),
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged. The result is not validated; callers apply flag
// overrides first and then call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port cannot be empty")
	}

	if c.Server.ServerURL == "" {
		return errors.New("server URL cannot be empty")
	}

	timeouts := map[string]time.Duration{
		"read timeout":     c.Server.ReadTimeout,
		"write timeout":    c.Server.WriteTimeout,
		"idle timeout":     c.Server.IdleTimeout,
		"shutdown timeout": c.Server.ShutdownTimeout,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("server %s must be positive, got: %v", name, d)
		}
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLite.Path == "" {
			return errors.New("sqlite path cannot be empty")
		}
	case DriverPostgres:
		if c.Store.Postgres.DSN == "" {
			return errors.New("postgres DSN cannot be empty")
		}
	case DriverRedis:
		if c.Store.Redis.URL == "" {
			return errors.New("redis URL cannot be empty")
		}
		if err := redisrepo.ValidateKeyPrefix(c.Store.Redis.KeyPrefix); err != nil {
			return fmt.Errorf("invalid redis config: %w", err)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}

	if err := c.Shortener.Validate(); err != nil {
		return fmt.Errorf("invalid shortener configuration: %w", err)
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// SlogLevel parses the configured level name
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(l.Level))); err != nil {
		return 0, fmt.Errorf("unknown log level: %q", l.Level)
	}
	return level, nil
}
