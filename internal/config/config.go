package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, read from the environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string
	Port         int
	PublicDir    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig configures the PostgreSQL connection pool.
type DatabaseConfig struct {
	// URL is the required connection URI (postgres:// or postgresql://).
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first if present; a missing file is not an
// error. Malformed values are reported immediately so startup can abort.
func LoadConfig() (*Config, error) {
	// Local development convenience; real deployments set the environment.
	_ = godotenv.Load()

	port, err := envInt("PORT", 3000)
	if err != nil {
		return nil, err
	}

	maxOpen, err := envInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, err
	}

	maxIdle, err := envInt("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, err
	}

	connLifetime, err := envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connIdleTime, err := envDuration("DB_CONN_MAX_IDLE_TIME", time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         envString("HOST", "0.0.0.0"),
			Port:         port,
			PublicDir:    envString("PUBLIC_DIR", "public"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			URL:             envString("DATABASE_URL", ""),
			MaxOpenConns:    maxOpen,
			MaxIdleConns:    maxIdle,
			ConnMaxLifetime: connLifetime,
			ConnMaxIdleTime: connIdleTime,
		},
		Logging: LoggingConfig{
			Level: envString("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Validate enforces the startup invariants. Any violation is fatal to the
// caller: the process must not come up partially configured.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	u, err := url.Parse(c.Database.URL)
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URI: %w", err)
	}

	switch u.Scheme {
	case "postgres", "postgresql":
	default:
		return fmt.Errorf("DATABASE_URL has unrecognized scheme %q (allowed: postgres, postgresql)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("DATABASE_URL is missing a host")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT %d out of range (1-65535)", c.Server.Port)
	}

	if c.Server.PublicDir == "" {
		return fmt.Errorf("PUBLIC_DIR must not be empty")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.Database.MaxOpenConns)
	}

	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must not be negative, got %d", c.Database.MaxIdleConns)
	}

	return nil
}

func envString(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected an integer", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected a duration like 5m or 90s", key, v)
	}
	return d, nil
}
