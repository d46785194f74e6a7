// Package config defines the application configuration structures.
//
// Design decisions:
//   - One Config struct built once at process start and handed to each
//     component; no package-level state and no singleton access from
//     business logic.
//   - Loading goes through a LookupFunc so tests can feed a plain map
//     instead of mutating the process environment.
//   - A .env file is honored when present (godotenv), matching how the
//     service is run in development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LookupFunc resolves a configuration key, typically os.LookupEnv.
type LookupFunc func(string) (string, bool)

// Config holds all application settings.
type Config struct {
	HTTP HTTPConfig
	DB   DBConfig
	SSH  SSHConfig
	AI   AIConfig
	Log  LogConfig
}

// HTTPConfig holds the listener settings.
type HTTPConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DBConfig holds PostgreSQL connection settings.
// URL, when set, wins over the discrete fields.
type DBConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// QueryTimeout bounds each metadata or data query.
	QueryTimeout time.Duration
	// MaxRows caps rows read from a generated query; 0 disables the cap.
	MaxRows int
}

// SSHConfig holds SSH tunnel settings for reaching the database
// through a bastion host.
type SSHConfig struct {
	Enabled       bool
	Host          string
	Port          int
	User          string
	KeyPath       string
	KeyPassphrase string
}

// LogConfig controls service logging.
type LogConfig struct {
	Level slog.Level
	JSON  bool
}

// DSN builds a pgx-compatible connection string.
// When the SSH tunnel is active, the caller overrides Host/Port
// with the local tunnel endpoint first.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
}

// LoadFromEnv loads configuration from the process environment,
// reading envFile first when it exists.
func LoadFromEnv(envFile string) (Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}
	return Load(os.LookupEnv)
}

// Load builds a Config from the given lookup function.
func Load(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Addr:         ":8000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		DB: DBConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "postgres",
			Database:     "postgres",
			SSLMode:      "prefer",
			QueryTimeout: 30 * time.Second,
			MaxRows:      1000,
		},
		AI:  DefaultAIConfig(),
		Log: LogConfig{Level: slog.LevelInfo},
	}

	stringVar(lookup, "ASKDB_ADDR", &cfg.HTTP.Addr)

	stringVar(lookup, "DATABASE_URL", &cfg.DB.URL)
	stringVar(lookup, "ASKDB_DB_HOST", &cfg.DB.Host)
	stringVar(lookup, "ASKDB_DB_USER", &cfg.DB.User)
	stringVar(lookup, "ASKDB_DB_PASSWORD", &cfg.DB.Password)
	stringVar(lookup, "ASKDB_DB_NAME", &cfg.DB.Database)
	stringVar(lookup, "ASKDB_DB_SSLMODE", &cfg.DB.SSLMode)
	if err := intVar(lookup, "ASKDB_DB_PORT", &cfg.DB.Port); err != nil {
		return Config{}, err
	}
	if err := durationVar(lookup, "ASKDB_DB_TIMEOUT", &cfg.DB.QueryTimeout); err != nil {
		return Config{}, err
	}
	if err := intVar(lookup, "ASKDB_MAX_ROWS", &cfg.DB.MaxRows); err != nil {
		return Config{}, err
	}
	if cfg.DB.MaxRows < 0 {
		return Config{}, fmt.Errorf("ASKDB_MAX_ROWS must not be negative")
	}

	if err := boolVar(lookup, "ASKDB_SSH_ENABLED", &cfg.SSH.Enabled); err != nil {
		return Config{}, err
	}
	stringVar(lookup, "ASKDB_SSH_HOST", &cfg.SSH.Host)
	stringVar(lookup, "ASKDB_SSH_USER", &cfg.SSH.User)
	stringVar(lookup, "ASKDB_SSH_KEY", &cfg.SSH.KeyPath)
	stringVar(lookup, "ASKDB_SSH_KEY_PASSPHRASE", &cfg.SSH.KeyPassphrase)
	cfg.SSH.Port = 22
	if err := intVar(lookup, "ASKDB_SSH_PORT", &cfg.SSH.Port); err != nil {
		return Config{}, err
	}
	if cfg.SSH.Enabled && cfg.SSH.Host == "" {
		return Config{}, fmt.Errorf("ASKDB_SSH_HOST is required when the SSH tunnel is enabled")
	}

	loadAIConfig(lookup, &cfg.AI)
	if err := durationVar(lookup, "ASKDB_LLM_TIMEOUT", &cfg.AI.Timeout); err != nil {
		return Config{}, err
	}

	if raw, ok := lookup("ASKDB_LOG_LEVEL"); ok {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
			return Config{}, fmt.Errorf("parse ASKDB_LOG_LEVEL: %w", err)
		}
		cfg.Log.Level = level
	}
	if err := boolVar(lookup, "ASKDB_LOG_JSON", &cfg.Log.JSON); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func stringVar(lookup LookupFunc, key string, dst *string) {
	if raw, ok := lookup(key); ok {
		*dst = strings.TrimSpace(raw)
	}
}

func intVar(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = value
	return nil
}

func boolVar(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = value
	return nil
}

func durationVar(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	if value <= 0 {
		return fmt.Errorf("%s must be positive", key)
	}
	*dst = value
	return nil
}
