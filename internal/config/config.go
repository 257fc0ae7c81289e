// Package config provides application configuration through environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"

	apperrors "github.com/sivd/piivault/internal/errors"
)

// MinMasterSecretLength is the minimum accepted length for the master secret.
// Anything shorter is rejected at startup, before any traffic is served.
const MinMasterSecretLength = 16

// Supported vault storage backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Supported token strategies.
const (
	StrategyDeterministic = "deterministic"
	StrategyRandom        = "random"
	StrategyDemo          = "demo"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// MasterSecret is the secret used to derive per-entry encryption keys.
	// Required, minimum MinMasterSecretLength bytes.
	MasterSecret string

	// TokenStrategy selects the token generation strategy
	// ("deterministic", "random", or "demo").
	TokenStrategy string
	// TokenSalt is the keyed-hash salt for the deterministic strategy.
	TokenSalt string

	// VaultBackend selects the vault storage backend
	// ("file", "sqlite", "postgres", or "mongo").
	VaultBackend string
	// VaultFilePath is the JSON document location for the file backend.
	VaultFilePath string

	// DBConnectionString is the connection string for the sqlite/postgres backends.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// MongoURI is the connection URI for the mongo backend.
	MongoURI string
	// MongoDatabase is the database name for the mongo backend.
	MongoDatabase string
	// MongoTimeout bounds server selection and per-operation round trips.
	MongoTimeout time.Duration

	// APIKey guards the HTTP API via the x-api-key header when non-empty.
	APIKey string

	// DetectorExtraNameLetters adds letters (e.g. "ÁÉÍÓÚÑáéíóúñ") to the
	// ASCII-only name detector. Empty keeps detection ASCII-only.
	DetectorExtraNameLetters string

	// RateLimitEnabled indicates whether per-client rate limiting is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per client.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Crypto
		MasterSecret: env.GetString("MASTER_SECRET", ""),

		// Tokenizer
		TokenStrategy: env.GetString("TOKEN_STRATEGY", StrategyDeterministic),
		TokenSalt:     env.GetString("TOKEN_SALT", ""),

		// Vault storage
		VaultBackend:         env.GetString("VAULT_BACKEND", BackendFile),
		VaultFilePath:        env.GetString("VAULT_FILE_PATH", "vault.json"),
		DBConnectionString:   env.GetString("VAULT_DB_CONNECTION_STRING", "vault.db"),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),
		MongoURI:             env.GetString("MONGODB_URI", ""),
		MongoDatabase:        env.GetString("MONGODB_DATABASE", "pii_vault"),
		MongoTimeout:         env.GetDuration("MONGODB_TIMEOUT_SECONDS", 5, time.Second),

		// API authorization
		APIKey: env.GetString("API_KEY", ""),

		// Detection
		DetectorExtraNameLetters: env.GetString("DETECTOR_NAME_EXTRA_LETTERS", ""),

		// Rate Limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "piivault"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// Validate checks the configuration and returns an ErrConfiguration-wrapped
// error for anything that must stop the process before serving traffic.
func (c *Config) Validate() error {
	if len(c.MasterSecret) < MinMasterSecretLength {
		return apperrors.Wrap(
			apperrors.ErrConfiguration,
			fmt.Sprintf("MASTER_SECRET must be at least %d characters", MinMasterSecretLength),
		)
	}

	switch c.TokenStrategy {
	case StrategyDeterministic:
		if c.TokenSalt == "" {
			return apperrors.Wrap(
				apperrors.ErrConfiguration,
				"TOKEN_SALT is required for the deterministic token strategy",
			)
		}
	case StrategyRandom, StrategyDemo:
	default:
		return apperrors.Wrap(
			apperrors.ErrConfiguration,
			fmt.Sprintf("unsupported token strategy: %s", c.TokenStrategy),
		)
	}

	switch c.VaultBackend {
	case BackendFile:
		if c.VaultFilePath == "" {
			return apperrors.Wrap(apperrors.ErrConfiguration, "VAULT_FILE_PATH is required for the file backend")
		}
	case BackendSQLite, BackendPostgres:
		if c.DBConnectionString == "" {
			return apperrors.Wrap(
				apperrors.ErrConfiguration,
				"VAULT_DB_CONNECTION_STRING is required for relational backends",
			)
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return apperrors.Wrap(apperrors.ErrConfiguration, "MONGODB_URI is required for the mongo backend")
		}
	default:
		return apperrors.Wrap(
			apperrors.ErrConfiguration,
			fmt.Sprintf("unsupported vault backend: %s", c.VaultBackend),
		)
	}

	return nil
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
