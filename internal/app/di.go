// Package app provides the dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	anonymizerHTTP "github.com/sivd/piivault/internal/anonymizer/http"
	anonymizerService "github.com/sivd/piivault/internal/anonymizer/service"
	anonymizerUsecase "github.com/sivd/piivault/internal/anonymizer/usecase"
	"github.com/sivd/piivault/internal/config"
	cryptoService "github.com/sivd/piivault/internal/crypto/service"
	"github.com/sivd/piivault/internal/database"
	"github.com/sivd/piivault/internal/http"
	"github.com/sivd/piivault/internal/metrics"
	vaultRepository "github.com/sivd/piivault/internal/vault/repository"
	vaultService "github.com/sivd/piivault/internal/vault/service"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger      *slog.Logger
	db          *sql.DB
	mongoClient *mongo.Client

	// Vault storage
	vaultRepo vaultService.Repository
	ready     http.ReadinessChecker

	// Services
	vaultStore vaultService.Store

	// Use Cases
	anonymizerUseCase anonymizerUsecase.AnonymizerUseCase

	// Observability
	metricsProvider *metrics.Provider

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                    sync.Mutex
	loggerInit            sync.Once
	vaultRepoInit         sync.Once
	vaultStoreInit        sync.Once
	anonymizerUseCaseInit sync.Once
	metricsProviderInit   sync.Once
	httpServerInit        sync.Once
	metricsServerInit     sync.Once
	initErrors            map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// VaultRepository returns the vault repository for the configured backend.
func (c *Container) VaultRepository() (vaultService.Repository, error) {
	var err error
	c.vaultRepoInit.Do(func() {
		c.vaultRepo, err = c.initVaultRepository()
		if err != nil {
			c.initErrors["vaultRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vaultRepo"]; exists {
		return nil, storedErr
	}
	return c.vaultRepo, nil
}

// VaultStore returns the encrypting vault store instance.
func (c *Container) VaultStore() (vaultService.Store, error) {
	var err error
	c.vaultStoreInit.Do(func() {
		c.vaultStore, err = c.initVaultStore()
		if err != nil {
			c.initErrors["vaultStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vaultStore"]; exists {
		return nil, storedErr
	}
	return c.vaultStore, nil
}

// AnonymizerUseCase returns the anonymizer use case instance.
func (c *Container) AnonymizerUseCase() (anonymizerUsecase.AnonymizerUseCase, error) {
	var err error
	c.anonymizerUseCaseInit.Do(func() {
		c.anonymizerUseCase, err = c.initAnonymizerUseCase()
		if err != nil {
			c.initErrors["anonymizerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["anonymizerUseCase"]; exists {
		return nil, storedErr
	}
	return c.anonymizerUseCase, nil
}

// MetricsProvider returns the metrics provider instance.
// Returns nil without error when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// HTTPServer returns the API HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics HTTP server instance.
// Returns nil without error when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		provider, providerErr := c.MetricsProvider()
		if providerErr != nil {
			err = providerErr
			c.initErrors["metricsServer"] = providerErr
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if c.mongoClient != nil {
		if err := c.mongoClient.Disconnect(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("mongo disconnect: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initVaultRepository creates the vault repository for the configured backend
// and records a readiness checker for it.
func (c *Container) initVaultRepository() (vaultService.Repository, error) {
	switch c.config.VaultBackend {
	case config.BackendFile:
		repo, err := vaultRepository.NewFileRepository(c.config.VaultFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open vault file: %w", err)
		}
		c.ready = func(ctx context.Context) error { return nil }
		return repo, nil

	case config.BackendSQLite, config.BackendPostgres:
		driver := "sqlite3"
		if c.config.VaultBackend == config.BackendPostgres {
			driver = "postgres"
		}

		db, err := database.Connect(database.Config{
			Driver:             driver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.db = db
		c.ready = db.PingContext

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if c.config.VaultBackend == config.BackendPostgres {
			repo := vaultRepository.NewPostgreSQLRepository(db)
			if err := repo.EnsureSchema(ctx); err != nil {
				return nil, fmt.Errorf("failed to ensure vault schema: %w", err)
			}
			return repo, nil
		}

		repo := vaultRepository.NewSQLiteRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure vault schema: %w", err)
		}
		return repo, nil

	case config.BackendMongo:
		clientOpts := options.Client().
			ApplyURI(c.config.MongoURI).
			SetConnectTimeout(c.config.MongoTimeout)

		client, err := mongo.Connect(clientOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		c.mongoClient = client

		ctx, cancel := context.WithTimeout(context.Background(), c.config.MongoTimeout)
		defer cancel()

		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return nil, fmt.Errorf("failed to ping mongodb: %w", err)
		}

		repo := vaultRepository.NewMongoRepository(client.Database(c.config.MongoDatabase))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure vault indexes: %w", err)
		}

		c.ready = func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}
		return repo, nil

	default:
		return nil, fmt.Errorf("unsupported vault backend: %s", c.config.VaultBackend)
	}
}

// initVaultStore creates the encrypting vault store with its cipher and hasher.
func (c *Container) initVaultStore() (vaultService.Store, error) {
	repo, err := c.VaultRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault repository for vault store: %w", err)
	}

	cipher, err := cryptoService.NewEnvelopeCipher(c.config.MasterSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return vaultService.NewVaultStore(repo, cipher, vaultService.NewSHA256HashService()), nil
}

// initAnonymizerUseCase creates the anonymizer use case with all its dependencies.
func (c *Container) initAnonymizerUseCase() (anonymizerUsecase.AnonymizerUseCase, error) {
	store, err := c.VaultStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault store for anonymizer use case: %w", err)
	}

	detector, err := anonymizerService.NewDetector(c.config.DetectorExtraNameLetters)
	if err != nil {
		return nil, fmt.Errorf("failed to create detector: %w", err)
	}

	strategy, err := anonymizerService.NewTokenStrategy(c.config.TokenStrategy, c.config.TokenSalt)
	if err != nil {
		return nil, fmt.Errorf("failed to create token strategy: %w", err)
	}

	tokenizer := anonymizerService.NewTokenizer(strategy, store)
	useCase := anonymizerUsecase.NewAnonymizerUseCase(detector, tokenizer, store)

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for anonymizer use case: %w", err)
	}

	businessMetrics := metrics.NewNoOpBusinessMetrics()
	if provider != nil {
		businessMetrics, err = metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create business metrics: %w", err)
		}
	}

	return anonymizerUsecase.NewAnonymizerUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initHTTPServer creates the API HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	useCase, err := c.AnonymizerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get anonymizer use case for http server: %w", err)
	}

	handler := anonymizerHTTP.NewAnonymizerHandler(useCase, logger)

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	var httpMetrics gin.HandlerFunc
	if provider != nil {
		httpMetrics = metrics.HTTPMetricsMiddleware(provider.MeterProvider(), c.config.MetricsNamespace)
	}

	return http.NewServer(c.config, handler, c.ready, httpMetrics, logger), nil
}
