// Package app provides the dependency injection container for assembling
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	authService "github.com/estifie/Expense-Tracker-API/internal/auth/service"
	authUsecase "github.com/estifie/Expense-Tracker-API/internal/auth/usecase"
	"github.com/estifie/Expense-Tracker-API/internal/config"
	"github.com/estifie/Expense-Tracker-API/internal/currency"
	"github.com/estifie/Expense-Tracker-API/internal/database"
	expenseUsecase "github.com/estifie/Expense-Tracker-API/internal/expense/usecase"
	"github.com/estifie/Expense-Tracker-API/internal/http"
	"github.com/estifie/Expense-Tracker-API/internal/metrics"
	subscriptionUsecase "github.com/estifie/Expense-Tracker-API/internal/subscription/usecase"
	"github.com/estifie/Expense-Tracker-API/internal/subscription/worker"
	tagUsecase "github.com/estifie/Expense-Tracker-API/internal/tag/usecase"
	userUsecase "github.com/estifie/Expense-Tracker-API/internal/user/usecase"
)

// Container holds all application dependencies and provides methods to access
// them. Components are created lazily on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	metricsProvider *metrics.Provider
	authzRecorder   *metrics.AuthzRecorder

	// Services
	tokenService    authService.TokenService
	currencyService *currency.Service

	// Repositories
	userRepo         userUsecase.UserRepository
	tagRepo          tagUsecase.TagRepository
	expenseRepo      expenseUsecase.ExpenseRepository
	subscriptionRepo subscriptionUsecase.SubscriptionRepository

	// Use Cases
	authUseCase         authUsecase.AuthUseCase
	userUseCase         userUsecase.UseCase
	tagUseCase          tagUsecase.UseCase
	expenseUseCase      expenseUsecase.UseCase
	subscriptionUseCase subscriptionUsecase.UseCase

	// Servers and Workers
	httpServer    *http.Server
	metricsServer *http.MetricsServer
	billingWorker *worker.BillingWorker

	// Initialization flags and mutex for thread-safety
	mu                      sync.Mutex
	loggerInit              sync.Once
	dbInit                  sync.Once
	txManagerInit           sync.Once
	metricsProviderInit     sync.Once
	authzRecorderInit       sync.Once
	tokenServiceInit        sync.Once
	currencyServiceInit     sync.Once
	userRepoInit            sync.Once
	tagRepoInit             sync.Once
	expenseRepoInit         sync.Once
	subscriptionRepoInit    sync.Once
	authUseCaseInit         sync.Once
	userUseCaseInit         sync.Once
	tagUseCaseInit          sync.Once
	expenseUseCaseInit      sync.Once
	subscriptionUseCaseInit sync.Once
	httpServerInit          sync.Once
	metricsServerInit       sync.Once
	billingWorkerInit       sync.Once
	initErrors              map[string]error
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
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
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

// AuthzRecorder returns the authorization decision recorder, or nil when
// metrics are disabled.
func (c *Container) AuthzRecorder() (*metrics.AuthzRecorder, error) {
	var err error
	c.authzRecorderInit.Do(func() {
		provider, providerErr := c.MetricsProvider()
		if providerErr != nil {
			c.initErrors["authzRecorder"] = providerErr
			return
		}
		if provider == nil {
			return
		}
		c.authzRecorder, err = metrics.NewAuthzRecorder(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["authzRecorder"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authzRecorder"]; exists {
		return nil, storedErr
	}
	return c.authzRecorder, nil
}

// TokenService returns the signed token service.
func (c *Container) TokenService() (authService.TokenService, error) {
	var err error
	c.tokenServiceInit.Do(func() {
		c.tokenService, err = authService.NewTokenService(
			c.config.AuthTokenSigningKey,
			c.config.AuthTokenExpiration,
		)
		if err != nil {
			c.initErrors["tokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// CurrencyService returns the exchange rate conversion service.
func (c *Container) CurrencyService() *currency.Service {
	c.currencyServiceInit.Do(func() {
		c.currencyService = currency.NewService(
			c.config.CurrencyAPIURL,
			c.config.CurrencyAPIKey,
			c.config.CurrencyCacheTTL,
			c.config.CurrencyCacheSize,
			c.Logger(),
		)
	})
	return c.currencyService
}

// Shutdown gracefully releases every initialized component.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.billingWorker != nil {
		if err := c.billingWorker.Stop(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("billing worker shutdown: %w", err))
		}
	}

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
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

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}
