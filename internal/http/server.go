package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	authHTTP "github.com/estifie/Expense-Tracker-API/internal/auth/http"
	authUsecase "github.com/estifie/Expense-Tracker-API/internal/auth/usecase"
	"github.com/estifie/Expense-Tracker-API/internal/config"
	expenseHTTP "github.com/estifie/Expense-Tracker-API/internal/expense/http"
	"github.com/estifie/Expense-Tracker-API/internal/metrics"
	subscriptionHTTP "github.com/estifie/Expense-Tracker-API/internal/subscription/http"
	tagHTTP "github.com/estifie/Expense-Tracker-API/internal/tag/http"
	userHTTP "github.com/estifie/Expense-Tracker-API/internal/user/http"
)

// Handlers groups the HTTP handlers and the authentication dependencies the
// route table needs.
type Handlers struct {
	Auth         *authHTTP.AuthHandler
	User         *userHTTP.UserHandler
	Expense      *expenseHTTP.ExpenseHandler
	Tag          *tagHTTP.TagHandler
	Subscription *subscriptionHTTP.SubscriptionHandler

	AuthUseCase authUsecase.AuthUseCase
	Recorder    authHTTP.DecisionRecorder

	// MeterProvider enables HTTP request metrics when set.
	MeterProvider metric.MeterProvider
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates the API server and registers the full route table. Every
// protected route is registered together with its capability requirement; a
// route without an authorization middleware is either the auth surface or a
// health endpoint.
func NewServer(cfg *config.Config, db *sql.DB, logger *slog.Logger, handlers Handlers) *Server {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if handlers.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(handlers.MeterProvider, cfg.MetricsNamespace))
	}

	server := &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router: router,
		db:     db,
		logger: logger,
	}

	server.registerRoutes(cfg, handlers)

	return server
}

func (s *Server) registerRoutes(cfg *config.Config, h Handlers) {
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/ready", s.readinessHandler)

	// Every route below passes through authentication first. The gate never
	// rejects; it only decides whether the request carries an identity.
	v1 := s.router.Group("/v1")
	v1.Use(authHTTP.AuthenticationMiddleware(h.AuthUseCase, s.logger))

	// protect pairs a capability requirement with an optional owner resolver.
	protect := func(requirement authDomain.Requirement, resolver authHTTP.OwnerResolver) gin.HandlerFunc {
		return authHTTP.AuthorizationMiddleware(requirement, resolver, h.Recorder, s.logger)
	}
	pathOwner := authHTTP.OwnerFromPath("username")

	// Authentication surface, open to anonymous callers.
	auth := v1.Group("/auth")
	if cfg.RateLimitLoginEnabled {
		auth.Use(authHTTP.LoginRateLimitMiddleware(
			cfg.RateLimitLoginRequestsPerSec, cfg.RateLimitLoginBurst, s.logger))
	}
	auth.POST("/register", h.Auth.RegisterHandler)
	auth.POST("/login", h.Auth.LoginHandler)

	// User administration.
	users := v1.Group("/users")
	users.GET("",
		protect(authDomain.RequireAnyOf(authDomain.CapabilityManageUsers, authDomain.CapabilityViewUsers), nil),
		h.User.ListHandler)
	users.GET("/:username",
		protect(authDomain.RequireAnyOf(
			authDomain.CapabilityOwnership, authDomain.CapabilityManageUsers, authDomain.CapabilityViewUsers,
		), pathOwner),
		h.User.GetHandler)
	users.POST("/:username/deactivate",
		protect(authDomain.RequireAnyOf(authDomain.CapabilityOwnership, authDomain.CapabilityManageUsers), pathOwner),
		h.User.DeactivateHandler)
	// Deactivated accounts cannot authenticate, so reactivation and restore
	// are administrative operations.
	users.POST("/:username/activate",
		protect(authDomain.RequireCapability(authDomain.CapabilityManageUsers), nil),
		h.User.ActivateHandler)
	users.POST("/:username/restore",
		protect(authDomain.RequireCapability(authDomain.CapabilityManageUsers), nil),
		h.User.RestoreHandler)
	users.DELETE("/:username",
		protect(authDomain.RequireAnyOf(authDomain.CapabilityOwnership, authDomain.CapabilityManageUsers), pathOwner),
		h.User.DeleteHandler)

	// Capability administration.
	users.GET("/:username/permissions",
		protect(authDomain.RequireAnyOf(
			authDomain.CapabilityManagePermissions, authDomain.CapabilityViewPermissions,
		), nil),
		h.User.GetCapabilitiesHandler)
	users.POST("/:username/permissions",
		protect(authDomain.RequireAnyOf(
			authDomain.CapabilityManagePermissions, authDomain.CapabilityGrantPermission,
		), nil),
		h.User.GrantCapabilityHandler)
	users.DELETE("/:username/permissions",
		protect(authDomain.RequireAnyOf(
			authDomain.CapabilityManagePermissions, authDomain.CapabilityRevokePermission,
		), nil),
		h.User.RevokeCapabilityHandler)

	// Expenses.
	expenses := v1.Group("/expenses")
	expenseOwner := h.Expense.OwnerResolver()
	expenses.GET("",
		protect(authDomain.RequireAnyOf(authDomain.CapabilityManageExpenses, authDomain.CapabilityViewExpenses), nil),
		h.Expense.ListHandler)
	expenses.GET("/user/:username",
		protect(authDomain.RequireAnyOf(
			authDomain.CapabilityOwnership, authDomain.CapabilityManageExpenses, authDomain.CapabilityViewExpenses,
		), pathOwner),
		h.Expense.ListByUserHandler)
	expenses.POST("/user/:username",
		protect(authDomain.RequireAnyOf(authDomain.CapabilityOwnership, authDomain.CapabilityManageExpenses), pathOwner),
		h.Expense.CreateHandler)
	expenses.GET("/:id",
		protect(authDomain.RequireAnyOf(
			authDomain.CapabilityOwnership, authDomain.CapabilityManageExpenses, authDomain.CapabilityViewExpenses,
		), expenseOwner),
		h.Expense.GetHandler)
	expenses.PUT("/:id",
		protect(authDomain.RequireAnyOf(authDomain.CapabilityOwnership, authDomain.CapabilityManageExpenses), expenseOwner),
		h.Expense.UpdateHandler)
	expenses.DELETE("/:id",
		protect(authDomain.RequireAnyOf(authDomain.CapabilityOwnership, authDomain.CapabilityManageExpenses), expenseOwner),
		h.Expense.DeleteHandler)
	expenses.POST("/:id/tags",
		protect(authDomain.RequireAnyOf(authDomain.CapabilityOwnership, authDomain.CapabilityManageExpenses), expenseOwner),
		h.Expense.AddTagHandler)
	expenses.DELETE("/:id/tags",
		protect(authDomain.RequireAnyOf(authDomain.CapabilityOwnership, authDomain.CapabilityManageExpenses), expenseOwner),
		h.Expense.RemoveTagHandler)

	// Subscriptions.
	subscriptions := v1.Group("/subscriptions")
	subscriptionOwner := h.Subscription.OwnerResolver()
	subscriptions.GET("",
		protect(authDomain.RequireAnyOf(
			authDomain.CapabilityManageSubscriptions, authDomain.CapabilityViewSubscriptions,
		), nil),
		h.Subscription.ListHandler)
	subscriptions.GET("/user/:username",
		protect(authDomain.RequireAnyOf(
			authDomain.CapabilityOwnership, authDomain.CapabilityManageSubscriptions, authDomain.CapabilityViewSubscriptions,
		), pathOwner),
		h.Subscription.ListByUserHandler)
	subscriptions.POST("/user/:username",
		protect(authDomain.RequireAnyOf(
			authDomain.CapabilityOwnership, authDomain.CapabilityManageSubscriptions,
		), pathOwner),
		h.Subscription.CreateHandler)
	subscriptions.GET("/:id",
		protect(authDomain.RequireAnyOf(
			authDomain.CapabilityOwnership, authDomain.CapabilityManageSubscriptions, authDomain.CapabilityViewSubscriptions,
		), subscriptionOwner),
		h.Subscription.GetHandler)
	subscriptions.PUT("/:id",
		protect(authDomain.RequireAnyOf(
			authDomain.CapabilityOwnership, authDomain.CapabilityManageSubscriptions,
		), subscriptionOwner),
		h.Subscription.UpdateHandler)
	subscriptions.DELETE("/:id",
		protect(authDomain.RequireAnyOf(
			authDomain.CapabilityOwnership, authDomain.CapabilityManageSubscriptions,
		), subscriptionOwner),
		h.Subscription.DeleteHandler)
	subscriptions.POST("/:id/activate",
		protect(authDomain.RequireAnyOf(
			authDomain.CapabilityOwnership, authDomain.CapabilityManageSubscriptions,
		), subscriptionOwner),
		h.Subscription.ActivateHandler)
	subscriptions.POST("/:id/deactivate",
		protect(authDomain.RequireAnyOf(
			authDomain.CapabilityOwnership, authDomain.CapabilityManageSubscriptions,
		), subscriptionOwner),
		h.Subscription.DeactivateHandler)

	// Tags are shared across users, so tag administration is capability-only.
	tags := v1.Group("/tags")
	tags.GET("",
		protect(authDomain.RequireAnyOf(authDomain.CapabilityManageTags, authDomain.CapabilityViewTags), nil),
		h.Tag.ListHandler)
	tags.GET("/:id",
		protect(authDomain.RequireAnyOf(authDomain.CapabilityManageTags, authDomain.CapabilityViewTags), nil),
		h.Tag.GetHandler)
	tags.POST("",
		protect(authDomain.RequireCapability(authDomain.CapabilityManageTags), nil),
		h.Tag.CreateHandler)
	tags.DELETE("/:id",
		protect(authDomain.RequireCapability(authDomain.CapabilityManageTags), nil),
		h.Tag.DeleteHandler)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can reach its dependencies.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	if s.db == nil {
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the API HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
