// Package http provides HTTP middleware and handlers for authentication and
// authorization.
package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	authUseCase "github.com/estifie/Expense-Tracker-API/internal/auth/usecase"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	"github.com/estifie/Expense-Tracker-API/internal/httputil"
)

// OwnerResolver determines the owner of the resource a request targets. It
// returns the owner's username, or an empty string when the route has no
// ownership dimension. Errors propagate to the client unchanged, so a lookup
// on a missing resource surfaces as 404 before any authorization decision.
type OwnerResolver func(c *gin.Context) (string, error)

// OwnerFromPath returns a resolver that reads the owner username directly
// from a URL path parameter.
func OwnerFromPath(param string) OwnerResolver {
	return func(c *gin.Context) (string, error) {
		return c.Param(param), nil
	}
}

// DecisionRecorder records authorization decisions for observability.
type DecisionRecorder interface {
	RecordAuthzDecision(route string, allowed bool)
}

// AuthenticationMiddleware establishes the caller's identity from a Bearer
// token in the Authorization header.
//
// The middleware never rejects a request. A missing, malformed, expired, or
// forged token simply leaves the request anonymous; the enforcement
// middleware decides later whether anonymous access is acceptable for the
// route. This keeps the gate and the policy decision in separate places.
//
// Authorization header format: "Bearer <token>" (case-insensitive "bearer").
func AuthenticationMiddleware(useCase authUseCase.AuthUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// An identity already attached upstream is kept as is.
		if _, ok := authDomain.IdentityFromContext(c.Request.Context()); ok {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication skipped: malformed authorization header")
			c.Next()
			return
		}

		token := authHeader[len(bearerPrefix):]
		if token == "" {
			c.Next()
			return
		}

		identity, err := useCase.Identify(c.Request.Context(), token)
		if err != nil {
			// Invalid credentials downgrade to anonymous rather than failing
			// the request.
			logger.Debug("authentication failed, continuing as anonymous",
				slog.String("error", err.Error()))
			c.Next()
			return
		}

		ctx := authDomain.WithIdentity(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("username", identity.Username))

		c.Next()
	}
}

// AuthorizationMiddleware enforces a capability requirement on a route.
//
// It must run after AuthenticationMiddleware. The requirement is evaluated
// against the identity established for the request (nil for anonymous
// callers) and the resource owner produced by the resolver. A nil resolver
// means the route has no ownership dimension, so OWNERSHIP slots in the
// requirement can never be satisfied.
//
// Denied anonymous requests get 401; denied authenticated requests get 403.
// Neither response reveals which capabilities the route requires.
func AuthorizationMiddleware(
	requirement authDomain.Requirement,
	resolver OwnerResolver,
	recorder DecisionRecorder,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := authDomain.IdentityFromContext(c.Request.Context())

		var owner string
		if resolver != nil {
			resolved, err := resolver(c)
			if err != nil {
				httputil.HandleErrorGin(c, err, logger)
				c.Abort()
				return
			}
			owner = resolved
		}

		decision := authDomain.Evaluate(identity, requirement, owner)

		route := c.FullPath()
		if recorder != nil {
			recorder.RecordAuthzDecision(route, decision == authDomain.Allow)
		}

		if decision != authDomain.Allow {
			if identity == nil {
				logger.Debug("authorization denied: anonymous caller",
					slog.String("route", route))
				httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			} else {
				logger.Debug("authorization denied: insufficient capabilities",
					slog.String("route", route),
					slog.String("username", identity.Username))
				httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			}
			c.Abort()
			return
		}

		c.Next()
	}
}
