// Package http provides HTTP handlers for subscription management operations.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/estifie/Expense-Tracker-API/internal/auth/http"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	"github.com/estifie/Expense-Tracker-API/internal/httputil"
	"github.com/estifie/Expense-Tracker-API/internal/subscription/domain"
	"github.com/estifie/Expense-Tracker-API/internal/subscription/http/dto"
	"github.com/estifie/Expense-Tracker-API/internal/subscription/usecase"
	customValidation "github.com/estifie/Expense-Tracker-API/internal/validation"
)

// SubscriptionHandler handles HTTP requests for subscription management operations.
type SubscriptionHandler struct {
	subscriptionUseCase usecase.UseCase
	logger              *slog.Logger
}

// NewSubscriptionHandler creates a new subscription handler with required dependencies.
func NewSubscriptionHandler(subscriptionUseCase usecase.UseCase, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionUseCase: subscriptionUseCase,
		logger:              logger,
	}
}

// OwnerResolver returns a resolver that maps the id path parameter to the
// subscription owner's username for authorization checks.
func (h *SubscriptionHandler) OwnerResolver() authHTTP.OwnerResolver {
	return func(c *gin.Context) (string, error) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return "", domain.ErrSubscriptionNotFound
		}
		return h.subscriptionUseCase.Owner(c.Request.Context(), id)
	}
}

// CreateHandler registers a new subscription for the user in the path.
// POST /v1/subscriptions/user/:username
func (h *SubscriptionHandler) CreateHandler(c *gin.Context) {
	var req dto.SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	startDate, err := req.ParsedStartDate()
	if err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	subscription, err := h.subscriptionUseCase.Create(c.Request.Context(), c.Param("username"), usecase.SubscriptionInput{
		Name:         req.Name,
		Amount:       req.Amount,
		CurrencyCode: req.CurrencyCode,
		Type:         req.Type,
		StartDate:    startDate,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSubscriptionToResponse(subscription))
}

// GetHandler retrieves a subscription by ID.
// GET /v1/subscriptions/:id
func (h *SubscriptionHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, domain.ErrSubscriptionNotFound, h.logger)
		return
	}

	subscription, err := h.subscriptionUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSubscriptionToResponse(subscription))
}

// UpdateHandler replaces the subscription's name, amount, currency, and
// billing cadence.
// PUT /v1/subscriptions/:id
func (h *SubscriptionHandler) UpdateHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, domain.ErrSubscriptionNotFound, h.logger)
		return
	}

	var req dto.SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	subscription, err := h.subscriptionUseCase.Update(c.Request.Context(), id, usecase.SubscriptionInput{
		Name:         req.Name,
		Amount:       req.Amount,
		CurrencyCode: req.CurrencyCode,
		Type:         req.Type,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSubscriptionToResponse(subscription))
}

// DeleteHandler deletes the subscription. A soft delete by default;
// ?hard=true removes the row permanently and requires HARD_DELETE_SUBSCRIPTION.
// DELETE /v1/subscriptions/:id?hard=false
func (h *SubscriptionHandler) DeleteHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, domain.ErrSubscriptionNotFound, h.logger)
		return
	}

	hardDelete := false
	if hardStr := c.Query("hard"); hardStr != "" {
		parsed, err := strconv.ParseBool(hardStr)
		if err != nil {
			httputil.HandleBadRequestGin(c, apperrors.Wrap(err, "hard parameter must be a boolean"), h.logger)
			return
		}
		hardDelete = parsed
	}

	if err := h.subscriptionUseCase.Delete(c.Request.Context(), id, hardDelete); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ActivateHandler resumes billing for the subscription.
// POST /v1/subscriptions/:id/activate
func (h *SubscriptionHandler) ActivateHandler(c *gin.Context) {
	h.setActive(c, h.subscriptionUseCase.Activate)
}

// DeactivateHandler pauses billing for the subscription.
// POST /v1/subscriptions/:id/deactivate
func (h *SubscriptionHandler) DeactivateHandler(c *gin.Context) {
	h.setActive(c, h.subscriptionUseCase.Deactivate)
}

func (h *SubscriptionHandler) setActive(c *gin.Context, op func(ctx context.Context, id uuid.UUID) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, domain.ErrSubscriptionNotFound, h.logger)
		return
	}

	if err := op(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListByUserHandler retrieves a user's subscriptions with pagination support.
// GET /v1/subscriptions/user/:username?offset=0&limit=50
func (h *SubscriptionHandler) ListByUserHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	subscriptions, err := h.subscriptionUseCase.ListByUsername(c.Request.Context(), c.Param("username"), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSubscriptionsToListResponse(subscriptions))
}

// ListHandler retrieves subscriptions across all users with pagination support.
// GET /v1/subscriptions?offset=0&limit=50
func (h *SubscriptionHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	subscriptions, err := h.subscriptionUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSubscriptionsToListResponse(subscriptions))
}
