// Package http provides HTTP handlers for user account and capability
// administration.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	"github.com/estifie/Expense-Tracker-API/internal/httputil"
	"github.com/estifie/Expense-Tracker-API/internal/user/http/dto"
	"github.com/estifie/Expense-Tracker-API/internal/user/usecase"
	customValidation "github.com/estifie/Expense-Tracker-API/internal/validation"
)

// UserHandler handles HTTP requests for user account and capability
// management operations.
type UserHandler struct {
	userUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler with required dependencies.
func NewUserHandler(userUseCase usecase.UseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// GetHandler retrieves a user by username.
// GET /v1/users/:username
func (h *UserHandler) GetHandler(c *gin.Context) {
	user, err := h.userUseCase.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// ListHandler retrieves users with pagination support.
// GET /v1/users?offset=0&limit=50
func (h *UserHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	users, err := h.userUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUsersToListResponse(users))
}

// DeactivateHandler disables authentication for the account.
// POST /v1/users/:username/deactivate
func (h *UserHandler) DeactivateHandler(c *gin.Context) {
	if err := h.userUseCase.Deactivate(c.Request.Context(), c.Param("username")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ActivateHandler re-enables authentication for a deactivated account.
// POST /v1/users/:username/activate
func (h *UserHandler) ActivateHandler(c *gin.Context) {
	if err := h.userUseCase.Activate(c.Request.Context(), c.Param("username")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// DeleteHandler deletes the account. A soft delete by default; ?hard=true
// removes the row permanently and requires HARD_DELETE_USER.
// DELETE /v1/users/:username?hard=false
func (h *UserHandler) DeleteHandler(c *gin.Context) {
	hardDelete := false
	if hardStr := c.Query("hard"); hardStr != "" {
		parsed, err := strconv.ParseBool(hardStr)
		if err != nil {
			httputil.HandleBadRequestGin(c, apperrors.Wrap(err, "hard parameter must be a boolean"), h.logger)
			return
		}
		hardDelete = parsed
	}

	if err := h.userUseCase.Delete(c.Request.Context(), c.Param("username"), hardDelete); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// RestoreHandler clears the soft delete mark on the account.
// POST /v1/users/:username/restore
func (h *UserHandler) RestoreHandler(c *gin.Context) {
	if err := h.userUseCase.Restore(c.Request.Context(), c.Param("username")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// GetCapabilitiesHandler retrieves the subject's granted capability set.
// GET /v1/users/:username/permissions
func (h *UserHandler) GetCapabilitiesHandler(c *gin.Context) {
	username := c.Param("username")

	capabilities, err := h.userUseCase.GetCapabilities(c.Request.Context(), username)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCapabilitiesToResponse(username, capabilities))
}

// GrantCapabilityHandler adds a capability to the subject's granted set.
// POST /v1/users/:username/permissions
func (h *UserHandler) GrantCapabilityHandler(c *gin.Context) {
	var req dto.CapabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err := h.userUseCase.GrantCapability(
		c.Request.Context(),
		c.Param("username"),
		authDomain.Capability(req.Capability),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// RevokeCapabilityHandler removes a capability from the subject's granted set.
// DELETE /v1/users/:username/permissions
func (h *UserHandler) RevokeCapabilityHandler(c *gin.Context) {
	var req dto.CapabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err := h.userUseCase.RevokeCapability(
		c.Request.Context(),
		c.Param("username"),
		authDomain.Capability(req.Capability),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
