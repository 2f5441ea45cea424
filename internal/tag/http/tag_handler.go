// Package http provides HTTP handlers for tag management operations.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	"github.com/estifie/Expense-Tracker-API/internal/httputil"
	"github.com/estifie/Expense-Tracker-API/internal/tag/domain"
	"github.com/estifie/Expense-Tracker-API/internal/tag/http/dto"
	"github.com/estifie/Expense-Tracker-API/internal/tag/usecase"
	customValidation "github.com/estifie/Expense-Tracker-API/internal/validation"
)

// TagHandler handles HTTP requests for tag management operations.
type TagHandler struct {
	tagUseCase usecase.UseCase
	logger     *slog.Logger
}

// NewTagHandler creates a new tag handler with required dependencies.
func NewTagHandler(tagUseCase usecase.UseCase, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		tagUseCase: tagUseCase,
		logger:     logger,
	}
}

// CreateHandler creates a tag, or returns the existing one with the same name.
// POST /v1/tags
func (h *TagHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	tag, err := h.tagUseCase.Create(c.Request.Context(), req.Name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTagToResponse(tag))
}

// GetHandler retrieves a tag by ID.
// GET /v1/tags/:id
func (h *TagHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, domain.ErrTagNotFound, h.logger)
		return
	}

	tag, err := h.tagUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTagToResponse(tag))
}

// ListHandler retrieves tags with pagination support.
// GET /v1/tags?offset=0&limit=50
func (h *TagHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	tags, err := h.tagUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTagsToListResponse(tags))
}

// DeleteHandler deletes the tag. A soft delete by default; ?hard=true removes
// the row permanently and requires HARD_DELETE_TAG.
// DELETE /v1/tags/:id?hard=false
func (h *TagHandler) DeleteHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, domain.ErrTagNotFound, h.logger)
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

	if err := h.tagUseCase.Delete(c.Request.Context(), id, hardDelete); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
