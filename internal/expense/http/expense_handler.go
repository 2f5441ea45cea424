// Package http provides HTTP handlers for expense management operations.
package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/estifie/Expense-Tracker-API/internal/auth/http"
	"github.com/estifie/Expense-Tracker-API/internal/currency"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	"github.com/estifie/Expense-Tracker-API/internal/expense/domain"
	"github.com/estifie/Expense-Tracker-API/internal/expense/http/dto"
	"github.com/estifie/Expense-Tracker-API/internal/expense/usecase"
	"github.com/estifie/Expense-Tracker-API/internal/httputil"
	customValidation "github.com/estifie/Expense-Tracker-API/internal/validation"
)

// ExpenseHandler handles HTTP requests for expense management operations.
type ExpenseHandler struct {
	expenseUseCase usecase.UseCase
	converter      currency.Converter
	logger         *slog.Logger
}

// NewExpenseHandler creates a new expense handler with required dependencies.
func NewExpenseHandler(
	expenseUseCase usecase.UseCase,
	converter currency.Converter,
	logger *slog.Logger,
) *ExpenseHandler {
	return &ExpenseHandler{
		expenseUseCase: expenseUseCase,
		converter:      converter,
		logger:         logger,
	}
}

// OwnerResolver returns a resolver that maps the id path parameter to the
// expense owner's username for authorization checks.
func (h *ExpenseHandler) OwnerResolver() authHTTP.OwnerResolver {
	return func(c *gin.Context) (string, error) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return "", domain.ErrExpenseNotFound
		}
		return h.expenseUseCase.Owner(c.Request.Context(), id)
	}
}

// CreateHandler records a new expense for the user in the path.
// POST /v1/expenses/user/:username
func (h *ExpenseHandler) CreateHandler(c *gin.Context) {
	var req dto.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	expense, err := h.expenseUseCase.Create(c.Request.Context(), c.Param("username"), usecase.ExpenseInput{
		Amount:       req.Amount,
		CurrencyCode: req.CurrencyCode,
		Note:         req.Note,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapExpenseToResponse(expense))
}

// GetHandler retrieves an expense by ID. With ?currency=XYZ the amount is
// additionally converted to the requested currency for display.
// GET /v1/expenses/:id?currency=EUR
func (h *ExpenseHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, domain.ErrExpenseNotFound, h.logger)
		return
	}

	expense, err := h.expenseUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapExpenseToResponse(expense)

	if target := strings.ToUpper(c.Query("currency")); target != "" && target != expense.CurrencyCode {
		converted, err := h.converter.Convert(c.Request.Context(), expense.CurrencyCode, target, expense.Amount)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		response.ConvertedAmount = converted
		response.ConvertedCurrency = target
	}

	c.JSON(http.StatusOK, response)
}

// UpdateHandler replaces the expense's amount, currency, and note.
// PUT /v1/expenses/:id
func (h *ExpenseHandler) UpdateHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, domain.ErrExpenseNotFound, h.logger)
		return
	}

	var req dto.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	expense, err := h.expenseUseCase.Update(c.Request.Context(), id, usecase.ExpenseInput{
		Amount:       req.Amount,
		CurrencyCode: req.CurrencyCode,
		Note:         req.Note,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapExpenseToResponse(expense))
}

// DeleteHandler deletes the expense. A soft delete by default; ?hard=true
// removes the row permanently and requires HARD_DELETE_EXPENSE.
// DELETE /v1/expenses/:id?hard=false
func (h *ExpenseHandler) DeleteHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, domain.ErrExpenseNotFound, h.logger)
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

	if err := h.expenseUseCase.Delete(c.Request.Context(), id, hardDelete); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListByUserHandler retrieves a user's expenses with pagination support.
// GET /v1/expenses/user/:username?offset=0&limit=50
func (h *ExpenseHandler) ListByUserHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	expenses, err := h.expenseUseCase.ListByUsername(c.Request.Context(), c.Param("username"), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapExpensesToListResponse(expenses))
}

// ListHandler retrieves expenses across all users with pagination support.
// GET /v1/expenses?offset=0&limit=50
func (h *ExpenseHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	expenses, err := h.expenseUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapExpensesToListResponse(expenses))
}

// AddTagHandler attaches a tag to the expense, creating the tag on first use.
// POST /v1/expenses/:id/tags
func (h *ExpenseHandler) AddTagHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, domain.ErrExpenseNotFound, h.logger)
		return
	}

	var req dto.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.expenseUseCase.AddTag(c.Request.Context(), id, req.Name); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// RemoveTagHandler detaches a tag from the expense.
// DELETE /v1/expenses/:id/tags
func (h *ExpenseHandler) RemoveTagHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, domain.ErrExpenseNotFound, h.logger)
		return
	}

	var req dto.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.expenseUseCase.RemoveTag(c.Request.Context(), id, req.Name); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
