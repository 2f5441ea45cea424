// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/estifie/Expense-Tracker-API/internal/expense/domain"
)

// ExpenseRequest contains the fields for creating or updating an expense.
// The owner username comes from the URL parameter, not the body.
type ExpenseRequest struct {
	Amount       string `json:"amount" binding:"required"`
	CurrencyCode string `json:"currency_code" binding:"required"`
	Note         string `json:"note"`
}

// Validate checks if the expense request is structurally valid. Amount and
// currency formats are validated by the use case.
func (r *ExpenseRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Amount, validation.Required),
		validation.Field(&r.CurrencyCode, validation.Required),
	)
}

// TagRequest contains the tag name for attach and detach operations.
type TagRequest struct {
	Name string `json:"name" binding:"required"`
}

// Validate checks if the tag request is valid.
func (r *TagRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			validation.Length(1, 255),
		),
	)
}

// ExpenseResponse represents an expense in API responses. ConvertedAmount
// and ConvertedCurrency are only set when the caller asked for a currency
// conversion.
type ExpenseResponse struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Amount            string    `json:"amount"`
	CurrencyCode      string    `json:"currency_code"`
	Note              string    `json:"note,omitempty"`
	Tags              []string  `json:"tags,omitempty"`
	ConvertedAmount   string    `json:"converted_amount,omitempty"`
	ConvertedCurrency string    `json:"converted_currency,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// MapExpenseToResponse converts a domain expense to a response DTO.
func MapExpenseToResponse(expense *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:           expense.ID.String(),
		Username:     expense.Username,
		Amount:       expense.Amount,
		CurrencyCode: expense.CurrencyCode,
		Note:         expense.Note,
		Tags:         expense.Tags,
		CreatedAt:    expense.CreatedAt,
		UpdatedAt:    expense.UpdatedAt,
	}
}

// ListExpensesResponse represents a paginated list of expenses in API responses.
type ListExpensesResponse struct {
	Data []ExpenseResponse `json:"data"`
}

// MapExpensesToListResponse converts a slice of domain expenses to a list response.
func MapExpensesToListResponse(expenses []*domain.Expense) ListExpensesResponse {
	data := make([]ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		data = append(data, MapExpenseToResponse(expense))
	}

	return ListExpensesResponse{
		Data: data,
	}
}
