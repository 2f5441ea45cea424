// Package domain defines the core expense domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
)

// Expense is a single spending record belonging to one user. Amounts are
// carried as decimal strings and stored as NUMERIC so no precision is lost
// on the way through the API.
type Expense struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Username     string
	Amount       string
	CurrencyCode string
	Note         string
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// IsDeleted reports whether the expense has been soft deleted.
func (e *Expense) IsDeleted() bool {
	return e.DeletedAt != nil
}

// ErrExpenseNotFound indicates the requested expense does not exist.
var ErrExpenseNotFound = apperrors.Wrap(apperrors.ErrNotFound, "expense not found")
