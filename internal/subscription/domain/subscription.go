// Package domain defines the subscription entity and its billing cadence.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
)

// ErrSubscriptionNotFound indicates the requested subscription does not exist.
var ErrSubscriptionNotFound = apperrors.Wrap(apperrors.ErrNotFound, "subscription not found")

// ErrInvalidSubscriptionType indicates an unrecognized billing cadence.
var ErrInvalidSubscriptionType = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid subscription type")

// Type is the billing cadence of a subscription.
type Type string

const (
	TypeDaily   Type = "DAILY"
	TypeWeekly  Type = "WEEKLY"
	TypeMonthly Type = "MONTHLY"
	TypeYearly  Type = "YEARLY"
)

// ParseType converts a string into a subscription Type.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeDaily, TypeWeekly, TypeMonthly, TypeYearly:
		return Type(s), nil
	default:
		return "", ErrInvalidSubscriptionType
	}
}

// Subscription represents a recurring expense that generates a new expense
// record every billing period.
type Subscription struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Username        string
	Name            string
	Amount          string
	CurrencyCode    string
	Type            Type
	StartDate       time.Time
	NextBillingDate time.Time
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// IsDeleted reports whether the subscription has been soft deleted.
func (s *Subscription) IsDeleted() bool {
	return s.DeletedAt != nil
}

// AdvanceNextBillingDate moves the next billing date forward by one billing
// period.
func (s *Subscription) AdvanceNextBillingDate() {
	switch s.Type {
	case TypeDaily:
		s.NextBillingDate = s.NextBillingDate.AddDate(0, 0, 1)
	case TypeWeekly:
		s.NextBillingDate = s.NextBillingDate.AddDate(0, 0, 7)
	case TypeMonthly:
		s.NextBillingDate = s.NextBillingDate.AddDate(0, 1, 0)
	case TypeYearly:
		s.NextBillingDate = s.NextBillingDate.AddDate(1, 0, 0)
	}
}

// ExpenseNote is the note used for expenses generated from this subscription.
func (s *Subscription) ExpenseNote() string {
	return "Subscription: " + s.Name
}
