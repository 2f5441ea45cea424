// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/estifie/Expense-Tracker-API/internal/subscription/domain"
)

const dateLayout = "2006-01-02"

// SubscriptionRequest contains the fields for creating or updating a
// subscription. StartDate is optional and defaults to today; it is ignored
// on updates.
type SubscriptionRequest struct {
	Name         string `json:"name" binding:"required"`
	Amount       string `json:"amount" binding:"required"`
	CurrencyCode string `json:"currency_code" binding:"required"`
	Type         string `json:"type" binding:"required"`
	StartDate    string `json:"start_date"`
}

// Validate checks if the subscription request is structurally valid. Amount,
// currency, and type semantics are validated by the use case.
func (r *SubscriptionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Amount, validation.Required),
		validation.Field(&r.CurrencyCode, validation.Required),
		validation.Field(&r.Type, validation.Required),
		validation.Field(&r.StartDate, validation.Date(dateLayout)),
	)
}

// ParsedStartDate returns the start date as a time, or the zero time when
// the field was omitted.
func (r *SubscriptionRequest) ParsedStartDate() (time.Time, error) {
	if r.StartDate == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, r.StartDate)
}

// SubscriptionResponse represents a subscription in API responses.
type SubscriptionResponse struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Name            string    `json:"name"`
	Amount          string    `json:"amount"`
	CurrencyCode    string    `json:"currency_code"`
	Type            string    `json:"type"`
	StartDate       string    `json:"start_date"`
	NextBillingDate string    `json:"next_billing_date"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MapSubscriptionToResponse converts a domain subscription to a response DTO.
func MapSubscriptionToResponse(subscription *domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:              subscription.ID.String(),
		Username:        subscription.Username,
		Name:            subscription.Name,
		Amount:          subscription.Amount,
		CurrencyCode:    subscription.CurrencyCode,
		Type:            string(subscription.Type),
		StartDate:       subscription.StartDate.Format(dateLayout),
		NextBillingDate: subscription.NextBillingDate.Format(dateLayout),
		Active:          subscription.Active,
		CreatedAt:       subscription.CreatedAt,
		UpdatedAt:       subscription.UpdatedAt,
	}
}

// ListSubscriptionsResponse represents a paginated list of subscriptions in API responses.
type ListSubscriptionsResponse struct {
	Data []SubscriptionResponse `json:"data"`
}

// MapSubscriptionsToListResponse converts a slice of domain subscriptions to a list response.
func MapSubscriptionsToListResponse(subscriptions []*domain.Subscription) ListSubscriptionsResponse {
	data := make([]SubscriptionResponse, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		data = append(data, MapSubscriptionToResponse(subscription))
	}

	return ListSubscriptionsResponse{
		Data: data,
	}
}
