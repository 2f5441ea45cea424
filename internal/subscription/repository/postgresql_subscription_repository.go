// Package repository provides data persistence implementations for subscription entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/estifie/Expense-Tracker-API/internal/database"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	"github.com/estifie/Expense-Tracker-API/internal/subscription/domain"
)

// PostgreSQLSubscriptionRepository handles subscription persistence for PostgreSQL.
type PostgreSQLSubscriptionRepository struct {
	db *sql.DB
}

// NewPostgreSQLSubscriptionRepository creates a new PostgreSQLSubscriptionRepository.
func NewPostgreSQLSubscriptionRepository(db *sql.DB) *PostgreSQLSubscriptionRepository {
	return &PostgreSQLSubscriptionRepository{
		db: db,
	}
}

const postgresSubscriptionColumns = `s.id, s.user_id, u.username, s.name, s.amount, s.currency_code,
	   s.type, s.start_date, s.next_billing_date, s.active, s.created_at, s.updated_at, s.deleted_at`

// Create inserts a new subscription.
func (r *PostgreSQLSubscriptionRepository) Create(ctx context.Context, subscription *domain.Subscription) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO subscriptions
			  (id, user_id, name, amount, currency_code, type, start_date, next_billing_date, active,
			   created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query,
		subscription.ID, subscription.UserID, subscription.Name, subscription.Amount,
		subscription.CurrencyCode, string(subscription.Type), subscription.StartDate,
		subscription.NextBillingDate, subscription.Active,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create subscription")
	}
	return nil
}

// GetByID retrieves a subscription by ID, including the owner's username.
// Soft deleted subscriptions are excluded unless includeDeleted is set.
func (r *PostgreSQLSubscriptionRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
	includeDeleted bool,
) (*domain.Subscription, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresSubscriptionColumns + `
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  WHERE s.id = $1`
	if !includeDeleted {
		query += " AND s.deleted_at IS NULL"
	}

	subscription, err := scanPostgresSubscription(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get subscription by id")
	}

	return subscription, nil
}

// GetOwner returns the username of the subscription's owner, excluding soft
// deleted subscriptions. Used by the authorization layer to resolve ownership.
func (r *PostgreSQLSubscriptionRepository) GetOwner(ctx context.Context, id uuid.UUID) (string, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT u.username
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  WHERE s.id = $1 AND s.deleted_at IS NULL`

	var username string
	err := querier.QueryRowContext(ctx, query, id).Scan(&username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrSubscriptionNotFound
		}
		return "", apperrors.Wrap(err, "failed to get subscription owner")
	}

	return username, nil
}

// ListByUsername retrieves a user's subscriptions, newest first, excluding
// soft deleted ones.
func (r *PostgreSQLSubscriptionRepository) ListByUsername(
	ctx context.Context,
	username string,
	offset, limit int,
) ([]*domain.Subscription, error) {
	query := `SELECT ` + postgresSubscriptionColumns + `
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  WHERE u.username = $1 AND s.deleted_at IS NULL
			  ORDER BY s.created_at DESC
			  OFFSET $2 LIMIT $3`

	return r.list(ctx, query, username, offset, limit)
}

// List retrieves subscriptions across all users, newest first, excluding
// soft deleted ones.
func (r *PostgreSQLSubscriptionRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*domain.Subscription, error) {
	query := `SELECT ` + postgresSubscriptionColumns + `
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  WHERE s.deleted_at IS NULL
			  ORDER BY s.created_at DESC
			  OFFSET $1 LIMIT $2`

	return r.list(ctx, query, offset, limit)
}

// FindDue retrieves active subscriptions whose next billing date is on or
// before the given date, excluding soft deleted ones.
func (r *PostgreSQLSubscriptionRepository) FindDue(
	ctx context.Context,
	date time.Time,
) ([]*domain.Subscription, error) {
	query := `SELECT ` + postgresSubscriptionColumns + `
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  WHERE s.active = TRUE AND s.deleted_at IS NULL AND s.next_billing_date <= $1
			  ORDER BY s.next_billing_date`

	return r.list(ctx, query, date)
}

func (r *PostgreSQLSubscriptionRepository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Subscription, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list subscriptions")
	}
	defer rows.Close()

	var subscriptions []*domain.Subscription
	for rows.Next() {
		subscription, err := scanPostgresSubscription(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan subscription")
		}
		subscriptions = append(subscriptions, subscription)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate subscriptions")
	}

	return subscriptions, nil
}

// Update persists subscription field changes, including soft delete marks
// and billing date advances.
func (r *PostgreSQLSubscriptionRepository) Update(ctx context.Context, subscription *domain.Subscription) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE subscriptions
			  SET name = $1, amount = $2, currency_code = $3, type = $4,
				  next_billing_date = $5, active = $6, deleted_at = $7, updated_at = NOW()
			  WHERE id = $8`

	result, err := querier.ExecContext(ctx, query,
		subscription.Name, subscription.Amount, subscription.CurrencyCode, string(subscription.Type),
		subscription.NextBillingDate, subscription.Active, subscription.DeletedAt, subscription.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update subscription")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrSubscriptionNotFound
	}

	return nil
}

// Delete permanently removes a subscription.
func (r *PostgreSQLSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete subscription")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrSubscriptionNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgresSubscription(row rowScanner) (*domain.Subscription, error) {
	var subscription domain.Subscription
	var subscriptionType string

	err := row.Scan(
		&subscription.ID, &subscription.UserID, &subscription.Username, &subscription.Name,
		&subscription.Amount, &subscription.CurrencyCode, &subscriptionType,
		&subscription.StartDate, &subscription.NextBillingDate, &subscription.Active,
		&subscription.CreatedAt, &subscription.UpdatedAt, &subscription.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	subscription.Type = domain.Type(subscriptionType)
	return &subscription, nil
}
