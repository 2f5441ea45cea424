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

// MySQLSubscriptionRepository handles subscription persistence for MySQL.
type MySQLSubscriptionRepository struct {
	db *sql.DB
}

// NewMySQLSubscriptionRepository creates a new MySQLSubscriptionRepository.
func NewMySQLSubscriptionRepository(db *sql.DB) *MySQLSubscriptionRepository {
	return &MySQLSubscriptionRepository{
		db: db,
	}
}

const mysqlSubscriptionColumns = `s.id, s.user_id, u.username, s.name, s.amount, s.currency_code,
	   s.type, s.start_date, s.next_billing_date, s.active, s.created_at, s.updated_at, s.deleted_at`

// Create inserts a new subscription.
func (r *MySQLSubscriptionRepository) Create(ctx context.Context, subscription *domain.Subscription) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := subscription.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	userIDBytes, err := subscription.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `INSERT INTO subscriptions
			  (id, user_id, name, amount, currency_code, type, start_date, next_billing_date, active,
			   created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`

	_, err = querier.ExecContext(ctx, query,
		idBytes, userIDBytes, subscription.Name, subscription.Amount, subscription.CurrencyCode,
		string(subscription.Type), subscription.StartDate, subscription.NextBillingDate,
		subscription.Active,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create subscription")
	}
	return nil
}

// GetByID retrieves a subscription by ID, including the owner's username.
// Soft deleted subscriptions are excluded unless includeDeleted is set.
func (r *MySQLSubscriptionRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
	includeDeleted bool,
) (*domain.Subscription, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT ` + mysqlSubscriptionColumns + `
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  WHERE s.id = ?`
	if !includeDeleted {
		query += " AND s.deleted_at IS NULL"
	}

	subscription, err := scanMySQLSubscription(querier.QueryRowContext(ctx, query, idBytes))
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
func (r *MySQLSubscriptionRepository) GetOwner(ctx context.Context, id uuid.UUID) (string, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT u.username
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  WHERE s.id = ? AND s.deleted_at IS NULL`

	var username string
	err = querier.QueryRowContext(ctx, query, idBytes).Scan(&username)
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
func (r *MySQLSubscriptionRepository) ListByUsername(
	ctx context.Context,
	username string,
	offset, limit int,
) ([]*domain.Subscription, error) {
	query := `SELECT ` + mysqlSubscriptionColumns + `
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  WHERE u.username = ? AND s.deleted_at IS NULL
			  ORDER BY s.created_at DESC
			  LIMIT ? OFFSET ?`

	return r.list(ctx, query, username, limit, offset)
}

// List retrieves subscriptions across all users, newest first, excluding
// soft deleted ones.
func (r *MySQLSubscriptionRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*domain.Subscription, error) {
	query := `SELECT ` + mysqlSubscriptionColumns + `
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  WHERE s.deleted_at IS NULL
			  ORDER BY s.created_at DESC
			  LIMIT ? OFFSET ?`

	return r.list(ctx, query, limit, offset)
}

// FindDue retrieves active subscriptions whose next billing date is on or
// before the given date, excluding soft deleted ones.
func (r *MySQLSubscriptionRepository) FindDue(
	ctx context.Context,
	date time.Time,
) ([]*domain.Subscription, error) {
	query := `SELECT ` + mysqlSubscriptionColumns + `
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  WHERE s.active = TRUE AND s.deleted_at IS NULL AND s.next_billing_date <= ?
			  ORDER BY s.next_billing_date`

	return r.list(ctx, query, date)
}

func (r *MySQLSubscriptionRepository) list(
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
		subscription, err := scanMySQLSubscription(rows)
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
func (r *MySQLSubscriptionRepository) Update(ctx context.Context, subscription *domain.Subscription) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := subscription.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE subscriptions
			  SET name = ?, amount = ?, currency_code = ?, type = ?,
				  next_billing_date = ?, active = ?, deleted_at = ?, updated_at = NOW()
			  WHERE id = ?`

	result, err := querier.ExecContext(ctx, query,
		subscription.Name, subscription.Amount, subscription.CurrencyCode, string(subscription.Type),
		subscription.NextBillingDate, subscription.Active, subscription.DeletedAt, idBytes,
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
func (r *MySQLSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, idBytes)
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

func scanMySQLSubscription(row rowScanner) (*domain.Subscription, error) {
	var subscription domain.Subscription
	var idBytes, userIDBytes []byte
	var subscriptionType string

	err := row.Scan(
		&idBytes, &userIDBytes, &subscription.Username, &subscription.Name,
		&subscription.Amount, &subscription.CurrencyCode, &subscriptionType,
		&subscription.StartDate, &subscription.NextBillingDate, &subscription.Active,
		&subscription.CreatedAt, &subscription.UpdatedAt, &subscription.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := subscription.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if err := subscription.UserID.UnmarshalBinary(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	subscription.Type = domain.Type(subscriptionType)
	return &subscription, nil
}
