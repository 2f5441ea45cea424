package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estifie/Expense-Tracker-API/internal/subscription/domain"
)

var subscriptionColumns = []string{
	"id", "user_id", "username", "name", "amount", "currency_code",
	"type", "start_date", "next_billing_date", "active", "created_at", "updated_at", "deleted_at",
}

func subscriptionRow(id, userID uuid.UUID, username string, nextBilling time.Time) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(subscriptionColumns).AddRow(
		id, userID, username, "Netflix", "15.99", "USD",
		"MONTHLY", now.AddDate(0, -1, 0), nextBilling, true, now, now, nil,
	)
}

func TestPostgreSQLSubscriptionRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLSubscriptionRepository(db)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM subscriptions s").
			WithArgs(id).
			WillReturnRows(subscriptionRow(id, userID, "alice", time.Now().UTC()))

		subscription, err := repo.GetByID(ctx, id, false)
		require.NoError(t, err)
		assert.Equal(t, id, subscription.ID)
		assert.Equal(t, "alice", subscription.Username)
		assert.Equal(t, domain.TypeMonthly, subscription.Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM subscriptions s").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(subscriptionColumns))

		subscription, err := repo.GetByID(ctx, id, false)
		assert.Nil(t, subscription)
		assert.True(t, errors.Is(err, domain.ErrSubscriptionNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLSubscriptionRepository_GetOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLSubscriptionRepository(db)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT u.username").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("alice"))

		owner, err := repo.GetOwner(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "alice", owner)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT u.username").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"username"}))

		owner, err := repo.GetOwner(ctx, id)
		assert.Empty(t, owner)
		assert.True(t, errors.Is(err, domain.ErrSubscriptionNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLSubscriptionRepository_FindDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLSubscriptionRepository(db)
	ctx := context.Background()

	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		id := uuid.Must(uuid.NewV7())
		userID := uuid.Must(uuid.NewV7())

		mock.ExpectQuery("SELECT (.+) FROM subscriptions s").
			WithArgs(date).
			WillReturnRows(subscriptionRow(id, userID, "alice", date))

		due, err := repo.FindDue(ctx, date)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, id, due[0].ID)
		assert.True(t, due[0].Active)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_NothingDue", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM subscriptions s").
			WithArgs(date).
			WillReturnRows(sqlmock.NewRows(subscriptionColumns))

		due, err := repo.FindDue(ctx, date)
		require.NoError(t, err)
		assert.Empty(t, due)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLSubscriptionRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLSubscriptionRepository(db)
	ctx := context.Background()

	subscription := &domain.Subscription{
		ID:              uuid.Must(uuid.NewV7()),
		Name:            "Netflix",
		Amount:          "15.99",
		CurrencyCode:    "USD",
		Type:            domain.TypeMonthly,
		NextBillingDate: time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		Active:          true,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE subscriptions").
			WithArgs(
				subscription.Name, subscription.Amount, subscription.CurrencyCode, "MONTHLY",
				subscription.NextBillingDate, subscription.Active, subscription.DeletedAt, subscription.ID,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(ctx, subscription)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE subscriptions").
			WithArgs(
				subscription.Name, subscription.Amount, subscription.CurrencyCode, "MONTHLY",
				subscription.NextBillingDate, subscription.Active, subscription.DeletedAt, subscription.ID,
			).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, subscription)
		assert.True(t, errors.Is(err, domain.ErrSubscriptionNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
