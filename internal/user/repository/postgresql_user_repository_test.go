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

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	"github.com/estifie/Expense-Tracker-API/internal/user/domain"
)

func TestPostgreSQLUserRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Username: "alice",
		Password: "hashed_password",
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Username, user.Password).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, user)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_DuplicateUsername", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Username, user.Password).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "users_username_unique"`))

		err := repo.Create(ctx, user)
		assert.True(t, errors.Is(err, domain.ErrUsernameAlreadyExists))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLUserRepository_GetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	userID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	userColumns := []string{"id", "username", "password", "created_at", "updated_at", "deleted_at", "deactivated_at"}

	t.Run("Success_WithCapabilities", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(userID, "alice", "hashed_password", now, now, nil, nil))
		mock.ExpectQuery("SELECT capability FROM user_capabilities").
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"capability"}).
				AddRow("MANAGE_EXPENSES").
				AddRow("VIEW_EXPENSES"))

		user, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, []authDomain.Capability{
			authDomain.CapabilityManageExpenses,
			authDomain.CapabilityViewExpenses,
		}, user.Capabilities)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(userColumns))

		user, err := repo.GetByUsername(ctx, "missing")
		assert.Nil(t, user)
		assert.True(t, errors.Is(err, domain.ErrUserNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLUserRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.Must(uuid.NewV7()),
		Username:  "alice",
		DeletedAt: &now,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET").
			WithArgs(user.DeletedAt, user.DeactivatedAt, user.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(ctx, user)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET").
			WithArgs(user.DeletedAt, user.DeactivatedAt, user.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, user)
		assert.True(t, errors.Is(err, domain.ErrUserNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLUserRepository_ReplaceCapabilities(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	userID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM user_capabilities").
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("INSERT INTO user_capabilities").
			WithArgs(userID, authDomain.CapabilityManageTags).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ReplaceCapabilities(ctx, userID, []authDomain.Capability{authDomain.CapabilityManageTags})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_EmptySetOnlyClears", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM user_capabilities").
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ReplaceCapabilities(ctx, userID, nil)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLUserRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	userID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users").
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(ctx, userID)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users").
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(ctx, userID)
		assert.True(t, errors.Is(err, domain.ErrUserNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
