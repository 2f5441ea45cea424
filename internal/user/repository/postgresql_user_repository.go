// Package repository provides data persistence implementations for user entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	"github.com/estifie/Expense-Tracker-API/internal/database"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	"github.com/estifie/Expense-Tracker-API/internal/user/domain"
)

// PostgreSQLUserRepository handles user persistence for PostgreSQL.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQLUserRepository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{
		db: db,
	}
}

// Create inserts a new user.
func (r *PostgreSQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (id, username, password, created_at, updated_at)
			  VALUES ($1, $2, $3, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, user.ID, user.Username, user.Password)
	if err != nil {
		// Check for unique constraint violation (duplicate username)
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrUsernameAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByUsername retrieves a user by username, including the granted
// capability set.
func (r *PostgreSQLUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getByUsername(ctx, username, false)
}

// GetByUsernameForUpdate retrieves a user by username with a row lock.
// Must run inside a transaction; used to serialize concurrent grant/revoke
// mutations on the same subject.
func (r *PostgreSQLUserRepository) GetByUsernameForUpdate(ctx context.Context, username string) (*domain.User, error) {
	return r.getByUsername(ctx, username, true)
}

func (r *PostgreSQLUserRepository) getByUsername(ctx context.Context, username string, forUpdate bool) (*domain.User, error) {
	var user domain.User
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, username, password, created_at, updated_at, deleted_at, deactivated_at
			  FROM users WHERE username = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	err := querier.QueryRowContext(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.Password,
		&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt, &user.DeactivatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by username")
	}

	capabilities, err := r.getCapabilities(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Capabilities = capabilities

	return &user, nil
}

// getCapabilities loads the granted capability set for a user.
func (r *PostgreSQLUserRepository) getCapabilities(ctx context.Context, userID uuid.UUID) ([]authDomain.Capability, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT capability FROM user_capabilities WHERE user_id = $1 ORDER BY capability`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get user capabilities")
	}
	defer rows.Close()

	var capabilities []authDomain.Capability
	for rows.Next() {
		var c authDomain.Capability
		if err := rows.Scan(&c); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan capability")
		}
		capabilities = append(capabilities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate capabilities")
	}

	return capabilities, nil
}

// List retrieves users with pagination, most recent first.
func (r *PostgreSQLUserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, username, password, created_at, updated_at, deleted_at, deactivated_at
			  FROM users ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Password,
			&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt, &user.DeactivatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan user")
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate users")
	}

	return users, nil
}

// Update persists mutable account fields (soft delete and deactivation marks).
func (r *PostgreSQLUserRepository) Update(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users SET deleted_at = $1, deactivated_at = $2, updated_at = NOW()
			  WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, user.DeletedAt, user.DeactivatedAt, user.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// ReplaceCapabilities replaces the user's granted capability set. Callers
// must run this inside a transaction together with GetByUsernameForUpdate so
// concurrent mutations on the same subject cannot lose updates.
func (r *PostgreSQLUserRepository) ReplaceCapabilities(ctx context.Context, userID uuid.UUID, capabilities []authDomain.Capability) error {
	querier := database.GetTx(ctx, r.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM user_capabilities WHERE user_id = $1`, userID); err != nil {
		return apperrors.Wrap(err, "failed to clear user capabilities")
	}

	for _, c := range capabilities {
		if _, err := querier.ExecContext(ctx,
			`INSERT INTO user_capabilities (user_id, capability) VALUES ($1, $2)`,
			userID, c,
		); err != nil {
			return apperrors.Wrap(err, "failed to insert user capability")
		}
	}

	return nil
}

// Delete removes the user permanently. Capability rows are removed via
// ON DELETE CASCADE.
func (r *PostgreSQLUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
