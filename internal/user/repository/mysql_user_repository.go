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

// MySQLUserRepository handles user persistence for MySQL.
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{
		db: db,
	}
}

// Create inserts a new user.
func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (id, username, password, created_at, updated_at)
			  VALUES (?, ?, ?, NOW(), NOW())`

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query, uuidBytes, user.Username, user.Password)
	if err != nil {
		// Check for unique constraint violation (duplicate username)
		if isMySQLUniqueViolation(err) {
			return domain.ErrUsernameAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByUsername retrieves a user by username, including the granted
// capability set.
func (r *MySQLUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getByUsername(ctx, username, false)
}

// GetByUsernameForUpdate retrieves a user by username with a row lock.
// Must run inside a transaction; used to serialize concurrent grant/revoke
// mutations on the same subject.
func (r *MySQLUserRepository) GetByUsernameForUpdate(ctx context.Context, username string) (*domain.User, error) {
	return r.getByUsername(ctx, username, true)
}

func (r *MySQLUserRepository) getByUsername(ctx context.Context, username string, forUpdate bool) (*domain.User, error) {
	var user domain.User
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, username, password, created_at, updated_at, deleted_at, deactivated_at
			  FROM users WHERE username = ?`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var idBytes []byte
	err := querier.QueryRowContext(ctx, query, username).Scan(
		&idBytes, &user.Username, &user.Password,
		&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt, &user.DeactivatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by username")
	}

	// Convert bytes back to UUID
	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	capabilities, err := r.getCapabilities(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Capabilities = capabilities

	return &user, nil
}

// getCapabilities loads the granted capability set for a user.
func (r *MySQLUserRepository) getCapabilities(ctx context.Context, userID uuid.UUID) ([]authDomain.Capability, error) {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT capability FROM user_capabilities WHERE user_id = ? ORDER BY capability`

	rows, err := querier.QueryContext(ctx, query, uuidBytes)
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
func (r *MySQLUserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, username, password, created_at, updated_at, deleted_at, deactivated_at
			  FROM users ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		var idBytes []byte
		if err := rows.Scan(
			&idBytes, &user.Username, &user.Password,
			&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt, &user.DeactivatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan user")
		}
		if err := user.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate users")
	}

	return users, nil
}

// Update persists mutable account fields (soft delete and deactivation marks).
func (r *MySQLUserRepository) Update(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE users SET deleted_at = ?, deactivated_at = ?, updated_at = NOW()
			  WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, user.DeletedAt, user.DeactivatedAt, uuidBytes)
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
func (r *MySQLUserRepository) ReplaceCapabilities(ctx context.Context, userID uuid.UUID, capabilities []authDomain.Capability) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	if _, err := querier.ExecContext(ctx, `DELETE FROM user_capabilities WHERE user_id = ?`, uuidBytes); err != nil {
		return apperrors.Wrap(err, "failed to clear user capabilities")
	}

	for _, c := range capabilities {
		if _, err := querier.ExecContext(ctx,
			`INSERT INTO user_capabilities (user_id, capability) VALUES (?, ?)`,
			uuidBytes, c,
		); err != nil {
			return apperrors.Wrap(err, "failed to insert user capability")
		}
	}

	return nil
}

// Delete removes the user permanently. Capability rows are removed via
// ON DELETE CASCADE.
func (r *MySQLUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, uuidBytes)
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

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "error 1062")
}
