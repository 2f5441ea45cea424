// Package repository provides data persistence implementations for expense entities.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/estifie/Expense-Tracker-API/internal/database"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	"github.com/estifie/Expense-Tracker-API/internal/expense/domain"
)

// PostgreSQLExpenseRepository handles expense persistence for PostgreSQL.
type PostgreSQLExpenseRepository struct {
	db *sql.DB
}

// NewPostgreSQLExpenseRepository creates a new PostgreSQLExpenseRepository.
func NewPostgreSQLExpenseRepository(db *sql.DB) *PostgreSQLExpenseRepository {
	return &PostgreSQLExpenseRepository{
		db: db,
	}
}

// Create inserts a new expense.
func (r *PostgreSQLExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO expenses (id, user_id, amount, currency_code, note, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query,
		expense.ID, expense.UserID, expense.Amount, expense.CurrencyCode, expense.Note,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create expense")
	}
	return nil
}

// GetByID retrieves an expense by ID, including the owner's username and tag
// names. Soft deleted expenses are excluded unless includeDeleted is set.
func (r *PostgreSQLExpenseRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
	includeDeleted bool,
) (*domain.Expense, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT e.id, e.user_id, u.username, e.amount, e.currency_code, e.note,
					 e.created_at, e.updated_at, e.deleted_at
			  FROM expenses e
			  JOIN users u ON u.id = e.user_id
			  WHERE e.id = $1`
	if !includeDeleted {
		query += " AND e.deleted_at IS NULL"
	}

	var expense domain.Expense
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&expense.ID, &expense.UserID, &expense.Username, &expense.Amount, &expense.CurrencyCode,
		&expense.Note, &expense.CreatedAt, &expense.UpdatedAt, &expense.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get expense by id")
	}

	tags, err := r.getTags(ctx, expense.ID)
	if err != nil {
		return nil, err
	}
	expense.Tags = tags

	return &expense, nil
}

// GetOwner returns the username of the expense's owner, excluding soft
// deleted expenses. Used by the authorization layer to resolve ownership.
func (r *PostgreSQLExpenseRepository) GetOwner(ctx context.Context, id uuid.UUID) (string, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT u.username
			  FROM expenses e
			  JOIN users u ON u.id = e.user_id
			  WHERE e.id = $1 AND e.deleted_at IS NULL`

	var username string
	err := querier.QueryRowContext(ctx, query, id).Scan(&username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrExpenseNotFound
		}
		return "", apperrors.Wrap(err, "failed to get expense owner")
	}

	return username, nil
}

// getTags loads the tag names attached to an expense.
func (r *PostgreSQLExpenseRepository) getTags(ctx context.Context, expenseID uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT t.name
			  FROM expense_tags et
			  JOIN tags t ON t.id = et.tag_id
			  WHERE et.expense_id = $1 AND t.deleted_at IS NULL
			  ORDER BY t.name`

	rows, err := querier.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get expense tags")
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan expense tag")
		}
		tags = append(tags, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate expense tags")
	}

	return tags, nil
}

// ListByUsername retrieves a user's expenses with pagination, most recent
// first, excluding soft deleted expenses.
func (r *PostgreSQLExpenseRepository) ListByUsername(
	ctx context.Context,
	username string,
	offset, limit int,
) ([]*domain.Expense, error) {
	query := `SELECT e.id, e.user_id, u.username, e.amount, e.currency_code, e.note,
					 e.created_at, e.updated_at, e.deleted_at
			  FROM expenses e
			  JOIN users u ON u.id = e.user_id
			  WHERE u.username = $1 AND e.deleted_at IS NULL
			  ORDER BY e.created_at DESC OFFSET $2 LIMIT $3`

	return r.list(ctx, query, username, offset, limit)
}

// List retrieves expenses across all users with pagination, most recent
// first, excluding soft deleted expenses.
func (r *PostgreSQLExpenseRepository) List(ctx context.Context, offset, limit int) ([]*domain.Expense, error) {
	query := `SELECT e.id, e.user_id, u.username, e.amount, e.currency_code, e.note,
					 e.created_at, e.updated_at, e.deleted_at
			  FROM expenses e
			  JOIN users u ON u.id = e.user_id
			  WHERE e.deleted_at IS NULL
			  ORDER BY e.created_at DESC OFFSET $1 LIMIT $2`

	return r.list(ctx, query, offset, limit)
}

func (r *PostgreSQLExpenseRepository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Expense, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expenses")
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		var expense domain.Expense
		if err := rows.Scan(
			&expense.ID, &expense.UserID, &expense.Username, &expense.Amount, &expense.CurrencyCode,
			&expense.Note, &expense.CreatedAt, &expense.UpdatedAt, &expense.DeletedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan expense")
		}
		expenses = append(expenses, &expense)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate expenses")
	}

	return expenses, nil
}

// Update persists mutable expense fields.
func (r *PostgreSQLExpenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE expenses
			  SET amount = $1, currency_code = $2, note = $3, deleted_at = $4, updated_at = NOW()
			  WHERE id = $5`

	result, err := querier.ExecContext(ctx, query,
		expense.Amount, expense.CurrencyCode, expense.Note, expense.DeletedAt, expense.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update expense")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// Delete removes the expense permanently. Tag associations are removed via
// ON DELETE CASCADE.
func (r *PostgreSQLExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete expense")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// AddTag attaches a tag to the expense. Attaching an already attached tag is
// a no-op.
func (r *PostgreSQLExpenseRepository) AddTag(ctx context.Context, expenseID, tagID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO expense_tags (expense_id, tag_id) VALUES ($1, $2)
			  ON CONFLICT DO NOTHING`

	if _, err := querier.ExecContext(ctx, query, expenseID, tagID); err != nil {
		return apperrors.Wrap(err, "failed to add expense tag")
	}
	return nil
}

// RemoveTag detaches a tag from the expense.
func (r *PostgreSQLExpenseRepository) RemoveTag(ctx context.Context, expenseID, tagID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM expense_tags WHERE expense_id = $1 AND tag_id = $2`

	if _, err := querier.ExecContext(ctx, query, expenseID, tagID); err != nil {
		return apperrors.Wrap(err, "failed to remove expense tag")
	}
	return nil
}
