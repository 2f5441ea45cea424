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

// MySQLExpenseRepository handles expense persistence for MySQL.
type MySQLExpenseRepository struct {
	db *sql.DB
}

// NewMySQLExpenseRepository creates a new MySQLExpenseRepository.
func NewMySQLExpenseRepository(db *sql.DB) *MySQLExpenseRepository {
	return &MySQLExpenseRepository{
		db: db,
	}
}

// Create inserts a new expense.
func (r *MySQLExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := expense.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	userIDBytes, err := expense.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `INSERT INTO expenses (id, user_id, amount, currency_code, note, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, NOW(), NOW())`

	_, err = querier.ExecContext(ctx, query,
		idBytes, userIDBytes, expense.Amount, expense.CurrencyCode, expense.Note,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create expense")
	}
	return nil
}

// GetByID retrieves an expense by ID, including the owner's username and tag
// names. Soft deleted expenses are excluded unless includeDeleted is set.
func (r *MySQLExpenseRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
	includeDeleted bool,
) (*domain.Expense, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT e.id, e.user_id, u.username, e.amount, e.currency_code, e.note,
					 e.created_at, e.updated_at, e.deleted_at
			  FROM expenses e
			  JOIN users u ON u.id = e.user_id
			  WHERE e.id = ?`
	if !includeDeleted {
		query += " AND e.deleted_at IS NULL"
	}

	expense, err := scanExpense(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		return nil, err
	}

	tags, err := r.getTags(ctx, expense.ID)
	if err != nil {
		return nil, err
	}
	expense.Tags = tags

	return expense, nil
}

// GetOwner returns the username of the expense's owner, excluding soft
// deleted expenses. Used by the authorization layer to resolve ownership.
func (r *MySQLExpenseRepository) GetOwner(ctx context.Context, id uuid.UUID) (string, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT u.username
			  FROM expenses e
			  JOIN users u ON u.id = e.user_id
			  WHERE e.id = ? AND e.deleted_at IS NULL`

	var username string
	err = querier.QueryRowContext(ctx, query, idBytes).Scan(&username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrExpenseNotFound
		}
		return "", apperrors.Wrap(err, "failed to get expense owner")
	}

	return username, nil
}

func scanExpense(row *sql.Row) (*domain.Expense, error) {
	var expense domain.Expense
	var idBytes, userIDBytes []byte

	err := row.Scan(
		&idBytes, &userIDBytes, &expense.Username, &expense.Amount, &expense.CurrencyCode,
		&expense.Note, &expense.CreatedAt, &expense.UpdatedAt, &expense.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get expense")
	}

	if err := expense.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if err := expense.UserID.UnmarshalBinary(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	return &expense, nil
}

// getTags loads the tag names attached to an expense.
func (r *MySQLExpenseRepository) getTags(ctx context.Context, expenseID uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := expenseID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT t.name
			  FROM expense_tags et
			  JOIN tags t ON t.id = et.tag_id
			  WHERE et.expense_id = ? AND t.deleted_at IS NULL
			  ORDER BY t.name`

	rows, err := querier.QueryContext(ctx, query, idBytes)
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
func (r *MySQLExpenseRepository) ListByUsername(
	ctx context.Context,
	username string,
	offset, limit int,
) ([]*domain.Expense, error) {
	query := `SELECT e.id, e.user_id, u.username, e.amount, e.currency_code, e.note,
					 e.created_at, e.updated_at, e.deleted_at
			  FROM expenses e
			  JOIN users u ON u.id = e.user_id
			  WHERE u.username = ? AND e.deleted_at IS NULL
			  ORDER BY e.created_at DESC LIMIT ? OFFSET ?`

	return r.list(ctx, query, username, limit, offset)
}

// List retrieves expenses across all users with pagination, most recent
// first, excluding soft deleted expenses.
func (r *MySQLExpenseRepository) List(ctx context.Context, offset, limit int) ([]*domain.Expense, error) {
	query := `SELECT e.id, e.user_id, u.username, e.amount, e.currency_code, e.note,
					 e.created_at, e.updated_at, e.deleted_at
			  FROM expenses e
			  JOIN users u ON u.id = e.user_id
			  WHERE e.deleted_at IS NULL
			  ORDER BY e.created_at DESC LIMIT ? OFFSET ?`

	return r.list(ctx, query, limit, offset)
}

func (r *MySQLExpenseRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Expense, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expenses")
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		var expense domain.Expense
		var idBytes, userIDBytes []byte
		if err := rows.Scan(
			&idBytes, &userIDBytes, &expense.Username, &expense.Amount, &expense.CurrencyCode,
			&expense.Note, &expense.CreatedAt, &expense.UpdatedAt, &expense.DeletedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan expense")
		}
		if err := expense.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}
		if err := expense.UserID.UnmarshalBinary(userIDBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}
		expenses = append(expenses, &expense)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate expenses")
	}

	return expenses, nil
}

// Update persists mutable expense fields.
func (r *MySQLExpenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := expense.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE expenses
			  SET amount = ?, currency_code = ?, note = ?, deleted_at = ?, updated_at = NOW()
			  WHERE id = ?`

	result, err := querier.ExecContext(ctx, query,
		expense.Amount, expense.CurrencyCode, expense.Note, expense.DeletedAt, idBytes,
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
func (r *MySQLExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, idBytes)
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
func (r *MySQLExpenseRepository) AddTag(ctx context.Context, expenseID, tagID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	expenseIDBytes, err := expenseID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	tagIDBytes, err := tagID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `INSERT IGNORE INTO expense_tags (expense_id, tag_id) VALUES (?, ?)`

	if _, err := querier.ExecContext(ctx, query, expenseIDBytes, tagIDBytes); err != nil {
		return apperrors.Wrap(err, "failed to add expense tag")
	}
	return nil
}

// RemoveTag detaches a tag from the expense.
func (r *MySQLExpenseRepository) RemoveTag(ctx context.Context, expenseID, tagID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	expenseIDBytes, err := expenseID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	tagIDBytes, err := tagID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `DELETE FROM expense_tags WHERE expense_id = ? AND tag_id = ?`

	if _, err := querier.ExecContext(ctx, query, expenseIDBytes, tagIDBytes); err != nil {
		return apperrors.Wrap(err, "failed to remove expense tag")
	}
	return nil
}
