// Package repository provides data persistence implementations for tag entities.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/estifie/Expense-Tracker-API/internal/database"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	"github.com/estifie/Expense-Tracker-API/internal/tag/domain"
)

// PostgreSQLTagRepository handles tag persistence for PostgreSQL.
type PostgreSQLTagRepository struct {
	db *sql.DB
}

// NewPostgreSQLTagRepository creates a new PostgreSQLTagRepository.
func NewPostgreSQLTagRepository(db *sql.DB) *PostgreSQLTagRepository {
	return &PostgreSQLTagRepository{
		db: db,
	}
}

// GetOrCreate returns the tag with the given name, creating it if needed.
// The insert uses ON CONFLICT DO NOTHING so concurrent callers racing on the
// same name both end up with the single existing row.
func (r *PostgreSQLTagRepository) GetOrCreate(ctx context.Context, name string) (*domain.Tag, error) {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO tags (id, name, created_at, updated_at)
			  VALUES ($1, $2, NOW(), NOW())
			  ON CONFLICT (name) DO NOTHING`

	if _, err := querier.ExecContext(ctx, query, uuid.Must(uuid.NewV7()), name); err != nil {
		return nil, apperrors.Wrap(err, "failed to create tag")
	}

	return r.GetByName(ctx, name)
}

// GetByID retrieves a tag by ID. Soft deleted tags are excluded unless
// includeDeleted is set.
func (r *PostgreSQLTagRepository) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Tag, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, created_at, updated_at, deleted_at FROM tags WHERE id = $1`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	var tag domain.Tag
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&tag.ID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt, &tag.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTagNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get tag by id")
	}

	return &tag, nil
}

// GetByName retrieves a tag by its unique name, excluding soft deleted tags.
func (r *PostgreSQLTagRepository) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, created_at, updated_at, deleted_at
			  FROM tags WHERE name = $1 AND deleted_at IS NULL`

	var tag domain.Tag
	err := querier.QueryRowContext(ctx, query, name).Scan(
		&tag.ID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt, &tag.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTagNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get tag by name")
	}

	return &tag, nil
}

// List retrieves tags with pagination, excluding soft deleted tags.
func (r *PostgreSQLTagRepository) List(ctx context.Context, offset, limit int) ([]*domain.Tag, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, created_at, updated_at, deleted_at
			  FROM tags WHERE deleted_at IS NULL ORDER BY name OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tags")
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt, &tag.DeletedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan tag")
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tags")
	}

	return tags, nil
}

// Update persists the tag's soft delete mark.
func (r *PostgreSQLTagRepository) Update(ctx context.Context, tag *domain.Tag) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE tags SET deleted_at = $1, updated_at = NOW() WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, tag.DeletedAt, tag.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update tag")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrTagNotFound
	}

	return nil
}

// Delete removes the tag permanently. Expense associations are removed via
// ON DELETE CASCADE.
func (r *PostgreSQLTagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete tag")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrTagNotFound
	}

	return nil
}
