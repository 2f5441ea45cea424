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

// MySQLTagRepository handles tag persistence for MySQL.
type MySQLTagRepository struct {
	db *sql.DB
}

// NewMySQLTagRepository creates a new MySQLTagRepository.
func NewMySQLTagRepository(db *sql.DB) *MySQLTagRepository {
	return &MySQLTagRepository{
		db: db,
	}
}

// GetOrCreate returns the tag with the given name, creating it if needed.
// INSERT IGNORE makes concurrent callers racing on the same name converge on
// the single existing row.
func (r *MySQLTagRepository) GetOrCreate(ctx context.Context, name string) (*domain.Tag, error) {
	querier := database.GetTx(ctx, r.db)

	id := uuid.Must(uuid.NewV7())
	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `INSERT IGNORE INTO tags (id, name, created_at, updated_at)
			  VALUES (?, ?, NOW(), NOW())`

	if _, err := querier.ExecContext(ctx, query, idBytes, name); err != nil {
		return nil, apperrors.Wrap(err, "failed to create tag")
	}

	return r.GetByName(ctx, name)
}

// GetByID retrieves a tag by ID. Soft deleted tags are excluded unless
// includeDeleted is set.
func (r *MySQLTagRepository) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Tag, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT id, name, created_at, updated_at, deleted_at FROM tags WHERE id = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	return r.scanTag(querier.QueryRowContext(ctx, query, idBytes))
}

// GetByName retrieves a tag by its unique name, excluding soft deleted tags.
func (r *MySQLTagRepository) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, created_at, updated_at, deleted_at
			  FROM tags WHERE name = ? AND deleted_at IS NULL`

	return r.scanTag(querier.QueryRowContext(ctx, query, name))
}

func (r *MySQLTagRepository) scanTag(row *sql.Row) (*domain.Tag, error) {
	var tag domain.Tag
	var idBytes []byte

	err := row.Scan(&idBytes, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt, &tag.DeletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTagNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get tag")
	}

	if err := tag.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	return &tag, nil
}

// List retrieves tags with pagination, excluding soft deleted tags.
func (r *MySQLTagRepository) List(ctx context.Context, offset, limit int) ([]*domain.Tag, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, created_at, updated_at, deleted_at
			  FROM tags WHERE deleted_at IS NULL ORDER BY name LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tags")
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		var tag domain.Tag
		var idBytes []byte
		if err := rows.Scan(&idBytes, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt, &tag.DeletedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan tag")
		}
		if err := tag.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tags")
	}

	return tags, nil
}

// Update persists the tag's soft delete mark.
func (r *MySQLTagRepository) Update(ctx context.Context, tag *domain.Tag) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := tag.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE tags SET deleted_at = ?, updated_at = NOW() WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, tag.DeletedAt, idBytes)
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
func (r *MySQLTagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, idBytes)
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
