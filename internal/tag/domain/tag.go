// Package domain defines the core tag domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
)

// Tag labels expenses. Tag names are unique; creating an existing tag is a
// no-op and returns the existing row.
type Tag struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted reports whether the tag has been soft deleted.
func (t *Tag) IsDeleted() bool {
	return t.DeletedAt != nil
}

// ErrTagNotFound indicates the requested tag does not exist.
var ErrTagNotFound = apperrors.Wrap(apperrors.ErrNotFound, "tag not found")
