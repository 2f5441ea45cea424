// Package domain defines the core user domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
)

// User represents an account in the system. The capability set is the user's
// granted permissions; it never contains the OWNERSHIP pseudo-capability.
type User struct {
	ID            uuid.UUID
	Username      string
	Password      string //nolint:gosec // hashed password (not plaintext)
	Capabilities  []authDomain.Capability
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
	DeactivatedAt *time.Time
}

// IsDeleted reports whether the account has been soft deleted. Deleted
// accounts can no longer establish an identity and are hidden from regular
// queries.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// IsDeactivated reports whether the account is deactivated. Deactivated
// accounts cannot authenticate but remain queryable and restorable by
// privileged callers.
func (u *User) IsDeactivated() bool {
	return u.DeactivatedAt != nil
}

// CanAuthenticate reports whether the account may establish a new identity.
func (u *User) CanAuthenticate() bool {
	return !u.IsDeleted() && !u.IsDeactivated()
}

// HasCapability reports whether the user's granted set contains the
// capability.
func (u *User) HasCapability(c authDomain.Capability) bool {
	for _, held := range u.Capabilities {
		if held == c {
			return true
		}
	}
	return false
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.Wrap(apperrors.ErrNotFound, "user not found")

	// ErrUsernameAlreadyExists indicates a user with the same username already exists.
	ErrUsernameAlreadyExists = apperrors.Wrap(apperrors.ErrConflict, "username already exists")
)
