// Package usecase implements the user business logic and orchestrates user domain operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	"github.com/estifie/Expense-Tracker-API/internal/database"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	"github.com/estifie/Expense-Tracker-API/internal/user/domain"
)

// UseCase defines the interface for user business logic operations.
type UseCase interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
	Deactivate(ctx context.Context, username string) error
	Activate(ctx context.Context, username string) error
	Delete(ctx context.Context, username string, hardDelete bool) error
	Restore(ctx context.Context, username string) error
	GrantCapability(ctx context.Context, username string, capability authDomain.Capability) error
	RevokeCapability(ctx context.Context, username string, capability authDomain.Capability) error
	GetCapabilities(ctx context.Context, username string) ([]authDomain.Capability, error)
}

// UserRepository interface defines user repository operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByUsernameForUpdate(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	ReplaceCapabilities(ctx context.Context, userID uuid.UUID, capabilities []authDomain.Capability) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserUseCase handles user-related business logic.
type UserUseCase struct {
	txManager database.TxManager
	userRepo  UserRepository
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(txManager database.TxManager, userRepo UserRepository) *UserUseCase {
	return &UserUseCase{
		txManager: txManager,
		userRepo:  userRepo,
	}
}

// GetByUsername retrieves a user by username.
func (uc *UserUseCase) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return uc.userRepo.GetByUsername(ctx, username)
}

// List retrieves users with pagination.
func (uc *UserUseCase) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	return uc.userRepo.List(ctx, offset, limit)
}

// Deactivate disables authentication for the account. The account remains
// queryable and can be activated again by a privileged caller.
func (uc *UserUseCase) Deactivate(ctx context.Context, username string) error {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user.DeactivatedAt = &now

	return uc.userRepo.Update(ctx, user)
}

// Activate re-enables authentication for a deactivated account.
func (uc *UserUseCase) Activate(ctx context.Context, username string) error {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	user.DeactivatedAt = nil

	return uc.userRepo.Update(ctx, user)
}

// Delete soft deletes the account. When hardDelete is requested the caller
// must hold HARD_DELETE_USER; the row is then removed permanently.
func (uc *UserUseCase) Delete(ctx context.Context, username string, hardDelete bool) error {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	if hardDelete {
		identity, _ := authDomain.IdentityFromContext(ctx)
		if !identity.HasCapability(authDomain.CapabilityHardDeleteUser) {
			return apperrors.Wrap(apperrors.ErrForbidden, "hard delete requires HARD_DELETE_USER")
		}
		return uc.userRepo.Delete(ctx, user.ID)
	}

	now := time.Now().UTC()
	user.DeletedAt = &now

	return uc.userRepo.Update(ctx, user)
}

// Restore clears the soft delete mark on the account.
func (uc *UserUseCase) Restore(ctx context.Context, username string) error {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	user.DeletedAt = nil

	return uc.userRepo.Update(ctx, user)
}

// GrantCapability adds a capability to the subject's granted set.
// Unknown capability names are rejected before any state changes; granting a
// capability the subject already holds is a no-op. The read-modify-write on
// the capability set runs inside a transaction with a row lock on the
// subject, so concurrent mutations on the same subject serialize.
func (uc *UserUseCase) GrantCapability(ctx context.Context, username string, capability authDomain.Capability) error {
	if !authDomain.IsGrantable(capability) {
		return authDomain.ErrUnknownCapability
	}

	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		user, err := uc.userRepo.GetByUsernameForUpdate(ctx, username)
		if err != nil {
			return err
		}

		if user.HasCapability(capability) {
			return nil
		}

		capabilities := append(user.Capabilities, capability)
		return uc.userRepo.ReplaceCapabilities(ctx, user.ID, capabilities)
	})
}

// RevokeCapability removes a capability from the subject's granted set.
// Unknown capability names are rejected; revoking a known capability the
// subject never held is an idempotent no-op.
func (uc *UserUseCase) RevokeCapability(ctx context.Context, username string, capability authDomain.Capability) error {
	if !authDomain.IsGrantable(capability) {
		return authDomain.ErrUnknownCapability
	}

	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		user, err := uc.userRepo.GetByUsernameForUpdate(ctx, username)
		if err != nil {
			return err
		}

		if !user.HasCapability(capability) {
			return nil
		}

		capabilities := make([]authDomain.Capability, 0, len(user.Capabilities)-1)
		for _, held := range user.Capabilities {
			if held != capability {
				capabilities = append(capabilities, held)
			}
		}
		return uc.userRepo.ReplaceCapabilities(ctx, user.ID, capabilities)
	})
}

// GetCapabilities returns the subject's granted capability set.
func (uc *UserUseCase) GetCapabilities(ctx context.Context, username string) ([]authDomain.Capability, error) {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.Capabilities, nil
}
