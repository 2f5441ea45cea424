// Package usecase implements the tag business logic.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	"github.com/estifie/Expense-Tracker-API/internal/tag/domain"
)

// UseCase defines the interface for tag business logic operations.
type UseCase interface {
	Create(ctx context.Context, name string) (*domain.Tag, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Tag, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Tag, error)
	Delete(ctx context.Context, id uuid.UUID, hardDelete bool) error
}

// TagRepository interface defines tag repository operations.
type TagRepository interface {
	GetOrCreate(ctx context.Context, name string) (*domain.Tag, error)
	GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Tag, error)
	GetByName(ctx context.Context, name string) (*domain.Tag, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Tag, error)
	Update(ctx context.Context, tag *domain.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TagUseCase handles tag-related business logic.
type TagUseCase struct {
	tagRepo TagRepository
}

// NewTagUseCase creates a new TagUseCase.
func NewTagUseCase(tagRepo TagRepository) *TagUseCase {
	return &TagUseCase{
		tagRepo: tagRepo,
	}
}

// Create returns the tag with the given name, creating it if it does not
// exist yet. Creation is idempotent.
func (uc *TagUseCase) Create(ctx context.Context, name string) (*domain.Tag, error) {
	return uc.tagRepo.GetOrCreate(ctx, name)
}

// Get retrieves a tag by ID, excluding soft deleted tags.
func (uc *TagUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	return uc.tagRepo.GetByID(ctx, id, false)
}

// List retrieves tags with pagination.
func (uc *TagUseCase) List(ctx context.Context, offset, limit int) ([]*domain.Tag, error) {
	return uc.tagRepo.List(ctx, offset, limit)
}

// Delete soft deletes the tag. When hardDelete is requested the caller must
// hold HARD_DELETE_TAG; the row is then removed permanently.
func (uc *TagUseCase) Delete(ctx context.Context, id uuid.UUID, hardDelete bool) error {
	tag, err := uc.tagRepo.GetByID(ctx, id, true)
	if err != nil {
		return err
	}

	if hardDelete {
		identity, _ := authDomain.IdentityFromContext(ctx)
		if !identity.HasCapability(authDomain.CapabilityHardDeleteTag) {
			return apperrors.Wrap(apperrors.ErrForbidden, "hard delete requires HARD_DELETE_TAG")
		}
		return uc.tagRepo.Delete(ctx, tag.ID)
	}

	now := time.Now().UTC()
	tag.DeletedAt = &now

	return uc.tagRepo.Update(ctx, tag)
}
