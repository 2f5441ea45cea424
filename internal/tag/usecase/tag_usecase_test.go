package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	"github.com/estifie/Expense-Tracker-API/internal/tag/domain"
)

// MockTagRepository is a mock implementation of TagRepository
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) GetOrCreate(ctx context.Context, name string) (*domain.Tag, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tag), args.Error(1)
}

func (m *MockTagRepository) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Tag, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tag), args.Error(1)
}

func (m *MockTagRepository) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tag), args.Error(1)
}

func (m *MockTagRepository) List(ctx context.Context, offset, limit int) ([]*domain.Tag, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Tag), args.Error(1)
}

func (m *MockTagRepository) Update(ctx context.Context, tag *domain.Tag) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *MockTagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestTag(name string) *domain.Tag {
	return &domain.Tag{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestTagUseCase_Create_Idempotent(t *testing.T) {
	tagRepo := &MockTagRepository{}
	useCase := NewTagUseCase(tagRepo)

	ctx := context.Background()
	existing := newTestTag("groceries")

	tagRepo.On("GetOrCreate", ctx, "groceries").Return(existing, nil)

	tag, err := useCase.Create(ctx, "groceries")

	require.NoError(t, err)
	assert.Equal(t, existing.ID, tag.ID)
}

func TestTagUseCase_Delete_Soft(t *testing.T) {
	tagRepo := &MockTagRepository{}
	useCase := NewTagUseCase(tagRepo)

	ctx := context.Background()
	tag := newTestTag("groceries")

	tagRepo.On("GetByID", ctx, tag.ID, true).Return(tag, nil)
	tagRepo.On("Update", ctx, mock.AnythingOfType("*domain.Tag")).Return(nil)

	err := useCase.Delete(ctx, tag.ID, false)

	assert.NoError(t, err)
	assert.NotNil(t, tag.DeletedAt)
	tagRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestTagUseCase_Delete_HardWithCapability(t *testing.T) {
	tagRepo := &MockTagRepository{}
	useCase := NewTagUseCase(tagRepo)

	caller := authDomain.NewIdentity("admin", []authDomain.Capability{authDomain.CapabilityHardDeleteTag})
	ctx := authDomain.WithIdentity(context.Background(), caller)
	tag := newTestTag("groceries")

	tagRepo.On("GetByID", ctx, tag.ID, true).Return(tag, nil)
	tagRepo.On("Delete", ctx, tag.ID).Return(nil)

	err := useCase.Delete(ctx, tag.ID, true)

	assert.NoError(t, err)
	tagRepo.AssertExpectations(t)
}

func TestTagUseCase_Delete_HardWithoutCapability(t *testing.T) {
	tagRepo := &MockTagRepository{}
	useCase := NewTagUseCase(tagRepo)

	caller := authDomain.NewIdentity("alice", nil)
	ctx := authDomain.WithIdentity(context.Background(), caller)
	tag := newTestTag("groceries")

	tagRepo.On("GetByID", ctx, tag.ID, true).Return(tag, nil)

	err := useCase.Delete(ctx, tag.ID, true)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	tagRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestTagUseCase_Delete_NotFound(t *testing.T) {
	tagRepo := &MockTagRepository{}
	useCase := NewTagUseCase(tagRepo)

	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())

	tagRepo.On("GetByID", ctx, id, true).Return(nil, domain.ErrTagNotFound)

	err := useCase.Delete(ctx, id, false)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
