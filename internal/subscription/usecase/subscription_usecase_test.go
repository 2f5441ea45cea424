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
	expenseDomain "github.com/estifie/Expense-Tracker-API/internal/expense/domain"
	expenseUsecase "github.com/estifie/Expense-Tracker-API/internal/expense/usecase"
	"github.com/estifie/Expense-Tracker-API/internal/subscription/domain"
	userDomain "github.com/estifie/Expense-Tracker-API/internal/user/domain"
)

// MockTxManager is a mock implementation of database.TxManager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockSubscriptionRepository is a mock implementation of SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, subscription *domain.Subscription) error {
	args := m.Called(ctx, subscription)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
	includeDeleted bool,
) (*domain.Subscription, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetOwner(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockSubscriptionRepository) ListByUsername(
	ctx context.Context,
	username string,
	offset, limit int,
) ([]*domain.Subscription, error) {
	args := m.Called(ctx, username, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*domain.Subscription, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindDue(
	ctx context.Context,
	date time.Time,
) ([]*domain.Subscription, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, subscription *domain.Subscription) error {
	args := m.Called(ctx, subscription)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*userDomain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

// MockExpenseCreator is a mock implementation of ExpenseCreator
type MockExpenseCreator struct {
	mock.Mock
}

func (m *MockExpenseCreator) Create(
	ctx context.Context,
	username string,
	input expenseUsecase.ExpenseInput,
) (*expenseDomain.Expense, error) {
	args := m.Called(ctx, username, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expenseDomain.Expense), args.Error(1)
}

func newUseCase() (*SubscriptionUseCase, *MockTxManager, *MockSubscriptionRepository, *MockUserRepository, *MockExpenseCreator) {
	txManager := &MockTxManager{}
	subscriptionRepo := &MockSubscriptionRepository{}
	userRepo := &MockUserRepository{}
	expenseCreator := &MockExpenseCreator{}
	useCase := NewSubscriptionUseCase(txManager, subscriptionRepo, userRepo, expenseCreator)
	return useCase, txManager, subscriptionRepo, userRepo, expenseCreator
}

func newTestSubscription(username string, subscriptionType domain.Type) *domain.Subscription {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	return &domain.Subscription{
		ID:              uuid.Must(uuid.NewV7()),
		UserID:          uuid.Must(uuid.NewV7()),
		Username:        username,
		Name:            "Streaming",
		Amount:          "9.99",
		CurrencyCode:    "USD",
		Type:            subscriptionType,
		StartDate:       start,
		NextBillingDate: start,
		Active:          true,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
}

func TestSubscriptionUseCase_Create_Success(t *testing.T) {
	useCase, _, subscriptionRepo, userRepo, _ := newUseCase()

	ctx := context.Background()
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7()), Username: "alice"}
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	userRepo.On("GetByUsername", ctx, "alice").Return(user, nil)
	subscriptionRepo.On("Create", ctx, mock.AnythingOfType("*domain.Subscription")).Return(nil)

	subscription, err := useCase.Create(ctx, "alice", SubscriptionInput{
		Name:         "Streaming",
		Amount:       "9.99",
		CurrencyCode: "USD",
		Type:         "MONTHLY",
		StartDate:    start,
	})

	require.NoError(t, err)
	assert.Equal(t, user.ID, subscription.UserID)
	assert.True(t, subscription.Active)
	assert.Equal(t, start, subscription.StartDate)
	assert.Equal(t, start.AddDate(0, 1, 0), subscription.NextBillingDate)
	subscriptionRepo.AssertExpectations(t)
}

func TestSubscriptionUseCase_Create_InvalidType(t *testing.T) {
	useCase, _, subscriptionRepo, _, _ := newUseCase()

	ctx := context.Background()

	subscription, err := useCase.Create(ctx, "alice", SubscriptionInput{
		Name:         "Streaming",
		Amount:       "9.99",
		CurrencyCode: "USD",
		Type:         "FORTNIGHTLY",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Nil(t, subscription)
	subscriptionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubscription_AdvanceNextBillingDate(t *testing.T) {
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		subscriptionType domain.Type
		want             time.Time
	}{
		{domain.TypeDaily, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{domain.TypeWeekly, time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)},
		{domain.TypeMonthly, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)},
		{domain.TypeYearly, time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.subscriptionType), func(t *testing.T) {
			subscription := newTestSubscription("alice", tt.subscriptionType)
			subscription.NextBillingDate = start

			subscription.AdvanceNextBillingDate()

			assert.Equal(t, tt.want, subscription.NextBillingDate)
		})
	}
}

func TestSubscriptionUseCase_Delete_HardWithoutCapability(t *testing.T) {
	useCase, _, subscriptionRepo, _, _ := newUseCase()

	caller := authDomain.NewIdentity("alice", nil)
	ctx := authDomain.WithIdentity(context.Background(), caller)
	subscription := newTestSubscription("alice", domain.TypeMonthly)

	subscriptionRepo.On("GetByID", ctx, subscription.ID, true).Return(subscription, nil)

	err := useCase.Delete(ctx, subscription.ID, true)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	subscriptionRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSubscriptionUseCase_Delete_HardWithCapability(t *testing.T) {
	useCase, _, subscriptionRepo, _, _ := newUseCase()

	caller := authDomain.NewIdentity("admin", []authDomain.Capability{authDomain.CapabilityHardDeleteSubscription})
	ctx := authDomain.WithIdentity(context.Background(), caller)
	subscription := newTestSubscription("alice", domain.TypeMonthly)

	subscriptionRepo.On("GetByID", ctx, subscription.ID, true).Return(subscription, nil)
	subscriptionRepo.On("Delete", ctx, subscription.ID).Return(nil)

	err := useCase.Delete(ctx, subscription.ID, true)

	assert.NoError(t, err)
	subscriptionRepo.AssertExpectations(t)
}

func TestSubscriptionUseCase_Delete_SoftDeactivates(t *testing.T) {
	useCase, _, subscriptionRepo, _, _ := newUseCase()

	ctx := context.Background()
	subscription := newTestSubscription("alice", domain.TypeMonthly)

	subscriptionRepo.On("GetByID", ctx, subscription.ID, true).Return(subscription, nil)
	subscriptionRepo.On("Update", ctx, subscription).Return(nil)

	err := useCase.Delete(ctx, subscription.ID, false)

	assert.NoError(t, err)
	assert.NotNil(t, subscription.DeletedAt)
	assert.False(t, subscription.Active)
}

func TestSubscriptionUseCase_Deactivate_AlreadyInactive(t *testing.T) {
	useCase, _, subscriptionRepo, _, _ := newUseCase()

	ctx := context.Background()
	subscription := newTestSubscription("alice", domain.TypeMonthly)
	subscription.Active = false

	subscriptionRepo.On("GetByID", ctx, subscription.ID, false).Return(subscription, nil)

	err := useCase.Deactivate(ctx, subscription.ID)

	assert.NoError(t, err)
	subscriptionRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSubscriptionUseCase_ProcessDue_BillsAndAdvances(t *testing.T) {
	useCase, txManager, subscriptionRepo, _, expenseCreator := newUseCase()

	ctx := context.Background()
	today := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	subscription := newTestSubscription("alice", domain.TypeMonthly)
	subscription.NextBillingDate = today

	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	subscriptionRepo.On("FindDue", ctx, today).Return([]*domain.Subscription{subscription}, nil)
	expenseCreator.On("Create", ctx, "alice", expenseUsecase.ExpenseInput{
		Amount:       "9.99",
		CurrencyCode: "USD",
		Note:         "Subscription: Streaming",
	}).Return(&expenseDomain.Expense{}, nil)
	subscriptionRepo.On("Update", ctx, subscription).Return(nil)

	processed, err := useCase.ProcessDue(ctx, today)

	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, today.AddDate(0, 1, 0), subscription.NextBillingDate)
	expenseCreator.AssertExpectations(t)
	subscriptionRepo.AssertExpectations(t)
}

func TestSubscriptionUseCase_ProcessDue_ContinuesAfterFailure(t *testing.T) {
	useCase, txManager, subscriptionRepo, _, expenseCreator := newUseCase()

	ctx := context.Background()
	today := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	broken := newTestSubscription("alice", domain.TypeMonthly)
	healthy := newTestSubscription("bob", domain.TypeWeekly)
	healthy.Name = "Gym"

	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	subscriptionRepo.On("FindDue", ctx, today).Return([]*domain.Subscription{broken, healthy}, nil)
	expenseCreator.On("Create", ctx, "alice", mock.Anything).
		Return(nil, apperrors.Wrap(apperrors.ErrNotFound, "user not found"))
	expenseCreator.On("Create", ctx, "bob", mock.Anything).Return(&expenseDomain.Expense{}, nil)
	subscriptionRepo.On("Update", ctx, healthy).Return(nil)

	processed, err := useCase.ProcessDue(ctx, today)

	require.Error(t, err)
	assert.Equal(t, 1, processed)
	subscriptionRepo.AssertNotCalled(t, "Update", ctx, broken)
}

func TestSubscriptionUseCase_ProcessDue_NothingDue(t *testing.T) {
	useCase, _, subscriptionRepo, _, expenseCreator := newUseCase()

	ctx := context.Background()
	today := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	subscriptionRepo.On("FindDue", ctx, today).Return([]*domain.Subscription{}, nil)

	processed, err := useCase.ProcessDue(ctx, today)

	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	expenseCreator.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscriptionUseCase_Owner(t *testing.T) {
	useCase, _, subscriptionRepo, _, _ := newUseCase()

	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())

	subscriptionRepo.On("GetOwner", ctx, id).Return("alice", nil)

	owner, err := useCase.Owner(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, "alice", owner)
}
