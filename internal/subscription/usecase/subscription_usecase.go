// Package usecase implements the subscription business logic, including the
// recurring billing run that turns due subscriptions into expenses.
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	"github.com/estifie/Expense-Tracker-API/internal/database"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	expenseDomain "github.com/estifie/Expense-Tracker-API/internal/expense/domain"
	expenseUsecase "github.com/estifie/Expense-Tracker-API/internal/expense/usecase"
	"github.com/estifie/Expense-Tracker-API/internal/subscription/domain"
	userDomain "github.com/estifie/Expense-Tracker-API/internal/user/domain"
	appValidation "github.com/estifie/Expense-Tracker-API/internal/validation"
)

// SubscriptionInput contains the fields for creating or updating a subscription.
type SubscriptionInput struct {
	Name         string    `json:"name"`
	Amount       string    `json:"amount"`
	CurrencyCode string    `json:"currency_code"`
	Type         string    `json:"type"`
	StartDate    time.Time `json:"start_date"`
}

// UseCase defines the interface for subscription business logic operations.
type UseCase interface {
	Create(ctx context.Context, username string, input SubscriptionInput) (*domain.Subscription, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Subscription, error)
	Update(ctx context.Context, id uuid.UUID, input SubscriptionInput) (*domain.Subscription, error)
	Delete(ctx context.Context, id uuid.UUID, hardDelete bool) error
	Activate(ctx context.Context, id uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	ListByUsername(ctx context.Context, username string, offset, limit int) ([]*domain.Subscription, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Subscription, error)
	Owner(ctx context.Context, id uuid.UUID) (string, error)
	ProcessDue(ctx context.Context, date time.Time) (int, error)
}

// SubscriptionRepository interface defines subscription repository operations.
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *domain.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Subscription, error)
	GetOwner(ctx context.Context, id uuid.UUID) (string, error)
	ListByUsername(ctx context.Context, username string, offset, limit int) ([]*domain.Subscription, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Subscription, error)
	FindDue(ctx context.Context, date time.Time) ([]*domain.Subscription, error)
	Update(ctx context.Context, subscription *domain.Subscription) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository defines the user repository operations the subscription use case needs.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*userDomain.User, error)
}

// ExpenseCreator records expenses generated from due subscriptions.
type ExpenseCreator interface {
	Create(ctx context.Context, username string, input expenseUsecase.ExpenseInput) (*expenseDomain.Expense, error)
}

// SubscriptionUseCase handles subscription-related business logic.
type SubscriptionUseCase struct {
	txManager        database.TxManager
	subscriptionRepo SubscriptionRepository
	userRepo         UserRepository
	expenseCreator   ExpenseCreator
}

// NewSubscriptionUseCase creates a new SubscriptionUseCase.
func NewSubscriptionUseCase(
	txManager database.TxManager,
	subscriptionRepo SubscriptionRepository,
	userRepo UserRepository,
	expenseCreator ExpenseCreator,
) *SubscriptionUseCase {
	return &SubscriptionUseCase{
		txManager:        txManager,
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		expenseCreator:   expenseCreator,
	}
}

func validateSubscriptionInput(input SubscriptionInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Amount,
			validation.Required.Error("amount is required"),
			appValidation.Amount,
		),
		validation.Field(&input.CurrencyCode,
			validation.Required.Error("currency code is required"),
			appValidation.CurrencyCode,
		),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}

	_, err = domain.ParseType(input.Type)
	return err
}

// Create registers a new subscription for the user. The first billing falls
// one billing period after the start date. A zero start date means today.
func (uc *SubscriptionUseCase) Create(
	ctx context.Context,
	username string,
	input SubscriptionInput,
) (*domain.Subscription, error) {
	if err := validateSubscriptionInput(input); err != nil {
		return nil, err
	}
	subscriptionType, err := domain.ParseType(input.Type)
	if err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	startDate := input.StartDate
	if startDate.IsZero() {
		startDate = time.Now().UTC()
	}
	startDate = startDate.Truncate(24 * time.Hour)

	subscription := &domain.Subscription{
		ID:              uuid.Must(uuid.NewV7()),
		UserID:          user.ID,
		Username:        user.Username,
		Name:            input.Name,
		Amount:          input.Amount,
		CurrencyCode:    input.CurrencyCode,
		Type:            subscriptionType,
		StartDate:       startDate,
		NextBillingDate: startDate,
		Active:          true,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	subscription.AdvanceNextBillingDate()

	if err := uc.subscriptionRepo.Create(ctx, subscription); err != nil {
		return nil, err
	}

	return subscription, nil
}

// Get retrieves a subscription by ID, excluding soft deleted ones.
func (uc *SubscriptionUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	return uc.subscriptionRepo.GetByID(ctx, id, false)
}

// Update replaces the subscription's name, amount, currency, and billing
// cadence. The next billing date is kept; a cadence change takes effect on
// the following advance.
func (uc *SubscriptionUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input SubscriptionInput,
) (*domain.Subscription, error) {
	if err := validateSubscriptionInput(input); err != nil {
		return nil, err
	}
	subscriptionType, err := domain.ParseType(input.Type)
	if err != nil {
		return nil, err
	}

	subscription, err := uc.subscriptionRepo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	subscription.Name = input.Name
	subscription.Amount = input.Amount
	subscription.CurrencyCode = input.CurrencyCode
	subscription.Type = subscriptionType
	subscription.UpdatedAt = time.Now().UTC()

	if err := uc.subscriptionRepo.Update(ctx, subscription); err != nil {
		return nil, err
	}

	return subscription, nil
}

// Delete soft deletes the subscription by default. A hard delete permanently
// removes the row and requires the HARD_DELETE_SUBSCRIPTION capability.
func (uc *SubscriptionUseCase) Delete(ctx context.Context, id uuid.UUID, hardDelete bool) error {
	subscription, err := uc.subscriptionRepo.GetByID(ctx, id, true)
	if err != nil {
		return err
	}

	if hardDelete {
		identity, _ := authDomain.IdentityFromContext(ctx)
		if !identity.HasCapability(authDomain.CapabilityHardDeleteSubscription) {
			return apperrors.Wrap(apperrors.ErrForbidden, "hard delete requires HARD_DELETE_SUBSCRIPTION")
		}
		return uc.subscriptionRepo.Delete(ctx, subscription.ID)
	}

	if subscription.IsDeleted() {
		return nil
	}

	now := time.Now().UTC()
	subscription.DeletedAt = &now
	subscription.Active = false
	subscription.UpdatedAt = now

	return uc.subscriptionRepo.Update(ctx, subscription)
}

// Activate resumes billing for the subscription.
func (uc *SubscriptionUseCase) Activate(ctx context.Context, id uuid.UUID) error {
	return uc.setActive(ctx, id, true)
}

// Deactivate pauses billing for the subscription without deleting it.
func (uc *SubscriptionUseCase) Deactivate(ctx context.Context, id uuid.UUID) error {
	return uc.setActive(ctx, id, false)
}

func (uc *SubscriptionUseCase) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	subscription, err := uc.subscriptionRepo.GetByID(ctx, id, false)
	if err != nil {
		return err
	}

	if subscription.Active == active {
		return nil
	}

	subscription.Active = active
	subscription.UpdatedAt = time.Now().UTC()

	return uc.subscriptionRepo.Update(ctx, subscription)
}

// ListByUsername retrieves a user's subscriptions with pagination.
func (uc *SubscriptionUseCase) ListByUsername(
	ctx context.Context,
	username string,
	offset, limit int,
) ([]*domain.Subscription, error) {
	return uc.subscriptionRepo.ListByUsername(ctx, username, offset, limit)
}

// List retrieves subscriptions across all users with pagination.
func (uc *SubscriptionUseCase) List(ctx context.Context, offset, limit int) ([]*domain.Subscription, error) {
	return uc.subscriptionRepo.List(ctx, offset, limit)
}

// Owner returns the username of the subscription's owner.
func (uc *SubscriptionUseCase) Owner(ctx context.Context, id uuid.UUID) (string, error) {
	return uc.subscriptionRepo.GetOwner(ctx, id)
}

// ProcessDue bills every active subscription whose next billing date is on or
// before the given date. Each subscription is billed in its own transaction:
// the generated expense and the advanced billing date commit together, and a
// failure on one subscription does not block the rest. Returns the number of
// subscriptions billed and the combined error for any that failed.
func (uc *SubscriptionUseCase) ProcessDue(ctx context.Context, date time.Time) (int, error) {
	due, err := uc.subscriptionRepo.FindDue(ctx, date)
	if err != nil {
		return 0, err
	}

	processed := 0
	var failures []error
	for _, subscription := range due {
		err := uc.txManager.WithTx(ctx, func(txCtx context.Context) error {
			return uc.bill(txCtx, subscription)
		})
		if err != nil {
			failures = append(failures, apperrors.Wrap(err, "failed to bill subscription "+subscription.ID.String()))
			continue
		}
		processed++
	}

	return processed, errors.Join(failures...)
}

// bill creates the expense for one billing period and advances the next
// billing date past the period that was just charged.
func (uc *SubscriptionUseCase) bill(ctx context.Context, subscription *domain.Subscription) error {
	_, err := uc.expenseCreator.Create(ctx, subscription.Username, expenseUsecase.ExpenseInput{
		Amount:       subscription.Amount,
		CurrencyCode: subscription.CurrencyCode,
		Note:         subscription.ExpenseNote(),
	})
	if err != nil {
		return err
	}

	subscription.AdvanceNextBillingDate()
	subscription.UpdatedAt = time.Now().UTC()

	return uc.subscriptionRepo.Update(ctx, subscription)
}
