// Package usecase implements the expense business logic.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	"github.com/estifie/Expense-Tracker-API/internal/expense/domain"
	tagDomain "github.com/estifie/Expense-Tracker-API/internal/tag/domain"
	userDomain "github.com/estifie/Expense-Tracker-API/internal/user/domain"
	appValidation "github.com/estifie/Expense-Tracker-API/internal/validation"
)

// ExpenseInput contains the fields for creating or updating an expense.
type ExpenseInput struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
	Note         string `json:"note"`
}

// UseCase defines the interface for expense business logic operations.
type UseCase interface {
	Create(ctx context.Context, username string, input ExpenseInput) (*domain.Expense, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Expense, error)
	Update(ctx context.Context, id uuid.UUID, input ExpenseInput) (*domain.Expense, error)
	Delete(ctx context.Context, id uuid.UUID, hardDelete bool) error
	ListByUsername(ctx context.Context, username string, offset, limit int) ([]*domain.Expense, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Expense, error)
	AddTag(ctx context.Context, id uuid.UUID, tagName string) error
	RemoveTag(ctx context.Context, id uuid.UUID, tagName string) error
	Owner(ctx context.Context, id uuid.UUID) (string, error)
}

// ExpenseRepository interface defines expense repository operations.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Expense, error)
	GetOwner(ctx context.Context, id uuid.UUID) (string, error)
	ListByUsername(ctx context.Context, username string, offset, limit int) ([]*domain.Expense, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Expense, error)
	Update(ctx context.Context, expense *domain.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddTag(ctx context.Context, expenseID, tagID uuid.UUID) error
	RemoveTag(ctx context.Context, expenseID, tagID uuid.UUID) error
}

// UserRepository defines the user repository operations the expense use case needs.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*userDomain.User, error)
}

// TagRepository defines the tag repository operations the expense use case needs.
type TagRepository interface {
	GetOrCreate(ctx context.Context, name string) (*tagDomain.Tag, error)
	GetByName(ctx context.Context, name string) (*tagDomain.Tag, error)
}

// ExpenseUseCase handles expense-related business logic.
type ExpenseUseCase struct {
	expenseRepo ExpenseRepository
	userRepo    UserRepository
	tagRepo     TagRepository
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(
	expenseRepo ExpenseRepository,
	userRepo UserRepository,
	tagRepo TagRepository,
) *ExpenseUseCase {
	return &ExpenseUseCase{
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		tagRepo:     tagRepo,
	}
}

// validateExpenseInput validates amount format, currency code shape, and
// note length.
func validateExpenseInput(input ExpenseInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Amount,
			validation.Required.Error("amount is required"),
			appValidation.Amount,
		),
		validation.Field(&input.CurrencyCode,
			validation.Required.Error("currency code is required"),
			appValidation.CurrencyCode,
		),
		validation.Field(&input.Note,
			validation.Length(0, 1024).Error("note must be at most 1024 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Create records a new expense for the user.
func (uc *ExpenseUseCase) Create(
	ctx context.Context,
	username string,
	input ExpenseInput,
) (*domain.Expense, error) {
	if err := validateExpenseInput(input); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	expense := &domain.Expense{
		ID:           uuid.Must(uuid.NewV7()),
		UserID:       user.ID,
		Username:     user.Username,
		Amount:       input.Amount,
		CurrencyCode: input.CurrencyCode,
		Note:         input.Note,
	}

	if err := uc.expenseRepo.Create(ctx, expense); err != nil {
		return nil, err
	}

	return expense, nil
}

// Get retrieves an expense by ID, excluding soft deleted expenses.
func (uc *ExpenseUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Expense, error) {
	return uc.expenseRepo.GetByID(ctx, id, false)
}

// Update replaces the expense's amount, currency, and note.
func (uc *ExpenseUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input ExpenseInput,
) (*domain.Expense, error) {
	if err := validateExpenseInput(input); err != nil {
		return nil, err
	}

	expense, err := uc.expenseRepo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	expense.Amount = input.Amount
	expense.CurrencyCode = input.CurrencyCode
	expense.Note = input.Note

	if err := uc.expenseRepo.Update(ctx, expense); err != nil {
		return nil, err
	}

	return expense, nil
}

// Delete soft deletes the expense. When hardDelete is requested the caller
// must hold HARD_DELETE_EXPENSE; the row is then removed permanently.
func (uc *ExpenseUseCase) Delete(ctx context.Context, id uuid.UUID, hardDelete bool) error {
	expense, err := uc.expenseRepo.GetByID(ctx, id, true)
	if err != nil {
		return err
	}

	if hardDelete {
		identity, _ := authDomain.IdentityFromContext(ctx)
		if !identity.HasCapability(authDomain.CapabilityHardDeleteExpense) {
			return apperrors.Wrap(apperrors.ErrForbidden, "hard delete requires HARD_DELETE_EXPENSE")
		}
		return uc.expenseRepo.Delete(ctx, expense.ID)
	}

	now := time.Now().UTC()
	expense.DeletedAt = &now

	return uc.expenseRepo.Update(ctx, expense)
}

// ListByUsername retrieves a user's expenses with pagination.
func (uc *ExpenseUseCase) ListByUsername(
	ctx context.Context,
	username string,
	offset, limit int,
) ([]*domain.Expense, error) {
	return uc.expenseRepo.ListByUsername(ctx, username, offset, limit)
}

// List retrieves expenses across all users with pagination.
func (uc *ExpenseUseCase) List(ctx context.Context, offset, limit int) ([]*domain.Expense, error) {
	return uc.expenseRepo.List(ctx, offset, limit)
}

// AddTag attaches a tag to the expense, creating the tag if it does not
// exist yet.
func (uc *ExpenseUseCase) AddTag(ctx context.Context, id uuid.UUID, tagName string) error {
	expense, err := uc.expenseRepo.GetByID(ctx, id, false)
	if err != nil {
		return err
	}

	tag, err := uc.tagRepo.GetOrCreate(ctx, tagName)
	if err != nil {
		return err
	}

	return uc.expenseRepo.AddTag(ctx, expense.ID, tag.ID)
}

// RemoveTag detaches a tag from the expense. The tag must exist.
func (uc *ExpenseUseCase) RemoveTag(ctx context.Context, id uuid.UUID, tagName string) error {
	expense, err := uc.expenseRepo.GetByID(ctx, id, false)
	if err != nil {
		return err
	}

	tag, err := uc.tagRepo.GetByName(ctx, tagName)
	if err != nil {
		return err
	}

	return uc.expenseRepo.RemoveTag(ctx, expense.ID, tag.ID)
}

// Owner resolves the username of the expense's owner for authorization.
func (uc *ExpenseUseCase) Owner(ctx context.Context, id uuid.UUID) (string, error) {
	return uc.expenseRepo.GetOwner(ctx, id)
}
