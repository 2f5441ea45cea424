// Package usecase implements authentication business logic: account
// registration and credential verification with token issuance.
package usecase

import (
	"context"
	"strings"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	"github.com/estifie/Expense-Tracker-API/internal/auth/service"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	userDomain "github.com/estifie/Expense-Tracker-API/internal/user/domain"
	appValidation "github.com/estifie/Expense-Tracker-API/internal/validation"
)

// RegisterInput contains the input data for account registration.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginInput contains the credentials for authentication.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthUseCase defines the interface for authentication operations.
type AuthUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*userDomain.User, error)
	Login(ctx context.Context, input LoginInput) (string, error)
	Identify(ctx context.Context, token string) (*authDomain.Identity, error)
}

// UserRepository defines the user repository operations the auth use case needs.
type UserRepository interface {
	Create(ctx context.Context, user *userDomain.User) error
	GetByUsername(ctx context.Context, username string) (*userDomain.User, error)
}

// authUseCase handles registration and login.
type authUseCase struct {
	userRepo       UserRepository
	tokenService   service.TokenService
	passwordHasher *pwdhash.PasswordHasher
}

// NewAuthUseCase creates a new AuthUseCase.
func NewAuthUseCase(userRepo UserRepository, tokenService service.TokenService) (AuthUseCase, error) {
	// Interactive policy for user-facing password hashing
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &authUseCase{
		userRepo:       userRepo,
		tokenService:   tokenService,
		passwordHasher: hasher,
	}, nil
}

// validateRegisterInput validates the registration input:
// - username format (letters, numbers, dot, underscore, hyphen) and length
// - password strength (min 8 chars, uppercase, lowercase, number, special char)
func (uc *authUseCase) validateRegisterInput(input RegisterInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Username,
			validation.Required.Error("username is required"),
			appValidation.NotBlank,
			appValidation.Username,
			validation.Length(3, 64).Error("username must be between 3 and 64 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireNumber:  true,
				RequireSpecial: true,
			},
		),
	)
	return appValidation.WrapValidationError(err)
}

// Register creates a new account with an empty granted capability set.
// New accounts hold no capabilities; they act on their own resources through
// ownership and gain anything further only by explicit grant.
func (uc *authUseCase) Register(ctx context.Context, input RegisterInput) (*userDomain.User, error) {
	if err := uc.validateRegisterInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.passwordHasher.Hash([]byte(input.Password))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	user := &userDomain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Username: strings.TrimSpace(input.Username),
		Password: hashedPassword,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the credentials and issues a signed token for the account.
// Unknown usernames and wrong passwords both map to ErrInvalidCredentials so
// the response does not reveal which accounts exist. Deleted and deactivated
// accounts cannot establish a new identity.
func (uc *authUseCase) Login(ctx context.Context, input LoginInput) (string, error) {
	user, err := uc.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", authDomain.ErrInvalidCredentials
		}
		return "", err
	}

	ok, err := uc.passwordHasher.Verify([]byte(input.Password), user.Password)
	if err != nil || !ok {
		return "", authDomain.ErrInvalidCredentials
	}

	if !user.CanAuthenticate() {
		return "", authDomain.ErrInvalidCredentials
	}

	token, err := uc.tokenService.Issue(user.Username)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to issue token")
	}

	return token, nil
}

// Identify verifies the token and builds the caller's identity from the
// account's current granted capability set. The capability set is read from
// storage on every call, so revocations take effect on the next request even
// though the token itself stays valid until it expires.
func (uc *authUseCase) Identify(ctx context.Context, token string) (*authDomain.Identity, error) {
	subject, err := uc.tokenService.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByUsername(ctx, subject)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, authDomain.ErrInvalidToken
		}
		return nil, err
	}

	if !user.CanAuthenticate() {
		return nil, authDomain.ErrInvalidToken
	}

	return authDomain.NewIdentity(user.Username, user.Capabilities), nil
}
