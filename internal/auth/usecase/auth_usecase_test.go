package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	"github.com/estifie/Expense-Tracker-API/internal/auth/service"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
	userDomain "github.com/estifie/Expense-Tracker-API/internal/user/domain"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *userDomain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*userDomain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func newTokenService(t *testing.T) service.TokenService {
	t.Helper()
	tokenService, err := service.NewTokenService("test-signing-key", time.Hour)
	require.NoError(t, err)
	return tokenService
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	require.NoError(t, err)
	hashed, err := hasher.Hash([]byte(password))
	require.NoError(t, err)
	return hashed
}

func TestAuthUseCase_Register_Success(t *testing.T) {
	userRepo := &MockUserRepository{}
	useCase, err := NewAuthUseCase(userRepo, newTokenService(t))
	require.NoError(t, err)

	ctx := context.Background()
	input := RegisterInput{
		Username: "alice",
		Password: "SecurePass123!",
	}

	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := useCase.Register(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, input.Password, user.Password)
	assert.Empty(t, user.Capabilities)
	userRepo.AssertExpectations(t)
}

func TestAuthUseCase_Register_WeakPassword(t *testing.T) {
	userRepo := &MockUserRepository{}
	useCase, err := NewAuthUseCase(userRepo, newTokenService(t))
	require.NoError(t, err)

	ctx := context.Background()
	input := RegisterInput{
		Username: "alice",
		Password: "weak",
	}

	user, err := useCase.Register(ctx, input)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Nil(t, user)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUseCase_Register_InvalidUsername(t *testing.T) {
	userRepo := &MockUserRepository{}
	useCase, err := NewAuthUseCase(userRepo, newTokenService(t))
	require.NoError(t, err)

	ctx := context.Background()
	input := RegisterInput{
		Username: "bad user!",
		Password: "SecurePass123!",
	}

	user, err := useCase.Register(ctx, input)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Nil(t, user)
}

func TestAuthUseCase_Register_DuplicateUsername(t *testing.T) {
	userRepo := &MockUserRepository{}
	useCase, err := NewAuthUseCase(userRepo, newTokenService(t))
	require.NoError(t, err)

	ctx := context.Background()
	input := RegisterInput{
		Username: "alice",
		Password: "SecurePass123!",
	}

	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(userDomain.ErrUsernameAlreadyExists)

	user, err := useCase.Register(ctx, input)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Nil(t, user)
}

func TestAuthUseCase_Login_Success(t *testing.T) {
	userRepo := &MockUserRepository{}
	tokenService := newTokenService(t)
	useCase, err := NewAuthUseCase(userRepo, tokenService)
	require.NoError(t, err)

	ctx := context.Background()
	user := &userDomain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Username: "alice",
		Password: hashPassword(t, "SecurePass123!"),
	}

	userRepo.On("GetByUsername", ctx, "alice").Return(user, nil)

	token, err := useCase.Login(ctx, LoginInput{Username: "alice", Password: "SecurePass123!"})

	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// The issued token carries the account's username as subject
	subject, err := tokenService.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestAuthUseCase_Login_WrongPassword(t *testing.T) {
	userRepo := &MockUserRepository{}
	useCase, err := NewAuthUseCase(userRepo, newTokenService(t))
	require.NoError(t, err)

	ctx := context.Background()
	user := &userDomain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Username: "alice",
		Password: hashPassword(t, "SecurePass123!"),
	}

	userRepo.On("GetByUsername", ctx, "alice").Return(user, nil)

	token, err := useCase.Login(ctx, LoginInput{Username: "alice", Password: "WrongPass123!"})

	require.Error(t, err)
	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
	assert.Empty(t, token)
}

func TestAuthUseCase_Login_UnknownUser(t *testing.T) {
	userRepo := &MockUserRepository{}
	useCase, err := NewAuthUseCase(userRepo, newTokenService(t))
	require.NoError(t, err)

	ctx := context.Background()

	userRepo.On("GetByUsername", ctx, "ghost").Return(nil, userDomain.ErrUserNotFound)

	token, err := useCase.Login(ctx, LoginInput{Username: "ghost", Password: "SecurePass123!"})

	// Unknown username maps to the same error as a wrong password
	require.Error(t, err)
	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
	assert.Empty(t, token)
}

func TestAuthUseCase_Login_DeactivatedAccount(t *testing.T) {
	userRepo := &MockUserRepository{}
	useCase, err := NewAuthUseCase(userRepo, newTokenService(t))
	require.NoError(t, err)

	ctx := context.Background()
	deactivatedAt := time.Now().UTC()
	user := &userDomain.User{
		ID:            uuid.Must(uuid.NewV7()),
		Username:      "alice",
		Password:      hashPassword(t, "SecurePass123!"),
		DeactivatedAt: &deactivatedAt,
	}

	userRepo.On("GetByUsername", ctx, "alice").Return(user, nil)

	token, err := useCase.Login(ctx, LoginInput{Username: "alice", Password: "SecurePass123!"})

	require.Error(t, err)
	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
	assert.Empty(t, token)
}

func TestAuthUseCase_Identify_Success(t *testing.T) {
	userRepo := &MockUserRepository{}
	tokenService := newTokenService(t)
	useCase, err := NewAuthUseCase(userRepo, tokenService)
	require.NoError(t, err)

	ctx := context.Background()
	user := &userDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Username:     "alice",
		Password:     "hashed-password",
		Capabilities: []authDomain.Capability{authDomain.CapabilityViewExpenses},
	}

	token, err := tokenService.Issue("alice")
	require.NoError(t, err)

	userRepo.On("GetByUsername", ctx, "alice").Return(user, nil)

	identity, err := useCase.Identify(ctx, token)

	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
	assert.True(t, identity.HasCapability(authDomain.CapabilityViewExpenses))
	assert.False(t, identity.HasCapability(authDomain.CapabilityManageExpenses))
}

func TestAuthUseCase_Identify_TamperedToken(t *testing.T) {
	userRepo := &MockUserRepository{}
	tokenService := newTokenService(t)
	useCase, err := NewAuthUseCase(userRepo, tokenService)
	require.NoError(t, err)

	ctx := context.Background()

	otherService, err := service.NewTokenService("another-signing-key", time.Hour)
	require.NoError(t, err)
	token, err := otherService.Issue("alice")
	require.NoError(t, err)

	identity, err := useCase.Identify(ctx, token)

	require.Error(t, err)
	assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	assert.Nil(t, identity)
	// The user store is never consulted for a token that fails verification
	userRepo.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
}

func TestAuthUseCase_Identify_DeletedAccount(t *testing.T) {
	userRepo := &MockUserRepository{}
	tokenService := newTokenService(t)
	useCase, err := NewAuthUseCase(userRepo, tokenService)
	require.NoError(t, err)

	ctx := context.Background()
	deletedAt := time.Now().UTC()
	user := &userDomain.User{
		ID:        uuid.Must(uuid.NewV7()),
		Username:  "alice",
		Password:  "hashed-password",
		DeletedAt: &deletedAt,
	}

	token, err := tokenService.Issue("alice")
	require.NoError(t, err)

	userRepo.On("GetByUsername", ctx, "alice").Return(user, nil)

	identity, err := useCase.Identify(ctx, token)

	// A valid token for a deleted account no longer establishes an identity
	require.Error(t, err)
	assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	assert.Nil(t, identity)
}

func TestAuthUseCase_Login_DeletedAccount(t *testing.T) {
	userRepo := &MockUserRepository{}
	useCase, err := NewAuthUseCase(userRepo, newTokenService(t))
	require.NoError(t, err)

	ctx := context.Background()
	deletedAt := time.Now().UTC()
	user := &userDomain.User{
		ID:        uuid.Must(uuid.NewV7()),
		Username:  "alice",
		Password:  hashPassword(t, "SecurePass123!"),
		DeletedAt: &deletedAt,
	}

	userRepo.On("GetByUsername", ctx, "alice").Return(user, nil)

	token, err := useCase.Login(ctx, LoginInput{Username: "alice", Password: "SecurePass123!"})

	require.Error(t, err)
	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
	assert.Empty(t, token)
}
