package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
)

func TestNewTokenService(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		service, err := NewTokenService("test-signing-key", time.Hour)
		require.NoError(t, err)
		assert.NotNil(t, service)
	})

	t.Run("Error_EmptySigningKey", func(t *testing.T) {
		service, err := NewTokenService("", time.Hour)
		assert.Error(t, err)
		assert.Nil(t, service)
	})
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	service, err := NewTokenService("test-signing-key", time.Hour)
	require.NoError(t, err)

	t.Run("Success_RoundTrip", func(t *testing.T) {
		token, err := service.Issue("alice")
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		subject, err := service.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", subject)
	})

	t.Run("Error_ExpiredToken", func(t *testing.T) {
		shortLived, err := NewTokenService("test-signing-key", -time.Minute)
		require.NoError(t, err)

		token, err := shortLived.Issue("alice")
		require.NoError(t, err)

		subject, verifyErr := shortLived.Verify(token)
		assert.Empty(t, subject)
		assert.True(t, errors.Is(verifyErr, authDomain.ErrInvalidToken))
	})

	t.Run("Error_WrongSigningKey", func(t *testing.T) {
		other, err := NewTokenService("another-signing-key", time.Hour)
		require.NoError(t, err)

		token, err := other.Issue("alice")
		require.NoError(t, err)

		subject, verifyErr := service.Verify(token)
		assert.Empty(t, subject)
		assert.True(t, errors.Is(verifyErr, authDomain.ErrInvalidToken))
	})

	t.Run("Error_TamperedToken", func(t *testing.T) {
		token, err := service.Issue("alice")
		require.NoError(t, err)

		tampered := token[:len(token)-2] + "xx"

		subject, verifyErr := service.Verify(tampered)
		assert.Empty(t, subject)
		assert.True(t, errors.Is(verifyErr, authDomain.ErrInvalidToken))
	})

	t.Run("Error_GarbageToken", func(t *testing.T) {
		subject, verifyErr := service.Verify("not-a-token")
		assert.Empty(t, subject)
		assert.True(t, errors.Is(verifyErr, authDomain.ErrInvalidToken))
	})

	t.Run("Error_UnsignedAlgorithmRejected", func(t *testing.T) {
		// A token signed with "none" must never verify, even with a
		// matching subject claim.
		claims := jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		subject, verifyErr := service.Verify(unsigned)
		assert.Empty(t, subject)
		assert.True(t, errors.Is(verifyErr, authDomain.ErrInvalidToken))
	})

	t.Run("Error_MissingSubject", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte("test-signing-key"))
		require.NoError(t, err)

		subject, verifyErr := service.Verify(token)
		assert.Empty(t, subject)
		assert.True(t, errors.Is(verifyErr, authDomain.ErrInvalidToken))
	})
}

func TestTokenService_ExtractSubject(t *testing.T) {
	service, err := NewTokenService("test-signing-key", time.Hour)
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		token, err := service.Issue("alice")
		require.NoError(t, err)

		subject, err := service.ExtractSubject(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", subject)
	})

	t.Run("Error_Garbage", func(t *testing.T) {
		subject, err := service.ExtractSubject("garbage")
		assert.Empty(t, subject)
		assert.True(t, errors.Is(err, authDomain.ErrInvalidToken))
	})
}
