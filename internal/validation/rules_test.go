package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	t.Run("NilReturnsNil", func(t *testing.T) {
		assert.Nil(t, WrapValidationError(nil))
	})

	t.Run("WrapsAsInvalidInput", func(t *testing.T) {
		err := WrapValidationError(errors.New("name cannot be blank"))

		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "name cannot be blank")
	})
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("hello"))
	assert.Error(t, NotBlank.Validate(""))
	assert.Error(t, NotBlank.Validate("   "))
	assert.Error(t, NotBlank.Validate(42))
}

func TestUsername(t *testing.T) {
	valid := []string{"alice", "alice.bob", "user_1", "a-b-c", "A1"}
	for _, username := range valid {
		assert.NoError(t, Username.Validate(username), username)
	}

	invalid := []string{"", "with space", "slash/name", "percent%20", "ünïcode"}
	for _, username := range invalid {
		assert.Error(t, Username.Validate(username), username)
	}
}

func TestCurrencyCode(t *testing.T) {
	assert.NoError(t, CurrencyCode.Validate("USD"))
	assert.NoError(t, CurrencyCode.Validate("TRY"))

	assert.Error(t, CurrencyCode.Validate("usd"))
	assert.Error(t, CurrencyCode.Validate("US"))
	assert.Error(t, CurrencyCode.Validate("USDT"))
	assert.Error(t, CurrencyCode.Validate(""))
}

func TestAmount(t *testing.T) {
	valid := []string{"0", "10", "15.99", "0.0001"}
	for _, amount := range valid {
		assert.NoError(t, Amount.Validate(amount), amount)
	}

	invalid := []string{"", "-1", "1.", ".5", "1,99", "abc", "1e5"}
	for _, amount := range invalid {
		assert.Error(t, Amount.Validate(amount), amount)
	}
}

func TestPasswordStrength(t *testing.T) {
	rule := PasswordStrength{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireNumber:  true,
		RequireSpecial: true,
	}

	t.Run("Success", func(t *testing.T) {
		assert.NoError(t, rule.Validate("Str0ng!pass"))
	})

	t.Run("Error_TooShort", func(t *testing.T) {
		assert.Error(t, rule.Validate("S1!a"))
	})

	t.Run("Error_MissingUpper", func(t *testing.T) {
		assert.Error(t, rule.Validate("weak1!pass"))
	})

	t.Run("Error_MissingNumber", func(t *testing.T) {
		assert.Error(t, rule.Validate("Weakpass!"))
	})

	t.Run("Error_MissingSpecial", func(t *testing.T) {
		assert.Error(t, rule.Validate("Weakpass1"))
	})

	t.Run("Success_MinimalPolicy", func(t *testing.T) {
		lax := PasswordStrength{MinLength: 4}
		assert.NoError(t, lax.Validate("abcd"))
	})
}
