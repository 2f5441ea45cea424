// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
)

var (
	// usernameRegex restricts usernames to URL-safe characters since usernames
	// appear as path parameters.
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._\-]+$`)

	// currencyCodeRegex matches ISO 4217 alphabetic currency codes.
	currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

	// amountRegex matches non-negative decimal amounts. Amounts are carried
	// as strings end to end and stored as NUMERIC to avoid float rounding.
	amountRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_not_blank", "must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "cannot be blank")
	}
	return nil
})

// Username validates that a string is a well-formed username.
var Username = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_username", "must be a string")
	}
	if !usernameRegex.MatchString(s) {
		return validation.NewError(
			"validation_username",
			"username may only contain letters, digits, '.', '_' and '-'",
		)
	}
	return nil
})

// CurrencyCode validates that a string looks like an ISO 4217 currency code.
// Whether the code is actually convertible is decided by the exchange rate provider.
var CurrencyCode = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_currency_code", "must be a string")
	}
	if !currencyCodeRegex.MatchString(s) {
		return validation.NewError(
			"validation_currency_code",
			"currency code must be a 3-letter uppercase ISO 4217 code",
		)
	}
	return nil
})

// Amount validates that a string is a non-negative decimal amount.
var Amount = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_amount", "must be a string")
	}
	if !amountRegex.MatchString(s) {
		return validation.NewError(
			"validation_amount",
			"amount must be a non-negative decimal number",
		)
	}
	return nil
})

// PasswordStrength validates password meets minimum security requirements.
type PasswordStrength struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumber  bool
	RequireSpecial bool
}

// Validate checks if the password meets the configured requirements.
func (p PasswordStrength) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_strength", "password must be a string")
	}

	if len(s) < p.MinLength {
		return validation.NewError(
			"validation_password_min_length",
			"password is too short",
		)
	}

	if p.RequireUpper && !hasUpperCase(s) {
		return validation.NewError(
			"validation_password_uppercase",
			"password must contain at least one uppercase letter",
		)
	}

	if p.RequireLower && !hasLowerCase(s) {
		return validation.NewError(
			"validation_password_lowercase",
			"password must contain at least one lowercase letter",
		)
	}

	if p.RequireNumber && !hasNumber(s) {
		return validation.NewError("validation_password_number", "password must contain at least one number")
	}

	if p.RequireSpecial && !hasSpecialChar(s) {
		return validation.NewError(
			"validation_password_special",
			"password must contain at least one special character",
		)
	}

	return nil
}

// hasUpperCase checks if string contains uppercase letters.
func hasUpperCase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// hasLowerCase checks if string contains lowercase letters.
func hasLowerCase(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

// hasNumber checks if string contains digits.
func hasNumber(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// hasSpecialChar checks if string contains non-alphanumeric characters.
func hasSpecialChar(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
