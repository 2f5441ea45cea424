package domain

import (
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
)

// Domain-specific errors for authentication and authorization.
var (
	// ErrInvalidCredentials indicates a failed login attempt. The same error
	// covers unknown usernames and wrong passwords to prevent enumeration.
	ErrInvalidCredentials = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credentials")

	// ErrInvalidToken indicates a token that failed verification: bad
	// signature, expired, or malformed. Token verification failures never
	// hard-fail a request; the authentication gate downgrades to anonymous.
	ErrInvalidToken = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid token")

	// ErrUnknownCapability indicates a grant or revoke with a capability name
	// outside the known set.
	ErrUnknownCapability = apperrors.Wrap(apperrors.ErrInvalidInput, "unknown capability")

	// ErrMissingCredentials indicates a login or registration request without
	// a username or password.
	ErrMissingCredentials = apperrors.Wrap(apperrors.ErrInvalidInput, "username and password must be provided")
)
