// Package service provides stateless authentication services.
package service

// TokenService issues and verifies stateless, signed, time-bound bearer
// tokens binding a subject to an expiry. No token state is kept server-side;
// revocation happens only through signing-key rotation or account deletion.
type TokenService interface {
	// Issue produces a signed token embedding the subject, the issue time,
	// and an expiry derived from the configured TTL.
	Issue(subject string) (string, error)

	// Verify checks the token signature and expiry and returns the embedded
	// subject. Returns domain.ErrInvalidToken on signature mismatch, elapsed
	// expiry, or malformed encoding; verification failures are ordinary
	// return values, never panics.
	Verify(token string) (string, error)

	// ExtractSubject returns the subject claim without verifying the
	// signature. Callers may use it to short-circuit already-authenticated
	// requests, but authorization decisions must never trust an unverified
	// extraction.
	ExtractSubject(token string) (string, error)
}
