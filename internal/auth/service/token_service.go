package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
)

// jwtTokenService implements TokenService with HMAC-SHA256 signed JWTs.
// Signature verification inside the jwt library uses a constant-time HMAC
// comparison, so the secret comparison does not leak timing information.
type jwtTokenService struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokenService creates a TokenService that signs tokens with the given
// key and issues them with the given time-to-live.
func NewTokenService(signingKey string, ttl time.Duration) (TokenService, error) {
	if signingKey == "" {
		return nil, apperrors.New("token signing key must not be empty")
	}
	return &jwtTokenService{
		signingKey: []byte(signingKey),
		ttl:        ttl,
	}, nil
}

// Issue produces a signed token for the subject valid from now until now+TTL.
func (t *jwtTokenService) Issue(subject string) (string, error) {
	now := time.Now().UTC()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(t.signingKey)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// Verify validates the token signature and expiry and returns the subject.
// All verification failures collapse into domain.ErrInvalidToken so callers
// cannot distinguish a forged token from an expired one.
func (t *jwtTokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, authDomain.ErrInvalidToken
			}
			return t.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", authDomain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", authDomain.ErrInvalidToken
	}

	return claims.Subject, nil
}

// ExtractSubject parses the token without signature verification and returns
// the subject claim.
func (t *jwtTokenService) ExtractSubject(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return "", authDomain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", authDomain.ErrInvalidToken
	}
	return claims.Subject, nil
}
