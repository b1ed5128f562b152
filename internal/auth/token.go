package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager mints and validates the short-lived bearer tokens. Tokens
// are HS256 JWTs whose jti claim doubles as the revocation handle kept in
// the access-token table.
type TokenManager struct {
	key []byte
	ttl time.Duration
}

// NewTokenManager builds a manager signing with the given key.
func NewTokenManager(key string, ttl time.Duration) *TokenManager {
	return &TokenManager{key: []byte(key), ttl: ttl}
}

// TTL exposes the configured access-token lifetime.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a new token for the user. The returned jti must be persisted
// so the token can be invalidated before expiry.
func (m *TokenManager) Issue(userID uuid.UUID, now time.Time) (signed string, jti uuid.UUID, expiresAt time.Time, err error) {
	jti = uuid.New()
	expiresAt = now.Add(m.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ID:        jti.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", uuid.Nil, time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, jti, expiresAt, nil
}

// Parse validates signature and expiry and returns the subject and jti.
func (m *TokenManager) Parse(signed string) (userID uuid.UUID, jti uuid.UUID, err error) {
	var claims jwt.RegisteredClaims

	_, err = jwt.ParseWithClaims(signed, &claims,
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return m.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidAccessToken
	}

	userID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidAccessToken
	}
	jti, err = uuid.Parse(claims.ID)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidAccessToken
	}
	return userID, jti, nil
}
