// Package auth implements the session lifecycle: login, refresh-token
// rotation, and logout. The session manager is written against narrow
// store interfaces so the lifecycle rules are testable without a database.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lotear/internal/models"
)

const (
	refreshSecretBytes = 64
	maxUserAgentLen    = 255
)

// CredentialStore looks up users for password verification.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*models.Usuario, error)
}

// Ledger persists issued refresh tokens. Rotate must be atomic: the
// conditional revoke of the old row and the insert of its successor either
// both happen or neither does, and a row already revoked by a concurrent
// caller aborts with ErrInvalidRefreshToken.
type Ledger interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	Rotate(ctx context.Context, oldID uuid.UUID, revokedAt time.Time, next *models.RefreshToken) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, revokedAt time.Time) error
}

// AccessTokenStore tracks issued access-token IDs so logout can invalidate
// bearer tokens before they expire.
type AccessTokenStore interface {
	Create(ctx context.Context, token *models.AccessToken) error
	Exists(ctx context.Context, jti uuid.UUID) (bool, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

// ClientContext carries request metadata recorded with each issued
// refresh token.
type ClientContext struct {
	UserAgent string
	IP        string
}

// TokenPair is the result of a successful login or refresh. RefreshToken
// holds the plaintext secret; it is returned exactly once and never stored.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int
	RefreshExpiresIn int
}

// Service orchestrates the session lifecycle over the credential store,
// the refresh-token ledger, and the access-token store.
type Service struct {
	creds      CredentialStore
	ledger     Ledger
	access     AccessTokenStore
	tokens     *TokenManager
	refreshTTL time.Duration
	now        func() time.Time
}

// NewService wires the session manager.
func NewService(creds CredentialStore, ledger Ledger, access AccessTokenStore, tokens *TokenManager, refreshTTL time.Duration) *Service {
	return &Service{
		creds:      creds,
		ledger:     ledger,
		access:     access,
		tokens:     tokens,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Login verifies credentials and issues a fresh token pair. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string, client ClientContext) (*TokenPair, error) {
	user, err := s.creds.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()

	plain, row, err := s.newRefreshToken(user.ID, client, now)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	accessToken, err := s.mintAccess(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}

	return s.pair(accessToken, plain), nil
}

// Refresh exchanges a live refresh token for a new pair, rotating the
// presented token. Each token is single-use: a second exchange of the same
// plaintext fails, including under concurrent requests.
func (s *Service) Refresh(ctx context.Context, plaintext string, client ClientContext) (*TokenPair, error) {
	now := s.now()

	stored, err := s.ledger.FindByHash(ctx, hashSecret(plaintext))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}
	if !stored.ActiveAt(now) {
		return nil, ErrInvalidRefreshToken
	}

	plain, next, err := s.newRefreshToken(stored.UsuarioID, client, now)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Rotate(ctx, stored.ID, now, next); err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	accessToken, err := s.mintAccess(ctx, stored.UsuarioID, now)
	if err != nil {
		return nil, err
	}

	return s.pair(accessToken, plain), nil
}

// Logout revokes every active refresh token owned by the user and deletes
// all of their access tokens. Idempotent: a second call revokes zero rows
// and still succeeds.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.ledger.RevokeAllForUser(ctx, userID, s.now()); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	if err := s.access.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete access tokens: %w", err)
	}
	return nil
}

// Authenticate validates a bearer token and returns the owning user ID.
// A token whose jti row was deleted by logout is rejected even if its
// signature and expiry are still valid.
func (s *Service) Authenticate(ctx context.Context, bearer string) (uuid.UUID, error) {
	userID, jti, err := s.tokens.Parse(bearer)
	if err != nil {
		return uuid.Nil, ErrInvalidAccessToken
	}

	ok, err := s.access.Exists(ctx, jti)
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup access token: %w", err)
	}
	if !ok {
		return uuid.Nil, ErrInvalidAccessToken
	}
	return userID, nil
}

func (s *Service) newRefreshToken(userID uuid.UUID, client ClientContext, now time.Time) (string, *models.RefreshToken, error) {
	secret := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", nil, fmt.Errorf("generate refresh secret: %w", err)
	}
	plain := base64.RawURLEncoding.EncodeToString(secret)

	ua := client.UserAgent
	if len(ua) > maxUserAgentLen {
		ua = ua[:maxUserAgentLen]
	}

	return plain, &models.RefreshToken{
		ID:        uuid.New(),
		UsuarioID: userID,
		TokenHash: hashSecret(plain),
		UserAgent: ua,
		IPAddress: client.IP,
		ExpiresAt: now.Add(s.refreshTTL),
	}, nil
}

func (s *Service) mintAccess(ctx context.Context, userID uuid.UUID, now time.Time) (string, error) {
	signed, jti, expiresAt, err := s.tokens.Issue(userID, now)
	if err != nil {
		return "", err
	}
	if err := s.access.Create(ctx, &models.AccessToken{ID: jti, UsuarioID: userID, ExpiresAt: expiresAt}); err != nil {
		return "", fmt.Errorf("store access token: %w", err)
	}
	return signed, nil
}

func (s *Service) pair(accessToken, refreshToken string) *TokenPair {
	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        int(s.tokens.TTL().Seconds()),
		RefreshExpiresIn: int(s.refreshTTL.Seconds()),
	}
}

// hashSecret derives the 64-hex-char ledger key from a plaintext secret.
func hashSecret(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
