package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lotear/internal/models"
)

type fakeCreds struct {
	users map[string]*models.Usuario
}

func (f *fakeCreds) FindByUsername(_ context.Context, username string) (*models.Usuario, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

type fakeLedger struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.RefreshToken
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: make(map[uuid.UUID]*models.RefreshToken)}
}

func (f *fakeLedger) Create(_ context.Context, token *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *token
	f.rows[token.ID] = &cp
	return nil
}

func (f *fakeLedger) FindByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.TokenHash == hash {
			cp := *row
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeLedger) Rotate(_ context.Context, oldID uuid.UUID, revokedAt time.Time, next *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.rows[oldID]
	if !ok || old.RevokedAt != nil {
		return ErrInvalidRefreshToken
	}
	old.RevokedAt = &revokedAt
	cp := *next
	f.rows[next.ID] = &cp
	return nil
}

func (f *fakeLedger) RevokeAllForUser(_ context.Context, userID uuid.UUID, revokedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.UsuarioID == userID && row.RevokedAt == nil {
			at := revokedAt
			row.RevokedAt = &at
		}
	}
	return nil
}

type fakeAccess struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.AccessToken
}

func newFakeAccess() *fakeAccess {
	return &fakeAccess{rows: make(map[uuid.UUID]*models.AccessToken)}
}

func (f *fakeAccess) Create(_ context.Context, token *models.AccessToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *token
	f.rows[token.ID] = &cp
	return nil
}

func (f *fakeAccess) Exists(_ context.Context, jti uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[jti]
	return ok, nil
}

func (f *fakeAccess) DeleteAllForUser(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, row := range f.rows {
		if row.UsuarioID == userID {
			delete(f.rows, id)
		}
	}
	return nil
}

type fixture struct {
	svc    *Service
	creds  *fakeCreds
	ledger *fakeLedger
	access *fakeAccess
	now    time.Time
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newFixture(t *testing.T, users ...*models.Usuario) *fixture {
	t.Helper()
	creds := &fakeCreds{users: make(map[string]*models.Usuario)}
	for _, u := range users {
		creds.users[u.Username] = u
	}
	ledger := newFakeLedger()
	access := newFakeAccess()

	svc := NewService(creds, ledger, access, NewTokenManager("test-key", time.Hour), 720*time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &fixture{svc: svc, creds: creds, ledger: ledger, access: access, now: now}
}

func adminUser(t *testing.T) *models.Usuario {
	t.Helper()
	return &models.Usuario{
		ID:           uuid.New(),
		Username:     "admin",
		PasswordHash: mustHash(t, "admin"),
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	user := adminUser(t)
	fx := newFixture(t, user)

	pair, err := fx.svc.Login(context.Background(), "admin", "admin", ClientContext{
		UserAgent: "integration-test",
		IP:        "10.0.0.1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.GreaterOrEqual(t, len(pair.RefreshToken), 64)
	assert.Equal(t, 3600, pair.ExpiresIn)
	assert.Equal(t, int((720 * time.Hour).Seconds()), pair.RefreshExpiresIn)

	require.Len(t, fx.ledger.rows, 1)
	for _, row := range fx.ledger.rows {
		assert.Equal(t, user.ID, row.UsuarioID)
		assert.NotEqual(t, pair.RefreshToken, row.TokenHash)
		assert.Len(t, row.TokenHash, 64)
		assert.Equal(t, "integration-test", row.UserAgent)
		assert.Equal(t, "10.0.0.1", row.IPAddress)
		assert.Equal(t, fx.now.Add(720*time.Hour), row.ExpiresAt)
		assert.True(t, row.ActiveAt(fx.now))
	}
}

func TestLoginTruncatesUserAgent(t *testing.T) {
	fx := newFixture(t, adminUser(t))

	_, err := fx.svc.Login(context.Background(), "admin", "admin", ClientContext{
		UserAgent: strings.Repeat("x", 400),
	})
	require.NoError(t, err)

	for _, row := range fx.ledger.rows {
		assert.Len(t, row.UserAgent, 255)
	}
}

func TestLoginFailureIsUniform(t *testing.T) {
	fx := newFixture(t, adminUser(t))

	_, errUnknown := fx.svc.Login(context.Background(), "nouser", "x", ClientContext{})
	_, errWrongPass := fx.svc.Login(context.Background(), "admin", "wrongpass", ClientContext{})

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPass)
	assert.Empty(t, fx.ledger.rows)
}

func TestRefreshRotatesSingleUse(t *testing.T) {
	fx := newFixture(t, adminUser(t))

	pair, err := fx.svc.Login(context.Background(), "admin", "admin", ClientContext{})
	require.NoError(t, err)

	next, err := fx.svc.Refresh(context.Background(), pair.RefreshToken, ClientContext{})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, next.AccessToken)

	// The presented token is spent; a replay must fail even though it has
	// not expired.
	_, err = fx.svc.Refresh(context.Background(), pair.RefreshToken, ClientContext{})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// Exactly one row of the lineage is active.
	active := 0
	for _, row := range fx.ledger.rows {
		if row.ActiveAt(fx.now) {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestRefreshUnknownToken(t *testing.T) {
	fx := newFixture(t, adminUser(t))

	_, err := fx.svc.Refresh(context.Background(), strings.Repeat("a", 86), ClientContext{})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshExpiredToken(t *testing.T) {
	fx := newFixture(t, adminUser(t))

	pair, err := fx.svc.Login(context.Background(), "admin", "admin", ClientContext{})
	require.NoError(t, err)

	// Advance past the refresh TTL; the row is untouched but computed as
	// inactive.
	fx.svc.now = func() time.Time { return fx.now.Add(721 * time.Hour) }

	_, err = fx.svc.Refresh(context.Background(), pair.RefreshToken, ClientContext{})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	for _, row := range fx.ledger.rows {
		assert.Nil(t, row.RevokedAt)
	}
}

func TestLogoutRevokesAllForUserOnly(t *testing.T) {
	alice := adminUser(t)
	bob := &models.Usuario{ID: uuid.New(), Username: "bob", PasswordHash: mustHash(t, "secret")}
	fx := newFixture(t, alice, bob)

	_, err := fx.svc.Login(context.Background(), "admin", "admin", ClientContext{})
	require.NoError(t, err)
	_, err = fx.svc.Login(context.Background(), "admin", "admin", ClientContext{})
	require.NoError(t, err)
	bobPair, err := fx.svc.Login(context.Background(), "bob", "secret", ClientContext{})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Logout(context.Background(), alice.ID))

	for _, row := range fx.ledger.rows {
		if row.UsuarioID == alice.ID {
			assert.NotNil(t, row.RevokedAt)
		} else {
			assert.Nil(t, row.RevokedAt)
		}
	}
	for _, row := range fx.access.rows {
		assert.NotEqual(t, alice.ID, row.UsuarioID)
	}

	// Bob's session still works.
	_, err = fx.svc.Refresh(context.Background(), bobPair.RefreshToken, ClientContext{})
	assert.NoError(t, err)

	// Logout is idempotent.
	assert.NoError(t, fx.svc.Logout(context.Background(), alice.ID))
}

func TestAuthenticateRejectsLoggedOutToken(t *testing.T) {
	user := adminUser(t)
	fx := newFixture(t, user)

	pair, err := fx.svc.Login(context.Background(), "admin", "admin", ClientContext{})
	require.NoError(t, err)

	got, err := fx.svc.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got)

	require.NoError(t, fx.svc.Logout(context.Background(), user.ID))

	_, err = fx.svc.Authenticate(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Authenticate(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}
