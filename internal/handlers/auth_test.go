package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lotear/internal/auth"
	"lotear/internal/models"
)

type fakeCreds struct {
	users map[string]*models.Usuario
}

func (f *fakeCreds) FindByUsername(_ context.Context, username string) (*models.Usuario, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return u, nil
}

type fakeLedger struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.RefreshToken
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
	return nil, auth.ErrNotFound
}

func (f *fakeLedger) Rotate(_ context.Context, oldID uuid.UUID, revokedAt time.Time, next *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.rows[oldID]
	if !ok || old.RevokedAt != nil {
		return auth.ErrInvalidRefreshToken
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

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.MinCost)
	require.NoError(t, err)

	creds := &fakeCreds{users: map[string]*models.Usuario{
		"admin": {ID: uuid.New(), Username: "admin", PasswordHash: string(hash)},
	}}
	svc := auth.NewService(
		creds,
		&fakeLedger{rows: make(map[uuid.UUID]*models.RefreshToken)},
		&fakeAccess{rows: make(map[uuid.UUID]*models.AccessToken)},
		auth.NewTokenManager("handler-test-key", time.Hour),
		720*time.Hour,
	)

	srv := httptest.NewServer(Router(RouterOptions{Auth: svc}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func loginTokens(t *testing.T, srv *httptest.Server) (access, refresh string) {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/auth/login", map[string]string{"username": "admin", "password": "admin"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	return body["access_token"].(string), body["refresh_token"].(string)
}

func TestLoginEndpoint(t *testing.T) {
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/api/auth/login", map[string]string{"username": "admin", "password": "admin"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Bearer", body["token_type"])
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])
	assert.EqualValues(t, 3600, body["expires_in"])
	assert.EqualValues(t, (720 * time.Hour).Seconds(), body["refresh_expires_in"])
}

func TestLoginEndpointRejections(t *testing.T) {
	srv := testServer(t)

	// Wrong password and unknown user are indistinguishable.
	for _, creds := range []map[string]string{
		{"username": "admin", "password": "wrong-pass"},
		{"username": "ghost", "password": "whatever"},
	} {
		resp := postJSON(t, srv.URL+"/api/auth/login", creds, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Credenciais inválidas", body["message"])
	}

	// Malformed body shape is a 400, not a 401.
	resp := postJSON(t, srv.URL+"/api/auth/login", map[string]string{"user": "admin"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "user")
}

func TestRefreshEndpointRotates(t *testing.T) {
	srv := testServer(t)
	_, refresh := loginTokens(t, srv)

	resp := postJSON(t, srv.URL+"/api/auth/refresh", map[string]string{"refresh_token": refresh}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	next := body["refresh_token"].(string)
	assert.NotEqual(t, refresh, next)

	// Replaying the spent token yields a bare 401 with no body.
	resp = postJSON(t, srv.URL+"/api/auth/refresh", map[string]string{"refresh_token": refresh}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	raw := make([]byte, 1)
	n, _ := resp.Body.Read(raw)
	resp.Body.Close()
	assert.Zero(t, n)

	// The rotated token still works.
	resp = postJSON(t, srv.URL+"/api/auth/refresh", map[string]string{"refresh_token": next}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestRefreshEndpointRejectsShortToken(t *testing.T) {
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/api/auth/refresh", map[string]string{"refresh_token": "tiny"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestLogoutEndpointInvalidatesAccessTokens(t *testing.T) {
	srv := testServer(t)
	access, refresh := loginTokens(t, srv)
	bearer := map[string]string{"Authorization": "Bearer " + access}

	resp := postJSON(t, srv.URL+"/api/auth/logout", map[string]string{}, bearer)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["message"])

	// The access token no longer opens guarded routes.
	resp = postJSON(t, srv.URL+"/api/auth/logout", map[string]string{}, bearer)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// The refresh lineage died with the session.
	resp = postJSON(t, srv.URL+"/api/auth/refresh", map[string]string{"refresh_token": refresh}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestGuardedRoutesRequireBearer(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/clientes")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/lotes", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestRouterNotFoundAndMethodNotAllowedAreJSON(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/nope")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["message"])

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/auth/login", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.NotEmpty(t, body["message"])
}

func TestHealthEndpoints(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		resp.Body.Close()
	}
}
