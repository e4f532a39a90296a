package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/condofacil/condofacil/internal/shared"
	"github.com/condofacil/condofacil/internal/users"
	_ "github.com/condofacil/condofacil/internal/testing/guard"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T, repo *memoryUsers, sessions *memorySessions) (*Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := NewHandler(discardLogger(), NewService(repo, sessions), sessionManager, csrfManager)
	return handler, sessionManager
}

func sessionRequest(t *testing.T, sm *shared.SessionManager, method, target string, body string) (*http.Request, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess)), sess
}

func TestLoginSuccess(t *testing.T) {
	repo := newMemoryUsers()
	account := seedAccount(repo, "joao@condofacil.local", "segredo123", users.StatusAtivo)
	sessions := newMemorySessions()
	handler, sm := newTestHandler(t, repo, sessions)

	req, sess := sessionRequest(t, sm, http.MethodPost, "/api/auth/login",
		`{"email":"joao@condofacil.local","senha":"segredo123"}`)
	res := httptest.NewRecorder()
	handler.handleLogin(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, account.ID.String(), body["id"])
	require.Equal(t, "morador", body["papel"])
	require.NotEmpty(t, body["csrfToken"])

	require.Equal(t, account.ID.String(), sess.User())
	require.Equal(t, account.ID, sessions.created[sess.ID])
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMemoryUsers()
	seedAccount(repo, "joao@condofacil.local", "segredo123", users.StatusAtivo)
	handler, sm := newTestHandler(t, repo, newMemorySessions())

	req, sess := sessionRequest(t, sm, http.MethodPost, "/api/auth/login",
		`{"email":"joao@condofacil.local","senha":"senhaerrada"}`)
	res := httptest.NewRecorder()
	handler.handleLogin(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Empty(t, sess.User())
}

func TestLoginRejectsShortPassword(t *testing.T) {
	handler, sm := newTestHandler(t, newMemoryUsers(), newMemorySessions())

	req, _ := sessionRequest(t, sm, http.MethodPost, "/api/auth/login",
		`{"email":"joao@condofacil.local","senha":"curta"}`)
	res := httptest.NewRecorder()
	handler.handleLogin(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	repo := newMemoryUsers()
	handler, sm := newTestHandler(t, repo, newMemorySessions())

	req, _ := sessionRequest(t, sm, http.MethodPost, "/api/auth/register",
		`{"nome":"Ana Lima","email":"ana@condofacil.local","senha":"segredo123"}`)
	res := httptest.NewRecorder()
	handler.handleRegister(res, req)

	require.Equal(t, http.StatusCreated, res.Code)
	require.Len(t, repo.items, 1)
}

func TestRegisterDuplicateEmailEndpoint(t *testing.T) {
	repo := newMemoryUsers()
	seedAccount(repo, "ana@condofacil.local", "segredo123", users.StatusAtivo)
	handler, sm := newTestHandler(t, repo, newMemorySessions())

	req, _ := sessionRequest(t, sm, http.MethodPost, "/api/auth/register",
		`{"nome":"Ana Lima","email":"ana@condofacil.local","senha":"segredo123"}`)
	res := httptest.NewRecorder()
	handler.handleRegister(res, req)

	require.Equal(t, http.StatusConflict, res.Code)
}

func TestMeUnauthenticated(t *testing.T) {
	handler, sm := newTestHandler(t, newMemoryUsers(), newMemorySessions())

	req, _ := sessionRequest(t, sm, http.MethodGet, "/api/auth/me", "")
	res := httptest.NewRecorder()
	handler.handleMe(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestMeReturnsSignedInUser(t *testing.T) {
	repo := newMemoryUsers()
	account := seedAccount(repo, "joao@condofacil.local", "segredo123", users.StatusAtivo)
	handler, sm := newTestHandler(t, repo, newMemorySessions())

	req, sess := sessionRequest(t, sm, http.MethodGet, "/api/auth/me", "")
	sess.SetUser(account.ID.String())
	res := httptest.NewRecorder()
	handler.handleMe(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, account.ID.String(), body["id"])
	require.NotEmpty(t, body["csrfToken"])
}

func TestLogoutDestroysSession(t *testing.T) {
	sessions := newMemorySessions()
	handler, sm := newTestHandler(t, newMemoryUsers(), sessions)

	userID := uuid.New()
	req, sess := sessionRequest(t, sm, http.MethodPost, "/api/auth/logout", "")
	sess.SetUser(userID.String())
	sessions.created[sess.ID] = userID

	res := httptest.NewRecorder()
	handler.handleLogout(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.NotContains(t, sessions.created, sess.ID)
}
