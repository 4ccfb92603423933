package auth

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ita-digital/backoffice/internal/shared"
)

type fakeAuthRepo struct {
	users    map[string]*User
	sessions map[string]string
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: make(map[string]*User), sessions: make(map[string]string)}
}

func (r *fakeAuthRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *fakeAuthRepo) CreateSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	r.sessions[id] = userID
	return nil
}

func (r *fakeAuthRepo) DeleteSession(ctx context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

// sessionWriter commits the session before the first response byte, the same
// ordering the app middleware enforces, so Set-Cookie headers survive.
type sessionWriter struct {
	http.ResponseWriter
	commit        func()
	headerWritten bool
}

func (w *sessionWriter) WriteHeader(statusCode int) {
	if !w.headerWritten {
		w.headerWritten = true
		w.commit()
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *sessionWriter) Write(data []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

func newTestRouter(t *testing.T, repo Repository) (*chi.Mux, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(redisClient, "test_session", time.Hour, false)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewHandler(logger, NewService(repo), sessions, nil)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sess, err := sessions.Load(ctx, r)
			require.NoError(t, err)
			wrapped := &sessionWriter{
				ResponseWriter: w,
				commit: func() {
					require.NoError(t, sessions.Commit(ctx, w, sess))
				},
			}
			next.ServeHTTP(wrapped, r.WithContext(shared.ContextWithSession(ctx, sess)))
		})
	})
	handler.MountRoutes(router)
	return router, sessions
}

func seedUser(t *testing.T, repo *fakeAuthRepo, email, password, role string, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users[email] = &User{
		ID: "user-1", Email: email, Name: "Admin", Role: role,
		PasswordHash: string(hash), IsActive: active,
	}
}

func TestLoginSuccessSetsSessionCookie(t *testing.T) {
	repo := newFakeAuthRepo()
	seedUser(t, repo, "admin@itadigital.com.br", "secret123", RoleAdmin, true)
	router, _ := newTestRouter(t, repo)

	body := bytes.NewBufferString(`{"email":"admin@itadigital.com.br","password":"secret123"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"role":"admin"`)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.NotEmpty(t, cookie.Value)
	require.Equal(t, "user-1", repo.sessions[cookie.Value])
}

func TestLoginRejectsBadPassword(t *testing.T) {
	repo := newFakeAuthRepo()
	seedUser(t, repo, "admin@itadigital.com.br", "secret123", RoleAdmin, true)
	router, _ := newTestRouter(t, repo)

	body := bytes.NewBufferString(`{"email":"admin@itadigital.com.br","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	repo := newFakeAuthRepo()
	seedUser(t, repo, "admin@itadigital.com.br", "secret123", RoleAdmin, false)
	router, _ := newTestRouter(t, repo)

	body := bytes.NewBufferString(`{"email":"admin@itadigital.com.br","password":"secret123"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidatesPayload(t *testing.T) {
	router, _ := newTestRouter(t, newFakeAuthRepo())

	body := bytes.NewBufferString(`{"email":"not-an-email","password":""}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutDropsSessionRecord(t *testing.T) {
	repo := newFakeAuthRepo()
	seedUser(t, repo, "admin@itadigital.com.br", "secret123", RoleAdmin, true)
	router, _ := newTestRouter(t, repo)

	body := bytes.NewBufferString(`{"email":"admin@itadigital.com.br","password":"secret123"}`)
	login := httptest.NewRequest(http.MethodPost, "/login", body)
	login.Header.Set("Content-Type", "application/json")
	loginRec := httptest.NewRecorder()
	router.ServeHTTP(loginRec, login)
	require.Equal(t, http.StatusOK, loginRec.Code)

	cookies := loginRec.Result().Cookies()
	require.NotEmpty(t, cookies)

	logout := httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, c := range cookies {
		logout.AddCookie(c)
	}
	logoutRec := httptest.NewRecorder()
	router.ServeHTTP(logoutRec, logout)

	require.Equal(t, http.StatusNoContent, logoutRec.Code)
	require.Empty(t, repo.sessions)
}
