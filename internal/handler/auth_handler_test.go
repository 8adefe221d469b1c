package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ideaboard/internal/domain"
	"ideaboard/internal/middleware"
	"ideaboard/internal/repository"
	"ideaboard/internal/service/auth"
	"ideaboard/pkg/logger"
)

type mockLogin struct {
	mock.Mock
}

func (m *mockLogin) AuthCodeURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockLogin) Complete(ctx context.Context, state, code string) (*domain.User, error) {
	args := m.Called(ctx, state, code)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

type authFixture struct {
	login    *mockLogin
	sessions *auth.SessionService
	store    *repository.MemoryStore
	handler  *AuthHandler
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	log := logger.NewNop()
	f := &authFixture{
		login:    &mockLogin{},
		sessions: auth.NewSessionService("test-secret", time.Hour, nil, log),
		store:    repository.NewMemoryStore(),
	}
	f.handler = NewAuthHandler(f.login, f.sessions, f.store.Users(), CookieConfig{Secure: true}, "/", log)
	t.Cleanup(func() { f.login.AssertExpectations(t) })
	return f
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login(t *testing.T) {
	f := newAuthFixture(t)
	f.login.On("AuthCodeURL", mock.Anything).Return("https://accounts.google.com/o/oauth2/auth?state=abc", nil)

	rec := httptest.NewRecorder()
	f.handler.Login(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth?state=abc", rec.Header().Get("Location"))
}

func TestAuthHandler_CallbackIssuesSession(t *testing.T) {
	f := newAuthFixture(t)
	user, err := f.store.UpsertByGoogleID(context.Background(), domain.GoogleProfile{Sub: "g-1", Email: "u@example.com", Name: "U"})
	require.NoError(t, err)
	f.login.On("Complete", mock.Anything, "st", "code-1").Return(user, nil)

	rec := httptest.NewRecorder()
	f.handler.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=st&code=code-1", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)

	identity, err := f.sessions.Resolve(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
}

func TestAuthHandler_CallbackFailures(t *testing.T) {
	tests := []struct {
		name   string
		target string
		setup  func(*mockLogin)
		status int
	}{
		{
			name:   "user denied consent",
			target: "/auth/google/callback?error=access_denied",
			setup:  func(*mockLogin) {},
			status: http.StatusUnauthorized,
		},
		{
			name:   "invalid state",
			target: "/auth/google/callback?state=old&code=c",
			setup: func(m *mockLogin) {
				m.On("Complete", mock.Anything, "old", "c").Return(nil, auth.ErrInvalidState)
			},
			status: http.StatusBadRequest,
		},
		{
			name:   "google unavailable",
			target: "/auth/google/callback?state=s&code=c",
			setup: func(m *mockLogin) {
				m.On("Complete", mock.Anything, "s", "c").Return(nil, errors.New("exchange failed"))
			},
			status: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			tt.setup(f.login)

			rec := httptest.NewRecorder()
			f.handler.Callback(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Nil(t, sessionCookie(rec))
		})
	}
}

func TestAuthHandler_MeAndLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user, err := f.store.UpsertByGoogleID(ctx, domain.GoogleProfile{Sub: "g-2", Email: "me@example.com", Name: "Me"})
	require.NoError(t, err)

	token, _, err := f.sessions.Issue(ctx, user)
	require.NoError(t, err)
	identity, err := f.sessions.Resolve(ctx, token)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), identity))
	rec := httptest.NewRecorder()
	f.handler.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "me@example.com")

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), identity))
	rec = httptest.NewRecorder()
	f.handler.Logout(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestAuthHandler_MeWithoutIdentity(t *testing.T) {
	f := newAuthFixture(t)

	rec := httptest.NewRecorder()
	f.handler.Me(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
