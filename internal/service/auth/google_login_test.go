package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"ideaboard/internal/domain"
	"ideaboard/internal/repository"
	"ideaboard/pkg/logger"
)

func newTokenServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestLogin(t *testing.T, states StateStore) *GoogleLogin {
	srv := newTokenServer(t)
	store := repository.NewMemoryStore()

	l := NewGoogleLogin("client-id", "client-secret", "http://localhost:8080/auth/google/callback", states, store.Users(), logger.NewNop())
	l.config.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	l.fetchProfile = func(_ context.Context, token *oauth2.Token) (domain.GoogleProfile, error) {
		if token.AccessToken != "access-123" {
			return domain.GoogleProfile{}, errors.New("unexpected token")
		}
		return domain.GoogleProfile{Sub: "google-42", Email: "alice@example.com", Name: "Alice"}, nil
	}
	return l
}

func stateFrom(t *testing.T, authURL string) string {
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestGoogleLogin_FullFlow(t *testing.T) {
	_, client := setupTestRedis(t)
	l := newTestLogin(t, NewRedisStateStore(client))
	ctx := context.Background()

	authURL, err := l.AuthCodeURL(ctx)
	require.NoError(t, err)
	assert.Contains(t, authURL, "client_id=client-id")
	state := stateFrom(t, authURL)

	user, err := l.Complete(ctx, state, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "google-42", user.GoogleID)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = l.Complete(ctx, state, "good-code")
	assert.ErrorIs(t, err, ErrInvalidState, "state must be single use")
}

func TestGoogleLogin_SameGoogleAccountKeepsUser(t *testing.T) {
	l := newTestLogin(t, NewMemoryStateStore())

	first := mustLogin(t, l)
	second := mustLogin(t, l)
	assert.Equal(t, first.ID, second.ID)
}

func mustLogin(t *testing.T, l *GoogleLogin) *domain.User {
	t.Helper()
	authURL, err := l.AuthCodeURL(context.Background())
	require.NoError(t, err)
	user, err := l.Complete(context.Background(), stateFrom(t, authURL), "good-code")
	require.NoError(t, err)
	return user
}

func TestGoogleLogin_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown state", func(t *testing.T) {
		l := newTestLogin(t, NewMemoryStateStore())
		_, err := l.Complete(ctx, "never-issued", "good-code")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("missing parameters", func(t *testing.T) {
		l := newTestLogin(t, NewMemoryStateStore())
		_, err := l.Complete(ctx, "", "")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("code rejected by provider", func(t *testing.T) {
		l := newTestLogin(t, NewMemoryStateStore())
		authURL, err := l.AuthCodeURL(ctx)
		require.NoError(t, err)

		_, err = l.Complete(ctx, stateFrom(t, authURL), "bad-code")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidState)
	})

	t.Run("profile without subject", func(t *testing.T) {
		l := newTestLogin(t, NewMemoryStateStore())
		l.fetchProfile = func(context.Context, *oauth2.Token) (domain.GoogleProfile, error) {
			return domain.GoogleProfile{}, nil
		}
		authURL, err := l.AuthCodeURL(ctx)
		require.NoError(t, err)

		_, err = l.Complete(ctx, stateFrom(t, authURL), "good-code")
		assert.Error(t, err)
	})
}

func TestMemoryStateStore_Expiry(t *testing.T) {
	s := NewMemoryStateStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a", time.Minute))
	assert.Error(t, s.Save(ctx, "a", time.Minute))

	now = now.Add(2 * time.Minute)
	ok, err := s.Consume(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStateStore(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewRedisStateStore(client)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "st", time.Minute))
	assert.Error(t, s.Save(ctx, "st", time.Minute))

	ok, err := s.Consume(ctx, "st")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Save(ctx, "expiring", time.Minute))
	mr.FastForward(2 * time.Minute)
	ok, err = s.Consume(ctx, "expiring")
	require.NoError(t, err)
	assert.False(t, ok)
}
