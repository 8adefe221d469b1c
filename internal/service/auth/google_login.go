package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"ideaboard/internal/domain"
	"ideaboard/internal/repository"
	"ideaboard/pkg/logger"
	"ideaboard/pkg/redis"
)

// ErrInvalidState is returned when the callback state is unknown, expired or reused
var ErrInvalidState = errors.New("invalid oauth state")

type profileFetcher func(ctx context.Context, token *oauth2.Token) (domain.GoogleProfile, error)

// GoogleLogin implements the login entry point with Google's authorization code flow
type GoogleLogin struct {
	config       *oauth2.Config
	states       StateStore
	users        repository.UserRepository
	fetchProfile profileFetcher
	logger       *logger.Logger
}

func NewGoogleLogin(clientID, clientSecret, redirectURL string, states StateStore, users repository.UserRepository, logger *logger.Logger) *GoogleLogin {
	l := &GoogleLogin{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		states: states,
		users:  users,
		logger: logger.Named("login"),
	}
	l.fetchProfile = l.fetchGoogleProfile
	return l
}

// AuthCodeURL returns Google's consent URL bound to a fresh state value
func (l *GoogleLogin) AuthCodeURL(ctx context.Context) (string, error) {
	state, err := newState()
	if err != nil {
		return "", err
	}
	if err := l.states.Save(ctx, state, redis.TTLOAuthState); err != nil {
		return "", err
	}
	return l.config.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Complete handles the callback: it consumes state, exchanges the code and
// stores the Google profile as a user
func (l *GoogleLogin) Complete(ctx context.Context, state, code string) (*domain.User, error) {
	if state == "" || code == "" {
		return nil, ErrInvalidState
	}

	ok, err := l.states.Consume(ctx, state)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	token, err := l.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	profile, err := l.fetchProfile(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google profile: %w", err)
	}
	if profile.Sub == "" {
		return nil, errors.New("google profile has no subject")
	}

	user, err := l.users.UpsertByGoogleID(ctx, profile)
	if err != nil {
		return nil, err
	}

	l.logger.WithField("user_id", user.ID).Info("User signed in with Google")
	return user, nil
}

func (l *GoogleLogin) fetchGoogleProfile(ctx context.Context, token *oauth2.Token) (domain.GoogleProfile, error) {
	svc, err := googleoauth2.NewService(ctx, option.WithTokenSource(l.config.TokenSource(ctx, token)))
	if err != nil {
		return domain.GoogleProfile{}, err
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return domain.GoogleProfile{}, err
	}

	return domain.GoogleProfile{
		Sub:     info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}

func newState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
