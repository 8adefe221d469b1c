package service

import (
	"context"
	"time"

	"ideaboard/internal/domain"
)

// VoteService flips a user's vote on an idea
type VoteService interface {
	// Toggle casts the vote if the user has none and retracts it otherwise.
	// Concurrent toggles that lose a race against the store's uniqueness
	// constraint still succeed.
	Toggle(ctx context.Context, ideaID string, identity domain.Identity) (*domain.ToggleResult, error)
}

// IdeaService reads ideas with authoritative vote counts for a viewer
type IdeaService interface {
	// List returns ideas with the count and viewer flag computed at read time
	List(ctx context.Context, filter domain.IdeaFilter, viewer domain.Identity) ([]domain.IdeaSummary, error)

	// Get returns one idea; domain.ErrIdeaNotFound if it does not exist
	Get(ctx context.Context, ideaID string, viewer domain.Identity) (*domain.IdeaSummary, error)
}

// TaxonomyService lists the categories and statuses used to filter ideas
type TaxonomyService interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Statuses(ctx context.Context) ([]domain.Status, error)
}

// VoteLimiter caps how often one user may toggle votes
type VoteLimiter interface {
	// Allow counts one toggle for userID in the current window
	Allow(ctx context.Context, userID string) (*domain.RateLimitInfo, error)
}

// SessionService issues and resolves login sessions
type SessionService interface {
	// Issue starts a session for the user and returns its bearer token
	Issue(ctx context.Context, user *domain.User) (token string, expiresAt time.Time, err error)

	// Resolve validates a token and returns the identity behind it
	Resolve(ctx context.Context, token string) (domain.Identity, error)

	// Revoke ends the session so its token is no longer accepted
	Revoke(ctx context.Context, identity domain.Identity) error
}

// LoginService drives the Google sign-in redirect flow
type LoginService interface {
	// AuthCodeURL records a fresh state value and returns the consent URL
	AuthCodeURL(ctx context.Context) (string, error)

	// Complete checks state, exchanges the code and upserts the user
	Complete(ctx context.Context, state, code string) (*domain.User, error)
}

// Services aggregates all service interfaces
type Services struct {
	Votes    VoteService
	Ideas    IdeaService
	Taxonomy TaxonomyService
	Sessions SessionService
	Login    LoginService
	Limiter  VoteLimiter // nil when rate limiting is off
}
