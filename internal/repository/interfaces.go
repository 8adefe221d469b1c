package repository

import (
	"context"

	"ideaboard/internal/domain"
)

// VoteStore persists votes. Create and Remove report the benign race
// outcomes as domain.ErrDuplicateVote and domain.ErrVoteNotFound.
type VoteStore interface {
	// Exists reports whether the user has a vote on the idea
	Exists(ctx context.Context, ideaID, userID string) (bool, error)

	// Create inserts a vote, returning domain.ErrDuplicateVote if one exists
	Create(ctx context.Context, ideaID, userID string) error

	// Remove deletes a vote, returning domain.ErrVoteNotFound if none exists
	Remove(ctx context.Context, ideaID, userID string) error

	// CountFor returns the number of votes on the idea
	CountFor(ctx context.Context, ideaID string) (int, error)
}

// IdeaRepository reads ideas together with their category and status names
type IdeaRepository interface {
	// List returns ideas newest first, filtered by category and status
	List(ctx context.Context, filter domain.IdeaFilter) ([]domain.Idea, error)

	// GetByID returns domain.ErrIdeaNotFound when no idea has the id
	GetByID(ctx context.Context, id string) (*domain.Idea, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// UpsertByGoogleID creates the user on first sign-in and refreshes the
	// profile fields afterwards
	UpsertByGoogleID(ctx context.Context, profile domain.GoogleProfile) (*domain.User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// TaxonomyRepository reads the lookup tables used to filter the listing
type TaxonomyRepository interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Statuses(ctx context.Context) ([]domain.Status, error)
}

var (
	_ VoteStore      = (*PostgresVoteStore)(nil)
	_ VoteStore      = (*MemoryStore)(nil)
	_ IdeaRepository = (*PostgresIdeaRepository)(nil)
	_ IdeaRepository = (*MemoryStore)(nil)
	_ UserRepository = (*PostgresUserRepository)(nil)
	_ UserRepository = memoryUsers{}

	_ TaxonomyRepository = (*PostgresTaxonomyRepository)(nil)
	_ TaxonomyRepository = (*MemoryStore)(nil)
)
