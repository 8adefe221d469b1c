package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"ideaboard/internal/domain"
	"ideaboard/pkg/database"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresVoteStore is the PostgreSQL VoteStore. The UNIQUE(idea_id, user_id)
// constraint on votes is what enforces one vote per pair.
type PostgresVoteStore struct {
	db database.Querier
}

func NewPostgresVoteStore(db database.Querier) *PostgresVoteStore {
	return &PostgresVoteStore{db: db}
}

// Exists checks for a vote by the user on the idea
func (r *PostgresVoteStore) Exists(ctx context.Context, ideaID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM votes WHERE idea_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, ideaID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}
	return exists, nil
}

// Create inserts a vote row
func (r *PostgresVoteStore) Create(ctx context.Context, ideaID, userID string) error {
	query := `
		INSERT INTO votes (idea_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (idea_id, user_id) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, ideaID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return domain.ErrDuplicateVote
			case pgForeignKeyViolation:
				return domain.ErrIdeaNotFound
			}
		}
		return fmt.Errorf("failed to create vote: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateVote
	}
	return nil
}

// Remove deletes the vote row
func (r *PostgresVoteStore) Remove(ctx context.Context, ideaID, userID string) error {
	query := `DELETE FROM votes WHERE idea_id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, ideaID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove vote: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrVoteNotFound
	}
	return nil
}

// CountFor counts the votes on an idea
func (r *PostgresVoteStore) CountFor(ctx context.Context, ideaID string) (int, error) {
	query := `SELECT COUNT(*) FROM votes WHERE idea_id = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, ideaID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}
