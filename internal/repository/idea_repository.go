package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ideaboard/internal/domain"
	"ideaboard/pkg/database"
)

const pgInvalidTextRepresentation = "22P02"

const ideaColumns = `
	i.id, i.user_id, i.category_id, i.status_id, i.title, i.description,
	c.name, s.name, s.class, i.created_at, i.updated_at
`

type PostgresIdeaRepository struct {
	db database.Querier
}

func NewPostgresIdeaRepository(db database.Querier) *PostgresIdeaRepository {
	return &PostgresIdeaRepository{db: db}
}

// List returns ideas newest first
func (r *PostgresIdeaRepository) List(ctx context.Context, filter domain.IdeaFilter) ([]domain.Idea, error) {
	var (
		where []string
		args  []any
	)
	if filter.CategoryID > 0 {
		args = append(args, filter.CategoryID)
		where = append(where, fmt.Sprintf("i.category_id = $%d", len(args)))
	}
	if filter.StatusID > 0 {
		args = append(args, filter.StatusID)
		where = append(where, fmt.Sprintf("i.status_id = $%d", len(args)))
	}

	query := `SELECT` + ideaColumns + `
		FROM ideas i
		JOIN categories c ON c.id = i.category_id
		JOIN statuses s ON s.id = i.status_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY i.created_at DESC, i.id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer rows.Close()

	ideas := make([]domain.Idea, 0)
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		ideas = append(ideas, *idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ideas: %w", err)
	}

	return ideas, nil
}

// GetByID returns one idea
func (r *PostgresIdeaRepository) GetByID(ctx context.Context, id string) (*domain.Idea, error) {
	query := `SELECT` + ideaColumns + `
		FROM ideas i
		JOIN categories c ON c.id = i.category_id
		JOIN statuses s ON s.id = i.status_id
		WHERE i.id = $1`

	idea, err := scanIdea(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIdeaNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation {
			return nil, domain.ErrIdeaNotFound
		}
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}
	return idea, nil
}

func scanIdea(row pgx.Row) (*domain.Idea, error) {
	var idea domain.Idea
	err := row.Scan(
		&idea.ID,
		&idea.UserID,
		&idea.CategoryID,
		&idea.StatusID,
		&idea.Title,
		&idea.Description,
		&idea.CategoryName,
		&idea.StatusName,
		&idea.StatusClass,
		&idea.CreatedAt,
		&idea.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &idea, nil
}
