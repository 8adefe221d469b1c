package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

const usage = "Usage: go run ./cmd/migrate [drop|up|seed]"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}
	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := execAll(ctx, conn, dropStatements); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := execAll(ctx, conn, createStatements); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

var dropStatements = []string{
	`DROP TABLE IF EXISTS votes CASCADE`,
	`DROP TABLE IF EXISTS ideas CASCADE`,
	`DROP TABLE IF EXISTS users CASCADE`,
	`DROP TABLE IF EXISTS statuses CASCADE`,
	`DROP TABLE IF EXISTS categories CASCADE`,
}

var createStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) UNIQUE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS statuses (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) UNIQUE NOT NULL,
		class VARCHAR(50) NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		google_id VARCHAR(255) UNIQUE NOT NULL,
		email VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS ideas (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		category_id INTEGER NOT NULL REFERENCES categories(id),
		status_id INTEGER NOT NULL REFERENCES statuses(id),
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// One vote per (idea, user); the vote service relies on this constraint
	`CREATE TABLE IF NOT EXISTS votes (
		id BIGSERIAL PRIMARY KEY,
		idea_id UUID NOT NULL REFERENCES ideas(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (idea_id, user_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_ideas_category ON ideas(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ideas_status ON ideas(status_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ideas_created_at ON ideas(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_votes_user ON votes(user_id)`,
}

func execAll(ctx context.Context, conn *pgx.Conn, statements []string) error {
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", firstLine(stmt), err)
		}
		fmt.Printf("  Executed: %s\n", firstLine(stmt))
	}
	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, name := range []string{"Features", "Integrations", "Bugs"} {
		if _, err := tx.Exec(ctx,
			`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", name, err)
		}
	}

	statuses := []struct{ name, class string }{
		{"Open", "open"},
		{"Considering", "considering"},
		{"In Progress", "in-progress"},
		{"Implemented", "implemented"},
		{"Closed", "closed"},
	}
	for _, s := range statuses {
		if _, err := tx.Exec(ctx,
			`INSERT INTO statuses (name, class) VALUES ($1, $2) ON CONFLICT (name) DO UPDATE SET class = EXCLUDED.class`,
			s.name, s.class); err != nil {
			return fmt.Errorf("failed to seed status %s: %w", s.name, err)
		}
	}

	var authorID string
	err = tx.QueryRow(ctx, `
		INSERT INTO users (google_id, email, name)
		VALUES ('seed-author', 'board@ideaboard.local', 'Idea Board')
		ON CONFLICT (google_id) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`).Scan(&authorID)
	if err != nil {
		return fmt.Errorf("failed to seed author: %w", err)
	}

	ideas := []struct{ title, description, category, status string }{
		{"Dark mode", "A darker theme for late-night browsing.", "Features", "Open"},
		{"Export ideas to CSV", "Download the board for offline triage.", "Features", "Considering"},
		{"Slack notifications", "Post to a channel when an idea changes status.", "Integrations", "In Progress"},
	}
	for _, idea := range ideas {
		_, err := tx.Exec(ctx, `
			INSERT INTO ideas (user_id, category_id, status_id, title, description)
			SELECT $1::uuid, c.id, s.id, $2::text, $3::text
			FROM categories c, statuses s
			WHERE c.name = $4 AND s.name = $5
			  AND NOT EXISTS (SELECT 1 FROM ideas WHERE title = $2)
		`, authorID, idea.title, idea.description, idea.category, idea.status)
		if err != nil {
			return fmt.Errorf("failed to seed idea %s: %w", idea.title, err)
		}
	}

	return tx.Commit(ctx)
}

func firstLine(stmt string) string {
	line, _, _ := strings.Cut(stmt, "\n")
	return line
}
