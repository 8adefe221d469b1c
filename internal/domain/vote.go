package domain

import (
	"errors"
	"time"
)

var (
	// ErrDuplicateVote is returned by a vote store when the (idea, user) pair
	// already has a vote. Toggling treats it as a benign race.
	ErrDuplicateVote = errors.New("vote already exists")

	// ErrVoteNotFound is returned by a vote store when there is no vote to
	// remove. Toggling treats it as a benign race.
	ErrVoteNotFound = errors.New("vote not found")

	// ErrIdeaNotFound is returned when the referenced idea does not exist
	ErrIdeaNotFound = errors.New("idea not found")

	// ErrUnauthenticated is returned when a vote is attempted without identity
	ErrUnauthenticated = errors.New("authentication required")
)

// ToggleResult describes what a single toggle observed and produced
type ToggleResult struct {
	IdeaID   string `json:"idea_id"`
	UserID   string `json:"user_id"`
	Existed  bool   `json:"existed"`
	NowVoted bool   `json:"now_voted"`
}

// VoteEvent is published after a toggle completes
type VoteEvent struct {
	IdeaID     string    `json:"idea_id"`
	UserID     string    `json:"user_id"`
	Voted      bool      `json:"voted"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RateLimitInfo reports a caller's position in the current vote window
type RateLimitInfo struct {
	UserID       string        `json:"user_id"`
	RequestCount int64         `json:"request_count"`
	Limit        int           `json:"limit"`
	WindowStart  time.Time     `json:"window_start"`
	TTL          time.Duration `json:"ttl"`
	IsAllowed    bool          `json:"is_allowed"`
}
