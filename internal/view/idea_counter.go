// Package view holds per-idea presentation state for the voting UI.
package view

import (
	"context"

	"ideaboard/internal/domain"
)

const (
	DefaultLoginPath = "/login"

	LabelVote  = "Vote"
	LabelVoted = "Voted"
)

// Toggler flips the caller's vote on an idea
type Toggler interface {
	Toggle(ctx context.Context, ideaID string, identity domain.Identity) (*domain.ToggleResult, error)
}

// AuthGate tells the counter who is acting
type AuthGate interface {
	IsAuthenticated() bool
	CurrentIdentity() domain.Identity
}

// ActionResult is what the rendering layer must do after an action
type ActionResult struct {
	RedirectTo string
}

// Redirected reports whether the caller must be sent elsewhere
func (r ActionResult) Redirected() bool {
	return r.RedirectTo != ""
}

// State is the counter as rendered
type State struct {
	IdeaID     string `json:"idea_id"`
	VotesCount int    `json:"votes_count"`
	HasVoted   bool   `json:"has_voted"`
	Label      string `json:"label"`
}

// IdeaCounter caches an idea's vote count and the viewer's vote flag between
// interactions. The count is adjusted locally after each toggle and is only
// reconciled with the store when a new counter is built from a fresh read.
type IdeaCounter struct {
	idea       domain.Idea
	votesCount int
	hasVoted   bool
	toggler    Toggler
	loginPath  string
}

type Option func(*IdeaCounter)

// WithLoginPath overrides where unauthenticated callers are redirected
func WithLoginPath(path string) Option {
	return func(c *IdeaCounter) {
		if path != "" {
			c.loginPath = path
		}
	}
}

// NewIdeaCounter builds a counter from an authoritative count and the
// viewer's vote flag, both read by the caller.
func NewIdeaCounter(idea domain.Idea, votesCount int, votedByViewer bool, toggler Toggler, opts ...Option) *IdeaCounter {
	c := &IdeaCounter{
		idea:       idea,
		votesCount: votesCount,
		hasVoted:   votedByViewer,
		toggler:    toggler,
		loginPath:  DefaultLoginPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromSummary builds a counter from a listing row
func FromSummary(summary domain.IdeaSummary, toggler Toggler, opts ...Option) *IdeaCounter {
	return NewIdeaCounter(summary.Idea, summary.VotesCount, summary.VotedByViewer, toggler, opts...)
}

func (c *IdeaCounter) Idea() domain.Idea { return c.idea }
func (c *IdeaCounter) VotesCount() int   { return c.votesCount }
func (c *IdeaCounter) HasVoted() bool    { return c.hasVoted }

func (c *IdeaCounter) Label() string {
	if c.hasVoted {
		return LabelVoted
	}
	return LabelVote
}

func (c *IdeaCounter) State() State {
	return State{
		IdeaID:     c.idea.ID,
		VotesCount: c.votesCount,
		HasVoted:   c.hasVoted,
		Label:      c.Label(),
	}
}

// OnVoteAction handles a click on the vote button. Unauthenticated callers
// get a redirect and nothing is touched. Otherwise the vote is toggled and
// the local count moves by one in the direction of the result.
func (c *IdeaCounter) OnVoteAction(ctx context.Context, gate AuthGate) (ActionResult, error) {
	if gate == nil || !gate.IsAuthenticated() {
		return ActionResult{RedirectTo: c.loginPath}, nil
	}

	result, err := c.toggler.Toggle(ctx, c.idea.ID, gate.CurrentIdentity())
	if err != nil {
		return ActionResult{}, err
	}

	switch {
	case !result.NowVoted && c.hasVoted:
		c.hasVoted = false
		c.votesCount--
	case result.NowVoted && !c.hasVoted:
		c.hasVoted = true
		c.votesCount++
	}

	return ActionResult{}, nil
}
