package service

import (
	"context"
	"fmt"

	"ideaboard/internal/domain"
	"ideaboard/internal/repository"
	"ideaboard/pkg/logger"
)

type ideaService struct {
	ideas  repository.IdeaRepository
	votes  repository.VoteStore
	logger *logger.Logger
}

func NewIdeaService(ideas repository.IdeaRepository, votes repository.VoteStore, logger *logger.Logger) IdeaService {
	return &ideaService{
		ideas:  ideas,
		votes:  votes,
		logger: logger.Named("ideas"),
	}
}

// List counts votes per idea at read time. Counts are never cached, so they
// always match the stored rows.
func (s *ideaService) List(ctx context.Context, filter domain.IdeaFilter, viewer domain.Identity) ([]domain.IdeaSummary, error) {
	ideas, err := s.ideas.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.IdeaSummary, 0, len(ideas))
	for _, idea := range ideas {
		summary, err := s.summarize(ctx, idea, viewer)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}

	s.logger.WithFields(map[string]interface{}{
		"count":       len(summaries),
		"category_id": filter.CategoryID,
		"status_id":   filter.StatusID,
	}).Debug("Listed ideas")

	return summaries, nil
}

func (s *ideaService) Get(ctx context.Context, ideaID string, viewer domain.Identity) (*domain.IdeaSummary, error) {
	idea, err := s.ideas.GetByID(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, *idea, viewer)
}

func (s *ideaService) summarize(ctx context.Context, idea domain.Idea, viewer domain.Identity) (*domain.IdeaSummary, error) {
	count, err := s.votes.CountFor(ctx, idea.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes for idea %s: %w", idea.ID, err)
	}

	voted := false
	if !viewer.IsZero() {
		voted, err = s.votes.Exists(ctx, idea.ID, viewer.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to check viewer vote for idea %s: %w", idea.ID, err)
		}
	}

	return &domain.IdeaSummary{
		Idea:          idea,
		VotesCount:    count,
		VotedByViewer: voted,
	}, nil
}
