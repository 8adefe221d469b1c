package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ideaboard/internal/domain"
	"ideaboard/internal/event"
	"ideaboard/internal/metrics"
	"ideaboard/internal/repository"
	"ideaboard/pkg/logger"
)

const publishTimeout = 2 * time.Second

type voteService struct {
	store     repository.VoteStore
	publisher event.VotePublisher
	metrics   *metrics.VoteMetrics
	logger    *logger.Logger
	now       func() time.Time
}

// NewVoteService creates a VoteService. publisher and m may be nil.
func NewVoteService(store repository.VoteStore, publisher event.VotePublisher, m *metrics.VoteMetrics, logger *logger.Logger) VoteService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &voteService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger.Named("votes"),
		now:       time.Now,
	}
}

// Toggle reads the current state and then writes the opposite one. The read
// and the write are separate statements; a concurrent toggle by the same user
// can slip in between, in which case the store reports ErrDuplicateVote or
// ErrVoteNotFound and the end state is already the one we wanted.
func (s *voteService) Toggle(ctx context.Context, ideaID string, identity domain.Identity) (*domain.ToggleResult, error) {
	if identity.IsZero() {
		return nil, domain.ErrUnauthenticated
	}

	start := s.now()
	log := s.logger.WithFields(map[string]interface{}{
		"idea_id": ideaID,
		"user_id": identity.UserID,
	})

	existed, err := s.store.Exists(ctx, ideaID, identity.UserID)
	if err != nil {
		s.metrics.ObserveToggle(metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("failed to check vote: %w", err)
	}

	result := &domain.ToggleResult{
		IdeaID:  ideaID,
		UserID:  identity.UserID,
		Existed: existed,
	}

	if existed {
		err = s.store.Remove(ctx, ideaID, identity.UserID)
		if errors.Is(err, domain.ErrVoteNotFound) {
			s.metrics.ObserveRace(metrics.RaceNotFound)
			log.Debug("Vote already removed by a concurrent request")
			err = nil
		}
		result.NowVoted = false
	} else {
		err = s.store.Create(ctx, ideaID, identity.UserID)
		if errors.Is(err, domain.ErrDuplicateVote) {
			s.metrics.ObserveRace(metrics.RaceDuplicate)
			log.Debug("Vote already created by a concurrent request")
			err = nil
		}
		result.NowVoted = true
	}

	if err != nil {
		s.metrics.ObserveToggle(metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("failed to toggle vote: %w", err)
	}

	outcome := metrics.OutcomeRetracted
	if result.NowVoted {
		outcome = metrics.OutcomeCast
	}
	s.metrics.ObserveToggle(outcome, time.Since(start))
	log.WithField("outcome", outcome).Info("Vote toggled")

	s.publish(ctx, result, log)
	return result, nil
}

// publish is best effort; the vote is already stored
func (s *voteService) publish(ctx context.Context, result *domain.ToggleResult, log *logger.Logger) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	evt := domain.VoteEvent{
		IdeaID:     result.IdeaID,
		UserID:     result.UserID,
		Voted:      result.NowVoted,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(pubCtx, evt); err != nil {
		log.WithError(err).Warn("Failed to publish vote event")
	}
}
