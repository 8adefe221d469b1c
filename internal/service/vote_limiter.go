package service

import (
	"context"
	"fmt"
	"time"

	"ideaboard/internal/domain"
	"ideaboard/pkg/logger"
	"ideaboard/pkg/redis"
)

type redisVoteLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	logger *logger.Logger
}

// NewVoteLimiter counts toggles per user in fixed Redis windows
func NewVoteLimiter(redisClient *redis.Client, limit int, window time.Duration, logger *logger.Logger) VoteLimiter {
	return &redisVoteLimiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
		logger: logger.Named("vote_limiter"),
	}
}

func (l *redisVoteLimiter) Allow(ctx context.Context, userID string) (*domain.RateLimitInfo, error) {
	key := l.redis.KeyBuilder.KeyVoteLimit(userID)

	count, ttl, err := l.redis.IncrWithExpiry(ctx, key, l.window)
	if err != nil {
		return nil, fmt.Errorf("failed to count vote toggle: %w", err)
	}
	if ttl <= 0 {
		ttl = l.window
	}

	allowed := count <= int64(l.limit)
	if !allowed {
		l.logger.WithFields(map[string]interface{}{
			"user_id": userID,
			"count":   count,
			"ttl":     ttl.String(),
		}).Debug("Vote rate limit exceeded")
	}

	return &domain.RateLimitInfo{
		UserID:       userID,
		RequestCount: count,
		Limit:        l.limit,
		WindowStart:  time.Now().Add(ttl - l.window),
		TTL:          ttl,
		IsAllowed:    allowed,
	}, nil
}
