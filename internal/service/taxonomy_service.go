package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ideaboard/internal/domain"
	"ideaboard/internal/repository"
	"ideaboard/pkg/logger"
	"ideaboard/pkg/redis"
)

const cacheWriteTimeout = 5 * time.Second

type taxonomyService struct {
	repo   repository.TaxonomyRepository
	redis  *redis.Client
	logger *logger.Logger
}

// NewTaxonomyService serves categories and statuses with a cache-aside layer
// in Redis. redisClient may be nil, in which case every call reads repo.
func NewTaxonomyService(repo repository.TaxonomyRepository, redisClient *redis.Client, logger *logger.Logger) TaxonomyService {
	return &taxonomyService{
		repo:   repo,
		redis:  redisClient,
		logger: logger.Named("taxonomy"),
	}
}

func (s *taxonomyService) Categories(ctx context.Context) ([]domain.Category, error) {
	return cachedList(ctx, s, "categories", s.repo.Categories)
}

func (s *taxonomyService) Statuses(ctx context.Context) ([]domain.Status, error) {
	return cachedList(ctx, s, "statuses", s.repo.Statuses)
}

// cachedList reads kind from Redis and falls back to load on a miss, a
// corrupted entry or a Redis error. Fresh results are cached in the background.
func cachedList[T any](ctx context.Context, s *taxonomyService, kind string, load func(context.Context) ([]T, error)) ([]T, error) {
	if s.redis == nil {
		return load(ctx)
	}

	log := s.logger.WithField("kind", kind)
	key := s.redis.KeyBuilder.KeyTaxonomy(kind)

	cached, err := s.redis.Get(ctx, key)
	switch {
	case err == nil:
		var items []T
		jsonErr := json.Unmarshal([]byte(cached), &items)
		if jsonErr == nil {
			log.Debug("Taxonomy cache hit")
			return items, nil
		}
		log.WithError(jsonErr).Warn("Taxonomy cache corrupted, falling back to database")
	case errors.Is(err, redis.ErrNil):
		log.Debug("Taxonomy cache miss")
	default:
		log.WithError(err).Warn("Taxonomy cache error, falling back to database")
	}

	items, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}

	go s.cacheAsync(key, items, log)
	return items, nil
}

func (s *taxonomyService) cacheAsync(key string, items any, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()

	data, err := json.Marshal(items)
	if err != nil {
		log.WithError(err).Error("Failed to marshal taxonomy for caching")
		return
	}
	if err := s.redis.Set(ctx, key, string(data), redis.TTLTaxonomy); err != nil {
		log.WithError(err).Error("Failed to cache taxonomy")
	}
}
