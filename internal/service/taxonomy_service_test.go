package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ideaboard/internal/domain"
	"ideaboard/pkg/logger"
	"ideaboard/pkg/redis"
)

type mockTaxonomyRepo struct {
	mock.Mock
}

func (m *mockTaxonomyRepo) Categories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]domain.Category)
	return categories, args.Error(1)
}

func (m *mockTaxonomyRepo) Statuses(ctx context.Context) ([]domain.Status, error) {
	args := m.Called(ctx)
	statuses, _ := args.Get(0).([]domain.Status)
	return statuses, args.Error(1)
}

func setupTaxonomy(t *testing.T) (*miniredis.Miniredis, *mockTaxonomyRepo, TaxonomyService) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "production", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	repo := &mockTaxonomyRepo{}
	return mr, repo, NewTaxonomyService(repo, client, logger.NewNop())
}

func TestTaxonomyService_CacheAside(t *testing.T) {
	mr, repo, svc := setupTaxonomy(t)
	ctx := context.Background()
	categories := []domain.Category{{ID: 1, Name: "Features"}, {ID: 2, Name: "Bugs"}}
	repo.On("Categories", mock.Anything).Return(categories, nil).Once()

	got, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, categories, got)

	assert.Eventually(t, func() bool {
		return mr.Exists("prod:taxonomy:categories")
	}, time.Second, 10*time.Millisecond)
	assert.Greater(t, mr.TTL("prod:taxonomy:categories"), time.Duration(0))

	// Served from Redis; the repository expectation above allows one call
	got, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, categories, got)
	repo.AssertExpectations(t)
}

func TestTaxonomyService_CorruptedCacheFallsBack(t *testing.T) {
	mr, repo, svc := setupTaxonomy(t)
	require.NoError(t, mr.Set("prod:taxonomy:statuses", "{not json"))

	statuses := []domain.Status{{ID: 1, Name: "Open", Class: "open"}}
	repo.On("Statuses", mock.Anything).Return(statuses, nil).Once()

	got, err := svc.Statuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, statuses, got)
	repo.AssertExpectations(t)
}

func TestTaxonomyService_RedisDownFallsBack(t *testing.T) {
	mr, repo, svc := setupTaxonomy(t)
	mr.Close()

	statuses := []domain.Status{{ID: 4, Name: "Implemented", Class: "implemented"}}
	repo.On("Statuses", mock.Anything).Return(statuses, nil)

	got, err := svc.Statuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, statuses, got)
}

func TestTaxonomyService_WithoutRedis(t *testing.T) {
	repo := &mockTaxonomyRepo{}
	svc := NewTaxonomyService(repo, nil, logger.NewNop())
	repo.On("Categories", mock.Anything).Return(nil, errors.New("db down"))

	_, err := svc.Categories(context.Background())
	assert.EqualError(t, err, "db down")
}
