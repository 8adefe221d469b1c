package container

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaboard/internal/config"
	"ideaboard/internal/domain"
	"ideaboard/internal/event"
	"ideaboard/pkg/logger"
)

func baseConfig() *config.Config {
	return &config.Config{
		Environment:    "test",
		SessionSecret:  "test-secret",
		SessionTTL:     time.Hour,
		LoginPath:      "/login",
		KafkaTopic:     "idea-votes",
		VoteRateLimit:  10,
		VoteRateWindow: time.Minute,
	}
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name          string
		mutate        func(*config.Config)
		expectRedis   bool
		expectMetrics bool
	}{
		{
			name:   "memory store without optional services",
			mutate: func(*config.Config) {},
		},
		{
			name:        "redis configured",
			mutate:      func(c *config.Config) { c.RedisURL = "redis://" + mr.Addr() },
			expectRedis: true,
		},
		{
			name:   "unreachable redis is tolerated",
			mutate: func(c *config.Config) { c.RedisURL = "invalid://redis-url" },
		},
		{
			name:          "metrics enabled",
			mutate:        func(c *config.Config) { c.MetricsEnabled = true },
			expectMetrics: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(cfg)

			c, err := New(context.Background(), cfg, logger.NewNop())
			require.NoError(t, err)
			t.Cleanup(func() {
				if c.RedisClient != nil {
					c.RedisClient.Close()
				}
			})

			assert.Equal(t, tt.expectRedis, c.HasRedis())
			assert.Equal(t, tt.expectRedis, c.Services.Limiter != nil)
			assert.Equal(t, tt.expectMetrics, c.Registry != nil)
			assert.Equal(t, tt.expectMetrics, c.HTTPMetrics != nil)
			assert.False(t, c.HasDatabase())
			assert.IsType(t, event.NopPublisher{}, c.Publisher)

			require.NotNil(t, c.Services)
			assert.NotNil(t, c.Services.Votes)
			assert.NotNil(t, c.Services.Ideas)
			assert.NotNil(t, c.Services.Taxonomy)
			assert.NotNil(t, c.Services.Sessions)
			assert.NotNil(t, c.Services.Login)
			assert.NotNil(t, c.Users)
		})
	}
}

func TestNew_RateLimitDisabled(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.VoteRateLimit = 0

	c, err := New(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer c.RedisClient.Close()

	assert.Nil(t, c.Services.Limiter)
}

func TestNew_KafkaPublisher(t *testing.T) {
	cfg := baseConfig()
	cfg.KafkaBrokers = []string{"localhost:9092"}

	c, err := New(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer c.Publisher.Close()

	assert.IsType(t, &event.KafkaPublisher{}, c.Publisher)
}

func TestNew_SeededBoardSupportsVoting(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, baseConfig(), logger.NewNop())
	require.NoError(t, err)

	viewer := domain.Identity{UserID: "user-1"}
	ideas, err := c.Services.Ideas.List(ctx, domain.IdeaFilter{}, viewer)
	require.NoError(t, err)
	require.NotEmpty(t, ideas)

	target := ideas[0]
	_, err = c.Services.Votes.Toggle(ctx, target.ID, viewer)
	require.NoError(t, err)

	summary, err := c.Services.Ideas.Get(ctx, target.ID, viewer)
	require.NoError(t, err)
	assert.Equal(t, target.VotesCount+1, summary.VotesCount)
	assert.True(t, summary.VotedByViewer)
}

func TestNew_DatabaseFailure(t *testing.T) {
	cfg := baseConfig()
	cfg.DatabaseURL = "not a url ::"

	_, err := New(context.Background(), cfg, logger.NewNop())
	assert.Error(t, err)
}
