package container

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ideaboard/internal/config"
	"ideaboard/internal/domain"
	"ideaboard/internal/event"
	"ideaboard/internal/metrics"
	"ideaboard/internal/repository"
	"ideaboard/internal/service"
	"ideaboard/internal/service/auth"
	"ideaboard/pkg/database"
	"ideaboard/pkg/logger"
	"ideaboard/pkg/redis"
)

const metricsNamespace = "ideaboard"

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *database.PostgresDB
	RedisClient *redis.Client
	Publisher   event.VotePublisher
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics
	Users       repository.UserRepository
	Services    *service.Services
}

// New creates a new dependency injection container. PostgreSQL is used when
// DATABASE_URL is set; otherwise ideas and votes live in memory. Redis and
// Kafka are optional and their absence only degrades revocation and events.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	var (
		votes    repository.VoteStore
		ideas    repository.IdeaRepository
		taxonomy repository.TaxonomyRepository
	)
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, database.DefaultPoolConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db
		votes = repository.NewPostgresVoteStore(db.Pool)
		ideas = repository.NewPostgresIdeaRepository(db.Pool)
		taxonomy = repository.NewPostgresTaxonomyRepository(db.Pool)
		c.Users = repository.NewPostgresUserRepository(db.Pool)
		logger.Info("Using PostgreSQL store")
	} else {
		store := repository.NewMemoryStore()
		SeedIdeas(store)
		votes, ideas, taxonomy, c.Users = store, store, store, store.Users()
		logger.Warn("DATABASE_URL not configured, using in-memory store")
	}

	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, sessions cannot be revoked before expiry")
		} else {
			c.RedisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, proceeding without session store")
	}

	if len(cfg.KafkaBrokers) > 0 {
		c.Publisher = event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.WithFields(map[string]interface{}{
			"brokers": cfg.KafkaBrokers,
			"topic":   cfg.KafkaTopic,
		}).Info("Publishing vote events to Kafka")
	} else {
		c.Publisher = event.NopPublisher{}
	}

	var voteMetrics *metrics.VoteMetrics
	if cfg.MetricsEnabled {
		c.Registry = prometheus.NewRegistry()
		c.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		voteMetrics = metrics.NewVoteMetrics(c.Registry, metricsNamespace)
		c.HTTPMetrics = metrics.NewHTTPMetrics(c.Registry, metricsNamespace)
	}

	var states auth.StateStore = auth.NewMemoryStateStore()
	if c.RedisClient != nil {
		states = auth.NewRedisStateStore(c.RedisClient)
	}
	if cfg.GoogleClientID == "" {
		logger.Warn("GOOGLE_CLIENT_ID not configured, sign-in will fail")
	}

	c.Services = &service.Services{
		Votes:    service.NewVoteService(votes, c.Publisher, voteMetrics, logger),
		Ideas:    service.NewIdeaService(ideas, votes, logger),
		Taxonomy: service.NewTaxonomyService(taxonomy, c.RedisClient, logger),
		Sessions: auth.NewSessionService(cfg.SessionSecret, cfg.SessionTTL, c.RedisClient, logger),
		Login:    auth.NewGoogleLogin(cfg.GoogleClientID, cfg.GoogleSecret, cfg.GoogleRedirectURL, states, c.Users, logger),
	}

	switch {
	case cfg.VoteRateLimit <= 0:
		logger.Info("Vote rate limiting disabled")
	case c.RedisClient == nil:
		logger.Warn("Vote rate limiting needs Redis, proceeding without it")
	default:
		c.Services.Limiter = service.NewVoteLimiter(c.RedisClient, cfg.VoteRateLimit, cfg.VoteRateWindow, logger)
	}

	return c, nil
}

// SeedIdeas fills an in-memory store with a few ideas for local runs
func SeedIdeas(store *repository.MemoryStore) {
	now := time.Now()
	seeds := []domain.Idea{
		{CategoryID: 1, CategoryName: "Features", StatusID: 1, StatusName: "Open", StatusClass: "open",
			Title: "Dark mode", Description: "A darker theme for late-night browsing."},
		{CategoryID: 1, CategoryName: "Features", StatusID: 2, StatusName: "Considering", StatusClass: "considering",
			Title: "Export ideas to CSV", Description: "Download the board for offline triage."},
		{CategoryID: 2, CategoryName: "Integrations", StatusID: 3, StatusName: "In Progress", StatusClass: "in-progress",
			Title: "Slack notifications", Description: "Post to a channel when an idea changes status."},
		{CategoryID: 3, CategoryName: "Bugs", StatusID: 4, StatusName: "Implemented", StatusClass: "implemented",
			Title: "Vote count flickers on reload", Description: "The count briefly shows zero before loading."},
	}
	for i, idea := range seeds {
		idea.CreatedAt = now.Add(-time.Duration(len(seeds)-i) * time.Hour)
		store.AddIdea(idea)
	}
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// HasDatabase returns true when ideas and votes are stored in PostgreSQL
func (c *Container) HasDatabase() bool {
	return c.DB != nil
}
