package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ideaboard/internal/config"
	"ideaboard/internal/container"
	"ideaboard/internal/event"
	"ideaboard/internal/handler"
	"ideaboard/internal/middleware"
	"ideaboard/pkg/database"
	"ideaboard/pkg/errors"
	"ideaboard/pkg/logger"
	"ideaboard/pkg/redis"
)

// Resources holds all resources that need cleanup
type Resources struct {
	db          *database.PostgresDB
	redisClient *redis.Client
	publisher   event.VotePublisher
	server      *http.Server
	log         *logger.Logger
	mu          sync.Mutex
	closed      bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	r.log.Info("Starting graceful shutdown...")

	// Stop accepting requests before closing what they depend on
	if r.server != nil {
		r.log.Info("Shutting down HTTP server...")
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		} else {
			r.log.Info("HTTP server shutdown complete")
		}
	}

	// Flushes pending vote events
	if r.publisher != nil {
		if err := r.publisher.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close vote publisher")
			errs = append(errs, fmt.Errorf("publisher close: %w", err))
		}
	}

	if r.redisClient != nil {
		r.log.Info("Closing Redis connection...")
		if err := r.redisClient.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close Redis connection")
			errs = append(errs, fmt.Errorf("Redis close: %w", err))
		} else {
			r.log.Info("Redis connection closed successfully")
		}
	}

	if r.db != nil {
		r.log.Info("Closing database connection pool...")
		r.db.Close()
	}

	if len(errs) > 0 {
		r.log.WithField("error_count", len(errs)).Error("Cleanup completed with errors")
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting ideaboard server")

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	c, err := container.New(startCtx, cfg, log)
	cancelStart()
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        setupRouter(c),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	resources := &Resources{
		db:          c.DB,
		redisClient: c.RedisClient,
		publisher:   c.Publisher,
		server:      server,
		log:         log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()
	services := c.Services

	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Instrument(c.HTTPMetrics))
	r.Use(middleware.AccessLog(log.Named("http")))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.AllowedOrigins), log))
	r.Use(chiMiddleware.Timeout(30 * time.Second))
	r.Use(middleware.Session(services.Sessions, log))

	healthChecks := map[string]handler.HealthCheck{}
	if c.DB != nil {
		healthChecks["database"] = c.DB.Health
	}
	if c.RedisClient != nil {
		healthChecks["redis"] = c.RedisClient.Health
	}

	healthHandler := handler.NewHealthHandler(healthChecks, log)
	ideaHandler := handler.NewIdeaHandler(services.Ideas, services.Votes, cfg.LoginPath, log)
	taxonomyHandler := handler.NewTaxonomyHandler(services.Taxonomy, log)
	authHandler := handler.NewAuthHandler(
		services.Login,
		services.Sessions,
		c.Users,
		handler.CookieConfig{Secure: cfg.SecureCookies},
		cfg.PostLoginRedirect,
		log,
	)

	r.Get("/health", healthHandler.Check)
	if c.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}))
	}

	r.Get(cfg.LoginPath, authHandler.Login)
	r.Get("/auth/google/callback", authHandler.Callback)
	r.Post("/logout", authHandler.Logout)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", taxonomyHandler.Categories)
		r.Get("/statuses", taxonomyHandler.Statuses)

		r.Get("/ideas", ideaHandler.List)
		r.Get("/ideas/{ideaID}", ideaHandler.Show)

		// The vote route checks the session itself so the counter decides
		// the redirect.
		r.Group(func(r chi.Router) {
			if services.Limiter != nil {
				r.Use(middleware.RateLimitVotes(services.Limiter, log))
			}
			r.Post("/ideas/{ideaID}/vote", ideaHandler.Vote)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(cfg.LoginPath))
			r.Get("/me", authHandler.Me)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errors.Write(w, errors.NewNotFoundError("Endpoint not found"), middleware.RequestIDFromContext(r.Context()))
	})

	log.Info("Router configured successfully")
	return r
}
