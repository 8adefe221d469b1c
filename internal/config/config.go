package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port              string
	AllowedOrigins    []string
	LogLevel          string
	Environment       string
	DatabaseURL       string
	RedisURL          string
	SessionSecret     string
	SessionTTL        time.Duration
	SecureCookies     bool
	LoginPath         string
	PostLoginRedirect string
	GoogleClientID    string
	GoogleSecret      string
	GoogleRedirectURL string
	KafkaBrokers      []string
	KafkaTopic        string
	MetricsEnabled    bool
	VoteRateLimit     int
	VoteRateWindow    time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		AllowedOrigins:    parseList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionTTL:        getDurationEnv("SESSION_TTL", 7*24*time.Hour),
		SecureCookies:     getBoolEnv("SESSION_COOKIE_SECURE", false),
		LoginPath:         getEnv("LOGIN_PATH", "/login"),
		PostLoginRedirect: getEnv("POST_LOGIN_REDIRECT", "/"),
		GoogleClientID:    getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleSecret:      getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL: getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		KafkaBrokers:      parseList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "idea-votes"),
		MetricsEnabled:    getBoolEnv("METRICS_ENABLED", true),
		VoteRateLimit:     getIntEnv("VOTE_RATE_LIMIT", 60),
		VoteRateWindow:    getDurationEnv("VOTE_RATE_WINDOW", time.Minute),
	}

	if cfg.SessionSecret == "" && !cfg.IsProduction() {
		cfg.SessionSecret = "dev-only-session-secret"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects settings that are unsafe in production
func (c *Config) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if c.IsProduction() && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required in production"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.VoteRateLimit < 0 {
		errs = append(errs, errors.New("VOTE_RATE_LIMIT must not be negative"))
	}
	if c.VoteRateLimit > 0 && c.VoteRateWindow <= 0 {
		errs = append(errs, errors.New("VOTE_RATE_WINDOW must be positive when rate limiting is on"))
	}
	if !strings.HasPrefix(c.LoginPath, "/") {
		errs = append(errs, errors.New("LOGIN_PATH must be an absolute path"))
	}
	return errors.Join(errs...)
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseList parses a comma-separated value into a slice
func parseList(value string) []string {
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
