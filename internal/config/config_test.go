package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ALLOWED_ORIGINS", "ENVIRONMENT", "DATABASE_URL", "REDIS_URL",
		"SESSION_SECRET", "SESSION_TTL", "LOGIN_PATH", "KAFKA_BROKERS",
		"VOTE_RATE_LIMIT", "VOTE_RATE_WINDOW",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "/login", cfg.LoginPath)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "idea-votes", cfg.KafkaTopic)
	assert.Equal(t, 60, cfg.VoteRateLimit)
	assert.Equal(t, time.Minute, cfg.VoteRateWindow)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("ALLOWED_ORIGINS", "https://ideas.example.com")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("VOTE_RATE_LIMIT", "0")
	t.Setenv("VOTE_RATE_WINDOW", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.SessionSecret)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"https://ideas.example.com"}, cfg.AllowedOrigins)
	assert.True(t, cfg.SecureCookies)
	assert.Zero(t, cfg.VoteRateLimit)
	assert.Equal(t, time.Minute, cfg.VoteRateWindow)
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidate(t *testing.T) {
	valid := Config{SessionSecret: "x", SessionTTL: time.Hour, LoginPath: "/login"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"relative login path", func(c *Config) { c.LoginPath = "login" }, true},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, true},
		{"production without database", func(c *Config) { c.Environment = "production" }, true},
		{"negative vote limit", func(c *Config) { c.VoteRateLimit = -1 }, true},
		{"vote limit without window", func(c *Config) { c.VoteRateLimit = 5 }, true},
		{"vote limit with window", func(c *Config) { c.VoteRateLimit = 5; c.VoteRateWindow = time.Second }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
