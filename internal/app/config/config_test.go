package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "LOG_LEVEL", "JWT_SECRET", "JWT_ACCESS_EXPIRATION_MINUTES",
		"AVATAR_CACHE_TTL", "SENDGRID_API_KEY", "MAIL_FROM", "SMTP_HOST", "SMTP_PORT",
		"SMTP_USERNAME", "SMTP_PASSWORD", "NOTIFY_RATE_LIMIT", "CORS_ALLOWED_ORIGINS",
		"DB_DRIVER", "REDIS_HOST",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 10*time.Minute, cfg.AvatarCacheTTL)
	assert.Equal(t, 60, cfg.Mail.RateLimit)
	assert.Equal(t, 587, cfg.Mail.SMTPPort)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	// 未設定の場合はランダムなシークレットが生成される
	assert.Len(t, cfg.JWTSecret, 64)
}

func TestFromEnv_RandomSecretDiffers(t *testing.T) {
	clearEnv(t)

	a, err := FromEnv()
	require.NoError(t, err)
	b, err := FromEnv()
	require.NoError(t, err)

	assert.NotEqual(t, a.JWTSecret, b.JWTSecret)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ACCESS_EXPIRATION_MINUTES", "30")
	t.Setenv("AVATAR_CACHE_TTL", "1h")
	t.Setenv("NOTIFY_RATE_LIMIT", "0")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, ,http://b.example")
	t.Setenv("SENDGRID_API_KEY", "SG.key")
	t.Setenv("MAIL_FROM", "tasks@example.com")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.JWTExpiration)
	assert.Equal(t, time.Hour, cfg.AvatarCacheTTL)
	assert.Equal(t, 0, cfg.Mail.RateLimit)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "SG.key", cfg.Mail.SendGridAPIKey)
	assert.Equal(t, "tasks@example.com", cfg.Mail.From)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "expiration not a number", key: "JWT_ACCESS_EXPIRATION_MINUTES", value: "week"},
		{name: "expiration zero", key: "JWT_ACCESS_EXPIRATION_MINUTES", value: "0"},
		{name: "cache ttl", key: "AVATAR_CACHE_TTL", value: "ten minutes"},
		{name: "smtp port", key: "SMTP_PORT", value: "smtp"},
		{name: "rate limit", key: "NOTIFY_RATE_LIMIT", value: "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
