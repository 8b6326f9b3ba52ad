// Package config はアプリケーション全体の設定を環境変数から読み込みます。
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"task_backend/internal/platform/db"
	jwtmw "task_backend/internal/platform/jwt"
	"task_backend/internal/platform/mongodb"
	"task_backend/internal/platform/redis"
)

const (
	defaultPort            = "3000"
	defaultJWTExpiration   = 10080 * time.Minute
	defaultAvatarCacheTTL  = 10 * time.Minute
	defaultNotifyRateLimit = 60
	defaultSMTPPort        = 587
	defaultMailFrom        = "no-reply@task-manager.local"
)

// Config は起動時に一度だけ読み込まれ、各コンポーネントに渡されます。
type Config struct {
	Env      string
	Port     string
	LogLevel string

	DB    db.Config
	Mongo mongodb.Config
	Redis redis.Config

	JWTSecret     string
	JWTExpiration time.Duration

	AvatarCacheTTL time.Duration

	Mail MailConfig

	CORSAllowedOrigins []string
}

// MailConfig は通知メールの送信設定です。
type MailConfig struct {
	SendGridAPIKey string
	From           string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	RateLimit      int // 1分あたりの送信数。0以下は無制限
}

// Load は .env（存在する場合）と環境変数から設定を読み込みます。
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	return FromEnv()
}

// FromEnv は現在の環境変数から設定を組み立てます。
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", defaultPort),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DB:       db.LoadConfigFromEnv(),
		Mongo:    mongodb.LoadConfigFromEnv(),
		Redis:    redis.LoadConfigFromEnv(),
		Mail: MailConfig{
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			From:           getEnv("MAIL_FROM", defaultMailFrom),
			SMTPHost:       os.Getenv("SMTP_HOST"),
			SMTPUsername:   os.Getenv("SMTP_USERNAME"),
			SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		},
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	var err error
	if cfg.JWTExpiration, err = minutesEnv("JWT_ACCESS_EXPIRATION_MINUTES", defaultJWTExpiration); err != nil {
		return nil, err
	}
	if cfg.AvatarCacheTTL, err = durationEnv("AVATAR_CACHE_TTL", defaultAvatarCacheTTL); err != nil {
		return nil, err
	}
	if cfg.Mail.SMTPPort, err = intEnv("SMTP_PORT", defaultSMTPPort); err != nil {
		return nil, err
	}
	if cfg.Mail.RateLimit, err = intEnv("NOTIFY_RATE_LIMIT", defaultNotifyRateLimit); err != nil {
		return nil, err
	}

	cfg.JWTSecret = os.Getenv(jwtmw.EnvKeyJWTSecret)
	if cfg.JWTSecret == "" {
		// 開発中の注意喚起。再起動すると発行済みトークンはすべて無効になる
		slog.Warn("JWT_SECRET is not set; using a random secret. Set a strong secret in production.")
		if cfg.JWTSecret, err = randomSecret(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// IsProduction は本番環境かどうかを返します。
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr はHTTPサーバーの待ち受けアドレスです。
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func minutesEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive number of minutes", key, v)
	}
	return time.Duration(n) * time.Minute, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
