package di

import (
	"log/slog"
	"time"

	"task_backend/internal/app/config"
	infrahttp "task_backend/internal/platform/http"
	"task_backend/internal/platform/notify"
	"task_backend/internal/shared/ratelimiter"
)

// mailHTTPTimeout はSendGrid APIへのリクエスト全体のタイムアウトです。
const mailHTTPTimeout = 10 * time.Second

// NewMailSender は設定に応じて通知の送信手段を選びます。
// SendGridのAPIキーがあればSendGrid、SMTPホストがあればSMTP、どちらもなければログ出力のみです。
func NewMailSender(cfg config.MailConfig) notify.Sender {
	switch {
	case cfg.SendGridAPIKey != "":
		slog.Info("notifications via SendGrid", "from", cfg.From)
		return notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.From, "", infrahttp.NewHTTPClient(mailHTTPTimeout))
	case cfg.SMTPHost != "":
		slog.Info("notifications via SMTP", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
		return notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.From)
	default:
		slog.Warn("no mail transport configured; notifications are only logged")
		return notify.LogSender{}
	}
}

// NewNotifier creates a Dispatcher throttled to cfg.RateLimit messages per minute.
func NewNotifier(cfg config.MailConfig) *notify.Dispatcher {
	limiter := ratelimiter.NewRateLimiter(cfg.RateLimit, time.Minute)
	return notify.NewDispatcher(NewMailSender(cfg), limiter)
}
