package notify

import (
	"context"
	"log/slog"
)

// LogSender は送信せずに内容をログに記録します。メール設定のない開発環境で使用します。
type LogSender struct{}

// Send はメッセージの宛先と件名をログに出力します。
func (LogSender) Send(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "notification (not sent)", "to", msg.To, "subject", msg.Subject)
	return nil
}
