package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"task_backend/internal/shared/ratelimiter"
)

// DefaultSendTimeout は1通の送信にかける最大時間です。
const DefaultSendTimeout = 10 * time.Second

// Dispatcher は通知を呼び出し元から切り離したgoroutineで送信します。
// 送信の失敗はログに記録するだけで、呼び出し元には返しません。
type Dispatcher struct {
	sender  Sender
	limiter ratelimiter.RateLimiterInterface
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher はDispatcherを生成します。limiter が nil の場合は制限しません。
func NewDispatcher(sender Sender, limiter ratelimiter.RateLimiterInterface) *Dispatcher {
	if limiter == nil {
		limiter = ratelimiter.NewRateLimiter(0, 0)
	}
	return &Dispatcher{
		sender:  sender,
		limiter: limiter,
		timeout: DefaultSendTimeout,
	}
}

// NotifyWelcome はサインアップ時のウェルカムメールを送信します。
func (d *Dispatcher) NotifyWelcome(ctx context.Context, email, name string) {
	d.dispatch(ctx, TemplateWelcome, Recipient{Email: email, Name: name})
}

// NotifyCancellation はアカウント削除時の解約メールを送信します。
func (d *Dispatcher) NotifyCancellation(ctx context.Context, email, name string) {
	d.dispatch(ctx, TemplateCancellation, Recipient{Email: email, Name: name})
}

// dispatch はリクエストのキャンセルを引き継がないコンテキストで送信を開始します。
func (d *Dispatcher) dispatch(parent context.Context, tmpl string, to Recipient) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), d.timeout)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("notification panicked", "template", tmpl, "panic", fmt.Sprint(r))
			}
		}()

		if err := d.send(ctx, tmpl, to); err != nil {
			slog.Error("failed to send notification", "template", tmpl, "to", to.Email, "error", err)
			return
		}
		slog.Info("notification sent", "template", tmpl, "to", to.Email)
	}()
}

func (d *Dispatcher) send(ctx context.Context, tmpl string, to Recipient) error {
	msg, err := Render(tmpl, to)
	if err != nil {
		return err
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return d.sender.Send(ctx, msg)
}

// Shutdown は送信中の通知がすべて終わるか ctx が終了するまで待機します。
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
