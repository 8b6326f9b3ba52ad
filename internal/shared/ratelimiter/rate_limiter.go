// Package ratelimiter は外部送信などの操作の頻度を制限します。
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterInterface は、通知送信などの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// RateLimiter は interval あたり limit 回までに操作を制限します。
// 複数のgoroutineから同時に使用できます。
type RateLimiter struct {
	limit    int
	interval time.Duration
	limiter  *rate.Limiter
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// limit が0以下の場合は制限しません。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{limit: limit, interval: interval}
	if limit <= 0 || interval <= 0 {
		rl.limiter = rate.NewLimiter(rate.Inf, 0)
		return rl
	}
	// 最大 limit 回まで連続で許可し、その後は均等な間隔で補充する
	rl.limiter = rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit)
	return rl
}

// Wait はレートリミットの上限に達している場合、枠が空くかctxが終了するまで待機します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limiter.Allow() {
		return nil
	}
	slog.Warn("rate limit reached, waiting", "limit", rl.limit, "interval", rl.interval)
	return rl.limiter.Wait(ctx)
}
