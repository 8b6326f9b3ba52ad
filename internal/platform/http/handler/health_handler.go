// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// pingTimeout は依存先1つあたりの疎通確認の最大時間です。
const pingTimeout = 2 * time.Second

// Check はヘルスチェック対象の依存先です。
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Health はサービスヘルスチェック用の /healthz エンドポイントのハンドラーを返します。
// 依存先のいずれかが応答しない場合は503を返します。キャッシュは常に防止します。
func Health(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		status, body := http.StatusOK, gin.H{"status": "ok"}
		if failed := runChecks(c.Request.Context(), checks); failed != "" {
			status, body = http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": failed}
		}

		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		c.JSON(status, body)
	}
}

// runChecks は最初に失敗した依存先の名前を返します。すべて成功した場合は空文字です。
func runChecks(ctx context.Context, checks []Check) string {
	for _, chk := range checks {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := chk.Ping(pctx)
		cancel()
		if err != nil {
			slog.Warn("health check failed", "dependency", chk.Name, "error", err)
			return chk.Name
		}
	}
	return ""
}
