// Package logging はアプリケーション全体のslogロガーを設定します。
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvProduction は本番環境を示すAPP_ENVの値です。
const EnvProduction = "production"

// ParseLevel はLOG_LEVELの文字列をslog.Levelに変換します。不明な値はinfoになります。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger は本番環境ではJSON、それ以外ではテキスト形式のロガーを w に出力するよう生成します。
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if env == EnvProduction {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup は標準出力へのロガーを生成し、slogのデフォルトに設定します。
func Setup(env, level string) *slog.Logger {
	logger := NewLogger(os.Stdout, env, level)
	slog.SetDefault(logger)
	return logger
}
