// Package response はHTTPレスポンスの整形とエラー報告を一元化します。
//
// ハンドラーは gin.Context に直接書き込まず、Result と error を返します。
// Handle がそれを受け取り、成功時は Write、失敗時は WriteError に振り分けます。
package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope は成功レスポンスの共通形式です。
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorEnvelope はエラーレスポンスの共通形式です。
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Result はハンドラーの成功結果です。
// ContentType が設定されている場合、Body がそのまま書き出されエンベロープは使用しません。
type Result struct {
	Status      int
	Data        any
	ContentType string
	Body        []byte
}

// OK は 200 の結果を返します。
func OK(data any) Result {
	return Result{Status: http.StatusOK, Data: data}
}

// Created は 201 の結果を返します。
func Created(data any) Result {
	return Result{Status: http.StatusCreated, Data: data}
}

// Binary は生のバイト列を返す結果を生成します（画像など）。
func Binary(contentType string, body []byte) Result {
	return Result{Status: http.StatusOK, ContentType: contentType, Body: body}
}

// HandlerFunc は結果またはエラーを返すハンドラーです。
type HandlerFunc func(c *gin.Context) (Result, error)

// Handle はハンドラーをラップし、すべての失敗（panicを含む）を WriteError に集約します。
func Handle(h HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := run(c, h)
		if err != nil {
			WriteError(c, err)
			return
		}
		Write(c, res)
	}
}

func run(c *gin.Context, h HandlerFunc) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(c)
}

// Write は成功結果を書き出します。
func Write(c *gin.Context, res Result) {
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	if res.ContentType != "" {
		c.Data(status, res.ContentType, res.Body)
		return
	}
	c.JSON(status, Envelope{Success: true, Data: res.Data})
}

// WriteError はエラーをログに記録し、エラーエンベロープを書き出してチェーンを中断します。
// *Error 以外のエラーは内部エラーとして扱い、詳細はクライアントに公開しません。
func WriteError(c *gin.Context, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Internal(err)
	}
	_ = c.Error(err)

	attrs := []any{
		"status", apiErr.Status,
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
	}
	if apiErr.Status >= http.StatusInternalServerError {
		slog.Error("request failed", attrs...)
	} else {
		slog.Warn("request rejected", attrs...)
	}

	c.AbortWithStatusJSON(apiErr.Status, ErrorEnvelope{
		Success: false,
		Code:    apiErr.Status,
		Message: apiErr.Message,
	})
}
