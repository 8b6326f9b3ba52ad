package response

import (
	"fmt"
	"net/http"
)

// Error はHTTPステータスとクライアント向けメッセージを持つエラーです。
// Err は原因となったエラーで、ログにのみ出力されます。
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError は任意のステータスの Error を生成します。
func NewError(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

// BadRequest は 400 エラーを生成します。
func BadRequest(message string, err error) *Error {
	return NewError(http.StatusBadRequest, message, err)
}

// Unauthorized は 401 エラーを生成します。
func Unauthorized(message string) *Error {
	return NewError(http.StatusUnauthorized, message, nil)
}

// NotFound は 404 エラーを生成します。
func NotFound(message string) *Error {
	return NewError(http.StatusNotFound, message, nil)
}

// Internal は 500 エラーを生成します。メッセージは固定です。
func Internal(err error) *Error {
	return NewError(http.StatusInternalServerError, "internal server error", err)
}
