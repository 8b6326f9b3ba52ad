package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"task_backend/internal/feature/users/usecase"
	"task_backend/internal/platform/http/response"
)

// avatarFormField はアバター画像のmultipartフィールド名です。
const avatarFormField = "avatar"

// multipartOverhead は境界やヘッダーのためにボディ上限へ加える余裕です。
const multipartOverhead = 64 << 10

// AvatarUsecase はアバター操作のユースケースを定義します。
type AvatarUsecase interface {
	Upload(ctx context.Context, userID, filename string, data []byte) error
	Delete(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) ([]byte, string, error)
}

// AvatarHandler はアバター画像のHTTPリクエストを処理します。
type AvatarHandler struct {
	avatars AvatarUsecase
}

// NewAvatarHandler はAvatarHandlerの新しいインスタンスを生成します。
func NewAvatarHandler(avatars AvatarUsecase) *AvatarHandler {
	return &AvatarHandler{avatars: avatars}
}

// Upload は POST /users/me/avatar を処理します。
// サイズ上限を超えるボディは読み切る前に打ち切ります。
func (h *AvatarHandler) Upload(c *gin.Context) (response.Result, error) {
	user, err := currentUser(c)
	if err != nil {
		return response.Result{}, err
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, usecase.MaxAvatarSize+multipartOverhead)
	fh, err := c.FormFile(avatarFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return response.Result{}, response.BadRequest(usecase.ErrAvatarTooLarge.Error(), err)
		}
		return response.Result{}, response.BadRequest("please upload an image", err)
	}
	if fh.Size > usecase.MaxAvatarSize {
		return response.Result{}, response.BadRequest(usecase.ErrAvatarTooLarge.Error(), nil)
	}

	f, err := fh.Open()
	if err != nil {
		return response.Result{}, fmt.Errorf("failed to open uploaded avatar: %w", err)
	}
	defer f.Close()

	// 上限+1バイトまで読み、超過はusecaseで判定する
	data, err := io.ReadAll(io.LimitReader(f, usecase.MaxAvatarSize+1))
	if err != nil {
		return response.Result{}, fmt.Errorf("failed to read uploaded avatar: %w", err)
	}

	if err := h.avatars.Upload(c.Request.Context(), user.ID, fh.Filename, data); err != nil {
		return response.Result{}, mapUserError(err)
	}
	return response.OK("Saved"), nil
}

// Delete は DELETE /users/me/avatar を処理します。
func (h *AvatarHandler) Delete(c *gin.Context) (response.Result, error) {
	user, err := currentUser(c)
	if err != nil {
		return response.Result{}, err
	}
	if err := h.avatars.Delete(c.Request.Context(), user.ID); err != nil {
		return response.Result{}, mapUserError(err)
	}
	return response.OK("Avatar removed"), nil
}

// Get は GET /users/:id/avatar を処理します。認証は不要で、画像をそのまま返します。
func (h *AvatarHandler) Get(c *gin.Context) (response.Result, error) {
	data, contentType, err := h.avatars.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrAvatarNotFound) || errors.Is(err, usecase.ErrUserNotFound) {
			return response.Result{}, response.NotFound("avatar not found")
		}
		return response.Result{}, err
	}
	return response.Binary(contentType, data), nil
}
