package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// MaxAvatarSize はアバター画像アップロードの最大サイズ（バイト）です。
	MaxAvatarSize = 1_000_000
	// AvatarContentType は保存されるアバター画像のContent-Typeです。
	AvatarContentType = "image/png"
)

// allowedAvatarExtensions はアップロードを許可する拡張子です（小文字で比較）。
var allowedAvatarExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// ImageProcessor は画像をデコードし、固定サイズのPNGに正規化します。
type ImageProcessor interface {
	Normalize(data []byte) ([]byte, error)
}

// AvatarUsecase はアバター画像のビジネスロジックを実装します。
type AvatarUsecase struct {
	avatars   AvatarRepository
	processor ImageProcessor
}

// NewAvatarUsecase はAvatarUsecaseの新しいインスタンスを生成します。
func NewAvatarUsecase(avatars AvatarRepository, processor ImageProcessor) *AvatarUsecase {
	return &AvatarUsecase{avatars: avatars, processor: processor}
}

// Upload はファイル名とサイズを検証し、画像を正規化してから保存します。
// 検証に失敗した場合、ストレージへの書き込みは行いません。
func (u *AvatarUsecase) Upload(ctx context.Context, userID, filename string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedAvatarExtensions[ext]; !ok {
		return ErrAvatarFileType
	}
	if len(data) > MaxAvatarSize {
		return ErrAvatarTooLarge
	}
	if len(data) == 0 {
		return ErrInvalidImage
	}

	normalized, err := u.processor.Normalize(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return u.avatars.SaveAvatar(ctx, userID, normalized)
}

// Delete はユーザーのアバターを削除します。
func (u *AvatarUsecase) Delete(ctx context.Context, userID string) error {
	return u.avatars.DeleteAvatar(ctx, userID)
}

// Get はユーザーのアバター画像とContent-Typeを返します。
func (u *AvatarUsecase) Get(ctx context.Context, userID string) ([]byte, string, error) {
	data, err := u.avatars.FindAvatar(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	return data, AvatarContentType, nil
}
