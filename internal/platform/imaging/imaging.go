// Package imaging はアップロードされた画像の正規化を提供します。
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEGデコーダーを登録
	"image/png"

	"golang.org/x/image/draw"
)

const (
	// AvatarSize はアバター画像の一辺のピクセル数です。
	AvatarSize = 250

	// MaxSourceDimension はデコードを許可する入力画像の一辺の上限です。
	// 圧縮後のサイズが小さくても、デコード後のメモリは幅×高さに比例する。
	MaxSourceDimension = 4096
)

var (
	// ErrUnsupportedFormat はPNG・JPEG以外の画像を受け取った場合に返されます。
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrImageTooLarge は入力画像の幅または高さが MaxSourceDimension を超える場合に返されます。
	ErrImageTooLarge = errors.New("image dimensions too large")
)

// Resizer は画像を固定サイズのPNGに変換します。
type Resizer struct {
	width, height int
}

// NewResizer は width x height に変換するResizerを生成します。
func NewResizer(width, height int) *Resizer {
	return &Resizer{width: width, height: height}
}

// NewAvatarResizer は250x250のアバター用Resizerを生成します。
func NewAvatarResizer() *Resizer {
	return NewResizer(AvatarSize, AvatarSize)
}

// Normalize はPNGまたはJPEGをデコードし、固定サイズに拡縮してPNGで返します。
// 縦横比は保持しません。ヘッダーの寸法を先に確認し、上限を超える画像はデコードしません。
func (r *Resizer) Normalize(data []byte) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if cfg.Width > MaxSourceDimension || cfg.Height > MaxSourceDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
