package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAvatarRepository keeps avatars in memory.
type mockAvatarRepository struct {
	data    map[string][]byte
	saveErr error
}

func (m *mockAvatarRepository) SaveAvatar(ctx context.Context, userID string, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[userID] = data
	return nil
}

func (m *mockAvatarRepository) DeleteAvatar(ctx context.Context, userID string) error {
	delete(m.data, userID)
	return nil
}

func (m *mockAvatarRepository) FindAvatar(ctx context.Context, userID string) ([]byte, error) {
	d, ok := m.data[userID]
	if !ok {
		return nil, ErrAvatarNotFound
	}
	return d, nil
}

type stubProcessor struct {
	err   error
	calls int
}

func (s *stubProcessor) Normalize(data []byte) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]byte("png:"), data...), nil
}

// TestAvatarUsecase_Upload はアバターアップロードの検証と保存を検証します。
func TestAvatarUsecase_Upload(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		data         []byte
		processorErr error
		wantErr      error
		wantStored   bool
	}{
		{name: "png", filename: "me.png", data: []byte("img"), wantStored: true},
		{name: "upper case jpeg", filename: "ME.JPEG", data: []byte("img"), wantStored: true},
		{name: "jpg", filename: "photo.jpg", data: []byte("img"), wantStored: true},
		{name: "pdf rejected", filename: "doc.pdf", data: []byte("img"), wantErr: ErrAvatarFileType},
		{name: "no extension", filename: "avatar", data: []byte("img"), wantErr: ErrAvatarFileType},
		{name: "too large", filename: "big.png", data: bytes.Repeat([]byte{1}, MaxAvatarSize+1), wantErr: ErrAvatarTooLarge},
		{name: "exactly max size", filename: "max.png", data: bytes.Repeat([]byte{1}, MaxAvatarSize), wantStored: true},
		{name: "empty", filename: "empty.png", data: nil, wantErr: ErrInvalidImage},
		{name: "undecodable", filename: "bad.png", data: []byte("img"), processorErr: errors.New("unknown format"), wantErr: ErrInvalidImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAvatarRepository{}
			proc := &stubProcessor{err: tt.processorErr}
			uc := NewAvatarUsecase(repo, proc)

			err := uc.Upload(context.Background(), "user-1", tt.filename, tt.data)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.NotContains(t, repo.data, "user-1")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStored, repo.data["user-1"] != nil)
			assert.Equal(t, 1, proc.calls)
		})
	}
}

// TestAvatarUsecase_GetAndDelete は取得と削除を検証します。
func TestAvatarUsecase_GetAndDelete(t *testing.T) {
	repo := &mockAvatarRepository{}
	uc := NewAvatarUsecase(repo, &stubProcessor{})
	ctx := context.Background()

	_, _, err := uc.Get(ctx, "user-1")
	assert.ErrorIs(t, err, ErrAvatarNotFound)

	require.NoError(t, uc.Upload(ctx, "user-1", "a.png", []byte("img")))

	data, contentType, err := uc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("png:img"), data)
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, uc.Delete(ctx, "user-1"))
	// 2回目の削除もエラーにならない
	require.NoError(t, uc.Delete(ctx, "user-1"))

	_, _, err = uc.Get(ctx, "user-1")
	assert.ErrorIs(t, err, ErrAvatarNotFound)
}

// TestAvatarUsecase_SaveFailure は保存失敗が呼び出し元に返ることを検証します。
func TestAvatarUsecase_SaveFailure(t *testing.T) {
	repo := &mockAvatarRepository{saveErr: ErrUserNotFound}
	uc := NewAvatarUsecase(repo, &stubProcessor{})

	err := uc.Upload(context.Background(), "ghost", "a.png", []byte("img"))

	assert.ErrorIs(t, err, ErrUserNotFound)
}
