// Package adapters はusersフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"task_backend/internal/feature/users/domain/entity"
	"task_backend/internal/feature/users/usecase"
	"task_backend/internal/platform/db"
)

// UserModel はusersテーブルのGORMモデルです。
// アバター画像は同じ行に保持しますが、通常の取得では読み込みません。
type UserModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:255;not null"`
	Email     string `gorm:"size:255;uniqueIndex;not null"`
	Password  string `gorm:"size:255;not null"`
	Age       int    `gorm:"not null"`
	Avatar    []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts the GORM model to a domain entity.
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Password:  m.Password,
		Age:       m.Age,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// UserModelFromEntity converts a domain entity to a GORM model.
func UserModelFromEntity(u *entity.User) *UserModel {
	return &UserModel{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// userGorm はUserRepositoryとAvatarRepositoryのGORM実装です。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryとAvatarRepositoryを実装していることをコンパイル時に検証します。
var (
	_ usecase.UserRepository   = (*userGorm)(nil)
	_ usecase.AvatarRepository = (*userGorm)(nil)
)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	model := UserModelFromEntity(u)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByID はIDでユーザーを取得します。
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userGorm) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Omit("avatar").Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// Update は変更を1つのUPDATE文で適用します。
func (r *userGorm) Update(ctx context.Context, id string, changes usecase.UserChanges) error {
	values := map[string]any{}
	if changes.Name != nil {
		values["name"] = *changes.Name
	}
	if changes.Email != nil {
		values["email"] = *changes.Email
	}
	if changes.Password != nil {
		values["password"] = *changes.Password
	}
	if changes.Age != nil {
		values["age"] = *changes.Age
	}
	if len(values) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		if db.IsUniqueViolation(result.Error) {
			return usecase.ErrEmailAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// Delete はユーザーの行を削除します。
func (r *userGorm) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&UserModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// SaveAvatar はユーザーのアバター画像を上書き保存します。
func (r *userGorm) SaveAvatar(ctx context.Context, userID string, data []byte) error {
	result := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", userID).Update("avatar", data)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// DeleteAvatar はアバター画像をクリアします。存在しないユーザーでもエラーにしません。
func (r *userGorm) DeleteAvatar(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&UserModel{}).
		Where("id = ?", userID).
		Update("avatar", gorm.Expr("NULL")).Error
}

// FindAvatar はアバター画像を取得します。
func (r *userGorm) FindAvatar(ctx context.Context, userID string) ([]byte, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Select("id", "avatar").Where("id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrAvatarNotFound
		}
		return nil, err
	}
	if len(m.Avatar) == 0 {
		return nil, usecase.ErrAvatarNotFound
	}
	return m.Avatar, nil
}
