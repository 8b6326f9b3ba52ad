// Package dto はusersフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"time"

	"task_backend/internal/feature/users/domain/entity"
	"task_backend/internal/feature/users/usecase"
)

// SignupReq は POST /users のリクエストボディです。
// 必須チェックのみGinのbindingタグで行い、値の規則はusecaseで検証します。
type SignupReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Age      int    `json:"age"`
}

// LoginReq は POST /users/login のリクエストボディです。
type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProfileUpdateReq は PATCH /users/me のリクエストボディです。
// 省略されたフィールドは変更しません。
type ProfileUpdateReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

// ToChanges はリクエストをusecaseの入力に変換します。
func (r ProfileUpdateReq) ToChanges() usecase.ProfileChanges {
	return usecase.ProfileChanges{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Age:      r.Age,
	}
}

// UserResponse はクライアントに返すユーザー表現です。パスワードやトークンは含みません。
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserResponse converts a domain user into its public form.
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// AuthResponse はサインアップ・ログインのレスポンスです。
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}
