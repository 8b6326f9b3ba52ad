// Package handler はusersフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"task_backend/internal/feature/users/domain/entity"
	"task_backend/internal/feature/users/transport/http/dto"
	"task_backend/internal/feature/users/usecase"
	"task_backend/internal/platform/http/response"
	jwtmw "task_backend/internal/platform/jwt"
	"task_backend/internal/shared/patch"
)

// UserUsecase はアカウント操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserUsecase interface {
	Signup(ctx context.Context, in usecase.SignupInput) (*entity.User, string, error)
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
	Logout(ctx context.Context, userID, tokenID string) error
	LogoutAll(ctx context.Context, userID string) error
	UpdateProfile(ctx context.Context, userID string, in usecase.ProfileChanges) (*entity.User, error)
	DeleteAccount(ctx context.Context, userID string) (*entity.User, error)
}

// UserHandler はアカウント操作のHTTPリクエストを処理します。
type UserHandler struct {
	users UserUsecase
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(users UserUsecase) *UserHandler {
	return &UserHandler{users: users}
}

// Signup は POST /users を処理します。成功時は201でユーザーとトークンを返します。
func (h *UserHandler) Signup(c *gin.Context) (response.Result, error) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.Result{}, response.BadRequest("invalid request", err)
	}

	user, token, err := h.users.Signup(c.Request.Context(), usecase.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		return response.Result{}, mapUserError(err)
	}

	slog.Info("user signup successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	return response.Created(dto.AuthResponse{User: dto.NewUserResponse(user), Token: token}), nil
}

// Login は POST /users/login を処理します。
// ユーザー列挙攻撃を防止するため、未登録とパスワード不一致は同じ応答になります。
func (h *UserHandler) Login(c *gin.Context) (response.Result, error) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.Result{}, response.BadRequest("unable to login", err)
	}

	user, token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		return response.Result{}, mapUserError(err)
	}

	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	return response.OK(dto.AuthResponse{User: dto.NewUserResponse(user), Token: token}), nil
}

// Logout は提示されたトークンのセッションのみを無効化します。
func (h *UserHandler) Logout(c *gin.Context) (response.Result, error) {
	user, err := currentUser(c)
	if err != nil {
		return response.Result{}, err
	}
	if err := h.users.Logout(c.Request.Context(), user.ID, jwtmw.CurrentTokenID(c)); err != nil {
		return response.Result{}, mapUserError(err)
	}
	return response.OK("Logged Out"), nil
}

// LogoutAll はユーザーのすべてのセッションを無効化します。
func (h *UserHandler) LogoutAll(c *gin.Context) (response.Result, error) {
	user, err := currentUser(c)
	if err != nil {
		return response.Result{}, err
	}
	if err := h.users.LogoutAll(c.Request.Context(), user.ID); err != nil {
		return response.Result{}, mapUserError(err)
	}
	return response.OK("Logged Out Of all accounts"), nil
}

// Me は認証済みユーザーのプロフィールを返します。
func (h *UserHandler) Me(c *gin.Context) (response.Result, error) {
	user, err := currentUser(c)
	if err != nil {
		return response.Result{}, err
	}
	return response.OK(dto.NewUserResponse(user)), nil
}

// UpdateMe は PATCH /users/me を処理します。許可リスト外のキーがあれば何も変更しません。
func (h *UserHandler) UpdateMe(c *gin.Context) (response.Result, error) {
	user, err := currentUser(c)
	if err != nil {
		return response.Result{}, err
	}

	body, err := c.GetRawData()
	if err != nil {
		return response.Result{}, response.BadRequest("invalid update", err)
	}
	var req dto.ProfileUpdateReq
	if err := patch.Decode(body, usecase.AllowedProfileFields, &req); err != nil {
		return response.Result{}, response.BadRequest("invalid update", err)
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, req.ToChanges())
	if err != nil {
		return response.Result{}, mapUserError(err)
	}
	return response.OK(dto.NewUserResponse(updated)), nil
}

// DeleteMe はアカウントを削除し、削除したユーザーを返します。
func (h *UserHandler) DeleteMe(c *gin.Context) (response.Result, error) {
	user, err := currentUser(c)
	if err != nil {
		return response.Result{}, err
	}
	deleted, err := h.users.DeleteAccount(c.Request.Context(), user.ID)
	if err != nil {
		return response.Result{}, mapUserError(err)
	}
	slog.Info("user account deleted", "user_id", deleted.ID, "remote_addr", c.ClientIP())
	return response.OK(dto.NewUserResponse(deleted)), nil
}

// currentUser はAuthRequiredが設定したユーザーを取り出します。
func currentUser(c *gin.Context) (*entity.User, error) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		return nil, response.Unauthorized("please authenticate")
	}
	return user, nil
}

// mapUserError はusecaseのエラーをHTTPエラーに変換します。未知のエラーは500になります。
func mapUserError(err error) error {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		return response.BadRequest(verr.Error(), err)
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return response.BadRequest("unable to login", err)
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		return response.BadRequest("email already in use", err)
	case errors.Is(err, usecase.ErrInvalidUpdate):
		return response.BadRequest("invalid update", err)
	case errors.Is(err, usecase.ErrSessionNotFound):
		return response.NewError(http.StatusUnauthorized, "please authenticate", err)
	case errors.Is(err, usecase.ErrUserNotFound):
		return response.NotFound("user not found")
	case errors.Is(err, usecase.ErrAvatarNotFound):
		return response.NotFound("avatar not found")
	case errors.Is(err, usecase.ErrAvatarTooLarge),
		errors.Is(err, usecase.ErrAvatarFileType),
		errors.Is(err, usecase.ErrInvalidImage):
		return response.BadRequest(sentinelMessage(err), err)
	default:
		return err
	}
}

// sentinelMessage はアバター検証エラーのクライアント向けメッセージを返します。
func sentinelMessage(err error) string {
	for _, sentinel := range []error{usecase.ErrAvatarTooLarge, usecase.ErrAvatarFileType, usecase.ErrInvalidImage} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
