package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	taskshandler "task_backend/internal/feature/tasks/transport/handler"
	usershandler "task_backend/internal/feature/users/transport/handler"
	"task_backend/internal/platform/http/response"
)

// Handlers はルーターに登録するハンドラー群です。
type Handlers struct {
	Users   *usershandler.UserHandler
	Avatars *usershandler.AvatarHandler
	Tasks   *taskshandler.TaskHandler
	Health  gin.HandlerFunc
	// Auth はBearerトークンを検証するミドルウェアです。
	Auth gin.HandlerFunc
}

// NewRouter はすべてのルートを登録したエンジンを返します。
// allowedOrigins が空の場合CORSミドルウェアは使用しません。
func NewRouter(h Handlers, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  allowedOrigins,
			AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health)
	r.HEAD("/healthz", h.Health)
	r.OPTIONS("/healthz", h.Health)
	// 新規ユーザー登録
	r.POST("/users", response.Handle(h.Users.Signup))
	// ログイン（JWT 発行）
	r.POST("/users/login", response.Handle(h.Users.Login))
	// アバター画像の取得
	r.GET("/users/:id/avatar", response.Handle(h.Avatars.Get))

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	auth := r.Group("/")
	auth.Use(h.Auth)
	{
		auth.POST("/users/logout", response.Handle(h.Users.Logout))
		auth.POST("/users/logoutAll", response.Handle(h.Users.LogoutAll))
		auth.GET("/users/me", response.Handle(h.Users.Me))
		auth.PATCH("/users/me", response.Handle(h.Users.UpdateMe))
		auth.DELETE("/users/me", response.Handle(h.Users.DeleteMe))
		auth.POST("/users/me/avatar", response.Handle(h.Avatars.Upload))
		auth.DELETE("/users/me/avatar", response.Handle(h.Avatars.Delete))

		auth.POST("/tasks", response.Handle(h.Tasks.Create))
		auth.GET("/tasks", response.Handle(h.Tasks.List))
		auth.GET("/tasks/:id", response.Handle(h.Tasks.Get))
		auth.PATCH("/tasks/:id", response.Handle(h.Tasks.Update))
		auth.DELETE("/tasks/:id", response.Handle(h.Tasks.Delete))
	}

	r.NoRoute(response.Handle(func(c *gin.Context) (response.Result, error) {
		return response.Result{}, response.NotFound("not found")
	}))

	return r
}
