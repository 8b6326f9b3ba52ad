package di

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"task_backend/internal/app/config"
	"task_backend/internal/app/router"
	taskshandler "task_backend/internal/feature/tasks/transport/handler"
	tasksusecase "task_backend/internal/feature/tasks/usecase"
	usershandler "task_backend/internal/feature/users/transport/handler"
	usersusecase "task_backend/internal/feature/users/usecase"
	"task_backend/internal/platform/cache"
	"task_backend/internal/platform/http/handler"
	"task_backend/internal/platform/imaging"
	jwtmw "task_backend/internal/platform/jwt"
)

// avatarCacheNamespace はアバターキャッシュのキー接頭辞です。
const avatarCacheNamespace = "avatars"

// App は組み立て済みのアプリケーションです。
type App struct {
	Router *gin.Engine
	Users  *usersusecase.UserUsecase
	Tasks  *tasksusecase.TaskUsecase
}

// NewApp はストアとクライアントからユースケース・ハンドラー・ルーターを組み立てます。
// rdb が nil の場合、セッションは主データベースに保存され、アバターはキャッシュされません。
func NewApp(cfg *config.Config, stores *Stores, rdb *redis.Client, notifier usersusecase.Notifier) *App {
	// Repository
	sessions := NewSessionRepository(rdb, stores.Sessions)
	avatars := cache.NewCachingAvatarRepository(rdb, cfg.AvatarCacheTTL, stores.Avatars, avatarCacheNamespace)
	tokens := jwtmw.NewManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Usecase
	tasksUC := tasksusecase.NewTaskUsecase(stores.Tasks)
	usersUC := usersusecase.NewUserUsecase(stores.Users, sessions, tasksUC, avatars, tokens, notifier)
	avatarUC := usersusecase.NewAvatarUsecase(avatars, imaging.NewAvatarResizer())

	// Handler
	checks := stores.Checks
	if rdb != nil {
		checks = append(checks, handler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	handlers := router.Handlers{
		Users:   usershandler.NewUserHandler(usersUC),
		Avatars: usershandler.NewAvatarHandler(avatarUC),
		Tasks:   taskshandler.NewTaskHandler(tasksUC),
		Health:  handler.Health(checks...),
		Auth:    jwtmw.AuthRequired(tokens, usersUC),
	}

	return &App{
		Router: router.NewRouter(handlers, cfg.CORSAllowedOrigins),
		Users:  usersUC,
		Tasks:  tasksUC,
	}
}
