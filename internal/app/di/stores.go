// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"task_backend/internal/app/config"
	tasksadapters "task_backend/internal/feature/tasks/adapters"
	tasksusecase "task_backend/internal/feature/tasks/usecase"
	usersadapters "task_backend/internal/feature/users/adapters"
	usersusecase "task_backend/internal/feature/users/usecase"
	"task_backend/internal/platform/db"
	"task_backend/internal/platform/http/handler"
	"task_backend/internal/platform/mongodb"
)

// userStore はユーザーとアバターの両方を扱うアダプターです。
type userStore interface {
	usersusecase.UserRepository
	usersusecase.AvatarRepository
}

// Stores は主データベース上のリポジトリ群です。
type Stores struct {
	Users    usersusecase.UserRepository
	Avatars  usersusecase.AvatarRepository
	Sessions usersusecase.SessionRepository
	Tasks    tasksusecase.TaskRepository

	// Checks は /healthz で疎通を確認する依存先です。
	Checks []handler.Check

	closers []func(context.Context) error
}

// OpenStores は DB_DRIVER に応じてSQLまたはMongoDBのストアを開きます。
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.DB.Driver == db.DriverMongo {
		client, mdb, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		stores := NewMongoStores(mdb)
		stores.closers = append(stores.closers, client.Disconnect)
		stores.Checks = append(stores.Checks, handler.Check{
			Name: "mongodb",
			Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
		})
		if cfg.DB.RunMigrations {
			if err := ensureMongoIndexes(ctx, mdb); err != nil {
				_ = stores.Close(ctx)
				return nil, err
			}
		}
		return stores, nil
	}

	gdb, err := db.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := MigrateSQL(gdb, cfg.DB); err != nil {
		return nil, err
	}
	slog.Info("database ready", "driver", cfg.DB.Driver)
	return NewSQLStores(gdb), nil
}

// MigrateSQL はSQLストアのテーブルを作成・更新します。
func MigrateSQL(gdb *gorm.DB, cfg db.Config) error {
	return db.Migrate(gdb, cfg,
		&usersadapters.UserModel{},
		&usersadapters.SessionModel{},
		&tasksadapters.TaskModel{},
	)
}

// NewSQLStores はGORMのアダプターでStoresを組み立てます。
func NewSQLStores(gdb *gorm.DB) *Stores {
	var users userStore = usersadapters.NewUserGorm(gdb)
	stores := &Stores{
		Users:    users,
		Avatars:  users,
		Sessions: usersadapters.NewSessionGorm(gdb),
		Tasks:    tasksadapters.NewTaskGorm(gdb),
	}
	stores.Checks = []handler.Check{{
		Name: "database",
		Ping: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	stores.closers = []func(context.Context) error{func(context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}}
	return stores
}

// NewMongoStores はMongoDBのアダプターでStoresを組み立てます。
func NewMongoStores(mdb *mongo.Database) *Stores {
	var users userStore = usersadapters.NewUserMongo(mdb)
	return &Stores{
		Users:    users,
		Avatars:  users,
		Sessions: usersadapters.NewSessionMongo(mdb),
		Tasks:    tasksadapters.NewTaskMongo(mdb),
	}
}

func ensureMongoIndexes(ctx context.Context, mdb *mongo.Database) error {
	if err := usersadapters.NewUserMongo(mdb).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	if err := tasksadapters.NewTaskMongo(mdb).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create task indexes: %w", err)
	}
	return nil
}

// Close は開いた接続をすべて閉じます。
func (s *Stores) Close(ctx context.Context) error {
	var errs []error
	for _, closeFn := range s.closers {
		errs = append(errs, closeFn(ctx))
	}
	return errors.Join(errs...)
}
