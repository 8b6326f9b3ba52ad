// Package mongodb はMongoDBへの接続を提供します。
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// connectTimeout は接続とPingにかける最大時間です。
const connectTimeout = 10 * time.Second

// Config はMongoDBの接続設定です。
type Config struct {
	URL      string
	Database string
}

// LoadConfigFromEnv はMONGODB_URLとMONGODB_DATABASEから接続設定を読み込みます。
func LoadConfigFromEnv() Config {
	cfg := Config{
		URL:      os.Getenv("MONGODB_URL"),
		Database: os.Getenv("MONGODB_DATABASE"),
	}
	if cfg.URL == "" {
		cfg.URL = "mongodb://127.0.0.1:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "task-manager-api"
	}
	return cfg
}

// Connect はMongoDBに接続し、Pingで疎通を確認してからデータベースを返します。
// 呼び出し元は終了時に client.Disconnect を呼ぶ必要があります。
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongodb ping: %w", err)
	}

	slog.Info("MongoDB connection successful", "database", cfg.Database)
	return client, client.Database(cfg.Database), nil
}
