package domain

import (
	"context"
	"errors"
	"time"
)

// CacheRepository キャッシュリポジトリのインターフェース
type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// HistoryRepository 検査履歴リポジトリのインターフェース
type HistoryRepository interface {
	Create(ctx context.Context, histories []*CheckHistory) error
	FindRecent(ctx context.Context, limit int) ([]*CheckHistory, error)
}

// ErrCacheMiss キャッシュにキーが存在しない
var ErrCacheMiss = errors.New("cache miss")
