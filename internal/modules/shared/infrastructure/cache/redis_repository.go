package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"spellcheck-gateway/internal/config"
	"spellcheck-gateway/internal/modules/spellcheck/domain"
)

const connectTimeout = 5 * time.Second

// RedisRepository 検査結果キャッシュのRedis実装
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository 新しいRedisRepositoryを作成。接続できなければエラー
func NewRedisRepository(cfg *config.RedisConfig) (*RedisRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	repo := NewRedisRepositoryWithClient(client)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := repo.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return repo, nil
}

// NewRedisRepositoryWithClient 既存のクライアントからRedisRepositoryを作成
func NewRedisRepositoryWithClient(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// Set 検査結果を保存
func (r *RedisRepository) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if err := r.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set cache %s: %w", key, err)
	}
	return nil
}

// Get 検査結果を取得。存在しなければ domain.ErrCacheMiss
func (r *RedisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCacheMiss, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache %s: %w", key, err)
	}
	return val, nil
}

// Delete 検査結果を削除
func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache %s: %w", key, err)
	}
	return nil
}

// Ping 疎通確認
func (r *RedisRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

// Close 接続を閉じる
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
