// Package testcontainer 結合テスト用のRedis/MySQLコンテナ
package testcontainer

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"spellcheck-gateway/internal/config"
)

const (
	redisImage = "redis:7-alpine"
	mysqlImage = "mysql:8.0"
)

// RedisContainer Redisコンテナのラッパー
type RedisContainer struct {
	Container *rediscontainer.RedisContainer
	Host      string
	Port      string
}

// MySQLContainer MySQLコンテナのラッパー
type MySQLContainer struct {
	Container *mysql.MySQLContainer
	Host      string
	Port      string
	Database  string
	User      string
	Password  string
}

// StartRedis Redisコンテナを起動。テスト終了時に停止する
func StartRedis(ctx context.Context, t testing.TB) (*RedisContainer, error) {
	t.Helper()

	container, err := rediscontainer.Run(ctx,
		redisImage,
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start redis container: %w", err)
	}
	rc := &RedisContainer{Container: container}
	t.Cleanup(func() { _ = rc.Close(context.Background()) })

	if rc.Host, err = container.Host(ctx); err != nil {
		return nil, fmt.Errorf("failed to get redis host: %w", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		return nil, fmt.Errorf("failed to get redis port: %w", err)
	}
	rc.Port = port.Port()

	return rc, nil
}

// StartMySQL MySQLコンテナを起動。テスト終了時に停止する
func StartMySQL(ctx context.Context, t testing.TB) (*MySQLContainer, error) {
	t.Helper()

	const (
		database = "spellcheck"
		user     = "spellcheck"
		password = "spellcheck"
	)

	container, err := mysql.Run(ctx,
		mysqlImage,
		mysql.WithDatabase(database),
		mysql.WithUsername(user),
		mysql.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start mysql container: %w", err)
	}
	mc := &MySQLContainer{
		Container: container,
		Database:  database,
		User:      user,
		Password:  password,
	}
	t.Cleanup(func() { _ = mc.Close(context.Background()) })

	if mc.Host, err = container.Host(ctx); err != nil {
		return nil, fmt.Errorf("failed to get mysql host: %w", err)
	}
	port, err := container.MappedPort(ctx, "3306/tcp")
	if err != nil {
		return nil, fmt.Errorf("failed to get mysql port: %w", err)
	}
	mc.Port = port.Port()

	return mc, nil
}

// Close Redisコンテナを停止
func (r *RedisContainer) Close(ctx context.Context) error {
	if r.Container == nil {
		return nil
	}
	err := r.Container.Terminate(ctx)
	r.Container = nil
	return err
}

// Close MySQLコンテナを停止
func (m *MySQLContainer) Close(ctx context.Context) error {
	if m.Container == nil {
		return nil
	}
	err := m.Container.Terminate(ctx)
	m.Container = nil
	return err
}

// Config アプリケーション設定のRedisセクションに変換
func (r *RedisContainer) Config() *config.RedisConfig {
	port, _ := strconv.Atoi(r.Port)
	return &config.RedisConfig{
		Enabled: true,
		Host:    r.Host,
		Port:    port,
		TTL:     time.Hour,
	}
}

// Config アプリケーション設定のMySQLセクションに変換
func (m *MySQLContainer) Config() *config.MySQLConfig {
	port, _ := strconv.Atoi(m.Port)
	return &config.MySQLConfig{
		Enabled:  true,
		Host:     m.Host,
		Port:     port,
		User:     m.User,
		Password: m.Password,
		Database: m.Database,
	}
}

// ConnectionString MySQL接続文字列を取得
func (m *MySQLContainer) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true",
		m.User, m.Password, m.Host, m.Port, m.Database)
}
