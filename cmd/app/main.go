package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"spellcheck-gateway/internal/config"
	"spellcheck-gateway/internal/presentation/di"
	"spellcheck-gateway/internal/presentation/http/router"
)

const (
	defaultPort     = "5001"
	shutdownTimeout = 30 * time.Second

	defaultWriteTimeout = 30 * time.Second
	// 検査タイムアウト後にレスポンスを書き出すための余裕
	writeTimeoutMargin = 10 * time.Second
)

// AppConfig アプリケーション設定
type AppConfig struct {
	ConfigPath string
	Port       string
}

// ServerInterface サーバーインターフェース（Seam化）
type ServerInterface interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App アプリケーション構造体（Seamパターン）
type App struct {
	config     *AppConfig
	container  *di.Container
	server     *http.Server
	serverSeam ServerInterface // テスト用のSeam
}

// NewApp 新しいAppを作成
func NewApp(appCfg *AppConfig) (*App, error) {
	if appCfg.Port == "" {
		appCfg.Port = defaultPort
	}

	// 設定の読み込み
	cfg, err := config.Load(appCfg.ConfigPath)
	if err != nil {
		slog.Warn("Failed to load config. Using defaults.", "path", appCfg.ConfigPath, "error", err)
		cfg = config.DefaultConfig()
	}

	slog.SetDefault(newLogger(&cfg.Log, os.Stderr))

	// DIコンテナの初期化
	container, err := di.NewContainer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DI container: %w", err)
	}

	server := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router.NewRouter(container),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout(cfg.Speller.Timeout),
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		config:     appCfg,
		container:  container,
		server:     server,
		serverSeam: server,
	}, nil
}

// writeTimeout 検査タイムアウトより長いWriteTimeoutを返す
func writeTimeout(spellerTimeout time.Duration) time.Duration {
	return max(defaultWriteTimeout, spellerTimeout+writeTimeoutMargin)
}

// newLogger ログ設定からslogのロガーを作成
func newLogger(cfg *config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Start サーバーを起動
func (a *App) Start() error {
	a.logStartup()
	return a.serverSeam.ListenAndServe()
}

// logStartup 起動情報を出力
func (a *App) logStartup() {
	uc := a.container.SpellCheckUseCase()
	slog.Info("Checker Gateway starting",
		"version", di.Version,
		"provider", uc.GetProviderName(),
		"addr", "http://0.0.0.0:"+a.config.Port,
		"allowed_origin", a.container.Config().Server.AllowedOrigin,
		"cache", uc.CacheEnabled(),
		"history", uc.HistoryEnabled(),
	)
	slog.Info("Endpoints",
		"spellcheck", "POST /spellcheck",
		"history", "GET /spellcheck/history",
		"health", "GET /health",
	)
}

// Shutdown サーバーをシャットダウン
func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down server...")

	if err := a.serverSeam.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if err := a.container.Close(); err != nil {
		return fmt.Errorf("container close failed: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}

// Run アプリケーションを実行（SIGINT/SIGTERMでグレースフルシャットダウン）
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext ctx がキャンセルされるまでサーバーを実行
func (a *App) RunContext(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := a.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		_ = a.container.Close()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return a.Shutdown(shutdownCtx)
	}
}

// appConfigFromEnv 環境変数から起動設定を組み立てる
func appConfigFromEnv() *AppConfig {
	configPath := os.Getenv("SPELLCHECK_CONFIG")
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			slog.Warn("Failed to get home directory. Using current directory.", "error", err)
			homeDir = "."
		}
		configPath = filepath.Join(homeDir, ".spellcheck-gateway", "config.yaml")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	return &AppConfig{
		ConfigPath: configPath,
		Port:       port,
	}
}

// writeDefaultConfig デフォルト設定を書き出す。既存のファイルは上書きしない
func writeDefaultConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return config.DefaultConfig().Save(configPath)
}

// realMain 実際のmain処理（テスト可能にするため分離）
func realMain() error {
	appConfig := appConfigFromEnv()
	if len(os.Args) > 1 && os.Args[1] == "init-config" {
		if err := writeDefaultConfig(appConfig.ConfigPath); err != nil {
			return err
		}
		slog.Info("Wrote default config", "path", appConfig.ConfigPath)
		return nil
	}

	app, err := NewApp(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}
	return app.Run()
}

func main() {
	if err := realMain(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}
