package di

import (
	"errors"
	"fmt"

	"spellcheck-gateway/internal/config"
	sharedCache "spellcheck-gateway/internal/modules/shared/infrastructure/cache"
	sharedDB "spellcheck-gateway/internal/modules/shared/infrastructure/database"
	sharedSpeller "spellcheck-gateway/internal/modules/shared/infrastructure/speller"
	"spellcheck-gateway/internal/modules/spellcheck/domain"
	spellcheckHandler "spellcheck-gateway/internal/modules/spellcheck/presentation/handler"
	spellcheckUsecase "spellcheck-gateway/internal/modules/spellcheck/usecase"
	"spellcheck-gateway/internal/presentation/http/handler"
)

// Version アプリケーションのバージョン
const Version = "1.0.0"

// Container DIコンテナ
type Container struct {
	config *config.Config

	// Shared Infrastructure
	speller     *sharedSpeller.NaverSpeller
	cacheRepo   *sharedCache.RedisRepository
	historyRepo *sharedDB.BunHistoryRepository

	// SpellCheck Module
	spellCheckUseCase *spellcheckUsecase.SpellCheckUseCase
	spellCheckHandler *spellcheckHandler.SpellCheckHandler

	healthHandler *handler.HealthHandler
}

// NewContainer 新しいContainerを作成
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{config: cfg}

	// Shared Infrastructure: Speller
	container.speller = sharedSpeller.NewNaverSpeller(&cfg.Speller)

	// Shared Infrastructure: Cache Repository（任意）
	var cacheRepo domain.CacheRepository
	if cfg.Redis.Enabled {
		repo, err := sharedCache.NewRedisRepository(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache repository: %w", err)
		}
		container.cacheRepo = repo
		cacheRepo = repo
	}

	// Shared Infrastructure: History Repository（任意）
	var historyRepo domain.HistoryRepository
	if cfg.MySQL.Enabled {
		repo, err := sharedDB.NewBunHistoryRepository(&cfg.MySQL)
		if err != nil {
			_ = container.Close()
			return nil, fmt.Errorf("failed to initialize history repository: %w", err)
		}
		container.historyRepo = repo
		historyRepo = repo
	}

	// SpellCheck Module: UseCase
	container.spellCheckUseCase = spellcheckUsecase.NewSpellCheckUseCase(
		container.speller,
		cacheRepo,
		cfg.Redis.TTL,
		historyRepo,
	)

	// SpellCheck Module: Handler
	container.spellCheckHandler = spellcheckHandler.NewSpellCheckHandler(
		container.spellCheckUseCase,
		cfg.Server.MaxBodyBytes,
	)

	// Health
	container.healthHandler = handler.NewHealthHandler(Version, container.speller.ProviderName())
	if container.cacheRepo != nil {
		container.healthHandler.AddComponent("redis", container.cacheRepo)
	}
	if container.historyRepo != nil {
		container.healthHandler.AddComponent("mysql", container.historyRepo)
	}

	return container, nil
}

// Config 設定を取得
func (c *Container) Config() *config.Config {
	return c.config
}

// SpellCheckUseCase 맞춤법検査ユースケースを取得
func (c *Container) SpellCheckUseCase() *spellcheckUsecase.SpellCheckUseCase {
	return c.spellCheckUseCase
}

// SpellCheckHandler 맞춤법検査ハンドラーを取得
func (c *Container) SpellCheckHandler() *spellcheckHandler.SpellCheckHandler {
	return c.spellCheckHandler
}

// HealthHandler ヘルスチェックハンドラーを取得
func (c *Container) HealthHandler() *handler.HealthHandler {
	return c.healthHandler
}

// Close リソースをクローズ。2回目以降は何もしない
func (c *Container) Close() error {
	var errs []error

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close cache repository: %w", err))
		}
		c.cacheRepo = nil
	}

	if c.historyRepo != nil {
		if err := c.historyRepo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close history repository: %w", err))
		}
		c.historyRepo = nil
	}

	return errors.Join(errs...)
}
