package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"spellcheck-gateway/internal/modules/spellcheck/domain"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100

	historySaveTimeout = 5 * time.Second
)

// ErrHistoryDisabled 検査履歴が無効
var ErrHistoryDisabled = errors.New("check history is disabled")

// SpellCheckUseCase 3フィールドの맞춤법検査ユースケース
type SpellCheckUseCase struct {
	speller     domain.Speller
	cacheRepo   domain.CacheRepository
	cacheTTL    time.Duration
	historyRepo domain.HistoryRepository
	now         func() time.Time
}

// NewSpellCheckUseCase 新しいSpellCheckUseCaseを作成。
// cacheRepo, historyRepo は nil なら使用しない
func NewSpellCheckUseCase(
	speller domain.Speller,
	cacheRepo domain.CacheRepository,
	cacheTTL time.Duration,
	historyRepo domain.HistoryRepository,
) *SpellCheckUseCase {
	return &SpellCheckUseCase{
		speller:     speller,
		cacheRepo:   cacheRepo,
		cacheTTL:    cacheTTL,
		historyRepo: historyRepo,
		now:         time.Now,
	}
}

// Check 各フィールドを並行して検査する。
// プロバイダーの失敗はフィールド単位の結果に閉じ込め、エラーとしては返さない
func (uc *SpellCheckUseCase) Check(ctx context.Context, req domain.CheckRequest) *domain.CheckResponse {
	fields := domain.Fields()
	results := make([]domain.FieldResult, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	for i, field := range fields {
		g.Go(func() error {
			results[i] = uc.checkField(gctx, field, req.Text(field))
			return nil
		})
	}
	_ = g.Wait()

	resp := &domain.CheckResponse{}
	for i, field := range fields {
		resp.Set(field, results[i])
	}

	uc.saveHistory(ctx, resp)

	return resp
}

// checkField 1フィールド分の検査。panicも失敗として扱う
func (uc *SpellCheckUseCase) checkField(ctx context.Context, field domain.FieldName, text string) (result domain.FieldResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Speller panic recovered",
				"field", field,
				"panic", r,
			)
			result = domain.NewFailureResult(text, fmt.Errorf("panic: %v", r))
		}
	}()

	if checked, ok := uc.getCache(ctx, text); ok {
		result = domain.NewSuccessResult(text, checked)
		result.Cached = true
		return result
	}

	checked, err := uc.speller.Check(ctx, text)
	if err == nil && checked == nil {
		err = errors.New("speller returned no result")
	}
	if err != nil {
		slog.Warn("Spell check failed",
			"field", field,
			"provider", uc.speller.ProviderName(),
			"error", err,
		)
		return domain.NewFailureResult(text, err)
	}

	uc.setCache(ctx, text, checked)

	return domain.NewSuccessResult(text, checked)
}

func (uc *SpellCheckUseCase) getCache(ctx context.Context, text string) (*domain.Checked, bool) {
	if uc.cacheRepo == nil {
		return nil, false
	}

	key := generateCacheKey(text)
	data, err := uc.cacheRepo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			slog.Warn("Failed to read cache entry", "error", err)
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var checked domain.Checked
	if err := json.Unmarshal(data, &checked); err != nil {
		slog.Warn("Discarding broken cache entry", "error", err)
		if err := uc.cacheRepo.Delete(ctx, key); err != nil {
			slog.Warn("Failed to delete broken cache entry", "error", err)
		}
		return nil, false
	}
	return &checked, true
}

func (uc *SpellCheckUseCase) setCache(ctx context.Context, text string, checked *domain.Checked) {
	if uc.cacheRepo == nil {
		return
	}

	data, err := json.Marshal(checked)
	if err != nil {
		slog.Warn("Failed to encode cache entry", "error", err)
		return
	}

	if err := uc.cacheRepo.Set(ctx, generateCacheKey(text), data, uc.cacheTTL); err != nil {
		slog.Warn("Failed to store cache entry", "error", err)
	}
}

func (uc *SpellCheckUseCase) saveHistory(ctx context.Context, resp *domain.CheckResponse) {
	if uc.historyRepo == nil {
		return
	}

	// 呼び出し元が切断しても履歴は保存する
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historySaveTimeout)
	defer cancel()

	if err := uc.historyRepo.Create(saveCtx, domain.NewCheckHistories(resp, uc.now())); err != nil {
		slog.Warn("Failed to save check history", "error", err)
	}
}

// RecentHistory 最近の検査履歴を返す
func (uc *SpellCheckUseCase) RecentHistory(ctx context.Context, limit int) ([]*domain.CheckHistory, error) {
	if uc.historyRepo == nil {
		return nil, ErrHistoryDisabled
	}

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	histories, err := uc.historyRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load check history: %w", err)
	}
	return histories, nil
}

// HistoryEnabled 検査履歴が有効かどうか
func (uc *SpellCheckUseCase) HistoryEnabled() bool {
	return uc.historyRepo != nil
}

// CacheEnabled キャッシュが有効かどうか
func (uc *SpellCheckUseCase) CacheEnabled() bool {
	return uc.cacheRepo != nil
}

// GetProviderName プロバイダー名を取得
func (uc *SpellCheckUseCase) GetProviderName() string {
	return uc.speller.ProviderName()
}

// generateCacheKey キャッシュキーを生成
func generateCacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return "spellcheck:" + hex.EncodeToString(hash[:])
}
