package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"

	_ "github.com/go-sql-driver/mysql"

	"spellcheck-gateway/internal/config"
	"spellcheck-gateway/internal/modules/spellcheck/domain"
)

const connectTimeout = 5 * time.Second

// SpellCheckHistory BUNモデル
type SpellCheckHistory struct {
	bun.BaseModel `bun:"table:spellcheck_histories"`

	ID           string    `bun:"id,pk,type:varchar(36)"`
	RequestID    string    `bun:"request_id,notnull,type:varchar(36)"`
	Position     int       `bun:"position,notnull,default:0"`
	Field        string    `bun:"field,notnull,type:varchar(32)"`
	Original     string    `bun:"original,notnull,type:text"`
	Corrected    string    `bun:"corrected,notnull,type:text"`
	ErrorCount   int       `bun:"error_count,notnull,default:0"`
	Failed       bool      `bun:"failed,notnull,default:false"`
	ErrorMessage *string   `bun:"error_message,type:text"`
	CreatedAt    time.Time `bun:"created_at,notnull,type:datetime(3)"`
}

// BunHistoryRepository 検査履歴のBUN実装
type BunHistoryRepository struct {
	db *bun.DB
}

// NewBunHistoryRepository 新しいBunHistoryRepositoryを作成。テーブルがなければ作成する
func NewBunHistoryRepository(cfg *config.MySQLConfig) (*BunHistoryRepository, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	sqldb, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := NewBunHistoryRepositoryWithDB(bun.NewDB(sqldb, mysqldialect.New()))

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := repo.Ping(ctx); err != nil {
		_ = repo.Close()
		return nil, err
	}
	if err := repo.CreateTable(ctx); err != nil {
		_ = repo.Close()
		return nil, err
	}

	return repo, nil
}

// NewBunHistoryRepositoryWithDB DBインスタンスから作成（テスト用）
func NewBunHistoryRepositoryWithDB(db *bun.DB) *BunHistoryRepository {
	return &BunHistoryRepository{db: db}
}

// CreateTable 履歴テーブルを作成
func (r *BunHistoryRepository) CreateTable(ctx context.Context) error {
	if _, err := r.db.NewCreateTable().Model((*SpellCheckHistory)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create spellcheck_histories table: %w", err)
	}
	return nil
}

// Create 1リクエスト分の履歴をまとめて保存
func (r *BunHistoryRepository) Create(ctx context.Context, histories []*domain.CheckHistory) error {
	if len(histories) == 0 {
		return nil
	}

	models := make([]SpellCheckHistory, len(histories))
	for i, h := range histories {
		models[i] = toModel(h)
	}

	if _, err := r.db.NewInsert().Model(&models).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create check history: %w", err)
	}
	return nil
}

// FindRecent 新しい順に履歴を取得。同じリクエストの行はフィールド順に並ぶ
func (r *BunHistoryRepository) FindRecent(ctx context.Context, limit int) ([]*domain.CheckHistory, error) {
	var models []SpellCheckHistory
	query := r.db.NewSelect().
		Model(&models).
		Order("created_at DESC", "request_id ASC", "position ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to find check history: %w", err)
	}

	histories := make([]*domain.CheckHistory, len(models))
	for i := range models {
		histories[i] = toEntity(&models[i])
	}
	return histories, nil
}

// Ping 疎通確認
func (r *BunHistoryRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close データベース接続を閉じる
func (r *BunHistoryRepository) Close() error {
	return r.db.Close()
}

func toModel(h *domain.CheckHistory) SpellCheckHistory {
	model := SpellCheckHistory{
		ID:         h.ID,
		RequestID:  h.RequestID,
		Position:   h.Position,
		Field:      string(h.Field),
		Original:   h.Original,
		Corrected:  h.Corrected,
		ErrorCount: h.ErrorCount,
		Failed:     h.Failed,
		CreatedAt:  h.CreatedAt.UTC(),
	}
	if h.ErrorMessage != "" {
		model.ErrorMessage = &h.ErrorMessage
	}
	return model
}

func toEntity(model *SpellCheckHistory) *domain.CheckHistory {
	h := &domain.CheckHistory{
		ID:         model.ID,
		RequestID:  model.RequestID,
		Position:   model.Position,
		Field:      domain.FieldName(model.Field),
		Original:   model.Original,
		Corrected:  model.Corrected,
		ErrorCount: model.ErrorCount,
		Failed:     model.Failed,
		CreatedAt:  model.CreatedAt,
	}
	if model.ErrorMessage != nil {
		h.ErrorMessage = *model.ErrorMessage
	}
	return h
}
