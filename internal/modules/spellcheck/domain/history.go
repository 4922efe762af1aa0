package domain

import (
	"time"

	"github.com/google/uuid"
)

// CheckHistory フィールド単位の検査履歴
type CheckHistory struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"requestId"`
	Position     int       `json:"position"`
	Field        FieldName `json:"field"`
	Original     string    `json:"original"`
	Corrected    string    `json:"corrected"`
	ErrorCount   int       `json:"errors"`
	Failed       bool      `json:"failed"`
	ErrorMessage string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewCheckHistory 検査結果から履歴を作成
func NewCheckHistory(field FieldName, result FieldResult, now time.Time) *CheckHistory {
	return &CheckHistory{
		ID:           uuid.NewString(),
		Field:        field,
		Original:     result.Original,
		Corrected:    result.Corrected,
		ErrorCount:   result.ErrorCount,
		Failed:       result.Failed(),
		ErrorMessage: result.Error,
		CreatedAt:    now,
	}
}

// NewCheckHistories レスポンス全体から3フィールド分の履歴を作成。
// 同じリクエストの履歴は RequestID を共有し、Position がフィールド順になる
func NewCheckHistories(resp *CheckResponse, now time.Time) []*CheckHistory {
	requestID := uuid.NewString()
	histories := make([]*CheckHistory, 0, len(Fields()))
	for i, field := range Fields() {
		h := NewCheckHistory(field, resp.Get(field), now)
		h.RequestID = requestID
		h.Position = i
		histories = append(histories, h)
	}
	return histories
}
