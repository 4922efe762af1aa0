package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"spellcheck-gateway/internal/modules/spellcheck/domain"
	"spellcheck-gateway/internal/modules/spellcheck/usecase"
)

// SpellCheckUseCaseInterface 맞춤법検査ユースケースのインターフェース
type SpellCheckUseCaseInterface interface {
	Check(ctx context.Context, req domain.CheckRequest) *domain.CheckResponse
	RecentHistory(ctx context.Context, limit int) ([]*domain.CheckHistory, error)
	CacheEnabled() bool
}

// SpellCheckHandler 맞춤법検査APIのハンドラー
type SpellCheckHandler struct {
	spellCheckUseCase SpellCheckUseCaseInterface
	maxBodyBytes      int64
}

// NewSpellCheckHandler 新しいSpellCheckHandlerを作成
func NewSpellCheckHandler(spellCheckUseCase SpellCheckUseCaseInterface, maxBodyBytes int64) *SpellCheckHandler {
	return &SpellCheckHandler{
		spellCheckUseCase: spellCheckUseCase,
		maxBodyBytes:      maxBodyBytes,
	}
}

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HistoryResponse 検査履歴のレスポンス
type HistoryResponse struct {
	Success   bool                   `json:"success"`
	Histories []*domain.CheckHistory `json:"histories"`
}

// HandleSpellCheck 맞춤법検査ハンドラー。
// プロバイダーの失敗はフィールドごとのerrorに入れ、常に200を返す
func (h *SpellCheckHandler) HandleSpellCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	// リクエストボディの読み込み
	var body map[string]json.RawMessage
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&body); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.sendError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body == nil {
		h.sendError(w, "Request body must be a JSON object", http.StatusBadRequest)
		return
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		h.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	request, err := checkRequestFromBody(body)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	response := h.spellCheckUseCase.Check(r.Context(), request)

	if h.spellCheckUseCase.CacheEnabled() {
		if response.AllCached() {
			w.Header().Set("X-Cache", "HIT")
		} else {
			w.Header().Set("X-Cache", "MISS")
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// checkRequestFromBody キー名の大文字小文字を区別してフィールドを取り出す。
// 存在しないキーと null は空文字列
func checkRequestFromBody(body map[string]json.RawMessage) (domain.CheckRequest, error) {
	var req domain.CheckRequest
	targets := map[domain.FieldName]*string{
		domain.FieldWorkContent: &req.WorkContent,
		domain.FieldNote:        &req.Note,
		domain.FieldPlan:        &req.Plan,
	}
	for _, field := range domain.Fields() {
		raw, ok := body[string(field)]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, targets[field]); err != nil {
			return domain.CheckRequest{}, fmt.Errorf("%s must be a string", field)
		}
	}
	return req, nil
}

// HandleHistory 検査履歴ハンドラー
func (h *SpellCheckHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.sendError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	histories, err := h.spellCheckUseCase.RecentHistory(r.Context(), limit)
	if errors.Is(err, usecase.ErrHistoryDisabled) {
		h.sendError(w, "Check history is disabled", http.StatusNotFound)
		return
	}
	if err != nil {
		h.sendError(w, "Failed to load check history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		Success:   true,
		Histories: histories,
	})
}

// sendError エラーレスポンスを送信
func (h *SpellCheckHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Success: false,
		Error:   message,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
