package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spellcheck-gateway/internal/modules/spellcheck/domain"
	"spellcheck-gateway/internal/modules/spellcheck/usecase"
)

// MockSpellCheckUseCase ユースケースのモック
type MockSpellCheckUseCase struct {
	CheckFunc         func(ctx context.Context, req domain.CheckRequest) *domain.CheckResponse
	RecentHistoryFunc func(ctx context.Context, limit int) ([]*domain.CheckHistory, error)
	CacheEnabledValue bool
	lastRequest       *domain.CheckRequest
}

func (m *MockSpellCheckUseCase) Check(ctx context.Context, req domain.CheckRequest) *domain.CheckResponse {
	m.lastRequest = &req
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, req)
	}
	resp := &domain.CheckResponse{}
	for _, field := range domain.Fields() {
		text := req.Text(field)
		resp.Set(field, domain.NewSuccessResult(text, domain.NewChecked(text, text)))
	}
	return resp
}

func (m *MockSpellCheckUseCase) RecentHistory(ctx context.Context, limit int) ([]*domain.CheckHistory, error) {
	if m.RecentHistoryFunc != nil {
		return m.RecentHistoryFunc(ctx, limit)
	}
	return []*domain.CheckHistory{}, nil
}

func (m *MockSpellCheckUseCase) CacheEnabled() bool {
	return m.CacheEnabledValue
}

func TestSpellCheckHandler_HandleSpellCheck(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		body           string
		wantStatusCode int
		wantRequest    *domain.CheckRequest
	}{
		{
			name:           "正常系: 3フィールド",
			method:         http.MethodPost,
			body:           `{"workContent":"hello wrold","note":"","plan":"ok"}`,
			wantStatusCode: http.StatusOK,
			wantRequest:    &domain.CheckRequest{WorkContent: "hello wrold", Note: "", Plan: "ok"},
		},
		{
			name:           "正常系: フィールド欠落は空文字列",
			method:         http.MethodPost,
			body:           `{"note":"메모"}`,
			wantStatusCode: http.StatusOK,
			wantRequest:    &domain.CheckRequest{Note: "메모"},
		},
		{
			name:           "正常系: 空オブジェクト",
			method:         http.MethodPost,
			body:           `{}`,
			wantStatusCode: http.StatusOK,
			wantRequest:    &domain.CheckRequest{},
		},
		{
			name:           "正常系: 未知のフィールドは無視",
			method:         http.MethodPost,
			body:           `{"plan":"p","extra":1}`,
			wantStatusCode: http.StatusOK,
			wantRequest:    &domain.CheckRequest{Plan: "p"},
		},
		{
			name:           "境界値: キー名は大文字小文字を区別する",
			method:         http.MethodPost,
			body:           `{"WORKCONTENT":"x","Note":"y","plan":"z"}`,
			wantStatusCode: http.StatusOK,
			wantRequest:    &domain.CheckRequest{Plan: "z"},
		},
		{
			name:           "境界値: nullは空文字列",
			method:         http.MethodPost,
			body:           `{"workContent":null,"note":"n"}`,
			wantStatusCode: http.StatusOK,
			wantRequest:    &domain.CheckRequest{Note: "n"},
		},
		{
			name:           "異常系: GETは許可しない",
			method:         http.MethodGet,
			body:           ``,
			wantStatusCode: http.StatusMethodNotAllowed,
		},
		{
			name:           "異常系: 不正なJSON",
			method:         http.MethodPost,
			body:           `{"workContent":`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "異常系: 型が違う",
			method:         http.MethodPost,
			body:           `{"workContent":123}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "異常系: 配列",
			method:         http.MethodPost,
			body:           `["a"]`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "異常系: null",
			method:         http.MethodPost,
			body:           `null`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "異常系: 空ボディ",
			method:         http.MethodPost,
			body:           ``,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "異常系: 後続データあり",
			method:         http.MethodPost,
			body:           `{"plan":"a"}{"plan":"b"}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockSpellCheckUseCase{}
			h := NewSpellCheckHandler(mock, 1<<20)

			req := httptest.NewRequest(tt.method, "/spellcheck", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			h.HandleSpellCheck(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Fatalf("status code = %d, want %d, body = %s", rec.Code, tt.wantStatusCode, rec.Body.String())
			}
			if rec.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %s", rec.Header().Get("Content-Type"))
			}

			if tt.wantStatusCode != http.StatusOK {
				var errResp ErrorResponse
				if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
					t.Fatalf("Failed to decode error response: %v", err)
				}
				if errResp.Success || errResp.Error == "" {
					t.Errorf("error response = %+v", errResp)
				}
				if mock.lastRequest != nil {
					t.Error("use case should not be called")
				}
				return
			}

			if *mock.lastRequest != *tt.wantRequest {
				t.Errorf("request = %+v, want %+v", *mock.lastRequest, *tt.wantRequest)
			}

			var raw map[string]map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			for _, field := range domain.Fields() {
				if _, ok := raw[string(field)]; !ok {
					t.Errorf("missing key %s", field)
				}
			}
		})
	}
}

func TestSpellCheckHandler_HandleSpellCheck_FieldFailureIs200(t *testing.T) {
	mock := &MockSpellCheckUseCase{
		CheckFunc: func(ctx context.Context, req domain.CheckRequest) *domain.CheckResponse {
			resp := &domain.CheckResponse{}
			resp.Set(domain.FieldWorkContent, domain.NewSuccessResult(req.WorkContent, domain.NewChecked(req.WorkContent, req.WorkContent)))
			resp.Set(domain.FieldNote, domain.NewSuccessResult(req.Note, domain.NewChecked(req.Note, req.Note)))
			resp.Set(domain.FieldPlan, domain.NewFailureResult(req.Plan, context.DeadlineExceeded))
			return resp
		},
	}
	h := NewSpellCheckHandler(mock, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/spellcheck", strings.NewReader(`{"workContent":"a","note":"b","plan":"c"}`))
	rec := httptest.NewRecorder()

	h.HandleSpellCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}

	var resp domain.CheckResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Plan.Error == "" || resp.Plan.Corrected != "c" || resp.Plan.ErrorCount != 0 {
		t.Errorf("plan = %+v", resp.Plan)
	}
	if resp.WorkContent.Error != "" || resp.Note.Error != "" {
		t.Error("other fields should not carry errors")
	}
}

func TestSpellCheckHandler_HandleSpellCheck_BodyTooLarge(t *testing.T) {
	mock := &MockSpellCheckUseCase{}
	h := NewSpellCheckHandler(mock, 16)

	body := `{"workContent":"` + strings.Repeat("가", 100) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/spellcheck", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleSpellCheck(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestSpellCheckHandler_HandleSpellCheck_CacheHeader(t *testing.T) {
	tests := []struct {
		name         string
		cacheEnabled bool
		allCached    bool
		wantHeader   string
	}{
		{name: "正常系: キャッシュ無効", cacheEnabled: false, wantHeader: ""},
		{name: "正常系: MISS", cacheEnabled: true, allCached: false, wantHeader: "MISS"},
		{name: "正常系: HIT", cacheEnabled: true, allCached: true, wantHeader: "HIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockSpellCheckUseCase{
				CacheEnabledValue: tt.cacheEnabled,
				CheckFunc: func(ctx context.Context, req domain.CheckRequest) *domain.CheckResponse {
					resp := &domain.CheckResponse{}
					for _, field := range domain.Fields() {
						result := domain.NewSuccessResult("", domain.NewChecked("", ""))
						result.Cached = tt.allCached
						resp.Set(field, result)
					}
					return resp
				},
			}
			h := NewSpellCheckHandler(mock, 1<<20)

			req := httptest.NewRequest(http.MethodPost, "/spellcheck", strings.NewReader(`{}`))
			rec := httptest.NewRecorder()
			h.HandleSpellCheck(rec, req)

			if got := rec.Header().Get("X-Cache"); got != tt.wantHeader {
				t.Errorf("X-Cache = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestSpellCheckHandler_HandleHistory(t *testing.T) {
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		method         string
		query          string
		historyErr     error
		wantStatusCode int
		wantLimit      int
	}{
		{
			name:           "正常系: デフォルト件数",
			method:         http.MethodGet,
			wantStatusCode: http.StatusOK,
			wantLimit:      0,
		},
		{
			name:           "正常系: 件数指定",
			method:         http.MethodGet,
			query:          "?limit=5",
			wantStatusCode: http.StatusOK,
			wantLimit:      5,
		},
		{
			name:           "異常系: 不正な件数",
			method:         http.MethodGet,
			query:          "?limit=abc",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "異常系: 負の件数",
			method:         http.MethodGet,
			query:          "?limit=-1",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "異常系: 履歴無効",
			method:         http.MethodGet,
			historyErr:     usecase.ErrHistoryDisabled,
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "異常系: DBエラー",
			method:         http.MethodGet,
			historyErr:     errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
		},
		{
			name:           "異常系: POSTは許可しない",
			method:         http.MethodPost,
			wantStatusCode: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLimit := -1
			mock := &MockSpellCheckUseCase{
				RecentHistoryFunc: func(ctx context.Context, limit int) ([]*domain.CheckHistory, error) {
					gotLimit = limit
					if tt.historyErr != nil {
						return nil, tt.historyErr
					}
					return []*domain.CheckHistory{
						{ID: "id-1", Field: domain.FieldNote, Original: "a", Corrected: "a", CreatedAt: created},
					}, nil
				},
			}
			h := NewSpellCheckHandler(mock, 1<<20)

			req := httptest.NewRequest(tt.method, "/spellcheck/history"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.HandleHistory(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Fatalf("status code = %d, want %d", rec.Code, tt.wantStatusCode)
			}
			if tt.wantStatusCode != http.StatusOK {
				return
			}
			if gotLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", gotLimit, tt.wantLimit)
			}

			var resp HistoryResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if !resp.Success || len(resp.Histories) != 1 || resp.Histories[0].ID != "id-1" {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}
