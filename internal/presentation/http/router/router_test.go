package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spellcheck-gateway/internal/config"
	"spellcheck-gateway/internal/modules/spellcheck/domain"
	"spellcheck-gateway/internal/presentation/di"
)

// newFakeSpellerServer 入力に応じた結果を返すスペルチェックAPIの代替
func newFakeSpellerServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch q := r.URL.Query().Get("q"); q {
		case "hello wrold":
			_, _ = w.Write([]byte(`{"message":{"result":{"errata_count":1,"html":"hello <em class='red_text'>world</em>"}}}`))
		case "fail":
			w.WriteHeader(http.StatusBadGateway)
		default:
			resp, _ := json.Marshal(map[string]any{
				"message": map[string]any{"result": map[string]any{"errata_count": 0, "html": q}},
			})
			_, _ = w.Write(resp)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Speller.Endpoint = newFakeSpellerServer(t).URL
	cfg.Speller.PassportKey = "test-key"

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	return NewRouter(container)
}

func TestNewRouter(t *testing.T) {
	if newTestRouter(t) == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name           string
		method         string
		expectedStatus int
	}{
		{name: "正常系: GET /health", method: http.MethodGet, expectedStatus: http.StatusOK},
		{name: "異常系: POST /health", method: http.MethodPost, expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/health", nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

func TestRouter_SpellCheckEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/spellcheck",
		strings.NewReader(`{"workContent":"hello wrold","note":"","plan":"fail"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200, body = %s", rec.Code, rec.Body.String())
	}

	var resp domain.CheckResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.WorkContent.Corrected != "hello world" || resp.WorkContent.ErrorCount != 1 {
		t.Errorf("workContent = %+v", resp.WorkContent)
	}
	if len(resp.WorkContent.ErrorList) != 1 || resp.WorkContent.ErrorList[0].Token != "world" ||
		resp.WorkContent.ErrorList[0].Type != "WRONG_SPELLING" {
		t.Errorf("workContent.errorList = %+v", resp.WorkContent.ErrorList)
	}

	if resp.Note.Corrected != "" || resp.Note.ErrorCount != 0 || resp.Note.Error != "" {
		t.Errorf("note = %+v", resp.Note)
	}

	if !strings.HasPrefix(resp.Plan.Error, domain.FailurePrefix) || resp.Plan.Corrected != "fail" {
		t.Errorf("plan = %+v", resp.Plan)
	}
	if rec.Header().Get("X-Cache") != "" {
		t.Error("X-Cache should not be set when cache is disabled")
	}
}

func TestRouter_CORS(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		path       string
		origin     string
		wantOrigin string
	}{
		{
			name:       "正常系: 許可オリジンのプリフライト",
			path:       "/spellcheck",
			origin:     "http://localhost:8080",
			wantOrigin: "http://localhost:8080",
		},
		{
			name:       "異常系: 他オリジン",
			path:       "/spellcheck",
			origin:     "http://example.com",
			wantOrigin: "",
		},
		{
			name:       "境界値: /health には付与しない",
			path:       "/health",
			origin:     "http://localhost:8080",
			wantOrigin: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, tt.path, nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestRouter_HistoryDisabled(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/spellcheck/history", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want 404", rec.Code)
	}
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want 404", rec.Code)
	}
}
