package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// Pinger 依存コンポーネントの疎通確認
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler ヘルスチェックのハンドラー
type HealthHandler struct {
	version    string
	provider   string
	components map[string]Pinger
}

// NewHealthHandler 新しいHealthHandlerを作成
func NewHealthHandler(version, provider string) *HealthHandler {
	return &HealthHandler{
		version:    version,
		provider:   provider,
		components: make(map[string]Pinger),
	}
}

// AddComponent 疎通確認の対象を追加
func (h *HealthHandler) AddComponent(name string, p Pinger) {
	h.components[name] = p
}

// HealthResponse ヘルスチェックのレスポンス
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Provider   string            `json:"provider"`
	Components map[string]string `json:"components,omitempty"`
}

// ServeHTTP ヘルスチェックを処理
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:   "ok",
		Version:  h.version,
		Provider: h.provider,
	}
	statusCode := http.StatusOK

	if len(h.components) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		response.Components = make(map[string]string, len(h.components))
		for name, p := range h.components {
			if err := p.Ping(ctx); err != nil {
				response.Components[name] = "error: " + err.Error()
				response.Status = "degraded"
				statusCode = http.StatusServiceUnavailable
				continue
			}
			response.Components[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
