package router

import (
	"net/http"

	"spellcheck-gateway/internal/presentation/di"
	"spellcheck-gateway/internal/presentation/http/middleware"
)

// NewRouter 新しいルーターを作成
func NewRouter(container *di.Container) http.Handler {
	mux := http.NewServeMux()

	// 맞춤법検査 API
	spellCheckHandler := container.SpellCheckHandler()
	mux.HandleFunc("/spellcheck", spellCheckHandler.HandleSpellCheck)
	mux.HandleFunc("/spellcheck/history", spellCheckHandler.HandleHistory)

	// Health check
	mux.Handle("/health", container.HealthHandler())

	// ミドルウェアの適用
	var h http.Handler = mux
	h = middleware.Recovery(h)
	h = middleware.CORS(container.Config().Server.AllowedOrigin, "/spellcheck")(h)
	h = middleware.RequestLogger("/health")(h)

	return h
}
