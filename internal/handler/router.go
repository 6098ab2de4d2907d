package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kazhorse/line-realestate-bot/internal/handler/line"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(lineHandler *line.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// 死活監視用エンドポイント
	r.Get("/", handleRoot)

	// LINE プラットフォームからの Webhook
	lineHandler.RegisterRoutes(r)

	return r
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "LINE Bot with GPT is running!"})
}
