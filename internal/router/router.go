package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"komo-backend/internal/handlers"
	"komo-backend/internal/middleware"
	"komo-backend/internal/websocket"
)

func New(
	chatHandler *handlers.ChatHandler,
	wsHub *websocket.Hub,
	staticHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS)
	r.Use(middleware.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Chat Routes ────
	r.Route("/chat", func(r chi.Router) {
		r.Get("/", chatHandler.Status)
		r.Post("/", chatHandler.Chat)
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	// ──── Static Content ────
	r.Get("/*", staticHandler.ServeHTTP)
	r.Head("/*", staticHandler.ServeHTTP)

	return r
}
