package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// Logger writes one structured line per request. Liveness checks are skipped.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			// a hijacked upgrade never calls WriteHeader on the wrapper
			if websocket.IsWebSocketUpgrade(r) {
				status = http.StatusSwitchingProtocols
			} else {
				status = http.StatusOK
			}
		}
		latency := time.Since(start)

		logger := slog.Default().With(
			"request_id", GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", r.RemoteAddr,
			"status", status,
			"bytes", ww.BytesWritten(),
			"latency_ms", latency.Milliseconds(),
		)

		switch {
		case status >= 500:
			logger.Error("request completed with server error")
		case status >= 400:
			logger.Warn("request completed with client error")
		default:
			logger.Info("request completed")
		}
	})
}
