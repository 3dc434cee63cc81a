package api

import (
	"context"
	"net/http"
	"time"

	"order-chatbot/internal/common/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessCheck reports whether one dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

const readinessTimeout = 2 * time.Second

// NewRouter mounts /chat, /health, /ready and /metrics behind the
// logging middleware.
func NewRouter(chat *ChatHandler, checks map[string]ReadinessCheck, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /chat", chat)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /ready", readinessHandler(checks, log))
	mux.Handle("GET /metrics", promhttp.Handler())
	return Logging(log, mux)
}

func readinessHandler(checks map[string]ReadinessCheck, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
				log.Warn("readiness check failed", map[string]interface{}{"dependency": name, "error": err})
			}
		}

		if len(failed) > 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unavailable",
				"failed": failed,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
