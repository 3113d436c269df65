package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/katalog/internal/catalog"
)

// Health handles GET /healthz.
func Health(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Ping(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
