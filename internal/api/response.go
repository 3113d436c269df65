package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/erazemk/katalog/internal/catalog"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// deletedResponse is the body returned by every delete.
type deletedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func jsonDeleted(w http.ResponseWriter, id string) {
	jsonResponse(w, http.StatusOK, deletedResponse{Message: "Deleted", ID: id})
}

// statusFor maps a catalog error kind to an HTTP status. Name conflicts are
// reported as 403.
func statusFor(kind catalog.Kind) int {
	switch kind {
	case catalog.BadRequest:
		return http.StatusBadRequest
	case catalog.Forbidden, catalog.Conflict:
		return http.StatusForbidden
	case catalog.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError converts a catalog error into a response. Server-side failures
// are logged with their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := catalog.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "kind", kind.String(), "error", err)
	}
	jsonError(w, status, catalog.MessageOf(err))
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
