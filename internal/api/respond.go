package api

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/soaringjerry/Rasch/internal/middleware"
	"github.com/soaringjerry/Rasch/internal/services"
)

var statusByCode = map[services.ErrorCode]int{
	services.ErrorInvalid:         http.StatusBadRequest,
	services.ErrorUnauthorized:    http.StatusUnauthorized,
	services.ErrorForbidden:       http.StatusForbidden,
	services.ErrorNotFound:        http.StatusNotFound,
	services.ErrorConflict:        http.StatusConflict,
	services.ErrorTooManyRequests: http.StatusTooManyRequests,
	services.ErrorUnavailable:     http.StatusServiceUnavailable,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status, known := statusByCode[se.Code]
		if !known {
			status = http.StatusBadRequest
		}
		if se.Code == services.ErrorTooManyRequests {
			w.Header().Set("Retry-After", "1")
		}
		writeJSON(w, status, map[string]string{"error": se.Message, "code": string(se.Code)})
		return
	}
	rt.logger.Error("request failed",
		"request_id", chimw.GetReqID(r.Context()),
		"path", r.URL.Path,
		"error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func tenantID(r *http.Request) string {
	tid, _ := middleware.TenantIDFromContext(r.Context())
	return tid
}
