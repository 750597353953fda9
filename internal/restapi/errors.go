package restapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"bikeflow.dev/internal/logging"
	"bikeflow.dev/internal/models"
)

type errorResponse struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Text        string `json:"text"`
	Version     int    `json:"version"`
}

func (api *RestAPI) writeError(w http.ResponseWriter, r *http.Request, status int, text string, version int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(errorResponse{
		Code:        status,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        text,
		Version:     version,
	})
	if err != nil {
		logging.LogError(api.requestLogger(r), "failed to encode error response", err,
			slog.Int("status", status))
	}
}

// invalidAPIKeyResponse sends a 401 Unauthorized response.
// Error responses carry version 1, unlike successful ones.
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.writeError(w, r, http.StatusUnauthorized, "permission denied", 1)
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(api.requestLogger(r), "request failed", err,
		slog.String("path", r.URL.Path))
	api.writeError(w, r, http.StatusInternalServerError, "internal server error", 1)
}

// noDataResponse sends 503 while no feed load has succeeded yet.
func (api *RestAPI) noDataResponse(w http.ResponseWriter, r *http.Request) {
	api.writeError(w, r, http.StatusServiceUnavailable, "traffic data unavailable", 2)
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		FieldErrors: fieldErrors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		logging.LogError(api.requestLogger(r), "failed to encode validation error response", err)
	}
}

// requestLogger prefers the logger the request logging middleware put in the context.
func (api *RestAPI) requestLogger(r *http.Request) *slog.Logger {
	fallback := api.Logger
	if fallback == nil {
		fallback = slog.Default()
	}
	return logging.FromContextOr(r.Context(), fallback)
}
