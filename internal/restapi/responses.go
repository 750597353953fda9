package restapi

import (
	"encoding/json"
	"net/http"

	"bikeflow.dev/internal/logging"
	"bikeflow.dev/internal/models"
)

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	setJSONResponseType(w)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// Headers are already written; all that is left is to log.
		logging.LogError(api.requestLogger(r), "failed to encode response", err)
	}
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request) {
	setJSONResponseType(w)
	w.WriteHeader(http.StatusNotFound)

	response := models.ResponseModel{
		Code:        http.StatusNotFound,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        "resource not found",
		Version:     2,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(api.requestLogger(r), "failed to encode not found response", err)
	}
}

func setJSONResponseType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}
