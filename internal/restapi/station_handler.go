package restapi

import (
	"net/http"

	"bikeflow.dev/internal/models"
	"bikeflow.dev/internal/utils"
)

func (api *RestAPI) stationHandler(w http.ResponseWriter, r *http.Request) {
	stationID := utils.ExtractIDFromParams(r)

	if err := utils.ValidateID(stationID); err != nil {
		fieldErrors := map[string][]string{
			"id": {err.Error()},
		}
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	window, fieldErrors := utils.ParseTimeWindowParam(r.URL.Query(), nil)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	record, ok := api.Manager.FindStation(stationID, window)
	if !ok {
		api.sendNotFound(w, r)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(models.NewStation(record), models.NewEmptyReferences()))
}
