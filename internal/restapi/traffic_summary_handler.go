package restapi

import (
	"net/http"

	"bikeflow.dev/internal/models"
	"bikeflow.dev/internal/utils"
)

const defaultBusiestStations = 10

func (api *RestAPI) trafficSummaryHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	window, fieldErrors := utils.ParseTimeWindowParam(queryParams, nil)
	top, _ := utils.ParseIntParam(queryParams, "top", defaultBusiestStations, fieldErrors)
	if top < 0 || top > maxMaxCount {
		fieldErrors["top"] = append(fieldErrors["top"], "top must be between 0 and 1000")
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if !api.Manager.HasData() {
		api.noDataResponse(w, r)
		return
	}

	summary := models.NewTrafficSummary(api.Manager.Summary(window, top))
	api.sendResponse(w, r, models.NewEntryResponse(summary, models.NewEmptyReferences()))
}
