package restapi

import (
	"net/http"

	"bikeflow.dev/internal/models"
	"bikeflow.dev/internal/utils"
)

func (api *RestAPI) stationsHandler(w http.ResponseWriter, r *http.Request) {
	window, fieldErrors := utils.ParseTimeWindowParam(r.URL.Query(), nil)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if !api.Manager.HasData() {
		api.noDataResponse(w, r)
		return
	}

	records := api.Manager.StationTraffic(window)
	stations := make([]models.Station, 0, len(records))
	for _, record := range records {
		stations = append(stations, models.NewStation(record))
	}

	api.sendResponse(w, r, models.NewOKResponse(models.StationsData{
		List:       stations,
		Window:     models.NewTimeWindowModel(window),
		References: models.NewEmptyReferences(),
	}))
}
