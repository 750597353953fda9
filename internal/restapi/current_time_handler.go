package restapi

import (
	"net/http"

	"bikeflow.dev/internal/models"
)

func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	timeData := models.NewCurrentTimeData(api.Now())
	api.sendResponse(w, r, models.NewOKResponse(timeData))
}
