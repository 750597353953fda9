package restapi

import (
	"net/http"

	"bikeflow.dev/internal/models"
	"bikeflow.dev/internal/utils"
)

const (
	defaultStationSearchRadius = 1000.0
	defaultMaxCount            = 100
	maxMaxCount                = 1000
)

func (api *RestAPI) stationsForLocationHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	lat, fieldErrors := utils.ParseFloatParam(queryParams, "lat", nil)
	lon, _ := utils.ParseFloatParam(queryParams, "lon", fieldErrors)
	radius, _ := utils.ParseFloatParam(queryParams, "radius", fieldErrors)
	maxCount, _ := utils.ParseIntParam(queryParams, "maxCount", defaultMaxCount, fieldErrors)
	window, _ := utils.ParseTimeWindowParam(queryParams, fieldErrors)

	for _, required := range []string{"lat", "lon"} {
		if queryParams.Get(required) == "" {
			fieldErrors[required] = append(fieldErrors[required], required+" is required")
		}
	}
	if maxCount < 1 || maxCount > maxMaxCount {
		fieldErrors["maxCount"] = append(fieldErrors["maxCount"], "maxCount must be between 1 and 1000")
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if locationErrors := utils.ValidateLocationParams(lat, lon, radius); len(locationErrors) > 0 {
		api.validationErrorResponse(w, r, locationErrors)
		return
	}
	if radius == 0 {
		radius = defaultStationSearchRadius
	}

	if !api.Manager.HasData() {
		api.noDataResponse(w, r)
		return
	}

	// Ask for one extra to learn whether the list was cut short.
	records := api.Manager.StationsNear(lat, lon, radius, maxCount+1, window)
	limitExceeded := len(records) > maxCount
	if limitExceeded {
		records = records[:maxCount]
	}

	references := models.NewEmptyReferences()
	stations := make([]models.NearbyStation, 0, len(records))
	for _, record := range records {
		references.AddStation(models.NewStationReference(record))
		stations = append(stations, models.NearbyStation{
			Station:   models.NewStation(record),
			Distance:  utils.Haversine(lat, lon, record.Lat, record.Lon),
			Direction: utils.CompassDirection(lat, lon, record.Lat, record.Lon),
		})
	}

	api.sendResponse(w, r, models.NewOKResponse(models.NearbyStationsData{
		List:          stations,
		LimitExceeded: limitExceeded,
		Window:        models.NewTimeWindowModel(window),
		References:    references,
	}))
}
