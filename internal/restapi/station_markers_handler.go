package restapi

import (
	"net/http"

	"bikeflow.dev/internal/mapview"
	"bikeflow.dev/internal/models"
	"bikeflow.dev/internal/utils"
)

const (
	defaultMapWidth  = 1024
	defaultMapHeight = 768
)

// stationMarkersHandler replays a map session: the viewport is centered and
// zoomed as requested, then the time filter is applied, and the resulting
// marker layer is returned.
func (api *RestAPI) stationMarkersHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	lat, fieldErrors := utils.ParseFloatParam(queryParams, "lat", nil)
	lon, _ := utils.ParseFloatParam(queryParams, "lon", fieldErrors)
	zoom, _ := utils.ParseFloatParam(queryParams, "zoom", fieldErrors)
	width, _ := utils.ParseIntParam(queryParams, "width", defaultMapWidth, fieldErrors)
	height, _ := utils.ParseIntParam(queryParams, "height", defaultMapHeight, fieldErrors)
	window, _ := utils.ParseTimeWindowParam(queryParams, fieldErrors)
	visibleOnly := queryParams.Get("visibleOnly") == "true"

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if queryParams.Get("lat") == "" {
		lat = mapview.DefaultCenter[1]
	}
	if queryParams.Get("lon") == "" {
		lon = mapview.DefaultCenter[0]
	}
	if queryParams.Get("zoom") == "" {
		zoom = mapview.DefaultZoom
	}

	viewportErrors := utils.ValidateViewportParams(zoom, mapview.MinZoom, mapview.MaxZoom, width, height)
	for field, errs := range utils.ValidateLocationParams(lat, lon, 0) {
		viewportErrors[field] = append(viewportErrors[field], errs...)
	}
	if len(viewportErrors) > 0 {
		api.validationErrorResponse(w, r, viewportErrors)
		return
	}

	if !api.Manager.HasData() {
		api.noDataResponse(w, r)
		return
	}

	session := mapview.NewSession(api.Manager, mapview.DefaultViewport(width, height))
	defer session.Close()

	session.MoveTo(lon, lat)
	session.ZoomTo(zoom)
	if window.Bounded() {
		if err := session.SetTimeFilter(window.Minute()); err != nil {
			api.serverErrorResponse(w, r, err)
			return
		}
	}

	rangeMin, rangeMax := session.Scale().Range()
	data := models.MarkersData{
		Viewport:    session.Viewport(),
		Window:      models.NewTimeWindowModel(session.Window()),
		RadiusRange: [2]float64{rangeMin, rangeMax},
		List:        []models.Marker{},
		References:  models.NewEmptyReferences(),
	}

	for _, marker := range session.Markers() {
		if marker.Visible {
			data.Visible++
		} else if visibleOnly {
			continue
		}
		data.List = append(data.List, models.NewMarker(marker))
		data.References.AddStation(models.StationReference{
			ID:   marker.StationID,
			Name: marker.Name,
			Lat:  marker.Lat,
			Lon:  marker.Lon,
		})
	}

	api.sendResponse(w, r, models.NewOKResponse(data))
}
