package restapi

import (
	"net/http"

	"github.com/twpayne/go-polyline"

	"bikeflow.dev/internal/bikeshare"
	"bikeflow.dev/internal/mapview"
	"bikeflow.dev/internal/models"
	"bikeflow.dev/internal/utils"
)

// bikeLanesHandler serves the lane overlay. Given any of lat, lon or zoom it
// keeps only the paths whose bounding box overlaps that viewport.
func (api *RestAPI) bikeLanesHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	lat, fieldErrors := utils.ParseFloatParam(queryParams, "lat", nil)
	lon, _ := utils.ParseFloatParam(queryParams, "lon", fieldErrors)
	zoom, _ := utils.ParseFloatParam(queryParams, "zoom", fieldErrors)
	width, _ := utils.ParseIntParam(queryParams, "width", defaultMapWidth, fieldErrors)
	height, _ := utils.ParseIntParam(queryParams, "height", defaultMapHeight, fieldErrors)

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	clip := queryParams.Has("lat") || queryParams.Has("lon") || queryParams.Has("zoom")
	var bounds *mapview.Bounds
	if clip {
		viewport := mapview.DefaultViewport(width, height)
		if queryParams.Get("lat") != "" {
			viewport.CenterLat = lat
		}
		if queryParams.Get("lon") != "" {
			viewport.CenterLon = lon
		}
		if queryParams.Get("zoom") != "" {
			viewport.Zoom = zoom
		}

		viewportErrors := utils.ValidateViewportParams(viewport.Zoom, mapview.MinZoom, mapview.MaxZoom, width, height)
		for field, errs := range utils.ValidateLocationParams(viewport.CenterLat, viewport.CenterLon, 0) {
			viewportErrors[field] = append(viewportErrors[field], errs...)
		}
		if len(viewportErrors) > 0 {
			api.validationErrorResponse(w, r, viewportErrors)
			return
		}

		b := viewport.Bounds()
		bounds = &b
	}

	if !api.Manager.HasData() {
		api.noDataResponse(w, r)
		return
	}

	data := models.BikeLanesData{
		Style:      models.DefaultLaneStyle(),
		Bounds:     bounds,
		List:       []models.BikeLane{},
		References: models.NewEmptyReferences(),
	}
	for _, lane := range api.Manager.BikeLanes() {
		if entry, ok := encodeBikeLane(lane, bounds); ok {
			data.List = append(data.List, entry)
		}
	}

	api.sendResponse(w, r, models.NewOKResponse(data))
}

// encodeBikeLane encodes each path of lane that lies within bounds. A lane
// with no path left is dropped.
func encodeBikeLane(lane bikeshare.BikeLane, bounds *mapview.Bounds) (models.BikeLane, bool) {
	entry := models.BikeLane{
		ID:        lane.ID,
		Source:    lane.Source,
		Name:      lane.Name,
		Polylines: []models.EncodedPolyline{},
	}
	for _, path := range lane.Paths {
		if bounds != nil && !mapview.PathBounds(path).Intersects(*bounds) {
			continue
		}
		points := string(polyline.EncodeCoords(path))
		entry.Polylines = append(entry.Polylines, models.EncodedPolyline{
			Points: points,
			Length: len(points),
			Levels: "",
		})
	}
	return entry, len(entry.Polylines) > 0
}
