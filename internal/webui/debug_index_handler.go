package webui

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/davecgh/go-spew/spew"

	"bikeflow.dev/internal/traffic"
	"bikeflow.dev/internal/utils"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

var dataTypes = []string{"stations", "departures", "arrivals", "lanes", "report", "summary", "config"}

// Trip dumps are capped; the full feed is tens of thousands of rows.
const maxDumpedTrips = 200

type debugData struct {
	Title     string
	Pre       string
	DataTypes []string
	Window    string
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func writeDebugData(w http.ResponseWriter, title string, window traffic.TimeWindow, data interface{}) {
	page := debugData{
		Title:     title,
		Pre:       dumper.Sdump(data),
		DataTypes: dataTypes,
	}
	if window.Bounded() {
		page.Window = strconv.Itoa(window.Minute())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := debugTemplate.Execute(w, page); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	window, fieldErrors := utils.ParseTimeWindowParam(r.URL.Query(), nil)
	if len(fieldErrors) > 0 {
		http.Error(w, fieldErrors["time"][0], http.StatusBadRequest)
		return
	}

	var data interface{}
	var title string

	snapshot := webUI.Manager.Snapshot()

	switch r.URL.Query().Get("dataType") {
	case "stations":
		data = webUI.Manager.StationTraffic(window)
		title = "Stations - " + window.String()
	case "departures":
		data = firstTrips(snapshot.Index.SelectWindow(traffic.Departures, window))
		title = "Departures - " + window.String()
	case "arrivals":
		data = firstTrips(snapshot.Index.SelectWindow(traffic.Arrivals, window))
		title = "Arrivals - " + window.String()
	case "lanes":
		data = snapshot.Lanes
		title = "Bike Lanes"
	case "report":
		data = webUI.Manager.Report()
		title = "Ingest Report"
	case "summary":
		data = webUI.Manager.Summary(window, 10)
		title = "Traffic Summary - " + window.String()
	case "config":
		config := webUI.Config
		config.ApiKeys = []string{"<redacted>"}
		data = struct {
			Server    interface{}
			Bikeshare interface{}
		}{config, webUI.BikeshareConfig}
		title = "Configuration"
	default:
		data = map[string]string{
			"error": "Please use one of the following: stations, departures, arrivals, lanes, report, summary, config.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, window, data)
}

func firstTrips(trips []traffic.TripRecord) interface{} {
	if len(trips) <= maxDumpedTrips {
		return trips
	}
	return struct {
		Total int
		Shown []traffic.TripRecord
	}{len(trips), trips[:maxDumpedTrips]}
}
