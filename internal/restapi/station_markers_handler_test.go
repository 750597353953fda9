package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationMarkersHandlerDefaults(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/where/station-markers.json?key=test")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := dataMap(t, model)
	viewport := data["viewport"].(map[string]interface{})
	assert.Equal(t, -71.09415, viewport["centerLon"])
	assert.Equal(t, 42.36027, viewport["centerLat"])
	assert.Equal(t, 12.0, viewport["zoom"])
	assert.Equal(t, 1024.0, viewport["width"])

	assert.Equal(t, []interface{}{0.0, 25.0}, data["radiusRange"])
	assert.Equal(t, 6.0, data["visible"])

	list := listOf(t, model)
	require.Len(t, list, 6)
	mit := list[0]
	assert.Equal(t, "M32006", mit["stationId"])
	assert.Equal(t, 25.0, mit["radius"], "busiest station gets the largest radius")
	assert.Equal(t, 0.5, mit["flow"])
	assert.Equal(t, true, mit["visible"])
	assert.Equal(t, 0.0, stationByMarker(list, "M32041")["radius"])

	refs := data["references"].(map[string]interface{})["stations"].([]interface{})
	assert.Len(t, refs, 6)
}

func stationByMarker(list []map[string]interface{}, id string) map[string]interface{} {
	for _, m := range list {
		if m["stationId"] == id {
			return m
		}
	}
	return nil
}

func TestStationMarkersHandlerWindowAndZoom(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t,
		"/api/where/station-markers.json?key=test&time=480&zoom=16&lat=42.36027&lon=-71.09415&width=1024&height=768")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := dataMap(t, model)
	assert.Equal(t, []interface{}{3.0, 50.0}, data["radiusRange"])
	assert.Equal(t, "8:00 AM", data["window"].(map[string]interface{})["label"])

	list := listOf(t, model)
	require.Len(t, list, 6)
	assert.Equal(t, 50.0, stationByMarker(list, "M32006")["radius"])
	assert.Equal(t, 3.0, stationByMarker(list, "A32010")["radius"])
	assert.Equal(t, false, stationByMarker(list, "M32018")["visible"], "Harvard is off screen at zoom 16")
	assert.Equal(t, true, stationByMarker(list, "M32006")["visible"])

	visible := data["visible"].(float64)
	assert.Less(t, visible, 6.0)

	_, _, filtered := serveAndRetrieveEndpoint(t,
		"/api/where/station-markers.json?key=test&time=480&zoom=16&visibleOnly=true")
	assert.Len(t, listOf(t, filtered), int(visible))
}

func TestStationMarkersHandlerValidation(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"zoom too far in", "zoom=20", "zoom"},
		{"zoom too far out", "zoom=2", "zoom"},
		{"zero width", "width=0", "width"},
		{"height not a number", "height=tall", "height"},
		{"latitude out of range", "lat=-91", "lat"},
		{"bad time", "time=noon", "time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, fieldErrors := serveAndRetrieveFieldErrors(t, "/api/where/station-markers.json?key=test&"+tt.query)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, fieldErrors, tt.expected)
		})
	}
}
