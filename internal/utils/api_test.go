package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeflow.dev/internal/traffic"
)

func TestParseFloatParam(t *testing.T) {
	params := url.Values{"lat": {"42.36"}, "lon": {"west"}}

	lat, errs := ParseFloatParam(params, "lat", nil)
	assert.Equal(t, 42.36, lat)
	assert.Empty(t, errs)

	missing, errs := ParseFloatParam(params, "radius", errs)
	assert.Zero(t, missing)
	assert.Empty(t, errs)

	_, errs = ParseFloatParam(params, "lon", errs)
	assert.Equal(t, []string{`Invalid field value for field "lon".`}, errs["lon"])
}

func TestParseFloatParamRejectsNonFinite(t *testing.T) {
	for _, raw := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "infinity", "1e400"} {
		t.Run(raw, func(t *testing.T) {
			v, errs := ParseFloatParam(url.Values{"zoom": {raw}}, "zoom", nil)
			assert.Zero(t, v)
			assert.Equal(t, []string{`Invalid field value for field "zoom".`}, errs["zoom"])
		})
	}
}

func TestParseIntParam(t *testing.T) {
	params := url.Values{"width": {"800"}, "height": {"tall"}}

	width, errs := ParseIntParam(params, "width", 1024, nil)
	assert.Equal(t, 800, width)
	assert.Empty(t, errs)

	zoom, errs := ParseIntParam(params, "zoom", 12, errs)
	assert.Equal(t, 12, zoom)
	assert.Empty(t, errs)

	height, errs := ParseIntParam(params, "height", 768, errs)
	assert.Equal(t, 768, height)
	assert.Contains(t, errs, "height")
}

func TestParseTimeWindowParam(t *testing.T) {
	t.Run("absent means any time", func(t *testing.T) {
		w, errs := ParseTimeWindowParam(url.Values{}, nil)
		assert.Empty(t, errs)
		assert.False(t, w.Bounded())
	})

	t.Run("minus one means any time", func(t *testing.T) {
		w, errs := ParseTimeWindowParam(url.Values{"time": {"-1"}}, nil)
		assert.Empty(t, errs)
		assert.False(t, w.Bounded())
	})

	t.Run("minute of day", func(t *testing.T) {
		w, errs := ParseTimeWindowParam(url.Values{"time": {"480"}}, nil)
		require.Empty(t, errs)
		assert.True(t, w.Bounded())
		assert.Equal(t, 480, w.Minute())
	})

	for _, bad := range []string{"1440", "-2", "noon"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			w, errs := ParseTimeWindowParam(url.Values{"time": {bad}}, nil)
			assert.Len(t, errs["time"], 1)
			assert.Equal(t, traffic.Unbounded(), w)
		})
	}
}
