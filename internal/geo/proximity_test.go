package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caretransit/internal/models"
)

func locStop(order int, lat, lon float64) models.Stop {
	return models.Stop{StopOrder: order, Lat: &lat, Lon: &lon}
}

func TestDistanceKnownPair(t *testing.T) {
	// Berlin Alexanderplatz to Brandenburg Gate, roughly 2.8 km.
	d := Distance(52.5219, 13.4132, 52.5163, 13.3777)
	assert.InDelta(t, 2480, d, 300)
}

func TestSuggestAnchorPicksSmallestDetour(t *testing.T) {
	stops := []models.Stop{
		locStop(1000, 52.500, 13.300),
		locStop(2000, 52.510, 13.300),
		locStop(3000, 52.520, 13.300),
	}
	// Point between the first and second stop.
	anchor := SuggestAnchor(stops, Point{Lat: 52.505, Lon: 13.301})
	require.NotNil(t, anchor)
	assert.Equal(t, 1000, *anchor)
}

func TestSuggestAnchorHead(t *testing.T) {
	stops := []models.Stop{
		locStop(1000, 52.510, 13.300),
		locStop(2000, 52.520, 13.300),
	}
	// Point south of the whole run.
	anchor := SuggestAnchor(stops, Point{Lat: 52.500, Lon: 13.300})
	assert.Nil(t, anchor)
}

func TestSuggestAnchorTail(t *testing.T) {
	stops := []models.Stop{
		locStop(1000, 52.500, 13.300),
		locStop(2000, 52.510, 13.300),
	}
	anchor := SuggestAnchor(stops, Point{Lat: 52.530, Lon: 13.300})
	require.NotNil(t, anchor)
	assert.Equal(t, 2000, *anchor)
}

func TestSuggestAnchorSkipsCancelledAndUnlocated(t *testing.T) {
	cancelled := locStop(1000, 52.500, 13.300)
	cancelled.Cancelled = true
	stops := []models.Stop{
		cancelled,
		{StopOrder: 2000}, // no coordinates
		locStop(3000, 52.510, 13.300),
	}
	anchor := SuggestAnchor(stops, Point{Lat: 52.505, Lon: 13.300})
	require.NotNil(t, anchor)
	assert.Equal(t, 3000, *anchor)
}

func TestGeoJSONRoundTrip(t *testing.T) {
	raw := `{"type":"LineString","coordinates":[[13.3,52.5],[13.31,52.51]]}`
	wkbBytes, err := GeoJSONToWKB(raw)
	require.NoError(t, err)
	require.NotEmpty(t, wkbBytes)

	out, err := WKBToGeoJSON(wkbBytes)
	require.NoError(t, err)
	assert.JSONEq(t, raw, out)
}

func TestWKBToGeoJSONEmpty(t *testing.T) {
	out, err := WKBToGeoJSON(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
