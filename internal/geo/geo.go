// Package geo carries the geometry helpers used at the API edge and by
// the insertion-position suggester. Route geometry is stored as WKB and
// exchanged as GeoJSON.
package geo

import (
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// GeoJSONToWKB parses a GeoJSON geometry string and returns WKB bytes.
func GeoJSONToWKB(raw string) ([]byte, error) {
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, err
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// WKBToGeoJSON converts stored WKB bytes into a GeoJSON string. Empty
// input yields an empty string.
func WKBToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	out, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(json.RawMessage(out)), nil
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

// Distance returns the haversine distance in meters between two points.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371000 // Earth's radius in meters.
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}
