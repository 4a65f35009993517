package geo

import (
	"caretransit/internal/models"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

func stopPoint(s models.Stop) (Point, bool) {
	if s.Lat == nil || s.Lon == nil {
		return Point{}, false
	}
	return Point{Lat: *s.Lat, Lon: *s.Lon}, true
}

// SuggestAnchor returns the order key of the stop after which a new
// stop at p causes the smallest detour, or nil to suggest inserting at
// the head. Stops without coordinates are skipped; with fewer than two
// locatable stops the suggestion defaults to the tail.
func SuggestAnchor(stops []models.Stop, p Point) *int {
	type located struct {
		order int
		pt    Point
	}
	var pts []located
	for _, s := range stops {
		if s.Cancelled {
			continue
		}
		if pt, ok := stopPoint(s); ok {
			pts = append(pts, located{order: s.StopOrder, pt: pt})
		}
	}
	if len(pts) == 0 {
		return nil
	}
	if len(pts) == 1 {
		order := pts[0].order
		return &order
	}

	// Detour of inserting between a and b: d(a,p) + d(p,b) - d(a,b).
	// A virtual leg before the first stop models head insertion.
	bestIdx := -1 // -1 means before pts[0]
	best := Distance(p.Lat, p.Lon, pts[0].pt.Lat, pts[0].pt.Lon)
	for i := 0; i < len(pts)-1; i++ {
		a, b := pts[i].pt, pts[i+1].pt
		detour := Distance(a.Lat, a.Lon, p.Lat, p.Lon) +
			Distance(p.Lat, p.Lon, b.Lat, b.Lon) -
			Distance(a.Lat, a.Lon, b.Lat, b.Lon)
		if detour < best {
			best = detour
			bestIdx = i
		}
	}
	last := pts[len(pts)-1].pt
	if tail := Distance(last.Lat, last.Lon, p.Lat, p.Lon); tail < best {
		bestIdx = len(pts) - 1
	}

	if bestIdx < 0 {
		return nil
	}
	order := pts[bestIdx].order
	return &order
}
