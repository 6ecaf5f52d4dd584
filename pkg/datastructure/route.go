package datastructure

import (
	"lintang/routeplanner/pkg/util"

	"github.com/twpayne/go-polyline"
)

// RouteGeometry is the path from source to destination. Order is the path order.
type RouteGeometry []Coordinate

// Encode renders the geometry as a google encoded polyline (lat, lon order, 1e5 precision).
func (g RouteGeometry) Encode() string {
	coords := make([][]float64, 0, len(g))
	for _, c := range g {
		coords = append(coords, []float64{c.Lat, c.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}

func (g RouteGeometry) Clone() RouteGeometry {
	if g == nil {
		return nil
	}
	cp := make(RouteGeometry, len(g))
	copy(cp, g)
	return cp
}

type RouteSummary struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

// NewRouteSummary converts the provider's meters and seconds into kilometers and minutes,
// both rounded to two decimals. Negative input counts as zero.
func NewRouteSummary(meters, seconds float64) RouteSummary {
	if meters < 0 {
		meters = 0
	}
	if seconds < 0 {
		seconds = 0
	}
	return RouteSummary{
		DistanceKm:  util.RoundFloat(meters/1000, 2),
		DurationMin: util.RoundFloat(seconds/60, 2),
	}
}

type Route struct {
	Geometry RouteGeometry `json:"geometry"`
	Summary  RouteSummary  `json:"summary"`
}

func (r Route) Clone() Route {
	return Route{Geometry: r.Geometry.Clone(), Summary: r.Summary}
}
