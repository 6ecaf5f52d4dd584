package datastructure

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0088

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

// Valid reports whether both components are finite and inside the WGS84 ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinate) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lon)
}

func CoordinateFromLatLng(ll s2.LatLng) Coordinate {
	return Coordinate{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}
}

// GreatCircleKm is the straight-line distance between a and b over the earth surface.
func GreatCircleKm(a, b Coordinate) float64 {
	return a.LatLng().Distance(b.LatLng()).Radians() * EarthRadiusKm
}

// CopyCoordinate returns a fresh pointer holding the same value, or nil.
func CopyCoordinate(c *Coordinate) *Coordinate {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
