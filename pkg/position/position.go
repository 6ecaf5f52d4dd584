package position

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"lintang/routeplanner/domain"
	"lintang/routeplanner/pkg/datastructure"
)

// Locator is a single-shot device position request. It may fail, e.g. when permission
// is denied or no fix is available.
type Locator interface {
	Locate(ctx context.Context) (datastructure.Coordinate, error)
}

type LocatorFunc func(ctx context.Context) (datastructure.Coordinate, error)

func (f LocatorFunc) Locate(ctx context.Context) (datastructure.Coordinate, error) {
	return f(ctx)
}

// Static always reports the same position.
type Static struct {
	coord datastructure.Coordinate
}

func NewStatic(coord datastructure.Coordinate) Static {
	return Static{coord: coord}
}

func (s Static) Locate(ctx context.Context) (datastructure.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return datastructure.Coordinate{}, domain.WrapErrorf(err, domain.ErrPositionUnavailable, "position request cancelled")
	}
	if !s.coord.Valid() {
		return datastructure.Coordinate{}, domain.WrapErrorf(nil, domain.ErrPositionUnavailable, "invalid position %v,%v", s.coord.Lat, s.coord.Lon)
	}
	return s.coord, nil
}

// Unavailable never has a position.
type Unavailable struct {
	Reason string
}

func (u Unavailable) Locate(context.Context) (datastructure.Coordinate, error) {
	reason := u.Reason
	if reason == "" {
		reason = "no positioning source configured"
	}
	return datastructure.Coordinate{}, domain.WrapErrorf(nil, domain.ErrPositionUnavailable, "position unavailable: %s", reason)
}

// ParseLatLon parses "lat,lon", e.g. "-7.5567,110.8231".
func ParseLatLon(input string) (datastructure.Coordinate, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return datastructure.Coordinate{}, fmt.Errorf("invalid coordinate: %s", input)
	}

	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return datastructure.Coordinate{}, fmt.Errorf("invalid lat/lon: %s", input)
	}

	coord := datastructure.NewCoordinate(lat, lon)
	if !coord.Valid() {
		return datastructure.Coordinate{}, fmt.Errorf("lat/lon out of range: %s", input)
	}
	return coord, nil
}
