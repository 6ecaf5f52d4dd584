package mapview_test

import (
	"encoding/json"
	"testing"

	"lintang/routeplanner/pkg/datastructure"
	"lintang/routeplanner/pkg/mapview"
	"lintang/routeplanner/pkg/workflow"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routedState() workflow.SessionState {
	src := datastructure.NewCoordinate(48.8566, 2.3522)
	dst := datastructure.NewCoordinate(52.52, 13.405)
	return workflow.SessionState{
		SourceQuery:      "Paris",
		DestinationQuery: "Berlin",
		Source:           &src,
		Destination:      &dst,
		Route: &datastructure.Route{
			Geometry: datastructure.RouteGeometry{src, datastructure.NewCoordinate(51, 9), dst},
			Summary:  datastructure.NewRouteSummary(1054321, 36789.5),
		},
	}
}

func TestRenderEmptyState(t *testing.T) {
	v := mapview.Render(workflow.SessionState{})

	assert.Equal(t, mapview.DefaultCenter, v.Center)
	assert.Equal(t, mapview.DefaultZoom, v.Zoom)
	assert.Empty(t, v.Markers)
	assert.Nil(t, v.Polyline)
	assert.Nil(t, v.Bounds)
	assert.Nil(t, v.Summary)

	require.Len(t, v.BaseLayers, 3)
	assert.True(t, v.BaseLayers[0].Checked)
	assert.Equal(t, "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", v.BaseLayers[0].URL)
	assert.Equal(t, []string{"mt0", "mt1", "mt2", "mt3"}, v.BaseLayers[1].Subdomains)
	assert.Contains(t, v.BaseLayers[2].URL, "lyrs=p")
}

func TestRenderRoute(t *testing.T) {
	s := routedState()
	v := mapview.Render(s)

	assert.Equal(t, *s.Source, v.Center)
	assert.Equal(t, mapview.SourceZoom, v.Zoom)

	require.Len(t, v.Markers, 2)
	assert.Equal(t, mapview.RoleSource, v.Markers[0].Role)
	assert.Equal(t, mapview.BlueIcon, v.Markers[0].Icon)
	assert.Equal(t, "Paris", v.Markers[0].Popup)
	assert.Equal(t, mapview.RedIcon, v.Markers[1].Icon)
	assert.Equal(t, "Berlin", v.Markers[1].Popup)

	require.NotNil(t, v.Polyline)
	assert.Equal(t, s.Route.Geometry, v.Polyline.Positions)
	assert.Equal(t, 6, v.Polyline.Weight)
	assert.Equal(t, "10, 10", v.Polyline.DashArray)
	assert.Equal(t, 0.8, v.Polyline.Opacity)

	require.NotNil(t, v.Summary)
	assert.Equal(t, 1054.32, v.Summary.DistanceKm)
	assert.Equal(t, 613.16, v.Summary.DurationMin)

	require.NotNil(t, v.Bounds)
	assert.InDelta(t, 48.8566, v.Bounds.SouthWest.Lat, 1e-9)
	assert.InDelta(t, 2.3522, v.Bounds.SouthWest.Lon, 1e-9)
	assert.InDelta(t, 52.52, v.Bounds.NorthEast.Lat, 1e-9)
	assert.InDelta(t, 13.405, v.Bounds.NorthEast.Lon, 1e-9)
}

func TestRenderWithoutRouteDrawsNoLine(t *testing.T) {
	s := routedState()
	s.Route = nil
	v := mapview.Render(s)
	assert.Len(t, v.Markers, 2)
	assert.Nil(t, v.Polyline)

	s = routedState()
	s.Destination = nil
	v = mapview.Render(s)
	assert.Len(t, v.Markers, 1)
	assert.Nil(t, v.Polyline, "a line needs both endpoints")

	s = routedState()
	s.Source = nil
	v = mapview.Render(s)
	assert.Equal(t, mapview.DefaultCenter, v.Center)
	assert.Equal(t, mapview.RoleDestination, v.Markers[0].Role)
}

func TestRenderDoesNotAliasState(t *testing.T) {
	s := routedState()
	v := mapview.Render(s)
	v.Polyline.Positions[0].Lat = 0
	assert.Equal(t, 48.8566, s.Route.Geometry[0].Lat)
}

func TestGeoJSON(t *testing.T) {
	raw, err := mapview.Render(routedState()).GeoJSON()
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	src := fc.Features[0]
	assert.Equal(t, orb.Point{2.3522, 48.8566}, src.Geometry)
	assert.Equal(t, "source", src.Properties.MustString("role"))

	line, ok := fc.Features[2].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, line, 3)
	assert.Equal(t, orb.Point{13.405, 52.52}, line[2])
	assert.Equal(t, 1054.32, fc.Features[2].Properties.MustFloat64("distance_km"))

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Equal(t, "FeatureCollection", generic["type"])
}

func TestGeoJSONEmpty(t *testing.T) {
	raw, err := mapview.Render(workflow.SessionState{}).GeoJSON()
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	require.NoError(t, err)
	assert.Empty(t, fc.Features)
}
