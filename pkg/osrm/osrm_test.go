package osrm_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lintang/routeplanner/domain"
	"lintang/routeplanner/pkg/datastructure"
	"lintang/routeplanner/pkg/osrm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const parisBerlinBody = `{
	"code": "Ok",
	"routes": [
		{
			"geometry": {"type": "LineString", "coordinates": [[2.3522, 48.8566], [8.6821, 50.1109], [13.405, 52.52]]},
			"distance": 1054321.7,
			"duration": 36789.4
		},
		{
			"geometry": {"type": "LineString", "coordinates": [[2.3522, 48.8566], [13.405, 52.52]]},
			"distance": 1100000,
			"duration": 40000
		}
	]
}`

type fakeOSRM struct {
	hits   atomic.Int32
	path   atomic.Value
	query  atomic.Value
	status int
	body   string
}

func (f *fakeOSRM) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	f.path.Store(r.URL.Path)
	f.query.Store(r.URL.RawQuery)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(f.body))
}

func newClient(t *testing.T, f *fakeOSRM) *osrm.Client {
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return osrm.NewClient(srv.URL, 2*time.Second, zaptest.NewLogger(t))
}

var (
	paris  = datastructure.NewCoordinate(48.8566, 2.3522)
	berlin = datastructure.NewCoordinate(52.52, 13.405)
)

func TestRouteFirstRoute(t *testing.T) {
	f := &fakeOSRM{status: http.StatusOK, body: parisBerlinBody}
	c := newClient(t, f)

	res, err := c.Route(context.Background(), &paris, &berlin)
	require.NoError(t, err)

	assert.Equal(t, osrm.OutcomeRouted, res.Outcome)
	assert.Equal(t, "/route/v1/driving/2.3522,48.8566;13.405,52.52", f.path.Load())
	assert.Equal(t, "overview=full&geometries=geojson", f.query.Load())

	assert.Equal(t, datastructure.RouteGeometry{
		{Lat: 48.8566, Lon: 2.3522},
		{Lat: 50.1109, Lon: 8.6821},
		{Lat: 52.52, Lon: 13.405},
	}, res.Route.Geometry)
	assert.Equal(t, 1054.32, res.Route.Summary.DistanceKm)
	assert.Equal(t, 613.16, res.Route.Summary.DurationMin)
}

func TestRouteSkipsWithoutCoordinates(t *testing.T) {
	f := &fakeOSRM{status: http.StatusOK, body: parisBerlinBody}
	c := newClient(t, f)

	for _, pair := range [][2]*datastructure.Coordinate{{nil, &berlin}, {&paris, nil}, {nil, nil}} {
		res, err := c.Route(context.Background(), pair[0], pair[1])
		require.NoError(t, err)
		assert.Equal(t, osrm.OutcomeSkipped, res.Outcome)
	}
	assert.Equal(t, int32(0), f.hits.Load())
}

func TestRouteNoRoute(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"empty list", http.StatusOK, `{"code":"Ok","routes":[]}`},
		{"no route code", http.StatusBadRequest, `{"code":"NoRoute","message":"Impossible route between points"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(t, &fakeOSRM{status: tc.status, body: tc.body})

			res, err := c.Route(context.Background(), &paris, &berlin)
			require.NoError(t, err)
			assert.Equal(t, osrm.OutcomeNoRoute, res.Outcome)
			assert.Empty(t, res.Route.Geometry)
		})
	}
}

func TestRouteUpstreamFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"invalid query", http.StatusBadRequest, `{"code":"InvalidQuery","message":"Query string malformed"}`},
		{"garbage", http.StatusOK, `{"routes": [`},
		{"short position", http.StatusOK, `{"code":"Ok","routes":[{"geometry":{"coordinates":[[2.3]]},"distance":1,"duration":1}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeOSRM{status: tc.status, body: tc.body}
			c := newClient(t, f)

			_, err := c.Route(context.Background(), &paris, &berlin)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUpstream)
			assert.Equal(t, int32(1), f.hits.Load())
		})
	}
}

func TestToLatLon(t *testing.T) {
	pairs := [][]float64{{110.82, -7.56}, {110.83, -7.57}, {110.84, -7.58}, {110.82, -7.56}}

	geometry, err := osrm.ToLatLon(pairs)
	require.NoError(t, err)
	require.Len(t, geometry, len(pairs))
	for i, p := range pairs {
		assert.Equal(t, p[1], geometry[i].Lat)
		assert.Equal(t, p[0], geometry[i].Lon)
	}

	empty, err := osrm.ToLatLon(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "routed", osrm.OutcomeRouted.String())
	assert.Equal(t, "no_route", osrm.OutcomeNoRoute.String())
	assert.Equal(t, "skipped", osrm.OutcomeSkipped.String())
}
