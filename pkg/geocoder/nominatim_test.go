package geocoder_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lintang/routeplanner/domain"
	"lintang/routeplanner/pkg/geocoder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeNominatim struct {
	hits      atomic.Int32
	lastQuery atomic.Value
	lastAgent atomic.Value
	status    int
	body      string
}

func (f *fakeNominatim) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	f.lastQuery.Store(r.URL.Query().Get("q"))
	f.lastAgent.Store(r.Header.Get("User-Agent"))
	if r.URL.Path != "/search" || r.URL.Query().Get("format") != "json" {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(f.body))
}

func newClient(t *testing.T, f *fakeNominatim) *geocoder.Nominatim {
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return geocoder.NewNominatim(srv.URL, "routeplanner-test", 2*time.Second, zaptest.NewLogger(t))
}

func TestGeocodeReturnsFirstCandidate(t *testing.T) {
	f := &fakeNominatim{status: http.StatusOK, body: `[
		{"lat":"48.8588897","lon":"2.3200410","display_name":"Paris, France"},
		{"lat":"33.6617962","lon":"-95.5555130","display_name":"Paris, Texas"}
	]`}
	n := newClient(t, f)

	c, err := n.Geocode(context.Background(), "Paris")
	require.NoError(t, err)

	assert.Equal(t, geocoder.NumericString("48.8588897"), c.Lat)
	assert.Equal(t, geocoder.NumericString("2.3200410"), c.Lon)
	assert.Equal(t, "Paris", f.lastQuery.Load())
	assert.Equal(t, "routeplanner-test", f.lastAgent.Load())

	coord, err := c.Coordinate()
	require.NoError(t, err)
	assert.Equal(t, 48.8588897, coord.Lat)
	assert.Equal(t, 2.320041, coord.Lon)
}

func TestGeocodeEscapesQuery(t *testing.T) {
	f := &fakeNominatim{status: http.StatusOK, body: `[{"lat":"-23.55","lon":"-46.63"}]`}
	n := newClient(t, f)

	_, err := n.Geocode(context.Background(), "São Paulo & Co #1")
	require.NoError(t, err)
	assert.Equal(t, "São Paulo & Co #1", f.lastQuery.Load())
}

func TestGeocodeEmptyQueryNeverCallsUpstream(t *testing.T) {
	f := &fakeNominatim{status: http.StatusOK, body: `[]`}
	n := newClient(t, f)

	for _, q := range []string{"", "   "} {
		_, err := n.Geocode(context.Background(), q)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "Location is required", err.Error())
	}
	assert.Equal(t, int32(0), f.hits.Load())
}

func TestGeocodeNoCandidates(t *testing.T) {
	f := &fakeNominatim{status: http.StatusOK, body: `[]`}
	n := newClient(t, f)

	_, err := n.Geocode(context.Background(), "qwzxqwzx")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "No coordinates found", err.Error())
	assert.Equal(t, int32(1), f.hits.Load())
}

func TestGeocodeUpstreamFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"rate limited", http.StatusTooManyRequests, `slow down`},
		{"garbage body", http.StatusOK, `<html>`},
		{"unusable candidate", http.StatusOK, `[{"lat":"north","lon":"2"}]`},
		{"out of range", http.StatusOK, `[{"lat":"91","lon":"2"}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeNominatim{status: tc.status, body: tc.body}
			n := newClient(t, f)

			_, err := n.Geocode(context.Background(), "Paris")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUpstream)
			assert.Equal(t, "Internal server error", err.Error())
			assert.Equal(t, int32(1), f.hits.Load(), "no retry")
		})
	}
}

func TestGeocodeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	n := geocoder.NewNominatim(url, "", time.Second, zaptest.NewLogger(t))
	_, err := n.Geocode(context.Background(), "Paris")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestSearchReturnsAllCandidates(t *testing.T) {
	f := &fakeNominatim{status: http.StatusOK, body: `[{"lat":"1","lon":"2"},{"lat":"3","lon":"4"}]`}
	n := newClient(t, f)

	candidates, err := n.Search(context.Background(), "somewhere")
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestNumericStringAcceptsNumbers(t *testing.T) {
	var c geocoder.Candidate
	require.NoError(t, json.Unmarshal([]byte(`{"lat":52.52,"lon":"13.405"}`), &c))

	assert.Equal(t, geocoder.NumericString("52.52"), c.Lat)
	assert.Equal(t, geocoder.NumericString("13.405"), c.Lon)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"lat":"52.52","lon":"13.405"}`, string(out))
}
