package geocoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lintang/routeplanner/domain"
	"lintang/routeplanner/pkg/datastructure"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
	"go.uber.org/zap"
)

// NumericString keeps a coordinate component exactly as the provider sent it. Nominatim
// sends strings, some compatible providers send bare numbers, both decode.
type NumericString string

func (n *NumericString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = NumericString(num.String())
	return nil
}

type Candidate struct {
	Lat         NumericString `json:"lat"`
	Lon         NumericString `json:"lon"`
	DisplayName string        `json:"display_name,omitempty"`
}

// Coordinate parses the candidate into a validated coordinate.
func (c Candidate) Coordinate() (datastructure.Coordinate, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(string(c.Lat)), 64)
	if err != nil {
		return datastructure.Coordinate{}, fmt.Errorf("invalid lat %q: %w", c.Lat, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(string(c.Lon)), 64)
	if err != nil {
		return datastructure.Coordinate{}, fmt.Errorf("invalid lon %q: %w", c.Lon, err)
	}
	coord := datastructure.NewCoordinate(lat, lon)
	if !coord.Valid() {
		return datastructure.Coordinate{}, fmt.Errorf("coordinate out of range: %v,%v", lat, lon)
	}
	return coord, nil
}

// Nominatim talks to an OpenStreetMap Nominatim compatible search endpoint.
// A request is attempted exactly once.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    heimdall.Doer
	log       *zap.Logger
}

func NewNominatim(baseURL, userAgent string, timeout time.Duration, log *zap.Logger) *Nominatim {
	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(timeout),
		httpclient.WithRetryCount(0),
	)
	return NewNominatimWithClient(baseURL, userAgent, client, log)
}

func NewNominatimWithClient(baseURL, userAgent string, client heimdall.Doer, log *zap.Logger) *Nominatim {
	return &Nominatim{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    client,
		log:       log,
	}
}

// Search returns every candidate the provider knows for query, in provider order.
func (n *Nominatim) Search(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrUpstream, domain.MessageInternalServerError)
	}
	req.Header.Set("Accept", "application/json")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Error("geocoding provider unreachable", zap.String("query", query), zap.Error(err))
		return nil, domain.WrapErrorf(err, domain.ErrUpstream, domain.MessageInternalServerError)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		n.log.Error("bad response from geocoding provider",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, domain.WrapErrorf(fmt.Errorf("geocoding provider returned %d", resp.StatusCode),
			domain.ErrUpstream, domain.MessageInternalServerError)
	}

	var candidates []Candidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		n.log.Error("failed to decode geocoding response", zap.Error(err))
		return nil, domain.WrapErrorf(err, domain.ErrUpstream, domain.MessageInternalServerError)
	}

	n.log.Debug("geocoding response", zap.String("query", query), zap.Int("candidates", len(candidates)))
	return candidates, nil
}

// Geocode returns the first candidate for query. The first candidate is authoritative.
func (n *Nominatim) Geocode(ctx context.Context, query string) (Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Candidate{}, domain.WrapErrorf(nil, domain.ErrValidation, domain.MessageLocationRequired)
	}

	candidates, err := n.Search(ctx, query)
	if err != nil {
		return Candidate{}, err
	}
	if len(candidates) == 0 {
		return Candidate{}, domain.WrapErrorf(nil, domain.ErrNotFound, domain.MessageNoCoordinatesFound)
	}

	first := candidates[0]
	if _, err := first.Coordinate(); err != nil {
		n.log.Error("geocoding provider returned an unusable candidate", zap.Error(err))
		return Candidate{}, domain.WrapErrorf(err, domain.ErrUpstream, domain.MessageInternalServerError)
	}
	return first, nil
}
