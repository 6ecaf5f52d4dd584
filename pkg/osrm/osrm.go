package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lintang/routeplanner/domain"
	"lintang/routeplanner/pkg/datastructure"
	"lintang/routeplanner/pkg/util"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
	"go.uber.org/zap"
)

const defaultProfile = "driving"

type Outcome int

const (
	// OutcomeSkipped means a coordinate was missing and no request was made.
	OutcomeSkipped Outcome = iota
	OutcomeRouted
	// OutcomeNoRoute means the provider answered but found no path.
	OutcomeNoRoute
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRouted:
		return "routed"
	case OutcomeNoRoute:
		return "no_route"
	default:
		return "skipped"
	}
}

type Result struct {
	Outcome Outcome
	Route   datastructure.Route
}

// OSRM response format
type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

type Client struct {
	baseURL string
	profile string
	client  heimdall.Doer
	log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(timeout),
		httpclient.WithRetryCount(0),
	)
	return NewClientWithDoer(baseURL, client, log)
}

func NewClientWithDoer(baseURL string, client heimdall.Doer, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: defaultProfile,
		client:  client,
		log:     log,
	}
}

func (c *Client) routeURL(start, end datastructure.Coordinate) string {
	return fmt.Sprintf("%s/route/v1/%s/%s,%s;%s,%s?overview=full&geometries=geojson",
		c.baseURL, c.profile,
		util.FormatCoord(start.Lon), util.FormatCoord(start.Lat),
		util.FormatCoord(end.Lon), util.FormatCoord(end.Lat))
}

// Route fetches the driving route from start to end. A nil coordinate is a precondition
// miss, not an error: the result is OutcomeSkipped and nothing is requested.
func (c *Client) Route(ctx context.Context, start, end *datastructure.Coordinate) (Result, error) {
	if start == nil || end == nil {
		return Result{Outcome: OutcomeSkipped}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.routeURL(*start, *end), nil)
	if err != nil {
		return Result{}, domain.WrapErrorf(err, domain.ErrUpstream, domain.MessageInternalServerError)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error("routing provider unreachable", zap.Error(err))
		return Result{}, domain.WrapErrorf(err, domain.ErrUpstream, domain.MessageInternalServerError)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, domain.WrapErrorf(err, domain.ErrUpstream, domain.MessageInternalServerError)
	}

	var parsed osrmResponse
	decodeErr := json.Unmarshal(body, &parsed)

	// osrm answers 400 {"code":"NoRoute"} when both points snap but are not connected
	if decodeErr == nil && parsed.Code == "NoRoute" {
		return Result{Outcome: OutcomeNoRoute}, nil
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Error("bad response from routing provider",
			zap.Int("status_code", resp.StatusCode),
			zap.String("code", parsed.Code),
			zap.String("message", parsed.Message),
		)
		return Result{}, domain.WrapErrorf(fmt.Errorf("routing provider returned %d", resp.StatusCode),
			domain.ErrUpstream, domain.MessageInternalServerError)
	}
	if decodeErr != nil {
		c.log.Error("failed to decode routing response", zap.Error(decodeErr))
		return Result{}, domain.WrapErrorf(decodeErr, domain.ErrUpstream, domain.MessageInternalServerError)
	}
	if len(parsed.Routes) == 0 {
		return Result{Outcome: OutcomeNoRoute}, nil
	}

	first := parsed.Routes[0]
	geometry, err := ToLatLon(first.Geometry.Coordinates)
	if err != nil {
		c.log.Error("routing provider returned a malformed geometry", zap.Error(err))
		return Result{}, domain.WrapErrorf(err, domain.ErrUpstream, domain.MessageInternalServerError)
	}

	return Result{
		Outcome: OutcomeRouted,
		Route: datastructure.Route{
			Geometry: geometry,
			Summary:  datastructure.NewRouteSummary(first.Distance, first.Duration),
		},
	}, nil
}

// ToLatLon turns geojson [lon, lat] pairs into coordinates, keeping order and count.
func ToLatLon(pairs [][]float64) (datastructure.RouteGeometry, error) {
	geometry := make(datastructure.RouteGeometry, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) < 2 {
			return nil, fmt.Errorf("position %d has %d components", i, len(pair))
		}
		geometry = append(geometry, datastructure.Coordinate{Lat: pair[1], Lon: pair[0]})
	}
	return geometry, nil
}
