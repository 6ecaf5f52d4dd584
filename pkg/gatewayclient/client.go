package gatewayclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lintang/routeplanner/domain"
	"lintang/routeplanner/pkg/datastructure"
	"lintang/routeplanner/pkg/geocoder"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
)

type errorBody struct {
	Error string `json:"error"`
}

// Client resolves place names through the geocoding gateway's /api/geocode endpoint.
type Client struct {
	baseURL string
	client  heimdall.Doer
}

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithDoer(baseURL, httpclient.NewClient(
		httpclient.WithHTTPTimeout(timeout),
		httpclient.WithRetryCount(0),
	))
}

func NewWithDoer(baseURL string, client heimdall.Doer) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Resolve maps the gateway statuses back onto the error taxonomy: 400 is a validation
// error, 404 not found, anything else that is not a 200 an upstream error.
func (c *Client) Resolve(ctx context.Context, query string) (datastructure.Coordinate, error) {
	reqURL := c.baseURL + "/api/geocode?" + url.Values{"location": []string{query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return datastructure.Coordinate{}, domain.WrapErrorf(err, domain.ErrUpstream, domain.MessageInternalServerError)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return datastructure.Coordinate{}, domain.WrapErrorf(err, domain.ErrUpstream, domain.MessageInternalServerError)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return datastructure.Coordinate{}, domain.WrapErrorf(err, domain.ErrUpstream, domain.MessageInternalServerError)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return datastructure.Coordinate{}, domain.WrapErrorf(nil, domain.ErrValidation, "%s", errorMessage(body, domain.MessageLocationRequired))
	case http.StatusNotFound:
		return datastructure.Coordinate{}, domain.WrapErrorf(nil, domain.ErrNotFound, "%s", errorMessage(body, domain.MessageNoCoordinatesFound))
	default:
		return datastructure.Coordinate{}, domain.WrapErrorf(fmt.Errorf("gateway returned %d", resp.StatusCode),
			domain.ErrUpstream, domain.MessageInternalServerError)
	}

	var candidates []geocoder.Candidate
	if err := json.Unmarshal(body, &candidates); err != nil {
		return datastructure.Coordinate{}, domain.WrapErrorf(err, domain.ErrUpstream, domain.MessageInternalServerError)
	}
	if len(candidates) == 0 {
		return datastructure.Coordinate{}, domain.WrapErrorf(nil, domain.ErrNotFound, domain.MessageNoCoordinatesFound)
	}

	coord, err := candidates[0].Coordinate()
	if err != nil {
		return datastructure.Coordinate{}, domain.WrapErrorf(err, domain.ErrUpstream, domain.MessageInternalServerError)
	}
	return coord, nil
}

func errorMessage(body []byte, fallback string) string {
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		return fallback
	}
	return e.Error
}
