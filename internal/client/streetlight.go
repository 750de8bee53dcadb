// Package client talks to a remote streetlight backend over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"streetlight-map/internal/geo"
	"streetlight-map/internal/models"
)

const defaultTimeout = 15 * time.Second

// StatusError is returned when the backend answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("streetlight backend status %d: %s", e.StatusCode, e.Body)
}

// Client queries the streetlight backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://backend:8780/api/v1".
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Streetlights(ctx context.Context, params models.StreetlightPageParams) ([]models.Streetlight, error) {
	q := url.Values{}
	q.Set("pageNo", strconv.Itoa(params.PageNo))
	q.Set("size", strconv.Itoa(params.PageSize))

	var resp models.StreetlightsResponse
	if err := c.getJSON(ctx, "/streetlights", q, &resp); err != nil {
		return nil, err
	}
	return resp.Streetlights, nil
}

func (c *Client) StreetlightsInBounds(ctx context.Context, b geo.Bounds) ([]models.Streetlight, error) {
	q := url.Values{}
	q.Set("west", formatCoord(b.West))
	q.Set("east", formatCoord(b.East))
	q.Set("south", formatCoord(b.South))
	q.Set("north", formatCoord(b.North))

	var resp models.StreetlightsResponse
	if err := c.getJSON(ctx, "/streetlights/map", q, &resp); err != nil {
		return nil, err
	}
	return resp.Streetlights, nil
}

func (c *Client) WattageOptions(ctx context.Context) ([]float64, error) {
	var resp models.WattageOptionsResponse
	if err := c.getJSON(ctx, "/streetlights/wattage-options", nil, &resp); err != nil {
		return nil, err
	}
	return resp.WattageOptions, nil
}

func (c *Client) PoleOwnerOptions(ctx context.Context) ([]string, error) {
	var resp models.PoleOwnerOptionsResponse
	if err := c.getJSON(ctx, "/streetlights/pole-owners", nil, &resp); err != nil {
		return nil, err
	}
	return resp.PoleOwnerOptions, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
