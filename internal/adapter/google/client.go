package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/address-verify-service/internal/domain"
	"github.com/couchcryptid/address-verify-service/internal/observability"
)

// DefaultBaseURL is the Google Geocoding JSON endpoint.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"

	methodForward = "forward"
	methodReverse = "reverse"
)

// Client implements domain.Geocoder using the Google Geocoding API.
type Client struct {
	key        string
	language   string
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithLanguage sets the language of returned address components.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// NewClient creates a Google geocoding client.
func NewClient(key string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		key:      key,
		language: "he",
		baseURL:  DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ domain.Geocoder = (*Client)(nil)

// Geocode resolves a free-text address to its best match.
func (c *Client) Geocode(ctx context.Context, address string) (domain.GeocodeResult, error) {
	params := url.Values{
		"address":  {address},
		"language": {c.language},
		"key":      {c.key},
	}

	resp, err := c.doRequest(ctx, params, methodForward)
	if err != nil {
		return domain.GeocodeResult{}, err
	}
	if len(resp.Results) == 0 {
		return domain.GeocodeResult{}, nil
	}
	return resp.Results[0].toDomain(), nil
}

// ReverseGeocode resolves coordinates, preferring the first result that
// carries a postal code.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodeResult, error) {
	params := url.Values{
		"latlng":   {formatCoord(lat) + "," + formatCoord(lon)},
		"language": {c.language},
		"key":      {c.key},
	}

	resp, err := c.doRequest(ctx, params, methodReverse)
	if err != nil {
		return domain.GeocodeResult{}, err
	}
	if len(resp.Results) == 0 {
		return domain.GeocodeResult{}, nil
	}
	for _, r := range resp.Results {
		if r.component("postal_code") != "" {
			return r.toDomain(), nil
		}
	}
	return resp.Results[0].toDomain(), nil
}

func (c *Client) doRequest(ctx context.Context, params url.Values, method string) (response, error) {
	start := time.Now()
	resp, err := c.fetch(ctx, params, method)
	c.metrics.GeocodeAPIDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		c.logger.Warn("geocode request failed", "method", method, "error", err)
	case len(resp.Results) == 0:
		c.metrics.GeocodeRequests.WithLabelValues(method, "empty").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues(method, "success").Inc()
	}
	return resp, err
}

func (c *Client) fetch(ctx context.Context, params url.Values, method string) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		// *url.Error carries the request URL, and with it the API key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return response{}, fmt.Errorf("%s geocode request: %w", method, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 1024))
		return response{}, fmt.Errorf("google API error: status %d: %s", httpResp.StatusCode, body)
	}

	var resp response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return response{}, fmt.Errorf("decode response: %w", err)
	}

	switch resp.Status {
	case statusOK:
		return resp, nil
	case statusZeroResults:
		return response{Status: resp.Status}, nil
	default:
		if resp.ErrorMessage != "" {
			return response{}, fmt.Errorf("google API status %s: %s", resp.Status, resp.ErrorMessage)
		}
		return response{}, fmt.Errorf("google API status %s", resp.Status)
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Google Geocoding API response types.

type response struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Results      []result `json:"results"`
}

type result struct {
	FormattedAddress  string             `json:"formatted_address"`
	AddressComponents []addressComponent `json:"address_components"`
	Geometry          geometry           `json:"geometry"`
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type geometry struct {
	Location     latLng `json:"location"`
	LocationType string `json:"location_type"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// component returns the long name of the first component carrying any of types.
func (r result) component(types ...string) string {
	for _, ac := range r.AddressComponents {
		for _, have := range ac.Types {
			for _, want := range types {
				if have == want {
					return ac.LongName
				}
			}
		}
	}
	return ""
}

func (r result) toDomain() domain.GeocodeResult {
	return domain.GeocodeResult{
		Found:            true,
		FormattedAddress: r.FormattedAddress,
		PrecisionTag:     domain.PrecisionTag(r.Geometry.LocationType),
		Components: domain.Components{
			City:        r.component("locality", "administrative_area_level_2"),
			Street:      r.component("route"),
			HouseNumber: r.component("street_number"),
			PostalCode:  r.component("postal_code"),
		},
		Lat: r.Geometry.Location.Lat,
		Lon: r.Geometry.Location.Lng,
	}
}
