// Package nominatim resolves places with the OpenStreetMap Nominatim search
// API.
package nominatim

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

	"github.com/koscakluka/tripper/core/geocoding"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "trip-planner"
)

var tracer = otel.Tracer("github.com/koscakluka/tripper/core/geocoding/nominatim")

type Client struct {
	baseURL    string
	userAgent  string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithAcceptLanguage sets the preferred language of returned display names.
func WithAcceptLanguage(language string) ClientOption {
	return func(c *Client) {
		c.language = language
	}
}

// WithRateLimit limits outgoing requests, the public instance allows one per
// second. A non-positive interval disables limiting.
func WithRateLimit(interval time.Duration) ClientOption {
	return func(c *Client) {
		if interval <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResult struct {
	Latitude    string `json:"lat"`
	Longitude   string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve returns the best match for name.
func (c *Client) Resolve(ctx context.Context, name string) (geocoding.Point, bool, error) {
	ctx, span := tracer.Start(ctx, "geocode place")
	defer span.End()
	span.SetAttributes(attribute.String("request.place", name))

	name = strings.TrimSpace(name)
	if name == "" {
		return geocoding.Point{}, false, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return geocoding.Point{}, false, fmt.Errorf("rate limiter: %w", err)
	}

	query := url.Values{}
	query.Set("q", name)
	query.Set("format", "jsonv2")
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return geocoding.Point{}, false, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return geocoding.Point{}, false, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return geocoding.Point{}, false, err
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		err = fmt.Errorf("error decoding response: %w", err)
		span.RecordError(err)
		return geocoding.Point{}, false, err
	}
	if len(results) == 0 {
		span.AddEvent("place not found")
		return geocoding.Point{}, false, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Latitude, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Longitude, 64)
	if latErr != nil || lonErr != nil {
		span.AddEvent("malformed coordinates")
		return geocoding.Point{}, false, nil
	}

	span.SetAttributes(attribute.Float64("response.latitude", lat), attribute.Float64("response.longitude", lon))
	return geocoding.Point{
		Name:        name,
		DisplayName: results[0].DisplayName,
		Latitude:    lat,
		Longitude:   lon,
	}, true, nil
}

var _ geocoding.Geocoder = (*Client)(nil)
