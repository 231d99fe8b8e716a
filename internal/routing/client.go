// Package routing is the OpenRouteService client used by trip planning:
// geocoding of free-text locations and heavy-goods-vehicle directions.
// Responses are cached and upstream calls are held to an hourly budget.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// Recorder observes each upstream request. outcome is one of "ok",
// "error", "rate_limited" or "cache_hit".
type Recorder func(endpoint, outcome string)

// Client talks to the OpenRouteService API.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
	cache    Cache
	cacheTTL time.Duration
	record   Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithCache replaces the default in-process cache.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) { c.cache, c.cacheTTL = cache, ttl }
}

// WithRequestsPerHour caps upstream requests. The whole hourly budget is
// available as a burst and refills evenly over the hour.
func WithRequestsPerHour(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Hour/time.Duration(n)), n)
		}
	}
}

// WithRecorder installs a metrics hook.
func WithRecorder(r Recorder) Option { return func(c *Client) { c.record = r } }

// NewClient builds a client for baseURL authenticating with apiKey.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
		cache:    NewMemoryCache(),
		cacheTTL: time.Hour,
		record:   func(string, string) {},
	}
	WithRequestsPerHour(40)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

const (
	endpointGeocode    = "geocode"
	endpointDirections = "directions"
)

// Geocode resolves a free-text location to a coordinate.
func (c *Client) Geocode(ctx context.Context, text string) (domain.Coordinate, error) {
	text = strings.TrimSpace(text)
	key := "geocode:" + strings.ToLower(text)

	var coord domain.Coordinate
	if c.cached(ctx, endpointGeocode, key, &coord) {
		return coord, nil
	}

	var resp struct {
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	q := url.Values{"text": {text}, "size": {"1"}}
	if err := c.do(ctx, endpointGeocode, http.MethodGet, "/geocode/search?"+q.Encode(), nil, &resp); err != nil {
		return domain.Coordinate{}, fmt.Errorf("routing.Client.Geocode: %w: %q: %w", domain.ErrGeocoding, text, err)
	}
	if len(resp.Features) == 0 || len(resp.Features[0].Geometry.Coordinates) < 2 {
		return domain.Coordinate{}, fmt.Errorf("routing.Client.Geocode: %w: location not found: %q", domain.ErrGeocoding, text)
	}

	coord = domain.Coordinate{
		Lon: resp.Features[0].Geometry.Coordinates[0],
		Lat: resp.Features[0].Geometry.Coordinates[1],
	}
	c.store(ctx, key, coord)
	return coord, nil
}

// Directions returns the HGV route summary between two points.
func (c *Client) Directions(ctx context.Context, from, to domain.Coordinate) (domain.RouteLeg, error) {
	key := fmt.Sprintf("directions:%.6f,%.6f;%.6f,%.6f", from.Lon, from.Lat, to.Lon, to.Lat)

	var leg cachedLeg
	if c.cached(ctx, endpointDirections, key, &leg) {
		return leg.toDomain(), nil
	}

	body := map[string]any{
		"coordinates": [][]float64{{from.Lon, from.Lat}, {to.Lon, to.Lat}},
		"preference":  "recommended",
		"units":       "m",
		"geometry":    true,
	}
	var resp struct {
		Routes []struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
			Geometry json.RawMessage `json:"geometry"`
		} `json:"routes"`
	}
	if err := c.do(ctx, endpointDirections, http.MethodPost, "/v2/directions/driving-hgv", body, &resp); err != nil {
		return domain.RouteLeg{}, fmt.Errorf("routing.Client.Directions: %w: %w", domain.ErrRouteCalculation, err)
	}
	if len(resp.Routes) == 0 {
		return domain.RouteLeg{}, fmt.Errorf("routing.Client.Directions: %w: no route found", domain.ErrRouteCalculation)
	}

	r := resp.Routes[0]
	leg = cachedLeg{Distance: r.Summary.Distance, Duration: r.Summary.Duration, Geometry: r.Geometry}
	c.store(ctx, key, leg)
	return leg.toDomain(), nil
}

// PickupAllowance is added to the route's total duration for loading.
const PickupAllowance = time.Hour

// CalculateRoute geocodes the trip's three locations and routes
// current → pickup → dropoff.
func (c *Client) CalculateRoute(ctx context.Context, trip domain.Trip) (domain.Route, error) {
	var coords [3]domain.Coordinate
	for i, loc := range []string{trip.CurrentLocation, trip.PickupLocation, trip.DropoffLocation} {
		coord, err := c.Geocode(ctx, loc)
		if err != nil {
			return domain.Route{}, fmt.Errorf("routing.Client.CalculateRoute: %w", err)
		}
		coords[i] = coord
	}

	first, err := c.Directions(ctx, coords[0], coords[1])
	if err != nil {
		return domain.Route{}, fmt.Errorf("routing.Client.CalculateRoute: first leg: %w", err)
	}
	second, err := c.Directions(ctx, coords[1], coords[2])
	if err != nil {
		return domain.Route{}, fmt.Errorf("routing.Client.CalculateRoute: second leg: %w", err)
	}

	return domain.Route{
		Origin:          coords[0],
		Pickup:          coords[1],
		Dropoff:         coords[2],
		DistanceMeters:  first.DistanceMeters + second.DistanceMeters,
		DurationSeconds: first.DurationSeconds + second.DurationSeconds + PickupAllowance.Seconds(),
		Legs:            []domain.RouteLeg{first, second},
	}, nil
}

// do sends one rate-limited request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, endpoint, method, path string, body, out any) error {
	if !c.limiter.Allow() {
		c.record(endpoint, "rate_limited")
		return domain.ErrRateLimited
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.record(endpoint, "error")
		return fmt.Errorf("%w: %w", domain.ErrRouting, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.record(endpoint, "error")
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: upstream %s returned %d: %s", domain.ErrRouting, endpoint, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.record(endpoint, "error")
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrRouting, endpoint, err)
	}
	c.record(endpoint, "ok")
	return nil
}

// cached loads key into dst. Cache failures are logged and treated as misses.
func (c *Client) cached(ctx context.Context, endpoint, key string, dst any) bool {
	b, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "routing cache read failed", "key", key, "error", err)
		return false
	}
	if !ok || json.Unmarshal(b, dst) != nil {
		return false
	}
	c.record(endpoint, "cache_hit")
	return true
}

func (c *Client) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, b, c.cacheTTL); err != nil {
		slog.WarnContext(ctx, "routing cache write failed", "key", key, "error", err)
	}
}

type cachedLeg struct {
	Distance float64         `json:"distance"`
	Duration float64         `json:"duration"`
	Geometry json.RawMessage `json:"geometry,omitempty"`
}

func (l cachedLeg) toDomain() domain.RouteLeg {
	return domain.RouteLeg{DistanceMeters: l.Distance, DurationSeconds: l.Duration, Geometry: l.Geometry}
}
