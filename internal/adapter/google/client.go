// Package google geocodes refined accident locations with the Google Maps
// Geocoding API.
package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"googlemaps.github.io/maps"

	"github.com/couchcryptid/avalanche-accident-etl/internal/domain"
	"github.com/couchcryptid/avalanche-accident-etl/internal/observability"
)

const providerLabel = "google"

// Client implements domain.Geocoder on top of the Google Maps client.
type Client struct {
	maps    *maps.Client
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option customizes the underlying maps client.
type Option func(*[]maps.ClientOption)

// WithBaseURL points the client at a different API host. Used by tests.
func WithBaseURL(u string) Option {
	return func(opts *[]maps.ClientOption) {
		*opts = append(*opts, maps.WithBaseURL(u))
	}
}

// NewClient creates a Google geocoding client. Each request is bounded by
// timeout.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) (*Client, error) {
	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	for _, o := range opts {
		o(&clientOpts)
	}

	mc, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create google maps client: %w", err)
	}
	return &Client{maps: mc, metrics: metrics, logger: logger}, nil
}

// Geocode returns the coordinates of the first result for location, or nil
// when Google reports no match.
func (c *Client) Geocode(ctx context.Context, location string) (*domain.Coordinates, error) {
	start := time.Now()
	results, err := c.maps.Geocode(ctx, &maps.GeocodingRequest{
		Address: location,
		Region:  "us",
	})
	c.metrics.GeocodeAPIDuration.WithLabelValues(providerLabel).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(providerLabel, "error").Inc()
		return nil, fmt.Errorf("google geocode request: %w", err)
	}
	if len(results) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues(providerLabel, "empty").Inc()
		return nil, nil
	}

	c.metrics.GeocodeRequests.WithLabelValues(providerLabel, "success").Inc()
	best := results[0]
	c.logger.Debug("google match", "formatted_address", best.FormattedAddress, "location_type", best.Geometry.LocationType)
	return &domain.Coordinates{
		Lat: best.Geometry.Location.Lat,
		Lng: best.Geometry.Location.Lng,
	}, nil
}
