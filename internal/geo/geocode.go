package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"photo-slideshow/internal/logging"
	"photo-slideshow/internal/metrics"
)

const (
	// DefaultEndpoint is the public Nominatim instance.
	DefaultEndpoint = "https://nominatim.openstreetmap.org"

	// DefaultUserAgent identifies this service to Nominatim, which
	// rejects anonymous clients.
	DefaultUserAgent = "photo-slideshow/1.0"

	requestTimeout = 10 * time.Second

	// reverseZoom 13 resolves to village/suburb granularity.
	reverseZoom = "13"
)

// Location is the place a coordinate pair resolves to. Nil fields were not
// present in the geocoder's answer.
type Location struct {
	Country *string
	Village *string
	Town    *string
	City    *string
}

// nominatimResponse mirrors the address portion of a Nominatim reverse
// lookup answer.
type nominatimResponse struct {
	Address struct {
		Country       string `json:"country"`
		Village       string `json:"village"`
		Town          string `json:"town"`
		City          string `json:"city"`
		Municipality  string `json:"municipality"`
		County        string `json:"county"`
		StateDistrict string `json:"state_district"`
	} `json:"address"`
}

// Geocoder resolves coordinates to place names through a Nominatim-style
// reverse geocoding endpoint. A circuit breaker shields the upstream when
// it starts failing.
type Geocoder struct {
	endpoint  string
	userAgent string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*nominatimResponse]
}

// NewGeocoder builds a Geocoder for the given endpoint. Empty arguments
// select the public Nominatim defaults.
func NewGeocoder(endpoint, userAgent string) *Geocoder {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Geocoder{
		endpoint:  endpoint,
		userAgent: userAgent,
		client:    &http.Client{Timeout: requestTimeout},
		breaker: gobreaker.NewCircuitBreaker[*nominatimResponse](gobreaker.Settings{
			Name:    "nominatim",
			Timeout: 30 * time.Second,
		}),
	}
}

// Reverse resolves lat/lon to a Location. Lookup failures are logged and
// produce an empty Location; enrichment treats that as "geocoded, nothing
// found" rather than aborting a batch.
func (g *Geocoder) Reverse(ctx context.Context, lat, lon float64) Location {
	start := time.Now()
	resp, err := g.breaker.Execute(func() (*nominatimResponse, error) {
		return g.lookup(ctx, lat, lon)
	})
	metrics.GeocodeRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		logging.Warn("Reverse geocode failed for %.6f,%.6f: %v", lat, lon, err)
		return Location{}
	}

	loc := locationFrom(resp)
	if loc == (Location{}) {
		metrics.GeocodeRequestsTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.GeocodeRequestsTotal.WithLabelValues("success").Inc()
	}
	return loc
}

func (g *Geocoder) lookup(ctx context.Context, lat, lon float64) (*nominatimResponse, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("zoom", reverseZoom)
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building reverse geocode request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	res, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocode returned status %d", res.StatusCode)
	}

	var decoded nominatimResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding reverse geocode response: %w", err)
	}
	return &decoded, nil
}

// locationFrom applies the place-name priority: village, town and city are
// taken as given; when all three are absent, municipality, county or state
// district stands in as the city.
func locationFrom(resp *nominatimResponse) Location {
	var loc Location
	addr := resp.Address

	loc.Country = optional(addr.Country)
	loc.Village = optional(addr.Village)
	loc.Town = optional(addr.Town)
	loc.City = optional(addr.City)

	if loc.Village == nil && loc.Town == nil && loc.City == nil {
		for _, fallback := range []string{addr.Municipality, addr.County, addr.StateDistrict} {
			if fallback != "" {
				loc.City = optional(fallback)
				break
			}
		}
	}

	return loc
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
