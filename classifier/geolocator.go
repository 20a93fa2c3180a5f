package classifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"blog-viewstats/cache"
	"blog-viewstats/metrics"
	"blog-viewstats/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Geolocator resolves an IP address to an ISO-3166 alpha-2 country code.
type Geolocator interface {
	Lookup(ctx context.Context, ip string) (string, error)
}

// IPAPIConfig configures the ip-api.com client.
type IPAPIConfig struct {
	Endpoint        string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	Client          *http.Client
}

// IPAPIGeolocator queries an ip-api.com compatible endpoint through a
// circuit breaker so an unreachable provider costs nothing once tripped.
type IPAPIGeolocator struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[string]
}

func NewIPAPIGeolocator(cfg IPAPIConfig) *IPAPIGeolocator {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://ip-api.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	settings := gobreaker.Settings{
		Name:    "geolocation",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// A provider that answers without a country is healthy.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrLookupFailed)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("geolocation circuit breaker state changed")
		},
	}

	return &IPAPIGeolocator{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		timeout:  cfg.Timeout,
		client:   client,
		breaker:  gobreaker.NewCircuitBreaker[string](settings),
	}
}

type ipAPIResponse struct {
	CountryCode string `json:"countryCode"`
}

// Lookup implements Geolocator.
func (g *IPAPIGeolocator) Lookup(ctx context.Context, ip string) (string, error) {
	code, err := g.breaker.Execute(func() (string, error) {
		return g.fetch(ctx, ip)
	})
	metrics.GeoLookups.WithLabelValues(lookupOutcome(err)).Inc()
	return code, err
}

func (g *IPAPIGeolocator) fetch(ctx context.Context, ip string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	target := fmt.Sprintf("%s/json/%s?fields=countryCode", g.endpoint, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&body); err != nil {
		return "", fmt.Errorf("decode geolocation response: %w", err)
	}
	if body.CountryCode == "" {
		return "", ErrLookupFailed
	}
	return models.NormalizeCountry(body.CountryCode), nil
}

func lookupOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrLookupFailed):
		return "no_data"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

// CachedGeolocator remembers successful answers of the wrapped Geolocator.
type CachedGeolocator struct {
	next  Geolocator
	cache cache.GeoCache
}

func NewCachedGeolocator(next Geolocator, c cache.GeoCache) *CachedGeolocator {
	return &CachedGeolocator{next: next, cache: c}
}

// Lookup implements Geolocator.
func (c *CachedGeolocator) Lookup(ctx context.Context, ip string) (string, error) {
	if code, err := c.cache.Get(ip); err == nil {
		return code, nil
	}
	code, err := c.next.Lookup(ctx, ip)
	if err != nil {
		return "", err
	}
	if setErr := c.cache.Set(ip, code); setErr != nil {
		log.Debug().Err(setErr).Msg("geo cache set failed")
	}
	return code, nil
}

// StaticGeolocator answers from a fixed table; unknown addresses map to XX.
type StaticGeolocator map[string]string

// Lookup implements Geolocator.
func (s StaticGeolocator) Lookup(_ context.Context, ip string) (string, error) {
	if code, ok := s[ip]; ok {
		return code, nil
	}
	return models.UnknownCountry, nil
}
