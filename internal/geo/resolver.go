// Package geo resolves client IP addresses to country codes for click
// analytics.
package geo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CountryUnknown is recorded when the originating country cannot be
// determined (missing IP, lookup failure, or geo lookups disabled).
const CountryUnknown = "N/A"

// defaultBaseURL is the ipinfo lite endpoint.
const defaultBaseURL = "https://api.ipinfo.io/lite"

// Resolver maps an IP address to an ISO country code. Implementations
// never fail the caller; unresolvable IPs yield CountryUnknown.
type Resolver interface {
	Resolve(ctx context.Context, ip string) string
}

// StaticResolver answers CountryUnknown for every IP. Used when no ipinfo
// token is configured and in tests.
type StaticResolver struct{}

func (StaticResolver) Resolve(context.Context, string) string {
	return CountryUnknown
}

// IPInfoResolver resolves countries through the ipinfo lite API, caching
// results in Redis keyed by IP. Cached entries never expire; an IP's
// country changes rarely enough that cache size is the only pressure, and
// Redis eviction handles that.
type IPInfoResolver struct {
	cache      *redis.Client // nil disables caching
	httpClient *http.Client
	token      string
	baseURL    string
	log        *slog.Logger
}

// NewIPInfoResolver creates a resolver using the given ipinfo token.
// cache may be nil, in which case every lookup hits the API.
func NewIPInfoResolver(cache *redis.Client, token string, log *slog.Logger) *IPInfoResolver {
	return &IPInfoResolver{
		cache:      cache,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		token:      token,
		baseURL:    defaultBaseURL,
		log:        log,
	}
}

// Resolve returns the country code for ip, or CountryUnknown when the
// lookup fails. Failures are logged, never propagated; a click with an
// unknown country is better than a dropped click.
func (r *IPInfoResolver) Resolve(ctx context.Context, ip string) string {
	if ip == "" {
		return CountryUnknown
	}

	if r.cache != nil {
		if country, err := r.cache.Get(ctx, ip).Result(); err == nil && country != "" {
			return country
		}
	}

	country, err := r.fetch(ctx, ip)
	if err != nil {
		r.log.Warn("geo lookup failed",
			slog.String("ip", ip),
			slog.String("error", err.Error()))
		return CountryUnknown
	}

	if r.cache != nil && country != CountryUnknown {
		if err := r.cache.Set(ctx, ip, country, 0).Err(); err != nil {
			r.log.Warn("failed to cache geo result", slog.String("error", err.Error()))
		}
	}
	return country
}

// fetch queries the ipinfo API, honoring Retry-After on rate limiting for
// up to 3 attempts. The token travels in a header, never in the URL:
// transport errors embed the request URL and end up in logs.
func (r *IPInfoResolver) fetch(ctx context.Context, ip string) (string, error) {
	url := fmt.Sprintf("%s/%s/country", r.baseURL, ip)

	for attempt := 0; attempt < 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("Authorization", "Bearer "+r.token)

		resp, err := r.httpClient.Do(req)
		if err != nil {
			return "", err
		}

		switch resp.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(string(body)), nil

		case http.StatusTooManyRequests:
			retryAfter := resp.Header.Get("Retry-After")
			resp.Body.Close()
			seconds, err := strconv.Atoi(retryAfter)
			if err != nil {
				return "", fmt.Errorf("rate limited without usable retry-after %q", retryAfter)
			}
			select {
			case <-time.After(time.Duration(seconds) * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}

		default:
			resp.Body.Close()
			// Unroutable or private IPs are normal; treat as unknown.
			return CountryUnknown, nil
		}
	}

	return "", fmt.Errorf("rate limited on all 3 attempts")
}

var (
	_ Resolver = (*IPInfoResolver)(nil)
	_ Resolver = StaticResolver{}
)
