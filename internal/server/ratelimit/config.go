package ratelimit

import (
	"time"

	"golang.org/x/time/rate"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string     // Endpoint path pattern (supports prefix matching)
	Method string     // HTTP method (GET, POST, etc.)
	Rate   rate.Limit // Sustained requests per second, 0 means unlimited
	Burst  int        // Burst capacity (defaults to 1 if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultRate     rate.Limit
	DefaultBurst    int
	CleanupInterval time.Duration
	IdleTimeout     time.Duration // buckets unused for this long are dropped
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds a configuration from a per-client request rate and burst.
// A non-positive rate disables limiting.
func NewConfig(perSecond float64, burst int) *Config {
	if perSecond <= 0 {
		return &Config{Enabled: false}
	}
	if burst <= 0 {
		burst = int(perSecond) + 1
	}
	return &Config{
		Enabled:         true,
		DefaultRate:     rate.Limit(perSecond),
		DefaultBurst:    burst,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Whitelist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Scoring runs touch the whole candidate pool
		{Path: "/matches", Method: "POST", Rate: rate.Every(6 * time.Second), Burst: 5},
		{Path: "/matches/stream", Method: "POST", Rate: rate.Every(6 * time.Second), Burst: 5},
		{Path: "/jobs/", Method: "POST", Rate: rate.Every(6 * time.Second), Burst: 5},
	}
}
