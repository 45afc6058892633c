// Package config loads the matcher configuration from an optional file and MATCHER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. MATCHER_SCORING_WORKERS
const EnvPrefix = "MATCHER"

// Inference providers
const (
	ProviderNone   = "none"
	ProviderHTTP   = "http"
	ProviderGemini = "gemini"
)

// Config is the full matcher configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Inference InferenceConfig `mapstructure:"inference"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	RateLimit       float64       `mapstructure:"rate_limit" validate:"gte=0"` // requests per second per client, 0 disables
	RateBurst       int           `mapstructure:"rate_burst" validate:"gte=0"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig configures PostgreSQL
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig configures the job cache. An empty address disables it.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// NATSConfig configures match run events. An empty URL disables them.
type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// InferenceConfig selects and configures the external predictor
type InferenceConfig struct {
	Provider string        `mapstructure:"provider" validate:"oneof=none http gemini"`
	Endpoint string        `mapstructure:"endpoint" validate:"required_if=Provider http"`
	APIKey   string        `mapstructure:"api_key" validate:"required_if=Provider gemini"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Breaker  BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig configures the circuit breaker around the predictor
type BreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests" validate:"min=1"`
	Interval     time.Duration `mapstructure:"interval" validate:"gte=0"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MinRequests  uint32        `mapstructure:"min_requests" validate:"min=1"`
	FailureRatio float64       `mapstructure:"failure_ratio" validate:"gt=0,lte=1"`
}

// ScoringConfig tunes scoring runs
type ScoringConfig struct {
	Workers   int     `mapstructure:"workers" validate:"min=1,max=256"`
	Threshold float64 `mapstructure:"threshold" validate:"gt=0,lt=1"`
	TopN      int     `mapstructure:"top_n" validate:"min=1"`
	PageSize  int     `mapstructure:"page_size" validate:"min=1,max=1000"`
}

// MatchingConfig holds run-level policies
type MatchingConfig struct {
	PersistencePolicy string `mapstructure:"persistence_policy" validate:"oneof=fail degraded"`
}

// LogConfig configures logging
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// defaults are applied before the file and environment
var defaults = map[string]any{
	"server.port":                     8080,
	"server.rate_limit":               10.0,
	"server.rate_burst":               20,
	"server.allowed_origins":          []string{"*"},
	"server.shutdown_timeout":         "10s",
	"database.url":                    "",
	"redis.addr":                      "",
	"redis.password":                  "",
	"redis.db":                        0,
	"redis.ttl":                       "5m",
	"nats.url":                        "",
	"nats.subject":                    "matches.completed",
	"inference.provider":              ProviderNone,
	"inference.endpoint":              "",
	"inference.api_key":               "",
	"inference.timeout":               "5s",
	"inference.breaker.enabled":       true,
	"inference.breaker.max_requests":  3,
	"inference.breaker.interval":      "1m",
	"inference.breaker.timeout":       "30s",
	"inference.breaker.min_requests":  10,
	"inference.breaker.failure_ratio": 0.6,
	"scoring.workers":                 8,
	"scoring.threshold":               0.30,
	"scoring.top_n":                   10,
	"scoring.page_size":               100,
	"matching.persistence_policy":     "fail",
	"log.json":                        false,
	"log.debug":                       false,
}

// legacyEnv maps keys to unprefixed variables that are also honoured
var legacyEnv = map[string]string{
	"database.url":      "DATABASE_URL",
	"inference.api_key": "GEMINI_API_KEY",
	"redis.addr":        "REDIS_ADDR",
	"nats.url":          "NATS_URL",
}

// Load reads configuration from path (YAML or JSON, optional) and the environment,
// then validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Inference.Provider = strings.ToLower(strings.TrimSpace(cfg.Inference.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and cross-field requirements
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// Addr returns the HTTP listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}
