package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const defaultSourceURL = "https://classic.avalanche.state.co.us/caic/acc/acc_us.php"

// Geocoding providers.
const (
	ProviderGoogle = "google"
	ProviderMapbox = "mapbox"
	ProviderNone   = "none"
)

// Config holds all job settings, populated from environment variables.
type Config struct {
	JobID string

	SourceURL        string
	SourceTimeout    time.Duration
	SourceMaxRetries int

	DatabaseURL   string
	DBAutoMigrate bool

	// Geocoding configuration.
	GeocoderProvider  string
	GoogleMapsAPIKey  string
	MapboxToken       string
	GeocoderTimeout   time.Duration
	GeocoderCacheSize int

	// Cache invalidation: HTTP endpoint by default, Redis when an address is set.
	CacheInvalidationURL string
	CacheAPIKey          string
	CacheRedisAddr       string
	CacheRedisPassword   string

	KafkaBrokers []string
	KafkaTopic   string

	PushgatewayURL     string
	FailOnSourceShrink bool

	RunInterval     time.Duration
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	sourceTimeout, err := parsePositiveDuration("SOURCE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	geocoderTimeout, err := parsePositiveDuration("GEOCODER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	runInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("RUN_INTERVAL", "0s"))
	if err != nil || runInterval < 0 {
		return nil, errors.New("invalid RUN_INTERVAL")
	}

	maxRetries, err := strconv.Atoi(sharedcfg.EnvOrDefault("SOURCE_MAX_RETRIES", "3"))
	if err != nil || maxRetries < 0 || maxRetries > 10 {
		return nil, errors.New("invalid SOURCE_MAX_RETRIES: must be between 0 and 10")
	}

	cfg := &Config{
		JobID: os.Getenv("ELT_JOB_ID"),

		SourceURL:        sharedcfg.EnvOrDefault("SOURCE_URL", defaultSourceURL),
		SourceTimeout:    sourceTimeout,
		SourceMaxRetries: maxRetries,

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBAutoMigrate: os.Getenv("DB_AUTO_MIGRATE") == "true",

		GeocoderProvider:  strings.ToLower(sharedcfg.EnvOrDefault("GEOCODER_PROVIDER", ProviderGoogle)),
		GoogleMapsAPIKey:  os.Getenv("GOOGLE_MAPS_API_KEY"),
		MapboxToken:       os.Getenv("MAPBOX_TOKEN"),
		GeocoderTimeout:   geocoderTimeout,
		GeocoderCacheSize: parseCacheSize(),

		CacheInvalidationURL: os.Getenv("CACHE_INVALIDATION_URL"),
		CacheAPIKey:          os.Getenv("CACHE_API_KEY"),
		CacheRedisAddr:       os.Getenv("CACHE_REDIS_ADDR"),
		CacheRedisPassword:   os.Getenv("CACHE_REDIS_PASSWORD"),

		KafkaBrokers: sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "avalanche-accidents"),

		PushgatewayURL:     os.Getenv("PUSHGATEWAY_URL"),
		FailOnSourceShrink: os.Getenv("FAIL_ON_SOURCE_SHRINK") == "true",

		RunInterval:     runInterval,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.SourceURL == "" {
		return errors.New("SOURCE_URL is required")
	}

	switch c.GeocoderProvider {
	case ProviderGoogle:
		if c.GoogleMapsAPIKey == "" {
			return errors.New("GEOCODER_PROVIDER is google but GOOGLE_MAPS_API_KEY is not set")
		}
	case ProviderMapbox:
		if c.MapboxToken == "" {
			return errors.New("GEOCODER_PROVIDER is mapbox but MAPBOX_TOKEN is not set")
		}
	case ProviderNone:
	default:
		return fmt.Errorf("invalid GEOCODER_PROVIDER %q: must be google, mapbox, or none", c.GeocoderProvider)
	}

	if c.CacheInvalidationURL != "" && c.CacheRedisAddr != "" {
		return errors.New("set only one of CACHE_INVALIDATION_URL and CACHE_REDIS_ADDR")
	}
	if c.CacheInvalidationURL != "" && c.CacheAPIKey == "" {
		return errors.New("CACHE_INVALIDATION_URL is set but CACHE_API_KEY is not")
	}
	return nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseCacheSize() int {
	if s := os.Getenv("GEOCODER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return 1000
}
