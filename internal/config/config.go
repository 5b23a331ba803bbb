package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Open-Meteo endpoints and client behavior.
	ForecastURL       string
	GeocodingURL      string
	ArchiveURL        string
	UserAgent         string
	UpstreamTimeout   time.Duration
	HistoricalTimeout time.Duration
	RetryAttempts     int
	RetryBaseDelay    time.Duration
	RetryMaxDelay     time.Duration

	// Forecast request shape.
	ForecastDays    int
	PastDays        int
	GeocodeCount    int
	GeocodeLanguage string

	// Caller-side TTL cache.
	GeocodeTTL    time.Duration
	ForecastTTL   time.Duration
	HistoricalTTL time.Duration

	// Archival sinks.
	DataDir            string
	DiskArchiveEnabled bool
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaTopic         string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	upstreamTimeout, err := parseDuration("OPENMETEO_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	historicalTimeout, err := parseDuration("OPENMETEO_HISTORICAL_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	retryBaseDelay, err := parseDuration("RETRY_BASE_DELAY", "400ms")
	if err != nil {
		return nil, err
	}
	retryMaxDelay, err := parseDuration("RETRY_MAX_DELAY", "5s")
	if err != nil {
		return nil, err
	}
	geocodeTTL, err := parseDuration("GEOCODE_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}
	forecastTTL, err := parseDuration("FORECAST_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}
	historicalTTL, err := parseDuration("HISTORICAL_CACHE_TTL", "12h")
	if err != nil {
		return nil, err
	}

	brokers := parseList(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ForecastURL:       envOrDefault("OPENMETEO_FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
		GeocodingURL:      envOrDefault("OPENMETEO_GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search"),
		ArchiveURL:        envOrDefault("OPENMETEO_ARCHIVE_URL", "https://archive-api.open-meteo.com/v1/archive"),
		UserAgent:         envOrDefault("HTTP_USER_AGENT", "meteo-expert-m2/1.0 (+https://github.com/Chahinez-moualek/meteo-expert-m2)"),
		UpstreamTimeout:   upstreamTimeout,
		HistoricalTimeout: historicalTimeout,
		RetryAttempts:     parsePositiveInt("RETRY_ATTEMPTS", 3),
		RetryBaseDelay:    retryBaseDelay,
		RetryMaxDelay:     retryMaxDelay,

		ForecastDays:    parsePositiveInt("FORECAST_DAYS", 7),
		PastDays:        parseNonNegativeInt("PAST_DAYS", 1),
		GeocodeCount:    parsePositiveInt("GEOCODE_COUNT", 10),
		GeocodeLanguage: envOrDefault("GEOCODE_LANGUAGE", "fr"),

		GeocodeTTL:    geocodeTTL,
		ForecastTTL:   forecastTTL,
		HistoricalTTL: historicalTTL,

		DataDir:            envOrDefault("DATA_DIR", "data"),
		DiskArchiveEnabled: envOrDefault("DISK_ARCHIVE_ENABLED", "true") == "true",
		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       brokers,
		KafkaTopic:         envOrDefault("KAFKA_TOPIC", "forecast-snapshots"),
	}

	if cfg.ForecastDays > 16 {
		return nil, errors.New("FORECAST_DAYS must be at most 16 (Open-Meteo limit)")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when Kafka archiving is enabled")
	}

	return cfg, nil
}

// envOrDefault returns the value of the environment variable, or the
// fallback when unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func parseNonNegativeInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

// parseList splits a comma-separated value into trimmed non-empty entries.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
