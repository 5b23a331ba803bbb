package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.ForecastURL)
	assert.Equal(t, "https://geocoding-api.open-meteo.com/v1/search", cfg.GeocodingURL)
	assert.Equal(t, "https://archive-api.open-meteo.com/v1/archive", cfg.ArchiveURL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 15*time.Second, cfg.HistoricalTimeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 400*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 5*time.Second, cfg.RetryMaxDelay)

	assert.Equal(t, 7, cfg.ForecastDays)
	assert.Equal(t, 1, cfg.PastDays)
	assert.Equal(t, 10, cfg.GeocodeCount)
	assert.Equal(t, "fr", cfg.GeocodeLanguage)

	assert.Equal(t, time.Hour, cfg.GeocodeTTL)
	assert.Equal(t, 10*time.Minute, cfg.ForecastTTL)
	assert.Equal(t, 12*time.Hour, cfg.HistoricalTTL)

	assert.Equal(t, "data", cfg.DataDir)
	assert.True(t, cfg.DiskArchiveEnabled)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "forecast-snapshots", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("OPENMETEO_FORECAST_URL", "http://localhost:8081/v1/forecast")
	t.Setenv("OPENMETEO_TIMEOUT", "2s")
	t.Setenv("RETRY_ATTEMPTS", "5")
	t.Setenv("FORECAST_DAYS", "14")
	t.Setenv("PAST_DAYS", "0")
	t.Setenv("GEOCODE_LANGUAGE", "en")
	t.Setenv("FORECAST_CACHE_TTL", "1m")
	t.Setenv("DATA_DIR", "/tmp/weather-data")
	t.Setenv("DISK_ARCHIVE_ENABLED", "false")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8081/v1/forecast", cfg.ForecastURL)
	assert.Equal(t, 2*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, 14, cfg.ForecastDays)
	assert.Equal(t, 0, cfg.PastDays)
	assert.Equal(t, "en", cfg.GeocodeLanguage)
	assert.Equal(t, time.Minute, cfg.ForecastTTL)
	assert.Equal(t, "/tmp/weather-data", cfg.DataDir)
	assert.False(t, cfg.DiskArchiveEnabled)

	assert.True(t, cfg.KafkaEnabled, "setting brokers enables kafka archiving")
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092")
	t.Setenv("KAFKA_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeDuration(t *testing.T) {
	t.Setenv("OPENMETEO_TIMEOUT", "-5s")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ForecastDaysAboveLimit(t *testing.T) {
	t.Setenv("FORECAST_DAYS", "30")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FORECAST_DAYS")
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("RETRY_ATTEMPTS", "zero")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.RetryAttempts)
}
