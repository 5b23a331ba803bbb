package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chahinez-moualek/meteo-expert-m2/internal/config"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/domain"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/observability"
)

func newTestClient(geocodingURL, forecastURL, archiveURL string) *Client {
	cfg := &config.Config{
		GeocodingURL:      geocodingURL,
		ForecastURL:       forecastURL,
		ArchiveURL:        archiveURL,
		UserAgent:         "meteo-test/1.0",
		UpstreamTimeout:   2 * time.Second,
		HistoricalTimeout: 2 * time.Second,
		RetryAttempts:     3,
		RetryBaseDelay:    time.Millisecond,
		RetryMaxDelay:     5 * time.Millisecond,
		ForecastDays:      7,
		PastDays:          1,
		GeocodeCount:      10,
		GeocodeLanguage:   "fr",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(cfg, observability.NewMetricsForTesting(), logger)
}

func TestGeocode(t *testing.T) {
	t.Run("parses results and skips malformed records", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Lyon", r.URL.Query().Get("name"))
			assert.Equal(t, "fr", r.URL.Query().Get("language"))
			assert.Equal(t, "10", r.URL.Query().Get("count"))
			assert.Equal(t, "meteo-test/1.0", r.Header.Get("User-Agent"))
			w.Write([]byte(`{"results":[
				{"name":"Lyon","country":"France","latitude":45.76,"longitude":4.84,"timezone":"Europe/Paris","elevation":173},
				{"name":"Broken","country":"France"},
				{"name":"Lyon","country_code":"US","latitude":42.94,"longitude":-85.06}
			]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, "", "")
		locations, err := client.Geocode(context.Background(), "Lyon", "")
		require.NoError(t, err)
		require.Len(t, locations, 2)

		assert.Equal(t, "Lyon", locations[0].Name)
		assert.Equal(t, "France", locations[0].Country)
		assert.Equal(t, 45.76, locations[0].Latitude)
		assert.Equal(t, "Europe/Paris", locations[0].Timezone)
		require.NotNil(t, locations[0].Elevation)
		assert.Equal(t, 173.0, *locations[0].Elevation)

		// country_code fallback and timezone default
		assert.Equal(t, "US", locations[1].Country)
		assert.Equal(t, "auto", locations[1].Timezone)
	})

	t.Run("short query skips the network entirely", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		client := newTestClient(server.URL, "", "")
		locations, err := client.Geocode(context.Background(), " L ", "")
		require.NoError(t, err)
		assert.Empty(t, locations)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("empty result set is not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, "", "")
		locations, err := client.Geocode(context.Background(), "Nowhereville", "")
		require.NoError(t, err)
		assert.Empty(t, locations)
	})

	t.Run("country filter is forwarded", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "FR", r.URL.Query().Get("countryCode"))
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, "", "")
		_, err := client.Geocode(context.Background(), "Paris", "FR")
		require.NoError(t, err)
	})
}

func TestForecast(t *testing.T) {
	t.Run("requests the full variable set and decodes the payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "kmh", q.Get("wind_speed_unit"))
			assert.Equal(t, "celsius", q.Get("temperature_unit"))
			assert.Equal(t, "7", q.Get("forecast_days"))
			assert.Equal(t, "1", q.Get("past_days"))
			assert.Equal(t, "Europe/Paris", q.Get("timezone"))
			assert.Contains(t, q.Get("current"), "weather_code")
			assert.Contains(t, q.Get("hourly"), "precipitation_probability")
			assert.Contains(t, q.Get("daily"), "sunrise")

			w.Write([]byte(`{
				"latitude": 45.76, "longitude": 4.84, "elevation": 173,
				"current": {"temperature_2m": 21.4, "is_day": 1},
				"hourly": {"time": ["2026-08-28T00:00"], "temperature_2m": [18.2]},
				"daily": {"time": ["2026-08-28"], "temperature_2m_max": [27.1]}
			}`))
		}))
		defer server.Close()

		client := newTestClient("", server.URL, "")
		payload, err := client.Forecast(context.Background(), lyon())
		require.NoError(t, err)

		assert.False(t, payload.IsEmpty())
		temp, ok := payload.CurrentNumber("temperature_2m")
		require.True(t, ok)
		assert.Equal(t, 21.4, temp)
		tmax, ok := payload.Daily.Max("temperature_2m_max")
		require.True(t, ok)
		assert.Equal(t, 27.1, tmax)
	})

	t.Run("missing timezone falls back to auto", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "auto", r.URL.Query().Get("timezone"))
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := newTestClient("", server.URL, "")
		loc := lyon()
		loc.Timezone = ""
		_, err := client.Forecast(context.Background(), loc)
		require.NoError(t, err)
	})
}

func TestHistoricalDaily(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2024-01-01", q.Get("start_date"))
		assert.Equal(t, "2024-01-03", q.Get("end_date"))
		w.Write([]byte(`{"daily":{
			"time": ["2024-01-01", "2024-01-02", "2024-01-03"],
			"temperature_2m_max": [8.1, null, 9.4],
			"temperature_2m_min": [2.0, 1.5, 3.2],
			"precipitation_sum": [0.0, 4.2, 1.1],
			"weather_code": [3, 61, 2]
		}}`))
	}))
	defer server.Close()

	client := newTestClient("", "", server.URL)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)

	rows, err := client.HistoricalDaily(context.Background(), lyon(), start, end)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, start, rows[0].Date)
	assert.Equal(t, 8.1, rows[0].TMax)
	assert.Equal(t, 2.0, rows[0].TMin)
	assert.True(t, math.IsNaN(rows[1].TMax), "null upstream value should surface as NaN")
	assert.Equal(t, 61.0, rows[1].WeatherCode)
}

func TestRetry(t *testing.T) {
	t.Run("recovers after transient statuses", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`{"latitude": 45.76, "current": {"temperature_2m": 20.0}}`))
		}))
		defer server.Close()

		client := newTestClient("", server.URL, "")
		payload, err := client.Forecast(context.Background(), lyon())
		require.NoError(t, err)
		assert.False(t, payload.IsEmpty())
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after the attempt budget", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := newTestClient("", server.URL, "")
		_, err := client.Forecast(context.Background(), lyon())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status 429")
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := newTestClient("", server.URL, "")
		_, err := client.Forecast(context.Background(), lyon())
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func lyon() domain.Location {
	return domain.Location{
		Name:      "Lyon",
		Country:   "France",
		Latitude:  45.76,
		Longitude: 4.84,
		Timezone:  "Europe/Paris",
	}
}
