// Package openmeteo implements the geocoding, forecast, and historical
// adapters against the Open-Meteo public APIs.
//
// Transient upstream failures (429 and 5xx, timeouts) are retried with
// exponential backoff entirely inside this package; the pipeline above it
// only ever sees a final result or a final error.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Chahinez-moualek/meteo-expert-m2/internal/config"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/domain"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/observability"
)

// Variable lists requested from the forecast endpoint, mirroring what the
// dashboard renders.
var (
	currentVariables = []string{
		"temperature_2m", "relative_humidity_2m", "apparent_temperature",
		"is_day", "precipitation", "rain", "showers", "snowfall",
		"weather_code", "cloud_cover",
		"wind_speed_10m", "wind_direction_10m", "wind_gusts_10m",
	}
	hourlyVariables = []string{
		"temperature_2m", "apparent_temperature", "precipitation_probability",
		"precipitation", "is_day", "weather_code",
		"wind_speed_10m", "wind_gusts_10m",
	}
	dailyVariables = []string{
		"weather_code", "temperature_2m_max", "temperature_2m_min",
		"precipitation_sum", "precipitation_probability_max",
		"wind_speed_10m_max", "wind_gusts_10m_max", "sunrise", "sunset",
	}
	historicalVariables = []string{
		"temperature_2m_max", "temperature_2m_min", "precipitation_sum", "weather_code",
	}
)

// Client calls the Open-Meteo APIs with bounded timeouts and retry.
type Client struct {
	httpClient *http.Client

	geocodingURL string
	forecastURL  string
	archiveURL   string
	userAgent    string

	forecastDays    int
	pastDays        int
	geocodeCount    int
	geocodeLanguage string

	upstreamTimeout   time.Duration
	historicalTimeout time.Duration
	retryAttempts     int
	retryBaseDelay    time.Duration
	retryMaxDelay     time.Duration

	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates an Open-Meteo client from service configuration.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		// Per-endpoint deadlines are applied via request contexts, so the
		// underlying client carries no global timeout of its own.
		httpClient: &http.Client{},

		geocodingURL: cfg.GeocodingURL,
		forecastURL:  cfg.ForecastURL,
		archiveURL:   cfg.ArchiveURL,
		userAgent:    cfg.UserAgent,

		forecastDays:    cfg.ForecastDays,
		pastDays:        cfg.PastDays,
		geocodeCount:    cfg.GeocodeCount,
		geocodeLanguage: cfg.GeocodeLanguage,

		upstreamTimeout:   cfg.UpstreamTimeout,
		historicalTimeout: cfg.HistoricalTimeout,
		retryAttempts:     cfg.RetryAttempts,
		retryBaseDelay:    cfg.RetryBaseDelay,
		retryMaxDelay:     cfg.RetryMaxDelay,

		metrics: metrics,
		logger:  logger,
	}
}

// Geocoding API response shape.

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
}

type geocodeResult struct {
	Name        string   `json:"name"`
	Country     string   `json:"country"`
	CountryCode string   `json:"country_code"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Timezone    string   `json:"timezone"`
	Elevation   *float64 `json:"elevation"`
}

// Geocode searches for a city by free-text name and returns candidate
// locations in provider order. Queries shorter than two characters return
// no candidates without a network call. Records missing coordinates are
// skipped rather than failing the whole response.
func (c *Client) Geocode(ctx context.Context, name, countryCode string) ([]domain.Location, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, nil
	}

	params := url.Values{
		"name":     {name},
		"count":    {strconv.Itoa(c.geocodeCount)},
		"format":   {"json"},
		"language": {c.geocodeLanguage},
	}
	if countryCode != "" {
		params.Set("countryCode", countryCode)
	}

	var resp geocodeResponse
	if err := c.getJSON(ctx, "geocode", c.geocodingURL+"?"+params.Encode(), c.upstreamTimeout, &resp); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", name, err)
	}

	locations := make([]domain.Location, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Latitude == nil || r.Longitude == nil {
			continue
		}
		country := r.Country
		if country == "" {
			country = r.CountryCode
		}
		tz := r.Timezone
		if tz == "" {
			tz = "auto"
		}
		locations = append(locations, domain.Location{
			Name:      r.Name,
			Country:   country,
			Latitude:  *r.Latitude,
			Longitude: *r.Longitude,
			Timezone:  tz,
			Elevation: r.Elevation,
		})
	}
	if len(locations) == 0 {
		c.metrics.UpstreamRequests.WithLabelValues("geocode", "empty").Inc()
	}
	return locations, nil
}

// Forecast fetches current conditions plus hourly and daily forecasts for a
// location.
func (c *Client) Forecast(ctx context.Context, loc domain.Location) (domain.ForecastPayload, error) {
	params := url.Values{
		"latitude":           {formatCoord(loc.Latitude)},
		"longitude":          {formatCoord(loc.Longitude)},
		"timezone":           {timezoneOrAuto(loc)},
		"forecast_days":      {strconv.Itoa(c.forecastDays)},
		"past_days":          {strconv.Itoa(c.pastDays)},
		"wind_speed_unit":    {"kmh"},
		"temperature_unit":   {"celsius"},
		"precipitation_unit": {"mm"},
		"current":            {strings.Join(currentVariables, ",")},
		"hourly":             {strings.Join(hourlyVariables, ",")},
		"daily":              {strings.Join(dailyVariables, ",")},
	}

	var payload domain.ForecastPayload
	if err := c.getJSON(ctx, "forecast", c.forecastURL+"?"+params.Encode(), c.upstreamTimeout, &payload); err != nil {
		return domain.ForecastPayload{}, fmt.Errorf("forecast %s: %w", loc.Label(), err)
	}
	if payload.IsEmpty() {
		c.metrics.UpstreamRequests.WithLabelValues("forecast", "empty").Inc()
	}
	return payload, nil
}

// HistoricalDaily fetches historical daily data for a date range and
// projects it into tidy rows (date, tmax, tmin, precip_sum, weather_code).
func (c *Client) HistoricalDaily(ctx context.Context, loc domain.Location, start, end time.Time) ([]domain.HistoricalDay, error) {
	params := url.Values{
		"latitude":           {formatCoord(loc.Latitude)},
		"longitude":          {formatCoord(loc.Longitude)},
		"timezone":           {timezoneOrAuto(loc)},
		"start_date":         {start.Format("2006-01-02")},
		"end_date":           {end.Format("2006-01-02")},
		"daily":              {strings.Join(historicalVariables, ",")},
		"wind_speed_unit":    {"kmh"},
		"temperature_unit":   {"celsius"},
		"precipitation_unit": {"mm"},
	}

	var payload struct {
		Daily domain.Section `json:"daily"`
	}
	if err := c.getJSON(ctx, "historical", c.archiveURL+"?"+params.Encode(), c.historicalTimeout, &payload); err != nil {
		return nil, fmt.Errorf("historical %s: %w", loc.Label(), err)
	}

	rows := historicalRows(payload.Daily)
	if len(rows) == 0 {
		c.metrics.UpstreamRequests.WithLabelValues("historical", "empty").Inc()
	}
	return rows, nil
}

// historicalRows reshapes the archive daily section into row form.
func historicalRows(daily domain.Section) []domain.HistoricalDay {
	t := domain.TableFromSection(daily)
	if t.IsEmpty() {
		return nil
	}

	rows := make([]domain.HistoricalDay, t.Len())
	for i := range rows {
		rows[i] = domain.HistoricalDay{
			Date:        t.Time[i],
			TMax:        numericAt(t, "temperature_2m_max", i),
			TMin:        numericAt(t, "temperature_2m_min", i),
			PrecipSum:   numericAt(t, "precipitation_sum", i),
			WeatherCode: numericAt(t, "weather_code", i),
		}
	}
	return rows
}

func numericAt(t domain.Table, key string, i int) float64 {
	col, ok := t.Numeric[key]
	if !ok {
		return math.NaN()
	}
	return col[i]
}

// getJSON performs a GET with retry and decodes the JSON body into out.
// Transient statuses and timeouts are retried with capped exponential
// backoff plus jitter; other failures return immediately.
func (c *Client) getJSON(ctx context.Context, endpoint, fullURL string, timeout time.Duration, out any) error {
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			c.metrics.UpstreamRetries.Inc()
			c.logger.Debug("retrying upstream request",
				"endpoint", endpoint,
				"attempt", attempt,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				c.observe(endpoint, "error", start)
				return ctx.Err()
			case <-time.After(c.backoffDelay(attempt)):
			}
		}

		err := c.doOnce(ctx, fullURL, timeout, out)
		if err == nil {
			c.observe(endpoint, "success", start)
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
	}

	c.observe(endpoint, "error", start)
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, fullURL string, timeout time.Duration, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) observe(endpoint, outcome string, start time.Time) {
	c.metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// backoffDelay doubles the base delay per attempt, caps it, and adds up to
// 10% jitter to avoid synchronized retries.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := float64(c.retryBaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(c.retryMaxDelay) {
		delay = float64(c.retryMaxDelay)
	}
	jitter := delay * 0.1 * rand.Float64()
	return time.Duration(delay + jitter)
}

// statusError marks a non-200 upstream response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

// transientStatuses are retried before giving up: server overload and
// gateway issues.
var transientStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return transientStatuses[se.code]
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Timeout() || ue.Temporary()
	}
	return false
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func timezoneOrAuto(loc domain.Location) string {
	if loc.Timezone == "" {
		return "auto"
	}
	return loc.Timezone
}
