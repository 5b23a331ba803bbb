// Package pipeline orchestrates the fetch → normalize → classify → archive
// flow and is the single place where upstream failures are absorbed:
// adapters return errors, the pipeline logs and counts them, and callers
// only ever see data or an empty result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Chahinez-moualek/meteo-expert-m2/internal/domain"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/observability"
)

// Geocoder resolves a free-text city query to candidate locations.
type Geocoder interface {
	Geocode(ctx context.Context, name, countryCode string) ([]domain.Location, error)
}

// Forecaster fetches a full forecast payload for a location.
type Forecaster interface {
	Forecast(ctx context.Context, loc domain.Location) (domain.ForecastPayload, error)
}

// Historian fetches historical daily rows for a date range.
type Historian interface {
	HistoricalDaily(ctx context.Context, loc domain.Location, start, end time.Time) ([]domain.HistoricalDay, error)
}

// Archiver persists a forecast snapshot to a sink (disk, Kafka). Archiving
// is best-effort: a failing sink never fails the fetch that produced the
// snapshot.
type Archiver interface {
	Name() string
	ArchiveForecast(ctx context.Context, snap domain.ForecastSnapshot) error
}

// HistoryArchiver persists historical rows as a side artifact.
type HistoryArchiver interface {
	ArchiveHistorical(ctx context.Context, loc domain.Location, start, end time.Time, days []domain.HistoricalDay) error
}

// SearchArchiver persists raw geocoding results as a side artifact.
type SearchArchiver interface {
	ArchiveGeocode(ctx context.Context, query string, locations []domain.Location) error
}

// ForecastBundle is a normalized forecast ready for presentation: the raw
// payload plus tidy tables and the vigilance classification.
type ForecastBundle struct {
	Location  domain.Location
	Payload   domain.ForecastPayload
	Hourly    domain.Table
	Daily     domain.Table
	Vigilance domain.Vigilance
	FetchedAt time.Time
}

// IsEmpty reports whether the bundle carries no forecast data.
func (b ForecastBundle) IsEmpty() bool {
	return b.Payload.IsEmpty()
}

// HistoricalReport is a normalized historical query result.
type HistoricalReport struct {
	Location domain.Location
	Start    time.Time
	End      time.Time
	Days     []domain.HistoricalDay

	TMaxStats   domain.TemperatureStats
	TMinStats   domain.TemperatureStats
	HasStats    bool
	MonthlyMean []domain.MonthlyMean
}

// Options wires a Pipeline. Archivers, History, and Searches are optional.
type Options struct {
	Geocoder   Geocoder
	Forecaster Forecaster
	Historian  Historian
	Archivers  []Archiver
	History    HistoryArchiver
	Searches   SearchArchiver

	GeocodeTTL    time.Duration
	ForecastTTL   time.Duration
	HistoricalTTL time.Duration

	Clock   clockwork.Clock
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Pipeline coordinates adapters, caching, and archiving.
type Pipeline struct {
	geocoder   Geocoder
	forecaster Forecaster
	historian  Historian
	archivers  []Archiver
	history    HistoryArchiver
	searches   SearchArchiver

	geocodeCache    *ttlCache[[]domain.Location]
	forecastCache   *ttlCache[ForecastBundle]
	historicalCache *ttlCache[HistoricalReport]

	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline from options.
func New(opts Options) *Pipeline {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		geocoder:   opts.Geocoder,
		forecaster: opts.Forecaster,
		historian:  opts.Historian,
		archivers:  opts.Archivers,
		history:    opts.History,
		searches:   opts.Searches,

		geocodeCache:    newTTLCache[[]domain.Location](opts.GeocodeTTL, clock),
		forecastCache:   newTTLCache[ForecastBundle](opts.ForecastTTL, clock),
		historicalCache: newTTLCache[HistoricalReport](opts.HistoricalTTL, clock),

		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// CheckReadiness returns nil once at least one upstream fetch has succeeded,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no upstream fetch has succeeded yet")
	}
	return nil
}

// Search resolves a city query to candidate locations. Failures degrade to
// an empty list.
func (p *Pipeline) Search(ctx context.Context, query, countryCode string) []domain.Location {
	key := strings.ToLower(strings.TrimSpace(query)) + "|" + countryCode
	if cached, ok := p.geocodeCache.get(key); ok {
		p.metrics.CacheLookups.WithLabelValues("geocode", "hit").Inc()
		return cached
	}
	p.metrics.CacheLookups.WithLabelValues("geocode", "miss").Inc()

	locations, err := p.geocoder.Geocode(ctx, query, countryCode)
	if err != nil {
		p.logger.Error("geocoding failed", "query", query, "error", err)
		return nil
	}
	p.markReady()

	// Empty results are not cached so a later retry can still find the city.
	if len(locations) > 0 {
		p.geocodeCache.put(key, locations)
	}
	if p.searches != nil {
		if err := p.searches.ArchiveGeocode(ctx, query, locations); err != nil {
			p.logger.Warn("geocode archive failed", "query", query, "error", err)
		}
	}
	return locations
}

// Forecast fetches and normalizes a forecast for a location, archiving the
// snapshot to every configured sink. Failures degrade to an empty bundle.
func (p *Pipeline) Forecast(ctx context.Context, loc domain.Location) ForecastBundle {
	key := forecastKey(loc)
	if cached, ok := p.forecastCache.get(key); ok {
		p.metrics.CacheLookups.WithLabelValues("forecast", "hit").Inc()
		return cached
	}
	p.metrics.CacheLookups.WithLabelValues("forecast", "miss").Inc()

	payload, err := p.forecaster.Forecast(ctx, loc)
	if err != nil {
		p.logger.Error("forecast fetch failed", "location", loc.Label(), "error", err)
		return ForecastBundle{Location: loc}
	}
	p.markReady()
	if payload.IsEmpty() {
		p.logger.Warn("forecast came back empty", "location", loc.Label())
		return ForecastBundle{Location: loc}
	}

	snap := domain.NewForecastSnapshot(loc, payload)
	p.metrics.VigilanceComputed.WithLabelValues(string(snap.Vigilance.Level)).Inc()

	bundle := ForecastBundle{
		Location:  loc,
		Payload:   payload,
		Hourly:    domain.HourlyTable(payload),
		Daily:     domain.DailyTable(payload),
		Vigilance: snap.Vigilance,
		FetchedAt: snap.FetchedAt,
	}
	p.forecastCache.put(key, bundle)
	p.archive(ctx, snap)
	return bundle
}

// Historical fetches historical daily rows and derives temperature stats
// and monthly means. Failures degrade to an empty report.
func (p *Pipeline) Historical(ctx context.Context, loc domain.Location, start, end time.Time) HistoricalReport {
	report := HistoricalReport{Location: loc, Start: start, End: end}

	key := fmt.Sprintf("%s|%s|%s", forecastKey(loc), start.Format("2006-01-02"), end.Format("2006-01-02"))
	if cached, ok := p.historicalCache.get(key); ok {
		p.metrics.CacheLookups.WithLabelValues("historical", "hit").Inc()
		return cached
	}
	p.metrics.CacheLookups.WithLabelValues("historical", "miss").Inc()

	days, err := p.historian.HistoricalDaily(ctx, loc, start, end)
	if err != nil {
		p.logger.Error("historical fetch failed", "location", loc.Label(), "error", err)
		return report
	}
	p.markReady()
	if len(days) == 0 {
		p.logger.Warn("historical range came back empty", "location", loc.Label())
		return report
	}

	report.Days = days
	report.MonthlyMean = domain.MonthlyMeans(days)

	tmax := make([]float64, len(days))
	tmin := make([]float64, len(days))
	for i, d := range days {
		tmax[i] = d.TMax
		tmin[i] = d.TMin
	}
	maxStats, maxOK := domain.ComputeTemperatureStats(tmax)
	minStats, minOK := domain.ComputeTemperatureStats(tmin)
	if maxOK && minOK {
		report.TMaxStats = maxStats
		report.TMinStats = minStats
		report.HasStats = true
	}

	p.historicalCache.put(key, report)
	if p.history != nil {
		if err := p.history.ArchiveHistorical(ctx, loc, start, end, days); err != nil {
			p.logger.Warn("historical archive failed", "location", loc.Label(), "error", err)
		}
	}
	return report
}

func (p *Pipeline) archive(ctx context.Context, snap domain.ForecastSnapshot) {
	for _, a := range p.archivers {
		if err := a.ArchiveForecast(ctx, snap); err != nil {
			p.metrics.SnapshotsArchived.WithLabelValues(a.Name(), "error").Inc()
			p.logger.Warn("snapshot archive failed",
				"sink", a.Name(),
				"snapshot_id", snap.ID,
				"error", err,
			)
			continue
		}
		p.metrics.SnapshotsArchived.WithLabelValues(a.Name(), "success").Inc()
	}
}

func (p *Pipeline) markReady() {
	if p.ready.CompareAndSwap(false, true) {
		p.metrics.ServiceReady.Set(1)
		p.logger.Info("service is ready, first upstream fetch succeeded")
	}
}

func forecastKey(loc domain.Location) string {
	return fmt.Sprintf("%s|%.4f|%.4f", loc.Slug(), loc.Latitude, loc.Longitude)
}
