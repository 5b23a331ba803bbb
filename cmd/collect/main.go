// Command collect performs a one-shot fetch for a city: geocode, download
// the forecast (and optionally a historical range), archive everything to
// disk, and print a short summary.
//
// Usage:
//
//	go run ./cmd/collect -city Lyon
//	go run ./cmd/collect -city Lyon -country FR -start 2024-01-01 -end 2024-03-31
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Chahinez-moualek/meteo-expert-m2/internal/adapter/openmeteo"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/archive"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/config"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/observability"
	"github.com/Chahinez-moualek/meteo-expert-m2/internal/pipeline"
)

func main() {
	city := flag.String("city", "", "city name to fetch (required)")
	country := flag.String("country", "", "two-letter country code filter")
	start := flag.String("start", "", "historical range start (YYYY-MM-DD)")
	end := flag.String("end", "", "historical range end (YYYY-MM-DD)")
	flag.Parse()

	if *city == "" {
		fmt.Fprintln(os.Stderr, "usage: collect -city <name> [-country CC] [-start YYYY-MM-DD -end YYYY-MM-DD]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := openmeteo.NewClient(cfg, metrics, logger)
	disk := archive.NewDiskArchiver(cfg.DataDir, logger)

	p := pipeline.New(pipeline.Options{
		Geocoder:      client,
		Forecaster:    client,
		Historian:     client,
		Archivers:     []pipeline.Archiver{disk},
		History:       disk,
		Searches:      disk,
		GeocodeTTL:    cfg.GeocodeTTL,
		ForecastTTL:   cfg.ForecastTTL,
		HistoricalTTL: cfg.HistoricalTTL,
		Logger:        logger,
		Metrics:       metrics,
	})

	ctx := context.Background()

	locations := p.Search(ctx, *city, *country)
	if len(locations) == 0 {
		fmt.Fprintf(os.Stderr, "no location found for %q\n", *city)
		os.Exit(1)
	}
	loc := locations[0]
	fmt.Printf("Location: %s (%.4f, %.4f)\n", loc.Label(), loc.Latitude, loc.Longitude)

	bundle := p.Forecast(ctx, loc)
	if bundle.IsEmpty() {
		fmt.Fprintln(os.Stderr, "forecast fetch returned no data")
		os.Exit(1)
	}
	if temp, ok := bundle.Payload.CurrentNumber("temperature_2m"); ok {
		fmt.Printf("Current temperature: %.1f°C\n", temp)
	}
	fmt.Printf("%s — %s\n", bundle.Vigilance.Label, bundle.Vigilance.Reason)
	fmt.Printf("Archived: %d hourly rows, %d daily rows under %s\n",
		bundle.Hourly.Len(), bundle.Daily.Len(), cfg.DataDir)

	if *start == "" || *end == "" {
		return
	}

	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -start: %v\n", err)
		os.Exit(2)
	}
	endDate, err := time.Parse("2006-01-02", *end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -end: %v\n", err)
		os.Exit(2)
	}

	report := p.Historical(ctx, loc, startDate, endDate)
	if len(report.Days) == 0 {
		fmt.Fprintln(os.Stderr, "historical fetch returned no data")
		os.Exit(1)
	}
	fmt.Printf("Historical: %d days archived\n", len(report.Days))
	if report.HasStats {
		fmt.Printf("  tmax mean %.1f°C (min %.1f, max %.1f)\n",
			report.TMaxStats.Mean, report.TMaxStats.Min, report.TMaxStats.Max)
		fmt.Printf("  tmin mean %.1f°C (min %.1f, max %.1f)\n",
			report.TMinStats.Mean, report.TMinStats.Min, report.TMinStats.Max)
	}
	for _, m := range report.MonthlyMean {
		fmt.Printf("  %s: %.1f°C\n", m.Month.Format("2006-01"), m.TMean)
	}
}
