// Package archive persists fetched weather data to disk: raw API payloads
// as JSON and normalized tables as CSV, mirroring the raw/processed split
// of a small data lake.
package archive

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/Chahinez-moualek/meteo-expert-m2/internal/domain"
)

const timestampLayout = "2006-01-02T15:04"

// DiskArchiver writes snapshots under <root>/raw and <root>/processed.
// Filenames are keyed by location slug, so a refetch for the same place
// overwrites the previous artifact instead of accumulating copies.
type DiskArchiver struct {
	root   string
	logger *slog.Logger
}

// NewDiskArchiver creates an archiver rooted at dataDir.
func NewDiskArchiver(dataDir string, logger *slog.Logger) *DiskArchiver {
	return &DiskArchiver{root: dataDir, logger: logger}
}

// Name identifies this sink in logs and metrics.
func (a *DiskArchiver) Name() string { return "disk" }

// ArchiveForecast writes the raw payload as JSON plus hourly and daily CSV
// tables rebuilt from it.
func (a *DiskArchiver) ArchiveForecast(_ context.Context, snap domain.ForecastSnapshot) error {
	slug := snap.Location.Slug()

	if err := a.writeJSON(filepath.Join("raw", "forecast_"+slug+".json"), snap.Payload); err != nil {
		return err
	}
	if err := a.writeTableCSV(filepath.Join("processed", "hourly_"+slug+".csv"), domain.HourlyTable(snap.Payload)); err != nil {
		return err
	}
	return a.writeTableCSV(filepath.Join("processed", "daily_"+slug+".csv"), domain.DailyTable(snap.Payload))
}

// ArchiveGeocode writes the resolved candidates for a query as raw JSON.
func (a *DiskArchiver) ArchiveGeocode(_ context.Context, query string, locations []domain.Location) error {
	return a.writeJSON(filepath.Join("raw", "geocode_"+domain.Slugify(query)+".json"), locations)
}

// ArchiveHistorical writes the daily rows for a date range as CSV.
func (a *DiskArchiver) ArchiveHistorical(_ context.Context, loc domain.Location, start, end time.Time, days []domain.HistoricalDay) error {
	name := fmt.Sprintf("historical_daily_%s_%s_%s.csv",
		loc.Slug(), start.Format("2006-01-02"), end.Format("2006-01-02"))
	path, err := a.ensure(filepath.Join("processed", name))
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "tmax", "tmin", "precip_sum", "weather_code"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, d := range days {
		record := []string{
			d.Date.Format("2006-01-02"),
			formatCell(d.TMax),
			formatCell(d.TMin),
			formatCell(d.PrecipSum),
			formatCell(d.WeatherCode),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	a.logger.Debug("archived historical rows", "path", path, "rows", len(days))
	return nil
}

func (a *DiskArchiver) writeJSON(rel string, v any) error {
	path, err := a.ensure(rel)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", rel, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	a.logger.Debug("archived raw payload", "path", path)
	return nil
}

// writeTableCSV lays the table out with the time column first and the
// remaining columns in sorted order. Missing values become blank cells.
func (a *DiskArchiver) writeTableCSV(rel string, t domain.Table) error {
	if t.IsEmpty() {
		return nil
	}
	path, err := a.ensure(rel)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	numericCols := sortedKeys(t.Numeric)
	stampCols := sortedKeys(t.Stamps)

	header := append([]string{"time"}, numericCols...)
	header = append(header, stampCols...)

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < t.Len(); i++ {
		record := make([]string, 0, len(header))
		record = append(record, formatStamp(t.Time[i]))
		for _, col := range numericCols {
			record = append(record, formatCell(t.Numeric[col][i]))
		}
		for _, col := range stampCols {
			record = append(record, formatStamp(t.Stamps[col][i]))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	a.logger.Debug("archived table", "path", path, "rows", t.Len())
	return nil
}

// ensure resolves rel under the archive root and creates its directory.
func (a *DiskArchiver) ensure(rel string) (string, error) {
	path := filepath.Join(a.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}
	return path, nil
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
