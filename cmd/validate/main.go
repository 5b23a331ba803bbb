// Command validate checks the integrity of a disk archive produced by the
// server or the collect command: raw payloads must parse, processed CSVs
// must agree with the tables rebuilt from the raw JSON, and historical CSVs
// must be well formed.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Chahinez-moualek/meteo-expert-m2/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "data", "archive directory to validate")
	flag.Parse()

	if code := run(*dataDir); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir string) int {
	fmt.Println("=== Weather Archive Integrity Validation ===")
	fmt.Println()

	payloads, err := loadForecastPayloads(filepath.Join(dataDir, "raw"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw payloads: %v\n", err)
		return 1
	}
	fmt.Printf("loaded %d raw forecast payloads from %s\n", len(payloads), dataDir)

	phases := []*phase{
		validateRawPayloads(payloads),
		validateProcessedTables(dataDir, payloads),
		validateHistoricalCSVs(filepath.Join(dataDir, "processed")),
		validateGeocodeResults(filepath.Join(dataDir, "raw")),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("--- %s ---\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  %s\n", e)
		}
	}

	if !allPassed {
		fmt.Println("\nValidation FAILED.")
		return 1
	}
	fmt.Println("Validation passed.")
	return 0
}

// loadForecastPayloads reads every forecast_*.json under raw/, keyed by slug.
func loadForecastPayloads(rawDir string) (map[string]domain.ForecastPayload, error) {
	matches, err := filepath.Glob(filepath.Join(rawDir, "forecast_*.json"))
	if err != nil {
		return nil, err
	}

	payloads := make(map[string]domain.ForecastPayload, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var p domain.ForecastPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		slug := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "forecast_"), ".json")
		payloads[slug] = p
	}
	return payloads, nil
}

func validateRawPayloads(payloads map[string]domain.ForecastPayload) *phase {
	p := &phase{name: "Raw payload sanity"}

	for slug, payload := range payloads {
		if payload.IsEmpty() {
			p.errorf("%s: payload has no current, hourly, or daily data", slug)
			continue
		}
		if payload.Latitude < -90 || payload.Latitude > 90 {
			p.errorf("%s: latitude %f out of range", slug, payload.Latitude)
		}
		if payload.Longitude < -180 || payload.Longitude > 180 {
			p.errorf("%s: longitude %f out of range", slug, payload.Longitude)
		}
	}
	return p
}

// validateProcessedTables rebuilds the tidy tables from each raw payload and
// checks the processed CSVs line up row for row.
func validateProcessedTables(dataDir string, payloads map[string]domain.ForecastPayload) *phase {
	p := &phase{name: "Processed CSV / raw JSON agreement"}

	for slug, payload := range payloads {
		checkTableCSV(p, filepath.Join(dataDir, "processed", "hourly_"+slug+".csv"), domain.HourlyTable(payload))
		checkTableCSV(p, filepath.Join(dataDir, "processed", "daily_"+slug+".csv"), domain.DailyTable(payload))
	}
	return p
}

func checkTableCSV(p *phase, path string, table domain.Table) {
	if table.IsEmpty() {
		// Nothing was written for an empty table; a stale file is fine.
		return
	}

	records, err := readCSV(path)
	if err != nil {
		p.errorf("%s: %v", path, err)
		return
	}
	if len(records) == 0 {
		p.errorf("%s: missing header row", path)
		return
	}

	wantRows := table.Len() + 1
	if len(records) != wantRows {
		p.errorf("%s: %d rows, want %d (header + %d data rows)", path, len(records), wantRows, table.Len())
	}
	if records[0][0] != "time" {
		p.errorf("%s: first column is %q, want time", path, records[0][0])
	}

	wantCols := 1 + len(table.Numeric) + len(table.Stamps)
	if len(records[0]) != wantCols {
		p.errorf("%s: %d columns, want %d", path, len(records[0]), wantCols)
	}
}

func validateHistoricalCSVs(processedDir string) *phase {
	p := &phase{name: "Historical CSV shape"}

	matches, err := filepath.Glob(filepath.Join(processedDir, "historical_daily_*.csv"))
	if err != nil {
		p.errorf("glob: %v", err)
		return p
	}

	wantHeader := []string{"date", "tmax", "tmin", "precip_sum", "weather_code"}
	for _, path := range matches {
		records, err := readCSV(path)
		if err != nil {
			p.errorf("%s: %v", path, err)
			continue
		}
		if len(records) == 0 {
			p.errorf("%s: empty file", path)
			continue
		}
		if !equalStrings(records[0], wantHeader) {
			p.errorf("%s: header %v, want %v", path, records[0], wantHeader)
			continue
		}
		for i, row := range records[1:] {
			if _, err := time.Parse("2006-01-02", row[0]); err != nil {
				p.errorf("%s: row %d: bad date %q", path, i+1, row[0])
			}
			for col := 1; col < len(row); col++ {
				if row[col] == "" {
					continue // blank cell marks a missing value
				}
				if _, err := strconv.ParseFloat(row[col], 64); err != nil {
					p.errorf("%s: row %d: %s is not numeric: %q", path, i+1, wantHeader[col], row[col])
				}
			}
		}
	}
	return p
}

func validateGeocodeResults(rawDir string) *phase {
	p := &phase{name: "Geocode result sanity"}

	matches, err := filepath.Glob(filepath.Join(rawDir, "geocode_*.json"))
	if err != nil {
		p.errorf("glob: %v", err)
		return p
	}

	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			p.errorf("%s: %v", path, err)
			continue
		}
		var locations []domain.Location
		if err := json.Unmarshal(data, &locations); err != nil {
			p.errorf("%s: %v", path, err)
			continue
		}
		for i, loc := range locations {
			if loc.Name == "" {
				p.errorf("%s: result %d has no name", path, i)
			}
			if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
				p.errorf("%s: result %d has out-of-range coordinates", path, i)
			}
		}
	}
	return p
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csv.NewReader(f).ReadAll()
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
