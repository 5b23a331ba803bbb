package domain

import (
	"math"
	"time"
)

// Table is a tidy projection of a payload section: one row per hour or day,
// one column per variable, rows in source (chronological) order.
//
// Missing values use in-band markers: the zero time.Time in Time/Stamps
// columns, NaN in Numeric columns. Columns are padded so every column has
// exactly Len() entries.
type Table struct {
	Time    []time.Time              // parsed from the section's "time" array
	Numeric map[string][]float64     // NaN marks a null or non-numeric cell
	Stamps  map[string][]time.Time   // timestamp-valued columns (sunrise, sunset)
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Time) }

// IsEmpty reports whether the table has no rows.
func (t Table) IsEmpty() bool { return t.Len() == 0 }

// timeLayouts are tried in order when parsing section timestamps.
// Open-Meteo emits zone-less ISO 8601 ("2024-04-26T15:00" hourly,
// "2024-04-26" daily); RFC 3339 is accepted for robustness.
var timeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// TableFromSection builds a tidy table from a payload section. An absent or
// empty section yields an empty table, never an error. Column kind is
// decided by the first non-null value: strings parse as timestamps into
// Stamps, everything else coerces into Numeric. Unparseable cells become
// missing values and propagate as such through the rest of the pipeline.
func TableFromSection(s Section) Table {
	if len(s) == 0 {
		return Table{}
	}

	rows := 0
	for _, vals := range s {
		if len(vals) > rows {
			rows = len(vals)
		}
	}
	if rows == 0 {
		return Table{}
	}

	t := Table{
		Numeric: make(map[string][]float64),
		Stamps:  make(map[string][]time.Time),
	}
	for key, vals := range s {
		if key == "time" {
			t.Time = parseTimeColumn(vals, rows)
			continue
		}
		if isStringColumn(vals) {
			t.Stamps[key] = parseTimeColumn(vals, rows)
		} else {
			t.Numeric[key] = parseNumericColumn(vals, rows)
		}
	}

	// A section without a "time" array still gets a full-length column of
	// missing timestamps so row counts stay consistent.
	if t.Time == nil {
		t.Time = make([]time.Time, rows)
	}
	return t
}

// HourlyTable projects the hourly section of a payload, deriving an is_day
// column from daily sunrise/sunset when the source omits it.
func HourlyTable(p ForecastPayload) Table {
	t := TableFromSection(p.Hourly)
	if t.IsEmpty() {
		return t
	}
	if _, ok := t.Numeric["is_day"]; !ok {
		inferIsDay(&t, p.Daily)
	}
	return t
}

// DailyTable projects the daily section of a payload.
func DailyTable(p ForecastPayload) Table {
	return TableFromSection(p.Daily)
}

// inferIsDay adds an is_day column (1 iff sunrise <= t < sunset) using a
// per-calendar-day lookup built from the daily section. Rows whose date has
// no usable daily entry get NaN rather than a guessed value. Row count is
// never changed. If the daily section lacks time/sunrise/sunset, or no
// daily row survives parsing, no column is added at all.
func inferIsDay(t *Table, daily Section) {
	d := TableFromSection(daily)
	sunrise, okRise := d.Stamps["sunrise"]
	sunset, okSet := d.Stamps["sunset"]
	if d.IsEmpty() || !okRise || !okSet {
		return
	}

	type sunWindow struct{ rise, set time.Time }
	byDate := make(map[time.Time]sunWindow, d.Len())
	for i, day := range d.Time {
		if day.IsZero() || sunrise[i].IsZero() || sunset[i].IsZero() {
			continue
		}
		byDate[truncateToDay(day)] = sunWindow{rise: sunrise[i], set: sunset[i]}
	}
	if len(byDate) == 0 {
		return
	}

	col := make([]float64, t.Len())
	for i, ts := range t.Time {
		if ts.IsZero() {
			col[i] = math.NaN()
			continue
		}
		w, ok := byDate[truncateToDay(ts)]
		if !ok {
			col[i] = math.NaN()
			continue
		}
		if !ts.Before(w.rise) && ts.Before(w.set) {
			col[i] = 1
		} else {
			col[i] = 0
		}
	}
	t.Numeric["is_day"] = col
}

// truncateToDay normalizes a timestamp to midnight of its calendar day.
func truncateToDay(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}

// ParseTimestamp parses one section timestamp, returning the zero time on
// failure (the missing-value marker, not an error).
func ParseTimestamp(s string) time.Time {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func parseTimeColumn(vals []any, rows int) []time.Time {
	col := make([]time.Time, rows)
	for i, v := range vals {
		if s, ok := v.(string); ok {
			col[i] = ParseTimestamp(s)
		}
	}
	return col
}

func parseNumericColumn(vals []any, rows int) []float64 {
	col := make([]float64, rows)
	for i := range col {
		col[i] = math.NaN()
	}
	for i, v := range vals {
		if n, ok := asNumber(v); ok {
			col[i] = n
		}
	}
	return col
}

// isStringColumn reports whether the first non-null entry is a string,
// which classifies the whole column as timestamp-valued.
func isStringColumn(vals []any) bool {
	for _, v := range vals {
		if v == nil {
			continue
		}
		_, ok := v.(string)
		return ok
	}
	return false
}
