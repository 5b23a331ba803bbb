package domain

import (
	"math"
	"sort"
	"time"
)

// HistoricalDay is one tidy row of historical daily data from the archive
// API. NaN marks a missing measurement; a zero Date marks an unparseable
// source date.
type HistoricalDay struct {
	Date        time.Time
	TMax        float64
	TMin        float64
	PrecipSum   float64
	WeatherCode float64
}

// MonthlyMean is one row of the monthly aggregation: the first-of-month
// timestamp and the mean of per-day temperature midpoints for that month.
type MonthlyMean struct {
	Month time.Time
	TMean float64
}

// MonthlyMeans aggregates daily rows to monthly mean temperature.
//
// The per-row midpoint is (tmax+tmin)/2. Rows with a zero date or a missing
// temperature bound are dropped before grouping; months with no surviving
// row are simply absent (no gap filling). Output is sorted ascending by
// month. Empty input, or input from which every row is dropped, yields an
// empty slice, not an error.
func MonthlyMeans(days []HistoricalDay) []MonthlyMean {
	type acc struct {
		sum   float64
		count int
	}
	byMonth := make(map[time.Time]*acc)

	for _, d := range days {
		if d.Date.IsZero() || math.IsNaN(d.TMax) || math.IsNaN(d.TMin) {
			continue
		}
		month := time.Date(d.Date.Year(), d.Date.Month(), 1, 0, 0, 0, 0, d.Date.Location())
		a, ok := byMonth[month]
		if !ok {
			a = &acc{}
			byMonth[month] = a
		}
		a.sum += (d.TMax + d.TMin) / 2
		a.count++
	}

	out := make([]MonthlyMean, 0, len(byMonth))
	for month, a := range byMonth {
		out = append(out, MonthlyMean{Month: month, TMean: a.sum / float64(a.count)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}
