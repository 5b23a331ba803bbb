package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTemperatureStats(t *testing.T) {
	t.Run("empty series signals no data", func(t *testing.T) {
		_, ok := ComputeTemperatureStats(nil)
		assert.False(t, ok)

		_, ok = ComputeTemperatureStats([]float64{})
		assert.False(t, ok)
	})

	t.Run("all-missing series signals no data", func(t *testing.T) {
		_, ok := ComputeTemperatureStats([]float64{math.NaN(), math.NaN()})
		assert.False(t, ok)
	})

	t.Run("single value has zero std", func(t *testing.T) {
		stats, ok := ComputeTemperatureStats([]float64{10})
		require.True(t, ok)
		assert.Equal(t, 10.0, stats.Mean)
		assert.Equal(t, 10.0, stats.Min)
		assert.Equal(t, 10.0, stats.Max)
		assert.Equal(t, 0.0, stats.Std)
	})

	t.Run("two values use sample std", func(t *testing.T) {
		stats, ok := ComputeTemperatureStats([]float64{10, 20})
		require.True(t, ok)
		assert.Equal(t, 15.0, stats.Mean)
		assert.Equal(t, 10.0, stats.Min)
		assert.Equal(t, 20.0, stats.Max)
		assert.InDelta(t, 7.0710678, stats.Std, 1e-6)
	})

	t.Run("missing entries are dropped", func(t *testing.T) {
		stats, ok := ComputeTemperatureStats([]float64{math.NaN(), 10, math.NaN(), 20})
		require.True(t, ok)
		assert.Equal(t, 15.0, stats.Mean)
	})

	t.Run("negative series", func(t *testing.T) {
		stats, ok := ComputeTemperatureStats([]float64{-5, -15})
		require.True(t, ok)
		assert.Equal(t, -10.0, stats.Mean)
		assert.Equal(t, -15.0, stats.Min)
		assert.Equal(t, -5.0, stats.Max)
	})
}

func day(y int, m time.Month, d int, tmax, tmin float64) HistoricalDay {
	return HistoricalDay{
		Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		TMax: tmax,
		TMin: tmin,
	}
}

func TestMonthlyMeans(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, MonthlyMeans(nil))
	})

	t.Run("groups by calendar month sorted ascending", func(t *testing.T) {
		days := []HistoricalDay{
			day(2023, time.February, 1, 10, 0),
			day(2023, time.January, 5, 8, 2),
			day(2023, time.January, 20, 12, 4),
		}

		out := MonthlyMeans(days)
		require.Len(t, out, 2)

		assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), out[0].Month)
		// Midpoints: (8+2)/2=5 and (12+4)/2=8 -> mean 6.5.
		assert.Equal(t, 6.5, out[0].TMean)

		assert.Equal(t, time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC), out[1].Month)
		assert.Equal(t, 5.0, out[1].TMean)
	})

	t.Run("idempotent on one row per month", func(t *testing.T) {
		days := []HistoricalDay{
			day(2023, time.March, 10, 14, 6),
			day(2023, time.April, 10, 20, 10),
		}

		out := MonthlyMeans(days)
		require.Len(t, out, 2)
		assert.Equal(t, 10.0, out[0].TMean)
		assert.Equal(t, 15.0, out[1].TMean)
	})

	t.Run("rows with missing bounds are dropped before aggregation", func(t *testing.T) {
		days := []HistoricalDay{
			day(2023, time.January, 1, 10, 0),
			day(2023, time.January, 2, math.NaN(), 0),
			day(2023, time.January, 3, 10, math.NaN()),
		}

		out := MonthlyMeans(days)
		require.Len(t, out, 1)
		assert.Equal(t, 5.0, out[0].TMean)
	})

	t.Run("rows with zero date are dropped", func(t *testing.T) {
		days := []HistoricalDay{{TMax: 10, TMin: 0}}
		assert.Empty(t, MonthlyMeans(days))
	})

	t.Run("months with no surviving rows are absent", func(t *testing.T) {
		days := []HistoricalDay{
			day(2023, time.January, 1, 10, 0),
			day(2023, time.February, 1, math.NaN(), math.NaN()),
			day(2023, time.March, 1, 20, 10),
		}

		out := MonthlyMeans(days)
		require.Len(t, out, 2)
		assert.Equal(t, time.Month(1), out[0].Month.Month())
		assert.Equal(t, time.Month(3), out[1].Month.Month())
	})
}
