package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableFromSection(t *testing.T) {
	t.Run("nil section", func(t *testing.T) {
		tab := TableFromSection(nil)
		assert.True(t, tab.IsEmpty())
		assert.Equal(t, 0, tab.Len())
	})

	t.Run("empty section", func(t *testing.T) {
		tab := TableFromSection(Section{})
		assert.True(t, tab.IsEmpty())
	})

	t.Run("section with empty arrays", func(t *testing.T) {
		tab := TableFromSection(Section{"time": {}, "temperature_2m": {}})
		assert.True(t, tab.IsEmpty())
	})

	t.Run("numeric and time columns", func(t *testing.T) {
		tab := TableFromSection(Section{
			"time":           {"2024-04-26T15:00", "2024-04-26T16:00"},
			"temperature_2m": {12.5, 13.0},
		})

		require.Equal(t, 2, tab.Len())
		assert.Equal(t, time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC), tab.Time[0])
		assert.Equal(t, []float64{12.5, 13.0}, tab.Numeric["temperature_2m"])
	})

	t.Run("unparseable timestamp becomes missing not error", func(t *testing.T) {
		tab := TableFromSection(Section{
			"time":           {"2024-04-26T15:00", "not-a-date", "2024-04-26T17:00"},
			"temperature_2m": {1.0, 2.0, 3.0},
		})

		require.Equal(t, 3, tab.Len())
		assert.False(t, tab.Time[0].IsZero())
		assert.True(t, tab.Time[1].IsZero())
		assert.False(t, tab.Time[2].IsZero())
	})

	t.Run("null cells become NaN", func(t *testing.T) {
		tab := TableFromSection(Section{
			"time":                      {"2024-04-26", "2024-04-27"},
			"precipitation_probability": {nil, 40.0},
		})

		col := tab.Numeric["precipitation_probability"]
		require.Len(t, col, 2)
		assert.True(t, math.IsNaN(col[0]))
		assert.Equal(t, 40.0, col[1])
	})

	t.Run("string columns parse into stamps", func(t *testing.T) {
		tab := TableFromSection(Section{
			"time":    {"2024-04-26"},
			"sunrise": {"2024-04-26T06:12"},
			"sunset":  {"2024-04-26T20:41"},
		})

		require.Len(t, tab.Stamps["sunrise"], 1)
		assert.Equal(t, time.Date(2024, 4, 26, 6, 12, 0, 0, time.UTC), tab.Stamps["sunrise"][0])
		assert.Equal(t, time.Date(2024, 4, 26, 20, 41, 0, 0, time.UTC), tab.Stamps["sunset"][0])
	})

	t.Run("short columns are padded to row count", func(t *testing.T) {
		tab := TableFromSection(Section{
			"time":           {"2024-04-26T15:00", "2024-04-26T16:00", "2024-04-26T17:00"},
			"wind_gusts_10m": {30.0},
		})

		require.Equal(t, 3, tab.Len())
		col := tab.Numeric["wind_gusts_10m"]
		require.Len(t, col, 3)
		assert.Equal(t, 30.0, col[0])
		assert.True(t, math.IsNaN(col[1]))
		assert.True(t, math.IsNaN(col[2]))
	})

	t.Run("section without time array keeps row count", func(t *testing.T) {
		tab := TableFromSection(Section{"weather_code": {0.0, 3.0}})

		require.Equal(t, 2, tab.Len())
		assert.True(t, tab.Time[0].IsZero())
		assert.True(t, tab.Time[1].IsZero())
	})
}

func TestHourlyTable_EmptyPayload(t *testing.T) {
	assert.True(t, HourlyTable(ForecastPayload{}).IsEmpty())
	assert.True(t, DailyTable(ForecastPayload{}).IsEmpty())
}

func TestHourlyTable_KeepsProvidedIsDay(t *testing.T) {
	p := ForecastPayload{
		Hourly: Section{
			"time":   {"2024-04-26T15:00"},
			"is_day": {1.0},
		},
		// Contradictory daily data must not override the provided flag.
		Daily: Section{
			"time":    {"2024-04-26"},
			"sunrise": {"2024-04-26T16:00"},
			"sunset":  {"2024-04-26T16:01"},
		},
	}

	tab := HourlyTable(p)
	assert.Equal(t, []float64{1.0}, tab.Numeric["is_day"])
}

func TestHourlyTable_InfersIsDay(t *testing.T) {
	// Sunrise 06:00, sunset 20:00: the day interval is [06:00, 20:00).
	p := ForecastPayload{
		Hourly: Section{
			"time": {
				"2024-04-26T05:59",
				"2024-04-26T06:00",
				"2024-04-26T19:59",
				"2024-04-26T20:00",
			},
		},
		Daily: Section{
			"time":    {"2024-04-26"},
			"sunrise": {"2024-04-26T06:00"},
			"sunset":  {"2024-04-26T20:00"},
		},
	}

	tab := HourlyTable(p)
	require.Equal(t, 4, tab.Len())
	assert.Equal(t, []float64{0, 1, 1, 0}, tab.Numeric["is_day"])
}

func TestHourlyTable_UnmatchedDateGetsMissingIsDay(t *testing.T) {
	p := ForecastPayload{
		Hourly: Section{
			"time": {"2024-04-26T12:00", "2024-04-27T12:00"},
		},
		Daily: Section{
			"time":    {"2024-04-26"},
			"sunrise": {"2024-04-26T06:00"},
			"sunset":  {"2024-04-26T20:00"},
		},
	}

	tab := HourlyTable(p)
	require.Equal(t, 2, tab.Len(), "inference must not duplicate or drop rows")

	col := tab.Numeric["is_day"]
	require.Len(t, col, 2)
	assert.Equal(t, 1.0, col[0])
	assert.True(t, math.IsNaN(col[1]), "unmatched date must stay missing, not default")
}

func TestHourlyTable_NoSunriseSunsetSkipsInference(t *testing.T) {
	p := ForecastPayload{
		Hourly: Section{"time": {"2024-04-26T12:00"}},
		Daily:  Section{"time": {"2024-04-26"}},
	}

	tab := HourlyTable(p)
	require.Equal(t, 1, tab.Len())
	_, ok := tab.Numeric["is_day"]
	assert.False(t, ok, "no inference without sunrise/sunset")
}

func TestHourlyTable_AllDailyRowsUnparseableSkipsInference(t *testing.T) {
	p := ForecastPayload{
		Hourly: Section{"time": {"2024-04-26T12:00"}},
		Daily: Section{
			"time":    {"garbage"},
			"sunrise": {"2024-04-26T06:00"},
			"sunset":  {"2024-04-26T20:00"},
		},
	}

	tab := HourlyTable(p)
	_, ok := tab.Numeric["is_day"]
	assert.False(t, ok)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"hourly layout", "2024-04-26T15:00", time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)},
		{"daily layout", "2024-04-26", time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC)},
		{"with seconds", "2024-04-26T15:00:30", time.Date(2024, 4, 26, 15, 0, 30, 0, time.UTC)},
		{"rfc3339", "2024-04-26T15:00:00Z", time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)},
		{"empty", "", time.Time{}},
		{"garbage", "yesterday", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.expected.Equal(ParseTimestamp(tt.input)))
		})
	}
}
