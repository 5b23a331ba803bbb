package domain

import "math"

// TemperatureStats holds descriptive statistics for a numeric series.
// Std is the sample standard deviation (divisor n-1), exactly 0 for a
// single-value series.
type TemperatureStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Std  float64 `json:"std"`
}

// ComputeTemperatureStats computes stats over a series, dropping NaN
// (missing) entries. ok=false is the explicit "no data" signal when nothing
// numeric remains; callers must handle it rather than read a zero struct.
func ComputeTemperatureStats(values []float64) (TemperatureStats, bool) {
	clean := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return TemperatureStats{}, false
	}

	sum := 0.0
	minV, maxV := clean[0], clean[0]
	for _, v := range clean {
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	mean := sum / float64(len(clean))

	std := 0.0
	if len(clean) > 1 {
		var sq float64
		for _, v := range clean {
			d := v - mean
			sq += d * d
		}
		std = math.Sqrt(sq / float64(len(clean)-1))
	}

	return TemperatureStats{Mean: mean, Min: minV, Max: maxV, Std: std}, true
}
