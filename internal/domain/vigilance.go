package domain

import "fmt"

// VigilanceLevel is the ordinal hazard tier, ascending severity.
type VigilanceLevel string

const (
	VigilanceVerte  VigilanceLevel = "verte"
	VigilanceJaune  VigilanceLevel = "jaune"
	VigilanceOrange VigilanceLevel = "orange"
	VigilanceRouge  VigilanceLevel = "rouge"
)

// Rank returns the level's position on the ascending severity scale
// (verte=0 .. rouge=3). Unknown levels rank as verte.
func (l VigilanceLevel) Rank() int {
	switch l {
	case VigilanceJaune:
		return 1
	case VigilanceOrange:
		return 2
	case VigilanceRouge:
		return 3
	default:
		return 0
	}
}

// Vigilance is the classification result: level, display label, and a
// French reason string embedding the triggering value rounded to the
// nearest integer. Computed fresh per payload, never stored.
type Vigilance struct {
	Level  VigilanceLevel `json:"level"`
	Label  string         `json:"label"`
	Reason string         `json:"reason"`
}

// ComputeVigilance classifies a forecast payload on the 4-level scale.
//
// Inputs are daily extremes over the full forecast window: max wind gust,
// max precipitation probability, max and min temperature. A variable whose
// array is empty or entirely null is excluded from matching. Rules form a
// strict priority cascade (first match wins); every input, including all
// four extremes absent, produces exactly one of the nine outcomes.
func ComputeVigilance(p ForecastPayload) Vigilance {
	daily := p.Daily

	gusts, hasGusts := daily.Max("wind_gusts_10m_max")
	pprob, hasPProb := daily.Max("precipitation_probability_max")
	tmax, hasTMax := daily.Max("temperature_2m_max")
	tmin, hasTMin := daily.Min("temperature_2m_min")

	switch {
	case hasGusts && gusts >= 90:
		return vigilance(VigilanceRouge, "Rafales très fortes (%.0f km/h)", gusts)
	case hasTMax && tmax >= 40:
		return vigilance(VigilanceRouge, "Chaleur extrême (max %.0f°C)", tmax)

	case hasGusts && gusts >= 70:
		return vigilance(VigilanceOrange, "Rafales fortes (%.0f km/h)", gusts)
	case hasPProb && pprob >= 85:
		return vigilance(VigilanceOrange, "Risque de pluie très élevé (%.0f%%)", pprob)
	case hasTMin && tmin <= -7:
		return vigilance(VigilanceOrange, "Froid marqué (min %.0f°C)", tmin)

	case hasGusts && gusts >= 55:
		return vigilance(VigilanceJaune, "Rafales modérées (%.0f km/h)", gusts)
	case hasPProb && pprob >= 60:
		return vigilance(VigilanceJaune, "Risque de pluie (%.0f%%)", pprob)
	case hasTMax && tmax >= 32:
		return vigilance(VigilanceJaune, "Chaud (max %.0f°C)", tmax)
	}

	return Vigilance{
		Level:  VigilanceVerte,
		Label:  "Vigilance verte",
		Reason: "Pas de phénomène dangereux détecté",
	}
}

func vigilance(level VigilanceLevel, format string, value float64) Vigilance {
	return Vigilance{
		Level:  level,
		Label:  "Vigilance " + string(level),
		Reason: fmt.Sprintf(format, value),
	}
}
