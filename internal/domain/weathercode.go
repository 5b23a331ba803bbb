package domain

import "math"

// WeatherVisual is a display mapping for a weather condition: a short
// French label and an emoji icon.
type WeatherVisual struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// codeVisual pairs the day variant of a WMO code with an optional night
// variant. Empty night fields fall back to the day variant.
type codeVisual struct {
	dayLabel   string
	dayIcon    string
	nightLabel string
	nightIcon  string
}

var unknownVisual = WeatherVisual{Label: "Inconnu", Icon: "❓"}

// wmoCodeMap maps WMO weather interpretation codes to visuals. Night
// variants keep a visible moon cue even under cloud or precipitation.
var wmoCodeMap = map[int]codeVisual{
	0:  {"Ciel dégagé", "☀️", "Nuit claire", "🌙"},
	1:  {"Plutôt dégagé", "🌤️", "Nuit plutôt dégagée", "🌙"},
	2:  {"Partiellement nuageux", "⛅", "Nuit partiellement nuageuse", "🌙☁️"},
	3:  {"Couvert", "☁️", "Couvert (nuit)", "🌙☁️"},
	45: {"Brouillard", "🌫️", "Brouillard (nuit)", "🌙🌫️"},
	48: {"Brouillard givrant", "🌫️", "Brouillard givrant (nuit)", "🌙🌫️"},
	51: {"Bruine faible", "🌦️", "Bruine faible (nuit)", "🌙🌦️"},
	53: {"Bruine modérée", "🌦️", "Bruine modérée (nuit)", "🌙🌦️"},
	55: {"Bruine forte", "🌧️", "Bruine forte (nuit)", "🌙🌧️"},
	56: {"Bruine verglaçante faible", "🌧️", "Bruine verglaçante faible (nuit)", "🌙🌧️"},
	57: {"Bruine verglaçante forte", "🌧️", "Bruine verglaçante forte (nuit)", "🌙🌧️"},
	61: {"Pluie faible", "🌧️", "Pluie faible (nuit)", "🌙🌧️"},
	63: {"Pluie modérée", "🌧️", "Pluie modérée (nuit)", "🌙🌧️"},
	65: {"Pluie forte", "🌧️", "Pluie forte (nuit)", "🌙🌧️"},
	66: {"Pluie verglaçante faible", "🌧️", "Pluie verglaçante faible (nuit)", "🌙🌧️"},
	67: {"Pluie verglaçante forte", "🌧️", "Pluie verglaçante forte (nuit)", "🌙🌧️"},
	71: {"Neige faible", "🌨️", "Neige faible (nuit)", "🌙🌨️"},
	73: {"Neige modérée", "🌨️", "Neige modérée (nuit)", "🌙🌨️"},
	75: {"Neige forte", "❄️", "Neige forte (nuit)", "🌙❄️"},
	77: {"Grains de neige", "❄️", "Grains de neige (nuit)", "🌙❄️"},
	80: {"Averses faibles", "🌦️", "Averses faibles (nuit)", "🌙🌦️"},
	81: {"Averses modérées", "🌧️", "Averses modérées (nuit)", "🌙🌧️"},
	82: {"Averses fortes", "⛈️", "Averses fortes (nuit)", "🌙⛈️"},
	85: {"Averses de neige faibles", "🌨️", "Averses de neige faibles (nuit)", "🌙🌨️"},
	86: {"Averses de neige fortes", "❄️", "Averses de neige fortes (nuit)", "🌙❄️"},
	95: {"Orage", "⛈️", "Orage (nuit)", "🌙⛈️"},
	96: {"Orage + grêle", "⛈️", "Orage + grêle (nuit)", "🌙⛈️"},
	99: {"Orage + forte grêle", "⛈️", "Orage + forte grêle (nuit)", "🌙⛈️"},
}

// CodeToVisual maps a WMO weather code and a day/night flag to a display
// visual. Both arguments use NaN as the missing marker (matching Table
// columns). A missing or unknown code yields the fixed fallback regardless
// of the flag. Night is selected only when the flag is present and zero; a
// missing flag defaults to day, and codes without a night variant use their
// day variant even at night.
func CodeToVisual(code, isDay float64) WeatherVisual {
	if math.IsNaN(code) {
		return unknownVisual
	}
	v, ok := wmoCodeMap[int(code)]
	if !ok {
		return unknownVisual
	}

	night := !math.IsNaN(isDay) && isDay == 0
	if night && v.nightLabel != "" {
		return WeatherVisual{Label: v.nightLabel, Icon: v.nightIcon}
	}
	return WeatherVisual{Label: v.dayLabel, Icon: v.dayIcon}
}
