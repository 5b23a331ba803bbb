// Package domain models Open-Meteo weather data for the dashboard backend.
//
// # Data Source
//
// All upstream data comes from the Open-Meteo public APIs (no API key for
// non-commercial use):
//
//	Forecast:   https://api.open-meteo.com/v1/forecast
//	Geocoding:  https://geocoding-api.open-meteo.com/v1/search
//	Historical: https://archive-api.open-meteo.com/v1/archive
//
// # Payload Conventions
//
// A forecast payload has three sections. "current" maps variable names to
// point-in-time scalars. "hourly" and "daily" map variable names to ordered
// arrays sharing one implicit time index: all arrays within a section have
// the same length, and index i of every array describes the same hour or
// day. Timestamps are ISO 8601 without a zone suffix ("2024-04-26T15:00"
// for hours, "2024-04-26" for days), expressed in the requested timezone.
//
// Sections are projected into tidy tables (one row per hour/day, one column
// per variable) by [TableFromSection]. Unparseable timestamps and null or
// non-numeric cells become missing values (zero time, NaN); they never
// abort table construction.
//
// # Day/Night Inference
//
// Open-Meteo reports "is_day" for current conditions but not always for
// hourly rows. When the hourly section omits it, the flag is derived from
// the daily sunrise/sunset arrays: a row is daytime iff
// sunrise <= t < sunset for its calendar day. Rows whose day has no usable
// sunrise/sunset entry keep a missing flag rather than a guessed one; the
// display mapping in [CodeToVisual] treats a missing flag as day.
//
// # Vigilance Classification
//
// [ComputeVigilance] derives a pedagogical 4-level hazard label (verte <
// jaune < orange < rouge) from daily extremes over the forecast window.
// It is not an official Météo-France vigilance product. Rules form a strict
// priority cascade, first match wins:
//
//	rouge:  gusts >= 90 km/h | tmax >= 40 °C
//	orange: gusts >= 70 | precip probability >= 85 % | tmin <= -7 °C
//	jaune:  gusts >= 55 | precip probability >= 60 % | tmax >= 32 °C
//	verte:  otherwise
//
// An extreme whose source array is empty or entirely null is excluded from
// matching; with all four absent the result is verte.
//
// # Weather Codes
//
// "weather_code" values are WMO weather interpretation codes. [CodeToVisual]
// maps each known code to a French label and icon, with explicit night
// variants so a clear night shows a moon rather than a sun. Unknown codes
// map to a fixed "Inconnu" fallback.
package domain
