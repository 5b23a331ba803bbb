package domain

// Section is one block of a forecast payload: variable name -> ordered
// sequence, one entry per hour or day. All sequences within a section share
// the same length and implicit time index. Values arrive from JSON as
// float64, string, or nil.
type Section map[string][]any

// ForecastPayload is the raw Open-Meteo forecast response. It is fetched
// fresh per (location, request) pair and never persisted as domain state;
// archival is a side artifact handled elsewhere.
type ForecastPayload struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Elevation float64        `json:"elevation"`
	Current   map[string]any `json:"current,omitempty"`
	Hourly    Section        `json:"hourly,omitempty"`
	Daily     Section        `json:"daily,omitempty"`
}

// IsEmpty reports whether the payload carries no usable data, the shape an
// adapter returns when the upstream call failed or answered nothing.
func (p ForecastPayload) IsEmpty() bool {
	return len(p.Current) == 0 && len(p.Hourly) == 0 && len(p.Daily) == 0
}

// CurrentNumber extracts a numeric scalar from the current-conditions
// section. Missing keys and non-numeric values report ok=false.
func (p ForecastPayload) CurrentNumber(key string) (float64, bool) {
	v, ok := p.Current[key]
	if !ok {
		return 0, false
	}
	return asNumber(v)
}

// Max returns the largest numeric value in the named sequence. Nulls and
// non-numeric entries are ignored; an absent key or a sequence with no
// numeric entries reports ok=false, which excludes the variable from
// vigilance rule matching.
func (s Section) Max(key string) (float64, bool) {
	var best float64
	found := false
	for _, v := range s[key] {
		n, ok := asNumber(v)
		if !ok {
			continue
		}
		if !found || n > best {
			best = n
			found = true
		}
	}
	return best, found
}

// Min returns the smallest numeric value in the named sequence, with the
// same null handling as Max.
func (s Section) Min(key string) (float64, bool) {
	var best float64
	found := false
	for _, v := range s[key] {
		n, ok := asNumber(v)
		if !ok {
			continue
		}
		if !found || n < best {
			best = n
			found = true
		}
	}
	return best, found
}

// asNumber coerces a decoded JSON value to float64. Booleans count as
// numeric (Open-Meteo occasionally encodes flags as true/false).
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
