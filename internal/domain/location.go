package domain

import "strings"

// Location is a resolved place from the geocoding API. It is a value type:
// identity is structural and instances are never mutated after creation.
type Location struct {
	Name      string   `json:"name"`
	Country   string   `json:"country"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Timezone  string   `json:"timezone"` // IANA name, or "auto" to let the API pick
	Elevation *float64 `json:"elevation,omitempty"`
}

// Label returns a human-friendly "Name, Country" string for the UI.
func (l Location) Label() string {
	if l.Country == "" {
		return l.Name
	}
	return l.Name + ", " + l.Country
}

// Slug returns a filesystem-safe identifier derived from name and country,
// used in archive filenames.
func (l Location) Slug() string {
	return Slugify(l.Name + "-" + l.Country)
}

// Slugify lowercases s and collapses non-alphanumeric runs to single
// dashes; the result is capped at 80 characters and never empty.
func Slugify(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}

	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	slug := strings.Join(parts, "-")
	if len(slug) > 80 {
		slug = slug[:80]
	}
	if slug == "" {
		return "location"
	}
	return slug
}
