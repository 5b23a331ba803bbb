package http

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Chahinez-moualek/meteo-expert-m2/internal/domain"
)

const dateLayout = "2006-01-02"

// Failed or empty upstream fetches surface as 200 with no_data set, never
// as a raw upstream error. Only malformed requests get a 4xx.

type geocodeResponse struct {
	Query   string            `json:"query"`
	Results []domain.Location `json:"results"`
	NoData  bool              `json:"no_data"`
}

type forecastResponse struct {
	Location  domain.Location   `json:"location"`
	FetchedAt *time.Time        `json:"fetched_at,omitempty"`
	Current   *currentJSON      `json:"current,omitempty"`
	Hourly    *tableJSON        `json:"hourly,omitempty"`
	Daily     *tableJSON        `json:"daily,omitempty"`
	Vigilance *domain.Vigilance `json:"vigilance,omitempty"`
	NoData    bool              `json:"no_data"`
}

// currentJSON is the current-conditions block: the numeric readings plus
// the display visual resolved from the weather code and day/night flag.
type currentJSON struct {
	Time    string               `json:"time,omitempty"`
	Values  map[string]*float64  `json:"values"`
	Weather domain.WeatherVisual `json:"weather"`
}

// tableJSON is the wire form of a tidy table. Missing numeric values are
// null (NaN does not survive JSON encoding), missing timestamps are empty
// strings.
type tableJSON struct {
	Time    []string              `json:"time"`
	Numeric map[string][]*float64 `json:"numeric"`
	Stamps  map[string][]string   `json:"stamps,omitempty"`
}

type historicalResponse struct {
	Location     domain.Location     `json:"location"`
	StartDate    string              `json:"start_date"`
	EndDate      string              `json:"end_date"`
	Days         []historicalDayJSON `json:"days"`
	Stats        *historicalStats    `json:"stats,omitempty"`
	MonthlyMeans []monthlyMeanJSON   `json:"monthly_means"`
	NoData       bool                `json:"no_data"`
}

type historicalDayJSON struct {
	Date        string   `json:"date"`
	TMax        *float64 `json:"tmax"`
	TMin        *float64 `json:"tmin"`
	PrecipSum   *float64 `json:"precip_sum"`
	WeatherCode *float64 `json:"weather_code"`
}

type historicalStats struct {
	TMax domain.TemperatureStats `json:"tmax"`
	TMin domain.TemperatureStats `json:"tmin"`
}

type monthlyMeanJSON struct {
	Month string  `json:"month"`
	TMean float64 `json:"t_mean"`
}

func (s *Server) handleFavorites(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"favorites": defaultFavorites,
		"count":     len(defaultFavorites),
	})
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("name")
	if query == "" {
		writeBadRequest(w, "name query parameter is required")
		return
	}

	results := s.service.Search(r.Context(), query, r.URL.Query().Get("country_code"))
	writeJSON(w, http.StatusOK, geocodeResponse{
		Query:   query,
		Results: results,
		NoData:  len(results) == 0,
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	loc, ok := locationFromQuery(w, r)
	if !ok {
		return
	}

	bundle := s.service.Forecast(r.Context(), loc)
	if bundle.IsEmpty() {
		writeJSON(w, http.StatusOK, forecastResponse{Location: loc, NoData: true})
		return
	}

	vigilance := bundle.Vigilance
	writeJSON(w, http.StatusOK, forecastResponse{
		Location:  loc,
		FetchedAt: &bundle.FetchedAt,
		Current:   currentFrom(bundle.Payload),
		Hourly:    tableFrom(bundle.Hourly),
		Daily:     tableFrom(bundle.Daily),
		Vigilance: &vigilance,
	})
}

func (s *Server) handleHistorical(w http.ResponseWriter, r *http.Request) {
	loc, ok := locationFromQuery(w, r)
	if !ok {
		return
	}

	start, err := time.Parse(dateLayout, r.URL.Query().Get("start_date"))
	if err != nil {
		writeBadRequest(w, "start_date must be a YYYY-MM-DD date")
		return
	}
	end, err := time.Parse(dateLayout, r.URL.Query().Get("end_date"))
	if err != nil {
		writeBadRequest(w, "end_date must be a YYYY-MM-DD date")
		return
	}
	if end.Before(start) {
		writeBadRequest(w, "end_date must not be before start_date")
		return
	}

	report := s.service.Historical(r.Context(), loc, start, end)

	resp := historicalResponse{
		Location:     loc,
		StartDate:    start.Format(dateLayout),
		EndDate:      end.Format(dateLayout),
		Days:         make([]historicalDayJSON, 0, len(report.Days)),
		MonthlyMeans: make([]monthlyMeanJSON, 0, len(report.MonthlyMean)),
		NoData:       len(report.Days) == 0,
	}
	for _, d := range report.Days {
		resp.Days = append(resp.Days, historicalDayJSON{
			Date:        d.Date.Format(dateLayout),
			TMax:        floatPtr(d.TMax),
			TMin:        floatPtr(d.TMin),
			PrecipSum:   floatPtr(d.PrecipSum),
			WeatherCode: floatPtr(d.WeatherCode),
		})
	}
	for _, m := range report.MonthlyMean {
		resp.MonthlyMeans = append(resp.MonthlyMeans, monthlyMeanJSON{
			Month: m.Month.Format("2006-01"),
			TMean: m.TMean,
		})
	}
	if report.HasStats {
		resp.Stats = &historicalStats{TMax: report.TMaxStats, TMin: report.TMinStats}
	}
	writeJSON(w, http.StatusOK, resp)
}

// locationFromQuery builds a Location from latitude/longitude plus the
// optional display fields. Writes a 400 and returns false on bad coords.
func locationFromQuery(w http.ResponseWriter, r *http.Request) (domain.Location, bool) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("latitude"), 64)
	if err != nil || lat < -90 || lat > 90 {
		writeBadRequest(w, "latitude must be a number between -90 and 90")
		return domain.Location{}, false
	}
	lon, err := strconv.ParseFloat(q.Get("longitude"), 64)
	if err != nil || lon < -180 || lon > 180 {
		writeBadRequest(w, "longitude must be a number between -180 and 180")
		return domain.Location{}, false
	}

	return domain.Location{
		Name:      q.Get("name"),
		Country:   q.Get("country"),
		Latitude:  lat,
		Longitude: lon,
		Timezone:  q.Get("timezone"),
	}, true
}

func currentFrom(p domain.ForecastPayload) *currentJSON {
	if len(p.Current) == 0 {
		return nil
	}

	c := &currentJSON{Values: make(map[string]*float64)}
	for key, raw := range p.Current {
		if key == "time" {
			if s, ok := raw.(string); ok {
				c.Time = s
			}
			continue
		}
		if v, ok := p.CurrentNumber(key); ok {
			c.Values[key] = &v
		} else {
			c.Values[key] = nil
		}
	}

	code := math.NaN()
	if v, ok := p.CurrentNumber("weather_code"); ok {
		code = v
	}
	isDay := math.NaN()
	if v, ok := p.CurrentNumber("is_day"); ok {
		isDay = v
	}
	c.Weather = domain.CodeToVisual(code, isDay)
	return c
}

func tableFrom(t domain.Table) *tableJSON {
	if t.IsEmpty() {
		return nil
	}

	out := &tableJSON{
		Time:    make([]string, t.Len()),
		Numeric: make(map[string][]*float64, len(t.Numeric)),
	}
	for i, ts := range t.Time {
		out.Time[i] = formatStamp(ts)
	}
	for key, col := range t.Numeric {
		cells := make([]*float64, len(col))
		for i := range col {
			cells[i] = floatPtr(col[i])
		}
		out.Numeric[key] = cells
	}
	if len(t.Stamps) > 0 {
		out.Stamps = make(map[string][]string, len(t.Stamps))
		for key, col := range t.Stamps {
			cells := make([]string, len(col))
			for i := range col {
				cells[i] = formatStamp(col[i])
			}
			out.Stamps[key] = cells
		}
	}
	return out
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02T15:04")
}

// floatPtr converts the internal NaN-as-missing convention to JSON null.
func floatPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
