package covid

import (
	"time"
)

// Metric names one of the cumulative counters tracked per country.
type Metric string

const (
	MetricConfirmed Metric = "confirmed"
	MetricDeaths    Metric = "deaths"
	MetricRecovered Metric = "recovered"
)

// Region identifies the country, and optionally the province, a report
// belongs to. ISO is the ISO 3166-1 alpha-3 country code.
type Region struct {
	ISO      string `json:"iso"`
	Name     string `json:"name"`
	Province string `json:"province,omitempty"`
	Lat      string `json:"lat,omitempty"`
	Long     string `json:"long,omitempty"`
}

// Report is one country-day observation of cumulative case statistics as
// returned by the reports API. The API may return several regional rows for
// the same country and day.
type Report struct {
	Date      time.Time `json:"date"` // calendar day, UTC
	Region    Region    `json:"region"`
	Confirmed int64     `json:"confirmed"`
	Deaths    int64     `json:"deaths"`
	Recovered *int64    `json:"recovered"` // nil when the source did not report it

	ConfirmedDiff int64   `json:"confirmedDiff"`
	DeathsDiff    int64   `json:"deathsDiff"`
	RecoveredDiff int64   `json:"recoveredDiff"`
	Active        int64   `json:"active"`
	ActiveDiff    int64   `json:"activeDiff"`
	FatalityRate  float64 `json:"fatalityRate"`
	LastUpdate    string  `json:"lastUpdate,omitempty"`
}

// Country returns the country name the report belongs to.
func (r Report) Country() string {
	return r.Region.Name
}

// ISO returns the alpha-3 code of the report's country.
func (r Report) ISO() string {
	return r.Region.ISO
}

// Aggregate sums every report sharing the same (date, country, iso) key.
// Recovered is always set; missing values count as zero.
type Aggregate struct {
	Date      time.Time `json:"date"`
	Country   string    `json:"country"`
	ISO       string    `json:"isoAlpha"`
	Confirmed int64     `json:"confirmed"`
	Deaths    int64     `json:"deaths"`
	Recovered int64     `json:"recovered"`
}

// Value returns the counter for m.
func (a Aggregate) Value(m Metric) int64 {
	switch m {
	case MetricConfirmed:
		return a.Confirmed
	case MetricDeaths:
		return a.Deaths
	case MetricRecovered:
		return a.Recovered
	default:
		return 0
	}
}

// Peak is the single highest value of a metric and the country that owns it.
type Peak struct {
	Metric  Metric `json:"metric"`
	Value   int64  `json:"value"`
	Country string `json:"country"`
	Date    string `json:"date,omitempty"`
}

// Summary holds the three headline metrics shown above the charts.
type Summary struct {
	Confirmed Peak `json:"confirmed"`
	Deaths    Peak `json:"deaths"`
	Recovered Peak `json:"recovered"`
}

// CountryTotal is one choropleth entry: counters summed over the whole
// selected range for a single country.
type CountryTotal struct {
	Country   string `json:"country"`
	ISO       string `json:"isoAlpha"`
	Confirmed int64  `json:"confirmed"`
	Deaths    int64  `json:"deaths"`
	Recovered int64  `json:"recovered"`
}

// Point is a single (date, value) sample on a time-series line.
type Point struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// Line is the time series of one metric for one country, ordered by date.
type Line struct {
	Country string  `json:"country"`
	ISO     string  `json:"isoAlpha"`
	Points  []Point `json:"points"`
}

// Dashboard is everything the dashboard page renders for one query.
type Dashboard struct {
	Countries []string       `json:"countries"`
	Start     string         `json:"start"`
	End       string         `json:"end"`
	Summary   Summary        `json:"summary"`
	Map       []CountryTotal `json:"map"`
	Confirmed []Line         `json:"confirmed"`
	Deaths    []Line         `json:"deaths"`
	Recovered []Line         `json:"recovered"`
}
