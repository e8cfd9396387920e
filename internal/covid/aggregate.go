package covid

import (
	"sort"
	"time"

	"github.com/i474232898/covid-stats/internal/common"
)

type aggregateKey struct {
	day     int64 // unix seconds of the UTC calendar day
	country string
	iso     string
}

// FilterReports keeps the reports dated within [start, end] whose country is
// in countries. Dates are compared at calendar-day granularity.
func FilterReports(reports []Report, countries []string, start, end time.Time) []Report {
	selected := countrySet(countries)
	start, end = common.Day(start), common.Day(end)

	var out []Report
	for _, r := range reports {
		d := common.Day(r.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		if _, ok := selected[r.Country()]; !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// AggregateReports sums reports sharing the same (date, country, iso) key.
// Missing recovered values count as zero. The result is sorted by date, then
// country, then iso code.
func AggregateReports(reports []Report) []Aggregate {
	sums := make(map[aggregateKey]*Aggregate)

	for _, r := range reports {
		d := common.Day(r.Date)
		k := aggregateKey{day: d.Unix(), country: r.Country(), iso: r.ISO()}

		agg, ok := sums[k]
		if !ok {
			agg = &Aggregate{Date: d, Country: k.country, ISO: k.iso}
			sums[k] = agg
		}
		agg.Confirmed += r.Confirmed
		agg.Deaths += r.Deaths
		if r.Recovered != nil {
			agg.Recovered += *r.Recovered
		}
	}

	out := make([]Aggregate, 0, len(sums))
	for _, agg := range sums {
		out = append(out, *agg)
	}
	sortAggregates(out)
	return out
}

// FilterAndAggregate narrows reports to the selected countries and range and
// sums them per (date, country, iso).
func FilterAndAggregate(reports []Report, countries []string, start, end time.Time) []Aggregate {
	return AggregateReports(FilterReports(reports, countries, start, end))
}

// Maxima finds the highest confirmed, deaths and recovered values
// independently. Ties go to the alphabetically first country, then to the
// earliest date.
func Maxima(aggs []Aggregate) Summary {
	return Summary{
		Confirmed: peak(aggs, MetricConfirmed),
		Deaths:    peak(aggs, MetricDeaths),
		Recovered: peak(aggs, MetricRecovered),
	}
}

func peak(aggs []Aggregate, m Metric) Peak {
	p := Peak{Metric: m}
	if len(aggs) == 0 {
		return p
	}

	best := aggs[0]
	for _, a := range aggs[1:] {
		v, bv := a.Value(m), best.Value(m)
		switch {
		case v > bv:
			best = a
		case v == bv && a.Country < best.Country:
			best = a
		case v == bv && a.Country == best.Country && a.Date.Before(best.Date):
			best = a
		}
	}

	p.Value = best.Value(m)
	p.Country = best.Country
	p.Date = common.FormatDay(best.Date)
	return p
}

// MapTotals sums each country's counters over the whole range, one entry per
// (country, iso), sorted by country.
func MapTotals(aggs []Aggregate) []CountryTotal {
	type countryKey struct{ country, iso string }
	totals := make(map[countryKey]*CountryTotal)

	for _, a := range aggs {
		k := countryKey{a.Country, a.ISO}
		t, ok := totals[k]
		if !ok {
			t = &CountryTotal{Country: a.Country, ISO: a.ISO}
			totals[k] = t
		}
		t.Confirmed += a.Confirmed
		t.Deaths += a.Deaths
		t.Recovered += a.Recovered
	}

	out := make([]CountryTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return out[i].ISO < out[j].ISO
	})
	return out
}

// Series builds one line per (country, iso) for metric m. Lines are ordered
// by country then iso, points by date.
func Series(aggs []Aggregate, m Metric) []Line {
	sorted := make([]Aggregate, len(aggs))
	copy(sorted, aggs)
	sortAggregates(sorted)

	type lineKey struct{ country, iso string }
	index := make(map[lineKey]int)
	var lines []Line
	for _, a := range sorted {
		k := lineKey{a.Country, a.ISO}
		i, ok := index[k]
		if !ok {
			i = len(lines)
			index[k] = i
			lines = append(lines, Line{Country: a.Country, ISO: a.ISO})
		}
		lines[i].Points = append(lines[i].Points, Point{
			Date:  common.FormatDay(a.Date),
			Value: a.Value(m),
		})
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Country != lines[j].Country {
			return lines[i].Country < lines[j].Country
		}
		return lines[i].ISO < lines[j].ISO
	})
	return lines
}

func sortAggregates(aggs []Aggregate) {
	sort.Slice(aggs, func(i, j int) bool {
		if !aggs[i].Date.Equal(aggs[j].Date) {
			return aggs[i].Date.Before(aggs[j].Date)
		}
		if aggs[i].Country != aggs[j].Country {
			return aggs[i].Country < aggs[j].Country
		}
		return aggs[i].ISO < aggs[j].ISO
	})
}

func countrySet(countries []string) map[string]struct{} {
	set := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		set[c] = struct{}{}
	}
	return set
}
