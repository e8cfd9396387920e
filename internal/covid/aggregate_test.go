package covid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func report(date, country, iso string, confirmed, deaths int64, recovered *int64) Report {
	return Report{
		Date:      day(date),
		Region:    Region{ISO: iso, Name: country},
		Confirmed: confirmed,
		Deaths:    deaths,
		Recovered: recovered,
	}
}

func sampleReports() []Report {
	return []Report{
		report("2020-04-01", "Germany", "DEU", 100, 5, int64p(10)),
		report("2020-04-01", "Germany", "DEU", 50, 1, nil),
		report("2020-04-01", "France", "FRA", 80, 7, int64p(3)),
		report("2020-05-01", "Germany", "DEU", 300, 20, int64p(90)),
		report("2020-05-01", "France", "FRA", 200, 30, nil),
		report("2020-06-01", "Italy", "ITA", 900, 90, nil),
		report("2021-06-01", "Germany", "DEU", 5000, 100, int64p(4000)),
	}
}

func TestAggregateReports(t *testing.T) {
	aggs := FilterAndAggregate(sampleReports(), []string{"Germany", "France"}, day("2020-04-01"), day("2020-05-01"))
	require.Len(t, aggs, 4)

	// Sorted by date, then country.
	assert.Equal(t, Aggregate{Date: day("2020-04-01"), Country: "France", ISO: "FRA", Confirmed: 80, Deaths: 7, Recovered: 3}, aggs[0])
	assert.Equal(t, Aggregate{Date: day("2020-04-01"), Country: "Germany", ISO: "DEU", Confirmed: 150, Deaths: 6, Recovered: 10}, aggs[1])
	assert.Equal(t, "2020-05-01", aggs[2].Date.Format("2006-01-02"))
	assert.Equal(t, "France", aggs[2].Country)
	assert.Equal(t, int64(0), aggs[2].Recovered)
}

func TestAggregateTruncatesTimeOfDay(t *testing.T) {
	r := report("2020-04-01", "Spain", "ESP", 1, 0, nil)
	r.Date = r.Date.Add(17 * time.Hour)
	aggs := FilterAndAggregate([]Report{r, report("2020-04-01", "Spain", "ESP", 2, 0, nil)}, []string{"Spain"}, day("2020-04-01"), day("2020-04-01"))
	require.Len(t, aggs, 1)
	assert.Equal(t, int64(3), aggs[0].Confirmed)
}

func TestRecoveredNeverNegativeOrMissing(t *testing.T) {
	reports := []Report{
		report("2020-04-01", "Italy", "ITA", 10, 1, nil),
		report("2020-04-01", "Italy", "ITA", 20, 2, nil),
	}
	aggs := AggregateReports(reports)
	require.Len(t, aggs, 1)
	assert.Equal(t, int64(0), aggs[0].Recovered)
}

func TestAggregationCommutesWithFilter(t *testing.T) {
	reports := sampleReports()
	countries := []string{"Germany", "Italy"}
	start, end := day("2020-04-01"), day("2020-06-01")

	filterFirst := FilterAndAggregate(reports, countries, start, end)
	aggregateFirst := filterAggregates(AggregateReports(reports), countries, start, end)

	assert.Equal(t, filterFirst, aggregateFirst)
}

// filterAggregates applies the report filter to rows that are already
// aggregated.
func filterAggregates(aggs []Aggregate, countries []string, start, end time.Time) []Aggregate {
	selected := countrySet(countries)

	var out []Aggregate
	for _, a := range aggs {
		if a.Date.Before(start) || a.Date.After(end) {
			continue
		}
		if _, ok := selected[a.Country]; !ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

func TestMaxima(t *testing.T) {
	aggs := FilterAndAggregate(sampleReports(), []string{"Germany", "France", "Italy"}, day("2020-04-01"), day("2020-06-01"))
	s := Maxima(aggs)

	assert.Equal(t, Peak{Metric: MetricConfirmed, Value: 900, Country: "Italy", Date: "2020-06-01"}, s.Confirmed)
	assert.Equal(t, Peak{Metric: MetricDeaths, Value: 90, Country: "Italy", Date: "2020-06-01"}, s.Deaths)
	assert.Equal(t, Peak{Metric: MetricRecovered, Value: 90, Country: "Germany", Date: "2020-05-01"}, s.Recovered)
}

func TestMaximaTieBreak(t *testing.T) {
	aggs := []Aggregate{
		{Date: day("2020-05-01"), Country: "Spain", ISO: "ESP", Confirmed: 10},
		{Date: day("2020-04-01"), Country: "Austria", ISO: "AUT", Confirmed: 10},
		{Date: day("2020-03-09"), Country: "Spain", ISO: "ESP", Confirmed: 10},
		{Date: day("2020-06-01"), Country: "Austria", ISO: "AUT", Confirmed: 10},
	}
	p := Maxima(aggs).Confirmed
	assert.Equal(t, "Austria", p.Country)
	assert.Equal(t, "2020-04-01", p.Date)

	// Every row ties at zero recovered.
	r := Maxima(aggs).Recovered
	assert.Equal(t, int64(0), r.Value)
	assert.Equal(t, "Austria", r.Country)
}

func TestMaximaEmpty(t *testing.T) {
	s := Maxima(nil)
	assert.Equal(t, Peak{Metric: MetricDeaths}, s.Deaths)
}

func TestMapTotals(t *testing.T) {
	aggs := FilterAndAggregate(sampleReports(), []string{"Germany", "France"}, day("2020-04-01"), day("2020-05-01"))
	totals := MapTotals(aggs)

	assert.Equal(t, []CountryTotal{
		{Country: "France", ISO: "FRA", Confirmed: 280, Deaths: 37, Recovered: 3},
		{Country: "Germany", ISO: "DEU", Confirmed: 450, Deaths: 26, Recovered: 100},
	}, totals)
}

func TestSeries(t *testing.T) {
	aggs := FilterAndAggregate(sampleReports(), []string{"Germany", "France"}, day("2020-04-01"), day("2020-05-01"))
	lines := Series(aggs, MetricDeaths)

	require.Len(t, lines, 2)
	assert.Equal(t, "France", lines[0].Country)
	assert.Equal(t, []Point{{Date: "2020-04-01", Value: 7}, {Date: "2020-05-01", Value: 30}}, lines[0].Points)
	assert.Equal(t, "Germany", lines[1].Country)
	assert.Equal(t, []Point{{Date: "2020-04-01", Value: 6}, {Date: "2020-05-01", Value: 20}}, lines[1].Points)
}

func TestSeriesSplitsCountryByISO(t *testing.T) {
	aggs := AggregateReports([]Report{
		report("2020-04-01", "Congo", "COD", 5, 1, nil),
		report("2020-04-01", "Congo", "COG", 3, 0, nil),
		report("2020-05-01", "Congo", "COG", 4, 0, nil),
	})
	lines := Series(aggs, MetricConfirmed)

	require.Len(t, lines, 2)
	assert.Equal(t, Line{Country: "Congo", ISO: "COD", Points: []Point{{Date: "2020-04-01", Value: 5}}}, lines[0])
	assert.Equal(t, Line{Country: "Congo", ISO: "COG", Points: []Point{
		{Date: "2020-04-01", Value: 3},
		{Date: "2020-05-01", Value: 4},
	}}, lines[1])
}
