package covid

import (
	"sort"

	"github.com/m-mizutani/goerr/v2"
	log "github.com/sirupsen/logrus"

	"github.com/i474232898/covid-stats/internal/common"
)

// Service answers dashboard queries against a read-only report table.
type Service struct {
	source Source
}

// NewService creates a new Service.
func NewService(source Source) *Service {
	return &Service{
		source: source,
	}
}

// Countries lists the distinct country names present in the table, sorted.
func (s *Service) Countries() ([]string, error) {
	reports, err := s.source.Reports()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read reports")
	}

	seen := make(map[string]struct{})
	var countries []string
	for _, r := range reports {
		if _, ok := seen[r.Country()]; ok {
			continue
		}
		seen[r.Country()] = struct{}{}
		countries = append(countries, r.Country())
	}
	sort.Strings(countries)
	return countries, nil
}

// Build validates q, then filters, aggregates and shapes the matching rows
// into the dashboard view. Invalid queries return a *QueryError without
// touching the table.
func (s *Service) Build(q Query) (Dashboard, error) {
	if err := ValidateQuery(q); err != nil {
		return Dashboard{}, err
	}

	reports, err := s.source.Reports()
	if err != nil {
		return Dashboard{}, goerr.Wrap(err, "failed to read reports")
	}

	aggs := FilterAndAggregate(reports, q.Countries, q.Start, q.End)
	log.WithFields(log.Fields{
		"prefix":    "dashboard",
		"countries": len(q.Countries),
		"start":     common.FormatDay(q.Start),
		"end":       common.FormatDay(q.End),
		"rows":      len(aggs),
	}).Debug("aggregated dashboard query")

	if len(aggs) == 0 {
		return Dashboard{}, ErrNoData
	}

	return Dashboard{
		Countries: q.Countries,
		Start:     common.FormatDay(q.Start),
		End:       common.FormatDay(q.End),
		Summary:   Maxima(aggs),
		Map:       MapTotals(aggs),
		Confirmed: Series(aggs, MetricConfirmed),
		Deaths:    Series(aggs, MetricDeaths),
		Recovered: Series(aggs, MetricRecovered),
	}, nil
}
