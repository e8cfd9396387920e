package covid

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	log "github.com/sirupsen/logrus"

	"github.com/i474232898/covid-stats/internal/common"
)

// FetchResult describes one completed fetch run.
type FetchResult struct {
	RunID   string      `json:"runId"`
	Dates   []time.Time `json:"dates"`
	Failed  []time.Time `json:"failed,omitempty"`
	Records int         `json:"records"`
}

// Fetcher walks a date range month by month, pulls the reports for every
// sampled date and hands the combined set to its sinks.
type Fetcher struct {
	provider Provider
	sinks    []Sink
}

// NewFetcher creates a Fetcher writing to sinks in order.
func NewFetcher(provider Provider, sinks ...Sink) *Fetcher {
	return &Fetcher{
		provider: provider,
		sinks:    sinks,
	}
}

// Run fetches every monthly sample between start and end. Dates the provider
// rejects with a non-success status are logged and skipped; any other error
// aborts the run before anything is written.
func (f *Fetcher) Run(ctx context.Context, start, end time.Time) (FetchResult, error) {
	result := FetchResult{
		RunID: uuid.NewString(),
		Dates: MonthlySampleDates(start, end),
	}
	logger := log.WithFields(log.Fields{
		"prefix":   "fetcher",
		"run":      result.RunID,
		"provider": f.provider.Name(),
	})

	var all []Report
	for _, day := range result.Dates {
		if err := ctx.Err(); err != nil {
			return result, goerr.Wrap(err, "fetch run cancelled", goerr.V("date", common.FormatDay(day)))
		}

		logger.Infof("Fetching data for %s...", common.FormatDay(day))
		reports, err := f.provider.FetchReports(ctx, day)
		if err != nil {
			if goerr.HasTag(err, ErrTagStatus) {
				logger.WithError(err).Warnf("Failed to fetch data for %s", common.FormatDay(day))
				result.Failed = append(result.Failed, day)
				continue
			}
			return result, goerr.Wrap(err, "fetch run aborted", goerr.V("date", common.FormatDay(day)))
		}
		all = append(all, reports...)
	}

	for _, sink := range f.sinks {
		if err := sink.WriteReports(all); err != nil {
			return result, goerr.Wrap(err, "failed to persist reports", goerr.V("records", len(all)))
		}
	}

	result.Records = len(all)
	logger.WithFields(log.Fields{
		"samples": len(result.Dates),
		"failed":  len(result.Failed),
		"records": result.Records,
	}).Info("fetch run complete")
	return result, nil
}
