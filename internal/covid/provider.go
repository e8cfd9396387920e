package covid

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Error tags used by providers to classify fetch failures. The fetcher skips
// dates that fail with ErrTagStatus and aborts on anything else.
var (
	ErrTagStatus    = goerr.NewTag("http_status")
	ErrTagTransport = goerr.NewTag("transport")
	ErrTagDecode    = goerr.NewTag("decode")
)

// ErrNoData is returned when a query matches no reports.
var ErrNoData = errors.New("no covid data for requested countries and range")

// Provider abstracts a source of daily reports (e.g. covid-api.com).
type Provider interface {
	Name() string
	FetchReports(ctx context.Context, day time.Time) ([]Report, error)
}

// Sink persists the reports collected by one fetch run.
type Sink interface {
	WriteReports(reports []Report) error
}

// Source is the read-only table the dashboard queries.
type Source interface {
	Reports() ([]Report, error)
}
