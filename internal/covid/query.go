package covid

import (
	"time"

	"github.com/i474232898/covid-stats/internal/common"
)

// MaxRangeDays is the widest date range the dashboard accepts.
const MaxRangeDays = 365

// Bounds of the date pickers, matching the span of the fetched snapshot.
var (
	MinDate = time.Date(2020, time.March, 9, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(2023, time.March, 9, 0, 0, 0, 0, time.UTC)
)

// QueryError is a user-correctable problem with a dashboard query.
type QueryError struct {
	Message string
	// Info marks problems shown as a hint rather than an error.
	Info bool
}

func (e *QueryError) Error() string {
	return e.Message
}

var (
	ErrRangeTooLong  = &QueryError{Message: "Error: The date range must be no more than one year."}
	ErrStartAfterEnd = &QueryError{Message: "Error: End date must be after start date."}
	ErrNoCountries   = &QueryError{Message: "Please select at least one country.", Info: true}
)

// Query selects the countries and the inclusive date range to aggregate.
type Query struct {
	Countries []string
	Start     time.Time
	End       time.Time
}

// ValidateQuery rejects ranges longer than MaxRangeDays, ranges that end
// before they start and empty country selections, in that order.
func ValidateQuery(q Query) error {
	days := common.DaysBetween(q.Start, q.End)
	if days > MaxRangeDays {
		return ErrRangeTooLong
	}
	if days < 0 {
		return ErrStartAfterEnd
	}
	if len(q.Countries) == 0 {
		return ErrNoCountries
	}
	return nil
}
