package covid

import (
	"time"

	"github.com/i474232898/covid-stats/internal/common"
)

// MonthlySampleDates returns one date per calendar month between start and
// end, both inclusive. The first sample is start itself; every following one
// is the first day of the next month.
func MonthlySampleDates(start, end time.Time) []time.Time {
	start, end = common.Day(start), common.Day(end)

	var dates []time.Time
	for cur := start; !cur.After(end); cur = nextMonth(cur) {
		dates = append(dates, cur)
	}
	return dates
}

func nextMonth(t time.Time) time.Time {
	if t.Month() == time.December {
		return time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}
