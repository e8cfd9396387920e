package covid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/i474232898/covid-stats/internal/common"
)

func day(s string) time.Time {
	d, err := common.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func formatAll(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = common.FormatDay(d)
	}
	return out
}

func TestMonthlySampleDates(t *testing.T) {
	got := MonthlySampleDates(day("2020-03-09"), day("2020-05-01"))
	assert.Equal(t, []string{"2020-03-09", "2020-04-01", "2020-05-01"}, formatAll(got))
}

func TestMonthlySampleDatesCrossesYear(t *testing.T) {
	got := MonthlySampleDates(day("2020-11-15"), day("2021-02-10"))
	assert.Equal(t, []string{"2020-11-15", "2020-12-01", "2021-01-01", "2021-02-01"}, formatAll(got))
}

func TestMonthlySampleDatesFullRange(t *testing.T) {
	// March 2020 through March 2023 spans 37 calendar months.
	got := MonthlySampleDates(MinDate, MaxDate)
	assert.Len(t, got, 37)
	assert.Equal(t, "2020-03-09", common.FormatDay(got[0]))
	assert.Equal(t, "2023-03-01", common.FormatDay(got[len(got)-1]))
}

func TestMonthlySampleDatesEdgeCases(t *testing.T) {
	assert.Equal(t, []string{"2021-06-30"}, formatAll(MonthlySampleDates(day("2021-06-30"), day("2021-06-30"))))
	assert.Empty(t, MonthlySampleDates(day("2021-06-30"), day("2021-06-01")))

	// The end day is inclusive only when it is itself a sample.
	assert.Equal(t, []string{"2021-01-31"}, formatAll(MonthlySampleDates(day("2021-01-31"), day("2021-01-31"))))
	assert.Equal(t, []string{"2021-01-15"}, formatAll(MonthlySampleDates(day("2021-01-15"), day("2021-01-31"))))
}
