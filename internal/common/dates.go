package common

import (
	"strings"
	"time"
)

// DateLayout is the calendar-day format used by the reports API, the CSV
// snapshot and the dashboard query string.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a strict YYYY-MM-DD string.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// ParseStampDay parses a date that may carry a time-of-day suffix, as the
// reports API sends them, and keeps only the calendar day.
func ParseStampDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		if s[len(DateLayout)] != ' ' && s[len(DateLayout)] != 'T' {
			return time.Time{}, &time.ParseError{Layout: DateLayout, Value: s, Message: ": unexpected date suffix"}
		}
		s = s[:len(DateLayout)]
	}
	return time.Parse(DateLayout, s)
}

// FormatDay renders t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the number of whole calendar days from start to end.
// The result is negative when end is before start.
func DaysBetween(start, end time.Time) int {
	return int(Day(end).Sub(Day(start)).Hours() / 24)
}
