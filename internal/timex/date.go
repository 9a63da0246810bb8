// Package timex holds calendar helpers for the protocol ledger. All
// arithmetic is UTC-anchored so day boundaries do not drift across DST
// changes in the host timezone.
package timex

import (
	"time"

	"github.com/sterilpoint/protokol/internal/common"
)

// ParseDate parses an ISO calendar date (YYYY-MM-DD) at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(common.DateLayout, s, time.UTC)
}

// FormatDate renders t as an ISO calendar date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(common.DateLayout)
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.UTC().Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// NextBusinessDay returns the first weekday strictly after t. The increment
// happens before the weekend skip, so a Friday input yields Monday and a
// weekday input whose successor is a weekday yields that successor.
func NextBusinessDay(t time.Time) time.Time {
	d := t.UTC().AddDate(0, 0, 1)
	for IsWeekend(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// NormalizeToBusinessDay returns t unchanged when it is a weekday, otherwise
// the nearest following weekday.
func NormalizeToBusinessDay(t time.Time) time.Time {
	d := t.UTC()
	for IsWeekend(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// MonthKey derives the YYYY-MM month key of t.
func MonthKey(t time.Time) string {
	return t.UTC().Format(common.MonthLayout)
}

// MonthKeyOfDate derives the month key of an ISO date string.
func MonthKeyOfDate(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return MonthKey(t), nil
}
