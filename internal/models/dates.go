package models

import "github.com/sterilpoint/protokol/internal/timex"

// EffectiveReturnDate returns the recorded return date, or the next business
// day after the transfer date when none was recorded. The empty string comes
// back when the transfer date itself is unparseable.
func (e *Entry) EffectiveReturnDate() string {
	if e.ReturnDate != "" {
		return e.ReturnDate
	}
	d, err := timex.ParseDate(e.Date)
	if err != nil {
		return ""
	}
	return timex.FormatDate(timex.NextBusinessDay(d))
}
