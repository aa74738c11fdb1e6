// Package schedule holds the wedding-date arithmetic and the payment-plan
// builder shared by every booking flow.
package schedule

import (
	"regexp"
	"time"

	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
)

var calendarDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

const day = 24 * time.Hour

// ParseCalendarDate parses a strict "YYYY-MM-DD" string. The parsed instant
// is anchored at local noon: parsing at midnight risks the date rendering as
// the previous calendar day in negative-offset timezones.
func ParseCalendarDate(ymd string) (time.Time, error) {
	if !calendarDatePattern.MatchString(ymd) {
		return time.Time{}, domainErrors.NewValidationError("date", "must match YYYY-MM-DD")
	}
	parsed, err := time.ParseInLocation("2006-01-02", ymd, time.Local)
	if err != nil {
		return time.Time{}, domainErrors.NewValidationError("date", "not a valid calendar date")
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 12, 0, 0, 0, time.Local), nil
}

// DaysBefore returns the instant n whole days before t.
func DaysBefore(t time.Time, n int) time.Time {
	return t.Add(-time.Duration(n) * day)
}

// StartOfDayUTC normalizes t to 00:00:01 UTC of the same UTC calendar day.
// The 1-second offset is deliberate: due-date comparisons treat exact
// midnight as "not yet due", so due dates sit one second past midnight to
// compare as due starting that day.
func StartOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 1, 0, time.UTC)
}

// MonthsBetweenInclusive counts calendar months from `from` to `to`,
// inclusive of a trailing partial month: a target day-of-month at or past the
// start day-of-month counts one extra month. Never returns less than 1; a
// plan always has at least one payment period.
func MonthsBetweenInclusive(from, to time.Time) int {
	f := from.UTC()
	t := to.UTC()

	months := (t.Year()-f.Year())*12 + int(t.Month()) - int(f.Month())
	if t.Day() >= f.Day() {
		months++
	}
	if months < 1 {
		return 1
	}
	return months
}

// FirstOfNextMonthUTC returns 00:00:01 UTC on t's calendar day in the month
// following t. This is the anchor for the first automatic monthly charge: a
// booking made on the 15th charges on the 15th of each month. Day-of-month
// overflow (Jan 31 into February) normalizes forward per time.Date.
func FirstOfNextMonthUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month()+1, u.Day(), 0, 0, 1, 0, time.UTC)
}
