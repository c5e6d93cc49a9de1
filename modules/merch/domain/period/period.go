// Package period holds the date arithmetic every year-over-year metric
// shares. The point-in-time clamp lives here exactly once; metrics reuse it
// instead of re-deriving it.
package period

import "time"

// PriorYearSameDate returns the same calendar date one year earlier, clamped
// to the last valid day of that month. Feb 29 on a leap year maps to Feb 28
// on a non-leap prior year, not Mar 1.
func PriorYearSameDate(t time.Time) time.Time {
	year, month, day := t.Year()-1, t.Month(), t.Day()
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthMidpoint is the reference date the matcher measures candidate
// distance from.
func MonthMidpoint(year int, month time.Month) time.Time {
	return time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
}

// OrderWindow is the span of PO dates that can satisfy a projection for the
// given target month: from windowDays before the first of the month through
// the last day of the month.
func OrderWindow(year int, month time.Month, windowDays int) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, month, DaysInMonth(year, month), 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 0, -windowDays), last
}
