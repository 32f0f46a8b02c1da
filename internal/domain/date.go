package domain

import "time"

// DateOf returns the given calendar date at UTC midnight. All dates in the
// calendar are stored this way; the time component is always zero.
func DateOf(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Midnight truncates an instant to its calendar date at UTC midnight.
func Midnight(t time.Time) time.Time {
	return DateOf(t.Year(), t.Month(), t.Day())
}

// WeekdayIndex maps a date onto Monday=0 .. Sunday=6.
func WeekdayIndex(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
