package domain

import (
	"errors"
	"sort"
	"time"
)

type RecurrencePattern string

const (
	RecurrenceDaily    RecurrencePattern = "DAILY"
	RecurrenceWeekdays RecurrencePattern = "WEEKDAYS"
	RecurrenceWeekly   RecurrencePattern = "WEEKLY"
)

// MaxRecurrenceCount caps count-mode generation. Range mode is bounded by the
// date range itself.
const MaxRecurrenceCount = 100

// RecurrenceSpec describes which dates in a range are occurrences. It is
// transient: produced by the parameter layer, expanded here, never stored.
// Exactly one bound applies: EndDate (inclusive) or Count.
type RecurrenceSpec struct {
	Pattern    RecurrencePattern
	Interval   int   // stride in days for DAILY; defaults to 1
	ByWeekdays []int // Monday=0 .. Sunday=6; WEEKLY defaults to the start date's weekday
	StartDate  time.Time
	EndDate    *time.Time
	Count      *int
}

// Expand generates the occurrence dates for the spec: sorted, de-duplicated,
// and identical across repeated calls so preview-then-commit flows can rely
// on it.
func (s RecurrenceSpec) Expand() ([]time.Time, error) {
	pattern := s.Pattern
	if pattern == "" {
		pattern = RecurrenceDaily
	}
	switch pattern {
	case RecurrenceDaily, RecurrenceWeekdays, RecurrenceWeekly:
	default:
		return nil, errors.New("unsupported recurrence pattern")
	}

	interval := s.Interval
	if interval < 1 {
		interval = 1
	}

	allowed := [7]bool{}
	hasWeekday := false
	for _, wd := range s.ByWeekdays {
		if wd < 0 || wd > 6 {
			return nil, errors.New("invalid weekday")
		}
		allowed[wd] = true
		hasWeekday = true
	}

	start := Midnight(s.StartDate)
	if pattern == RecurrenceWeekly && !hasWeekday {
		allowed[WeekdayIndex(start)] = true
	}

	matches := func(d time.Time, dayIndex int) bool {
		switch pattern {
		case RecurrenceDaily:
			return dayIndex%interval == 0
		case RecurrenceWeekdays:
			return WeekdayIndex(d) < 5
		default:
			return allowed[WeekdayIndex(d)]
		}
	}

	var out []time.Time
	switch {
	case s.EndDate != nil && s.Count != nil:
		return nil, errors.New("end_date and count are mutually exclusive")
	case s.EndDate != nil:
		end := Midnight(*s.EndDate)
		if end.Before(start) {
			start, end = end, start
		}
		i := 0
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if matches(d, i) {
				out = append(out, d)
			}
			i++
		}
	case s.Count != nil:
		count := *s.Count
		if count > MaxRecurrenceCount {
			count = MaxRecurrenceCount
		}
		i := 0
		for d := start; len(out) < count; d = d.AddDate(0, 0, 1) {
			if matches(d, i) {
				out = append(out, d)
			}
			i++
		}
	default:
		return nil, errors.New("end_date or count is required")
	}

	return dedupeSortedDates(out), nil
}

// ExpandRangeByWeekdays returns every date in [start, end] whose weekday is
// in the set (Monday=0). An empty set yields nothing.
func ExpandRangeByWeekdays(start, end time.Time, weekdays []int) []time.Time {
	start = Midnight(start)
	end = Midnight(end)
	if end.Before(start) {
		start, end = end, start
	}
	allowed := [7]bool{}
	any := false
	for _, wd := range weekdays {
		idx := ((wd % 7) + 7) % 7
		allowed[idx] = true
		any = true
	}
	if !any {
		return nil
	}
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if allowed[WeekdayIndex(d)] {
			out = append(out, d)
		}
	}
	return out
}

// ExpandMonthlyByDay returns the nth (1-4) or last (-1) occurrence of weekday
// in each month from start's month through until, inclusive, skipping months
// whose occurrence falls outside [start, until].
func ExpandMonthlyByDay(start, until time.Time, weekday, ordinal int) ([]time.Time, error) {
	if ordinal != -1 && (ordinal < 1 || ordinal > 4) {
		return nil, errors.New("ordinal must be 1-4 or -1 for last")
	}
	if weekday < 0 || weekday > 6 {
		return nil, errors.New("invalid weekday")
	}
	start = Midnight(start)
	until = Midnight(until)
	if until.Before(start) {
		start, until = until, start
	}

	var out []time.Time
	for cur := DateOf(start.Year(), start.Month(), 1); !cur.After(until); cur = cur.AddDate(0, 1, 0) {
		cand := nthWeekdayOfMonth(cur.Year(), cur.Month(), weekday, ordinal)
		if !cand.Before(start) && !cand.After(until) {
			out = append(out, cand)
		}
	}
	return out, nil
}

// nthWeekdayOfMonth recomputes the nth or last weekday per month; ordinal has
// been validated by the caller.
func nthWeekdayOfMonth(year int, month time.Month, weekday, ordinal int) time.Time {
	if ordinal == -1 {
		d := DateOf(year, month, 1).AddDate(0, 1, -1)
		for WeekdayIndex(d) != weekday {
			d = d.AddDate(0, 0, -1)
		}
		return d
	}
	first := DateOf(year, month, 1)
	offset := (weekday - WeekdayIndex(first) + 7) % 7
	return first.AddDate(0, 0, offset+7*(ordinal-1))
}

func dedupeSortedDates(dates []time.Time) []time.Time {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	out := dates[:0]
	for i, d := range dates {
		if i == 0 || !d.Equal(dates[i-1]) {
			out = append(out, d)
		}
	}
	return out
}
