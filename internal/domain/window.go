package domain

import (
	"strings"
	"time"
)

// TimeWindow is a half-open [Start, End) time-of-day range.
type TimeWindow struct {
	Start TimeOfDay
	End   TimeOfDay
}

// FullDay spans 00:00 through 23:59:59, the default search bounds.
var FullDay = TimeWindow{Start: DayStart, End: DayEnd}

func (w TimeWindow) Minutes() int {
	return MinutesBetween(w.Start, w.End)
}

func (w TimeWindow) IsValid() bool {
	return w.End > w.Start
}

// Proposal is a candidate free slot offered back to a caller. Proposals are
// never persisted.
type Proposal struct {
	Date  time.Time
	Start TimeOfDay
	End   TimeOfDay
}

// WindowPreset resolves a named daily window: morning, afternoon, evening,
// workday, anytime. The second result is false for unknown names.
func WindowPreset(name string) (TimeWindow, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "morning":
		return TimeWindow{NewTimeOfDay(8, 0, 0), NewTimeOfDay(12, 0, 0)}, true
	case "afternoon":
		return TimeWindow{NewTimeOfDay(12, 0, 0), NewTimeOfDay(17, 0, 0)}, true
	case "evening":
		return TimeWindow{NewTimeOfDay(17, 0, 0), NewTimeOfDay(21, 0, 0)}, true
	case "workday":
		return TimeWindow{NewTimeOfDay(9, 0, 0), NewTimeOfDay(17, 0, 0)}, true
	case "anytime", "all day", "allday":
		return FullDay, true
	default:
		return TimeWindow{}, false
	}
}
