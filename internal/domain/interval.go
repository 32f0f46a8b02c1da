package domain

import "sort"

// Overlaps reports whether [aStart, aEnd) intersects [bStart, bEnd).
// Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

// ConflictsForSlot returns the appointments on a day that would collide with
// the proposed [start, end) slot.
func ConflictsForSlot(dayAppointments []Appointment, start, end TimeOfDay) []Appointment {
	var out []Appointment
	for _, a := range dayAppointments {
		if Overlaps(start, end, a.StartTime, a.EndTime) {
			out = append(out, a)
		}
	}
	return out
}

// ConflictingPairs enumerates every overlapping pair on a day. Daily
// appointment counts are small, so the quadratic scan is fine.
func ConflictingPairs(dayAppointments []Appointment) [][2]Appointment {
	sorted := make([]Appointment, len(dayAppointments))
	copy(sorted, dayAppointments)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartTime != sorted[j].StartTime {
			return sorted[i].StartTime < sorted[j].StartTime
		}
		return sorted[i].EndTime < sorted[j].EndTime
	})

	var pairs [][2]Appointment
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if Overlaps(sorted[i].StartTime, sorted[i].EndTime, sorted[j].StartTime, sorted[j].EndTime) {
				pairs = append(pairs, [2]Appointment{sorted[i], sorted[j]})
			}
		}
	}
	return pairs
}

// MergeBusy collapses sorted-or-unsorted windows into disjoint busy blocks.
// Overlapping or touching windows (next.Start <= merged.End) become one block.
func MergeBusy(windows []TimeWindow) []TimeWindow {
	valid := make([]TimeWindow, 0, len(windows))
	for _, w := range windows {
		if w.IsValid() {
			valid = append(valid, w)
		}
	}
	sort.Slice(valid, func(i, j int) bool {
		if valid[i].Start != valid[j].Start {
			return valid[i].Start < valid[j].Start
		}
		return valid[i].End < valid[j].End
	})

	var merged []TimeWindow
	for _, w := range valid {
		if len(merged) == 0 {
			merged = append(merged, w)
			continue
		}
		last := &merged[len(merged)-1]
		if w.Start <= last.End {
			if w.End > last.End {
				last.End = w.End
			}
		} else {
			merged = append(merged, w)
		}
	}
	return merged
}
