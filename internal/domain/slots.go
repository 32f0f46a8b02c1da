package domain

// clipBusy projects a day's appointments onto the given window and merges
// them into disjoint busy blocks.
func clipBusy(dayAppointments []Appointment, window TimeWindow) []TimeWindow {
	blocks := make([]TimeWindow, 0, len(dayAppointments))
	for _, a := range dayAppointments {
		if a.EndTime <= window.Start || a.StartTime >= window.End {
			continue
		}
		s := a.StartTime
		if s < window.Start {
			s = window.Start
		}
		e := a.EndTime
		if e > window.End {
			e = window.End
		}
		blocks = append(blocks, TimeWindow{Start: s, End: e})
	}
	return MergeBusy(blocks)
}

// ComputeFreeSlots returns the complement of a day's busy blocks within
// bounds. An empty day yields the whole bounds; a block spanning the bounds
// yields nothing. Touching appointments merge, so no zero-width gaps appear.
func ComputeFreeSlots(dayAppointments []Appointment, bounds TimeWindow) []TimeWindow {
	merged := clipBusy(dayAppointments, bounds)

	free := make([]TimeWindow, 0, len(merged)+1)
	prevEnd := bounds.Start
	for _, b := range merged {
		if b.Start > prevEnd {
			free = append(free, TimeWindow{Start: prevEnd, End: b.Start})
		}
		if b.End > prevEnd {
			prevEnd = b.End
		}
	}
	if prevEnd < bounds.End {
		free = append(free, TimeWindow{Start: prevEnd, End: bounds.End})
	}
	return free
}

// FindFirstFreeSlot returns the earliest slot of durationMinutes that fits in
// the window, anchored at the start of the first sufficient gap.
func FindFirstFreeSlot(dayAppointments []Appointment, durationMinutes int, window TimeWindow) (TimeWindow, bool) {
	if durationMinutes <= 0 {
		return TimeWindow{}, false
	}
	merged := clipBusy(dayAppointments, window)

	cursor := window.Start
	for _, b := range merged {
		if MinutesBetween(cursor, b.Start) >= durationMinutes {
			return TimeWindow{Start: cursor, End: cursor.AddMinutes(durationMinutes)}, true
		}
		if b.End > cursor {
			cursor = b.End
		}
	}
	if MinutesBetween(cursor, window.End) >= durationMinutes {
		return TimeWindow{Start: cursor, End: cursor.AddMinutes(durationMinutes)}, true
	}
	return TimeWindow{}, false
}

// FindAllFreeSlots enumerates candidate slots across every gap in the window,
// advancing by stepMinutes within each gap (default: the duration itself,
// which yields a non-overlapping menu) and stopping at limit.
func FindAllFreeSlots(dayAppointments []Appointment, durationMinutes int, window TimeWindow, limit, stepMinutes int) []TimeWindow {
	if durationMinutes <= 0 || limit <= 0 {
		return nil
	}
	if stepMinutes <= 0 {
		stepMinutes = durationMinutes
	}
	merged := clipBusy(dayAppointments, window)

	var slots []TimeWindow
	emit := func(gapStart, gapEnd TimeOfDay) {
		st := gapStart
		for MinutesBetween(st, gapEnd) >= durationMinutes && len(slots) < limit {
			slots = append(slots, TimeWindow{Start: st, End: st.AddMinutes(durationMinutes)})
			next := st.AddMinutes(stepMinutes)
			if next <= st { // wrapped past midnight
				break
			}
			st = next
		}
	}

	cursor := window.Start
	for _, b := range merged {
		if cursor < b.Start {
			emit(cursor, b.Start)
			if len(slots) >= limit {
				return slots
			}
		}
		if b.End > cursor {
			cursor = b.End
		}
	}
	if cursor < window.End {
		emit(cursor, window.End)
	}
	return slots
}
