package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"kalendo/backend/internal/domain"
	"kalendo/backend/internal/store"
)

func fixedClock(y int, m time.Month, d, hour int) func() time.Time {
	return func() time.Time {
		return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
	}
}

func datePtr(t time.Time) *time.Time { return &t }

func TestResolveByID(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newMemStore())
	a := mustCreate(t, s, Entry{
		Date: day(2025, time.June, 2), Start: tod(9, 0), End: tod(10, 0), Title: "standup",
	})

	matches, err := s.Resolve(ctx, domain.Selector{ID: &a.ID})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != a.ID {
		t.Fatalf("matches = %v, want the appointment", matches)
	}

	unknown := uuid.New()
	if _, err := s.Resolve(ctx, domain.Selector{ID: &unknown}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown id err = %v, want %v", err, store.ErrNotFound)
	}
}

func TestResolveByDate(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newMemStore())
	d := day(2025, time.June, 2)

	mustCreate(t, s, Entry{Date: d, Start: tod(9, 0), End: tod(10, 0), Title: "Team Standup"})
	mustCreate(t, s, Entry{Date: d, Start: tod(14, 0), End: tod(15, 0), Title: "Dentist"})

	t.Run("fuzzy term narrows to one", func(t *testing.T) {
		matches, err := s.Resolve(ctx, domain.Selector{Date: &d, Term: "stnadup"})
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if len(matches) != 1 || matches[0].Title != "Team Standup" {
			t.Fatalf("matches = %v, want Team Standup", matches)
		}
	})

	t.Run("exact start time narrows to one", func(t *testing.T) {
		st := tod(14, 0)
		matches, err := s.Resolve(ctx, domain.Selector{Date: &d, StartTime: &st})
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if len(matches) != 1 || matches[0].Title != "Dentist" {
			t.Fatalf("matches = %v, want Dentist", matches)
		}
	})

	t.Run("mismatched term is not rescued by exact times", func(t *testing.T) {
		st := tod(14, 0)
		_, err := s.Resolve(ctx, domain.Selector{Date: &d, StartTime: &st, Term: "zzzzzz"})
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
		}
	})
}

func TestResolveUpcoming(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	s := newTestService(ms).WithClock(fixedClock(2025, time.June, 2, 8))
	today := day(2025, time.June, 2)

	t.Run("single match today wins", func(t *testing.T) {
		a := mustCreate(t, s, Entry{Date: today, Start: tod(9, 0), End: tod(10, 0), Title: "Dentist"})
		matches, err := s.Resolve(ctx, domain.Selector{Term: "dentist"})
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if len(matches) != 1 || matches[0].ID != a.ID {
			t.Fatalf("matches = %v, want today's dentist", matches)
		}
		if err := s.Delete(ctx, a.ID); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	})

	t.Run("no match today widens to the next seven days", func(t *testing.T) {
		later := mustCreate(t, s, Entry{
			Date: today.AddDate(0, 0, 3), Start: tod(9, 0), End: tod(10, 0), Title: "Dentist",
		})
		evenLater := mustCreate(t, s, Entry{
			Date: today.AddDate(0, 0, 5), Start: tod(9, 0), End: tod(10, 0), Title: "Dentist checkup",
		})

		appt, err := s.resolveOne(ctx, domain.Selector{Term: "dentist"})
		if err != nil {
			t.Fatalf("resolveOne error: %v", err)
		}
		if appt.ID != later.ID {
			t.Fatalf("picked %v, want the earliest upcoming match", appt)
		}

		_, err = s.resolveOne(ctx, domain.Selector{Term: "dentist", Strict: true})
		if !errors.Is(err, ErrAmbiguousSelector) {
			t.Fatalf("strict err = %v, want %v", err, ErrAmbiguousSelector)
		}

		for _, id := range []uuid.UUID{later.ID, evenLater.ID} {
			if err := s.Delete(ctx, id); err != nil {
				t.Fatalf("cleanup: %v", err)
			}
		}
	})

	t.Run("beyond the horizon is not found", func(t *testing.T) {
		mustCreate(t, s, Entry{
			Date: today.AddDate(0, 0, 30), Start: tod(9, 0), End: tod(10, 0), Title: "Dentist",
		})
		if _, err := s.Resolve(ctx, domain.Selector{Term: "dentist"}); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
		}
	})
}

func TestResolveMatchesNotes(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newMemStore())
	d := day(2025, time.June, 2)

	mustCreate(t, s, Entry{
		Date: d, Start: tod(9, 0), End: tod(10, 0), Title: "Meeting", Notes: "quarterly budget review",
	})
	mustCreate(t, s, Entry{Date: d, Start: tod(11, 0), End: tod(12, 0), Title: "Meeting"})

	matches, err := s.Resolve(ctx, domain.Selector{Date: &d, Term: "budget"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if len(matches) != 1 || matches[0].StartTime != tod(9, 0) {
		t.Fatalf("matches = %v, want the 9:00 meeting via notes", matches)
	}
}

func TestRescheduleBySelector(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newMemStore()).WithClock(fixedClock(2025, time.June, 2, 8))
	d := day(2025, time.June, 2)

	mustCreate(t, s, Entry{Date: d, Start: tod(9, 0), End: tod(10, 0), Title: "Standup"})

	st := tod(14, 0)
	res, err := s.RescheduleBySelector(ctx, domain.Selector{Date: &d, Term: "standup"}, nil, &st, nil)
	if err != nil {
		t.Fatalf("RescheduleBySelector error: %v", err)
	}
	if !res.Ok() {
		t.Fatalf("blocked by %v", res.Conflicts)
	}
	if res.Created.StartTime != tod(14, 0) || res.Created.EndTime != tod(15, 0) {
		t.Fatalf("window = %s-%s, want 14:00-15:00", res.Created.StartTime, res.Created.EndTime)
	}

	target := day(2025, time.June, 4)
	res, err = s.RescheduleBySelector(ctx, domain.Selector{Date: &d, Term: "standup"}, datePtr(target), nil, nil)
	if err != nil {
		t.Fatalf("RescheduleBySelector error: %v", err)
	}
	if !res.Created.Date.Equal(target) {
		t.Fatalf("date = %v, want %v", res.Created.Date, target)
	}
}

func TestDeleteBySelectorIsAlwaysStrict(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newMemStore()).WithClock(fixedClock(2025, time.June, 2, 8))
	d := day(2025, time.June, 2)

	mustCreate(t, s, Entry{Date: d, Start: tod(9, 0), End: tod(10, 0), Title: "Meeting"})
	mustCreate(t, s, Entry{Date: d, Start: tod(11, 0), End: tod(12, 0), Title: "Meeting"})

	// Lenient selector, but deletion refuses to guess between two matches.
	_, err := s.DeleteBySelector(ctx, domain.Selector{Term: "meeting"})
	if !errors.Is(err, ErrAmbiguousSelector) {
		t.Fatalf("err = %v, want %v", err, ErrAmbiguousSelector)
	}

	st := tod(9, 0)
	deleted, err := s.DeleteBySelector(ctx, domain.Selector{Date: &d, StartTime: &st, Term: "meeting"})
	if err != nil {
		t.Fatalf("DeleteBySelector error: %v", err)
	}
	if deleted.StartTime != tod(9, 0) {
		t.Fatalf("deleted = %v, want the 9:00 meeting", deleted)
	}

	remaining, err := s.Agenda(ctx, d)
	if err != nil {
		t.Fatalf("Agenda error: %v", err)
	}
	if len(remaining) != 1 || remaining[0].StartTime != tod(11, 0) {
		t.Fatalf("remaining = %v, want only the 11:00 meeting", remaining)
	}
}

func TestDeleteBySelectorRejectsMismatchedTerm(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newMemStore()).WithClock(fixedClock(2025, time.June, 2, 8))
	d := day(2025, time.June, 2)

	mustCreate(t, s, Entry{Date: d, Start: tod(9, 0), End: tod(10, 0), Title: "Standup"})

	// The times pin down an appointment, but the term describes a different
	// one; resolution must fail rather than delete whatever sits at 9:00.
	st := tod(9, 0)
	_, err := s.DeleteBySelector(ctx, domain.Selector{Date: &d, StartTime: &st, Term: "dentist"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
	}

	remaining, err := s.Agenda(ctx, d)
	if err != nil {
		t.Fatalf("Agenda error: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Title != "Standup" {
		t.Fatalf("agenda = %v, want Standup untouched", remaining)
	}
}

func TestSelectorThreshold(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newMemStore())
	d := day(2025, time.June, 2)

	mustCreate(t, s, Entry{Date: d, Start: tod(9, 0), End: tod(10, 0), Title: "Standup"})

	// Legacy 0-100 scale is accepted.
	legacy := 80.0
	if _, err := s.Resolve(ctx, domain.Selector{Date: &d, Term: "stnadup", MinRatio: &legacy}); err != nil {
		t.Fatalf("legacy ratio Resolve error: %v", err)
	}

	strictRatio := 0.99
	if _, err := s.Resolve(ctx, domain.Selector{Date: &d, Term: "stnadup", MinRatio: &strictRatio}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want %v at ratio 0.99", err, store.ErrNotFound)
	}
}
