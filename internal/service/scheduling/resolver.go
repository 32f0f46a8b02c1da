package scheduling

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"kalendo/backend/internal/domain"
	"kalendo/backend/internal/match"
	"kalendo/backend/internal/store"
)

// ErrAmbiguousSelector is returned when a strict selector matches more than
// one appointment and the caller must disambiguate.
var ErrAmbiguousSelector = errors.New("selector matches more than one appointment")

// rescanDays is how far past today the last-resort strategy looks.
const rescanDays = 7

type resolveStrategy struct {
	name string
	fn   func(ctx context.Context, s *Service, sel domain.Selector) ([]domain.Appointment, bool, error)
}

// Strategies run in order; the first one that produces candidates decides the
// outcome. A strategy returning ok=false was not applicable and the next one
// runs even if it saw zero matches.
var resolveStrategies = []resolveStrategy{
	{name: "by_id", fn: resolveByID},
	{name: "by_date", fn: resolveByDate},
	{name: "exact_window", fn: resolveExactWindow},
	{name: "upcoming", fn: resolveUpcoming},
}

// Resolve maps a selector to the appointments it identifies, trying each
// strategy in turn. Candidates are sorted by (date, start time).
func (s *Service) Resolve(ctx context.Context, sel domain.Selector) ([]domain.Appointment, error) {
	for _, st := range resolveStrategies {
		matches, ok, err := st.fn(ctx, s, sel)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if len(matches) == 0 {
			return nil, store.ErrNotFound
		}
		sortByDateStart(matches)
		s.log.Debug("selector resolved",
			slog.String("strategy", st.name),
			slog.Int("matches", len(matches)),
		)
		return matches, nil
	}
	return nil, store.ErrNotFound
}

// resolveOne narrows a resolution to a single appointment. With a strict
// selector multiple matches are an error; otherwise the earliest upcoming
// match by (date, start) wins.
func (s *Service) resolveOne(ctx context.Context, sel domain.Selector) (domain.Appointment, error) {
	matches, err := s.Resolve(ctx, sel)
	if err != nil {
		return domain.Appointment{}, err
	}
	if len(matches) > 1 && sel.Strict {
		return domain.Appointment{}, ErrAmbiguousSelector
	}
	return matches[0], nil
}

// RescheduleBySelector resolves the selector and moves the appointment with
// the same duration-preserving rules as Reschedule.
func (s *Service) RescheduleBySelector(ctx context.Context, sel domain.Selector, newDate *time.Time, newStart, newEnd *domain.TimeOfDay) (Result, error) {
	appt, err := s.resolveOne(ctx, sel)
	if err != nil {
		return Result{}, err
	}
	return s.Reschedule(ctx, appt.ID, newDate, newStart, newEnd)
}

func (s *Service) RenameBySelector(ctx context.Context, sel domain.Selector, title string) (domain.Appointment, error) {
	appt, err := s.resolveOne(ctx, sel)
	if err != nil {
		return domain.Appointment{}, err
	}
	return s.Rename(ctx, appt.ID, title)
}

// DeleteBySelector always resolves strictly: deleting the wrong appointment
// is worse than asking the caller to narrow the selector.
func (s *Service) DeleteBySelector(ctx context.Context, sel domain.Selector) (domain.Appointment, error) {
	sel.Strict = true
	appt, err := s.resolveOne(ctx, sel)
	if err != nil {
		return domain.Appointment{}, err
	}
	if err := s.appts.Delete(ctx, appt.ID); err != nil {
		return domain.Appointment{}, err
	}
	return appt, nil
}

func resolveByID(ctx context.Context, s *Service, sel domain.Selector) ([]domain.Appointment, bool, error) {
	if sel.ID == nil {
		return nil, false, nil
	}
	appt, err := s.appts.GetByID(ctx, *sel.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return []domain.Appointment{appt}, true, nil
}

// resolveByDate filters the named day by exact times and fuzzy term. It only
// decides the outcome when exactly one appointment survives; zero or many
// fall through to the broader strategies.
func resolveByDate(ctx context.Context, s *Service, sel domain.Selector) ([]domain.Appointment, bool, error) {
	if sel.Date == nil {
		return nil, false, nil
	}
	day, err := s.appts.ListByDate(ctx, *sel.Date)
	if err != nil {
		return nil, false, err
	}
	matches := filterSelector(day, sel)
	if len(matches) != 1 {
		return nil, false, nil
	}
	return matches, true, nil
}

// resolveExactWindow re-filters the named day pairing the exact time filters
// with the fuzzy term. Unlike resolveByDate it accepts multiple survivors,
// leaving disambiguation to the strict/lenient policy; a term that matches
// nothing still falls through.
func resolveExactWindow(ctx context.Context, s *Service, sel domain.Selector) ([]domain.Appointment, bool, error) {
	if sel.Date == nil || (sel.StartTime == nil && sel.EndTime == nil) {
		return nil, false, nil
	}
	day, err := s.appts.ListByDate(ctx, *sel.Date)
	if err != nil {
		return nil, false, err
	}
	matches := filterSelector(day, sel)
	if len(matches) == 0 {
		return nil, false, nil
	}
	return matches, true, nil
}

// resolveUpcoming is the last resort for term-only selectors: exactly one
// match today wins outright; otherwise the search widens to the next seven
// days and lenient resolution picks the earliest.
func resolveUpcoming(ctx context.Context, s *Service, sel domain.Selector) ([]domain.Appointment, bool, error) {
	if sel.Term == "" {
		return nil, false, nil
	}
	today := s.today()

	day, err := s.appts.ListByDate(ctx, today)
	if err != nil {
		return nil, false, err
	}
	todayMatches := filterSelector(day, sel)
	if len(todayMatches) > 0 {
		return todayMatches, true, nil
	}

	upcoming, err := s.appts.ListRange(ctx, today.AddDate(0, 0, 1), today.AddDate(0, 0, rescanDays))
	if err != nil {
		return nil, false, err
	}
	return filterSelector(upcoming, sel), true, nil
}

func filterSelector(appts []domain.Appointment, sel domain.Selector) []domain.Appointment {
	fold := sel.FoldCase()
	threshold := sel.Threshold()

	var out []domain.Appointment
	for _, a := range appts {
		if sel.StartTime != nil && a.StartTime != *sel.StartTime {
			continue
		}
		if sel.EndTime != nil && a.EndTime != *sel.EndTime {
			continue
		}
		if sel.Term != "" &&
			!match.Match(a.Title, sel.Term, fold, threshold) &&
			!match.Match(a.Notes, sel.Term, fold, threshold) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func sortByDateStart(appts []domain.Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		if !appts[i].Date.Equal(appts[j].Date) {
			return appts[i].Date.Before(appts[j].Date)
		}
		return appts[i].StartTime < appts[j].StartTime
	})
}
