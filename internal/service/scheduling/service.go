// Package scheduling composes conflict detection, free-slot search, and
// recurrence expansion into the calendar's write operations.
package scheduling

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"kalendo/backend/internal/domain"
	"kalendo/backend/internal/store"
)

// proposalLimit caps the alternative slots attached to a conflict result.
const proposalLimit = 5

type Service struct {
	appts store.AppointmentStore
	log   *slog.Logger
	now   func() time.Time
}

func NewService(appts store.AppointmentStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		appts: appts,
		log:   log.With(slog.String("component", "scheduling")),
		now:   time.Now,
	}
}

// WithClock overrides the service's notion of "today". Used by tests and by
// callers that replay historical requests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) today() time.Time {
	return domain.Midnight(s.now())
}

func validateWindow(start, end domain.TimeOfDay) error {
	if end <= start {
		return validationError("end_time must be after start_time")
	}
	return nil
}

func validateEntry(e Entry) error {
	if strings.TrimSpace(e.Title) == "" {
		return validationError("title is required")
	}
	return validateWindow(e.Start, e.End)
}

// FindConflicts returns the appointments that would collide with the
// proposed slot.
func (s *Service) FindConflicts(ctx context.Context, date time.Time, start, end domain.TimeOfDay) ([]domain.Appointment, error) {
	day, err := s.appts.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return domain.ConflictsForSlot(day, start, end), nil
}

// ConflictingPairs enumerates the overlapping pairs already booked on a day.
func (s *Service) ConflictingPairs(ctx context.Context, date time.Time) ([][2]domain.Appointment, error) {
	day, err := s.appts.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return domain.ConflictingPairs(day), nil
}

// FreeSlots returns the day's free windows within [00:00, 23:59:59].
func (s *Service) FreeSlots(ctx context.Context, date time.Time) ([]domain.TimeWindow, error) {
	day, err := s.appts.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return domain.ComputeFreeSlots(day, domain.FullDay), nil
}

func (s *Service) FirstFreeSlot(ctx context.Context, date time.Time, durationMinutes int, window domain.TimeWindow) (domain.Proposal, bool, error) {
	day, err := s.appts.ListByDate(ctx, date)
	if err != nil {
		return domain.Proposal{}, false, err
	}
	slot, ok := domain.FindFirstFreeSlot(day, durationMinutes, window)
	if !ok {
		return domain.Proposal{}, false, nil
	}
	return domain.Proposal{Date: domain.Midnight(date), Start: slot.Start, End: slot.End}, true, nil
}

func (s *Service) AllFreeSlots(ctx context.Context, date time.Time, durationMinutes int, window domain.TimeWindow, limit, stepMinutes int) ([]domain.Proposal, error) {
	day, err := s.appts.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	slots := domain.FindAllFreeSlots(day, durationMinutes, window, limit, stepMinutes)
	return proposalsFor(domain.Midnight(date), slots), nil
}

// FirstSlotInRange scans day by day from `from` through `to` and returns the
// first (date, start, end) able to host the duration within the window.
func (s *Service) FirstSlotInRange(ctx context.Context, from, to time.Time, durationMinutes int, window domain.TimeWindow, skipWeekends bool) (domain.Proposal, bool, error) {
	from = domain.Midnight(from)
	to = domain.Midnight(to)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if skipWeekends && domain.WeekdayIndex(d) >= 5 {
			continue
		}
		p, ok, err := s.FirstFreeSlot(ctx, d, durationMinutes, window)
		if err != nil {
			return domain.Proposal{}, false, err
		}
		if ok {
			return p, true, nil
		}
	}
	return domain.Proposal{}, false, nil
}

// ExpandRecurrence is the pure preview half of the preview-then-commit flow;
// it is safe to call repeatedly with identical results.
func (s *Service) ExpandRecurrence(spec domain.RecurrenceSpec) ([]time.Time, error) {
	return spec.Expand()
}

// CreateIfFree books the slot only when it is free; otherwise it returns the
// blocking appointments without mutating anything and without proposals.
func (s *Service) CreateIfFree(ctx context.Context, e Entry) (Result, error) {
	return s.create(ctx, e, false)
}

// CreateWithFallback books the slot when free; on conflict the result also
// carries a suggested slot and up to five proposals for the same day and
// duration so the caller can retry immediately.
func (s *Service) CreateWithFallback(ctx context.Context, e Entry) (Result, error) {
	return s.create(ctx, e, true)
}

func (s *Service) create(ctx context.Context, e Entry, withProposals bool) (Result, error) {
	if err := validateEntry(e); err != nil {
		return Result{}, err
	}
	date := domain.Midnight(e.Date)

	day, err := s.appts.ListByDate(ctx, date)
	if err != nil {
		return Result{}, err
	}
	conflicts := domain.ConflictsForSlot(day, e.Start, e.End)
	if len(conflicts) == 0 {
		appt, err := s.appts.Create(ctx, domain.Appointment{
			Date:      date,
			StartTime: e.Start,
			EndTime:   e.End,
			Title:     strings.TrimSpace(e.Title),
			Notes:     e.Notes,
		})
		if err == nil {
			return Result{Created: &appt}, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return Result{}, err
		}
		// Lost the check-then-write race; fall through with a fresh snapshot.
		if day, err = s.appts.ListByDate(ctx, date); err != nil {
			return Result{}, err
		}
		conflicts = domain.ConflictsForSlot(day, e.Start, e.End)
	}

	s.log.Info("slot conflict",
		slog.Time("date", date),
		slog.String("start", e.Start.String()),
		slog.String("end", e.End.String()),
		slog.Int("blockers", len(conflicts)),
	)

	res := Result{Conflicts: conflicts}
	if withProposals {
		dur := domain.MinutesBetween(e.Start, e.End)
		if slot, ok := domain.FindFirstFreeSlot(day, dur, domain.FullDay); ok {
			res.Suggested = &domain.Proposal{Date: date, Start: slot.Start, End: slot.End}
		}
		res.Proposals = proposalsFor(date, domain.FindAllFreeSlots(day, dur, domain.FullDay, proposalLimit, 0))
	}
	return res, nil
}

// BulkCreateLenient processes entries strictly in input order, checking each
// against the store and against entries already accepted earlier in the same
// batch. Conflicting entries are skipped with their blockers; there is no
// rollback. len(created) + len(skipped) == len(entries).
func (s *Service) BulkCreateLenient(ctx context.Context, entries []Entry) ([]domain.Appointment, []SkippedEntry, error) {
	for _, e := range entries {
		if err := validateEntry(e); err != nil {
			return nil, nil, err
		}
	}

	created := make([]domain.Appointment, 0, len(entries))
	var skipped []SkippedEntry

	for _, e := range entries {
		date := domain.Midnight(e.Date)
		blockers, err := s.batchConflicts(ctx, created, date, e.Start, e.End, uuid.Nil)
		if err != nil {
			return created, skipped, err
		}
		if len(blockers) > 0 {
			skipped = append(skipped, SkippedEntry{Entry: e, Blockers: blockers})
			continue
		}
		appt, err := s.appts.Create(ctx, domain.Appointment{
			Date:      date,
			StartTime: e.Start,
			EndTime:   e.End,
			Title:     strings.TrimSpace(e.Title),
			Notes:     e.Notes,
		})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				blockers, lerr := s.FindConflicts(ctx, date, e.Start, e.End)
				if lerr != nil {
					return created, skipped, lerr
				}
				skipped = append(skipped, SkippedEntry{Entry: e, Blockers: blockers})
				continue
			}
			return created, skipped, err
		}
		created = append(created, appt)
	}
	return created, skipped, nil
}

// BulkCreateStrict is the all-or-nothing contract: the first conflicting
// entry aborts with a ConflictError and nothing is created.
func (s *Service) BulkCreateStrict(ctx context.Context, entries []Entry) ([]domain.Appointment, error) {
	for _, e := range entries {
		if err := validateEntry(e); err != nil {
			return nil, err
		}
	}

	// Check everything, including intra-batch overlaps, before writing.
	accepted := make([]domain.Appointment, 0, len(entries))
	for _, e := range entries {
		date := domain.Midnight(e.Date)
		blockers, err := s.batchConflicts(ctx, accepted, date, e.Start, e.End, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if len(blockers) > 0 {
			return nil, &ConflictError{Entry: e, Blockers: blockers}
		}
		accepted = append(accepted, domain.Appointment{Date: date, StartTime: e.Start, EndTime: e.End})
	}

	created := make([]domain.Appointment, 0, len(entries))
	for _, e := range entries {
		appt, err := s.appts.Create(ctx, domain.Appointment{
			Date:      domain.Midnight(e.Date),
			StartTime: e.Start,
			EndTime:   e.End,
			Title:     strings.TrimSpace(e.Title),
			Notes:     e.Notes,
		})
		if err != nil {
			return created, err
		}
		created = append(created, appt)
	}
	return created, nil
}

// batchConflicts merges the stored day with same-date entries accepted
// earlier in the batch, excluding excludeID (a rescheduled appointment's own
// current instance).
func (s *Service) batchConflicts(ctx context.Context, accepted []domain.Appointment, date time.Time, start, end domain.TimeOfDay, excludeID uuid.UUID) ([]domain.Appointment, error) {
	day, err := s.appts.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	candidates := make([]domain.Appointment, 0, len(day)+len(accepted))
	for _, a := range day {
		if excludeID != uuid.Nil && a.ID == excludeID {
			continue
		}
		candidates = append(candidates, a)
	}
	for _, a := range accepted {
		if domain.SameDate(a.Date, date) {
			candidates = append(candidates, a)
		}
	}
	return domain.ConflictsForSlot(candidates, start, end), nil
}

// ScheduleRecurring expands the spec and books each occurrence leniently at
// the given daily window, skipping dates that conflict.
func (s *Service) ScheduleRecurring(ctx context.Context, spec domain.RecurrenceSpec, start, end domain.TimeOfDay, title, notes string) ([]domain.Appointment, []SkippedEntry, error) {
	dates, err := spec.Expand()
	if err != nil {
		return nil, nil, err
	}
	entries := make([]Entry, 0, len(dates))
	for _, d := range dates {
		entries = append(entries, Entry{Date: d, Start: start, End: end, Title: title, Notes: notes})
	}
	return s.BulkCreateLenient(ctx, entries)
}

// Reschedule moves an appointment while preserving its duration when only
// one endpoint is given:
//   - neither endpoint: keep original start/end, move the date only;
//   - only newStart: newEnd = newStart + original duration;
//   - only newEnd: newStart = newEnd - original duration;
//   - both but newEnd <= newStart: discard newEnd and re-anchor at newStart.
//
// The target window is conflict-checked against the target date excluding the
// appointment's own current instance; conflicts come back with proposals.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newDate *time.Time, newStart, newEnd *domain.TimeOfDay) (Result, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return Result{}, err
	}

	date, start, end := resolveRescheduleWindow(appt, newDate, newStart, newEnd)
	if err := validateWindow(start, end); err != nil {
		return Result{}, err
	}

	blockers, err := s.batchConflicts(ctx, nil, date, start, end, appt.ID)
	if err != nil {
		return Result{}, err
	}
	if len(blockers) > 0 {
		day, err := s.appts.ListByDate(ctx, date)
		if err != nil {
			return Result{}, err
		}
		dur := domain.MinutesBetween(start, end)
		return Result{
			Conflicts: blockers,
			Proposals: proposalsFor(date, domain.FindAllFreeSlots(day, dur, domain.FullDay, proposalLimit, 0)),
		}, nil
	}

	updated, err := s.appts.UpdateTime(ctx, appt.ID, date, start, end)
	if err != nil {
		return Result{}, err
	}
	return Result{Created: &updated}, nil
}

func resolveRescheduleWindow(appt domain.Appointment, newDate *time.Time, newStart, newEnd *domain.TimeOfDay) (time.Time, domain.TimeOfDay, domain.TimeOfDay) {
	date := appt.Date
	if newDate != nil {
		date = domain.Midnight(*newDate)
	}

	dur := appt.DurationMinutes()
	if dur <= 0 {
		dur = 60
	}

	switch {
	case newStart == nil && newEnd == nil:
		return date, appt.StartTime, appt.EndTime
	case newStart != nil && newEnd == nil:
		return date, *newStart, newStart.AddMinutes(dur)
	case newStart == nil && newEnd != nil:
		return date, newEnd.AddMinutes(-dur), *newEnd
	default:
		if *newEnd <= *newStart {
			// Repair, not reject: keep the original duration from newStart.
			return date, *newStart, newStart.AddMinutes(dur)
		}
		return date, *newStart, *newEnd
	}
}

// Rename updates the title only. Metadata changes never conflict-check.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, title string) (domain.Appointment, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Appointment{}, validationError("title is required")
	}
	return s.appts.UpdateTitle(ctx, id, title)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.appts.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

func (s *Service) Agenda(ctx context.Context, date time.Time) ([]domain.Appointment, error) {
	return s.appts.ListByDate(ctx, date)
}

func (s *Service) AgendaRange(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	return s.appts.ListRange(ctx, from, to)
}

// MoveDay moves every appointment from one date to another at the same
// times, skipping the ones that would conflict on the target day.
func (s *Service) MoveDay(ctx context.Context, from, to time.Time) ([]domain.Appointment, []SkippedEntry, error) {
	day, err := s.appts.ListByDate(ctx, from)
	if err != nil {
		return nil, nil, err
	}
	to = domain.Midnight(to)

	moved := make([]domain.Appointment, 0, len(day))
	var skipped []SkippedEntry
	for _, a := range day {
		// Already-moved appointments are on the target day in the store, so
		// the snapshot alone covers intra-batch conflicts.
		blockers, err := s.batchConflicts(ctx, nil, to, a.StartTime, a.EndTime, a.ID)
		if err != nil {
			return moved, skipped, err
		}
		entry := Entry{Date: to, Start: a.StartTime, End: a.EndTime, Title: a.Title, Notes: a.Notes}
		if len(blockers) > 0 {
			skipped = append(skipped, SkippedEntry{Entry: entry, Blockers: blockers})
			continue
		}
		updated, err := s.appts.UpdateTime(ctx, a.ID, to, a.StartTime, a.EndTime)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				skipped = append(skipped, SkippedEntry{Entry: entry})
				continue
			}
			return moved, skipped, err
		}
		moved = append(moved, updated)
	}
	return moved, skipped, nil
}

func proposalsFor(date time.Time, slots []domain.TimeWindow) []domain.Proposal {
	if len(slots) == 0 {
		return nil
	}
	out := make([]domain.Proposal, 0, len(slots))
	for _, w := range slots {
		out = append(out, domain.Proposal{Date: date, Start: w.Start, End: w.End})
	}
	return out
}
