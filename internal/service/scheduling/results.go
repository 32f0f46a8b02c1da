package scheduling

import (
	"fmt"
	"time"

	"kalendo/backend/internal/domain"
)

// Entry is one requested appointment slot.
type Entry struct {
	Date  time.Time
	Start domain.TimeOfDay
	End   domain.TimeOfDay
	Title string
	Notes string
}

// Result is the outcome of a single write attempt: either Created is set, or
// Conflicts carries the blocking appointments together with actionable
// alternatives for the same day and duration.
type Result struct {
	Created   *domain.Appointment
	Conflicts []domain.Appointment
	Suggested *domain.Proposal
	Proposals []domain.Proposal
}

func (r Result) Ok() bool { return r.Created != nil }

// SkippedEntry is a batch entry that lost to existing appointments or to an
// earlier entry in the same batch.
type SkippedEntry struct {
	Entry    Entry
	Blockers []domain.Appointment
}

// ConflictError aborts a strict bulk create on the first conflicting entry.
type ConflictError struct {
	Entry    Entry
	Blockers []domain.Appointment
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("entry %q on %s %s-%s conflicts with %d appointment(s)",
		e.Entry.Title, e.Entry.Date.Format("2006-01-02"), e.Entry.Start, e.Entry.End, len(e.Blockers))
}

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}
