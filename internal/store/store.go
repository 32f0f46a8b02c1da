package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"kalendo/backend/internal/domain"
)

// AppointmentStore is the persistence collaborator the scheduling core reads
// snapshots from and requests mutations through. Implementations must make
// Create and UpdateTime atomic "write iff still non-overlapping" operations;
// re-checking in application code alone is not enough across processes.
type AppointmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	// ListByDate returns the day's appointments sorted by start time.
	ListByDate(ctx context.Context, date time.Time) ([]domain.Appointment, error)
	// ListRange returns appointments with from <= date <= to, sorted by
	// (date, start time).
	ListRange(ctx context.Context, from, to time.Time) ([]domain.Appointment, error)
	Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	UpdateTime(ctx context.Context, id uuid.UUID, date time.Time, start, end domain.TimeOfDay) (domain.Appointment, error)
	UpdateTitle(ctx context.Context, id uuid.UUID, title string) (domain.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReminderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Reminder, error)
	List(ctx context.Context, from, to *time.Time, activeOnly bool) ([]domain.Reminder, error)
	// ListDue returns active, undelivered reminders whose fire time is at or
	// before now, sorted by (date, time).
	ListDue(ctx context.Context, now time.Time) ([]domain.Reminder, error)
	Create(ctx context.Context, r domain.Reminder) (domain.Reminder, error)
	Update(ctx context.Context, r domain.Reminder) (domain.Reminder, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
