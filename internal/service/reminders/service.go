// Package reminders manages scheduled nudges linked to appointments.
// Delivery itself happens elsewhere; this service stores, queries, and
// flips reminder state.
package reminders

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"kalendo/backend/internal/domain"
	"kalendo/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

type Service struct {
	store store.ReminderStore
	log   *slog.Logger
}

func NewService(rs store.ReminderStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store: rs,
		log:   log.With(slog.String("component", "reminders")),
	}
}

// CreateForAppointment schedules a reminder leadMinutes before the
// appointment's start. Subtracting the lead can cross midnight backwards, so
// the fire instant is computed on the full timestamp and split back into
// date and time.
func (s *Service) CreateForAppointment(ctx context.Context, appt domain.Appointment, leadMinutes int, channel string) (domain.Reminder, error) {
	if leadMinutes < 0 {
		return domain.Reminder{}, &ValidationError{msg: "lead_minutes must not be negative"}
	}
	if channel == "" {
		channel = "local"
	}

	fire := domain.At(appt.Date, appt.StartTime).Add(-time.Duration(leadMinutes) * time.Minute)
	rem := domain.Reminder{
		Date:          domain.Midnight(fire),
		Time:          domain.NewTimeOfDay(fire.Hour(), fire.Minute(), fire.Second()),
		Title:         appt.Title,
		LeadMinutes:   leadMinutes,
		Channel:       channel,
		Active:        true,
		AppointmentID: &appt.ID,
	}
	created, err := s.store.Create(ctx, rem)
	if err != nil {
		return domain.Reminder{}, err
	}
	s.log.Info("reminder created",
		slog.String("id", created.ID.String()),
		slog.Time("date", created.Date),
		slog.String("time", created.Time.String()),
	)
	return created, nil
}

// Create schedules a standalone reminder at an explicit date and time.
func (s *Service) Create(ctx context.Context, date time.Time, at domain.TimeOfDay, title, channel string) (domain.Reminder, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Reminder{}, &ValidationError{msg: "title is required"}
	}
	if channel == "" {
		channel = "local"
	}
	return s.store.Create(ctx, domain.Reminder{
		Date:    domain.Midnight(date),
		Time:    at,
		Title:   title,
		Channel: channel,
		Active:  true,
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Reminder, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, from, to *time.Time, activeOnly bool) ([]domain.Reminder, error) {
	return s.store.List(ctx, from, to, activeOnly)
}

func (s *Service) ListDue(ctx context.Context, now time.Time) ([]domain.Reminder, error) {
	return s.store.ListDue(ctx, now)
}

// Snooze pushes the fire time forward by the given minutes and re-arms the
// reminder if it was already delivered.
func (s *Service) Snooze(ctx context.Context, id uuid.UUID, minutes int) (domain.Reminder, error) {
	if minutes <= 0 {
		return domain.Reminder{}, &ValidationError{msg: "snooze minutes must be positive"}
	}
	rem, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Reminder{}, err
	}
	fire := domain.At(rem.Date, rem.Time).Add(time.Duration(minutes) * time.Minute)
	rem.Date = domain.Midnight(fire)
	rem.Time = domain.NewTimeOfDay(fire.Hour(), fire.Minute(), fire.Second())
	rem.Delivered = false
	rem.Active = true
	return s.store.Update(ctx, rem)
}

func (s *Service) MarkDelivered(ctx context.Context, id uuid.UUID) (domain.Reminder, error) {
	rem, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Reminder{}, err
	}
	rem.Delivered = true
	return s.store.Update(ctx, rem)
}

// Toggle flips the active flag and returns the new state.
func (s *Service) Toggle(ctx context.Context, id uuid.UUID) (domain.Reminder, error) {
	rem, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Reminder{}, err
	}
	rem.Active = !rem.Active
	return s.store.Update(ctx, rem)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}
