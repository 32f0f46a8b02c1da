package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Reminder is a scheduled nudge, optionally linked to an appointment.
// Delivery is an external concern; this core only stores and queries them.
type Reminder struct {
	bun.BaseModel `bun:"table:reminders"`

	ID            uuid.UUID  `bun:"id,pk,type:uuid"`
	Date          time.Time  `bun:"date,notnull,type:date"`
	Time          TimeOfDay  `bun:"time,notnull,type:time"`
	Title         string     `bun:"title,notnull"`
	LeadMinutes   int        `bun:"lead_minutes,notnull"`
	Channel       string     `bun:"channel,notnull"`
	Active        bool       `bun:"active,notnull"`
	Delivered     bool       `bun:"delivered,notnull"`
	AppointmentID *uuid.UUID `bun:"appointment_id,type:uuid"`
	CreatedAt     time.Time  `bun:"created_at,notnull"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull"`
}

func (r *Reminder) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if r.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			r.ID = id
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		if r.UpdatedAt.IsZero() {
			r.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		r.UpdatedAt = now
	}
	return nil
}

// Due reports whether the reminder should fire at the given instant.
func (r *Reminder) Due(now time.Time) bool {
	if !r.Active || r.Delivered {
		return false
	}
	return !At(r.Date, r.Time).After(now)
}
