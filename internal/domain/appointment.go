package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Date      time.Time `bun:"date,notnull,type:date"`
	StartTime TimeOfDay `bun:"start_time,notnull,type:time"`
	EndTime   TimeOfDay `bun:"end_time,notnull,type:time"`
	Title     string    `bun:"title,notnull"`
	Notes     string    `bun:"notes"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

func (a *Appointment) Window() TimeWindow {
	return TimeWindow{Start: a.StartTime, End: a.EndTime}
}

func (a *Appointment) DurationMinutes() int {
	return MinutesBetween(a.StartTime, a.EndTime)
}
