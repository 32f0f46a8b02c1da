package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"kalendo/backend/internal/domain"
	"kalendo/backend/internal/store"
)

// calendarLockKey scopes the advisory lock. The system manages a single
// calendar, so every write serializes on the same key.
const calendarLockKey = "kalendo.calendar"

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

// inCalendarTx runs fn inside a transaction holding the calendar advisory
// lock, making the surrounding check-then-write sequence atomic across
// callers that go through this repo.
func (r *AppointmentRepo) inCalendarTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", calendarLockKey).Exec(ctx); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var row domain.Appointment
	err := r.db.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return row, nil
}

func (r *AppointmentRepo) ListByDate(ctx context.Context, date time.Time) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("date = ?", domain.Midnight(date)).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ListRange(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("date >= ?", domain.Midnight(from)).
		Where("date <= ?", domain.Midnight(to)).
		OrderExpr("date ASC, start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	m.Date = domain.Midnight(appt.Date)
	err := r.inCalendarTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&m).Exec(ctx)
		return mapWriteError(err)
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return m, nil
}

func (r *AppointmentRepo) UpdateTime(ctx context.Context, id uuid.UUID, date time.Time, startTime, endTime domain.TimeOfDay) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.inCalendarTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*domain.Appointment)(nil)).
			Set("date = ?", domain.Midnight(date)).
			Set("start_time = ?", startTime).
			Set("end_time = ?", endTime).
			Set("updated_at = ?", time.Now().UTC()).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return mapWriteError(err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return store.ErrNotFound
		}
		return tx.NewSelect().Model(&out).Where("id = ?", id).Limit(1).Scan(ctx)
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *AppointmentRepo) UpdateTitle(ctx context.Context, id uuid.UUID, title string) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.inCalendarTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*domain.Appointment)(nil)).
			Set("title = ?", title).
			Set("updated_at = ?", time.Now().UTC()).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return store.ErrNotFound
		}
		return tx.NewSelect().Model(&out).Where("id = ?", id).Limit(1).Scan(ctx)
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.inCalendarTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*domain.Appointment)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

// mapWriteError translates the appointments_no_overlap exclusion-constraint
// violation into the store's conflict sentinel.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23P01" && pgErr.ConstraintName == "appointments_no_overlap" {
			return store.ErrConflict
		}
	}
	return err
}
