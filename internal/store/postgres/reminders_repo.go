package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"kalendo/backend/internal/domain"
	"kalendo/backend/internal/store"
)

type ReminderRepo struct {
	db *bun.DB
}

func NewReminderRepo(db *bun.DB) *ReminderRepo {
	return &ReminderRepo{db: db}
}

func (r *ReminderRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reminder, error) {
	var row domain.Reminder
	err := r.db.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Reminder{}, store.ErrNotFound
		}
		return domain.Reminder{}, err
	}
	return row, nil
}

func (r *ReminderRepo) List(ctx context.Context, from, to *time.Time, activeOnly bool) ([]domain.Reminder, error) {
	var rows []domain.Reminder
	q := r.db.NewSelect().Model(&rows)
	if from != nil {
		q = q.Where("date >= ?", domain.Midnight(*from))
	}
	if to != nil {
		q = q.Where("date <= ?", domain.Midnight(*to))
	}
	if activeOnly {
		q = q.Where("active")
	}
	if err := q.OrderExpr("date ASC, time ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReminderRepo) ListDue(ctx context.Context, now time.Time) ([]domain.Reminder, error) {
	var rows []domain.Reminder
	today := domain.Midnight(now)
	tod := domain.NewTimeOfDay(now.Hour(), now.Minute(), now.Second())
	err := r.db.NewSelect().
		Model(&rows).
		Where("active").
		Where("NOT delivered").
		Where("(date < ? OR (date = ? AND time <= ?))", today, today, tod).
		OrderExpr("date ASC, time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReminderRepo) Create(ctx context.Context, rem domain.Reminder) (domain.Reminder, error) {
	m := rem
	m.Date = domain.Midnight(rem.Date)
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.Reminder{}, err
	}
	return m, nil
}

func (r *ReminderRepo) Update(ctx context.Context, rem domain.Reminder) (domain.Reminder, error) {
	m := rem
	m.Date = domain.Midnight(rem.Date)
	res, err := r.db.NewUpdate().
		Model(&m).
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Reminder{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Reminder{}, err
	}
	if affected == 0 {
		return domain.Reminder{}, store.ErrNotFound
	}
	return m, nil
}

func (r *ReminderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Reminder)(nil)).
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
}
