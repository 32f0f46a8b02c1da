package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"kalendo/backend/internal/domain"
	"kalendo/backend/internal/store"
)

// The integration test runs everything on a single pooled connection so the
// session-level search_path keeps the test schema isolated.
func TestPostgresIntegration_AppointmentLifecycle(t *testing.T) {
	databaseURL := strings.TrimSpace(os.Getenv("KALENDO_TEST_DATABASE_URL"))
	if databaseURL == "" {
		t.Skip("KALENDO_TEST_DATABASE_URL not set")
	}

	db, err := Open(databaseURL, PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close(db)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	schema := "kalendo_test_" + randomHex(t, 8)
	if _, err := db.NewRaw("CREATE SCHEMA " + schema).Exec(ctx); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer ccancel()
		_, _ = db.NewRaw("DROP SCHEMA IF EXISTS " + schema + " CASCADE").Exec(cctx)
	})
	if _, err := db.NewRaw("SET search_path TO " + schema + ", public").Exec(ctx); err != nil {
		t.Fatalf("set search_path: %v", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	repo := NewAppointmentRepo(db)
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	a1, err := repo.Create(ctx, domain.Appointment{
		Date:      day,
		StartTime: domain.NewTimeOfDay(10, 0, 0),
		EndTime:   domain.NewTimeOfDay(11, 0, 0),
		Title:     "standup",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	rows, err := repo.ListByDate(ctx, day)
	if err != nil {
		t.Fatalf("ListByDate error: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != a1.ID {
		t.Fatalf("ListByDate = %v, want one row with id %s", rows, a1.ID)
	}

	// Overlapping insert must trip the exclusion constraint.
	_, err = repo.Create(ctx, domain.Appointment{
		Date:      day,
		StartTime: domain.NewTimeOfDay(10, 30, 0),
		EndTime:   domain.NewTimeOfDay(11, 30, 0),
		Title:     "clash",
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("overlap err = %v, want %v", err, store.ErrConflict)
	}

	// Back-to-back is allowed.
	a2, err := repo.Create(ctx, domain.Appointment{
		Date:      day,
		StartTime: domain.NewTimeOfDay(11, 0, 0),
		EndTime:   domain.NewTimeOfDay(12, 0, 0),
		Title:     "review",
	})
	if err != nil {
		t.Fatalf("adjacent Create error: %v", err)
	}

	// Moving a2 onto a1 must also conflict.
	_, err = repo.UpdateTime(ctx, a2.ID, day, domain.NewTimeOfDay(10, 15, 0), domain.NewTimeOfDay(10, 45, 0))
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("UpdateTime overlap err = %v, want %v", err, store.ErrConflict)
	}

	moved, err := repo.UpdateTime(ctx, a2.ID, day.AddDate(0, 0, 1), a2.StartTime, a2.EndTime)
	if err != nil {
		t.Fatalf("UpdateTime error: %v", err)
	}
	if !moved.Date.Equal(day.AddDate(0, 0, 1)) {
		t.Fatalf("moved date = %v, want %v", moved.Date, day.AddDate(0, 0, 1))
	}

	ranged, err := repo.ListRange(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListRange error: %v", err)
	}
	if len(ranged) != 2 {
		t.Fatalf("ListRange len = %d, want 2", len(ranged))
	}

	renamed, err := repo.UpdateTitle(ctx, a1.ID, "daily standup")
	if err != nil {
		t.Fatalf("UpdateTitle error: %v", err)
	}
	if renamed.Title != "daily standup" {
		t.Fatalf("title = %q, want %q", renamed.Title, "daily standup")
	}

	if err := repo.Delete(ctx, a1.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := repo.GetByID(ctx, a1.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetByID after delete err = %v, want %v", err, store.ErrNotFound)
	}

	t.Run("reminders", func(t *testing.T) {
		rems := NewReminderRepo(db)

		apptID := a2.ID
		r1, err := rems.Create(ctx, domain.Reminder{
			Date:          day,
			Time:          domain.NewTimeOfDay(9, 45, 0),
			Title:         "prep notes",
			LeadMinutes:   15,
			Channel:       "local",
			Active:        true,
			AppointmentID: &apptID,
		})
		if err != nil {
			t.Fatalf("reminder Create error: %v", err)
		}

		due, err := rems.ListDue(ctx, time.Date(2026, 9, 14, 9, 45, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("ListDue error: %v", err)
		}
		if len(due) != 1 || due[0].ID != r1.ID {
			t.Fatalf("ListDue = %v, want the created reminder", due)
		}

		r1.Delivered = true
		if _, err := rems.Update(ctx, r1); err != nil {
			t.Fatalf("reminder Update error: %v", err)
		}
		due, err = rems.ListDue(ctx, time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("ListDue error: %v", err)
		}
		if len(due) != 0 {
			t.Fatalf("delivered reminder still due: %v", due)
		}

		// Deleting the appointment cascades to its reminders.
		if err := repo.Delete(ctx, a2.ID); err != nil {
			t.Fatalf("Delete error: %v", err)
		}
		if _, err := rems.GetByID(ctx, r1.ID); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("reminder after cascade err = %v, want %v", err, store.ErrNotFound)
		}
	})
}

func randomHex(t *testing.T, bytesLen int) string {
	t.Helper()
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read error: %v", err)
	}
	return hex.EncodeToString(b)
}

type rawExecutor interface {
	NewRaw(query string, args ...any) *bun.RawQuery
}

func applyMigrations(ctx context.Context, exec rawExecutor) error {
	dir, err := migrationsDir()
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type mig struct {
		name string
		path string
	}
	migs := make([]mig, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		migs = append(migs, mig{name: e.Name(), path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(migs, func(i, j int) bool { return migs[i].name < migs[j].name })

	for _, m := range migs {
		b, err := os.ReadFile(m.path)
		if err != nil {
			return err
		}
		upSQL, err := extractGooseUp(string(b))
		if err != nil {
			return err
		}
		for _, stmt := range splitSQLStatements(upSQL) {
			if normalized, ok := normalizeExtensionStatement(stmt); ok {
				stmt = normalized
			}
			if _, err := exec.NewRaw(stmt).Exec(ctx); err != nil {
				return err
			}
		}
	}

	return nil
}

func migrationsDir() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("runtime.Caller failed")
	}
	base := filepath.Dir(file)
	return filepath.Clean(filepath.Join(base, "..", "..", "..", "migrations")), nil
}

func extractGooseUp(sql string) (string, error) {
	upMarker := "-- +goose Up"
	downMarker := "-- +goose Down"

	upIdx := strings.Index(sql, upMarker)
	if upIdx < 0 {
		return "", fmt.Errorf("missing goose up marker")
	}
	afterUp := sql[upIdx+len(upMarker):]
	afterUp = strings.TrimLeft(afterUp, "\r\n")

	downIdx := strings.Index(afterUp, downMarker)
	if downIdx < 0 {
		return strings.TrimSpace(afterUp), nil
	}
	return strings.TrimSpace(afterUp[:downIdx]), nil
}

// btree_gist lives in public; the test schema only holds the tables.
func normalizeExtensionStatement(stmt string) (string, bool) {
	s := strings.TrimSpace(stmt)
	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, "CREATE EXTENSION") {
		return "", false
	}
	if !strings.Contains(upper, "BTREE_GIST") {
		return "", false
	}
	if strings.Contains(upper, " SCHEMA ") {
		return "", false
	}
	return s + " SCHEMA public", true
}

func splitSQLStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
