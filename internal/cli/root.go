// Package cli wires the calendar services behind a cobra command tree. It is
// also the normalization boundary: loose date words, window presets, and
// selector aliases become typed values here before any service sees them.
package cli

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"kalendo/backend/internal/config"
	"kalendo/backend/internal/domain"
	"kalendo/backend/internal/service/reminders"
	"kalendo/backend/internal/service/scheduling"
	"kalendo/backend/internal/store/postgres"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kalendo",
		Short:         "Single-calendar scheduler with conflict detection, free-slot search, and recurring bookings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newBookCmd())
	root.AddCommand(newAgendaCmd())
	root.AddCommand(newFreeCmd())
	root.AddCommand(newFindCmd())
	root.AddCommand(newRescheduleCmd())
	root.AddCommand(newRenameCmd())
	root.AddCommand(newDeleteCmd())
	root.AddCommand(newMoveDayCmd())
	root.AddCommand(newRecurCmd())
	root.AddCommand(newRemindCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kalendo %s (%s) built %s\n", Version, CommitSHA, BuildDate)
		},
	}
}

// app bundles everything a command needs after the shared setup.
type app struct {
	cfg        config.Config
	log        *slog.Logger
	db         *bun.DB
	scheduling *scheduling.Service
	reminders  *reminders.Service
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	if err := postgres.Close(a.db); err != nil {
		a.log.Warn("database close failed", slog.Any("err", err))
	}
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "kalendo"),
	)
	slog.SetDefault(log)

	log.Debug("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return nil, err
	}

	return &app{
		cfg:        cfg,
		log:        log,
		db:         db,
		scheduling: scheduling.NewService(postgres.NewAppointmentRepo(db), log),
		reminders:  reminders.NewService(postgres.NewReminderRepo(db), log),
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}

// parseDate accepts YYYY-MM-DD plus the words "today" and "tomorrow".
func parseDate(s string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return domain.Midnight(time.Now()), nil
	case "tomorrow":
		return domain.Midnight(time.Now()).AddDate(0, 0, 1), nil
	}
	d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD, today, or tomorrow)", s)
	}
	return d.UTC(), nil
}

// parseWindow accepts a preset name ("morning", "workday", ...) or an
// explicit "HH:MM-HH:MM" range. Empty means the whole day.
func parseWindow(s string) (domain.TimeWindow, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.FullDay, nil
	}
	if w, ok := domain.WindowPreset(s); ok {
		return w, nil
	}
	lo, hi, found := strings.Cut(s, "-")
	if !found {
		return domain.TimeWindow{}, fmt.Errorf("invalid window %q (want a preset or HH:MM-HH:MM)", s)
	}
	start, err := domain.ParseTimeOfDay(lo)
	if err != nil {
		return domain.TimeWindow{}, err
	}
	end, err := domain.ParseTimeOfDay(hi)
	if err != nil {
		return domain.TimeWindow{}, err
	}
	w := domain.TimeWindow{Start: start, End: end}
	if !w.IsValid() {
		return domain.TimeWindow{}, fmt.Errorf("invalid window %q: end must be after start", s)
	}
	return w, nil
}

func printAppointment(cmd *cobra.Command, a domain.Appointment) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s-%s  %s\n",
		a.ID, a.Date.Format("2006-01-02"), a.StartTime, a.EndTime, a.Title)
}

func printConflicts(cmd *cobra.Command, res scheduling.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "conflict with %d appointment(s):\n", len(res.Conflicts))
	for _, c := range res.Conflicts {
		printAppointment(cmd, c)
	}
	if res.Suggested != nil {
		fmt.Fprintf(out, "suggested: %s %s-%s\n",
			res.Suggested.Date.Format("2006-01-02"), res.Suggested.Start, res.Suggested.End)
	}
	for _, p := range res.Proposals {
		fmt.Fprintf(out, "alternative: %s %s-%s\n", p.Date.Format("2006-01-02"), p.Start, p.End)
	}
}
