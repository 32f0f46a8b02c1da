package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kalendo/backend/internal/domain"
)

func newRecurCmd() *cobra.Command {
	var (
		pattern   string
		interval  int
		weekdays  string
		startDate string
		endDate   string
		count     int
		start     string
		end       string
		duration  int
		title     string
		notes     string
		commit    bool
	)

	c := &cobra.Command{
		Use:   "recur",
		Short: "Expand a recurrence and optionally book the occurrences",
		Long: `Expands a DAILY, WEEKDAYS, or WEEKLY recurrence into concrete dates.
Without --commit it only previews the dates; with --commit each occurrence is
booked leniently, skipping dates where the slot is taken.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := buildRecurrenceSpec(pattern, interval, weekdays, startDate, endDate, count)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !commit {
				dates, err := spec.Expand()
				if err != nil {
					return err
				}
				for _, d := range dates {
					fmt.Fprintln(out, d.Format("2006-01-02"))
				}
				fmt.Fprintf(out, "%d occurrence(s); re-run with --commit to book\n", len(dates))
				return nil
			}

			st, err := domain.ParseTimeOfDay(start)
			if err != nil {
				return err
			}
			var en domain.TimeOfDay
			if end != "" {
				if en, err = domain.ParseTimeOfDay(end); err != nil {
					return err
				}
			} else {
				if duration <= 0 {
					return fmt.Errorf("need --end or a positive --duration")
				}
				en = st.AddMinutes(duration)
			}
			if title == "" {
				return fmt.Errorf("--title is required with --commit")
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			created, skipped, err := a.scheduling.ScheduleRecurring(context.Background(), spec, st, en, title, notes)
			if err != nil {
				return err
			}
			for _, appt := range created {
				fmt.Fprint(out, "booked: ")
				printAppointment(cmd, appt)
			}
			for _, sk := range skipped {
				fmt.Fprintf(out, "skipped %s %s-%s: %d blocker(s)\n",
					sk.Entry.Date.Format("2006-01-02"), sk.Entry.Start, sk.Entry.End, len(sk.Blockers))
			}
			fmt.Fprintf(out, "booked %d, skipped %d\n", len(created), len(skipped))
			return nil
		},
	}

	c.Flags().StringVar(&pattern, "pattern", "WEEKLY", "DAILY, WEEKDAYS, or WEEKLY")
	c.Flags().IntVar(&interval, "interval", 1, "stride between occurrences")
	c.Flags().StringVar(&weekdays, "weekdays", "", "comma list for WEEKLY: mon,tue,... or 0-6 (Monday=0)")
	c.Flags().StringVar(&startDate, "start-date", "today", "first date considered")
	c.Flags().StringVar(&endDate, "end-date", "", "last date considered (inclusive); mutually exclusive with --count")
	c.Flags().IntVar(&count, "count", 0, "number of occurrences; mutually exclusive with --end-date")
	c.Flags().StringVar(&start, "start", "", "slot start time (with --commit)")
	c.Flags().StringVar(&end, "end", "", "slot end time; omit to use --duration")
	c.Flags().IntVar(&duration, "duration", 60, "slot length in minutes when --end is omitted")
	c.Flags().StringVar(&title, "title", "", "appointment title (with --commit)")
	c.Flags().StringVar(&notes, "notes", "", "free-form notes")
	c.Flags().BoolVar(&commit, "commit", false, "book the occurrences instead of previewing")

	return c
}

func buildRecurrenceSpec(pattern string, interval int, weekdays, startDate, endDate string, count int) (domain.RecurrenceSpec, error) {
	sd, err := parseDate(startDate)
	if err != nil {
		return domain.RecurrenceSpec{}, err
	}

	spec := domain.RecurrenceSpec{
		Pattern:   domain.RecurrencePattern(strings.ToUpper(strings.TrimSpace(pattern))),
		Interval:  interval,
		StartDate: sd,
	}
	if weekdays != "" {
		days, err := parseWeekdays(weekdays)
		if err != nil {
			return domain.RecurrenceSpec{}, err
		}
		spec.ByWeekdays = days
	}
	if endDate != "" {
		ed, err := parseDate(endDate)
		if err != nil {
			return domain.RecurrenceSpec{}, err
		}
		spec.EndDate = &ed
	}
	if count > 0 {
		spec.Count = &count
	}
	return spec, nil
}

var weekdayNames = map[string]int{
	"mon": 0, "monday": 0,
	"tue": 1, "tues": 1, "tuesday": 1,
	"wed": 2, "wednesday": 2,
	"thu": 3, "thur": 3, "thurs": 3, "thursday": 3,
	"fri": 4, "friday": 4,
	"sat": 5, "saturday": 5,
	"sun": 6, "sunday": 6,
}

// parseWeekdays accepts names and Monday=0 ordinals interchangeably.
func parseWeekdays(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if n, ok := weekdayNames[part]; ok {
			out = append(out, n)
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no weekdays in %q", s)
	}
	return out, nil
}
