package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kalendo/backend/internal/domain"
	"kalendo/backend/internal/service/scheduling"
)

func newFindCmd() *cobra.Command {
	var sel selectorFlags

	c := &cobra.Command{
		Use:   "find",
		Short: "Resolve a selector and list the matching appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sel.selector()
			if err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			matches, err := a.scheduling.Resolve(context.Background(), s)
			if err != nil {
				return err
			}
			for _, m := range matches {
				printAppointment(cmd, m)
			}
			return nil
		},
	}
	sel.register(c)
	return c
}

func newRescheduleCmd() *cobra.Command {
	var (
		sel      selectorFlags
		toDate   string
		newStart string
		newEnd   string
	)

	c := &cobra.Command{
		Use:   "reschedule",
		Short: "Move an appointment, preserving its duration when only one endpoint is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sel.selector()
			if err != nil {
				return err
			}
			if toDate == "" && newStart == "" && newEnd == "" {
				return fmt.Errorf("nothing to change: give --to-date, --new-start, or --new-end")
			}

			var datePtr *time.Time
			if toDate != "" {
				d, err := parseDate(toDate)
				if err != nil {
					return err
				}
				datePtr = &d
			}
			startPtr, err := timeFlag(newStart)
			if err != nil {
				return err
			}
			endPtr, err := timeFlag(newEnd)
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.scheduling.RescheduleBySelector(context.Background(), s, datePtr, startPtr, endPtr)
			if err != nil {
				return describeResolveError(err)
			}
			if !res.Ok() {
				printConflicts(cmd, res)
				return fmt.Errorf("target slot is not free")
			}
			fmt.Fprint(cmd.OutOrStdout(), "rescheduled: ")
			printAppointment(cmd, *res.Created)
			return nil
		},
	}

	sel.register(c)
	c.Flags().StringVar(&toDate, "to-date", "", "target date")
	c.Flags().StringVar(&newStart, "new-start", "", "target start time")
	c.Flags().StringVar(&newEnd, "new-end", "", "target end time")
	return c
}

func newRenameCmd() *cobra.Command {
	var (
		sel   selectorFlags
		title string
	)

	c := &cobra.Command{
		Use:   "rename",
		Short: "Change an appointment's title",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sel.selector()
			if err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			appt, err := a.scheduling.RenameBySelector(context.Background(), s, title)
			if err != nil {
				return describeResolveError(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), "renamed: ")
			printAppointment(cmd, appt)
			return nil
		},
	}

	sel.register(c)
	c.Flags().StringVar(&title, "title", "", "new title")
	_ = c.MarkFlagRequired("title")
	return c
}

func newDeleteCmd() *cobra.Command {
	var sel selectorFlags

	c := &cobra.Command{
		Use:   "delete",
		Short: "Delete one appointment; ambiguous selectors always fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sel.selector()
			if err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			appt, err := a.scheduling.DeleteBySelector(context.Background(), s)
			if err != nil {
				return describeResolveError(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), "deleted: ")
			printAppointment(cmd, appt)
			return nil
		},
	}
	sel.register(c)
	return c
}

func newMoveDayCmd() *cobra.Command {
	var (
		from string
		to   string
	)

	c := &cobra.Command{
		Use:   "move-day",
		Short: "Move a whole day's appointments to another date at the same times",
		RunE: func(cmd *cobra.Command, args []string) error {
			lo, err := parseDate(from)
			if err != nil {
				return err
			}
			hi, err := parseDate(to)
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			moved, skipped, err := a.scheduling.MoveDay(context.Background(), lo, hi)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range moved {
				fmt.Fprint(out, "moved: ")
				printAppointment(cmd, m)
			}
			for _, sk := range skipped {
				fmt.Fprintf(out, "skipped %q %s-%s: target slot taken\n",
					sk.Entry.Title, sk.Entry.Start, sk.Entry.End)
			}
			return nil
		},
	}

	c.Flags().StringVar(&from, "from", "", "source date")
	c.Flags().StringVar(&to, "to", "", "target date")
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("to")
	return c
}

func timeFlag(s string) (*domain.TimeOfDay, error) {
	if s == "" {
		return nil, nil
	}
	t, err := domain.ParseTimeOfDay(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func describeResolveError(err error) error {
	if errors.Is(err, scheduling.ErrAmbiguousSelector) {
		return fmt.Errorf("%w; narrow it with --date, --start, or --id", err)
	}
	return err
}
