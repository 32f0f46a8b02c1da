package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"kalendo/backend/internal/domain"
	"kalendo/backend/internal/service/scheduling"
)

func newBookCmd() *cobra.Command {
	var (
		date     string
		start    string
		end      string
		duration int
		title    string
		notes    string
		ifFree   bool
		remind   int
	)

	c := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment; on conflict, print blockers and alternative slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(date)
			if err != nil {
				return err
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

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := context.Background()

			entry := scheduling.Entry{Date: d, Start: st, End: en, Title: title, Notes: notes}
			var res scheduling.Result
			if ifFree {
				res, err = a.scheduling.CreateIfFree(ctx, entry)
			} else {
				res, err = a.scheduling.CreateWithFallback(ctx, entry)
			}
			if err != nil {
				return err
			}
			if !res.Ok() {
				printConflicts(cmd, res)
				return fmt.Errorf("slot is not free")
			}

			fmt.Fprint(cmd.OutOrStdout(), "booked: ")
			printAppointment(cmd, *res.Created)

			if remind > 0 {
				rem, err := a.reminders.CreateForAppointment(ctx, *res.Created, remind, "local")
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reminder at %s %s (%d min before)\n",
					rem.Date.Format("2006-01-02"), rem.Time, remind)
			}
			return nil
		},
	}

	c.Flags().StringVar(&date, "date", "today", "appointment date (YYYY-MM-DD, today, tomorrow)")
	c.Flags().StringVar(&start, "start", "", "start time (HH:MM or 2pm)")
	c.Flags().StringVar(&end, "end", "", "end time; omit to use --duration")
	c.Flags().IntVar(&duration, "duration", 60, "duration in minutes when --end is omitted")
	c.Flags().StringVar(&title, "title", "", "appointment title")
	c.Flags().StringVar(&notes, "notes", "", "free-form notes")
	c.Flags().BoolVar(&ifFree, "if-free", false, "fail without suggestions when the slot is taken")
	c.Flags().IntVar(&remind, "remind", 0, "also create a reminder this many minutes before start")
	_ = c.MarkFlagRequired("start")
	_ = c.MarkFlagRequired("title")

	return c
}
