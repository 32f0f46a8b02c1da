package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newAgendaCmd() *cobra.Command {
	var (
		date string
		from string
		to   string
	)

	c := &cobra.Command{
		Use:   "agenda",
		Short: "List appointments for a day or an inclusive date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := context.Background()

			if from != "" || to != "" {
				if from == "" || to == "" {
					return fmt.Errorf("--from and --to go together")
				}
				lo, err := parseDate(from)
				if err != nil {
					return err
				}
				hi, err := parseDate(to)
				if err != nil {
					return err
				}
				appts, err := a.scheduling.AgendaRange(ctx, lo, hi)
				if err != nil {
					return err
				}
				for _, appt := range appts {
					printAppointment(cmd, appt)
				}
				return nil
			}

			d, err := parseDate(date)
			if err != nil {
				return err
			}
			appts, err := a.scheduling.Agenda(ctx, d)
			if err != nil {
				return err
			}
			if len(appts) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no appointments on %s\n", d.Format("2006-01-02"))
				return nil
			}
			for _, appt := range appts {
				printAppointment(cmd, appt)
			}

			pairs, err := a.scheduling.ConflictingPairs(ctx, d)
			if err != nil {
				return err
			}
			for _, p := range pairs {
				fmt.Fprintf(cmd.OutOrStdout(), "overlap: %q %s-%s and %q %s-%s\n",
					p[0].Title, p[0].StartTime, p[0].EndTime,
					p[1].Title, p[1].StartTime, p[1].EndTime)
			}
			return nil
		},
	}

	c.Flags().StringVar(&date, "date", "today", "day to list")
	c.Flags().StringVar(&from, "from", "", "range start (with --to)")
	c.Flags().StringVar(&to, "to", "", "range end (with --from)")

	return c
}

func newFreeCmd() *cobra.Command {
	var (
		date         string
		duration     int
		window       string
		all          bool
		limit        int
		step         int
		until        string
		skipWeekends bool
	)

	c := &cobra.Command{
		Use:   "free",
		Short: "Show free slots, or find the first slot fitting a duration",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			w, err := parseWindow(window)
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := context.Background()
			out := cmd.OutOrStdout()

			if duration <= 0 {
				slots, err := a.scheduling.FreeSlots(ctx, d)
				if err != nil {
					return err
				}
				if len(slots) == 0 {
					fmt.Fprintf(out, "%s is fully booked\n", d.Format("2006-01-02"))
					return nil
				}
				for _, s := range slots {
					fmt.Fprintf(out, "%s-%s (%d min)\n", s.Start, s.End, s.Minutes())
				}
				return nil
			}

			if until != "" {
				hi, err := parseDate(until)
				if err != nil {
					return err
				}
				p, ok, err := a.scheduling.FirstSlotInRange(ctx, d, hi, duration, w, skipWeekends)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(out, "no %d-minute slot between %s and %s\n",
						duration, d.Format("2006-01-02"), hi.Format("2006-01-02"))
					return nil
				}
				fmt.Fprintf(out, "%s %s-%s\n", p.Date.Format("2006-01-02"), p.Start, p.End)
				return nil
			}

			if all {
				props, err := a.scheduling.AllFreeSlots(ctx, d, duration, w, limit, step)
				if err != nil {
					return err
				}
				if len(props) == 0 {
					fmt.Fprintf(out, "no %d-minute slots on %s\n", duration, d.Format("2006-01-02"))
					return nil
				}
				for _, p := range props {
					fmt.Fprintf(out, "%s-%s\n", p.Start, p.End)
				}
				return nil
			}

			p, ok, err := a.scheduling.FirstFreeSlot(ctx, d, duration, w)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(out, "no %d-minute slot on %s\n", duration, d.Format("2006-01-02"))
				return nil
			}
			fmt.Fprintf(out, "%s-%s\n", p.Start, p.End)
			return nil
		},
	}

	c.Flags().StringVar(&date, "date", "today", "day to inspect")
	c.Flags().IntVar(&duration, "duration", 0, "slot length in minutes; 0 lists raw free windows")
	c.Flags().StringVar(&window, "window", "", "bounds: a preset (morning, workday, ...) or HH:MM-HH:MM")
	c.Flags().BoolVar(&all, "all", false, "enumerate candidate start times instead of the first fit")
	c.Flags().IntVar(&limit, "limit", 10, "max candidates with --all")
	c.Flags().IntVar(&step, "step", 0, "minutes between candidates with --all; 0 means the duration")
	c.Flags().StringVar(&until, "until", "", "scan forward to this date for the first fitting day")
	c.Flags().BoolVar(&skipWeekends, "skip-weekends", false, "with --until, skip Saturday and Sunday")

	return c
}
