package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kalendo/backend/internal/domain"
)

func newRemindCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "remind",
		Short: "Manage reminders",
	}
	c.AddCommand(newRemindAddCmd())
	c.AddCommand(newRemindListCmd())
	c.AddCommand(newRemindDueCmd())
	c.AddCommand(newRemindSnoozeCmd())
	c.AddCommand(newRemindDoneCmd())
	c.AddCommand(newRemindToggleCmd())
	c.AddCommand(newRemindDeleteCmd())
	return c
}

func newRemindAddCmd() *cobra.Command {
	var (
		date    string
		at      string
		title   string
		channel string
	)

	c := &cobra.Command{
		Use:   "add",
		Short: "Create a standalone reminder",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			t, err := domain.ParseTimeOfDay(at)
			if err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			rem, err := a.reminders.Create(context.Background(), d, t, title, channel)
			if err != nil {
				return err
			}
			printReminder(cmd, rem)
			return nil
		},
	}

	c.Flags().StringVar(&date, "date", "today", "reminder date")
	c.Flags().StringVar(&at, "at", "", "fire time (HH:MM)")
	c.Flags().StringVar(&title, "title", "", "reminder text")
	c.Flags().StringVar(&channel, "channel", "local", "delivery channel")
	_ = c.MarkFlagRequired("at")
	_ = c.MarkFlagRequired("title")
	return c
}

func newRemindListCmd() *cobra.Command {
	var (
		from       string
		to         string
		activeOnly bool
	)

	c := &cobra.Command{
		Use:   "list",
		Short: "List reminders, optionally bounded by date",
		RunE: func(cmd *cobra.Command, args []string) error {
			var lo, hi *time.Time
			if from != "" {
				d, err := parseDate(from)
				if err != nil {
					return err
				}
				lo = &d
			}
			if to != "" {
				d, err := parseDate(to)
				if err != nil {
					return err
				}
				hi = &d
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			rems, err := a.reminders.List(context.Background(), lo, hi, activeOnly)
			if err != nil {
				return err
			}
			for _, rem := range rems {
				printReminder(cmd, rem)
			}
			return nil
		},
	}

	c.Flags().StringVar(&from, "from", "", "earliest date")
	c.Flags().StringVar(&to, "to", "", "latest date")
	c.Flags().BoolVar(&activeOnly, "active", false, "active reminders only")
	return c
}

func newRemindDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List reminders that should have fired by now",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			rems, err := a.reminders.ListDue(context.Background(), time.Now())
			if err != nil {
				return err
			}
			if len(rems) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing due")
				return nil
			}
			for _, rem := range rems {
				printReminder(cmd, rem)
			}
			return nil
		},
	}
}

func newRemindSnoozeCmd() *cobra.Command {
	var minutes int

	c := &cobra.Command{
		Use:   "snooze <id>",
		Short: "Push a reminder forward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid reminder id: %w", err)
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			rem, err := a.reminders.Snooze(context.Background(), id, minutes)
			if err != nil {
				return err
			}
			printReminder(cmd, rem)
			return nil
		},
	}

	c.Flags().IntVar(&minutes, "minutes", 10, "how far to push the fire time")
	return c
}

func newRemindDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a reminder delivered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid reminder id: %w", err)
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			rem, err := a.reminders.MarkDelivered(context.Background(), id)
			if err != nil {
				return err
			}
			printReminder(cmd, rem)
			return nil
		},
	}
}

func newRemindToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a reminder between active and paused",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid reminder id: %w", err)
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			rem, err := a.reminders.Toggle(context.Background(), id)
			if err != nil {
				return err
			}
			printReminder(cmd, rem)
			return nil
		},
	}
}

func newRemindDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid reminder id: %w", err)
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.reminders.Delete(context.Background(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}

func printReminder(cmd *cobra.Command, r domain.Reminder) {
	state := "active"
	if !r.Active {
		state = "paused"
	}
	if r.Delivered {
		state = "delivered"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s %s  %q  via %s  [%s]\n",
		r.ID, r.Date.Format("2006-01-02"), r.Time, r.Title, r.Channel, state)
}
