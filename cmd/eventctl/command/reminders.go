package command

import (
	"context"
	"fmt"

	"eventhub/internal/app"
	"eventhub/internal/scheduler"

	"github.com/spf13/cobra"
)

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Event reminder commands",
}

// remindersRunCmd performs the same pass the API server schedules
var remindersRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Send reminders for events starting soon",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if window, _ := cmd.Flags().GetDuration("window"); window > 0 {
			cfg.ReminderWindow = window
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		a, err := app.New(ctx, cfg, log, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		jobs := scheduler.New(a.Services.Events, cfg.ReminderSchedule, cfg.ReminderWindow, log)
		sent, err := jobs.RunOnce(ctx)
		if err != nil {
			return fmt.Errorf("send reminders: %w", err)
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ %d reminder notification(s) created\n", sent)
		return nil
	},
}

func init() {
	remindersRunCmd.Flags().Duration("window", 0, "look-ahead window (defaults to REMINDER_WINDOW)")
	remindersCmd.AddCommand(remindersRunCmd)
	rootCmd.AddCommand(remindersCmd)
}
