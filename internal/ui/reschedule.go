package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinedesk/detailer/internal/dateutil"
)

func (a *App) rescheduleCmd() *cobra.Command {
	var (
		date  string
		start string
	)

	cmd := &cobra.Command{
		Use:   "reschedule [appointment-id]",
		Short: "Move an appointment to another date or time",
		Long: `Move an appointment, keeping its duration.

Without --date the appointment stays on its current day. Without --start it
keeps its current start time.`,
		Example: `  detailer reschedule 42 --date=tomorrow
  detailer reschedule 42 --start=14:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if date == "" && start == "" {
				return fmt.Errorf("nothing to change: pass --date and/or --start")
			}

			ctx := context.Background()
			current, err := a.repo.GetAppointment(ctx, id)
			if err != nil {
				return err
			}

			newDate := current.Date
			if date != "" {
				newDate, err = dateutil.ParseRelativeDate(date, a.now(), false)
				if err != nil {
					return err
				}
			}
			newStart := current.StartTime
			if start != "" {
				newStart = start
			}

			if err := a.repo.Reschedule(ctx, id, newDate, newStart); err != nil {
				return fmt.Errorf("rescheduling appointment: %w", err)
			}
			a.logger.Info("appointment rescheduled",
				zap.Int64("id", id),
				zap.String("from", current.Date.Format("2006-01-02")+" "+current.StartTime),
				zap.String("to", newDate.Format("2006-01-02")+" "+newStart),
			)

			_, _ = fmt.Fprintf(a.out, "Moved #%d to %s %s\n", id, newDate.Format("2006-01-02"), newStart)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "New date (YYYY-MM-DD or today/tomorrow/<weekday>)")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM)")

	return cmd
}
