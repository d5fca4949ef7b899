package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinedesk/detailer/internal/calendar"
	"github.com/shinedesk/detailer/internal/dateutil"
)

func (a *App) monthCmd() *cobra.Command {
	var selected string

	cmd := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show a month calendar with job counts",
		Long: `Show a month as a grid of full weeks.

Days outside the month are dimmed, today is highlighted, and each day shows
how many jobs are booked on it. The first day of the week comes from the
calendar.week_start setting.`,
		Example: `  detailer month
  detailer month 2025-03 --select=2025-03-14`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			month := dateutil.StartOfMonth(a.today())
			if len(args) == 1 {
				m, err := dateutil.ParseMonth(args[0])
				if err != nil {
					return err
				}
				month = m
			}

			var sel *time.Time
			if selected != "" {
				d, err := dateutil.ParseRelativeDate(selected, a.now(), false)
				if err != nil {
					return err
				}
				sel = &d
			}

			b := calendar.Builder{WeekStart: a.config.WeekStart()}
			days := b.Build(month, a.today(), sel)

			appts, err := a.repo.ListAppointmentsByDateRange(context.Background(), days[0].Date, days[len(days)-1].Date)
			if err != nil {
				return fmt.Errorf("loading appointments: %w", err)
			}

			renderMonth(a.out, month, days, calendar.WeekdayHeaders(b.WeekStart), jobsPerDay(appts))
			return nil
		},
	}

	cmd.Flags().StringVar(&selected, "select", "", "Highlight a date (YYYY-MM-DD)")

	return cmd
}
