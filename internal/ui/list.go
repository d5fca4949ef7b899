package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) listCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments in a date range",
		Long: `List all appointments within a date range.

If no dates are specified, lists today's appointments.
If only --start is specified, lists appointments for that single day.
If both --start and --end are specified, lists the range (inclusive).`,
		Example: `  detailer list
  detailer list --start=2025-01-15
  detailer list --start=2025-01-15 --end=2025-01-20`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			start, end, err := a.dateRange(startDate, endDate)
			if err != nil {
				return err
			}

			appts, err := a.repo.ListAppointmentsByDateRange(context.Background(), start, end)
			if err != nil {
				return fmt.Errorf("listing appointments: %w", err)
			}

			if len(appts) == 0 {
				_, _ = fmt.Fprintln(a.out, "No appointments found in the specified date range.")
				return nil
			}

			width := termWidth()
			var currentDate string
			for _, appt := range appts {
				date := appt.Date.Format("2006-01-02")
				if date != currentDate {
					if currentDate != "" {
						_, _ = fmt.Fprintln(a.out)
					}
					_, _ = fmt.Fprintf(a.out, "=== %s ===\n", formatHeader(appt.Date.Format("Mon 2006-01-02")))
					currentDate = date
				}
				_, _ = fmt.Fprintln(a.out, appointmentRow(appt, width))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD, defaults to start date)")

	return cmd
}
