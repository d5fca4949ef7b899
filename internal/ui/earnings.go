package ui

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinedesk/detailer/internal/dateutil"
	"github.com/shinedesk/detailer/internal/summary"
)

func (a *App) earningsCmd() *cobra.Command {
	var (
		date      string
		month     bool
		startDate string
		endDate   string
	)

	cmd := &cobra.Command{
		Use:   "earnings",
		Short: "Summarize jobs and earnings",
		Long: `Summarize jobs, hours and money for a week, a month or a date range.

By default shows the week containing --date (today if unset). With --month
shows the whole month instead. --start/--end select an explicit range.`,
		Example: `  detailer earnings
  detailer earnings --month
  detailer earnings --start=2025-01-01 --end=2025-03-31`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			start, end, err := a.earningsRange(date, month, startDate, endDate)
			if err != nil {
				return err
			}

			s, err := summary.BuildRange(context.Background(), a.repo, start, end)
			if err != nil {
				return err
			}

			renderSummary(a.out, s)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any date in the period (default: today)")
	cmd.Flags().BoolVar(&month, "month", false, "Summarize the month instead of the week")
	cmd.Flags().StringVar(&startDate, "start", "", "Start of an explicit range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "End of an explicit range (YYYY-MM-DD)")
	cmd.MarkFlagsMutuallyExclusive("month", "start")
	cmd.MarkFlagsMutuallyExclusive("date", "start")

	return cmd
}

func (a *App) earningsRange(date string, month bool, startDate, endDate string) (time.Time, time.Time, error) {
	if startDate != "" {
		return a.dateRange(startDate, endDate)
	}

	anchor, err := dateutil.ParseRelativeDate(date, a.now(), false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if month {
		return dateutil.StartOfMonth(anchor), dateutil.EndOfMonth(anchor), nil
	}
	start, end := dateutil.WeekRange(anchor, a.config.WeekStart())
	return start, end, nil
}
