package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinedesk/detailer/internal/dateutil"
	"github.com/shinedesk/detailer/internal/scheduler"
)

// defaultHorizonDays is how far ahead openings are searched.
const defaultHorizonDays = 28

func (a *App) nextCmd() *cobra.Command {
	var (
		from     string
		duration int
		days     int
	)

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Find the next free opening for a job",
		Long: `Find the earliest start time, on a quarter hour inside working hours,
where a job of the given length fits between existing bookings.`,
		Example: `  detailer next --duration=120
  detailer next --from=monday --duration=45`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			start, err := a.searchStart(from)
			if err != nil {
				return err
			}

			opening, err := a.findOpening(context.Background(), start, duration, days)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.out, "Next opening: %s %s-%s\n",
				formatHeader(opening.Date.Format("Mon 2006-01-02")), opening.Start, opening.End)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Search from this date (default: now)")
	cmd.Flags().IntVar(&duration, "duration", 60, "Job length in minutes")
	cmd.Flags().IntVar(&days, "days", defaultHorizonDays, "How many days ahead to look")

	return cmd
}

// searchStart resolves where an opening search begins: now for today or an
// empty date, otherwise midnight of the given day.
func (a *App) searchStart(date string) (time.Time, error) {
	now := a.now()
	if date == "" {
		return now, nil
	}
	day, err := dateutil.ParseRelativeDate(date, now, false)
	if err != nil {
		return time.Time{}, err
	}
	if !day.After(dateutil.TruncateToDay(now)) {
		return now, nil
	}
	return day, nil
}

// findOpening searches the working calendar for a free start time.
func (a *App) findOpening(ctx context.Context, from time.Time, duration, days int) (scheduler.Opening, error) {
	days = max(days, 1)
	first := dateutil.TruncateToDay(from)
	last := first.AddDate(0, 0, days-1)

	booked, err := a.repo.ListAppointmentsByDateRange(ctx, first, last)
	if err != nil {
		return scheduler.Opening{}, fmt.Errorf("loading bookings: %w", err)
	}

	s := scheduler.New(a.config.Workdays(), a.config.Schedule.DayStart, a.config.Schedule.DayEnd)
	opening, err := s.NextOpening(from, duration, booked, days)
	if err != nil {
		return scheduler.Opening{}, fmt.Errorf("finding %d minutes within %d day(s): %w", duration, days, err)
	}
	a.logger.Debug("found opening",
		zap.Time("from", from),
		zap.Int("duration_minutes", duration),
		zap.String("date", opening.Date.Format("2006-01-02")),
		zap.String("start", opening.Start),
	)
	return opening, nil
}
