package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/dateutil"
	"github.com/shinedesk/detailer/internal/schedule"
)

func (a *App) dayCmd() *cobra.Command {
	var (
		strict  bool
		copyOut bool
	)

	cmd := &cobra.Command{
		Use:   "day [date]",
		Short: "Show a day hour by hour",
		Long: `Lay out one day as 24 hourly slots.

Each appointment occupies the hour it starts in plus one continuation slot
for every further hour it runs. Appointments that cannot be placed, such as
two jobs starting in the same hour, are listed under the day. Cancelled
appointments are not shown.`,
		Example: `  detailer day
  detailer day tomorrow
  detailer day 2025-01-15 --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			date, err := dateutil.ParseRelativeDate(input, a.now(), false)
			if err != nil {
				return err
			}

			res, err := a.allocateDay(context.Background(), date)
			if err != nil {
				return err
			}

			start, end := a.config.BusinessHours()
			renderDay(a.out, res, dayView{BusinessStart: start, BusinessEnd: end, Width: termWidth()})
			renderAnomalies(a.out, res.Anomalies)

			if copyOut {
				if err := clipboard.WriteAll(plainDay(res)); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				_, _ = fmt.Fprintln(a.out, formatMuted("\nCopied to clipboard."))
			}

			if strict && len(res.Anomalies) > 0 {
				return fmt.Errorf("%d appointment(s) could not be placed on %s", len(res.Anomalies), date.Format("2006-01-02"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when any appointment cannot be placed")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the day's bookings to the clipboard")

	return cmd
}

// allocateDay loads the non-cancelled appointments on date and lays them
// out into hourly slots.
func (a *App) allocateDay(ctx context.Context, date time.Time) (schedule.Result, error) {
	appts, err := a.repo.ListAppointmentsByDateRange(ctx, date, date)
	if err != nil {
		return schedule.Result{}, fmt.Errorf("loading appointments: %w", err)
	}

	res := schedule.Allocate(date, blocking(appts), schedule.Options{Labels: a.config.LabelStyle()})
	for _, an := range res.Anomalies {
		a.logger.Warn("appointment not placed",
			zap.String("date", date.Format("2006-01-02")),
			zap.Stringer("kind", an.Kind),
			zap.Int("hour", an.Hour),
			zap.Int64s("ids", an.AppointmentIDs),
			zap.String("detail", an.Detail),
		)
	}
	return res, nil
}

// blocking returns copies of the appointments that take up time.
func blocking(appts []*appointment.Appointment) []appointment.Appointment {
	out := make([]appointment.Appointment, 0, len(appts))
	for _, appt := range appts {
		if appt.BlocksTime() {
			out = append(out, *appt)
		}
	}
	return out
}
