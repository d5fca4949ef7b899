package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/dateutil"
)

// startNext asks add to pick the first free opening.
const startNext = "next"

// ErrInvalidPriceFormat is returned for prices that are not dollars and cents.
var ErrInvalidPriceFormat = errors.New("price must look like 125 or 125.50")

func (a *App) addCmd() *cobra.Command {
	var (
		date     string
		start    string
		duration int
		service  string
		vehicle  string
		address  string
		notes    string
		price    string
	)

	cmd := &cobra.Command{
		Use:   "add [customer]",
		Short: "Book a new appointment",
		Long: `Book a new appointment for a customer.

The date accepts YYYY-MM-DD or words such as today, tomorrow, friday or
next-monday. --start=next books the first free opening on or after
that date.`,
		Example: `  detailer add "Jane Doe" --start=09:00 --duration=90 --service="Full detail" --price=149.99
  detailer add "Sam Lee" --date=friday --start=13:30 --duration=45
  detailer add "Pat Kim" --start=next --duration=120`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			cents, err := parsePrice(price)
			if err != nil {
				return err
			}

			var day time.Time
			if start == startNext {
				from, err := a.searchStart(date)
				if err != nil {
					return err
				}
				opening, err := a.findOpening(context.Background(), from, duration, defaultHorizonDays)
				if err != nil {
					return err
				}
				day, start = opening.Date, opening.Start
			} else {
				day, err = dateutil.ParseRelativeDate(date, a.now(), false)
				if err != nil {
					return err
				}
			}

			appt, err := appointment.New(args[0], service, day.Format("2006-01-02"), start, duration, cents)
			if err != nil {
				return err
			}
			appt.Vehicle = strings.TrimSpace(vehicle)
			appt.Address = strings.TrimSpace(address)
			appt.Notes = strings.TrimSpace(notes)

			if err := a.repo.CreateAppointment(context.Background(), appt); err != nil {
				return fmt.Errorf("booking appointment: %w", err)
			}
			a.logger.Info("appointment booked",
				zap.Int64("id", appt.ID),
				zap.String("date", appt.Date.Format("2006-01-02")),
				zap.String("start", appt.StartTime),
				zap.Int("duration_minutes", appt.DurationMinutes),
			)

			_, _ = fmt.Fprintf(a.out, "Booked #%d: %s %s %s-%s\n",
				appt.ID,
				appt.Label(),
				appt.Date.Format("2006-01-02"),
				appt.StartTime,
				appt.EndTime(),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD or today/tomorrow/<weekday>, default: today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM or \"next\", required)")
	cmd.Flags().IntVar(&duration, "duration", 60, "Duration in minutes")
	cmd.Flags().StringVar(&service, "service", "", "Service, e.g. \"Full detail\"")
	cmd.Flags().StringVar(&vehicle, "vehicle", "", "Vehicle description")
	cmd.Flags().StringVar(&address, "address", "", "Where the job takes place")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&price, "price", "", "Price in dollars, e.g. 149.99")

	_ = cmd.MarkFlagRequired("start")

	return cmd
}

// parsePrice converts "149.99" or "$1,250" to cents. Empty means zero.
func parsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, nil
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || dollars < 0 {
		return 0, ErrInvalidPriceFormat
	}

	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, ErrInvalidPriceFormat
		}
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 {
			return 0, ErrInvalidPriceFormat
		}
	}
	return dollars*100 + cents, nil
}
