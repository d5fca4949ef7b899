package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/ics"
)

// importReport counts what happened to each event in a calendar file.
type importReport struct {
	Imported  int
	Duplicate int
	Overlap   int
	Skipped   []ics.Skipped
	Adjusted  []string
}

func (a *App) importCmd() *cobra.Command {
	var (
		dryRun bool
		atomic bool
	)

	cmd := &cobra.Command{
		Use:   "import [calendar.ics]",
		Short: "Import bookings from an iCalendar file",
		Long: `Import timed events from an iCalendar (.ics) file as booked appointments.

All-day and recurring events are skipped. Events that were imported before
(same UID) are left alone. Events that overlap an existing booking are
reported and skipped, unless --atomic is set, in which case nothing is
imported when any event overlaps.`,
		Example: `  detailer import ~/Downloads/bookings.ics
  detailer import bookings.ics --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("calendar file does not exist: %s", path)
				}
				return fmt.Errorf("opening calendar file: %w", err)
			}
			defer func() { _ = f.Close() }()

			parsed, err := ics.Parse(f, a.now().Location())
			if err != nil {
				return err
			}

			report, err := a.importAppointments(context.Background(), parsed, dryRun, atomic)
			if err != nil {
				return err
			}

			a.printImportReport(report, path, dryRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and report without writing anything")
	cmd.Flags().BoolVar(&atomic, "atomic", false, "Import everything or nothing")

	return cmd
}

// importAppointments writes parsed appointments, skipping UIDs already on
// the calendar.
func (a *App) importAppointments(ctx context.Context, parsed ics.Import, dryRun, atomic bool) (importReport, error) {
	report := importReport{Skipped: parsed.Skipped, Adjusted: parsed.Adjusted}
	for _, s := range parsed.Skipped {
		a.logger.Info("event skipped", zap.String("uid", s.UID), zap.String("reason", string(s.Reason)))
	}
	for _, uid := range parsed.Adjusted {
		a.logger.Info("event truncated at midnight", zap.String("uid", uid))
	}

	known, err := a.knownUIDs(ctx, parsed.Appointments)
	if err != nil {
		return report, err
	}

	fresh := make([]*appointment.Appointment, 0, len(parsed.Appointments))
	for _, appt := range parsed.Appointments {
		if _, ok := known[appt.ExternalUID]; ok && appt.ExternalUID != "" {
			report.Duplicate++
			continue
		}
		fresh = append(fresh, appt)
	}

	if dryRun {
		report.Imported = len(fresh)
		return report, nil
	}

	if atomic {
		if err := a.repo.CreateAppointments(ctx, fresh); err != nil {
			return report, fmt.Errorf("importing appointments: %w", err)
		}
		report.Imported = len(fresh)
		return report, nil
	}

	for _, appt := range fresh {
		err := a.repo.CreateAppointment(ctx, appt)
		switch {
		case errors.Is(err, appointment.ErrOverlap):
			report.Overlap++
			a.logger.Warn("imported event overlaps a booking",
				zap.String("uid", appt.ExternalUID),
				zap.String("date", appt.Date.Format("2006-01-02")),
				zap.Error(err),
			)
		case err != nil:
			return report, fmt.Errorf("importing %q: %w", appt.Label(), err)
		default:
			report.Imported++
		}
	}
	return report, nil
}

// knownUIDs returns the external UIDs already stored in the date span
// covered by appts.
func (a *App) knownUIDs(ctx context.Context, appts []*appointment.Appointment) (map[string]struct{}, error) {
	known := make(map[string]struct{})
	if len(appts) == 0 {
		return known, nil
	}

	first, last := appts[0].Date, appts[0].Date
	for _, appt := range appts[1:] {
		if appt.Date.Before(first) {
			first = appt.Date
		}
		if appt.Date.After(last) {
			last = appt.Date
		}
	}

	existing, err := a.repo.ListAppointmentsByDateRange(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("listing existing appointments: %w", err)
	}
	for _, e := range existing {
		if e.ExternalUID != "" {
			known[e.ExternalUID] = struct{}{}
		}
	}
	return known, nil
}

func (a *App) printImportReport(r importReport, path string, dryRun bool) {
	verb := "Imported"
	if dryRun {
		verb = "Would import"
	}
	_, _ = fmt.Fprintf(a.out, "%s %d appointment(s) from %s\n", verb, r.Imported, filepath.Base(path))
	if r.Duplicate > 0 {
		_, _ = fmt.Fprintln(a.out, formatMuted(fmt.Sprintf("  %d already on the calendar", r.Duplicate)))
	}
	if r.Overlap > 0 {
		_, _ = fmt.Fprintln(a.out, formatWarning(fmt.Sprintf("  %d overlapped existing bookings and were skipped", r.Overlap)))
	}
	for _, s := range r.Skipped {
		name := s.Summary
		if name == "" {
			name = s.UID
		}
		_, _ = fmt.Fprintf(a.out, "  %s skipped %q: %s\n", formatWarning("!"), name, s.Reason)
	}
	if len(r.Adjusted) > 0 {
		_, _ = fmt.Fprintf(a.out, "  %d event(s) cut short at midnight: %s\n", len(r.Adjusted), strings.Join(r.Adjusted, ", "))
	}
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
