package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinedesk/detailer/internal/appointment"
)

func (a *App) cancelCmd() *cobra.Command {
	return a.statusCmd("cancel", "Cancel an appointment", "Cancelled", appointment.StatusCancelled)
}

func (a *App) completeCmd() *cobra.Command {
	return a.statusCmd("complete", "Mark an appointment as done", "Completed", appointment.StatusCompleted)
}

func (a *App) statusCmd(use, short, verb string, status appointment.Status) *cobra.Command {
	return &cobra.Command{
		Use:     use + " [appointment-id]",
		Short:   short,
		Example: fmt.Sprintf("  detailer %s 42", use),
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := a.repo.SetStatus(context.Background(), id, status); err != nil {
				return fmt.Errorf("updating appointment: %w", err)
			}
			a.logger.Info("appointment status changed", zap.Int64("id", id), zap.String("status", string(status)))

			_, _ = fmt.Fprintf(a.out, "%s appointment #%d\n", verb, id)
			return nil
		},
	}
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [appointment-id]",
		Short:   "Remove an appointment permanently",
		Example: "  detailer delete 42",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := a.repo.DeleteAppointment(context.Background(), id); err != nil {
				return fmt.Errorf("deleting appointment: %w", err)
			}
			a.logger.Info("appointment deleted", zap.Int64("id", id))

			_, _ = fmt.Fprintf(a.out, "Deleted appointment #%d\n", id)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid appointment ID %q", s)
	}
	return id, nil
}
