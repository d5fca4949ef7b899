package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/config"
	"github.com/shinedesk/detailer/internal/db"
	"github.com/shinedesk/detailer/internal/logging"
	"github.com/shinedesk/detailer/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo   appointment.Repository
	config *config.Config
	logger *zap.Logger
	root   *cobra.Command
	in     io.Reader
	out    io.Writer
	now    func() time.Time
	debug  bool // Enable debug logging
}

// NewApp creates a new CLI application with the given repository and config.
// A nil repository is opened from the configured database path on first use.
func NewApp(repo appointment.Repository, cfg *config.Config) *App {
	a := &App{
		repo:   repo,
		config: cfg,
		logger: zap.NewNop(),
		in:     os.Stdin,
		out:    os.Stdout,
		now:    time.Now,
	}

	a.root = &cobra.Command{
		Use:   "detailer",
		Short: "Appointment calendar for mobile car detailers",
		Long: `Detailer keeps a mobile detailer's bookings in a local calendar.

It shows the month at a glance, lays each day out hour by hour, imports
bookings from calendar files and totals up what the work earned.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initLogger(cmd == a.root)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			return tui.Run(a.repo, a.config, a.logger)
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.nextCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.cancelCmd())
	a.root.AddCommand(a.completeCmd())
	a.root.AddCommand(a.rescheduleCmd())
	a.root.AddCommand(a.deleteCmd())
	a.root.AddCommand(a.dayCmd())
	a.root.AddCommand(a.monthCmd())
	a.root.AddCommand(a.importCmd())
	a.root.AddCommand(a.earningsCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(a.out, "detailer %s (commit: %s)\n", Version, Commit)
		},
	}
}

// initLogger builds the logger from config. The full-screen UI cannot share
// stderr with log output, so it logs to a file or not at all.
func (a *App) initLogger(interactive bool) error {
	opts := logging.Options{
		Level: a.config.Log.Level,
		File:  a.config.Log.File,
		Debug: a.debug,
	}
	if interactive && opts.File == "" {
		if !a.debug {
			a.logger = zap.NewNop()
			return nil
		}
		opts.File = filepath.Join(os.TempDir(), "detailer-debug.log")
	}

	logger, err := logging.New(opts)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// ensureRepo opens the configured database unless a repository was injected.
func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}

	path := a.config.Storage.DBPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	repo, err := db.New(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.logger.Debug("opened database", zap.String("path", path))
	a.repo = repo
	return nil
}

// SetOutput redirects command output.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
	a.root.SetOut(w)
	a.root.SetErr(w)
}

// SetInput redirects prompt input.
func (a *App) SetInput(r io.Reader) {
	a.in = r
	a.root.SetIn(r)
}

// SetClock overrides the current time, for tests.
func (a *App) SetClock(now func() time.Time) {
	a.now = now
}

// SetArgs overrides the command line arguments.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the repository and flushes the logger.
func (a *App) Close() error {
	_ = a.logger.Sync()
	if a.repo == nil {
		return nil
	}
	return a.repo.Close()
}

// today returns the current date at local midnight.
func (a *App) today() time.Time {
	t := a.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
