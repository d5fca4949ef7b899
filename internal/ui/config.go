package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinedesk/detailer/internal/config"
	"github.com/shinedesk/detailer/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.`,
		Example: `  detailer config
  detailer config --show`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if show {
				printConfig(a.out, a.config)
				return nil
			}
			return a.runConfigInteractive(config.DefaultConfigPath())
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "Print the effective configuration and exit")

	return cmd
}

func (a *App) runConfigInteractive(configPath string) error {
	_, _ = fmt.Fprintf(a.out, "Config file: %s\n\n", configPath)

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		_, _ = fmt.Fprintln(a.out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		_, _ = fmt.Fprintf(a.out, "Created %s\n\n", configPath)
	}

	printConfig(a.out, cfg)

	p := prompter{in: bufio.NewReader(a.in), out: a.out}
	if !p.yesNo("\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Calendar.WeekStart = strings.ToLower(p.value("Week starts on", cfg.Calendar.WeekStart))
	cfg.Schedule.Clock = strings.ToLower(p.value("Clock (24h or 12h)", cfg.Schedule.Clock))
	cfg.Schedule.DayStart = p.value("Day start", cfg.Schedule.DayStart)
	cfg.Schedule.DayEnd = p.value("Day end", cfg.Schedule.DayEnd)
	cfg.Schedule.Workdays = p.slice("Workdays (comma-separated)", cfg.Schedule.Workdays)
	cfg.Storage.DBPath = p.value("Database path", cfg.Storage.DBPath)
	cfg.UI.Theme = p.theme(cfg.UI.Theme)
	cfg.Log.Level = strings.ToLower(p.value("Log level", cfg.Log.Level))
	cfg.Log.File = p.value("Log file (empty for stderr)", cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	_, _ = fmt.Fprintln(a.out, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	_, _ = fmt.Fprintln(w, "Current configuration:")
	_, _ = fmt.Fprintln(w, "──────────────────────")
	_, _ = fmt.Fprintln(w, "[calendar]")
	_, _ = fmt.Fprintf(w, "  week_start = %s\n", cfg.Calendar.WeekStart)
	_, _ = fmt.Fprintln(w, "\n[schedule]")
	_, _ = fmt.Fprintf(w, "  clock      = %s\n", cfg.Schedule.Clock)
	_, _ = fmt.Fprintf(w, "  day_start  = %s\n", cfg.Schedule.DayStart)
	_, _ = fmt.Fprintf(w, "  day_end    = %s\n", cfg.Schedule.DayEnd)
	_, _ = fmt.Fprintf(w, "  workdays   = %s\n", strings.Join(cfg.Schedule.Workdays, ", "))
	_, _ = fmt.Fprintln(w, "\n[storage]")
	_, _ = fmt.Fprintf(w, "  db_path    = %s\n", cfg.Storage.DBPath)
	_, _ = fmt.Fprintln(w, "\n[ui]")
	_, _ = fmt.Fprintf(w, "  theme      = %s\n", cfg.UI.Theme)
	_, _ = fmt.Fprintln(w, "\n[log]")
	_, _ = fmt.Fprintf(w, "  level      = %s\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		_, _ = fmt.Fprintf(w, "  file       = %s\n", cfg.Log.File)
	}
}

// prompter reads answers line by line; an empty answer keeps the current value.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p prompter) readLine() string {
	input, _ := p.in.ReadString('\n')
	return strings.TrimSpace(input)
}

func (p prompter) yesNo(question string) bool {
	_, _ = fmt.Fprintf(p.out, "%s [y/N]: ", question)
	input := strings.ToLower(p.readLine())
	return input == "y" || input == "yes"
}

func (p prompter) value(label, current string) string {
	if current == "" {
		_, _ = fmt.Fprintf(p.out, "  %s: ", label)
	} else {
		_, _ = fmt.Fprintf(p.out, "  %s [%s]: ", label, current)
	}
	input := p.readLine()
	if input == "" {
		return current
	}
	return input
}

func (p prompter) slice(label string, current []string) []string {
	_, _ = fmt.Fprintf(p.out, "  %s [%s]: ", label, strings.Join(current, ", "))
	input := p.readLine()
	if input == "" {
		return current
	}
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (p prompter) theme(current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for range 5 {
		value := strings.ToLower(p.value(label, current))
		if theme.IsAvailable(value) {
			return value
		}
		_, _ = fmt.Fprintf(p.out, "  Invalid theme %q. Available: %s\n", value, options)
	}
	return current
}
