package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/calendar"
	"github.com/shinedesk/detailer/internal/schedule"
	"github.com/shinedesk/detailer/internal/summary"
)

const dateHeaderLayout = "Monday, January 2, 2006"

func statusSymbol(s appointment.Status) string {
	switch s {
	case appointment.StatusBooked:
		return "○"
	case appointment.StatusCompleted:
		return "✓"
	case appointment.StatusCancelled:
		return "✗"
	default:
		return "?"
	}
}

// appointmentRow formats one appointment for list output.
func appointmentRow(a *appointment.Appointment, width int) string {
	price := ""
	if a.PriceCents > 0 {
		price = "  " + summary.FormatCents(a.PriceCents)
	}
	label := a.Label()
	if a.Vehicle != "" {
		label += " (" + a.Vehicle + ")"
	}
	prefix := fmt.Sprintf("  %s #%d %s-%s ", statusSymbol(a.Status), a.ID, a.StartTime, a.EndTime())
	room := max(width-ansi.StringWidth(prefix)-ansi.StringWidth(price), 10)
	return prefix + formatStatus(a.Status, ansi.Truncate(label, room, "…")) + formatMuted(price)
}

// dayView configures the hourly day rendering.
type dayView struct {
	BusinessStart int // first business hour
	BusinessEnd   int // hour after the last business hour
	Width         int
}

// slotLines renders the 24 slots as plain text, one line per hour.
func slotLines(res schedule.Result, width int) []string {
	lines := make([]string, 0, len(res.Slots))
	labelWidth := 0
	for _, s := range res.Slots {
		labelWidth = max(labelWidth, len(s.Label))
	}

	for _, s := range res.Slots {
		prefix := fmt.Sprintf("  %*s │ ", labelWidth, s.Label)
		switch {
		case s.Occupant != nil:
			a := s.Occupant
			text := fmt.Sprintf("%s #%d %s  %s-%s", statusSymbol(a.Status), a.ID, a.Label(), a.StartTime, a.EndTime())
			room := max(width-ansi.StringWidth(prefix), 10)
			lines = append(lines, prefix+ansi.Truncate(text, room, "…"))
		case s.IsContinuation:
			lines = append(lines, prefix+"┃")
		default:
			lines = append(lines, strings.TrimRight(prefix, " "))
		}
	}
	return lines
}

// renderDay prints the day header and its hourly slots.
func renderDay(w io.Writer, res schedule.Result, v dayView) {
	_, _ = fmt.Fprintf(w, "=== %s ===\n\n", formatHeader(res.Date.Format(dateHeaderLayout)))

	lines := slotLines(res, v.Width)
	for i, line := range lines {
		s := res.Slots[i]
		switch {
		case s.Occupant != nil:
			line = formatStatus(s.Occupant.Status, line)
		case s.IsContinuation:
			line = formatStatus(appointment.StatusBooked, line)
		case s.Hour < v.BusinessStart || s.Hour >= v.BusinessEnd:
			line = formatMuted(line)
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

// plainDay renders the day without colour, for the clipboard.
func plainDay(res schedule.Result) string {
	var b strings.Builder
	b.WriteString(res.Date.Format(dateHeaderLayout))
	b.WriteString("\n")
	for i, line := range slotLines(res, 200) {
		s := res.Slots[i]
		if s.Occupant == nil && !s.IsContinuation {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderAnomalies prints everything the allocator could not place.
func renderAnomalies(w io.Writer, anomalies []schedule.Anomaly) {
	if len(anomalies) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, formatWarning(fmt.Sprintf("%d scheduling problem(s):", len(anomalies))))
	for _, an := range anomalies {
		_, _ = fmt.Fprintf(w, "  %s %s\n", formatWarning("!"), an)
	}
}

const monthCellWidth = 6

// renderMonth prints a month grid with the number of jobs on each day.
func renderMonth(w io.Writer, month time.Time, days []calendar.Day, headers []string, jobs map[string]int) {
	title := month.Format("January 2006")
	pad := max((monthCellWidth*calendar.DaysPerWeek-len(title))/2, 0)
	_, _ = fmt.Fprintf(w, "%s%s\n\n", strings.Repeat(" ", pad), formatHeader(title))

	for _, h := range headers {
		_, _ = fmt.Fprintf(w, "%*s", monthCellWidth, h)
	}
	_, _ = fmt.Fprintln(w)

	for _, row := range calendar.Rows(days) {
		for _, d := range row {
			_, _ = fmt.Fprint(w, monthCell(d, jobs[d.ISO()]))
		}
		_, _ = fmt.Fprintln(w)
	}
}

// monthCell renders one grid cell padded to monthCellWidth.
func monthCell(d calendar.Day, jobs int) string {
	text := fmt.Sprintf("%d", d.Date.Day())
	if jobs > 0 {
		text += fmt.Sprintf("·%d", jobs)
	}
	cell := fmt.Sprintf("%*s", monthCellWidth-1, text)

	switch {
	case d.IsSelected:
		cell = colorSelected.Sprint(cell)
	case d.IsToday:
		cell = colorToday.Sprint(cell)
	case !d.IsCurrentMonth:
		cell = formatMuted(cell)
	case jobs > 0:
		cell = colorBooked.Sprint(cell)
	}
	return " " + cell
}

// jobsPerDay counts time-blocking appointments by ISO date.
func jobsPerDay(appts []*appointment.Appointment) map[string]int {
	jobs := make(map[string]int)
	for _, a := range appts {
		if a.BlocksTime() {
			jobs[a.Date.Format("2006-01-02")]++
		}
	}
	return jobs
}

// renderSummary prints earnings for a date range.
func renderSummary(w io.Writer, s *summary.Summary) {
	_, _ = fmt.Fprintf(w, "=== %s - %s ===\n\n",
		formatHeader(s.Start.Format("Mon Jan 2")), formatHeader(s.End.Format("Mon Jan 2, 2006")))

	for _, d := range s.Days {
		if d.Stats.Jobs() == 0 && d.Stats.Cancelled == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "  %-10s  %2d job(s)  %8s  earned %10s  pending %10s\n",
			d.Date.Format("Mon Jan 2"),
			d.Stats.Jobs(),
			summary.FormatMinutes(d.Stats.BookedMinutes),
			summary.FormatCents(d.Stats.EarnedCents),
			summary.FormatCents(d.Stats.PendingCents),
		)
	}

	t := s.Totals
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Jobs:      %d (%d completed, %d booked, %d cancelled)\n", t.Jobs(), t.Completed, t.Booked, t.Cancelled)
	_, _ = fmt.Fprintf(w, "Time:      %s over %d day(s)\n", summary.FormatMinutes(t.BookedMinutes), s.WorkingDays())
	_, _ = fmt.Fprintf(w, "Earned:    %s\n", formatMoney(summary.FormatCents(t.EarnedCents)))
	_, _ = fmt.Fprintf(w, "Pending:   %s\n", summary.FormatCents(t.PendingCents))
	if busiest, ok := s.Busiest(); ok {
		_, _ = fmt.Fprintf(w, "Busiest:   %s (%s)\n", busiest.Date.Format("Mon Jan 2"), summary.FormatMinutes(busiest.Stats.BookedMinutes))
	}
}
