package ui

import (
	"time"

	"github.com/shinedesk/detailer/internal/dateutil"
)

// dateRange resolves --start/--end flags relative to the app clock.
// An empty start means today and an empty end means the start day.
func (a *App) dateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := dateutil.ParseRelativeDate(startDate, a.now(), false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end := start
	if endDate != "" {
		end, err = dateutil.ParseRelativeDate(endDate, a.now(), false)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, dateutil.ErrEndDateBeforeStart
	}
	return start, end, nil
}
