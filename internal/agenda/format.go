package agenda

import (
	"fmt"
	"time"

	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

// DayLabel renders the heading for one day bucket.
func DayLabel(day time.Time, today time.Time) string {
	switch daysBetween(StartOfDay(today), StartOfDay(day)) {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return day.Format("Mon, Jan 2")
	}
}

// TimeRange renders the occurrence interval of one event for display.
func TimeRange(start, end time.Time, isAllDay bool) string {
	if isAllDay {
		if daysBetween(StartOfDay(start), StartOfDay(end)) == 1 {
			return "All Day Events"
		}
		// The half-open end lands on the day after the last covered one.
		return start.Format("Mon, Jan 2") + " - " + end.AddDate(0, 0, -1).Format("Mon, Jan 2")
	}

	if StartOfDay(start).Equal(StartOfDay(end)) {
		return start.Format("3:04pm") + " - " + end.Format("3:04pm")
	}
	return start.Format("Mon, Jan 2, 3:04pm") + " - " + end.Format("Mon, Jan 2, 3:04pm")
}

// EventLine renders one event for the agenda listing.
func EventLine(ev store.EventRecord, loc *time.Location) string {
	start, errStart := eventLocalTime(ev.IsAllDay, ev.StartTimeUTC, loc)
	end, errEnd := eventLocalTime(ev.IsAllDay, ev.EndTimeUTC, loc)
	if errStart != nil || errEnd != nil {
		return ev.Subject
	}

	line := fmt.Sprintf("%-25s %s", TimeRange(start, end, ev.IsAllDay), ev.Subject)
	if ev.Location != "" {
		line += " @ " + ev.Location
	}
	return line
}
