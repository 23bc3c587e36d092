package agenda

import (
	"time"

	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

// DaysToObserve is the default forward window length.
const DaysToObserve = 7

// Index buckets events into a window of days consecutive calendar days
// starting at the day of today (interpreted in today's location). Bucket i
// holds the indices of every event whose local-time interval touches day i;
// an event spanning several days appears in every bucket it touches and
// events entirely outside the window appear in none. The result is derived
// on every call, never persisted.
func Index(events []store.EventRecord, today time.Time, days int) [][]int {
	buckets := make([][]int, days)
	for i := range buckets {
		buckets[i] = []int{}
	}

	loc := today.Location()
	first := StartOfDay(today)

	for idx, ev := range events {
		start, err := eventLocalTime(ev.IsAllDay, ev.StartTimeUTC, loc)
		if err != nil {
			continue
		}
		end, err := eventLocalTime(ev.IsAllDay, ev.EndTimeUTC, loc)
		if err != nil {
			continue
		}

		// The server hands out half-open intervals: an event ending exactly
		// at local midnight belongs to the previous day.
		if end.Hour() == 0 && end.Minute() == 0 {
			end = end.AddDate(0, 0, -1)
		}

		startIdx := daysBetween(first, start)
		endIdx := daysBetween(first, end)
		if startIdx > days-1 || endIdx < 0 {
			continue
		}
		if startIdx < 0 {
			startIdx = 0
		}
		if endIdx > days-1 {
			endIdx = days - 1
		}

		for i := startIdx; i <= endIdx; i++ {
			buckets[i] = append(buckets[i], idx)
		}
	}

	return buckets
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// eventLocalTime converts a stored UTC timestamp to local time. All-day
// events carry their calendar date in UTC; that date is taken as the local
// date directly, so a one-day event stays one day in every timezone.
func eventLocalTime(isAllDay bool, value string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}

	if isAllDay {
		u := t.UTC()
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, loc), nil
	}
	return t.In(loc), nil
}

// daysBetween counts calendar days from a to b, ignoring clock time and any
// DST-induced day-length changes.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}
