package outlook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/jiangwan/chrome-outlook-calendar/internal/logger"
	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

// eventPageSize overrides the server-side page cap: without an explicit
// $top the calendarview endpoint returns at most 10 items.
const eventPageSize = 9999

type eventsResponse struct {
	Value []eventItem `json:"value"`
}

type eventItem struct {
	Subject  string `json:"Subject"`
	Location struct {
		DisplayName string `json:"DisplayName"`
	} `json:"Location"`
	Start struct {
		DateTime string `json:"DateTime"`
	} `json:"Start"`
	End struct {
		DateTime string `json:"DateTime"`
	} `json:"End"`
	IsAllDay    bool   `json:"IsAllDay"`
	BodyPreview string `json:"BodyPreview"`
	Organizer   struct {
		EmailAddress struct {
			Name string `json:"Name"`
		} `json:"EmailAddress"`
	} `json:"Organizer"`
	WebLink string `json:"WebLink"`
}

// CalendarView fetches the occurrences of one calendar inside [start, end)
// and maps them to event records tagged with the calendar's id and color.
func (c *Client) CalendarView(ctx context.Context, accessToken string, cal store.CalendarDescriptor, start, end time.Time) ([]store.EventRecord, error) {
	q := url.Values{}
	q.Set("startdatetime", start.UTC().Format(time.RFC3339))
	q.Set("enddatetime", end.UTC().Format(time.RFC3339))
	q.Set("$top", fmt.Sprintf("%d", eventPageSize))

	viewURL := c.baseURL + "/me/calendars/" + url.PathEscape(cal.ID) + "/calendarview?" + q.Encode()

	body, err := c.get(ctx, accessToken, viewURL)
	if err != nil {
		return nil, err
	}

	var parsed eventsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode calendar view: %w", err)
	}

	events := make([]store.EventRecord, 0, len(parsed.Value))
	for _, item := range parsed.Value {
		startUTC, err := normalizeToUTC(item.Start.DateTime)
		if err != nil {
			logger.Debug("skipping event with unparseable start time", "subject", item.Subject, "error", err)
			continue
		}
		endUTC, err := normalizeToUTC(item.End.DateTime)
		if err != nil {
			logger.Debug("skipping event with unparseable end time", "subject", item.Subject, "error", err)
			continue
		}

		events = append(events, store.EventRecord{
			CalendarID:   cal.ID,
			Color:        cal.Color,
			Subject:      item.Subject,
			Location:     item.Location.DisplayName,
			StartTimeUTC: startUTC,
			EndTimeUTC:   endUTC,
			IsAllDay:     item.IsAllDay,
			BodyPreview:  item.BodyPreview,
			Organizer:    item.Organizer.EmailAddress.Name,
			URL:          item.WebLink,
		})
	}
	return events, nil
}

// normalizeToUTC turns a server timestamp into canonical UTC ISO-8601.
// calendarview reports zoneless timestamps that are already UTC; zoned ones
// are converted.
func normalizeToUTC(value string) (string, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05.9999999",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format(time.RFC3339), nil
		}
	}
	return "", fmt.Errorf("unrecognized timestamp %q", value)
}
