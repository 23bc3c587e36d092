package outlook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

type calendarListResponse struct {
	Value []struct {
		ID    string `json:"Id"`
		Name  string `json:"Name"`
		Color string `json:"Color"`
	} `json:"value"`
}

// ListCalendars fetches every calendar the signed-in account can read.
func (c *Client) ListCalendars(ctx context.Context, accessToken string) ([]store.CalendarDescriptor, error) {
	body, err := c.get(ctx, accessToken, c.baseURL+"/me/calendars")
	if err != nil {
		return nil, err
	}

	var parsed calendarListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode calendar list: %w", err)
	}

	calendars := make([]store.CalendarDescriptor, 0, len(parsed.Value))
	for _, item := range parsed.Value {
		calendars = append(calendars, store.CalendarDescriptor{
			ID:    item.ID,
			Name:  item.Name,
			Color: item.Color,
		})
	}
	return calendars, nil
}
