package outlook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

// newTestClient points a client at a local test server over plain HTTP.
func newTestClient(srv *httptest.Server) *Client {
	c := NewClient(srv.URL)
	c.http = srv.Client()
	return c
}

func TestListCalendars(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/calendars" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")

		w.Write([]byte(`{"value":[
			{"Id":"cal-1","Name":"Calendar","Color":"LightBlue"},
			{"Id":"cal-2","Name":"Birthdays","Color":"Auto"}
		]}`))
	}))
	defer srv.Close()

	calendars, err := newTestClient(srv).ListCalendars(context.Background(), "tok")
	if err != nil {
		t.Fatalf("ListCalendars failed: %v", err)
	}

	if gotAuth != "Bearer tok" {
		t.Errorf("Expected bearer header, got %q", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Expected JSON accept header, got %q", gotAccept)
	}

	want := []store.CalendarDescriptor{
		{ID: "cal-1", Name: "Calendar", Color: "LightBlue"},
		{ID: "cal-2", Name: "Birthdays", Color: "Auto"},
	}
	if len(calendars) != len(want) {
		t.Fatalf("Expected %d calendars, got %d", len(want), len(calendars))
	}
	for i := range want {
		if calendars[i] != want[i] {
			t.Errorf("Calendar %d: expected %+v, got %+v", i, want[i], calendars[i])
		}
	}
}

func TestUnauthorizedIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ListCalendars(context.Background(), "stale")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if !apiErr.IsAuthError() {
		t.Error("401 must classify as auth error")
	}
}

func TestServerErrorIsNotAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ListCalendars(context.Background(), "tok")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.IsAuthError() {
		t.Error("500 must not classify as auth error")
	}
}

func TestCalendarView(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/me/calendars/cal-1/calendarview") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		q := r.URL.Query()
		if got := q.Get("$top"); got != "9999" {
			t.Errorf("Expected $top=9999, got %q", got)
		}
		if got := q.Get("startdatetime"); got != "2026-08-30T00:00:00Z" {
			t.Errorf("Unexpected startdatetime %q", got)
		}
		if got := q.Get("enddatetime"); got != "2026-09-06T00:00:00Z" {
			t.Errorf("Unexpected enddatetime %q", got)
		}

		w.Write([]byte(`{"value":[
			{
				"Subject":"Standup",
				"Location":{"DisplayName":"Room 4"},
				"Start":{"DateTime":"2026-08-30T08:00:00"},
				"End":{"DateTime":"2026-08-30T08:15:00"},
				"IsAllDay":false,
				"BodyPreview":"daily",
				"Organizer":{"EmailAddress":{"Name":"Jane Roe"}},
				"WebLink":"https://outlook.live.com/calendar/item/1"
			},
			{
				"Subject":"Broken clock",
				"Start":{"DateTime":"not a time"},
				"End":{"DateTime":"2026-08-30T09:00:00"}
			}
		]}`))
	}))
	defer srv.Close()

	cal := store.CalendarDescriptor{ID: "cal-1", Name: "Calendar", Color: "LightBlue"}
	start := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	events, err := newTestClient(srv).CalendarView(context.Background(), "tok", cal, start, start.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("CalendarView failed: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("Expected the unparseable event skipped, got %d events", len(events))
	}

	ev := events[0]
	if ev.CalendarID != "cal-1" || ev.Color != "LightBlue" {
		t.Errorf("Event not tagged with calendar identity: %+v", ev)
	}
	if ev.Subject != "Standup" || ev.Location != "Room 4" || ev.Organizer != "Jane Roe" {
		t.Errorf("Unexpected event mapping: %+v", ev)
	}
	if ev.StartTimeUTC != "2026-08-30T08:00:00Z" || ev.EndTimeUTC != "2026-08-30T08:15:00Z" {
		t.Errorf("Timestamps not normalized to UTC: %+v", ev)
	}
	if ev.URL != "https://outlook.live.com/calendar/item/1" {
		t.Errorf("Unexpected web link %q", ev.URL)
	}
}

func TestNormalizeToUTC(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-08-30T08:00:00", "2026-08-30T08:00:00Z"},
		{"2026-08-30T08:00:00.0000000", "2026-08-30T08:00:00Z"},
		{"2026-08-30T10:00:00+02:00", "2026-08-30T08:00:00Z"},
		{"2026-08-30T08:00:00Z", "2026-08-30T08:00:00Z"},
	}
	for _, tc := range cases {
		got, err := normalizeToUTC(tc.in)
		if err != nil {
			t.Errorf("normalizeToUTC(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("normalizeToUTC(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	if _, err := normalizeToUTC("30/08/2026"); err == nil {
		t.Error("Expected error for unrecognized timestamp, got nil")
	}
}

func TestUserPhoto(t *testing.T) {
	photoBytes := []byte{0xff, 0xd8, 0xff, 0xe0}
	var gotTimestamp string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/photo/$value" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		gotTimestamp = r.URL.Query().Get("timestamp")
		w.Write(photoBytes)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	dataURL, err := c.UserPhoto(context.Background(), "tok")
	if err != nil {
		t.Fatalf("UserPhoto failed: %v", err)
	}

	if gotTimestamp != "2026-08-30T12:00:00Z" {
		t.Errorf("Expected cache-busting timestamp, got %q", gotTimestamp)
	}
	if dataURL != "data:image/jpeg;base64,/9j/4A==" {
		t.Errorf("Unexpected data URL %q", dataURL)
	}
}

func TestColorRGB(t *testing.T) {
	if got := ColorRGB("LightBlue"); got != "rgb(166,209,245)" {
		t.Errorf("Unexpected LightBlue value %q", got)
	}
	if got := ColorRGB("Auto"); got != DefaultCalendarColor {
		t.Errorf("Unknown color should fall back to default, got %q", got)
	}
}
