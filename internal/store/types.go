package store

import "time"

// Domain classifies the signed-in account by tenant.
type Domain string

const (
	DomainConsumers     Domain = "consumers"
	DomainOrganizations Domain = "organizations"
	DomainUnknown       Domain = ""
)

// UserProfile holds the identity claims decoded from the id token payload.
// It is derived data: it never changes independently of the token record.
type UserProfile struct {
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	TenantID          string `json:"tid"`
	ObjectID          string `json:"oid"`
	Audience          string `json:"aud"`
}

// TokenRecord is the singleton persisted login state. It is overwritten
// wholesale on every login or silent refresh and deleted on logout.
type TokenRecord struct {
	AccessToken string      `json:"access_token"`
	IDToken     string      `json:"id_token"`
	ExpiresIn   int         `json:"expires_in"`
	User        UserProfile `json:"user"`
	Domain      Domain      `json:"domain"`
}

// CalendarDescriptor identifies one remote calendar. The persisted
// collection is keyed by id and replaced wholesale on each list sync.
type CalendarDescriptor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// EventRecord is one synced occurrence. Records are immutable once fetched;
// the collection is replaced wholesale on every successful sync cycle.
type EventRecord struct {
	CalendarID   string `json:"calendarId"`
	Color        string `json:"color"`
	Subject      string `json:"subject"`
	Location     string `json:"location"`
	StartTimeUTC string `json:"startTimeUTC"`
	EndTimeUTC   string `json:"endTimeUTC"`
	IsAllDay     bool   `json:"isAllDay"`
	BodyPreview  string `json:"bodyPreview"`
	Organizer    string `json:"organizer"`
	URL          string `json:"url"`
}

// EventSnapshot couples the event collection with the moment it was synced.
// The two always land on disk in one write, so readers never observe events
// from one sync paired with the timestamp of another.
type EventSnapshot struct {
	Events   []EventRecord `json:"events"`
	LastSync time.Time     `json:"last_sync"`
}
