package bus

import (
	"time"

	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

// Request is a command a presentation surface sends to the core. Each
// request type documents its response payload.
type Request interface {
	request()
}

// GetAccessToken asks for the cached access token. Response: string.
type GetAccessToken struct{}

// ForceLogin runs an interactive login and kicks off a sync.
// Response: *store.UserProfile.
type ForceLogin struct{}

// ClearSession logs out and wipes all cached state. Response: nil.
type ClearSession struct{}

// GetUserProfile reads the cached profile. Response: *store.UserProfile.
type GetUserProfile struct{}

// GetUserPhoto returns the cached photo data URL, fetching it on a cache
// miss. Response: string.
type GetUserPhoto struct{}

// RequestCalendarSync triggers the list+events sync. Response: nil.
type RequestCalendarSync struct{}

// GetCachedEvents reads the cached snapshot plus its recomputed day index.
// Response: *CachedEvents.
type GetCachedEvents struct {
	// Today anchors the observation window; zero means now.
	Today time.Time
}

func (GetAccessToken) request()      {}
func (ForceLogin) request()          {}
func (ClearSession) request()        {}
func (GetUserProfile) request()      {}
func (GetUserPhoto) request()        {}
func (RequestCalendarSync) request() {}
func (GetCachedEvents) request()     {}

// CachedEvents is the read model served to the presentation layer: the
// flat sorted event list and the per-day index derived from it.
type CachedEvents struct {
	Events   []store.EventRecord
	Buckets  [][]int
	LastSync time.Time
}
