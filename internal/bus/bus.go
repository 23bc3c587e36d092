// Package bus carries the typed message protocol between the sync core and
// whatever presents it (CLI commands, the watch daemon). It replaces the
// original string-keyed dispatch with concrete request and notification
// types.
package bus

import (
	"sync"

	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

// Notification is a one-way broadcast from the core to its observers.
type Notification interface {
	notification()
}

// AuthStatusChanged reports whether a signed-in session exists and, when it
// does, which account domain it belongs to.
type AuthStatusChanged struct {
	Authorized bool
	Domain     store.Domain
}

// EventsUpdated announces that a sync replaced the cached event snapshot.
type EventsUpdated struct{}

// RefreshStarted marks the beginning of a sync attempt.
type RefreshStarted struct{}

// RefreshStopped marks the end of a sync attempt, successful or not.
type RefreshStopped struct{}

// SyncError reports a terminal non-auth sync failure; the cache stays.
type SyncError struct {
	Message string
}

func (AuthStatusChanged) notification() {}
func (EventsUpdated) notification()     {}
func (RefreshStarted) notification()    {}
func (RefreshStopped) notification()    {}
func (SyncError) notification()         {}

// Bus fans notifications out to subscribers. Publishing never blocks: a
// subscriber that stops draining loses messages instead of stalling a sync.
type Bus struct {
	mu   sync.Mutex
	subs []chan Notification
}

func New() *Bus {
	return &Bus{}
}

// Subscribe registers a new observer channel with the given buffer size.
func (b *Bus) Subscribe(buffer int) <-chan Notification {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Notification, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers n to every subscriber that has room for it.
func (b *Bus) Publish(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- n:
		default:
		}
	}
}
