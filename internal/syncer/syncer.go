package syncer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jiangwan/chrome-outlook-calendar/internal/agenda"
	"github.com/jiangwan/chrome-outlook-calendar/internal/bus"
	"github.com/jiangwan/chrome-outlook-calendar/internal/logger"
	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

// CalendarAPI is the slice of the Outlook client the syncer needs.
type CalendarAPI interface {
	ListCalendars(ctx context.Context, accessToken string) ([]store.CalendarDescriptor, error)
	CalendarView(ctx context.Context, accessToken string, cal store.CalendarDescriptor, start, end time.Time) ([]store.EventRecord, error)
}

// Options tune a Syncer; zero values fall back to defaults.
type Options struct {
	Days  int
	Retry RetryPolicy
	Now   func() time.Time
}

// Syncer runs the two-stage calendar sync: replace the calendar list, then
// fan out over it and replace the event snapshot. Both stages go through
// the retry policy; terminal failures broadcast exactly one outcome.
type Syncer struct {
	auth  TokenSource
	api   CalendarAPI
	st    *store.Store
	bus   *bus.Bus
	days  int
	retry RetryPolicy
	now   func() time.Time

	// mu serializes sync invocations so a late starter cannot interleave
	// its writes with an in-flight sync.
	mu sync.Mutex
}

// New creates a syncer. opts may be nil.
func New(auth TokenSource, api CalendarAPI, st *store.Store, b *bus.Bus, opts *Options) *Syncer {
	s := &Syncer{
		auth:  auth,
		api:   api,
		st:    st,
		bus:   b,
		days:  agenda.DaysToObserve,
		retry: DefaultRetryPolicy(),
		now:   time.Now,
	}
	if opts != nil {
		if opts.Days > 0 {
			s.days = opts.Days
		}
		if opts.Retry.MaxRetries > 0 {
			s.retry = opts.Retry
		}
		if opts.Now != nil {
			s.now = opts.Now
		}
	}
	return s
}

// Sync performs one full list+events cycle. On a terminal authorization
// failure the whole local cache is purged and an unauthenticated status is
// broadcast; other terminal failures keep the cache and broadcast a generic
// sync error.
func (s *Syncer) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bus.Publish(bus.RefreshStarted{})
	err := s.run(ctx)
	s.bus.Publish(bus.RefreshStopped{})
	if err == nil {
		return nil
	}

	if IsAuthFailure(err) {
		if clearErr := s.st.Clear(); clearErr != nil {
			logger.Error("failed to purge local cache", "error", clearErr)
		}
		s.bus.Publish(bus.AuthStatusChanged{Authorized: false})
		return fmt.Errorf("authorization lost: %w", err)
	}

	s.bus.Publish(bus.SyncError{Message: err.Error()})
	return err
}

func (s *Syncer) run(ctx context.Context) error {
	// List stage.
	var calendars []store.CalendarDescriptor
	err := s.retry.Do(ctx, s.auth, func(ctx context.Context, token string) error {
		list, listErr := s.api.ListCalendars(ctx, token)
		if listErr != nil {
			return listErr
		}
		calendars = list
		return nil
	})
	if err != nil {
		return err
	}

	// Storage failures are terminal, not retried.
	if err := s.st.SaveCalendars(calendars); err != nil {
		return fmt.Errorf("failed to persist calendar list: %w", err)
	}
	logger.Info("calendar list synced", "count", len(calendars))

	// Events stage. The whole fan-out counts as one retry-guarded attempt.
	var events []store.EventRecord
	var syncedAt time.Time
	err = s.retry.Do(ctx, s.auth, func(ctx context.Context, token string) error {
		fetched, fetchErr := s.fetchAllEvents(ctx, token, calendars)
		if fetchErr != nil {
			return fetchErr
		}
		events = fetched
		syncedAt = s.now()
		return nil
	})
	if err != nil {
		return err
	}

	// Canonical UTC RFC3339 strings order chronologically when compared as
	// strings.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTimeUTC < events[j].StartTimeUTC
	})

	// Events and last-synced timestamp land in one write.
	if err := s.st.SaveEvents(&store.EventSnapshot{Events: events, LastSync: syncedAt}); err != nil {
		return fmt.Errorf("failed to persist events: %w", err)
	}

	logger.Info("events synced", "count", len(events), "calendars", len(calendars))
	s.bus.Publish(bus.EventsUpdated{})
	return nil
}

// fetchAllEvents issues one request per calendar concurrently and succeeds
// only if every request succeeds. The first failure short-circuits the
// join; results of still-pending siblings are dropped.
func (s *Syncer) fetchAllEvents(ctx context.Context, token string, calendars []store.CalendarDescriptor) ([]store.EventRecord, error) {
	start := agenda.StartOfDay(s.now())
	end := start.AddDate(0, 0, s.days)

	results := make([][]store.EventRecord, len(calendars))
	g, gctx := errgroup.WithContext(ctx)
	for i, cal := range calendars {
		g.Go(func() error {
			events, err := s.api.CalendarView(gctx, token, cal, start, end)
			if err != nil {
				return err
			}
			results[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []store.EventRecord
	for _, events := range results {
		all = append(all, events...)
	}
	if all == nil {
		all = []store.EventRecord{}
	}
	return all, nil
}
