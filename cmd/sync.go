package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jiangwan/chrome-outlook-calendar/internal/app"
	"github.com/jiangwan/chrome-outlook-calendar/internal/bus"
	"github.com/jiangwan/chrome-outlook-calendar/internal/msauth"
	"github.com/jiangwan/chrome-outlook-calendar/internal/nerdfonts"
	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync calendars and events from the Outlook API",
	Long: `Run one full sync cycle: fetch the calendar list, then fetch the events
of every calendar for the observation window concurrently, and replace the
local snapshot.

Expired tokens are refreshed silently in between retries. If the account
turns out to be unauthorized after all retries, the local cache is cleared
and a new 'login' is required.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := app.New(cfg, stateDir)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	if _, err := a.Handle(cmd.Context(), bus.RequestCalendarSync{}); err != nil {
		if errors.Is(err, msauth.ErrUnauthenticated) {
			return fmt.Errorf("authentication required. Run 'chrome-outlook-calendar login' first")
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	snapshot, err := a.Store.LoadEvents()
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to read synced snapshot: %w", err)
	}

	calendars, calErr := a.Store.LoadCalendars()
	if calErr != nil && !errors.Is(calErr, store.ErrNotFound) {
		return fmt.Errorf("failed to read synced calendar list: %w", calErr)
	}

	count := 0
	if snapshot != nil {
		count = len(snapshot.Events)
	}
	fmt.Printf("%s Synced %d events from %d calendars\n", nerdfonts.CheckCircle, count, len(calendars))
	return nil
}
