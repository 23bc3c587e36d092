package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jiangwan/chrome-outlook-calendar/internal/app"
	"github.com/jiangwan/chrome-outlook-calendar/internal/msauth"
	"github.com/jiangwan/chrome-outlook-calendar/internal/nerdfonts"
	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

// Web calendar entry points per account class. Organization accounts land
// on the Office 365 OWA, consumer accounts on outlook.live.com.
const (
	consumerCalendarURL     = "https://outlook.live.com/owa/#path=/calendar"
	organizationCalendarURL = "https://outlook.office.com/owa/#path=/calendar"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sign-in and sync state",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := app.New(cfg, stateDir)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	profile, domain, err := a.Auth.Profile()
	switch {
	case errors.Is(err, msauth.ErrUnauthenticated):
		fmt.Printf("%s Not signed in. Run 'chrome-outlook-calendar login'.\n", nerdfonts.ExclamationCircle)
	case err != nil:
		return fmt.Errorf("failed to read sign-in state: %w", err)
	default:
		fmt.Printf("%s Signed in as %s (%s)\n", nerdfonts.CheckCircle, profile.Name, profile.PreferredUsername)
		switch domain {
		case store.DomainConsumers:
			fmt.Printf("%s Web calendar: %s\n", nerdfonts.Calendar, consumerCalendarURL)
		case store.DomainOrganizations:
			fmt.Printf("%s Web calendar: %s\n", nerdfonts.Calendar, organizationCalendarURL)
		}
	}

	calendars, err := a.Store.LoadCalendars()
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to read calendar list: %w", err)
	}

	snapshot, err := a.Store.LoadEvents()
	if errors.Is(err, store.ErrNotFound) {
		fmt.Printf("%s No sync yet\n", nerdfonts.Sync)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read event snapshot: %w", err)
	}

	fmt.Printf("%s Last sync: %s (%s ago)\n", nerdfonts.Sync,
		snapshot.LastSync.Local().Format("2006-01-02 15:04"),
		time.Since(snapshot.LastSync).Round(time.Minute))
	fmt.Printf("%s %d events across %d calendars\n", nerdfonts.Calendar, len(snapshot.Events), len(calendars))
	return nil
}
