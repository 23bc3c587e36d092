package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jiangwan/chrome-outlook-calendar/internal/app"
	"github.com/jiangwan/chrome-outlook-calendar/internal/nerdfonts"
	"github.com/jiangwan/chrome-outlook-calendar/internal/outlook"
	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

var calendarsCmd = &cobra.Command{
	Use:   "calendars",
	Short: "List the synced calendars",
	Long: `Print the calendar list from the local snapshot, with the color each
calendar renders in. The list reflects the last sync; run 'sync' to
refresh it.`,
	RunE: runCalendars,
}

func runCalendars(cmd *cobra.Command, args []string) error {
	a, err := app.New(cfg, stateDir)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	calendars, err := a.Store.LoadCalendars()
	if errors.Is(err, store.ErrNotFound) {
		fmt.Printf("%s No calendars synced yet. Run 'chrome-outlook-calendar sync' first.\n", nerdfonts.InfoCircle)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read calendar list: %w", err)
	}

	fmt.Printf("%s %d calendars\n", nerdfonts.Calendar, len(calendars))
	for _, cal := range calendars {
		fmt.Printf("  %s %s (%s)\n", nerdfonts.CircleDot, cal.Name, outlook.ColorRGB(cal.Color))
	}
	return nil
}
