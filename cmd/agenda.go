package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jiangwan/chrome-outlook-calendar/internal/agenda"
	"github.com/jiangwan/chrome-outlook-calendar/internal/app"
	"github.com/jiangwan/chrome-outlook-calendar/internal/bus"
	"github.com/jiangwan/chrome-outlook-calendar/internal/nerdfonts"
)

var agendaShowEmpty bool

var agendaCmd = &cobra.Command{
	Use:   "agenda",
	Short: "Show upcoming events from the local snapshot",
	Long: `Print the synced events for the next days, bucketed per day. All-day
events keep their calendar date regardless of the local timezone; timed
events are shown in local time, and multi-day events appear under every
day they touch.

The agenda reads the local snapshot only. Run 'sync' first (or keep the
'watch' daemon running) to have something to show.

Examples:
  chrome-outlook-calendar agenda           # Days that have events
  chrome-outlook-calendar agenda --all     # Include empty days`,
	RunE: runAgenda,
}

func init() {
	agendaCmd.Flags().BoolVar(&agendaShowEmpty, "all", false, "also print days without events")
}

func runAgenda(cmd *cobra.Command, args []string) error {
	a, err := app.New(cfg, stateDir)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	result, err := a.Handle(cmd.Context(), bus.GetCachedEvents{Today: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to read cached events: %w", err)
	}
	cached := result.(*bus.CachedEvents)

	if cached.LastSync.IsZero() {
		fmt.Printf("%s No events synced yet. Run 'chrome-outlook-calendar sync' first.\n", nerdfonts.InfoCircle)
		return nil
	}

	today := agenda.StartOfDay(time.Now())
	loc := time.Local
	printed := 0

	for offset, bucket := range cached.Buckets {
		if len(bucket) == 0 && !agendaShowEmpty {
			continue
		}

		day := today.AddDate(0, 0, offset)
		fmt.Printf("%s %s\n", nerdfonts.CalendarWeek, agenda.DayLabel(day, today))
		if len(bucket) == 0 {
			fmt.Println("   no events")
		}
		for _, idx := range bucket {
			fmt.Printf("   %s\n", agenda.EventLine(cached.Events[idx], loc))
			printed++
		}
		fmt.Println()
	}

	if printed == 0 && !agendaShowEmpty {
		fmt.Printf("%s No events in the next %d days\n", nerdfonts.Calendar, a.Days())
	}
	return nil
}
