package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jiangwan/chrome-outlook-calendar/internal/app"
	"github.com/jiangwan/chrome-outlook-calendar/internal/bus"
	"github.com/jiangwan/chrome-outlook-calendar/internal/logger"
	"github.com/jiangwan/chrome-outlook-calendar/internal/nerdfonts"
	"github.com/jiangwan/chrome-outlook-calendar/internal/notifier"
	"github.com/jiangwan/chrome-outlook-calendar/internal/scheduler"
	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the periodic sync daemon",
	Long: `Keep the local snapshot fresh by running a sync on a fixed interval.
Syncs already in flight are never doubled up; a cycle that starts while
another runs is a no-op.

A sync runs immediately on startup when the snapshot is missing or older
than one interval, otherwise the first cycle waits for the schedule.
Desktop notifications report updated events and failures unless disabled
in the config. Stop with Ctrl-C or SIGTERM.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := app.New(cfg, stateDir)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	interval := time.Duration(cfg.Sync.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = scheduler.DefaultInterval
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notify := notifier.New(cfg.Watch.Notifications)
	notifications := a.Bus.Subscribe(16)
	go forwardNotifications(ctx, a, notifications, notify)

	sched := scheduler.New(interval, func() {
		if err := a.Syncer.Sync(ctx); err != nil {
			logger.Error("scheduled sync failed", "error", err)
		}
	})
	sched.Start(snapshotStale(a, interval))
	defer sched.Stop()

	fmt.Printf("%s Watching, syncing every %s\n", nerdfonts.Clock, interval)
	<-ctx.Done()
	fmt.Printf("\n%s Stopped\n", nerdfonts.CheckCircle)
	return nil
}

// snapshotStale reports whether the snapshot is missing or older than one
// interval, which warrants a sync right at startup.
func snapshotStale(a *app.App, interval time.Duration) bool {
	snapshot, err := a.Store.LoadEvents()
	if errors.Is(err, store.ErrNotFound) {
		return true
	}
	if err != nil {
		logger.Warn("failed to read event snapshot", "error", err)
		return true
	}
	return time.Since(snapshot.LastSync) >= interval
}

// forwardNotifications turns bus notifications into log lines and desktop
// notifications until ctx is cancelled.
func forwardNotifications(ctx context.Context, a *app.App, ch <-chan bus.Notification, notify *notifier.Notifier) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-ch:
			switch msg := n.(type) {
			case bus.RefreshStarted:
				logger.Debug("sync started")
			case bus.RefreshStopped:
				logger.Debug("sync finished")
			case bus.EventsUpdated:
				count := 0
				if snapshot, err := a.Store.LoadEvents(); err == nil {
					count = len(snapshot.Events)
				}
				logger.Info("events updated", "count", count)
				if err := notify.EventsUpdated(count); err != nil {
					logger.Debug("notification failed", "error", err)
				}
			case bus.SyncError:
				logger.Error("sync failed", "error", msg.Message)
				if err := notify.SyncFailed(msg.Message); err != nil {
					logger.Debug("notification failed", "error", err)
				}
			case bus.AuthStatusChanged:
				if msg.Authorized {
					logger.Info("signed in", "domain", string(msg.Domain))
					continue
				}
				logger.Warn("authentication lost, sign in again")
				if err := notify.AuthRequired(); err != nil {
					logger.Debug("notification failed", "error", err)
				}
			}
		}
	}
}
