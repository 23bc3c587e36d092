package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jiangwan/chrome-outlook-calendar/internal/app"
	"github.com/jiangwan/chrome-outlook-calendar/internal/bus"
	"github.com/jiangwan/chrome-outlook-calendar/internal/nerdfonts"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear all cached state",
	Long: `Sign out of the Outlook account.

A best-effort logout request is sent to the identity provider, then the
local token record, calendar list, event snapshot and cached photo are all
removed together.`,
	RunE: runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := app.New(cfg, stateDir)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	if _, err := a.Handle(cmd.Context(), bus.ClearSession{}); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}

	fmt.Printf("%s Signed out, local state cleared\n", nerdfonts.CheckCircle)
	return nil
}
