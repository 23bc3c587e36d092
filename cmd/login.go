package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jiangwan/chrome-outlook-calendar/internal/app"
	"github.com/jiangwan/chrome-outlook-calendar/internal/bus"
	"github.com/jiangwan/chrome-outlook-calendar/internal/nerdfonts"
	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

var silentLogin bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to your Outlook account",
	Long: `Sign in against the Microsoft identity platform.

By default a browser window opens with the provider's login page; once it
redirects back, the resulting tokens are stored (encrypted) in the state
directory. With --silent the round-trip runs through a hidden browser
surface without any prompt, which only works while the provider still holds
a live session cookie.

Examples:
  chrome-outlook-calendar login            # Interactive sign-in
  chrome-outlook-calendar login --silent   # Refresh tokens without a prompt`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().BoolVar(&silentLogin, "silent", false, "refresh tokens through the hidden surface, no prompt")
}

func runLogin(cmd *cobra.Command, args []string) error {
	if cfg.OAuth.ClientID == "" {
		return fmt.Errorf("no OAuth client id configured. Set oauth.client_id in the config file or OUTLOOK_OAUTH_CLIENT_ID")
	}

	a, err := app.New(cfg, stateDir)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	ctx := cmd.Context()
	if silentLogin {
		if _, err := a.Auth.SilentLogin(ctx); err != nil {
			return fmt.Errorf("silent sign-in failed: %w", err)
		}
	} else {
		if _, err := a.Handle(ctx, bus.ForceLogin{}); err != nil {
			return fmt.Errorf("sign-in failed: %w", err)
		}
	}

	profile, domain, err := a.Auth.Profile()
	if err != nil {
		return fmt.Errorf("failed to read signed-in profile: %w", err)
	}

	fmt.Printf("%s Signed in as %s (%s)\n", nerdfonts.CheckCircle, profile.Name, profile.PreferredUsername)
	if domain != store.DomainUnknown {
		fmt.Printf("%s Account type: %s\n", nerdfonts.User, domain)
	}
	fmt.Println("Run 'chrome-outlook-calendar agenda' to browse your upcoming events.")
	return nil
}
