package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jiangwan/chrome-outlook-calendar/internal/config"
	"github.com/jiangwan/chrome-outlook-calendar/internal/logger"
)

var (
	stateDir string
	cfgFile  string
	verbose  bool
	cfg      *config.Config

	// Version information
	version    string
	commitHash string
	buildTime  string
)

var rootCmd = &cobra.Command{
	Use:   "chrome-outlook-calendar",
	Short: "Outlook calendar companion: sign in, sync and browse upcoming events",
	Long: `A companion tool for the Outlook calendar popup. It signs in against the
Microsoft identity platform, keeps a local snapshot of your calendars and
upcoming events in sync with the Outlook REST API, and serves the agenda
for the next days from that snapshot.

Run 'login' once, then 'sync' (or the 'watch' daemon) to refresh the local
snapshot and 'agenda' to browse it.`,
}

func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, commit, buildTimeStr string) {
	version = v
	commitHash = commit
	buildTime = buildTimeStr

	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commitHash, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "state directory (default: $XDG_DATA_HOME/chrome-outlook-calendar)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config directory (default: $XDG_CONFIG_HOME/chrome-outlook-calendar)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(agendaCmd)
	rootCmd.AddCommand(calendarsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
}

func initConfig() {
	logger.Init(verbose)

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}
