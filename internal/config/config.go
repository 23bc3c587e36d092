package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

type Config struct {
	OAuth OAuthConfig `mapstructure:"oauth"`
	API   APIConfig   `mapstructure:"api"`
	Sync  SyncConfig  `mapstructure:"sync"`
	Watch WatchConfig `mapstructure:"watch"`
}

type OAuthConfig struct {
	ClientID        string   `mapstructure:"client_id"`
	RedirectURI     string   `mapstructure:"redirect_uri"`
	Scopes          []string `mapstructure:"scopes"`
	Authority       string   `mapstructure:"authority"`
	LoginHint       string   `mapstructure:"login_hint"`
	DomainHint      string   `mapstructure:"domain_hint"`
	SilentTimeoutMS int      `mapstructure:"silent_timeout_ms"`
}

type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type SyncConfig struct {
	DaysToObserve   int `mapstructure:"days_to_observe"`
	IntervalMinutes int `mapstructure:"interval_minutes"`
	RetryLimit      int `mapstructure:"retry_limit"`
	RetryBackoffMS  int `mapstructure:"retry_backoff_ms"`
}

type WatchConfig struct {
	Notifications bool `mapstructure:"notifications"`
}

var defaultConfig = Config{
	OAuth: OAuthConfig{
		RedirectURI:     "https://login.microsoftonline.com/common/oauth2/nativeclient",
		Scopes:          []string{"openid", "profile", "https://outlook.office.com/Calendars.Read"},
		Authority:       "https://login.microsoftonline.com/common/oauth2/v2.0",
		SilentTimeoutMS: 3000,
	},
	API: APIConfig{
		BaseURL: "https://outlook.office.com/api/v2.0",
	},
	Sync: SyncConfig{
		DaysToObserve:   7,
		IntervalMinutes: 30,
		RetryLimit:      3,
		RetryBackoffMS:  100,
	},
	Watch: WatchConfig{
		Notifications: true,
	},
}

// Load reads the TOML config, creating a commented default file on first
// run. Environment variables prefixed OUTLOOK_ override file values, e.g.
// OUTLOOK_OAUTH_CLIENT_ID.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigName("config")

	if configPath == "" {
		configPath = DefaultConfigDir()
	}
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("OUTLOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createDefaultConfig(configPath); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
			if err := v.ReadInConfig(); err != nil {
				cfg := defaultConfig
				return &cfg, nil
			}
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// DefaultConfigDir returns the XDG config directory for this tool.
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "chrome-outlook-calendar")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("oauth.client_id", defaultConfig.OAuth.ClientID)
	v.SetDefault("oauth.redirect_uri", defaultConfig.OAuth.RedirectURI)
	v.SetDefault("oauth.scopes", defaultConfig.OAuth.Scopes)
	v.SetDefault("oauth.authority", defaultConfig.OAuth.Authority)
	v.SetDefault("oauth.login_hint", defaultConfig.OAuth.LoginHint)
	v.SetDefault("oauth.domain_hint", defaultConfig.OAuth.DomainHint)
	v.SetDefault("oauth.silent_timeout_ms", defaultConfig.OAuth.SilentTimeoutMS)

	v.SetDefault("api.base_url", defaultConfig.API.BaseURL)

	v.SetDefault("sync.days_to_observe", defaultConfig.Sync.DaysToObserve)
	v.SetDefault("sync.interval_minutes", defaultConfig.Sync.IntervalMinutes)
	v.SetDefault("sync.retry_limit", defaultConfig.Sync.RetryLimit)
	v.SetDefault("sync.retry_backoff_ms", defaultConfig.Sync.RetryBackoffMS)

	v.SetDefault("watch.notifications", defaultConfig.Watch.Notifications)
}

func createDefaultConfig(configPath string) error {
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.toml")
	if _, err := os.Stat(configFile); err == nil {
		return nil
	}

	configContent := `# chrome-outlook-calendar configuration

[oauth]
# Application (client) id registered with the Microsoft identity platform.
client_id = ""
redirect_uri = "https://login.microsoftonline.com/common/oauth2/nativeclient"
scopes = ["openid", "profile", "https://outlook.office.com/Calendars.Read"]
authority = "https://login.microsoftonline.com/common/oauth2/v2.0"
login_hint = ""
domain_hint = ""
silent_timeout_ms = 3000

[api]
base_url = "https://outlook.office.com/api/v2.0"

[sync]
days_to_observe = 7
interval_minutes = 30
retry_limit = 3
retry_backoff_ms = 100

[watch]
notifications = true
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
