// Package config handles configuration loading and validation for repoza.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Meet0105/repoza-sub001/internal/core/notify"
	"github.com/Meet0105/repoza-sub001/internal/core/plans"
	"github.com/Meet0105/repoza-sub001/internal/core/styles"
)

// Provider names for OAuth sign-in.
const (
	ProviderGitHub = "github"
	ProviderGoogle = "google"
)

// Config holds the application configuration.
type Config struct {
	Theme         string              `yaml:"theme"`
	Plan          string              `yaml:"plan"`
	Notifications NotificationsConfig `yaml:"notifications"`
	GitHub        GitHubConfig        `yaml:"github"`
	AI            AIConfig            `yaml:"ai"`
	Auth          AuthConfig          `yaml:"auth"`
	Billing       BillingConfig       `yaml:"billing"`
	Database      DatabaseConfig      `yaml:"database"`
	DataDir       string              `yaml:"-"` // set by caller, not from config file
}

// NotificationsConfig controls the toast overlay.
type NotificationsConfig struct {
	DefaultDuration time.Duration `yaml:"default_duration"` // 0 keeps toasts until dismissed
	MaxVisible      int           `yaml:"max_visible"`

	// Sticky lists kinds that stay until dismissed whatever duration the
	// caller asked for, e.g. [error].
	Sticky []string `yaml:"sticky"`
}

// StickyKinds returns the parsed sticky kinds, skipping invalid names;
// Validate reports those.
func (n NotificationsConfig) StickyKinds() []notify.Kind {
	var kinds []notify.Kind
	for _, s := range n.Sticky {
		if k, err := notify.ParseKind(s); err == nil {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// GitHubConfig configures the repository API client.
type GitHubConfig struct {
	APIURL      string        `yaml:"api_url"`
	Token       string        `yaml:"token"`
	Timeout     time.Duration `yaml:"timeout"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	TreeExclude []string      `yaml:"tree_exclude"` // doublestar globs
}

// AIConfig configures the generative-content provider.
type AIConfig struct {
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	MaxTokens int64  `yaml:"max_tokens"`
}

// AuthConfig configures OAuth sign-in.
type AuthConfig struct {
	CallbackURL string                    `yaml:"callback_url"`
	Providers   map[string]ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds OAuth client credentials for one identity provider.
type ProviderConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes"`
}

// BillingConfig configures the payment provider used by product provisioning.
type BillingConfig struct {
	APIKey  string `yaml:"api_key"`
	Sandbox bool   `yaml:"sandbox"`
}

// DatabaseConfig tunes the local SQLite connection pool.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Theme: styles.DefaultTheme,
		Plan:  string(plans.TierFree),
		Notifications: NotificationsConfig{
			DefaultDuration: notify.DefaultDuration,
			MaxVisible:      3,
		},
		GitHub: GitHubConfig{
			APIURL:   "https://api.github.com",
			Timeout:  10 * time.Second,
			CacheTTL: 30 * time.Minute,
			TreeExclude: []string{
				"**/node_modules/**",
				"**/vendor/**",
				".git/**",
			},
		},
		AI: AIConfig{
			Model:     "claude-haiku-4-5",
			MaxTokens: 512,
		},
		Auth: AuthConfig{
			CallbackURL: "http://127.0.0.1:8787/callback",
			Providers: map[string]ProviderConfig{
				ProviderGitHub: {Scopes: []string{"read:user", "user:email"}},
				ProviderGoogle: {Scopes: []string{"openid", "email", "profile"}},
			},
		},
		Billing: BillingConfig{Sandbox: true},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
// Secrets are then overlaid from the environment.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyEnv overlays secrets from the environment. Environment values win over
// the file so tokens never need to be written to disk.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := getenv("ANTHROPIC_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := getenv("PADDLE_API_KEY"); v != "" {
		c.Billing.APIKey = v
	}

	if c.Auth.Providers == nil {
		c.Auth.Providers = make(map[string]ProviderConfig)
	}
	for _, name := range []string{ProviderGitHub, ProviderGoogle} {
		p := c.Auth.Providers[name]
		prefix := "REPOZA_" + strings.ToUpper(name)
		if v := getenv(prefix + "_CLIENT_ID"); v != "" {
			p.ClientID = v
		}
		if v := getenv(prefix + "_CLIENT_SECRET"); v != "" {
			p.ClientSecret = v
		}
		c.Auth.Providers[name] = p
	}
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
	if c.Plan == "" {
		c.Plan = defaults.Plan
	}
	if c.Notifications.MaxVisible == 0 {
		c.Notifications.MaxVisible = defaults.Notifications.MaxVisible
	}
	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = defaults.GitHub.APIURL
	}
	if c.GitHub.Timeout == 0 {
		c.GitHub.Timeout = defaults.GitHub.Timeout
	}
	if c.AI.Model == "" {
		c.AI.Model = defaults.AI.Model
	}
	if c.AI.MaxTokens == 0 {
		c.AI.MaxTokens = defaults.AI.MaxTokens
	}
	if c.Auth.CallbackURL == "" {
		c.Auth.CallbackURL = defaults.Auth.CallbackURL
	}
	if c.Auth.Providers == nil {
		c.Auth.Providers = make(map[string]ProviderConfig)
	}
	for name, def := range defaults.Auth.Providers {
		p := c.Auth.Providers[name]
		if len(p.Scopes) == 0 {
			p.Scopes = def.Scopes
		}
		c.Auth.Providers[name] = p
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
}

// Tier returns the configured plan tier. Validate guarantees it parses.
func (c *Config) Tier() plans.Tier {
	t, _ := plans.ParseTier(c.Plan)
	return t
}

