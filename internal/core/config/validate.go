package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/Meet0105/repoza-sub001/internal/core/notify"
	"github.com/Meet0105/repoza-sub001/internal/core/plans"
	"github.com/Meet0105/repoza-sub001/internal/core/styles"
)

// Validate checks that the configuration is valid. All field problems are
// reported together as criterio.FieldErrors.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, notEmpty),
		criterio.Run("theme", c.Theme, isTheme),
		criterio.Run("plan", c.Plan, isPlan),
		c.validateNotifications(),
		c.validateGitHub(),
		c.validateAI(),
		c.validateAuth(),
		c.validateDatabase(),
	)
}

func (c *Config) validateNotifications() error {
	var errs criterio.FieldErrorsBuilder
	if c.Notifications.DefaultDuration < 0 {
		errs = errs.Append("notifications.default_duration", errors.New("must not be negative"))
	}
	if c.Notifications.MaxVisible < 1 {
		errs = errs.Append("notifications.max_visible", errors.New("must be at least 1"))
	}
	for i, name := range c.Notifications.Sticky {
		if _, err := notify.ParseKind(name); err != nil {
			errs = errs.Append(fmt.Sprintf("notifications.sticky[%d]", i), err)
		}
	}
	return errs.ToError()
}

func (c *Config) validateGitHub() error {
	var errs criterio.FieldErrorsBuilder
	if err := absoluteURL(c.GitHub.APIURL); err != nil {
		errs = errs.Append("github.api_url", err)
	}
	if c.GitHub.Timeout <= 0 {
		errs = errs.Append("github.timeout", errors.New("must be positive"))
	}
	if c.GitHub.CacheTTL < 0 {
		errs = errs.Append("github.cache_ttl", errors.New("must not be negative"))
	}
	for i, pattern := range c.GitHub.TreeExclude {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("github.tree_exclude[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}
	return errs.ToError()
}

func (c *Config) validateAI() error {
	var errs criterio.FieldErrorsBuilder
	if c.AI.Model == "" {
		errs = errs.Append("ai.model", errors.New("is required"))
	}
	if c.AI.MaxTokens < 1 {
		errs = errs.Append("ai.max_tokens", errors.New("must be at least 1"))
	}
	if c.AI.BaseURL != "" {
		if err := absoluteURL(c.AI.BaseURL); err != nil {
			errs = errs.Append("ai.base_url", err)
		}
	}
	return errs.ToError()
}

func (c *Config) validateAuth() error {
	var errs criterio.FieldErrorsBuilder
	if err := absoluteURL(c.Auth.CallbackURL); err != nil {
		errs = errs.Append("auth.callback_url", err)
	}
	for name := range c.Auth.Providers {
		if !slices.Contains([]string{ProviderGitHub, ProviderGoogle}, name) {
			errs = errs.Append(fmt.Sprintf("auth.providers[%q]", name), errors.New("unsupported provider"))
		}
	}
	return errs.ToError()
}

func (c *Config) validateDatabase() error {
	var errs criterio.FieldErrorsBuilder
	if c.Database.MaxOpenConns < 1 {
		errs = errs.Append("database.max_open_conns", errors.New("must be at least 1"))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = errs.Append("database.max_idle_conns", errors.New("must not be negative"))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", errors.New("must not be negative"))
	}
	return errs.ToError()
}

func notEmpty(s string) error {
	if s == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

func isTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", name, styles.ThemeNames())
	}
	return nil
}

func isPlan(name string) error {
	_, err := plans.ParseTier(name)
	return err
}

func absoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute url, got %q", raw)
	}
	return nil
}
