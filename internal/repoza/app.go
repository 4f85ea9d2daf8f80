// Package repoza wires the core services together for commands and the TUI.
package repoza

import (
	"context"
	"fmt"
	"time"

	"github.com/Meet0105/repoza-sub001/internal/core/ai"
	"github.com/Meet0105/repoza-sub001/internal/core/auth"
	"github.com/Meet0105/repoza-sub001/internal/core/config"
	"github.com/Meet0105/repoza-sub001/internal/core/github"
	"github.com/Meet0105/repoza-sub001/internal/core/logging"
	"github.com/Meet0105/repoza-sub001/internal/core/notify"
	"github.com/Meet0105/repoza-sub001/internal/core/plans"
	"github.com/Meet0105/repoza-sub001/internal/data/db"
	"github.com/Meet0105/repoza-sub001/internal/data/stores"
)

// BuildInfo is build-time metadata.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// String formats the version for --version output.
func (b BuildInfo) String() string {
	short := b.Commit
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s) %s", b.Version, short, b.Date)
}

// App is the central entry point for repoza operations. Commands and the TUI
// consume App instead of cherry-picking raw dependencies.
type App struct {
	Config *config.Config
	DB     *db.DB
	KV     *stores.KVStore
	Usage  *stores.UsageStore
	Meter  *plans.Meter

	GitHub *github.Client
	AI     *ai.Client
	SignIn *auth.SignIn
	Tokens *auth.Tokens

	Build BuildInfo
}

// NewApp constructs an App. When no GitHub token is configured, a token saved
// by `repoza signin` is used instead.
func NewApp(ctx context.Context, cfg *config.Config, database *db.DB, build BuildInfo) *App {
	kvStore := stores.NewKVStore(database)
	usage := stores.NewUsageStore(database)
	tokens := auth.NewTokens(kvStore)

	ghCfg := cfg.GitHub
	if ghCfg.Token == "" {
		if tok, ok, err := tokens.Load(ctx, config.ProviderGitHub); err == nil && ok {
			ghCfg.Token = tok.AccessToken
			logging.Component("app").Debug().Msg("using signed-in github token")
		}
	}

	return &App{
		Config: cfg,
		DB:     database,
		KV:     kvStore,
		Usage:  usage,
		Meter:  plans.NewMeter(cfg.Tier(), usage),
		GitHub: github.New(ghCfg,
			github.WithCache(kvStore, cfg.GitHub.CacheTTL),
			github.WithLogger(logging.Component("github")),
		),
		AI:     ai.New(cfg.AI, ai.WithLogger(logging.Component("ai"))),
		SignIn: auth.New(cfg.Auth, auth.WithLogger(logging.Component("auth"))),
		Tokens: tokens,
		Build:  build,
	}
}

// NewQueue creates a notification queue logging under the notify component.
func (a *App) NewQueue() *notify.Queue {
	return notify.New(notify.WithLogger(logging.Component("notify")))
}

// ToastDuration is the configured default expiry for toasts.
func (a *App) ToastDuration() time.Duration {
	return a.Config.Notifications.DefaultDuration
}

// AIConfigured reports whether an API key is available for AI features.
func (a *App) AIConfigured() bool {
	return a.Config.AI.APIKey != ""
}
