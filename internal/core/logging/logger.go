// Package logging holds the zerolog conventions shared by every repoza
// component: component-scoped loggers and context fields.
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Install makes l the global logger, attaching ContextHook so events logged
// with Ctx pick up the repo and command fields.
func Install(l zerolog.Logger) {
	log.Logger = l.Hook(ContextHook{})
	zerolog.DefaultContextLogger = &log.Logger
}

// Component creates a logger tagged with "cmp" set to name.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}
