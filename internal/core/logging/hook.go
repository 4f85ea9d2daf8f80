package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts repo and command from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if repo := GetRepo(ctx); repo != "" {
		e.Str("repo", repo)
	}

	if cmd := GetCommand(ctx); cmd != "" {
		e.Str("command", cmd)
	}
}
