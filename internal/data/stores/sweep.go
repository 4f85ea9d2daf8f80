package stores

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StartSweeper periodically deletes expired KV entries.
// It blocks until the context is cancelled.
func StartSweeper(ctx context.Context, kvStore *KVStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := kvStore.SweepExpired(ctx); err != nil {
				log.Debug().Err(err).Msg("kv sweep failed")
			}
		}
	}
}
