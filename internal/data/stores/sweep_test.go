package stores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSweeper_RemovesExpired(t *testing.T) {
	store := newTestKVStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, store.SetTTL(ctx, "stale", "x", time.Millisecond))

	done := make(chan struct{})
	go func() {
		StartSweeper(ctx, store, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		var n int
		err := store.db.Conn().QueryRow(`SELECT COUNT(*) FROM kv_store`).Scan(&n)
		return err == nil && n == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
