package profiler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	server := New(0, zerolog.Nop())
	require.NoError(t, server.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})
	return server
}

func TestServer_binds_loopback(t *testing.T) {
	assert.Empty(t, New(0, zerolog.Nop()).Addr())

	server := startServer(t)
	assert.True(t, strings.HasPrefix(server.Addr(), "127.0.0.1:"), server.Addr())
}

func TestServer_pprof_endpoints(t *testing.T) {
	server := startServer(t)
	base := "http://" + server.Addr()

	for _, endpoint := range []string{
		"/debug/pprof/",
		"/debug/pprof/cmdline",
		"/debug/pprof/symbol",
		"/debug/pprof/profile?seconds=1",
	} {
		t.Run(endpoint, func(t *testing.T) {
			resp, err := http.Get(base + endpoint)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestServer_port_in_use(t *testing.T) {
	first := startServer(t)

	_, port, found := strings.Cut(first.Addr(), ":")
	require.True(t, found)

	p, err := strconv.Atoi(port)
	require.NoError(t, err)

	err = New(p, zerolog.Nop()).Start(context.Background())
	require.Error(t, err)
}
