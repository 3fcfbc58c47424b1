package main

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daara/internal/backend"
	"daara/internal/cli"
	"daara/internal/config"
	"daara/internal/log"
)

func useBackend(t *testing.T, cleaned *bool) {
	t.Helper()
	orig := openBackend
	t.Cleanup(func() { openBackend = orig })
	openBackend = func(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error) {
		res, err := cli.OpenBackend(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		cleanup := res.Cleanup
		res.Cleanup = func() error {
			*cleaned = true
			return cleanup()
		}
		return res, nil
	}
}

func TestRunCleansUpBackendWhenServerFails(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	t.Setenv("LISTEN_ADDR", busy.Addr().String())
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	var cleaned bool
	useBackend(t, &cleaned)

	assert.Equal(t, 1, run())
	assert.True(t, cleaned, "backend cleanup must run on a server error")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "nowhere")
	t.Setenv("LOG_LEVEL", "error")

	var cleaned bool
	useBackend(t, &cleaned)

	assert.Equal(t, 1, run())
	assert.False(t, cleaned)
}
