package cli

import (
	"bytes"
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger_UnknownLevelWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger("api", "loud", &buf)

	assert.Equal(t, "api", logger.Component())
	assert.Contains(t, buf.String(), "Unknown LOG_LEVEL")
}

func TestShutdownOn_RunsCleanup(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger("test", "info", &buf)

	sig := make(chan os.Signal, 1)
	cleaned := make(chan struct{})
	ctx, done := shutdownOn(sig, logger, time.Second, func(ctx context.Context) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		close(cleaned)
	})

	sig <- syscall.SIGTERM
	WaitForShutdown(ctx, done)

	require.Error(t, ctx.Err())
	select {
	case <-cleaned:
	default:
		t.Fatal("cleanup did not run")
	}
	assert.Contains(t, buf.String(), "Shutdown complete")
}

func TestShutdownOn_Timeout(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger("test", "info", &buf)

	sig := make(chan os.Signal, 1)
	ctx, done := shutdownOn(sig, logger, 10*time.Millisecond, func(ctx context.Context) {
		<-ctx.Done()
	})

	sig <- syscall.SIGINT
	WaitForShutdown(ctx, done)
	assert.Contains(t, buf.String(), "Shutdown timeout reached")
}
