package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTagsComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentStore, Output: buf})

	logger.Info("loaded", FieldCount, 3)
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "component=store")
	assert.Contains(t, out, "count=3")
	assert.NotContains(t, out, "hidden")
}

func TestWithComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Output: buf}).WithComponent(ComponentHTTP)

	assert.Equal(t, ComponentHTTP, logger.Component())
	logger.Warn("slow")
	assert.Contains(t, buf.String(), "component=http")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Output: buf})
	ctx := WithContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	fallback := FromContext(context.Background())
	assert.Equal(t, "unknown", fallback.Component())
}

func TestRequestIDMiddleware(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Output: buf})

	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, buf.String(), "request_id=req-1")
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithOperation(OpLoad).
		WithBackend("demo").
		WithError(errors.New("boom")).
		WithHTTP(http.MethodGet, "/api/transactions", 500, 12)

	assert.Equal(t, OpLoad, f[FieldOperation])
	assert.Equal(t, "boom", f[FieldError])
	assert.Equal(t, false, f[FieldSuccess])
	assert.Len(t, f.ToSlice(), len(f)*2)

	assert.NotContains(t, NewFields().WithError(nil), FieldError)
}
