package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	context_ "github.com/mkrupp/homecase-accounts/internal/infra/context"
	"github.com/mkrupp/homecase-accounts/internal/infra/logging"
)

func newConsoleLogger(buf *bytes.Buffer, filter map[string]slog.Level) *slog.Logger {
	//nolint:exhaustruct
	handler := &logging.ConsoleHandler{
		Output:    buf,
		Level:     slog.LevelDebug,
		PkgLevels: filter,
		Palette:   logging.NewPalette(false),
	}

	return slog.New(logging.NewTracingHandler(handler))
}

func TestConsoleHandler_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	log := newConsoleLogger(&buf, nil).With("logger", "svc.authsvc")
	log.InfoContext(context.Background(), "user registered", slog.Group("user", "username", "alice"))

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "user registered")
	assert.Contains(t, out, "user.username=alice")
	assert.Contains(t, out, "logger=svc.authsvc")
	assert.NotContains(t, out, "\033[", "colors disabled")
}

func TestConsoleHandler_PkgFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	base := newConsoleLogger(&buf, map[string]slog.Level{
		"repo":        slog.LevelWarn,
		"svc.authsvc": slog.LevelDebug,
	})

	ctx := context.Background()

	base.With("logger", "repo.user.sqlite").InfoContext(ctx, "hidden")
	base.With("logger", "repo.user.sqlite").WarnContext(ctx, "shown-warn")
	base.With("logger", "svc.authsvc.auth_gateway").DebugContext(ctx, "shown-debug")
	base.With("logger", "infra.http").DebugContext(ctx, "unfiltered")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown-warn")
	assert.Contains(t, out, "shown-debug")
	assert.Contains(t, out, "unfiltered")
}

func TestTracingHandler_AddsRequestAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := context_.WithTraceID(context.Background(), "trace-123")
	ctx = context_.WithUsername(ctx, "alice")

	newConsoleLogger(&buf, nil).InfoContext(ctx, "request")

	out := buf.String()
	assert.Contains(t, out, "trace.id=trace-123")
	assert.Contains(t, out, "auth.username=alice")
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	log := logging.NewNopLogger()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestConfigure_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	//nolint:exhaustruct
	logging.Configure(context.Background(), logging.LoggerConfig{
		Output: path,
		Level:  "warn",
		Filter: "svc.authsvc:debug, bogus ,:info",
	}, "accounts.test")
	t.Cleanup(func() {
		//nolint:exhaustruct
		logging.Configure(context.Background(), logging.LoggerConfig{Output: "discard"}, "")
	})

	ctx := context.Background()
	logging.GetLogger("repo.user").InfoContext(ctx, "below-threshold")
	logging.GetLogger("repo.user").WarnContext(ctx, "at-threshold")
	logging.GetLogger("svc.authsvc.auth_gateway").DebugContext(ctx, "filtered-in")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(data)
	assert.NotContains(t, out, "below-threshold")
	assert.Contains(t, out, "at-threshold")
	assert.Contains(t, out, "filtered-in")
	assert.Contains(t, out, "app=accounts.test")
}

func TestGetLogger_DiscardOutput(t *testing.T) {
	//nolint:exhaustruct
	logging.Configure(context.Background(), logging.LoggerConfig{Output: "discard", Level: "debug"}, "")

	assert.False(t, logging.GetLogger("any").Enabled(context.Background(), slog.LevelError))
}
