package testenv

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ExampleNewTestLogHandler() {
	logger := slog.New(NewTestLogHandler())

	logger.Info("GET service document", "status", 200)
	logger.Warn("CMIS error", "status", 404, "url", "/entry/doc-1")

	// Output:
	// [0] INFO: GET service document status=200
	// [1] WARN: CMIS error status=404, url=/entry/doc-1
}

func ExampleNewTestLogHandler_withAttrsAndGroup() {
	logger := slog.New(NewTestLogHandler())

	logger.
		With(slog.String("repository", "repo-1")).
		WithGroup("request").
		With(slog.String("method", "POST")).
		Info("created", slog.Int("status", 201))

	// Output:
	// [0] INFO: created repository=repo-1, request.method=POST, request.status=201
}

func ExampleNewTestLogHandlerWithOptions_ignorePrefixes() {
	logger := slog.New(NewTestLogHandlerWithOptions(
		WithIgnorePrefixes("CMIS error"),
	))

	logger.Warn("CMIS error", "status", 404)
	logger.Error("CMIS error", "status", 500)
	logger.Info("CMIS error is only filtered above info")

	// Output:
	// [0] INFO: CMIS error is only filtered above info
}

func TestTestLogHandler_Output(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewTestLogHandlerWithOptions(WithOutput(&buf), WithIgnoreDebug()))

	logger.Debug("dropped")
	logger.Info("first")
	logger.With("id", "folder-1").Info("second")
	logger.WithGroup("").Info("third", slog.Group("page", slog.Int("skip", 2), slog.Int("max", 10)))

	assert.Equal(t,
		"[0] INFO: first\n"+
			"[1] INFO: second id=folder-1\n"+
			"[2] INFO: third page.skip=2, page.max=10\n",
		buf.String())
}

func TestTestLogHandler_Enabled(t *testing.T) {
	ctx := context.Background()
	require.True(t, NewTestLogHandler().Enabled(ctx, slog.LevelDebug))
	require.False(t, NewTestLogHandlerWithOptions(WithIgnoreDebug()).Enabled(ctx, slog.LevelDebug))
	require.True(t, NewTestLogHandlerWithOptions(WithIgnoreDebug()).Enabled(ctx, slog.LevelInfo))
}
