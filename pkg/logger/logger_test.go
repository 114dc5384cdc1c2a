package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/salesdash/pkg/logger"
)

func TestSetupProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger.Setup("production", &buf)
	t.Cleanup(func() { logger.Setup("local", os.Stdout) })

	logger.Info("hello", "month", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.EqualValues(t, 3, line["month"])
}

func TestWithCtxReturnsInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logger.Setup("production", &buf)
	t.Cleanup(func() { logger.Setup("local", os.Stdout) })

	assert.Same(t, base, logger.WithCtx(context.Background()))

	tagged := base.With("request_id", "abc")
	ctx := logger.InjectLogger(context.Background(), tagged)
	logger.WithCtx(ctx).Info("tagged")

	assert.Contains(t, buf.String(), `"request_id":"abc"`)
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := logger.NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h)

	log.Info("info only")
	log.Error("both")

	assert.Contains(t, a.String(), "info only")
	assert.Contains(t, a.String(), "both")
	assert.NotContains(t, b.String(), "info only")
	assert.Contains(t, b.String(), "both")
}
