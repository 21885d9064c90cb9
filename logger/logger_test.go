package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json", slog.LevelInfo).With("component", "test")

	ctx := Ctx(context.Background(), slog.String("request_id", "abc"))
	l.InfoContext(ctx, "hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "abc", line["request_id"])
	assert.Equal(t, "test", line["component"])
}

func TestCtx_DoesNotShareAttrs(t *testing.T) {
	base := Ctx(context.Background(), slog.String("a", "1"))

	left := Ctx(base, slog.String("side", "left"))
	right := Ctx(base, slog.String("side", "right"))

	assert.Equal(t, "left", Attrs(left)[1].Value.String())
	assert.Equal(t, "right", Attrs(right)[1].Value.String())
	assert.Len(t, Attrs(base), 1)
}
