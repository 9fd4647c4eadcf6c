package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONSlog(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug, ReplaceAttr: redactAttr})
	return NewSlogLogger(slog.New(h)), &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newJSONSlog(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	got := lines(t, buf)
	require.Len(t, got, 4)

	want := []struct{ level, msg, key string }{
		{"DEBUG", "dbg", "a"},
		{"INFO", "inf", "b"},
		{"WARN", "wrn", "c"},
		{"ERROR", "err", "d"},
	}
	for i, w := range want {
		assert.Equal(t, w.level, got[i]["level"])
		assert.Equal(t, w.msg, got[i]["msg"])
		assert.Contains(t, got[i], w.key)
	}
}

func TestSlogLogger_WithAndRedaction(t *testing.T) {
	log, buf := newJSONSlog(t)

	log.With("module", "grpc_server").Info(context.Background(), "login", "user", "bob", "password", "pw1", "token", "abc")

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "grpc_server", got[0]["module"])
	assert.Equal(t, "bob", got[0]["user"])
	assert.Equal(t, Redacted, got[0]["password"])
	assert.Equal(t, Redacted, got[0]["token"])
	assert.NotContains(t, buf.String(), "pw1")
}

func TestSlogLogger_NilContext(t *testing.T) {
	log, _ := newJSONSlog(t)

	assert.NotPanics(t, func() { log.Info(nil, "no ctx") })
}
