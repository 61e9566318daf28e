package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects the logger to a buffer and restores it on cleanup.
func capture(t *testing.T, lvl, fmtName string) *bytes.Buffer {
	t.Helper()

	mu.RLock()
	origOut, origColor, origFormat := output, useColor, format
	mu.RUnlock()
	origLevel := level.Level()

	buf := new(bytes.Buffer)
	InitWithWriter(buf, lvl, fmtName, false)

	t.Cleanup(func() {
		level.Set(origLevel)
		InitWithWriter(origOut, "", origFormat, origColor)
	})
	return buf
}

func TestLevelFiltering(t *testing.T) {
	t.Run("debug shows everything", func(t *testing.T) {
		buf := capture(t, "DEBUG", "text")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		out := buf.String()
		for _, s := range []string{"[DEBUG] debug message", "[INFO] info message", "[WARN] warn message", "[ERROR] error message"} {
			assert.Contains(t, out, s)
		}
	})

	t.Run("warn hides debug and info", func(t *testing.T) {
		buf := capture(t, "WARN", "text")

		Debug("debug message")
		Info("info message")
		Warn("warn message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.NotContains(t, out, "info message")
		assert.Contains(t, out, "warn message")
	})

	t.Run("error is never filtered", func(t *testing.T) {
		buf := capture(t, "ERROR", "text")

		Warn("warn message")
		Error("error message")

		assert.NotContains(t, buf.String(), "warn message")
		assert.Contains(t, buf.String(), "error message")
	})
}

func TestSetLevel_Invalid(t *testing.T) {
	_ = capture(t, "INFO", "text")

	err := SetLevel("LOUD")
	assert.Error(t, err)
	assert.True(t, Enabled(slog.LevelInfo))
	assert.False(t, Enabled(slog.LevelDebug))
}

func TestTextFormat_Attributes(t *testing.T) {
	buf := capture(t, "INFO", "text")

	Info("mapped", KeyKind, "uid", KeySourceID, 501, KeyName, "alice smith")

	line := buf.String()
	assert.Contains(t, line, "kind=uid")
	assert.Contains(t, line, "source_id=501")
	assert.Contains(t, line, `name="alice smith"`)
}

func TestTextFormat_GroupsAndWith(t *testing.T) {
	buf := capture(t, "INFO", "text")

	With(KeySessionID, "s1").WithGroup("table").Info("loaded", KeyRecords, 3)

	line := buf.String()
	assert.Contains(t, line, "session_id=s1")
	assert.Contains(t, line, "table.records=3")
}

func TestJSONFormat(t *testing.T) {
	buf := capture(t, "INFO", "json")

	Info("resolved", KeySourceID, 501, KeyResolvedID, 700)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "resolved", rec["msg"])
	assert.Equal(t, float64(501), rec[KeySourceID])
	assert.Equal(t, float64(700), rec[KeyResolvedID])
}

func TestContextFields(t *testing.T) {
	buf := capture(t, "DEBUG", "text")

	lc := NewLogContext("abc-123", "receiver")
	ctx := WithContext(context.Background(), lc.WithTrace("t-1"))

	DebugCtx(ctx, "decoding")
	InfoCtx(context.Background(), "no context")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "trace_id=t-1")
	assert.Contains(t, lines[0], "session_id=abc-123")
	assert.Contains(t, lines[0], "role=receiver")
	assert.NotContains(t, lines[1], "session_id")
}

func TestLogContext_CloneIsIndependent(t *testing.T) {
	lc := NewLogContext("s", "sender")
	other := lc.WithRole("receiver")

	assert.Equal(t, "sender", lc.Role)
	assert.Equal(t, "receiver", other.Role)
	assert.Nil(t, (*LogContext)(nil).Clone())
	assert.Zero(t, (*LogContext)(nil).DurationMs())
}

func TestErrAttr(t *testing.T) {
	buf := capture(t, "INFO", "text")

	Info("with error", Err(errors.New("boom")))
	Info("without error", Err(nil))

	out := buf.String()
	assert.Contains(t, out, "error=boom")
	assert.NotContains(t, strings.Split(out, "\n")[1], "error=")
}

func TestInit_FileOutput(t *testing.T) {
	_ = capture(t, "INFO", "text")
	path := t.TempDir() + "/sync.log"

	require.NoError(t, Init(Config{Level: "INFO", Format: "text", Output: path}))
	t.Cleanup(func() {
		mu.Lock()
		if closer != nil {
			_ = closer.Close()
			closer = nil
		}
		mu.Unlock()
	})

	Info("to file")
	assert.Error(t, Init(Config{Format: "xml"}))
}
