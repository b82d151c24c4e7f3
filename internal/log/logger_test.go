package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerRejectsUnknownSettings(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, "yaml", LogLevelInfo)
	require.Error(t, err)

	_, err = NewLogger(&bytes.Buffer{}, LogFormatJSON, "verbose")
	require.Error(t, err)
}

func TestJSONLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LogFormatJSON, LogLevelDebug)
	require.NoError(t, err)

	logger.With("module", "server").Info("parsed query", "mode", "phrase", "errors", 0)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "parsed query", entry["message"])
	assert.Equal(t, "server", entry["module"])
	assert.Equal(t, "phrase", entry["mode"])
	assert.EqualValues(t, 0, entry["errors"])
	assert.Contains(t, entry, "time")
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LogFormatJSON, LogLevelError)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Error("shown", "err", "boom")
	assert.Contains(t, buf.String(), `"shown"`)
}

func TestPlainLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LogFormatPlain, LogLevelInfo)
	require.NoError(t, err)

	logger.Info("listening", "addr", ":8080")
	out := buf.String()
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "listening")
	assert.Contains(t, out, "addr=:8080")
}

func TestDanglingKey(t *testing.T) {
	fields := getLogFields("a", 1, "b")
	assert.Equal(t, map[string]interface{}{"a": 1, "b": nil}, fields)
	assert.Nil(t, getLogFields())
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.With("k", "v").Error("nothing happens")
}
