package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type logEntry map[string]any

func TestLoggerInfoWithFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log = log.WithFields(map[string]any{"run_id": "abc123", "phase": "plan"})
	log.Info("starting reconciliation")

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "starting reconciliation", entry["message"])
	require.Equal(t, "abc123", entry["run_id"])
	require.Equal(t, "plan", entry["phase"])
	require.Equal(t, "info", entry["level"])
}

func TestLoggerWithKind(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log.WithKind("pools").Info("fetched remote state")

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "pools", entry["kind"])
}

func TestLoggerCallRecord(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "debug", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log.Call("PATCH", "/api/v1/pools/etl", 200, 42*time.Millisecond)

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "api call", entry["message"])
	require.Equal(t, "PATCH", entry["method"])
	require.Equal(t, "/api/v1/pools/etl", entry["path"])
	require.Equal(t, float64(200), entry["status"])
}

func TestLoggerDebugRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log.Debug("this should not appear")
	log.Call("GET", "/api/v1/dags", 200, time.Millisecond)
	require.Equal(t, "", strings.TrimSpace(buf.String()))
}

func TestLoggerErrorIncludesContext(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "debug", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log = log.WithKind("connections")
	log.Error(errors.New("boom"), "fetch failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry logEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "fetch failed", entry["message"])
	require.Equal(t, "connections", entry["kind"])
	require.Equal(t, "boom", entry["error"])
}

func TestLoggerNilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var log *Logger
	require.Nil(t, log.WithFields(map[string]any{"a": 1}))
	require.Nil(t, log.WithKind("pools"))
	log.Info("no-op")
	log.Error(errors.New("boom"), "no-op")
}

func TestLoggerRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Level: "chatty"})
	require.Error(t, err)
}
