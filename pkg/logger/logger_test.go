package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tse-screener/pkg/config"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output: %s", buf.String())
	return entry
}

func TestNewWithWriter_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(&buf, &config.Config{Env: "test", LogLevel: tt.level, LogFormat: "json"})
			require.NotNil(t, log)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, &config.Config{Env: "test", LogLevel: "debug", LogFormat: "json"})

	log.Module("s2_quotes").WithFields(map[string]interface{}{
		"batch": 2,
		"size":  100,
	}).Warnf("batch %d failed", 2)

	entry := decode(t, &buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "batch 2 failed", entry["message"])
	assert.Equal(t, "s2_quotes", entry["module"])
	assert.Equal(t, float64(2), entry["batch"])
	assert.Equal(t, "test", entry["env"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, &config.Config{Env: "test", LogLevel: "debug", LogFormat: "json"})

	log.WithError(errors.New("master list unavailable")).Error("universe load failed")

	entry := decode(t, &buf)
	assert.Equal(t, "master list unavailable", entry["error"])
	assert.Equal(t, "universe load failed", entry["message"])
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, &config.Config{Env: "test", LogLevel: "info", LogFormat: "console"})

	log.Debug("hidden")
	log.Info("snapshot written")

	out := buf.String()
	assert.True(t, strings.Contains(out, "snapshot written"))
	assert.False(t, strings.Contains(out, "hidden"))
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.WithField("k", "v").Info("discarded")
		log.Errorf("discarded %d", 1)
	})
}
