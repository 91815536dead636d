package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"WARN", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("level "+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, levelFor(tt.input))
		})
	}
}

func TestNew_JSONFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "houseping.log")

	log, err := New(&Config{
		Level:  "warn",
		Format: "json",
		Output: logPath,
	})
	require.NoError(t, err)

	log.Info("sync started", zap.String("area_name", "서울"))
	log.Warn("provider chain exhausted", zap.String("area_name", "서울"))
	require.NoError(t, Sync(log))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	// Only the warn entry survives the level filter
	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "provider chain exhausted", entry["msg"])
	assert.Equal(t, "서울", entry["area_name"])
	assert.NotEmpty(t, entry["time"])
	assert.NotEmpty(t, entry["caller"])
}

func TestNew_NamedLoggerCarriesName(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "houseping.log")

	log, err := New(&Config{Level: "info", Format: "json", Output: logPath})
	require.NoError(t, err)

	log.Named("collector").Info("collection finished")
	require.NoError(t, Sync(log))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "collector", entry["logger"])
}

func TestNew_ConsoleFormat(t *testing.T) {
	log, err := New(&Config{Level: "info", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestOpenSink_UnopenablePathFallsBack(t *testing.T) {
	// A directory cannot be opened for writing; the sink must still work
	sink := openSink(t.TempDir())
	assert.NotNil(t, sink)

	log, err := New(&Config{Level: "info", Format: "json", Output: t.TempDir()})
	require.NoError(t, err)
	log.Info("still logging")
}
