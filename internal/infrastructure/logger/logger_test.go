package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rental/backoffice/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFromAppConfig(t *testing.T) {
	c := FromAppConfig(config.LogConfig{Level: "debug", Format: "json"})
	assert.Equal(t, "debug", c.Level)
	assert.Equal(t, "json", c.Format)
	assert.Equal(t, "stdout", c.Output)

	d := FromAppConfig(config.LogConfig{})
	assert.Equal(t, DefaultConfig(), d)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info("Quotation submitted", zap.Int64("quotation_id", 7))
	log.Debug("dropped below level")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Quotation submitted"`)
	assert.Contains(t, string(data), `"quotation_id":7`)
	assert.NotContains(t, string(data), "dropped below level")
}

func TestNew_UnwritableFile(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}

func TestNew_ConsoleEncoder(t *testing.T) {
	log, err := New(&Config{Level: "debug", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
