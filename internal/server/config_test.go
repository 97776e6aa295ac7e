package server

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Tyrowin/gochat-relay/internal/chat"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, ":1337", cfg.Port)
	assert.Equal(t, []string{"http://localhost:1337"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(512), cfg.MaxMessageSize)
	assert.Equal(t, chat.DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, 256, cfg.SendBufferSize)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("ALLOWED_ORIGINS", " http://a.example , https://b.example ")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("HISTORY_LIMIT", "20")
	t.Setenv("SEND_BUFFER_SIZE", "32")
	t.Setenv("SHUTDOWN_TIMEOUT", "9")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg := NewConfigFromEnv()

	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, []string{"http://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(1024), cfg.MaxMessageSize)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.Equal(t, 32, cfg.SendBufferSize)
	assert.Equal(t, 9*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestNewConfigFromEnvInvalidValues(t *testing.T) {
	t.Setenv("MAX_MESSAGE_SIZE", "-1")
	t.Setenv("HISTORY_LIMIT", "lots")
	t.Setenv("SEND_BUFFER_SIZE", "0")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("LOG_LEVEL", "chatty")

	cfg := NewConfigFromEnv()
	defaults := defaultConfig()

	assert.Equal(t, defaults.MaxMessageSize, cfg.MaxMessageSize)
	assert.Equal(t, defaults.HistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, defaults.SendBufferSize, cfg.SendBufferSize)
	assert.Equal(t, defaults.ShutdownTimeout, cfg.ShutdownTimeout)
	assert.Equal(t, defaults.LogLevel, cfg.LogLevel)
}

func TestSanitizeConfig(t *testing.T) {
	origins := []string{"http://a.example"}
	cfg := sanitizeConfig(Config{AllowedOrigins: origins, LogFormat: "yaml"})

	assert.Equal(t, ":1337", cfg.Port)
	assert.Equal(t, int64(512), cfg.MaxMessageSize)
	assert.Equal(t, chat.DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, 256, cfg.SendBufferSize)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "text", cfg.LogFormat)

	cfg.AllowedOrigins[0] = "changed"
	assert.Equal(t, "http://a.example", origins[0], "sanitized config must not alias caller slices")
}

func TestConfigNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{LogLevel: slog.LevelWarn, LogFormat: "json"}
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"key":"value"`)
}
