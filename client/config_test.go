package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"SNAKE_SERVER_URL", "SNAKE_PLAYER_ID", "SNAKE_HANDSHAKE_TIMEOUT", "SNAKE_SEND_QUEUE", "SNAKE_DEBUG_ADDR"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, DefaultHandshakeTimeout, cfg.HandshakeTimeout)
	assert.Equal(t, DefaultSendQueue, cfg.SendQueue)
	_, err = uuid.Parse(cfg.PlayerID)
	assert.NoError(t, err, "default player id is a uuid")
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("SNAKE_SERVER_URL", "ws://example.test/ws")
	t.Setenv("SNAKE_PLAYER_ID", "bob")
	t.Setenv("SNAKE_HANDSHAKE_TIMEOUT", "250ms")
	t.Setenv("SNAKE_SEND_QUEUE", "8")
	t.Setenv("SNAKE_DEBUG_ADDR", ":6060")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "ws://example.test/ws", cfg.ServerURL)
	assert.Equal(t, "bob", cfg.PlayerID)
	assert.Equal(t, 250*time.Millisecond, cfg.HandshakeTimeout)
	assert.Equal(t, 8, cfg.SendQueue)
	assert.Equal(t, ":6060", cfg.DebugAddr)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	t.Setenv("SNAKE_PLAYER_ID", "")
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SNAKE_LOG_LEVEL=warn\n"), 0o600))
	t.Setenv("SNAKE_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("SNAKE_LOG_LEVEL"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SNAKE_HANDSHAKE_TIMEOUT", "soon"},
		{"SNAKE_SEND_QUEUE", "0"},
		{"SNAKE_SEND_QUEUE", "many"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestInitLogger_File(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "client.log")
	require.NoError(t, InitLogger(path, "info"))
	Log.Debugw("hidden")
	Log.Infow("visible", "player", "me")
	SyncLogger()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "visible")
	assert.NotContains(t, string(b), "hidden")
}
