package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8000", c.APIBaseURL)
	assert.Equal(t, "ws://127.0.0.1:8000", c.WSBaseURL)
	assert.Equal(t, BackendSQLite, c.StoreBackend)
	assert.Equal(t, "mobank.db", c.StorePath)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, 2*time.Second, c.ReconnectDelay)
	assert.True(t, c.SeedRecipients)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.StoreSecret)
	assert.False(t, c.AvatarsEnabled())
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Chdir(t.TempDir())

	path := writeTempJSON(t, "", "cfg.json", map[string]any{
		"api_base_url": "https://json.example",
		"store_path":   "json.db",
	})
	t.Setenv("MOBANK_API_URL", "https://env.example")
	t.Setenv("MOBANK_WS_URL", "wss://env.example")
	t.Setenv("MOBANK_STORE_PATH", "env.db")

	os.Args = []string{"cmd", "-c", path, "-d", "flag.db"}
	cfg := LoadConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "https://json.example", cfg.APIBaseURL)
	assert.Equal(t, "wss://env.example", cfg.WSBaseURL)
	assert.Equal(t, "flag.db", cfg.StorePath)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Chdir(t.TempDir())

	require.NoError(t, os.WriteFile(".env", []byte("MOBANK_LOG_LEVEL=debug\nMOBANK_SEED_RECIPIENTS=false\n"), 0o600))
	t.Setenv("MOBANK_LOG_LEVEL", "warn")
	// registered for restore; godotenv fills it from the file
	t.Setenv("MOBANK_SEED_RECIPIENTS", "")
	require.NoError(t, os.Unsetenv("MOBANK_SEED_RECIPIENTS"))

	os.Args = []string{"cmd"}
	cfg := LoadConfig()

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.SeedRecipients)
}
