package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, "https://histock.tw", cfg.Clients.HiStock.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Clients.HiStock.GetTimeout())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("does/not/exist.toml")
	require.NoError(t, err)
	assert.Equal(t, 5001, cfg.Server.Port)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "twindex.toml")
	content := `
environment = "production"

[server]
port = 9000

[clients.histock]
base_url = "https://mirror.example.com"
timeout = "5s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "https://mirror.example.com", cfg.Clients.HiStock.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Clients.HiStock.GetTimeout())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TWINDEX_PORT", "8088")
	t.Setenv("TWINDEX_LOG_LEVEL", "debug")
	t.Setenv("TWINDEX_HISTOCK_URL", "http://localhost:9999")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "http://localhost:9999", cfg.Clients.HiStock.BaseURL)
}

func TestLoadConfig_PaaSPortHonored(t *testing.T) {
	t.Setenv("PORT", "7070")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestHiStockConfig_GetTimeoutFallback(t *testing.T) {
	cfg := HiStockConfig{Timeout: "not-a-duration"}
	assert.Equal(t, 10*time.Second, cfg.GetTimeout())
}
