package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	// Set environment variables
	os.Setenv("ORDERLENS_DB_PATH", "test.db")
	os.Setenv("ORDERLENS_PORT", "9090")
	defer func() {
		os.Unsetenv("ORDERLENS_DB_PATH")
		os.Unsetenv("ORDERLENS_PORT")
	}()

	cfg := LoadFromEnv()
	assert.NotNil(t, cfg)
	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	// Clear environment variables
	os.Unsetenv("ORDERLENS_DB_PATH")
	os.Unsetenv("ORDERLENS_PORT")
	os.Unsetenv("ORDERLENS_ALLOWED_ORIGINS")

	cfg := LoadFromEnv()
	assert.NotNil(t, cfg)
	assert.Equal(t, "orderlens.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Contains(t, cfg.Server.AllowedOrigins, "http://localhost:3000")
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	// Test fallback when config file doesn't exist
	os.Setenv("ORDERLENS_DB_PATH", "fallback.db")
	defer os.Unsetenv("ORDERLENS_DB_PATH")

	// Try to load from non-existent file
	cfg := LoadOrEnv_WithPath("nonexistent.yaml")
	assert.NotNil(t, cfg)
	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
}

func TestEnvVarExpansion(t *testing.T) {
	// Create temp config file with env vars
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
storage:
  database_path: "${TEST_DB_PATH}"
server:
  port: 8081
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Set env vars
	os.Setenv("TEST_DB_PATH", "expanded.db")
	defer os.Unsetenv("TEST_DB_PATH")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "expanded.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 8081, cfg.Server.Port)
}

func TestLoadExtractionOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
extraction:
  global_state_names: ["__APP_STATE__"]
  state_paths: ["props.pageProps.orders", "order.orders"]
  order_selectors: [".purchase-card"]
  settle_wait_ms: 250
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	pc := cfg.Extraction.PipelineConfig()
	assert.Equal(t, []string{"__APP_STATE__"}, pc.GlobalStateNames)
	assert.Equal(t, [][]string{{"props", "pageProps", "orders"}, {"order", "orders"}}, pc.StatePaths)
	assert.Equal(t, []string{".purchase-card"}, pc.Selectors.Order)
	assert.Equal(t, 250*time.Millisecond, pc.SettleWait)
}

func TestPipelineConfigKeepsDefaults(t *testing.T) {
	// An empty extraction section must not erase the built-in layout
	pc := ExtractionConfig{}.PipelineConfig()
	assert.NotEmpty(t, pc.GlobalStateNames)
	assert.NotEmpty(t, pc.Selectors.Order)
	assert.NotEmpty(t, pc.FilterKeywords)
	assert.Equal(t, 1500*time.Millisecond, pc.SettleWait)
}
