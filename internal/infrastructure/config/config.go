// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	pipelineCfg := cfg.Extraction.PipelineConfig()
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orderlens/order-extract-backend/internal/extract/pipeline"
)

// Config represents the entire application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Extraction    ExtractionConfig    `yaml:"extraction"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ExtractionConfig holds the pipeline tunables. Every field is
// optional; an empty field keeps the compiled-in default for the known
// page layout. Selector and pattern lists live here rather than in code
// because the page changes without notice.
type ExtractionConfig struct {
	GlobalStateNames     []string `yaml:"global_state_names"`
	PageDataNames        []string `yaml:"page_data_names"`
	StatePaths           []string `yaml:"state_paths"` // dot-separated, e.g. "props.pageProps.orders"
	OrderSelectors       []string `yaml:"order_selectors"`
	ItemSelectors        []string `yaml:"item_selectors"`
	ProductNameSelectors []string `yaml:"product_name_selectors"`
	ProductLinkSelectors []string `yaml:"product_link_selectors"`
	ExpandSelectors      []string `yaml:"expand_selectors"`
	FilterKeywords       []string `yaml:"filter_keywords"`
	NonItemMarkers       []string `yaml:"non_item_markers"`
	SettleWaitMS         int      `yaml:"settle_wait_ms"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PipelineConfig merges the configured overrides onto the pipeline
// defaults.
func (c ExtractionConfig) PipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()

	if len(c.GlobalStateNames) > 0 {
		cfg.GlobalStateNames = c.GlobalStateNames
	}
	if len(c.PageDataNames) > 0 {
		cfg.PageDataNames = c.PageDataNames
	}
	if len(c.StatePaths) > 0 {
		paths := make([][]string, 0, len(c.StatePaths))
		for _, p := range c.StatePaths {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, strings.Split(p, "."))
			}
		}
		cfg.StatePaths = paths
	}
	if len(c.OrderSelectors) > 0 {
		cfg.Selectors.Order = c.OrderSelectors
	}
	if len(c.ItemSelectors) > 0 {
		cfg.Selectors.Item = c.ItemSelectors
	}
	if len(c.ProductNameSelectors) > 0 {
		cfg.Selectors.ProductName = c.ProductNameSelectors
	}
	if len(c.ProductLinkSelectors) > 0 {
		cfg.Selectors.ProductLink = c.ProductLinkSelectors
	}
	if len(c.ExpandSelectors) > 0 {
		cfg.Selectors.Expand = c.ExpandSelectors
	}
	if len(c.FilterKeywords) > 0 {
		cfg.FilterKeywords = c.FilterKeywords
	}
	if len(c.NonItemMarkers) > 0 {
		cfg.NonItemMarkers = c.NonItemMarkers
	}
	if c.SettleWaitMS > 0 {
		cfg.SettleWait = time.Duration(c.SettleWaitMS) * time.Millisecond
	}
	return cfg
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${ORDERLENS_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnvInt("ORDERLENS_PORT", 8080),
			AllowedOrigins: splitEnv("ORDERLENS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("ORDERLENS_DB_PATH", "orderlens.db"),
		},
		Extraction: ExtractionConfig{
			SettleWaitMS: getEnvInt("ORDERLENS_SETTLE_WAIT_MS", 0),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// splitEnv retrieves a comma-separated environment variable as a list
func splitEnv(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(val, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
