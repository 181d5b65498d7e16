package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LocalConfig holds configuration for the local daemon
type LocalConfig struct {
	Daemon  DaemonConfig  `yaml:"daemon"`
	Catalog CatalogConfig `yaml:"catalog"`
	Storage StorageConfig `yaml:"storage"`
	Runner  RunnerConfig  `yaml:"runner"`
}

// DaemonConfig holds daemon server settings
type DaemonConfig struct {
	Port     int    `yaml:"port"`
	Bind     string `yaml:"bind"`
	LogLevel string `yaml:"log_level"`
}

// CatalogConfig holds problem catalog settings. An empty path means the
// catalog compiled into the binary.
type CatalogConfig struct {
	Path string `yaml:"path,omitempty"`
}

// StorageConfig holds persistence paths. Empty values resolve to the
// defaults under ~/.codeforge.
type StorageConfig struct {
	DataDir     string `yaml:"data_dir,omitempty"`
	ArchivePath string `yaml:"archive_path,omitempty"`
}

// RunnerConfig holds code execution settings
type RunnerConfig struct {
	LatencyMs  int              `yaml:"latency_ms"`
	PassRate   float64          `yaml:"pass_rate"`
	Resilience ResilienceConfig `yaml:"resilience"`
}

// ResilienceConfig toggles the fortify patterns around the executor
type ResilienceConfig struct {
	CircuitBreaker bool `yaml:"circuit_breaker"`
	Retry          bool `yaml:"retry"`
	Bulkhead       bool `yaml:"bulkhead"`
	RateLimit      bool `yaml:"rate_limit"`
	MaxConcurrent  int  `yaml:"max_concurrent"`
	RatePerSecond  int  `yaml:"rate_per_second"`
}

// CodeforgeDir returns the path to ~/.codeforge
func CodeforgeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".codeforge"), nil
}

// EnsureCodeforgeDir creates ~/.codeforge and its subdirectories if they
// don't exist.
func EnsureCodeforgeDir() (string, error) {
	dir, err := CodeforgeDir()
	if err != nil {
		return "", err
	}

	subdirs := []string{
		"",
		"logs",
		"data",
		"catalog",
	}
	for _, subdir := range subdirs {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}
	return dir, nil
}

// DefaultLocalConfig returns sensible defaults for the local daemon
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		Daemon: DaemonConfig{
			Port:     7610,
			Bind:     "127.0.0.1",
			LogLevel: "info",
		},
		Runner: RunnerConfig{
			LatencyMs: 500,
			PassRate:  0.7,
			Resilience: ResilienceConfig{
				CircuitBreaker: true,
				Retry:          true,
				Bulkhead:       true,
				RateLimit:      true,
				MaxConcurrent:  4,
				RatePerSecond:  10,
			},
		},
	}
}

// LoadLocalConfig loads configuration from ~/.codeforge/config.yaml,
// falling back to defaults when the file is missing. Environment
// variables override the file.
func LoadLocalConfig() (*LocalConfig, error) {
	dir, err := CodeforgeDir()
	if err != nil {
		return nil, err
	}
	return loadLocalConfigFrom(filepath.Join(dir, "config.yaml"))
}

func loadLocalConfigFrom(configPath string) (*LocalConfig, error) {
	cfg := DefaultLocalConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides lets CODEFORGE_* variables win over the file
func applyEnvOverrides(cfg *LocalConfig) {
	cfg.Daemon.Port = getEnvInt("CODEFORGE_PORT", cfg.Daemon.Port)
	cfg.Daemon.Bind = getEnv("CODEFORGE_BIND", cfg.Daemon.Bind)
	cfg.Daemon.LogLevel = getEnv("CODEFORGE_LOG_LEVEL", cfg.Daemon.LogLevel)
	cfg.Catalog.Path = getEnv("CODEFORGE_CATALOG_PATH", cfg.Catalog.Path)
	cfg.Storage.DataDir = getEnv("CODEFORGE_DATA_DIR", cfg.Storage.DataDir)
	cfg.Storage.ArchivePath = getEnv("CODEFORGE_ARCHIVE_PATH", cfg.Storage.ArchivePath)
}

// SaveLocalConfig saves configuration to ~/.codeforge/config.yaml
func SaveLocalConfig(cfg *LocalConfig) error {
	dir, err := EnsureCodeforgeDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ResolveDataDir returns the progress data directory, defaulting under
// root.
func (c *LocalConfig) ResolveDataDir(root string) string {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir
	}
	return filepath.Join(root, "data")
}

// ResolveArchivePath returns the submission archive path, defaulting
// under root.
func (c *LocalConfig) ResolveArchivePath(root string) string {
	if c.Storage.ArchivePath != "" {
		return c.Storage.ArchivePath
	}
	return filepath.Join(root, "data", "archive.db")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
