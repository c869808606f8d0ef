/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ssargent/m64kit/pkg/m64"
	"gopkg.in/yaml.v3"
)

// Config represents the m64kit configuration
type Config struct {
	CatalogDir string   `yaml:"catalog_dir"`
	Port       int      `yaml:"port"`
	Bind       string   `yaml:"bind"`
	Security   Security `yaml:"security"`
	Logging    Logging  `yaml:"logging"`
	Codec      Codec    `yaml:"codec"`
}

// Security contains security-related configuration
type Security struct {
	APIKey string `yaml:"api_key"`
	// MaxUploadSize caps movie uploads to the HTTP API, in bytes.
	MaxUploadSize int64 `yaml:"max_upload_size"`
}

// Logging contains logging configuration
type Logging struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// Codec contains movie codec options
type Codec struct {
	BitOrder string `yaml:"bit_order"`
	// Workers bounds concurrent files in batch commands; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		CatalogDir: "./catalog",
		Port:       8064,
		Bind:       "127.0.0.1",
		Security: Security{
			APIKey:        "auto",
			MaxUploadSize: 64 << 20,
		},
		Logging: Logging{
			Level: "info",
		},
		Codec: Codec{
			BitOrder: m64.DefaultBitOrder.String(),
		},
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.CatalogDir == "" {
		errs = append(errs, errors.New("catalog_dir is required"))
	}
	if _, err := m64.ParseBitOrder(c.Codec.BitOrder); err != nil {
		errs = append(errs, fmt.Errorf("codec.bit_order: %w", err))
	}
	if c.Codec.Workers < 0 {
		errs = append(errs, fmt.Errorf("codec.workers must not be negative"))
	}
	if c.Security.MaxUploadSize < 0 {
		errs = append(errs, fmt.Errorf("security.max_upload_size must not be negative"))
	}
	return errors.Join(errs...)
}

// BitOrder returns the configured input bit order.
func (c *Config) BitOrder() m64.BitOrder {
	order, err := m64.ParseBitOrder(c.Codec.BitOrder)
	if err != nil {
		return m64.DefaultBitOrder
	}
	return order
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so partial files keep sane values.
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key
func BootstrapConfig(configPath string, catalogDir string) (*Config, error) {
	config := DefaultConfig()
	if catalogDir != "" {
		config.CatalogDir = catalogDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Security.APIKey = apiKey

	// Save the configuration
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	// Use OS-specific default locations
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./m64kit.yaml"
	}

	// For Linux/macOS, use ~/.config/m64kit/config.yaml
	configDir := filepath.Join(homeDir, ".config", "m64kit")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
