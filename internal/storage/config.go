package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/nikbrunner/bmsort/internal/ai"
)

// Config holds application configuration.
type Config struct {
	AI       ai.Config      `json:"ai"`
	Organize OrganizeConfig `json:"organize"`
	Server   ServerConfig   `json:"server"`
	Storage  StorageConfig  `json:"storage"`
	LogLevel string         `json:"logLevel"`
}

// OrganizeConfig holds settings for organize runs and single-item adds.
type OrganizeConfig struct {
	// RootFolder is the path new folder trees are created under when adding
	// a single bookmark. Empty means the top level.
	RootFolder   string `json:"rootFolder"`
	BatchRetries int    `json:"batchRetries"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port  int    `json:"port"`
	Token string `json:"token,omitempty"`
}

// Address returns the HTTP listen address.
func (c ServerConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// StorageConfig holds the bookmark store location.
type StorageConfig struct {
	Path string `json:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		AI:       ai.DefaultConfig(),
		Organize: OrganizeConfig{},
		Server:   ServerConfig{Port: 8787},
		LogLevel: "info",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.AI.Validate(); err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	if err := validation.ValidateStruct(&c.Organize,
		validation.Field(&c.Organize.BatchRetries, validation.Min(0), validation.Max(5)),
	); err != nil {
		return fmt.Errorf("organize: %w", err)
	}
	if err := validation.ValidateStruct(&c.Server,
		validation.Field(&c.Server.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

// Level returns the slog level for LogLevel.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
// Fields missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &config, nil
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// DefaultConfigFilePath returns the config path: $BMSORT_CONFIG, or
// ~/.config/bmsort/config.json.
func DefaultConfigFilePath() (string, error) {
	if path := os.Getenv("BMSORT_CONFIG"); path != "" {
		return path, nil
	}
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}
