package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/CTAG07/trigram/pkg/trigram"
	"github.com/natefinch/atomic"
)

// ServerConfig holds the configuration for the process and its HTTP API.
type ServerConfig struct {
	ApiAddr      string `json:"api_addr"`
	EnableAPI    bool   `json:"enable_api"`
	LogLevel     string `json:"log_level"`
	DataDir      string `json:"data_dir"`
	DatabasePath string `json:"database_path"`
}

// ModelConfig holds the settings used to train and sample the trigram model.
type ModelConfig struct {
	CorpusName  string `json:"corpus_name"`
	NamesFile   string `json:"names_file"`
	ExportDir   string `json:"export_dir"`
	Boundary    string `json:"boundary"`
	PseudoCount int    `json:"pseudo_count"`
	MaxLength   int    `json:"max_length"`
	Seed        uint64 `json:"seed"`
}

// PromptConfig holds settings for the interactive generation prompt.
type PromptConfig struct {
	Enabled bool   `json:"enabled"`
	Prompt  string `json:"prompt"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server *ServerConfig `json:"server_config"`
	Model  *ModelConfig  `json:"model_config"`
	Prompt *PromptConfig `json:"prompt_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ApiAddr:      ":7278",
		EnableAPI:    false,
		LogLevel:     "info",
		DataDir:      "./data",
		DatabasePath: "./data/trigram.db?_journal_mode=WAL&_busy_timeout=5000",
	}
}

// DefaultModelConfig creates a model configuration with default values.
func DefaultModelConfig() *ModelConfig {
	return &ModelConfig{
		CorpusName:  "names",
		NamesFile:   "./data/names.txt",
		ExportDir:   "./data/exports",
		Boundary:    string(trigram.DefaultBoundary),
		PseudoCount: trigram.DefaultPseudoCount,
		MaxLength:   0,
		Seed:        0,
	}
}

// DefaultPromptConfig creates a prompt configuration with default values.
func DefaultPromptConfig() *PromptConfig {
	return &PromptConfig{
		Enabled: true,
		Prompt:  "start letter> ",
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := &Config{
		Server: DefaultServerConfig(),
		Model:  DefaultModelConfig(),
		Prompt: DefaultPromptConfig(),
	}

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The process can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Server == nil || c.Model == nil || c.Prompt == nil {
		return fmt.Errorf("%w: config sections must not be null", trigram.ErrConfiguration)
	}
	if utf8.RuneCountInString(c.Model.Boundary) != 1 {
		return fmt.Errorf("%w: boundary must be exactly one character, got %q", trigram.ErrConfiguration, c.Model.Boundary)
	}
	if c.Model.PseudoCount < 1 {
		return fmt.Errorf("%w: pseudo_count must be at least 1, got %d", trigram.ErrConfiguration, c.Model.PseudoCount)
	}
	if c.Model.CorpusName == "" {
		return fmt.Errorf("%w: corpus_name is required", trigram.ErrConfiguration)
	}
	return nil
}

// BoundaryRune returns the configured boundary symbol.
func (m *ModelConfig) BoundaryRune() rune {
	r, _ := utf8.DecodeRuneInString(m.Boundary)
	return r
}

// parseLogLevel maps a config log level onto slog, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
