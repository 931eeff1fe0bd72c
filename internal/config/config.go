// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/ph0sec/viper/internal/util"
)

// FileName is the configuration file name looked up in each search directory.
const FileName = "viper.toml"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete viper configuration.
type Config struct {
	Paths   PathsConfig   `toml:"paths"`
	Modules ModulesConfig `toml:"modules"`
	Shell   ShellConfig   `toml:"shell"`
	Logging LoggingConfig `toml:"logging"`
	UI      UIConfig      `toml:"ui"`
}

// PathsConfig contains filesystem locations.
type PathsConfig struct {
	// Storage is the root directory holding the default project and projects/
	Storage string `toml:"storage" env:"VIPER_STORAGE_PATH"`
}

// ModulesConfig controls module execution.
type ModulesConfig struct {
	// StoreOutput records module output in the repository when a session is open
	StoreOutput bool `toml:"store_output" env:"VIPER_STORE_OUTPUT"`
}

// ShellConfig controls the interactive shell.
type ShellConfig struct {
	// EscapeEnabled allows "!cmd" lines to run through the system shell
	EscapeEnabled bool `toml:"escape_enabled" env:"VIPER_ESCAPE_ENABLED"`
	// HistoryFile is the history file name, relative to the project directory
	HistoryFile string `toml:"history_file"`
}

// LoggingConfig contains log settings.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error"
	Level string `toml:"level" env:"VIPER_LOG_LEVEL"`
	// File is the log file name, relative to the project directory unless absolute
	File string `toml:"file" env:"VIPER_LOG_FILE"`
}

// UIConfig contains terminal presentation settings.
type UIConfig struct {
	// Color is "auto", "always" or "never"
	Color string `toml:"color"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	storage := ".viper"
	if dir, err := ConfigDir(); err == nil {
		storage = dir
	}
	return &Config{
		Paths: PathsConfig{
			Storage: storage,
		},
		Modules: ModulesConfig{
			StoreOutput: true,
		},
		Shell: ShellConfig{
			EscapeEnabled: true,
			HistoryFile:   "history",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "viper.log",
		},
		UI: UIConfig{
			Color: "auto",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the per-user viper directory (~/.viper).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".viper"), nil
}

// SearchPaths returns the candidate config files in lookup order.
func SearchPaths() []string {
	paths := []string{FileName}
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, FileName))
	}
	return append(paths, filepath.Join("/etc", "viper", FileName))
}

// Find returns the first existing config file. An explicit path wins and must
// exist. Returns "" when no file is found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	for _, p := range SearchPaths() {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load resolves the config file (see Find), decodes it over the defaults,
// applies environment overrides and validates the result. It returns the
// path that was loaded, or "" when running on defaults.
func Load(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	cfg := Default()
	if path != "" {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, path, err
		}
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, path, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

// LoadTOML decodes the TOML file at path into cfg. Keys absent from the file
// keep their current values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return ValidationError{Field: strings.Join(keys, ", "), Message: "unknown configuration key"}
	}
	return nil
}

// SaveTOML writes cfg to path.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# viper configuration file")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies VIPER_* environment variables:
//   - VIPER_STORAGE_PATH: overrides paths.storage
//   - VIPER_STORE_OUTPUT: overrides modules.store_output
//   - VIPER_ESCAPE_ENABLED: overrides shell.escape_enabled
//   - VIPER_LOG_LEVEL: overrides logging.level
//   - VIPER_LOG_FILE: overrides logging.file
func (c *Config) ApplyEnvOverrides() error {
	return c.applyEnv(env.Options{})
}

func (c *Config) applyEnv(opts env.Options) error {
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

// SetDefaults fills values that are empty after loading.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Paths.Storage == "" {
		c.Paths.Storage = d.Paths.Storage
	}
	if c.Shell.HistoryFile == "" {
		c.Shell.HistoryFile = d.Shell.HistoryFile
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.File == "" {
		c.Logging.File = d.Logging.File
	}
	if c.UI.Color == "" {
		c.UI.Color = d.UI.Color
	}
	c.Paths.Storage = expandHome(c.Paths.Storage)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validColors    = []string{"auto", "always", "never"}
)

// Validate checks the configuration and returns ValidateErrors when something
// is off.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if strings.TrimSpace(c.Paths.Storage) == "" {
		errs = append(errs, ValidationError{Field: "paths.storage", Message: "must not be empty"})
	}
	if c.Shell.HistoryFile != "" && filepath.Base(c.Shell.HistoryFile) != c.Shell.HistoryFile {
		errs = append(errs, ValidationError{Field: "shell.history_file", Message: "must be a file name, not a path"})
	}
	if !contains(validLogLevels, c.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("must be one of %s", strings.Join(validLogLevels, ", ")),
		})
	}
	if !contains(validColors, c.UI.Color) {
		errs = append(errs, ValidationError{
			Field:   "ui.color",
			Message: fmt.Sprintf("must be one of %s", strings.Join(validColors, ", ")),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// IsValidationError reports whether err carries configuration validation errors.
func IsValidationError(err error) bool {
	var ve ValidationError
	var ves ValidateErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}
