// Package config loads the pouch configuration.
//
// Values come from, in increasing precedence: built-in defaults,
// config.yaml in the config directory, a .env file next to it, and POUCH_*
// environment variables. The result is validated before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pouch/internal/paths"
	"github.com/mesh-intelligence/pouch/pkg/types"
)

// EnvPrefix prefixes environment overrides, as in POUCH_LOG_LEVEL.
const EnvPrefix = "POUCH"

// Config keys.
const (
	KeyBackend   = "backend"
	KeyDataDir   = "data_dir"
	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"
	KeyLogFile   = "log_file"
	KeyTimezone  = "timezone"
)

// Defaults.
var defaults = map[string]string{
	KeyBackend:   types.BackendSQLite,
	KeyDataDir:   "",
	KeyLogLevel:  "warn",
	KeyLogFormat: "console",
	KeyLogFile:   "",
	KeyTimezone:  "",
}

// Load reads the configuration of configDir. A missing config.yaml or .env
// is not an error.
func Load(configDir string) (types.Config, error) {
	if err := loadEnvFile(paths.EnvFile(configDir)); err != nil {
		return types.Config{}, err
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	path := paths.ConfigFile(configDir)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate checks field rules and the backend selection.
func Validate(cfg types.Config) error {
	if err := validateStruct(newValidator(), cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return cfg.Validate()
}

// Location returns the time zone notes are presented in. An empty timezone
// means the process time zone.
func Location(cfg types.Config) (*time.Location, error) {
	if cfg.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", cfg.Timezone, err)
	}
	return loc, nil
}

// WriteDefault writes config.yaml into configDir unless it already exists.
// It reports whether a file was written.
func WriteDefault(configDir, dataDir string) (bool, error) {
	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := types.Config{
		Backend:   types.BackendSQLite,
		DataDir:   dataDir,
		LogLevel:  defaults[KeyLogLevel],
		LogFormat: defaults[KeyLogFormat],
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("writing config: %w", err)
	}
	return true, nil
}

// loadEnvFile applies a .env file without overriding variables that are
// already set.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}
