// Package paths resolves where pouch keeps its configuration and its zone
// databases.
package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

// AppName names the per-user directories.
const AppName = "pouch"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "POUCH_CONFIG_DIR"
	EnvDataDir   = "POUCH_DATA_DIR"
)

// File names inside the config directory.
const (
	ConfigFileName      = "config.yaml"
	PreferencesFileName = "preferences.yaml"
	EnvFileName         = ".env"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/pouch (fallback ~/.config/pouch)
// macOS:   ~/Library/Application Support/pouch
// Windows: %APPDATA%/pouch
func DefaultConfigDir() (string, error) {
	return platformPath("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/pouch (fallback ~/.local/share/pouch)
// macOS:   ~/Library/Application Support/pouch
// Windows: %APPDATA%/pouch
func DefaultDataDir() (string, error) {
	return platformPath("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func platformPath(xdgVar, homeRel string) (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv(xdgVar); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, homeRel, AppName), nil
	}
	// macOS and Windows keep config and data side by side.
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > POUCH_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > POUCH_DATA_DIR env > config file value > DefaultDataDir().
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	return DefaultDataDir()
}

// ZoneFile returns the database file of zone inside dataDir.
func ZoneFile(dataDir string, zone types.Zone) string {
	return filepath.Join(dataDir, zone.DatabaseFile())
}

// ConfigFile returns the config.yaml path inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

// PreferencesFile returns the preferences.yaml path inside configDir.
func PreferencesFile(configDir string) string {
	return filepath.Join(configDir, PreferencesFileName)
}

// EnvFile returns the .env path inside configDir.
func EnvFile(configDir string) string {
	return filepath.Join(configDir, EnvFileName)
}
