// Package paths resolves configuration and data directory locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user platform directories.
const AppName = "restroom"

// CWD-relative data directory used when nothing else is configured.
const DefaultDataDirName = ".restroom"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "RESTROOM_CONFIG_DIR"
	EnvDataDir   = "RESTROOM_DATA_DIR"
)

// File names inside the resolved directories.
const (
	ConfigFileName  = "config.yaml"
	SessionFileName = "session.yaml"
	EnvFileName     = ".env"
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
// Linux:   $XDG_CONFIG_HOME/restroom (fallback ~/.config/restroom)
// macOS:   ~/Library/Application Support/restroom
// Windows: %APPDATA%/restroom
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/restroom (fallback ~/.local/share/restroom)
// macOS:   ~/Library/Application Support/restroom
// Windows: %APPDATA%/restroom
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// xdgDir honors the XDG variable on Linux and falls back to home/rel.
// Other platforms use os.UserConfigDir for both kinds of directory.
func xdgDir(env, rel string) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, rel, AppName), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > RESTROOM_CONFIG_DIR env > DefaultConfigDir().
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
// flag > config.yaml value > RESTROOM_DATA_DIR env > $(CWD)/.restroom.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the path of config.yaml in configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

// SessionFile returns the path of the persisted CLI session in dataDir.
func SessionFile(dataDir string) string {
	return filepath.Join(dataDir, SessionFileName)
}
