package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "hacklet"
	configFile = "config.yaml"
)

// Settings holds the user's persisted defaults. Zero values mean
// "unset"; command-line flags always win over anything stored here.
type Settings struct {
	Version int `yaml:"version"`

	// Port is the serial device path of the dongle. Empty means
	// discover it by USB vendor/product id.
	Port string `yaml:"port,omitempty"`

	// Network is the default network id, as the CLI accepts it
	// ("0x215a" or decimal).
	Network string `yaml:"network,omitempty"`

	// Verbosity is the default log verbosity (0 info, 1 debug,
	// 2 trace with raw byte dumps).
	Verbosity int `yaml:"verbosity,omitempty"`
}

// NewSettings returns settings with default values.
func NewSettings() *Settings {
	return &Settings{Version: 1}
}

// Dir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/hacklet or $HOME/.config/hacklet
//   - macOS: $HOME/.config/hacklet
//   - Windows: %LOCALAPPDATA%\hacklet
func Dir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			return "", fmt.Errorf("cannot determine config directory (LOCALAPPDATA not set)")
		}
		return filepath.Join(localAppData, appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// Path returns the full path to the configuration file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the settings file from disk. A missing file is not an
// error: defaults are returned so a fresh install needs no setup step.
func Load() (*Settings, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if settings.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d (expected 1)", settings.Version)
	}
	return &settings, nil
}

// Save writes the settings to disk atomically, creating the config
// directory if needed.
func (s *Settings) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path, err := Path()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := []byte("# Hacklet configuration file.\n# Values here are defaults; command-line flags override them.\n\n")
	data = append(header, data...)

	// Write-then-rename keeps a crash from truncating the file.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}
