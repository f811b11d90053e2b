package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "ramses"
	configFile = "config.yaml"
)

var (
	global     *Config
	globalOnce sync.Once
	globalErr  error

	fileMutex sync.Mutex
)

// Dir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/ramses or $HOME/.config/ramses
//   - macOS: $HOME/.config/ramses
//   - Windows: %LOCALAPPDATA%\ramses
func Dir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			return filepath.Join(userProfile, "AppData", "Local", appName), nil
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

func ensureDir() error {
	dir, err := Dir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// Load loads the configuration from disk. A missing file yields the
// defaults. Thread-safe; repeated calls return the same instance.
func Load() (*Config, error) {
	globalOnce.Do(func() {
		path, err := Path()
		if err != nil {
			globalErr = err
			return
		}
		global, globalErr = LoadFile(path)
	})
	return global, globalErr
}

// LoadFile loads a configuration from an explicit path. A missing file
// yields the defaults.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Devices == nil {
		cfg.Devices = make(map[string]*Device)
	}
	if cfg.System == nil {
		cfg.System = &System{MaxZones: DefaultMaxZones}
	}
	return &cfg, nil
}

// Save writes the configuration to disk atomically.
func (c *Config) Save() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := ensureDir(); err != nil {
		return err
	}
	path, err := Path()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# RAMSES gateway client configuration.
#
# gateway.url        ws:// endpoint of the gateway daemon
# system.max_zones   zone index bound for payload validation (1..16)
# devices            user metadata per device id

`)
	data = append(header, data...)

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
