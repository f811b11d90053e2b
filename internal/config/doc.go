// Package config manages the user configuration file for the gateway
// client: where the gateway daemon lives, the shape of the heating system
// behind it, and per-device metadata such as nicknames.
//
// The file is YAML and lives in the platform configuration directory:
//   - Linux: $XDG_CONFIG_HOME/ramses/config.yaml or $HOME/.config/ramses/config.yaml
//   - macOS: $HOME/.config/ramses/config.yaml
//   - Windows: %LOCALAPPDATA%\ramses\config.yaml
//
// A missing file yields the defaults; saves are atomic (write to a
// temporary file, then rename). The global instance loads once via
// sync.Once and file writes are serialised by a mutex.
package config
