package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/lanegraph/config.yml
// - macOS: ~/Library/Application Support/lanegraph/config.yml
// - Windows: %APPDATA%\lanegraph\config.yml
//
// If XDG_CONFIG_HOME is set, it will be respected on Linux.
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lanegraph", "config.yml"), nil
}

// ProjectConfigPath returns the path to the project-level config file,
// relative to the current directory.
func ProjectConfigPath() string {
	return ".lanegraph.yml"
}

// DefaultCacheDir returns the directory of the file cache when cache.dir is
// empty.
func DefaultCacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lanegraph"), nil
}
