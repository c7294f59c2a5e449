package config

import (
	"os"
	"path/filepath"
)

const appName = "mathblocks"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// XDGStateHome returns the XDG state home or a default fallback.
func XDGStateHome() string {
	return xdgDir("XDG_STATE_HOME", ".local", "state")
}

func xdgDir(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// DefaultConfigPath returns the config file path, honouring
// MATHBLOCKS_CONFIG.
func DefaultConfigPath() string {
	if p := os.Getenv("MATHBLOCKS_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultContentDir is where content overrides are looked up.
func DefaultContentDir() string {
	return filepath.Join(XDGConfigHome(), appName, "content")
}

// DefaultLogPath is the log file the TUI writes to.
func DefaultLogPath() string {
	return filepath.Join(XDGStateHome(), appName, appName+".log")
}
