// Package xdg provides XDG Base Directory Specification compliant paths
package xdg

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigDir returns the XDG config directory for treeline
// Priority: XDG_CONFIG_HOME > ~/.config/treeline
func ConfigDir() (string, error) {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "treeline"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "treeline"), nil
}

// DataDir returns the XDG data directory for treeline
// Priority: XDG_DATA_HOME > ~/.local/share/treeline
func DataDir() (string, error) {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "treeline"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "share", "treeline"), nil
}

// StateDir returns the XDG state directory for treeline
// Priority: XDG_STATE_HOME > ~/.local/state/treeline
func StateDir() (string, error) {
	if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		return filepath.Join(xdgState, "treeline"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "state", "treeline"), nil
}

// RuntimeDir returns the XDG runtime directory for treeline
// Priority: XDG_RUNTIME_DIR > /tmp/treeline-$UID
func RuntimeDir() (string, error) {
	if xdgRuntime := os.Getenv("XDG_RUNTIME_DIR"); xdgRuntime != "" {
		return filepath.Join(xdgRuntime, "treeline"), nil
	}

	uid := os.Getuid()
	return filepath.Join("/tmp", fmt.Sprintf("treeline-%d", uid)), nil
}

// LogsDir returns the directory for storing background command logs
// Uses state directory as the base
func LogsDir() string {
	stateDir, err := StateDir()
	if err != nil {
		dataDir, _ := DataDir()
		return filepath.Join(dataDir, "logs")
	}
	return filepath.Join(stateDir, "logs")
}
