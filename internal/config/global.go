package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"treeline/internal/constants"
	"treeline/internal/xdg"
)

// GlobalConfig represents the global treeline configuration
type GlobalConfig struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

type ServerConfig struct {
	Port int `toml:"port"` // HTTP API port
}

type StorageConfig struct {
	WorktreesPath string `toml:"worktrees_path"` // Default worktree location
}

type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// DefaultGlobalConfig returns the default global configuration
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Server: ServerConfig{
			Port: constants.DefaultServerPort,
		},
		Storage: StorageConfig{
			WorktreesPath: "~/treeline/worktrees",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadGlobalConfig loads the global configuration from the XDG config directory
func LoadGlobalConfig() (*GlobalConfig, error) {
	configDir, err := xdg.ConfigDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(configDir, "config.toml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultGlobalConfig()
		if err := expandPaths(config); err != nil {
			return nil, err
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GlobalConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Apply defaults for any missing values
	defaults := DefaultGlobalConfig()
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Storage.WorktreesPath == "" {
		config.Storage.WorktreesPath = defaults.Storage.WorktreesPath
	}
	if config.Log.Level == "" {
		config.Log.Level = defaults.Log.Level
	}

	if err := expandPaths(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveGlobalConfig saves the global configuration to the XDG config directory
func SaveGlobalConfig(config *GlobalConfig) error {
	configDir, err := xdg.ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.toml"), data, 0644)
}

// expandPaths expands tilde-prefixed paths in the configuration
func expandPaths(config *GlobalConfig) error {
	expanded, err := expandTilde(config.Storage.WorktreesPath)
	if err != nil {
		return err
	}
	config.Storage.WorktreesPath = expanded
	return nil
}

func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, path[2:]), nil
}
