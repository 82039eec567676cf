// Package config loads and validates treeline configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"treeline/internal/constants"
	"treeline/internal/errors"
)

// CommandConfig describes one named command. A bare string in treeline.toml
// ("dev = \"npm run dev\"") populates only Command; the object form carries
// the optional mode, auto-run flag and port count.
type CommandConfig struct {
	Command  string `toml:"command"`
	Mode     string `toml:"mode"`
	AutoRun  bool   `toml:"auto_run"`
	NumPorts int    `toml:"num_ports"`
}

// ProjectConfig represents a repository-level treeline.toml
type ProjectConfig struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Settings struct {
		Tmux           bool   `toml:"tmux"`
		AutoSort       bool   `toml:"auto_sort"`
		AvailablePorts string `toml:"available_ports"`
		DefaultMode    string `toml:"default_mode"`
		WorktreeDir    string `toml:"worktree_dir"`
		DefaultBranch  string `toml:"default_branch"`
		BranchPrefix   string `toml:"branch_prefix"`
	} `toml:"settings"`
	Commands map[string]CommandConfig `toml:"-"` // custom unmarshal, string-or-object
}

// Manager handles configuration loading and validation
type Manager struct {
	Project *ProjectConfig
	Global  *GlobalConfig

	// path the project config was loaded from, empty if none was found
	projectPath string
}

// New creates a new configuration manager
func New() *Manager {
	return &Manager{
		Project: &ProjectConfig{Commands: map[string]CommandConfig{}},
	}
}

// Load loads global and project configuration
func (m *Manager) Load() error {
	global, err := LoadGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load global config: %w", err)
	}
	m.Global = global

	if err := m.loadProjectConfig(); err != nil {
		return fmt.Errorf("failed to load project config: %w", err)
	}

	m.applyDefaults()
	return nil
}

// ProjectPath returns the path of the loaded treeline.toml, or "" if none
func (m *Manager) ProjectPath() string {
	return m.projectPath
}

// findProjectConfigPath finds the project configuration file, supporting worktrees.
// It first checks the current directory, then resolves a worktree .git file back
// to the main repository and looks there.
func (m *Manager) findProjectConfigPath() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, constants.ProjectConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}

	// Check if we're in a worktree: a .git *file* pointing into the main
	// repository's worktrees directory.
	gitPath := filepath.Join(currentDir, ".git")
	if info, err := os.Stat(gitPath); err == nil && !info.IsDir() {
		content, err := os.ReadFile(gitPath)
		if err == nil {
			gitDirLine := strings.TrimSpace(string(content))
			if strings.HasPrefix(gitDirLine, "gitdir: ") {
				gitDir := strings.TrimPrefix(gitDirLine, "gitdir: ")
				if parts := strings.Split(gitDir, "/worktrees/"); len(parts) >= 2 {
					mainRepoPath := filepath.Dir(parts[0])
					mainConfigPath := filepath.Join(mainRepoPath, constants.ProjectConfigFile)
					if _, err := os.Stat(mainConfigPath); err == nil {
						return mainConfigPath, nil
					}
				}
			}
		}
	}

	return "", fmt.Errorf("no %s found", constants.ProjectConfigFile)
}

// loadProjectConfig loads the repository-level configuration if present
func (m *Manager) loadProjectConfig() error {
	configPath, err := m.findProjectConfigPath()
	if err != nil {
		// No project config is fine
		return nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg, err := ParseProjectConfig(data)
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	m.Project = cfg
	m.projectPath = configPath
	return nil
}

// ParseProjectConfig parses TOML data into a ProjectConfig, handling the
// string-or-object forms of the [commands] table.
func ParseProjectConfig(data []byte) (*ProjectConfig, error) {
	cfg := &ProjectConfig{Commands: map[string]CommandConfig{}}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse project config: %w", err)
	}

	// Parse [commands] from the raw map so both forms are accepted
	var rawConfig map[string]interface{}
	if err := toml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse project config: %w", err)
	}

	commands, ok := rawConfig["commands"].(map[string]interface{})
	if !ok {
		return cfg, nil
	}

	for name, value := range commands {
		switch v := value.(type) {
		case string:
			// Bare string form: command only, everything else defaulted
			cfg.Commands[name] = CommandConfig{Command: v}
		case map[string]interface{}:
			var cc CommandConfig
			if err := remarshalCommandConfig(v, &cc); err != nil {
				return nil, fmt.Errorf("failed to parse command %q: %w", name, err)
			}
			if cc.Command == "" {
				return nil, errors.NewWithHint(errors.ErrConfigInvalid,
					fmt.Sprintf("command %q has no command string", name),
					"set the 'command' field")
			}
			cfg.Commands[name] = cc
		default:
			return nil, errors.NewWithHint(errors.ErrConfigInvalid,
				fmt.Sprintf("command %q must be a string or a table", name),
				`use name = "shell command" or [commands.name] with a command field`)
		}
	}

	return cfg, nil
}

// remarshalCommandConfig converts a raw map to a CommandConfig
func remarshalCommandConfig(data map[string]interface{}, cc *CommandConfig) error {
	bytes, err := toml.Marshal(data)
	if err != nil {
		return err
	}
	return toml.Unmarshal(bytes, cc)
}

// applyDefaults applies default values to configuration
func (m *Manager) applyDefaults() {
	if m.Project.Project.Name != "" && m.Project.Settings.WorktreeDir == "" {
		// Default to sibling directory
		m.Project.Settings.WorktreeDir = "../" + m.Project.Project.Name + "-worktrees"
	}
	if m.Project.Settings.DefaultBranch == "" {
		m.Project.Settings.DefaultBranch = "main"
	}
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	for name, cc := range m.Project.Commands {
		if cc.Mode != "" && !isValidMode(cc.Mode) {
			return errors.NewWithHint(errors.ErrInvalidMode,
				fmt.Sprintf("command %q has invalid mode %q", name, cc.Mode),
				"valid modes are window, inline, background, exit")
		}
		if cc.NumPorts < 0 {
			return errors.NewWithHint(errors.ErrConfigInvalid,
				fmt.Sprintf("command %q has negative num_ports", name),
				"num_ports must be zero or positive")
		}
	}
	if mode := m.Project.Settings.DefaultMode; mode != "" && !isValidMode(mode) {
		return errors.NewWithHint(errors.ErrInvalidMode,
			fmt.Sprintf("invalid default_mode %q", mode),
			"valid modes are window, inline, background, exit")
	}
	return nil
}

func isValidMode(mode string) bool {
	switch mode {
	case "window", "inline", "background", "exit":
		return true
	}
	return false
}

// CommandNames returns the configured command names sorted alphabetically
func (m *Manager) CommandNames() []string {
	names := make([]string, 0, len(m.Project.Commands))
	for name := range m.Project.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateDefaultProjectConfig writes an example treeline.toml
func CreateDefaultProjectConfig(path string) error {
	example := `# Treeline Project Configuration

[project]
name = "my-project"

[settings]
tmux = true
auto_sort = true
available_ports = "3000-3100"
worktree_dir = "../my-project-worktrees"
default_branch = "main"

[commands]
# Bare string form: runs with the default execution mode
test = "npm test"

# Object form: mode, auto-run and port allocation
[commands.dev]
command = "npm run dev"
mode = "window"
auto_run = true
num_ports = 1
`
	return os.WriteFile(path, []byte(example), 0644)
}
