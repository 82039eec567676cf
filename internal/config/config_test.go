package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProjectConfigFull(t *testing.T) {
	content := `
[project]
name = "myapp"

[settings]
tmux = true
auto_sort = true
available_ports = "3000-3100"
default_mode = "inline"
worktree_dir = "../myapp-worktrees"
default_branch = "develop"
branch_prefix = "feature/"

[commands]
test = "npm test"

[commands.dev]
command = "npm run dev"
mode = "window"
auto_run = true
num_ports = 2
`
	cfg, err := ParseProjectConfig([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, "myapp", cfg.Project.Name)
	assert.True(t, cfg.Settings.Tmux)
	assert.True(t, cfg.Settings.AutoSort)
	assert.Equal(t, "3000-3100", cfg.Settings.AvailablePorts)
	assert.Equal(t, "inline", cfg.Settings.DefaultMode)
	assert.Equal(t, "develop", cfg.Settings.DefaultBranch)
	assert.Equal(t, "feature/", cfg.Settings.BranchPrefix)
	require.Len(t, cfg.Commands, 2)
}

func TestParseCommandsStringForm(t *testing.T) {
	content := `
[commands]
test = "npm test"
`
	cfg, err := ParseProjectConfig([]byte(content))
	require.NoError(t, err)

	cc := cfg.Commands["test"]
	assert.Equal(t, "npm test", cc.Command)
	assert.Empty(t, cc.Mode)
	assert.False(t, cc.AutoRun)
	assert.Zero(t, cc.NumPorts)
}

func TestParseCommandsObjectForm(t *testing.T) {
	content := `
[commands.dev]
command = "npm run dev"
mode = "background"
auto_run = true
num_ports = 1
`
	cfg, err := ParseProjectConfig([]byte(content))
	require.NoError(t, err)

	cc := cfg.Commands["dev"]
	assert.Equal(t, "npm run dev", cc.Command)
	assert.Equal(t, "background", cc.Mode)
	assert.True(t, cc.AutoRun)
	assert.Equal(t, 1, cc.NumPorts)
}

func TestParseCommandsMixedForms(t *testing.T) {
	content := `
[commands]
test = "npm test"

[commands.dev]
command = "npm run dev"
auto_run = true
`
	cfg, err := ParseProjectConfig([]byte(content))
	require.NoError(t, err)
	require.Len(t, cfg.Commands, 2)
	assert.False(t, cfg.Commands["test"].AutoRun)
	assert.True(t, cfg.Commands["dev"].AutoRun)
}

func TestParseCommandObjectWithoutCommandField(t *testing.T) {
	content := `
[commands.dev]
mode = "window"
`
	_, err := ParseProjectConfig([]byte(content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `command "dev" has no command string`)
}

func TestParseCommandInvalidType(t *testing.T) {
	content := `
[commands]
dev = 42
`
	_, err := ParseProjectConfig([]byte(content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a string or a table")
}

func TestValidateRejectsInvalidMode(t *testing.T) {
	m := New()
	m.Project.Commands = map[string]CommandConfig{
		"dev": {Command: "x", Mode: "detached"},
	}
	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode")
	assert.Contains(t, err.Error(), "window, inline, background, exit")
}

func TestValidateRejectsNegativePorts(t *testing.T) {
	m := New()
	m.Project.Commands = map[string]CommandConfig{
		"dev": {Command: "x", NumPorts: -1},
	}
	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative num_ports")
}

func TestValidateRejectsInvalidDefaultMode(t *testing.T) {
	m := New()
	m.Project.Settings.DefaultMode = "forever"
	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid default_mode")
}

func TestApplyDefaults(t *testing.T) {
	m := New()
	m.Project.Project.Name = "myapp"
	m.applyDefaults()

	assert.Equal(t, "../myapp-worktrees", m.Project.Settings.WorktreeDir)
	assert.Equal(t, "main", m.Project.Settings.DefaultBranch)
}

func TestCommandNamesSorted(t *testing.T) {
	m := New()
	m.Project.Commands = map[string]CommandConfig{
		"zeta": {Command: "z"}, "alpha": {Command: "a"}, "mid": {Command: "m"},
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, m.CommandNames())
}

func TestCreateDefaultProjectConfigRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "treeline.toml")
	require.NoError(t, CreateDefaultProjectConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	cfg, err := ParseProjectConfig(data)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Commands)
	assert.True(t, cfg.Commands["dev"].AutoRun)
}

func TestLoadWorktreeOverlay(t *testing.T) {
	dir := t.TempDir()

	// Missing file is an empty overlay
	overlay, err := LoadWorktreeOverlay(dir)
	require.NoError(t, err)
	assert.Empty(t, overlay.Env)

	content := "env:\n  NODE_ENV: test\n  DEBUG: \"1\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".treeline.yaml"), []byte(content), 0644))

	overlay, err = LoadWorktreeOverlay(dir)
	require.NoError(t, err)
	assert.Equal(t, "test", overlay.Env["NODE_ENV"])
	assert.Equal(t, "1", overlay.Env["DEBUG"])
}

func TestLoadWorktreeOverlayParseError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".treeline.yaml"), []byte("env: [not a map"), 0644))

	_, err := LoadWorktreeOverlay(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse worktree overlay")
}
