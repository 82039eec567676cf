package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treeline/internal/config"
)

func testCommands() map[string]config.CommandConfig {
	return map[string]config.CommandConfig{
		"dev":   {Command: "npm run dev", Mode: "window", AutoRun: true, NumPorts: 1},
		"test":  {Command: "npm test", Mode: "inline"},
		"build": {Command: "npm run build"},
	}
}

func TestParsePredefinedCommand(t *testing.T) {
	parsed, err := Parse([]string{"dev"}, testCommands(), ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, Predefined, parsed.Type)
	assert.Equal(t, "npm run dev", parsed.Command)
	assert.Equal(t, "dev", parsed.CommandName)
	assert.Empty(t, parsed.Args)
	assert.Equal(t, KindWindow, parsed.Mode)
}

func TestParsePredefinedWithExtraArgs(t *testing.T) {
	parsed, err := Parse([]string{"test", "--watch"}, testCommands(), ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, Predefined, parsed.Type)
	assert.Equal(t, "npm test", parsed.Command)
	assert.Equal(t, []string{"--watch"}, parsed.Args)
	assert.Equal(t, KindInline, parsed.Mode)
}

func TestParseInlineCommand(t *testing.T) {
	parsed, err := Parse([]string{"--", "echo", "hello", "world"}, testCommands(), ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, Inline, parsed.Type)
	assert.Equal(t, "echo", parsed.Command)
	assert.Equal(t, []string{"hello", "world"}, parsed.Args)
	assert.Empty(t, parsed.CommandName)
	assert.Equal(t, KindWindow, parsed.Mode)
}

func TestParseInlineBypassesCommandLookup(t *testing.T) {
	// A token matching a configured name after -- is still inline
	parsed, err := Parse([]string{"--", "dev"}, testCommands(), ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, Inline, parsed.Type)
	assert.Equal(t, "dev", parsed.Command)
	assert.Empty(t, parsed.CommandName)
}

func TestParseInlineWorksWithNoConfiguredCommands(t *testing.T) {
	parsed, err := Parse([]string{"--", "make"}, map[string]config.CommandConfig{}, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, Inline, parsed.Type)
}

func TestParseEmptyInlineCommand(t *testing.T) {
	_, err := Parse([]string{"--"}, testCommands(), ParseOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified after --")
}

func TestParseNoArgs(t *testing.T) {
	_, err := Parse(nil, testCommands(), ParseOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

func TestParseNoCommandsConfigured(t *testing.T) {
	_, err := Parse([]string{"dev"}, map[string]config.CommandConfig{}, ParseOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no commands configured")
}

func TestParseUnknownCommandListsAvailable(t *testing.T) {
	_, err := Parse([]string{"deploy"}, testCommands(), ParseOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `command "deploy" not found`)
	// Available names are listed sorted
	assert.Contains(t, err.Error(), "build, dev, test")
}

func TestParseModePrecedence(t *testing.T) {
	tests := []struct {
		name string
		args []string
		opts ParseOptions
		want Kind
	}{
		{
			name: "cli override beats command config",
			args: []string{"dev"},
			opts: ParseOptions{ModeOverride: "inline"},
			want: KindInline,
		},
		{
			name: "command config beats default",
			args: []string{"test"},
			opts: ParseOptions{},
			want: KindInline,
		},
		{
			name: "command config beats project default_mode",
			args: []string{"test"},
			opts: ParseOptions{DefaultMode: "background"},
			want: KindInline,
		},
		{
			name: "project default_mode beats environment default",
			args: []string{"build"},
			opts: ParseOptions{DefaultMode: "background"},
			want: KindBackground,
		},
		{
			name: "interactive default is window",
			args: []string{"build"},
			opts: ParseOptions{},
			want: KindWindow,
		},
		{
			name: "non-interactive default is exit",
			args: []string{"build"},
			opts: ParseOptions{NonInteractive: true},
			want: KindExit,
		},
		{
			name: "cli override beats everything for inline commands",
			args: []string{"--", "echo", "hi"},
			opts: ParseOptions{ModeOverride: "background", NonInteractive: true},
			want: KindBackground,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Parse(tt.args, testCommands(), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, parsed.Mode)
		})
	}
}

func TestParseInvalidModeOverride(t *testing.T) {
	_, err := Parse([]string{"dev"}, testCommands(), ParseOptions{ModeOverride: "detached"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid execution mode "detached"`)
	assert.Contains(t, err.Error(), "window, inline, background, exit")
}

func TestParseInvalidCommandConfigMode(t *testing.T) {
	commands := map[string]config.CommandConfig{
		"bad": {Command: "true", Mode: "detach"},
	}
	_, err := Parse([]string{"bad"}, commands, ParseOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid execution mode")
}

func TestDefaultKind(t *testing.T) {
	assert.Equal(t, KindWindow, DefaultKind(false))
	assert.Equal(t, KindExit, DefaultKind(true))
}
