package execution

import (
	"fmt"
	"sort"
	"strings"

	"treeline/internal/config"
	"treeline/internal/errors"
)

// CommandType distinguishes configured commands from ad-hoc ones
type CommandType string

const (
	// Predefined commands are looked up by name in the [commands] table
	Predefined CommandType = "predefined"
	// Inline commands are supplied directly after a "--" separator
	Inline CommandType = "inline"
)

// ParsedCommand is the immutable result of resolving CLI arguments against
// the configured commands. CommandName is set iff Type is Predefined.
type ParsedCommand struct {
	Type        CommandType
	Command     string
	Args        []string
	Mode        Kind
	CommandName string
}

// ParseOptions carries the caller-side inputs to command resolution.
// NonInteractive is injected rather than read from the environment here so
// the default-mode policy stays testable.
type ParseOptions struct {
	// ModeOverride is the --mode flag value, empty when the flag was not set
	ModeOverride string
	// DefaultMode is the project-wide default_mode setting, consulted after
	// per-command modes and before the environment default
	DefaultMode string
	// NonInteractive selects the exit default mode (CI runners lack the
	// interactive terminal that window and background modes assume)
	NonInteractive bool
}

// DefaultKind returns the global default execution mode for the environment
func DefaultKind(nonInteractive bool) Kind {
	if nonInteractive {
		return KindExit
	}
	return KindWindow
}

// fallbackKind resolves the mode when neither the CLI nor the command's own
// config set one: configured default_mode first, then the environment default.
func fallbackKind(opts ParseOptions) (Kind, error) {
	if opts.DefaultMode != "" {
		return ParseKind(opts.DefaultMode)
	}
	return DefaultKind(opts.NonInteractive), nil
}

// Parse resolves raw arguments plus configuration into a ParsedCommand.
//
// Without a "--" separator the first token is a predefined command name looked
// up in commands; everything after "--" is an inline command that bypasses the
// lookup entirely. Mode precedence: CLI override > per-command config > default.
func Parse(args []string, commands map[string]config.CommandConfig, opts ParseOptions) (*ParsedCommand, error) {
	var override Kind
	if opts.ModeOverride != "" {
		k, err := ParseKind(opts.ModeOverride)
		if err != nil {
			return nil, err
		}
		override = k
	}

	sepIndex := -1
	for i, arg := range args {
		if arg == "--" {
			sepIndex = i
			break
		}
	}

	if sepIndex >= 0 {
		inline := args[sepIndex+1:]
		if len(inline) == 0 {
			return nil, errors.NewWithHint(errors.ErrNoCommand,
				"no command specified after --",
				"supply the command to run, e.g. -- echo hi")
		}

		mode := override
		if mode == "" {
			m, err := fallbackKind(opts)
			if err != nil {
				return nil, err
			}
			mode = m
		}

		return &ParsedCommand{
			Type:    Inline,
			Command: inline[0],
			Args:    inline[1:],
			Mode:    mode,
		}, nil
	}

	if len(args) == 0 {
		return nil, errors.NewWithHint(errors.ErrNoCommand,
			"no command specified",
			"pass a configured command name, or use -- for an inline command")
	}

	if len(commands) == 0 {
		return nil, errors.NewWithHint(errors.ErrNoCommand,
			"no commands configured",
			"add a [commands] table to treeline.toml, or use -- for an inline command")
	}

	name := args[0]
	cc, ok := commands[name]
	if !ok {
		available := make([]string, 0, len(commands))
		for n := range commands {
			available = append(available, n)
		}
		sort.Strings(available)
		return nil, errors.NewWithHint(errors.ErrCommandNotFound,
			fmt.Sprintf("command %q not found", name),
			"available commands: "+strings.Join(available, ", "))
	}

	mode := override
	if mode == "" && cc.Mode != "" {
		k, err := ParseKind(cc.Mode)
		if err != nil {
			return nil, err
		}
		mode = k
	}
	if mode == "" {
		m, err := fallbackKind(opts)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	return &ParsedCommand{
		Type:        Predefined,
		Command:     cc.Command,
		Args:        args[1:],
		Mode:        mode,
		CommandName: name,
	}, nil
}
