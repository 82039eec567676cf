// Package execution runs a resolved shell command across a set of target
// worktrees under one of four concurrency/attachment policies.
package execution

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"treeline/internal/constants"
)

// Context is the per-worktree bundle of command, arguments, environment and
// allocated ports for one execution-mode invocation. It is constructed fresh
// for each call and never shared between modes.
type Context struct {
	WorktreeName string
	WorktreePath string
	IsMain       bool
	CommandName  string // set for predefined commands, empty for inline
	Command      string
	Args         []string
	Env          map[string]string
	Ports        []int
}

// ShellCommand returns the full shell command line for this context
func (c Context) ShellCommand() string {
	if len(c.Args) == 0 {
		return c.Command
	}
	return c.Command + " " + strings.Join(c.Args, " ")
}

// WindowName returns the tmux window name identifying this context's command,
// "<worktree>::<command>". The Refresher keys its presence checks off this.
func (c Context) WindowName() string {
	return c.WorktreeName + constants.WindowNameSeparator + c.commandLabel()
}

func (c Context) commandLabel() string {
	if c.CommandName != "" {
		return c.CommandName
	}
	if fields := strings.Fields(c.Command); len(fields) > 0 {
		return fields[0]
	}
	return c.Command
}

// Environ merges the context's Env over the base environment, then overlays
// the worktree identity variables and one variable per allocated port.
func (c Context) Environ(base []string) []string {
	env := append([]string(nil), base...)

	for k, v := range c.Env {
		env = setEnv(env, k, v)
	}

	env = setEnv(env, constants.EnvWorktreeName, c.WorktreeName)
	env = setEnv(env, constants.EnvWorktreePath, c.WorktreePath)
	env = setEnv(env, constants.EnvIsMain, strconv.FormatBool(c.IsMain))

	for i, port := range c.Ports {
		env = setEnv(env, fmt.Sprintf("%s%d", constants.EnvPortPrefix, i+1), strconv.Itoa(port))
	}
	if len(c.Ports) > 0 {
		env = setEnv(env, constants.EnvPort, strconv.Itoa(c.Ports[0]))
	}

	return env
}

// overlayVars returns only the variables this context adds on top of the
// process environment, for spawn paths that export them inline.
func (c Context) overlayVars() [][2]string {
	vars := make([][2]string, 0, len(c.Env)+4+len(c.Ports))

	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		vars = append(vars, [2]string{k, c.Env[k]})
	}

	vars = append(vars,
		[2]string{constants.EnvWorktreeName, c.WorktreeName},
		[2]string{constants.EnvWorktreePath, c.WorktreePath},
		[2]string{constants.EnvIsMain, strconv.FormatBool(c.IsMain)},
	)
	for i, port := range c.Ports {
		vars = append(vars, [2]string{fmt.Sprintf("%s%d", constants.EnvPortPrefix, i+1), strconv.Itoa(port)})
	}
	if len(c.Ports) > 0 {
		vars = append(vars, [2]string{constants.EnvPort, strconv.Itoa(c.Ports[0])})
	}

	return vars
}

// setEnv replaces or appends a KEY=VALUE entry
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
