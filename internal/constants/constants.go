// Package constants defines shared names used across treeline.
package constants

// Environment variables injected into every spawned command.
const (
	EnvWorktreeName = "TREELINE_WORKTREE_NAME"
	EnvWorktreePath = "TREELINE_WORKTREE_PATH"
	EnvIsMain       = "TREELINE_IS_MAIN_WORKTREE"

	// EnvPortPrefix is followed by a 1-based index, e.g. TREELINE_PORT_1.
	EnvPortPrefix = "TREELINE_PORT_"

	// EnvPort aliases the first allocated port for tools that expect PORT-style vars.
	EnvPort = "TREELINE_PORT"
)

// WindowNameSeparator joins worktree and command into a tmux window name,
// e.g. "feature-1::dev". The Refresher keys its presence checks off this.
const WindowNameSeparator = "::"

// ProjectConfigFile is the per-repository configuration file name.
const ProjectConfigFile = "treeline.toml"

// WorktreeOverlayFile is the optional per-worktree environment overlay.
const WorktreeOverlayFile = ".treeline.yaml"

// DefaultServerPort is the port the HTTP API listens on unless configured.
const DefaultServerPort = 8199
