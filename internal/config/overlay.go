package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"treeline/internal/constants"
)

// WorktreeOverlay is an optional per-worktree .treeline.yaml that adds
// environment variables to every command run in that worktree.
type WorktreeOverlay struct {
	Env map[string]string `yaml:"env"`
}

// LoadWorktreeOverlay reads the overlay file from a worktree root. A missing
// file returns an empty overlay, not an error.
func LoadWorktreeOverlay(worktreePath string) (*WorktreeOverlay, error) {
	overlayPath := filepath.Join(worktreePath, constants.WorktreeOverlayFile)

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &WorktreeOverlay{Env: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("failed to read worktree overlay %s: %w", overlayPath, err)
	}

	var overlay WorktreeOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse worktree overlay %s: %w", overlayPath, err)
	}
	if overlay.Env == nil {
		overlay.Env = map[string]string{}
	}

	return &overlay, nil
}
