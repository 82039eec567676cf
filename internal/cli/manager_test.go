package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treeline/internal/config"
)

func TestListCommandRegisteredAtBothLevels(t *testing.T) {
	m := New(config.New())
	m.SetManagers(nil, nil, nil)

	topList, _, err := m.rootCmd.Find([]string{"list"})
	require.NoError(t, err)
	wtList, _, err := m.rootCmd.Find([]string{"worktree", "list"})
	require.NoError(t, err)

	// Two registrations, two instances: sharing one would reparent it and
	// break one of the command paths
	assert.NotSame(t, topList, wtList)
	assert.Equal(t, "treeline list", topList.CommandPath())
	assert.Equal(t, "treeline worktree list", wtList.CommandPath())
}
