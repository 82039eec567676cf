package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateWorktreeName(t *testing.T) {
	valid := []string{"feature-1", "Fix.Bug_42", "a", "0start"}
	for _, name := range valid {
		assert.NoError(t, ValidateWorktreeName(name), "name %q", name)
	}

	invalid := []string{"", "-leading-dash", ".hidden", "has space", "slash/name",
		"colon:name", strings.Repeat("a", 101)}
	for _, name := range invalid {
		assert.Error(t, ValidateWorktreeName(name), "name %q", name)
	}
}

func TestValidateBranchName(t *testing.T) {
	assert.NoError(t, ValidateBranchName("feature/login"))
	assert.NoError(t, ValidateBranchName("fix-42"))

	invalid := []string{"", "a..b", "a~1", "a^2", "a:b", "a b", `a\b`}
	for _, name := range invalid {
		assert.Error(t, ValidateBranchName(name), "name %q", name)
	}
}
