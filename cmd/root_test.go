package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiblingDefault_ExplicitFlagWins(t *testing.T) {
	got := siblingDefault("/custom/projects.json", "projects.json")
	assert.Equal(t, "/custom/projects.json", got)
}

func TestSiblingDefault_ResolvesBesideExecutable(t *testing.T) {
	// WHEN no flag is given, the default is the named file next to the tool
	got := siblingDefault("", "projects.json")
	assert.Equal(t, "projects.json", filepath.Base(got))
	assert.True(t, filepath.IsAbs(got) || got == "projects.json")
}

func TestRootCommand_RequiresProjectArg(t *testing.T) {
	err := rootCmd.Args(rootCmd, []string{})
	assert.Error(t, err)

	err = rootCmd.Args(rootCmd, []string{"swift-protobuf"})
	assert.NoError(t, err)
}
