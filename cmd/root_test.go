package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"serve", "analyze", "seo", "ux", "competitors", "plan", "autotest", "full", "blueprint"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "sitecoach", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestUXCommand_Flags(t *testing.T) {
	flag := uxCmd.Flags().Lookup("ai")
	require.NotNil(t, flag, "ux command should have --ai flag")
	assert.Equal(t, "false", flag.DefValue)
}

func TestBlueprintCommand_Flags(t *testing.T) {
	flag := blueprintCmd.Flags().Lookup("workflow")
	require.NotNil(t, flag, "blueprint command should have --workflow flag")
}

func TestURLCommands_RequireArg(t *testing.T) {
	for _, c := range []string{"analyze", "seo", "ux", "competitors", "plan", "autotest", "full"} {
		cmd, _, err := rootCmd.Find([]string{c})
		require.NoError(t, err)
		assert.Error(t, cmd.Args(cmd, nil), "command %q should require a url argument", c)
	}
}
