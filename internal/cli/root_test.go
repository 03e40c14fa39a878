package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "hooray", cmd.Use)
	assert.Contains(t, cmd.Long, "celebration")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"serve", "sweep", "seed", "validate", "home"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "hooray.yaml", configFlag.DefValue)
}

func TestInvalidFormatRejected(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "home"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSeedCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	seedCmd, _, err := cmd.Find([]string{"seed"})
	require.NoError(t, err)

	catalogFlag := seedCmd.Flags().Lookup("catalog")
	require.NotNil(t, catalogFlag)
	// defaults to the config file's catalog_dir, so the flag itself is empty
	assert.Equal(t, "", catalogFlag.DefValue)
}

func TestHomeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	homeCmd, _, err := cmd.Find([]string{"home"})
	require.NoError(t, err)

	atFlag := homeCmd.Flags().Lookup("at")
	require.NotNil(t, atFlag)
	assert.Equal(t, "", atFlag.DefValue)
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "failed")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad input")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError), "plain errors default to failure")
}
