package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carectl/internal/output"
)

func TestSessionWatch_RequiresSession(t *testing.T) {
	isolateHome(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"session", "watch"})

	err := rootCmd.Execute()
	require.Error(t, err)

	cliErr, ok := err.(*output.CLIError)
	require.True(t, ok, "expected a CLI error, got %T", err)
	assert.Equal(t, output.ExitAuthError, cliErr.ExitCode)
	assert.Equal(t, "login required", cliErr.Summary)
}
