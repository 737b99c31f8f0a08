package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_Use(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)
}

func TestMCPServeCmd_Use(t *testing.T) {
	assert.Equal(t, "serve", mcpServeCmd.Use)
}

func TestMCPServeCmd_HasPortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "port flag should exist")
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_ErrorsWithoutQAService(t *testing.T) {
	oldQA := qaService
	qaService = nil
	defer func() { qaService = oldQA }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"mcp", "serve"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
}
