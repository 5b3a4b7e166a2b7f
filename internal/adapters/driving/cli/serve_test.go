package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServeCmd_RegisteredOnRoot(t *testing.T) {
	for _, c := range rootCmd.Commands() {
		if c.Name() == "serve" {
			return
		}
	}
	t.Fatal("serve command not registered on rootCmd")
}

func TestServeCmd_TakesNoPositionalArgs(t *testing.T) {
	assert.Equal(t, "serve", serveCmd.Use)
	assert.NoError(t, serveCmd.Args(serveCmd, []string{}))
	assert.Error(t, serveCmd.Args(serveCmd, []string{"extra"}))
}
