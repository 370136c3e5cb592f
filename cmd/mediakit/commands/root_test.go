package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := GetRootCmd()

	names := make(map[string]bool)
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}

	assert.True(t, names["serve"], "serve subcommand should be registered")
	assert.True(t, names["migrate"], "migrate subcommand should be registered")
	assert.True(t, names["reconcile"], "reconcile subcommand should be registered")
	assert.True(t, names["version"], "version subcommand should be registered")

	// No interactive admin-client subcommands: mediakit is scoped to
	// serve/migrate/reconcile.
	assert.Len(t, root.Commands(), 4)
}

func TestRootCommandHasConfigFlag(t *testing.T) {
	root := GetRootCmd()

	flag := root.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestVersionCommandPrintsVersion(t *testing.T) {
	root := GetRootCmd()

	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"version"})

	err := root.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "mediakit")
}
