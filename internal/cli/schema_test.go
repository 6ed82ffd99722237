package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot() *cobra.Command {
	root := &cobra.Command{Use: "clauseguardd", Short: "ClauseGuard daemon"}
	root.PersistentFlags().String("config", "", "Path to config file")

	serve := &cobra.Command{Use: "serve", Short: "Run the API server"}
	serve.Flags().IntP("port", "p", 8080, "Listen port")
	serve.Flags().String("db-url", "", "Postgres connection string")
	_ = serve.MarkFlagRequired("db-url")
	root.AddCommand(serve)

	hidden := &cobra.Command{Use: "debug", Hidden: true}
	root.AddCommand(hidden)

	return root
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(newTestRoot())

	assert.Equal(t, "clauseguardd", schema.Name)
	assert.Equal(t, "ClauseGuard daemon", schema.Description)

	require.Len(t, schema.Subcommands, 1, "hidden and help commands are skipped")
	serve := schema.Subcommands[0]
	assert.Equal(t, "serve", serve.Name)

	byName := map[string]FlagSchema{}
	for _, f := range serve.Flags {
		byName[f.Name] = f
	}
	port, ok := byName["port"]
	require.True(t, ok)
	assert.Equal(t, "p", port.Shorthand)
	assert.Equal(t, "int", port.Type)
	assert.Equal(t, "8080", port.Default)
	assert.False(t, port.Required)

	dbURL, ok := byName["db-url"]
	require.True(t, ok)
	assert.True(t, dbURL.Required)
}

func TestGenerateSchema_OmitsHelpFlags(t *testing.T) {
	root := newTestRoot()
	AddHelpJSONFlag(root)
	root.InitDefaultHelpFlag()

	schema := GenerateSchema(root)

	for _, f := range schema.Flags {
		assert.NotEqual(t, "help-json", f.Name)
		assert.NotEqual(t, "help", f.Name)
	}
}

func TestResolveCommand(t *testing.T) {
	root := newTestRoot()

	assert.Equal(t, "serve", resolveCommand(root, []string{"serve"}).Name())
	assert.Equal(t, root, resolveCommand(root, nil))
	assert.Equal(t, root, resolveCommand(root, []string{"unknown"}), "unmatched args fall back to the parent")
}
